// Package seed fills an empty store with sample episodes and legacy posts.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"github.com/gdgjkuat/techdigest/models"
	"github.com/gdgjkuat/techdigest/services/episodes"
	"github.com/gdgjkuat/techdigest/services/posts"
)

// Options controls a seeding run.
type Options struct {
	// Reset deletes existing content first.
	Reset bool
	// Rand drives comment and like counts; nil uses a time-seeded source.
	Rand *rand.Rand
}

// Summary counts what a run created.
type Summary struct {
	Episodes        int
	EpisodeComments int
	Posts           int
	PostComments    int
	PostLikes       int
	PostImages      int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d episodes, %d episode comments, %d posts, %d post comments, %d likes, %d images",
		s.Episodes, s.EpisodeComments, s.Posts, s.PostComments, s.PostLikes, s.PostImages)
}

type samplePost struct {
	title, excerpt, image, tags, content string
	published, featured                  bool
}

var samplePosts = []samplePost{
	{
		title:     "Welcome to GDG JKUAT Tech Digest",
		excerpt:   "Introducing the GDG JKUAT Tech Digest - your new home for tech content, tutorials, and community stories.",
		image:     "https://images.unsplash.com/photo-1522071820081-009f0129c71c?w=800",
		tags:      "welcome,community,gdg,jkuat",
		content:   "# Welcome to Our Tech Community!\n\nWeekly tutorials, project showcases, industry insights and event coverage from JKUAT.",
		published: true,
		featured:  true,
	},
	{
		title:     "Getting Started with Python: A Beginner's Guide",
		excerpt:   "Learn Python programming from scratch with this comprehensive beginner's guide from GDG JKUAT.",
		image:     "https://images.unsplash.com/photo-1526379095098-d400fd0bf935?w=800",
		tags:      "python,programming,tutorial,beginners",
		content:   "# Python Programming for Beginners\n\n```python\nprint(\"Hello, GDG JKUAT!\")\n```",
		published: true,
		featured:  true,
	},
	{
		title:     "Building REST APIs the Practical Way",
		excerpt:   "Routing, validation and persistence for small content services.",
		image:     "https://images.unsplash.com/photo-1555949963-aa79dcee981c?w=800",
		tags:      "api,backend,tutorial",
		content:   "# Building REST APIs\n\nStart with the data model, then expose it one resource at a time.",
		published: true,
	},
	{
		title:   "Git Workflows for Student Teams",
		excerpt: "Branches, reviews and releases without the chaos.",
		image:   "https://images.unsplash.com/photo-1556075798-4825dfaaf498?w=800",
		tags:    "git,collaboration",
		content: "# Git Workflows\n\nDraft: trunk based development versus feature branches.",
	},
}

var sampleImages = []struct{ alt, url string }{
	{"GDG JKUAT Community Event", "https://images.unsplash.com/photo-1515187029135-18ee286d815b?w=600"},
	{"Python Code Example", "https://images.unsplash.com/photo-1526379095098-d400fd0bf935?w=600"},
	{"FastAPI Documentation", "https://images.unsplash.com/photo-1555949963-aa79dcee981c?w=600"},
	{"Git Workflow Diagram", "https://images.unsplash.com/photo-1556075798-4825dfaaf498?w=600"},
}

var commentTemplates = []string{
	"Great article! This really helped me understand the concepts. Thanks for sharing!",
	"Excellent tutorial! Can't wait to try this out. Do you have any advanced tips?",
	"This is exactly what I was looking for. The code examples are super clear.",
	"Thanks for this comprehensive guide. Very well explained!",
	"Awesome content! When will you be covering advanced techniques?",
	"Perfect timing for this post! I was just working on a similar project.",
	"Love the step-by-step approach. Makes it easy to follow along.",
	"This tutorial saved me hours of research. Thank you so much!",
	"Clear and concise explanation. Looking forward to more content like this.",
	"Great job on this article! The examples really bring the concepts to life.",
}

var sampleEpisodes = []struct{ title, content string }{
	{"Kickoff: What the Digest Is About", "Our first episode: who we are and what to expect every week."},
	{"Cloud Study Jam Recap", "Highlights from the Cloud Study Jam, with links to every lab we ran."},
	{"Android Dev Night", "Compose, coroutines and a lot of pizza. Here is what we built."},
}

// Run inserts the sample data in one transaction.
func Run(ctx context.Context, db *gorm.DB, opts Options) (Summary, error) {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	var sum Summary
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.Reset {
			if err := reset(tx); err != nil {
				return err
			}
		}
		var err error
		if sum.Episodes, sum.EpisodeComments, err = seedEpisodes(tx, rng); err != nil {
			return err
		}
		return seedPosts(tx, rng, &sum)
	})
	return sum, err
}

func reset(tx *gorm.DB) error {
	all := []interface{}{
		&models.BlogLike{}, &models.BlogComment{}, &models.BlogImage{}, &models.BlogPost{},
		&models.Comment{}, &models.Episode{}, &models.PageView{},
	}
	for _, m := range all {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
			return fmt.Errorf("clear %T: %w", m, err)
		}
	}
	return nil
}

func seedEpisodes(tx *gorm.DB, rng *rand.Rand) (int, int, error) {
	var start int64
	if err := tx.Model(&models.Episode{}).Select("COALESCE(MAX(episode_number),0)").Scan(&start).Error; err != nil {
		return 0, 0, fmt.Errorf("read episode numbers: %w", err)
	}

	comments := 0
	for i, s := range sampleEpisodes {
		ep := models.Episode{
			EpisodeNumber: int(start) + i + 1,
			Title:         s.title,
			Content:       s.content,
			LikeCount:     rng.Intn(40),
		}
		if err := tx.Create(&ep).Error; err != nil {
			return 0, 0, fmt.Errorf("create episode %d: %w", ep.EpisodeNumber, err)
		}
		n := 1 + rng.Intn(4)
		for j := 0; j < n; j++ {
			c := models.Comment{
				EpisodeID:   ep.ID,
				CommentText: commentTemplates[rng.Intn(len(commentTemplates))],
				RandomName:  episodes.RandomName(),
			}
			if err := tx.Create(&c).Error; err != nil {
				return 0, 0, fmt.Errorf("create episode comment: %w", err)
			}
		}
		comments += n
	}
	return len(sampleEpisodes), comments, nil
}

func seedPosts(tx *gorm.DB, rng *rand.Rand, sum *Summary) error {
	now := time.Now().UTC()
	for i, s := range samplePosts {
		created := now.AddDate(0, 0, -(len(samplePosts) - i))
		post := models.BlogPost{
			Title:         s.title,
			Content:       s.content,
			Excerpt:       strPtr(s.excerpt),
			FeaturedImage: strPtr(s.image),
			Tags:          strPtr(s.tags),
			IsPublished:   s.published,
			IsFeatured:    boolPtr(s.featured),
			CreatedAt:     created,
		}
		if s.published {
			post.PublishedAt = &created
		}
		if err := tx.Create(&post).Error; err != nil {
			return fmt.Errorf("create post %q: %w", s.title, err)
		}
		sum.Posts++

		if i < len(sampleImages) {
			img := models.BlogImage{PostID: post.PostID, ImageURL: sampleImages[i].url, AltText: strPtr(sampleImages[i].alt)}
			if err := tx.Create(&img).Error; err != nil {
				return fmt.Errorf("create post image: %w", err)
			}
			sum.PostImages++
		}

		nComments := 3 + rng.Intn(6)
		for j := 0; j < nComments; j++ {
			c := models.BlogComment{
				PostID:        post.PostID,
				CommenterName: posts.RandomName(),
				Content:       commentTemplates[rng.Intn(len(commentTemplates))],
				CreatedAt:     created.Add(time.Duration(1+rng.Intn(24)) * time.Hour),
			}
			if err := tx.Create(&c).Error; err != nil {
				return fmt.Errorf("create post comment: %w", err)
			}
		}

		nLikes := 10 + rng.Intn(41)
		likes := make([]models.BlogLike, nLikes)
		for j := range likes {
			likes[j] = models.BlogLike{PostID: post.PostID, CreatedAt: created.Add(time.Duration(1+rng.Intn(24)) * time.Hour)}
		}
		if err := tx.CreateInBatches(likes, 50).Error; err != nil {
			return fmt.Errorf("create post likes: %w", err)
		}

		err := tx.Model(&post).UpdateColumns(map[string]interface{}{
			"comment_count": nComments,
			"like_count":    nLikes,
		}).Error
		if err != nil {
			return fmt.Errorf("update post counters: %w", err)
		}
		sum.PostComments += nComments
		sum.PostLikes += nLikes
	}
	return nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func boolPtr(b bool) *bool { return &b }
