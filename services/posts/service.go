// Package posts implements the legacy blog post aggregate: publishing, comments, likes
// and attached images.
package posts

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gdgjkuat/techdigest/models"
	"github.com/gdgjkuat/techdigest/utils"
)

const (
	DefaultLimit    = 10
	MaxLimit        = 100
	MaxLimitAll     = 50
	maxTitleLen     = 255
	maxAuthorLen    = 100
	maxExcerptLen   = 500
	maxCommentLen   = 1000
	maxCommenterLen = 100
)

// CreateInput carries the fields of a new post.
type CreateInput struct {
	Title         string
	Content       string
	AuthorName    string
	Excerpt       *string
	FeaturedImage *string
	Tags          *string
	IsPublished   bool
	IsFeatured    *bool
}

// UpdateInput carries the fields to change; nil fields are left untouched.
type UpdateInput struct {
	Title         *string
	Content       *string
	Excerpt       *string
	FeaturedImage *string
	Tags          *string
	IsPublished   *bool
	IsFeatured    *bool
}

// CommentInput is a reader comment. An empty name gets a generated one.
type CommentInput struct {
	CommenterName  string
	CommenterEmail *string
	Content        string
}

// ImageInput attaches an already hosted image to a post.
type ImageInput struct {
	ImageURL string
	AltText  *string
	PublicID *string
}

// Service executes post operations against the store.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService creates a Service on top of db.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create stores a post; published_at is stamped only when it is created published.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.BlogPost, error) {
	title := strings.TrimSpace(in.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, utils.BadRequest(40013, "content cannot be empty")
	}
	author := strings.TrimSpace(in.AuthorName)
	if utf8.RuneCountInString(author) > maxAuthorLen {
		return nil, utils.BadRequest(40013, "author_name must be at most %d characters", maxAuthorLen)
	}
	if err := validateExcerpt(in.Excerpt); err != nil {
		return nil, err
	}

	post := models.BlogPost{
		Title:         title,
		Content:       in.Content,
		AuthorName:    author,
		Excerpt:       in.Excerpt,
		FeaturedImage: in.FeaturedImage,
		Tags:          in.Tags,
		IsPublished:   in.IsPublished,
		IsFeatured:    in.IsFeatured,
	}
	if in.IsPublished {
		now := s.now()
		post.PublishedAt = &now
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, utils.Internal(50011, err, "failed to create post")
	}
	return &post, nil
}

// ListPublished returns published posts, most recently published first.
func (s *Service) ListPublished(ctx context.Context, skip, limit int) ([]models.BlogPost, error) {
	if err := validatePaging(skip, limit, MaxLimit); err != nil {
		return nil, err
	}
	var list []models.BlogPost
	err := s.db.WithContext(ctx).
		Where("is_published = ?", true).
		Order("published_at DESC").
		Offset(skip).Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, utils.Internal(50012, err, "failed to list posts")
	}
	return list, nil
}

// ListAll returns every post, newest first.
func (s *Service) ListAll(ctx context.Context, skip, limit int) ([]models.BlogPost, error) {
	if err := validatePaging(skip, limit, MaxLimitAll); err != nil {
		return nil, err
	}
	var list []models.BlogPost
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(skip).Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, utils.Internal(50012, err, "failed to list posts")
	}
	return list, nil
}

// Get returns the post if the caller may see it. Unpublished posts are admin only.
func (s *Service) Get(ctx context.Context, rawID string, asAdmin bool) (*models.BlogPost, error) {
	post, err := s.find(s.db.WithContext(ctx), rawID)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished && !asAdmin {
		return nil, utils.Forbidden(40301, "Post is not published")
	}
	return post, nil
}

// Update applies the present fields and stamps published_at on first publication.
func (s *Service) Update(ctx context.Context, rawID string, in UpdateInput) (*models.BlogPost, error) {
	updates := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		updates["title"] = title
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, utils.BadRequest(40013, "content cannot be empty")
		}
		updates["content"] = *in.Content
	}
	if in.Excerpt != nil {
		if err := validateExcerpt(in.Excerpt); err != nil {
			return nil, err
		}
		updates["excerpt"] = *in.Excerpt
	}
	if in.FeaturedImage != nil {
		updates["featured_image"] = *in.FeaturedImage
	}
	if in.Tags != nil {
		updates["tags"] = *in.Tags
	}
	if in.IsFeatured != nil {
		updates["is_featured"] = *in.IsFeatured
	}

	var post *models.BlogPost
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if post, err = s.find(tx, rawID); err != nil {
			return err
		}
		now := s.now()
		if in.IsPublished != nil {
			updates["is_published"] = *in.IsPublished
			if *in.IsPublished && post.PublishedAt == nil {
				updates["published_at"] = now
			}
		}
		if len(updates) == 0 {
			return nil
		}
		updates["updated_at"] = now
		if err := tx.Model(post).Updates(updates).Error; err != nil {
			return utils.Internal(50013, err, "failed to update post")
		}
		post, err = s.find(tx, rawID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes the post and all of its comments, likes and images. The removed
// images are returned so hosted assets can be cleaned up.
func (s *Service) Delete(ctx context.Context, rawID string) ([]models.BlogImage, error) {
	var images []models.BlogImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := s.find(tx, rawID)
		if err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.PostID).Find(&images).Error; err != nil {
			return utils.Internal(50014, err, "failed to load post images")
		}
		for _, child := range []interface{}{&models.BlogComment{}, &models.BlogLike{}, &models.BlogImage{}} {
			if err := tx.Where("post_id = ?", post.PostID).Delete(child).Error; err != nil {
				return utils.Internal(50014, err, "failed to delete post children")
			}
		}
		if err := tx.Delete(post).Error; err != nil {
			return utils.Internal(50014, err, "failed to delete post")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

// AddComment stores a comment on a visible post and bumps its comment counter.
func (s *Service) AddComment(ctx context.Context, rawID string, asAdmin bool, in CommentInput) (*models.BlogComment, error) {
	if utf8.RuneCountInString(strings.TrimSpace(in.Content)) > maxCommentLen {
		return nil, utils.BadRequest(40014, "content must be at most %d characters", maxCommentLen)
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.CommenterName)) > maxCommenterLen {
		return nil, utils.BadRequest(40014, "commenter_name must be at most %d characters", maxCommenterLen)
	}
	content := utils.Sanitize(in.Content)
	if content == "" {
		return nil, utils.BadRequest(40014, "content cannot be empty")
	}
	name := utils.Sanitize(in.CommenterName)
	if name == "" {
		name = RandomName()
	}

	var c models.BlogComment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := s.visible(tx, rawID, asAdmin)
		if err != nil {
			return err
		}
		c = models.BlogComment{
			PostID:         post.PostID,
			CommenterName:  name,
			CommenterEmail: in.CommenterEmail,
			Content:        content,
		}
		if err := tx.Create(&c).Error; err != nil {
			return utils.Internal(50015, err, "failed to add comment")
		}
		return bumpCounter(tx, post.PostID, "comment_count", 1)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListComments returns the comments of a visible post, oldest first.
func (s *Service) ListComments(ctx context.Context, rawID string, asAdmin bool) ([]models.BlogComment, error) {
	db := s.db.WithContext(ctx)
	post, err := s.visible(db, rawID, asAdmin)
	if err != nil {
		return nil, err
	}
	var list []models.BlogComment
	if err := db.Where("post_id = ?", post.PostID).Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, utils.Internal(50016, err, "failed to list comments")
	}
	return list, nil
}

// DeleteComment removes one comment of the post.
func (s *Service) DeleteComment(ctx context.Context, rawID, commentID string) error {
	return s.deleteChild(ctx, rawID, commentID, "comment_id", &models.BlogComment{}, "comment_count", "Comment")
}

// AddLike records an anonymous like on a visible post.
func (s *Service) AddLike(ctx context.Context, rawID string, asAdmin bool) (*models.BlogLike, error) {
	var like models.BlogLike
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := s.visible(tx, rawID, asAdmin)
		if err != nil {
			return err
		}
		like = models.BlogLike{PostID: post.PostID}
		if err := tx.Create(&like).Error; err != nil {
			return utils.Internal(50017, err, "failed to like post")
		}
		return bumpCounter(tx, post.PostID, "like_count", 1)
	})
	if err != nil {
		return nil, err
	}
	return &like, nil
}

// ListLikes returns the likes of a visible post.
func (s *Service) ListLikes(ctx context.Context, rawID string, asAdmin bool) ([]models.BlogLike, error) {
	db := s.db.WithContext(ctx)
	post, err := s.visible(db, rawID, asAdmin)
	if err != nil {
		return nil, err
	}
	var list []models.BlogLike
	if err := db.Where("post_id = ?", post.PostID).Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, utils.Internal(50018, err, "failed to list likes")
	}
	return list, nil
}

// DeleteLike removes one like of the post.
func (s *Service) DeleteLike(ctx context.Context, rawID, likeID string) error {
	return s.deleteChild(ctx, rawID, likeID, "like_id", &models.BlogLike{}, "like_count", "Like")
}

// AddImage attaches a hosted image to the post.
func (s *Service) AddImage(ctx context.Context, rawID string, in ImageInput) (*models.BlogImage, error) {
	if strings.TrimSpace(in.ImageURL) == "" {
		return nil, utils.BadRequest(40015, "image_url cannot be empty")
	}
	db := s.db.WithContext(ctx)
	post, err := s.find(db, rawID)
	if err != nil {
		return nil, err
	}
	img := models.BlogImage{
		PostID:   post.PostID,
		ImageURL: strings.TrimSpace(in.ImageURL),
		AltText:  in.AltText,
		PublicID: in.PublicID,
	}
	if err := db.Create(&img).Error; err != nil {
		return nil, utils.Internal(50019, err, "failed to add image")
	}
	return &img, nil
}

// ListImages returns the images of a visible post in upload order.
func (s *Service) ListImages(ctx context.Context, rawID string, asAdmin bool) ([]models.BlogImage, error) {
	db := s.db.WithContext(ctx)
	post, err := s.visible(db, rawID, asAdmin)
	if err != nil {
		return nil, err
	}
	var list []models.BlogImage
	if err := db.Where("post_id = ?", post.PostID).Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, utils.Internal(50020, err, "failed to list images")
	}
	return list, nil
}

// DeleteImage removes one image record and returns it.
func (s *Service) DeleteImage(ctx context.Context, rawID, imageID string) (*models.BlogImage, error) {
	var img models.BlogImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := s.find(tx, rawID)
		if err != nil {
			return err
		}
		err = tx.Where("image_id = ? AND post_id = ?", imageID, post.PostID).First(&img).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(40413, "Image not found")
		}
		if err != nil {
			return utils.Internal(50021, err, "failed to load image")
		}
		if err := tx.Delete(&img).Error; err != nil {
			return utils.Internal(50021, err, "failed to delete image")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// SetFeaturedImage points the post's featured image at url.
func (s *Service) SetFeaturedImage(ctx context.Context, rawID, url string) (*models.BlogPost, error) {
	if strings.TrimSpace(url) == "" {
		return nil, utils.BadRequest(40015, "image_url cannot be empty")
	}
	return s.Update(ctx, rawID, UpdateInput{FeaturedImage: &url})
}

// Count reports the number of posts, comments and likes.
func (s *Service) Count(ctx context.Context) (posts, comments, likes int64, err error) {
	db := s.db.WithContext(ctx)
	if err = db.Model(&models.BlogPost{}).Count(&posts).Error; err != nil {
		return 0, 0, 0, utils.Internal(50022, err, "failed to count posts")
	}
	if err = db.Model(&models.BlogComment{}).Count(&comments).Error; err != nil {
		return 0, 0, 0, utils.Internal(50022, err, "failed to count comments")
	}
	if err = db.Model(&models.BlogLike{}).Count(&likes).Error; err != nil {
		return 0, 0, 0, utils.Internal(50022, err, "failed to count likes")
	}
	return posts, comments, likes, nil
}

func (s *Service) deleteChild(ctx context.Context, rawID, childID, column string, model interface{}, counter, label string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := s.find(tx, rawID)
		if err != nil {
			return err
		}
		res := tx.Where(column+" = ? AND post_id = ?", childID, post.PostID).Delete(model)
		if res.Error != nil {
			return utils.Internal(50023, res.Error, "failed to delete %s", strings.ToLower(label))
		}
		if res.RowsAffected == 0 {
			return utils.NotFound(40412, "%s not found", label)
		}
		return bumpCounter(tx, post.PostID, counter, -1)
	})
}

// find parses the id and loads the post in a single lookup.
func (s *Service) find(db *gorm.DB, rawID string) (*models.BlogPost, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, utils.BadRequest(40012, "Invalid post ID format")
	}
	var post models.BlogPost
	if err := db.Where("post_id = ?", id.String()).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound(40411, "Post not found")
		}
		return nil, utils.Internal(50024, err, "failed to load post")
	}
	return &post, nil
}

func (s *Service) visible(db *gorm.DB, rawID string, asAdmin bool) (*models.BlogPost, error) {
	post, err := s.find(db, rawID)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished && !asAdmin {
		return nil, utils.Forbidden(40301, "Post is not published")
	}
	return post, nil
}

func bumpCounter(tx *gorm.DB, postID, column string, delta int) error {
	expr := gorm.Expr(column+" + ?", delta)
	if delta < 0 {
		// never drive a counter below zero
		expr = gorm.Expr("CASE WHEN "+column+" > 0 THEN "+column+" - 1 ELSE 0 END")
	}
	err := tx.Model(&models.BlogPost{}).Where("post_id = ?", postID).UpdateColumn(column, expr).Error
	if err != nil {
		return utils.Internal(50025, err, "failed to update %s", column)
	}
	return nil
}

func validatePaging(skip, limit, maxLimit int) error {
	if skip < 0 {
		return utils.BadRequest(40011, "skip must be greater than or equal to 0")
	}
	if limit < 1 || limit > maxLimit {
		return utils.BadRequest(40011, "limit must be between 1 and %d", maxLimit)
	}
	return nil
}

func validateTitle(title string) error {
	if title == "" {
		return utils.BadRequest(40013, "title cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return utils.BadRequest(40013, "title must be at most %d characters", maxTitleLen)
	}
	return nil
}

func validateExcerpt(excerpt *string) error {
	if excerpt != nil && utf8.RuneCountInString(*excerpt) > maxExcerptLen {
		return utils.BadRequest(40013, "excerpt must be at most %d characters", maxExcerptLen)
	}
	return nil
}
