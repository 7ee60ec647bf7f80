// Package episodes holds the rules of the numbered episode aggregate: unique episode
// numbers, anonymous comments and the like counter.
package episodes

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/gdgjkuat/techdigest/models"
	"github.com/gdgjkuat/techdigest/utils"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100

	maxTitleLen   = 255
	maxCommentLen = 1000
)

// CreateInput carries the fields of a new episode.
type CreateInput struct {
	EpisodeNumber int
	Title         string
	Content       string
	ImageURL      *string
}

// UpdateInput carries the fields to change. Nil fields are left untouched; a present
// ImageURL that is null or empty clears the image.
type UpdateInput struct {
	Title    *string
	Content  *string
	ImageURL utils.Optional[string]
}

// Service executes episode operations against the store.
type Service struct {
	db *gorm.DB
}

// NewService creates a Service on top of db.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns episodes newest number first.
func (s *Service) List(ctx context.Context, skip, limit int) ([]models.EpisodeSummary, error) {
	if skip < 0 {
		return nil, utils.BadRequest(40001, "skip must be greater than or equal to 0")
	}
	if limit < 1 || limit > MaxLimit {
		return nil, utils.BadRequest(40001, "limit must be between 1 and %d", MaxLimit)
	}

	var list []models.Episode
	err := s.db.WithContext(ctx).
		Order("episode_number DESC").
		Offset(skip).Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, utils.Internal(50001, err, "failed to list episodes")
	}

	out := make([]models.EpisodeSummary, 0, len(list))
	for _, e := range list {
		out = append(out, e.Summary())
	}
	return out, nil
}

// Get returns an episode with its comments, oldest first.
func (s *Service) Get(ctx context.Context, number int) (*models.Episode, error) {
	var ep models.Episode
	err := s.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Where("episode_number = ?", number).
		First(&ep).Error
	if err != nil {
		return nil, episodeLookupError(err, number)
	}
	if ep.Comments == nil {
		ep.Comments = []models.Comment{}
	}
	return &ep, nil
}

// Like increments the like counter in one statement and returns the updated episode.
func (s *Service) Like(ctx context.Context, number int) (*models.Episode, error) {
	var ep models.Episode
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Episode{}).
			Where("episode_number = ?", number).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", 1))
		if res.Error != nil {
			return utils.Internal(50002, res.Error, "failed to like episode")
		}
		if res.RowsAffected == 0 {
			return episodeNotFound(number)
		}
		if err := tx.Where("episode_number = ?", number).First(&ep).Error; err != nil {
			return episodeLookupError(err, number)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ep, nil
}

// AddComment attaches an anonymous comment with a freshly generated display name.
func (s *Service) AddComment(ctx context.Context, number int, text string) (*models.Comment, error) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) > maxCommentLen {
		return nil, utils.BadRequest(40003, "comment_text must be at most %d characters", maxCommentLen)
	}
	text = utils.Sanitize(text)
	if text == "" {
		return nil, utils.BadRequest(40003, "comment_text cannot be empty")
	}

	db := s.db.WithContext(ctx)
	ep, err := s.find(db, number)
	if err != nil {
		return nil, err
	}

	c := models.Comment{
		EpisodeID:   ep.ID,
		CommentText: text,
		RandomName:  RandomName(),
	}
	if err := db.Create(&c).Error; err != nil {
		return nil, utils.Internal(50003, err, "failed to add comment")
	}
	return &c, nil
}

// Create stores a new episode. A taken number is a conflict.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Episode, error) {
	if in.EpisodeNumber < 1 {
		return nil, utils.BadRequest(40003, "episode_number must be at least 1")
	}
	title := strings.TrimSpace(in.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, utils.BadRequest(40003, "content cannot be empty")
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Episode{}).Where("episode_number = ?", in.EpisodeNumber).Count(&count).Error; err != nil {
		return nil, utils.Internal(50004, err, "failed to check episode number")
	}
	if count > 0 {
		return nil, duplicateNumber(in.EpisodeNumber)
	}

	ep := models.Episode{
		EpisodeNumber: in.EpisodeNumber,
		Title:         title,
		Content:       in.Content,
		ImageURL:      normalizeImageURL(in.ImageURL),
	}
	if err := db.Create(&ep).Error; err != nil {
		// lost a race with a concurrent create
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, duplicateNumber(in.EpisodeNumber)
		}
		return nil, utils.Internal(50005, err, "failed to create episode")
	}
	ep.Comments = []models.Comment{}
	return &ep, nil
}

// Update applies the present fields of in. The episode number never changes.
func (s *Service) Update(ctx context.Context, number int, in UpdateInput) (*models.Episode, error) {
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
			return nil, utils.BadRequest(40003, "content cannot be empty")
		}
		updates["content"] = *in.Content
	}
	if in.ImageURL.Set {
		updates["image_url"] = normalizeImageURL(in.ImageURL.Value)
	}

	db := s.db.WithContext(ctx)
	ep, err := s.find(db, number)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := db.Model(ep).Updates(updates).Error; err != nil {
			return nil, utils.Internal(50006, err, "failed to update episode")
		}
	}
	return s.Get(ctx, number)
}

// Delete removes the episode and its comments in one transaction.
func (s *Service) Delete(ctx context.Context, number int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ep, err := s.find(tx, number)
		if err != nil {
			return err
		}
		if err := tx.Where("episode_id = ?", ep.ID).Delete(&models.Comment{}).Error; err != nil {
			return utils.Internal(50007, err, "failed to delete comments")
		}
		if err := tx.Delete(ep).Error; err != nil {
			return utils.Internal(50007, err, "failed to delete episode")
		}
		return nil
	})
}

// DeleteComment removes one comment of the episode and returns the episode id.
func (s *Service) DeleteComment(ctx context.Context, number int, commentID uint) (uint, error) {
	db := s.db.WithContext(ctx)
	ep, err := s.find(db, number)
	if err != nil {
		return 0, err
	}
	res := db.Where("id = ? AND episode_id = ?", commentID, ep.ID).Delete(&models.Comment{})
	if res.Error != nil {
		return 0, utils.Internal(50008, res.Error, "failed to delete comment")
	}
	if res.RowsAffected == 0 {
		return 0, utils.NotFound(40402, "Comment %d not found in episode %d", commentID, number)
	}
	return ep.ID, nil
}

// Count reports the number of episodes and comments and the sum of likes.
func (s *Service) Count(ctx context.Context) (episodes, comments, likes int64, err error) {
	db := s.db.WithContext(ctx)
	if err = db.Model(&models.Episode{}).Count(&episodes).Error; err != nil {
		return 0, 0, 0, utils.Internal(50009, err, "failed to count episodes")
	}
	if err = db.Model(&models.Comment{}).Count(&comments).Error; err != nil {
		return 0, 0, 0, utils.Internal(50009, err, "failed to count comments")
	}
	if err = db.Model(&models.Episode{}).Select("COALESCE(SUM(like_count),0)").Scan(&likes).Error; err != nil {
		return 0, 0, 0, utils.Internal(50009, err, "failed to sum likes")
	}
	return episodes, comments, likes, nil
}

func (s *Service) find(db *gorm.DB, number int) (*models.Episode, error) {
	var ep models.Episode
	if err := db.Where("episode_number = ?", number).First(&ep).Error; err != nil {
		return nil, episodeLookupError(err, number)
	}
	return &ep, nil
}

func validateTitle(title string) error {
	if title == "" {
		return utils.BadRequest(40003, "title cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return utils.BadRequest(40003, "title must be at most %d characters", maxTitleLen)
	}
	return nil
}

func normalizeImageURL(u *string) *string {
	if u == nil {
		return nil
	}
	v := strings.TrimSpace(*u)
	if v == "" {
		return nil
	}
	return &v
}

func episodeNotFound(number int) error {
	return utils.NotFound(40401, "Episode %d not found", number)
}

func duplicateNumber(number int) error {
	return utils.Conflict(40002, "Episode %d already exists", number)
}

func episodeLookupError(err error, number int) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return episodeNotFound(number)
	}
	return utils.Internal(50010, err, "failed to load episode")
}
