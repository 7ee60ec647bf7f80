package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gdgjkuat/techdigest/middleware"
	"github.com/gdgjkuat/techdigest/models"
	"github.com/gdgjkuat/techdigest/services/episodes"
	"github.com/gdgjkuat/techdigest/services/posts"
	"github.com/gdgjkuat/techdigest/utils"
)

// StatsController provides aggregate content counters.
type StatsController struct {
	db       *gorm.DB
	episodes *episodes.Service
	posts    *posts.Service
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db, episodes: episodes.NewService(db), posts: posts.NewService(db)}
}

// GetStats returns counts for both content schemas and today's reads.
func (s *StatsController) GetStats(ctx *gin.Context) {
	episodeCount, commentCount, likeCount, err := s.episodes.Count(ctx)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	postCount, postCommentCount, postLikeCount, err := s.posts.Count(ctx)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	var dailyViews int64
	if err := s.db.WithContext(ctx).Model(&models.PageView{}).
		Where("date = ?", middleware.Day(time.Now())).
		Select("COALESCE(SUM(views),0)").
		Scan(&dailyViews).Error; err != nil {
		utils.Logger.Warn("daily view count unavailable", zap.Error(err))
		dailyViews = 0
	}

	utils.Success(ctx, gin.H{
		"episode_count":      episodeCount,
		"comment_count":      commentCount,
		"like_count":         likeCount,
		"post_count":         postCount,
		"post_comment_count": postCommentCount,
		"post_like_count":    postLikeCount,
		"daily_view_count":   dailyViews,
	})
}

// GetEpisodeStats returns all-time views, likes and comments of one episode.
func (s *StatsController) GetEpisodeStats(ctx *gin.Context) {
	number, ok := episodeNumber(ctx)
	if !ok {
		return
	}
	ep, err := s.episodes.Get(ctx, number)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	var views int64
	if err := s.db.WithContext(ctx).Model(&models.PageView{}).
		Where("path = ?", middleware.EpisodeViewPath(number)).
		Select("COALESCE(SUM(views),0)").
		Scan(&views).Error; err != nil {
		utils.Logger.Warn("episode view count unavailable", zap.Int("episode_number", number), zap.Error(err))
		views = 0
	}

	utils.Success(ctx, gin.H{
		"episode_number": ep.EpisodeNumber,
		"views":          views,
		"like_count":     ep.LikeCount,
		"comment_count":  len(ep.Comments),
	})
}
