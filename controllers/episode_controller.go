package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gdgjkuat/techdigest/config"
	"github.com/gdgjkuat/techdigest/imagehost"
	"github.com/gdgjkuat/techdigest/middleware"
	"github.com/gdgjkuat/techdigest/services/episodes"
	"github.com/gdgjkuat/techdigest/utils"
)

// EpisodeController serves the episode API.
type EpisodeController struct {
	svc  *episodes.Service
	host imagehost.Host
	cfg  config.AppConfig
}

// NewEpisodeController creates a new EpisodeController instance.
func NewEpisodeController(db *gorm.DB, host imagehost.Host, cfg config.AppConfig) *EpisodeController {
	return &EpisodeController{svc: episodes.NewService(db), host: host, cfg: cfg}
}

// ListEpisodes returns episodes newest first.
func (e *EpisodeController) ListEpisodes(ctx *gin.Context) {
	skip, limit, err := parsePaging(ctx, episodes.DefaultLimit)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	cacheKey := utils.CacheKey(utils.EpisodeCachePrefix, "list:skip=%d:limit=%d", skip, limit)
	if b, ok := utils.CacheGetBytes(ctx, cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	list, err := e.svc.List(ctx, skip, limit)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.CacheSetJSON(ctx, cacheKey, list, 0)
	utils.Success(ctx, list)
}

// GetEpisode returns one episode with its comments.
func (e *EpisodeController) GetEpisode(ctx *gin.Context) {
	number, ok := episodeNumber(ctx)
	if !ok {
		return
	}
	middleware.SetPageViewPath(ctx, middleware.EpisodeViewPath(number))

	cacheKey := utils.CacheKey(utils.EpisodeCachePrefix, "detail:%d", number)
	if b, ok := utils.CacheGetBytes(ctx, cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	ep, err := e.svc.Get(ctx, number)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.CacheSetJSON(ctx, cacheKey, ep, 0)
	utils.Success(ctx, ep)
}

// LikeEpisode adds one like.
func (e *EpisodeController) LikeEpisode(ctx *gin.Context) {
	number, ok := episodeNumber(ctx)
	if !ok {
		return
	}
	ep, err := e.svc.Like(ctx, number)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	e.invalidate(ctx)
	utils.Success(ctx, gin.H{
		"episode_id":     ep.ID,
		"new_like_count": ep.LikeCount,
		"message":        "Episode liked successfully!",
	})
}

// AddComment posts an anonymous comment.
func (e *EpisodeController) AddComment(ctx *gin.Context) {
	number, ok := episodeNumber(ctx)
	if !ok {
		return
	}
	var req struct {
		CommentText string `json:"comment_text" binding:"required,min=1,max=1000"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "comment_text is required and must be 1-1000 characters")
		return
	}

	c, err := e.svc.AddComment(ctx, number, req.CommentText)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	e.invalidate(ctx)
	utils.Created(ctx, c)
}

// CreateEpisode stores a new episode.
func (e *EpisodeController) CreateEpisode(ctx *gin.Context) {
	var req struct {
		EpisodeNumber int     `json:"episode_number" binding:"required,min=1"`
		Title         string  `json:"title" binding:"required,min=1,max=255"`
		Content       string  `json:"content" binding:"required,min=1"`
		ImageURL      *string `json:"image_url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	ep, err := e.svc.Create(ctx, episodes.CreateInput{
		EpisodeNumber: req.EpisodeNumber,
		Title:         req.Title,
		Content:       req.Content,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	e.invalidate(ctx)
	utils.Created(ctx, ep)
}

// UploadImage sends an image to the hosting backend and returns its URL.
func (e *EpisodeController) UploadImage(ctx *gin.Context) {
	file, err := readImageUpload(ctx, e.cfg.MaxUploadMB)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	res := e.host.Upload(ctx, file.Data, file.Filename, e.cfg.ImageFolder, "")
	if !res.OK() {
		utils.Fail(ctx, utils.Internal(50031, res.Failure, "Failed to upload image: %s", res.Failure.Message))
		return
	}
	utils.Success(ctx, gin.H{
		"message":   "Image uploaded successfully",
		"url":       res.Asset.URL,
		"image_url": res.Asset.URL,
		"public_id": res.Asset.PublicID,
		"width":     res.Asset.Width,
		"height":    res.Asset.Height,
		"format":    res.Asset.Format,
	})
}

// UpdateEpisode changes the fields present in the body.
func (e *EpisodeController) UpdateEpisode(ctx *gin.Context) {
	number, ok := episodeNumber(ctx)
	if !ok {
		return
	}
	var req struct {
		Title    *string                `json:"title" binding:"omitempty,min=1,max=255"`
		Content  *string                `json:"content" binding:"omitempty,min=1"`
		ImageURL utils.Optional[string] `json:"image_url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	ep, err := e.svc.Update(ctx, number, episodes.UpdateInput{
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	e.invalidate(ctx)
	utils.Success(ctx, ep)
}

// DeleteEpisode removes an episode and its comments.
func (e *EpisodeController) DeleteEpisode(ctx *gin.Context) {
	number, ok := episodeNumber(ctx)
	if !ok {
		return
	}
	if err := e.svc.Delete(ctx, number); err != nil {
		utils.Fail(ctx, err)
		return
	}
	e.invalidate(ctx)
	utils.Success(ctx, utils.MessageResponse{
		Message: fmt.Sprintf("Episode %d and all its comments deleted successfully", number),
	})
}

// DeleteComment removes one comment from an episode.
func (e *EpisodeController) DeleteComment(ctx *gin.Context) {
	number, ok := episodeNumber(ctx)
	if !ok {
		return
	}
	commentID, err := strconv.ParseUint(ctx.Param("comment_id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40007, "invalid comment id")
		return
	}

	episodeID, err := e.svc.DeleteComment(ctx, number, uint(commentID))
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	e.invalidate(ctx)
	utils.Success(ctx, utils.MessageResponse{
		Message:   fmt.Sprintf("Comment %d deleted successfully", commentID),
		EpisodeID: &episodeID,
	})
}

func (e *EpisodeController) invalidate(ctx *gin.Context) {
	utils.InvalidateByPrefix(ctx, utils.EpisodeCachePrefix)
}

func episodeNumber(ctx *gin.Context) (int, bool) {
	n, err := strconv.Atoi(ctx.Param("episode_number"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40008, "episode number must be an integer")
		return 0, false
	}
	return n, true
}
