package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gdgjkuat/techdigest/config"
	"github.com/gdgjkuat/techdigest/imagehost"
	"github.com/gdgjkuat/techdigest/middleware"
	"github.com/gdgjkuat/techdigest/services/posts"
	"github.com/gdgjkuat/techdigest/utils"
)

// PostController manages the legacy blog posts and their comments, likes and images.
type PostController struct {
	svc  *posts.Service
	host imagehost.Host
	cfg  config.AppConfig
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB, host imagehost.Host, cfg config.AppConfig) *PostController {
	return &PostController{svc: posts.NewService(db), host: host, cfg: cfg}
}

// CreatePost stores a new post.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Title         string  `json:"title" binding:"required,min=1,max=255"`
		Content       string  `json:"content" binding:"required"`
		AuthorName    string  `json:"author_name" binding:"max=100"`
		Excerpt       *string `json:"excerpt" binding:"omitempty,max=500"`
		FeaturedImage *string `json:"featured_image"`
		Tags          *string `json:"tags"`
		IsPublished   bool    `json:"is_published"`
		IsFeatured    *bool   `json:"is_featured"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid request payload")
		return
	}

	post, err := p.svc.Create(ctx, posts.CreateInput{
		Title:         req.Title,
		Content:       req.Content,
		AuthorName:    req.AuthorName,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		Tags:          req.Tags,
		IsPublished:   req.IsPublished,
		IsFeatured:    req.IsFeatured,
	})
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	p.invalidate(ctx)
	utils.Created(ctx, post)
}

// ListPublished returns published posts.
func (p *PostController) ListPublished(ctx *gin.Context) {
	skip, limit, err := parsePaging(ctx, posts.DefaultLimit)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	cacheKey := utils.CacheKey(utils.PostCachePrefix, "published:skip=%d:limit=%d", skip, limit)
	if b, ok := utils.CacheGetBytes(ctx, cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	list, err := p.svc.ListPublished(ctx, skip, limit)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.CacheSetJSON(ctx, cacheKey, list, 0)
	utils.Success(ctx, list)
}

// ListAll returns every post including drafts.
func (p *PostController) ListAll(ctx *gin.Context) {
	skip, limit, err := parsePaging(ctx, posts.DefaultLimit)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	list, err := p.svc.ListAll(ctx, skip, limit)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, list)
}

// GetPost returns a post. Drafts are visible to admins only.
func (p *PostController) GetPost(ctx *gin.Context) {
	post, err := p.svc.Get(ctx, ctx.Param("id"), middleware.IsAdmin(ctx))
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	middleware.SetPageViewPath(ctx, middleware.PostViewPath(post.PostID))
	utils.Success(ctx, post)
}

// UpdatePost changes the fields present in the body.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	var req struct {
		Title         *string `json:"title" binding:"omitempty,min=1,max=255"`
		Content       *string `json:"content" binding:"omitempty,min=1"`
		Excerpt       *string `json:"excerpt" binding:"omitempty,max=500"`
		FeaturedImage *string `json:"featured_image"`
		Tags          *string `json:"tags"`
		IsPublished   *bool   `json:"is_published"`
		IsFeatured    *bool   `json:"is_featured"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid request payload")
		return
	}

	post, err := p.svc.Update(ctx, ctx.Param("id"), posts.UpdateInput{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		Tags:          req.Tags,
		IsPublished:   req.IsPublished,
		IsFeatured:    req.IsFeatured,
	})
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	p.invalidate(ctx)
	utils.Success(ctx, post)
}

// DeletePost removes a post with all its children and hosted images.
func (p *PostController) DeletePost(ctx *gin.Context) {
	id := ctx.Param("id")
	images, err := p.svc.Delete(ctx, id)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	for _, img := range images {
		if img.PublicID != nil {
			p.deleteHosted(ctx, *img.PublicID)
		}
	}
	p.invalidate(ctx)
	utils.Success(ctx, utils.MessageResponse{Message: "Post " + id + " deleted successfully"})
}

// ListComments returns the comments of a visible post.
func (p *PostController) ListComments(ctx *gin.Context) {
	list, err := p.svc.ListComments(ctx, ctx.Param("id"), middleware.IsAdmin(ctx))
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, list)
}

// AddComment stores a reader comment.
func (p *PostController) AddComment(ctx *gin.Context) {
	var req struct {
		CommenterName  string  `json:"commenter_name" binding:"max=100"`
		CommenterEmail *string `json:"commenter_email" binding:"omitempty,email,max=100"`
		Content        string  `json:"content" binding:"required,min=1,max=1000"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40014, "invalid request payload")
		return
	}

	c, err := p.svc.AddComment(ctx, ctx.Param("id"), middleware.IsAdmin(ctx), posts.CommentInput{
		CommenterName:  req.CommenterName,
		CommenterEmail: req.CommenterEmail,
		Content:        req.Content,
	})
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	p.invalidate(ctx)
	utils.Created(ctx, c)
}

// DeleteComment removes one comment.
func (p *PostController) DeleteComment(ctx *gin.Context) {
	commentID := ctx.Param("comment_id")
	if err := p.svc.DeleteComment(ctx, ctx.Param("id"), commentID); err != nil {
		utils.Fail(ctx, err)
		return
	}
	p.invalidate(ctx)
	utils.Success(ctx, utils.MessageResponse{Message: "Comment " + commentID + " deleted successfully"})
}

// LikePost records a like.
func (p *PostController) LikePost(ctx *gin.Context) {
	like, err := p.svc.AddLike(ctx, ctx.Param("id"), middleware.IsAdmin(ctx))
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	p.invalidate(ctx)
	utils.Created(ctx, like)
}

// ListLikes returns the likes of a visible post.
func (p *PostController) ListLikes(ctx *gin.Context) {
	list, err := p.svc.ListLikes(ctx, ctx.Param("id"), middleware.IsAdmin(ctx))
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, list)
}

// DeleteLike removes one like.
func (p *PostController) DeleteLike(ctx *gin.Context) {
	likeID := ctx.Param("like_id")
	if err := p.svc.DeleteLike(ctx, ctx.Param("id"), likeID); err != nil {
		utils.Fail(ctx, err)
		return
	}
	p.invalidate(ctx)
	utils.Success(ctx, utils.MessageResponse{Message: "Like " + likeID + " deleted successfully"})
}

// ListImages returns the images attached to a visible post.
func (p *PostController) ListImages(ctx *gin.Context) {
	list, err := p.svc.ListImages(ctx, ctx.Param("id"), middleware.IsAdmin(ctx))
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, list)
}

// AddImage attaches an image. A multipart request uploads the file to the hosting
// backend first; a JSON request references an already hosted URL.
func (p *PostController) AddImage(ctx *gin.Context) {
	id := ctx.Param("id")
	var in posts.ImageInput

	if strings.HasPrefix(ctx.ContentType(), "multipart/") {
		// confirm the post exists before spending an upload on it
		if _, err := p.svc.Get(ctx, id, true); err != nil {
			utils.Fail(ctx, err)
			return
		}
		file, err := readImageUpload(ctx, p.cfg.MaxUploadMB)
		if err != nil {
			utils.Fail(ctx, err)
			return
		}
		res := imagehost.UploadContent(ctx, p.host, p.cfg.ImageFolder, file.Data, file.Filename, id)
		if !res.OK() {
			utils.Fail(ctx, utils.Internal(50032, res.Failure, "Failed to upload image: %s", res.Failure.Message))
			return
		}
		alt := strings.TrimSpace(ctx.PostForm("alt_text"))
		if alt == "" {
			alt = imagehost.AltTextFromFilename(file.Filename)
		}
		in = posts.ImageInput{ImageURL: res.Asset.URL, AltText: &alt, PublicID: &res.Asset.PublicID}
	} else {
		var req struct {
			ImageURL string  `json:"image_url" binding:"required"`
			AltText  *string `json:"alt_text"`
			PublicID *string `json:"public_id"`
		}
		if err := ctx.ShouldBindJSON(&req); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40015, "image_url is required")
			return
		}
		in = posts.ImageInput{ImageURL: req.ImageURL, AltText: req.AltText, PublicID: req.PublicID}
	}

	img, err := p.svc.AddImage(ctx, id, in)
	if err != nil {
		if in.PublicID != nil {
			p.deleteHosted(ctx, *in.PublicID)
		}
		utils.Fail(ctx, err)
		return
	}
	utils.Created(ctx, img)
}

// DeleteImage removes an image record and its hosted asset.
func (p *PostController) DeleteImage(ctx *gin.Context) {
	imageID := ctx.Param("image_id")
	img, err := p.svc.DeleteImage(ctx, ctx.Param("id"), imageID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	if img.PublicID != nil {
		p.deleteHosted(ctx, *img.PublicID)
	}
	utils.Success(ctx, utils.MessageResponse{Message: "Image " + imageID + " deleted successfully"})
}

// SetFeaturedImage uploads a featured image and assigns it to the post.
func (p *PostController) SetFeaturedImage(ctx *gin.Context) {
	id := ctx.Param("id")
	if _, err := p.svc.Get(ctx, id, true); err != nil {
		utils.Fail(ctx, err)
		return
	}
	file, err := readImageUpload(ctx, p.cfg.MaxUploadMB)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	res := imagehost.UploadFeatured(ctx, p.host, p.cfg.ImageFolder, file.Data, file.Filename, id)
	if !res.OK() {
		utils.Fail(ctx, utils.Internal(50033, res.Failure, "Failed to upload image: %s", res.Failure.Message))
		return
	}
	post, err := p.svc.SetFeaturedImage(ctx, id, res.Asset.URL)
	if err != nil {
		p.deleteHosted(ctx, res.Asset.PublicID)
		utils.Fail(ctx, err)
		return
	}
	p.invalidate(ctx)
	utils.Success(ctx, gin.H{
		"message":         "Featured image updated successfully",
		"post":            post,
		"public_id":       res.Asset.PublicID,
		"responsive_urls": imagehost.ResponsiveURLs(p.host, res.Asset.PublicID),
	})
}

func (p *PostController) deleteHosted(ctx *gin.Context, publicID string) {
	if !p.host.Delete(ctx, publicID) {
		utils.Logger.Warn("hosted image not deleted", zap.String("public_id", publicID))
	}
}

func (p *PostController) invalidate(ctx *gin.Context) {
	utils.InvalidateByPrefix(ctx, utils.PostCachePrefix)
}
