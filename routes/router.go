package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gdgjkuat/techdigest/config"
	"github.com/gdgjkuat/techdigest/controllers"
	"github.com/gdgjkuat/techdigest/imagehost"
	"github.com/gdgjkuat/techdigest/middleware"
	"github.com/gdgjkuat/techdigest/utils"
)

const apiVersion = "2.0.0"

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, cfg config.AppConfig, host imagehost.Host) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// handlers pass *gin.Context to the services; let it carry the request's deadline
	r.ContextWithFallback = true

	accessLog := utils.Logger
	if cfg.GinPath != "" {
		if gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress); err == nil {
			accessLog = gl
		} else {
			utils.Sugar.Warnf("gin access log disabled: %v", err)
		}
	}
	r.Use(utils.Ginzap(accessLog, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(accessLog, true))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "WWW-Authenticate"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		// browsers refuse credentials with a wildcard origin
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.PageViewRecorder(db, "/episodes/:episode_number", "/posts/post/:id"))

	if host == nil {
		host = imagehost.Unavailable{}
	}

	r.GET("/", welcome)
	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	episodeController := controllers.NewEpisodeController(db, host, cfg)
	postController := controllers.NewPostController(db, host, cfg)
	statsController := controllers.NewStatsController(db)

	r.GET("/stats", statsController.GetStats)
	r.GET("/stats/episodes/:episode_number", statsController.GetEpisodeStats)

	admin := middleware.AdminRequired(cfg.AdminAPIKey)
	maybeAdmin := middleware.AdminOptional(cfg.AdminAPIKey)
	limited := middleware.RateLimitMiddleware(cfg.RateLimitPerMinute)

	ep := r.Group("/episodes")
	ep.GET("", episodeController.ListEpisodes)
	ep.GET("/", episodeController.ListEpisodes)
	ep.GET("/:episode_number", episodeController.GetEpisode)
	ep.POST("/:episode_number/like", limited, episodeController.LikeEpisode)
	ep.POST("/:episode_number/comments", limited, episodeController.AddComment)

	ep.POST("", admin, episodeController.CreateEpisode)
	ep.POST("/", admin, episodeController.CreateEpisode)
	ep.POST("/upload-image", admin, episodeController.UploadImage)
	ep.PUT("/:episode_number", admin, episodeController.UpdateEpisode)
	ep.DELETE("/:episode_number", admin, episodeController.DeleteEpisode)
	ep.DELETE("/:episode_number/comments/:comment_id", admin, episodeController.DeleteComment)

	posts := r.Group("/posts")
	posts.POST("/createpost/", admin, postController.CreatePost)
	posts.GET("/posts/", postController.ListPublished)
	posts.GET("/all/", admin, postController.ListAll)

	post := posts.Group("/post/:id")
	post.GET("", maybeAdmin, postController.GetPost)
	post.PUT("", admin, postController.UpdatePost)
	post.DELETE("", admin, postController.DeletePost)
	post.GET("/comments", maybeAdmin, postController.ListComments)
	post.POST("/comments", limited, maybeAdmin, postController.AddComment)
	post.DELETE("/comments/:comment_id", admin, postController.DeleteComment)
	post.POST("/like", limited, maybeAdmin, postController.LikePost)
	post.GET("/likes", maybeAdmin, postController.ListLikes)
	post.DELETE("/likes/:like_id", admin, postController.DeleteLike)
	post.GET("/images", maybeAdmin, postController.ListImages)
	post.POST("/images", admin, postController.AddImage)
	post.DELETE("/images/:image_id", admin, postController.DeleteImage)
	post.POST("/featured-image", admin, postController.SetFeaturedImage)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}

func welcome(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"message": "Welcome to GDG JKUAT Tech Digest - Episode-Based Blog!",
		"status":  "active",
		"version": apiVersion,
		"features": []string{
			"Episode-based content management",
			"Public viewing and interaction",
			"Admin authentication with API key",
			"Image upload via Cloudinary",
			"Anonymous commenting system",
		},
		"api": gin.H{
			"episodes": "/episodes",
			"posts":    "/posts/posts/",
			"stats":    "/stats",
			"health":   "/health",
		},
	})
}
