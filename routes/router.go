package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tdlabs/dms/config"
	"github.com/tdlabs/dms/controllers"
	"github.com/tdlabs/dms/middleware"
	"github.com/tdlabs/dms/services"
	"github.com/tdlabs/dms/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, fileService *services.FileService) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	// Multipart bodies can carry several attachments; cap the whole request.
	r.MaxMultipartMemory = 32 << 20
	r.Use(requestSizeLimit(int64(cfg.MaxRequestSizeMB) << 20))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(services.NewUserService(db))
	folderController := controllers.NewFolderController(services.NewFolderService(db))
	documentController := controllers.NewDocumentController(services.NewDocumentService(db, fileService))
	postController := controllers.NewPostController(services.NewPostService(db, fileService))
	commentController := controllers.NewCommentController(services.NewCommentService(db))
	fileController := controllers.NewFileController(fileService)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/signup", authController.Signup)
	authGroup.POST("/login", authController.Login)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())

	protected.POST("/folders", folderController.Create)
	protected.GET("/folders", folderController.List)
	protected.PUT("/folders/:id", folderController.Rename)
	protected.DELETE("/folders/:id", folderController.Delete)

	protected.POST("/documents", documentController.Create)
	protected.GET("/documents", documentController.List)
	protected.GET("/documents/starred", documentController.ListStarred)
	protected.GET("/documents/recent", documentController.ListRecent)
	protected.GET("/documents/folder/:folderId", documentController.ListByFolder)
	protected.GET("/documents/:id", documentController.Get)
	protected.PUT("/documents/:id", documentController.Update)
	protected.DELETE("/documents/:id", documentController.Delete)

	protected.POST("/posts", postController.Create)
	protected.GET("/posts", postController.List)
	protected.GET("/posts/search", postController.Search)
	protected.GET("/posts/:id", postController.Get)
	protected.PUT("/posts/:id", postController.Update)
	protected.DELETE("/posts/:id", postController.Delete)

	protected.GET("/comments/:postId", commentController.ListByPost)
	protected.POST("/comments", commentController.Create)
	protected.PUT("/comments/:id", commentController.Update)
	protected.DELETE("/comments/:id", commentController.Delete)

	protected.POST("/files/upload", fileController.Upload)
	protected.GET("/files/download/:id", fileController.Download)
	protected.DELETE("/files/:id", fileController.Delete)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}

func requestSizeLimit(max int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if max > 0 {
			ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)
		}
		ctx.Next()
	}
}
