package api

import (
	"folderr-backend/internal/api/handlers"
	"folderr-backend/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all application routes
func SetupRoutes(router *gin.Engine) {
	router.GET("/health", handlers.HealthCheck)

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		setupPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth())
		setupProtectedRoutes(protected)
	}
}

func setupPublicRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
	}
}

func setupProtectedRoutes(rg *gin.RouterGroup) {
	account := rg.Group("/account")
	{
		account.GET("/", handlers.GetProfile)
		account.PUT("/", handlers.UpdateProfile)
		account.PUT("/membership", handlers.SetMembership)
		account.POST("/2fa", handlers.EnrollTOTP)
		account.POST("/2fa/:id/activate", handlers.ActivateTOTP)
		account.DELETE("/2fa/:id", handlers.DeleteTOTP)
	}

	folders := rg.Group("/folders")
	{
		folders.POST("/", handlers.CreateFolder)
		folders.GET("/", handlers.ListFolders)
		folders.GET("/:id", handlers.GetFolder)
		folders.PUT("/:id", handlers.UpdateFolder)
		folders.DELETE("/:id", handlers.DeleteFolder)

		folders.GET("/:id/files", handlers.ListFiles)
		folders.GET("/:id/videos", handlers.ListVideos)
		folders.GET("/:id/notes", handlers.ListNotes)

		folders.POST("/:id/transfer", handlers.TransferFolder)
		folders.POST("/:id/transfer/claim", handlers.ClaimTransfer)
		folders.DELETE("/:id/transfer", handlers.CancelTransfer)
	}

	files := rg.Group("/files")
	{
		files.POST("/upload", handlers.UploadFile)
		files.GET("/:id/download", handlers.DownloadFile)
		files.DELETE("/:id", handlers.DeleteFile)
	}

	videos := rg.Group("/videos")
	{
		videos.POST("/upload", handlers.UploadVideo)
		videos.DELETE("/:id", handlers.DeleteVideo)
	}

	shares := rg.Group("/shares")
	{
		shares.POST("/", handlers.CreateShare)
		shares.GET("/", handlers.ListShares)
		shares.DELETE("/:id", handlers.DeleteShare)
	}

	notifications := rg.Group("/notifications")
	{
		notifications.GET("/", handlers.ListShareNotifications)
		notifications.POST("/:id/seen", handlers.MarkNotificationSeen)
	}

	notes := rg.Group("/notes")
	{
		notes.POST("/", handlers.CreateNote)
		notes.DELETE("/:id", handlers.DeleteNote)
	}
}
