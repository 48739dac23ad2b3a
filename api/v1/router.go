package v1

import (
	"peo_admin/api/v1/auth"
	"peo_admin/api/v1/documents"
	"peo_admin/api/v1/events"
	"peo_admin/api/v1/middleware"
	"peo_admin/api/v1/posts"
	"peo_admin/api/v1/projects"
	"peo_admin/api/v1/users"
	"peo_admin/internal/cache"
	"peo_admin/internal/config"
	"peo_admin/internal/document"
	"peo_admin/internal/httpx"
	"peo_admin/internal/model"
	"peo_admin/internal/post"
	"peo_admin/internal/project"
	"peo_admin/internal/session"
	"peo_admin/internal/storage"
	"peo_admin/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps holds what the API needs from the process
type Deps struct {
	DB      *gorm.DB
	Config  *config.Config
	Queries cache.Queries
	Files   *storage.Local
	Events  events.Source
	Logger  *logrus.Entry
}

// SetupRouter sets up the API v1 routes
func SetupRouter(r *gin.Engine, d Deps) {
	sessions := session.NewService(d.DB)
	authHandler := auth.NewHandler(d.DB, sessions, d.Config, d.Logger)
	usersHandler := users.NewHandler(user.NewService(d.DB, d.Queries, d.Logger))
	projectsHandler := projects.NewHandler(project.NewService(d.DB, d.Queries, d.Logger))
	documentsHandler := documents.NewHandler(document.NewService(d.DB, d.Files, d.Queries, d.Logger), d.Files.MaxBytes())
	postsHandler := posts.NewHandler(post.NewService(d.DB, d.Queries, d.Logger))

	adminOnly := middleware.RequireRole(model.RoleSuperAdmin, model.RoleAdmin)

	v1 := r.Group("/api/v1")
	{
		// Public routes (no authentication required)
		v1.GET("/ping", pingHandler)
		v1.POST("/auth/login", authHandler.Login)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthRequired(sessions))
		{
			authGroup := protected.Group("/auth")
			{
				authGroup.POST("/logout", authHandler.Logout)
				authGroup.GET("/me", authHandler.Me)
			}

			usersGroup := protected.Group("/users")
			{
				usersGroup.GET("", usersHandler.List)
				usersGroup.GET("/stats", usersHandler.Stats)
				usersGroup.GET("/divisions", usersHandler.Divisions)
				usersGroup.POST("/password-strength", usersHandler.PasswordStrength)
				usersGroup.POST("/create", adminOnly, usersHandler.Create)
				usersGroup.POST("/update", adminOnly, usersHandler.Update)
				usersGroup.POST("/update-status", adminOnly, usersHandler.UpdateStatus)
				usersGroup.POST("/delete", adminOnly, usersHandler.Delete)
			}

			projectsGroup := protected.Group("/projects")
			{
				projectsGroup.GET("", projectsHandler.List)
				projectsGroup.GET("/stats", projectsHandler.Stats)
				projectsGroup.GET("/detail", projectsHandler.Detail)
				projectsGroup.POST("/create", projectsHandler.Create)
				projectsGroup.POST("/update", projectsHandler.Update)
				projectsGroup.POST("/delete", projectsHandler.Delete)
			}

			documentsGroup := protected.Group("/documents")
			{
				documentsGroup.GET("", documentsHandler.List)
				documentsGroup.GET("/stats", documentsHandler.Stats)
				documentsGroup.GET("/detail", documentsHandler.Detail)
				documentsGroup.GET("/download", documentsHandler.Download)
				documentsGroup.POST("/create", documentsHandler.Create)
				documentsGroup.POST("/update", documentsHandler.Update)
				documentsGroup.POST("/update-status", documentsHandler.UpdateStatus)
				documentsGroup.POST("/upload", documentsHandler.Upload)
				documentsGroup.POST("/delete", documentsHandler.Delete)
			}

			postsGroup := protected.Group("/posts")
			{
				postsGroup.GET("", postsHandler.List)
				postsGroup.POST("/create", postsHandler.Create)
				postsGroup.POST("/update", postsHandler.Update)
				postsGroup.POST("/delete", postsHandler.Delete)
			}

			protected.GET("/events", events.NewHandler(d.Events).List)
		}
	}
}

// pingHandler handles the ping request using unified response
func pingHandler(c *gin.Context) {
	httpx.OK(c, gin.H{
		"pong": true,
	})
}
