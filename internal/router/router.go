// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/payhub-backend/internal/config"
	"github.com/javajoker/payhub-backend/internal/handlers"
	"github.com/javajoker/payhub-backend/internal/middleware"
	"github.com/javajoker/payhub-backend/internal/repository"
	"github.com/javajoker/payhub-backend/internal/services"
	"github.com/javajoker/payhub-backend/internal/utils"
)

// Initialize wires services and handlers onto a new engine. The returned
// drain function blocks until background analytics writes have finished.
func Initialize(cfg *config.Config, repo repository.Repository, store services.ObjectStore, provider services.PaymentProvider) (*gin.Engine, func()) {
	// Initialize services
	analyticsService := services.NewAnalyticsService(repo)
	notificationService := services.NewNotificationService(repo, cfg)

	authService := services.NewAuthService(repo, cfg)
	userService := services.NewUserService(repo)
	projectService := services.NewProjectService(repo, store, analyticsService, notificationService)
	fileService := services.NewFileService(repo, store, cfg)
	commentService := services.NewCommentService(repo, analyticsService, notificationService)
	paymentService := services.NewPaymentService(repo, provider, cfg, analyticsService, notificationService)
	messageService := services.NewMessageService(repo)
	adminService := services.NewAdminService(repo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, notificationService)
	projectHandler := handlers.NewProjectHandler(projectService)
	fileHandler := handlers.NewFileHandler(fileService, cfg.Storage.MaxUploadMB)
	commentHandler := handlers.NewCommentHandler(commentService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	messageHandler := handlers.NewMessageHandler(messageService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(repo.AuditLogs()))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		users := v1.Group("/users")
		users.Use(middleware.AuthRequired())
		{
			users.PUT("/profile", userHandler.UpdateProfile)
			users.PUT("/password", userHandler.ChangePassword)
		}

		v1.GET("/storefronts/:subdomain", middleware.PreviewRateLimit(), userHandler.GetStorefront)

		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthRequired())
		{
			notifications.GET("", userHandler.ListNotifications)
			notifications.PUT("/:id/read", userHandler.MarkNotificationRead)
		}

		projects := v1.Group("/projects")
		{
			// Freelancer routes
			owner := projects.Group("")
			owner.Use(middleware.AuthRequired())
			{
				owner.POST("", middleware.FreelancerRequired(), projectHandler.CreateProject)
				owner.GET("", projectHandler.ListMyProjects)
				owner.PUT("/:id", projectHandler.UpdateProject)
				owner.DELETE("/:id", projectHandler.DeleteProject)
				owner.POST("/:id/publish", projectHandler.Publish)
				owner.POST("/:id/deliver", projectHandler.Deliver)
				owner.POST("/:id/cancel", projectHandler.Cancel)
				owner.POST("/:id/files", middleware.UploadRateLimit(), fileHandler.Upload)
				owner.GET("/:id/analytics", analyticsHandler.ProjectSummary)
				owner.GET("/:id/payments", paymentHandler.ListProjectPayments)
			}

			// Preview routes, open to clients identified by email
			viewer := projects.Group("")
			viewer.Use(middleware.OptionalAuth(), middleware.PreviewRateLimit())
			{
				viewer.GET("/:id", projectHandler.GetProject)
				viewer.POST("/:id/approve", projectHandler.Approve)
				viewer.GET("/:id/files", fileHandler.ListFiles)
				viewer.GET("/:id/comments", commentHandler.ListComments)
				viewer.POST("/:id/comments", commentHandler.CreateComment)
				viewer.POST("/:id/analytics", analyticsHandler.Track)
				viewer.POST("/:id/playback", analyticsHandler.ReportPlayback)
				viewer.GET("/:id/messages", messageHandler.List)
				viewer.POST("/:id/messages", messageHandler.Send)
				viewer.PUT("/:id/messages/read", messageHandler.MarkRead)
				viewer.POST("/:id/checkout", paymentHandler.CreateCheckout)
			}
		}

		files := v1.Group("/files")
		{
			files.GET("/:id", middleware.OptionalAuth(), middleware.PreviewRateLimit(), fileHandler.Retrieve)
			files.POST("/:id/preview", middleware.AuthRequired(), middleware.UploadRateLimit(), fileHandler.UploadPreview)
		}

		v1.PUT("/comments/:id/resolve", middleware.AuthRequired(), commentHandler.SetResolved)

		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired(), middleware.FreelancerRequired())
		{
			payments.GET("/earnings", paymentHandler.GetEarnings)
			payments.GET("/history", paymentHandler.GetPaymentHistory)
		}

		// Provider callbacks authenticate by signature
		v1.POST("/webhooks/stripe", paymentHandler.Webhook)

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard/stats", adminHandler.GetDashboardStats)
			admin.GET("/users", adminHandler.ListUsers)
			admin.PUT("/users/:id/role", adminHandler.UpdateUserRole)
			admin.PUT("/users/:id/commission", adminHandler.UpdateUserCommission)
			admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
			admin.GET("/projects", adminHandler.ListProjects)
		}
	}

	return r, analyticsService.Wait
}
