package routes

import (
	"github.com/gin-gonic/gin"

	"thesisflow/internal/app/controllers"
	"thesisflow/internal/app/models"
	"thesisflow/internal/middleware"
	"thesisflow/internal/pkg/ws"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	thesisController *controllers.ThesisController,
	feedbackController *controllers.FeedbackController,
	userController *controllers.UserController,
	notificationController *controllers.NotificationController,
	wsHandler *ws.Handler,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh-token", authController.RefreshToken)
		auth.POST("/logout", authController.Logout)
		auth.GET("/verify-email", authController.VerifyEmail)
		auth.POST("/resend-verification", authController.ResendVerification)
	}

	// Everything below requires a valid access token
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		theses := authenticated.Group("/theses")
		{
			theses.GET("", thesisController.List)
			theses.GET("/:id", thesisController.Get)
			theses.GET("/:id/file", thesisController.DownloadFile)
			theses.GET("/:id/feedback", feedbackController.ListByThesis)

			// Student-only thesis mutations; ownership is checked in the service
			thesesStudent := theses.Group("")
			thesesStudent.Use(authMiddleware.RoleRequired(string(models.RoleStudent)))
			{
				thesesStudent.POST("", thesisController.Create)
				thesesStudent.PUT("/:id", thesisController.Update)
				thesesStudent.PUT("/:id/file", thesisController.UploadFile)
			}

			// Status changes and assignment have per-role rules of their own,
			// so the policy decides instead of a blanket role gate
			theses.PUT("/:id/status", thesisController.UpdateStatus)
			theses.PUT("/:id/advisor", thesisController.AssignAdvisor)

			thesesAdvisor := theses.Group("")
			thesesAdvisor.Use(authMiddleware.RoleRequired(string(models.RoleAdvisor)))
			{
				thesesAdvisor.POST("/:id/feedback", feedbackController.Create)
			}

			thesesAdmin := theses.Group("")
			thesesAdmin.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
			{
				thesesAdmin.DELETE("/:id", thesisController.Delete)
			}
		}

		feedback := authenticated.Group("/feedback")
		{
			feedback.GET("/:id", feedbackController.Get)

			// Mutations are open to the authoring advisor and admins; the
			// policy decides, not a role gate
			feedback.PUT("/:id", feedbackController.Update)
			feedback.POST("/:id/comments", feedbackController.AddComment)
			feedback.PUT("/:id/comments/:commentId", feedbackController.UpdateComment)
			feedback.DELETE("/:id/comments/:commentId", feedbackController.RemoveComment)
		}

		users := authenticated.Group("/users")
		{
			users.GET("/me", userController.GetProfile)

			usersAdmin := users.Group("")
			usersAdmin.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
			{
				usersAdmin.GET("", userController.List)
				usersAdmin.GET("/stats", userController.Stats)
				usersAdmin.PUT("/:id/activate", userController.Activate)
				usersAdmin.PUT("/:id/deactivate", userController.Deactivate)
			}
		}

		notifications := authenticated.Group("/notifications")
		{
			notifications.GET("", notificationController.List)
			notifications.GET("/unread-count", notificationController.UnreadCount)
			notifications.PUT("/:id/read", notificationController.MarkRead)
			notifications.PUT("/read-all", notificationController.MarkAllRead)
		}

		authenticated.GET("/ws/notifications", wsHandler.HandleConnection)
	}
}
