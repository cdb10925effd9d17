package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/publora/publora-backend/internal/handler"
	"github.com/publora/publora-backend/internal/middleware"
	"github.com/publora/publora-backend/pkg/jwt"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	postHandler *handler.PostHandler,
	approvalHandler *handler.ApprovalHandler,
	workflowHandler *handler.WorkflowHandler,
	revisionHandler *handler.RevisionHandler,
	ruleHandler *handler.RuleHandler,
	notificationHandler *handler.NotificationHandler,
	mediaHandler *handler.MediaHandler,
	jwtManager *jwt.Manager,
) {
	api := router.Group("/api/v1", middleware.JWTAuth(jwtManager))

	// Posts
	posts := api.Group("/posts")
	{
		posts.GET("", postHandler.ListPosts)
		posts.POST("", postHandler.CreatePost)
		posts.GET("/:id", postHandler.GetPost)
		posts.PUT("/:id", postHandler.UpdatePost)
		posts.DELETE("/:id", postHandler.DeletePost)

		// Approval workflow on a single post
		approval := posts.Group("/:id/approval")
		{
			approval.POST("", approvalHandler.EnsureAssignment)
			approval.GET("", approvalHandler.GetAssignment)
			approval.POST("/decision", approvalHandler.Decide)
			approval.POST("/resubmit", approvalHandler.Resubmit)
			approval.GET("/history", approvalHandler.GetHistory)
		}

		// Revision history
		revisions := posts.Group("/:id/revisions")
		{
			revisions.GET("", revisionHandler.ListRevisions)
			revisions.POST("/:revision_id/restore", revisionHandler.RestoreRevision)
		}
	}

	// Cross-post approval operations
	approvals := api.Group("/approvals")
	approvals.POST("/bulk-decision", approvalHandler.BulkDecide)
	approvals.GET("/dashboard", approvalHandler.Dashboard)

	// Workflow definitions
	workflows := api.Group("/workflows")
	workflows.GET("", workflowHandler.ListWorkflows)
	workflows.POST("", workflowHandler.CreateWorkflow)
	workflows.GET("/:id", workflowHandler.GetWorkflow)
	workflows.DELETE("/:id", workflowHandler.DeactivateWorkflow)

	// Approval rules
	rules := api.Group("/rules")
	rules.GET("", ruleHandler.ListRules)
	rules.POST("", ruleHandler.CreateRule)
	rules.DELETE("/:id", ruleHandler.DeleteRule)

	// Notification center
	notifications := api.Group("/notifications")
	notifications.GET("", notificationHandler.GetList)
	notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
	notifications.POST("/:id/read", notificationHandler.MarkAsRead)
	notifications.POST("/read-all", notificationHandler.MarkAllAsRead)

	// Media uploads
	api.POST("/media", mediaHandler.Upload)
}
