package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/publora/publora-backend/internal/common"
	"github.com/publora/publora-backend/internal/middleware"
	"github.com/publora/publora-backend/internal/service"
	"github.com/publora/publora-backend/pkg/ginutil"
)

// NotificationHandler handles HTTP requests for the in-app notification center
type NotificationHandler struct {
	service service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// GetList godoc
// @Summary      List the caller's notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page number"     default(1)
// @Param        limit  query  int  false  "Items per page"  default(20)
// @Success      200  {object}  common.APIResponse{data=domain.NotificationListResponse}
// @Failure      500  {object}  common.APIResponse
// @Router       /notifications [get]
func (h *NotificationHandler) GetList(c *gin.Context) {
	recipientID := middleware.GetUserID(c)
	page := ginutil.QueryInt(c, "page", 1)
	limit := ginutil.QueryInt(c, "limit", 20)

	data, err := h.service.GetList(recipientID, page, limit)
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to fetch notifications", err)
		return
	}

	common.SuccessResponse(c, data, nil)
}

// GetUnreadCount godoc
// @Summary      Count unread notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.APIResponse
// @Router       /notifications/unread-count [get]
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	recipientID := middleware.GetUserID(c)

	count, err := h.service.GetUnreadCount(recipientID)
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to count notifications", err)
		return
	}

	common.SuccessResponse(c, gin.H{"count": count}, nil)
}

// MarkAsRead godoc
// @Summary      Mark a notification as read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Notification ID"
// @Success      204  "No Content"
// @Failure      404  {object}  common.APIResponse
// @Router       /notifications/{id}/read [post]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid notification ID", err)
		return
	}

	recipientID := middleware.GetUserID(c)
	err = h.service.MarkAsRead(recipientID, id)
	if errors.Is(err, common.ErrNotFound) {
		common.ErrorResponse(c, 404, "Notification not found", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to mark notification as read", err)
		return
	}

	c.Status(204)
}

// MarkAllAsRead godoc
// @Summary      Mark all notifications as read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      204  "No Content"
// @Router       /notifications/read-all [post]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	recipientID := middleware.GetUserID(c)

	if err := h.service.MarkAllAsRead(recipientID); err != nil {
		common.ErrorResponse(c, 500, "Failed to mark notifications as read", err)
		return
	}

	c.Status(204)
}
