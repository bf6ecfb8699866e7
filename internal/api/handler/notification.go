package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/coach_go_server/internal/pkg/response"
	"github.com/qs3c/coach_go_server/internal/service"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// List 我的提醒
// GET /api/v1/notifications?unread=true&page=1&page_size=20
func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	page, pageSize := pagination(c)
	unreadOnly := c.Query("unread") == "true"

	items, total, err := h.notificationService.List(actor.UserID, unreadOnly, page, pageSize)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// UnreadCount 未读数
// GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	count, err := h.notificationService.UnreadCount(actor.UserID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"unread": count})
}

// MarkRead 标记已读
// POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(actor.UserID, id); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, nil)
}

// MarkAllRead 全部已读
// POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	n, err := h.notificationService.MarkAllRead(actor.UserID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"updated": n})
}
