package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/coach_go_server/internal/model/dto"
	"github.com/qs3c/coach_go_server/internal/pkg/response"
	"github.com/qs3c/coach_go_server/internal/service"
)

type SessionHandler struct {
	sessionService *service.TrainingSessionService
}

func NewSessionHandler(sessionService *service.TrainingSessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

// Create 排课
// POST /api/v1/subscriptions/:id/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	subscriptionID, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	session, err := h.sessionService.Schedule(actor, subscriptionID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "排课成功", session)
}

// List 订阅下的课时
// GET /api/v1/subscriptions/:id/sessions?status=scheduled
func (h *SessionHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	subscriptionID, ok := pathID(c)
	if !ok {
		return
	}
	page, pageSize := pagination(c)

	items, total, err := h.sessionService.List(actor, subscriptionID, c.Query("status"), page, pageSize)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Complete 完成课时
// POST /api/v1/sessions/:id/complete
func (h *SessionHandler) Complete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	// body 可选
	var req dto.CompleteSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ParamError(c, err.Error())
			return
		}
	}

	session, err := h.sessionService.Complete(actor, id, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "课时已完成", session)
}

// Cancel 取消课时
// POST /api/v1/sessions/:id/cancel
func (h *SessionHandler) Cancel(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Cancel(actor, id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "课时已取消", session)
}
