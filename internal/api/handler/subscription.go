package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/coach_go_server/internal/model/dto"
	"github.com/qs3c/coach_go_server/internal/pkg/policy"
	"github.com/qs3c/coach_go_server/internal/pkg/response"
	"github.com/qs3c/coach_go_server/internal/service"
)

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// Create 为客户开通订阅
// POST /api/v1/subscriptions
func (h *SubscriptionHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	sub, err := h.subscriptionService.Create(actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "创建成功", sub)
}

// List 订阅列表
// GET /api/v1/subscriptions?status=active&page=1&page_size=20
func (h *SubscriptionHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	page, pageSize := pagination(c)

	items, total, err := h.subscriptionService.List(actor, c.Query("status"), page, pageSize)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Get 订阅详情
// GET /api/v1/subscriptions/:id
func (h *SubscriptionHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.Get(actor, id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, sub)
}

// Pause 暂停订阅
// POST /api/v1/subscriptions/:id/pause
func (h *SubscriptionHandler) Pause(c *gin.Context) {
	h.transition(c, h.subscriptionService.Pause, "已暂停")
}

// Resume 恢复订阅
// POST /api/v1/subscriptions/:id/resume
func (h *SubscriptionHandler) Resume(c *gin.Context) {
	h.transition(c, h.subscriptionService.Resume, "已恢复")
}

// Cancel 取消订阅
// POST /api/v1/subscriptions/:id/cancel
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	h.transition(c, h.subscriptionService.Cancel, "已取消")
}

func (h *SubscriptionHandler) transition(
	c *gin.Context,
	op func(policy.Actor, int64) (*dto.SubscriptionInfo, error),
	message string,
) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	sub, err := op(actor, id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, message, sub)
}
