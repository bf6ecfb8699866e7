package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/coach_go_server/internal/model/dto"
	"github.com/qs3c/coach_go_server/internal/pkg/response"
	"github.com/qs3c/coach_go_server/internal/service"
)

type DeliveryHandler struct {
	deliveryService *service.DeliveryService
}

func NewDeliveryHandler(deliveryService *service.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{
		deliveryService: deliveryService,
	}
}

// Create 登记交付
// POST /api/v1/subscriptions/:id/deliveries
func (h *DeliveryHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	subscriptionID, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.CreateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	delivery, err := h.deliveryService.Create(actor, subscriptionID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "创建成功", delivery)
}

// List 订阅下的交付记录
// GET /api/v1/subscriptions/:id/deliveries?status=delivered
func (h *DeliveryHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	subscriptionID, ok := pathID(c)
	if !ok {
		return
	}
	page, pageSize := pagination(c)

	items, total, err := h.deliveryService.List(actor, subscriptionID, c.Query("status"), page, pageSize)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// UpdateStatus 交付状态流转
// PUT /api/v1/deliveries/:id/status
func (h *DeliveryHandler) UpdateStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateDeliveryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	delivery, err := h.deliveryService.UpdateStatus(actor, id, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", delivery)
}
