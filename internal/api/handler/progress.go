package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/coach_go_server/internal/pkg/response"
	"github.com/qs3c/coach_go_server/internal/service"
)

type ProgressHandler struct {
	progressService *service.ProgressService
}

func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
	}
}

// Get 订阅的消耗进度
// GET /api/v1/subscriptions/:id/progress
func (h *ProgressHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	snap, err := h.progressService.GetProgress(c.Request.Context(), actor, id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, snap)
}

// ListTrainer 教练名下所有进行中订阅的进度
// GET /api/v1/progress
func (h *ProgressHandler) ListTrainer(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	snaps, err := h.progressService.ListTrainerProgress(c.Request.Context(), actor)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{
		"items": snaps,
		"total": len(snaps),
	})
}
