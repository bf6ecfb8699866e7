package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/coach_go_server/internal/model/dto"
	"github.com/qs3c/coach_go_server/internal/pkg/response"
	"github.com/qs3c/coach_go_server/internal/service"
)

type BundleHandler struct {
	bundleService *service.BundleService
}

func NewBundleHandler(bundleService *service.BundleService) *BundleHandler {
	return &BundleHandler{
		bundleService: bundleService,
	}
}

// Create 创建套餐
// POST /api/v1/bundles
func (h *BundleHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.CreateBundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	bundle, err := h.bundleService.Create(actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "创建成功", bundle)
}

// List 我的套餐
// GET /api/v1/bundles?status=published&page=1&page_size=20
func (h *BundleHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	page, pageSize := pagination(c)

	items, total, err := h.bundleService.List(actor, c.Query("status"), page, pageSize)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Get 套餐详情
// GET /api/v1/bundles/:id
func (h *BundleHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	bundle, err := h.bundleService.Get(actor, id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, bundle)
}

// Update 更新套餐
// PUT /api/v1/bundles/:id
func (h *BundleHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateBundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	bundle, err := h.bundleService.Update(actor, id, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", bundle)
}

// Delete 删除套餐
// DELETE /api/v1/bundles/:id
func (h *BundleHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.bundleService.Delete(actor, id); err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// UploadCover 上传套餐封面
// POST /api/v1/bundles/:id/cover
func (h *BundleHandler) UploadCover(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.ParamError(c, "请选择文件")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.ServerError(c, "文件读取失败")
		return
	}
	defer f.Close()

	coverURL, err := h.bundleService.UploadCover(actor, id, f, file.Filename)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "上传成功", gin.H{
		"cover_url": coverURL,
	})
}
