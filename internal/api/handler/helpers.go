package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/qs3c/coach_go_server/internal/api/middleware"
	"github.com/qs3c/coach_go_server/internal/pkg/policy"
	"github.com/qs3c/coach_go_server/internal/pkg/response"
	"github.com/qs3c/coach_go_server/internal/service"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// currentActor 取当前登录用户，未登录时直接返回认证错误
func currentActor(c *gin.Context) (policy.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.AuthError(c, "")
		return policy.Actor{}, false
	}
	return actor, true
}

// pathID 解析路径中的 :id
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "无效的ID")
		return 0, false
	}
	return id, true
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

// handleError 把 service 层错误映射为响应码
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		response.PermissionError(c, err.Error())
	case errors.Is(err, service.ErrSubscriptionNotFound),
		errors.Is(err, service.ErrBundleNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrDeliveryNotFound),
		errors.Is(err, service.ErrNotificationNotFound),
		errors.Is(err, service.ErrUserNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrSubscriptionNotActive),
		errors.Is(err, service.ErrBundleInUse):
		response.ConflictError(c, err.Error())
	case errors.Is(err, service.ErrClientNotFound),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrUsernameExists),
		errors.Is(err, service.ErrInvalidFileType),
		errors.Is(err, service.ErrFileTooLarge):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		response.ServerError(c, err.Error())
	default:
		log.Error().Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Msg("unhandled service error")
		response.ServerError(c, "")
	}
}
