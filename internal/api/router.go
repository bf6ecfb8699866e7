package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qs3c/coach_go_server/config"
	"github.com/qs3c/coach_go_server/internal/api/handler"
	"github.com/qs3c/coach_go_server/internal/api/middleware"
	"github.com/qs3c/coach_go_server/internal/pkg/policy"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Bundle       *handler.BundleHandler
	Subscription *handler.SubscriptionHandler
	Session      *handler.SessionHandler
	Delivery     *handler.DeliveryHandler
	Progress     *handler.ProgressHandler
	Notification *handler.NotificationHandler
	WebSocket    *handler.WebSocketHandler
	Health       *handler.HealthHandler
}

type Router struct {
	h   Handlers
	cfg *config.Config
}

func NewRouter(h Handlers, cfg *config.Config) *Router {
	return &Router{
		h:   h,
		cfg: cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger())
	engine.Use(middleware.Metrics())
	engine.Use(middleware.CORS(r.cfg.CORS))

	if r.h.Health != nil {
		engine.GET("/health", r.h.Health.Health)
	}
	if r.cfg.Metrics.Enabled {
		engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := engine.Group("/api/v1")
	{
		// WebSocket
		if r.h.WebSocket != nil {
			api.GET("/ws", r.h.WebSocket.Handle)
		}

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.h.Auth.Register)
			auth.POST("/login", r.h.Auth.Login)
		}

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 用户
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.h.User.GetProfile)
				user.PUT("/profile", r.h.User.UpdateProfile)
				user.POST("/avatar", r.h.User.UploadAvatar)
			}

			// 套餐（读取对所有角色开放，写入限教练）
			bundles := authenticated.Group("/bundles")
			{
				bundles.GET("/:id", r.h.Bundle.Get)

				trainerOnly := bundles.Group("")
				trainerOnly.Use(middleware.RequireRole(policy.RoleTrainer, policy.RoleAdmin))
				trainerOnly.POST("", r.h.Bundle.Create)
				trainerOnly.GET("", r.h.Bundle.List)
				trainerOnly.PUT("/:id", r.h.Bundle.Update)
				trainerOnly.DELETE("/:id", r.h.Bundle.Delete)
				trainerOnly.POST("/:id/cover", r.h.Bundle.UploadCover)
			}

			// 订阅
			subs := authenticated.Group("/subscriptions")
			{
				subs.POST("", r.h.Subscription.Create)
				subs.GET("", r.h.Subscription.List)
				subs.GET("/:id", r.h.Subscription.Get)
				subs.POST("/:id/pause", r.h.Subscription.Pause)
				subs.POST("/:id/resume", r.h.Subscription.Resume)
				subs.POST("/:id/cancel", r.h.Subscription.Cancel)

				subs.GET("/:id/progress", r.h.Progress.Get)

				subs.POST("/:id/sessions", r.h.Session.Create)
				subs.GET("/:id/sessions", r.h.Session.List)

				subs.POST("/:id/deliveries", r.h.Delivery.Create)
				subs.GET("/:id/deliveries", r.h.Delivery.List)
			}

			// 课时
			authenticated.POST("/sessions/:id/complete", r.h.Session.Complete)
			authenticated.POST("/sessions/:id/cancel", r.h.Session.Cancel)

			// 交付
			authenticated.PUT("/deliveries/:id/status", r.h.Delivery.UpdateStatus)

			// 教练总览
			authenticated.GET("/progress",
				middleware.RequireRole(policy.RoleTrainer),
				r.h.Progress.ListTrainer,
			)

			// 提醒
			notifications := authenticated.Group("/notifications")
			{
				notifications.GET("", r.h.Notification.List)
				notifications.GET("/unread-count", r.h.Notification.UnreadCount)
				notifications.POST("/read-all", r.h.Notification.MarkAllRead)
				notifications.POST("/:id/read", r.h.Notification.MarkRead)
			}
		}
	}

	return engine
}
