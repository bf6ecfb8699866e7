package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qs3c/coach_go_server/config"
	"github.com/qs3c/coach_go_server/internal/api"
	"github.com/qs3c/coach_go_server/internal/api/handler"
	"github.com/qs3c/coach_go_server/internal/database"
	"github.com/qs3c/coach_go_server/internal/pkg/cron"
	"github.com/qs3c/coach_go_server/internal/pkg/logger"
	"github.com/qs3c/coach_go_server/internal/pkg/oss"
	"github.com/qs3c/coach_go_server/internal/pkg/pubsub"
	"github.com/qs3c/coach_go_server/internal/pkg/queue"
	"github.com/qs3c/coach_go_server/internal/pkg/ws"
	"github.com/qs3c/coach_go_server/internal/repository"
	"github.com/qs3c/coach_go_server/internal/service"
)

// 已读提醒保留天数
const notificationRetainDays = 30

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log, "coach-server")

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	log.Info().Msg("database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	log.Info().Msg("redis connected")

	// 初始化 OSS（可选）
	var storage service.ObjectStorage
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Warn().Err(err).Msg("failed to init OSS client, uploads disabled")
		} else {
			storage = ossClient
			log.Info().Msg("OSS client initialized")
		}
	}

	alertQueue := queue.NewQueue(rdb, cfg.Queue.AlertQueue)

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	bundleRepo := repository.NewBundleRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	sessionRepo := repository.NewTrainingSessionRepository(db)
	deliveryRepo := repository.NewDeliveryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, cfg)
	userService := service.NewUserService(userRepo, storage, cfg)
	bundleService := service.NewBundleService(bundleRepo, storage, cfg)
	subscriptionService := service.NewSubscriptionService(subRepo, userRepo, bundleRepo)
	progressService := service.NewProgressService(subRepo, bundleRepo, deliveryRepo, alertQueue, cfg.Progress)
	sessionService := service.NewTrainingSessionService(sessionRepo, subRepo, progressService)
	deliveryService := service.NewDeliveryService(deliveryRepo, subRepo, progressService)
	notificationService := service.NewNotificationService(notificationRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// WebSocket Hub，worker 发布的提醒经 Redis 转发给在线用户
	wsHub := ws.NewHub()
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(ctx, func(evt *pubsub.AlertEvent) {
			if err := wsHub.SendToUser(evt.UserID, &ws.Message{Type: evt.Type, Data: evt}); err != nil {
				log.Warn().Err(err).Int64("user_id", evt.UserID).Msg("failed to push alert")
			}
		})
		if err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("alert subscriber stopped")
		}
	}()

	// 定时任务：扫描进行中的订阅、清理已读提醒
	cronService := cron.NewService(progressService, notificationService, cfg.Progress.SweepInterval, notificationRetainDays)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Router
	router := api.NewRouter(api.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		User:         handler.NewUserHandler(userService),
		Bundle:       handler.NewBundleHandler(bundleService),
		Subscription: handler.NewSubscriptionHandler(subscriptionService),
		Session:      handler.NewSessionHandler(sessionService),
		Delivery:     handler.NewDeliveryHandler(deliveryService),
		Progress:     handler.NewProgressHandler(progressService),
		Notification: handler.NewNotificationHandler(notificationService),
		WebSocket:    handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret, cfg.CORS.AllowedOrigins),
		Health:       handler.NewHealthHandler(db, rdb),
	}, cfg)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router.Setup(),
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("received shutdown signal")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}
