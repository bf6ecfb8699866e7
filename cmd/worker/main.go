package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/qs3c/coach_go_server/config"
	"github.com/qs3c/coach_go_server/internal/database"
	"github.com/qs3c/coach_go_server/internal/pkg/logger"
	"github.com/qs3c/coach_go_server/internal/pkg/pubsub"
	"github.com/qs3c/coach_go_server/internal/pkg/queue"
	"github.com/qs3c/coach_go_server/internal/repository"
	"github.com/qs3c/coach_go_server/internal/worker"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log, "coach-worker")

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	log.Info().Msg("database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	log.Info().Msg("redis connected")

	// 初始化 Queue 和 Pub/Sub
	alertQueue := queue.NewQueue(rdb, cfg.Queue.AlertQueue)
	publisher := pubsub.NewPublisher(rdb)

	processor := worker.NewProcessor(repository.NewNotificationRepository(db), publisher)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	log.Info().
		Str("queue", cfg.Queue.AlertQueue).
		Int("max_workers", cfg.Queue.MaxWorkers).
		Msg("worker started")

	worker.Run(ctx, alertQueue, processor, cfg.Queue.MaxWorkers)
	log.Info().Msg("worker shutdown complete")
}
