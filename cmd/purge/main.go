package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qs3c/coach_go_server/config"
	"github.com/qs3c/coach_go_server/internal/database"
	"github.com/qs3c/coach_go_server/internal/pkg/logger"
	"github.com/qs3c/coach_go_server/internal/pkg/queue"
	"github.com/qs3c/coach_go_server/internal/repository"
	"github.com/qs3c/coach_go_server/internal/service"
)

var (
	dryRun     = flag.Bool("dry-run", true, "Dry run mode, only count what would be deleted")
	retainDays = flag.Int("retain-days", 30, "Days to keep read notifications")
	sweep      = flag.Bool("sweep", false, "Recompute progress for all active subscriptions and enqueue alerts")
)

func main() {
	flag.Parse()

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log, "coach-purge")
	log.Info().Bool("dry_run", *dryRun).Int("retain_days", *retainDays).Msg("starting purge task")

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	notificationRepo := repository.NewNotificationRepository(db)
	cutoff := time.Now().AddDate(0, 0, -*retainDays)

	// 1. 清理过期的已读提醒
	if *dryRun {
		n, err := notificationRepo.CountReadBefore(cutoff)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to count read notifications")
		}
		log.Info().Int64("count", n).Time("before", cutoff).
			Msg("DRY RUN: read notifications that would be purged, run with -dry-run=false to delete")
	} else {
		n, err := notificationRepo.PurgeRead(cutoff)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to purge read notifications")
		}
		log.Info().Int64("deleted", n).Time("before", cutoff).Msg("read notifications purged")
	}

	// 2. 全量重算进度
	if !*sweep {
		return
	}
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}

	progressService := service.NewProgressService(
		repository.NewSubscriptionRepository(db),
		repository.NewBundleRepository(db),
		repository.NewDeliveryRepository(db),
		queue.NewQueue(rdb, cfg.Queue.AlertQueue),
		cfg.Progress,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	n, err := progressService.SweepActive(ctx)
	if err != nil {
		log.Fatal().Err(err).Int("swept", n).Msg("progress sweep failed")
	}
	log.Info().Int("swept", n).Msg("progress sweep completed")
}
