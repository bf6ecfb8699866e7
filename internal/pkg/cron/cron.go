package cron

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper 重新计算所有进行中订阅的进度，返回处理的订阅数
type Sweeper interface {
	SweepActive(ctx context.Context) (int, error)
}

// Purger 清理过期的已读提醒
type Purger interface {
	PurgeRead(olderThan time.Time) (int64, error)
}

type Service struct {
	sweeper       Sweeper
	purger        Purger
	sweepInterval time.Duration
	retainDays    int
	stopChan      chan struct{}
	stopOnce      sync.Once
}

func NewService(sweeper Sweeper, purger Purger, sweepInterval time.Duration, retainDays int) *Service {
	if sweepInterval <= 0 {
		sweepInterval = 6 * time.Hour
	}
	if retainDays <= 0 {
		retainDays = 30
	}
	return &Service{
		sweeper:       sweeper,
		purger:        purger,
		sweepInterval: sweepInterval,
		retainDays:    retainDays,
		stopChan:      make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	if s.sweeper != nil {
		go s.runSweep()
	}
	if s.purger != nil {
		go s.runDailyPurge()
	}
	log.Info().Dur("sweep_interval", s.sweepInterval).Msg("cron service started")
}

// Stop 停止定时任务，可重复调用
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		log.Info().Msg("cron service stopped")
	})
}

// runSweep 按固定间隔巡检进度
func (s *Service) runSweep() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			if _, err := s.RunSweep(); err != nil {
				log.Error().Err(err).Msg("progress sweep failed")
			}
		}
	}
}

// runDailyPurge 每天 UTC 零点清理已读提醒
func (s *Service) runDailyPurge() {
	now := time.Now().UTC()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	timer := time.NewTimer(nextMidnight.Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			if _, err := s.RunPurge(); err != nil {
				log.Error().Err(err).Msg("notification purge failed")
			}
			timer.Reset(24 * time.Hour)
		}
	}
}

// RunSweep 立即执行一次进度巡检（手动触发或测试用）
func (s *Service) RunSweep() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.sweepInterval)
	defer cancel()

	start := time.Now()
	processed, err := s.sweeper.SweepActive(ctx)
	if err != nil {
		return processed, err
	}
	log.Info().Int("processed", processed).Dur("took", time.Since(start)).Msg("progress sweep completed")
	return processed, nil
}

// RunPurge 立即清理超过保留天数的已读提醒
func (s *Service) RunPurge() (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -s.retainDays)
	n, err := s.purger.PurgeRead(cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("purged", n).Msg("read notifications purged")
	}
	return n, nil
}
