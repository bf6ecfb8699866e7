package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qs3c/coach_go_server/internal/pkg/queue"
)

const popTimeout = 5 * time.Second

// JobSource 阻塞式获取提醒任务，超时返回 nil
type JobSource interface {
	Pop(ctx context.Context, timeout time.Duration) (*queue.AlertJob, error)
}

// JobHandler 处理单个任务
type JobHandler interface {
	Process(ctx context.Context, job *queue.AlertJob) error
}

// Run 启动 workers 个 goroutine 消费任务，ctx 取消后等待全部退出
func Run(ctx context.Context, source JobSource, handler JobHandler, workers int) {
	if workers <= 0 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			loop(ctx, workerID, source, handler)
		}(i)
	}
	wg.Wait()
}

func loop(ctx context.Context, workerID int, source JobSource, handler JobHandler) {
	logger := log.With().Int("worker", workerID).Logger()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("worker shutting down")
			return
		default:
		}

		job, err := source.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error().Err(err).Msg("failed to pop alert job")
			// 队列异常时稍作等待，避免空转
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if job == nil {
			continue // 超时，继续等待
		}

		logger.Debug().Int64("subscription_id", job.SubscriptionID).Str("source", job.Source).Msg("processing alert job")
		if err := handler.Process(ctx, job); err != nil {
			logger.Error().Err(err).Int64("subscription_id", job.SubscriptionID).Msg("alert job failed")
		}
	}
}
