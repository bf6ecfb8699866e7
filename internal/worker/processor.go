package worker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/qs3c/coach_go_server/internal/model"
	"github.com/qs3c/coach_go_server/internal/pkg/metrics"
	"github.com/qs3c/coach_go_server/internal/pkg/pubsub"
	"github.com/qs3c/coach_go_server/internal/pkg/queue"
	"github.com/qs3c/coach_go_server/internal/repository"
)

// AlertPublisher 推送提醒事件
type AlertPublisher interface {
	PublishAlert(ctx context.Context, evt *pubsub.AlertEvent) error
}

// Processor 提醒任务处理器
type Processor struct {
	notificationRepo *repository.NotificationRepository
	publisher        AlertPublisher
}

// NewProcessor publisher 可以为 nil，此时只落库不推送
func NewProcessor(notificationRepo *repository.NotificationRepository, publisher AlertPublisher) *Processor {
	return &Processor{
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

// Process 为客户和教练各写一份提醒（未读的同文案提醒不重复写），有新提醒时推送
func (p *Processor) Process(ctx context.Context, job *queue.AlertJob) error {
	if job == nil || len(job.Alerts) == 0 {
		metrics.AlertJobs.WithLabelValues("empty").Inc()
		return nil
	}

	created := 0
	for _, userID := range recipients(job) {
		fresh, err := p.notify(userID, job)
		if err != nil {
			metrics.AlertJobs.WithLabelValues("failed").Inc()
			return err
		}
		if len(fresh) == 0 {
			continue
		}
		created += len(fresh)
		p.publish(ctx, userID, job, fresh)
	}

	if created == 0 {
		metrics.AlertJobs.WithLabelValues("duplicate").Inc()
	} else {
		metrics.AlertJobs.WithLabelValues("processed").Inc()
	}
	return nil
}

// notify 写入提醒，返回新写入的文案
func (p *Processor) notify(userID int64, job *queue.AlertJob) ([]string, error) {
	var fresh []string
	for _, alert := range job.Alerts {
		ok, err := p.notificationRepo.CreateIfAbsent(&model.Notification{
			UserID:         userID,
			SubscriptionID: job.SubscriptionID,
			Kind:           model.NotificationProgressAlert,
			Message:        alert,
		})
		if err != nil {
			return nil, fmt.Errorf("create notification for user %d: %w", userID, err)
		}
		if ok {
			fresh = append(fresh, alert)
		}
	}
	return fresh, nil
}

func (p *Processor) publish(ctx context.Context, userID int64, job *queue.AlertJob, alerts []string) {
	if p.publisher == nil {
		return
	}

	unread, err := p.notificationRepo.CountUnread(userID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("count unread failed")
	}

	evt := &pubsub.AlertEvent{
		UserID:         userID,
		SubscriptionID: job.SubscriptionID,
		BundleTitle:    job.BundleTitle,
		Alerts:         alerts,
		Unread:         unread,
	}
	if err := p.publisher.PublishAlert(ctx, evt); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("publish alert failed")
	}
}

func recipients(job *queue.AlertJob) []int64 {
	var ids []int64
	for _, id := range []int64{job.ClientID, job.TrainerID} {
		if id == 0 {
			continue
		}
		if len(ids) > 0 && ids[0] == id {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
