package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/qs3c/coach_go_server/config"
	"github.com/qs3c/coach_go_server/internal/model"
	"github.com/qs3c/coach_go_server/internal/pkg/metrics"
	"github.com/qs3c/coach_go_server/internal/pkg/policy"
	"github.com/qs3c/coach_go_server/internal/pkg/progress"
	"github.com/qs3c/coach_go_server/internal/pkg/queue"
	"github.com/qs3c/coach_go_server/internal/repository"
)

// 快照来源，用于指标和提醒任务
const (
	SourceAPI   = "api"
	SourceEvent = "event"
	SourceSweep = "sweep"
)

const sweepBatchSize = 100

// AlertEnqueuer 提醒任务入队
type AlertEnqueuer interface {
	Push(ctx context.Context, job *queue.AlertJob) error
}

type ProgressService struct {
	subRepo      *repository.SubscriptionRepository
	bundleRepo   *repository.BundleRepository
	deliveryRepo *repository.DeliveryRepository
	enqueuer     AlertEnqueuer
	cfg          config.ProgressConfig
}

// NewProgressService enqueuer 为 nil 时只计算不入队
func NewProgressService(
	subRepo *repository.SubscriptionRepository,
	bundleRepo *repository.BundleRepository,
	deliveryRepo *repository.DeliveryRepository,
	enqueuer AlertEnqueuer,
	cfg config.ProgressConfig,
) *ProgressService {
	return &ProgressService{
		subRepo:      subRepo,
		bundleRepo:   bundleRepo,
		deliveryRepo: deliveryRepo,
		enqueuer:     enqueuer,
		cfg:          cfg,
	}
}

// GetProgress 计算单个订阅的消耗快照，有提醒时入队
func (s *ProgressService) GetProgress(ctx context.Context, actor policy.Actor, subscriptionID int64) (*progress.Snapshot, error) {
	sub, err := loadSubscription(s.subRepo, actor, subscriptionID, policy.ActionRead)
	if err != nil {
		return nil, err
	}

	bundle, deliveries, err := s.loadInputs(ctx, sub)
	if err != nil {
		return nil, err
	}

	snap := s.compute(sub, bundle, deliveries, SourceAPI)
	s.enqueue(ctx, sub, &snap, SourceAPI)
	return &snap, nil
}

// ListTrainerProgress 教练名下所有进行中订阅的快照，只计算不入队
func (s *ProgressService) ListTrainerProgress(ctx context.Context, actor policy.Actor) ([]progress.Snapshot, error) {
	if actor.Role != policy.RoleTrainer {
		return nil, ErrPermissionDenied
	}

	subs, err := s.subRepo.ListActiveByTrainer(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	bundles, err := s.bundleRepo.GetByIDs(ctx, bundleIDs(subs))
	if err != nil {
		return nil, err
	}

	snaps := make([]progress.Snapshot, 0, len(subs))
	for _, sub := range subs {
		deliveries, err := s.deliveryRepo.ListConsumed(ctx, sub)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, s.compute(sub, bundleFor(sub, bundles), deliveries, SourceAPI))
	}
	return snaps, nil
}

// Refresh 课时完成或交付变化后重新计算，有提醒时入队
func (s *ProgressService) Refresh(ctx context.Context, subscriptionID int64) error {
	sub, err := s.subRepo.GetByID(subscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubscriptionNotFound
		}
		return err
	}

	bundle, deliveries, err := s.loadInputs(ctx, sub)
	if err != nil {
		return err
	}

	snap := s.compute(sub, bundle, deliveries, SourceEvent)
	s.enqueue(ctx, sub, &snap, SourceEvent)
	return nil
}

// SweepActive 分批重算所有进行中的订阅，返回处理数量
func (s *ProgressService) SweepActive(ctx context.Context) (int, error) {
	var afterID int64
	processed := 0

	for {
		subs, err := s.subRepo.ListActiveAfter(ctx, afterID, sweepBatchSize)
		if err != nil {
			return processed, fmt.Errorf("list active subscriptions: %w", err)
		}
		if len(subs) == 0 {
			return processed, nil
		}

		bundles, err := s.bundleRepo.GetByIDs(ctx, bundleIDs(subs))
		if err != nil {
			return processed, fmt.Errorf("load bundles: %w", err)
		}

		for _, sub := range subs {
			if err := ctx.Err(); err != nil {
				return processed, err
			}
			deliveries, err := s.deliveryRepo.ListConsumed(ctx, sub)
			if err != nil {
				return processed, fmt.Errorf("load deliveries for subscription %d: %w", sub.ID, err)
			}
			snap := s.compute(sub, bundleFor(sub, bundles), deliveries, SourceSweep)
			s.enqueue(ctx, sub, &snap, SourceSweep)
			processed++
		}

		afterID = subs[len(subs)-1].ID
		if len(subs) < sweepBatchSize {
			return processed, nil
		}
	}
}

// loadInputs 并发读取套餐和计入消耗的交付记录
func (s *ProgressService) loadInputs(ctx context.Context, sub *model.Subscription) (*model.BundleDraft, []*model.Delivery, error) {
	var (
		bundle     *model.BundleDraft
		deliveries []*model.Delivery
	)

	g, gctx := errgroup.WithContext(ctx)
	if sub.BundleDraftID != nil {
		bundleID := *sub.BundleDraftID
		g.Go(func() error {
			b, err := s.bundleRepo.GetByID(gctx, bundleID)
			if err != nil {
				// 套餐已删除时按无套餐计算
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return fmt.Errorf("load bundle %d: %w", bundleID, err)
			}
			bundle = b
			return nil
		})
	}
	g.Go(func() error {
		d, err := s.deliveryRepo.ListConsumed(gctx, sub)
		if err != nil {
			return fmt.Errorf("load deliveries: %w", err)
		}
		deliveries = d
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return bundle, deliveries, nil
}

func (s *ProgressService) compute(sub *model.Subscription, bundle *model.BundleDraft, deliveries []*model.Delivery, source string) progress.Snapshot {
	snap := progress.Compute(
		toProgressSubscription(sub),
		toProgressBundle(bundle),
		progress.DeliveredQtyByProductName(toProgressDeliveries(deliveries)),
		progress.Options{DedupeProductNames: s.cfg.DedupeProductNames},
	)
	metrics.ObserveSnapshot(source, snap.Alerts)
	return snap
}

func (s *ProgressService) enqueue(ctx context.Context, sub *model.Subscription, snap *progress.Snapshot, source string) {
	if s.enqueuer == nil || !s.cfg.EnqueueAlerts || len(snap.Alerts) == 0 {
		return
	}

	job := &queue.AlertJob{
		SubscriptionID: sub.ID,
		ClientID:       sub.ClientID,
		TrainerID:      sub.TrainerID,
		BundleTitle:    snap.BundleTitle,
		Alerts:         snap.Alerts,
		Source:         source,
		RaisedAt:       time.Now(),
	}
	if err := s.enqueuer.Push(ctx, job); err != nil {
		log.Warn().Err(err).Int64("subscription_id", sub.ID).Msg("enqueue alert job failed")
	}
}

func bundleIDs(subs []*model.Subscription) []int64 {
	ids := make([]int64, 0, len(subs))
	seen := make(map[int64]struct{}, len(subs))
	for _, sub := range subs {
		if sub.BundleDraftID == nil {
			continue
		}
		if _, ok := seen[*sub.BundleDraftID]; ok {
			continue
		}
		seen[*sub.BundleDraftID] = struct{}{}
		ids = append(ids, *sub.BundleDraftID)
	}
	return ids
}

func bundleFor(sub *model.Subscription, bundles map[int64]*model.BundleDraft) *model.BundleDraft {
	if sub.BundleDraftID == nil {
		return nil
	}
	return bundles[*sub.BundleDraftID]
}

func toProgressSubscription(sub *model.Subscription) progress.Subscription {
	return progress.Subscription{
		ID:               sub.ID,
		SessionsIncluded: sub.SessionsIncluded,
		SessionsUsed:     sub.SessionsUsed,
		Status:           sub.Status,
	}
}

func toProgressBundle(b *model.BundleDraft) *progress.Bundle {
	if b == nil {
		return nil
	}
	return &progress.Bundle{
		ID:           b.ID,
		Title:        b.Title,
		ProductsJSON: b.ProductsJSON.Decode(),
		ServicesJSON: b.ServicesJSON.Decode(),
		GoalsJSON:    b.GoalsJSON.Decode(),
	}
}

func toProgressDeliveries(deliveries []*model.Delivery) []progress.Delivery {
	out := make([]progress.Delivery, len(deliveries))
	for i, d := range deliveries {
		out[i] = progress.Delivery{
			ProductName: d.ProductName,
			Quantity:    float64(d.Quantity),
			Status:      d.Status,
		}
	}
	return out
}
