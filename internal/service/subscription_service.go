package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/coach_go_server/internal/model"
	"github.com/qs3c/coach_go_server/internal/model/dto"
	"github.com/qs3c/coach_go_server/internal/pkg/policy"
	"github.com/qs3c/coach_go_server/internal/repository"
)

type SubscriptionService struct {
	subRepo    *repository.SubscriptionRepository
	userRepo   *repository.UserRepository
	bundleRepo *repository.BundleRepository
}

func NewSubscriptionService(
	subRepo *repository.SubscriptionRepository,
	userRepo *repository.UserRepository,
	bundleRepo *repository.BundleRepository,
) *SubscriptionService {
	return &SubscriptionService{
		subRepo:    subRepo,
		userRepo:   userRepo,
		bundleRepo: bundleRepo,
	}
}

// Create 教练为客户开通订阅
func (s *SubscriptionService) Create(actor policy.Actor, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionInfo, error) {
	if !policy.CanCreateAsTrainer(actor).Allowed {
		return nil, ErrPermissionDenied
	}

	client, err := s.userRepo.GetByID(req.ClientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.Role != model.RoleClient {
		return nil, ErrClientNotFound
	}

	sub := &model.Subscription{
		ClientID:         client.ID,
		TrainerID:        actor.UserID,
		SessionsIncluded: max(req.SessionsIncluded, 0),
		Status:           model.SubscriptionActive,
	}

	if req.BundleDraftID != nil {
		bundle, err := s.bundleRepo.GetByID(context.Background(), *req.BundleDraftID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrBundleNotFound
			}
			return nil, err
		}
		if !policy.Decide(actor, policy.ActionManage, bundleResource(bundle)).Allowed {
			return nil, ErrPermissionDenied
		}
		// 管理员代开时订阅归属套餐的教练
		sub.TrainerID = bundle.TrainerID
		sub.BundleDraftID = &bundle.ID
	}

	if err := s.subRepo.Create(sub); err != nil {
		return nil, err
	}

	return s.Get(actor, sub.ID)
}

// Get 获取订阅详情
func (s *SubscriptionService) Get(actor policy.Actor, id int64) (*dto.SubscriptionInfo, error) {
	sub, err := loadSubscription(s.subRepo, actor, id, policy.ActionRead)
	if err != nil {
		return nil, err
	}
	withBundle, err := s.subRepo.GetByIDWithBundle(sub.ID)
	if err != nil {
		return nil, err
	}
	return toSubscriptionInfo(withBundle), nil
}

// List 教练看自己开出的订阅，客户看自己的订阅，管理员看全部
func (s *SubscriptionService) List(actor policy.Actor, status string, page, pageSize int) ([]*dto.SubscriptionInfo, int64, error) {
	filter := repository.ListFilter{Status: status}
	switch actor.Role {
	case policy.RoleTrainer:
		filter.TrainerID = actor.UserID
	case policy.RoleClient:
		filter.ClientID = actor.UserID
	case policy.RoleAdmin:
	default:
		return nil, 0, ErrPermissionDenied
	}

	subs, total, err := s.subRepo.List(filter, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.SubscriptionInfo, len(subs))
	for i, sub := range subs {
		items[i] = toSubscriptionInfo(sub)
	}
	return items, total, nil
}

// Pause active -> paused
func (s *SubscriptionService) Pause(actor policy.Actor, id int64) (*dto.SubscriptionInfo, error) {
	return s.transition(actor, id, []string{model.SubscriptionActive}, map[string]interface{}{
		"status":    model.SubscriptionPaused,
		"paused_at": time.Now(),
	})
}

// Resume paused -> active
func (s *SubscriptionService) Resume(actor policy.Actor, id int64) (*dto.SubscriptionInfo, error) {
	return s.transition(actor, id, []string{model.SubscriptionPaused}, map[string]interface{}{
		"status":    model.SubscriptionActive,
		"paused_at": nil,
	})
}

// Cancel active|paused -> cancelled
func (s *SubscriptionService) Cancel(actor policy.Actor, id int64) (*dto.SubscriptionInfo, error) {
	return s.transition(actor, id, []string{model.SubscriptionActive, model.SubscriptionPaused}, map[string]interface{}{
		"status":       model.SubscriptionCancelled,
		"cancelled_at": time.Now(),
	})
}

func (s *SubscriptionService) transition(actor policy.Actor, id int64, from []string, fields map[string]interface{}) (*dto.SubscriptionInfo, error) {
	if _, err := loadSubscription(s.subRepo, actor, id, policy.ActionManage); err != nil {
		return nil, err
	}

	ok, err := s.subRepo.TransitionStatus(id, from, fields)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidTransition
	}

	return s.Get(actor, id)
}

// loadSubscription 读取订阅并校验 actor 对它的权限
func loadSubscription(repo *repository.SubscriptionRepository, actor policy.Actor, id int64, action policy.Action) (*model.Subscription, error) {
	sub, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	if !policy.Decide(actor, action, subscriptionResource(sub)).Allowed {
		return nil, ErrPermissionDenied
	}
	return sub, nil
}

func subscriptionResource(sub *model.Subscription) policy.Resource {
	return policy.Resource{Kind: "subscription", TrainerID: sub.TrainerID, ClientID: sub.ClientID}
}

func toSubscriptionInfo(sub *model.Subscription) *dto.SubscriptionInfo {
	info := &dto.SubscriptionInfo{
		ID:               sub.ID,
		ClientID:         sub.ClientID,
		TrainerID:        sub.TrainerID,
		BundleDraftID:    sub.BundleDraftID,
		SessionsIncluded: sub.SessionsIncluded,
		SessionsUsed:     sub.SessionsUsed,
		Status:           sub.Status,
		CreatedAt:        sub.CreatedAt.Format(time.RFC3339),
	}
	if sub.Bundle != nil {
		info.BundleTitle = sub.Bundle.Title
	}
	if sub.PausedAt != nil {
		info.PausedAt = sub.PausedAt.Format(time.RFC3339)
	}
	if sub.CancelledAt != nil {
		info.CancelledAt = sub.CancelledAt.Format(time.RFC3339)
	}
	return info
}
