package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/qs3c/coach_go_server/internal/model"
	"github.com/qs3c/coach_go_server/internal/model/dto"
	"github.com/qs3c/coach_go_server/internal/pkg/policy"
	"github.com/qs3c/coach_go_server/internal/repository"
)

const defaultSessionMinutes = 60

// ProgressRefresher 课时或交付变化后重新计算进度
type ProgressRefresher interface {
	Refresh(ctx context.Context, subscriptionID int64) error
}

type TrainingSessionService struct {
	sessionRepo *repository.TrainingSessionRepository
	subRepo     *repository.SubscriptionRepository
	refresher   ProgressRefresher
}

// NewTrainingSessionService refresher 可以为 nil
func NewTrainingSessionService(
	sessionRepo *repository.TrainingSessionRepository,
	subRepo *repository.SubscriptionRepository,
	refresher ProgressRefresher,
) *TrainingSessionService {
	return &TrainingSessionService{
		sessionRepo: sessionRepo,
		subRepo:     subRepo,
		refresher:   refresher,
	}
}

// Schedule 为进行中的订阅排课
func (s *TrainingSessionService) Schedule(actor policy.Actor, subscriptionID int64, req *dto.CreateSessionRequest) (*dto.SessionInfo, error) {
	sub, err := loadSubscription(s.subRepo, actor, subscriptionID, policy.ActionManage)
	if err != nil {
		return nil, err
	}
	if sub.Status != model.SubscriptionActive {
		return nil, ErrSubscriptionNotActive
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = defaultSessionMinutes
	}

	session := &model.TrainingSession{
		SubscriptionID:  sub.ID,
		TrainerID:       sub.TrainerID,
		ClientID:        sub.ClientID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: duration,
		Status:          model.SessionScheduled,
		Notes:           req.Notes,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}

	return toSessionInfo(session), nil
}

// Complete scheduled -> completed，同时订阅已用课时 +1
func (s *TrainingSessionService) Complete(actor policy.Actor, id int64, req *dto.CompleteSessionRequest) (*dto.SessionInfo, error) {
	session, err := s.loadForManage(actor, id)
	if err != nil {
		return nil, err
	}

	var notes *string
	if req != nil && req.Notes != "" {
		notes = &req.Notes
	}

	err = s.sessionRepo.Complete(session.ID, session.SubscriptionID, notes, time.Now())
	switch {
	case errors.Is(err, repository.ErrSessionNotScheduled):
		return nil, ErrInvalidTransition
	case errors.Is(err, repository.ErrSubscriptionInactive):
		return nil, ErrSubscriptionNotActive
	case err != nil:
		return nil, err
	}

	s.refresh(session.SubscriptionID)

	updated, err := s.sessionRepo.GetByID(session.ID)
	if err != nil {
		return nil, err
	}
	return toSessionInfo(updated), nil
}

// Cancel scheduled -> cancelled
func (s *TrainingSessionService) Cancel(actor policy.Actor, id int64) (*dto.SessionInfo, error) {
	session, err := s.loadForManage(actor, id)
	if err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Cancel(session.ID); err != nil {
		if errors.Is(err, repository.ErrSessionNotScheduled) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	session.Status = model.SessionCancelled
	return toSessionInfo(session), nil
}

// List 订阅下的课时列表，教练和客户都可查看
func (s *TrainingSessionService) List(actor policy.Actor, subscriptionID int64, status string, page, pageSize int) ([]*dto.SessionInfo, int64, error) {
	if _, err := loadSubscription(s.subRepo, actor, subscriptionID, policy.ActionRead); err != nil {
		return nil, 0, err
	}

	sessions, total, err := s.sessionRepo.ListBySubscription(subscriptionID, page, pageSize, status)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.SessionInfo, len(sessions))
	for i, session := range sessions {
		items[i] = toSessionInfo(session)
	}
	return items, total, nil
}

func (s *TrainingSessionService) loadForManage(actor policy.Actor, id int64) (*model.TrainingSession, error) {
	session, err := s.sessionRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	res := policy.Resource{Kind: "session", TrainerID: session.TrainerID, ClientID: session.ClientID}
	if !policy.Decide(actor, policy.ActionManage, res).Allowed {
		return nil, ErrPermissionDenied
	}
	return session, nil
}

func (s *TrainingSessionService) refresh(subscriptionID int64) {
	if s.refresher == nil {
		return
	}
	if err := s.refresher.Refresh(context.Background(), subscriptionID); err != nil {
		log.Warn().Err(err).Int64("subscription_id", subscriptionID).Msg("refresh progress failed")
	}
}

func toSessionInfo(session *model.TrainingSession) *dto.SessionInfo {
	info := &dto.SessionInfo{
		ID:              session.ID,
		SubscriptionID:  session.SubscriptionID,
		TrainerID:       session.TrainerID,
		ClientID:        session.ClientID,
		ScheduledAt:     session.ScheduledAt.Format(time.RFC3339),
		DurationMinutes: session.DurationMinutes,
		Status:          session.Status,
		Notes:           session.Notes,
	}
	if session.CompletedAt != nil {
		info.CompletedAt = session.CompletedAt.Format(time.RFC3339)
	}
	return info
}
