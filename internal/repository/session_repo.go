package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/coach_go_server/internal/model"
)

var (
	ErrSessionNotScheduled  = errors.New("session is not scheduled")
	ErrSubscriptionInactive = errors.New("subscription is not active")
)

type TrainingSessionRepository struct {
	db *gorm.DB
}

func NewTrainingSessionRepository(db *gorm.DB) *TrainingSessionRepository {
	return &TrainingSessionRepository{db: db}
}

func (r *TrainingSessionRepository) Create(session *model.TrainingSession) error {
	return r.db.Create(session).Error
}

func (r *TrainingSessionRepository) GetByID(id int64) (*model.TrainingSession, error) {
	var session model.TrainingSession
	err := r.db.Where("id = ?", id).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListBySubscription 获取订阅下的课时，按上课时间排序
func (r *TrainingSessionRepository) ListBySubscription(subscriptionID int64, page, pageSize int, status string) ([]*model.TrainingSession, int64, error) {
	var sessions []*model.TrainingSession
	var total int64

	query := r.db.Model(&model.TrainingSession{}).Where("subscription_id = ?", subscriptionID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("scheduled_at ASC, id ASC").Offset(offset).Limit(pageSize).Find(&sessions).Error; err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

// Complete 完成课时并在同一事务中累加订阅的已用课时
func (r *TrainingSessionRepository) Complete(id, subscriptionID int64, notes *string, completedAt time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		fields := map[string]interface{}{
			"status":       model.SessionCompleted,
			"completed_at": completedAt,
		}
		if notes != nil {
			fields["notes"] = *notes
		}

		result := tx.Model(&model.TrainingSession{}).
			Where("id = ? AND status = ?", id, model.SessionScheduled).
			Updates(fields)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSessionNotScheduled
		}

		result = tx.Model(&model.Subscription{}).
			Where("id = ? AND status = ?", subscriptionID, model.SubscriptionActive).
			Update("sessions_used", gorm.Expr("sessions_used + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSubscriptionInactive
		}
		return nil
	})
}

// Cancel 取消尚未开始的课时
func (r *TrainingSessionRepository) Cancel(id int64) error {
	result := r.db.Model(&model.TrainingSession{}).
		Where("id = ? AND status = ?", id, model.SessionScheduled).
		Update("status", model.SessionCancelled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotScheduled
	}
	return nil
}
