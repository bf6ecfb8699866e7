package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/coach_go_server/internal/model"
)

type DeliveryRepository struct {
	db *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

func (r *DeliveryRepository) Create(delivery *model.Delivery) error {
	return r.db.Create(delivery).Error
}

func (r *DeliveryRepository) GetByID(id int64) (*model.Delivery, error) {
	var delivery model.Delivery
	err := r.db.Where("id = ?", id).First(&delivery).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

// TransitionStatus 仅当当前状态等于 from 时更新，返回是否命中
func (r *DeliveryRepository) TransitionStatus(id int64, from string, fields map[string]interface{}) (bool, error) {
	result := r.db.Model(&model.Delivery{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListBySubscription 获取订阅下的交付记录
func (r *DeliveryRepository) ListBySubscription(subscriptionID int64, page, pageSize int, status string) ([]*model.Delivery, int64, error) {
	var deliveries []*model.Delivery
	var total int64

	query := r.db.Model(&model.Delivery{}).Where("subscription_id = ?", subscriptionID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&deliveries).Error; err != nil {
		return nil, 0, err
	}

	return deliveries, total, nil
}

// ListConsumed 计入消耗的交付：挂在该订阅下的，以及同一教练/客户之间未关联订阅的
func (r *DeliveryRepository) ListConsumed(ctx context.Context, sub *model.Subscription) ([]*model.Delivery, error) {
	var deliveries []*model.Delivery
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{model.DeliveryDelivered, model.DeliveryConfirmed}).
		Where(r.db.Where("subscription_id = ?", sub.ID).
			Or("subscription_id IS NULL AND trainer_id = ? AND client_id = ?", sub.TrainerID, sub.ClientID)).
		Find(&deliveries).Error
	return deliveries, err
}
