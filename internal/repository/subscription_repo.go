package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/coach_go_server/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(sub *model.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *SubscriptionRepository) GetByID(id int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("id = ?", id).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByIDWithBundle 同时加载关联套餐
func (r *SubscriptionRepository) GetByIDWithBundle(id int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Preload("Bundle").Where("id = ?", id).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// TransitionStatus 仅当当前状态属于 from 时更新，返回是否命中
func (r *SubscriptionRepository) TransitionStatus(id int64, from []string, fields map[string]interface{}) (bool, error) {
	result := r.db.Model(&model.Subscription{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListFilter 订阅列表筛选
type ListFilter struct {
	TrainerID int64
	ClientID  int64
	Status    string
}

// List 分页查询，TrainerID / ClientID 为 0 时不作为条件
func (r *SubscriptionRepository) List(filter ListFilter, page, pageSize int) ([]*model.Subscription, int64, error) {
	var subs []*model.Subscription
	var total int64

	query := r.db.Model(&model.Subscription{})
	if filter.TrainerID != 0 {
		query = query.Where("trainer_id = ?", filter.TrainerID)
	}
	if filter.ClientID != 0 {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Preload("Bundle").Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&subs).Error; err != nil {
		return nil, 0, err
	}

	return subs, total, nil
}

// ListActiveByTrainer 教练名下所有进行中的订阅
func (r *SubscriptionRepository) ListActiveByTrainer(ctx context.Context, trainerID int64) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	err := r.db.WithContext(ctx).
		Where("trainer_id = ? AND status = ?", trainerID, model.SubscriptionActive).
		Order("id ASC").
		Find(&subs).Error
	return subs, err
}

// ListActiveAfter 按 id 游标分批读取进行中的订阅
func (r *SubscriptionRepository) ListActiveAfter(ctx context.Context, afterID int64, limit int) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	err := r.db.WithContext(ctx).
		Where("id > ? AND status = ?", afterID, model.SubscriptionActive).
		Order("id ASC").
		Limit(limit).
		Find(&subs).Error
	return subs, err
}
