package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/coach_go_server/internal/model"
)

type BundleRepository struct {
	db *gorm.DB
}

func NewBundleRepository(db *gorm.DB) *BundleRepository {
	return &BundleRepository{db: db}
}

func (r *BundleRepository) Create(bundle *model.BundleDraft) error {
	return r.db.Create(bundle).Error
}

func (r *BundleRepository) GetByID(ctx context.Context, id int64) (*model.BundleDraft, error) {
	var bundle model.BundleDraft
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&bundle).Error
	if err != nil {
		return nil, err
	}
	return &bundle, nil
}

// GetByIDs 批量获取，返回 id -> bundle
func (r *BundleRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.BundleDraft, error) {
	out := make(map[int64]*model.BundleDraft, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var bundles []*model.BundleDraft
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&bundles).Error; err != nil {
		return nil, err
	}
	for _, b := range bundles {
		out[b.ID] = b
	}
	return out, nil
}

func (r *BundleRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.BundleDraft{}).Where("id = ?", id).Updates(fields).Error
}

func (r *BundleRepository) Delete(id int64) error {
	return r.db.Delete(&model.BundleDraft{}, id).Error
}

// ListByTrainer 获取教练的套餐列表
func (r *BundleRepository) ListByTrainer(trainerID int64, page, pageSize int, status string) ([]*model.BundleDraft, int64, error) {
	var bundles []*model.BundleDraft
	var total int64

	query := r.db.Model(&model.BundleDraft{}).Where("trainer_id = ?", trainerID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&bundles).Error; err != nil {
		return nil, 0, err
	}

	return bundles, total, nil
}

// CountLiveSubscriptions 引用该套餐且未取消的订阅数
func (r *BundleRepository) CountLiveSubscriptions(bundleID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Subscription{}).
		Where("bundle_draft_id = ? AND status IN ?", bundleID, []string{model.SubscriptionActive, model.SubscriptionPaused}).
		Count(&count).Error
	return count, err
}
