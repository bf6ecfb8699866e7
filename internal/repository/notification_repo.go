package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/coach_go_server/internal/model"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateIfAbsent 同一用户、订阅、文案已有未读提醒时跳过，返回是否新建。
// 由 unread_key 唯一索引兜底，并发写入也只会成功一条。
func (r *NotificationRepository) CreateIfAbsent(n *model.Notification) (bool, error) {
	n.IsRead = false
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(n)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByUser 获取用户的提醒列表
func (r *NotificationRepository) ListByUser(userID int64, unreadOnly bool, page, pageSize int) ([]*model.Notification, int64, error) {
	var items []*model.Notification
	var total int64

	query := r.db.Model(&model.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *NotificationRepository) CountUnread(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead 标记单条已读，只能操作自己的提醒；已读的再次标记视为成功
func (r *NotificationRepository) MarkRead(id, userID int64) (bool, error) {
	var n model.Notification
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if n.IsRead {
		return true, nil
	}
	return true, r.db.Model(&model.Notification{}).Where("id = ?", id).Updates(markedRead()).Error
}

// MarkAllRead 全部标记已读
func (r *NotificationRepository) MarkAllRead(userID int64) (int64, error) {
	result := r.db.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(markedRead())
	return result.RowsAffected, result.Error
}

// markedRead 已读同时释放 unread_key，之后同样的提醒可以再次写入
func markedRead() map[string]interface{} {
	return map[string]interface{}{"is_read": true, "unread_key": nil}
}

// PurgeRead 删除早于 olderThan 的已读提醒
func (r *NotificationRepository) PurgeRead(olderThan time.Time) (int64, error) {
	result := r.readBefore(olderThan).Delete(&model.Notification{})
	return result.RowsAffected, result.Error
}

// CountReadBefore 统计 PurgeRead 会删除的条数
func (r *NotificationRepository) CountReadBefore(olderThan time.Time) (int64, error) {
	var count int64
	err := r.readBefore(olderThan).Model(&model.Notification{}).Count(&count).Error
	return count, err
}

func (r *NotificationRepository) readBefore(olderThan time.Time) *gorm.DB {
	return r.db.Where("is_read = ? AND created_at < ?", true, olderThan)
}
