package service

import (
	"time"

	"github.com/qs3c/coach_go_server/internal/model"
	"github.com/qs3c/coach_go_server/internal/model/dto"
	"github.com/qs3c/coach_go_server/internal/repository"
)

type NotificationService struct {
	notificationRepo *repository.NotificationRepository
}

func NewNotificationService(notificationRepo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// List 当前用户的提醒列表
func (s *NotificationService) List(userID int64, unreadOnly bool, page, pageSize int) ([]*dto.NotificationInfo, int64, error) {
	items, total, err := s.notificationRepo.ListByUser(userID, unreadOnly, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*dto.NotificationInfo, len(items))
	for i, n := range items {
		out[i] = toNotificationInfo(n)
	}
	return out, total, nil
}

func (s *NotificationService) UnreadCount(userID int64) (int64, error) {
	return s.notificationRepo.CountUnread(userID)
}

// MarkRead 标记单条已读
func (s *NotificationService) MarkRead(userID, id int64) error {
	ok, err := s.notificationRepo.MarkRead(id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead 全部标记已读，返回更新条数
func (s *NotificationService) MarkAllRead(userID int64) (int64, error) {
	return s.notificationRepo.MarkAllRead(userID)
}

// PurgeRead 清理早于 olderThan 的已读提醒
func (s *NotificationService) PurgeRead(olderThan time.Time) (int64, error) {
	return s.notificationRepo.PurgeRead(olderThan)
}

func toNotificationInfo(n *model.Notification) *dto.NotificationInfo {
	return &dto.NotificationInfo{
		ID:             n.ID,
		SubscriptionID: n.SubscriptionID,
		Kind:           n.Kind,
		Message:        n.Message,
		IsRead:         n.IsRead,
		CreatedAt:      n.CreatedAt.Format(time.RFC3339),
	}
}
