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

// deliveryTransitions 交付状态流转表
var deliveryTransitions = map[string][]string{
	model.DeliveryPending:   {model.DeliveryReady, model.DeliveryCancelled},
	model.DeliveryReady:     {model.DeliveryDelivered, model.DeliveryCancelled},
	model.DeliveryDelivered: {model.DeliveryConfirmed, model.DeliveryDisputed},
	model.DeliveryDisputed:  {model.DeliveryDelivered, model.DeliveryConfirmed},
}

// CanTransitionDelivery 判断交付状态能否从 from 流转到 to
func CanTransitionDelivery(from, to string) bool {
	for _, next := range deliveryTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// deliveryAction 确认和异议由客户发起，其余由教练推进
func deliveryAction(to string) policy.Action {
	if to == model.DeliveryConfirmed || to == model.DeliveryDisputed {
		return policy.ActionRespond
	}
	return policy.ActionManage
}

type DeliveryService struct {
	deliveryRepo *repository.DeliveryRepository
	subRepo      *repository.SubscriptionRepository
	refresher    ProgressRefresher
}

// NewDeliveryService refresher 可以为 nil
func NewDeliveryService(
	deliveryRepo *repository.DeliveryRepository,
	subRepo *repository.SubscriptionRepository,
	refresher ProgressRefresher,
) *DeliveryService {
	return &DeliveryService{
		deliveryRepo: deliveryRepo,
		subRepo:      subRepo,
		refresher:    refresher,
	}
}

// Create 教练为订阅登记一条待交付记录
func (s *DeliveryService) Create(actor policy.Actor, subscriptionID int64, req *dto.CreateDeliveryRequest) (*dto.DeliveryInfo, error) {
	sub, err := loadSubscription(s.subRepo, actor, subscriptionID, policy.ActionManage)
	if err != nil {
		return nil, err
	}
	if sub.Status == model.SubscriptionCancelled {
		return nil, ErrSubscriptionNotActive
	}

	delivery := &model.Delivery{
		SubscriptionID: &sub.ID,
		TrainerID:      sub.TrainerID,
		ClientID:       sub.ClientID,
		ProductName:    req.ProductName,
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		Status:         model.DeliveryPending,
		Note:           req.Note,
	}
	if err := s.deliveryRepo.Create(delivery); err != nil {
		return nil, err
	}

	return toDeliveryInfo(delivery), nil
}

// UpdateStatus 按流转表推进交付状态
func (s *DeliveryService) UpdateStatus(actor policy.Actor, id int64, req *dto.UpdateDeliveryStatusRequest) (*dto.DeliveryInfo, error) {
	delivery, err := s.deliveryRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeliveryNotFound
		}
		return nil, err
	}

	res := policy.Resource{Kind: "delivery", TrainerID: delivery.TrainerID, ClientID: delivery.ClientID}
	if !policy.Decide(actor, deliveryAction(req.Status), res).Allowed {
		return nil, ErrPermissionDenied
	}
	if !CanTransitionDelivery(delivery.Status, req.Status) {
		return nil, ErrInvalidTransition
	}

	fields := map[string]interface{}{"status": req.Status}
	if req.Status == model.DeliveryDelivered {
		fields["delivered_at"] = time.Now()
	}
	if req.Note != "" {
		fields["note"] = req.Note
	}

	ok, err := s.deliveryRepo.TransitionStatus(delivery.ID, delivery.Status, fields)
	if err != nil {
		return nil, err
	}
	if !ok {
		// 并发修改，状态已经变了
		return nil, ErrInvalidTransition
	}

	if delivery.SubscriptionID != nil {
		s.refresh(*delivery.SubscriptionID)
	}

	updated, err := s.deliveryRepo.GetByID(delivery.ID)
	if err != nil {
		return nil, err
	}
	return toDeliveryInfo(updated), nil
}

// List 订阅下的交付记录
func (s *DeliveryService) List(actor policy.Actor, subscriptionID int64, status string, page, pageSize int) ([]*dto.DeliveryInfo, int64, error) {
	if _, err := loadSubscription(s.subRepo, actor, subscriptionID, policy.ActionRead); err != nil {
		return nil, 0, err
	}

	deliveries, total, err := s.deliveryRepo.ListBySubscription(subscriptionID, page, pageSize, status)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.DeliveryInfo, len(deliveries))
	for i, d := range deliveries {
		items[i] = toDeliveryInfo(d)
	}
	return items, total, nil
}

func (s *DeliveryService) refresh(subscriptionID int64) {
	if s.refresher == nil {
		return
	}
	if err := s.refresher.Refresh(context.Background(), subscriptionID); err != nil {
		log.Warn().Err(err).Int64("subscription_id", subscriptionID).Msg("refresh progress failed")
	}
}

func toDeliveryInfo(d *model.Delivery) *dto.DeliveryInfo {
	info := &dto.DeliveryInfo{
		ID:             d.ID,
		SubscriptionID: d.SubscriptionID,
		TrainerID:      d.TrainerID,
		ClientID:       d.ClientID,
		ProductName:    d.ProductName,
		ProductID:      d.ProductID,
		Quantity:       d.Quantity,
		Status:         d.Status,
		Note:           d.Note,
		CreatedAt:      d.CreatedAt.Format(time.RFC3339),
	}
	if d.DeliveredAt != nil {
		info.DeliveredAt = d.DeliveredAt.Format(time.RFC3339)
	}
	return info
}
