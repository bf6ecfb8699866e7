package model

import (
	"time"
)

const (
	DeliveryPending   = "pending"
	DeliveryReady     = "ready"
	DeliveryDelivered = "delivered"
	DeliveryConfirmed = "confirmed"
	DeliveryDisputed  = "disputed"
	DeliveryCancelled = "cancelled"
)

type Delivery struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	SubscriptionID *int64     `gorm:"index" json:"subscription_id,omitempty"`
	TrainerID      int64      `gorm:"not null;index:idx_delivery_pair" json:"trainer_id"`
	ClientID       int64      `gorm:"not null;index:idx_delivery_pair" json:"client_id"`
	ProductName    string     `gorm:"size:200;not null" json:"product_name"`
	ProductID      string     `gorm:"size:100" json:"product_id,omitempty"`
	Quantity       int        `gorm:"default:1" json:"quantity"`
	Status         string     `gorm:"size:20;default:pending;index" json:"status"`
	Note           string     `gorm:"type:text" json:"note,omitempty"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Delivery) TableName() string {
	return "deliveries"
}
