package model

import (
	"time"
)

const (
	SubscriptionActive    = "active"
	SubscriptionPaused    = "paused"
	SubscriptionCancelled = "cancelled"
)

type Subscription struct {
	ID               int64      `gorm:"primaryKey" json:"id"`
	ClientID         int64      `gorm:"not null;index" json:"client_id"`
	TrainerID        int64      `gorm:"not null;index" json:"trainer_id"`
	BundleDraftID    *int64     `gorm:"index" json:"bundle_draft_id,omitempty"`
	SessionsIncluded int        `gorm:"default:0" json:"sessions_included"`
	SessionsUsed     int        `gorm:"default:0" json:"sessions_used"`
	Status           string     `gorm:"size:20;default:active;index" json:"status"` // active, paused, cancelled
	PausedAt         *time.Time `json:"paused_at,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// 关联
	Bundle *BundleDraft `gorm:"foreignKey:BundleDraftID" json:"bundle,omitempty"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
