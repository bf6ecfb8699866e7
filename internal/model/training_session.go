package model

import (
	"time"
)

const (
	SessionScheduled = "scheduled"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

type TrainingSession struct {
	ID              int64      `gorm:"primaryKey" json:"id"`
	SubscriptionID  int64      `gorm:"not null;index" json:"subscription_id"`
	TrainerID       int64      `gorm:"not null;index" json:"trainer_id"`
	ClientID        int64      `gorm:"not null;index" json:"client_id"`
	ScheduledAt     time.Time  `gorm:"not null;index" json:"scheduled_at"`
	DurationMinutes int        `gorm:"default:60" json:"duration_minutes"`
	Status          string     `gorm:"size:20;default:scheduled;index" json:"status"` // scheduled, completed, cancelled
	Notes           string     `gorm:"type:text" json:"notes,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (TrainingSession) TableName() string {
	return "training_sessions"
}
