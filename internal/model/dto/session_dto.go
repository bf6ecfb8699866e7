package dto

import "time"

// CreateSessionRequest 排课请求
type CreateSessionRequest struct {
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes,omitempty" binding:"omitempty,min=15,max=480"`
	Notes           string    `json:"notes,omitempty" binding:"omitempty,max=2000"`
}

// CompleteSessionRequest 完成课时，可附带训练记录
type CompleteSessionRequest struct {
	Notes string `json:"notes,omitempty" binding:"omitempty,max=2000"`
}

// SessionInfo 课时信息
type SessionInfo struct {
	ID              int64  `json:"id"`
	SubscriptionID  int64  `json:"subscription_id"`
	TrainerID       int64  `json:"trainer_id"`
	ClientID        int64  `json:"client_id"`
	ScheduledAt     string `json:"scheduled_at"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
	Notes           string `json:"notes,omitempty"`
	CompletedAt     string `json:"completed_at,omitempty"`
}
