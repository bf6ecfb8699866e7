package dto

// CreateSubscriptionRequest 教练为客户开通订阅
type CreateSubscriptionRequest struct {
	ClientID         int64  `json:"client_id" binding:"required,min=1"`
	BundleDraftID    *int64 `json:"bundle_draft_id,omitempty" binding:"omitempty,min=1"`
	SessionsIncluded int    `json:"sessions_included" binding:"min=0,max=1000"`
}

// SubscriptionInfo 订阅信息
type SubscriptionInfo struct {
	ID               int64  `json:"id"`
	ClientID         int64  `json:"client_id"`
	TrainerID        int64  `json:"trainer_id"`
	BundleDraftID    *int64 `json:"bundle_draft_id"`
	BundleTitle      string `json:"bundle_title,omitempty"`
	SessionsIncluded int    `json:"sessions_included"`
	SessionsUsed     int    `json:"sessions_used"`
	Status           string `json:"status"`
	PausedAt         string `json:"paused_at,omitempty"`
	CancelledAt      string `json:"cancelled_at,omitempty"`
	CreatedAt        string `json:"created_at"`
}
