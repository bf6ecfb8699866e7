package dto

// NotificationInfo 站内提醒
type NotificationInfo struct {
	ID             int64  `json:"id"`
	SubscriptionID int64  `json:"subscription_id"`
	Kind           string `json:"kind"`
	Message        string `json:"message"`
	IsRead         bool   `json:"is_read"`
	CreatedAt      string `json:"created_at"`
}
