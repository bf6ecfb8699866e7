package dto

// CreateDeliveryRequest 创建交付记录
type CreateDeliveryRequest struct {
	ProductName string `json:"product_name" binding:"required,max=200"`
	ProductID   string `json:"product_id,omitempty" binding:"omitempty,max=100"`
	Quantity    int    `json:"quantity" binding:"required,min=1,max=10000"`
	Note        string `json:"note,omitempty" binding:"omitempty,max=1000"`
}

// UpdateDeliveryStatusRequest 交付状态流转
type UpdateDeliveryStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ready delivered confirmed disputed cancelled"`
	Note   string `json:"note,omitempty" binding:"omitempty,max=1000"`
}

// DeliveryInfo 交付信息
type DeliveryInfo struct {
	ID             int64  `json:"id"`
	SubscriptionID *int64 `json:"subscription_id"`
	TrainerID      int64  `json:"trainer_id"`
	ClientID       int64  `json:"client_id"`
	ProductName    string `json:"product_name"`
	ProductID      string `json:"product_id,omitempty"`
	Quantity       int    `json:"quantity"`
	Status         string `json:"status"`
	Note           string `json:"note,omitempty"`
	DeliveredAt    string `json:"delivered_at,omitempty"`
	CreatedAt      string `json:"created_at"`
}
