package dto

import "github.com/qs3c/coach_go_server/internal/pkg/entitlement"

// BundleProductInput 套餐商品条目
type BundleProductInput struct {
	Name      string  `json:"name" binding:"required,max=200"`
	ProductID string  `json:"productId,omitempty" binding:"omitempty,max=100"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
}

// BundleServiceInput 套餐服务条目
type BundleServiceInput struct {
	Name     string `json:"name" binding:"required,max=200"`
	Sessions int    `json:"sessions" binding:"required,min=1,max=1000"`
}

// CreateBundleRequest 创建套餐请求
type CreateBundleRequest struct {
	Title        string               `json:"title" binding:"required,max=200"`
	Description  string               `json:"description,omitempty" binding:"omitempty,max=2000"`
	PriceCents   int64                `json:"price_cents" binding:"min=0"`
	Recurring    bool                 `json:"recurring"`
	Status       string               `json:"status,omitempty" binding:"omitempty,oneof=draft published"`
	Products     []BundleProductInput `json:"products,omitempty" binding:"omitempty,max=50,dive"`
	Services     []BundleServiceInput `json:"services,omitempty" binding:"omitempty,max=50,dive"`
	Goals        []string             `json:"goals,omitempty" binding:"omitempty,max=20,dive,max=200"`
	SessionCount *int                 `json:"session_count,omitempty" binding:"omitempty,min=0,max=1000"`
}

// UpdateBundleRequest 更新套餐请求，列表字段为 nil 时保持不变
type UpdateBundleRequest struct {
	Title        *string              `json:"title,omitempty" binding:"omitempty,max=200"`
	Description  *string              `json:"description,omitempty" binding:"omitempty,max=2000"`
	PriceCents   *int64               `json:"price_cents,omitempty" binding:"omitempty,min=0"`
	Recurring    *bool                `json:"recurring,omitempty"`
	Status       *string              `json:"status,omitempty" binding:"omitempty,oneof=draft published archived"`
	Products     []BundleProductInput `json:"products,omitempty" binding:"omitempty,max=50,dive"`
	Services     []BundleServiceInput `json:"services,omitempty" binding:"omitempty,max=50,dive"`
	Goals        []string             `json:"goals,omitempty" binding:"omitempty,max=20,dive,max=200"`
	SessionCount *int                 `json:"session_count,omitempty" binding:"omitempty,min=0,max=1000"`
}

// BundleDetail 套餐详情，JSON 字段已解析
type BundleDetail struct {
	ID           int64                     `json:"id"`
	TrainerID    int64                     `json:"trainer_id"`
	Title        string                    `json:"title"`
	Description  string                    `json:"description"`
	PriceCents   int64                     `json:"price_cents"`
	Recurring    bool                      `json:"recurring"`
	CoverURL     string                    `json:"cover_url,omitempty"`
	Status       string                    `json:"status"`
	Products     []entitlement.ProductItem `json:"products"`
	Services     []entitlement.ServiceItem `json:"services"`
	Goals        []string                  `json:"goals"`
	SessionCount int                       `json:"session_count"`
	CreatedAt    string                    `json:"created_at"`
	UpdatedAt    string                    `json:"updated_at"`
}
