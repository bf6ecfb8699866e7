package model

import (
	"time"
)

const (
	BundleStatusDraft     = "draft"
	BundleStatusPublished = "published"
	BundleStatusArchived  = "archived"
)

// BundleDraft 教练编排的套餐模板，products / services / goals 以 JSON 保存
type BundleDraft struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	TrainerID    int64     `gorm:"not null;index" json:"trainer_id"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	PriceCents   int64     `gorm:"default:0" json:"price_cents"`
	Recurring    bool      `gorm:"default:false" json:"recurring"`
	CoverURL     string    `gorm:"size:500" json:"cover_url,omitempty"`
	Status       string    `gorm:"size:20;default:draft;index" json:"status"` // draft, published, archived
	ProductsJSON JSONText  `gorm:"column:products_json;type:json" json:"products_json"`
	ServicesJSON JSONText  `gorm:"column:services_json;type:json" json:"services_json"`
	GoalsJSON    JSONText  `gorm:"column:goals_json;type:json" json:"goals_json"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// 关联
	Trainer *User `gorm:"foreignKey:TrainerID" json:"trainer,omitempty"`
}

func (BundleDraft) TableName() string {
	return "bundle_drafts"
}
