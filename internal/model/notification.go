package model

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const NotificationProgressAlert = "progress_alert"

type Notification struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	UserID         int64     `gorm:"not null;index" json:"user_id"`
	SubscriptionID int64     `gorm:"not null;index" json:"subscription_id"`
	Kind           string    `gorm:"size:30;not null" json:"kind"`
	Message        string    `gorm:"size:255;not null" json:"message"`
	IsRead         bool      `gorm:"default:false;index" json:"is_read"`
	// UnreadKey 未读时为 (用户, 订阅, 文案) 的摘要，已读后置空；唯一索引保证同一提醒最多一条未读
	UnreadKey      *string   `gorm:"size:36;uniqueIndex" json:"-"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate 未读提醒写入前补齐 UnreadKey
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if !n.IsRead && n.UnreadKey == nil {
		key := NotificationUnreadKey(n.UserID, n.SubscriptionID, n.Message)
		n.UnreadKey = &key
	}
	return nil
}

// NotificationUnreadKey 同一用户、订阅、文案得到相同的 key
func NotificationUnreadKey(userID, subscriptionID int64, message string) string {
	name := strconv.FormatInt(userID, 10) + ":" + strconv.FormatInt(subscriptionID, 10) + ":" + message
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
