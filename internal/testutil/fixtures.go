package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/coach_go_server/internal/model"
)

var seq atomic.Int64

func next() int64 {
	return seq.Add(1)
}

// TestUser 创建测试用户，默认角色为客户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := next()
	email := fmt.Sprintf("user_%d@example.com", n)
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:     fmt.Sprintf("testuser_%d", n),
		Email:        &email,
		PasswordHash: &passwordHash,
		Role:         model.RoleClient,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// TestTrainer 创建教练
func TestTrainer(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	return TestUser(t, db, WithRole(model.RoleTrainer))
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// WithPasswordHash 设置密码哈希
func WithPasswordHash(hash string) func(*model.User) {
	return func(u *model.User) {
		u.PasswordHash = &hash
	}
}

// TestBundle 创建测试套餐
func TestBundle(t *testing.T, db *gorm.DB, trainerID int64, opts ...func(*model.BundleDraft)) *model.BundleDraft {
	t.Helper()

	bundle := &model.BundleDraft{
		TrainerID:    trainerID,
		Title:        fmt.Sprintf("Bundle %d", next()),
		Status:       model.BundleStatusPublished,
		ProductsJSON: model.JSONText(`[]`),
		ServicesJSON: model.JSONText(`[]`),
		GoalsJSON:    model.JSONText(`[]`),
	}

	for _, opt := range opts {
		opt(bundle)
	}

	if err := db.Create(bundle).Error; err != nil {
		t.Fatalf("Failed to create test bundle: %v", err)
	}

	return bundle
}

// WithBundleTitle 设置套餐标题
func WithBundleTitle(title string) func(*model.BundleDraft) {
	return func(b *model.BundleDraft) {
		b.Title = title
	}
}

// WithProducts 设置商品 JSON（原样写入）
func WithProducts(raw string) func(*model.BundleDraft) {
	return func(b *model.BundleDraft) {
		b.ProductsJSON = model.JSONText(raw)
	}
}

// WithServices 设置服务 JSON（原样写入）
func WithServices(raw string) func(*model.BundleDraft) {
	return func(b *model.BundleDraft) {
		b.ServicesJSON = model.JSONText(raw)
	}
}

// WithGoals 设置目标 JSON（原样写入）
func WithGoals(raw string) func(*model.BundleDraft) {
	return func(b *model.BundleDraft) {
		b.GoalsJSON = model.JSONText(raw)
	}
}

// TestSubscription 创建测试订阅
func TestSubscription(t *testing.T, db *gorm.DB, trainerID, clientID int64, opts ...func(*model.Subscription)) *model.Subscription {
	t.Helper()

	sub := &model.Subscription{
		TrainerID: trainerID,
		ClientID:  clientID,
		Status:    model.SubscriptionActive,
	}

	for _, opt := range opts {
		opt(sub)
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return sub
}

// WithBundle 关联套餐
func WithBundle(bundleID int64) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.BundleDraftID = &bundleID
	}
}

// WithSessions 设置课时权益和已用课时
func WithSessions(included, used int) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.SessionsIncluded = included
		s.SessionsUsed = used
	}
}

// WithStatus 设置订阅状态
func WithStatus(status string) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.Status = status
	}
}

// TestDelivery 创建测试交付记录，subscriptionID 为 0 时不关联订阅
func TestDelivery(t *testing.T, db *gorm.DB, trainerID, clientID, subscriptionID int64, productName string, qty int, status string) *model.Delivery {
	t.Helper()

	delivery := &model.Delivery{
		TrainerID:   trainerID,
		ClientID:    clientID,
		ProductName: productName,
		Quantity:    qty,
		Status:      status,
	}
	if subscriptionID != 0 {
		delivery.SubscriptionID = &subscriptionID
	}

	if err := db.Create(delivery).Error; err != nil {
		t.Fatalf("Failed to create test delivery: %v", err)
	}

	return delivery
}

// TestTrainingSession 创建测试课时
func TestTrainingSession(t *testing.T, db *gorm.DB, sub *model.Subscription, status string) *model.TrainingSession {
	t.Helper()

	session := &model.TrainingSession{
		SubscriptionID:  sub.ID,
		TrainerID:       sub.TrainerID,
		ClientID:        sub.ClientID,
		ScheduledAt:     time.Now().Add(24 * time.Hour),
		DurationMinutes: 60,
		Status:          status,
	}

	if err := db.Create(session).Error; err != nil {
		t.Fatalf("Failed to create test training session: %v", err)
	}

	return session
}

// TestNotification 创建测试提醒
func TestNotification(t *testing.T, db *gorm.DB, userID, subscriptionID int64, message string, read bool) *model.Notification {
	t.Helper()

	n := &model.Notification{
		UserID:         userID,
		SubscriptionID: subscriptionID,
		Kind:           model.NotificationProgressAlert,
		Message:        message,
		IsRead:         read,
	}

	if err := db.Create(n).Error; err != nil {
		t.Fatalf("Failed to create test notification: %v", err)
	}

	return n
}
