package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelProgressAlerts = "progress_alerts"

	TypeProgressAlert = "progress_alert"
)

// AlertEvent 推送给在线用户的提醒事件
type AlertEvent struct {
	Type           string   `json:"type"`
	UserID         int64    `json:"user_id"`
	SubscriptionID int64    `json:"subscription_id"`
	BundleTitle    string   `json:"bundle_title,omitempty"`
	Alerts         []string `json:"alerts"`
	Unread         int64    `json:"unread,omitempty"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishAlert 发布提醒事件
func (p *Publisher) PublishAlert(ctx context.Context, evt *AlertEvent) error {
	evt.Type = TypeProgressAlert

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	return p.client.Publish(ctx, ChannelProgressAlerts, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅提醒事件，阻塞直到 ctx 取消
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*AlertEvent)) error {
	ps := s.client.Subscribe(ctx, ChannelProgressAlerts)
	defer ps.Close()

	// 等待订阅确认，保证返回前的发布不会丢失
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", ChannelProgressAlerts, err)
	}

	ch := ps.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var evt AlertEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				continue // 忽略解析错误
			}

			handler(&evt)
		}
	}
}
