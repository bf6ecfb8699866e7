package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return client, cleanup
}

func TestNewQueue(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	q := NewQueue(client, "test_queue")

	assert.NotNil(t, q)
	assert.Equal(t, "test_queue", q.queueName)
	assert.Equal(t, client, q.client)
}

func TestQueue_PushPop(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	q := NewQueue(client, "alerts")

	raisedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	job := &AlertJob{
		SubscriptionID: 42,
		ClientID:       7,
		TrainerID:      3,
		BundleTitle:    "Summer Shred",
		Alerts:         []string{"Sessions are running low"},
		Source:         "api",
		RaisedAt:       raisedAt,
	}
	require.NoError(t, q.Push(ctx, job))

	length, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)

	got, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, int64(42), got.SubscriptionID)
	assert.Equal(t, int64(7), got.ClientID)
	assert.Equal(t, int64(3), got.TrainerID)
	assert.Equal(t, "Summer Shred", got.BundleTitle)
	assert.Equal(t, []string{"Sessions are running low"}, got.Alerts)
	assert.Equal(t, "api", got.Source)
	assert.True(t, raisedAt.Equal(got.RaisedAt))
}

func TestQueue_FIFO(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	q := NewQueue(client, "fifo")

	for i := 1; i <= 3; i++ {
		require.NoError(t, q.Push(ctx, &AlertJob{SubscriptionID: int64(i)}))
	}

	for i := 1; i <= 3; i++ {
		got, err := q.Pop(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(i), got.SubscriptionID)
	}
}

func TestQueue_PopEmpty(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	q := NewQueue(client, "empty")
	got, err := q.Pop(context.Background(), 10*time.Millisecond)

	// miniredis 对 BRPop 超时的支持不完整，只要求不返回任务
	if err == nil {
		assert.Nil(t, got)
	}
}

func TestQueue_MalformedPayload(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	q := NewQueue(client, "broken")
	require.NoError(t, client.LPush(ctx, "broken", "{not json").Err())

	got, err := q.Pop(ctx, time.Second)
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestQueue_Isolation(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	q1 := NewQueue(client, "queue_1")
	q2 := NewQueue(client, "queue_2")

	require.NoError(t, q1.Push(ctx, &AlertJob{SubscriptionID: 1}))
	require.NoError(t, q2.Push(ctx, &AlertJob{SubscriptionID: 2}))

	len1, _ := q1.Length(ctx)
	len2, _ := q2.Length(ctx)
	assert.Equal(t, int64(1), len1)
	assert.Equal(t, int64(1), len2)

	r1, _ := q1.Pop(ctx, time.Second)
	r2, _ := q2.Pop(ctx, time.Second)
	assert.Equal(t, int64(1), r1.SubscriptionID)
	assert.Equal(t, int64(2), r2.SubscriptionID)
}
