package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/coach_go_server/internal/model"
	"github.com/qs3c/coach_go_server/internal/testutil"
)

func TestDeliveryRepository_ListConsumed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewDeliveryRepository(db)
	trainer := testutil.TestTrainer(t, db)
	client := testutil.TestUser(t, db)
	otherClient := testutil.TestUser(t, db)
	sub := testutil.TestSubscription(t, db, trainer.ID, client.ID)
	otherSub := testutil.TestSubscription(t, db, trainer.ID, client.ID)

	testutil.TestDelivery(t, db, trainer.ID, client.ID, sub.ID, "Whey", 2, model.DeliveryDelivered)
	testutil.TestDelivery(t, db, trainer.ID, client.ID, sub.ID, "Whey", 1, model.DeliveryConfirmed)
	testutil.TestDelivery(t, db, trainer.ID, client.ID, sub.ID, "Whey", 9, model.DeliveryPending)
	testutil.TestDelivery(t, db, trainer.ID, client.ID, sub.ID, "Whey", 9, model.DeliveryDisputed)
	// 未关联订阅，同一对教练/客户
	testutil.TestDelivery(t, db, trainer.ID, client.ID, 0, "Shaker", 1, model.DeliveryDelivered)
	// 其他订阅 / 其他客户
	testutil.TestDelivery(t, db, trainer.ID, client.ID, otherSub.ID, "Whey", 5, model.DeliveryDelivered)
	testutil.TestDelivery(t, db, trainer.ID, otherClient.ID, 0, "Whey", 5, model.DeliveryDelivered)

	items, err := repo.ListConsumed(context.Background(), sub)
	require.NoError(t, err)
	require.Len(t, items, 3)

	total := 0
	for _, d := range items {
		total += d.Quantity
	}
	assert.Equal(t, 4, total)
}

func TestDeliveryRepository_TransitionStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewDeliveryRepository(db)
	trainer := testutil.TestTrainer(t, db)
	client := testutil.TestUser(t, db)
	d := testutil.TestDelivery(t, db, trainer.ID, client.ID, 0, "Bands", 1, model.DeliveryPending)

	ok, err := repo.TransitionStatus(d.ID, model.DeliveryPending, map[string]interface{}{"status": model.DeliveryReady})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TransitionStatus(d.ID, model.DeliveryPending, map[string]interface{}{"status": model.DeliveryCancelled})
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := repo.GetByID(d.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryReady, found.Status)
}

func TestDeliveryRepository_ListBySubscription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewDeliveryRepository(db)
	trainer := testutil.TestTrainer(t, db)
	client := testutil.TestUser(t, db)
	sub := testutil.TestSubscription(t, db, trainer.ID, client.ID)
	testutil.TestDelivery(t, db, trainer.ID, client.ID, sub.ID, "A", 1, model.DeliveryPending)
	testutil.TestDelivery(t, db, trainer.ID, client.ID, sub.ID, "B", 1, model.DeliveryDelivered)
	testutil.TestDelivery(t, db, trainer.ID, client.ID, 0, "C", 1, model.DeliveryDelivered)

	items, total, err := repo.ListBySubscription(sub.ID, 1, 20, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)

	_, total, err = repo.ListBySubscription(sub.ID, 1, 20, model.DeliveryDelivered)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
