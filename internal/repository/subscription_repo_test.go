package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/coach_go_server/internal/model"
	"github.com/qs3c/coach_go_server/internal/testutil"
)

func TestSubscriptionRepository_GetByIDWithBundle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	trainer := testutil.TestTrainer(t, db)
	client := testutil.TestUser(t, db)
	bundle := testutil.TestBundle(t, db, trainer.ID, testutil.WithBundleTitle("Starter"))
	sub := testutil.TestSubscription(t, db, trainer.ID, client.ID, testutil.WithBundle(bundle.ID), testutil.WithSessions(10, 2))

	found, err := repo.GetByIDWithBundle(sub.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Bundle)
	assert.Equal(t, "Starter", found.Bundle.Title)
	assert.Equal(t, 10, found.SessionsIncluded)
	assert.Equal(t, 2, found.SessionsUsed)

	_, err = repo.GetByID(99999)
	assert.Error(t, err)
}

func TestSubscriptionRepository_TransitionStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	trainer := testutil.TestTrainer(t, db)
	client := testutil.TestUser(t, db)
	sub := testutil.TestSubscription(t, db, trainer.ID, client.ID)

	now := time.Now()
	ok, err := repo.TransitionStatus(sub.ID, []string{model.SubscriptionActive}, map[string]interface{}{
		"status":    model.SubscriptionPaused,
		"paused_at": now,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	// 已暂停，不能再次从 active 流转
	ok, err = repo.TransitionStatus(sub.ID, []string{model.SubscriptionActive}, map[string]interface{}{
		"status": model.SubscriptionPaused,
	})
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := repo.GetByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionPaused, found.Status)
	assert.NotNil(t, found.PausedAt)
}

func TestSubscriptionRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	trainer := testutil.TestTrainer(t, db)
	clientA := testutil.TestUser(t, db)
	clientB := testutil.TestUser(t, db)

	testutil.TestSubscription(t, db, trainer.ID, clientA.ID)
	testutil.TestSubscription(t, db, trainer.ID, clientB.ID)
	testutil.TestSubscription(t, db, trainer.ID, clientB.ID, testutil.WithStatus(model.SubscriptionCancelled))

	_, total, err := repo.List(ListFilter{TrainerID: trainer.ID}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	items, total, err := repo.List(ListFilter{ClientID: clientB.ID, Status: model.SubscriptionActive}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, clientB.ID, items[0].ClientID)
}

func TestSubscriptionRepository_ListActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	ctx := context.Background()
	trainer := testutil.TestTrainer(t, db)
	other := testutil.TestTrainer(t, db)
	client := testutil.TestUser(t, db)

	s1 := testutil.TestSubscription(t, db, trainer.ID, client.ID)
	testutil.TestSubscription(t, db, trainer.ID, client.ID, testutil.WithStatus(model.SubscriptionPaused))
	s3 := testutil.TestSubscription(t, db, other.ID, client.ID)

	mine, err := repo.ListActiveByTrainer(ctx, trainer.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, s1.ID, mine[0].ID)

	batch, err := repo.ListActiveAfter(ctx, 0, 1)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, s1.ID, batch[0].ID)

	batch, err = repo.ListActiveAfter(ctx, s1.ID, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, s3.ID, batch[0].ID)
}
