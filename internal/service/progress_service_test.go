package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/coach_go_server/config"
	"github.com/qs3c/coach_go_server/internal/model"
	"github.com/qs3c/coach_go_server/internal/model/dto"
	"github.com/qs3c/coach_go_server/internal/pkg/progress"
	"github.com/qs3c/coach_go_server/internal/repository"
	"github.com/qs3c/coach_go_server/internal/testutil"
)

func setupProgressService(t *testing.T, cfg config.ProgressConfig) (*ProgressService, *fakeEnqueuer, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	enqueuer := &fakeEnqueuer{}
	service := NewProgressService(
		repository.NewSubscriptionRepository(db),
		repository.NewBundleRepository(db),
		repository.NewDeliveryRepository(db),
		enqueuer,
		cfg,
	)
	return service, enqueuer, db
}

func TestProgressService_GetProgress(t *testing.T) {
	service, enqueuer, db := setupProgressService(t, config.ProgressConfig{EnqueueAlerts: true})
	trainer := testutil.TestTrainer(t, db)
	client := testutil.TestUser(t, db)
	otherClient := testutil.TestUser(t, db)

	bundle := testutil.TestBundle(t, db, trainer.ID,
		testutil.WithBundleTitle("Summer Shred"),
		testutil.WithProducts(`[{"name":"Whey Protein","quantity":4},{"name":"Shaker","quantity":1}]`),
		testutil.WithServices(`[{"name":"PT","sessions":10}]`),
	)
	sub := testutil.TestSubscription(t, db, trainer.ID, client.ID,
		testutil.WithBundle(bundle.ID), testutil.WithSessions(0, 9))

	testutil.TestDelivery(t, db, trainer.ID, client.ID, sub.ID, "whey protein", 3, model.DeliveryDelivered)
	testutil.TestDelivery(t, db, trainer.ID, client.ID, 0, " SHAKER ", 1, model.DeliveryConfirmed)
	testutil.TestDelivery(t, db, trainer.ID, client.ID, sub.ID, "Whey Protein", 5, model.DeliveryPending)
	testutil.TestDelivery(t, db, trainer.ID, otherClient.ID, 0, "Whey Protein", 5, model.DeliveryDelivered)

	snap, err := service.GetProgress(context.Background(), actorOf(client), sub.ID)
	require.NoError(t, err)

	assert.Equal(t, "Summer Shred", snap.BundleTitle)
	require.NotNil(t, snap.BundleDraftID)
	assert.Equal(t, bundle.ID, *snap.BundleDraftID)
	assert.Equal(t, 10, snap.SessionsIncluded)
	assert.Equal(t, 9, snap.SessionsUsed)
	assert.Equal(t, 5.0, snap.ProductsIncluded)
	assert.Equal(t, 4.0, snap.ProductsUsed)
	assert.Equal(t, 80, snap.ProductsProgressPct)
	assert.Equal(t, []string{progress.AlertSessionsLow, progress.AlertProductsLow}, snap.Alerts)

	jobs := enqueuer.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, sub.ID, jobs[0].SubscriptionID)
	assert.Equal(t, client.ID, jobs[0].ClientID)
	assert.Equal(t, trainer.ID, jobs[0].TrainerID)
	assert.Equal(t, SourceAPI, jobs[0].Source)
	assert.Equal(t, snap.Alerts, jobs[0].Alerts)
}

func TestProgressService_GetProgress_ItemsDocuments(t *testing.T) {
	service, _, db := setupProgressService(t, config.ProgressConfig{})
	trainer := testutil.TestTrainer(t, db)
	client := testutil.TestUser(t, db)

	bundle := testutil.TestBundle(t, db, trainer.ID,
		testutil.WithProducts(`{"items":[{"name":"Protein","quantity":4}]}`),
		testutil.WithServices(`{"items":[{"name":"PT","sessions":10}]}`),
	)
	sub := testutil.TestSubscription(t, db, trainer.ID, client.ID, testutil.WithBundle(bundle.ID))
	testutil.TestDelivery(t, db, trainer.ID, client.ID, sub.ID, "protein", 3, model.DeliveryDelivered)

	snap, err := service.GetProgress(context.Background(), actorOf(client), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, snap.SessionsIncluded)
	assert.Equal(t, 4.0, snap.ProductsIncluded)
	assert.Equal(t, 3.0, snap.ProductsUsed)
	assert.Equal(t, 75, snap.ProductsProgressPct)
}

func TestProgressService_GetProgress_BundleWrittenByService(t *testing.T) {
	service, _, db := setupProgressService(t, config.ProgressConfig{})
	bundles := NewBundleService(repository.NewBundleRepository(db), nil, &config.Config{})
	trainer := testutil.TestTrainer(t, db)
	client := testutil.TestUser(t, db)

	sessionCount := 12
	detail, err := bundles.Create(actorOf(trainer), &dto.CreateBundleRequest{
		Title:        "Base Building",
		Products:     []dto.BundleProductInput{{Name: "Bands", Quantity: 2}},
		Goals:        []string{"Deadlift 150kg"},
		SessionCount: &sessionCount,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Deadlift 150kg"}, detail.Goals)
	assert.Equal(t, 12, detail.SessionCount)

	sub := testutil.TestSubscription(t, db, trainer.ID, client.ID,
		testutil.WithBundle(detail.ID), testutil.WithSessions(0, 3))

	snap, err := service.GetProgress(context.Background(), actorOf(trainer), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, snap.SessionsIncluded)
	assert.Equal(t, 9, snap.SessionsRemaining)
	assert.Equal(t, 25, snap.SessionsProgressPct)
	assert.Equal(t, 2.0, snap.ProductsIncluded)
}

func TestProgressService_GetProgress_DuplicateNames(t *testing.T) {
	products := testutil.WithProducts(`[{"name":"Protein","quantity":2},{"name":"Protein","quantity":1}]`)

	for _, tc := range []struct {
		name   string
		dedupe bool
		used   float64
	}{
		{"counted per line", false, 6},
		{"deduped", true, 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			service, _, db := setupProgressService(t, config.ProgressConfig{DedupeProductNames: tc.dedupe})
			trainer := testutil.TestTrainer(t, db)
			client := testutil.TestUser(t, db)
			bundle := testutil.TestBundle(t, db, trainer.ID, products)
			sub := testutil.TestSubscription(t, db, trainer.ID, client.ID, testutil.WithBundle(bundle.ID))
			testutil.TestDelivery(t, db, trainer.ID, client.ID, sub.ID, "Protein", 3, model.DeliveryDelivered)

			snap, err := service.GetProgress(context.Background(), actorOf(trainer), sub.ID)
			require.NoError(t, err)
			assert.Equal(t, 3.0, snap.ProductsIncluded)
			assert.Equal(t, tc.used, snap.ProductsUsed)
		})
	}
}

func TestProgressService_GetProgress_NoBundle(t *testing.T) {
	service, enqueuer, db := setupProgressService(t, config.ProgressConfig{EnqueueAlerts: true})
	trainer := testutil.TestTrainer(t, db)
	client := testutil.TestUser(t, db)
	sub := testutil.TestSubscription(t, db, trainer.ID, client.ID, testutil.WithSessions(10, 2))

	snap, err := service.GetProgress(context.Background(), actorOf(trainer), sub.ID)
	require.NoError(t, err)
	assert.Nil(t, snap.BundleDraftID)
	assert.Equal(t, progress.DefaultBundleTitle, snap.BundleTitle)
	assert.Equal(t, 8, snap.SessionsRemaining)
	assert.Empty(t, snap.Alerts)
	assert.Empty(t, enqueuer.Jobs())
}

func TestProgressService_GetProgress_DeletedBundle(t *testing.T) {
	service, _, db := setupProgressService(t, config.ProgressConfig{})
	trainer := testutil.TestTrainer(t, db)
	client := testutil.TestUser(t, db)
	bundle := testutil.TestBundle(t, db, trainer.ID, testutil.WithServices(`[{"name":"PT","sessions":4}]`))
	sub := testutil.TestSubscription(t, db, trainer.ID, client.ID, testutil.WithBundle(bundle.ID))
	require.NoError(t, db.Delete(&model.BundleDraft{}, bundle.ID).Error)

	snap, err := service.GetProgress(context.Background(), actorOf(trainer), sub.ID)
	require.NoError(t, err)
	assert.Nil(t, snap.BundleDraftID)
	assert.Equal(t, 0, snap.SessionsIncluded)
}

func TestProgressService_GetProgress_Permissions(t *testing.T) {
	service, _, db := setupProgressService(t, config.ProgressConfig{})
	trainer := testutil.TestTrainer(t, db)
	client := testutil.TestUser(t, db)
	stranger := testutil.TestTrainer(t, db)
	sub := testutil.TestSubscription(t, db, trainer.ID, client.ID)

	_, err := service.GetProgress(context.Background(), actorOf(stranger), sub.ID)
	assert.Equal(t, ErrPermissionDenied, err)

	_, err = service.GetProgress(context.Background(), actorOf(trainer), 99999)
	assert.Equal(t, ErrSubscriptionNotFound, err)
}

func TestProgressService_GetProgress_AlertsDisabled(t *testing.T) {
	service, enqueuer, db := setupProgressService(t, config.ProgressConfig{EnqueueAlerts: false})
	trainer := testutil.TestTrainer(t, db)
	client := testutil.TestUser(t, db)
	sub := testutil.TestSubscription(t, db, trainer.ID, client.ID, testutil.WithSessions(2, 2))

	snap, err := service.GetProgress(context.Background(), actorOf(trainer), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{progress.AlertSessionsExhausted}, snap.Alerts)
	assert.Empty(t, enqueuer.Jobs())
}

func TestProgressService_ListTrainerProgress(t *testing.T) {
	service, enqueuer, db := setupProgressService(t, config.ProgressConfig{EnqueueAlerts: true})
	trainer := testutil.TestTrainer(t, db)
	client := testutil.TestUser(t, db)
	bundle := testutil.TestBundle(t, db, trainer.ID, testutil.WithBundleTitle("Starter"))

	testutil.TestSubscription(t, db, trainer.ID, client.ID, testutil.WithBundle(bundle.ID), testutil.WithSessions(5, 5))
	testutil.TestSubscription(t, db, trainer.ID, client.ID, testutil.WithSessions(5, 1))
	testutil.TestSubscription(t, db, trainer.ID, client.ID, testutil.WithStatus(model.SubscriptionCancelled))

	snaps, err := service.ListTrainerProgress(context.Background(), actorOf(trainer))
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "Starter", snaps[0].BundleTitle)
	assert.Equal(t, []string{progress.AlertSessionsExhausted}, snaps[0].Alerts)
	assert.Equal(t, progress.DefaultBundleTitle, snaps[1].BundleTitle)
	assert.Empty(t, enqueuer.Jobs())

	_, err = service.ListTrainerProgress(context.Background(), actorOf(client))
	assert.Equal(t, ErrPermissionDenied, err)
}

func TestProgressService_SweepActive(t *testing.T) {
	service, enqueuer, db := setupProgressService(t, config.ProgressConfig{EnqueueAlerts: true})
	trainer := testutil.TestTrainer(t, db)
	client := testutil.TestUser(t, db)

	for i := 0; i < sweepBatchSize+5; i++ {
		testutil.TestSubscription(t, db, trainer.ID, client.ID, testutil.WithSessions(10, 1))
	}
	low := testutil.TestSubscription(t, db, trainer.ID, client.ID, testutil.WithSessions(10, 8))
	testutil.TestSubscription(t, db, trainer.ID, client.ID,
		testutil.WithSessions(10, 10), testutil.WithStatus(model.SubscriptionPaused))

	n, err := service.SweepActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sweepBatchSize+6, n)

	jobs := enqueuer.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, low.ID, jobs[0].SubscriptionID)
	assert.Equal(t, SourceSweep, jobs[0].Source)
}

func TestProgressService_Refresh(t *testing.T) {
	service, enqueuer, db := setupProgressService(t, config.ProgressConfig{EnqueueAlerts: true})
	trainer := testutil.TestTrainer(t, db)
	client := testutil.TestUser(t, db)
	sub := testutil.TestSubscription(t, db, trainer.ID, client.ID, testutil.WithSessions(4, 4))

	require.NoError(t, service.Refresh(context.Background(), sub.ID))
	jobs := enqueuer.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, SourceEvent, jobs[0].Source)

	assert.Equal(t, ErrSubscriptionNotFound, service.Refresh(context.Background(), 99999))
}
