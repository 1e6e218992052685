package services_test

import (
	"context"
	"sync"
	"testing"

	"ecopoints-server/database"
	"ecopoints-server/models"
	"ecopoints-server/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedeemDebitsAndRecords(t *testing.T) {
	store := database.NewMemoryStore()
	catalog := services.NewCatalog(store)
	ledger := services.NewPointsLedger(store)
	redemptions := services.NewRedemptions(store, catalog)
	user := newTestUser(t, store, models.RoleStudent)
	mug := store.AddReward("Campus Mug", 500)
	ctx := context.Background()

	_, err := ledger.Credit(ctx, user.ID, 500, models.ReasonDeliveryCredit, uuid.New())
	require.NoError(t, err)

	// An exact-balance redemption succeeds and leaves zero
	redemption, err := redemptions.Redeem(ctx, user.ID, mug.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), redemption.PointsSpent)
	assert.Equal(t, models.RedemptionStatusRecorded, redemption.Status)

	balance, err := ledger.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
	requireReconciled(t, ledger, user.ID)

	recorded, err := redemptions.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, redemption.ID, recorded[0].ID)

	entries, err := ledger.History(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(-500), entries[1].Delta)
	assert.Equal(t, models.ReasonRedemptionDebit, entries[1].Reason)
	assert.Equal(t, redemption.ID, entries[1].RefID)
}

func TestRedeemInsufficientBalance(t *testing.T) {
	store := database.NewMemoryStore()
	catalog := services.NewCatalog(store)
	ledger := services.NewPointsLedger(store)
	redemptions := services.NewRedemptions(store, catalog)
	user := newTestUser(t, store, models.RoleStudent)
	mug := store.AddReward("Campus Mug", 500)
	ctx := context.Background()

	_, err := ledger.Credit(ctx, user.ID, 499, models.ReasonDeliveryCredit, uuid.New())
	require.NoError(t, err)

	_, err = redemptions.Redeem(ctx, user.ID, mug.ID)
	assert.ErrorIs(t, err, services.ErrInsufficientBalance)

	// A rejected redemption writes nothing
	balance, err := ledger.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(499), balance)

	recorded, err := redemptions.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, recorded)
}

func TestRedeemUnknownReward(t *testing.T) {
	store := database.NewMemoryStore()
	catalog := services.NewCatalog(store)
	redemptions := services.NewRedemptions(store, catalog)
	user := newTestUser(t, store, models.RoleStudent)

	_, err := redemptions.Redeem(context.Background(), user.ID, uuid.New())
	assert.ErrorIs(t, err, services.ErrUnknownReward)
}

func TestConcurrentRedemptionsNeverOverdraft(t *testing.T) {
	store := database.NewMemoryStore()
	catalog := services.NewCatalog(store)
	ledger := services.NewPointsLedger(store)
	redemptions := services.NewRedemptions(store, catalog)
	user := newTestUser(t, store, models.RoleStudent)
	voucher := store.AddReward("Canteen Voucher", 100)
	ctx := context.Background()

	_, err := ledger.Credit(ctx, user.ID, 450, models.ReasonDeliveryCredit, uuid.New())
	require.NoError(t, err)

	const attempts = 10
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, err := redemptions.Redeem(ctx, user.ID, voucher.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case err == services.ErrInsufficientBalance:
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 4, successes)

	balance, err := ledger.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)
	requireReconciled(t, ledger, user.ID)

	recorded, err := redemptions.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, recorded, successes)
}
