package services_test

import (
	"context"
	"testing"
	"time"

	"ecopoints-server/database"
	"ecopoints-server/models"
	"ecopoints-server/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deliveryFixture struct {
	store      *database.MemoryStore
	catalog    *services.Catalog
	ledger     *services.PointsLedger
	deliveries *services.Deliveries
	student    *models.User
	staff      *models.User
	paper      *models.WasteType
	glass      *models.WasteType
}

func newDeliveryFixture(t *testing.T) *deliveryFixture {
	t.Helper()
	store := database.NewMemoryStore()
	catalog := services.NewCatalog(store)
	return &deliveryFixture{
		store:      store,
		catalog:    catalog,
		ledger:     services.NewPointsLedger(store),
		deliveries: services.NewDeliveries(store, catalog),
		student:    newTestUser(t, store, models.RoleStudent),
		staff:      newTestUser(t, store, models.RoleStaff),
		paper:      store.AddWasteType("paper", 10),
		glass:      store.AddWasteType("glass", 8),
	}
}

func TestCreatePreDeliveryComputesExpectedPoints(t *testing.T) {
	f := newDeliveryFixture(t)
	ctx := context.Background()

	delivery, err := f.deliveries.CreatePreDelivery(ctx, f.student.ID, []services.ItemInput{
		{WasteTypeID: f.paper.ID, Weight: 2.0},
	}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, models.DeliveryStatusPending, delivery.Status)
	assert.Equal(t, int64(20), delivery.ExpectedPoints)
	assert.Nil(t, delivery.ActualPoints)
	require.Len(t, delivery.EstimatedItems, 1)
	assert.Equal(t, models.ItemKindEstimated, delivery.EstimatedItems[0].Kind)

	// Pre-registration never touches the balance
	balance, err := f.ledger.Balance(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestCreatePreDeliveryRoundsFractionalPoints(t *testing.T) {
	f := newDeliveryFixture(t)
	ctx := context.Background()

	// 0.3 kg glass at 8/kg accumulates 2.4 points, rounded once to 2
	delivery, err := f.deliveries.CreatePreDelivery(ctx, f.student.ID, []services.ItemInput{
		{WasteTypeID: f.glass.ID, Weight: 0.3},
	}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), delivery.ExpectedPoints)

	// Mixed items accumulate before rounding: 2.4 + 5.0 = 7.4 -> 7
	delivery, err = f.deliveries.CreatePreDelivery(ctx, f.student.ID, []services.ItemInput{
		{WasteTypeID: f.glass.ID, Weight: 0.3},
		{WasteTypeID: f.paper.ID, Weight: 0.5},
	}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), delivery.ExpectedPoints)
}

func TestCreatePreDeliveryValidation(t *testing.T) {
	f := newDeliveryFixture(t)
	ctx := context.Background()

	_, err := f.deliveries.CreatePreDelivery(ctx, f.student.ID, nil, nil, nil)
	assert.ErrorIs(t, err, services.ErrEmptyItems)

	_, err = f.deliveries.CreatePreDelivery(ctx, f.student.ID, []services.ItemInput{
		{WasteTypeID: f.paper.ID, Weight: 0},
	}, nil, nil)
	assert.ErrorIs(t, err, services.ErrInvalidWeight)

	_, err = f.deliveries.CreatePreDelivery(ctx, f.student.ID, []services.ItemInput{
		{WasteTypeID: uuid.New(), Weight: 1.0},
	}, nil, nil)
	assert.ErrorIs(t, err, services.ErrUnknownWasteType)

	_, err = f.deliveries.CreatePreDelivery(ctx, f.staff.ID, []services.ItemInput{
		{WasteTypeID: f.paper.ID, Weight: 1.0},
	}, nil, nil)
	assert.ErrorIs(t, err, services.ErrStudentOnly)

	_, err = f.deliveries.CreatePreDelivery(ctx, uuid.New(), []services.ItemInput{
		{WasteTypeID: f.paper.ID, Weight: 1.0},
	}, nil, nil)
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestValidateCreditsActualPoints(t *testing.T) {
	f := newDeliveryFixture(t)
	ctx := context.Background()

	created, err := f.deliveries.CreatePreDelivery(ctx, f.student.ID, []services.ItemInput{
		{WasteTypeID: f.paper.ID, Weight: 2.0},
	}, nil, nil)
	require.NoError(t, err)

	// Student announced 2.0 kg but brought 1.5: the credit follows the
	// actual materials, the estimate stays on record
	validated, err := f.deliveries.Validate(ctx, created.ID, f.staff.ID, []services.ItemInput{
		{WasteTypeID: f.paper.ID, Weight: 1.5},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, models.DeliveryStatusValidated, validated.Status)
	assert.Equal(t, int64(20), validated.ExpectedPoints)
	require.NotNil(t, validated.ActualPoints)
	assert.Equal(t, int64(15), *validated.ActualPoints)
	require.NotNil(t, validated.ValidatedBy)
	assert.Equal(t, f.staff.ID, *validated.ValidatedBy)
	require.NotNil(t, validated.ValidatedAt)
	require.Len(t, validated.ActualItems, 1)
	assert.Equal(t, models.ItemKindActual, validated.ActualItems[0].Kind)

	balance, err := f.ledger.Balance(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15), balance)

	entries, err := f.ledger.History(ctx, f.student.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ReasonDeliveryCredit, entries[0].Reason)
	assert.Equal(t, created.ID, entries[0].RefID)

	owner, err := f.store.GetUser(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, owner.TotalDeliveries)
	assert.InDelta(t, 1.5, owner.TotalWeight, 1e-9)
}

func TestValidateTwiceIsRejected(t *testing.T) {
	f := newDeliveryFixture(t)
	ctx := context.Background()

	created, err := f.deliveries.CreatePreDelivery(ctx, f.student.ID, []services.ItemInput{
		{WasteTypeID: f.paper.ID, Weight: 2.0},
	}, nil, nil)
	require.NoError(t, err)

	_, err = f.deliveries.Validate(ctx, created.ID, f.staff.ID, []services.ItemInput{
		{WasteTypeID: f.paper.ID, Weight: 1.5},
	}, nil)
	require.NoError(t, err)

	_, err = f.deliveries.Validate(ctx, created.ID, f.staff.ID, []services.ItemInput{
		{WasteTypeID: f.paper.ID, Weight: 3.0},
	}, nil)
	assert.ErrorIs(t, err, services.ErrAlreadyValidated)

	// The losing attempt must not double-credit
	balance, err := f.ledger.Balance(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15), balance)

	entries, err := f.ledger.History(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	requireReconciled(t, f.ledger, f.student.ID)
}

func TestValidateRequiresStaff(t *testing.T) {
	f := newDeliveryFixture(t)
	ctx := context.Background()

	created, err := f.deliveries.CreatePreDelivery(ctx, f.student.ID, []services.ItemInput{
		{WasteTypeID: f.paper.ID, Weight: 1.0},
	}, nil, nil)
	require.NoError(t, err)

	_, err = f.deliveries.Validate(ctx, created.ID, f.student.ID, []services.ItemInput{
		{WasteTypeID: f.paper.ID, Weight: 1.0},
	}, nil)
	assert.ErrorIs(t, err, services.ErrStaffOnly)

	got, err := f.deliveries.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusPending, got.Status)
}

func TestValidateRejectsZeroPointItems(t *testing.T) {
	f := newDeliveryFixture(t)
	ctx := context.Background()
	organic := f.store.AddWasteType("organic", 5)

	created, err := f.deliveries.CreatePreDelivery(ctx, f.student.ID, []services.ItemInput{
		{WasteTypeID: f.paper.ID, Weight: 1.0},
	}, nil, nil)
	require.NoError(t, err)

	// 0.04 kg at 5/kg is 0.2 points, which rounds to zero. A credit of
	// zero is never valid, so the validation must fail and the delivery
	// stay pending with nothing in the ledger.
	_, err = f.deliveries.Validate(ctx, created.ID, f.staff.ID, []services.ItemInput{
		{WasteTypeID: organic.ID, Weight: 0.04},
	}, nil)
	assert.ErrorIs(t, err, services.ErrInvalidAmount)

	got, err := f.deliveries.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusPending, got.Status)

	entries, err := f.ledger.History(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// A corrected weight still goes through
	validated, err := f.deliveries.Validate(ctx, created.ID, f.staff.ID, []services.ItemInput{
		{WasteTypeID: organic.ID, Weight: 0.4},
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, validated.ActualPoints)
	assert.Equal(t, int64(2), *validated.ActualPoints)

	entries, err = f.ledger.History(ctx, f.student.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Positive(t, entries[0].Delta)
}

func TestValidateUnknownDelivery(t *testing.T) {
	f := newDeliveryFixture(t)

	_, err := f.deliveries.Validate(context.Background(), uuid.New(), f.staff.ID, []services.ItemInput{
		{WasteTypeID: f.paper.ID, Weight: 1.0},
	}, nil)
	assert.ErrorIs(t, err, services.ErrDeliveryNotFound)
}

func TestDeliveryItemsKeepSubmissionOrder(t *testing.T) {
	f := newDeliveryFixture(t)
	ctx := context.Background()

	inputs := []services.ItemInput{
		{WasteTypeID: f.glass.ID, Weight: 1.0},
		{WasteTypeID: f.paper.ID, Weight: 2.0},
		{WasteTypeID: f.glass.ID, Weight: 0.5},
	}
	created, err := f.deliveries.CreatePreDelivery(ctx, f.student.ID, inputs, nil, nil)
	require.NoError(t, err)

	got, err := f.deliveries.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.EstimatedItems, len(inputs))
	for i, item := range got.EstimatedItems {
		assert.Equal(t, inputs[i].WasteTypeID, item.WasteTypeID)
		assert.InDelta(t, inputs[i].Weight, item.Weight, 1e-9)
	}
}

func TestListPendingIsOldestFirst(t *testing.T) {
	f := newDeliveryFixture(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		delivery, err := f.deliveries.CreatePreDelivery(ctx, f.student.ID, []services.ItemInput{
			{WasteTypeID: f.paper.ID, Weight: 1.0},
		}, nil, nil)
		require.NoError(t, err)
		ids = append(ids, delivery.ID)
		time.Sleep(time.Millisecond)
	}

	// Validating the middle one removes it from the queue
	_, err := f.deliveries.Validate(ctx, ids[1], f.staff.ID, []services.ItemInput{
		{WasteTypeID: f.paper.ID, Weight: 1.0},
	}, nil)
	require.NoError(t, err)

	pending, err := f.deliveries.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, ids[0], pending[0].ID)
	assert.Equal(t, ids[2], pending[1].ID)
}

func TestListByOwnerIsNewestFirst(t *testing.T) {
	f := newDeliveryFixture(t)
	ctx := context.Background()
	other := newTestUser(t, f.store, models.RoleStudent)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		delivery, err := f.deliveries.CreatePreDelivery(ctx, f.student.ID, []services.ItemInput{
			{WasteTypeID: f.paper.ID, Weight: 1.0},
		}, nil, nil)
		require.NoError(t, err)
		ids = append(ids, delivery.ID)
		time.Sleep(time.Millisecond)
	}
	_, err := f.deliveries.CreatePreDelivery(ctx, other.ID, []services.ItemInput{
		{WasteTypeID: f.paper.ID, Weight: 1.0},
	}, nil, nil)
	require.NoError(t, err)

	mine, err := f.deliveries.ListByOwner(ctx, f.student.ID)
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, ids[2], mine[0].ID)
	assert.Equal(t, ids[1], mine[1].ID)
	assert.Equal(t, ids[0], mine[2].ID)
}
