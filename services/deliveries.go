package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"ecopoints-server/models"

	"github.com/google/uuid"
)

// ItemInput is one waste item as submitted by a caller: a catalog waste
// type and a measured (or estimated) weight in kilograms.
type ItemInput struct {
	WasteTypeID uuid.UUID
	Weight      float64
}

// Deliveries owns delivery records and their one-way state machine:
// pending_delivery --validate--> validated. On validation it credits the
// owner's points and bumps their delivery totals, all as one atomic unit.
type Deliveries struct {
	store   Store
	catalog *Catalog
}

func NewDeliveries(store Store, catalog *Catalog) *Deliveries {
	return &Deliveries{store: store, catalog: catalog}
}

// CreatePreDelivery registers a student's planned drop-off. Expected
// points are computed from the estimated items and never change again.
func (d *Deliveries) CreatePreDelivery(ctx context.Context, ownerID uuid.UUID, items []ItemInput, notes, photoURL *string) (*models.Delivery, error) {
	owner, err := d.store.GetUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner.Role != models.RoleStudent {
		return nil, ErrStudentOnly
	}

	points, _, resolved, err := d.resolveItems(ctx, items)
	if err != nil {
		return nil, err
	}

	delivery := &models.Delivery{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Status:         models.DeliveryStatusPending,
		ExpectedPoints: points,
		Notes:          notes,
		PhotoURL:       photoURL,
		CreatedAt:      time.Now().UTC(),
	}
	for i := range resolved {
		resolved[i].DeliveryID = delivery.ID
		resolved[i].Kind = models.ItemKindEstimated
	}
	delivery.EstimatedItems = resolved

	if err := d.store.InsertDelivery(ctx, delivery); err != nil {
		return nil, fmt.Errorf("insert delivery: %w", err)
	}
	return delivery, nil
}

// Validate records the materials actually brought in. Only the first
// validation of a delivery succeeds; any later attempt gets
// ErrAlreadyValidated and the ledger is untouched. The status transition,
// the points credit and the owner's totals commit together or not at all.
func (d *Deliveries) Validate(ctx context.Context, deliveryID, staffID uuid.UUID, items []ItemInput, validationNotes *string) (*models.Delivery, error) {
	staff, err := d.store.GetUser(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if staff.Role != models.RoleStaff {
		return nil, ErrStaffOnly
	}

	points, weight, resolved, err := d.resolveItems(ctx, items)
	if err != nil {
		return nil, err
	}
	// Ledger credits must be positive. Items that round to zero points
	// cannot be validated; the delivery stays pending.
	if points <= 0 {
		return nil, ErrInvalidAmount
	}
	for i := range resolved {
		resolved[i].DeliveryID = deliveryID
		resolved[i].Kind = models.ItemKindActual
	}

	return d.store.ValidateDelivery(ctx, ValidateDeliveryParams{
		DeliveryID:      deliveryID,
		StaffID:         staffID,
		ActualItems:     resolved,
		ActualPoints:    points,
		ActualWeight:    weight,
		ValidationNotes: validationNotes,
		ValidatedAt:     time.Now().UTC(),
	})
}

func (d *Deliveries) Get(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	return d.store.GetDelivery(ctx, id)
}

// ListByOwner returns a student's deliveries, newest first.
func (d *Deliveries) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Delivery, error) {
	return d.store.ListDeliveriesByOwner(ctx, ownerID)
}

// ListPending returns the staff validation queue, oldest first.
func (d *Deliveries) ListPending(ctx context.Context) ([]models.Delivery, error) {
	return d.store.ListPendingDeliveries(ctx)
}

// resolveItems validates the item list against the catalog and returns the
// rounded point total, the summed weight, and the resolved item rows.
// Points accumulate as real-valued products and are rounded once at the
// end.
func (d *Deliveries) resolveItems(ctx context.Context, items []ItemInput) (int64, float64, []models.DeliveryItem, error) {
	if len(items) == 0 {
		return 0, 0, nil, ErrEmptyItems
	}

	var total float64
	var weight float64
	resolved := make([]models.DeliveryItem, 0, len(items))
	for _, item := range items {
		if item.Weight <= 0 {
			return 0, 0, nil, ErrInvalidWeight
		}
		wasteType, err := d.catalog.GetWasteType(ctx, item.WasteTypeID)
		if err != nil {
			return 0, 0, nil, err
		}
		total += wasteType.PointsPerKg * item.Weight
		weight += item.Weight
		resolved = append(resolved, models.DeliveryItem{
			ID:          uuid.New(),
			WasteTypeID: item.WasteTypeID,
			Weight:      item.Weight,
		})
	}
	return int64(math.Round(total)), weight, resolved, nil
}
