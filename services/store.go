package services

import (
	"context"
	"time"

	"ecopoints-server/models"

	"github.com/google/uuid"
)

// ValidateDeliveryParams carries everything the store needs to flip a
// pending delivery to validated in a single atomic unit: the status
// transition, the actual items, the ledger credit and the owner's totals
// either all commit or none do. ActualPoints is always positive; the
// Deliveries service rejects zero-point validations before the store is
// reached.
type ValidateDeliveryParams struct {
	DeliveryID      uuid.UUID
	StaffID         uuid.UUID
	ActualItems     []models.DeliveryItem
	ActualPoints    int64
	ActualWeight    float64
	ValidationNotes *string
	ValidatedAt     time.Time
}

// Store is the persistence boundary for the core services. Two
// implementations exist: the Postgres store (production) and an in-memory
// store used for tests and local development.
//
// The balance-affecting operations are the concurrency-sensitive part of
// the whole system. Implementations must guarantee:
//
//   - Credit and DebitIfSufficient are atomic per user (no lost updates,
//     no overdraft) and idempotent per (reason, refID): a repeated call
//     returns the entry already written instead of applying twice.
//   - ValidateDelivery and RedeemReward are all-or-nothing.
//   - After any sequence of operations, a user's points equal the sum of
//     their ledger entry deltas.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// Catalog (read-only)
	GetWasteType(ctx context.Context, id uuid.UUID) (*models.WasteType, error)
	ListWasteTypes(ctx context.Context) ([]models.WasteType, error)
	GetReward(ctx context.Context, id uuid.UUID) (*models.Reward, error)
	ListRewards(ctx context.Context) ([]models.Reward, error)

	// Points ledger
	Credit(ctx context.Context, userID uuid.UUID, amount int64, reason string, refID uuid.UUID) (*models.LedgerEntry, error)
	DebitIfSufficient(ctx context.Context, userID uuid.UUID, amount int64, reason string, refID uuid.UUID) (*models.LedgerEntry, error)
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	LedgerHistory(ctx context.Context, userID uuid.UUID) ([]models.LedgerEntry, error)

	// Deliveries
	InsertDelivery(ctx context.Context, delivery *models.Delivery) error
	GetDelivery(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
	ListDeliveriesByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Delivery, error)
	ListPendingDeliveries(ctx context.Context) ([]models.Delivery, error)
	ValidateDelivery(ctx context.Context, params ValidateDeliveryParams) (*models.Delivery, error)

	// Redemptions. RedeemReward debits the ledger and records the
	// redemption as one unit; on ErrInsufficientBalance nothing is written.
	RedeemReward(ctx context.Context, redemption *models.Redemption) (*models.Redemption, error)
	ListRedemptionsByUser(ctx context.Context, userID uuid.UUID) ([]models.Redemption, error)
}
