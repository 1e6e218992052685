package services

import (
	"context"

	"ecopoints-server/models"

	"github.com/google/uuid"
)

// PointsLedger is the single source of truth for point balances. All
// balance changes go through it (directly, or inside the storage
// transactions that validate deliveries and redeem rewards).
type PointsLedger struct {
	store Store
}

func NewPointsLedger(store Store) *PointsLedger {
	return &PointsLedger{store: store}
}

// Credit appends a positive entry and increments the user's balance.
// Repeated calls with the same (reason, refID) return the entry already
// written, so retried requests never double-credit.
func (l *PointsLedger) Credit(ctx context.Context, userID uuid.UUID, amount int64, reason string, refID uuid.UUID) (*models.LedgerEntry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return l.store.Credit(ctx, userID, amount, reason, refID)
}

// DebitIfSufficient atomically checks the balance and, only if it covers
// amount, decrements it and appends a negative entry. Returns
// ErrInsufficientBalance otherwise, with no state change.
func (l *PointsLedger) DebitIfSufficient(ctx context.Context, userID uuid.UUID, amount int64, reason string, refID uuid.UUID) (*models.LedgerEntry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return l.store.DebitIfSufficient(ctx, userID, amount, reason, refID)
}

func (l *PointsLedger) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	return l.store.Balance(ctx, userID)
}

// History returns the user's ledger entries in creation order.
func (l *PointsLedger) History(ctx context.Context, userID uuid.UUID) ([]models.LedgerEntry, error) {
	return l.store.LedgerHistory(ctx, userID)
}
