package models

import (
	"time"

	"github.com/google/uuid"
)

// Ledger reasons. Every balance change carries exactly one of these.
const (
	ReasonDeliveryCredit  = "delivery_credit"
	ReasonRedemptionDebit = "redemption_debit"
)

// LedgerEntry is an immutable record of a single balance change. Entries
// are append-only; a user's cached balance must always equal the sum of
// their entry deltas.
type LedgerEntry struct {
	Seq       int64     `json:"seq" db:"seq"`
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Delta     int64     `json:"delta" db:"delta"`
	Reason    string    `json:"reason" db:"reason"`
	RefID     uuid.UUID `json:"ref_id" db:"ref_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

func (LedgerEntry) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS ledger_entries (
		seq BIGSERIAL UNIQUE,
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		delta BIGINT NOT NULL,
		reason TEXT NOT NULL CHECK (reason IN ('delivery_credit', 'redemption_debit')),
		ref_id UUID NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);`
}
