package models

import (
	"github.com/google/uuid"
)

// Delivery item kinds: the estimate the student registers up front versus
// the actual materials measured by staff at validation.
const (
	ItemKindEstimated = "estimated"
	ItemKindActual    = "actual"
)

type DeliveryItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	DeliveryID  uuid.UUID `json:"delivery_id" db:"delivery_id"`
	Kind        string    `json:"kind" db:"kind"`
	WasteTypeID uuid.UUID `json:"waste_type_id" db:"waste_type_id"`
	Weight      float64   `json:"weight" db:"weight"`
}

func (DeliveryItem) TableName() string {
	return "delivery_items"
}

func (DeliveryItem) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS delivery_items (
		seq BIGSERIAL UNIQUE,
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		delivery_id UUID NOT NULL REFERENCES deliveries(id) ON DELETE CASCADE,
		kind TEXT NOT NULL CHECK (kind IN ('estimated', 'actual')),
		waste_type_id UUID NOT NULL REFERENCES waste_types(id),
		weight DOUBLE PRECISION NOT NULL CHECK (weight > 0)
	);`
}
