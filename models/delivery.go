package models

import (
	"time"

	"github.com/google/uuid"
)

// Delivery statuses. Validation is one-way: a validated delivery never
// changes again.
const (
	DeliveryStatusPending   = "pending_delivery"
	DeliveryStatusValidated = "validated"
)

type Delivery struct {
	ID              uuid.UUID      `json:"id" db:"id"`
	OwnerID         uuid.UUID      `json:"owner_id" db:"owner_id"`
	Status          string         `json:"status" db:"status"`
	ExpectedPoints  int64          `json:"expected_points" db:"expected_points"`
	ActualPoints    *int64         `json:"actual_points,omitempty" db:"actual_points"`
	Notes           *string        `json:"notes,omitempty" db:"notes"`
	ValidationNotes *string        `json:"validation_notes,omitempty" db:"validation_notes"`
	ValidatedBy     *uuid.UUID     `json:"validated_by,omitempty" db:"validated_by"`
	ValidatedAt     *time.Time     `json:"validated_at,omitempty" db:"validated_at"`
	PhotoURL        *string        `json:"photo_url,omitempty" db:"photo_url"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	EstimatedItems  []DeliveryItem `json:"estimated_items"`
	ActualItems     []DeliveryItem `json:"actual_items,omitempty"`
}

func (Delivery) TableName() string {
	return "deliveries"
}

func (Delivery) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS deliveries (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status TEXT NOT NULL DEFAULT 'pending_delivery' CHECK (status IN ('pending_delivery', 'validated')),
		expected_points BIGINT NOT NULL,
		actual_points BIGINT,
		notes TEXT,
		validation_notes TEXT,
		validated_by UUID REFERENCES users(id),
		validated_at TIMESTAMP WITH TIME ZONE,
		photo_url TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);`
}
