package models

import (
	"time"

	"github.com/google/uuid"
)

type WasteType struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	PointsPerKg float64   `json:"points_per_kg" db:"points_per_kg"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

func (WasteType) TableName() string {
	return "waste_types"
}

func (WasteType) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS waste_types (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT UNIQUE NOT NULL,
		points_per_kg DOUBLE PRECISION NOT NULL CHECK (points_per_kg > 0),
		is_active BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);`
}
