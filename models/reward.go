package models

import (
	"time"

	"github.com/google/uuid"
)

type Reward struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Description    *string   `json:"description,omitempty" db:"description"`
	PointsRequired int64     `json:"points_required" db:"points_required"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

func (Reward) TableName() string {
	return "rewards"
}

func (Reward) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS rewards (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		description TEXT,
		points_required BIGINT NOT NULL CHECK (points_required > 0),
		is_active BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);`
}
