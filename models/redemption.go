package models

import (
	"time"

	"github.com/google/uuid"
)

// RedemptionStatusRecorded is the only status the server manages;
// fulfillment (handing over the physical reward) is tracked elsewhere.
const RedemptionStatusRecorded = "recorded"

type Redemption struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	RewardID    uuid.UUID `json:"reward_id" db:"reward_id"`
	PointsSpent int64     `json:"points_spent" db:"points_spent"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

func (Redemption) TableName() string {
	return "redemptions"
}

func (Redemption) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS redemptions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		reward_id UUID NOT NULL REFERENCES rewards(id),
		points_spent BIGINT NOT NULL CHECK (points_spent > 0),
		status TEXT NOT NULL DEFAULT 'recorded',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);`
}
