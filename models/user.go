package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Email           string    `json:"email" db:"email"`
	PasswordHash    *string   `json:"-" db:"password_hash"`
	FullName        string    `json:"full_name" db:"full_name"`
	Avatar          *string   `json:"avatar,omitempty" db:"avatar"`
	Role            string    `json:"role" db:"role"`
	Points          int64     `json:"points" db:"points"`
	TotalDeliveries int       `json:"total_deliveries" db:"total_deliveries"`
	TotalWeight     float64   `json:"total_weight" db:"total_weight"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// User roles
const (
	RoleStudent = "student"
	RoleStaff   = "staff"
)

func (User) TableName() string {
	return "users"
}

func (User) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT,
		full_name TEXT NOT NULL,
		avatar TEXT,
		role TEXT NOT NULL DEFAULT 'student' CHECK (role IN ('student', 'staff')),
		points BIGINT NOT NULL DEFAULT 0 CHECK (points >= 0),
		total_deliveries INTEGER NOT NULL DEFAULT 0,
		total_weight DOUBLE PRECISION NOT NULL DEFAULT 0,
		is_active BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);`
}
