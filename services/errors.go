package services

import "errors"

// Errors surfaced by the core services. Handlers map these onto HTTP
// status codes; nothing here is fatal to the process, and a failed
// operation leaves stored state untouched.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrDeliveryNotFound = errors.New("delivery not found")
	ErrUnknownWasteType = errors.New("unknown waste type")
	ErrUnknownReward    = errors.New("unknown reward")

	ErrEmptyItems    = errors.New("at least one item is required")
	ErrInvalidWeight = errors.New("item weight must be greater than zero")
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	ErrAlreadyValidated    = errors.New("delivery has already been validated")
	ErrInsufficientBalance = errors.New("insufficient points balance")

	ErrStudentOnly = errors.New("only students can perform this action")
	ErrStaffOnly   = errors.New("only staff can perform this action")
)
