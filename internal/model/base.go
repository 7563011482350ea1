package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models. There is no soft delete:
// removing a record is a hard delete behind an explicit confirmation.
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
