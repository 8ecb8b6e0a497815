package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is the tenant boundary. Every product and profile belongs to
// exactly one company, and all queries are scoped by its ID.
type Company struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
