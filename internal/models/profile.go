package models

import (
	"time"

	"github.com/google/uuid"
)

// Role values a profile may carry.
const (
	RoleBusinessOwner = "business_owner"
	RoleStaff         = "staff"
)

// Profile links an account to its company and role. Every inventory
// operation resolves one of these before touching data; a missing
// profile is an explicit error path.
type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AccountID uuid.UUID `json:"account_id" db:"account_id"`
	CompanyID uuid.UUID `json:"company_id" db:"company_id"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsOwner reports whether the profile carries full inventory control.
func (p *Profile) IsOwner() bool {
	return p.Role == RoleBusinessOwner
}
