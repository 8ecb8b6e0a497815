package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSearchFilter holds search and sort criteria for inventory
// listing queries.
type ProductSearchFilter struct {
	Search     string `json:"search,omitempty"`      // Case-insensitive substring against name OR category
	CostFilter string `json:"cost_filter,omitempty"` // "low" -> cost asc, "high" -> cost desc, anything else unordered
}

type Product struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	CompanyID uuid.UUID       `json:"company_id" db:"company_id"`
	Name      string          `json:"name" db:"name"`
	Category  string          `json:"category" db:"category"`
	CostPrice decimal.Decimal `json:"cost_price" db:"cost_price"`
	Quantity  int             `json:"quantity" db:"quantity"`
	ImageKey  *string         `json:"image_key,omitempty" db:"image_key"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// TotalValue is cost price times quantity on hand.
func (p *Product) TotalValue() decimal.Decimal {
	return p.CostPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// DisplayQuantity formats the on-hand count for display.
func (p *Product) DisplayQuantity() string {
	if p.Quantity == 1 {
		return "1 unit"
	}
	return fmt.Sprintf("%d units", p.Quantity)
}
