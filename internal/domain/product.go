package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item with its current price and stock.
type Product struct {
	ID          string
	CategoryID  *int
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Active      bool
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
