package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductResponse is a catalog item.
type ProductResponse struct {
	ID          string    `json:"id"`
	CategoryID  *int      `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Stock       int       `json:"stock"`
	Active      bool      `json:"active"`
	ImageURL    string    `json:"image_url"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductRequest payload for inventory writes.
type ProductRequest struct {
	CategoryID  *int            `json:"category_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Active      *bool           `json:"active"`
	ImageURL    string          `json:"image_url"`
}

// CategoryResponse is a product category.
type CategoryResponse struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// CategoryRequest payload for category writes.
type CategoryRequest struct {
	Name   string `json:"name"`
	Active *bool  `json:"active"`
}

// AddressRequest payload.
type AddressRequest struct {
	Line      string `json:"line"`
	Reference string `json:"reference"`
	District  string `json:"district"`
}

// AddressResponse is a saved address.
type AddressResponse struct {
	ID        string    `json:"id"`
	Line      string    `json:"line"`
	Reference string    `json:"reference"`
	District  string    `json:"district"`
	CreatedAt time.Time `json:"created_at"`
}
