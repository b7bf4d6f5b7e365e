package domain

import "time"

// Address is a saved delivery address of a customer.
type Address struct {
	ID         string
	CustomerID string
	Line       string
	Reference  string
	District   string
	CreatedAt  time.Time
}
