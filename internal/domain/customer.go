package domain

import "time"

// Customer is a storefront shopper account.
type Customer struct {
	ID           string
	AuthUID      string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name.
func (c *Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
