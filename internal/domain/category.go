package domain

// Category groups catalog products. Inactive categories are soft deleted.
type Category struct {
	ID     int
	Name   string
	Active bool
}
