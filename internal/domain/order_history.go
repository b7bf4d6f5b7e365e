package domain

import "time"

// OrderStatusChange is an immutable audit entry of a status write. From is
// zero for the creation entry.
type OrderStatusChange struct {
	ID         string
	OrderID    string
	FromStatus OrderStatus
	ToStatus   OrderStatus
	ActorKind  BackingKind
	ActorID    *string
	CreatedAt  time.Time
}
