package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a customer purchase. Total is always Subtotal + ShippingCost.
type Order struct {
	ID                string
	OrderCode         string
	CustomerID        string
	DeliveryAddressID *string
	CourierID         *string
	Status            OrderStatus
	Subtotal          decimal.Decimal
	ShippingCost      decimal.Decimal
	Total             decimal.Decimal
	Delivery          DeliveryInfo
	Lines             []OrderLine
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeliveredAt       *time.Time
}

// OrderLine is the frozen snapshot of one product within an order.
type OrderLine struct {
	ID                  string
	OrderID             string
	ProductID           string
	ProductName         string
	Quantity            int
	HistoricalUnitPrice decimal.Decimal
	LineSubtotal        decimal.Decimal
}

// NewOrderLine builds a line and computes its subtotal.
func NewOrderLine(productID, productName string, quantity int, unitPrice decimal.Decimal) OrderLine {
	return OrderLine{
		ProductID:           productID,
		ProductName:         productName,
		Quantity:            quantity,
		HistoricalUnitPrice: unitPrice,
		LineSubtotal:        unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// LinesSubtotal sums the line subtotals.
func (o *Order) LinesSubtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range o.Lines {
		subtotal = subtotal.Add(line.LineSubtotal)
	}
	return subtotal
}

// ApplyTotals sets subtotal from the lines and derives the total.
func (o *Order) ApplyTotals(shipping decimal.Decimal) {
	o.Subtotal = o.LinesSubtotal()
	o.ShippingCost = shipping
	o.Total = o.Subtotal.Add(shipping)
}

// OrderStats counts orders per status.
type OrderStats struct {
	ByStatus       map[OrderStatus]int
	DeliveredToday int
}
