package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// PaymentStatus is the money axis of an order.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Item is a line snapshot taken when the order is placed. It never follows later catalog edits.
type Item struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Notes    string          `json:"notes,omitempty"`
}

// LineTotal is price times quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a placed order. Only Status and PaymentStatus change after creation.
type Order struct {
	ID                  string          `json:"id"`
	Timestamp           time.Time       `json:"timestamp"`
	Table               string          `json:"table"`
	Items               []Item          `json:"items"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	Discount            decimal.Decimal `json:"discount"`
	Tax                 decimal.Decimal `json:"tax"`
	Total               decimal.Decimal `json:"total"`
	Status              Status          `json:"status"`
	PaymentStatus       PaymentStatus   `json:"paymentStatus"`
	Staff               string          `json:"staff"`
	StaffID             string          `json:"staffId"`
	Customer            string          `json:"customer,omitempty"`
	CustomerPhone       string          `json:"customerPhone,omitempty"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`
}

// Snapshot is the persisted subset of the ledger.
type Snapshot struct {
	Orders []Order `json:"orders"`
}

// NewOrder is the payload for AddOrder. Labels are already resolved by the caller.
// ID and Timestamp are generated when empty.
type NewOrder struct {
	ID                  string    `json:"id"`
	Timestamp           time.Time `json:"timestamp"`
	Table               string    `json:"table"`
	Items               []Item    `json:"items"`
	Quote               Quote     `json:"quote"`
	Staff               string    `json:"staff"`
	StaffID             string    `json:"staffId"`
	Customer            string    `json:"customer"`
	CustomerPhone       string    `json:"customerPhone"`
	SpecialInstructions string    `json:"specialInstructions"`
}

// Filter narrows FilterOrders. Empty fields match everything.
type Filter struct {
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	StaffID       string        `json:"staffId"`
	Search        string        `json:"search"`
}

// Stats are the dashboard aggregates.
type Stats struct {
	TodayRevenue      decimal.Decimal `json:"todayRevenue"`
	TotalOrders       int             `json:"totalOrders"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	Unpaid            int             `json:"unpaid"`
	Pending           int             `json:"pending"`
}
