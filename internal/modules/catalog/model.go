package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemStatus is the sellability of a menu item.
type ItemStatus string

const (
	StatusAvailable   ItemStatus = "available"
	StatusLowStock    ItemStatus = "low_stock"
	StatusUnavailable ItemStatus = "unavailable"
)

// Valid reports whether s is a known status.
func (s ItemStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusLowStock, StatusUnavailable:
		return true
	}
	return false
}

// LowStockThreshold is the quantity below which a stocked item is flagged low_stock.
const LowStockThreshold = 10

// MaxNameLength bounds menu item names, counted in runes.
const MaxNameLength = 100

// StatusForStock derives an item status from its stock quantity.
func StatusForStock(qty int) ItemStatus {
	switch {
	case qty <= 0:
		return StatusUnavailable
	case qty < LowStockThreshold:
		return StatusLowStock
	default:
		return StatusAvailable
	}
}

// Category groups menu items.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// MenuItem is a sellable dish or drink.
type MenuItem struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	Image         string          `json:"image,omitempty"`
	Status        ItemStatus      `json:"status"`
	StockQuantity int             `json:"stockQuantity"`
	Unit          string          `json:"unit,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Snapshot is the persisted subset of the catalog.
type Snapshot struct {
	Categories []Category `json:"categories"`
	MenuItems  []MenuItem `json:"menuItems"`
}

// NewMenuItem is the payload for AddMenuItem.
type NewMenuItem struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	Image         string          `json:"image"`
	StockQuantity *int            `json:"stockQuantity"`
	Unit          string          `json:"unit"`
}

// MenuItemUpdate carries the fields to change; nil fields are left alone.
type MenuItemUpdate struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	Category      *string          `json:"category"`
	Image         *string          `json:"image"`
	Status        *ItemStatus      `json:"status"`
	StockQuantity *int             `json:"stockQuantity"`
	Unit          *string          `json:"unit"`
}

// NewCategory is the payload for AddCategory.
type NewCategory struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// CategoryUpdate carries the category fields to change.
type CategoryUpdate struct {
	Name *string `json:"name"`
	Icon *string `json:"icon"`
}

// Filter narrows FilterItems. Empty fields match everything.
type Filter struct {
	Category string     `json:"category"`
	Status   ItemStatus `json:"status"`
	Search   string     `json:"search"`
}

// Counts summarises the menu by status.
type Counts struct {
	Total       int `json:"total"`
	Available   int `json:"available"`
	LowStock    int `json:"lowStock"`
	Unavailable int `json:"unavailable"`
}
