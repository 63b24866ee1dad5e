// Package pos sequences multi-store actions: composing a cart, placing it against a table,
// and settling, cancelling or refunding the resulting order.
package pos

import (
	"fmt"
	"strings"
	"sync"

	"github.com/georgemunganga/tablepos/internal/modules/catalog"
	"github.com/georgemunganga/tablepos/internal/modules/floorplan"
	"github.com/georgemunganga/tablepos/internal/modules/order"
	"github.com/georgemunganga/tablepos/internal/modules/roster"
	"github.com/georgemunganga/tablepos/internal/platform/apperrors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Menu is the catalog surface checkout reads.
type Menu interface {
	MenuItem(id string) (catalog.MenuItem, bool)
}

// StaffDirectory is the roster surface checkout reads.
type StaffDirectory interface {
	Member(id string) (roster.Staff, bool)
}

// TableBoard is the floor plan surface checkout reads and writes.
type TableBoard interface {
	Table(id string) (floorplan.Table, bool)
	TableLabel(id string) (string, bool)
	TableByOrder(orderID string) (floorplan.Table, bool)
	AssignOrder(tableID, orderID string, occupancy *int) (floorplan.Table, error)
	ClearOrder(tableID string) (floorplan.Table, error)
}

// OrderBook is the ledger surface checkout reads and writes.
type OrderBook interface {
	Order(id string) (order.Order, bool)
	AddOrder(in order.NewOrder) (order.Order, error)
	UpdateOrderStatus(id string, status order.Status) (order.Order, error)
	UpdatePaymentStatus(id string, payment order.PaymentStatus) (order.Order, error)
}

// PaymentMethod represents how an order was paid.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

// PlaceOrderRequest describes who is ordering for which table.
type PlaceOrderRequest struct {
	TableID             string         `json:"tableId"`
	StaffID             string         `json:"staffId"`
	Discount            order.Discount `json:"discount"`
	Customer            string         `json:"customer"`
	CustomerPhone       string         `json:"customerPhone"`
	SpecialInstructions string         `json:"specialInstructions"`
}

// SettleRequest is the payload for taking payment.
type SettleRequest struct {
	Method   PaymentMethod   `json:"method"`
	Tendered decimal.Decimal `json:"tendered"`
}

// Receipt is the outcome of a settlement. It is returned to the caller and not stored.
type Receipt struct {
	Order    order.Order     `json:"order"`
	Method   PaymentMethod   `json:"method"`
	Tendered decimal.Decimal `json:"tendered"`
	Change   decimal.Decimal `json:"change"`
}

// Checkout is the command object for actions that span the ledger and the floor plan.
// The two writes are not atomic: a failure after the order is written leaves the order in place.
// Order lifecycle commands are serialised so a table check and the write that follows it cannot interleave.
type Checkout struct {
	mu     sync.Mutex
	menu   Menu
	staff  StaffDirectory
	tables TableBoard
	orders OrderBook
	carts  *Carts
	log    *zap.Logger
}

// NewCheckout wires checkout to the stores it coordinates.
func NewCheckout(menu Menu, staff StaffDirectory, tables TableBoard, orders OrderBook, log *zap.Logger) *Checkout {
	if log == nil {
		log = zap.NewNop()
	}
	return &Checkout{menu: menu, staff: staff, tables: tables, orders: orders, carts: NewCarts(), log: log}
}

// Cart returns the cart being composed for tableID.
func (c *Checkout) Cart(tableID string) *Cart {
	return c.carts.For(tableID)
}

// AddToCart looks up a menu item and adds it to the table's cart.
func (c *Checkout) AddToCart(tableID, menuItemID string, qty int, note string) (CartItem, error) {
	if _, ok := c.tables.Table(tableID); !ok {
		return CartItem{}, apperrors.NotFound("table", tableID)
	}
	item, ok := c.menu.MenuItem(menuItemID)
	if !ok {
		return CartItem{}, apperrors.NotFound("menu item", menuItemID)
	}
	if item.Status == catalog.StatusUnavailable {
		return CartItem{}, apperrors.Conflictf("menuItemId", "%s is unavailable", item.Name)
	}
	return c.carts.For(tableID).Add(item, qty, note)
}

// PlaceOrder turns the table's cart into an order, then marks the table occupied.
func (c *Checkout) PlaceOrder(req PlaceOrderRequest) (order.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cart := c.carts.For(req.TableID)
	items := cart.Items()
	if len(items) == 0 {
		return order.Order{}, apperrors.Validation("items", "cart is empty")
	}

	table, ok := c.tables.Table(req.TableID)
	if !ok {
		return order.Order{}, apperrors.NotFound("table", req.TableID)
	}
	if table.OrderID != nil {
		return order.Order{}, apperrors.Conflictf("tableId", "table %s already has order %s", table.Number, *table.OrderID)
	}
	if table.Status == floorplan.TableCleaning {
		return order.Order{}, apperrors.Conflictf("tableId", "table %s is being cleaned", table.Number)
	}

	member, ok := c.staff.Member(req.StaffID)
	if !ok {
		return order.Order{}, apperrors.NotFound("staff", req.StaffID)
	}
	if member.Status == roster.StatusInactive {
		return order.Order{}, apperrors.Conflictf("staffId", "%s is not on shift", member.Name)
	}

	for _, line := range items {
		item, ok := c.menu.MenuItem(line.MenuItemID)
		if !ok {
			return order.Order{}, apperrors.Conflictf("items", "%s is no longer on the menu", line.Name)
		}
		if item.Status == catalog.StatusUnavailable {
			return order.Order{}, apperrors.Conflictf("items", "%s is unavailable", item.Name)
		}
	}

	lines := linesOf(items)
	quote, err := order.Price(lines, req.Discount)
	if err != nil {
		return order.Order{}, err
	}
	label, _ := c.tables.TableLabel(req.TableID)

	placed, err := c.orders.AddOrder(order.NewOrder{
		Table:               label,
		Items:               lines,
		Quote:               quote,
		Staff:               member.Name,
		StaffID:             member.ID,
		Customer:            req.Customer,
		CustomerPhone:       req.CustomerPhone,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		return order.Order{}, err
	}
	c.carts.Drop(req.TableID)

	occupancy := totalQuantity(items)
	if _, err := c.tables.AssignOrder(req.TableID, placed.ID, &occupancy); err != nil {
		c.log.Error("order placed but table not updated",
			zap.String("order_id", placed.ID), zap.String("table_id", req.TableID), zap.Error(err))
		return placed, fmt.Errorf("order %s placed but table %s not updated: %w", placed.ID, req.TableID, err)
	}
	c.log.Info("order placed",
		zap.String("order_id", placed.ID), zap.String("table", label), zap.String("total", placed.Total.String()))
	return placed, nil
}

// SettleOrder takes payment, completes the order and frees its table.
func (c *Checkout) SettleOrder(orderID string, req SettleRequest) (Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	o, ok := c.orders.Order(orderID)
	if !ok {
		return Receipt{}, apperrors.NotFound("order", orderID)
	}
	method := PaymentMethod(strings.ToLower(string(req.Method)))
	if method == "" {
		method = PaymentCash
	}
	receipt := Receipt{Method: method, Tendered: o.Total, Change: decimal.Zero}
	switch method {
	case PaymentCash:
		if !req.Tendered.IsZero() {
			if req.Tendered.LessThan(o.Total) {
				return Receipt{}, apperrors.Validationf("tendered", "tendered %s is less than total %s", req.Tendered, o.Total)
			}
			receipt.Tendered = req.Tendered
			receipt.Change = req.Tendered.Sub(o.Total)
		}
	case PaymentCard, PaymentTransfer:
	default:
		return Receipt{}, apperrors.Validationf("method", "invalid payment method %q (allowed: cash, card, transfer)", req.Method)
	}

	if o.PaymentStatus != order.PaymentPaid {
		var err error
		if o, err = c.orders.UpdatePaymentStatus(orderID, order.PaymentPaid); err != nil {
			return Receipt{}, err
		}
	}
	for _, next := range []order.Status{order.StatusProcessing, order.StatusCompleted} {
		if o.Status == next || !order.CanTransition(o.Status, next) {
			continue
		}
		var err error
		if o, err = c.orders.UpdateOrderStatus(orderID, next); err != nil {
			return Receipt{}, err
		}
	}
	if o.Status != order.StatusCompleted {
		return Receipt{}, apperrors.Transition("order", o.Status, order.StatusCompleted)
	}
	if err := c.releaseTable(orderID); err != nil {
		return Receipt{}, err
	}
	receipt.Order = o
	c.log.Info("order settled", zap.String("order_id", orderID), zap.String("method", string(method)))
	return receipt, nil
}

// CancelOrder cancels an open order and frees its table. A paid order is refunded.
func (c *Checkout) CancelOrder(orderID string) (order.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	o, err := c.orders.UpdateOrderStatus(orderID, order.StatusCancelled)
	if err != nil {
		return order.Order{}, err
	}
	if err := c.releaseTable(orderID); err != nil {
		return o, err
	}
	c.log.Info("order cancelled", zap.String("order_id", orderID))
	return o, nil
}

// RefundOrder refunds a completed, paid order.
func (c *Checkout) RefundOrder(orderID string) (order.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	o, err := c.orders.UpdateOrderStatus(orderID, order.StatusRefunded)
	if err != nil {
		return order.Order{}, err
	}
	if err := c.releaseTable(orderID); err != nil {
		return o, err
	}
	c.log.Info("order refunded", zap.String("order_id", orderID))
	return o, nil
}

// releaseTable clears whichever table holds orderID, if any.
func (c *Checkout) releaseTable(orderID string) error {
	t, ok := c.tables.TableByOrder(orderID)
	if !ok {
		return nil
	}
	if _, err := c.tables.ClearOrder(t.ID); err != nil {
		c.log.Error("table not released", zap.String("order_id", orderID), zap.String("table_id", t.ID), zap.Error(err))
		return fmt.Errorf("release table %s: %w", t.ID, err)
	}
	return nil
}

func totalQuantity(items []CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
