package pos

import (
	"fmt"
	"strings"
	"sync"

	"github.com/georgemunganga/tablepos/internal/modules/catalog"
	"github.com/georgemunganga/tablepos/internal/modules/order"
	"github.com/georgemunganga/tablepos/internal/platform/apperrors"
	"github.com/shopspring/decimal"
)

// CartItem is one line being composed. Name and price are captured when the line is added.
type CartItem struct {
	ID         string          `json:"id"`
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	Note       string          `json:"note,omitempty"`
}

// Cart is the transient order being composed for one table. It is never persisted.
type Cart struct {
	mu     sync.Mutex
	lines  []CartItem
	nextID int
}

// Add puts qty of item in the cart, merging with a line for the same item and note.
func (c *Cart) Add(item catalog.MenuItem, qty int, note string) (CartItem, error) {
	if qty < 1 {
		return CartItem{}, apperrors.Validation("quantity", "quantity must be at least 1")
	}
	note = strings.TrimSpace(note)
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].MenuItemID == item.ID && c.lines[i].Note == note {
			c.lines[i].Quantity += qty
			return c.lines[i], nil
		}
	}
	c.nextID++
	line := CartItem{
		ID:         fmt.Sprintf("line-%d", c.nextID),
		MenuItemID: item.ID,
		Name:       item.Name,
		Price:      item.Price,
		Quantity:   qty,
		Note:       note,
	}
	c.lines = append(c.lines, line)
	return line, nil
}

// SetQuantity changes a line's quantity. Zero removes the line.
func (c *Cart) SetQuantity(lineID string, qty int) error {
	if qty < 0 {
		return apperrors.Validation("quantity", "quantity must not be negative")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(lineID)
	if i < 0 {
		return apperrors.NotFound("cart line", lineID)
	}
	if qty == 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return nil
	}
	c.lines[i].Quantity = qty
	return nil
}

// SetNote changes a line's note, folding it into an existing line with the same item and note.
func (c *Cart) SetNote(lineID, note string) error {
	note = strings.TrimSpace(note)
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(lineID)
	if i < 0 {
		return apperrors.NotFound("cart line", lineID)
	}
	for j := range c.lines {
		if j != i && c.lines[j].MenuItemID == c.lines[i].MenuItemID && c.lines[j].Note == note {
			c.lines[j].Quantity += c.lines[i].Quantity
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
	}
	c.lines[i].Note = note
	return nil
}

// Remove drops a line.
func (c *Cart) Remove(lineID string) error {
	return c.SetQuantity(lineID, 0)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Items returns a copy of the lines.
func (c *Cart) Items() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]CartItem{}, c.lines...)
}

// TotalQuantity is the head count used as table occupancy.
func (c *Cart) TotalQuantity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Lines converts the cart to order line snapshots.
func (c *Cart) Lines() []order.Item {
	return linesOf(c.Items())
}

func linesOf(items []CartItem) []order.Item {
	out := make([]order.Item, 0, len(items))
	for _, l := range items {
		out = append(out, order.Item{Name: l.Name, Quantity: l.Quantity, Price: l.Price, Notes: l.Note})
	}
	return out
}

// Quote prices the cart under d.
func (c *Cart) Quote(d order.Discount) (order.Quote, error) {
	return order.Price(c.Lines(), d)
}

func (c *Cart) indexLocked(lineID string) int {
	for i, l := range c.lines {
		if l.ID == lineID {
			return i
		}
	}
	return -1
}

// Carts holds one cart per table.
type Carts struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

// NewCarts returns an empty registry.
func NewCarts() *Carts {
	return &Carts{carts: make(map[string]*Cart)}
}

// For returns the cart for tableID, creating it on first use.
func (cs *Carts) For(tableID string) *Cart {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	c, ok := cs.carts[tableID]
	if !ok {
		c = &Cart{}
		cs.carts[tableID] = c
	}
	return c
}

// Drop forgets the cart for tableID.
func (cs *Carts) Drop(tableID string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.carts, tableID)
}
