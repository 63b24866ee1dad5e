// Package order is the order ledger: placed orders and their status and payment lifecycle.
package order

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/georgemunganga/tablepos/internal/platform/apperrors"
	"github.com/georgemunganga/tablepos/internal/platform/observer"
	"github.com/georgemunganga/tablepos/internal/platform/storeopt"
	"go.uber.org/zap"
)

const storeName = "orders"

// maxIDAttempts bounds retries when a generated order number collides.
const maxIDAttempts = 8

// Ledger is the order state container. All methods are safe for concurrent use.
// Subscribers run synchronously after each successful mutation and must not mutate the ledger.
type Ledger struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	opts    storeopt.Options
	hub     observer.Hub[Snapshot]

	orders   []Order
	selected string // transient, never persisted
}

// NewLedger builds a ledger from a previously persisted snapshot.
func NewLedger(initial Snapshot, opts ...storeopt.Option) *Ledger {
	l := &Ledger{opts: storeopt.Apply(opts...)}
	l.orders = make([]Order, 0, len(initial.Orders))
	for _, o := range initial.Orders {
		l.orders = append(l.orders, cloneOrder(o))
	}
	return l
}

// Dispose drops every subscriber.
func (l *Ledger) Dispose() {
	l.hub.Close()
}

// Subscribe registers fn to receive the persisted subset after every successful mutation.
func (l *Ledger) Subscribe(fn func(Snapshot)) func() {
	return l.hub.Subscribe(fn)
}

// Snapshot returns a copy of the persisted subset.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

func (l *Ledger) snapshotLocked() Snapshot {
	out := make([]Order, len(l.orders))
	for i, o := range l.orders {
		out[i] = cloneOrder(o)
	}
	return Snapshot{Orders: out}
}

func (l *Ledger) mutate(op, id string, fn func() error) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	l.mu.Lock()
	err := fn()
	var snap Snapshot
	if err == nil {
		snap = l.snapshotLocked()
	}
	l.mu.Unlock()

	l.opts.Observe(storeName, op, err, zap.String("id", id))
	if err == nil {
		l.hub.Publish(snap)
	}
	return err
}

// AddOrder records a new pending, unpaid order. Line items are copied, so later changes
// to the caller's slice or to the catalog never reach the stored order.
func (l *Ledger) AddOrder(in NewOrder) (Order, error) {
	o := Order{
		ID:                  strings.TrimSpace(in.ID),
		Timestamp:           in.Timestamp,
		Table:               in.Table,
		Items:               append([]Item(nil), in.Items...),
		Subtotal:            in.Quote.Subtotal,
		Discount:            in.Quote.Discount,
		Tax:                 in.Quote.Tax,
		Total:               in.Quote.Total,
		Status:              StatusPending,
		PaymentStatus:       PaymentUnpaid,
		Staff:               in.Staff,
		StaffID:             in.StaffID,
		Customer:            strings.TrimSpace(in.Customer),
		CustomerPhone:       strings.TrimSpace(in.CustomerPhone),
		SpecialInstructions: strings.TrimSpace(in.SpecialInstructions),
	}
	if o.Timestamp.IsZero() {
		o.Timestamp = l.opts.Clock()
	}
	err := l.mutate("add_order", o.ID, func() error {
		if err := validateLines(o.Items); err != nil {
			return err
		}
		if err := checkQuote(o.Items, in.Quote); err != nil {
			return err
		}
		if o.ID == "" {
			id, err := l.nextIDLocked(o)
			if err != nil {
				return err
			}
			o.ID = id
		} else if l.indexLocked(o.ID) >= 0 {
			return apperrors.Conflictf("id", "order %s already exists", o.ID)
		}
		l.orders = append(l.orders, o)
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return cloneOrder(o), nil
}

// UpdateOrderStatus advances an order through the status state machine.
func (l *Ledger) UpdateOrderStatus(id string, status Status) (Order, error) {
	return l.update("update_status", id, func(o Order) (Order, error) {
		return applyStatus(o, status)
	})
}

// UpdatePaymentStatus advances an order's payment.
func (l *Ledger) UpdatePaymentStatus(id string, payment PaymentStatus) (Order, error) {
	return l.update("update_payment", id, func(o Order) (Order, error) {
		return applyPayment(o, payment)
	})
}

func (l *Ledger) update(op, id string, fn func(Order) (Order, error)) (Order, error) {
	var out Order
	err := l.mutate(op, id, func() error {
		i := l.indexLocked(id)
		if i < 0 {
			return apperrors.NotFound("order", id)
		}
		next, err := fn(l.orders[i])
		if err != nil {
			return err
		}
		l.orders[i] = next
		out = cloneOrder(next)
		return nil
	})
	return out, err
}

// DeleteOrder removes an order from the ledger.
func (l *Ledger) DeleteOrder(id string) error {
	return l.mutate("delete_order", id, func() error {
		i := l.indexLocked(id)
		if i < 0 {
			return apperrors.NotFound("order", id)
		}
		l.orders = append(l.orders[:i], l.orders[i+1:]...)
		if l.selected == id {
			l.selected = ""
		}
		return nil
	})
}

// SelectOrder marks an order as the one being viewed. An empty id clears the selection.
// Selection is not persisted and does not notify subscribers.
func (l *Ledger) SelectOrder(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id != "" && l.indexLocked(id) < 0 {
		return apperrors.NotFound("order", id)
	}
	l.selected = id
	return nil
}

// SelectedOrder returns the selected order, if any.
func (l *Ledger) SelectedOrder() (Order, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.selected == "" {
		return Order{}, false
	}
	if i := l.indexLocked(l.selected); i >= 0 {
		return cloneOrder(l.orders[i]), true
	}
	return Order{}, false
}

// nextIDLocked builds ORD-YYYYMMDD-XXXX from the order date and a fresh id.
func (l *Ledger) nextIDLocked(o Order) (string, error) {
	date := o.Timestamp.In(l.opts.Location).Format("20060102")
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := fmt.Sprintf("ORD-%s-%s", date, suffix(l.opts.NewID()))
		if l.indexLocked(id) < 0 {
			return id, nil
		}
	}
	return "", apperrors.Conflict("id", "could not allocate a unique order number")
}

// suffix keeps the first four letters or digits of raw, upper-cased and zero padded.
func suffix(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if b.Len() == 4 {
			break
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	for b.Len() < 4 {
		b.WriteByte('0')
	}
	return b.String()
}

func (l *Ledger) indexLocked(id string) int {
	for i, o := range l.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func cloneOrder(o Order) Order {
	o.Items = append([]Item(nil), o.Items...)
	return o
}
