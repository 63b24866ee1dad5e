package order

import (
	"time"

	"github.com/georgemunganga/tablepos/internal/platform/textkey"
	"github.com/shopspring/decimal"
)

// Order returns the order with id.
func (l *Ledger) Order(id string) (Order, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.indexLocked(id); i >= 0 {
		return cloneOrder(l.orders[i]), true
	}
	return Order{}, false
}

// Orders returns every order, oldest first.
func (l *Ledger) Orders() []Order {
	return l.selectOrders(func(Order) bool { return true })
}

func (l *Ledger) ByStatus(status Status) []Order {
	return l.selectOrders(func(o Order) bool { return o.Status == status })
}

func (l *Ledger) ByPaymentStatus(payment PaymentStatus) []Order {
	return l.selectOrders(func(o Order) bool { return o.PaymentStatus == payment })
}

func (l *Ledger) ByStaff(staffID string) []Order {
	return l.selectOrders(func(o Order) bool { return o.StaffID == staffID })
}

// FilterOrders applies every non-empty criterion of f. Search covers id, table, staff and customer.
func (l *Ledger) FilterOrders(f Filter) []Order {
	return l.selectOrders(func(o Order) bool {
		if f.Status != "" && o.Status != f.Status {
			return false
		}
		if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
			return false
		}
		if f.StaffID != "" && o.StaffID != f.StaffID {
			return false
		}
		return textkey.Contains(f.Search, o.ID, o.Table, o.Staff, o.Customer, o.CustomerPhone)
	})
}

// billable reports whether an order counts towards revenue.
func billable(o Order) bool {
	return o.Status != StatusCancelled && o.Status != StatusRefunded
}

// Stats aggregates the ledger as of now. Revenue and the average only count billable orders;
// revenue is further limited to orders placed on now's calendar day.
func (l *Ledger) Stats(now time.Time) Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	today := l.opts.DateOf(now)
	st := Stats{TotalOrders: len(l.orders), TodayRevenue: decimal.Zero, AverageOrderValue: decimal.Zero}
	billed := decimal.Zero
	nBilled := 0
	for _, o := range l.orders {
		if o.PaymentStatus == PaymentUnpaid {
			st.Unpaid++
		}
		if o.Status == StatusPending {
			st.Pending++
		}
		if !billable(o) {
			continue
		}
		billed = billed.Add(o.Total)
		nBilled++
		if l.opts.DateOf(o.Timestamp) == today {
			st.TodayRevenue = st.TodayRevenue.Add(o.Total)
		}
	}
	if nBilled > 0 {
		st.AverageOrderValue = billed.Div(decimal.NewFromInt(int64(nBilled))).Round(2)
	}
	return st
}

func (l *Ledger) selectOrders(keep func(Order) bool) []Order {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Order, 0, len(l.orders))
	for _, o := range l.orders {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	return out
}
