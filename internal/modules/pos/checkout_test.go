package pos

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/georgemunganga/tablepos/internal/modules/catalog"
	"github.com/georgemunganga/tablepos/internal/modules/floorplan"
	"github.com/georgemunganga/tablepos/internal/modules/order"
	"github.com/georgemunganga/tablepos/internal/modules/roster"
	"github.com/georgemunganga/tablepos/internal/platform/apperrors"
	"github.com/georgemunganga/tablepos/internal/platform/storeopt"
)

var (
	saigon   = time.FixedZone("ICT", 7*60*60)
	fixedNow = time.Date(2026, 3, 14, 19, 0, 0, 0, saigon)
)

type fixture struct {
	menu     *catalog.Store
	staff    *roster.Store
	tables   *floorplan.Store
	orders   *order.Ledger
	checkout *Checkout

	phoID, bunChaID string
	waiterID        string
	tableID         string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	seq := 0
	opts := []storeopt.Option{
		storeopt.WithClock(func() time.Time { return fixedNow }),
		storeopt.WithLocation(saigon),
		storeopt.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("%04d-fixture", seq)
		}),
	}
	f := &fixture{
		menu:   catalog.NewStore(catalog.Snapshot{}, opts...),
		staff:  roster.NewStore(roster.Snapshot{}, opts...),
		tables: floorplan.NewStore(floorplan.Snapshot{}, opts...),
		orders: order.NewLedger(order.Snapshot{}, opts...),
	}
	t.Cleanup(func() {
		f.menu.Dispose()
		f.staff.Dispose()
		f.tables.Dispose()
		f.orders.Dispose()
	})
	f.checkout = NewCheckout(f.menu, f.staff, f.tables, f.orders, nil)

	cat, err := f.menu.AddCategory(catalog.NewCategory{Name: "Món chính"})
	if err != nil {
		t.Fatalf("add category: %v", err)
	}
	for _, it := range []struct {
		name, price string
		id          *string
	}{{"Phở bò", "65000", &f.phoID}, {"Bún chả", "45000", &f.bunChaID}} {
		item, err := f.menu.AddMenuItem(catalog.NewMenuItem{Name: it.name, Price: d(it.price), Category: cat.ID})
		if err != nil {
			t.Fatalf("add item %s: %v", it.name, err)
		}
		*it.id = item.ID
	}
	waiter, err := f.staff.AddStaff(roster.NewStaff{Name: "An", Phone: "0901234567", Email: "an@example.com", Role: roster.RoleWaiter})
	if err != nil {
		t.Fatalf("add staff: %v", err)
	}
	f.waiterID = waiter.ID
	table, err := f.tables.AddTable(floorplan.NewTable{Number: "3", Capacity: 4})
	if err != nil {
		t.Fatalf("add table: %v", err)
	}
	f.tableID = table.ID
	return f
}

func (f *fixture) fillCart(t *testing.T) {
	t.Helper()
	if _, err := f.checkout.AddToCart(f.tableID, f.phoID, 2, ""); err != nil {
		t.Fatalf("add pho: %v", err)
	}
	if _, err := f.checkout.AddToCart(f.tableID, f.bunChaID, 1, ""); err != nil {
		t.Fatalf("add bun cha: %v", err)
	}
}

func (f *fixture) place(t *testing.T) order.Order {
	t.Helper()
	f.fillCart(t)
	o, err := f.checkout.PlaceOrder(PlaceOrderRequest{
		TableID:  f.tableID,
		StaffID:  f.waiterID,
		Discount: order.Discount{Type: order.DiscountPercent, Value: d("10")},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	return o
}

func TestPlaceOrderOccupiesTable(t *testing.T) {
	f := newFixture(t)

	o := f.place(t)

	if !strings.HasPrefix(o.ID, "ORD-20260314-") {
		t.Fatalf("order id = %s", o.ID)
	}
	if o.Table != "Tầng 1 - Bàn 3" || o.Staff != "An" || o.StaffID != f.waiterID {
		t.Fatalf("order = %+v", o)
	}
	if !o.Total.Equal(d("173250")) {
		t.Fatalf("total = %s, want 173250", o.Total)
	}
	if o.Status != order.StatusPending || o.PaymentStatus != order.PaymentUnpaid {
		t.Fatalf("status = %s/%s", o.Status, o.PaymentStatus)
	}

	tbl, _ := f.tables.Table(f.tableID)
	if tbl.Status != floorplan.TableOccupied || tbl.OrderID == nil || *tbl.OrderID != o.ID {
		t.Fatalf("table = %+v", tbl)
	}
	if tbl.CurrentOccupancy != 3 {
		t.Fatalf("occupancy = %d, want 3", tbl.CurrentOccupancy)
	}
	if n := len(f.checkout.Cart(f.tableID).Items()); n != 0 {
		t.Fatalf("cart has %d lines after checkout", n)
	}
}

func TestPlaceOrderSnapshotsPrices(t *testing.T) {
	f := newFixture(t)
	o := f.place(t)

	price := d("99000")
	if _, err := f.menu.UpdateMenuItem(f.phoID, catalog.MenuItemUpdate{Price: &price}); err != nil {
		t.Fatalf("update price: %v", err)
	}

	got, _ := f.orders.Order(o.ID)
	if !got.Items[0].Price.Equal(d("65000")) || !got.Total.Equal(o.Total) {
		t.Fatalf("order changed after price edit: %+v", got)
	}
}

func TestPlaceOrderRejections(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, f *fixture) PlaceOrderRequest
		want  error
	}{
		{
			name: "empty cart",
			setup: func(t *testing.T, f *fixture) PlaceOrderRequest {
				return PlaceOrderRequest{TableID: f.tableID, StaffID: f.waiterID}
			},
			want: apperrors.ErrValidation,
		},
		{
			name: "unknown staff",
			setup: func(t *testing.T, f *fixture) PlaceOrderRequest {
				f.fillCart(t)
				return PlaceOrderRequest{TableID: f.tableID, StaffID: "ghost"}
			},
			want: apperrors.ErrNotFound,
		},
		{
			name: "inactive staff",
			setup: func(t *testing.T, f *fixture) PlaceOrderRequest {
				f.fillCart(t)
				if _, err := f.staff.SetStaffStatus(f.waiterID, roster.StatusInactive); err != nil {
					t.Fatalf("set status: %v", err)
				}
				return PlaceOrderRequest{TableID: f.tableID, StaffID: f.waiterID}
			},
			want: apperrors.ErrConflict,
		},
		{
			name: "table being cleaned",
			setup: func(t *testing.T, f *fixture) PlaceOrderRequest {
				f.fillCart(t)
				if _, err := f.tables.SetTableStatus(f.tableID, floorplan.TableCleaning); err != nil {
					t.Fatalf("set table status: %v", err)
				}
				return PlaceOrderRequest{TableID: f.tableID, StaffID: f.waiterID}
			},
			want: apperrors.ErrConflict,
		},
		{
			name: "item went unavailable",
			setup: func(t *testing.T, f *fixture) PlaceOrderRequest {
				f.fillCart(t)
				if _, err := f.menu.SetMenuItemStatus(f.phoID, catalog.StatusUnavailable); err != nil {
					t.Fatalf("set item status: %v", err)
				}
				return PlaceOrderRequest{TableID: f.tableID, StaffID: f.waiterID}
			},
			want: apperrors.ErrConflict,
		},
		{
			name: "discount over 100 percent",
			setup: func(t *testing.T, f *fixture) PlaceOrderRequest {
				f.fillCart(t)
				return PlaceOrderRequest{
					TableID:  f.tableID,
					StaffID:  f.waiterID,
					Discount: order.Discount{Type: order.DiscountPercent, Value: d("120")},
				}
			},
			want: apperrors.ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := tt.setup(t, f)

			_, err := f.checkout.PlaceOrder(req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if n := len(f.orders.Orders()); n != 0 {
				t.Fatalf("orders = %d, want 0", n)
			}
			if tbl, _ := f.tables.Table(f.tableID); tbl.OrderID != nil {
				t.Fatalf("table took an order: %+v", tbl)
			}
		})
	}
}

func TestPlaceOrderRefusesOccupiedTable(t *testing.T) {
	f := newFixture(t)
	f.place(t)

	f.fillCart(t)
	_, err := f.checkout.PlaceOrder(PlaceOrderRequest{TableID: f.tableID, StaffID: f.waiterID})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if n := len(f.orders.Orders()); n != 1 {
		t.Fatalf("orders = %d, want 1", n)
	}
}

type stuckBoard struct {
	*floorplan.Store
}

func (stuckBoard) AssignOrder(string, string, *int) (floorplan.Table, error) {
	return floorplan.Table{}, errors.New("floor plan offline")
}

func TestPlaceOrderKeepsOrderWhenTableUpdateFails(t *testing.T) {
	f := newFixture(t)
	f.checkout = NewCheckout(f.menu, f.staff, stuckBoard{f.tables}, f.orders, nil)
	f.fillCart(t)

	o, err := f.checkout.PlaceOrder(PlaceOrderRequest{TableID: f.tableID, StaffID: f.waiterID})
	if err == nil {
		t.Fatal("expected error from table update")
	}
	if o.ID == "" {
		t.Fatal("placed order not returned")
	}
	if _, ok := f.orders.Order(o.ID); !ok {
		t.Fatal("order was rolled back")
	}
	if tbl, _ := f.tables.Table(f.tableID); tbl.OrderID != nil {
		t.Fatalf("table = %+v", tbl)
	}
}

// slowBoard widens the gap between reading a table and writing it.
type slowBoard struct {
	*floorplan.Store
}

func (b slowBoard) Table(id string) (floorplan.Table, bool) {
	t, ok := b.Store.Table(id)
	time.Sleep(20 * time.Millisecond)
	return t, ok
}

func TestConcurrentCheckoutsPlaceOneOrderPerTable(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	f.checkout = &Checkout{
		menu: f.menu, staff: f.staff, tables: slowBoard{f.tables}, orders: f.orders,
		carts: f.checkout.carts, log: f.checkout.log,
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.checkout.PlaceOrder(PlaceOrderRequest{TableID: f.tableID, StaffID: f.waiterID})
		}(i)
	}
	wg.Wait()

	placed := 0
	for _, err := range errs {
		if err == nil {
			placed++
		}
	}
	if placed != 1 {
		t.Fatalf("errs = %v, want exactly one success", errs)
	}
	orders := f.orders.Orders()
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(orders))
	}
	tbl, _ := f.tables.Table(f.tableID)
	if tbl.OrderID == nil || *tbl.OrderID != orders[0].ID {
		t.Fatalf("table order = %v, want %s", tbl.OrderID, orders[0].ID)
	}
}

func TestSettleOrderCash(t *testing.T) {
	f := newFixture(t)
	o := f.place(t)

	receipt, err := f.checkout.SettleOrder(o.ID, SettleRequest{Method: PaymentCash, Tendered: d("200000")})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !receipt.Change.Equal(d("26750")) {
		t.Fatalf("change = %s, want 26750", receipt.Change)
	}
	if receipt.Order.Status != order.StatusCompleted || receipt.Order.PaymentStatus != order.PaymentPaid {
		t.Fatalf("order = %s/%s", receipt.Order.Status, receipt.Order.PaymentStatus)
	}
	tbl, _ := f.tables.Table(f.tableID)
	if tbl.Status != floorplan.TableAvailable || tbl.OrderID != nil || tbl.CurrentOccupancy != 0 {
		t.Fatalf("table not released: %+v", tbl)
	}
}

func TestSettleOrderRejectsShortTenderAndUnknownMethod(t *testing.T) {
	f := newFixture(t)
	o := f.place(t)

	if _, err := f.checkout.SettleOrder(o.ID, SettleRequest{Method: PaymentCash, Tendered: d("100000")}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("short tender err = %v", err)
	}
	if _, err := f.checkout.SettleOrder(o.ID, SettleRequest{Method: "voucher"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("bad method err = %v", err)
	}
	got, _ := f.orders.Order(o.ID)
	if got.PaymentStatus != order.PaymentUnpaid || got.Status != order.StatusPending {
		t.Fatalf("order mutated by rejected settle: %s/%s", got.Status, got.PaymentStatus)
	}
	if _, err := f.checkout.SettleOrder("missing", SettleRequest{}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("missing order err = %v", err)
	}
}

func TestSettleOrderCardFromProcessing(t *testing.T) {
	f := newFixture(t)
	o := f.place(t)
	if _, err := f.orders.UpdateOrderStatus(o.ID, order.StatusProcessing); err != nil {
		t.Fatalf("processing: %v", err)
	}

	receipt, err := f.checkout.SettleOrder(o.ID, SettleRequest{Method: "CARD"})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if receipt.Method != PaymentCard || !receipt.Change.IsZero() || !receipt.Tendered.Equal(o.Total) {
		t.Fatalf("receipt = %+v", receipt)
	}
}

func TestCancelOrderReleasesTable(t *testing.T) {
	f := newFixture(t)
	o := f.place(t)

	got, err := f.checkout.CancelOrder(o.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != order.StatusCancelled || got.PaymentStatus != order.PaymentUnpaid {
		t.Fatalf("order = %s/%s", got.Status, got.PaymentStatus)
	}
	if tbl, _ := f.tables.Table(f.tableID); tbl.Status != floorplan.TableAvailable {
		t.Fatalf("table status = %s", tbl.Status)
	}
}

func TestCancelPaidOrderRefundsPayment(t *testing.T) {
	f := newFixture(t)
	o := f.place(t)
	if _, err := f.orders.UpdatePaymentStatus(o.ID, order.PaymentPaid); err != nil {
		t.Fatalf("pay: %v", err)
	}

	got, err := f.checkout.CancelOrder(o.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.PaymentStatus != order.PaymentRefunded {
		t.Fatalf("payment = %s, want refunded", got.PaymentStatus)
	}
}

func TestRefundOrder(t *testing.T) {
	f := newFixture(t)
	o := f.place(t)

	if _, err := f.checkout.RefundOrder(o.ID); !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("refund pending err = %v", err)
	}
	if _, err := f.checkout.SettleOrder(o.ID, SettleRequest{Method: PaymentTransfer}); err != nil {
		t.Fatalf("settle: %v", err)
	}
	got, err := f.checkout.RefundOrder(o.ID)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if got.Status != order.StatusRefunded || got.PaymentStatus != order.PaymentRefunded {
		t.Fatalf("order = %s/%s", got.Status, got.PaymentStatus)
	}
}

func TestAddToCartChecksTableAndItem(t *testing.T) {
	f := newFixture(t)

	if _, err := f.checkout.AddToCart("nowhere", f.phoID, 1, ""); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("unknown table err = %v", err)
	}
	if _, err := f.checkout.AddToCart(f.tableID, "ghost", 1, ""); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("unknown item err = %v", err)
	}
	if _, err := f.menu.ToggleMenuItemAvailability(f.phoID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := f.checkout.AddToCart(f.tableID, f.phoID, 1, ""); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("unavailable item err = %v", err)
	}
}
