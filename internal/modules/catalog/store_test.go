package catalog

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/georgemunganga/tablepos/internal/platform/apperrors"
	"github.com/georgemunganga/tablepos/internal/platform/storeopt"
	"github.com/georgemunganga/tablepos/internal/platform/textkey"
	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	seq := 0
	s := NewStore(Snapshot{}, storeopt.WithClock(func() time.Time { return fixedNow }),
		storeopt.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
		storeopt.WithLocation(time.UTC),
	)
	t.Cleanup(s.Dispose)
	return s
}

func mustCategory(t *testing.T, s *Store, name string) Category {
	t.Helper()
	c, err := s.AddCategory(NewCategory{Name: name, Icon: "bowl"})
	if err != nil {
		t.Fatalf("add category %q: %v", name, err)
	}
	return c
}

func mustItem(t *testing.T, s *Store, name, category string, price int64) MenuItem {
	t.Helper()
	it, err := s.AddMenuItem(NewMenuItem{Name: name, Price: decimal.NewFromInt(price), Category: category})
	if err != nil {
		t.Fatalf("add item %q: %v", name, err)
	}
	return it
}

func intPtr(v int) *int { return &v }

func TestAddMenuItemDefaults(t *testing.T) {
	s := newTestStore(t)
	c := mustCategory(t, s, "Phở")

	it := mustItem(t, s, "  Phở bò  ", c.ID, 65000)

	if it.Name != "Phở bò" {
		t.Fatalf("name = %q, want trimmed", it.Name)
	}
	if it.Status != StatusAvailable {
		t.Fatalf("status = %q, want %q", it.Status, StatusAvailable)
	}
	if !it.CreatedAt.Equal(fixedNow) || !it.UpdatedAt.Equal(fixedNow) {
		t.Fatalf("timestamps = %v/%v, want %v", it.CreatedAt, it.UpdatedAt, fixedNow)
	}
	if got, ok := s.MenuItem(it.ID); !ok || got.Name != it.Name {
		t.Fatalf("lookup = %+v, %v", got, ok)
	}
}

func TestAddMenuItemValidation(t *testing.T) {
	s := newTestStore(t)
	c := mustCategory(t, s, "Drinks")
	mustItem(t, s, "Cà phê sữa", c.ID, 30000)

	long := make([]rune, MaxNameLength+1)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name string
		in   NewMenuItem
		want error
	}{
		{name: "empty name", in: NewMenuItem{Name: "  ", Price: decimal.NewFromInt(1), Category: c.ID}, want: apperrors.ErrValidation},
		{name: "long name", in: NewMenuItem{Name: string(long), Price: decimal.NewFromInt(1), Category: c.ID}, want: apperrors.ErrValidation},
		{name: "zero price", in: NewMenuItem{Name: "Trà", Price: decimal.Zero, Category: c.ID}, want: apperrors.ErrValidation},
		{name: "negative price", in: NewMenuItem{Name: "Trà", Price: decimal.NewFromInt(-5), Category: c.ID}, want: apperrors.ErrValidation},
		{name: "missing category", in: NewMenuItem{Name: "Trà", Price: decimal.NewFromInt(1)}, want: apperrors.ErrValidation},
		{name: "unknown category", in: NewMenuItem{Name: "Trà", Price: decimal.NewFromInt(1), Category: "nope"}, want: apperrors.ErrValidation},
		{name: "duplicate name", in: NewMenuItem{Name: " CÀ PHÊ SỮA ", Price: decimal.NewFromInt(1), Category: c.ID}, want: apperrors.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(s.MenuItems())
			_, err := s.AddMenuItem(tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if got := len(s.MenuItems()); got != before {
				t.Fatalf("items = %d, want %d (unchanged)", got, before)
			}
		})
	}
}

func TestMenuItemNamesStayUnique(t *testing.T) {
	s := newTestStore(t)
	c := mustCategory(t, s, "Main")
	names := []string{"Cơm tấm", "cơm tấm", " Cơm Tấm ", "Bún chả", "BÚN CHẢ", "Bánh mì"}
	for _, n := range names {
		_, _ = s.AddMenuItem(NewMenuItem{Name: n, Price: decimal.NewFromInt(10), Category: c.ID})
	}

	items := s.MenuItems()
	for i := range items {
		for j := i + 1; j < len(items); j++ {
			if textkey.Equal(items[i].Name, items[j].Name) {
				t.Fatalf("duplicate item names %q and %q", items[i].Name, items[j].Name)
			}
		}
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
}

func TestUpdateMenuItemExcludesSelfFromUniqueness(t *testing.T) {
	s := newTestStore(t)
	c := mustCategory(t, s, "Main")
	a := mustItem(t, s, "Bún bò", c.ID, 50000)
	b := mustItem(t, s, "Bún riêu", c.ID, 45000)

	same := "bún bò"
	if _, err := s.UpdateMenuItem(a.ID, MenuItemUpdate{Name: &same}); err != nil {
		t.Fatalf("renaming to own name: %v", err)
	}
	if _, err := s.UpdateMenuItem(b.ID, MenuItemUpdate{Name: &same}); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	zero := decimal.Zero
	if _, err := s.UpdateMenuItem(b.ID, MenuItemUpdate{Price: &zero}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	got, _ := s.MenuItem(b.ID)
	if got.Name != "Bún riêu" || !got.Price.Equal(decimal.NewFromInt(45000)) {
		t.Fatalf("item changed after rejected update: %+v", got)
	}
}

func TestUpdateStockQuantityDerivesStatus(t *testing.T) {
	tests := []struct {
		qty   int
		prior ItemStatus
		want  ItemStatus
	}{
		{qty: 0, prior: StatusAvailable, want: StatusUnavailable},
		{qty: 1, prior: StatusUnavailable, want: StatusLowStock},
		{qty: 9, prior: StatusAvailable, want: StatusLowStock},
		{qty: 10, prior: StatusLowStock, want: StatusAvailable},
		{qty: 250, prior: StatusUnavailable, want: StatusAvailable},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d from %s", tt.qty, tt.prior), func(t *testing.T) {
			s := newTestStore(t)
			c := mustCategory(t, s, "Main")
			it := mustItem(t, s, "Gỏi cuốn", c.ID, 35000)
			if _, err := s.SetMenuItemStatus(it.ID, tt.prior); err != nil {
				t.Fatalf("set prior status: %v", err)
			}

			got, err := s.UpdateStockQuantity(it.ID, tt.qty)
			if err != nil {
				t.Fatalf("update stock: %v", err)
			}
			if got.Status != tt.want {
				t.Fatalf("status = %q, want %q", got.Status, tt.want)
			}
		})
	}
}

func TestUpdateStockQuantityRejectsNegative(t *testing.T) {
	s := newTestStore(t)
	c := mustCategory(t, s, "Main")
	it := mustItem(t, s, "Chả giò", c.ID, 40000)

	if _, err := s.UpdateStockQuantity(it.ID, -1); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestToggleMenuItemAvailability(t *testing.T) {
	s := newTestStore(t)
	c := mustCategory(t, s, "Main")
	it := mustItem(t, s, "Bánh xèo", c.ID, 55000)

	got, err := s.ToggleMenuItemAvailability(it.ID)
	if err != nil || got.Status != StatusUnavailable {
		t.Fatalf("first toggle = %q, %v", got.Status, err)
	}
	got, err = s.ToggleMenuItemAvailability(it.ID)
	if err != nil || got.Status != StatusAvailable {
		t.Fatalf("second toggle = %q, %v", got.Status, err)
	}
}

func TestMissingIDReturnsNotFound(t *testing.T) {
	s := newTestStore(t)

	if err := s.DeleteMenuItem("ghost"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("delete err = %v, want not found", err)
	}
	if _, err := s.ToggleMenuItemAvailability("ghost"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("toggle err = %v, want not found", err)
	}
	if _, err := s.UpdateStockQuantity("ghost", 3); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("stock err = %v, want not found", err)
	}
	if err := s.DeleteCategory("ghost"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("delete category err = %v, want not found", err)
	}
}

func TestDeleteCategoryInUseConflicts(t *testing.T) {
	s := newTestStore(t)
	c := mustCategory(t, s, "Main")
	it := mustItem(t, s, "Cơm gà", c.ID, 45000)

	if err := s.DeleteCategory(c.ID); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if err := s.DeleteMenuItem(it.ID); err != nil {
		t.Fatalf("delete item: %v", err)
	}
	if err := s.DeleteCategory(c.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if len(s.Categories()) != 0 {
		t.Fatalf("categories = %d, want 0", len(s.Categories()))
	}
}

func TestAddCategoryUniqueness(t *testing.T) {
	s := newTestStore(t)
	mustCategory(t, s, "Đồ uống")

	if _, err := s.AddCategory(NewCategory{Name: " đồ uống "}); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if _, err := s.AddCategory(NewCategory{Name: ""}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestUpdateCategory(t *testing.T) {
	s := newTestStore(t)
	a := mustCategory(t, s, "Main")
	mustCategory(t, s, "Drinks")

	name := "drinks"
	if _, err := s.UpdateCategory(a.ID, CategoryUpdate{Name: &name}); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	name = "Món chính"
	got, err := s.UpdateCategory(a.ID, CategoryUpdate{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Món chính" || got.Icon != "bowl" {
		t.Fatalf("category = %+v", got)
	}
}

func TestBulkOperations(t *testing.T) {
	s := newTestStore(t)
	main := mustCategory(t, s, "Main")
	drinks := mustCategory(t, s, "Drinks")
	a := mustItem(t, s, "A", main.ID, 10)
	b := mustItem(t, s, "B", main.ID, 10)
	c := mustItem(t, s, "C", main.ID, 10)

	n, err := s.BulkToggleAvailability([]string{a.ID, b.ID, "ghost"}, StatusUnavailable)
	if err != nil || n != 2 {
		t.Fatalf("bulk status = %d, %v; want 2", n, err)
	}
	if got := len(s.UnavailableItems()); got != 2 {
		t.Fatalf("unavailable = %d, want 2", got)
	}

	if _, err := s.BulkUpdateCategory([]string{a.ID}, "ghost"); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	n, err = s.BulkUpdateCategory([]string{b.ID, c.ID}, drinks.ID)
	if err != nil || n != 2 {
		t.Fatalf("bulk category = %d, %v; want 2", n, err)
	}
	if got := len(s.ItemsByCategory(drinks.ID)); got != 2 {
		t.Fatalf("drinks = %d, want 2", got)
	}

	n, err = s.BulkDeleteMenuItems([]string{a.ID, c.ID, "ghost"})
	if err != nil || n != 2 {
		t.Fatalf("bulk delete = %d, %v; want 2", n, err)
	}
	if items := s.MenuItems(); len(items) != 1 || items[0].ID != b.ID {
		t.Fatalf("remaining = %+v", items)
	}
}

func TestSetMenuItemsFillsDefaults(t *testing.T) {
	s := newTestStore(t)
	err := s.SetMenuItems([]MenuItem{
		{ID: "remote-1", Name: " Trà đá ", Price: decimal.NewFromInt(5000), Category: "c", StockQuantity: 4},
		{Name: "Nước cam", Price: decimal.NewFromInt(25000), Category: "c", Status: StatusUnavailable, StockQuantity: 40},
	})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	items := s.MenuItems()
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].Name != "Trà đá" || items[0].Status != StatusLowStock || !items[0].CreatedAt.Equal(fixedNow) {
		t.Fatalf("first = %+v", items[0])
	}
	if items[1].ID == "" || items[1].Status != StatusUnavailable {
		t.Fatalf("second = %+v", items[1])
	}
}

func TestSubscribersSeeEachMutation(t *testing.T) {
	s := newTestStore(t)
	var got []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) { got = append(got, snap) })

	c := mustCategory(t, s, "Main")
	mustItem(t, s, "Phở gà", c.ID, 60000)
	_, _ = s.AddMenuItem(NewMenuItem{Name: ""}) // rejected, no publish

	if len(got) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(got))
	}
	if len(got[1].MenuItems) != 1 || len(got[1].Categories) != 1 {
		t.Fatalf("last snapshot = %+v", got[1])
	}

	unsubscribe()
	mustCategory(t, s, "Drinks")
	if len(got) != 2 {
		t.Fatalf("snapshots after unsubscribe = %d, want 2", len(got))
	}
}

func TestNewStoreRestoresSnapshot(t *testing.T) {
	s := newTestStore(t)
	c := mustCategory(t, s, "Main")
	mustItem(t, s, "Hủ tiếu", c.ID, 50000)

	restored := NewStore(s.Snapshot())
	if len(restored.MenuItems()) != 1 || len(restored.Categories()) != 1 {
		t.Fatalf("restored = %+v", restored.Snapshot())
	}
}
