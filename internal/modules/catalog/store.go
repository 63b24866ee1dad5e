// Package catalog owns menu items and their categories.
package catalog

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/georgemunganga/tablepos/internal/platform/apperrors"
	"github.com/georgemunganga/tablepos/internal/platform/observer"
	"github.com/georgemunganga/tablepos/internal/platform/storeopt"
	"github.com/georgemunganga/tablepos/internal/platform/textkey"
	"go.uber.org/zap"
)

const storeName = "catalog"

// Store is the catalog state container. All methods are safe for concurrent use.
// Subscribers run synchronously after each successful mutation and must not mutate the store.
type Store struct {
	writeMu sync.Mutex // serialises mutate+publish so subscribers see snapshots in issue order
	mu      sync.RWMutex
	opts    storeopt.Options
	hub     observer.Hub[Snapshot]

	categories []Category
	items      []MenuItem
}

// NewStore builds a catalog from a previously persisted snapshot.
func NewStore(initial Snapshot, opts ...storeopt.Option) *Store {
	s := &Store{opts: storeopt.Apply(opts...)}
	s.categories = append([]Category(nil), initial.Categories...)
	s.items = append([]MenuItem(nil), initial.MenuItems...)
	return s
}

// Dispose drops every subscriber.
func (s *Store) Dispose() {
	s.hub.Close()
}

// Subscribe registers fn to receive the persisted subset after every successful mutation.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	return s.hub.Subscribe(fn)
}

// Snapshot returns a copy of the persisted subset.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Categories: append([]Category{}, s.categories...),
		MenuItems:  append([]MenuItem{}, s.items...),
	}
}

func (s *Store) mutate(op, id string, fn func() error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	err := fn()
	var snap Snapshot
	if err == nil {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	s.opts.Observe(storeName, op, err, zap.String("id", id))
	if err == nil {
		s.hub.Publish(snap)
	}
	return err
}

// AddMenuItem validates and appends a new item.
func (s *Store) AddMenuItem(in NewMenuItem) (MenuItem, error) {
	item := MenuItem{
		ID:          s.opts.NewID(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Category:    in.Category,
		Image:       in.Image,
		Status:      StatusAvailable,
		Unit:        in.Unit,
	}
	if in.StockQuantity != nil {
		item.StockQuantity = *in.StockQuantity
		item.Status = StatusForStock(item.StockQuantity)
	}
	err := s.mutate("add_menu_item", item.ID, func() error {
		if err := s.validateItemLocked(item, ""); err != nil {
			return err
		}
		now := s.opts.Clock()
		item.CreatedAt = now
		item.UpdatedAt = now
		s.items = append(s.items, item)
		return nil
	})
	if err != nil {
		return MenuItem{}, err
	}
	return item, nil
}

// UpdateMenuItem applies the non-nil fields of upd. Setting StockQuantity re-derives status unless Status is also set.
func (s *Store) UpdateMenuItem(id string, upd MenuItemUpdate) (MenuItem, error) {
	var out MenuItem
	err := s.mutate("update_menu_item", id, func() error {
		i := s.itemIndexLocked(id)
		if i < 0 {
			return apperrors.NotFound("menu item", id)
		}
		next := s.items[i]
		if upd.Name != nil {
			next.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.Description != nil {
			next.Description = strings.TrimSpace(*upd.Description)
		}
		if upd.Price != nil {
			next.Price = *upd.Price
		}
		if upd.Category != nil {
			next.Category = *upd.Category
		}
		if upd.Image != nil {
			next.Image = *upd.Image
		}
		if upd.Unit != nil {
			next.Unit = *upd.Unit
		}
		if upd.StockQuantity != nil {
			next.StockQuantity = *upd.StockQuantity
			next.Status = StatusForStock(next.StockQuantity)
		}
		if upd.Status != nil {
			if !upd.Status.Valid() {
				return apperrors.Validationf("status", "unknown status %q", *upd.Status)
			}
			next.Status = *upd.Status
		}
		if err := s.validateItemLocked(next, id); err != nil {
			return err
		}
		next.UpdatedAt = s.opts.Clock()
		s.items[i] = next
		out = next
		return nil
	})
	return out, err
}

// DeleteMenuItem removes an item.
func (s *Store) DeleteMenuItem(id string) error {
	return s.mutate("delete_menu_item", id, func() error {
		i := s.itemIndexLocked(id)
		if i < 0 {
			return apperrors.NotFound("menu item", id)
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		return nil
	})
}

// ToggleMenuItemAvailability flips an item between sellable and unavailable.
func (s *Store) ToggleMenuItemAvailability(id string) (MenuItem, error) {
	var out MenuItem
	err := s.mutate("toggle_availability", id, func() error {
		i := s.itemIndexLocked(id)
		if i < 0 {
			return apperrors.NotFound("menu item", id)
		}
		if s.items[i].Status == StatusUnavailable {
			s.items[i].Status = StatusAvailable
		} else {
			s.items[i].Status = StatusUnavailable
		}
		s.items[i].UpdatedAt = s.opts.Clock()
		out = s.items[i]
		return nil
	})
	return out, err
}

// SetMenuItemStatus sets an explicit status, leaving stock untouched.
func (s *Store) SetMenuItemStatus(id string, status ItemStatus) (MenuItem, error) {
	var out MenuItem
	err := s.mutate("set_status", id, func() error {
		if !status.Valid() {
			return apperrors.Validationf("status", "unknown status %q", status)
		}
		i := s.itemIndexLocked(id)
		if i < 0 {
			return apperrors.NotFound("menu item", id)
		}
		s.items[i].Status = status
		s.items[i].UpdatedAt = s.opts.Clock()
		out = s.items[i]
		return nil
	})
	return out, err
}

// UpdateStockQuantity sets the stock level and re-derives status from it.
func (s *Store) UpdateStockQuantity(id string, qty int) (MenuItem, error) {
	var out MenuItem
	err := s.mutate("update_stock", id, func() error {
		if qty < 0 {
			return apperrors.Validation("stockQuantity", "stock quantity must not be negative")
		}
		i := s.itemIndexLocked(id)
		if i < 0 {
			return apperrors.NotFound("menu item", id)
		}
		s.items[i].StockQuantity = qty
		s.items[i].Status = StatusForStock(qty)
		s.items[i].UpdatedAt = s.opts.Clock()
		out = s.items[i]
		return nil
	})
	return out, err
}

// BulkDeleteMenuItems removes every listed item and reports how many existed.
func (s *Store) BulkDeleteMenuItems(ids []string) (int, error) {
	var n int
	err := s.mutate("bulk_delete", strings.Join(ids, ","), func() error {
		drop := toSet(ids)
		kept := s.items[:0]
		for _, it := range s.items {
			if _, ok := drop[it.ID]; ok {
				n++
				continue
			}
			kept = append(kept, it)
		}
		s.items = kept
		return nil
	})
	return n, err
}

// BulkToggleAvailability sets status on every listed item.
func (s *Store) BulkToggleAvailability(ids []string, status ItemStatus) (int, error) {
	var n int
	err := s.mutate("bulk_status", strings.Join(ids, ","), func() error {
		if !status.Valid() {
			return apperrors.Validationf("status", "unknown status %q", status)
		}
		n = s.eachLocked(ids, func(it *MenuItem) { it.Status = status })
		return nil
	})
	return n, err
}

// BulkUpdateCategory moves every listed item to categoryID.
func (s *Store) BulkUpdateCategory(ids []string, categoryID string) (int, error) {
	var n int
	err := s.mutate("bulk_category", strings.Join(ids, ","), func() error {
		if s.categoryIndexLocked(categoryID) < 0 {
			return apperrors.Validationf("category", "unknown category %q", categoryID)
		}
		n = s.eachLocked(ids, func(it *MenuItem) { it.Category = categoryID })
		return nil
	})
	return n, err
}

// AddCategory appends a category with a unique name.
func (s *Store) AddCategory(in NewCategory) (Category, error) {
	c := Category{ID: s.opts.NewID(), Name: strings.TrimSpace(in.Name), Icon: in.Icon}
	err := s.mutate("add_category", c.ID, func() error {
		if err := s.validateCategoryLocked(c.Name, ""); err != nil {
			return err
		}
		s.categories = append(s.categories, c)
		return nil
	})
	if err != nil {
		return Category{}, err
	}
	return c, nil
}

// UpdateCategory renames or re-icons a category.
func (s *Store) UpdateCategory(id string, upd CategoryUpdate) (Category, error) {
	var out Category
	err := s.mutate("update_category", id, func() error {
		i := s.categoryIndexLocked(id)
		if i < 0 {
			return apperrors.NotFound("category", id)
		}
		next := s.categories[i]
		if upd.Name != nil {
			next.Name = strings.TrimSpace(*upd.Name)
			if err := s.validateCategoryLocked(next.Name, id); err != nil {
				return err
			}
		}
		if upd.Icon != nil {
			next.Icon = *upd.Icon
		}
		s.categories[i] = next
		out = next
		return nil
	})
	return out, err
}

// DeleteCategory removes a category that no menu item references.
func (s *Store) DeleteCategory(id string) error {
	return s.mutate("delete_category", id, func() error {
		i := s.categoryIndexLocked(id)
		if i < 0 {
			return apperrors.NotFound("category", id)
		}
		for _, it := range s.items {
			if it.Category == id {
				return apperrors.Conflictf("category", "category %q is still used by menu items", s.categories[i].Name)
			}
		}
		s.categories = append(s.categories[:i], s.categories[i+1:]...)
		return nil
	})
}

// SetMenuItems replaces the menu with records from a remote source, filling defaults.
func (s *Store) SetMenuItems(items []MenuItem) error {
	return s.mutate("set_menu_items", "", func() error {
		now := s.opts.Clock()
		next := make([]MenuItem, 0, len(items))
		for _, it := range items {
			if it.ID == "" {
				it.ID = s.opts.NewID()
			}
			it.Name = strings.TrimSpace(it.Name)
			if it.StockQuantity < 0 {
				it.StockQuantity = 0
			}
			if !it.Status.Valid() {
				it.Status = StatusForStock(it.StockQuantity)
			}
			if it.CreatedAt.IsZero() {
				it.CreatedAt = now
			}
			if it.UpdatedAt.IsZero() {
				it.UpdatedAt = it.CreatedAt
			}
			next = append(next, it)
		}
		s.items = next
		return nil
	})
}

// SetCategories replaces the category list with records from a remote source.
func (s *Store) SetCategories(categories []Category) error {
	return s.mutate("set_categories", "", func() error {
		next := make([]Category, 0, len(categories))
		for _, c := range categories {
			if c.ID == "" {
				c.ID = s.opts.NewID()
			}
			c.Name = strings.TrimSpace(c.Name)
			next = append(next, c)
		}
		s.categories = next
		return nil
	})
}

func (s *Store) validateItemLocked(it MenuItem, selfID string) error {
	if it.Name == "" {
		return apperrors.Validation("name", "name is required")
	}
	if utf8.RuneCountInString(it.Name) > MaxNameLength {
		return apperrors.Validationf("name", "name must be at most %d characters", MaxNameLength)
	}
	if !it.Price.IsPositive() {
		return apperrors.Validation("price", "price must be greater than 0")
	}
	if it.StockQuantity < 0 {
		return apperrors.Validation("stockQuantity", "stock quantity must not be negative")
	}
	if it.Category == "" {
		return apperrors.Validation("category", "category is required")
	}
	if s.categoryIndexLocked(it.Category) < 0 {
		return apperrors.Validationf("category", "unknown category %q", it.Category)
	}
	key := textkey.Fold(it.Name)
	for _, other := range s.items {
		if other.ID != selfID && textkey.Fold(other.Name) == key {
			return apperrors.Conflictf("name", "menu item %q already exists", it.Name)
		}
	}
	return nil
}

func (s *Store) validateCategoryLocked(name, selfID string) error {
	if name == "" {
		return apperrors.Validation("name", "category name is required")
	}
	key := textkey.Fold(name)
	for _, c := range s.categories {
		if c.ID != selfID && textkey.Fold(c.Name) == key {
			return apperrors.Conflictf("name", "category %q already exists", name)
		}
	}
	return nil
}

func (s *Store) eachLocked(ids []string, fn func(*MenuItem)) int {
	want := toSet(ids)
	now := s.opts.Clock()
	n := 0
	for i := range s.items {
		if _, ok := want[s.items[i].ID]; ok {
			fn(&s.items[i])
			s.items[i].UpdatedAt = now
			n++
		}
	}
	return n
}

func (s *Store) itemIndexLocked(id string) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) categoryIndexLocked(id string) int {
	for i, c := range s.categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
