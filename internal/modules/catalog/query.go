package catalog

import "github.com/georgemunganga/tablepos/internal/platform/textkey"

// MenuItem returns the item with id.
func (s *Store) MenuItem(id string) (MenuItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.itemIndexLocked(id); i >= 0 {
		return s.items[i], true
	}
	return MenuItem{}, false
}

// MenuItems returns every item in insertion order.
func (s *Store) MenuItems() []MenuItem {
	return s.selectItems(func(MenuItem) bool { return true })
}

// Category returns the category with id.
func (s *Store) Category(id string) (Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.categoryIndexLocked(id); i >= 0 {
		return s.categories[i], true
	}
	return Category{}, false
}

// Categories returns every category in insertion order.
func (s *Store) Categories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Category{}, s.categories...)
}

func (s *Store) ItemsByCategory(categoryID string) []MenuItem {
	return s.selectItems(func(it MenuItem) bool { return it.Category == categoryID })
}

func (s *Store) ItemsByStatus(status ItemStatus) []MenuItem {
	return s.selectItems(func(it MenuItem) bool { return it.Status == status })
}

func (s *Store) AvailableItems() []MenuItem   { return s.ItemsByStatus(StatusAvailable) }
func (s *Store) UnavailableItems() []MenuItem { return s.ItemsByStatus(StatusUnavailable) }
func (s *Store) LowStockItems() []MenuItem    { return s.ItemsByStatus(StatusLowStock) }

// Search matches query against name and description, ignoring case and Vietnamese diacritics.
func (s *Store) Search(query string) []MenuItem {
	return s.selectItems(func(it MenuItem) bool { return textkey.Contains(query, it.Name, it.Description) })
}

// FilterItems applies every non-empty criterion of f.
func (s *Store) FilterItems(f Filter) []MenuItem {
	return s.selectItems(func(it MenuItem) bool {
		if f.Category != "" && it.Category != f.Category {
			return false
		}
		if f.Status != "" && it.Status != f.Status {
			return false
		}
		return textkey.Contains(f.Search, it.Name, it.Description)
	})
}

// CountByCategory maps category id to item count. Categories with no items map to 0.
func (s *Store) CountByCategory() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.categories))
	for _, c := range s.categories {
		out[c.ID] = 0
	}
	for _, it := range s.items {
		out[it.Category]++
	}
	return out
}

// Counts tallies items by status.
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := Counts{Total: len(s.items)}
	for _, it := range s.items {
		switch it.Status {
		case StatusAvailable:
			c.Available++
		case StatusLowStock:
			c.LowStock++
		case StatusUnavailable:
			c.Unavailable++
		}
	}
	return c
}

func (s *Store) selectItems(keep func(MenuItem) bool) []MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]MenuItem, 0, len(s.items))
	for _, it := range s.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
