package floorplan

import "github.com/georgemunganga/tablepos/internal/platform/textkey"

// Table returns the table with id.
func (s *Store) Table(id string) (Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.tableIndexLocked(id); i >= 0 {
		return cloneTable(s.tables[i]), true
	}
	return Table{}, false
}

// TableByNumber finds a table by its number on floorID.
func (s *Store) TableByNumber(number, floorID string) (Table, bool) {
	key := textkey.Fold(number)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tables {
		if t.Floor == floorID && textkey.Fold(t.Number) == key {
			return cloneTable(t), true
		}
	}
	return Table{}, false
}

// TableExists reports whether number is taken on floorID.
func (s *Store) TableExists(number, floorID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.numberTakenLocked(number, floorID, "")
}

// TableByOrder finds the table an order is attached to.
func (s *Store) TableByOrder(orderID string) (Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tables {
		if t.OrderID != nil && *t.OrderID == orderID {
			return cloneTable(t), true
		}
	}
	return Table{}, false
}

func (s *Store) Tables() []Table {
	return s.selectTables(func(Table) bool { return true })
}

func (s *Store) TablesByFloor(floorID string) []Table {
	return s.selectTables(func(t Table) bool { return t.Floor == floorID })
}

// CurrentFloorTables returns the tables on the floor being viewed.
func (s *Store) CurrentFloorTables() []Table {
	return s.TablesByFloor(s.CurrentFloor().ID)
}

func (s *Store) AvailableTables() []Table {
	return s.selectTables(func(t Table) bool { return t.Status == TableAvailable })
}

func (s *Store) OccupiedTables() []Table {
	return s.selectTables(func(t Table) bool { return t.Status == TableOccupied })
}

func (s *Store) Floors() []Floor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Floor{}, s.floors...)
}

// CurrentFloor returns the floor being viewed.
func (s *Store) CurrentFloor() Floor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.floors[s.floorIndexLocked(s.currentFloor)]
}

// SelectedTable returns the selected table, if any.
func (s *Store) SelectedTable() (Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == "" {
		return Table{}, false
	}
	if i := s.tableIndexLocked(s.selected); i >= 0 {
		return cloneTable(s.tables[i]), true
	}
	return Table{}, false
}

// TableLabel renders "<floor name> - Bàn <number>" for display and order snapshots.
func (s *Store) TableLabel(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.tableIndexLocked(id)
	if i < 0 {
		return "", false
	}
	return s.labelLocked(s.tables[i]), true
}

// TableOptions lists free tables for pickers.
func (s *Store) TableOptions() []TableOption {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []TableOption
	for _, t := range s.tables {
		if t.Status != TableAvailable {
			continue
		}
		out = append(out, TableOption{ID: t.ID, Label: s.labelLocked(t), Capacity: t.Capacity})
	}
	return out
}

func (s *Store) labelLocked(t Table) string {
	name := t.Floor
	if i := s.floorIndexLocked(t.Floor); i >= 0 {
		name = s.floors[i].Name
	}
	return name + " - Bàn " + t.Number
}

func (s *Store) selectTables(keep func(Table) bool) []Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Table, 0, len(s.tables))
	for _, t := range s.tables {
		if keep(t) {
			out = append(out, cloneTable(t))
		}
	}
	return out
}
