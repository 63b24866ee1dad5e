// Package floorplan owns floors, tables and table occupancy.
package floorplan

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/georgemunganga/tablepos/internal/platform/apperrors"
	"github.com/georgemunganga/tablepos/internal/platform/observer"
	"github.com/georgemunganga/tablepos/internal/platform/storeopt"
	"github.com/georgemunganga/tablepos/internal/platform/textkey"
	"go.uber.org/zap"
)

const storeName = "floorplan"

// Store is the floor plan state container. All methods are safe for concurrent use.
// Subscribers run synchronously after each successful mutation and must not mutate the store.
type Store struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	opts    storeopt.Options
	hub     observer.Hub[Snapshot]

	tables       []Table
	floors       []Floor
	currentFloor string
	selected     string // transient, never persisted
}

// NewStore builds a floor plan from a previously persisted snapshot. An empty snapshot gets the default floor.
func NewStore(initial Snapshot, opts ...storeopt.Option) *Store {
	s := &Store{opts: storeopt.Apply(opts...)}
	s.floors = append([]Floor(nil), initial.Floors...)
	if len(s.floors) == 0 {
		s.floors = []Floor{defaultFloor()}
	}
	s.tables = make([]Table, 0, len(initial.Tables))
	for _, t := range initial.Tables {
		s.tables = append(s.tables, cloneTable(t))
	}
	s.currentFloor = initial.CurrentFloor
	if s.floorIndexLocked(s.currentFloor) < 0 {
		s.currentFloor = s.floors[0].ID
	}
	return s
}

func defaultFloor() Floor {
	return Floor{ID: DefaultFloorID, Name: floorName(1)}
}

func floorName(n int) string {
	return fmt.Sprintf("Tầng %d", n)
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
	tables := make([]Table, len(s.tables))
	for i, t := range s.tables {
		tables[i] = cloneTable(t)
	}
	return Snapshot{
		Tables:       tables,
		Floors:       append([]Floor{}, s.floors...),
		CurrentFloor: s.currentFloor,
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

// AddTable validates and appends a free table.
func (s *Store) AddTable(in NewTable) (Table, error) {
	t := Table{
		ID:       s.opts.NewID(),
		Number:   strings.TrimSpace(in.Number),
		Floor:    in.Floor,
		Capacity: in.Capacity,
		Status:   TableAvailable,
		Shape:    in.Shape,
		X:        in.X,
		Y:        in.Y,
	}
	if t.Shape == "" {
		t.Shape = ShapeSquare
	}
	err := s.mutate("add_table", t.ID, func() error {
		if t.Floor == "" {
			t.Floor = s.currentFloor
		}
		if err := s.validateTableLocked(t, ""); err != nil {
			return err
		}
		s.tables = append(s.tables, t)
		return nil
	})
	if err != nil {
		return Table{}, err
	}
	return cloneTable(t), nil
}

// UpdateTable applies the non-nil fields of upd.
func (s *Store) UpdateTable(id string, upd TableUpdate) (Table, error) {
	var out Table
	err := s.mutate("update_table", id, func() error {
		i := s.tableIndexLocked(id)
		if i < 0 {
			return apperrors.NotFound("table", id)
		}
		next := cloneTable(s.tables[i])
		if upd.Number != nil {
			next.Number = strings.TrimSpace(*upd.Number)
		}
		if upd.Floor != nil {
			next.Floor = *upd.Floor
		}
		if upd.Capacity != nil {
			next.Capacity = *upd.Capacity
		}
		if upd.Shape != nil {
			next.Shape = *upd.Shape
		}
		if upd.Status != nil {
			next.Status = *upd.Status
		}
		if upd.CurrentOccupancy != nil {
			if *upd.CurrentOccupancy < 0 {
				return apperrors.Validation("currentOccupancy", "occupancy must not be negative")
			}
			next.CurrentOccupancy = *upd.CurrentOccupancy
		}
		if upd.WaitTime != nil {
			w := *upd.WaitTime
			next.WaitTime = &w
		}
		if err := s.validateTableLocked(next, id); err != nil {
			return err
		}
		if next.Floor != s.tables[i].Floor && s.selected == id {
			s.selected = ""
		}
		s.tables[i] = next
		out = cloneTable(next)
		return nil
	})
	return out, err
}

// DeleteTable removes a table and drops it from the selection.
func (s *Store) DeleteTable(id string) error {
	return s.mutate("delete_table", id, func() error {
		i := s.tableIndexLocked(id)
		if i < 0 {
			return apperrors.NotFound("table", id)
		}
		s.tables = append(s.tables[:i], s.tables[i+1:]...)
		if s.selected == id {
			s.selected = ""
		}
		return nil
	})
}

// UpdateTablePosition moves a table on the plan.
func (s *Store) UpdateTablePosition(id string, pos Position) error {
	return s.mutate("move_table", id, func() error {
		i := s.tableIndexLocked(id)
		if i < 0 {
			return apperrors.NotFound("table", id)
		}
		s.tables[i].X = pos.X
		s.tables[i].Y = pos.Y
		return nil
	})
}

// SetTableStatus sets the status without touching the attached order.
func (s *Store) SetTableStatus(id string, status TableStatus) (Table, error) {
	return s.updateTable("set_status", id, func(t *Table) error {
		if !status.Valid() {
			return apperrors.Validationf("status", "unknown table status %q", status)
		}
		t.Status = status
		return nil
	})
}

// AssignOrder attaches orderID and marks the table occupied. A nil occupancy keeps the previous head count.
// A table already holding a different order is a conflict.
func (s *Store) AssignOrder(tableID, orderID string, occupancy *int) (Table, error) {
	return s.updateTable("assign_order", tableID, func(t *Table) error {
		if strings.TrimSpace(orderID) == "" {
			return apperrors.Validation("orderId", "order id is required")
		}
		if occupancy != nil && *occupancy < 0 {
			return apperrors.Validation("currentOccupancy", "occupancy must not be negative")
		}
		if t.OrderID != nil && *t.OrderID != orderID {
			return apperrors.Conflictf("orderId", "table %s already has order %s", t.Number, *t.OrderID)
		}
		id := orderID
		t.OrderID = &id
		t.Status = TableOccupied
		if occupancy != nil {
			t.CurrentOccupancy = *occupancy
		}
		return nil
	})
}

// ClearOrder detaches the order, frees the table and forgets its server.
func (s *Store) ClearOrder(tableID string) (Table, error) {
	return s.updateTable("clear_order", tableID, func(t *Table) error {
		t.OrderID = nil
		t.Status = TableAvailable
		t.CurrentOccupancy = 0
		t.AssignedServer = nil
		return nil
	})
}

// AssignServer sets the server name; an empty name clears it.
func (s *Store) AssignServer(tableID, name string) (Table, error) {
	return s.updateTable("assign_server", tableID, func(t *Table) error {
		name = strings.TrimSpace(name)
		if name == "" {
			t.AssignedServer = nil
			return nil
		}
		t.AssignedServer = &name
		return nil
	})
}

func (s *Store) updateTable(op, id string, fn func(*Table) error) (Table, error) {
	var out Table
	err := s.mutate(op, id, func() error {
		i := s.tableIndexLocked(id)
		if i < 0 {
			return apperrors.NotFound("table", id)
		}
		next := cloneTable(s.tables[i])
		if err := fn(&next); err != nil {
			return err
		}
		s.tables[i] = next
		out = cloneTable(next)
		return nil
	})
	return out, err
}

// AddFloor appends the next sequentially numbered floor.
func (s *Store) AddFloor() (Floor, error) {
	var f Floor
	err := s.mutate("add_floor", "", func() error {
		n := 0
		for _, existing := range s.floors {
			if v, err := strconv.Atoi(strings.TrimPrefix(existing.ID, "floor-")); err == nil && v > n {
				n = v
			}
		}
		n++
		f = Floor{ID: fmt.Sprintf("floor-%d", n), Name: floorName(n)}
		s.floors = append(s.floors, f)
		return nil
	})
	return f, err
}

// RenameFloor changes a floor's display name.
func (s *Store) RenameFloor(id, name string) (Floor, error) {
	var out Floor
	err := s.mutate("rename_floor", id, func() error {
		name = strings.TrimSpace(name)
		if name == "" {
			return apperrors.Validation("name", "floor name is required")
		}
		i := s.floorIndexLocked(id)
		if i < 0 {
			return apperrors.NotFound("floor", id)
		}
		s.floors[i].Name = name
		out = s.floors[i]
		return nil
	})
	return out, err
}

// DeleteFloor removes a floor and every table on it. The last floor cannot be deleted.
func (s *Store) DeleteFloor(id string) error {
	return s.mutate("delete_floor", id, func() error {
		i := s.floorIndexLocked(id)
		if i < 0 {
			return apperrors.NotFound("floor", id)
		}
		if len(s.floors) == 1 {
			return apperrors.Conflict("floor", "the last floor cannot be deleted")
		}
		s.floors = append(s.floors[:i], s.floors[i+1:]...)
		kept := s.tables[:0]
		for _, t := range s.tables {
			if t.Floor == id {
				if s.selected == t.ID {
					s.selected = ""
				}
				continue
			}
			kept = append(kept, t)
		}
		s.tables = kept
		if s.currentFloor == id {
			s.currentFloor = s.defaultFloorLocked()
		}
		return nil
	})
}

// defaultFloorLocked prefers DefaultFloorID and falls back to the first floor.
func (s *Store) defaultFloorLocked() string {
	if s.floorIndexLocked(DefaultFloorID) >= 0 {
		return DefaultFloorID
	}
	return s.floors[0].ID
}

// SetCurrentFloor switches floors and clears the table selection.
func (s *Store) SetCurrentFloor(id string) error {
	return s.mutate("set_current_floor", id, func() error {
		if s.floorIndexLocked(id) < 0 {
			return apperrors.NotFound("floor", id)
		}
		s.currentFloor = id
		s.selected = ""
		return nil
	})
}

// SelectTable selects a table, switching to its floor. An empty id clears the selection.
func (s *Store) SelectTable(id string) error {
	return s.mutate("select_table", id, func() error {
		if id == "" {
			s.selected = ""
			return nil
		}
		i := s.tableIndexLocked(id)
		if i < 0 {
			return apperrors.NotFound("table", id)
		}
		s.currentFloor = s.tables[i].Floor
		s.selected = id
		return nil
	})
}

// SetTables merges records from a remote source. Remote occupancy arrives as currentCapacity,
// and tables without coordinates keep the position stored locally.
func (s *Store) SetTables(remote []RemoteTable) error {
	return s.mutate("set_tables", "", func() error {
		local := make(map[string]Table, len(s.tables))
		for _, t := range s.tables {
			local[t.ID] = t
		}
		next := make([]Table, 0, len(remote))
		for _, r := range remote {
			t := Table{
				ID:             r.ID,
				Number:         strings.TrimSpace(r.Number),
				Floor:          r.Floor,
				Capacity:       r.Capacity,
				Status:         r.Status,
				Shape:          r.Shape,
				AssignedServer: copyString(r.AssignedServer),
				OrderID:        copyString(r.OrderID),
				WaitTime:       copyInt(r.WaitTime),
			}
			if t.ID == "" {
				t.ID = s.opts.NewID()
			}
			if t.Floor == "" {
				t.Floor = s.currentFloor
			}
			if s.floorIndexLocked(t.Floor) < 0 {
				s.floors = append(s.floors, Floor{ID: t.Floor, Name: t.Floor})
			}
			if !t.Status.Valid() {
				t.Status = TableAvailable
			}
			if !t.Shape.Valid() {
				t.Shape = ShapeSquare
			}
			if r.CurrentCapacity != nil {
				t.CurrentOccupancy = *r.CurrentCapacity
			}
			prev, known := local[t.ID]
			switch {
			case r.X != nil:
				t.X = *r.X
			case known:
				t.X = prev.X
			}
			switch {
			case r.Y != nil:
				t.Y = *r.Y
			case known:
				t.Y = prev.Y
			}
			next = append(next, t)
		}
		s.tables = next
		if s.selected != "" && s.tableIndexLocked(s.selected) < 0 {
			s.selected = ""
		}
		return nil
	})
}

func (s *Store) validateTableLocked(t Table, selfID string) error {
	if t.Number == "" {
		return apperrors.Validation("number", "table number is required")
	}
	if utf8.RuneCountInString(t.Number) >= MaxTableNumberLength {
		return apperrors.Validationf("number", "table number must be shorter than %d characters", MaxTableNumberLength)
	}
	if t.Capacity < 1 {
		return apperrors.Validation("capacity", "capacity must be at least 1")
	}
	if !t.Shape.Valid() {
		return apperrors.Validationf("shape", "unknown shape %q", t.Shape)
	}
	if !t.Status.Valid() {
		return apperrors.Validationf("status", "unknown table status %q", t.Status)
	}
	if s.floorIndexLocked(t.Floor) < 0 {
		return apperrors.Validationf("floor", "unknown floor %q", t.Floor)
	}
	if s.numberTakenLocked(t.Number, t.Floor, selfID) {
		return apperrors.Conflictf("number", "table %s already exists on this floor", t.Number)
	}
	return nil
}

func (s *Store) numberTakenLocked(number, floorID, selfID string) bool {
	key := textkey.Fold(number)
	for _, other := range s.tables {
		if other.ID != selfID && other.Floor == floorID && textkey.Fold(other.Number) == key {
			return true
		}
	}
	return false
}

func (s *Store) tableIndexLocked(id string) int {
	for i, t := range s.tables {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) floorIndexLocked(id string) int {
	for i, f := range s.floors {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func cloneTable(t Table) Table {
	t.AssignedServer = copyString(t.AssignedServer)
	t.OrderID = copyString(t.OrderID)
	t.WaitTime = copyInt(t.WaitTime)
	return t
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
