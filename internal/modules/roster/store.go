// Package roster owns staff records and their per-day timeclock.
package roster

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/georgemunganga/tablepos/internal/platform/apperrors"
	"github.com/georgemunganga/tablepos/internal/platform/observer"
	"github.com/georgemunganga/tablepos/internal/platform/storeopt"
	"go.uber.org/zap"
)

const storeName = "roster"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Store is the roster state container. All methods are safe for concurrent use.
// Subscribers run synchronously after each successful mutation and must not mutate the store.
type Store struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	opts    storeopt.Options
	hub     observer.Hub[Snapshot]

	staff []Staff
}

// NewStore builds a roster from a previously persisted snapshot.
func NewStore(initial Snapshot, opts ...storeopt.Option) *Store {
	s := &Store{opts: storeopt.Apply(opts...)}
	s.staff = make([]Staff, 0, len(initial.Staff))
	for _, st := range initial.Staff {
		s.staff = append(s.staff, cloneStaff(st))
	}
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
	out := make([]Staff, len(s.staff))
	for i, st := range s.staff {
		out[i] = cloneStaff(st)
	}
	return Snapshot{Staff: out}
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

// AddStaff validates and appends a staff member. Active members start their session immediately.
func (s *Store) AddStaff(in NewStaff) (Staff, error) {
	now := s.opts.Clock()
	st := Staff{
		ID:           s.opts.NewID(),
		Name:         strings.TrimSpace(in.Name),
		Phone:        NormalizePhone(in.Phone),
		Email:        strings.TrimSpace(in.Email),
		Role:         in.Role,
		Status:       in.Status,
		LastWorkDate: s.opts.DateOf(now),
	}
	if st.Status == "" {
		st.Status = StatusActive
	}
	if st.Status == StatusActive {
		started := now
		st.WorkStartedAt = &started
	}
	err := s.mutate("add_staff", st.ID, func() error {
		if err := s.validateLocked(st, ""); err != nil {
			return err
		}
		st.EmployeeID = s.nextEmployeeIDLocked()
		s.staff = append(s.staff, st)
		return nil
	})
	if err != nil {
		return Staff{}, err
	}
	return cloneStaff(st), nil
}

// UpdateStaff applies the non-nil fields of upd. A status change goes through the timeclock.
func (s *Store) UpdateStaff(id string, upd StaffUpdate) (Staff, error) {
	var out Staff
	err := s.mutate("update_staff", id, func() error {
		i := s.indexLocked(id)
		if i < 0 {
			return apperrors.NotFound("staff", id)
		}
		next := cloneStaff(s.staff[i])
		if upd.Name != nil {
			next.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.Phone != nil {
			next.Phone = NormalizePhone(*upd.Phone)
		}
		if upd.Email != nil {
			next.Email = strings.TrimSpace(*upd.Email)
		}
		if upd.Role != nil {
			next.Role = *upd.Role
		}
		if err := s.validateLocked(next, id); err != nil {
			return err
		}
		if upd.Status != nil {
			if !upd.Status.Valid() {
				return apperrors.Validationf("status", "unknown status %q", *upd.Status)
			}
			next = clockTransition(next, *upd.Status, s.opts.Now(), s.opts.Location)
		}
		s.staff[i] = next
		out = cloneStaff(next)
		return nil
	})
	return out, err
}

// DeleteStaff removes a staff member.
func (s *Store) DeleteStaff(id string) error {
	return s.mutate("delete_staff", id, func() error {
		i := s.indexLocked(id)
		if i < 0 {
			return apperrors.NotFound("staff", id)
		}
		s.staff = append(s.staff[:i], s.staff[i+1:]...)
		return nil
	})
}

// ToggleStaffStatus moves active staff on break and everyone else back to active.
func (s *Store) ToggleStaffStatus(id string) (Staff, error) {
	var out Staff
	err := s.mutate("toggle_status", id, func() error {
		i := s.indexLocked(id)
		if i < 0 {
			return apperrors.NotFound("staff", id)
		}
		next := StatusActive
		if s.staff[i].Status == StatusActive {
			next = StatusOnBreak
		}
		s.staff[i] = clockTransition(s.staff[i], next, s.opts.Now(), s.opts.Location)
		out = cloneStaff(s.staff[i])
		return nil
	})
	return out, err
}

// SetStaffStatus sets an explicit status with the same timeclock rules as toggling.
func (s *Store) SetStaffStatus(id string, status Status) (Staff, error) {
	var out Staff
	err := s.mutate("set_status", id, func() error {
		if !status.Valid() {
			return apperrors.Validationf("status", "unknown status %q", status)
		}
		i := s.indexLocked(id)
		if i < 0 {
			return apperrors.NotFound("staff", id)
		}
		s.staff[i] = clockTransition(s.staff[i], status, s.opts.Now(), s.opts.Location)
		out = cloneStaff(s.staff[i])
		return nil
	})
	return out, err
}

// BulkDeleteStaff removes every listed member and reports how many existed.
func (s *Store) BulkDeleteStaff(ids []string) (int, error) {
	var n int
	err := s.mutate("bulk_delete", strings.Join(ids, ","), func() error {
		drop := toSet(ids)
		kept := s.staff[:0]
		for _, st := range s.staff {
			if _, ok := drop[st.ID]; ok {
				n++
				continue
			}
			kept = append(kept, st)
		}
		s.staff = kept
		return nil
	})
	return n, err
}

// BulkUpdateRole assigns role to every listed member.
func (s *Store) BulkUpdateRole(ids []string, role Role) (int, error) {
	var n int
	err := s.mutate("bulk_role", strings.Join(ids, ","), func() error {
		if !role.Valid() {
			return apperrors.Validationf("role", "unknown role %q", role)
		}
		n = s.eachLocked(ids, func(st Staff) Staff {
			st.Role = role
			return st
		})
		return nil
	})
	return n, err
}

// BulkUpdateStatus moves every listed member to status through the timeclock.
func (s *Store) BulkUpdateStatus(ids []string, status Status) (int, error) {
	var n int
	err := s.mutate("bulk_status", strings.Join(ids, ","), func() error {
		if !status.Valid() {
			return apperrors.Validationf("status", "unknown status %q", status)
		}
		now := s.opts.Now()
		n = s.eachLocked(ids, func(st Staff) Staff {
			return clockTransition(st, status, now, s.opts.Location)
		})
		return nil
	})
	return n, err
}

// SetStaff replaces the roster with records from a remote source, filling defaults.
func (s *Store) SetStaff(remote []Staff) error {
	return s.mutate("set_staff", "", func() error {
		today := s.opts.Today()
		next := make([]Staff, 0, len(remote))
		for _, st := range remote {
			st = cloneStaff(st)
			if st.ID == "" {
				st.ID = s.opts.NewID()
			}
			st.Name = strings.TrimSpace(st.Name)
			st.Phone = NormalizePhone(st.Phone)
			st.Email = strings.TrimSpace(st.Email)
			if !st.Status.Valid() {
				st.Status = StatusActive
			}
			if st.AccumulatedMinutes < 0 {
				st.AccumulatedMinutes = 0
			}
			if st.Status != StatusActive {
				// Only an active member has a running session.
				st.WorkStartedAt = nil
			}
			if st.LastWorkDate == "" {
				st.LastWorkDate = today
			}
			next = append(next, st)
		}
		s.staff = next
		for i := range s.staff {
			if s.staff[i].EmployeeID == "" {
				s.staff[i].EmployeeID = s.nextEmployeeIDLocked()
			}
		}
		return nil
	})
}

// NormalizePhone strips whitespace from a phone number.
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, phone)
}

func validPhone(phone string) bool {
	if len(phone) < 10 || len(phone) > 11 {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *Store) validateLocked(st Staff, selfID string) error {
	if st.Name == "" {
		return apperrors.Validation("name", "name is required")
	}
	if st.Phone == "" {
		return apperrors.Validation("phone", "phone is required")
	}
	if !validPhone(st.Phone) {
		return apperrors.Validation("phone", "phone must be 10 or 11 digits")
	}
	if st.Email == "" {
		return apperrors.Validation("email", "email is required")
	}
	if !emailPattern.MatchString(st.Email) {
		return apperrors.Validation("email", "email is not a valid address")
	}
	if !st.Role.Valid() {
		return apperrors.Validationf("role", "unknown role %q", st.Role)
	}
	if !st.Status.Valid() {
		return apperrors.Validationf("status", "unknown status %q", st.Status)
	}
	for _, other := range s.staff {
		if other.ID == selfID {
			continue
		}
		if other.Phone == st.Phone {
			return apperrors.Conflictf("phone", "phone %s is already used by %s", st.Phone, other.Name)
		}
		if strings.EqualFold(other.Email, st.Email) {
			return apperrors.Conflictf("email", "email %s is already used by %s", st.Email, other.Name)
		}
	}
	return nil
}

func (s *Store) nextEmployeeIDLocked() string {
	highest := 0
	for _, st := range s.staff {
		if n, err := strconv.Atoi(strings.TrimPrefix(st.EmployeeID, "EMP")); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("EMP%03d", highest+1)
}

func (s *Store) eachLocked(ids []string, fn func(Staff) Staff) int {
	want := toSet(ids)
	n := 0
	for i := range s.staff {
		if _, ok := want[s.staff[i].ID]; ok {
			s.staff[i] = fn(s.staff[i])
			n++
		}
	}
	return n
}

func (s *Store) indexLocked(id string) int {
	for i, st := range s.staff {
		if st.ID == id {
			return i
		}
	}
	return -1
}

func cloneStaff(st Staff) Staff {
	if st.WorkStartedAt != nil {
		t := *st.WorkStartedAt
		st.WorkStartedAt = &t
	}
	return st
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
