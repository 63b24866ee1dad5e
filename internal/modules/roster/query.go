package roster

import "github.com/georgemunganga/tablepos/internal/platform/textkey"

// Member returns the staff member with id.
func (s *Store) Member(id string) (Staff, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return cloneStaff(s.staff[i]), true
	}
	return Staff{}, false
}

// Members returns every staff member in insertion order.
func (s *Store) Members() []Staff {
	return s.selectStaff(func(Staff) bool { return true })
}

func (s *Store) ByRole(role Role) []Staff {
	return s.selectStaff(func(st Staff) bool { return st.Role == role })
}

func (s *Store) ByStatus(status Status) []Staff {
	return s.selectStaff(func(st Staff) bool { return st.Status == status })
}

func (s *Store) Active() []Staff   { return s.ByStatus(StatusActive) }
func (s *Store) OnBreak() []Staff  { return s.ByStatus(StatusOnBreak) }
func (s *Store) Inactive() []Staff { return s.ByStatus(StatusInactive) }

// Search matches query against name, employee code, phone and email.
func (s *Store) Search(query string) []Staff {
	return s.selectStaff(func(st Staff) bool { return matches(st, query) })
}

// FilterStaff applies every non-empty criterion of f.
func (s *Store) FilterStaff(f Filter) []Staff {
	return s.selectStaff(func(st Staff) bool {
		if f.Role != "" && st.Role != f.Role {
			return false
		}
		if f.Status != "" && st.Status != f.Status {
			return false
		}
		return matches(st, f.Search)
	})
}

// Counts tallies the roster by status and role.
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := Counts{Total: len(s.staff), ByRole: make(map[Role]int)}
	for _, st := range s.staff {
		switch st.Status {
		case StatusActive:
			c.Active++
		case StatusOnBreak:
			c.OnBreak++
		case StatusInactive:
			c.Inactive++
		}
		c.ByRole[st.Role]++
	}
	return c
}

// WorkedMinutes is the time st has worked today, including a running session.
func (s *Store) WorkedMinutes(st Staff) int {
	return workedMinutes(st, s.opts.Now(), s.opts.Location)
}

// HoursWorked is WorkedMinutes in hours, rounded to one decimal place.
func (s *Store) HoursWorked(st Staff) float64 {
	return hoursFromMinutes(s.WorkedMinutes(st))
}

func matches(st Staff, query string) bool {
	return textkey.Contains(query, st.Name, st.EmployeeID, st.Phone, st.Email)
}

func (s *Store) selectStaff(keep func(Staff) bool) []Staff {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Staff, 0, len(s.staff))
	for _, st := range s.staff {
		if keep(st) {
			out = append(out, cloneStaff(st))
		}
	}
	return out
}
