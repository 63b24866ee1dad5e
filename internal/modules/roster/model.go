package roster

import "time"

// Role is a staff member's job.
type Role string

const (
	RoleManager   Role = "manager"
	RoleCashier   Role = "cashier"
	RoleWaiter    Role = "waiter"
	RoleChef      Role = "chef"
	RoleBartender Role = "bartender"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleManager, RoleCashier, RoleWaiter, RoleChef, RoleBartender:
		return true
	}
	return false
}

// Status is a staff member's shift state.
type Status string

const (
	StatusActive   Status = "active"
	StatusOnBreak  Status = "on-break"
	StatusInactive Status = "inactive"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusOnBreak, StatusInactive:
		return true
	}
	return false
}

// Staff is one employee and their timeclock for the current day.
type Staff struct {
	ID                 string     `json:"id"`
	EmployeeID         string     `json:"employeeId"`
	Name               string     `json:"name"`
	Phone              string     `json:"phone"`
	Email              string     `json:"email"`
	Role               Role       `json:"role"`
	Status             Status     `json:"status"`
	WorkStartedAt      *time.Time `json:"workStartedAt"`
	AccumulatedMinutes int        `json:"accumulatedMinutes"`
	LastWorkDate       string     `json:"lastWorkDate"`
}

// Snapshot is the persisted subset of the roster.
type Snapshot struct {
	Staff []Staff `json:"staff"`
}

// NewStaff is the payload for AddStaff. Status defaults to active.
type NewStaff struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Status Status `json:"status"`
}

// StaffUpdate carries the fields to change; nil fields are left alone.
type StaffUpdate struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Email  *string `json:"email"`
	Role   *Role   `json:"role"`
	Status *Status `json:"status"`
}

// Filter narrows FilterStaff. Empty fields match everything.
type Filter struct {
	Role   Role   `json:"role"`
	Status Status `json:"status"`
	Search string `json:"search"`
}

// Counts summarises the roster.
type Counts struct {
	Total    int          `json:"total"`
	Active   int          `json:"active"`
	OnBreak  int          `json:"onBreak"`
	Inactive int          `json:"inactive"`
	ByRole   map[Role]int `json:"byRole"`
}
