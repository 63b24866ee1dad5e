package floorplan

// TableStatus is the service state of a table.
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
	TableCleaning  TableStatus = "cleaning"
)

// Valid reports whether s is a known status.
func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TableCleaning:
		return true
	}
	return false
}

// Shape is how a table is drawn on the plan.
type Shape string

const (
	ShapeRound     Shape = "round"
	ShapeSquare    Shape = "square"
	ShapeRectangle Shape = "rectangle"
)

// Valid reports whether s is a known shape.
func (s Shape) Valid() bool {
	switch s {
	case ShapeRound, ShapeSquare, ShapeRectangle:
		return true
	}
	return false
}

const (
	// DefaultFloorID is the floor every plan starts with.
	DefaultFloorID = "floor-1"
	// MaxTableNumberLength bounds table numbers, exclusive, counted in runes.
	MaxTableNumberLength = 10
)

// Floor is one level of the dining room.
type Floor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Table is a seat group on a floor.
type Table struct {
	ID               string      `json:"id"`
	Number           string      `json:"number"`
	Floor            string      `json:"floor"`
	Capacity         int         `json:"capacity"`
	Status           TableStatus `json:"status"`
	Shape            Shape       `json:"shape"`
	X                float64     `json:"x"`
	Y                float64     `json:"y"`
	CurrentOccupancy int         `json:"currentOccupancy"`
	AssignedServer   *string     `json:"assignedServer"`
	OrderID          *string     `json:"orderId"`
	WaitTime         *int        `json:"waitTime"`
}

// Snapshot is the persisted subset of the floor plan.
type Snapshot struct {
	Tables       []Table `json:"tables"`
	Floors       []Floor `json:"floors"`
	CurrentFloor string  `json:"currentFloor"`
}

// NewTable is the payload for AddTable. Floor defaults to the current floor, Shape to square.
type NewTable struct {
	Number   string  `json:"number"`
	Floor    string  `json:"floor"`
	Capacity int     `json:"capacity"`
	Shape    Shape   `json:"shape"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// TableUpdate carries the fields to change; nil fields are left alone.
type TableUpdate struct {
	Number           *string      `json:"number"`
	Floor            *string      `json:"floor"`
	Capacity         *int         `json:"capacity"`
	Shape            *Shape       `json:"shape"`
	Status           *TableStatus `json:"status"`
	CurrentOccupancy *int         `json:"currentOccupancy"`
	WaitTime         *int         `json:"waitTime"`
}

// Position is a table's location on the plan.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RemoteTable is a table record as delivered by a remote source.
type RemoteTable struct {
	ID              string      `json:"id"`
	Number          string      `json:"number"`
	Floor           string      `json:"floor"`
	Capacity        int         `json:"capacity"`
	CurrentCapacity *int        `json:"currentCapacity"`
	Status          TableStatus `json:"status"`
	Shape           Shape       `json:"shape"`
	X               *float64    `json:"x"`
	Y               *float64    `json:"y"`
	AssignedServer  *string     `json:"assignedServer"`
	OrderID         *string     `json:"orderId"`
	WaitTime        *int        `json:"waitTime"`
}

// TableOption is a picker entry for a free table.
type TableOption struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Capacity int    `json:"capacity"`
}
