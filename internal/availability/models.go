package availability

import (
	"time"

	"github.com/google/uuid"
)

// SeatState is the availability state of one seat. A SOLD marking always wins
// over stale lock data; LOCKED is expiry-gated.
type SeatState string

const (
	StateAvailable SeatState = "AVAILABLE"
	StateLocked    SeatState = "LOCKED"
	StateSold      SeatState = "SOLD"
)

// Entry is the per-seat view of the availability matrix. Derived on every
// query, never persisted.
type Entry struct {
	Row           int        `json:"row"`
	Col           int        `json:"col"`
	State         SeatState  `json:"state"`
	LockExpiresAt *time.Time `json:"lock_expires_at,omitempty"`
	OccupantName  string     `json:"occupant_name,omitempty"`
}

// Counts aggregates the matrix. Available = Total - Locked - Sold.
type Counts struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Locked    int `json:"locked"`
	Sold      int `json:"sold"`
}

// Matrix is the full seat grid for one event, row-major over the 1-based
// [1..Rows] x [1..Cols] coordinate space.
type Matrix struct {
	EventID uuid.UUID `json:"event_id"`
	Rows    int       `json:"rows"`
	Cols    int       `json:"cols"`
	Entries []Entry   `json:"entries"`
	Counts  Counts    `json:"counts"`
}

// At returns the entry for a 1-based (row, col) coordinate, or nil when out
// of bounds.
func (m *Matrix) At(row, col int) *Entry {
	if row < 1 || row > m.Rows || col < 1 || col > m.Cols {
		return nil
	}
	return &m.Entries[(row-1)*m.Cols+(col-1)]
}

// IsAvailable reports whether a seat exists in the grid and is AVAILABLE.
func (m *Matrix) IsAvailable(row, col int) bool {
	e := m.At(row, col)
	return e != nil && e.State == StateAvailable
}
