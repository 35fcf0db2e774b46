package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the local catalog record for a sellable event. The seat grid
// dimensions and the remote event reference are what the availability
// builder validates before any remote read.
type Event struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name          string    `json:"name" gorm:"not null;size:255"`
	Description   string    `json:"description" gorm:"type:text"`
	DateTime      time.Time `json:"date_time" gorm:"not null"`
	SeatRows      int       `json:"seat_rows" gorm:"check:seat_rows >= 0"`
	SeatCols      int       `json:"seat_cols" gorm:"check:seat_cols >= 0"`
	UnitPrice     float64   `json:"unit_price" gorm:"not null;check:unit_price >= 0"`
	RemoteEventID *int64    `json:"remote_event_id" gorm:"uniqueIndex"`
	Active        bool      `json:"active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Event) TableName() string {
	return "events"
}

// IsConfigured reports whether the event carries everything the purchase
// flow needs: grid dimensions and a remote event reference.
func (e *Event) IsConfigured() bool {
	return e.SeatRows > 0 && e.SeatCols > 0 && e.RemoteEventID != nil
}

// InBounds reports whether a (row, column) coordinate falls inside the
// event's declared 1-based grid.
func (e *Event) InBounds(row, col int) bool {
	return row >= 1 && row <= e.SeatRows && col >= 1 && col <= e.SeatCols
}

type EventResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	DateTime      time.Time `json:"date_time"`
	SeatRows      int       `json:"seat_rows"`
	SeatCols      int       `json:"seat_cols"`
	TotalSeats    int       `json:"total_seats"`
	UnitPrice     float64   `json:"unit_price"`
	RemoteEventID *int64    `json:"remote_event_id"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreateEventRequest struct {
	Name          string    `json:"name" binding:"required,min=3,max=255"`
	Description   string    `json:"description" binding:"max=2000"`
	DateTime      time.Time `json:"date_time" binding:"required"`
	SeatRows      int       `json:"seat_rows" binding:"required,min=1,max=200"`
	SeatCols      int       `json:"seat_cols" binding:"required,min=1,max=200"`
	UnitPrice     float64   `json:"unit_price" binding:"required,min=0"`
	RemoteEventID *int64    `json:"remote_event_id"`
}

type UpdateEventRequest struct {
	Name          *string    `json:"name" binding:"omitempty,min=3,max=255"`
	Description   *string    `json:"description" binding:"omitempty,max=2000"`
	DateTime      *time.Time `json:"date_time"`
	SeatRows      *int       `json:"seat_rows" binding:"omitempty,min=1,max=200"`
	SeatCols      *int       `json:"seat_cols" binding:"omitempty,min=1,max=200"`
	UnitPrice     *float64   `json:"unit_price" binding:"omitempty,min=0"`
	RemoteEventID *int64     `json:"remote_event_id"`
	Active        *bool      `json:"active"`
}

func (e *Event) ToResponse() EventResponse {
	return EventResponse{
		ID:            e.ID.String(),
		Name:          e.Name,
		Description:   e.Description,
		DateTime:      e.DateTime,
		SeatRows:      e.SeatRows,
		SeatCols:      e.SeatCols,
		TotalSeats:    e.SeatRows * e.SeatCols,
		UnitPrice:     e.UnitPrice,
		RemoteEventID: e.RemoteEventID,
		Active:        e.Active,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// SyncReport summarizes one catalog reconciliation run against the remote
// authority. Per-item failures are counted, not fatal.
type SyncReport struct {
	Total   int      `json:"total"`
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}
