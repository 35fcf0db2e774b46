package catedra

import "time"

// Seat occupancy kinds reported by the remote authority.
const (
	KindLocked = "BLOQUEADO"
	KindSold   = "VENDIDO"
)

// Per-seat outcome markers the remote authority reports. These exact strings
// are the success contract; anything else is a per-seat failure.
const (
	LockOutcomeOK = "Bloqueo exitoso"
	SaleOutcomeOK = "Venta exitosa"
)

// OccupiedSeat is one entry of the remote seat-occupancy snapshot. Seats not
// present in the snapshot are available.
type OccupiedSeat struct {
	Row          int        `json:"fila"`
	Col          int        `json:"columna"`
	Kind         string     `json:"tipo"`
	ExpiresAt    *time.Time `json:"expiraEn,omitempty"`
	OccupantName string     `json:"nombrePersona,omitempty"`
}

// SeatRef identifies a seat coordinate in a lock request.
type SeatRef struct {
	Row int `json:"fila"`
	Col int `json:"columna"`
}

// LockRequest asks the remote authority for a short-lived lock on seats.
type LockRequest struct {
	RemoteEventID int64     `json:"idEvento"`
	Seats         []SeatRef `json:"asientos"`
}

// SeatOutcome is the remote authority's per-seat verdict for a lock or sale.
type SeatOutcome struct {
	Row          int    `json:"fila"`
	Col          int    `json:"columna"`
	OccupantName string `json:"nombrePersona,omitempty"`
	Status       string `json:"estado"`
}

// LockResult is the remote authority's answer to a lock request. The overall
// success flag is necessary but not sufficient; callers must also check every
// per-seat outcome.
type LockResult struct {
	Success bool          `json:"exito"`
	Message string        `json:"mensaje"`
	Seats   []SeatOutcome `json:"asientos"`
}

// AllSeatsLocked reports whether the lock succeeded for every seat.
func (r *LockResult) AllSeatsLocked() bool {
	if !r.Success || len(r.Seats) == 0 {
		return false
	}
	for _, s := range r.Seats {
		if s.Status != LockOutcomeOK {
			return false
		}
	}
	return true
}

// SaleSeat is one seat with its occupant name in a sale request.
type SaleSeat struct {
	Row          int    `json:"fila"`
	Col          int    `json:"columna"`
	OccupantName string `json:"nombrePersona"`
}

// SaleRequest finalizes a sale for previously locked seats.
type SaleRequest struct {
	RemoteEventID int64      `json:"idEvento"`
	Date          time.Time  `json:"fecha"`
	TotalPrice    float64    `json:"precioTotal"`
	Seats         []SaleSeat `json:"asientos"`
}

// SaleResult is the remote authority's answer to a sale request.
type SaleResult struct {
	Success      bool          `json:"exito"`
	RemoteSaleID *int64        `json:"idVenta,omitempty"`
	Message      string        `json:"mensaje"`
	Seats        []SeatOutcome `json:"asientos"`
}

// AllSeatsSold reports whether the sale succeeded for every seat.
func (r *SaleResult) AllSeatsSold() bool {
	if !r.Success || len(r.Seats) == 0 {
		return false
	}
	for _, s := range r.Seats {
		if s.Status != SaleOutcomeOK {
			return false
		}
	}
	return true
}

// RemoteEvent is one event in the remote authority's catalog listing, used by
// the local catalog sync.
type RemoteEvent struct {
	ID        int64     `json:"id"`
	Name      string    `json:"nombre"`
	Date      time.Time `json:"fecha"`
	Rows      int       `json:"filas"`
	Cols      int       `json:"columnas"`
	UnitPrice float64   `json:"precio"`
}

// authRequest and authResponse are the login exchange.
type authRequest struct {
	Username string `json:"usuario"`
	Password string `json:"clave"`
}

type authResponse struct {
	Token string `json:"token"`
}
