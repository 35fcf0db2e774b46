package availability

import (
	"context"
	"errors"
	"fmt"

	"boleteria/internal/catedra"
	"boleteria/internal/events"
	"boleteria/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrEventInactive      = errors.New("event is not active")
	ErrEventNotConfigured = errors.New("event has no seat grid or remote reference configured")
)

// EventSource resolves the local event record (to avoid a dependency on the
// full events service).
type EventSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*events.Event, error)
}

// OccupancySource reads the remote occupied-seat snapshot.
type OccupancySource interface {
	GetOccupancy(ctx context.Context, remoteEventID int64) ([]catedra.OccupiedSeat, error)
}

type Service interface {
	// BuildAvailability computes the full seat grid for an event from the
	// remote occupancy snapshot. Remote connectivity failures propagate to
	// the caller; they are never swallowed here.
	BuildAvailability(ctx context.Context, eventID uuid.UUID) (*Matrix, error)
}

type service struct {
	events EventSource
	remote OccupancySource
	log    *logger.Logger
}

func NewService(eventSource EventSource, remote OccupancySource) Service {
	return &service{
		events: eventSource,
		remote: remote,
		log:    logger.GetDefault(),
	}
}

func (s *service) BuildAvailability(ctx context.Context, eventID uuid.UUID) (*Matrix, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	if !event.Active {
		return nil, ErrEventInactive
	}
	if !event.IsConfigured() {
		return nil, ErrEventNotConfigured
	}

	matrix := newMatrix(event)

	occupied, err := s.remote.GetOccupancy(ctx, *event.RemoteEventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote occupancy: %w", err)
	}

	now := timeNow()
	for _, seat := range occupied {
		entry := matrix.At(seat.Row, seat.Col)
		if entry == nil {
			// Skew between local grid config and the remote snapshot.
			s.log.WarnContext(ctx, "remote seat outside local grid, ignoring",
				"event_id", eventID.String(),
				"row", seat.Row,
				"col", seat.Col,
			)
			continue
		}

		switch seat.Kind {
		case catedra.KindSold:
			// Sold is unconditional and wins over any lock state.
			entry.State = StateSold
			entry.LockExpiresAt = nil
			entry.OccupantName = seat.OccupantName

		case catedra.KindLocked:
			if entry.State == StateSold {
				continue
			}
			// Locks are advisory and self-expiring: an expired lock is
			// simply available again, nothing to do locally.
			if seat.ExpiresAt == nil || !seat.ExpiresAt.After(now) {
				continue
			}
			expiry := *seat.ExpiresAt
			entry.State = StateLocked
			entry.LockExpiresAt = &expiry
			entry.OccupantName = seat.OccupantName

		default:
			s.log.WarnContext(ctx, "unknown remote seat kind, ignoring",
				"event_id", eventID.String(),
				"kind", seat.Kind,
			)
		}
	}

	matrix.Counts = countStates(matrix)
	return matrix, nil
}

func newMatrix(event *events.Event) *Matrix {
	entries := make([]Entry, event.SeatRows*event.SeatCols)
	for row := 1; row <= event.SeatRows; row++ {
		for col := 1; col <= event.SeatCols; col++ {
			entries[(row-1)*event.SeatCols+(col-1)] = Entry{
				Row:   row,
				Col:   col,
				State: StateAvailable,
			}
		}
	}

	return &Matrix{
		EventID: event.ID,
		Rows:    event.SeatRows,
		Cols:    event.SeatCols,
		Entries: entries,
	}
}

func countStates(m *Matrix) Counts {
	counts := Counts{Total: len(m.Entries)}
	for _, e := range m.Entries {
		switch e.State {
		case StateLocked:
			counts.Locked++
		case StateSold:
			counts.Sold++
		}
	}
	counts.Available = counts.Total - counts.Locked - counts.Sold
	return counts
}
