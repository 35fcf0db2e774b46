package availability

import (
	"context"
	"testing"
	"time"

	"boleteria/internal/catedra"
	"boleteria/internal/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockEventSource struct {
	mock.Mock
}

func (m *MockEventSource) GetByID(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*events.Event), args.Error(1)
}

type MockOccupancySource struct {
	mock.Mock
}

func (m *MockOccupancySource) GetOccupancy(ctx context.Context, remoteEventID int64) ([]catedra.OccupiedSeat, error) {
	args := m.Called(ctx, remoteEventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catedra.OccupiedSeat), args.Error(1)
}

func testEvent(rows, cols int) *events.Event {
	remoteID := int64(42)
	return &events.Event{
		ID:            uuid.New(),
		Name:          "Concierto",
		DateTime:      time.Now().AddDate(0, 1, 0),
		SeatRows:      rows,
		SeatCols:      cols,
		UnitPrice:     100.0,
		RemoteEventID: &remoteID,
		Active:        true,
	}
}

func TestBuildAvailability_FullGrid(t *testing.T) {
	event := testEvent(5, 5)
	eventSource := new(MockEventSource)
	remote := new(MockOccupancySource)
	eventSource.On("GetByID", mock.Anything, event.ID).Return(event, nil)
	remote.On("GetOccupancy", mock.Anything, int64(42)).Return([]catedra.OccupiedSeat{}, nil)

	svc := NewService(eventSource, remote)
	matrix, err := svc.BuildAvailability(context.Background(), event.ID)

	require.NoError(t, err)
	assert.Len(t, matrix.Entries, 25)
	assert.Equal(t, 25, matrix.Counts.Total)
	assert.Equal(t, 25, matrix.Counts.Available)
	assert.Equal(t, 0, matrix.Counts.Locked)
	assert.Equal(t, 0, matrix.Counts.Sold)
	assert.True(t, matrix.IsAvailable(1, 1))
	assert.True(t, matrix.IsAvailable(5, 5))
}

func TestBuildAvailability_CountsSumToTotal(t *testing.T) {
	event := testEvent(3, 4)
	future := time.Now().Add(4 * time.Minute)
	eventSource := new(MockEventSource)
	remote := new(MockOccupancySource)
	eventSource.On("GetByID", mock.Anything, event.ID).Return(event, nil)
	remote.On("GetOccupancy", mock.Anything, int64(42)).Return([]catedra.OccupiedSeat{
		{Row: 1, Col: 1, Kind: catedra.KindSold, OccupantName: "Ana Gomez"},
		{Row: 1, Col: 2, Kind: catedra.KindLocked, ExpiresAt: &future},
		{Row: 2, Col: 3, Kind: catedra.KindSold, OccupantName: "Luis Diaz"},
	}, nil)

	svc := NewService(eventSource, remote)
	matrix, err := svc.BuildAvailability(context.Background(), event.ID)

	require.NoError(t, err)
	assert.Equal(t, 12, matrix.Counts.Total)
	assert.Equal(t, 2, matrix.Counts.Sold)
	assert.Equal(t, 1, matrix.Counts.Locked)
	assert.Equal(t, matrix.Counts.Total, matrix.Counts.Available+matrix.Counts.Locked+matrix.Counts.Sold)
}

func TestBuildAvailability_ExpiredLockIsAvailable(t *testing.T) {
	event := testEvent(2, 2)
	past := time.Now().Add(-1 * time.Minute)
	eventSource := new(MockEventSource)
	remote := new(MockOccupancySource)
	eventSource.On("GetByID", mock.Anything, event.ID).Return(event, nil)
	remote.On("GetOccupancy", mock.Anything, int64(42)).Return([]catedra.OccupiedSeat{
		{Row: 1, Col: 1, Kind: catedra.KindLocked, ExpiresAt: &past},
		{Row: 1, Col: 2, Kind: catedra.KindLocked}, // no expiry at all
	}, nil)

	svc := NewService(eventSource, remote)
	matrix, err := svc.BuildAvailability(context.Background(), event.ID)

	require.NoError(t, err)
	assert.Equal(t, StateAvailable, matrix.At(1, 1).State)
	assert.Equal(t, StateAvailable, matrix.At(1, 2).State)
	assert.Equal(t, 0, matrix.Counts.Locked)
}

func TestBuildAvailability_SoldWinsOverLock(t *testing.T) {
	event := testEvent(2, 2)
	future := time.Now().Add(4 * time.Minute)
	eventSource := new(MockEventSource)
	remote := new(MockOccupancySource)
	eventSource.On("GetByID", mock.Anything, event.ID).Return(event, nil)
	// The same coordinate reported locked first, then sold.
	remote.On("GetOccupancy", mock.Anything, int64(42)).Return([]catedra.OccupiedSeat{
		{Row: 2, Col: 1, Kind: catedra.KindLocked, ExpiresAt: &future},
		{Row: 2, Col: 1, Kind: catedra.KindSold, OccupantName: "Ana Gomez"},
		{Row: 2, Col: 1, Kind: catedra.KindLocked, ExpiresAt: &future},
	}, nil)

	svc := NewService(eventSource, remote)
	matrix, err := svc.BuildAvailability(context.Background(), event.ID)

	require.NoError(t, err)
	entry := matrix.At(2, 1)
	assert.Equal(t, StateSold, entry.State)
	assert.Equal(t, "Ana Gomez", entry.OccupantName)
	assert.Nil(t, entry.LockExpiresAt)
	assert.Equal(t, 1, matrix.Counts.Sold)
	assert.Equal(t, 0, matrix.Counts.Locked)
}

func TestBuildAvailability_OutOfBoundsSeatIgnored(t *testing.T) {
	event := testEvent(2, 2)
	eventSource := new(MockEventSource)
	remote := new(MockOccupancySource)
	eventSource.On("GetByID", mock.Anything, event.ID).Return(event, nil)
	remote.On("GetOccupancy", mock.Anything, int64(42)).Return([]catedra.OccupiedSeat{
		{Row: 9, Col: 9, Kind: catedra.KindSold, OccupantName: "Fantasma"},
		{Row: 0, Col: 1, Kind: catedra.KindSold},
	}, nil)

	svc := NewService(eventSource, remote)
	matrix, err := svc.BuildAvailability(context.Background(), event.ID)

	require.NoError(t, err)
	assert.Equal(t, 4, matrix.Counts.Available)
	assert.Equal(t, 0, matrix.Counts.Sold)
}

func TestBuildAvailability_EventNotFound(t *testing.T) {
	eventSource := new(MockEventSource)
	remote := new(MockOccupancySource)
	eventID := uuid.New()
	eventSource.On("GetByID", mock.Anything, eventID).Return(nil, gorm.ErrRecordNotFound)

	svc := NewService(eventSource, remote)
	_, err := svc.BuildAvailability(context.Background(), eventID)

	assert.ErrorIs(t, err, ErrEventNotFound)
	remote.AssertNotCalled(t, "GetOccupancy")
}

func TestBuildAvailability_EventInactive(t *testing.T) {
	event := testEvent(5, 5)
	event.Active = false
	eventSource := new(MockEventSource)
	remote := new(MockOccupancySource)
	eventSource.On("GetByID", mock.Anything, event.ID).Return(event, nil)

	svc := NewService(eventSource, remote)
	_, err := svc.BuildAvailability(context.Background(), event.ID)

	assert.ErrorIs(t, err, ErrEventInactive)
}

func TestBuildAvailability_EventNotConfigured(t *testing.T) {
	event := testEvent(5, 5)
	event.RemoteEventID = nil
	eventSource := new(MockEventSource)
	remote := new(MockOccupancySource)
	eventSource.On("GetByID", mock.Anything, event.ID).Return(event, nil)

	svc := NewService(eventSource, remote)
	_, err := svc.BuildAvailability(context.Background(), event.ID)

	assert.ErrorIs(t, err, ErrEventNotConfigured)
}

func TestBuildAvailability_RemoteFailurePropagates(t *testing.T) {
	event := testEvent(5, 5)
	eventSource := new(MockEventSource)
	remote := new(MockOccupancySource)
	eventSource.On("GetByID", mock.Anything, event.ID).Return(event, nil)
	remote.On("GetOccupancy", mock.Anything, int64(42)).Return(nil, catedra.ErrRemoteUnavailable)

	svc := NewService(eventSource, remote)
	_, err := svc.BuildAvailability(context.Background(), event.ID)

	assert.ErrorIs(t, err, catedra.ErrRemoteUnavailable)
}
