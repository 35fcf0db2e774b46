package purchase

import (
	"context"
	"testing"
	"time"

	"boleteria/internal/availability"
	"boleteria/internal/catedra"
	"boleteria/internal/events"
	"boleteria/internal/shared/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateSession(ctx context.Context, session *PurchaseSession) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockRepository) GetSessionByID(ctx context.Context, id uuid.UUID) (*PurchaseSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PurchaseSession), args.Error(1)
}

func (m *MockRepository) UpdateSession(ctx context.Context, session *PurchaseSession) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockRepository) FindCurrentByUser(ctx context.Context, userID uuid.UUID) (*PurchaseSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PurchaseSession), args.Error(1)
}

func (m *MockRepository) GetSeats(ctx context.Context, sessionID uuid.UUID) ([]SelectedSeat, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SelectedSeat), args.Error(1)
}

func (m *MockRepository) ReplaceSeats(ctx context.Context, sessionID uuid.UUID, seats []SelectedSeat) error {
	return m.Called(ctx, sessionID, seats).Error(0)
}

func (m *MockRepository) UpdateSeatNames(ctx context.Context, sessionID uuid.UUID, seats []SelectedSeat) error {
	return m.Called(ctx, sessionID, seats).Error(0)
}

func (m *MockRepository) DeleteSeats(ctx context.Context, sessionID uuid.UUID) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *MockRepository) CreateSale(ctx context.Context, sale *Sale) error {
	return m.Called(ctx, sale).Error(0)
}

func (m *MockRepository) CountFailedSales(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ListSalesByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Sale, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Sale), args.Error(1)
}

func (m *MockRepository) ListSalesByEvent(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]Sale, error) {
	args := m.Called(ctx, eventID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Sale), args.Error(1)
}

type MockSessionCache struct {
	mock.Mock
}

func (m *MockSessionCache) Get(ctx context.Context, userID string) (*CachedSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CachedSession), args.Error(1)
}

func (m *MockSessionCache) Put(ctx context.Context, userID string, session *CachedSession) error {
	return m.Called(ctx, userID, session).Error(0)
}

func (m *MockSessionCache) Touch(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionCache) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockSessionCache) Exists(ctx context.Context, userID string) bool {
	return m.Called(ctx, userID).Bool(0)
}

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

type MockAvailability struct {
	mock.Mock
}

func (m *MockAvailability) BuildAvailability(ctx context.Context, eventID uuid.UUID) (*availability.Matrix, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*availability.Matrix), args.Error(1)
}

type MockRemoteLocker struct {
	mock.Mock
}

func (m *MockRemoteLocker) LockSeats(ctx context.Context, remoteEventID int64, seats []catedra.SeatRef) (*catedra.LockResult, error) {
	args := m.Called(ctx, remoteEventID, seats)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catedra.LockResult), args.Error(1)
}

func (m *MockRemoteLocker) SellSeats(ctx context.Context, req catedra.SaleRequest) (*catedra.SaleResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catedra.SaleResult), args.Error(1)
}

// --- fixtures ---

type fixture struct {
	repo     *MockRepository
	cache    *MockSessionCache
	events   *MockEventSource
	avail    *MockAvailability
	remote   *MockRemoteLocker
	service  Service
	userID   uuid.UUID
	eventID  uuid.UUID
	remoteID int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:     new(MockRepository),
		cache:    new(MockSessionCache),
		events:   new(MockEventSource),
		avail:    new(MockAvailability),
		remote:   new(MockRemoteLocker),
		userID:   uuid.New(),
		eventID:  uuid.New(),
		remoteID: 42,
	}
	f.service = NewService(f.repo, f.cache, f.events, f.avail, f.remote, config.PurchaseConfig{
		SessionWindow:      30 * time.Minute,
		MaxSeatsPerSession: 4,
		MinOccupantNameLen: 3,
		MaxConfirmAttempts: 5,
	})
	return f
}

func (f *fixture) event(rows, cols int, price float64) *events.Event {
	return &events.Event{
		ID:            f.eventID,
		Name:          "Obra de Teatro",
		DateTime:      time.Now().AddDate(0, 1, 0),
		SeatRows:      rows,
		SeatCols:      cols,
		UnitPrice:     price,
		RemoteEventID: &f.remoteID,
		Active:        true,
	}
}

func (f *fixture) session(state SessionState, seats ...SelectedSeat) *PurchaseSession {
	now := time.Now()
	return &PurchaseSession{
		ID:             uuid.New(),
		UserID:         f.userID,
		EventID:        f.eventID,
		State:          state,
		StartedAt:      now.Add(-time.Minute),
		LastActivityAt: now,
		ExpiresAt:      now.Add(30 * time.Minute),
		Active:         true,
		Seats:          seats,
	}
}

// cacheHit wires the cache to return the session's snapshot and the store to
// resolve it.
func (f *fixture) cacheHit(session *PurchaseSession) {
	f.cache.On("Get", mock.Anything, f.userID.String()).Return(snapshotOf(session), nil)
	f.repo.On("GetSessionByID", mock.Anything, session.ID).Return(session, nil)
}

func fullGrid(eventID uuid.UUID, rows, cols int) *availability.Matrix {
	m := &availability.Matrix{EventID: eventID, Rows: rows, Cols: cols}
	m.Entries = make([]availability.Entry, rows*cols)
	for r := 1; r <= rows; r++ {
		for c := 1; c <= cols; c++ {
			m.Entries[(r-1)*cols+(c-1)] = availability.Entry{Row: r, Col: c, State: availability.StateAvailable}
		}
	}
	m.Counts = availability.Counts{Total: rows * cols, Available: rows * cols}
	return m
}

func lockedAll(seats []catedra.SeatRef) *catedra.LockResult {
	outcomes := make([]catedra.SeatOutcome, len(seats))
	for i, s := range seats {
		outcomes[i] = catedra.SeatOutcome{Row: s.Row, Col: s.Col, Status: catedra.LockOutcomeOK}
	}
	return &catedra.LockResult{Success: true, Message: "ok", Seats: outcomes}
}

// --- Start ---

func TestStart_CreatesFreshSession(t *testing.T) {
	f := newFixture(t)
	f.events.On("GetByID", mock.Anything, f.eventID).Return(f.event(5, 5, 100), nil)
	f.repo.On("FindCurrentByUser", mock.Anything, f.userID).Return(nil, nil)
	f.repo.On("CreateSession", mock.Anything, mock.AnythingOfType("*purchase.PurchaseSession")).Return(nil)
	f.cache.On("Put", mock.Anything, f.userID.String(), mock.Anything).Return(nil)

	session, err := f.service.Start(context.Background(), f.userID, f.eventID)

	require.NoError(t, err)
	assert.Equal(t, StateSelectingSeats, session.State)
	assert.Equal(t, f.userID, session.UserID)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), session.ExpiresAt, 2*time.Second)
	f.repo.AssertExpectations(t)
}

func TestStart_TerminatesPriorSession(t *testing.T) {
	f := newFixture(t)
	prior := f.session(StateLoadingData)
	f.events.On("GetByID", mock.Anything, f.eventID).Return(f.event(5, 5, 100), nil)
	f.repo.On("FindCurrentByUser", mock.Anything, f.userID).Return(prior, nil)
	f.repo.On("DeleteSeats", mock.Anything, prior.ID).Return(nil)
	f.repo.On("UpdateSession", mock.Anything, mock.MatchedBy(func(s *PurchaseSession) bool {
		return s.ID == prior.ID && s.State == StateCompleted
	})).Return(nil)
	f.cache.On("Delete", mock.Anything, f.userID.String()).Return(nil)
	f.repo.On("CreateSession", mock.Anything, mock.AnythingOfType("*purchase.PurchaseSession")).Return(nil)
	f.cache.On("Put", mock.Anything, f.userID.String(), mock.Anything).Return(nil)

	session, err := f.service.Start(context.Background(), f.userID, f.eventID)

	require.NoError(t, err)
	assert.NotEqual(t, prior.ID, session.ID)
	assert.Equal(t, StateSelectingSeats, session.State)
	f.repo.AssertCalled(t, "DeleteSeats", mock.Anything, prior.ID)
}

func TestStart_UnknownEvent(t *testing.T) {
	f := newFixture(t)
	f.events.On("GetByID", mock.Anything, f.eventID).Return(nil, assert.AnError)

	_, err := f.service.Start(context.Background(), f.userID, f.eventID)

	domainErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, domainErr.Code)
}

// --- GetState ---

func TestGetState_NoSession(t *testing.T) {
	f := newFixture(t)
	f.cache.On("Get", mock.Anything, f.userID.String()).Return(nil, nil)
	f.repo.On("FindCurrentByUser", mock.Anything, f.userID).Return(nil, nil)

	session, err := f.service.GetState(context.Background(), f.userID)

	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestGetState_RehydratesCacheAfterMiss(t *testing.T) {
	f := newFixture(t)
	durable := f.session(StateLoadingData)
	f.cache.On("Get", mock.Anything, f.userID.String()).Return(nil, nil)
	f.repo.On("FindCurrentByUser", mock.Anything, f.userID).Return(durable, nil)
	f.cache.On("Put", mock.Anything, f.userID.String(), mock.MatchedBy(func(s *CachedSession) bool {
		return s.SessionID == durable.ID
	})).Return(nil)

	session, err := f.service.GetState(context.Background(), f.userID)

	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, durable.ID, session.ID)
	f.cache.AssertExpectations(t)
}

func TestGetState_ExpiresStaleSession(t *testing.T) {
	f := newFixture(t)
	stale := f.session(StateSelectingSeats)
	stale.LastActivityAt = time.Now().Add(-31 * time.Minute)
	f.cache.On("Get", mock.Anything, f.userID.String()).Return(nil, nil)
	f.repo.On("FindCurrentByUser", mock.Anything, f.userID).Return(stale, nil)
	f.repo.On("DeleteSeats", mock.Anything, stale.ID).Return(nil)
	f.repo.On("UpdateSession", mock.Anything, mock.MatchedBy(func(s *PurchaseSession) bool {
		return s.State == StateCompleted
	})).Return(nil)
	f.cache.On("Delete", mock.Anything, f.userID.String()).Return(nil)

	session, err := f.service.GetState(context.Background(), f.userID)

	require.NoError(t, err)
	assert.Nil(t, session)
	f.repo.AssertCalled(t, "DeleteSeats", mock.Anything, stale.ID)
}

// --- Touch ---

func TestTouch_RequiresCacheEntry(t *testing.T) {
	f := newFixture(t)
	f.cache.On("Get", mock.Anything, f.userID.String()).Return(nil, nil)

	err := f.service.Touch(context.Background(), f.userID)

	domainErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, domainErr.Code)
}

func TestTouch_SlidesWindow(t *testing.T) {
	f := newFixture(t)
	session := f.session(StateSelectingSeats)
	f.cacheHit(session)
	f.repo.On("UpdateSession", mock.Anything, mock.MatchedBy(func(s *PurchaseSession) bool {
		return s.ExpiresAt.After(time.Now().Add(29 * time.Minute))
	})).Return(nil)
	f.cache.On("Put", mock.Anything, f.userID.String(), mock.Anything).Return(nil)

	err := f.service.Touch(context.Background(), f.userID)

	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

// --- SelectSeats ---

func TestSelectSeats_Success(t *testing.T) {
	f := newFixture(t)
	session := f.session(StateSelectingSeats)
	f.cacheHit(session)
	f.events.On("GetByID", mock.Anything, f.eventID).Return(f.event(5, 5, 100), nil)
	f.avail.On("BuildAvailability", mock.Anything, f.eventID).Return(fullGrid(f.eventID, 5, 5), nil)
	refs := []catedra.SeatRef{{Row: 1, Col: 1}, {Row: 1, Col: 2}}
	f.remote.On("LockSeats", mock.Anything, f.remoteID, refs).Return(lockedAll(refs), nil)
	f.repo.On("ReplaceSeats", mock.Anything, session.ID, mock.Anything).Return(nil)
	f.repo.On("UpdateSession", mock.Anything, mock.MatchedBy(func(s *PurchaseSession) bool {
		return s.State == StateLoadingData
	})).Return(nil)
	f.cache.On("Put", mock.Anything, f.userID.String(), mock.Anything).Return(nil)

	result, err := f.service.SelectSeats(context.Background(), f.userID, []SeatSelection{{1, 1}, {1, 2}})

	require.NoError(t, err)
	assert.Equal(t, StateLoadingData, result.State)
	require.Len(t, result.Seats, 2)
	assert.Empty(t, result.Seats[0].OccupantName)
}

func TestSelectSeats_TooMany(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.SelectSeats(context.Background(), f.userID, []SeatSelection{
		{1, 1}, {1, 2}, {1, 3}, {1, 4}, {1, 5},
	})

	domainErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidRequest, domainErr.Code)
}

func TestSelectSeats_DuplicateCoordinate(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.SelectSeats(context.Background(), f.userID, []SeatSelection{{2, 3}, {2, 3}})

	domainErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidRequest, domainErr.Code)
}

func TestSelectSeats_OutOfBounds(t *testing.T) {
	f := newFixture(t)
	session := f.session(StateSelectingSeats)
	f.cacheHit(session)
	f.events.On("GetByID", mock.Anything, f.eventID).Return(f.event(5, 5, 100), nil)

	_, err := f.service.SelectSeats(context.Background(), f.userID, []SeatSelection{{6, 1}})

	domainErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidRequest, domainErr.Code)
	f.avail.AssertNotCalled(t, "BuildAvailability")
}

func TestSelectSeats_AllOrNothing(t *testing.T) {
	f := newFixture(t)
	session := f.session(StateSelectingSeats)
	f.cacheHit(session)
	f.events.On("GetByID", mock.Anything, f.eventID).Return(f.event(5, 5, 100), nil)

	grid := fullGrid(f.eventID, 5, 5)
	grid.At(1, 2).State = availability.StateSold
	f.avail.On("BuildAvailability", mock.Anything, f.eventID).Return(grid, nil)

	_, err := f.service.SelectSeats(context.Background(), f.userID, []SeatSelection{{1, 1}, {1, 2}})

	domainErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeSeatUnavailable, domainErr.Code)
	f.remote.AssertNotCalled(t, "LockSeats")
	f.repo.AssertNotCalled(t, "ReplaceSeats")
}

func TestSelectSeats_PartialLockRefusalAborts(t *testing.T) {
	f := newFixture(t)
	session := f.session(StateSelectingSeats)
	f.cacheHit(session)
	f.events.On("GetByID", mock.Anything, f.eventID).Return(f.event(5, 5, 100), nil)
	f.avail.On("BuildAvailability", mock.Anything, f.eventID).Return(fullGrid(f.eventID, 5, 5), nil)
	f.remote.On("LockSeats", mock.Anything, f.remoteID, mock.Anything).Return(&catedra.LockResult{
		Success: true,
		Message: "parcial",
		Seats: []catedra.SeatOutcome{
			{Row: 1, Col: 1, Status: catedra.LockOutcomeOK},
			{Row: 1, Col: 2, Status: "Asiento ocupado"},
		},
	}, nil)

	_, err := f.service.SelectSeats(context.Background(), f.userID, []SeatSelection{{1, 1}, {1, 2}})

	domainErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeLockRejected, domainErr.Code)
	f.repo.AssertNotCalled(t, "ReplaceSeats")
}

func TestSelectSeats_ReselectionAllowedInLoadingData(t *testing.T) {
	f := newFixture(t)
	session := f.session(StateLoadingData, SelectedSeat{SeatRow: 3, SeatCol: 3})
	f.cacheHit(session)
	f.events.On("GetByID", mock.Anything, f.eventID).Return(f.event(5, 5, 100), nil)
	f.avail.On("BuildAvailability", mock.Anything, f.eventID).Return(fullGrid(f.eventID, 5, 5), nil)
	refs := []catedra.SeatRef{{Row: 4, Col: 4}}
	f.remote.On("LockSeats", mock.Anything, f.remoteID, refs).Return(lockedAll(refs), nil)
	f.repo.On("ReplaceSeats", mock.Anything, session.ID, mock.MatchedBy(func(seats []SelectedSeat) bool {
		return len(seats) == 1 && seats[0].SeatRow == 4 && seats[0].SeatCol == 4
	})).Return(nil)
	f.repo.On("UpdateSession", mock.Anything, mock.Anything).Return(nil)
	f.cache.On("Put", mock.Anything, f.userID.String(), mock.Anything).Return(nil)

	result, err := f.service.SelectSeats(context.Background(), f.userID, []SeatSelection{{4, 4}})

	require.NoError(t, err)
	require.Len(t, result.Seats, 1)
	assert.Equal(t, 4, result.Seats[0].SeatRow)
}

// --- AssignNames ---

func TestAssignNames_Success(t *testing.T) {
	f := newFixture(t)
	session := f.session(StateLoadingData,
		SelectedSeat{SeatRow: 1, SeatCol: 1},
		SelectedSeat{SeatRow: 1, SeatCol: 2},
	)
	f.cacheHit(session)
	f.repo.On("UpdateSeatNames", mock.Anything, session.ID, mock.MatchedBy(func(seats []SelectedSeat) bool {
		return len(seats) == 2 && seats[0].OccupantName == "Ana Gomez" && seats[1].OccupantName == "Luis Diaz"
	})).Return(nil)
	f.repo.On("UpdateSession", mock.Anything, mock.Anything).Return(nil)
	f.cache.On("Put", mock.Anything, f.userID.String(), mock.Anything).Return(nil)

	result, err := f.service.AssignNames(context.Background(), f.userID, map[string]string{
		"1-1": "Ana Gomez",
		"1-2": "Luis Diaz",
	})

	require.NoError(t, err)
	assert.Equal(t, StateLoadingData, result.State)
	assert.Equal(t, "Ana Gomez", result.Seats[0].OccupantName)
}

func TestAssignNames_CardinalityMismatch(t *testing.T) {
	f := newFixture(t)
	session := f.session(StateLoadingData,
		SelectedSeat{SeatRow: 1, SeatCol: 1},
		SelectedSeat{SeatRow: 1, SeatCol: 2},
	)
	f.cacheHit(session)

	_, err := f.service.AssignNames(context.Background(), f.userID, map[string]string{
		"1-1": "Ana Gomez",
	})

	domainErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidRequest, domainErr.Code)
	f.repo.AssertNotCalled(t, "UpdateSeatNames")
}

func TestAssignNames_WrongKeyForSeat(t *testing.T) {
	f := newFixture(t)
	session := f.session(StateLoadingData,
		SelectedSeat{SeatRow: 1, SeatCol: 1},
		SelectedSeat{SeatRow: 1, SeatCol: 2},
	)
	f.cacheHit(session)

	// Right cardinality, wrong key set.
	_, err := f.service.AssignNames(context.Background(), f.userID, map[string]string{
		"1-1": "Ana Gomez",
		"2-2": "Luis Diaz",
	})

	domainErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidRequest, domainErr.Code)
}

func TestAssignNames_ShortNameAfterTrim(t *testing.T) {
	f := newFixture(t)
	session := f.session(StateLoadingData, SelectedSeat{SeatRow: 1, SeatCol: 1})
	f.cacheHit(session)

	_, err := f.service.AssignNames(context.Background(), f.userID, map[string]string{
		"1-1": "  Al  ",
	})

	domainErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidRequest, domainErr.Code)
}

func TestAssignNames_MinLengthCountsRunesNotBytes(t *testing.T) {
	f := newFixture(t)
	session := f.session(StateLoadingData, SelectedSeat{SeatRow: 1, SeatCol: 1})
	f.cacheHit(session)

	// Two characters in four UTF-8 bytes; byte length would wrongly pass.
	_, err := f.service.AssignNames(context.Background(), f.userID, map[string]string{
		"1-1": "ñé",
	})

	domainErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidRequest, domainErr.Code)
	f.repo.AssertNotCalled(t, "UpdateSeatNames")
}

func TestAssignNames_AcceptsMultibyteNameOfMinLength(t *testing.T) {
	f := newFixture(t)
	session := f.session(StateLoadingData, SelectedSeat{SeatRow: 1, SeatCol: 1})
	f.cacheHit(session)
	f.repo.On("UpdateSeatNames", mock.Anything, session.ID, mock.MatchedBy(func(seats []SelectedSeat) bool {
		return len(seats) == 1 && seats[0].OccupantName == "Noé"
	})).Return(nil)
	f.repo.On("UpdateSession", mock.Anything, mock.Anything).Return(nil)
	f.cache.On("Put", mock.Anything, f.userID.String(), mock.Anything).Return(nil)

	result, err := f.service.AssignNames(context.Background(), f.userID, map[string]string{
		"1-1": "Noé",
	})

	require.NoError(t, err)
	assert.Equal(t, "Noé", result.Seats[0].OccupantName)
}

func TestAssignNames_WrongState(t *testing.T) {
	f := newFixture(t)
	session := f.session(StateSelectingSeats)
	f.cacheHit(session)

	_, err := f.service.AssignNames(context.Background(), f.userID, map[string]string{"1-1": "Ana Gomez"})

	domainErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidState, domainErr.Code)
}

// --- Confirm ---

func confirmFixture(t *testing.T) (*fixture, *PurchaseSession) {
	f := newFixture(t)
	session := f.session(StateLoadingData,
		SelectedSeat{SeatRow: 1, SeatCol: 1, OccupantName: "Ana Gomez"},
		SelectedSeat{SeatRow: 1, SeatCol: 2, OccupantName: "Luis Diaz"},
	)
	f.cacheHit(session)
	f.repo.On("CountFailedSales", mock.Anything, session.ID).Return(int64(0), nil)
	f.events.On("GetByID", mock.Anything, f.eventID).Return(f.event(5, 5, 100), nil)
	return f, session
}

func TestConfirm_Success(t *testing.T) {
	f, session := confirmFixture(t)

	grid := fullGrid(f.eventID, 5, 5)
	grid.At(1, 1).State = availability.StateLocked
	grid.At(1, 2).State = availability.StateLocked
	f.avail.On("BuildAvailability", mock.Anything, f.eventID).Return(grid, nil)

	remoteSaleID := int64(555)
	f.remote.On("SellSeats", mock.Anything, mock.MatchedBy(func(req catedra.SaleRequest) bool {
		return req.RemoteEventID == f.remoteID &&
			req.TotalPrice == 200.0 &&
			len(req.Seats) == 2 &&
			req.Seats[0].OccupantName == "Ana Gomez" &&
			req.Seats[1].OccupantName == "Luis Diaz"
	})).Return(&catedra.SaleResult{
		Success:      true,
		RemoteSaleID: &remoteSaleID,
		Message:      "ok",
		Seats: []catedra.SeatOutcome{
			{Row: 1, Col: 1, OccupantName: "Ana Gomez", Status: catedra.SaleOutcomeOK},
			{Row: 1, Col: 2, OccupantName: "Luis Diaz", Status: catedra.SaleOutcomeOK},
		},
	}, nil)

	f.repo.On("CreateSale", mock.Anything, mock.MatchedBy(func(sale *Sale) bool {
		return sale.Successful &&
			sale.SyncStatus == SyncSynchronized &&
			sale.TotalPrice == 200.0 &&
			sale.RemoteSaleID != nil && *sale.RemoteSaleID == 555
	})).Return(nil)
	f.repo.On("UpdateSession", mock.Anything, mock.MatchedBy(func(s *PurchaseSession) bool {
		return s.State == StateCompleted
	})).Return(nil)
	f.repo.On("DeleteSeats", mock.Anything, session.ID).Return(nil)
	f.cache.On("Delete", mock.Anything, f.userID.String()).Return(nil)

	sale, err := f.service.Confirm(context.Background(), f.userID)

	require.NoError(t, err)
	assert.True(t, sale.Successful)
	assert.Equal(t, SyncSynchronized, sale.SyncStatus)
	assert.Equal(t, 200.0, sale.TotalPrice)
	require.NotNil(t, sale.RemoteSaleID)
	assert.EqualValues(t, 555, *sale.RemoteSaleID)
	f.repo.AssertExpectations(t)
}

func TestConfirm_RemoteUnavailableLeavesSessionRetryable(t *testing.T) {
	f, session := confirmFixture(t)

	grid := fullGrid(f.eventID, 5, 5)
	grid.At(1, 1).State = availability.StateLocked
	grid.At(1, 2).State = availability.StateLocked
	f.avail.On("BuildAvailability", mock.Anything, f.eventID).Return(grid, nil)
	f.remote.On("SellSeats", mock.Anything, mock.Anything).Return(nil, catedra.ErrRemoteUnavailable)

	f.repo.On("CreateSale", mock.Anything, mock.MatchedBy(func(sale *Sale) bool {
		return !sale.Successful &&
			sale.SyncStatus == SyncPending &&
			sale.RemoteSaleID == nil
	})).Return(nil)

	_, err := f.service.Confirm(context.Background(), f.userID)

	domainErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeRemoteUnavailable, domainErr.Code)
	// The session must stay in LOADING_DATA with its seats intact.
	f.repo.AssertNotCalled(t, "UpdateSession", mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "DeleteSeats", mock.Anything, session.ID)
	f.repo.AssertCalled(t, "CreateSale", mock.Anything, mock.Anything)
}

func TestConfirm_RemoteRejectionRecordsErrorSale(t *testing.T) {
	f, _ := confirmFixture(t)

	grid := fullGrid(f.eventID, 5, 5)
	grid.At(1, 1).State = availability.StateLocked
	grid.At(1, 2).State = availability.StateLocked
	f.avail.On("BuildAvailability", mock.Anything, f.eventID).Return(grid, nil)
	f.remote.On("SellSeats", mock.Anything, mock.Anything).Return(&catedra.SaleResult{
		Success: false,
		Message: "asiento ya vendido",
	}, nil)

	f.repo.On("CreateSale", mock.Anything, mock.MatchedBy(func(sale *Sale) bool {
		return !sale.Successful && sale.SyncStatus == SyncError
	})).Return(nil)

	_, err := f.service.Confirm(context.Background(), f.userID)

	domainErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeSaleRejected, domainErr.Code)
	f.repo.AssertNotCalled(t, "UpdateSession", mock.Anything, mock.Anything)
}

func TestConfirm_SeatSoldByAnotherBuyer(t *testing.T) {
	f, _ := confirmFixture(t)

	grid := fullGrid(f.eventID, 5, 5)
	grid.At(1, 1).State = availability.StateSold
	grid.At(1, 1).OccupantName = "Otro Comprador"
	grid.At(1, 2).State = availability.StateLocked
	f.avail.On("BuildAvailability", mock.Anything, f.eventID).Return(grid, nil)
	f.repo.On("CreateSale", mock.Anything, mock.MatchedBy(func(sale *Sale) bool {
		return !sale.Successful && sale.SyncStatus == SyncError
	})).Return(nil)

	_, err := f.service.Confirm(context.Background(), f.userID)

	domainErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeSeatUnavailable, domainErr.Code)
	f.remote.AssertNotCalled(t, "SellSeats")
}

func TestConfirm_RelocksExpiredSeatBeforeSelling(t *testing.T) {
	f, _ := confirmFixture(t)

	// Seat (1,1) reverted to AVAILABLE: its remote lock expired.
	grid := fullGrid(f.eventID, 5, 5)
	grid.At(1, 2).State = availability.StateLocked
	f.avail.On("BuildAvailability", mock.Anything, f.eventID).Return(grid, nil)

	relockRefs := []catedra.SeatRef{{Row: 1, Col: 1}}
	f.remote.On("LockSeats", mock.Anything, f.remoteID, relockRefs).Return(lockedAll(relockRefs), nil)

	remoteSaleID := int64(777)
	f.remote.On("SellSeats", mock.Anything, mock.Anything).Return(&catedra.SaleResult{
		Success:      true,
		RemoteSaleID: &remoteSaleID,
		Seats: []catedra.SeatOutcome{
			{Row: 1, Col: 1, Status: catedra.SaleOutcomeOK},
			{Row: 1, Col: 2, Status: catedra.SaleOutcomeOK},
		},
	}, nil)

	f.repo.On("CreateSale", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("UpdateSession", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("DeleteSeats", mock.Anything, mock.Anything).Return(nil)
	f.cache.On("Delete", mock.Anything, f.userID.String()).Return(nil)

	sale, err := f.service.Confirm(context.Background(), f.userID)

	require.NoError(t, err)
	assert.True(t, sale.Successful)
	f.remote.AssertCalled(t, "LockSeats", mock.Anything, f.remoteID, relockRefs)
}

func TestConfirm_RelockRefusedAborts(t *testing.T) {
	f, _ := confirmFixture(t)

	grid := fullGrid(f.eventID, 5, 5)
	grid.At(1, 2).State = availability.StateLocked
	f.avail.On("BuildAvailability", mock.Anything, f.eventID).Return(grid, nil)

	// Another user re-locked the seat in the interim; the per-seat outcome
	// is authoritative.
	f.remote.On("LockSeats", mock.Anything, f.remoteID, mock.Anything).Return(&catedra.LockResult{
		Success: false,
		Message: "asiento bloqueado por otro usuario",
	}, nil)
	f.repo.On("CreateSale", mock.Anything, mock.MatchedBy(func(sale *Sale) bool {
		return !sale.Successful && sale.SyncStatus == SyncError
	})).Return(nil)

	_, err := f.service.Confirm(context.Background(), f.userID)

	domainErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeLockRejected, domainErr.Code)
	f.remote.AssertNotCalled(t, "SellSeats")
}

func TestConfirm_AttemptCapReached(t *testing.T) {
	f := newFixture(t)
	session := f.session(StateLoadingData,
		SelectedSeat{SeatRow: 1, SeatCol: 1, OccupantName: "Ana Gomez"},
	)
	f.cacheHit(session)
	f.repo.On("CountFailedSales", mock.Anything, session.ID).Return(int64(5), nil)

	_, err := f.service.Confirm(context.Background(), f.userID)

	domainErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeTooManyAttempts, domainErr.Code)
	f.remote.AssertNotCalled(t, "SellSeats")
}

func TestConfirm_RequiresNames(t *testing.T) {
	f := newFixture(t)
	session := f.session(StateLoadingData, SelectedSeat{SeatRow: 1, SeatCol: 1})
	f.cacheHit(session)

	_, err := f.service.Confirm(context.Background(), f.userID)

	domainErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidState, domainErr.Code)
}

func TestConfirm_AuthRetryOnce(t *testing.T) {
	f, _ := confirmFixture(t)

	grid := fullGrid(f.eventID, 5, 5)
	grid.At(1, 1).State = availability.StateLocked
	grid.At(1, 2).State = availability.StateLocked
	f.avail.On("BuildAvailability", mock.Anything, f.eventID).Return(grid, nil)

	remoteSaleID := int64(888)
	// First sell call hits an expired token; the retry succeeds.
	f.remote.On("SellSeats", mock.Anything, mock.Anything).Return(nil, catedra.ErrTokenExpired).Once()
	f.remote.On("SellSeats", mock.Anything, mock.Anything).Return(&catedra.SaleResult{
		Success:      true,
		RemoteSaleID: &remoteSaleID,
		Seats: []catedra.SeatOutcome{
			{Row: 1, Col: 1, Status: catedra.SaleOutcomeOK},
			{Row: 1, Col: 2, Status: catedra.SaleOutcomeOK},
		},
	}, nil).Once()

	f.repo.On("CreateSale", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("UpdateSession", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("DeleteSeats", mock.Anything, mock.Anything).Return(nil)
	f.cache.On("Delete", mock.Anything, f.userID.String()).Return(nil)

	sale, err := f.service.Confirm(context.Background(), f.userID)

	require.NoError(t, err)
	assert.True(t, sale.Successful)
	f.remote.AssertNumberOfCalls(t, "SellSeats", 2)
}

// --- Cancel ---

func TestCancel_TerminatesAndEvicts(t *testing.T) {
	f := newFixture(t)
	session := f.session(StateLoadingData)
	f.repo.On("FindCurrentByUser", mock.Anything, f.userID).Return(session, nil)
	f.repo.On("DeleteSeats", mock.Anything, session.ID).Return(nil)
	f.repo.On("UpdateSession", mock.Anything, mock.MatchedBy(func(s *PurchaseSession) bool {
		return s.State == StateCompleted
	})).Return(nil)
	f.cache.On("Delete", mock.Anything, f.userID.String()).Return(nil)

	err := f.service.Cancel(context.Background(), f.userID)

	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestCancel_IdempotentWhenNothingExists(t *testing.T) {
	f := newFixture(t)
	f.repo.On("FindCurrentByUser", mock.Anything, f.userID).Return(nil, nil)
	f.cache.On("Delete", mock.Anything, f.userID.String()).Return(nil)

	err := f.service.Cancel(context.Background(), f.userID)

	require.NoError(t, err)
}
