package events

import (
	"context"
	"testing"
	"time"

	"boleteria/internal/catedra"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, event *Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Event), args.Error(1)
}

func (m *MockRepository) GetByRemoteID(ctx context.Context, remoteID int64) (*Event, error) {
	args := m.Called(ctx, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Event), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return m.Called(ctx, id, updates).Error(0)
}

func (m *MockRepository) List(ctx context.Context, activeOnly bool) ([]Event, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Event), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockRemoteCatalog struct {
	mock.Mock
}

func (m *MockRemoteCatalog) ListEvents(ctx context.Context) ([]catedra.RemoteEvent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catedra.RemoteEvent), args.Error(1)
}

func remoteEvent(id int64, name string) catedra.RemoteEvent {
	return catedra.RemoteEvent{
		ID:        id,
		Name:      name,
		Date:      time.Now().AddDate(0, 2, 0),
		Rows:      10,
		Cols:      20,
		UnitPrice: 150,
	}
}

func TestSyncFromRemote_CreatesUnknownEvents(t *testing.T) {
	repo := new(MockRepository)
	remote := new(MockRemoteCatalog)
	svc := NewService(repo, remote)

	remote.On("ListEvents", mock.Anything).Return([]catedra.RemoteEvent{
		remoteEvent(101, "Concierto Sinfonico"),
	}, nil)
	repo.On("GetByRemoteID", mock.Anything, int64(101)).Return(nil, gorm.ErrRecordNotFound)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *Event) bool {
		return e.Name == "Concierto Sinfonico" &&
			e.SeatRows == 10 && e.SeatCols == 20 &&
			e.RemoteEventID != nil && *e.RemoteEventID == 101 &&
			e.Active
	})).Return(nil)

	report, err := svc.SyncFromRemote(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Created)
	assert.Zero(t, report.Updated)
	assert.Zero(t, report.Skipped)
	repo.AssertExpectations(t)
}

func TestSyncFromRemote_UpdatesKnownEvents(t *testing.T) {
	repo := new(MockRepository)
	remote := new(MockRemoteCatalog)
	svc := NewService(repo, remote)

	remoteID := int64(101)
	existing := &Event{ID: uuid.New(), Name: "Viejo Nombre", RemoteEventID: &remoteID}
	remote.On("ListEvents", mock.Anything).Return([]catedra.RemoteEvent{
		remoteEvent(101, "Concierto Sinfonico"),
	}, nil)
	repo.On("GetByRemoteID", mock.Anything, remoteID).Return(existing, nil)
	repo.On("Update", mock.Anything, existing.ID, mock.MatchedBy(func(updates map[string]interface{}) bool {
		return updates["name"] == "Concierto Sinfonico" && updates["unit_price"] == 150.0
	})).Return(nil)

	report, err := svc.SyncFromRemote(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Zero(t, report.Created)
}

func TestSyncFromRemote_SkipsBadRecords(t *testing.T) {
	repo := new(MockRepository)
	remote := new(MockRemoteCatalog)
	svc := NewService(repo, remote)

	bad := remoteEvent(102, "Sin Grilla")
	bad.Rows = 0
	remote.On("ListEvents", mock.Anything).Return([]catedra.RemoteEvent{
		bad,
		remoteEvent(103, "Obra de Teatro"),
	}, nil)
	repo.On("GetByRemoteID", mock.Anything, int64(103)).Return(nil, gorm.ErrRecordNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	report, err := svc.SyncFromRemote(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "remote event 102")
	repo.AssertNotCalled(t, "GetByRemoteID", mock.Anything, int64(102))
}

func TestSyncFromRemote_RemoteFailureAbortsBatch(t *testing.T) {
	repo := new(MockRepository)
	remote := new(MockRemoteCatalog)
	svc := NewService(repo, remote)

	remote.On("ListEvents", mock.Anything).Return(nil, catedra.ErrRemoteUnavailable)

	_, err := svc.SyncFromRemote(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, catedra.ErrRemoteUnavailable)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) Get(ctx context.Context, key string, dest interface{}) error {
	return m.Called(ctx, key, dest).Error(0)
}

func (m *MockCacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCacheService) Exists(ctx context.Context, key string) bool {
	return m.Called(ctx, key).Bool(0)
}

func (m *MockCacheService) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	args := m.Called(ctx, key, ttl, fetcher, dest)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestListEvents_ReadsThroughCache(t *testing.T) {
	repo := new(MockRepository)
	remote := new(MockRemoteCatalog)
	cacheService := new(MockCacheService)
	svc := NewService(repo, remote)
	svc.SetCacheService(cacheService)

	cached := []EventResponse{{ID: uuid.New().String(), Name: "Concierto Sinfonico"}}
	cacheService.On("GetOrSet", mock.Anything, "boleteria:events:list:active:true",
		15*time.Minute, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(4).(*[]EventResponse)
			*dest = cached
		}).Return(nil)

	responses, err := svc.ListEvents(context.Background(), true)

	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, "Concierto Sinfonico", responses[0].Name)
	// A cache hit never touches the repository.
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	cacheService.AssertExpectations(t)
}

func TestListEvents_WithoutCacheHitsRepository(t *testing.T) {
	repo := new(MockRepository)
	remote := new(MockRemoteCatalog)
	svc := NewService(repo, remote)

	remoteID := int64(101)
	repo.On("List", mock.Anything, false).Return([]Event{
		{ID: uuid.New(), Name: "Obra de Teatro", SeatRows: 5, SeatCols: 5, RemoteEventID: &remoteID},
	}, nil)

	responses, err := svc.ListEvents(context.Background(), false)

	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, "Obra de Teatro", responses[0].Name)
}
