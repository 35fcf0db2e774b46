package events

import (
	"context"
	"errors"
	"fmt"

	"boleteria/internal/catedra"
	"boleteria/internal/shared/constants"
	"boleteria/pkg/cache"
	"boleteria/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEventNotFound = errors.New("event not found")

// RemoteCatalog lists the remote authority's events for synchronization.
type RemoteCatalog interface {
	ListEvents(ctx context.Context) ([]catedra.RemoteEvent, error)
}

type Service interface {
	CreateEvent(ctx context.Context, req CreateEventRequest) (*EventResponse, error)
	GetEvent(ctx context.Context, id string) (*EventResponse, error)
	UpdateEvent(ctx context.Context, id string, req UpdateEventRequest) (*EventResponse, error)
	ListEvents(ctx context.Context, activeOnly bool) ([]EventResponse, error)
	DeleteEvent(ctx context.Context, id string) error

	// SyncFromRemote reconciles the local catalog against the remote
	// authority's listing. One bad record never aborts the batch: per-item
	// failures are logged, counted and skipped.
	SyncFromRemote(ctx context.Context) (*SyncReport, error)

	// SetCacheService enables the catalog read cache.
	SetCacheService(cacheService cache.Service)
}

type service struct {
	repo         Repository
	remote       RemoteCatalog
	cacheService cache.Service
}

func NewService(repo Repository, remote RemoteCatalog) Service {
	return &service{
		repo:   repo,
		remote: remote,
	}
}

// SetCacheService enables the catalog read cache.
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) CreateEvent(ctx context.Context, req CreateEventRequest) (*EventResponse, error) {
	event := &Event{
		Name:          req.Name,
		Description:   req.Description,
		DateTime:      req.DateTime,
		SeatRows:      req.SeatRows,
		SeatCols:      req.SeatCols,
		UnitPrice:     req.UnitPrice,
		RemoteEventID: req.RemoteEventID,
		Active:        true,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.invalidateListCache(ctx)

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) GetEvent(ctx context.Context, id string) (*EventResponse, error) {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID: %w", err)
	}

	if s.cacheService != nil {
		var cached EventResponse
		cacheKey := constants.BuildEventDetailKey(id)
		err := s.cacheService.GetOrSet(ctx, cacheKey, constants.TTL_EVENT_DETAIL, func() (interface{}, error) {
			event, err := s.repo.GetByID(ctx, eventID)
			if err != nil {
				return nil, err
			}
			return event.ToResponse(), nil
		}, &cached)
		if err == nil {
			return &cached, nil
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) UpdateEvent(ctx context.Context, id string, req UpdateEventRequest) (*EventResponse, error) {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.DateTime != nil {
		updates["date_time"] = *req.DateTime
	}
	if req.SeatRows != nil {
		updates["seat_rows"] = *req.SeatRows
	}
	if req.SeatCols != nil {
		updates["seat_cols"] = *req.SeatCols
	}
	if req.UnitPrice != nil {
		updates["unit_price"] = *req.UnitPrice
	}
	if req.RemoteEventID != nil {
		updates["remote_event_id"] = *req.RemoteEventID
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, eventID, updates); err != nil {
			return nil, fmt.Errorf("failed to update event: %w", err)
		}
	}

	s.invalidateEventCache(ctx, id)

	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) ListEvents(ctx context.Context, activeOnly bool) ([]EventResponse, error) {
	if s.cacheService != nil {
		var cached []EventResponse
		cacheKey := constants.BuildEventsListKey(activeOnly)
		err := s.cacheService.GetOrSet(ctx, cacheKey, constants.TTL_EVENTS_LIST, func() (interface{}, error) {
			return s.listEvents(ctx, activeOnly)
		}, &cached)
		if err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}
		return cached, nil
	}

	return s.listEvents(ctx, activeOnly)
}

func (s *service) listEvents(ctx context.Context, activeOnly bool) ([]EventResponse, error) {
	events, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	responses := make([]EventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, event.ToResponse())
	}
	return responses, nil
}

func (s *service) DeleteEvent(ctx context.Context, id string) error {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid event ID: %w", err)
	}

	if _, err := s.repo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to get event: %w", err)
	}

	s.invalidateEventCache(ctx, id)
	return s.repo.Delete(ctx, eventID)
}

func (s *service) SyncFromRemote(ctx context.Context) (*SyncReport, error) {
	remoteEvents, err := s.remote.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote events: %w", err)
	}

	log := logger.GetDefault()
	report := &SyncReport{Total: len(remoteEvents)}

	for _, remote := range remoteEvents {
		created, err := s.syncOne(ctx, remote)
		if err != nil {
			// One bad record must not abort the batch.
			log.ErrorWithContext(ctx, "catalog sync item failed", err, map[string]interface{}{
				"remote_event_id": remote.ID,
			})
			report.Skipped++
			report.Errors = append(report.Errors, fmt.Sprintf("remote event %d: %v", remote.ID, err))
			continue
		}

		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}

	s.invalidateListCache(ctx)
	return report, nil
}

func (s *service) syncOne(ctx context.Context, remote catedra.RemoteEvent) (bool, error) {
	if remote.ID <= 0 {
		return false, fmt.Errorf("invalid remote event id %d", remote.ID)
	}
	if remote.Rows <= 0 || remote.Cols <= 0 {
		return false, fmt.Errorf("invalid grid %dx%d", remote.Rows, remote.Cols)
	}

	existing, err := s.repo.GetByRemoteID(ctx, remote.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("lookup failed: %w", err)
		}

		remoteID := remote.ID
		event := &Event{
			Name:          remote.Name,
			DateTime:      remote.Date,
			SeatRows:      remote.Rows,
			SeatCols:      remote.Cols,
			UnitPrice:     remote.UnitPrice,
			RemoteEventID: &remoteID,
			Active:        true,
		}
		if err := s.repo.Create(ctx, event); err != nil {
			return false, fmt.Errorf("create failed: %w", err)
		}
		return true, nil
	}

	updates := map[string]interface{}{
		"name":       remote.Name,
		"date_time":  remote.Date,
		"seat_rows":  remote.Rows,
		"seat_cols":  remote.Cols,
		"unit_price": remote.UnitPrice,
	}
	if err := s.repo.Update(ctx, existing.ID, updates); err != nil {
		return false, fmt.Errorf("update failed: %w", err)
	}
	s.invalidateEventCache(ctx, existing.ID.String())
	return false, nil
}

func (s *service) invalidateEventCache(ctx context.Context, id string) {
	if s.cacheService == nil {
		return
	}
	_ = s.cacheService.Delete(ctx, constants.BuildEventDetailKey(id))
}

func (s *service) invalidateListCache(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	_ = s.cacheService.Delete(ctx, constants.BuildEventsListKey(true))
	_ = s.cacheService.Delete(ctx, constants.BuildEventsListKey(false))
}
