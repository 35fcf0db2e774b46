package purchase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"boleteria/internal/availability"
	"boleteria/internal/catedra"
	"boleteria/internal/events"
	"boleteria/internal/shared/config"
	"boleteria/pkg/logger"

	"github.com/google/uuid"
)

// EventSource resolves the local event record (to avoid a dependency on the
// full events service).
type EventSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*events.Event, error)
}

// RemoteLocker is the slice of the remote client the coordinator needs.
type RemoteLocker interface {
	LockSeats(ctx context.Context, remoteEventID int64, seats []catedra.SeatRef) (*catedra.LockResult, error)
	SellSeats(ctx context.Context, req catedra.SaleRequest) (*catedra.SaleResult, error)
}

// SalePublisher pushes completed-sale facts to interested consumers.
// Publishing is best effort and never fails the sale.
type SalePublisher interface {
	PublishSaleCompleted(ctx context.Context, sale *Sale, seats []SelectedSeat) error
}

// SeatSelection is a requested (row, column) coordinate.
type SeatSelection struct {
	Row int `json:"row" validate:"min=1"`
	Col int `json:"col" validate:"min=1"`
}

// SeatKey is the wire key for one seat in a name-assignment map, "row-col".
func SeatKey(row, col int) string {
	return fmt.Sprintf("%d-%d", row, col)
}

// Service is the purchase session coordinator. All operations are keyed by
// the acting user; a user has at most one live session at a time.
type Service interface {
	Start(ctx context.Context, userID, eventID uuid.UUID) (*PurchaseSession, error)

	// GetState returns the user's live session, or (nil, nil) when there is
	// none. A stale durable session found here is expired in place.
	GetState(ctx context.Context, userID uuid.UUID) (*PurchaseSession, error)

	// Touch resets the sliding inactivity window. Fails when no cached
	// session exists.
	Touch(ctx context.Context, userID uuid.UUID) error

	SelectSeats(ctx context.Context, userID uuid.UUID, seats []SeatSelection) (*PurchaseSession, error)
	AssignNames(ctx context.Context, userID uuid.UUID, names map[string]string) (*PurchaseSession, error)
	Confirm(ctx context.Context, userID uuid.UUID) (*Sale, error)
	Cancel(ctx context.Context, userID uuid.UUID) error

	ListSalesByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Sale, error)
	ListSalesByEvent(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]Sale, error)

	// SetPublisher wires an optional completed-sale publisher.
	SetPublisher(p SalePublisher)
}

type service struct {
	repo         Repository
	cache        SessionCache
	events       EventSource
	availability availability.Service
	remote       RemoteLocker
	publisher    SalePublisher
	cfg          config.PurchaseConfig
	log          *logger.Logger
}

func NewService(
	repo Repository,
	cache SessionCache,
	eventSource EventSource,
	availabilitySvc availability.Service,
	remote RemoteLocker,
	cfg config.PurchaseConfig,
) Service {
	return &service{
		repo:         repo,
		cache:        cache,
		events:       eventSource,
		availability: availabilitySvc,
		remote:       remote,
		cfg:          cfg,
		log:          logger.GetDefault(),
	}
}

func (s *service) SetPublisher(p SalePublisher) {
	s.publisher = p
}

func (s *service) Start(ctx context.Context, userID, eventID uuid.UUID) (*PurchaseSession, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, newError(CodeNotFound, "event not found")
	}
	if !event.Active {
		return nil, newError(CodeInvalidRequest, "event is not active")
	}
	if !event.IsConfigured() {
		return nil, newError(CodeInvalidRequest, "event has no seat grid or remote reference configured")
	}

	// Starting a new session always wins over an existing one.
	existing, err := s.repo.FindCurrentByUser(ctx, userID)
	if err != nil {
		return nil, wrapError(CodeInternal, "failed to look up current session", err)
	}
	if existing != nil {
		if err := s.terminateSession(ctx, existing); err != nil {
			return nil, wrapError(CodeInternal, "failed to terminate prior session", err)
		}
	}

	now := timeNow()
	session := &PurchaseSession{
		ID:             uuid.New(),
		UserID:         userID,
		EventID:        eventID,
		State:          StateSelectingSeats,
		StartedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(s.cfg.SessionWindow),
		Active:         true,
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, wrapError(CodeInternal, "failed to create session", err)
	}
	s.mirrorToCache(ctx, session)

	s.log.LogSessionStarted(ctx, session.ID.String(), eventID.String(), userID.String())
	return session, nil
}

func (s *service) GetState(ctx context.Context, userID uuid.UUID) (*PurchaseSession, error) {
	return s.resolveSession(ctx, userID)
}

func (s *service) Touch(ctx context.Context, userID uuid.UUID) error {
	snapshot, err := s.cache.Get(ctx, userID.String())
	if err != nil {
		return wrapError(CodeInternal, "failed to read session cache", err)
	}
	if snapshot == nil {
		return newError(CodeNotFound, "no active session")
	}

	session, err := s.repo.GetSessionByID(ctx, snapshot.SessionID)
	if err != nil {
		return wrapError(CodeInternal, "failed to load session", err)
	}

	now := timeNow()
	session.LastActivityAt = now
	session.ExpiresAt = now.Add(s.cfg.SessionWindow)
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return wrapError(CodeInternal, "failed to update session activity", err)
	}
	s.mirrorToCache(ctx, session)
	return nil
}

func (s *service) SelectSeats(ctx context.Context, userID uuid.UUID, seats []SeatSelection) (*PurchaseSession, error) {
	if len(seats) == 0 {
		return nil, newError(CodeInvalidRequest, "at least one seat is required")
	}
	if len(seats) > s.cfg.MaxSeatsPerSession {
		return nil, newError(CodeInvalidRequest,
			fmt.Sprintf("at most %d seats per session", s.cfg.MaxSeatsPerSession))
	}
	seen := make(map[string]bool, len(seats))
	for _, seat := range seats {
		key := SeatKey(seat.Row, seat.Col)
		if seen[key] {
			return nil, newError(CodeInvalidRequest, fmt.Sprintf("duplicate seat %s", key))
		}
		seen[key] = true
	}

	session, err := s.resolveSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, newError(CodeNotFound, "no active session")
	}
	if !session.State.CanSelectSeats() {
		return nil, newError(CodeInvalidState,
			fmt.Sprintf("cannot select seats in state %s", session.State))
	}

	event, err := s.events.GetByID(ctx, session.EventID)
	if err != nil {
		return nil, wrapError(CodeInternal, "failed to load event", err)
	}
	for _, seat := range seats {
		if !event.InBounds(seat.Row, seat.Col) {
			return nil, newError(CodeInvalidRequest,
				fmt.Sprintf("seat %s is outside the event grid", SeatKey(seat.Row, seat.Col)))
		}
	}

	// Local availability gate before any remote lock attempt.
	matrix, err := s.buildAvailability(ctx, session.EventID)
	if err != nil {
		return nil, err
	}
	var unavailable []string
	for _, seat := range seats {
		if !matrix.IsAvailable(seat.Row, seat.Col) {
			unavailable = append(unavailable, SeatKey(seat.Row, seat.Col))
		}
	}
	if len(unavailable) > 0 {
		return nil, newError(CodeSeatUnavailable,
			fmt.Sprintf("seats not available: %s", strings.Join(unavailable, ", ")))
	}

	refs := make([]catedra.SeatRef, len(seats))
	for i, seat := range seats {
		refs[i] = catedra.SeatRef{Row: seat.Row, Col: seat.Col}
	}

	var result *catedra.LockResult
	err = s.withAuthRetry(ctx, func() error {
		var lockErr error
		result, lockErr = s.remote.LockSeats(ctx, *event.RemoteEventID, refs)
		return lockErr
	})
	if err != nil {
		return nil, s.mapRemoteError(ctx, "lock", err)
	}
	// Overall success is necessary but not sufficient; every per-seat
	// outcome must report success.
	if !result.AllSeatsLocked() {
		return nil, newError(CodeLockRejected,
			fmt.Sprintf("remote lock refused: %s", result.Message))
	}

	newSeats := make([]SelectedSeat, len(seats))
	for i, seat := range seats {
		newSeats[i] = SelectedSeat{SessionID: session.ID, SeatRow: seat.Row, SeatCol: seat.Col}
	}
	if err := s.repo.ReplaceSeats(ctx, session.ID, newSeats); err != nil {
		return nil, wrapError(CodeInternal, "failed to persist seat selection", err)
	}

	now := timeNow()
	session.State = StateLoadingData
	session.LastActivityAt = now
	session.ExpiresAt = now.Add(s.cfg.SessionWindow)
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, wrapError(CodeInternal, "failed to update session", err)
	}
	s.mirrorToCache(ctx, session)

	session.Seats = newSeats
	return session, nil
}

func (s *service) AssignNames(ctx context.Context, userID uuid.UUID, names map[string]string) (*PurchaseSession, error) {
	session, err := s.resolveSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, newError(CodeNotFound, "no active session")
	}
	if session.State != StateLoadingData {
		return nil, newError(CodeInvalidState,
			fmt.Sprintf("cannot assign names in state %s", session.State))
	}
	if len(session.Seats) == 0 {
		return nil, newError(CodeInvalidState, "session has no selected seats")
	}

	// The name map must cover exactly the selected seats.
	if len(names) != len(session.Seats) {
		return nil, newError(CodeInvalidRequest,
			fmt.Sprintf("expected names for %d seats, got %d", len(session.Seats), len(names)))
	}
	assigned := make([]SelectedSeat, len(session.Seats))
	for i, seat := range session.Seats {
		key := SeatKey(seat.SeatRow, seat.SeatCol)
		name, ok := names[key]
		if !ok {
			return nil, newError(CodeInvalidRequest, fmt.Sprintf("missing name for seat %s", key))
		}
		name = strings.TrimSpace(name)
		if utf8.RuneCountInString(name) < s.cfg.MinOccupantNameLen {
			return nil, newError(CodeInvalidRequest,
				fmt.Sprintf("name for seat %s must have at least %d characters", key, s.cfg.MinOccupantNameLen))
		}
		assigned[i] = seat
		assigned[i].OccupantName = name
	}

	if err := s.repo.UpdateSeatNames(ctx, session.ID, assigned); err != nil {
		return nil, wrapError(CodeInternal, "failed to persist occupant names", err)
	}

	now := timeNow()
	session.LastActivityAt = now
	session.ExpiresAt = now.Add(s.cfg.SessionWindow)
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, wrapError(CodeInternal, "failed to update session", err)
	}
	s.mirrorToCache(ctx, session)

	session.Seats = assigned
	return session, nil
}

func (s *service) Confirm(ctx context.Context, userID uuid.UUID) (*Sale, error) {
	session, err := s.resolveSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, newError(CodeNotFound, "no active session")
	}
	if session.State != StateLoadingData {
		return nil, newError(CodeInvalidState,
			fmt.Sprintf("cannot confirm in state %s", session.State))
	}
	if len(session.Seats) == 0 {
		return nil, newError(CodeInvalidState, "session has no selected seats")
	}
	for _, seat := range session.Seats {
		if utf8.RuneCountInString(strings.TrimSpace(seat.OccupantName)) < s.cfg.MinOccupantNameLen {
			return nil, newError(CodeInvalidState,
				fmt.Sprintf("seat %s has no valid occupant name", SeatKey(seat.SeatRow, seat.SeatCol)))
		}
	}

	// Each attempt performs a real remote lock/sell call, so attempts are
	// bounded. The failed rows of the sale ledger are the attempt counter.
	failed, err := s.repo.CountFailedSales(ctx, session.ID)
	if err != nil {
		return nil, wrapError(CodeInternal, "failed to count confirm attempts", err)
	}
	if failed >= int64(s.cfg.MaxConfirmAttempts) {
		return nil, newError(CodeTooManyAttempts,
			fmt.Sprintf("confirm attempted %d times; cancel the session and start over", failed))
	}

	event, err := s.events.GetByID(ctx, session.EventID)
	if err != nil {
		return nil, wrapError(CodeInternal, "failed to load event", err)
	}
	totalPrice := event.UnitPrice * float64(len(session.Seats))

	// Optimistic re-validation: another buyer may have won a seat while
	// names were being entered.
	matrix, err := s.buildAvailability(ctx, session.EventID)
	if err != nil {
		return nil, err
	}
	var toRelock []catedra.SeatRef
	for _, seat := range session.Seats {
		entry := matrix.At(seat.SeatRow, seat.SeatCol)
		if entry == nil {
			return nil, newError(CodeInternal,
				fmt.Sprintf("selected seat %s is outside the current grid", SeatKey(seat.SeatRow, seat.SeatCol)))
		}
		switch entry.State {
		case availability.StateSold:
			s.recordAttempt(ctx, session, totalPrice, nil, SyncError,
				fmt.Sprintf("seat %s already sold", SeatKey(seat.SeatRow, seat.SeatCol)))
			return nil, newError(CodeSeatUnavailable,
				fmt.Sprintf("seat %s was sold to another buyer", SeatKey(seat.SeatRow, seat.SeatCol)))
		case availability.StateAvailable:
			// Our lock expired; re-lock before selling.
			toRelock = append(toRelock, catedra.SeatRef{Row: seat.SeatRow, Col: seat.SeatCol})
		}
	}

	if len(toRelock) > 0 {
		var relock *catedra.LockResult
		err = s.withAuthRetry(ctx, func() error {
			var lockErr error
			relock, lockErr = s.remote.LockSeats(ctx, *event.RemoteEventID, toRelock)
			return lockErr
		})
		// The re-lock outcome is authoritative: another user may have taken
		// the seat in the interim.
		if err != nil {
			s.recordAttempt(ctx, session, totalPrice, nil, syncStatusFor(err), "re-lock failed: "+err.Error())
			return nil, s.mapRemoteError(ctx, "re-lock", err)
		}
		if !relock.AllSeatsLocked() {
			s.recordAttempt(ctx, session, totalPrice, nil, SyncError, "re-lock refused: "+relock.Message)
			return nil, newError(CodeLockRejected,
				fmt.Sprintf("expired lock could not be re-acquired: %s", relock.Message))
		}
	}

	saleSeats := make([]catedra.SaleSeat, len(session.Seats))
	for i, seat := range session.Seats {
		saleSeats[i] = catedra.SaleSeat{
			Row:          seat.SeatRow,
			Col:          seat.SeatCol,
			OccupantName: seat.OccupantName,
		}
	}
	saleReq := catedra.SaleRequest{
		RemoteEventID: *event.RemoteEventID,
		Date:          timeNow(),
		TotalPrice:    totalPrice,
		Seats:         saleSeats,
	}

	var result *catedra.SaleResult
	err = s.withAuthRetry(ctx, func() error {
		var sellErr error
		result, sellErr = s.remote.SellSeats(ctx, saleReq)
		return sellErr
	})
	if err != nil {
		// The attempt is recorded either way; the session stays in
		// LOADING_DATA so the user can retry without re-selecting.
		s.recordAttempt(ctx, session, totalPrice, nil, syncStatusFor(err), err.Error())
		return nil, s.mapRemoteError(ctx, "sell", err)
	}
	if !result.AllSeatsSold() {
		s.recordAttempt(ctx, session, totalPrice, nil, SyncError, result.Message)
		return nil, newError(CodeSaleRejected,
			fmt.Sprintf("remote sale refused: %s", result.Message))
	}

	sale := &Sale{
		ID:           uuid.New(),
		SessionID:    &session.ID,
		EventID:      session.EventID,
		UserID:       session.UserID,
		RemoteSaleID: result.RemoteSaleID,
		SaleDate:     saleReq.Date,
		TotalPrice:   totalPrice,
		Successful:   true,
		SyncStatus:   SyncSynchronized,
		Message:      result.Message,
	}
	if err := s.repo.CreateSale(ctx, sale); err != nil {
		// The remote sale went through; losing the local row would lose the
		// audit trail, so this is fatal for the request.
		return nil, wrapError(CodeInternal, "remote sale succeeded but recording it failed", err)
	}

	soldSeats := session.Seats
	session.State = StateCompleted
	session.Active = false
	session.LastActivityAt = timeNow()
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, wrapError(CodeInternal, "failed to complete session", err)
	}
	if err := s.repo.DeleteSeats(ctx, session.ID); err != nil {
		return nil, wrapError(CodeInternal, "failed to clear selected seats", err)
	}
	if err := s.cache.Delete(ctx, userID.String()); err != nil {
		s.log.WarnContext(ctx, "failed to evict session cache entry", "user_id", userID.String(), "error", err.Error())
	}

	s.log.LogSaleRecorded(ctx, sale.ID.String(), sale.EventID.String(), sale.UserID.String(),
		sale.SyncStatus.String(), sale.Successful)

	if s.publisher != nil {
		if err := s.publisher.PublishSaleCompleted(ctx, sale, soldSeats); err != nil {
			s.log.WarnContext(ctx, "failed to publish sale event", "sale_id", sale.ID.String(), "error", err.Error())
		}
	}

	return sale, nil
}

func (s *service) Cancel(ctx context.Context, userID uuid.UUID) error {
	session, err := s.repo.FindCurrentByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrMultipleActiveSessions) {
			return wrapError(CodeInternal, "session invariant violated", err)
		}
		return wrapError(CodeInternal, "failed to look up current session", err)
	}
	if session != nil {
		if err := s.terminateSession(ctx, session); err != nil {
			return wrapError(CodeInternal, "failed to terminate session", err)
		}
	}
	// Cache eviction is unconditional so cancel stays idempotent.
	if err := s.cache.Delete(ctx, userID.String()); err != nil {
		s.log.WarnContext(ctx, "failed to evict session cache entry", "user_id", userID.String(), "error", err.Error())
	}
	return nil
}

func (s *service) ListSalesByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Sale, error) {
	return s.repo.ListSalesByUser(ctx, userID, limit, offset)
}

func (s *service) ListSalesByEvent(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]Sale, error) {
	return s.repo.ListSalesByEvent(ctx, eventID, limit, offset)
}

// resolveSession finds the user's live session: cache first, then the
// durable store. A durable session past its inactivity window is expired in
// place; a fresh one found after a cache miss is rehydrated into the cache.
func (s *service) resolveSession(ctx context.Context, userID uuid.UUID) (*PurchaseSession, error) {
	snapshot, err := s.cache.Get(ctx, userID.String())
	if err != nil {
		s.log.WarnContext(ctx, "session cache read failed, falling back to store", "error", err.Error())
	}
	if snapshot != nil {
		session, err := s.repo.GetSessionByID(ctx, snapshot.SessionID)
		if err == nil {
			if session.State.IsTerminal() {
				// Stale cache entry for a finished session.
				_ = s.cache.Delete(ctx, userID.String())
				return nil, nil
			}
			return session, nil
		}
		s.log.WarnContext(ctx, "cached session missing from store", "session_id", snapshot.SessionID.String())
		_ = s.cache.Delete(ctx, userID.String())
	}

	session, err := s.repo.FindCurrentByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrMultipleActiveSessions) {
			return nil, wrapError(CodeInternal, "session invariant violated", err)
		}
		return nil, wrapError(CodeInternal, "failed to look up current session", err)
	}
	if session == nil {
		return nil, nil
	}

	if session.IsExpired(timeNow(), s.cfg.SessionWindow) {
		s.log.LogSessionExpired(ctx, session.ID.String(), userID.String())
		if err := s.terminateSession(ctx, session); err != nil {
			return nil, wrapError(CodeInternal, "failed to expire session", err)
		}
		return nil, nil
	}

	// Recovery path after cache eviction.
	s.mirrorToCache(ctx, session)
	return session, nil
}

// terminateSession marks a session COMPLETED and removes its seats.
func (s *service) terminateSession(ctx context.Context, session *PurchaseSession) error {
	if err := s.repo.DeleteSeats(ctx, session.ID); err != nil {
		return err
	}
	session.State = StateCompleted
	session.Active = false
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, session.UserID.String()); err != nil {
		s.log.WarnContext(ctx, "failed to evict session cache entry", "user_id", session.UserID.String(), "error", err.Error())
	}
	return nil
}

// mirrorToCache writes the snapshot best effort; the durable row already
// holds the truth.
func (s *service) mirrorToCache(ctx context.Context, session *PurchaseSession) {
	if err := s.cache.Put(ctx, session.UserID.String(), snapshotOf(session)); err != nil {
		s.log.WarnContext(ctx, "failed to mirror session to cache", "session_id", session.ID.String(), "error", err.Error())
	}
}

// buildAvailability wraps the matrix builder with auth retry and remote
// error mapping.
func (s *service) buildAvailability(ctx context.Context, eventID uuid.UUID) (*availability.Matrix, error) {
	var matrix *availability.Matrix
	err := s.withAuthRetry(ctx, func() error {
		var buildErr error
		matrix, buildErr = s.availability.BuildAvailability(ctx, eventID)
		return buildErr
	})
	if err != nil {
		return nil, s.mapRemoteError(ctx, "availability", err)
	}
	return matrix, nil
}

// withAuthRetry runs a logical remote operation, retrying it exactly once
// after a token refresh. The remote client never retries business calls
// itself; it only refreshes the credential and signals.
func (s *service) withAuthRetry(ctx context.Context, fn func() error) error {
	err := fn()
	if !errors.Is(err, catedra.ErrTokenExpired) {
		return err
	}
	err = fn()
	if errors.Is(err, catedra.ErrTokenExpired) {
		return catedra.ErrUnauthorized
	}
	return err
}

// mapRemoteError turns remote client failures into domain errors.
func (s *service) mapRemoteError(ctx context.Context, operation string, err error) error {
	s.log.LogRemoteCallFailed(ctx, operation, err)
	switch {
	case errors.Is(err, catedra.ErrRemoteUnavailable):
		return wrapError(CodeRemoteUnavailable, "remote ticketing authority unavailable, try again", err)
	case errors.Is(err, catedra.ErrUnauthorized):
		return wrapError(CodeUnauthorized, "remote ticketing authority rejected our credentials", err)
	case errors.Is(err, catedra.ErrRemoteRejected):
		if operation == "sell" {
			return wrapError(CodeSaleRejected, "remote ticketing authority rejected the sale", err)
		}
		return wrapError(CodeLockRejected, "remote ticketing authority rejected the lock", err)
	default:
		if _, ok := AsError(err); ok {
			return err
		}
		return wrapError(CodeInternal, "unexpected remote failure", err)
	}
}

// recordAttempt writes one failed-attempt row to the sale ledger. Ledger
// write failures are logged, not surfaced; the caller's error matters more.
func (s *service) recordAttempt(ctx context.Context, session *PurchaseSession, totalPrice float64, remoteSaleID *int64, status SyncStatus, message string) *Sale {
	sale := &Sale{
		ID:           uuid.New(),
		SessionID:    &session.ID,
		EventID:      session.EventID,
		UserID:       session.UserID,
		RemoteSaleID: remoteSaleID,
		SaleDate:     timeNow(),
		TotalPrice:   totalPrice,
		Successful:   false,
		SyncStatus:   status,
		Message:      message,
	}
	if err := s.repo.CreateSale(ctx, sale); err != nil {
		s.log.ErrorContext(ctx, "failed to record sale attempt", "session_id", session.ID.String(), "error", err.Error())
		return nil
	}
	s.log.LogSaleRecorded(ctx, sale.ID.String(), sale.EventID.String(), sale.UserID.String(),
		sale.SyncStatus.String(), sale.Successful)
	return sale
}

// syncStatusFor decides the ledger state for a failed remote call:
// connectivity failures stay PENDING (retryable sync), rejections are ERROR.
func syncStatusFor(err error) SyncStatus {
	if errors.Is(err, catedra.ErrRemoteUnavailable) {
		return SyncPending
	}
	return SyncError
}
