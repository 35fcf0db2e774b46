package purchase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the durable SessionStore: sessions, their selected seats and
// the Sale audit ledger.
type Repository interface {
	CreateSession(ctx context.Context, session *PurchaseSession) error
	GetSessionByID(ctx context.Context, id uuid.UUID) (*PurchaseSession, error)
	UpdateSession(ctx context.Context, session *PurchaseSession) error

	// FindCurrentByUser returns the single non-terminal session for a user,
	// or nil when none exists. Finding more than one is an invariant
	// violation and returns ErrMultipleActiveSessions.
	FindCurrentByUser(ctx context.Context, userID uuid.UUID) (*PurchaseSession, error)

	GetSeats(ctx context.Context, sessionID uuid.UUID) ([]SelectedSeat, error)
	// ReplaceSeats atomically swaps the session's seat set for the given one.
	ReplaceSeats(ctx context.Context, sessionID uuid.UUID, seats []SelectedSeat) error
	UpdateSeatNames(ctx context.Context, sessionID uuid.UUID, seats []SelectedSeat) error
	DeleteSeats(ctx context.Context, sessionID uuid.UUID) error

	CreateSale(ctx context.Context, sale *Sale) error
	CountFailedSales(ctx context.Context, sessionID uuid.UUID) (int64, error)
	ListSalesByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Sale, error)
	ListSalesByEvent(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]Sale, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSession(ctx context.Context, session *PurchaseSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create purchase session: %w", err)
	}
	return nil
}

func (r *repository) GetSessionByID(ctx context.Context, id uuid.UUID) (*PurchaseSession, error) {
	var session PurchaseSession
	err := r.db.WithContext(ctx).
		Preload("Seats", func(db *gorm.DB) *gorm.DB {
			return db.Order("seat_row ASC, seat_col ASC")
		}).
		First(&session, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repository) UpdateSession(ctx context.Context, session *PurchaseSession) error {
	session.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).
		Model(&PurchaseSession{}).
		Where("id = ?", session.ID).
		Updates(map[string]interface{}{
			"state":            session.State,
			"last_activity_at": session.LastActivityAt,
			"expires_at":       session.ExpiresAt,
			"active":           session.Active,
			"updated_at":       session.UpdatedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update purchase session: %w", err)
	}
	return nil
}

func (r *repository) FindCurrentByUser(ctx context.Context, userID uuid.UUID) (*PurchaseSession, error) {
	var sessions []PurchaseSession
	err := r.db.WithContext(ctx).
		Preload("Seats", func(db *gorm.DB) *gorm.DB {
			return db.Order("seat_row ASC, seat_col ASC")
		}).
		Where("user_id = ? AND state <> ?", userID, StateCompleted).
		Limit(2).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query current session: %w", err)
	}

	switch len(sessions) {
	case 0:
		return nil, nil
	case 1:
		return &sessions[0], nil
	default:
		return nil, fmt.Errorf("%w: user %s", ErrMultipleActiveSessions, userID)
	}
}

func (r *repository) GetSeats(ctx context.Context, sessionID uuid.UUID) ([]SelectedSeat, error) {
	var seats []SelectedSeat
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("seat_row ASC, seat_col ASC").
		Find(&seats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load selected seats: %w", err)
	}
	return seats, nil
}

func (r *repository) ReplaceSeats(ctx context.Context, sessionID uuid.UUID, seats []SelectedSeat) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&SelectedSeat{}).Error; err != nil {
			return fmt.Errorf("failed to delete prior seats: %w", err)
		}
		for i := range seats {
			seats[i].SessionID = sessionID
		}
		if len(seats) > 0 {
			if err := tx.Create(&seats).Error; err != nil {
				return fmt.Errorf("failed to insert seats: %w", err)
			}
		}
		return nil
	})
}

func (r *repository) UpdateSeatNames(ctx context.Context, sessionID uuid.UUID, seats []SelectedSeat) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, seat := range seats {
			err := tx.Model(&SelectedSeat{}).
				Where("session_id = ? AND seat_row = ? AND seat_col = ?", sessionID, seat.SeatRow, seat.SeatCol).
				Update("occupant_name", seat.OccupantName).Error
			if err != nil {
				return fmt.Errorf("failed to update seat name (%d,%d): %w", seat.SeatRow, seat.SeatCol, err)
			}
		}
		return nil
	})
}

func (r *repository) DeleteSeats(ctx context.Context, sessionID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&SelectedSeat{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete selected seats: %w", err)
	}
	return nil
}

func (r *repository) CreateSale(ctx context.Context, sale *Sale) error {
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		return fmt.Errorf("failed to create sale record: %w", err)
	}
	return nil
}

func (r *repository) CountFailedSales(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Sale{}).
		Where("session_id = ? AND successful = ?", sessionID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count failed sales: %w", err)
	}
	return count, nil
}

func (r *repository) ListSalesByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Sale, error) {
	var sales []Sale
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sales by user: %w", err)
	}
	return sales, nil
}

func (r *repository) ListSalesByEvent(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]Sale, error) {
	var sales []Sale
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sales by event: %w", err)
	}
	return sales, nil
}
