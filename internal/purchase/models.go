package purchase

import (
	"time"

	"github.com/google/uuid"
)

// PurchaseSession is one user's active purchase attempt. At most one
// non-terminal session exists per user; a partial unique index on
// (user_id) WHERE state <> 'COMPLETED' backs that invariant.
type PurchaseSession struct {
	ID             uuid.UUID    `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID         uuid.UUID    `json:"user_id" gorm:"type:uuid;not null;index"`
	EventID        uuid.UUID    `json:"event_id" gorm:"type:uuid;not null;index"`
	State          SessionState `json:"state" gorm:"type:varchar(20);not null;default:'SELECTING_SEATS'"`
	StartedAt      time.Time    `json:"started_at" gorm:"not null"`
	LastActivityAt time.Time    `json:"last_activity_at" gorm:"not null"`
	ExpiresAt      time.Time    `json:"expires_at" gorm:"not null"`
	Active         bool         `json:"active" gorm:"default:true"`

	Seats []SelectedSeat `json:"seats,omitempty" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (PurchaseSession) TableName() string {
	return "purchase_sessions"
}

// IsExpired reports whether the session's inactivity window has elapsed.
func (s *PurchaseSession) IsExpired(now time.Time, window time.Duration) bool {
	return now.Sub(s.LastActivityAt) > window
}

// SelectedSeat is a (row, column) pair chosen within a session. The occupant
// name is attached in the assignment step and stays empty until then.
type SelectedSeat struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	SessionID    uuid.UUID `json:"session_id" gorm:"type:uuid;not null;index"`
	SeatRow      int       `json:"seat_row" gorm:"not null;check:seat_row >= 1"`
	SeatCol      int       `json:"seat_col" gorm:"not null;check:seat_col >= 1"`
	OccupantName string    `json:"occupant_name" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (SelectedSeat) TableName() string {
	return "selected_seats"
}

// Sale is the audit ledger of confirm attempts. Every confirm attempt writes
// exactly one row, successful or not, and rows are never deleted.
type Sale struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	SessionID    *uuid.UUID `json:"session_id" gorm:"type:uuid;index"`
	EventID      uuid.UUID  `json:"event_id" gorm:"type:uuid;not null"`
	UserID       uuid.UUID  `json:"user_id" gorm:"type:uuid;not null"`
	RemoteSaleID *int64     `json:"remote_sale_id"`
	SaleDate     time.Time  `json:"sale_date" gorm:"not null"`
	TotalPrice   float64    `json:"total_price" gorm:"not null;check:total_price >= 0"`
	Successful   bool       `json:"successful" gorm:"not null;default:false"`
	SyncStatus   SyncStatus `json:"sync_status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	Message      string     `json:"message" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Sale) TableName() string {
	return "sales"
}

// CachedSession is the snapshot mirrored into redis under
// session:user:{userID}. Writes always replace the whole snapshot; the
// durable row stays authoritative for recovery.
type CachedSession struct {
	SessionID      uuid.UUID    `json:"session_id"`
	UserID         uuid.UUID    `json:"user_id"`
	EventID        uuid.UUID    `json:"event_id"`
	State          SessionState `json:"state"`
	StartedAt      time.Time    `json:"started_at"`
	LastActivityAt time.Time    `json:"last_activity_at"`
	ExpiresAt      time.Time    `json:"expires_at"`
}

func snapshotOf(session *PurchaseSession) *CachedSession {
	return &CachedSession{
		SessionID:      session.ID,
		UserID:         session.UserID,
		EventID:        session.EventID,
		State:          session.State,
		StartedAt:      session.StartedAt,
		LastActivityAt: session.LastActivityAt,
		ExpiresAt:      session.ExpiresAt,
	}
}
