package database

import (
	"gorm.io/gorm"
)

// constraintStatements are applied after AutoMigrate, in order. Each
// statement must be safe to re-run on every boot, so constraints that
// PostgreSQL cannot guard with IF NOT EXISTS (ADD CONSTRAINT has no such
// form) are expressed as unique indexes instead.
var constraintStatements = []string{
	// At most one non-terminal purchase session per user. The application
	// re-checks this before starting a session; the partial index is the
	// race guard of last resort.
	`CREATE UNIQUE INDEX IF NOT EXISTS unique_active_session_per_user
	 ON purchase_sessions (user_id)
	 WHERE state <> 'COMPLETED';`,

	// A seat coordinate appears at most once per session.
	`CREATE UNIQUE INDEX IF NOT EXISTS unique_seat_per_session
	 ON selected_seats (session_id, seat_row, seat_col);`,

	// Sale ledger lookups by user and event.
	`CREATE INDEX IF NOT EXISTS idx_sales_user_event
	 ON sales (user_id, event_id);`,
}

// MigrateConstraints adds critical database constraints for concurrency control
func MigrateConstraints(db *gorm.DB) error {
	for _, stmt := range constraintStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
