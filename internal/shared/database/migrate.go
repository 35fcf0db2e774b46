package database

import (
	"boleteria/internal/events"
	"boleteria/internal/purchase"
	"boleteria/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&events.Event{},
		&purchase.PurchaseSession{},
		&purchase.SelectedSeat{},
		&purchase.Sale{},
	)
}
