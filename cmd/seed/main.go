package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"boleteria/internal/events"
	"boleteria/internal/shared/config"
	"boleteria/internal/shared/database"
	"boleteria/internal/users"

	"github.com/google/uuid"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("Starting boleteria database seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("Seeding completed.")
}

// CleanDatabase truncates all tables in the correct order (respecting
// foreign key constraints).
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"sales",
		"selected_seats",
		"purchase_sessions",
		"events",
		"users",
	}

	gormDB := s.db.GetPostgreSQL()
	for _, table := range tables {
		if err := gormDB.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}

	// Reset the session cache so no stale entries survive a reseed.
	if s.db.Redis != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			return fmt.Errorf("failed to flush redis: %w", err)
		}
	}

	return nil
}

func (s *Seeder) SeedAll() error {
	if err := s.SeedUsers(); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	if err := s.SeedEvents(); err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}
	return nil
}

func (s *Seeder) SeedUsers() error {
	gormDB := s.db.GetPostgreSQL()

	seedUsers := []users.User{
		{
			ID:        uuid.New(),
			FirstName: "Admin",
			LastName:  "Principal",
			Role:      users.RoleAdmin,
			Email:     "admin@boleteria.local",
		},
		{
			ID:        uuid.New(),
			FirstName: "Ana",
			LastName:  "Gomez",
			Role:      users.RoleUser,
			Email:     "ana.gomez@example.com",
		},
		{
			ID:        uuid.New(),
			FirstName: "Luis",
			LastName:  "Diaz",
			Role:      users.RoleUser,
			Email:     "luis.diaz@example.com",
		},
	}

	for _, user := range seedUsers {
		if err := gormDB.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", user.Email, err)
		}
		fmt.Printf("  user: %s (%s)\n", user.Email, user.Role)
	}

	return nil
}

func (s *Seeder) SeedEvents() error {
	gormDB := s.db.GetPostgreSQL()

	remoteIDs := []int64{101, 102, 103}
	seedEvents := []events.Event{
		{
			ID:            uuid.New(),
			Name:          "Concierto Sinfonico",
			Description:   "Orquesta en vivo, sala principal",
			DateTime:      time.Now().AddDate(0, 1, 0),
			SeatRows:      10,
			SeatCols:      20,
			UnitPrice:     150.00,
			RemoteEventID: &remoteIDs[0],
			Active:        true,
		},
		{
			ID:            uuid.New(),
			Name:          "Obra de Teatro",
			Description:   "Funcion nocturna",
			DateTime:      time.Now().AddDate(0, 2, 0),
			SeatRows:      5,
			SeatCols:      5,
			UnitPrice:     100.00,
			RemoteEventID: &remoteIDs[1],
			Active:        true,
		},
		{
			// Not yet configured for sale: no grid dimensions.
			ID:            uuid.New(),
			Name:          "Festival Abierto",
			Description:   "Pendiente de configuracion",
			DateTime:      time.Now().AddDate(0, 3, 0),
			UnitPrice:     80.00,
			RemoteEventID: &remoteIDs[2],
			Active:        false,
		},
	}

	for _, event := range seedEvents {
		if err := gormDB.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to create event %s: %w", event.Name, err)
		}
		fmt.Printf("  event: %s (%dx%d)\n", event.Name, event.SeatRows, event.SeatCols)
	}

	return nil
}
