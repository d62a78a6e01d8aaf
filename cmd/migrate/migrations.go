package main

import (
	"gorm.io/gorm"

	"github.com/bracula/campus/internal/models"
)

// runMigrations executes all database migrations
func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}

	// Run custom migrations
	return runCustomMigrations(db)
}

// runCustomMigrations handles schema changes AutoMigrate can't handle
func runCustomMigrations(db *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		addEventListingIndex,
		addStatusChecks,
	}

	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}

	return nil
}

// addEventListingIndex serves the type + date filters of the event list.
func addEventListingIndex(db *gorm.DB) error {
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_events_type_date
		ON events(event_type, event_date)
	`).Error
}

func addStatusChecks(db *gorm.DB) error {
	stmts := []string{
		`DO $$ BEGIN
			ALTER TABLE event_registrations ADD CONSTRAINT chk_event_registrations_status
			CHECK (status IN ('registered', 'cancelled'));
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
		`DO $$ BEGIN
			ALTER TABLE accommodations ADD CONSTRAINT chk_accommodations_status
			CHECK (status IN ('available', 'rented', 'unavailable'));
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			return err
		}
	}
	return nil
}
