package database

import (
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	// registers the cgo-free "sqlite" database/sql driver
	_ "modernc.org/sqlite"

	"resortbooking/internal/domain"
)

// Connect opens PostgreSQL when the DSN looks like a postgres URL, otherwise
// falls back to SQLite (local development and tests).
func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// GORM stores check_in/check_out as timestamptz, so the range constructor
// must be tstzrange; tsrange does not resolve against those columns.
const bookingsNoOverlapSQL = `ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
	EXCLUDE USING gist (
		room_id WITH =,
		tstzrange(check_in, check_out) WITH &&
	) WHERE (status <> 'cancelled')`

// Migrate brings the schema up to date. On PostgreSQL it additionally installs
// the no-overlap exclusion constraint that backstops the transactional
// availability check.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Room{},
		&domain.Booking{},
		&domain.Payment{},
	); err != nil {
		return err
	}

	if db.Dialector.Name() == "postgres" {
		stmts := []string{
			`CREATE EXTENSION IF NOT EXISTS btree_gist`,
			bookingsNoOverlapSQL,
		}
		for _, stmt := range stmts {
			if err := db.Exec(stmt).Error; err != nil {
				if strings.Contains(err.Error(), "already exists") {
					continue
				}
				return err
			}
		}
	}
	return nil
}
