package infra

import (
	"fmt"
	"time"

	"agartpos/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the Postgres connection and brings the schema up to date.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Surface unique violations as gorm.ErrDuplicatedKey so services can
		// map them to domain errors instead of parsing pq messages.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	log.Info().Msg("database connected and migrated")
	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto").Error; err != nil {
		return err
	}
	if err := db.AutoMigrate(
		&model.Staff{},
		&model.Product{},
		&model.InventoryLogEntry{},
		&model.Customer{},
		&model.CreditLedgerEntry{},
		&model.Shift{},
		&model.Sale{},
		&model.SaleItem{},
	); err != nil {
		return err
	}
	// One open shift per staff member, enforced by the database: two opens
	// racing past the service-level check cannot both commit.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS shifts_one_open_per_staff ON shifts(staff_id) WHERE status = 'open'",
	).Error; err != nil {
		return err
	}
	// Receipt numbers come from a sequence so they are gapless-enough and
	// strictly increasing across concurrent checkouts.
	return db.Exec("CREATE SEQUENCE IF NOT EXISTS sales_ticket_no_seq START 1000").Error
}
