package initializers

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/clinicware/clinic-backend/config"
	"github.com/clinicware/clinic-backend/models"
)

// ConnectDatabase opens the configured database and migrates the schema.
// A Postgres DSN in DB_URL takes precedence; otherwise a local sqlite
// file is used, which is also what development setups run on.
func ConnectDatabase(cfg *config.Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	if cfg.DatabaseURL != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.DatabaseURL,
			PreferSimpleProtocol: true,
		}), &gorm.Config{})
	} else {
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema for all application models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Patient{},
		&models.Staff{},
		&models.Appointment{},
		&models.Vitals{},
		&models.BlogPost{},
		&models.Testimonial{},
		&models.FAQ{},
		&models.PatientFile{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("migrate database schema: %w", err)
	}
	return nil
}
