package database

import (
	"cariella/internal/model"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// DBSettings holds the connection settings used by InitDB.
type DBSettings struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// InitDB connects to PostgreSQL and migrates the schema. TranslateError
// is enabled so the unique index on users.phone surfaces duplicate
// registrations as gorm.ErrDuplicatedKey instead of a raw driver error.
func InitDB(cfg DBSettings) error {
	pgConfig := postgres.Config{
		DSN:                  cfg.DSN,
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	db, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger:         logger.Default.LogMode(cfg.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := Migrate(db); err != nil {
		return err
	}

	DB = db
	return nil
}

// Migrate creates or updates the table structure for every model. Also
// used by the test suites against their own database handle.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Country{},
		&model.City{},
		&model.VehicleMake{},
		&model.VehicleModel{},
		&model.VehicleBodyStyle{},
		&model.VehicleFuelType{},
		&model.VehicleTransmission{},
		&model.Vehicle{},
		&model.VehicleListing{},
		&model.ServiceCategory{},
		&model.ServiceRequest{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
