package database

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pantry-service/internal/model"
	"pantry-service/pkg/config"
)

var db *gorm.DB

// InitDB initializes the database connection with configuration and runs migrations
func InitDB(config *config.Config) error {
	var err error

	// Configure GORM logger
	logLevel := logger.Error
	if config.Server.Env == "development" {
		logLevel = logger.Info
	}

	// Create DSN string
	dsn := config.DB.GetDSN()

	// Configure Postgres options
	pgConfig := postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	// Open connection
	db, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
		return err
	}

	// Get generic database object SQL
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database object: %v", err)
		return err
	}

	// Set connection pool settings from config
	sqlDB.SetMaxIdleConns(config.DB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.DB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(config.DB.ConnMaxLifetime)

	fmt.Println("Database connected successfully")

	// Run migrations
	if err := Migrate(db); err != nil {
		return err
	}

	return SeedSettings(db, config.Replenish)
}

// Migrate runs the schema migrations for all engine tables.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Supply{},
		&model.SupplyIngredient{},
		&model.InventoryLog{},
		&model.ReplenishmentSettings{},
	)
	if err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}

// SeedSettings creates the replenishment settings singleton on first startup.
// An existing row is left untouched: the database copy is authoritative once
// it exists.
func SeedSettings(db *gorm.DB, defaults config.ReplenishConfig) error {
	var count int64
	if err := db.Model(&model.ReplenishmentSettings{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check replenishment settings: %w", err)
	}
	if count > 0 {
		return nil
	}
	settings := model.ReplenishmentSettings{
		BufferMultiplier:         defaults.BufferMultiplier,
		PurchaseTargetMultiplier: defaults.PurchaseTargetMultiplier,
		DefaultMinStock:          defaults.DefaultMinStock,
		DiscrepancyThreshold:     defaults.DiscrepancyThreshold,
	}
	if err := db.Create(&settings).Error; err != nil {
		return fmt.Errorf("failed to seed replenishment settings: %w", err)
	}
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return db
}
