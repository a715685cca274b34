package database

import (
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pizzatrack/internal/models"
)

const sqlitePrefix = "sqlite://"

// Initialize opens the database named by databaseURL and migrates the schema.
// URLs starting with sqlite:// open a SQLite file (or :memory:) instead of PostgreSQL.
func Initialize(databaseURL string, logLevel logger.LogLevel) (*gorm.DB, error) {
	// Configure GORM
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	var dialector gorm.Dialector
	isSQLite := strings.HasPrefix(databaseURL, sqlitePrefix)
	if isSQLite {
		dialector = sqlite.Open(strings.TrimPrefix(databaseURL, sqlitePrefix))
	} else {
		dialector = postgres.Open(databaseURL)
	}

	// Connect to database
	db, err := gorm.Open(dialector, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if isSQLite {
		// in-memory databases exist per connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	// Auto migrate all models
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("database connected and migrated", "driver", dialector.Name())
	return db, nil
}

// Models lists every table the service owns, in creation order.
func Models() []any {
	return []any{
		&models.Category{},
		&models.Product{},
		&models.Deliverer{},
		&models.Order{},
		&models.Settings{},
		&models.AppUser{},
		&models.AppCounter{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
