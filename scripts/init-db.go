package main

import (
	"context"
	"fmt"
	"log"

	gormlogger "gorm.io/gorm/logger"

	"pizzatrack/internal/config"
	"pizzatrack/internal/database"
	"pizzatrack/internal/logger"
	"pizzatrack/internal/migrations"
)

// init-db drops and recreates the schema, then seeds the demo data. It is the
// standalone twin of `pizzatrack reset --yes` for fresh environments.
func main() {
	fmt.Println("Initializing database...")

	cfg := config.Load()
	logger.Init(cfg.AppEnv)

	db, err := database.Initialize(cfg.DatabaseURL, gormlogger.Warn)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := migrations.Reset(db); err != nil {
		log.Fatal("Failed to reset database:", err)
	}
	if err := migrations.Seed(context.Background(), db); err != nil {
		log.Fatal("Failed to seed database:", err)
	}

	fmt.Println("Default users:")
	fmt.Println("  admin / pizza123")
	fmt.Println("  entregador1 / moto123")
	fmt.Println("  entregador2 / moto123")
	fmt.Println("Database initialization completed successfully!")
}
