package migrations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"pizzatrack/internal/database"
	"pizzatrack/internal/models"
	"pizzatrack/internal/repository"
	"pizzatrack/internal/services"
)

// RunMigrations creates or updates every table. Existing data is kept.
func RunMigrations(db *gorm.DB) error {
	slog.Info("running database migrations")
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	slog.Info("database migrations completed")
	return nil
}

// Reset drops every table and recreates the schema.
func Reset(db *gorm.DB) error {
	slog.Warn("dropping existing tables")
	if err := db.Migrator().DropTable(database.Models()...); err != nil {
		slog.Warn("error dropping tables", "error", err)
	}
	return RunMigrations(db)
}

type seedUser struct {
	username    string
	password    string
	role        models.Role
	delivererID string
}

var defaultUsers = []seedUser{
	{username: "admin", password: "pizza123", role: models.RoleAdmin},
	{username: "entregador1", password: "moto123", role: models.RoleDeliverer, delivererID: "d1"},
	{username: "entregador2", password: "moto123", role: models.RoleDeliverer, delivererID: "d2"},
}

var defaultDeliverers = []models.Deliverer{
	{ID: "d1", Name: "Carlos Motoboy", Phone: "5511988880001", Vehicle: "Moto Honda CG 150", Available: true},
	{ID: "d2", Name: "João Delivery", Phone: "5511988880002", Vehicle: "Bicicleta Elétrica", Available: true},
	{ID: "d3", Name: "Pedro Rápido", Phone: "5511988880003", Vehicle: "Moto Yamaha Fazer", Available: false},
}

func price(f float64) *float64 { return &f }

var defaultCategories = []models.Category{
	{ID: "cat-pizzas", Name: "Pizzas"},
	{ID: "cat-bebidas", Name: "Bebidas"},
}

var defaultProducts = []models.Product{
	{
		ID: "prod-margherita", Name: "Margherita", Description: "Molho de tomate, mussarela e manjericão",
		Price: 30, CategoryID: "cat-pizzas", Available: true, IsFeatured: true,
		Variants: []models.Variant{
			{ID: "media", Name: "Média"},
			{ID: "grande", Name: "Grande", Price: price(42)},
		},
	},
	{
		ID: "prod-calabresa", Name: "Calabresa", Description: "Calabresa fatiada e cebola",
		Price: 40, PromoPrice: price(25), IsPromo: true, CategoryID: "cat-pizzas", Available: true,
	},
	{
		ID: "prod-refri", Name: "Refrigerante 2L", Price: 12, CategoryID: "cat-bebidas", Available: true,
	},
}

// Seed creates the default users, deliverers, settings and a starter catalog.
// Rows that already exist are left untouched.
func Seed(ctx context.Context, db *gorm.DB) error {
	slog.Info("creating default data")

	userService := services.NewUserService(repository.NewUserRepository(db), nil)
	delivererRepo := repository.NewDelivererRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	for _, d := range defaultDeliverers {
		d := d
		if _, err := delivererRepo.GetByID(ctx, d.ID); err == nil {
			continue
		}
		if err := delivererRepo.Create(ctx, &d); err != nil {
			return fmt.Errorf("seed deliverer %s: %w", d.ID, err)
		}
	}

	for _, u := range defaultUsers {
		existing, err := userService.GetUserByUsername(ctx, u.username)
		if err == nil && existing != nil {
			slog.Info("user already exists", "username", u.username)
			continue
		}
		user := &models.AppUser{Username: u.username, Role: u.role}
		if u.delivererID != "" {
			id := u.delivererID
			user.DelivererID = &id
		}
		if err := userService.CreateUser(ctx, user, u.password); err != nil {
			return fmt.Errorf("seed user %s: %w", u.username, err)
		}
		slog.Info("user created", "username", u.username, "role", u.role)
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.Settings{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count settings: %w", err)
	}
	if count == 0 {
		settings := models.DefaultSettings()
		if err := settingsRepo.Save(ctx, &settings); err != nil {
			return fmt.Errorf("seed settings: %w", err)
		}
	}

	for _, c := range defaultCategories {
		c := c
		if _, err := categoryRepo.GetByID(ctx, c.ID); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := categoryRepo.Create(ctx, &c); err != nil {
			return fmt.Errorf("seed category %s: %w", c.ID, err)
		}
	}
	for _, p := range defaultProducts {
		p := p
		if _, err := productRepo.GetByID(ctx, p.ID); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := productRepo.Create(ctx, &p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}

	slog.Info("default data created")
	return nil
}
