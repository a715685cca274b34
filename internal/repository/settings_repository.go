package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"pizzatrack/internal/models"
)

type SettingsRepository interface {
	// Get returns the stored row merged over the defaults.
	Get(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, settings *models.Settings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	err := r.db.WithContext(ctx).Where("id = ?", models.SettingsID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		d := models.DefaultSettings()
		return &d, nil
	}
	if err != nil {
		return nil, err
	}
	merged := settings.WithDefaults()
	return &merged, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *models.Settings) error {
	settings.ID = models.SettingsID
	return r.db.WithContext(ctx).Save(settings).Error
}
