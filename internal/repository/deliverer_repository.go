package repository

import (
	"context"

	"gorm.io/gorm"

	"pizzatrack/internal/geo"
	"pizzatrack/internal/models"
)

type DelivererRepository interface {
	Create(ctx context.Context, deliverer *models.Deliverer) error
	GetByID(ctx context.Context, id string) (*models.Deliverer, error)
	GetAll(ctx context.Context) ([]models.Deliverer, error)
	Update(ctx context.Context, deliverer *models.Deliverer) error
	UpdateLocation(ctx context.Context, id string, location geo.Coords) error
	Delete(ctx context.Context, id string) error
}

type delivererRepository struct {
	db *gorm.DB
}

func NewDelivererRepository(db *gorm.DB) DelivererRepository {
	return &delivererRepository{db: db}
}

func (r *delivererRepository) Create(ctx context.Context, deliverer *models.Deliverer) error {
	return r.db.WithContext(ctx).Create(deliverer).Error
}

func (r *delivererRepository) GetByID(ctx context.Context, id string) (*models.Deliverer, error) {
	var deliverer models.Deliverer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&deliverer).Error; err != nil {
		return nil, err
	}
	return &deliverer, nil
}

func (r *delivererRepository) GetAll(ctx context.Context) ([]models.Deliverer, error) {
	var deliverers []models.Deliverer
	err := r.db.WithContext(ctx).Order("name").Find(&deliverers).Error
	return deliverers, err
}

func (r *delivererRepository) Update(ctx context.Context, deliverer *models.Deliverer) error {
	return r.db.WithContext(ctx).Save(deliverer).Error
}

// UpdateLocation overwrites the stored coordinate. No history is kept.
func (r *delivererRepository) UpdateLocation(ctx context.Context, id string, location geo.Coords) error {
	res := r.db.WithContext(ctx).Model(&models.Deliverer{}).Where("id = ?", id).
		Update("current_location", &location)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *delivererRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Deliverer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
