package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"pizzatrack/internal/models"
)

type CounterRepository interface {
	// Next increments the named counter and returns the new value, creating
	// the counter at 1 when it does not exist.
	Next(ctx context.Context, name string) (int, error)
	Current(ctx context.Context, name string) (int, error)
}

type counterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) CounterRepository {
	return &counterRepository{db: db}
}

func (r *counterRepository) Next(ctx context.Context, name string) (int, error) {
	var value int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.AppCounter{}).Where("name = ?", name).
			UpdateColumn("value", gorm.Expr("value + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Create(&models.AppCounter{Name: name, Value: 1}).Error; err != nil {
				return err
			}
			value = 1
			return nil
		}
		var counter models.AppCounter
		if err := tx.Where("name = ?", name).First(&counter).Error; err != nil {
			return err
		}
		value = counter.Value
		return nil
	})
	return value, err
}

func (r *counterRepository) Current(ctx context.Context, name string) (int, error) {
	var counter models.AppCounter
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return counter.Value, err
}
