package repository

import (
	"context"

	"gorm.io/gorm"

	"pizzatrack/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.AppUser) error
	GetByUsername(ctx context.Context, username string) (*models.AppUser, error)
	GetAll(ctx context.Context) ([]models.AppUser, error)
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.AppUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.AppUser, error) {
	var user models.AppUser
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetAll(ctx context.Context) ([]models.AppUser, error) {
	var users []models.AppUser
	err := r.db.WithContext(ctx).Order("username").Find(&users).Error
	return users, err
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.AppUser{}).Error
}
