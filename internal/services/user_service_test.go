package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"pizzatrack/internal/auth"
	"pizzatrack/internal/database"
	"pizzatrack/internal/models"
	"pizzatrack/internal/repository"
)

func newUserService(t *testing.T) UserService {
	t.Helper()
	db, err := database.Initialize("sqlite://file::memory:", logger.Silent)
	require.NoError(t, err)
	return NewUserService(repository.NewUserRepository(db), auth.NewManager("test-secret", time.Hour))
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	users := newUserService(t)
	require.NoError(t, users.CreateUser(ctx, &models.AppUser{Username: "admin", Role: models.RoleAdmin}, "pizza123"))

	res, err := users.Login(ctx, "admin", "pizza123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, models.RoleAdmin, res.User.Role)
	assert.True(t, res.ExpiresAt.After(time.Now()))

	_, err = users.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = users.Login(ctx, "nobody", "pizza123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	users := newUserService(t)

	assert.ErrorIs(t, users.CreateUser(ctx, &models.AppUser{Username: "", Role: models.RoleAdmin}, "pizza123"), ErrValidation)
	assert.ErrorIs(t, users.CreateUser(ctx, &models.AppUser{Username: "a", Role: models.RoleAdmin}, "123"), ErrValidation)
	assert.ErrorIs(t, users.CreateUser(ctx, &models.AppUser{Username: "a", Role: "chef"}, "pizza123"), ErrValidation)
	assert.ErrorIs(t, users.CreateUser(ctx, &models.AppUser{Username: "a", Role: models.RoleDeliverer}, "pizza123"), ErrValidation)

	require.NoError(t, users.CreateUser(ctx, &models.AppUser{Username: "a", Role: models.RoleAdmin}, "pizza123"))
	assert.ErrorIs(t, users.CreateUser(ctx, &models.AppUser{Username: "a", Role: models.RoleAdmin}, "pizza123"), ErrUserExists)

	_, err := users.GetUserByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
