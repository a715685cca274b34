package migrations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"pizzatrack/internal/auth"
	"pizzatrack/internal/database"
	"pizzatrack/internal/models"
	"pizzatrack/internal/repository"
)

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := database.Initialize("sqlite://file::memory:", logger.Silent)
	require.NoError(t, err)

	require.NoError(t, Seed(ctx, db))
	require.NoError(t, Seed(ctx, db))

	users, err := repository.NewUserRepository(db).GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)

	admin, err := repository.NewUserRepository(db).GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(admin.PasswordHash, "pizza123"))

	courier, err := repository.NewUserRepository(db).GetByUsername(ctx, "entregador1")
	require.NoError(t, err)
	require.NotNil(t, courier.DelivererID)
	assert.Equal(t, "d1", *courier.DelivererID)

	deliverers, err := repository.NewDelivererRepository(db).GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, deliverers, 3)

	settings, err := repository.NewSettingsRepository(db).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Pizzaria Bella Napoli", settings.Name)
	assert.Equal(t, models.WhatsAppNone, settings.WhatsAppProvider)
}

func TestResetRecreatesSchema(t *testing.T) {
	db, err := database.Initialize("sqlite://file::memory:", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, Seed(context.Background(), db))

	require.NoError(t, Reset(db))

	var n int64
	require.NoError(t, db.Model(&models.AppUser{}).Count(&n).Error)
	assert.Zero(t, n)
}
