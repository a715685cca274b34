package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pizzatrack/internal/database"
	"pizzatrack/internal/geo"
	"pizzatrack/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Initialize("sqlite://file::memory:", logger.Silent)
	require.NoError(t, err)
	return db
}

func strPtr(s string) *string { return &s }

func TestOrderRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(newTestDB(t))

	coords := geo.Coords{-23.56, -46.64}
	order := &models.Order{
		ID:              "o1",
		Number:          1,
		CustomerName:    "Ana",
		CustomerPhone:   "5511911112222",
		DeliveryAddress: "Rua A, 1",
		DeliveryCoords:  &coords,
		Items:           []models.OrderItem{{ID: "p1", Name: "Margherita", Quantity: 2, Price: 30}},
		Total:           60,
		PaymentMethod:   models.PaymentCash,
		Status:          models.StatusReceived,
	}
	require.NoError(t, repo.Create(ctx, order))

	got, err := repo.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.CustomerName)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
	require.NotNil(t, got.DeliveryCoords)
	assert.Equal(t, coords, *got.DeliveryCoords)
	assert.Nil(t, got.DelivererID)

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestOrderRepositoryListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(newTestDB(t))

	base := time.Now().Add(-time.Hour)
	for i, st := range []models.OrderStatus{models.StatusReceived, models.StatusDelivering, models.StatusDelivered} {
		o := &models.Order{
			ID:            string(rune('a' + i)),
			Number:        i + 1,
			CustomerName:  "c",
			PaymentMethod: models.PaymentPix,
			Status:        st,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		if st != models.StatusReceived {
			o.DelivererID = strPtr("d1")
		}
		require.NoError(t, repo.Create(ctx, o))
	}

	all, err := repo.List(ctx, OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID, "newest first")

	active, err := repo.List(ctx, OrderFilter{DelivererID: "d1", ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, models.StatusDelivering, active[0].Status)

	delivered, err := repo.List(ctx, OrderFilter{Status: models.StatusDelivered})
	require.NoError(t, err)
	assert.Len(t, delivered, 1)
}

func TestOrderRepositoryUpdateFieldsMissing(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))
	err := repo.UpdateFields(context.Background(), "nope", map[string]any{"status": models.StatusDelivered})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(context.Background(), "nope"), gorm.ErrRecordNotFound)
}

func TestDelivererLocationOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := NewDelivererRepository(newTestDB(t))
	require.NoError(t, repo.Create(ctx, &models.Deliverer{ID: "d1", Name: "Carlos", Available: true}))

	require.NoError(t, repo.UpdateLocation(ctx, "d1", geo.Coords{-23.50, -46.60}))
	require.NoError(t, repo.UpdateLocation(ctx, "d1", geo.Coords{-23.55, -46.63}))

	d, err := repo.GetByID(ctx, "d1")
	require.NoError(t, err)
	require.NotNil(t, d.CurrentLocation)
	assert.Equal(t, geo.Coords{-23.55, -46.63}, *d.CurrentLocation)

	assert.ErrorIs(t, repo.UpdateLocation(ctx, "ghost", geo.Coords{0, 0}), gorm.ErrRecordNotFound)
}

func TestResetCatalog(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	products := NewProductRepository(db)
	categories := NewCategoryRepository(db)

	require.NoError(t, categories.Create(ctx, &models.Category{ID: "c1", Name: "Pizzas"}))
	require.NoError(t, products.Create(ctx, &models.Product{
		ID: "p1", Name: "Margherita", Price: 30, CategoryID: "c1", Available: true,
		Variants: []models.Variant{{ID: "g", Name: "Grande"}},
	}))

	p, err := products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, p.Variants, 1)

	require.NoError(t, categories.ResetCatalog(ctx))

	allProducts, err := products.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, allProducts)
	allCategories, err := categories.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, allCategories)
}

func TestSettingsDefaultsWhenMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(newTestDB(t))

	s, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Pizzaria Bella Napoli", s.Name)

	s.Name = "Forno Nero"
	s.WebhookURL = "https://hooks.example.com/x"
	s.WebhookEnabled = true
	require.NoError(t, repo.Save(ctx, s))

	again, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Forno Nero", again.Name)
	assert.True(t, again.WebhookActive())
	assert.Equal(t, geo.Fallback, again.Coords)
}

func TestUnreadableCoordinatesStillLoad(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	orders := NewOrderRepository(db)
	deliverers := NewDelivererRepository(db)
	settings := NewSettingsRepository(db)

	good := geo.Coords{-23.56, -46.64}
	require.NoError(t, orders.Create(ctx, &models.Order{
		ID: "bad", Number: 1, CustomerName: "Ana", PaymentMethod: models.PaymentCash, Status: models.StatusReceived,
		DeliveryCoords: &good,
	}))
	require.NoError(t, orders.Create(ctx, &models.Order{
		ID: "ok", Number: 2, CustomerName: "Bia", PaymentMethod: models.PaymentCash, Status: models.StatusReceived,
		DeliveryCoords: &good,
	}))
	require.NoError(t, deliverers.Create(ctx, &models.Deliverer{ID: "d1", Name: "Carlos", CurrentLocation: &good}))
	s := models.DefaultSettings()
	require.NoError(t, settings.Save(ctx, &s))

	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", "bad").
		UpdateColumn("delivery_coords", "[-123.55,-46.63]").Error)
	require.NoError(t, db.Model(&models.Deliverer{}).Where("id = ?", "d1").
		UpdateColumn("current_location", "somewhere").Error)
	require.NoError(t, db.Model(&models.Settings{}).Where("id = ?", models.SettingsID).
		UpdateColumn("coords", `{"lat":-23.55}`).Error)

	all, err := orders.List(ctx, OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, o := range all {
		if o.ID == "bad" {
			assert.Nil(t, o.DeliveryCoords)
		} else {
			require.NotNil(t, o.DeliveryCoords)
			assert.Equal(t, good, *o.DeliveryCoords)
		}
	}

	o, err := orders.GetByID(ctx, "bad")
	require.NoError(t, err)
	assert.Nil(t, o.DeliveryCoords)

	d, err := deliverers.GetByID(ctx, "d1")
	require.NoError(t, err)
	assert.Nil(t, d.CurrentLocation)

	got, err := settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, geo.Fallback, got.Coords)
}

func TestCounterNext(t *testing.T) {
	ctx := context.Background()
	repo := NewCounterRepository(newTestDB(t))

	cur, err := repo.Current(ctx, models.OrderCounter)
	require.NoError(t, err)
	assert.Equal(t, 0, cur)

	for want := 1; want <= 3; want++ {
		got, err := repo.Next(ctx, models.OrderCounter)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	require.NoError(t, repo.Create(ctx, &models.AppUser{ID: "u1", Username: "admin", PasswordHash: "x", Role: models.RoleAdmin}))

	u, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
