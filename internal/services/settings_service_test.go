package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizzatrack/internal/geo"
	"pizzatrack/internal/models"
	"pizzatrack/internal/store"
)

func TestSaveSettingsRepairsAndPublishes(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	saved, err := e.settings.Save(ctx, &models.Settings{
		Name:       "Forno Velho",
		Coords:     geo.Coords{200, 10},
		WebhookURL: "  https://hooks.test/in ",
	})
	require.NoError(t, err)
	assert.Equal(t, geo.Fallback, saved.Coords)
	assert.Equal(t, "https://hooks.test/in", saved.WebhookURL)
	assert.Equal(t, "18:00", saved.OpenTime)

	assert.Equal(t, "Forno Velho", e.store.Settings().Name)
	loaded, err := e.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Forno Velho", loaded.Name)

	_, err = e.settings.Save(ctx, &models.Settings{WhatsAppProvider: "telegram"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = e.settings.Save(ctx, &models.Settings{OpenTime: "6pm"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPublicProfileHidesCredentials(t *testing.T) {
	e := newEnv(t)
	e.configure(t, func(s *models.Settings) {
		s.PaymentAPIKey = "secret"
		s.PaymentEnabled = true
	})
	p := e.settings.Public()
	assert.Equal(t, "Pizzaria Bella Napoli", p.Name)
	assert.True(t, p.PaymentEnabled)
}

func TestIsOpenAt(t *testing.T) {
	at := func(hhmm string) time.Time {
		ts, err := time.Parse("15:04", hhmm)
		require.NoError(t, err)
		return ts
	}
	assert.True(t, IsOpenAt("18:00", "23:30", at("19:00")))
	assert.False(t, IsOpenAt("18:00", "23:30", at("23:30")))
	assert.False(t, IsOpenAt("18:00", "23:30", at("12:00")))
	assert.True(t, IsOpenAt("18:00", "02:00", at("01:00")))
	assert.False(t, IsOpenAt("18:00", "02:00", at("03:00")))
	assert.True(t, IsOpenAt("", "", at("03:00")))
}

func TestTestWebhook(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	assert.ErrorIs(t, e.settings.TestWebhook(ctx), ErrValidation)

	e.configure(t, func(s *models.Settings) { s.WebhookURL = "https://hooks.test/in" })
	require.NoError(t, e.settings.TestWebhook(ctx))
	require.Len(t, e.hooks.posted, 1)
	env := e.hooks.posted[0]
	assert.Equal(t, "test", env.Event)
	assert.Equal(t, TestWebhookMessage, env.Message)
	assert.Equal(t, TestWebhookDetails, env.Details)
}

func TestResetCatalog(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.addMargherita(t)
	require.Len(t, e.store.State().Products, 1)

	require.NoError(t, e.settings.ResetCatalog(ctx))

	st := e.store.State()
	assert.Empty(t, st.Products)
	assert.Empty(t, st.Categories)
	products, err := e.catalog.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestUploadImage(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	url, err := e.settings.UploadImage(ctx, "products", "Pizza.PNG", strings.NewReader("png"), "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.test/products/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	_, err = e.settings.UploadImage(ctx, "secrets", "a.png", strings.NewReader("x"), "image/png")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = e.settings.UploadImage(ctx, "branding", "a.pdf", strings.NewReader("x"), "application/pdf")
	assert.ErrorIs(t, err, ErrValidation)

	noStorage := NewSettingsService(nil, nil, store.New(store.State{}), nil, nil)
	_, err = noStorage.UploadImage(ctx, "products", "a.png", strings.NewReader("x"), "image/png")
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestMenuGroupsAvailableProducts(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.addMargherita(t)

	hidden := models.Product{ID: "p2", Name: "Calabresa", Price: 35, CategoryID: "c1", Available: false}
	require.NoError(t, e.catalog.CreateProduct(ctx, &hidden))
	promo := 25.0
	deal := models.Product{ID: "p3", Name: "Portuguesa", Price: 40, PromoPrice: &promo, IsPromo: true, IsFeatured: true, CategoryID: "c1", Available: true}
	require.NoError(t, e.catalog.CreateProduct(ctx, &deal))

	menu := e.catalog.Menu()
	require.Len(t, menu.Sections, 1)
	assert.Len(t, menu.Sections[0].Products, 2)
	require.Len(t, menu.Promos, 1)
	assert.Equal(t, "p3", menu.Promos[0].ID)
	assert.Len(t, menu.Featured, 1)
}

func TestCatalogEventsAndValidation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.configure(t, func(s *models.Settings) {
		s.WebhookEnabled = true
		s.WebhookURL = "https://hooks.test/in"
	})
	p := e.addMargherita(t)

	p.Price = 32
	require.NoError(t, e.catalog.UpdateProduct(ctx, &p))
	require.NoError(t, e.catalog.DeleteProduct(ctx, p.ID))
	assert.Equal(t, []string{"category_created", "product_created", "product_updated", "product_deleted"}, e.hooks.events())

	assert.ErrorIs(t, e.catalog.DeleteProduct(ctx, p.ID), ErrProductNotFound)
	bad := models.Product{Name: "Ghost", CategoryID: "nope"}
	assert.ErrorIs(t, e.catalog.CreateProduct(ctx, &bad), ErrCategoryNotFound)
	neg := models.Product{Name: "Cheap", Price: -1}
	assert.ErrorIs(t, e.catalog.CreateProduct(ctx, &neg), ErrValidation)
}

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.addDeliverer(t, "d1")
	e.addMargherita(t)

	a, err := e.orders.CreateOrder(ctx, sampleOrderInput())
	require.NoError(t, err)
	_, err = e.orders.CreateOrder(ctx, sampleOrderInput())
	require.NoError(t, err)
	_, err = e.orders.UpdateStatus(ctx, a.ID, models.StatusDelivered)
	require.NoError(t, err)

	stats := NewDashboardService(e.store).Stats(time.Now())
	assert.Equal(t, 2, stats.TodayOrders)
	assert.Equal(t, 1, stats.ActiveOrders)
	assert.Equal(t, 60.0, stats.TodayRevenue)
	assert.Equal(t, 1, stats.StatusCounts[models.StatusDelivered])
	assert.Equal(t, 1, stats.StatusCounts[models.StatusReceived])
	assert.Equal(t, 1, stats.AvailableDeliverers)
	assert.Equal(t, 1, stats.Products)
	assert.Len(t, stats.RecentOrders, 2)
}
