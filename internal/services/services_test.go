package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pizzatrack/internal/cart"
	"pizzatrack/internal/database"
	applog "pizzatrack/internal/logger"
	"pizzatrack/internal/models"
	"pizzatrack/internal/repository"
	"pizzatrack/internal/store"
	"pizzatrack/pkg/maps"
	"pizzatrack/pkg/payment"
	"pizzatrack/pkg/webhook"
	"pizzatrack/pkg/whatsapp"
)

type sentMessage struct {
	cfg   whatsapp.Config
	phone string
	text  string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeSender) SendText(_ context.Context, cfg whatsapp.Config, phone, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{cfg: cfg, phone: phone, text: message})
	return nil
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type fakeHooks struct {
	mu     sync.Mutex
	posted []webhook.Envelope
	err    error
}

func (f *fakeHooks) Post(_ context.Context, _ string, env webhook.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posted = append(f.posted, env)
	return f.err
}

func (f *fakeHooks) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.posted))
	for _, env := range f.posted {
		names = append(names, env.Event)
	}
	return names
}

type fakePublisher struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakePublisher) Publish(_ context.Context, routingKey string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, routingKey)
	return nil
}

type memoryCarts struct {
	mu    sync.Mutex
	carts map[string]*cart.Cart
}

func newMemoryCarts() *memoryCarts {
	return &memoryCarts{carts: make(map[string]*cart.Cart)}
}

func (m *memoryCarts) GetCart(_ context.Context, cartID string) (*cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[cartID]
	if !ok {
		return cart.New(cartID), nil
	}
	cp := *c
	cp.Items = append([]cart.Item(nil), c.Items...)
	return &cp, nil
}

func (m *memoryCarts) SaveCart(_ context.Context, c *cart.Cart, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	cp.Items = append([]cart.Item(nil), c.Items...)
	m.carts[c.ID] = &cp
	return nil
}

func (m *memoryCarts) DeleteCart(_ context.Context, cartID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, cartID)
	return nil
}

type fakeMaps struct {
	route    *maps.Route
	point    maps.Point
	err      error
	calls    int
	geocodes int
}

func (f *fakeMaps) Directions(context.Context, string, maps.Point, maps.Point) (*maps.Route, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.route, nil
}

func (f *fakeMaps) Geocode(context.Context, string, string) (maps.Point, error) {
	f.geocodes++
	if f.err != nil {
		return maps.Point{}, f.err
	}
	return f.point, nil
}

type fakePayments struct {
	requests []payment.Request
	result   *payment.Result
	err      error
}

func (f *fakePayments) Create(_ context.Context, _ payment.Config, req payment.Request) (*payment.Result, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeImages struct {
	keys []string
}

func (f *fakeImages) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	f.keys = append(f.keys, key)
	return "https://cdn.test/" + key, nil
}

// env wires every service against an in-memory SQLite database and fakes for
// the outbound channels.
type env struct {
	db        *gorm.DB
	store     *store.Store
	sender    *fakeSender
	hooks     *fakeHooks
	publisher *fakePublisher
	carts     *memoryCarts
	payments  *fakePayments

	orders     OrderService
	deliverers DelivererService
	cart       CartService
	checkout   CheckoutService
	catalog    CatalogService
	settings   SettingsService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	db, err := database.Initialize("sqlite://file::memory:", logger.Silent)
	require.NoError(t, err)

	src := StateSources{
		Orders:     repository.NewOrderRepository(db),
		Deliverers: repository.NewDelivererRepository(db),
		Products:   repository.NewProductRepository(db),
		Categories: repository.NewCategoryRepository(db),
		Settings:   repository.NewSettingsRepository(db),
	}
	state, err := LoadState(ctx, src)
	require.NoError(t, err)

	e := &env{
		db:        db,
		store:     store.New(state),
		sender:    &fakeSender{},
		hooks:     &fakeHooks{},
		publisher: &fakePublisher{},
		carts:     newMemoryCarts(),
		payments:  &fakePayments{result: &payment.Result{PaymentID: "pay_1", QRCode: "000201"}},
	}
	notifier := NewNotifier(e.sender, e.hooks, e.publisher, applog.Discard())

	e.orders = NewOrderService(src.Orders, repository.NewCounterRepository(db), e.store, notifier, "https://pizza.test")
	e.deliverers = NewDelivererService(src.Deliverers, e.orders, e.store)
	e.cart = NewCartService(e.carts, e.store, time.Hour)
	e.checkout = NewCheckoutService(e.cart, e.orders, e.payments, e.store)
	e.catalog = NewCatalogService(src.Products, src.Categories, e.store, notifier)
	e.settings = NewSettingsService(src.Settings, src.Categories, e.store, notifier, &fakeImages{})
	return e
}

// configure saves settings on top of the defaults.
func (e *env) configure(t *testing.T, fn func(*models.Settings)) {
	t.Helper()
	s := models.DefaultSettings()
	fn(&s)
	_, err := e.settings.Save(context.Background(), &s)
	require.NoError(t, err)
}

func (e *env) addDeliverer(t *testing.T, id string) models.Deliverer {
	t.Helper()
	d := models.Deliverer{ID: id, Name: "Carlos", Phone: "5511977776666", Vehicle: "moto", Available: true}
	require.NoError(t, e.deliverers.CreateDeliverer(context.Background(), &d))
	return d
}

func (e *env) addMargherita(t *testing.T) models.Product {
	t.Helper()
	ctx := context.Background()
	c := models.Category{ID: "c1", Name: "Pizzas"}
	require.NoError(t, e.catalog.CreateCategory(ctx, &c))
	p := models.Product{ID: "p1", Name: "Margherita", Price: 30, CategoryID: "c1", Available: true}
	require.NoError(t, e.catalog.CreateProduct(ctx, &p))
	return p
}

func sampleOrderInput() CreateOrderInput {
	return CreateOrderInput{
		CustomerName:    "Ana",
		CustomerPhone:   "5511911112222",
		DeliveryAddress: "Rua A, 1",
		Items:           []models.OrderItem{{ID: "p1", Name: "Margherita", Quantity: 2, Price: 30}},
		PaymentMethod:   models.PaymentCash,
	}
}

func strPtr(s string) *string { return &s }

var errBoom = errors.New("boom")
