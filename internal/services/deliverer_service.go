package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pizzatrack/internal/geo"
	"pizzatrack/internal/metrics"
	"pizzatrack/internal/models"
	"pizzatrack/internal/repository"
	"pizzatrack/internal/store"
)

type DelivererService interface {
	CreateDeliverer(ctx context.Context, d *models.Deliverer) error
	GetDeliverer(ctx context.Context, id string) (*models.Deliverer, error)
	ListDeliverers(ctx context.Context) ([]models.Deliverer, error)
	UpdateDeliverer(ctx context.Context, d *models.Deliverer) error
	DeleteDeliverer(ctx context.Context, id string) error

	UpdateLocation(ctx context.Context, delivererID string, raw any) (geo.Coords, error)
	ReportLocation(ctx context.Context, delivererID string, report LocationReport) (LocationResult, error)
	SimulatedLocation() geo.Coords

	MyOrders(ctx context.Context, delivererID string) ([]models.Order, error)
	Summary(delivererID string) DeliverySummary
	StartDelivery(ctx context.Context, delivererID, orderID string) (*models.Order, error)
	FinishDelivery(ctx context.Context, delivererID, orderID string) (*models.Order, error)
}

// LocationReport is what the delivery view sends from the device. Error is
// set instead of Coords when geolocation failed ("denied", "unavailable",
// "timeout").
type LocationReport struct {
	Coords any    `json:"coords"`
	Error  string `json:"error"`
}

type LocationResult struct {
	Coords    geo.Coords `json:"coords"`
	Simulated bool       `json:"simulated"`
}

type DeliverySummary struct {
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

type delivererService struct {
	deliverers repository.DelivererRepository
	orders     OrderService
	store      *store.Store

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewDelivererService(deliverers repository.DelivererRepository, orders OrderService, st *store.Store) DelivererService {
	return &delivererService{
		deliverers: deliverers,
		orders:     orders,
		store:      st,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func validateDeliverer(d *models.Deliverer) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return validationError("deliverer name is required")
	}
	if d.CurrentLocation != nil {
		c, err := geo.ParseCoords(*d.CurrentLocation)
		if err != nil {
			return validationError("current location: %v", err)
		}
		d.CurrentLocation = &c
	}
	return nil
}

func (s *delivererService) CreateDeliverer(ctx context.Context, d *models.Deliverer) error {
	if err := validateDeliverer(d); err != nil {
		return err
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if err := s.deliverers.Create(ctx, d); err != nil {
		return fmt.Errorf("create deliverer: %w", err)
	}
	s.store.Dispatch(store.UpsertDeliverer{Deliverer: *d})
	return nil
}

func (s *delivererService) GetDeliverer(ctx context.Context, id string) (*models.Deliverer, error) {
	d, err := s.deliverers.GetByID(ctx, id)
	if err != nil {
		return nil, mapDelivererErr(err, "get deliverer")
	}
	return d, nil
}

func (s *delivererService) ListDeliverers(ctx context.Context) ([]models.Deliverer, error) {
	return s.deliverers.GetAll(ctx)
}

func (s *delivererService) UpdateDeliverer(ctx context.Context, d *models.Deliverer) error {
	if err := validateDeliverer(d); err != nil {
		return err
	}
	existing, err := s.GetDeliverer(ctx, d.ID)
	if err != nil {
		return err
	}
	d.CreatedAt = existing.CreatedAt
	if d.CurrentLocation == nil {
		d.CurrentLocation = existing.CurrentLocation
	}
	if err := s.deliverers.Update(ctx, d); err != nil {
		return fmt.Errorf("update deliverer: %w", err)
	}
	s.store.Dispatch(store.UpsertDeliverer{Deliverer: *d})
	return nil
}

// DeleteDeliverer removes the deliverer and unassigns their active orders so
// they can be handed to someone else. Delivered orders keep the id as history.
func (s *delivererService) DeleteDeliverer(ctx context.Context, id string) error {
	if err := s.deliverers.Delete(ctx, id); err != nil {
		return mapDelivererErr(err, "delete deliverer")
	}
	s.store.Dispatch(store.DeleteDeliverer{ID: id})

	active, err := s.orders.ListOrders(ctx, repository.OrderFilter{DelivererID: id, ActiveOnly: true})
	if err != nil {
		return fmt.Errorf("list orders of deleted deliverer: %w", err)
	}
	for _, o := range active {
		if _, err := s.orders.AssignDeliverer(ctx, o.ID, nil); err != nil {
			return fmt.Errorf("unassign order %s: %w", o.ID, err)
		}
	}
	return nil
}

// UpdateLocation validates raw and overwrites the deliverer's position.
func (s *delivererService) UpdateLocation(ctx context.Context, delivererID string, raw any) (geo.Coords, error) {
	loc, err := geo.ParseCoords(raw)
	if err != nil {
		return geo.Coords{}, validationError("location: %v", err)
	}
	if err := s.deliverers.UpdateLocation(ctx, delivererID, loc); err != nil {
		return geo.Coords{}, mapDelivererErr(err, "update location")
	}
	metrics.LocationUpdates.WithLabelValues("gps").Inc()
	s.store.Dispatch(store.SetDelivererLocation{ID: delivererID, Location: loc})
	return loc, nil
}

// ReportLocation stores a device fix. When the device could not get one, a
// point near the pizzeria is returned for display and nothing is stored.
func (s *delivererService) ReportLocation(ctx context.Context, delivererID string, report LocationReport) (LocationResult, error) {
	if report.Error != "" || report.Coords == nil {
		if _, ok := s.store.Deliverer(delivererID); !ok {
			return LocationResult{}, ErrDelivererNotFound
		}
		metrics.LocationUpdates.WithLabelValues("simulated").Inc()
		return LocationResult{Coords: s.SimulatedLocation(), Simulated: true}, nil
	}
	loc, err := s.UpdateLocation(ctx, delivererID, report.Coords)
	if err != nil {
		return LocationResult{}, err
	}
	return LocationResult{Coords: loc}, nil
}

func (s *delivererService) SimulatedLocation() geo.Coords {
	base := s.store.Settings().Coords
	if !base.Valid() || base == (geo.Coords{}) {
		base = geo.Fallback
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return geo.Jitter(base, s.rnd)
}

// MyOrders lists the deliverer's orders that are not delivered yet.
func (s *delivererService) MyOrders(ctx context.Context, delivererID string) ([]models.Order, error) {
	return s.orders.ListOrders(ctx, repository.OrderFilter{DelivererID: delivererID, ActiveOnly: true})
}

func (s *delivererService) Summary(delivererID string) DeliverySummary {
	var sum DeliverySummary
	for _, o := range s.store.State().Orders {
		if !o.AssignedTo(delivererID) {
			continue
		}
		sum.Total++
		if o.Status == models.StatusDelivered {
			sum.Completed++
		} else {
			sum.Active++
		}
	}
	return sum
}

func (s *delivererService) StartDelivery(ctx context.Context, delivererID, orderID string) (*models.Order, error) {
	if err := s.ownOrder(ctx, delivererID, orderID); err != nil {
		return nil, err
	}
	return s.orders.UpdateStatus(ctx, orderID, models.StatusDelivering)
}

func (s *delivererService) FinishDelivery(ctx context.Context, delivererID, orderID string) (*models.Order, error) {
	if err := s.ownOrder(ctx, delivererID, orderID); err != nil {
		return nil, err
	}
	return s.orders.UpdateStatus(ctx, orderID, models.StatusDelivered)
}

func (s *delivererService) ownOrder(ctx context.Context, delivererID, orderID string) error {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.AssignedTo(delivererID) {
		return ErrNotAssigned
	}
	return nil
}

func mapDelivererErr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrDelivererNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
