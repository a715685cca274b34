package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pizzatrack/internal/geo"
	"pizzatrack/internal/metrics"
	"pizzatrack/internal/models"
	"pizzatrack/internal/scheduler"
	"pizzatrack/internal/store"
	"pizzatrack/pkg/maps"
)

type TrackingService interface {
	Snapshot(ctx context.Context, orderID string) (*TrackingSnapshot, error)
	Stream(ctx context.Context, orderID string, emit func(*TrackingSnapshot) error) error
	MapOverview() MapOverview
	Geocode(ctx context.Context, address string) (geo.Coords, error)
}

type TrackingSnapshot struct {
	OrderID         string               `json:"orderId"`
	Number          int                  `json:"number"`
	Status          models.OrderStatus   `json:"status"`
	StatusLabel     string               `json:"statusLabel"`
	Step            int                  `json:"step"`
	CustomerName    string               `json:"customerName"`
	DeliveryAddress string               `json:"deliveryAddress"`
	Items           []models.OrderItem   `json:"items"`
	Total           float64              `json:"total"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
	Pizzeria        PizzeriaInfo         `json:"pizzeria"`
	Destination     *geo.Coords          `json:"destination,omitempty"`
	Deliverer       *DelivererInfo       `json:"deliverer,omitempty"`
	Route           *TrackingRoute       `json:"route,omitempty"`
}

type PizzeriaInfo struct {
	Name   string     `json:"name"`
	Phone  string     `json:"phone"`
	Coords geo.Coords `json:"coords"`
}

type DelivererInfo struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Phone        string      `json:"phone"`
	Vehicle      string      `json:"vehicle"`
	VehiclePlate string      `json:"vehiclePlate,omitempty"`
	VehicleModel string      `json:"vehicleModel,omitempty"`
	VehicleColor string      `json:"vehicleColor,omitempty"`
	Location     *geo.Coords `json:"location,omitempty"`
}

// TrackingRoute is either a routed path (Dashed false) or the straight line
// drawn when no directions are available.
type TrackingRoute struct {
	Path     []geo.Coords `json:"path"`
	Distance string       `json:"distance,omitempty"`
	Duration string       `json:"duration,omitempty"`
	Dashed   bool         `json:"dashed"`
}

type MapOverview struct {
	Pizzeria     PizzeriaInfo     `json:"pizzeria"`
	Deliverers   []DelivererInfo  `json:"deliverers"`
	ActiveOrders []ActiveOrderPin `json:"activeOrders"`
}

type ActiveOrderPin struct {
	ID              string             `json:"id"`
	Number          int                `json:"number"`
	CustomerName    string             `json:"customerName"`
	DeliveryAddress string             `json:"deliveryAddress"`
	Status          models.OrderStatus `json:"status"`
	Coords          *geo.Coords        `json:"coords,omitempty"`
	DelivererID     *string            `json:"delivererId,omitempty"`
}

type trackingService struct {
	orders   OrderService
	store    *store.Store
	maps     MapsClient
	cache    RouteCache
	interval time.Duration
}

// NewTrackingService accepts nil maps and cache; routes then fall back to a
// straight line and are recomputed on every refresh.
func NewTrackingService(orders OrderService, st *store.Store, mapsClient MapsClient, cache RouteCache, interval time.Duration) TrackingService {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &trackingService{orders: orders, store: st, maps: mapsClient, cache: cache, interval: interval}
}

func (s *trackingService) Snapshot(ctx context.Context, orderID string) (*TrackingSnapshot, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	settings := s.store.Settings()

	snap := &TrackingSnapshot{
		OrderID:         order.ID,
		Number:          order.Number,
		Status:          order.Status,
		StatusLabel:     order.Status.Label(),
		Step:            order.Status.Step(),
		CustomerName:    order.CustomerName,
		DeliveryAddress: order.DeliveryAddress,
		Items:           order.Items,
		Total:           order.Total,
		PaymentMethod:   order.PaymentMethod,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		Pizzeria:        pizzeriaInfo(settings),
		Destination:     order.DeliveryCoords,
	}

	if order.DelivererID != nil {
		if d, ok := s.store.Deliverer(*order.DelivererID); ok {
			info := delivererInfo(d)
			snap.Deliverer = &info
		}
	}

	snap.Route = s.route(ctx, settings, *order, snap.Deliverer)
	return snap, nil
}

// route prefers routed directions from the deliverer to the customer while
// the order is out for delivery, and otherwise draws a dashed line.
func (s *trackingService) route(ctx context.Context, settings models.Settings, order models.Order, d *DelivererInfo) *TrackingRoute {
	if order.DeliveryCoords == nil {
		return nil
	}
	dest := *order.DeliveryCoords
	origin := settings.Coords

	if order.Status == models.StatusDelivering && d != nil && d.Location != nil {
		origin = *d.Location
		if settings.MapsEnabled() && s.maps != nil {
			r, err := s.directions(ctx, settings.GoogleMapsAPIKey, origin, dest)
			if err == nil {
				path := make([]geo.Coords, 0, len(r.Path)+1)
				path = append(path, origin)
				for _, p := range r.Path {
					path = append(path, geo.Coords{p.Lat, p.Lng})
				}
				return &TrackingRoute{Path: path, Distance: r.Distance, Duration: r.Duration}
			}
			slog.Warn("directions lookup failed", "order_id", order.ID, "error", err)
		}
	}

	return &TrackingRoute{Path: geo.StraightLine(origin, dest), Dashed: true}
}

func (s *trackingService) directions(ctx context.Context, apiKey string, origin, dest geo.Coords) (*maps.Route, error) {
	key := "directions:" + origin.String() + "|" + dest.String()
	if s.cache != nil {
		var cached maps.Route
		if err := s.cache.GetRoute(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	r, err := s.maps.Directions(ctx, apiKey,
		maps.Point{Lat: origin.Lat(), Lng: origin.Lng()},
		maps.Point{Lat: dest.Lat(), Lng: dest.Lng()},
	)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetRoute(ctx, key, r, s.interval); err != nil {
			slog.Debug("route cache write failed", "error", err)
		}
	}
	return r, nil
}

// Stream emits a snapshot now, on every refresh interval and whenever the
// order or its deliverer changes. It returns when ctx ends, the order is
// deleted or emit fails.
func (s *trackingService) Stream(ctx context.Context, orderID string, emit func(*TrackingSnapshot) error) error {
	if _, err := s.orders.GetOrder(ctx, orderID); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var streamErr error
	task := scheduler.NewTask("tracking:"+orderID, s.interval, func(ctx context.Context) {
		snap, err := s.Snapshot(ctx, orderID)
		if errors.Is(err, ErrOrderNotFound) {
			cancel()
			return
		}
		if err != nil {
			slog.Warn("tracking snapshot failed", "order_id", orderID, "error", err)
			return
		}
		if err := emit(snap); err != nil {
			streamErr = err
			cancel()
		}
	})

	unsubscribe := s.store.Subscribe(func(st store.State, a store.Action) {
		if id, ok := store.OrderID(a); ok && id == orderID {
			task.Trigger()
			return
		}
		switch a := a.(type) {
		case store.SetDelivererLocation:
			if orderAssignedTo(st, orderID, a.ID) {
				task.Trigger()
			}
		case store.UpsertDeliverer:
			if orderAssignedTo(st, orderID, a.Deliverer.ID) {
				task.Trigger()
			}
		case store.UpdateSettings:
			task.Trigger()
		}
	})
	defer unsubscribe()

	metrics.TrackingStreams.Inc()
	defer metrics.TrackingStreams.Dec()

	task.Start(ctx)
	<-task.Done()
	task.Stop()
	return streamErr
}

func orderAssignedTo(st store.State, orderID, delivererID string) bool {
	for _, o := range st.Orders {
		if o.ID == orderID {
			return o.AssignedTo(delivererID)
		}
	}
	return false
}

func (s *trackingService) MapOverview() MapOverview {
	st := s.store.State()
	overview := MapOverview{
		Pizzeria:     pizzeriaInfo(st.Settings),
		Deliverers:   make([]DelivererInfo, 0, len(st.Deliverers)),
		ActiveOrders: make([]ActiveOrderPin, 0),
	}
	for _, d := range st.Deliverers {
		overview.Deliverers = append(overview.Deliverers, delivererInfo(d))
	}
	for _, o := range st.Orders {
		if !o.Active() {
			continue
		}
		overview.ActiveOrders = append(overview.ActiveOrders, ActiveOrderPin{
			ID:              o.ID,
			Number:          o.Number,
			CustomerName:    o.CustomerName,
			DeliveryAddress: o.DeliveryAddress,
			Status:          o.Status,
			Coords:          o.DeliveryCoords,
			DelivererID:     o.DelivererID,
		})
	}
	return overview
}

func (s *trackingService) Geocode(ctx context.Context, address string) (geo.Coords, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return geo.Coords{}, validationError("address is required")
	}
	if s.maps == nil {
		return geo.Coords{}, errors.New("geocoding is not configured")
	}
	p, err := s.maps.Geocode(ctx, s.store.Settings().GoogleMapsAPIKey, address)
	if err != nil {
		if errors.Is(err, maps.ErrNoResult) {
			return geo.Coords{}, validationError("address not found")
		}
		return geo.Coords{}, fmt.Errorf("geocode: %w", err)
	}
	return geo.ParseCoords([2]float64{p.Lat, p.Lng})
}

func pizzeriaInfo(s models.Settings) PizzeriaInfo {
	return PizzeriaInfo{Name: s.Name, Phone: s.Phone, Coords: s.Coords}
}

func delivererInfo(d models.Deliverer) DelivererInfo {
	return DelivererInfo{
		ID:           d.ID,
		Name:         d.Name,
		Phone:        d.Phone,
		Vehicle:      d.Vehicle,
		VehiclePlate: d.VehiclePlate,
		VehicleModel: d.VehicleModel,
		VehicleColor: d.VehicleColor,
		Location:     d.CurrentLocation,
	}
}
