package services

import (
	"sort"
	"time"

	"pizzatrack/internal/models"
	"pizzatrack/internal/pricing"
	"pizzatrack/internal/store"
)

type DashboardService interface {
	Stats(now time.Time) DashboardStats
}

type DashboardStats struct {
	TodayOrders         int                        `json:"todayOrders"`
	ActiveOrders        int                        `json:"activeOrders"`
	TodayRevenue        float64                    `json:"todayRevenue"`
	AvailableDeliverers int                        `json:"availableDeliverers"`
	TotalDeliverers     int                        `json:"totalDeliverers"`
	StatusCounts        map[models.OrderStatus]int `json:"statusCounts"`
	Products            int                        `json:"products"`
	Categories          int                        `json:"categories"`
	Promos              int                        `json:"promos"`
	RecentOrders        []models.Order             `json:"recentOrders"`
}

type dashboardService struct {
	store *store.Store
}

func NewDashboardService(st *store.Store) DashboardService {
	return &dashboardService{store: st}
}

// Stats is computed from the in-memory state. "Today" is the calendar day of
// now in now's location; revenue counts delivered orders only.
func (s *dashboardService) Stats(now time.Time) DashboardStats {
	st := s.store.State()
	y, m, d := now.Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	stats := DashboardStats{
		StatusCounts: make(map[models.OrderStatus]int, len(models.StatusOrder)),
		Products:     len(st.Products),
		Categories:   len(st.Categories),
	}
	for _, status := range models.StatusOrder {
		stats.StatusCounts[status] = 0
	}

	var revenue []float64
	for _, o := range st.Orders {
		stats.StatusCounts[o.Status]++
		if o.Active() {
			stats.ActiveOrders++
		}
		created := o.CreatedAt.In(now.Location())
		if !created.Before(startOfDay) && created.Before(endOfDay) {
			stats.TodayOrders++
			if o.Status == models.StatusDelivered {
				revenue = append(revenue, o.Total)
			}
		}
	}
	stats.TodayRevenue = pricing.Sum(revenue...)

	stats.TotalDeliverers = len(st.Deliverers)
	for _, d := range st.Deliverers {
		if d.Available {
			stats.AvailableDeliverers++
		}
	}
	for _, p := range st.Products {
		if p.IsPromo {
			stats.Promos++
		}
	}

	recent := make([]models.Order, len(st.Orders))
	copy(recent, st.Orders)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].CreatedAt.After(recent[j].CreatedAt) })
	if len(recent) > 5 {
		recent = recent[:5]
	}
	stats.RecentOrders = recent
	return stats
}
