package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pizzatrack/internal/models"
	"pizzatrack/internal/repository"
	"pizzatrack/internal/services"
)

// APIHandler serves the admin console: orders, deliverers, the live map and
// the dashboard.
type APIHandler struct {
	orderService     services.OrderService
	delivererService services.DelivererService
	trackingService  services.TrackingService
	dashboardService services.DashboardService
}

func NewAPIHandler(
	orderService services.OrderService,
	delivererService services.DelivererService,
	trackingService services.TrackingService,
	dashboardService services.DashboardService,
) *APIHandler {
	return &APIHandler{
		orderService:     orderService,
		delivererService: delivererService,
		trackingService:  trackingService,
		dashboardService: dashboardService,
	}
}

// Order endpoints

func (h *APIHandler) ListOrders(c *gin.Context) {
	filter := repository.OrderFilter{
		Status:      models.OrderStatus(c.Query("status")),
		DelivererID: c.Query("delivererId"),
		ActiveOnly:  c.Query("active") == "true",
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			badRequest(c, "Invalid limit")
			return
		}
		filter.Limit = limit
	}
	if v := c.Query("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			badRequest(c, "Invalid since, expected RFC3339")
			return
		}
		filter.Since = &since
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *APIHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *APIHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *APIHandler) UpdateOrder(c *gin.Context) {
	var req services.UpdateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *APIHandler) DeleteOrder(c *gin.Context) {
	if err := h.orderService.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *APIHandler) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Status is required")
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// AssignDeliverer takes {"delivererId": null} to unassign.
func (h *APIHandler) AssignDeliverer(c *gin.Context) {
	var req struct {
		DelivererID *string `json:"delivererId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	order, err := h.orderService.AssignDeliverer(c.Request.Context(), c.Param("id"), req.DelivererID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Deliverer endpoints

func (h *APIHandler) ListDeliverers(c *gin.Context) {
	deliverers, err := h.delivererService.ListDeliverers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deliverers)
}

func (h *APIHandler) GetDeliverer(c *gin.Context) {
	d, err := h.delivererService.GetDeliverer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *APIHandler) CreateDeliverer(c *gin.Context) {
	var d models.Deliverer
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	if err := h.delivererService.CreateDeliverer(c.Request.Context(), &d); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *APIHandler) UpdateDeliverer(c *gin.Context) {
	var d models.Deliverer
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	d.ID = c.Param("id")
	if err := h.delivererService.UpdateDeliverer(c.Request.Context(), &d); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *APIHandler) DeleteDeliverer(c *gin.Context) {
	if err := h.delivererService.DeleteDeliverer(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateDelivererLocation lets the admin place a deliverer by hand.
func (h *APIHandler) UpdateDelivererLocation(c *gin.Context) {
	var req struct {
		Coords json.RawMessage `json:"coords"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Coords) == 0 {
		badRequest(c, "Coords are required")
		return
	}

	loc, err := h.delivererService.UpdateLocation(c.Request.Context(), c.Param("id"), req.Coords)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coords": loc})
}

// Map and dashboard

func (h *APIHandler) Map(c *gin.Context) {
	c.JSON(http.StatusOK, h.trackingService.MapOverview())
}

func (h *APIHandler) Geocode(c *gin.Context) {
	coords, err := h.trackingService.Geocode(c.Request.Context(), c.Query("address"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coords": coords})
}

func (h *APIHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboardService.Stats(time.Now()))
}
