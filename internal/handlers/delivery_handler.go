package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pizzatrack/internal/auth"
	"pizzatrack/internal/models"
	"pizzatrack/internal/services"
)

// DeliveryHandler serves the deliverer's phone view. Deliverers act on their
// own id from the token; admins pick one with ?delivererId=.
type DeliveryHandler struct {
	delivererService services.DelivererService
}

func NewDeliveryHandler(delivererService services.DelivererService) *DeliveryHandler {
	return &DeliveryHandler{delivererService: delivererService}
}

func delivererID(c *gin.Context) (string, bool) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		return "", false
	}
	if claims.Role == models.RoleDeliverer {
		return claims.DelivererID, claims.DelivererID != ""
	}
	id := c.Query("delivererId")
	return id, id != ""
}

func (h *DeliveryHandler) MyOrders(c *gin.Context) {
	id, ok := delivererID(c)
	if !ok {
		badRequest(c, "No deliverer selected")
		return
	}
	orders, err := h.delivererService.MyOrders(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":  orders,
		"summary": h.delivererService.Summary(id),
	})
}

func (h *DeliveryHandler) StartDelivery(c *gin.Context) {
	id, ok := delivererID(c)
	if !ok {
		badRequest(c, "No deliverer selected")
		return
	}
	order, err := h.delivererService.StartDelivery(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *DeliveryHandler) FinishDelivery(c *gin.Context) {
	id, ok := delivererID(c)
	if !ok {
		badRequest(c, "No deliverer selected")
		return
	}
	order, err := h.delivererService.FinishDelivery(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ReportLocation accepts {"coords": [...]} or {"error": "denied"}.
func (h *DeliveryHandler) ReportLocation(c *gin.Context) {
	id, ok := delivererID(c)
	if !ok {
		badRequest(c, "No deliverer selected")
		return
	}
	var req services.LocationReport
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	res, err := h.delivererService.ReportLocation(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
