package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pizzatrack/internal/services"
)

// WhatsAppHandler serves the manual messaging fallback: the admin copies the
// text or opens the wa.me link when no provider is configured.
type WhatsAppHandler struct {
	orderService services.OrderService
}

func NewWhatsAppHandler(orderService services.OrderService) *WhatsAppHandler {
	return &WhatsAppHandler{orderService: orderService}
}

func messageKind(c *gin.Context) services.MessageKind {
	if t := c.Query("type"); t != "" {
		return services.MessageKind(t)
	}
	return services.MessageReceived
}

func (h *WhatsAppHandler) GetMessage(c *gin.Context) {
	kind := messageKind(c)
	msg, err := h.orderService.MessageFor(c.Request.Context(), c.Param("id"), kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": kind, "message": msg})
}

func (h *WhatsAppHandler) GetLink(c *gin.Context) {
	kind := messageKind(c)
	link, err := h.orderService.WhatsAppLink(c.Request.Context(), c.Param("id"), kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": kind, "url": link})
}
