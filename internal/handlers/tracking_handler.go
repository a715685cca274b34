package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pizzatrack/internal/logger"
	"pizzatrack/internal/services"
	"pizzatrack/pkg/sse"
)

// TrackingHandler serves the public tracking page. No authentication: the
// order id in the link is the only credential.
type TrackingHandler struct {
	trackingService services.TrackingService
}

func NewTrackingHandler(trackingService services.TrackingService) *TrackingHandler {
	return &TrackingHandler{trackingService: trackingService}
}

func (h *TrackingHandler) Snapshot(c *gin.Context) {
	snap, err := h.trackingService.Snapshot(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Stream pushes "snapshot" events until the client goes away or the order is
// deleted.
func (h *TrackingHandler) Stream(c *gin.Context) {
	orderID := c.Param("orderId")
	ctx := c.Request.Context()

	// fail with a normal JSON error before switching to event-stream
	if _, err := h.trackingService.Snapshot(ctx, orderID); err != nil {
		respondError(c, err)
		return
	}

	stream := sse.New(c.Writer, c.Request)
	if stream == nil {
		return
	}
	err := h.trackingService.Stream(ctx, orderID, func(snap *services.TrackingSnapshot) error {
		return stream.Send("snapshot", snap)
	})
	if err != nil && !errors.Is(err, sse.ErrClosed) {
		logger.L.Debug("tracking stream ended", "order_id", orderID, "error", err)
	}
	_ = stream.Send("end", gin.H{"orderId": orderID})
}
