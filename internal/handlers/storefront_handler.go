package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pizzatrack/internal/services"
)

// StorefrontHandler serves the public cart and checkout. Carts are addressed
// by an id the client generates and keeps.
type StorefrontHandler struct {
	cartService     services.CartService
	checkoutService services.CheckoutService
}

func NewStorefrontHandler(cartService services.CartService, checkoutService services.CheckoutService) *StorefrontHandler {
	return &StorefrontHandler{cartService: cartService, checkoutService: checkoutService}
}

type cartItemRequest struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

func (h *StorefrontHandler) GetCart(c *gin.Context) {
	ct, err := h.cartService.GetCart(c.Request.Context(), c.Param("cartId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": ct, "count": ct.Count(), "total": ct.Total()})
}

func (h *StorefrontHandler) AddItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductID == "" {
		badRequest(c, "productId is required")
		return
	}
	ct, err := h.cartService.AddItem(c.Request.Context(), c.Param("cartId"), req.ProductID, req.VariantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": ct, "count": ct.Count(), "total": ct.Total()})
}

// RemoveItem takes one unit off the line.
func (h *StorefrontHandler) RemoveItem(c *gin.Context) {
	ct, err := h.cartService.RemoveItem(c.Request.Context(), c.Param("cartId"), c.Param("productId"), c.Query("variantId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": ct, "count": ct.Count(), "total": ct.Total()})
}

func (h *StorefrontHandler) SetQuantity(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	ct, err := h.cartService.SetQuantity(c.Request.Context(), c.Param("cartId"), c.Param("productId"), req.VariantID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": ct, "count": ct.Count(), "total": ct.Total()})
}

func (h *StorefrontHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.ClearCart(c.Request.Context(), c.Param("cartId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StorefrontHandler) Checkout(c *gin.Context) {
	var req services.CheckoutInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	res, err := h.checkoutService.Checkout(c.Request.Context(), c.Param("cartId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if res.Order != nil {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}
