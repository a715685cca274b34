package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pizzatrack/internal/models"
	"pizzatrack/internal/services"
)

const maxUploadBytes = 5 << 20

type SettingsHandler struct {
	settingsService services.SettingsService
}

func NewSettingsHandler(settingsService services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Public returns the storefront profile without credentials.
func (h *SettingsHandler) Public(c *gin.Context) {
	c.JSON(http.StatusOK, h.settingsService.Public())
}

func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) Save(c *gin.Context) {
	var req models.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	saved, err := h.settingsService.Save(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *SettingsHandler) TestWebhook(c *gin.Context) {
	if err := h.settingsService.TestWebhook(c.Request.Context()); err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

// ResetCatalog requires {"confirm": true}; the deletion cannot be undone.
func (h *SettingsHandler) ResetCatalog(c *gin.Context) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !req.Confirm {
		badRequest(c, "Reset must be confirmed")
		return
	}
	if err := h.settingsService.ResetCatalog(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// UploadImage takes a multipart "file" and a "folder" (products or branding).
func (h *SettingsHandler) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "File is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, "Unreadable file")
		return
	}
	defer f.Close()

	url, err := h.settingsService.UploadImage(c.Request.Context(), c.PostForm("folder"), fh.Filename, f, fh.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
