package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pizzatrack/internal/auth"
	"pizzatrack/internal/logger"
	"pizzatrack/internal/metrics"
	"pizzatrack/internal/models"
	"pizzatrack/internal/services"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Services struct {
	Users      services.UserService
	Orders     services.OrderService
	Deliverers services.DelivererService
	Tracking   services.TrackingService
	Cart       services.CartService
	Checkout   services.CheckoutService
	Catalog    services.CatalogService
	Settings   services.SettingsService
	Dashboard  services.DashboardService
}

// NewRouter builds the engine with all public, admin and delivery routes.
func NewRouter(svc Services, tokens *auth.Manager, checks map[string]HealthCheck) *gin.Engine {
	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.L.Error("panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}))
	router.Use(logger.Middleware(), metrics.Middleware())

	authHandler := NewAuthHandler(svc.Users)
	apiHandler := NewAPIHandler(svc.Orders, svc.Deliverers, svc.Tracking, svc.Dashboard)
	whatsappHandler := NewWhatsAppHandler(svc.Orders)
	catalogHandler := NewCatalogHandler(svc.Catalog)
	settingsHandler := NewSettingsHandler(svc.Settings)
	storefrontHandler := NewStorefrontHandler(svc.Cart, svc.Checkout)
	trackingHandler := NewTrackingHandler(svc.Tracking)
	deliveryHandler := NewDeliveryHandler(svc.Deliverers)

	router.GET("/healthz", healthz(checks))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
		api.GET("/auth/me", auth.Authenticate(tokens), authHandler.Me)

		// Storefront
		api.GET("/menu", catalogHandler.Menu)
		api.GET("/pizzeria", settingsHandler.Public)
		api.GET("/cart/:cartId", storefrontHandler.GetCart)
		api.DELETE("/cart/:cartId", storefrontHandler.ClearCart)
		api.POST("/cart/:cartId/items", storefrontHandler.AddItem)
		api.PUT("/cart/:cartId/items/:productId", storefrontHandler.SetQuantity)
		api.DELETE("/cart/:cartId/items/:productId", storefrontHandler.RemoveItem)
		api.POST("/checkout/:cartId", storefrontHandler.Checkout)

		// Public tracking
		api.GET("/track/:orderId", trackingHandler.Snapshot)
		api.GET("/track/:orderId/stream", trackingHandler.Stream)
	}

	admin := api.Group("/admin", auth.Authenticate(tokens), auth.RequireRole(models.RoleAdmin))
	{
		admin.GET("/dashboard", apiHandler.Dashboard)
		admin.GET("/map", apiHandler.Map)
		admin.GET("/geocode", apiHandler.Geocode)

		admin.GET("/orders", apiHandler.ListOrders)
		admin.POST("/orders", apiHandler.CreateOrder)
		admin.GET("/orders/:id", apiHandler.GetOrder)
		admin.PUT("/orders/:id", apiHandler.UpdateOrder)
		admin.DELETE("/orders/:id", apiHandler.DeleteOrder)
		admin.PATCH("/orders/:id/status", apiHandler.UpdateOrderStatus)
		admin.PATCH("/orders/:id/deliverer", apiHandler.AssignDeliverer)
		admin.GET("/orders/:id/message", whatsappHandler.GetMessage)
		admin.GET("/orders/:id/whatsapp", whatsappHandler.GetLink)

		admin.GET("/deliverers", apiHandler.ListDeliverers)
		admin.POST("/deliverers", apiHandler.CreateDeliverer)
		admin.GET("/deliverers/:id", apiHandler.GetDeliverer)
		admin.PUT("/deliverers/:id", apiHandler.UpdateDeliverer)
		admin.DELETE("/deliverers/:id", apiHandler.DeleteDeliverer)
		admin.PUT("/deliverers/:id/location", apiHandler.UpdateDelivererLocation)

		admin.GET("/products", catalogHandler.ListProducts)
		admin.POST("/products", catalogHandler.CreateProduct)
		admin.GET("/products/:id", catalogHandler.GetProduct)
		admin.PUT("/products/:id", catalogHandler.UpdateProduct)
		admin.DELETE("/products/:id", catalogHandler.DeleteProduct)
		admin.GET("/categories", catalogHandler.ListCategories)
		admin.POST("/categories", catalogHandler.CreateCategory)
		admin.PUT("/categories/:id", catalogHandler.UpdateCategory)
		admin.DELETE("/categories/:id", catalogHandler.DeleteCategory)

		admin.GET("/settings", settingsHandler.Get)
		admin.PUT("/settings", settingsHandler.Save)
		admin.POST("/settings/test-webhook", settingsHandler.TestWebhook)
		admin.POST("/settings/reset-catalog", settingsHandler.ResetCatalog)
		admin.POST("/uploads", settingsHandler.UploadImage)

		admin.GET("/users", authHandler.ListUsers)
		admin.POST("/users", authHandler.CreateUser)
		admin.DELETE("/users/:id", authHandler.DeleteUser)
	}

	delivery := api.Group("/delivery", auth.Authenticate(tokens), auth.RequireRole(models.RoleDeliverer, models.RoleAdmin))
	{
		delivery.GET("/orders", deliveryHandler.MyOrders)
		delivery.POST("/orders/:id/start", deliveryHandler.StartDelivery)
		delivery.POST("/orders/:id/finish", deliveryHandler.FinishDelivery)
		delivery.POST("/location", deliveryHandler.ReportLocation)
	}

	return router
}

func healthz(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		result := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				result[name] = err.Error()
				continue
			}
			result[name] = "ok"
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": result})
	}
}
