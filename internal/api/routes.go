package api

import (
	"context"

	"provider-subscription-api/internal/middleware"
	"provider-subscription-api/internal/services"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports the state of the database and Redis.
type HealthCheck func(ctx context.Context) (dbErr, redisErr error)

// Handler holds the services behind the HTTP surface
type Handler struct {
	providers     *services.ProviderService
	subscriptions *services.SubscriptionService
	offers        *services.OfferService
	health        HealthCheck
	serviceName   string
}

// NewHandler creates the API handler
func NewHandler(providers *services.ProviderService, subscriptions *services.SubscriptionService, offers *services.OfferService, health HealthCheck, serviceName string) *Handler {
	return &Handler{
		providers:     providers,
		subscriptions: subscriptions,
		offers:        offers,
		health:        health,
		serviceName:   serviceName,
	}
}

// SetupRoutes sets up all routes
func SetupRoutes(r *gin.Engine, h *Handler, adminKey string) {
	r.Use(middleware.ErrorHandler())

	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)

		// Public marketplace
		api.POST("/provider/register", h.RegisterProvider)
		api.GET("/service-offers", h.ListPublicOffers)

		// Provider self-service (requires provider authentication)
		provider := api.Group("/provider")
		provider.Use(middleware.ProviderAuthMiddleware(h.providers))
		{
			provider.GET("/me", h.GetMe)
			provider.GET("/subscription", h.GetMySubscription)
			provider.POST("/subscription/renewal-request", h.RequestRenewal)
			provider.GET("/offers", h.ListMyOffers)
			provider.POST("/offers", h.CreateOffer)
			provider.PUT("/offers/:offer_id", h.UpdateOffer)
			provider.DELETE("/offers/:offer_id", h.DeleteOffer)
		}

		// Admin action surface
		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware(adminKey))
		{
			admin.GET("/service-providers", h.ListProviders)
			admin.DELETE("/service-providers/:id", h.DeleteProvider)
			admin.GET("/service-providers/:id/subscription", h.GetProviderSubscription)
			admin.GET("/service-providers/:id/subscription/history", h.GetSubscriptionHistory)
			admin.POST("/service-providers/:id/approve", h.ApproveProvider)
			admin.POST("/service-providers/:id/verify-payment", h.VerifyPayment)
			admin.PUT("/service-providers/:id/active", h.SetProviderActive)
			admin.PUT("/service-providers/:id/toggle", h.ToggleProvider)
			admin.GET("/subscriptions/stats", h.GetSubscriptionStats)
		}
	}
}
