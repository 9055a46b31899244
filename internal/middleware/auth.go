package middleware

import (
	"crypto/subtle"

	ierr "provider-subscription-api/internal/errors"
	"provider-subscription-api/internal/models"
	"provider-subscription-api/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	ProviderIDHeader = "X-Provider-ID"
	APIKeyHeader     = "X-API-Key"
	AdminKeyHeader   = "X-Admin-Key"

	ContextProviderKey = "provider"
	ContextActorKey    = "actor"
)

// ProviderAuthMiddleware authenticates a provider by id and API key
func ProviderAuthMiddleware(providers *services.ProviderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		providerID := c.GetHeader(ProviderIDHeader)
		apiKey := c.GetHeader(APIKeyHeader)

		if providerID == "" || apiKey == "" {
			c.Error(ierr.NewError("missing provider credentials").
				WithHint("Missing X-Provider-ID or X-API-Key header").
				Mark(ierr.ErrPermissionDenied))
			c.Abort()
			return
		}

		provider, err := providers.Authenticate(c.Request.Context(), providerID, apiKey)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		c.Set(ContextProviderKey, provider)
		c.Set(ContextActorKey, provider.ProviderID)
		c.Next()
	}
}

// AdminAuthMiddleware checks the shared admin key. An empty configured key locks the admin API.
func AdminAuthMiddleware(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(AdminKeyHeader)

		if adminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(adminKey)) != 1 {
			c.Error(ierr.NewError("invalid admin key").
				WithHint("Invalid or missing X-Admin-Key header").
				Mark(ierr.ErrPermissionDenied))
			c.Abort()
			return
		}

		c.Set(ContextActorKey, "admin")
		c.Next()
	}
}

// CurrentProvider returns the provider set by ProviderAuthMiddleware
func CurrentProvider(c *gin.Context) *models.ServiceProvider {
	if v, ok := c.Get(ContextProviderKey); ok {
		if provider, ok := v.(*models.ServiceProvider); ok {
			return provider
		}
	}
	return nil
}

// Actor names who performs the request, for the audit trail
func Actor(c *gin.Context) string {
	return c.GetString(ContextActorKey)
}
