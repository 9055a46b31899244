package api

import (
	"provider-subscription-api/internal/middleware"
	"provider-subscription-api/internal/response"
	"provider-subscription-api/internal/services"

	"github.com/gin-gonic/gin"
)

// RegisterProvider registers a new service provider
// POST /api/provider/register
func (h *Handler) RegisterProvider(c *gin.Context) {
	var req services.RegisterProviderInput
	if !bindJSON(c, &req) {
		return
	}

	registered, err := h.providers.Register(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	response.CreatedJSON(c, "Provider registered, awaiting approval", registered)
}

// GetMe returns the authenticated provider
// GET /api/provider/me
func (h *Handler) GetMe(c *gin.Context) {
	response.SuccessJSON(c, middleware.CurrentProvider(c))
}

// GetMySubscription returns the authenticated provider's subscription status
// GET /api/provider/subscription
func (h *Handler) GetMySubscription(c *gin.Context) {
	provider := middleware.CurrentProvider(c)

	view, err := h.subscriptions.GetStatus(c.Request.Context(), provider.ProviderID)
	if err != nil {
		c.Error(err)
		return
	}

	response.SuccessJSON(c, view)
}

// RenewalRequest represents a provider's request for a paid plan
type RenewalRequest struct {
	Plan    string `json:"plan" binding:"required"`
	Message string `json:"message" binding:"max=2000"`
}

// RequestRenewal asks the admin to activate a paid plan
// POST /api/provider/subscription/renewal-request
func (h *Handler) RequestRenewal(c *gin.Context) {
	var req RenewalRequest
	if !bindJSON(c, &req) {
		return
	}

	provider := middleware.CurrentProvider(c)
	event, err := h.subscriptions.RequestRenewal(c.Request.Context(), provider.ProviderID, req.Plan, req.Message)
	if err != nil {
		c.Error(err)
		return
	}

	response.CreatedJSON(c, "Renewal request sent", event)
}
