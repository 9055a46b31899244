package api

import (
	ierr "provider-subscription-api/internal/errors"
	"provider-subscription-api/internal/middleware"
	"provider-subscription-api/internal/response"

	"github.com/gin-gonic/gin"
)

// ListProviders lists all providers with their derived subscription status
// GET /api/admin/service-providers
func (h *Handler) ListProviders(c *gin.Context) {
	rows, err := h.subscriptions.ListStatuses(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	response.SuccessJSON(c, rows)
}

// GetProviderSubscription gets a provider's subscription status
// GET /api/admin/service-providers/:id/subscription
func (h *Handler) GetProviderSubscription(c *gin.Context) {
	view, err := h.subscriptions.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	response.SuccessJSON(c, view)
}

// GetSubscriptionHistory lists a provider's subscription events, newest first
// GET /api/admin/service-providers/:id/subscription/history
func (h *Handler) GetSubscriptionHistory(c *gin.Context) {
	events, err := h.subscriptions.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	response.SuccessJSON(c, events)
}

// ApproveProvider starts the provider's free trial
// POST /api/admin/service-providers/:id/approve
func (h *Handler) ApproveProvider(c *gin.Context) {
	view, err := h.subscriptions.Approve(c.Request.Context(), c.Param("id"), middleware.Actor(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.SuccessJSON(c, view)
}

// VerifyPaymentRequest represents a confirmed manual payment
type VerifyPaymentRequest struct {
	Plan  string `json:"plan" binding:"required"`
	Notes string `json:"notes" binding:"max=2000"`
}

// VerifyPayment activates a paid plan after a manual payment check
// POST /api/admin/service-providers/:id/verify-payment
func (h *Handler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.subscriptions.VerifyPayment(c.Request.Context(), c.Param("id"), req.Plan, req.Notes, middleware.Actor(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.SuccessJSON(c, view)
}

// SetActiveRequest represents an account (de)activation
type SetActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// SetProviderActive deactivates or reactivates a provider account
// PUT /api/admin/service-providers/:id/active
func (h *Handler) SetProviderActive(c *gin.Context) {
	var req SetActiveRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.IsActive == nil {
		c.Error(ierr.NewError("is_active missing").
			WithHint("is_active is required").
			Mark(ierr.ErrValidation))
		return
	}

	view, err := h.subscriptions.SetActive(c.Request.Context(), c.Param("id"), *req.IsActive, middleware.Actor(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.SuccessJSON(c, view)
}

// ToggleProvider flips the provider's account flag
// PUT /api/admin/service-providers/:id/toggle
func (h *Handler) ToggleProvider(c *gin.Context) {
	view, err := h.subscriptions.Toggle(c.Request.Context(), c.Param("id"), middleware.Actor(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.SuccessJSON(c, view)
}

// DeleteProvider deletes a provider and everything it owns
// DELETE /api/admin/service-providers/:id
func (h *Handler) DeleteProvider(c *gin.Context) {
	if err := h.providers.Delete(c.Request.Context(), c.Param("id"), middleware.Actor(c)); err != nil {
		c.Error(err)
		return
	}

	response.MessageJSON(c, "Provider deleted successfully")
}

// GetSubscriptionStats counts providers by derived status and plan
// GET /api/admin/subscriptions/stats
func (h *Handler) GetSubscriptionStats(c *gin.Context) {
	stats, err := h.subscriptions.Stats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	response.SuccessJSON(c, stats)
}
