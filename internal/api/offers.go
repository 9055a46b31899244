package api

import (
	"provider-subscription-api/internal/middleware"
	"provider-subscription-api/internal/response"
	"provider-subscription-api/internal/services"

	"github.com/gin-gonic/gin"
)

// ListPublicOffers lists offers of providers with a visible subscription
// GET /api/service-offers
func (h *Handler) ListPublicOffers(c *gin.Context) {
	offers, err := h.offers.ListPublic(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	response.SuccessJSON(c, offers)
}

// ListMyOffers lists the authenticated provider's offers
// GET /api/provider/offers
func (h *Handler) ListMyOffers(c *gin.Context) {
	provider := middleware.CurrentProvider(c)

	offers, err := h.offers.ListByProvider(c.Request.Context(), provider.ProviderID)
	if err != nil {
		c.Error(err)
		return
	}

	response.SuccessJSON(c, offers)
}

// CreateOffer creates an offer for the authenticated provider
// POST /api/provider/offers
func (h *Handler) CreateOffer(c *gin.Context) {
	var req services.CreateOfferInput
	if !bindJSON(c, &req) {
		return
	}

	provider := middleware.CurrentProvider(c)
	offer, err := h.offers.Create(c.Request.Context(), provider.ProviderID, req)
	if err != nil {
		c.Error(err)
		return
	}

	response.CreatedJSON(c, "Offer created successfully", offer)
}

// UpdateOffer updates one of the authenticated provider's offers
// PUT /api/provider/offers/:offer_id
func (h *Handler) UpdateOffer(c *gin.Context) {
	var req services.UpdateOfferInput
	if !bindJSON(c, &req) {
		return
	}

	provider := middleware.CurrentProvider(c)
	offer, err := h.offers.Update(c.Request.Context(), provider.ProviderID, c.Param("offer_id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	response.SuccessJSON(c, offer)
}

// DeleteOffer deletes one of the authenticated provider's offers
// DELETE /api/provider/offers/:offer_id
func (h *Handler) DeleteOffer(c *gin.Context) {
	provider := middleware.CurrentProvider(c)

	if err := h.offers.Delete(c.Request.Context(), provider.ProviderID, c.Param("offer_id")); err != nil {
		c.Error(err)
		return
	}

	response.MessageJSON(c, "Offer deleted successfully")
}
