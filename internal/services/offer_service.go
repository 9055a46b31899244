package services

import (
	"context"
	"strings"
	"time"

	"provider-subscription-api/internal/database"
	ierr "provider-subscription-api/internal/errors"
	"provider-subscription-api/internal/models"
	"provider-subscription-api/pkg/logging"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// CreateOfferInput is a new marketplace listing.
type CreateOfferInput struct {
	Title        string     `json:"title" validate:"required,max=200"`
	Description  string     `json:"description" validate:"omitempty,max=4000"`
	Price        string     `json:"price" validate:"omitempty,max=50"`
	ExchangeRate string     `json:"exchange_rate" validate:"omitempty,max=100"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

// UpdateOfferInput changes the fields that are present and leaves the rest alone.
type UpdateOfferInput struct {
	Title        *string    `json:"title" validate:"omitempty,max=200"`
	Description  *string    `json:"description" validate:"omitempty,max=4000"`
	Price        *string    `json:"price" validate:"omitempty,max=50"`
	ExchangeRate *string    `json:"exchange_rate" validate:"omitempty,max=100"`
	ExpiresAt    *time.Time `json:"expires_at"`
	IsActive     *bool      `json:"is_active"`
}

// PublicOffer is an offer as shown on the marketplace.
type PublicOffer struct {
	OfferID        string     `json:"offer_id"`
	ProviderID     string     `json:"provider_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Price          string     `json:"price"`
	ExchangeRate   string     `json:"exchange_rate"`
	ExpiresAt      *time.Time `json:"expires_at"`
	BusinessName   string     `json:"business_name"`
	WhatsAppNumber string     `json:"whatsapp_number"`
	ServiceType    string     `json:"service_type"`
	CreatedAt      time.Time  `json:"created_at"`
}

// OfferService manages provider listings
type OfferService struct {
	store    *database.Store
	clock    Clock
	validate *validator.Validate
}

// NewOfferService creates a new offer service
func NewOfferService(store *database.Store, clock Clock) *OfferService {
	return &OfferService{store: store, clock: clock, validate: validator.New()}
}

// Create adds an offer for a provider. Offers may be drafted before approval.
func (s *OfferService) Create(ctx context.Context, providerID string, input CreateOfferInput) (*models.ServiceOffer, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := s.validate.Struct(input); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid offer data").
			WithReportableDetails(validationDetails(err)).
			Mark(ierr.ErrValidation)
	}
	if err := s.checkExpiry(input.ExpiresAt); err != nil {
		return nil, err
	}

	offer := &models.ServiceOffer{
		OfferID:      models.GenerateID(models.OfferIDPrefix),
		ProviderID:   providerID,
		Title:        input.Title,
		Description:  input.Description,
		Price:        input.Price,
		ExchangeRate: input.ExchangeRate,
		ExpiresAt:    input.ExpiresAt,
		IsActive:     true,
	}
	if err := s.store.CreateOffer(ctx, offer); err != nil {
		return nil, err
	}

	logging.Infow("offer created", "provider_id", providerID, "offer_id", offer.OfferID)
	return offer, nil
}

// ListByProvider returns the offers of one provider regardless of visibility.
func (s *OfferService) ListByProvider(ctx context.Context, providerID string) ([]models.ServiceOffer, error) {
	return s.store.ListOffersByProvider(ctx, providerID)
}

// Update changes an offer owned by providerID. Setting is_active to false hides it
// from the marketplace without deleting it.
func (s *OfferService) Update(ctx context.Context, providerID, offerID string, input UpdateOfferInput) (*models.ServiceOffer, error) {
	if input.Title != nil {
		*input.Title = strings.TrimSpace(*input.Title)
		if *input.Title == "" {
			return nil, ierr.NewError("empty offer title").
				WithHint("Invalid offer data").
				WithReportableDetails(map[string]any{"Title": "required"}).
				Mark(ierr.ErrValidation)
		}
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid offer data").
			WithReportableDetails(validationDetails(err)).
			Mark(ierr.ErrValidation)
	}
	if err := s.checkExpiry(input.ExpiresAt); err != nil {
		return nil, err
	}

	offer, err := s.ownedOffer(ctx, providerID, offerID)
	if err != nil {
		return nil, err
	}

	var columns []string
	if input.Title != nil {
		offer.Title = *input.Title
		columns = append(columns, "title")
	}
	if input.Description != nil {
		offer.Description = *input.Description
		columns = append(columns, "description")
	}
	if input.Price != nil {
		offer.Price = *input.Price
		columns = append(columns, "price")
	}
	if input.ExchangeRate != nil {
		offer.ExchangeRate = *input.ExchangeRate
		columns = append(columns, "exchange_rate")
	}
	if input.ExpiresAt != nil {
		offer.ExpiresAt = input.ExpiresAt
		columns = append(columns, "expires_at")
	}
	if input.IsActive != nil {
		offer.IsActive = *input.IsActive
		columns = append(columns, "is_active")
	}

	if err := s.store.UpdateOffer(ctx, offer, columns...); err != nil {
		return nil, err
	}

	logging.Infow("offer updated",
		"provider_id", providerID,
		"offer_id", offerID,
		"fields", columns,
	)
	return offer, nil
}

// Delete removes an offer owned by providerID. Offers of other providers read as not found.
func (s *OfferService) Delete(ctx context.Context, providerID, offerID string) error {
	offer, err := s.ownedOffer(ctx, providerID, offerID)
	if err != nil {
		return err
	}
	return s.store.DeleteOffer(ctx, offer)
}

func (s *OfferService) ownedOffer(ctx context.Context, providerID, offerID string) (*models.ServiceOffer, error) {
	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.ProviderID != providerID {
		return nil, ierr.NewError("offer owned by another provider").
			WithHintf("offer %s not found", offerID).
			WithReportableDetails(map[string]any{"entity": "offer", "id": offerID}).
			Mark(ierr.ErrNotFound)
	}
	return offer, nil
}

func (s *OfferService) checkExpiry(expiresAt *time.Time) error {
	if expiresAt == nil || expiresAt.After(s.clock.Now()) {
		return nil
	}
	return ierr.NewError("offer expiry in the past").
		WithHint("expires_at must be in the future").
		WithReportableDetails(map[string]any{"expires_at": expiresAt}).
		Mark(ierr.ErrValidation)
}

// ListPublic returns active, unexpired offers of providers whose subscription is visible right now.
func (s *OfferService) ListPublic(ctx context.Context) ([]PublicOffer, error) {
	offers, err := s.store.ListActiveOffers(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	visible := lo.Filter(offers, func(o models.ServiceOffer, _ int) bool {
		if o.Provider == nil || o.Provider.Subscription == nil || o.IsExpired(now) {
			return false
		}
		return NewStatusView(o.Provider.Subscription, now).IsVisible
	})

	return lo.Map(visible, func(o models.ServiceOffer, _ int) PublicOffer {
		return PublicOffer{
			OfferID:        o.OfferID,
			ProviderID:     o.ProviderID,
			Title:          o.Title,
			Description:    o.Description,
			Price:          o.Price,
			ExchangeRate:   o.ExchangeRate,
			ExpiresAt:      o.ExpiresAt,
			BusinessName:   o.Provider.BusinessName,
			WhatsAppNumber: o.Provider.WhatsAppNumber,
			ServiceType:    o.Provider.ServiceType,
			CreatedAt:      o.CreatedAt,
		}
	}), nil
}
