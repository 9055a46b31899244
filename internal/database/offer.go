package database

import (
	"context"

	"provider-subscription-api/internal/models"
)

// CreateOffer inserts a service offer.
func (s *Store) CreateOffer(ctx context.Context, offer *models.ServiceOffer) error {
	if err := s.db.WithContext(ctx).Create(offer).Error; err != nil {
		return translate(err, "offer", offer.OfferID)
	}
	return nil
}

// GetOffer loads an offer by its public id.
func (s *Store) GetOffer(ctx context.Context, offerID string) (*models.ServiceOffer, error) {
	var offer models.ServiceOffer
	if err := s.db.WithContext(ctx).Where("offer_id = ?", offerID).First(&offer).Error; err != nil {
		return nil, translate(err, "offer", offerID)
	}
	return &offer, nil
}

// ListOffersByProvider returns a provider's offers, newest first.
func (s *Store) ListOffersByProvider(ctx context.Context, providerID string) ([]models.ServiceOffer, error) {
	var offers []models.ServiceOffer
	err := s.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Find(&offers).Error
	if err != nil {
		return nil, translate(err, "offer", providerID)
	}
	return offers, nil
}

// ListActiveOffers returns every active offer with its provider and subscription preloaded.
// Visibility is decided by the caller from the derived status.
func (s *Store) ListActiveOffers(ctx context.Context) ([]models.ServiceOffer, error) {
	var offers []models.ServiceOffer
	err := s.db.WithContext(ctx).
		Preload("Provider.Subscription").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&offers).Error
	if err != nil {
		return nil, translate(err, "offer", "*")
	}
	return offers, nil
}

// UpdateOffer writes the given columns of offer. Zero values in those columns are written too.
func (s *Store) UpdateOffer(ctx context.Context, offer *models.ServiceOffer, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Model(offer).
		Select(append(columns, "updated_at")).
		Updates(offer).Error
	if err != nil {
		return translate(err, "offer", offer.OfferID)
	}
	return nil
}

// DeleteOffer removes an offer.
func (s *Store) DeleteOffer(ctx context.Context, offer *models.ServiceOffer) error {
	if err := s.db.WithContext(ctx).Unscoped().Delete(offer).Error; err != nil {
		return translate(err, "offer", offer.OfferID)
	}
	return nil
}
