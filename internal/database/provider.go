package database

import (
	"context"

	ierr "provider-subscription-api/internal/errors"
	"provider-subscription-api/internal/models"

	"gorm.io/gorm"
)

// CreateProvider inserts a provider and its initial subscription record in one transaction.
func (s *Store) CreateProvider(ctx context.Context, provider *models.ServiceProvider, sub *models.Subscription) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ServiceProvider{}).Where("email = ?", provider.Email).Count(&count).Error; err != nil {
			return translate(err, "provider", provider.Email)
		}
		if count > 0 {
			return ierr.NewError("duplicate provider email").
				WithHintf("A provider with email %s is already registered", provider.Email).
				WithReportableDetails(map[string]any{"email": provider.Email}).
				Mark(ierr.ErrAlreadyExists)
		}

		if err := tx.Create(provider).Error; err != nil {
			return translate(err, "provider", provider.ProviderID)
		}
		sub.ProviderID = provider.ProviderID
		if err := tx.Create(sub).Error; err != nil {
			return translate(err, "subscription", provider.ProviderID)
		}
		return nil
	})
}

// GetProvider loads a provider by its public id.
func (s *Store) GetProvider(ctx context.Context, providerID string) (*models.ServiceProvider, error) {
	var provider models.ServiceProvider
	err := s.db.WithContext(ctx).Where("provider_id = ?", providerID).First(&provider).Error
	if err != nil {
		return nil, translate(err, "provider", providerID)
	}
	return &provider, nil
}

// ListProvidersWithSubscription returns all providers, newest first, with their record preloaded.
func (s *Store) ListProvidersWithSubscription(ctx context.Context) ([]models.ServiceProvider, error) {
	var providers []models.ServiceProvider
	err := s.db.WithContext(ctx).
		Preload("Subscription").
		Order("created_at DESC").
		Find(&providers).Error
	if err != nil {
		return nil, translate(err, "provider", "*")
	}
	return providers, nil
}

// DeleteProvider removes a provider with its subscription record, events and offers.
func (s *Store) DeleteProvider(ctx context.Context, providerID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var provider models.ServiceProvider
		if err := tx.Where("provider_id = ?", providerID).First(&provider).Error; err != nil {
			return translate(err, "provider", providerID)
		}

		children := []interface{}{
			&models.ServiceOffer{},
			&models.SubscriptionEvent{},
			&models.Subscription{},
		}
		for _, child := range children {
			if err := tx.Unscoped().Where("provider_id = ?", providerID).Delete(child).Error; err != nil {
				return translate(err, "provider", providerID)
			}
		}

		if err := tx.Unscoped().Delete(&provider).Error; err != nil {
			return translate(err, "provider", providerID)
		}
		return nil
	})
}
