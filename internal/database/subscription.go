package database

import (
	"context"

	ierr "provider-subscription-api/internal/errors"
	"provider-subscription-api/internal/models"

	"gorm.io/gorm"
)

// GetSubscription loads the subscription record of a provider.
func (s *Store) GetSubscription(ctx context.Context, providerID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).Where("provider_id = ?", providerID).First(&sub).Error
	if err != nil {
		return nil, translate(err, "subscription", providerID)
	}
	return &sub, nil
}

// ListSubscriptions returns every subscription record.
func (s *Store) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	var subs []models.Subscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, translate(err, "subscription", "*")
	}
	return subs, nil
}

// CompareAndSwapSubscription writes sub only if the stored version still equals sub.Version,
// then appends event in the same transaction. On success sub.Version is advanced.
// A stale version returns ErrConcurrentModification and nothing is written.
func (s *Store) CompareAndSwapSubscription(ctx context.Context, sub *models.Subscription, event *models.SubscriptionEvent) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Subscription{}).
			Where("provider_id = ? AND version = ?", sub.ProviderID, sub.Version).
			Updates(map[string]interface{}{
				"plan":              sub.Plan,
				"start_at":          sub.StartAt,
				"end_at":            sub.EndAt,
				"payment_verified":  sub.PaymentVerified,
				"payment_notes":     sub.PaymentNotes,
				"is_active_account": sub.IsActiveAccount,
				"version":           gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return translate(result.Error, "subscription", sub.ProviderID)
		}
		if result.RowsAffected == 0 {
			return ierr.NewError("subscription version changed").
				WithHint("The subscription was modified by another request, please retry").
				WithReportableDetails(map[string]any{
					"provider_id": sub.ProviderID,
					"version":     sub.Version,
				}).
				Mark(ierr.ErrConcurrentModification)
		}

		if event != nil {
			if err := tx.Create(event).Error; err != nil {
				return translate(err, "subscription event", sub.ProviderID)
			}
		}

		sub.Version++
		return nil
	})
}
