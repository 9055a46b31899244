package database

import (
	"context"

	"provider-subscription-api/internal/models"
)

// AppendEvent stores an audit event outside of a subscription write.
func (s *Store) AppendEvent(ctx context.Context, event *models.SubscriptionEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return translate(err, "subscription event", event.ProviderID)
	}
	return nil
}

// ListEvents returns the events of a provider, newest first.
func (s *Store) ListEvents(ctx context.Context, providerID string) ([]models.SubscriptionEvent, error) {
	var events []models.SubscriptionEvent
	err := s.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("occurred_at DESC, id DESC").
		Find(&events).Error
	if err != nil {
		return nil, translate(err, "subscription event", providerID)
	}
	return events, nil
}

// LastEvent returns the newest event of the given action, or nil when there is none.
func (s *Store) LastEvent(ctx context.Context, providerID, action string) (*models.SubscriptionEvent, error) {
	var events []models.SubscriptionEvent
	err := s.db.WithContext(ctx).
		Where("provider_id = ? AND action = ?", providerID, action).
		Order("occurred_at DESC, id DESC").
		Limit(1).
		Find(&events).Error
	if err != nil {
		return nil, translate(err, "subscription event", providerID)
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}
