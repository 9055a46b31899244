package services

import (
	"time"

	"provider-subscription-api/internal/models"
	"provider-subscription-api/internal/subscription"
)

// StatusView is the only subscription shape returned by any surface.
type StatusView struct {
	ProviderID      string              `json:"provider_id"`
	Status          subscription.Status `json:"status"`
	DaysRemaining   int                 `json:"days_remaining"`
	Plan            subscription.Plan   `json:"plan"`
	PaymentVerified bool                `json:"payment_verified"`
	StartAt         *time.Time          `json:"start_at"`
	EndAt           *time.Time          `json:"end_at"`
	RenewalWarning  bool                `json:"renewal_warning"`
	IsVisible       bool                `json:"is_visible"`
	IsActive        bool                `json:"is_active"`
}

// NewStatusView derives the view of a stored record at now.
func NewStatusView(sub *models.Subscription, now time.Time) StatusView {
	record := sub.Record()
	snap := subscription.Derive(record, now)

	return StatusView{
		ProviderID:      sub.ProviderID,
		Status:          snap.Status,
		DaysRemaining:   snap.DaysRemaining,
		Plan:            record.Plan,
		PaymentVerified: record.PaymentVerified,
		StartAt:         record.StartAt,
		EndAt:           record.EndAt,
		RenewalWarning:  snap.RenewalWarning(),
		IsVisible:       snap.Status.IsVisible(),
		IsActive:        record.IsActiveAccount,
	}
}
