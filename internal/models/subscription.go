package models

import (
	"time"

	"provider-subscription-api/internal/subscription"
)

// Subscription is the persisted subscription record of one provider.
// Status is never stored; it is derived from these fields on every read.
type Subscription struct {
	BaseModel

	ProviderID string `json:"provider_id" gorm:"uniqueIndex;not null;size:40"`

	Plan            string     `json:"plan" gorm:"not null;size:20;default:'none';index"`
	StartAt         *time.Time `json:"start_at"`
	EndAt           *time.Time `json:"end_at" gorm:"index"`
	PaymentVerified bool       `json:"payment_verified" gorm:"not null;default:false"`
	PaymentNotes    string     `json:"payment_notes" gorm:"type:text"`
	IsActiveAccount bool       `json:"is_active_account" gorm:"not null;default:true"`

	// Version is bumped on every write and checked by compare-and-swap updates.
	Version int64 `json:"version" gorm:"not null;default:1"`
}

// Record converts the row into the lifecycle record. Unknown plans read as none.
func (s *Subscription) Record() subscription.Record {
	plan, err := subscription.ParsePlan(s.Plan)
	if err != nil {
		plan = subscription.PlanNone
	}
	return subscription.Record{
		Plan:            plan,
		StartAt:         s.StartAt,
		EndAt:           s.EndAt,
		PaymentVerified: s.PaymentVerified,
		PaymentNotes:    s.PaymentNotes,
		IsActiveAccount: s.IsActiveAccount,
	}
}

// Apply copies a lifecycle record onto the row. Version is left untouched.
func (s *Subscription) Apply(r subscription.Record) {
	s.Plan = string(r.Plan)
	s.StartAt = r.StartAt
	s.EndAt = r.EndAt
	s.PaymentVerified = r.PaymentVerified
	s.PaymentNotes = r.PaymentNotes
	s.IsActiveAccount = r.IsActiveAccount
}
