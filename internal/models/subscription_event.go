package models

import (
	"time"
)

// SubscriptionEvent is an append-only audit row written for every admin
// transition and provider renewal request.
type SubscriptionEvent struct {
	BaseModel

	ProviderID string `json:"provider_id" gorm:"not null;size:40;index"`
	Action     string `json:"action" gorm:"not null;size:30;index"`
	Actor      string `json:"actor" gorm:"size:100"`

	// Resulting state after the action
	Plan    string     `json:"plan" gorm:"size:20"`
	Status  string     `json:"status" gorm:"size:30"`
	StartAt *time.Time `json:"start_at"`
	EndAt   *time.Time `json:"end_at"`

	Notes      string    `json:"notes" gorm:"type:text"`
	OccurredAt time.Time `json:"occurred_at" gorm:"not null;index"`
}

// TableName sets the table name
func (SubscriptionEvent) TableName() string {
	return "subscription_events"
}
