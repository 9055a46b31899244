package services

import (
	"context"
	"time"
)

// Notification events sent to webhooks and emails.
const (
	EventSubscriptionApproved        = "subscription.approved"
	EventSubscriptionPaymentVerified = "subscription.payment_verified"
	EventSubscriptionDeactivated     = "subscription.deactivated"
	EventSubscriptionReactivated     = "subscription.reactivated"
	EventSubscriptionRenewalRequest  = "subscription.renewal_requested"
)

// Notification describes one subscription change for the outbound channels.
type Notification struct {
	Event        string
	ProviderID   string
	BusinessName string
	Email        string
	Actor        string
	Notes        string
	RequestPlan  string
	View         StatusView
	OccurredAt   time.Time
}

// Notifier delivers a notification on one channel.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, n Notification) error
}

// Publisher hands notifications off without blocking the caller.
type Publisher interface {
	Publish(n Notification)
}
