package services

import (
	"context"
	"time"

	"provider-subscription-api/internal/database"
	ierr "provider-subscription-api/internal/errors"
	"provider-subscription-api/internal/models"
	"provider-subscription-api/internal/subscription"
	"provider-subscription-api/pkg/logging"

	"github.com/samber/lo"
)

// Event actions stored in the subscription history.
const (
	ActionApprove        = "approve"
	ActionVerifyPayment  = "verify_payment"
	ActionDeactivate     = "deactivate"
	ActionReactivate     = "reactivate"
	ActionRenewalRequest = "renewal_request"
)

// casAttempts is the number of read-transition-write cycles before giving up.
const casAttempts = 2

// SubscriptionServiceConfig holds the timing knobs of the action surface.
type SubscriptionServiceConfig struct {
	LockTTL       time.Duration
	RenewalWindow time.Duration
}

// SubscriptionService applies lifecycle transitions to stored records.
type SubscriptionService struct {
	store     *database.Store
	locker    Locker
	limiter   RateLimiter
	publisher Publisher
	clock     Clock
	cfg       SubscriptionServiceConfig
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(store *database.Store, locker Locker, limiter RateLimiter, publisher Publisher, clock Clock, cfg SubscriptionServiceConfig) *SubscriptionService {
	return &SubscriptionService{
		store:     store,
		locker:    locker,
		limiter:   limiter,
		publisher: publisher,
		clock:     clock,
		cfg:       cfg,
	}
}

// transitionFunc applies one engine operation and names the resulting action.
type transitionFunc func(r subscription.Record, now time.Time) (subscription.Record, string, error)

// Approve starts the trial of a provider awaiting approval.
func (s *SubscriptionService) Approve(ctx context.Context, providerID, actor string) (*StatusView, error) {
	return s.transition(ctx, providerID, actor, "", func(r subscription.Record, now time.Time) (subscription.Record, string, error) {
		next, err := subscription.Approve(r, now)
		return next, ActionApprove, err
	})
}

// VerifyPayment records a confirmed payment and opens a fresh paid period.
func (s *SubscriptionService) VerifyPayment(ctx context.Context, providerID, planName, notes, actor string) (*StatusView, error) {
	plan, err := subscription.ParsePlan(planName)
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, providerID, actor, notes, func(r subscription.Record, now time.Time) (subscription.Record, string, error) {
		next, err := subscription.VerifyPayment(r, plan, notes, now)
		return next, ActionVerifyPayment, err
	})
}

// SetActive deactivates or reactivates a provider account.
func (s *SubscriptionService) SetActive(ctx context.Context, providerID string, active bool, actor string) (*StatusView, error) {
	return s.transition(ctx, providerID, actor, "", func(r subscription.Record, _ time.Time) (subscription.Record, string, error) {
		return subscription.SetActive(r, active), activeAction(active), nil
	})
}

// Toggle flips the account flag.
func (s *SubscriptionService) Toggle(ctx context.Context, providerID, actor string) (*StatusView, error) {
	return s.transition(ctx, providerID, actor, "", func(r subscription.Record, _ time.Time) (subscription.Record, string, error) {
		active := !r.IsActiveAccount
		return subscription.SetActive(r, active), activeAction(active), nil
	})
}

func activeAction(active bool) string {
	if active {
		return ActionReactivate
	}
	return ActionDeactivate
}

func (s *SubscriptionService) transition(ctx context.Context, providerID, actor, notes string, apply transitionFunc) (*StatusView, error) {
	provider, err := s.store.GetProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, "provider:"+providerID, s.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		sub    *models.Subscription
		action string
		now    time.Time
	)
	for attempt := 1; ; attempt++ {
		sub, err = s.store.GetSubscription(ctx, providerID)
		if err != nil {
			return nil, err
		}

		now = s.clock.Now()
		var next subscription.Record
		next, action, err = apply(sub.Record(), now)
		if err != nil {
			return nil, err
		}
		sub.Apply(next)

		view := NewStatusView(sub, now)
		event := &models.SubscriptionEvent{
			ProviderID: providerID,
			Action:     action,
			Actor:      actor,
			Plan:       string(view.Plan),
			Status:     string(view.Status),
			StartAt:    view.StartAt,
			EndAt:      view.EndAt,
			Notes:      notes,
			OccurredAt: now,
		}

		err = s.store.CompareAndSwapSubscription(ctx, sub, event)
		if err == nil {
			break
		}
		if !ierr.IsConcurrentModification(err) || attempt >= casAttempts {
			return nil, err
		}
		logging.Warnf("Subscription of %s changed during %s, retrying", providerID, action)
	}

	view := NewStatusView(sub, now)
	logging.Infow("subscription transition",
		"provider_id", providerID,
		"action", action,
		"actor", actor,
		"status", view.Status,
		"plan", view.Plan,
		"days_remaining", view.DaysRemaining,
	)

	s.publisher.Publish(Notification{
		Event:        notificationEvent(action),
		ProviderID:   providerID,
		BusinessName: provider.BusinessName,
		Email:        provider.Email,
		Actor:        actor,
		Notes:        notes,
		View:         view,
		OccurredAt:   now,
	})

	return &view, nil
}

func notificationEvent(action string) string {
	switch action {
	case ActionApprove:
		return EventSubscriptionApproved
	case ActionVerifyPayment:
		return EventSubscriptionPaymentVerified
	case ActionDeactivate:
		return EventSubscriptionDeactivated
	case ActionReactivate:
		return EventSubscriptionReactivated
	default:
		return EventSubscriptionRenewalRequest
	}
}

// GetStatus derives the current view of a provider's subscription.
func (s *SubscriptionService) GetStatus(ctx context.Context, providerID string) (*StatusView, error) {
	sub, err := s.store.GetSubscription(ctx, providerID)
	if err != nil {
		return nil, err
	}
	view := NewStatusView(sub, s.clock.Now())
	return &view, nil
}

// ProviderStatusRow is one line of the admin provider list.
type ProviderStatusRow struct {
	ProviderID         string              `json:"provider_id"`
	BusinessName       string              `json:"business_name"`
	Email              string              `json:"email"`
	WhatsAppNumber     string              `json:"whatsapp_number"`
	ServiceType        string              `json:"service_type"`
	CreatedAt          time.Time           `json:"created_at"`
	SubscriptionPlan   subscription.Plan   `json:"subscription_plan"`
	SubscriptionStatus subscription.Status `json:"subscription_status"`
	IsActive           bool                `json:"is_active"`
	DaysRemaining      int                 `json:"days_remaining"`
	Subscription       StatusView          `json:"subscription"`

	// newest renewal request, if the provider ever sent one
	RenewalRequestedAt   *time.Time `json:"renewal_requested_at,omitempty"`
	RenewalRequestedPlan string     `json:"renewal_requested_plan,omitempty"`
}

// ListStatuses returns every provider with its derived subscription status.
func (s *SubscriptionService) ListStatuses(ctx context.Context) ([]ProviderStatusRow, error) {
	providers, err := s.store.ListProvidersWithSubscription(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	rows := make([]ProviderStatusRow, 0, len(providers))
	for _, p := range providers {
		row := newProviderStatusRow(p, now)
		last, err := s.store.LastEvent(ctx, p.ProviderID, ActionRenewalRequest)
		if err != nil {
			return nil, err
		}
		if last != nil {
			row.RenewalRequestedAt = &last.OccurredAt
			row.RenewalRequestedPlan = last.Plan
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func newProviderStatusRow(p models.ServiceProvider, now time.Time) ProviderStatusRow {
	sub := p.Subscription
	if sub == nil {
		// registered before the record existed; treat as a fresh registration
		sub = &models.Subscription{ProviderID: p.ProviderID, Plan: string(subscription.PlanNone), IsActiveAccount: true}
	}
	view := NewStatusView(sub, now)

	return ProviderStatusRow{
		ProviderID:         p.ProviderID,
		BusinessName:       p.BusinessName,
		Email:              p.Email,
		WhatsAppNumber:     p.WhatsAppNumber,
		ServiceType:        p.ServiceType,
		CreatedAt:          p.CreatedAt,
		SubscriptionPlan:   view.Plan,
		SubscriptionStatus: view.Status,
		IsActive:           view.IsActive,
		DaysRemaining:      view.DaysRemaining,
		Subscription:       view,
	}
}

// SubscriptionStats aggregates derived statuses across all providers.
type SubscriptionStats struct {
	Total           int                         `json:"total"`
	ByStatus        map[subscription.Status]int `json:"by_status"`
	ByPlan          map[subscription.Plan]int   `json:"by_plan"`
	Visible         int                         `json:"visible"`
	RenewalWarnings int                         `json:"renewal_warnings"`
}

// Stats counts providers by derived status and by plan.
func (s *SubscriptionService) Stats(ctx context.Context) (*SubscriptionStats, error) {
	subs, err := s.store.ListSubscriptions(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	views := lo.Map(subs, func(sub models.Subscription, _ int) StatusView {
		return NewStatusView(&sub, now)
	})

	stats := &SubscriptionStats{
		Total:    len(views),
		ByStatus: make(map[subscription.Status]int, len(subscription.AllStatuses)),
		ByPlan:   make(map[subscription.Plan]int),
	}
	for _, status := range subscription.AllStatuses {
		stats.ByStatus[status] = 0
	}
	for status, count := range lo.CountValuesBy(views, func(v StatusView) subscription.Status { return v.Status }) {
		stats.ByStatus[status] = count
	}
	stats.ByPlan = lo.CountValuesBy(views, func(v StatusView) subscription.Plan { return v.Plan })
	stats.Visible = lo.CountBy(views, func(v StatusView) bool { return v.IsVisible })
	stats.RenewalWarnings = lo.CountBy(views, func(v StatusView) bool { return v.RenewalWarning })

	return stats, nil
}

// History returns the subscription events of a provider, newest first.
func (s *SubscriptionService) History(ctx context.Context, providerID string) ([]models.SubscriptionEvent, error) {
	if _, err := s.store.GetProvider(ctx, providerID); err != nil {
		return nil, err
	}
	return s.store.ListEvents(ctx, providerID)
}

// RequestRenewal records a provider's request for a paid plan and tells the admin.
// It never changes the subscription record.
func (s *SubscriptionService) RequestRenewal(ctx context.Context, providerID, planName, message string) (*models.SubscriptionEvent, error) {
	plan, err := subscription.ParsePlan(planName)
	if err != nil {
		return nil, err
	}
	if !plan.IsPaid() {
		return nil, ierr.NewError("renewal plan is not a paid plan").
			WithHint("Choose a monthly, semester or annual plan").
			WithReportableDetails(map[string]any{"plan": plan}).
			Mark(ierr.ErrValidation)
	}

	provider, err := s.store.GetProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	sub, err := s.store.GetSubscription(ctx, providerID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	view := NewStatusView(sub, now)
	switch view.Status {
	case subscription.StatusDeactivated:
		return nil, ierr.NewError("renewal request from deactivated account").
			WithHint("Account is deactivated, contact support to reactivate it").
			WithReportableDetails(map[string]any{"status": view.Status}).
			Mark(ierr.ErrInvalidTransition)
	case subscription.StatusPendingApproval:
		return nil, ierr.NewError("renewal request before approval").
			WithHint("Your account must be approved before requesting a plan").
			WithReportableDetails(map[string]any{"status": view.Status}).
			Mark(ierr.ErrInvalidTransition)
	}

	allowed, err := s.limiter.Allow(ctx, "renewal:"+providerID, s.cfg.RenewalWindow)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ierr.NewError("renewal request rate limited").
			WithHintf("A renewal request was already sent, try again in %d minutes", int(s.cfg.RenewalWindow.Minutes())).
			WithReportableDetails(map[string]any{"retry_after_minutes": int(s.cfg.RenewalWindow.Minutes())}).
			Mark(ierr.ErrRateLimited)
	}

	event := &models.SubscriptionEvent{
		ProviderID: providerID,
		Action:     ActionRenewalRequest,
		Actor:      providerID,
		Plan:       string(plan),
		Status:     string(view.Status),
		StartAt:    view.StartAt,
		EndAt:      view.EndAt,
		Notes:      message,
		OccurredAt: now,
	}
	if err := s.store.AppendEvent(ctx, event); err != nil {
		return nil, err
	}

	logging.Infow("renewal requested",
		"provider_id", providerID,
		"plan", plan,
		"status", view.Status,
	)

	s.publisher.Publish(Notification{
		Event:        EventSubscriptionRenewalRequest,
		ProviderID:   providerID,
		BusinessName: provider.BusinessName,
		Email:        provider.Email,
		Actor:        providerID,
		Notes:        message,
		RequestPlan:  string(plan),
		View:         view,
		OccurredAt:   now,
	})

	return event, nil
}
