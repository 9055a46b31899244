package services

import (
	"context"
	"testing"
	"time"

	ierr "provider-subscription-api/internal/errors"
	"provider-subscription-api/internal/models"
	"provider-subscription-api/internal/subscription"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const day = 24 * time.Hour

func TestTrialThenPaidLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "agent@example.com").Provider.ProviderID

	view, err := env.subscriptions.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusPendingApproval, view.Status)
	assert.False(t, view.IsVisible)

	view, err = env.subscriptions.Approve(ctx, id, "admin")
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusTrial, view.Status)
	assert.Equal(t, 7, view.DaysRemaining)
	assert.True(t, view.IsVisible)
	assert.False(t, view.RenewalWarning)

	env.clock.Advance(5 * day)
	view, err = env.subscriptions.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, view.DaysRemaining)
	assert.True(t, view.RenewalWarning)

	env.clock.Advance(3 * day)
	view, err = env.subscriptions.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusAwaitingPayment, view.Status)
	assert.Equal(t, 0, view.DaysRemaining)
	assert.False(t, view.IsVisible)

	view, err = env.subscriptions.VerifyPayment(ctx, id, "monthly", "paypal 5XY", "admin")
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusActive, view.Status)
	assert.Equal(t, subscription.PlanMonthly, view.Plan)
	assert.Equal(t, 30, view.DaysRemaining)
	assert.True(t, view.PaymentVerified)

	sub, err := env.store.GetSubscription(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sub.Version)
	assert.Equal(t, "paypal 5XY", sub.PaymentNotes)

	assert.Equal(t, []string{EventSubscriptionApproved, EventSubscriptionPaymentVerified}, env.publisher.Events())
	last := env.publisher.Last()
	assert.Equal(t, "agent@example.com", last.Email)
	assert.Equal(t, "admin", last.Actor)
}

func TestApproveTwiceIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "agent@example.com").Provider.ProviderID

	_, err := env.subscriptions.Approve(ctx, id, "admin")
	require.NoError(t, err)

	env.clock.Advance(10 * day)
	_, err = env.subscriptions.Approve(ctx, id, "admin")
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidTransition(err))

	view, err := env.subscriptions.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusAwaitingPayment, view.Status)

	events, err := env.subscriptions.History(ctx, id)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestVerifyPaymentErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "agent@example.com").Provider.ProviderID

	_, err := env.subscriptions.VerifyPayment(ctx, id, "monthly", "", "admin")
	assert.True(t, ierr.IsInvalidTransition(err), "pending approval cannot be paid")

	_, err = env.subscriptions.Approve(ctx, id, "admin")
	require.NoError(t, err)

	for _, plan := range []string{"trial", "none", "weekly"} {
		_, err = env.subscriptions.VerifyPayment(ctx, id, plan, "", "admin")
		assert.True(t, ierr.IsValidation(err), plan)
	}

	_, err = env.subscriptions.VerifyPayment(ctx, "prov_missing", "annual", "", "admin")
	assert.True(t, ierr.IsNotFound(err))
}

func TestRenewalResetsWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "agent@example.com").Provider.ProviderID

	_, err := env.subscriptions.Approve(ctx, id, "admin")
	require.NoError(t, err)
	_, err = env.subscriptions.VerifyPayment(ctx, id, "annual", "", "admin")
	require.NoError(t, err)

	env.clock.Advance(100 * day)
	view, err := env.subscriptions.VerifyPayment(ctx, id, "monthly", "downgrade", "admin")
	require.NoError(t, err)
	assert.Equal(t, 30, view.DaysRemaining)
	require.NotNil(t, view.StartAt)
	assert.True(t, env.clock.Now().Equal(*view.StartAt))
}

func TestDeactivationOverridesAndReactivationPreservesPeriod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "agent@example.com").Provider.ProviderID

	_, err := env.subscriptions.Approve(ctx, id, "admin")
	require.NoError(t, err)
	_, err = env.subscriptions.VerifyPayment(ctx, id, "semester", "", "admin")
	require.NoError(t, err)

	view, err := env.subscriptions.SetActive(ctx, id, false, "admin")
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusDeactivated, view.Status)
	assert.False(t, view.IsVisible)
	assert.False(t, view.IsActive)

	_, err = env.subscriptions.VerifyPayment(ctx, id, "monthly", "", "admin")
	assert.True(t, ierr.IsInvalidTransition(err))

	env.clock.Advance(10 * day)
	view, err = env.subscriptions.Toggle(ctx, id, "admin")
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusActive, view.Status)
	assert.Equal(t, 172, view.DaysRemaining)

	events, err := env.subscriptions.History(ctx, id)
	require.NoError(t, err)
	actions := make([]string, 0, len(events))
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []string{ActionReactivate, ActionDeactivate, ActionVerifyPayment, ActionApprove}, actions)
	assert.Contains(t, env.publisher.Events(), EventSubscriptionDeactivated)
}

func TestLockedProviderRejectsAction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "agent@example.com").Provider.ProviderID

	release, err := env.locker.Acquire(ctx, "provider:"+id, time.Second)
	require.NoError(t, err)

	_, err = env.subscriptions.Approve(ctx, id, "admin")
	assert.True(t, ierr.IsConcurrentModification(err))

	release()
	_, err = env.subscriptions.Approve(ctx, id, "admin")
	assert.NoError(t, err)
}

// racingClock bumps the stored version each time the service reads the clock,
// simulating a writer that commits between our read and our write.
type racingClock struct {
	t          *testing.T
	env        *testEnv
	providerID string
	races      int
}

func (c *racingClock) Now() time.Time {
	if c.races > 0 {
		c.races--
		err := c.env.store.DB().Model(&models.Subscription{}).
			Where("provider_id = ?", c.providerID).
			Update("version", gorm.Expr("version + 100")).Error
		require.NoError(c.t, err)
	}
	return c.env.clock.Now()
}

func TestCompareAndSwapRetriesOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "agent@example.com").Provider.ProviderID

	svc := env.subscriptionService(&racingClock{t: t, env: env, providerID: id, races: 1})
	view, err := svc.Approve(ctx, id, "admin")
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusTrial, view.Status)

	t.Run("gives up after the retry", func(t *testing.T) {
		other := env.register(t, "other@example.com").Provider.ProviderID

		svc := env.subscriptionService(&racingClock{t: t, env: env, providerID: other, races: 2})
		_, err := svc.Approve(ctx, other, "admin")
		require.Error(t, err)
		assert.True(t, ierr.IsConcurrentModification(err))

		view, err := env.subscriptions.GetStatus(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusPendingApproval, view.Status)
	})
}

func TestRequestRenewal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "agent@example.com").Provider.ProviderID

	_, err := env.subscriptions.RequestRenewal(ctx, id, "monthly", "")
	assert.True(t, ierr.IsInvalidTransition(err), "pending approval")

	_, err = env.subscriptions.Approve(ctx, id, "admin")
	require.NoError(t, err)

	_, err = env.subscriptions.RequestRenewal(ctx, id, "trial", "")
	assert.True(t, ierr.IsValidation(err))

	before, err := env.store.GetSubscription(ctx, id)
	require.NoError(t, err)

	event, err := env.subscriptions.RequestRenewal(ctx, id, "annual", "please send PayPal link")
	require.NoError(t, err)
	assert.Equal(t, ActionRenewalRequest, event.Action)
	assert.Equal(t, "annual", event.Plan)
	assert.Equal(t, string(subscription.StatusTrial), event.Status)

	after, err := env.store.GetSubscription(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, before.Plan, after.Plan)

	n := env.publisher.Last()
	assert.Equal(t, EventSubscriptionRenewalRequest, n.Event)
	assert.Equal(t, "annual", n.RequestPlan)

	rows, err := env.subscriptions.ListStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].RenewalRequestedAt)
	assert.True(t, env.clock.Now().Equal(*rows[0].RenewalRequestedAt))
	assert.Equal(t, "annual", rows[0].RenewalRequestedPlan)

	_, err = env.subscriptions.RequestRenewal(ctx, id, "annual", "again")
	require.Error(t, err)
	assert.True(t, ierr.IsRateLimited(err))

	_, err = env.subscriptions.SetActive(ctx, id, false, "admin")
	require.NoError(t, err)
	_, err = env.subscriptions.RequestRenewal(ctx, id, "annual", "")
	assert.True(t, ierr.IsInvalidTransition(err))
}

func TestListStatusesAndStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pending := env.register(t, "pending@example.com").Provider.ProviderID
	trial := env.register(t, "trial@example.com").Provider.ProviderID
	paid := env.register(t, "paid@example.com").Provider.ProviderID
	off := env.register(t, "off@example.com").Provider.ProviderID

	for _, id := range []string{trial, paid, off} {
		_, err := env.subscriptions.Approve(ctx, id, "admin")
		require.NoError(t, err)
	}
	_, err := env.subscriptions.VerifyPayment(ctx, paid, "monthly", "", "admin")
	require.NoError(t, err)
	_, err = env.subscriptions.SetActive(ctx, off, false, "admin")
	require.NoError(t, err)

	env.clock.Advance(6 * day)

	rows, err := env.subscriptions.ListStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	byID := map[string]ProviderStatusRow{}
	for _, row := range rows {
		byID[row.ProviderID] = row
	}
	assert.Equal(t, subscription.StatusPendingApproval, byID[pending].SubscriptionStatus)
	assert.Equal(t, subscription.StatusTrial, byID[trial].SubscriptionStatus)
	assert.Equal(t, 1, byID[trial].DaysRemaining)
	assert.Equal(t, subscription.PlanMonthly, byID[paid].SubscriptionPlan)
	assert.Equal(t, 24, byID[paid].DaysRemaining)
	assert.False(t, byID[off].IsActive)
	assert.Nil(t, byID[paid].RenewalRequestedAt)

	stats, err := env.subscriptions.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[subscription.StatusPendingApproval])
	assert.Equal(t, 1, stats.ByStatus[subscription.StatusTrial])
	assert.Equal(t, 1, stats.ByStatus[subscription.StatusActive])
	assert.Equal(t, 1, stats.ByStatus[subscription.StatusDeactivated])
	assert.Equal(t, 0, stats.ByStatus[subscription.StatusExpired])
	assert.Equal(t, 2, stats.ByPlan[subscription.PlanTrial])
	assert.Equal(t, 1, stats.ByPlan[subscription.PlanNone])
	assert.Equal(t, 2, stats.Visible)
	assert.Equal(t, 1, stats.RenewalWarnings)
}

func TestHistoryUnknownProvider(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.subscriptions.History(context.Background(), "prov_missing")
	assert.True(t, ierr.IsNotFound(err))
}
