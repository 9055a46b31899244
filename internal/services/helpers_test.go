package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"provider-subscription-api/internal/database"
	ierr "provider-subscription-api/internal/errors"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memoryLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemoryLocker() *memoryLocker {
	return &memoryLocker{held: map[string]bool{}}
}

func (l *memoryLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, ierr.NewError("action lock held").Mark(ierr.ErrConcurrentModification)
	}
	l.held[key] = true
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
	}, nil
}

type memoryLimiter struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemoryLimiter() *memoryLimiter {
	return &memoryLimiter{seen: map[string]bool{}}
}

func (l *memoryLimiter) Allow(_ context.Context, key string, window time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if window <= 0 {
		return true, nil
	}
	if l.seen[key] {
		return false, nil
	}
	l.seen[key] = true
	return true, nil
}

type recordingPublisher struct {
	mu            sync.Mutex
	notifications []Notification
}

func (p *recordingPublisher) Publish(n Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, n)
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	events := make([]string, 0, len(p.notifications))
	for _, n := range p.notifications {
		events = append(events, n.Event)
	}
	return events
}

func (p *recordingPublisher) Last() Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notifications[len(p.notifications)-1]
}

type testEnv struct {
	store         *database.Store
	clock         *fixedClock
	locker        *memoryLocker
	limiter       *memoryLimiter
	publisher     *recordingPublisher
	providers     *ProviderService
	subscriptions *SubscriptionService
	offers        *OfferService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", ulid.Make().String())
	db, err := database.Open("", dsn, "test")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	env := &testEnv{
		store:     database.NewStore(db),
		clock:     &fixedClock{now: t0},
		locker:    newMemoryLocker(),
		limiter:   newMemoryLimiter(),
		publisher: &recordingPublisher{},
	}
	env.providers = NewProviderService(env.store, env.clock)
	env.offers = NewOfferService(env.store, env.clock)
	env.subscriptions = env.subscriptionService(env.clock)
	return env
}

func (e *testEnv) subscriptionService(clock Clock) *SubscriptionService {
	return NewSubscriptionService(e.store, e.locker, e.limiter, e.publisher, clock, SubscriptionServiceConfig{
		LockTTL:       10 * time.Second,
		RenewalWindow: time.Hour,
	})
}

func (e *testEnv) register(t *testing.T, email string) *RegisteredProvider {
	t.Helper()

	reg, err := e.providers.Register(context.Background(), RegisterProviderInput{
		BusinessName:   "Envios Rapidos",
		Email:          email,
		WhatsAppNumber: "+13055550100",
		ServiceType:    "remittance",
	})
	require.NoError(t, err)
	return reg
}
