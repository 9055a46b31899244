package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcNotifier struct {
	name string
	fn   func(ctx context.Context, n Notification) error
}

func (f funcNotifier) Name() string { return f.name }

func (f funcNotifier) Notify(ctx context.Context, n Notification) error { return f.fn(ctx, n) }

func TestDispatcherDeliverJoinsFailures(t *testing.T) {
	var delivered atomic.Int32
	ok := funcNotifier{"ok", func(context.Context, Notification) error {
		delivered.Add(1)
		return nil
	}}
	failing := funcNotifier{"webhook", func(context.Context, Notification) error {
		return errors.New("connection refused")
	}}
	panicking := funcNotifier{"email", func(context.Context, Notification) error {
		panic("template exploded")
	}}

	d := NewDispatcher(time.Second, ok, failing, panicking)
	err := d.Deliver(context.Background(), Notification{Event: EventSubscriptionApproved})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook: connection refused")
	assert.Contains(t, err.Error(), "template exploded")
	assert.Equal(t, int32(1), delivered.Load())
}

func TestDispatcherPublishRunsInBackground(t *testing.T) {
	received := make(chan Notification, 1)
	release := make(chan struct{})
	slow := funcNotifier{"slow", func(_ context.Context, n Notification) error {
		<-release
		received <- n
		return nil
	}}

	d := NewDispatcher(time.Second, slow)
	d.Publish(Notification{Event: EventSubscriptionDeactivated, ProviderID: "prov_1"})

	select {
	case <-received:
		t.Fatal("publish must not wait for delivery")
	default:
	}

	close(release)
	d.Wait()

	n := <-received
	assert.Equal(t, "prov_1", n.ProviderID)
}
