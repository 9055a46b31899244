package services

import (
	"context"
	"fmt"
	"time"

	"provider-subscription-api/pkg/logging"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
)

// Dispatcher fans notifications out to every notifier in the background.
type Dispatcher struct {
	notifiers []Notifier
	timeout   time.Duration
	wg        conc.WaitGroup
}

// NewDispatcher creates a dispatcher. Each delivery gets its own timeout.
func NewDispatcher(timeout time.Duration, notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{notifiers: notifiers, timeout: timeout}
}

// Publish delivers n off the caller's goroutine. Failures are only logged.
func (d *Dispatcher) Publish(n Notification) {
	d.wg.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.Deliver(ctx, n); err != nil {
			logging.Errorw("notification delivery failed",
				"event", n.Event,
				"provider_id", n.ProviderID,
				"error", err,
			)
		}
	})
}

// Deliver sends n on all notifiers concurrently and joins their errors.
// A panicking notifier is reported as an error.
func (d *Dispatcher) Deliver(ctx context.Context, n Notification) error {
	p := pool.New().WithErrors().WithContext(ctx)
	for _, notifier := range d.notifiers {
		notifier := notifier
		p.Go(func(ctx context.Context) error {
			var err error
			var catcher panics.Catcher
			catcher.Try(func() {
				err = notifier.Notify(ctx, n)
			})
			if recovered := catcher.Recovered(); recovered != nil {
				err = recovered.AsError()
			}
			if err != nil {
				return fmt.Errorf("%s: %w", notifier.Name(), err)
			}
			return nil
		})
	}
	return p.Wait()
}

// Wait blocks until every published notification has been delivered.
func (d *Dispatcher) Wait() {
	if recovered := d.wg.WaitAndRecover(); recovered != nil {
		logging.Errorf("notification dispatch panicked: %v", recovered.Value)
	}
}
