// Package subscription holds the provider subscription lifecycle: the record,
// the only legal transitions on it, and the status derived from it at read time.
//
// Every function here is pure. Callers pass the current time in and persist
// the returned Record themselves.
package subscription

import (
	"time"

	ierr "provider-subscription-api/internal/errors"
)

// RenewalWarningDays is the trial threshold at which dashboards prompt for payment.
const RenewalWarningDays = 2

// Record is the subscription state of one provider.
type Record struct {
	Plan            Plan
	StartAt         *time.Time
	EndAt           *time.Time
	PaymentVerified bool
	PaymentNotes    string
	IsActiveAccount bool
}

// NewRecord returns the record created when a provider registers.
func NewRecord() Record {
	return Record{Plan: PlanNone, IsActiveAccount: true}
}

// Snapshot is the derived view of a Record at one instant.
type Snapshot struct {
	Status        Status
	DaysRemaining int
}

// RenewalWarning reports whether a trial is close enough to its end to prompt for payment.
func (s Snapshot) RenewalWarning() bool {
	return s.Status == StatusTrial && s.DaysRemaining <= RenewalWarningDays
}

// Derive computes the status and whole days remaining of r at now.
func Derive(r Record, now time.Time) Snapshot {
	if !r.IsActiveAccount {
		return Snapshot{Status: StatusDeactivated}
	}
	if r.Plan == PlanNone || r.EndAt == nil {
		return Snapshot{Status: StatusPendingApproval}
	}
	if now.After(*r.EndAt) {
		if r.Plan == PlanTrial {
			return Snapshot{Status: StatusAwaitingPayment}
		}
		return Snapshot{Status: StatusExpired}
	}

	days := daysUntil(now, *r.EndAt)
	if r.Plan == PlanTrial {
		return Snapshot{Status: StatusTrial, DaysRemaining: days}
	}
	return Snapshot{Status: StatusActive, DaysRemaining: days}
}

// daysUntil rounds the remaining time up to whole days, never below zero.
func daysUntil(now, end time.Time) int {
	remaining := end.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int((remaining + day - 1) / day)
}

// Approve starts the trial of a provider that has never been approved.
func Approve(r Record, now time.Time) (Record, error) {
	if !r.IsActiveAccount {
		return r, invalidTransition("approve", Derive(r, now).Status,
			"Account is deactivated, reactivate it before approving")
	}
	if r.Plan != PlanNone {
		return r, invalidTransition("approve", Derive(r, now).Status,
			"Provider already has a subscription plan")
	}

	return startPeriod(r, PlanTrial, now, false, r.PaymentNotes), nil
}

// VerifyPayment records a confirmed manual payment and opens a fresh period for plan.
// The new window always starts at now; remaining days of the previous window are dropped.
func VerifyPayment(r Record, plan Plan, notes string, now time.Time) (Record, error) {
	if !plan.IsPaid() {
		return r, ierr.NewError("plan is not a paid plan").
			WithHintf("Payments can only be verified for monthly, semester or annual plans, got %q", plan).
			WithReportableDetails(map[string]any{"plan": plan}).
			Mark(ierr.ErrValidation)
	}

	current := Derive(r, now).Status
	switch current {
	case StatusDeactivated:
		return r, invalidTransition("verify_payment", current,
			"Account is deactivated, reactivate it before verifying a payment")
	case StatusPendingApproval:
		return r, invalidTransition("verify_payment", current,
			"Provider must be approved before a payment can be verified")
	}

	return startPeriod(r, plan, now, true, notes), nil
}

// Deactivate suppresses the provider regardless of its subscription period.
func Deactivate(r Record) Record {
	r.IsActiveAccount = false
	return r
}

// Reactivate lifts a deactivation. The period is not refreshed.
func Reactivate(r Record) Record {
	r.IsActiveAccount = true
	return r
}

// SetActive applies Deactivate or Reactivate.
func SetActive(r Record, active bool) Record {
	if active {
		return Reactivate(r)
	}
	return Deactivate(r)
}

func startPeriod(r Record, plan Plan, now time.Time, verified bool, notes string) Record {
	start := now
	end := now.Add(plan.Duration())

	r.Plan = plan
	r.StartAt = &start
	r.EndAt = &end
	r.PaymentVerified = verified
	r.PaymentNotes = notes
	return r
}

func invalidTransition(op string, from Status, reason string) error {
	return ierr.NewError(op+" not allowed from "+string(from)).
		WithHint(reason).
		WithReportableDetails(map[string]any{
			"operation": op,
			"status":    from,
		}).
		Mark(ierr.ErrInvalidTransition)
}
