package subscription

import (
	"strings"
	"time"

	ierr "provider-subscription-api/internal/errors"
)

// Plan is the pricing tier that currently applies to a provider.
type Plan string

const (
	PlanNone     Plan = "none"
	PlanTrial    Plan = "trial"
	PlanMonthly  Plan = "monthly"
	PlanSemester Plan = "semester"
	PlanAnnual   Plan = "annual"
)

const day = 24 * time.Hour

// TrialDuration is the free period granted once on approval.
const TrialDuration = 7 * day

var paidPlanDurations = map[Plan]time.Duration{
	PlanMonthly:  30 * day,
	PlanSemester: 182 * day,
	PlanAnnual:   365 * day,
}

// PaidPlans lists the plans an admin can verify a payment for.
var PaidPlans = []Plan{PlanMonthly, PlanSemester, PlanAnnual}

// ParsePlan normalizes a stored or submitted plan value. Empty maps to PlanNone.
func ParsePlan(s string) (Plan, error) {
	switch p := Plan(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PlanNone, nil
	case PlanNone, PlanTrial, PlanMonthly, PlanSemester, PlanAnnual:
		return p, nil
	default:
		return PlanNone, ierr.NewError("unknown plan").
			WithHintf("Unknown subscription plan %q", s).
			WithReportableDetails(map[string]any{"plan": s}).
			Mark(ierr.ErrValidation)
	}
}

// IsPaid reports whether p is a billed tier.
func (p Plan) IsPaid() bool {
	_, ok := paidPlanDurations[p]
	return ok
}

// Duration returns the length of one period of p. Zero for none.
func (p Plan) Duration() time.Duration {
	if p == PlanTrial {
		return TrialDuration
	}
	return paidPlanDurations[p]
}

func (p Plan) String() string {
	return string(p)
}
