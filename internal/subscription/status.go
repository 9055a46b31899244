package subscription

import "strings"

// Status is the derived state of a subscription at a given instant.
type Status string

const (
	StatusPendingApproval Status = "pending_approval"
	StatusTrial           Status = "trial"
	StatusActive          Status = "active"
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusExpired         Status = "expired"
	StatusDeactivated     Status = "deactivated"
)

// AllStatuses lists every status Derive can produce.
var AllStatuses = []Status{
	StatusPendingApproval,
	StatusTrial,
	StatusActive,
	StatusAwaitingPayment,
	StatusExpired,
	StatusDeactivated,
}

// legacy labels still sent by older dashboards
var statusAliases = map[string]Status{
	"trial_pending": StatusTrial,
	"pending":       StatusPendingApproval,
}

// ParseStatus maps a status label, including legacy aliases, to a Status.
func ParseStatus(s string) (Status, bool) {
	label := strings.ToLower(strings.TrimSpace(s))
	if alias, ok := statusAliases[label]; ok {
		return alias, true
	}
	for _, st := range AllStatuses {
		if string(st) == label {
			return st, true
		}
	}
	return "", false
}

// IsVisible reports whether a provider in this status may show public offers.
func (s Status) IsVisible() bool {
	return s == StatusTrial || s == StatusActive
}

func (s Status) String() string {
	return string(s)
}
