package alerts

import (
	"fmt"
	"strings"

	"github.com/wonny/clientwatch/internal/contracts"
)

// Filter selects alerts; zero-value fields match everything
type Filter struct {
	Types      []contracts.AlertType
	Priorities []contracts.Priority
	ClientID   string
	UrgentOnly bool // Urgent and High
	DueToday   bool
	Visible    bool // drop dismissed alerts
}

// Apply returns the matching alerts in their original order
func (f Filter) Apply(alerts []contracts.Alert) []contracts.Alert {
	out := make([]contracts.Alert, 0, len(alerts))
	for _, a := range alerts {
		if f.Match(a) {
			out = append(out, a)
		}
	}
	return out
}

// Match reports whether a single alert passes the filter
func (f Filter) Match(a contracts.Alert) bool {
	if len(f.Types) > 0 && !containsType(f.Types, a.Type) {
		return false
	}
	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, a.Priority) {
		return false
	}
	if f.ClientID != "" && a.ClientID != f.ClientID {
		return false
	}
	if f.UrgentOnly && a.Priority.Rank() > contracts.PriorityHigh.Rank() {
		return false
	}
	if f.DueToday && (a.DaysUntilDue == nil || *a.DaysUntilDue != 0) {
		return false
	}
	if f.Visible && a.Dismissed {
		return false
	}
	return true
}

// ByType filters by alert type
func ByType(alerts []contracts.Alert, t contracts.AlertType) []contracts.Alert {
	return Filter{Types: []contracts.AlertType{t}}.Apply(alerts)
}

// ByPriority filters by priority
func ByPriority(alerts []contracts.Alert, p contracts.Priority) []contracts.Alert {
	return Filter{Priorities: []contracts.Priority{p}}.Apply(alerts)
}

// ForClient filters by client id
func ForClient(alerts []contracts.Alert, clientID string) []contracts.Alert {
	return Filter{ClientID: clientID}.Apply(alerts)
}

// Urgent returns Urgent and High alerts
func Urgent(alerts []contracts.Alert) []contracts.Alert {
	return Filter{UrgentOnly: true}.Apply(alerts)
}

// DueToday returns alerts due on the evaluation date
func DueToday(alerts []contracts.Alert) []contracts.Alert {
	return Filter{DueToday: true}.Apply(alerts)
}

func containsType(types []contracts.AlertType, t contracts.AlertType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

func containsPriority(ps []contracts.Priority, p contracts.Priority) bool {
	for _, x := range ps {
		if x == p {
			return true
		}
	}
	return false
}

// ParseTypes parses a comma-separated list of alert types; blank yields nil
func ParseTypes(s string) ([]contracts.AlertType, error) {
	var out []contracts.AlertType
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		t := contracts.AlertType(part)
		if !t.IsValid() {
			return nil, fmt.Errorf("unknown alert type %q", part)
		}
		out = append(out, t)
	}
	return out, nil
}

// ParsePriorities parses a comma-separated list of priorities; blank yields nil
func ParsePriorities(s string) ([]contracts.Priority, error) {
	var out []contracts.Priority
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		p, err := contracts.ParsePriority(part)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
