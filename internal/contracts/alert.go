package contracts

import (
	"fmt"
	"strings"

	"github.com/wonny/clientwatch/internal/calendar"
)

// AlertType is the fixed enumeration of triggers
type AlertType string

const (
	AlertBirthday              AlertType = "birthday"
	AlertAnniversary           AlertType = "anniversary"
	AlertPolicyRenewal         AlertType = "policy_renewal"
	AlertPolicyMaturity        AlertType = "policy_maturity"
	AlertFollowUpDue           AlertType = "follow_up_due"
	AlertAnnualReview          AlertType = "annual_review"
	AlertNoContact             AlertType = "no_contact"
	AlertStaleRiskProfile      AlertType = "stale_risk_profile"
	AlertUnaddressedConcern    AlertType = "unaddressed_concern"
	AlertRetirementApproaching AlertType = "retirement_approaching"
)

// AllAlertTypes returns the enumeration in its canonical order
func AllAlertTypes() []AlertType {
	return []AlertType{
		AlertBirthday,
		AlertAnniversary,
		AlertPolicyRenewal,
		AlertPolicyMaturity,
		AlertFollowUpDue,
		AlertAnnualReview,
		AlertNoContact,
		AlertStaleRiskProfile,
		AlertUnaddressedConcern,
		AlertRetirementApproaching,
	}
}

// Ordinal returns the position of the type in the canonical order (-1 if unknown)
func (t AlertType) Ordinal() int {
	for i, at := range AllAlertTypes() {
		if at == t {
			return i
		}
	}
	return -1
}

// IsValid reports whether t belongs to the enumeration
func (t AlertType) IsValid() bool {
	return t.Ordinal() >= 0
}

// Priority is totally ordered: Urgent > High > Medium > Low.
// The numeric value is the sort rank (Urgent = 0).
type Priority int

const (
	PriorityUrgent Priority = iota
	PriorityHigh
	PriorityMedium
	PriorityLow
)

var priorityNames = []string{"urgent", "high", "medium", "low"}

// AllPriorities returns priorities from most to least urgent
func AllPriorities() []Priority {
	return []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}
}

// Rank returns the sort rank (Urgent = 0 … Low = 3)
func (p Priority) Rank() int { return int(p) }

func (p Priority) String() string {
	if p < PriorityUrgent || p > PriorityLow {
		return fmt.Sprintf("priority(%d)", int(p))
	}
	return priorityNames[p]
}

// ParsePriority parses a case-insensitive priority name
func ParsePriority(s string) (Priority, error) {
	for i, name := range priorityNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Priority(i), nil
		}
	}
	return 0, fmt.Errorf("unknown priority %q", s)
}

// MarshalText encodes the priority by name
func (p Priority) MarshalText() ([]byte, error) {
	if p < PriorityUrgent || p > PriorityLow {
		return nil, fmt.Errorf("invalid priority %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a priority name
func (p *Priority) UnmarshalText(b []byte) error {
	parsed, err := ParsePriority(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Alert is a structured notification that a client needs attention
type Alert struct {
	ID           string            `json:"id"`
	ClientID     string            `json:"client_id"`
	ClientName   string            `json:"client_name"`
	Type         AlertType         `json:"alert_type"`
	Priority     Priority          `json:"priority"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	DueDate      *calendar.Date    `json:"due_date"`
	DaysUntilDue *int              `json:"days_until_due"`
	Dismissed    bool              `json:"dismissed"`
	Metadata     map[string]string `json:"metadata"`
}

// IsOverdue reports whether the alert carries a negative days_until_due
func (a Alert) IsOverdue() bool {
	return a.DaysUntilDue != nil && *a.DaysUntilDue < 0
}

// AlertSummary counts alerts for dashboards
type AlertSummary struct {
	Total      int               `json:"total"`
	ByPriority map[Priority]int  `json:"by_priority"`
	ByType     map[AlertType]int `json:"by_type"`
	DueToday   int               `json:"due_today"`
	Overdue    int               `json:"overdue"`
}
