package alerts

import (
	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/internal/engineconfig"
)

// Resolve maps a candidate to its priority using the per-type escalation table
// ⭐ SSOT: 우선순위 결정은 여기서만
func Resolve(c Candidate, cfg engineconfig.Alerts) contracts.Priority {
	switch c.Type {
	case contracts.AlertBirthday:
		if daysOf(c) <= cfg.BirthdayHighDays {
			return contracts.PriorityHigh
		}
		return contracts.PriorityMedium

	case contracts.AlertAnniversary:
		return contracts.PriorityLow

	case contracts.AlertPolicyRenewal, contracts.AlertFollowUpDue, contracts.AlertAnnualReview:
		if c.Overdue {
			return contracts.PriorityUrgent
		}
		return contracts.PriorityHigh

	case contracts.AlertPolicyMaturity:
		if daysOf(c) <= cfg.MaturityHighDays {
			return contracts.PriorityHigh
		}
		return contracts.PriorityMedium

	case contracts.AlertNoContact:
		if c.Elapsed >= 2*cfg.NoContactDays {
			return contracts.PriorityHigh
		}
		return contracts.PriorityMedium

	case contracts.AlertStaleRiskProfile:
		return contracts.PriorityMedium

	case contracts.AlertUnaddressedConcern, contracts.AlertRetirementApproaching:
		return contracts.PriorityHigh

	default:
		return contracts.PriorityLow
	}
}

func daysOf(c Candidate) int {
	if c.DaysUntilDue == nil {
		return 0
	}
	return *c.DaysUntilDue
}
