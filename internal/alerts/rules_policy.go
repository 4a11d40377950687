package alerts

import (
	"fmt"
	"strings"

	"github.com/wonny/clientwatch/internal/calendar"
	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/internal/engineconfig"
)

// PolicyRenewalRule detects renewals within renewal_window and recently missed renewals.
//
// A renewal at most renewal_overdue_days in the past is overdue (Urgent, negative days).
// Older renewal dates are treated as a yearly cycle: the next anniversary of the
// renewal date is checked against the window and is never negative.
func PolicyRenewalRule(c contracts.ClientRecord, asOf calendar.Date, cfg engineconfig.Alerts) ([]Candidate, error) {
	var out []Candidate

	for i, p := range c.Policies {
		if p.RenewalDate.IsZero() {
			continue
		}
		key := policyKey(p, i)
		days := asOf.DaysUntil(p.RenewalDate)

		switch {
		case days < 0 && -days <= cfg.RenewalOverdueDays:
			dueDate, daysPtr := due(asOf, p.RenewalDate)
			out = append(out, Candidate{
				ID:           alertID("renewal-overdue", c.ID, key),
				Type:         contracts.AlertPolicyRenewal,
				Title:        fmt.Sprintf("Overdue: %s renewal", policyLabel(p)),
				Description:  fmt.Sprintf("%s's %s was due for renewal %s ago.", c.Name, policyDesc(p), plural(-days, "day")),
				DueDate:      dueDate,
				DaysUntilDue: daysPtr,
				Overdue:      true,
				Metadata:     policyMeta(p),
			})

		case days < 0:
			next := calendar.NextOccurrence(p.RenewalDate, asOf)
			nextDays := asOf.DaysUntil(next)
			if nextDays > cfg.RenewalWindow {
				continue
			}
			dueDate, daysPtr := due(asOf, next)
			meta := policyMeta(p)
			meta["recurring"] = "true"
			out = append(out, Candidate{
				ID:           alertID("renewal", c.ID, key),
				Type:         contracts.AlertPolicyRenewal,
				Title:        fmt.Sprintf("%s renewal %s", policyLabel(p), inDays(nextDays)),
				Description:  fmt.Sprintf("%s's %s renews on %s.", c.Name, policyDesc(p), next.Time().Format(longDate)),
				DueDate:      dueDate,
				DaysUntilDue: daysPtr,
				Metadata:     meta,
			})

		case days <= cfg.RenewalWindow:
			dueDate, daysPtr := due(asOf, p.RenewalDate)
			out = append(out, Candidate{
				ID:           alertID("renewal", c.ID, key),
				Type:         contracts.AlertPolicyRenewal,
				Title:        fmt.Sprintf("%s renewal %s", policyLabel(p), inDays(days)),
				Description:  fmt.Sprintf("%s's %s renews on %s.", c.Name, policyDesc(p), p.RenewalDate.Time().Format(longDate)),
				DueDate:      dueDate,
				DaysUntilDue: daysPtr,
				Metadata:     policyMeta(p),
			})
		}
	}

	return out, nil
}

// PolicyMaturityRule detects maturities within maturity_window (past maturities are ignored)
func PolicyMaturityRule(c contracts.ClientRecord, asOf calendar.Date, cfg engineconfig.Alerts) ([]Candidate, error) {
	var out []Candidate

	for i, p := range c.Policies {
		if p.MaturityDate.IsZero() {
			continue
		}
		days := asOf.DaysUntil(p.MaturityDate)
		if days < 0 || days > cfg.MaturityWindow {
			continue
		}
		dueDate, daysPtr := due(asOf, p.MaturityDate)
		out = append(out, Candidate{
			ID:           alertID("maturity", c.ID, policyKey(p, i)),
			Type:         contracts.AlertPolicyMaturity,
			Title:        fmt.Sprintf("%s matures %s", policyLabel(p), inDays(days)),
			Description:  fmt.Sprintf("%s's %s matures on %s.", c.Name, policyDesc(p), p.MaturityDate.Time().Format(longDate)),
			DueDate:      dueDate,
			DaysUntilDue: daysPtr,
			Metadata:     policyMeta(p),
		})
	}

	return out, nil
}

// policyKey identifies a policy within a client: its id, else its type and position
func policyKey(p contracts.Policy, idx int) string {
	if p.ID != "" {
		return p.ID
	}
	label := string(p.Type)
	if label == "" {
		label = "policy"
	}
	return itemKey(label, idx)
}

var policyLabels = map[contracts.PolicyType]string{
	contracts.PolicyPension:          "Pension",
	contracts.PolicyISA:              "ISA",
	contracts.PolicyGIA:              "GIA",
	contracts.PolicyLifeInsurance:    "Life insurance",
	contracts.PolicyCriticalIllness:  "Critical illness cover",
	contracts.PolicyIncomeProtection: "Income protection",
	contracts.PolicyMortgage:         "Mortgage",
	contracts.PolicyAnnuity:          "Annuity",
}

func policyLabel(p contracts.Policy) string {
	if label, ok := policyLabels[p.Type]; ok {
		return label
	}
	if p.Type == "" {
		return "Policy"
	}
	label := strings.ReplaceAll(string(p.Type), "_", " ")
	return strings.ToUpper(label[:1]) + label[1:]
}

// policyDesc is the in-sentence form; acronyms keep their case
func policyDesc(p contracts.Policy) string {
	label := policyLabel(p)
	if label != strings.ToUpper(label) {
		label = strings.ToLower(label)
	}
	if p.Provider != "" {
		return p.Provider + " " + label
	}
	return label
}

func policyMeta(p contracts.Policy) map[string]string {
	meta := map[string]string{"policy_type": string(p.Type)}
	if p.ID != "" {
		meta["policy_id"] = p.ID
	}
	if p.Provider != "" {
		meta["provider"] = p.Provider
	}
	return meta
}
