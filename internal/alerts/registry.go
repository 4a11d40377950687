package alerts

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/wonny/clientwatch/internal/calendar"
	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/internal/engineconfig"
)

// Candidate is a rule hit before priority resolution
type Candidate struct {
	ID           string
	Type         contracts.AlertType
	Title        string
	Description  string
	DueDate      *calendar.Date
	DaysUntilDue *int

	// Overdue marks a genuinely overdue non-recurring date
	Overdue bool
	// Elapsed is days since the anchor date (no-contact escalation)
	Elapsed int

	Metadata map[string]string
}

// RuleFunc is a pure rule: (client, as_of, config) → candidates.
// A non-nil error wraps contracts.ErrMalformedRecord; candidates returned
// alongside it are still valid (item-level problems skip only that item).
type RuleFunc func(c contracts.ClientRecord, asOf calendar.Date, cfg engineconfig.Alerts) ([]Candidate, error)

// Rule binds an alert type to its detection function
type Rule struct {
	Type contracts.AlertType
	Eval RuleFunc
}

// DefaultRules returns the full rule set in canonical type order
// ⭐ SSOT: 알림 규칙 목록은 여기서만
func DefaultRules() []Rule {
	return []Rule{
		{Type: contracts.AlertBirthday, Eval: BirthdayRule},
		{Type: contracts.AlertAnniversary, Eval: AnniversaryRule},
		{Type: contracts.AlertPolicyRenewal, Eval: PolicyRenewalRule},
		{Type: contracts.AlertPolicyMaturity, Eval: PolicyMaturityRule},
		{Type: contracts.AlertFollowUpDue, Eval: FollowUpDueRule},
		{Type: contracts.AlertAnnualReview, Eval: AnnualReviewRule},
		{Type: contracts.AlertNoContact, Eval: NoContactRule},
		{Type: contracts.AlertStaleRiskProfile, Eval: StaleRiskProfileRule},
		{Type: contracts.AlertUnaddressedConcern, Eval: UnaddressedConcernRule},
		{Type: contracts.AlertRetirementApproaching, Eval: RetirementApproachingRule},
	}
}

// EvaluateClient runs every rule against one client and resolves priorities.
// Output is unsorted; Aggregate orders the merged batch.
func EvaluateClient(rules []Rule, c contracts.ClientRecord, asOf calendar.Date, cfg engineconfig.Alerts) ([]contracts.Alert, []contracts.Diagnostic) {
	var (
		out   []contracts.Alert
		diags []contracts.Diagnostic
	)

	for _, rule := range rules {
		candidates, err := rule.Eval(c, asOf, cfg)
		if err != nil {
			diags = append(diags, contracts.Diagnostic{
				ClientID: c.ID,
				Source:   string(rule.Type),
				Reason:   err.Error(),
			})
		}

		seen := make(map[string]bool, len(candidates))
		for _, cand := range candidates {
			if seen[cand.ID] {
				diags = append(diags, contracts.Diagnostic{
					ClientID: c.ID,
					Source:   string(rule.Type),
					Reason:   fmt.Sprintf("duplicate alert %s skipped", cand.ID),
				})
				continue
			}
			seen[cand.ID] = true
			out = append(out, toAlert(c, cand, Resolve(cand, cfg)))
		}
	}

	return out, diags
}

// Evaluate runs the rule set sequentially over all clients and returns the
// aggregated, ordered alerts
func Evaluate(clients []contracts.ClientRecord, asOf calendar.Date, cfg engineconfig.Alerts) ([]contracts.Alert, []contracts.Diagnostic) {
	rules := DefaultRules()

	var (
		all   []contracts.Alert
		diags []contracts.Diagnostic
	)
	for _, c := range clients {
		alerts, d := EvaluateClient(rules, c.Normalized(), asOf, cfg)
		all = append(all, alerts...)
		diags = append(diags, d...)
	}

	return Aggregate(all), diags
}

func toAlert(c contracts.ClientRecord, cand Candidate, p contracts.Priority) contracts.Alert {
	meta := cand.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	return contracts.Alert{
		ID:           cand.ID,
		ClientID:     c.ID,
		ClientName:   c.Name,
		Type:         cand.Type,
		Priority:     p,
		Title:        cand.Title,
		Description:  cand.Description,
		DueDate:      cand.DueDate,
		DaysUntilDue: cand.DaysUntilDue,
		Metadata:     meta,
	}
}

// alertID joins id parts with "-"
func alertID(parts ...string) string {
	return strings.Join(parts, "-")
}

// itemKey identifies a list item that has no id of its own: a slug of its
// label plus its position, so equal labels stay distinct
func itemKey(label string, idx int) string {
	s := slug(truncate(label, 20))
	if s == "" {
		return "item" + strconv.Itoa(idx)
	}
	return s + "-" + strconv.Itoa(idx)
}

// slug lowercases s and collapses every run of non-alphanumerics into "-"
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// due returns the due-date pointers with days consistent to asOf
func due(asOf, d calendar.Date) (*calendar.Date, *int) {
	days := asOf.DaysUntil(d)
	return &d, &days
}

// truncate shortens s to n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// inDays renders a relative day count for titles
func inDays(days int) string {
	switch {
	case days == 0:
		return "today"
	case days < 0:
		return plural(-days, "day") + " overdue"
	default:
		return "in " + plural(days, "day")
	}
}
