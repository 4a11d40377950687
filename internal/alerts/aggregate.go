package alerts

import (
	"sort"

	"github.com/wonny/clientwatch/internal/contracts"
)

// Aggregate returns a new slice holding alerts in the deterministic order:
// priority rank, days_until_due (absent last), client id, alert type, alert id.
// The input is not modified.
func Aggregate(alerts []contracts.Alert) []contracts.Alert {
	out := make([]contracts.Alert, len(alerts))
	copy(out, alerts)
	sort.SliceStable(out, func(i, j int) bool {
		return Less(out[i], out[j])
	})
	return out
}

// Less is the total order used by Aggregate
func Less(a, b contracts.Alert) bool {
	if a.Priority != b.Priority {
		return a.Priority.Rank() < b.Priority.Rank()
	}

	switch {
	case a.DaysUntilDue != nil && b.DaysUntilDue == nil:
		return true
	case a.DaysUntilDue == nil && b.DaysUntilDue != nil:
		return false
	case a.DaysUntilDue != nil && *a.DaysUntilDue != *b.DaysUntilDue:
		return *a.DaysUntilDue < *b.DaysUntilDue
	}

	if a.ClientID != b.ClientID {
		return a.ClientID < b.ClientID
	}
	if a.Type != b.Type {
		return a.Type.Ordinal() < b.Type.Ordinal()
	}
	return a.ID < b.ID
}

// Summarize counts alerts by priority and type, plus due-today and overdue counts.
// Every priority appears in ByPriority, zero when absent.
func Summarize(alerts []contracts.Alert) contracts.AlertSummary {
	summary := contracts.AlertSummary{
		Total:      len(alerts),
		ByPriority: make(map[contracts.Priority]int, 4),
		ByType:     make(map[contracts.AlertType]int),
	}
	for _, p := range contracts.AllPriorities() {
		summary.ByPriority[p] = 0
	}

	for _, a := range alerts {
		summary.ByPriority[a.Priority]++
		summary.ByType[a.Type]++
		if a.DaysUntilDue != nil {
			switch {
			case *a.DaysUntilDue == 0:
				summary.DueToday++
			case *a.DaysUntilDue < 0:
				summary.Overdue++
			}
		}
	}

	return summary
}
