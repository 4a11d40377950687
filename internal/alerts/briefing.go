package alerts

import (
	"fmt"
	"strings"

	"github.com/wonny/clientwatch/internal/calendar"
	"github.com/wonny/clientwatch/internal/contracts"
)

const briefingSectionLimit = 5

// Briefing renders a markdown daily briefing from ordered alerts
func Briefing(alerts []contracts.Alert, asOf calendar.Date) string {
	s := Summarize(alerts)

	var b strings.Builder
	fmt.Fprintf(&b, "## Daily Briefing - %s\n\n", asOf.Time().Format("Monday, 2 January 2006"))
	b.WriteString("### Overview\n")
	fmt.Fprintf(&b, "- Total alerts: %d\n", s.Total)
	fmt.Fprintf(&b, "- Urgent: %d | High: %d | Medium: %d | Low: %d\n",
		s.ByPriority[contracts.PriorityUrgent], s.ByPriority[contracts.PriorityHigh],
		s.ByPriority[contracts.PriorityMedium], s.ByPriority[contracts.PriorityLow])
	fmt.Fprintf(&b, "- Due today: %d | Overdue: %d\n\n", s.DueToday, s.Overdue)

	writeSection(&b, "Urgent action required", ByPriority(alerts, contracts.PriorityUrgent))
	writeSection(&b, "Due today", DueToday(alerts))

	var week []contracts.Alert
	for _, a := range alerts {
		if a.DaysUntilDue != nil && *a.DaysUntilDue > 0 && *a.DaysUntilDue <= 7 {
			week = append(week, a)
		}
	}
	writeSection(&b, "This week", week)

	return b.String()
}

func writeSection(b *strings.Builder, title string, alerts []contracts.Alert) {
	if len(alerts) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n", title)
	for i, a := range alerts {
		if i == briefingSectionLimit {
			fmt.Fprintf(b, "- ... and %d more\n", len(alerts)-briefingSectionLimit)
			break
		}
		fmt.Fprintf(b, "- **%s**: %s\n", a.ClientName, a.Title)
	}
	b.WriteString("\n")
}
