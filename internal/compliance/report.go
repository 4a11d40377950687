package compliance

import (
	"fmt"
	"strings"

	"github.com/wonny/clientwatch/internal/calendar"
	"github.com/wonny/clientwatch/internal/contracts"
)

var issueLabels = map[contracts.Factor]string{
	contracts.FactorAnnualReview:      "Annual review overdue or never completed",
	contracts.FactorRiskProfile:       "Risk profile needs updating",
	contracts.FactorSuitability:       "Suitability confirmation required",
	contracts.FactorContactFrequency:  "Insufficient client contact",
	contracts.FactorDocumentation:     "Documentation incomplete",
	contracts.FactorValueDemonstrated: "Need to document value delivered",
}

// IssueLabel returns the human-readable description of a factor issue
func IssueLabel(f contracts.Factor) string {
	if l, ok := issueLabels[f]; ok {
		return l
	}
	return string(f)
}

// ConsumerDutyReport renders the portfolio summary as a markdown report.
// Scores are rounded to one decimal here; the summary keeps full precision.
func ConsumerDutyReport(summary contracts.PortfolioSummary, asOf calendar.Date) string {
	var b strings.Builder

	b.WriteString("# Consumer Duty Compliance Report\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", asOf.Time().Format("2 January 2006"))

	b.WriteString("## Executive Summary\n")
	if summary.IsEmpty() {
		b.WriteString("- No clients to report on\n")
		return b.String()
	}
	fmt.Fprintf(&b, "- Overall compliance rate: %.1f%%\n", *summary.CompliantRate*100)
	fmt.Fprintf(&b, "- Average compliance score: %.1f/100\n", *summary.AverageScore)
	fmt.Fprintf(&b, "- Total clients: %d\n\n", summary.ClientCount)

	b.WriteString("## Client Status Breakdown\n")
	b.WriteString("| Status | Count | Percentage |\n")
	b.WriteString("|--------|-------|------------|\n")
	for _, st := range []contracts.ComplianceStatus{contracts.StatusCompliant, contracts.StatusAtRisk, contracts.StatusNonCompliant} {
		n := summary.StatusCounts[st]
		fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n", st, n, float64(n)/float64(summary.ClientCount)*100)
	}

	b.WriteString("\n## Common Issues\n")
	if len(summary.CommonIssues) == 0 {
		b.WriteString("- None\n")
	}
	for _, ci := range summary.CommonIssues {
		fmt.Fprintf(&b, "- %s: %d clients\n", IssueLabel(ci.Factor), ci.Count)
	}

	b.WriteString("\n## Priority Actions\n")
	for _, ct := range summary.LowestScoring {
		labels := make([]string, 0, len(ct.TopIssues))
		for _, f := range ct.TopIssues {
			labels = append(labels, IssueLabel(f))
		}
		name := ct.ClientName
		if name == "" {
			name = ct.ClientID
		}
		fmt.Fprintf(&b, "- **%s** (Score: %.1f): %s\n", name, ct.Total, strings.Join(labels, ", "))
	}

	return b.String()
}
