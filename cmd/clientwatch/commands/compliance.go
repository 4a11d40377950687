package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/clientwatch/internal/compliance"
	"github.com/wonny/clientwatch/internal/contracts"
)

// complianceCmd represents the compliance command
var complianceCmd = &cobra.Command{
	Use:   "compliance [client_id]",
	Short: "Score clients against Consumer Duty factors",
	Long: `Scores every active client on six weighted factors (annual review,
risk profile, suitability, contact frequency, documentation, value
demonstrated) and classifies the total as Compliant, AtRisk or NonCompliant.

With a client id, prints that client's factor breakdown and recommendations.

Example:
  go run ./cmd/clientwatch compliance
  go run ./cmd/clientwatch compliance --status NonCompliant
  go run ./cmd/clientwatch compliance c-104`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompliance,
}

// portfolioCmd represents the portfolio command
var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Portfolio compliance summary",
	RunE:  runPortfolio,
}

var complianceStatus string

func init() {
	rootCmd.AddCommand(complianceCmd)
	rootCmd.AddCommand(portfolioCmd)

	complianceCmd.Flags().StringVar(&complianceStatus, "status", "", "only clients with this status (Compliant|AtRisk|NonCompliant)")
}

func runCompliance(cmd *cobra.Command, args []string) error {
	status := contracts.ComplianceStatus(complianceStatus)
	switch status {
	case "", contracts.StatusCompliant, contracts.StatusAtRisk, contracts.StatusNonCompliant:
	default:
		return fmt.Errorf("unknown compliance status %q", complianceStatus)
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	date, _ := asOf()
	res, err := a.svc.EvaluateCompliance(ctx, date)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		score, ok := res.Scores[args[0]]
		if !ok {
			return fmt.Errorf("client %q not found or inactive", args[0])
		}
		if outputFormat == outputJSON {
			return printJSON(out, score)
		}
		printScore(out, score)
		return nil
	}

	scores := make([]contracts.ComplianceScore, 0, len(res.Scores))
	for _, s := range res.SortedScores() {
		if status == "" || s.Status == status {
			scores = append(scores, s)
		}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Total < scores[j].Total })

	if outputFormat == outputJSON {
		return printJSON(out, map[string]interface{}{
			"as_of":  res.AsOf,
			"count":  len(scores),
			"scores": scores,
		})
	}

	printHeader(out, "Consumer Duty Compliance", "As of "+res.AsOf.String())
	rows := make([][]string, 0, len(scores))
	for _, s := range scores {
		issues := make([]string, 0, len(s.Issues))
		for _, is := range s.Issues {
			issues = append(issues, string(is.Factor))
		}
		rows = append(rows, []string{s.ClientID, s.ClientName, fmt.Sprintf("%.1f", s.Total), string(s.Status), strings.Join(issues, ", ")})
	}
	printTable(out, []string{"ID", "CLIENT", "SCORE", "STATUS", "ISSUES"}, rows)
	return nil
}

func printScore(w io.Writer, s contracts.ComplianceScore) {
	printHeader(w, s.ClientName, fmt.Sprintf("%s  %.1f/100  %s", s.ClientID, s.Total, s.Status))

	rows := make([][]string, 0, len(s.Factors))
	for _, f := range s.Factors {
		note := ""
		if f.MissingData {
			note = "missing data"
		}
		rows = append(rows, []string{string(f.Factor), fmt.Sprintf("%.1f", f.Score), fmt.Sprintf("%d%%", f.Weight), note})
	}
	printTable(w, []string{"FACTOR", "SCORE", "WEIGHT", ""}, rows)

	if len(s.Recommendations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Recommendations:")
		for _, r := range s.Recommendations {
			fmt.Fprintf(w, "   • %s\n", r)
		}
	}
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	date, _ := asOf()
	res, err := a.svc.EvaluateCompliance(ctx, date)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if outputFormat == outputJSON {
		return printJSON(out, map[string]interface{}{
			"as_of":     res.AsOf,
			"portfolio": res.Portfolio,
		})
	}

	p := res.Portfolio
	printHeader(out, "Portfolio Summary", "As of "+res.AsOf.String())
	if p.IsEmpty() {
		printInfo(out, "No clients")
		return nil
	}
	printKeyValue(out, "Clients", fmt.Sprintf("%d", p.ClientCount), 14)
	printKeyValue(out, "Average score", fmt.Sprintf("%.1f", *p.AverageScore), 14)
	printKeyValue(out, "Compliant", fmt.Sprintf("%.1f%%", *p.CompliantRate*100), 14)
	for _, st := range []contracts.ComplianceStatus{contracts.StatusCompliant, contracts.StatusAtRisk, contracts.StatusNonCompliant} {
		printKeyValue(out, string(st), fmt.Sprintf("%d", p.StatusCounts[st]), 14)
	}
	if len(p.CommonIssues) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Common issues:")
		for _, ci := range p.CommonIssues {
			fmt.Fprintf(out, "   • %s: %d clients\n", compliance.IssueLabel(ci.Factor), ci.Count)
		}
	}
	return nil
}
