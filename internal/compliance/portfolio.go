package compliance

import (
	"sort"

	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/internal/engineconfig"
)

// topIssuesPerClient bounds the issues echoed in LowestScoring entries
const topIssuesPerClient = 2

// Summarize aggregates per-client scores into a portfolio summary.
// An empty input yields ClientCount 0 with nil average and rate.
func Summarize(scores []contracts.ComplianceScore, cfg engineconfig.Config) contracts.PortfolioSummary {
	summary := contracts.PortfolioSummary{
		ClientCount: len(scores),
		StatusCounts: map[contracts.ComplianceStatus]int{
			contracts.StatusCompliant:    0,
			contracts.StatusAtRisk:       0,
			contracts.StatusNonCompliant: 0,
		},
		CommonIssues:  []contracts.IssueFrequency{},
		LowestScoring: []contracts.ClientTotal{},
	}
	if len(scores) == 0 {
		return summary
	}

	sum := 0.0
	tally := make(map[contracts.Factor]int)
	for _, s := range scores {
		sum += s.Total
		summary.StatusCounts[s.Status]++
		for _, is := range s.Issues {
			tally[is.Factor]++
		}
	}

	avg := sum / float64(len(scores))
	rate := float64(summary.StatusCounts[contracts.StatusCompliant]) / float64(len(scores))
	summary.AverageScore = &avg
	summary.CompliantRate = &rate

	summary.CommonIssues = rankIssues(tally, cfg.Compliance.WeightsPct)
	summary.LowestScoring = lowest(scores, cfg.Report.LowestScoring)

	return summary
}

// rankIssues orders factors by frequency desc, then weight desc, then name
func rankIssues(tally map[contracts.Factor]int, weights engineconfig.Weights) []contracts.IssueFrequency {
	out := make([]contracts.IssueFrequency, 0, len(tally))
	for f, n := range tally {
		out = append(out, contracts.IssueFrequency{Factor: f, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		wi, wj := weights.For(out[i].Factor), weights.For(out[j].Factor)
		if wi != wj {
			return wi > wj
		}
		return out[i].Factor < out[j].Factor
	})
	return out
}

// lowest returns the bottom n clients by total, ties by client id
func lowest(scores []contracts.ComplianceScore, n int) []contracts.ClientTotal {
	ranked := make([]contracts.ComplianceScore, len(scores))
	copy(ranked, scores)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Total != ranked[j].Total {
			return ranked[i].Total < ranked[j].Total
		}
		return ranked[i].ClientID < ranked[j].ClientID
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}

	out := make([]contracts.ClientTotal, 0, len(ranked))
	for _, s := range ranked {
		ct := contracts.ClientTotal{
			ClientID:   s.ClientID,
			ClientName: s.ClientName,
			Total:      s.Total,
			Status:     s.Status,
		}
		for i, is := range s.Issues {
			if i == topIssuesPerClient {
				break
			}
			ct.TopIssues = append(ct.TopIssues, is.Factor)
		}
		out = append(out, ct)
	}
	return out
}
