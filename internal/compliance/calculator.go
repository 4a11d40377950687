package compliance

import (
	"sort"
	"strings"

	"github.com/wonny/clientwatch/internal/calendar"
	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/internal/engineconfig"
)

// Calculator combines factor sub-scores into a weighted total
// ⭐ SSOT: 컴플라이언스 점수 계산은 여기서만
type Calculator struct {
	cfg     engineconfig.Config
	factors []FactorDef
}

// NewCalculator creates a calculator over the default factor set
func NewCalculator(cfg engineconfig.Config) *Calculator {
	return &Calculator{
		cfg:     cfg,
		factors: DefaultFactors(),
	}
}

// Score computes the compliance score of one client.
// Missing data never aborts: the factor scores 0, is flagged and a diagnostic is returned.
func (k *Calculator) Score(c contracts.ClientRecord, asOf calendar.Date) (contracts.ComplianceScore, []contracts.Diagnostic) {
	var diags []contracts.Diagnostic

	result := contracts.ComplianceScore{
		ClientID:   c.ID,
		ClientName: c.Name,
		Factors:    make([]contracts.FactorScore, 0, len(k.factors)),
		Issues:     []contracts.Issue{},
	}

	total := 0.0
	for _, def := range k.factors {
		weight := k.cfg.Compliance.WeightsPct.For(def.Factor)

		score, err := def.Score(c, asOf, k.cfg)
		fs := contracts.FactorScore{Factor: def.Factor, Score: score, Weight: weight}
		if err != nil {
			fs.Score = 0
			fs.MissingData = true
			diags = append(diags, contracts.Diagnostic{
				ClientID: c.ID,
				Source:   string(def.Factor),
				Reason:   err.Error(),
			})
		}

		result.Factors = append(result.Factors, fs)
		total += float64(weight) * fs.Score / 100
	}

	result.Total = total
	result.Status = Status(total, k.cfg.Compliance)
	result.Issues = issues(result.Factors, k.cfg.Compliance.IssueThreshold)
	result.Recommendations = recommendations(c, result.Factors, k.cfg.Compliance.CompliantThreshold)

	return result, diags
}

// ScoreAll scores every client, keeping input order
func (k *Calculator) ScoreAll(clients []contracts.ClientRecord, asOf calendar.Date) ([]contracts.ComplianceScore, []contracts.Diagnostic) {
	scores := make([]contracts.ComplianceScore, 0, len(clients))
	var diags []contracts.Diagnostic
	for _, c := range clients {
		s, d := k.Score(c.Normalized(), asOf)
		scores = append(scores, s)
		diags = append(diags, d...)
	}
	return scores, diags
}

// Status classifies a total against the configured thresholds
func Status(total float64, cfg engineconfig.Compliance) contracts.ComplianceStatus {
	switch {
	case total >= cfg.CompliantThreshold:
		return contracts.StatusCompliant
	case total >= cfg.AtRiskThreshold:
		return contracts.StatusAtRisk
	default:
		return contracts.StatusNonCompliant
	}
}

// issues lists factors below threshold (and every missing-data factor), worst first.
// Ties keep canonical factor order.
func issues(factors []contracts.FactorScore, threshold float64) []contracts.Issue {
	out := []contracts.Issue{}
	for _, fs := range factors {
		if fs.Score < threshold || fs.MissingData {
			out = append(out, contracts.Issue{Factor: fs.Factor, Score: fs.Score, MissingData: fs.MissingData})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score < out[j].Score
	})
	return out
}

var recommendationText = map[contracts.Factor]string{
	contracts.FactorAnnualReview:      "Schedule annual review with %s",
	contracts.FactorRiskProfile:       "Reassess risk profile and attitude to risk",
	contracts.FactorSuitability:       "Review and confirm suitability of current arrangements",
	contracts.FactorContactFrequency:  "Reach out to maintain regular contact",
	contracts.FactorDocumentation:     "Complete outstanding client documentation",
	contracts.FactorValueDemonstrated: "Document specific value delivered to client",
}

// recommendations gives one action per factor below the compliant threshold, in canonical order
func recommendations(c contracts.ClientRecord, factors []contracts.FactorScore, threshold float64) []string {
	out := []string{}
	for _, fs := range factors {
		if fs.Score >= threshold {
			continue
		}
		text := recommendationText[fs.Factor]
		if strings.Contains(text, "%s") {
			name := c.Name
			if name == "" {
				name = c.ID
			}
			text = strings.Replace(text, "%s", name, 1)
		}
		out = append(out, text)
	}
	return out
}
