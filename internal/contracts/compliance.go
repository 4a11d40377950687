package contracts

// Factor names one weighted dimension of the compliance score
type Factor string

const (
	FactorAnnualReview      Factor = "AnnualReview"
	FactorRiskProfile       Factor = "RiskProfile"
	FactorSuitability       Factor = "Suitability"
	FactorContactFrequency  Factor = "ContactFrequency"
	FactorDocumentation     Factor = "Documentation"
	FactorValueDemonstrated Factor = "ValueDemonstrated"
)

// AllFactors returns factors in canonical (registration) order
func AllFactors() []Factor {
	return []Factor{
		FactorAnnualReview,
		FactorRiskProfile,
		FactorSuitability,
		FactorContactFrequency,
		FactorDocumentation,
		FactorValueDemonstrated,
	}
}

// ComplianceStatus classifies a total score
type ComplianceStatus string

const (
	StatusCompliant    ComplianceStatus = "Compliant"
	StatusAtRisk       ComplianceStatus = "AtRisk"
	StatusNonCompliant ComplianceStatus = "NonCompliant"
)

// FactorScore is one sub-score with the weight it was combined with
type FactorScore struct {
	Factor      Factor  `json:"factor"`
	Score       float64 `json:"score"`  // 0 ~ 100
	Weight      int     `json:"weight"` // percent
	MissingData bool    `json:"missing_data,omitempty"`
}

// Issue is a factor that scored below the issue threshold
type Issue struct {
	Factor      Factor  `json:"factor"`
	Score       float64 `json:"score"`
	MissingData bool    `json:"missing_data,omitempty"`
}

// ComplianceScore is the per-client result
// ⭐ SSOT: Factors keeps canonical factor order; Issues is worst first
type ComplianceScore struct {
	ClientID   string           `json:"client_id"`
	ClientName string           `json:"client_name"`
	Factors    []FactorScore    `json:"factors"`
	Total      float64          `json:"total"`
	Status     ComplianceStatus `json:"status"`
	Issues     []Issue          `json:"issues"`

	// Recommendations are advisor actions for factors below the compliant threshold
	Recommendations []string `json:"recommendations"`
}

// FactorScore returns the sub-score for f
func (s ComplianceScore) FactorScore(f Factor) (float64, bool) {
	for _, fs := range s.Factors {
		if fs.Factor == f {
			return fs.Score, true
		}
	}
	return 0, false
}

// HasIssue reports whether f appears in the issue list
func (s ComplianceScore) HasIssue(f Factor) bool {
	for _, is := range s.Issues {
		if is.Factor == f {
			return true
		}
	}
	return false
}

// IssueFrequency counts how many clients carry an issue
type IssueFrequency struct {
	Factor Factor `json:"factor"`
	Count  int    `json:"count"`
}

// ClientTotal references a client's total score
type ClientTotal struct {
	ClientID   string           `json:"client_id"`
	ClientName string           `json:"client_name"`
	Total      float64          `json:"total"`
	Status     ComplianceStatus `json:"status"`
	TopIssues  []Factor         `json:"top_issues,omitempty"`
}

// PortfolioSummary aggregates compliance across clients.
// AverageScore and CompliantRate are nil when there are no clients.
type PortfolioSummary struct {
	ClientCount   int                      `json:"client_count"`
	AverageScore  *float64                 `json:"average_score"`
	CompliantRate *float64                 `json:"compliant_rate"` // 0 ~ 1
	StatusCounts  map[ComplianceStatus]int `json:"status_counts"`
	CommonIssues  []IssueFrequency         `json:"common_issues"`
	LowestScoring []ClientTotal            `json:"lowest_scoring"`
}

// IsEmpty reports whether the summary covers zero clients
func (p PortfolioSummary) IsEmpty() bool {
	return p.ClientCount == 0
}
