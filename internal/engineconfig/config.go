package engineconfig

import (
	"time"

	"github.com/wonny/clientwatch/internal/calendar"
	"github.com/wonny/clientwatch/internal/contracts"
)

// Config is the full set of engine thresholds and weights.
// It is passed explicitly into every evaluation; nothing here is read from the environment.
type Config struct {
	Alerts     Alerts     `yaml:"alerts" json:"alerts"`
	Compliance Compliance `yaml:"compliance" json:"compliance"`
	Engine     Engine     `yaml:"engine" json:"engine"`
	Report     Report     `yaml:"report" json:"report"`
}

// Alerts holds rule windows (days unless the name says otherwise)
type Alerts struct {
	BirthdayWindow         int `yaml:"birthday_window" json:"birthday_window"`
	BirthdayHighDays       int `yaml:"birthday_high_days" json:"birthday_high_days"`
	AnniversaryWindow      int `yaml:"anniversary_window" json:"anniversary_window"`
	RenewalWindow          int `yaml:"renewal_window" json:"renewal_window"`
	RenewalOverdueDays     int `yaml:"renewal_overdue_days" json:"renewal_overdue_days"`
	MaturityWindow         int `yaml:"maturity_window" json:"maturity_window"`
	MaturityHighDays       int `yaml:"maturity_high_days" json:"maturity_high_days"`
	FollowUpWarning        int `yaml:"followup_warning" json:"followup_warning"`
	ReviewPeriod           int `yaml:"review_period" json:"review_period"`
	ReviewWarning          int `yaml:"review_warning" json:"review_warning"`
	NoContactDays          int `yaml:"no_contact_days" json:"no_contact_days"`
	RiskStaleYears         int `yaml:"risk_stale_years" json:"risk_stale_years"`
	ConcernStaleDays       int `yaml:"concern_stale_days" json:"concern_stale_days"`
	StatePensionAge        int `yaml:"state_pension_age" json:"state_pension_age"`
	RetirementWarningYears int `yaml:"retirement_warning_years" json:"retirement_warning_years"`
}

// Compliance holds factor weights and status thresholds
type Compliance struct {
	WeightsPct         Weights `yaml:"weights_pct" json:"weights_pct"`
	IssueThreshold     float64 `yaml:"issue_threshold" json:"issue_threshold"`
	CompliantThreshold float64 `yaml:"compliant_threshold" json:"compliant_threshold"`
	AtRiskThreshold    float64 `yaml:"at_risk_threshold" json:"at_risk_threshold"`
	Curve              string  `yaml:"curve" json:"curve"` // linear | step
}

// Scoring curve variants
const (
	CurveLinear = "linear"
	CurveStep   = "step"
)

// Weights are factor weights in percent; they must sum to 100
type Weights struct {
	AnnualReview      int `yaml:"annual_review" json:"annual_review"`
	RiskProfile       int `yaml:"risk_profile" json:"risk_profile"`
	Suitability       int `yaml:"suitability" json:"suitability"`
	ContactFrequency  int `yaml:"contact_frequency" json:"contact_frequency"`
	Documentation     int `yaml:"documentation" json:"documentation"`
	ValueDemonstrated int `yaml:"value_demonstrated" json:"value_demonstrated"`
}

// Sum returns the sum of all weights
func (w Weights) Sum() int {
	return w.AnnualReview + w.RiskProfile + w.Suitability + w.ContactFrequency + w.Documentation + w.ValueDemonstrated
}

// For returns the weight of a factor (0 for unknown factors)
func (w Weights) For(f contracts.Factor) int {
	switch f {
	case contracts.FactorAnnualReview:
		return w.AnnualReview
	case contracts.FactorRiskProfile:
		return w.RiskProfile
	case contracts.FactorSuitability:
		return w.Suitability
	case contracts.FactorContactFrequency:
		return w.ContactFrequency
	case contracts.FactorDocumentation:
		return w.Documentation
	case contracts.FactorValueDemonstrated:
		return w.ValueDemonstrated
	default:
		return 0
	}
}

// Engine holds execution knobs that do not affect results
type Engine struct {
	Parallelism int `yaml:"parallelism" json:"parallelism"`
}

// Report holds presentation knobs for portfolio summaries
type Report struct {
	LowestScoring int `yaml:"lowest_scoring" json:"lowest_scoring"`
}

// Defaults returns the documented default configuration
func Defaults() Config {
	return Config{
		Alerts: Alerts{
			BirthdayWindow:         14,
			BirthdayHighDays:       3,
			AnniversaryWindow:      14,
			RenewalWindow:          30,
			RenewalOverdueDays:     90,
			MaturityWindow:         60,
			MaturityHighDays:       14,
			FollowUpWarning:        3,
			ReviewPeriod:           365,
			ReviewWarning:          30,
			NoContactDays:          90,
			RiskStaleYears:         1,
			ConcernStaleDays:       30,
			StatePensionAge:        67,
			RetirementWarningYears: 2,
		},
		Compliance: Compliance{
			WeightsPct: Weights{
				AnnualReview:      25,
				RiskProfile:       20,
				Suitability:       20,
				ContactFrequency:  15,
				Documentation:     10,
				ValueDemonstrated: 10,
			},
			IssueThreshold:     60,
			CompliantThreshold: 80,
			AtRiskThreshold:    60,
			Curve:              CurveLinear,
		},
		Engine: Engine{Parallelism: 8},
		Report: Report{LowestScoring: 5},
	}
}

// RiskStaleOn is the date a risk profile assessed on last goes stale.
// Calendar years, so a window spanning Feb 29 is one day longer.
func (a Alerts) RiskStaleOn(last calendar.Date) calendar.Date {
	return last.AddYears(a.RiskStaleYears)
}

// Snapshot records which configuration produced a result
type Snapshot struct {
	ConfigHash string    `json:"config_hash"`
	AsOf       string    `json:"as_of"`
	Version    string    `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
}
