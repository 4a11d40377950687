package engineconfig

import (
	"fmt"
)

// ValidationError is a fatal configuration problem; evaluation must not start
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning is a recommended-constraint violation (logged only)
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Validate checks all required constraints and returns the first violation
func Validate(cfg *Config) error {
	// === Alerts ===
	a := cfg.Alerts
	nonNegative := []struct {
		field string
		value int
	}{
		{"alerts.birthday_window", a.BirthdayWindow},
		{"alerts.birthday_high_days", a.BirthdayHighDays},
		{"alerts.anniversary_window", a.AnniversaryWindow},
		{"alerts.renewal_window", a.RenewalWindow},
		{"alerts.renewal_overdue_days", a.RenewalOverdueDays},
		{"alerts.maturity_window", a.MaturityWindow},
		{"alerts.maturity_high_days", a.MaturityHighDays},
		{"alerts.followup_warning", a.FollowUpWarning},
		{"alerts.review_warning", a.ReviewWarning},
		{"alerts.concern_stale_days", a.ConcernStaleDays},
		{"alerts.retirement_warning_years", a.RetirementWarningYears},
	}
	for _, nn := range nonNegative {
		if nn.value < 0 {
			return ValidationError{nn.field, fmt.Sprintf("must be >= 0, got %d", nn.value)}
		}
	}

	positive := []struct {
		field string
		value int
	}{
		{"alerts.review_period", a.ReviewPeriod},
		{"alerts.no_contact_days", a.NoContactDays},
		{"alerts.risk_stale_years", a.RiskStaleYears},
		{"alerts.state_pension_age", a.StatePensionAge},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return ValidationError{p.field, fmt.Sprintf("must be > 0, got %d", p.value)}
		}
	}

	if a.ReviewWarning >= a.ReviewPeriod {
		return ValidationError{"alerts.review_warning", "must be < review_period"}
	}

	// === Compliance ===
	c := cfg.Compliance
	w := c.WeightsPct
	for _, f := range []struct {
		field string
		value int
	}{
		{"compliance.weights_pct.annual_review", w.AnnualReview},
		{"compliance.weights_pct.risk_profile", w.RiskProfile},
		{"compliance.weights_pct.suitability", w.Suitability},
		{"compliance.weights_pct.contact_frequency", w.ContactFrequency},
		{"compliance.weights_pct.documentation", w.Documentation},
		{"compliance.weights_pct.value_demonstrated", w.ValueDemonstrated},
	} {
		if f.value < 0 {
			return ValidationError{f.field, "must be >= 0"}
		}
	}
	if w.Sum() != 100 {
		return ValidationError{"compliance.weights_pct", fmt.Sprintf("must sum to 100, got %d", w.Sum())}
	}

	if c.IssueThreshold < 0 || c.IssueThreshold > 100 {
		return ValidationError{"compliance.issue_threshold", "must be in range [0, 100]"}
	}
	if c.AtRiskThreshold < 0 {
		return ValidationError{"compliance.at_risk_threshold", "must be >= 0"}
	}
	if c.CompliantThreshold > 100 {
		return ValidationError{"compliance.compliant_threshold", "must be <= 100"}
	}
	if c.AtRiskThreshold >= c.CompliantThreshold {
		return ValidationError{"compliance", "at_risk_threshold must be < compliant_threshold"}
	}
	if c.Curve != CurveLinear && c.Curve != CurveStep {
		return ValidationError{"compliance.curve", "must be linear or step"}
	}

	// === Engine / Report ===
	if cfg.Engine.Parallelism < 1 {
		return ValidationError{"engine.parallelism", "must be >= 1"}
	}
	if cfg.Report.LowestScoring < 0 {
		return ValidationError{"report.lowest_scoring", "must be >= 0"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	a := cfg.Alerts
	if a.BirthdayHighDays > a.BirthdayWindow {
		warnings = append(warnings, Warning{
			Code:    "BIRTHDAY_HIGH_EXCEEDS_WINDOW",
			Message: "birthday_high_days > birthday_window: every birthday alert is High",
		})
	}
	if a.MaturityHighDays > a.MaturityWindow {
		warnings = append(warnings, Warning{
			Code:    "MATURITY_HIGH_EXCEEDS_WINDOW",
			Message: "maturity_high_days > maturity_window: every maturity alert is High",
		})
	}
	if a.ReviewPeriod > 365 {
		warnings = append(warnings, Warning{
			Code:    "LONG_REVIEW_PERIOD",
			Message: "review_period > 365 days: annual review obligation may be missed",
		})
	}
	if a.NoContactDays > 365 {
		warnings = append(warnings, Warning{
			Code:    "LONG_NO_CONTACT",
			Message: "no_contact_days > 365: silent clients surface late",
		})
	}

	for _, f := range []struct {
		name  string
		value int
	}{
		{"annual_review", cfg.Compliance.WeightsPct.AnnualReview},
		{"suitability", cfg.Compliance.WeightsPct.Suitability},
	} {
		if f.value == 0 {
			warnings = append(warnings, Warning{
				Code:    "ZERO_WEIGHT",
				Message: fmt.Sprintf("compliance weight %s is 0: factor never affects the total", f.name),
			})
		}
	}

	if cfg.Compliance.IssueThreshold > cfg.Compliance.CompliantThreshold {
		warnings = append(warnings, Warning{
			Code:    "ISSUE_ABOVE_COMPLIANT",
			Message: "issue_threshold > compliant_threshold: compliant clients will still list issues",
		})
	}

	return warnings
}
