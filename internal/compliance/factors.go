package compliance

import (
	"github.com/wonny/clientwatch/internal/calendar"
	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/internal/engineconfig"
)

// ScoreFunc computes one factor sub-score in [0, 100].
// An error wrapping contracts.ErrMalformedRecord means the data was missing;
// the factor then scores 0 and is flagged.
type ScoreFunc func(c contracts.ClientRecord, asOf calendar.Date, cfg engineconfig.Config) (float64, error)

// FactorDef binds a factor to its scorer
type FactorDef struct {
	Factor contracts.Factor
	Score  ScoreFunc
}

// DefaultFactors returns the six factors in canonical order
// ⭐ SSOT: 컴플라이언스 팩터 목록은 여기서만
func DefaultFactors() []FactorDef {
	return []FactorDef{
		{Factor: contracts.FactorAnnualReview, Score: ScoreAnnualReview},
		{Factor: contracts.FactorRiskProfile, Score: ScoreRiskProfile},
		{Factor: contracts.FactorSuitability, Score: ScoreSuitability},
		{Factor: contracts.FactorContactFrequency, Score: ScoreContactFrequency},
		{Factor: contracts.FactorDocumentation, Score: ScoreDocumentation},
		{Factor: contracts.FactorValueDemonstrated, Score: ScoreValueDemonstrated},
	}
}

// ScoreAnnualReview: 100 within review_period/2 days, linear to 0 at review_period
func ScoreAnnualReview(c contracts.ClientRecord, asOf calendar.Date, cfg engineconfig.Config) (float64, error) {
	last := c.Compliance.LastAnnualReview
	if last.IsZero() {
		return 0, contracts.Missing("compliance.last_annual_review")
	}

	period := float64(cfg.Alerts.ReviewPeriod)
	full := period / 2
	return decay(cfg, elapsedDays(last, asOf)-full, period-full), nil
}

// ScoreRiskProfile: 100 until the profile goes stale, linear to 0 one more
// risk_stale_years later
func ScoreRiskProfile(c contracts.ClientRecord, asOf calendar.Date, cfg engineconfig.Config) (float64, error) {
	last := c.RiskProfile.LastAssessed
	if last.IsZero() {
		return 0, contracts.Missing("risk_profile.last_assessed")
	}

	staleOn := cfg.Alerts.RiskStaleOn(last)
	window := float64(staleOn.DaysUntil(last.AddYears(2 * cfg.Alerts.RiskStaleYears)))
	return decay(cfg, float64(asOf.DaysSince(staleOn)), window), nil
}

// ScoreSuitability: 100 if confirmed else 0
func ScoreSuitability(c contracts.ClientRecord, _ calendar.Date, _ engineconfig.Config) (float64, error) {
	return boolScore(c.Compliance.SuitabilityConfirmed), nil
}

// ScoreContactFrequency: 100 within no_contact_days/3 of the last interaction,
// linear to 0 at no_contact_days
func ScoreContactFrequency(c contracts.ClientRecord, asOf calendar.Date, cfg engineconfig.Config) (float64, error) {
	last := c.LastContact(asOf)
	if last.IsZero() {
		return 0, contracts.Missing("interactions")
	}

	limit := float64(cfg.Alerts.NoContactDays)
	full := limit / 3
	return decay(cfg, elapsedDays(last, asOf)-full, limit-full), nil
}

// ScoreDocumentation: 100 if complete else 0
func ScoreDocumentation(c contracts.ClientRecord, _ calendar.Date, _ engineconfig.Config) (float64, error) {
	return boolScore(c.Compliance.DocumentationComplete), nil
}

// ScoreValueDemonstrated: 100 if any value event falls within review_period days of asOf
func ScoreValueDemonstrated(c contracts.ClientRecord, asOf calendar.Date, cfg engineconfig.Config) (float64, error) {
	for _, ev := range c.Compliance.ValueDelivered {
		if ev.Date.IsZero() || ev.Date.After(asOf) {
			continue
		}
		if asOf.DaysSince(ev.Date) <= cfg.Alerts.ReviewPeriod {
			return 100, nil
		}
	}
	return 0, nil
}

// elapsedDays is days from d to asOf, floored at 0 for future-dated records
func elapsedDays(d, asOf calendar.Date) float64 {
	days := asOf.DaysSince(d)
	if days < 0 {
		return 0
	}
	return float64(days)
}

// decay applies the configured scoring curve
func decay(cfg engineconfig.Config, elapsed, window float64) float64 {
	if cfg.Compliance.Curve == engineconfig.CurveStep {
		return calendar.StepDecay(elapsed, window)
	}
	return calendar.LinearDecay(elapsed, window)
}

func boolScore(ok bool) float64 {
	if ok {
		return 100
	}
	return 0
}
