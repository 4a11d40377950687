package alerts

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/wonny/clientwatch/internal/calendar"
	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/internal/engineconfig"
)

// FollowUpDueRule detects open follow-ups due within followup_warning days or overdue
func FollowUpDueRule(c contracts.ClientRecord, asOf calendar.Date, cfg engineconfig.Alerts) ([]Candidate, error) {
	var (
		out  []Candidate
		errs []error
	)

	for i, f := range c.FollowUps {
		if f.Completed {
			continue
		}
		if f.DueDate.IsZero() {
			errs = append(errs, contracts.Missing(fmt.Sprintf("follow_ups[%d].due_date", i)))
			continue
		}

		days := asOf.DaysUntil(f.DueDate)
		if days > cfg.FollowUpWarning {
			continue
		}

		key := f.ID
		if key == "" {
			key = itemKey(f.Description, i)
		}

		dueDate, daysPtr := due(asOf, f.DueDate)
		cand := Candidate{
			Type:         contracts.AlertFollowUpDue,
			Description:  fmt.Sprintf("You promised %s: %q", c.Name, f.Description),
			DueDate:      dueDate,
			DaysUntilDue: daysPtr,
			Overdue:      days < 0,
			Metadata:     map[string]string{"commitment": f.Description},
		}
		if f.ID != "" {
			cand.Metadata["follow_up_id"] = f.ID
		}
		if days < 0 {
			cand.ID = alertID("followup-overdue", c.ID, key)
			cand.Title = fmt.Sprintf("Overdue follow-up: %s", truncate(f.Description, 40))
		} else {
			cand.ID = alertID("followup", c.ID, key)
			cand.Title = fmt.Sprintf("Follow-up due %s", inDays(days))
		}
		out = append(out, cand)
	}

	return out, errors.Join(errs...)
}

// AnnualReviewRule fires when the next review (last review + review_period) is
// within review_warning days or already past. The boundary is inclusive: a
// review exactly review_warning days away fires. Never-reviewed clients are
// malformed here; the compliance factor penalizes them instead.
func AnnualReviewRule(c contracts.ClientRecord, asOf calendar.Date, cfg engineconfig.Alerts) ([]Candidate, error) {
	last := c.Compliance.LastAnnualReview
	if last.IsZero() {
		return nil, contracts.Missing("compliance.last_annual_review")
	}

	next := last.AddDays(cfg.ReviewPeriod)
	days := asOf.DaysUntil(next)
	if days > cfg.ReviewWarning {
		return nil, nil
	}

	dueDate, daysPtr := due(asOf, next)
	cand := Candidate{
		Type:         contracts.AlertAnnualReview,
		DueDate:      dueDate,
		DaysUntilDue: daysPtr,
		Overdue:      days < 0,
		Metadata:     map[string]string{"last_review": last.String()},
	}
	if days < 0 {
		cand.ID = alertID("review-overdue", c.ID)
		cand.Title = "Annual review overdue"
		cand.Description = fmt.Sprintf("%s's annual review is %s overdue. Consumer Duty requires regular reviews.", c.Name, plural(-days, "day"))
	} else {
		cand.ID = alertID("review", c.ID)
		cand.Title = fmt.Sprintf("Annual review due %s", inDays(days))
		cand.Description = fmt.Sprintf("%s's annual review is due on %s.", c.Name, next.Time().Format(longDate))
	}
	return []Candidate{cand}, nil
}

// NoContactRule fires when the last interaction is at least no_contact_days ago.
// Clients with no logged interaction produce nothing here; ContactFrequency scores them 0.
// Threshold alerts are due today: they are never reported overdue.
func NoContactRule(c contracts.ClientRecord, asOf calendar.Date, cfg engineconfig.Alerts) ([]Candidate, error) {
	last := c.LastContact(asOf)
	if last.IsZero() {
		return nil, nil
	}

	since := asOf.DaysSince(last)
	if since < cfg.NoContactDays {
		return nil, nil
	}

	dueDate, daysPtr := due(asOf, asOf)
	return []Candidate{{
		ID:           alertID("no-contact", c.ID),
		Type:         contracts.AlertNoContact,
		Title:        fmt.Sprintf("No contact for %s", plural(since, "day")),
		Description:  fmt.Sprintf("It has been %s since last contact with %s. Consider reaching out.", plural(since, "day"), c.Name),
		DueDate:      dueDate,
		DaysUntilDue: daysPtr,
		Elapsed:      since,
		Metadata: map[string]string{
			"days_since_contact": strconv.Itoa(since),
			"last_contact":       last.String(),
		},
	}}, nil
}

// StaleRiskProfileRule fires once risk_stale_years have passed since the last assessment
func StaleRiskProfileRule(c contracts.ClientRecord, asOf calendar.Date, cfg engineconfig.Alerts) ([]Candidate, error) {
	last := c.RiskProfile.LastAssessed
	if last.IsZero() {
		return nil, contracts.Missing("risk_profile.last_assessed")
	}

	staleOn := cfg.RiskStaleOn(last)
	if staleOn.After(asOf) {
		return nil, nil
	}

	since := asOf.DaysSince(last)
	dueDate, daysPtr := due(asOf, asOf)
	return []Candidate{{
		ID:           alertID("risk-stale", c.ID),
		Type:         contracts.AlertStaleRiskProfile,
		Title:        "Risk profile needs update",
		Description:  fmt.Sprintf("%s's risk profile was last assessed %s ago. Consider reassessing.", c.Name, plural(since*12/365, "month")),
		DueDate:      dueDate,
		DaysUntilDue: daysPtr,
		Elapsed:      since,
		Metadata: map[string]string{
			"last_assessed": last.String(),
			"stale_since":   staleOn.String(),
		},
	}}, nil
}

// UnaddressedConcernRule fires for active high-severity concerns not discussed for
// concern_stale_days. A concern never discussed always fires and carries no due date.
func UnaddressedConcernRule(c contracts.ClientRecord, asOf calendar.Date, cfg engineconfig.Alerts) ([]Candidate, error) {
	var out []Candidate

	for i, con := range c.Concerns {
		if con.Status != contracts.ConcernActive || con.Severity != contracts.SeverityHigh {
			continue
		}

		cand := Candidate{
			ID:       alertID("concern", c.ID, itemKey(con.Topic, i)),
			Type:     contracts.AlertUnaddressedConcern,
			Title:    fmt.Sprintf("High concern: %s", con.Topic),
			Metadata: map[string]string{"topic": con.Topic},
		}

		if con.LastDiscussed.IsZero() {
			cand.Description = fmt.Sprintf("%s has an active concern about %s that has never been discussed.", c.Name, con.Topic)
			out = append(out, cand)
			continue
		}

		since := asOf.DaysSince(con.LastDiscussed)
		if since < cfg.ConcernStaleDays {
			continue
		}
		cand.DueDate, cand.DaysUntilDue = due(asOf, asOf)
		cand.Elapsed = since
		cand.Description = fmt.Sprintf("%s has an active concern about %s, last discussed %s ago.", c.Name, con.Topic, plural(since, "day"))
		cand.Metadata["last_discussed"] = con.LastDiscussed.String()
		out = append(out, cand)
	}

	return out, nil
}
