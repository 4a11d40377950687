package alerts

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/wonny/clientwatch/internal/calendar"
	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/internal/engineconfig"
)

const longDate = "2 January 2006"

// BirthdayRule detects client and family-member birthdays within birthday_window
func BirthdayRule(c contracts.ClientRecord, asOf calendar.Date, cfg engineconfig.Alerts) ([]Candidate, error) {
	var (
		out  []Candidate
		errs []error
	)

	if c.DateOfBirth.IsZero() {
		errs = append(errs, contracts.Missing("date_of_birth"))
	} else {
		next := calendar.NextOccurrence(c.DateOfBirth, asOf)
		days := asOf.DaysUntil(next)
		if days <= cfg.BirthdayWindow {
			age := calendar.AgeOn(c.DateOfBirth, next)
			dueDate, daysPtr := due(asOf, next)
			out = append(out, Candidate{
				ID:           alertID("bday", c.ID, strconv.Itoa(next.Year())),
				Type:         contracts.AlertBirthday,
				Title:        fmt.Sprintf("%s's birthday %s", c.Name, inDays(days)),
				Description:  fmt.Sprintf("%s turns %d on %s. Consider sending a birthday message.", c.Name, age, next.Time().Format(longDate)),
				DueDate:      dueDate,
				DaysUntilDue: daysPtr,
				Metadata:     map[string]string{"age": strconv.Itoa(age)},
			})
		}
	}

	// Family members without a date of birth are optional, not malformed
	for i, m := range c.FamilyMembers {
		if m.DateOfBirth.IsZero() {
			continue
		}
		next := calendar.NextOccurrence(m.DateOfBirth, asOf)
		days := asOf.DaysUntil(next)
		if days > cfg.BirthdayWindow {
			continue
		}
		dueDate, daysPtr := due(asOf, next)
		out = append(out, Candidate{
			ID:           alertID("fam-bday", c.ID, itemKey(m.Name, i), strconv.Itoa(next.Year())),
			Type:         contracts.AlertBirthday,
			Title:        fmt.Sprintf("%s's birthday (%s) %s", m.Name, m.Relationship, inDays(days)),
			Description:  fmt.Sprintf("%s, %s's %s, has a birthday on %s.", m.Name, c.Name, m.Relationship, next.Time().Format(longDate)),
			DueDate:      dueDate,
			DaysUntilDue: daysPtr,
			Metadata: map[string]string{
				"family_member": m.Name,
				"relationship":  m.Relationship,
			},
		})
	}

	return out, errors.Join(errs...)
}

// AnniversaryRule detects wedding and family anniversaries within anniversary_window.
// Only events dated before asOf recur; a future wedding is not yet an anniversary.
func AnniversaryRule(c contracts.ClientRecord, asOf calendar.Date, cfg engineconfig.Alerts) ([]Candidate, error) {
	var out []Candidate

	for _, ev := range c.LifeEvents {
		if !ev.Type.IsAnniversary() || ev.Date.IsZero() || !ev.Date.Before(asOf) {
			continue
		}
		next := calendar.NextOccurrence(ev.Date, asOf)
		days := asOf.DaysUntil(next)
		if days > cfg.AnniversaryWindow {
			continue
		}

		years := next.Year() - ev.Date.Year()
		dueDate, daysPtr := due(asOf, next)
		meta := map[string]string{
			"event_type": string(ev.Type),
			"years":      strconv.Itoa(years),
		}
		if ev.RelatedPerson != "" {
			meta["related_person"] = ev.RelatedPerson
		}
		out = append(out, Candidate{
			ID:           alertID("anniv", c.ID, string(ev.Type), ev.Date.String(), strconv.Itoa(next.Year())),
			Type:         contracts.AlertAnniversary,
			Title:        fmt.Sprintf("%s's %d-year anniversary %s", c.Name, years, inDays(days)),
			Description:  anniversaryDescription(c, ev, years, next),
			DueDate:      dueDate,
			DaysUntilDue: daysPtr,
			Metadata:     meta,
		})
	}

	return out, nil
}

func anniversaryDescription(c contracts.ClientRecord, ev contracts.LifeEvent, years int, on calendar.Date) string {
	if ev.Description != "" {
		return fmt.Sprintf("%s (%s, %s).", ev.Description, plural(years, "year"), on.Time().Format(longDate))
	}
	return fmt.Sprintf("%s marks %s since their %s on %s.", c.Name, plural(years, "year"), ev.Type, on.Time().Format(longDate))
}

// RetirementApproachingRule fires when the client is within retirement_warning_years
// of state_pension_age. The due date is the pension-age birthday.
func RetirementApproachingRule(c contracts.ClientRecord, asOf calendar.Date, cfg engineconfig.Alerts) ([]Candidate, error) {
	if c.DateOfBirth.IsZero() {
		return nil, contracts.Missing("date_of_birth")
	}

	age := calendar.AgeOn(c.DateOfBirth, asOf)
	yearsLeft := cfg.StatePensionAge - age
	if yearsLeft <= 0 || yearsLeft > cfg.RetirementWarningYears {
		return nil, nil
	}

	pensionDate := c.DateOfBirth.AddYears(cfg.StatePensionAge)
	dueDate, daysPtr := due(asOf, pensionDate)
	return []Candidate{{
		ID:           alertID("retirement", c.ID),
		Type:         contracts.AlertRetirementApproaching,
		Title:        fmt.Sprintf("Retirement approaching (%s)", plural(yearsLeft, "year")),
		Description:  fmt.Sprintf("%s reaches state pension age (%d) on %s. Review retirement planning.", c.Name, cfg.StatePensionAge, pensionDate.Time().Format(longDate)),
		DueDate:      dueDate,
		DaysUntilDue: daysPtr,
		Metadata: map[string]string{
			"retirement_age":  strconv.Itoa(cfg.StatePensionAge),
			"years_remaining": strconv.Itoa(yearsLeft),
			"current_age":     strconv.Itoa(age),
		},
	}}, nil
}
