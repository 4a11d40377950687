package alerts

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/clientwatch/internal/calendar"
	"github.com/wonny/clientwatch/internal/contracts"
)

func intPtr(v int) *int { return &v }

func TestAggregate_Order(t *testing.T) {
	in := []contracts.Alert{
		{ID: "a1", ClientID: "c2", Type: contracts.AlertNoContact, Priority: contracts.PriorityMedium, DaysUntilDue: intPtr(-10)},
		{ID: "a2", ClientID: "c1", Type: contracts.AlertUnaddressedConcern, Priority: contracts.PriorityHigh},
		{ID: "a3", ClientID: "c1", Type: contracts.AlertBirthday, Priority: contracts.PriorityHigh, DaysUntilDue: intPtr(3)},
		{ID: "a4", ClientID: "c3", Type: contracts.AlertFollowUpDue, Priority: contracts.PriorityUrgent, DaysUntilDue: intPtr(-2)},
		{ID: "a5", ClientID: "c0", Type: contracts.AlertPolicyRenewal, Priority: contracts.PriorityHigh, DaysUntilDue: intPtr(3)},
		{ID: "a6", ClientID: "c1", Type: contracts.AlertAnniversary, Priority: contracts.PriorityLow, DaysUntilDue: intPtr(1)},
		{ID: "a7", ClientID: "c1", Type: contracts.AlertPolicyRenewal, Priority: contracts.PriorityHigh, DaysUntilDue: intPtr(3)},
		{ID: "a0", ClientID: "c1", Type: contracts.AlertPolicyRenewal, Priority: contracts.PriorityHigh, DaysUntilDue: intPtr(3)},
	}

	got := Aggregate(in)

	ids := make([]string, len(got))
	for i, a := range got {
		ids[i] = a.ID
	}
	assert.Equal(t, []string{"a4", "a5", "a3", "a0", "a7", "a2", "a1", "a6"}, ids)
	assert.Equal(t, "a1", in[0].ID, "input untouched")
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
	s := Summarize(nil)
	assert.Equal(t, 0, s.Total)
	assert.Len(t, s.ByPriority, 4)
	assert.Empty(t, s.ByType)
}

func TestSummarize(t *testing.T) {
	alerts := []contracts.Alert{
		{Type: contracts.AlertFollowUpDue, Priority: contracts.PriorityUrgent, DaysUntilDue: intPtr(-2)},
		{Type: contracts.AlertBirthday, Priority: contracts.PriorityHigh, DaysUntilDue: intPtr(0)},
		{Type: contracts.AlertBirthday, Priority: contracts.PriorityMedium, DaysUntilDue: intPtr(5)},
		{Type: contracts.AlertUnaddressedConcern, Priority: contracts.PriorityHigh},
	}

	s := Summarize(alerts)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.ByPriority[contracts.PriorityUrgent])
	assert.Equal(t, 2, s.ByPriority[contracts.PriorityHigh])
	assert.Equal(t, 1, s.ByPriority[contracts.PriorityMedium])
	assert.Equal(t, 0, s.ByPriority[contracts.PriorityLow])
	assert.Equal(t, 2, s.ByType[contracts.AlertBirthday])
	assert.Equal(t, 1, s.DueToday)
	assert.Equal(t, 1, s.Overdue)
}

func TestFilter(t *testing.T) {
	alerts := []contracts.Alert{
		{ID: "1", ClientID: "c1", Type: contracts.AlertBirthday, Priority: contracts.PriorityHigh, DaysUntilDue: intPtr(0)},
		{ID: "2", ClientID: "c2", Type: contracts.AlertNoContact, Priority: contracts.PriorityMedium},
		{ID: "3", ClientID: "c1", Type: contracts.AlertFollowUpDue, Priority: contracts.PriorityUrgent, DaysUntilDue: intPtr(-1), Dismissed: true},
	}

	assert.Len(t, ByType(alerts, contracts.AlertBirthday), 1)
	assert.Len(t, ByPriority(alerts, contracts.PriorityMedium), 1)
	assert.Len(t, ForClient(alerts, "c1"), 2)
	assert.Len(t, Urgent(alerts), 2)
	assert.Len(t, DueToday(alerts), 1)
	assert.Len(t, Filter{Visible: true}.Apply(alerts), 2)
	assert.Len(t, Filter{}.Apply(alerts), 3)
	assert.Len(t, Filter{ClientID: "c1", UrgentOnly: true, Visible: true}.Apply(alerts), 1)
}

func TestBriefing(t *testing.T) {
	alerts := []contracts.Alert{
		{ClientName: "Jane", Title: "Overdue follow-up: forms", Priority: contracts.PriorityUrgent, DaysUntilDue: intPtr(-2)},
		{ClientName: "Tom", Title: "Tom's birthday today", Priority: contracts.PriorityHigh, DaysUntilDue: intPtr(0)},
		{ClientName: "Ann", Title: "ISA renewal in 4 days", Priority: contracts.PriorityHigh, DaysUntilDue: intPtr(4)},
	}

	out := Briefing(alerts, asOf)
	assert.Contains(t, out, "Sunday, 18 October 2026")
	assert.Contains(t, out, "Urgent: 1 | High: 2 | Medium: 0 | Low: 0")
	assert.Contains(t, out, "### Urgent action required\n- **Jane**")
	assert.Contains(t, out, "### Due today\n- **Tom**")
	assert.Contains(t, out, "### This week\n- **Ann**")
}

// syntheticAlerts builds alerts from seeds so that sort keys collide often
func syntheticAlerts(seeds []int) []contracts.Alert {
	types := contracts.AllAlertTypes()
	out := make([]contracts.Alert, len(seeds))
	for i, n := range seeds {
		if n < 0 {
			n = -n
		}
		a := contracts.Alert{
			ID:       fmt.Sprintf("a%d-%d", n%11, i),
			ClientID: fmt.Sprintf("c%d", n%3),
			Type:     types[n%len(types)],
			Priority: contracts.Priority(n % 4),
		}
		if n%5 != 0 {
			a.DaysUntilDue = intPtr(n%7 - 3)
		}
		out[i] = a
	}
	return out
}

func TestAggregate_PermutationInvariant(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("ordering does not depend on input order", prop.ForAll(
		func(seeds []int, shuffleSeed int64) bool {
			alerts := syntheticAlerts(seeds)
			shuffled := make([]contracts.Alert, len(alerts))
			copy(shuffled, alerts)
			r := rand.New(rand.NewSource(shuffleSeed))
			r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

			a := Aggregate(alerts)
			b := Aggregate(shuffled)
			for i := range a {
				if a[i].ID != b[i].ID {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 10_000)),
		gen.Int64(),
	))

	properties.Property("output is sorted by the total order", prop.ForAll(
		func(seeds []int) bool {
			out := Aggregate(syntheticAlerts(seeds))
			for i := 1; i < len(out); i++ {
				if Less(out[i], out[i-1]) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 10_000)),
	))

	properties.TestingRun(t)
}

func TestEvaluate_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	build := func(dobOffset, reviewAgo, contactAgo, renewalOffset, followOffset int) []contracts.ClientRecord {
		c := contracts.ClientRecord{
			ID:          "c1",
			Name:        "Generated",
			DateOfBirth: asOf.AddDays(dobOffset),
			Policies: []contracts.Policy{
				{ID: "p1", Type: contracts.PolicyISA, RenewalDate: asOf.AddDays(renewalOffset), MaturityDate: asOf.AddDays(renewalOffset / 2)},
			},
			FollowUps:    []contracts.FollowUp{{ID: "f1", Description: "call", DueDate: asOf.AddDays(followOffset)}},
			Interactions: []contracts.Interaction{{Date: asOf.AddDays(-contactAgo)}},
			Compliance:   contracts.ComplianceRecord{LastAnnualReview: asOf.AddDays(-reviewAgo)},
			RiskProfile:  contracts.RiskProfile{LastAssessed: asOf.AddDays(-reviewAgo)},
			FamilyMembers: []contracts.FamilyMember{
				{Name: "kid", Relationship: "son", DateOfBirth: asOf.AddDays(dobOffset / 3)},
			},
		}
		return []contracts.ClientRecord{c}
	}

	properties.Property("days_until_due matches due date, recurring and threshold alerts never negative", prop.ForAll(
		func(dobOffset, reviewAgo, contactAgo, renewalOffset, followOffset int) bool {
			alerts, _ := Evaluate(build(dobOffset, reviewAgo, contactAgo, renewalOffset, followOffset), asOf, defaults())
			for _, a := range alerts {
				if (a.DueDate == nil) != (a.DaysUntilDue == nil) {
					return false
				}
				if a.DueDate != nil && asOf.DaysUntil(*a.DueDate) != *a.DaysUntilDue {
					return false
				}
				if (a.Type == contracts.AlertBirthday || a.Type == contracts.AlertAnniversary) && *a.DaysUntilDue < 0 {
					return false
				}
				if (a.Type == contracts.AlertNoContact || a.Type == contracts.AlertStaleRiskProfile) && *a.DaysUntilDue != 0 {
					return false
				}
			}
			return true
		},
		gen.IntRange(-30_000, 30),
		gen.IntRange(0, 800),
		gen.IntRange(0, 400),
		gen.IntRange(-800, 100),
		gen.IntRange(-20, 20),
	))

	properties.Property("evaluation is idempotent", prop.ForAll(
		func(dobOffset, reviewAgo, contactAgo, renewalOffset, followOffset int) bool {
			clients := build(dobOffset, reviewAgo, contactAgo, renewalOffset, followOffset)
			a, _ := Evaluate(clients, asOf, defaults())
			b, _ := Evaluate(clients, asOf, defaults())
			return assert.ObjectsAreEqual(a, b)
		},
		gen.IntRange(-30_000, 30),
		gen.IntRange(0, 800),
		gen.IntRange(0, 400),
		gen.IntRange(-800, 100),
		gen.IntRange(-20, 20),
	))

	properties.TestingRun(t)
}

func TestEvaluate_EmptyInput(t *testing.T) {
	alerts, diags := Evaluate(nil, asOf, defaults())
	assert.Empty(t, alerts)
	assert.Empty(t, diags)
}

func TestEvaluate_MultipleClients(t *testing.T) {
	c1 := client("c1")
	c1.FollowUps = []contracts.FollowUp{{ID: "f", Description: "x", DueDate: asOf.AddDays(-2)}}
	c1.Compliance.LastAnnualReview = asOf.AddDays(-10)
	c1.RiskProfile.LastAssessed = asOf.AddDays(-10)

	c2 := client("c2")
	c2.DateOfBirth = calendar.New(1970, 10, 21)
	c2.Compliance.LastAnnualReview = asOf.AddDays(-10)
	c2.RiskProfile.LastAssessed = asOf.AddDays(-10)

	alerts, diags := Evaluate([]contracts.ClientRecord{c2, c1}, asOf, defaults())
	require.Len(t, alerts, 2)
	assert.Empty(t, diags)
	assert.Equal(t, contracts.PriorityUrgent, alerts[0].Priority)
	assert.Equal(t, "c1", alerts[0].ClientID)
	assert.Equal(t, contracts.AlertBirthday, alerts[1].Type)
	assert.Equal(t, "Client c2", alerts[1].ClientName)
	assert.False(t, alerts[1].Dismissed)
}

func TestParseFilterLists(t *testing.T) {
	types, err := ParseTypes(" birthday, NO_CONTACT ,")
	require.NoError(t, err)
	assert.Equal(t, []contracts.AlertType{contracts.AlertBirthday, contracts.AlertNoContact}, types)

	_, err = ParseTypes("birthday,lottery")
	assert.Error(t, err)

	none, err := ParseTypes("")
	require.NoError(t, err)
	assert.Nil(t, none)

	ps, err := ParsePriorities("urgent,High")
	require.NoError(t, err)
	assert.Equal(t, []contracts.Priority{contracts.PriorityUrgent, contracts.PriorityHigh}, ps)

	_, err = ParsePriorities("critical")
	assert.Error(t, err)
}
