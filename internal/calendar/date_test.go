package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	d, err := Parse("2026-10-18")
	require.NoError(t, err)
	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, time.October, d.Month())
	assert.Equal(t, 18, d.Day())

	empty, err := Parse("")
	require.NoError(t, err)
	assert.True(t, empty.IsZero())

	_, err = Parse("18/10/2026")
	assert.Error(t, err)
}

func TestOf_TruncatesTimeOfDay(t *testing.T) {
	ts := time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, New(2026, 3, 1), Of(ts))
	assert.True(t, Of(time.Time{}).IsZero())
}

func TestDaysUntil(t *testing.T) {
	asOf := New(2026, 10, 18)

	tests := []struct {
		name  string
		other Date
		want  int
	}{
		{"same day", New(2026, 10, 18), 0},
		{"future", New(2026, 10, 21), 3},
		{"past", New(2026, 10, 16), -2},
		{"across year", New(2027, 1, 1), 75},
		{"across leap day", New(2028, 3, 1).AddDays(-1), 499},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, asOf.DaysUntil(tt.other))
			assert.Equal(t, -tt.want, asOf.DaysSince(tt.other))
		})
	}
}

func TestAddYears_LeapDay(t *testing.T) {
	leap := New(2024, 2, 29)
	assert.Equal(t, New(2025, 2, 28), leap.AddYears(1))
	assert.Equal(t, New(2028, 2, 29), leap.AddYears(4))
}

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name   string
		anchor Date
		asOf   Date
		want   Date
	}{
		{"later this year", New(1960, 10, 21), New(2026, 10, 18), New(2026, 10, 21)},
		{"today", New(1960, 10, 18), New(2026, 10, 18), New(2026, 10, 18)},
		{"already passed wraps", New(1960, 1, 5), New(2026, 12, 30), New(2027, 1, 5)},
		{"yesterday wraps", New(1960, 10, 17), New(2026, 10, 18), New(2027, 10, 17)},
		{"leap day in common year", New(1964, 2, 29), New(2026, 2, 1), New(2026, 2, 28)},
		{"leap day in leap year", New(1964, 2, 29), New(2028, 2, 1), New(2028, 2, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(tt.anchor, tt.asOf)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, tt.asOf.DaysUntil(got), 0)
		})
	}
}

func TestAgeOn(t *testing.T) {
	dob := New(1960, 6, 15)
	assert.Equal(t, 65, AgeOn(dob, New(2026, 6, 14)))
	assert.Equal(t, 66, AgeOn(dob, New(2026, 6, 15)))
	assert.Equal(t, 66, AgeOn(dob, New(2026, 12, 31)))
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		Due  Date  `json:"due"`
		Opt  *Date `json:"opt"`
		Zero Date  `json:"zero"`
	}

	in := wrapper{Due: New(2026, 10, 18)}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2026-10-18","opt":null,"zero":""}`, string(data))

	var out wrapper
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestLinearDecay(t *testing.T) {
	assert.Equal(t, 100.0, LinearDecay(0, 100))
	assert.Equal(t, 100.0, LinearDecay(-5, 100))
	assert.InDelta(t, 50.0, LinearDecay(50, 100), 1e-9)
	assert.Equal(t, 0.0, LinearDecay(100, 100))
	assert.Equal(t, 0.0, LinearDecay(250, 100))
	assert.Equal(t, 0.0, LinearDecay(1, 0))
}

func TestStepDecay(t *testing.T) {
	assert.Equal(t, 100.0, StepDecay(0, 10))
	assert.Equal(t, 50.0, StepDecay(5, 10))
	assert.Equal(t, 0.0, StepDecay(10, 10))
}
