package engineconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/clientwatch/internal/calendar"
	"github.com/wonny/clientwatch/internal/contracts"
)

func TestDefaults_Valid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, Validate(&cfg))
	assert.Empty(t, Warn(&cfg))
	assert.Equal(t, 100, cfg.Compliance.WeightsPct.Sum())
	assert.Equal(t, calendar.New(2027, 3, 1), cfg.Alerts.RiskStaleOn(calendar.New(2026, 3, 1)))
}

func TestWeights_For(t *testing.T) {
	w := Defaults().Compliance.WeightsPct
	total := 0
	for _, f := range contracts.AllFactors() {
		total += w.For(f)
	}
	assert.Equal(t, 100, total)
	assert.Equal(t, 25, w.For(contracts.FactorAnnualReview))
	assert.Equal(t, 0, w.For(contracts.Factor("Unknown")))
}

func TestParse_OverDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
alerts:
  birthday_window: 7
  unknown_key: 3
compliance:
  curve: step
`))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Alerts.BirthdayWindow)
	assert.Equal(t, 30, cfg.Alerts.RenewalWindow)
	assert.Equal(t, CurveStep, cfg.Compliance.Curve)
	assert.Equal(t, 8, cfg.Engine.Parallelism)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"negative window", "alerts:\n  birthday_window: -1\n", "alerts.birthday_window"},
		{"zero review period", "alerts:\n  review_period: 0\n", "alerts.review_period"},
		{"warning not below period", "alerts:\n  review_warning: 365\n", "alerts.review_warning"},
		{"weights sum", "compliance:\n  weights_pct:\n    annual_review: 30\n", "compliance.weights_pct"},
		{"negative weight", "compliance:\n  weights_pct:\n    annual_review: -5\n    risk_profile: 50\n", "compliance.weights_pct.annual_review"},
		{"thresholds inverted", "compliance:\n  at_risk_threshold: 85\n", "compliance"},
		{"issue threshold range", "compliance:\n  issue_threshold: 120\n", "compliance.issue_threshold"},
		{"unknown curve", "compliance:\n  curve: cubic\n", "compliance.curve"},
		{"parallelism", "engine:\n  parallelism: 0\n", "engine.parallelism"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)

			var verr ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("alerts: [1, 2"))
	require.Error(t, err)

	var verr ValidationError
	assert.False(t, errors.As(err, &verr))
}

func TestFromMap(t *testing.T) {
	cfg, err := FromMap(map[string]any{
		"alerts": map[string]any{"no_contact_days": 120},
		"report": map[string]any{"lowest_scoring": 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Alerts.NoContactDays)
	assert.Equal(t, 3, cfg.Report.LowestScoring)

	_, err = FromMap(map[string]any{"engine": map[string]any{"parallelism": -2}})
	assert.Error(t, err)
}

func TestFromMap_FlatAndDottedKeys(t *testing.T) {
	cfg, err := FromMap(map[string]any{
		"birthday_window":                    7,
		"alerts.no_contact_days":             120,
		"compliance.weights_pct.suitability": 15,
		"weights_pct":                        map[string]any{"documentation": 15},
		"curve":                              CurveStep,
		"unknown_threshold":                  99,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Alerts.BirthdayWindow)
	assert.Equal(t, 120, cfg.Alerts.NoContactDays)
	assert.Equal(t, 15, cfg.Compliance.WeightsPct.Suitability)
	assert.Equal(t, 15, cfg.Compliance.WeightsPct.Documentation)
	assert.Equal(t, 25, cfg.Compliance.WeightsPct.AnnualReview)
	assert.Equal(t, CurveStep, cfg.Compliance.Curve)
}

func TestFromMap_FlatKeysAreValidated(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		field  string
	}{
		{"bare negative window", map[string]any{"review_period": -5}, "alerts.review_period"},
		{"dotted negative window", map[string]any{"alerts.no_contact_days": -1}, "alerts.no_contact_days"},
		{"bare weight breaks the sum", map[string]any{"weights_pct": map[string]any{"documentation": 20}}, "compliance.weights_pct"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.values)
			require.Error(t, err)

			var verr ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("alerts:\n  renewal_window: 45\n"), 0o644))

	cfg, data, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.Alerts.RenewalWindow)
	assert.NotEmpty(t, data)

	_, _, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}

func TestHash(t *testing.T) {
	cfg := Defaults()
	hash, err := Hash(&cfg)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	// 동일 설정 → 동일 해시
	hash2, err := Hash(&cfg)
	require.NoError(t, err)
	assert.Equal(t, hash, hash2)

	cfg.Alerts.BirthdayWindow = 21
	hash3, err := Hash(&cfg)
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash3)
}

func TestNewSnapshot(t *testing.T) {
	cfg := Defaults()
	snap, err := NewSnapshot(&cfg, "2026-10-18", "v1")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18", snap.AsOf)
	assert.Len(t, snap.ConfigHash, 64)
	assert.False(t, snap.CreatedAt.IsZero())
}

func TestWarn(t *testing.T) {
	cfg := Defaults()
	cfg.Alerts.BirthdayHighDays = 30
	cfg.Compliance.WeightsPct.Suitability = 0
	cfg.Compliance.WeightsPct.RiskProfile = 40

	codes := map[string]bool{}
	for _, w := range Warn(&cfg) {
		codes[w.Code] = true
	}
	assert.True(t, codes["BIRTHDAY_HIGH_EXCEEDS_WINDOW"])
	assert.True(t, codes["ZERO_WEIGHT"])
	assert.False(t, codes["LONG_REVIEW_PERIOD"])
}
