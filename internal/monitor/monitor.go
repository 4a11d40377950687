package monitor

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/clientwatch/internal/alerts"
	"github.com/wonny/clientwatch/internal/calendar"
	"github.com/wonny/clientwatch/internal/compliance"
	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/internal/engineconfig"
	"github.com/wonny/clientwatch/internal/metrics"
	"github.com/wonny/clientwatch/pkg/logger"
)

// Monitor coordinates the alert and compliance pipelines over a client batch
// ⭐ SSOT: 평가 파이프라인 조율은 여기서만
type Monitor struct {
	cfg        engineconfig.Config
	configHash string
	version    string

	rules []alerts.Rule
	calc  *compliance.Calculator

	clock   func() time.Time
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// Option configures a Monitor
type Option func(*Monitor)

// WithClock injects the source of "today" used when no as-of date is given
func WithClock(clock func() time.Time) Option {
	return func(m *Monitor) { m.clock = clock }
}

// WithLogger sets the logger diagnostics are written to
func WithLogger(log *logger.Logger) Option {
	return func(m *Monitor) { m.logger = log }
}

// WithMetrics records evaluation metrics
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Monitor) { m.metrics = mt }
}

// WithVersion stamps results with an engine version
func WithVersion(v string) Option {
	return func(m *Monitor) { m.version = v }
}

// WithRules replaces the default rule set
func WithRules(rules []alerts.Rule) Option {
	return func(m *Monitor) { m.rules = rules }
}

// New validates cfg and creates a monitor. Invalid configuration is the
// only hard failure; everything per-client is isolated at evaluation time.
func New(cfg *engineconfig.Config, opts ...Option) (*Monitor, error) {
	if cfg == nil {
		d := engineconfig.Defaults()
		cfg = &d
	}
	if err := engineconfig.Validate(cfg); err != nil {
		return nil, err
	}
	hash, err := engineconfig.Hash(cfg)
	if err != nil {
		return nil, err
	}

	m := &Monitor{
		cfg:        *cfg,
		configHash: hash,
		version:    "dev",
		rules:      alerts.DefaultRules(),
		calc:       compliance.NewCalculator(*cfg),
		clock:      time.Now,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Config returns a copy of the engine configuration
func (m *Monitor) Config() engineconfig.Config {
	return m.cfg
}

// ConfigHash returns the SHA-256 of the engine configuration
func (m *Monitor) ConfigHash() string {
	return m.configHash
}

// Options holds per-call evaluation settings
type Options struct {
	// AsOf is the reference date; zero means today per the injected clock
	AsOf calendar.Date
}

// Result is the full output of one evaluation
type Result struct {
	AsOf        calendar.Date                        `json:"as_of"`
	ConfigHash  string                               `json:"config_hash"`
	Version     string                               `json:"version"`
	Alerts      []contracts.Alert                    `json:"alerts"`
	Summary     contracts.AlertSummary               `json:"summary"`
	Scores      map[string]contracts.ComplianceScore `json:"scores"`
	Portfolio   contracts.PortfolioSummary           `json:"portfolio"`
	Diagnostics []contracts.Diagnostic               `json:"diagnostics"`
}

// SortedScores returns the per-client scores ordered by client id
func (r *Result) SortedScores() []contracts.ComplianceScore {
	out := make([]contracts.ComplianceScore, 0, len(r.Scores))
	for _, s := range r.Scores {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientID < out[j].ClientID })
	return out
}

type pipelines struct {
	alerts     bool
	compliance bool
}

// clientResult is the per-client output of one worker
type clientResult struct {
	alerts []contracts.Alert
	score  *contracts.ComplianceScore
	diags  []contracts.Diagnostic
}

// Evaluate runs both pipelines
func (m *Monitor) Evaluate(ctx context.Context, clients []contracts.ClientRecord, opts Options) (*Result, error) {
	return m.run(ctx, clients, opts, pipelines{alerts: true, compliance: true})
}

// EvaluateAlerts runs the alert pipeline only
func (m *Monitor) EvaluateAlerts(ctx context.Context, clients []contracts.ClientRecord, opts Options) (*Result, error) {
	return m.run(ctx, clients, opts, pipelines{alerts: true})
}

// EvaluateCompliance runs the compliance pipeline only
func (m *Monitor) EvaluateCompliance(ctx context.Context, clients []contracts.ClientRecord, opts Options) (*Result, error) {
	return m.run(ctx, clients, opts, pipelines{compliance: true})
}

func (m *Monitor) run(ctx context.Context, clients []contracts.ClientRecord, opts Options, p pipelines) (*Result, error) {
	start := time.Now()

	asOf := opts.AsOf
	if asOf.IsZero() {
		asOf = calendar.Today(m.clock)
	}

	batch, diags := prepare(clients)

	results := make([]clientResult, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.Engine.Parallelism)

	for i := range batch {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = m.evaluateClient(batch[i], asOf, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluation cancelled: %w", err)
	}

	result := &Result{
		AsOf:        asOf,
		ConfigHash:  m.configHash,
		Version:     m.version,
		Alerts:      []contracts.Alert{},
		Scores:      map[string]contracts.ComplianceScore{},
		Diagnostics: diags,
	}

	var all []contracts.Alert
	scores := make([]contracts.ComplianceScore, 0, len(batch))
	for _, r := range results {
		all = append(all, r.alerts...)
		if r.score != nil {
			scores = append(scores, *r.score)
			result.Scores[r.score.ClientID] = *r.score
		}
		result.Diagnostics = append(result.Diagnostics, r.diags...)
	}

	if p.alerts {
		result.Alerts = alerts.Aggregate(all)
		result.Summary = alerts.Summarize(result.Alerts)
	}
	if p.compliance {
		result.Portfolio = compliance.Summarize(scores, m.cfg)
	}

	m.report(result, len(batch), time.Since(start))
	return result, nil
}

// evaluateClient runs the selected pipelines for one client.
// It touches no shared state.
func (m *Monitor) evaluateClient(c contracts.ClientRecord, asOf calendar.Date, p pipelines) clientResult {
	var r clientResult
	if p.alerts {
		a, d := alerts.EvaluateClient(m.rules, c, asOf, m.cfg.Alerts)
		r.alerts = a
		r.diags = append(r.diags, d...)
	}
	if p.compliance {
		s, d := m.calc.Score(c, asOf)
		r.score = &s
		r.diags = append(r.diags, d...)
	}
	return r
}

// prepare normalizes records and drops those that cannot be keyed:
// a missing id, or an id already seen earlier in the batch
func prepare(clients []contracts.ClientRecord) ([]contracts.ClientRecord, []contracts.Diagnostic) {
	batch := make([]contracts.ClientRecord, 0, len(clients))
	diags := []contracts.Diagnostic{}
	seen := make(map[string]bool, len(clients))

	for i, c := range clients {
		switch {
		case c.ID == "":
			diags = append(diags, contracts.Diagnostic{
				ClientID: fmt.Sprintf("#%d", i),
				Source:   "record",
				Reason:   contracts.Missing("id").Error(),
			})
		case seen[c.ID]:
			diags = append(diags, contracts.Diagnostic{
				ClientID: c.ID,
				Source:   "record",
				Reason:   "duplicate client id, first record kept",
			})
		default:
			seen[c.ID] = true
			batch = append(batch, c.Normalized())
		}
	}
	return batch, diags
}

// report logs diagnostics as warnings and records metrics
func (m *Monitor) report(r *Result, clients int, d time.Duration) {
	for _, diag := range r.Diagnostics {
		m.logger.WithFields(map[string]interface{}{
			"client_id": diag.ClientID,
			"source":    diag.Source,
		}).Warn(diag.Reason)
	}

	m.metrics.ObserveEvaluation(clients, d)
	m.metrics.ObserveAlerts(r.Alerts)
	m.metrics.ObserveDiagnostics(r.Diagnostics)
	m.metrics.ObserveScores(r.SortedScores())

	m.logger.WithFields(map[string]interface{}{
		"as_of":       r.AsOf.String(),
		"clients":     clients,
		"alerts":      len(r.Alerts),
		"diagnostics": len(r.Diagnostics),
		"duration_ms": d.Milliseconds(),
	}).Info("Evaluation completed")
}
