package service

import (
	"context"
	"fmt"

	"github.com/wonny/clientwatch/internal/alerts"
	"github.com/wonny/clientwatch/internal/calendar"
	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/internal/dismissal"
	"github.com/wonny/clientwatch/internal/monitor"
)

// Service runs the monitor over the stored client book and applies the
// caller-side dismissal history to the result.
// ⭐ SSOT: CLI와 API가 공유하는 평가 흐름
type Service struct {
	source     contracts.ClientSource
	monitor    *monitor.Monitor
	dismissals *dismissal.Store
}

// New creates a service
func New(source contracts.ClientSource, mon *monitor.Monitor, dismissals *dismissal.Store) *Service {
	return &Service{source: source, monitor: mon, dismissals: dismissals}
}

// Monitor returns the underlying monitor
func (s *Service) Monitor() *monitor.Monitor {
	return s.monitor
}

// Dismissals returns the dismissal store
func (s *Service) Dismissals() *dismissal.Store {
	return s.dismissals
}

// Clients loads the client book without inactive clients
func (s *Service) Clients(ctx context.Context) ([]contracts.ClientRecord, error) {
	clients, err := s.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}

	inactive, err := s.dismissals.InactiveClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("load inactive clients: %w", err)
	}
	return dismissal.ExcludeInactive(clients, inactive), nil
}

// Evaluate runs both pipelines
func (s *Service) Evaluate(ctx context.Context, asOf calendar.Date) (*monitor.Result, error) {
	return s.run(ctx, asOf, s.monitor.Evaluate)
}

// EvaluateAlerts runs the alert pipeline only
func (s *Service) EvaluateAlerts(ctx context.Context, asOf calendar.Date) (*monitor.Result, error) {
	return s.run(ctx, asOf, s.monitor.EvaluateAlerts)
}

// EvaluateCompliance runs the compliance pipeline only
func (s *Service) EvaluateCompliance(ctx context.Context, asOf calendar.Date) (*monitor.Result, error) {
	return s.run(ctx, asOf, s.monitor.EvaluateCompliance)
}

type evaluateFunc func(ctx context.Context, clients []contracts.ClientRecord, opts monitor.Options) (*monitor.Result, error)

// run marks dismissed alerts in the result; Summary counts the outstanding ones only
func (s *Service) run(ctx context.Context, asOf calendar.Date, eval evaluateFunc) (*monitor.Result, error) {
	clients, err := s.Clients(ctx)
	if err != nil {
		return nil, err
	}

	res, err := eval(ctx, clients, monitor.Options{AsOf: asOf})
	if err != nil {
		return nil, err
	}

	applied, err := s.dismissals.Apply(ctx, res.Alerts)
	if err != nil {
		return nil, fmt.Errorf("apply dismissals: %w", err)
	}
	res.Alerts = applied
	res.Summary = alerts.Summarize(Outstanding(applied))
	return res, nil
}

// Outstanding drops dismissed alerts
func Outstanding(all []contracts.Alert) []contracts.Alert {
	return alerts.Filter{Visible: true}.Apply(all)
}
