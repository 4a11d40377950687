package publish

import (
	"context"
	"errors"

	"github.com/wonny/clientwatch/internal/contracts"
)

// Nop discards alerts
type Nop struct{}

// Publish implements contracts.AlertSink
func (Nop) Publish(context.Context, []contracts.Alert) error { return nil }

// Multi fans alerts out to several sinks; every sink is tried
type Multi []contracts.AlertSink

// Publish implements contracts.AlertSink
func (m Multi) Publish(ctx context.Context, alerts []contracts.Alert) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Publish(ctx, alerts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// visible drops dismissed alerts
func visible(alerts []contracts.Alert) []contracts.Alert {
	out := make([]contracts.Alert, 0, len(alerts))
	for _, a := range alerts {
		if !a.Dismissed {
			out = append(out, a)
		}
	}
	return out
}
