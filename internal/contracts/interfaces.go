package contracts

import (
	"context"
)

// ClientSource loads the client snapshot an evaluation runs over
// ⭐ SSOT: data-store collaborator interface
type ClientSource interface {
	List(ctx context.Context) ([]ClientRecord, error)
}

// AlertSink receives the visible alerts of a scan (Kafka, logs, ...)
type AlertSink interface {
	Publish(ctx context.Context, alerts []Alert) error
}

// DismissalStore holds caller-side dismissal history; the engine never reads it
type DismissalStore interface {
	DismissedAlerts(ctx context.Context) (map[string]bool, error)
	InactiveClients(ctx context.Context) (map[string]bool, error)
}
