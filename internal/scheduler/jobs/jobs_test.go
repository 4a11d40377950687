package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/clientwatch/internal/audit"
	"github.com/wonny/clientwatch/internal/calendar"
	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/internal/dismissal"
	"github.com/wonny/clientwatch/internal/monitor"
	"github.com/wonny/clientwatch/pkg/logger"
)

var asOf = calendar.New(2026, 10, 18)

type staticSource struct {
	clients []contracts.ClientRecord
	err     error
}

func (s staticSource) List(context.Context) ([]contracts.ClientRecord, error) {
	return s.clients, s.err
}

type recordingSink struct {
	batches [][]contracts.Alert
}

func (r *recordingSink) Publish(_ context.Context, alerts []contracts.Alert) error {
	r.batches = append(r.batches, alerts)
	return nil
}

func clients() []contracts.ClientRecord {
	return []contracts.ClientRecord{
		{
			ID:          "c1",
			Name:        "Margaret Hughes",
			DateOfBirth: calendar.New(1980, 10, 20),
			FollowUps: []contracts.FollowUp{
				{ID: "fu1", Description: "Send forms", DueDate: asOf.AddDays(-1)},
			},
		},
		{
			ID:          "c2",
			Name:        "Tom Reid",
			DateOfBirth: calendar.New(1980, 10, 22),
		},
	}
}

func newMonitor(t *testing.T) *monitor.Monitor {
	t.Helper()
	m, err := monitor.New(nil, monitor.WithClock(func() time.Time {
		return time.Date(2026, 10, 18, 7, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	return m
}

func alertIDs(alerts []contracts.Alert) []string {
	ids := []string{}
	for _, a := range alerts {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestScanJob(t *testing.T) {
	ctx := context.Background()
	d := dismissal.NewStore(dismissal.NewMemoryBackend())
	require.NoError(t, d.DismissAlert(ctx, "bday-c1-2026"))
	require.NoError(t, d.Deactivate(ctx, "c2", "Tom Reid"))

	sink := &recordingSink{}
	reports := &audit.MemoryStore{}
	job := NewScanJob(ScanDeps{
		Source:     staticSource{clients: clients()},
		Monitor:    newMonitor(t),
		Dismissals: d,
		Sink:       sink,
		Reports:    reports,
		Logger:     logger.Nop(),
	}, "0 0 7 * * *")

	assert.Equal(t, "client_scan", job.Name())
	assert.Equal(t, "0 0 7 * * *", job.Schedule())

	report, err := job.Scan(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, asOf, report.AsOf)
	assert.Equal(t, 1, report.ClientCount, "inactive client excluded")

	for _, a := range report.Alerts {
		assert.Equal(t, "c1", a.ClientID)
		if a.ID == "bday-c1-2026" {
			assert.True(t, a.Dismissed)
		}
	}

	// dismissed birthday is stored but not published
	require.Len(t, sink.batches, 1)
	assert.Equal(t, []string{"followup-overdue-c1-fu1"}, alertIDs(sink.batches[0]))

	latest, err := reports.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, latest.RunID)

	// second run: nothing new to publish
	require.NoError(t, job.Run(ctx))
	require.Len(t, sink.batches, 2)
	assert.Empty(t, sink.batches[1])
}

func TestScanJob_SourceError(t *testing.T) {
	job := NewScanJob(ScanDeps{
		Source:     staticSource{err: errors.New("db down")},
		Monitor:    newMonitor(t),
		Dismissals: dismissal.NewStore(dismissal.NewMemoryBackend()),
		Sink:       &recordingSink{},
		Reports:    &audit.MemoryStore{},
	}, "@daily")

	err := job.Run(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestDismissalPruneJob(t *testing.T) {
	ctx := context.Background()
	d := dismissal.NewStore(dismissal.NewMemoryBackend())
	require.NoError(t, d.DismissAlert(ctx, "bday-c1-2025"))
	require.NoError(t, d.DismissAlert(ctx, "bday-c1-2026"))

	job := NewDismissalPruneJob(staticSource{clients: clients()}, newMonitor(t), d, nil)
	assert.Equal(t, "dismissal_prune", job.Name())
	require.NoError(t, job.Run(ctx))

	got, err := d.DismissedAlerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"bday-c1-2026": true}, got)
}
