package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clientsJSON = `{"clients": [
  {"id": "c1", "name": "Margaret Hughes", "date_of_birth": "1980-10-20",
   "follow_ups": [{"id": "fu1", "description": "Send forms", "due_date": "2026-10-17"}]},
  {"id": "c2", "name": "Tom Reid", "date_of_birth": "1980-10-22"}
]}`

// setup points the process config at temp files and returns the temp dir
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	clients := filepath.Join(dir, "clients.json")
	require.NoError(t, os.WriteFile(clients, []byte(clientsJSON), 0o644))

	t.Setenv("ENV", "development")
	t.Setenv("CLIENT_SOURCE", "file")
	t.Setenv("CLIENTS_FILE", clients)
	t.Setenv("DISMISSALS_FILE", filepath.Join(dir, "dismissals.json"))
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("KAFKA_ENABLED", "false")
	t.Setenv("WEBHOOK_URL", "")
	t.Setenv("ENGINE_CONFIG", "")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

// run executes the root command with fresh flag values
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	asOfFlag, clientsFile, engineConfig, outputFormat, verbose = "", "", "", outputText, false
	alertTypes, alertPriorities, alertClient = "", "", ""
	alertUrgent, alertDueToday, includeDismissed = false, false, false
	complianceStatus, resetConfirm = "", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

type alertsOutput struct {
	AsOf   string `json:"as_of"`
	Count  int    `json:"count"`
	Alerts []struct {
		ID       string `json:"id"`
		ClientID string `json:"client_id"`
	} `json:"alerts"`
}

func alertIDs(t *testing.T, args ...string) []string {
	t.Helper()
	out, err := run(t, append([]string{"alerts", "--as-of", "2026-10-18", "-o", "json"}, args...)...)
	require.NoError(t, err)

	var body alertsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "2026-10-18", body.AsOf)
	ids := []string{}
	for _, a := range body.Alerts {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestAlertsCommand(t *testing.T) {
	setup(t)

	ids := alertIDs(t)
	assert.Subset(t, ids, []string{"bday-c1-2026", "bday-c2-2026", "followup-overdue-c1-fu1"})

	assert.Equal(t, []string{"bday-c2-2026"}, alertIDs(t, "--type", "birthday", "--client", "c2"))

	out, err := run(t, "alerts", "--as-of", "2026-10-18")
	require.NoError(t, err)
	assert.Contains(t, out, "Client Alerts")
	assert.Contains(t, out, "Margaret Hughes")
	assert.Contains(t, out, "1d overdue")

	_, err = run(t, "alerts", "--type", "lottery")
	assert.Error(t, err)
}

func TestGlobalFlagValidation(t *testing.T) {
	setup(t)

	_, err := run(t, "alerts", "--output", "xml")
	assert.Error(t, err)

	_, err = run(t, "alerts", "--as-of", "18/10/2026")
	assert.Error(t, err)
}

func TestDismissCommands(t *testing.T) {
	dir := setup(t)

	_, err := run(t, "dismiss", "add", "bday-c1-2026")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "dismissals.json"))

	assert.NotContains(t, alertIDs(t), "bday-c1-2026")
	assert.Contains(t, alertIDs(t, "--include-dismissed"), "bday-c1-2026")

	out, err := run(t, "dismiss", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "bday-c1-2026")

	_, err = run(t, "dismiss", "remove", "bday-c1-2026")
	require.NoError(t, err)
	assert.Contains(t, alertIDs(t), "bday-c1-2026")

	_, err = run(t, "dismiss", "reset")
	assert.Error(t, err)
	_, err = run(t, "dismiss", "reset", "--yes")
	assert.NoError(t, err)
}

func TestClientCommands(t *testing.T) {
	setup(t)

	_, err := run(t, "client", "deactivate", "c2")
	require.NoError(t, err)
	for _, id := range alertIDs(t) {
		assert.NotContains(t, id, "c2")
	}

	out, err := run(t, "client", "inactive")
	require.NoError(t, err)
	assert.Contains(t, out, "Tom Reid")

	_, err = run(t, "client", "deactivate", "ghost")
	assert.Error(t, err)

	_, err = run(t, "client", "reactivate", "c2")
	require.NoError(t, err)
	assert.Contains(t, alertIDs(t), "bday-c2-2026")

	_, err = run(t, "client", "import", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestClientImportRequiresPostgres(t *testing.T) {
	setup(t)
	_, err := run(t, "client", "import", os.Getenv("CLIENTS_FILE"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLIENT_SOURCE=postgres")
}

func TestComplianceCommands(t *testing.T) {
	setup(t)

	out, err := run(t, "compliance", "--as-of", "2026-10-18", "-o", "json")
	require.NoError(t, err)
	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, 2, body.Count)

	out, err = run(t, "compliance", "c1", "--as-of", "2026-10-18")
	require.NoError(t, err)
	assert.Contains(t, out, "Margaret Hughes")
	assert.Contains(t, out, "AnnualReview")

	_, err = run(t, "compliance", "ghost")
	assert.Error(t, err)

	_, err = run(t, "compliance", "--status", "Great")
	assert.Error(t, err)

	out, err = run(t, "portfolio", "--as-of", "2026-10-18")
	require.NoError(t, err)
	assert.Contains(t, out, "Portfolio Summary")
}

func TestReportAndBriefing(t *testing.T) {
	setup(t)

	out, err := run(t, "report", "--as-of", "2026-10-18")
	require.NoError(t, err)
	assert.Contains(t, out, "# Consumer Duty Compliance Report")

	out, err = run(t, "briefing", "--as-of", "2026-10-18")
	require.NoError(t, err)
	assert.Contains(t, out, "## Daily Briefing - Sunday, 18 October 2026")
}

func TestConfigCheck(t *testing.T) {
	dir := setup(t)

	out, err := run(t, "config", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "(defaults)")

	bad := filepath.Join(dir, "engine.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("compliance:\n  weights_pct:\n    annual_review: 90\n"), 0o644))
	_, err = run(t, "config", "check", bad)
	assert.Error(t, err)
}

func TestSchedulerCommands(t *testing.T) {
	setup(t)

	out, err := run(t, "scheduler", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "client_scan")
	assert.Contains(t, out, "dismissal_prune")

	out, err = run(t, "scheduler", "run", "client_scan")
	require.NoError(t, err)
	assert.Contains(t, out, "Job client_scan completed")

	_, err = run(t, "scheduler", "run", "nope")
	assert.Error(t, err)
}
