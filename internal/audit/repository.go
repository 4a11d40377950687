package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles scan report persistence
// ⭐ SSOT: scan_runs 테이블 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new audit repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RunSummary is one row of scan history
type RunSummary struct {
	RunID       string    `json:"run_id"`
	AsOf        string    `json:"as_of"`
	ConfigHash  string    `json:"config_hash"`
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	AlertCount  int       `json:"alert_count"`
	ClientCount int       `json:"client_count"`
}

// Save stores a scan report
func (r *Repository) Save(ctx context.Context, report *ScanReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `
		INSERT INTO scan_runs (
			run_id, as_of, config_hash, version, generated_at,
			alert_count, client_count, report
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id) DO UPDATE SET
			report = EXCLUDED.report
	`

	_, err = r.pool.Exec(ctx, query,
		report.RunID, report.AsOf.String(), report.ConfigHash, report.Version, report.GeneratedAt,
		len(report.Alerts), report.ClientCount, reportJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

// Latest retrieves the most recently generated report
func (r *Repository) Latest(ctx context.Context) (*ScanReport, error) {
	query := `
		SELECT report
		FROM scan_runs
		ORDER BY generated_at DESC
		LIMIT 1
	`
	return r.scanOne(ctx, query)
}

// ForDate retrieves the latest report generated for an as-of date
func (r *Repository) ForDate(ctx context.Context, asOf string) (*ScanReport, error) {
	query := `
		SELECT report
		FROM scan_runs
		WHERE as_of = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`
	return r.scanOne(ctx, query, asOf)
}

// History lists recent runs, newest first
func (r *Repository) History(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
		SELECT run_id, as_of, config_hash, version, generated_at, alert_count, client_count
		FROM scan_runs
		ORDER BY generated_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunSummary, 0)
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.RunID, &s.AsOf, &s.ConfigHash, &s.Version,
			&s.GeneratedAt, &s.AlertCount, &s.ClientCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return runs, nil
}

func (r *Repository) scanOne(ctx context.Context, query string, args ...any) (*ScanReport, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, query, args...).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoReport
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report ScanReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}
