package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/wonny/clientwatch/internal/audit"
	"github.com/wonny/clientwatch/pkg/logger"
)

const (
	defaultHistoryLimit = 30
	maxHistoryLimit     = 365
)

// HistoryReader lists past scan runs (the Postgres audit repository)
type HistoryReader interface {
	History(ctx context.Context, limit int) ([]audit.RunSummary, error)
}

// ScanFunc runs one scan on demand
type ScanFunc func(ctx context.Context) (*audit.ScanReport, error)

// ReportHandler serves stored scan reports
type ReportHandler struct {
	reports audit.ReportStore
	history HistoryReader // nil without a database
	scan    ScanFunc
	logger  *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports audit.ReportStore, history HistoryReader, scan ScanFunc, log *logger.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, history: history, scan: scan, logger: log}
}

// Latest returns the most recent scan report
// GET /api/reports/latest
func (h *ReportHandler) Latest(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Latest(r.Context())
	if errors.Is(err, audit.ErrNoReport) {
		respondError(w, http.StatusNotFound, "No scan report yet")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest report")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve report")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// History lists recent scan runs
// GET /api/reports/history?limit=
func (h *ReportHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusNotImplemented, "Scan history requires a database")
		return
	}

	limit := defaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	runs, err := h.history.History(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get scan history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve scan history")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(runs),
		"runs":  runs,
	})
}

// Scan runs a scan immediately and returns its report
// POST /api/scans
func (h *ReportHandler) Scan(w http.ResponseWriter, r *http.Request) {
	if h.scan == nil {
		respondError(w, http.StatusNotImplemented, "On-demand scans are disabled")
		return
	}

	report, err := h.scan(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("On-demand scan failed")
		respondError(w, http.StatusInternalServerError, "Scan failed")
		return
	}
	respondJSON(w, http.StatusCreated, report)
}
