package handlers

import (
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/wonny/clientwatch/internal/compliance"
	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/internal/monitor"
	"github.com/wonny/clientwatch/internal/service"
	"github.com/wonny/clientwatch/pkg/logger"
)

// ComplianceHandler serves Consumer Duty scores and the portfolio summary
type ComplianceHandler struct {
	svc    *service.Service
	logger *logger.Logger
}

// NewComplianceHandler creates a new compliance handler
func NewComplianceHandler(svc *service.Service, log *logger.Logger) *ComplianceHandler {
	return &ComplianceHandler{svc: svc, logger: log}
}

// List returns scores worst first; ties keep client id order
// GET /api/compliance?status=&as_of=
func (h *ComplianceHandler) List(w http.ResponseWriter, r *http.Request) {
	status := contracts.ComplianceStatus(r.URL.Query().Get("status"))
	switch status {
	case "", contracts.StatusCompliant, contracts.StatusAtRisk, contracts.StatusNonCompliant:
	default:
		respondError(w, http.StatusBadRequest, "Unknown compliance status")
		return
	}

	res, ok := h.evaluate(w, r)
	if !ok {
		return
	}

	scores := make([]contracts.ComplianceScore, 0, len(res.Scores))
	for _, s := range res.SortedScores() {
		if status == "" || s.Status == status {
			scores = append(scores, s)
		}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Total < scores[j].Total })

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"as_of":  res.AsOf,
		"count":  len(scores),
		"scores": scores,
	})
}

// Get returns one client's score
// GET /api/compliance/{clientID}
func (h *ComplianceHandler) Get(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["clientID"]

	res, ok := h.evaluate(w, r)
	if !ok {
		return
	}

	score, found := res.Scores[clientID]
	if !found {
		respondError(w, http.StatusNotFound, "Client not found")
		return
	}
	respondJSON(w, http.StatusOK, score)
}

// Portfolio returns the portfolio summary
// GET /api/portfolio
func (h *ComplianceHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	res, ok := h.evaluate(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"as_of":     res.AsOf,
		"portfolio": res.Portfolio,
	})
}

// Report renders the Consumer Duty report as markdown
// GET /api/compliance/report
func (h *ComplianceHandler) Report(w http.ResponseWriter, r *http.Request) {
	res, ok := h.evaluate(w, r)
	if !ok {
		return
	}

	respondMarkdown(w, compliance.ConsumerDutyReport(res.Portfolio, res.AsOf))
}

func (h *ComplianceHandler) evaluate(w http.ResponseWriter, r *http.Request) (*monitor.Result, bool) {
	asOf, err := asOfParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid as_of date")
		return nil, false
	}

	res, err := h.svc.EvaluateCompliance(r.Context(), asOf)
	if err != nil {
		h.logger.WithError(err).Error("Failed to evaluate compliance")
		respondError(w, http.StatusInternalServerError, "Failed to evaluate compliance")
		return nil, false
	}
	return res, true
}
