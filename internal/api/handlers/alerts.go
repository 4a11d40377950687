package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/clientwatch/internal/alerts"
	"github.com/wonny/clientwatch/internal/calendar"
	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/internal/dismissal"
	"github.com/wonny/clientwatch/internal/monitor"
	"github.com/wonny/clientwatch/internal/service"
	"github.com/wonny/clientwatch/pkg/logger"
)

// AlertHandler serves alert listings and dismissals
// ⭐ SSOT: 알림 API 핸들러는 이 구조체에서만
type AlertHandler struct {
	svc    *service.Service
	logger *logger.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(svc *service.Service, log *logger.Logger) *AlertHandler {
	return &AlertHandler{svc: svc, logger: log}
}

// AlertsResponse is the body of GET /api/alerts
type AlertsResponse struct {
	AsOf   calendar.Date     `json:"as_of"`
	Count  int               `json:"count"`
	Alerts []contracts.Alert `json:"alerts"`
}

// List returns filtered alerts
// GET /api/alerts?type=&priority=&client=&urgent=&due_today=&include_dismissed=&as_of=
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, ok := h.evaluate(w, r)
	if !ok {
		return
	}

	selected := filter.Apply(res.Alerts)
	respondJSON(w, http.StatusOK, AlertsResponse{
		AsOf:   res.AsOf,
		Count:  len(selected),
		Alerts: selected,
	})
}

// Summary returns counts of outstanding alerts
// GET /api/alerts/summary
func (h *AlertHandler) Summary(w http.ResponseWriter, r *http.Request) {
	res, ok := h.evaluate(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"as_of":   res.AsOf,
		"summary": res.Summary,
	})
}

// Briefing renders the daily briefing as markdown
// GET /api/alerts/briefing
func (h *AlertHandler) Briefing(w http.ResponseWriter, r *http.Request) {
	res, ok := h.evaluate(w, r)
	if !ok {
		return
	}

	respondMarkdown(w, alerts.Briefing(service.Outstanding(res.Alerts), res.AsOf))
}

// Dismiss hides an alert from future results
// POST /api/alerts/{alertID}/dismiss
func (h *AlertHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	alertID := mux.Vars(r)["alertID"]

	if err := h.svc.Dismissals().DismissAlert(r.Context(), alertID); err != nil {
		h.dismissalError(w, err, alertID)
		return
	}

	h.logger.WithField("alert_id", alertID).Info("Alert dismissed")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"alert_id":  alertID,
		"dismissed": true,
	})
}

// Restore undoes a dismissal
// DELETE /api/alerts/{alertID}/dismiss
func (h *AlertHandler) Restore(w http.ResponseWriter, r *http.Request) {
	alertID := mux.Vars(r)["alertID"]

	if err := h.svc.Dismissals().RestoreAlert(r.Context(), alertID); err != nil {
		h.dismissalError(w, err, alertID)
		return
	}

	h.logger.WithField("alert_id", alertID).Info("Alert restored")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"alert_id":  alertID,
		"dismissed": false,
	})
}

func (h *AlertHandler) dismissalError(w http.ResponseWriter, err error, alertID string) {
	if errors.Is(err, dismissal.ErrEmptyID) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.WithError(err).WithField("alert_id", alertID).Error("Failed to update dismissal")
	respondError(w, http.StatusInternalServerError, "Failed to update dismissal")
}

func (h *AlertHandler) evaluate(w http.ResponseWriter, r *http.Request) (*monitor.Result, bool) {
	asOf, err := asOfParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid as_of date")
		return nil, false
	}

	res, err := h.svc.EvaluateAlerts(r.Context(), asOf)
	if err != nil {
		h.logger.WithError(err).Error("Failed to evaluate alerts")
		respondError(w, http.StatusInternalServerError, "Failed to evaluate alerts")
		return nil, false
	}
	return res, true
}

// parseFilter maps query parameters to an alert filter.
// Dismissed alerts are hidden unless include_dismissed=true.
func parseFilter(r *http.Request) (alerts.Filter, error) {
	q := r.URL.Query()

	types, err := alerts.ParseTypes(q.Get("type"))
	if err != nil {
		return alerts.Filter{}, err
	}
	priorities, err := alerts.ParsePriorities(q.Get("priority"))
	if err != nil {
		return alerts.Filter{}, err
	}
	urgent, err := boolParam(r, "urgent")
	if err != nil {
		return alerts.Filter{}, errors.New("invalid urgent flag")
	}
	dueToday, err := boolParam(r, "due_today")
	if err != nil {
		return alerts.Filter{}, errors.New("invalid due_today flag")
	}
	includeDismissed, err := boolParam(r, "include_dismissed")
	if err != nil {
		return alerts.Filter{}, errors.New("invalid include_dismissed flag")
	}

	return alerts.Filter{
		Types:      types,
		Priorities: priorities,
		ClientID:   q.Get("client"),
		UrgentOnly: urgent,
		DueToday:   dueToday,
		Visible:    !includeDismissed,
	}, nil
}
