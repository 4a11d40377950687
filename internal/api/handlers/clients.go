package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/clientwatch/internal/clientstore"
	"github.com/wonny/clientwatch/internal/dismissal"
	"github.com/wonny/clientwatch/pkg/logger"
)

// ClientHandler toggles client activity and reports dismissal state
type ClientHandler struct {
	store      clientstore.Store
	dismissals *dismissal.Store
	logger     *logger.Logger
}

// NewClientHandler creates a new client handler
func NewClientHandler(store clientstore.Store, dismissals *dismissal.Store, log *logger.Logger) *ClientHandler {
	return &ClientHandler{store: store, dismissals: dismissals, logger: log}
}

// Inactive lists inactive clients as id -> name
// GET /api/clients/inactive
func (h *ClientHandler) Inactive(w http.ResponseWriter, r *http.Request) {
	names, err := h.dismissals.InactiveClientNames(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list inactive clients")
		respondError(w, http.StatusInternalServerError, "Failed to list inactive clients")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(names),
		"clients": names,
	})
}

// Deactivate excludes a client from evaluation
// POST /api/clients/{clientID}/inactive
func (h *ClientHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := mux.Vars(r)["clientID"]

	client, err := h.store.Get(ctx, clientID)
	if errors.Is(err, clientstore.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Client not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("client_id", clientID).Error("Failed to load client")
		respondError(w, http.StatusInternalServerError, "Failed to load client")
		return
	}

	if err := h.dismissals.Deactivate(ctx, client.ID, client.Name); err != nil {
		h.logger.WithError(err).WithField("client_id", clientID).Error("Failed to deactivate client")
		respondError(w, http.StatusInternalServerError, "Failed to deactivate client")
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"client_id": client.ID,
		"name":      client.Name,
	}).Info("Client deactivated")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"client_id": client.ID,
		"active":    false,
	})
}

// Reactivate returns a client to evaluation
// DELETE /api/clients/{clientID}/inactive
func (h *ClientHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["clientID"]

	if err := h.dismissals.Reactivate(r.Context(), clientID); err != nil {
		if errors.Is(err, dismissal.ErrEmptyID) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).WithField("client_id", clientID).Error("Failed to reactivate client")
		respondError(w, http.StatusInternalServerError, "Failed to reactivate client")
		return
	}

	h.logger.WithField("client_id", clientID).Info("Client reactivated")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"client_id": clientID,
		"active":    true,
	})
}

// DismissalStats returns dismissal counts
// GET /api/dismissals/stats
func (h *ClientHandler) DismissalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dismissals.Stats(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to read dismissal stats")
		respondError(w, http.StatusInternalServerError, "Failed to read dismissal stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
