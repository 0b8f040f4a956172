package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleSubmitPrediction accepts a full-grid ordering for an open event
func (h *Handlers) handleSubmitPrediction(w http.ResponseWriter, r *http.Request) {
	var req PredictionSubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	prediction, err := h.Predictions.Submit(r.Context(), req.UserID, req.EventID, req.Ordering)
	if err != nil {
		respondError(w, err)
		return
	}

	respondCreated(w, prediction)
}

// handleEditPrediction replaces the ordering of an unsettled prediction
func (h *Handlers) handleEditPrediction(w http.ResponseWriter, r *http.Request) {
	var req PredictionEditRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	prediction, err := h.Predictions.Edit(r.Context(), chi.URLParam(r, "id"), req.UserID, req.Ordering)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, prediction)
}

// handleGetPrediction returns one user's prediction for one event
func (h *Handlers) handleGetPrediction(w http.ResponseWriter, r *http.Request) {
	prediction, err := h.Predictions.GetForUserEvent(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, prediction)
}

// handleListUserPredictions returns all of a user's predictions,
// newest first
func (h *Handlers) handleListUserPredictions(w http.ResponseWriter, r *http.Request) {
	predictions, err := h.Predictions.ListForUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, predictions)
}
