package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apexline/gridlock/internal/models"
	"github.com/apexline/gridlock/internal/services"
)

// handleCreateEvent adds an event to the calendar
func (h *Handlers) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Name == "" {
		respondError(w, BadRequest("Event name is required"))
		return
	}
	if req.StartsAt.IsZero() {
		respondError(w, BadRequest("Event start time is required"))
		return
	}

	event, err := h.Events.Create(r.Context(), services.EventInput{
		Name:     req.Name,
		Circuit:  req.Circuit,
		Country:  req.Country,
		Season:   req.Season,
		Round:    req.Round,
		StartsAt: req.StartsAt,
		LockAt:   req.LockAt,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondCreated(w, event)
}

// handleSubmitResult settles an event from a posted official result
func (h *Handlers) handleSubmitResult(w http.ResponseWriter, r *http.Request) {
	var req ResultSubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	outcome, err := h.Settlement.Settle(r.Context(), chi.URLParam(r, "id"), services.ResultInput{
		Positions:  req.Positions,
		FastestLap: req.FastestLap,
		DNFs:       req.DNFs,
		Sprint:     req.Sprint,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, outcome)
}

// handleFetchResult settles an event from the external results feed
func (h *Handlers) handleFetchResult(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.Settlement.FetchAndSettle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, outcome)
}

// handleUpsertDriver adds or updates a roster driver
func (h *Handlers) handleUpsertDriver(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req DriverUpsertRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Name == "" {
		respondError(w, BadRequest("Driver name is required"))
		return
	}

	err := h.Events.UpsertDriver(r.Context(), models.Driver{
		ID:           id,
		Name:         req.Name,
		Abbreviation: req.Abbreviation,
		Number:       req.Number,
		Team:         req.Team,
		Active:       req.Active,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, DriverUpsertResponse{ID: id})
}
