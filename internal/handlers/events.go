package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListEvents returns the calendar, optionally filtered by season
func (h *Handlers) handleListEvents(w http.ResponseWriter, r *http.Request) {
	season, err := parseIntQuery(r, "season", 0)
	if err != nil {
		respondError(w, err)
		return
	}

	events, err := h.Events.List(r.Context(), season)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, events)
}

// handleUpcomingEvents returns open events that have not locked yet,
// soonest lock first
func (h *Handlers) handleUpcomingEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Events.Upcoming(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, events)
}

// handleGetEvent returns one event with its derived lock state
func (h *Handlers) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.Events.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, event)
}

// handleGetResult returns the official result for a settled event
func (h *Handlers) handleGetResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.Settlement.GetResult(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, result)
}

// handleGetDrivers returns the active driver roster
func (h *Handlers) handleGetDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.Events.Drivers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, drivers)
}
