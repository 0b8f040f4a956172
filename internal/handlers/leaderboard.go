package handlers

import (
	"net/http"
)

// handleLeaderboard returns the overall standings by rating
func (h *Handlers) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntQuery(r, "limit", 0)
	if err != nil {
		respondError(w, err)
		return
	}

	entries, err := h.Leaderboard.Overall(r.Context(), limit)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, entries)
}

// handleSeasonLeaderboard returns cumulative scores for one season
func (h *Handlers) handleSeasonLeaderboard(w http.ResponseWriter, r *http.Request) {
	season, err := parseIntParam(r, "season")
	if err != nil {
		respondError(w, err)
		return
	}

	standings, err := h.Leaderboard.Season(r.Context(), season)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, standings)
}
