package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// handleRegisterUser creates a new user with a fresh friend code
func (h *Handlers) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req UserRegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	user, err := h.Users.Register(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		respondError(w, err)
		return
	}

	respondCreated(w, user)
}

// handleGetUser returns a user's profile and rating state
func (h *Handlers) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, user)
}

// handleGetUserByFriendCode resolves a friend code to a user
func (h *Handlers) handleGetUserByFriendCode(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	user, err := h.Users.GetByFriendCode(r.Context(), code)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, user)
}

// handleGetFriendQR serves a user's friend code as a QR image
func (h *Handlers) handleGetFriendQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.Users.FriendQR(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}
