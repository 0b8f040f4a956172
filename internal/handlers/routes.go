package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// instrument records request counts and latency per route pattern
func (h *Handlers) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		// The route pattern is only known after routing, so read it last
		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = "unmatched"
		}
		h.Metrics.ObserveHTTPRequest(r.Method, path, strconv.Itoa(ww.Status()), time.Since(start).Seconds())
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(h.instrument)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", h.handleHealth)

	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())
	}

	// WebSocket
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	// Users (public)
	r.Post("/api/users", h.handleRegisterUser)
	r.Get("/api/users/{id}", h.handleGetUser)
	r.Get("/api/users/{id}/qr", h.handleGetFriendQR)
	r.Get("/api/users/{id}/predictions", h.handleListUserPredictions)
	r.Get("/api/users/friend/{code}", h.handleGetUserByFriendCode)

	// Calendar and roster (public)
	r.Get("/api/events", h.handleListEvents)
	r.Get("/api/events/upcoming", h.handleUpcomingEvents)
	r.Get("/api/events/{id}", h.handleGetEvent)
	r.Get("/api/events/{id}/result", h.handleGetResult)
	r.Get("/api/events/{id}/predictions/{userID}", h.handleGetPrediction)
	r.Get("/api/drivers", h.handleGetDrivers)

	// Predictions (public)
	r.Post("/api/predictions", h.handleSubmitPrediction)
	r.Patch("/api/predictions/{id}", h.handleEditPrediction)

	// Leaderboards (public)
	r.Get("/api/leaderboard", h.handleLeaderboard)
	r.Get("/api/leaderboard/season/{season}", h.handleSeasonLeaderboard)

	// Admin API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAdminKey)

		r.Post("/api/admin/events", h.handleCreateEvent)
		r.Post("/api/admin/events/{id}/result", h.handleSubmitResult)
		r.Post("/api/admin/events/{id}/fetch-result", h.handleFetchResult)
		r.Put("/api/admin/drivers/{id}", h.handleUpsertDriver)
	})

	return r
}

// handleHealth reports liveness
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, HealthResponse{Status: "ok"})
}
