// Package handlers wires the HTTP API to the service layer.
package handlers

import (
	"github.com/apexline/gridlock/internal/auth"
	"github.com/apexline/gridlock/internal/metrics"
	"github.com/apexline/gridlock/internal/services"
	"github.com/apexline/gridlock/internal/websocket"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Predictions services.PredictionServicer
	Settlement  services.SettlementServicer
	Events      services.EventServicer
	Leaderboard services.LeaderboardServicer
	Users       services.UserServicer
	Auth        *auth.Auth
	Hub         *websocket.Hub
	Metrics     *metrics.Metrics
	Log         HTTPLogger
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	predictions services.PredictionServicer,
	settlement services.SettlementServicer,
	events services.EventServicer,
	leaderboard services.LeaderboardServicer,
	users services.UserServicer,
	adminAuth *auth.Auth,
	hub *websocket.Hub,
	m *metrics.Metrics,
	log HTTPLogger,
) *Handlers {
	return &Handlers{
		Predictions: predictions,
		Settlement:  settlement,
		Events:      events,
		Leaderboard: leaderboard,
		Users:       users,
		Auth:        adminAuth,
		Hub:         hub,
		Metrics:     m,
		Log:         log,
	}
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance without a hub or metrics
// (for testing API endpoints)
func NewForTesting(
	predictions services.PredictionServicer,
	settlement services.SettlementServicer,
	events services.EventServicer,
	leaderboard services.LeaderboardServicer,
	users services.UserServicer,
) *Handlers {
	// Create a test auth with a known key
	testAuth := auth.New("test-admin-key")
	return &Handlers{
		Predictions: predictions,
		Settlement:  settlement,
		Events:      events,
		Leaderboard: leaderboard,
		Users:       users,
		Auth:        testAuth,
		Log:         NoopHTTPLogger{},
	}
}
