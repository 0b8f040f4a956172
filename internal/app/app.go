// Package app assembles the engine: storage, services, websocket hub
// and the HTTP API.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/apexline/gridlock/internal/auth"
	"github.com/apexline/gridlock/internal/config"
	"github.com/apexline/gridlock/internal/handlers"
	"github.com/apexline/gridlock/internal/logger"
	"github.com/apexline/gridlock/internal/metrics"
	"github.com/apexline/gridlock/internal/repository"
	"github.com/apexline/gridlock/internal/services"
	"github.com/apexline/gridlock/internal/websocket"
	"github.com/apexline/gridlock/pkg/resultsfeed"
)

// App holds all application dependencies
type App struct {
	log             logger.Logger
	cfg             *config.Config
	handlers        *handlers.Handlers
	repo            *repository.Repository
	server          *http.Server
	cancelCountdown context.CancelFunc
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg *config.Config, httpLog handlers.HTTPLogger) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	m := metrics.New()

	var feed resultsfeed.Client = resultsfeed.NewMockClient()
	if cfg.ResultsFeedURL != "" {
		feed = resultsfeed.NewHTTPClient(cfg.ResultsFeedURL, log)
	}

	// Initialize services
	predictionService := services.NewPredictionService(log, repo, m, cfg.FieldSize)
	settlementService := services.NewSettlementService(log, repo, m, feed, cfg.FieldSize)
	eventService := services.NewEventService(log, repo)
	leaderboardService := services.NewLeaderboardService(log, repo)
	userService := services.NewUserService(log, repo)

	// Initialize WebSocket hub with DI
	hub := websocket.New(log, eventService)
	hub.Start()
	settlementService.SetBroadcaster(hub)

	// Start the lock countdown with a context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go hub.StartLockCountdown(ctx)

	adminAuth := auth.New(cfg.AdminKey)

	h := handlers.New(
		predictionService,
		settlementService,
		eventService,
		leaderboardService,
		userService,
		adminAuth,
		hub,
		m,
		httpLog,
	)

	return &App{
		log:             log,
		cfg:             cfg,
		handlers:        h,
		repo:            repo,
		cancelCountdown: cancel,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Run starts the HTTP server and blocks until it stops
func (a *App) Run() error {
	a.server = &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.log.Info("Server starting", "addr", a.cfg.Addr, "db", a.cfg.DBPath)
	err := a.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown performs graceful shutdown of app resources
func (a *App) Shutdown(ctx context.Context) error {
	a.cancelCountdown()

	var err error
	if a.server != nil {
		err = a.server.Shutdown(ctx)
	}
	if closeErr := a.repo.Close(); err == nil {
		err = closeErr
	}
	return err
}
