package services

import (
	"context"

	"github.com/apexline/gridlock/internal/models"
	"github.com/apexline/gridlock/internal/repository"
)

// Broadcaster defines the interface for broadcasting messages to clients
type Broadcaster interface {
	BroadcastEventSettled(event *models.Event, changes []models.RatingChange)
}

// Collector defines the metrics hooks services emit into
type Collector interface {
	PredictionSubmitted()
	EventSettled(predictions int)
	ObserveRatingDelta(delta int)
}

// PredictionServicer defines the interface for prediction operations
type PredictionServicer interface {
	Submit(ctx context.Context, userID, eventID string, ordering []models.RankedDriver) (*models.Prediction, error)
	Edit(ctx context.Context, predictionID, userID string, ordering []models.RankedDriver) (*models.Prediction, error)
	GetForUserEvent(ctx context.Context, userID, eventID string) (*models.Prediction, error)
	ListForUser(ctx context.Context, userID string) ([]models.Prediction, error)
}

// SettlementServicer defines the interface for settlement operations
type SettlementServicer interface {
	Settle(ctx context.Context, eventID string, input ResultInput) (*SettlementOutcome, error)
	FetchAndSettle(ctx context.Context, eventID string) (*SettlementOutcome, error)
	GetResult(ctx context.Context, eventID string) (*models.OfficialResult, error)
	SetBroadcaster(b Broadcaster)
}

// EventServicer defines the interface for calendar and roster operations
type EventServicer interface {
	Create(ctx context.Context, input EventInput) (*models.Event, error)
	Get(ctx context.Context, id string) (*EventView, error)
	List(ctx context.Context, season int) ([]EventView, error)
	Upcoming(ctx context.Context) ([]EventView, error)
	Drivers(ctx context.Context) ([]models.Driver, error)
	UpsertDriver(ctx context.Context, driver models.Driver) error
}

// LeaderboardServicer defines the interface for leaderboard operations
type LeaderboardServicer interface {
	Overall(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	Season(ctx context.Context, season int) ([]repository.SeasonStanding, error)
}

// UserServicer defines the interface for user operations
type UserServicer interface {
	Register(ctx context.Context, username string) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	GetByFriendCode(ctx context.Context, code string) (*models.User, error)
	FriendQR(ctx context.Context, userID string) ([]byte, error)
}

// Ensure concrete types implement interfaces
var (
	_ PredictionServicer  = (*PredictionService)(nil)
	_ SettlementServicer  = (*SettlementService)(nil)
	_ EventServicer       = (*EventService)(nil)
	_ LeaderboardServicer = (*LeaderboardService)(nil)
	_ UserServicer        = (*UserService)(nil)
)
