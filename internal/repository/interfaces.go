package repository

import (
	"context"
	"time"

	"github.com/apexline/gridlock/internal/models"
)

// SettledPrediction is one prediction's computed settlement outcome,
// ready to be written atomically by ApplySettlement.
type SettledPrediction struct {
	PredictionID string
	UserID       string
	RatingDelta  int
	Score        int
	Breakdown    models.ScoreBreakdown
}

// SeasonStanding is one row of a season leaderboard: a user's summed
// event scores across settled events in that season.
type SeasonStanding struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Rating      int    `json:"rating"`
	SeasonScore int    `json:"season_score"`
	Events      int    `json:"events"`
}

// DriverRepository defines driver roster operations
type DriverRepository interface {
	ListDrivers(ctx context.Context) ([]models.Driver, error)
	UpsertDriver(ctx context.Context, driver models.Driver) error
}

// EventRepository defines event data operations
type EventRepository interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context, season int) ([]models.Event, error)
	ListUpcomingEvents(ctx context.Context, now time.Time) ([]models.Event, error)
}

// PredictionRepository defines prediction data operations
type PredictionRepository interface {
	CreatePrediction(ctx context.Context, prediction *models.Prediction) error
	GetPrediction(ctx context.Context, id string) (*models.Prediction, error)
	GetPredictionForUserEvent(ctx context.Context, userID, eventID string) (*models.Prediction, error)
	UpdatePredictionOrdering(ctx context.Context, id string, ordering []models.RankedDriver, updatedAt time.Time) error
	ListPredictionsForEvent(ctx context.Context, eventID string) ([]models.Prediction, error)
	ListPredictionsForUser(ctx context.Context, userID string) ([]models.Prediction, error)
}

// UserRepository defines user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByFriendCode(ctx context.Context, friendCode string) (*models.User, error)
	ListUsersByRating(ctx context.Context, limit int) ([]models.User, error)
	SeasonLeaderboard(ctx context.Context, season int) ([]SeasonStanding, error)
}

// ResultRepository defines official result and settlement operations
type ResultRepository interface {
	GetResult(ctx context.Context, eventID string) (*models.OfficialResult, error)
	ApplySettlement(ctx context.Context, result *models.OfficialResult, settled []SettledPrediction) error
}

// FullRepository combines all repository interfaces.
// Use this when a service needs access to multiple domains.
type FullRepository interface {
	DriverRepository
	EventRepository
	PredictionRepository
	UserRepository
	ResultRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
