package mock

import (
	"context"
	"time"

	"github.com/apexline/gridlock/internal/models"
	"github.com/apexline/gridlock/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.ApplySettlementError = errors.New("database error")
//	svc := services.NewSettlementService(log, mockRepo, broadcaster, collector)
//	_, err := svc.Settle(ctx, eventID, result)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Driver Errors =====
	ListDriversError  error
	UpsertDriverError error

	// ===== Event Errors =====
	CreateEventError        error
	GetEventError           error
	ListEventsError         error
	ListUpcomingEventsError error

	// ===== Prediction Errors =====
	CreatePredictionError         error
	GetPredictionError            error
	GetPredictionForUserEventErr  error
	UpdatePredictionOrderingError error
	ListPredictionsForEventError  error
	ListPredictionsForUserError   error

	// ===== User Errors =====
	CreateUserError          error
	GetUserError             error
	GetUserByUsernameError   error
	GetUserByFriendCodeError error
	ListUsersByRatingError   error
	SeasonLeaderboardError   error

	// ===== Result Errors =====
	GetResultError       error
	ApplySettlementError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{FullRepository: real}
}

func (m *Repository) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	if m.ListDriversError != nil {
		return nil, m.ListDriversError
	}
	return m.FullRepository.ListDrivers(ctx)
}

func (m *Repository) UpsertDriver(ctx context.Context, driver models.Driver) error {
	if m.UpsertDriverError != nil {
		return m.UpsertDriverError
	}
	return m.FullRepository.UpsertDriver(ctx, driver)
}

func (m *Repository) CreateEvent(ctx context.Context, event *models.Event) error {
	if m.CreateEventError != nil {
		return m.CreateEventError
	}
	return m.FullRepository.CreateEvent(ctx, event)
}

func (m *Repository) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	if m.GetEventError != nil {
		return nil, m.GetEventError
	}
	return m.FullRepository.GetEvent(ctx, id)
}

func (m *Repository) ListEvents(ctx context.Context, season int) ([]models.Event, error) {
	if m.ListEventsError != nil {
		return nil, m.ListEventsError
	}
	return m.FullRepository.ListEvents(ctx, season)
}

func (m *Repository) ListUpcomingEvents(ctx context.Context, now time.Time) ([]models.Event, error) {
	if m.ListUpcomingEventsError != nil {
		return nil, m.ListUpcomingEventsError
	}
	return m.FullRepository.ListUpcomingEvents(ctx, now)
}

func (m *Repository) CreatePrediction(ctx context.Context, prediction *models.Prediction) error {
	if m.CreatePredictionError != nil {
		return m.CreatePredictionError
	}
	return m.FullRepository.CreatePrediction(ctx, prediction)
}

func (m *Repository) GetPrediction(ctx context.Context, id string) (*models.Prediction, error) {
	if m.GetPredictionError != nil {
		return nil, m.GetPredictionError
	}
	return m.FullRepository.GetPrediction(ctx, id)
}

func (m *Repository) GetPredictionForUserEvent(ctx context.Context, userID, eventID string) (*models.Prediction, error) {
	if m.GetPredictionForUserEventErr != nil {
		return nil, m.GetPredictionForUserEventErr
	}
	return m.FullRepository.GetPredictionForUserEvent(ctx, userID, eventID)
}

func (m *Repository) UpdatePredictionOrdering(ctx context.Context, id string, ordering []models.RankedDriver, updatedAt time.Time) error {
	if m.UpdatePredictionOrderingError != nil {
		return m.UpdatePredictionOrderingError
	}
	return m.FullRepository.UpdatePredictionOrdering(ctx, id, ordering, updatedAt)
}

func (m *Repository) ListPredictionsForEvent(ctx context.Context, eventID string) ([]models.Prediction, error) {
	if m.ListPredictionsForEventError != nil {
		return nil, m.ListPredictionsForEventError
	}
	return m.FullRepository.ListPredictionsForEvent(ctx, eventID)
}

func (m *Repository) ListPredictionsForUser(ctx context.Context, userID string) ([]models.Prediction, error) {
	if m.ListPredictionsForUserError != nil {
		return nil, m.ListPredictionsForUserError
	}
	return m.FullRepository.ListPredictionsForUser(ctx, userID)
}

func (m *Repository) CreateUser(ctx context.Context, user *models.User) error {
	if m.CreateUserError != nil {
		return m.CreateUserError
	}
	return m.FullRepository.CreateUser(ctx, user)
}

func (m *Repository) GetUser(ctx context.Context, id string) (*models.User, error) {
	if m.GetUserError != nil {
		return nil, m.GetUserError
	}
	return m.FullRepository.GetUser(ctx, id)
}

func (m *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetUserByUsernameError != nil {
		return nil, m.GetUserByUsernameError
	}
	return m.FullRepository.GetUserByUsername(ctx, username)
}

func (m *Repository) GetUserByFriendCode(ctx context.Context, friendCode string) (*models.User, error) {
	if m.GetUserByFriendCodeError != nil {
		return nil, m.GetUserByFriendCodeError
	}
	return m.FullRepository.GetUserByFriendCode(ctx, friendCode)
}

func (m *Repository) ListUsersByRating(ctx context.Context, limit int) ([]models.User, error) {
	if m.ListUsersByRatingError != nil {
		return nil, m.ListUsersByRatingError
	}
	return m.FullRepository.ListUsersByRating(ctx, limit)
}

func (m *Repository) SeasonLeaderboard(ctx context.Context, season int) ([]repository.SeasonStanding, error) {
	if m.SeasonLeaderboardError != nil {
		return nil, m.SeasonLeaderboardError
	}
	return m.FullRepository.SeasonLeaderboard(ctx, season)
}

func (m *Repository) GetResult(ctx context.Context, eventID string) (*models.OfficialResult, error) {
	if m.GetResultError != nil {
		return nil, m.GetResultError
	}
	return m.FullRepository.GetResult(ctx, eventID)
}

func (m *Repository) ApplySettlement(ctx context.Context, result *models.OfficialResult, settled []repository.SettledPrediction) error {
	if m.ApplySettlementError != nil {
		return m.ApplySettlementError
	}
	return m.FullRepository.ApplySettlement(ctx, result, settled)
}
