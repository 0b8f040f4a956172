package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/apexline/gridlock/internal/logger"
	"github.com/apexline/gridlock/internal/models"
	"github.com/apexline/gridlock/internal/repository"
)

// PredictionServiceRepository defines the repository methods needed by PredictionService
type PredictionServiceRepository interface {
	repository.PredictionRepository
	repository.EventRepository
	repository.UserRepository
	repository.DriverRepository
}

// PredictionService handles prediction submission and editing
type PredictionService struct {
	log       logger.Logger
	repo      PredictionServiceRepository
	metrics   Collector
	fieldSize int
	now       func() time.Time
}

// NewPredictionService creates a new PredictionService
func NewPredictionService(log logger.Logger, repo PredictionServiceRepository, metrics Collector, fieldSize int) *PredictionService {
	return &PredictionService{
		log:       log,
		repo:      repo,
		metrics:   metrics,
		fieldSize: fieldSize,
		now:       time.Now,
	}
}

// SetClock overrides the service clock. Tests use this to pin the lock gate.
func (s *PredictionService) SetClock(now func() time.Time) {
	s.now = now
}

// Submit records a user's full-grid ordering for an open event.
// Exactly one prediction per user and event; the uniqueness constraint
// in storage backstops concurrent submissions.
func (s *PredictionService) Submit(ctx context.Context, userID, eventID string, ordering []models.RankedDriver) (*models.Prediction, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if IsLocked(s.now(), event) {
		return nil, ErrEventLocked
	}

	if err := s.validateOrdering(ctx, ordering); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	prediction := &models.Prediction{
		ID:          uuid.NewString(),
		UserID:      userID,
		EventID:     eventID,
		Ordering:    ordering,
		SubmittedAt: now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreatePrediction(ctx, prediction); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadySubmitted
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PredictionSubmitted()
	}
	s.log.Info("prediction submitted", "prediction_id", prediction.ID, "user_id", userID, "event_id", eventID)
	return prediction, nil
}

// Edit replaces the ordering of an existing prediction. Only the owner
// may edit, only while the event is open, and never after settlement.
func (s *PredictionService) Edit(ctx context.Context, predictionID, userID string, ordering []models.RankedDriver) (*models.Prediction, error) {
	prediction, err := s.repo.GetPrediction(ctx, predictionID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, ErrPredictionNotFound
		}
		return nil, err
	}

	if prediction.UserID != userID {
		return nil, ErrNotOwner
	}
	if prediction.RatingDelta != nil {
		return nil, ErrAlreadySettled
	}

	event, err := s.repo.GetEvent(ctx, prediction.EventID)
	if err != nil {
		return nil, err
	}
	if IsLocked(s.now(), event) {
		return nil, ErrEventLocked
	}

	if err := s.validateOrdering(ctx, ordering); err != nil {
		return nil, err
	}

	updatedAt := s.now().UTC()
	if err := s.repo.UpdatePredictionOrdering(ctx, predictionID, ordering, updatedAt); err != nil {
		// The storage guard refuses edits once settlement has written
		// the prediction, even if settle raced this call.
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, ErrAlreadySettled
		}
		return nil, err
	}

	prediction.Ordering = ordering
	prediction.UpdatedAt = updatedAt
	s.log.Info("prediction edited", "prediction_id", predictionID, "user_id", userID)
	return prediction, nil
}

// GetForUserEvent returns a user's prediction for one event
func (s *PredictionService) GetForUserEvent(ctx context.Context, userID, eventID string) (*models.Prediction, error) {
	prediction, err := s.repo.GetPredictionForUserEvent(ctx, userID, eventID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, ErrPredictionNotFound
		}
		return nil, err
	}
	return prediction, nil
}

// ListForUser returns all of a user's predictions, newest first
func (s *PredictionService) ListForUser(ctx context.Context, userID string) ([]models.Prediction, error) {
	return s.repo.ListPredictionsForUser(ctx, userID)
}

// validateOrdering checks that an ordering is a full-grid bijection:
// every position 1..fieldSize used exactly once, every driver distinct
// and present in the active roster.
func (s *PredictionService) validateOrdering(ctx context.Context, ordering []models.RankedDriver) error {
	drivers, err := s.repo.ListDrivers(ctx)
	if err != nil {
		return err
	}
	return validateOrdering(ordering, s.fieldSize, drivers, ErrInvalidOrdering)
}

func validateOrdering(ordering []models.RankedDriver, fieldSize int, roster []models.Driver, invalid error) error {
	if len(ordering) != fieldSize {
		return invalid
	}

	known := make(map[string]bool, len(roster))
	for _, d := range roster {
		known[d.ID] = true
	}

	positions := make(map[int]bool, fieldSize)
	driverIDs := make(map[string]bool, fieldSize)
	for _, r := range ordering {
		if r.Position < 1 || r.Position > fieldSize || positions[r.Position] {
			return invalid
		}
		if r.DriverID == "" || driverIDs[r.DriverID] {
			return invalid
		}
		if !known[r.DriverID] {
			return ErrDriverNotFound
		}
		positions[r.Position] = true
		driverIDs[r.DriverID] = true
	}
	return nil
}
