package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/apexline/gridlock/internal/logger"
	"github.com/apexline/gridlock/internal/models"
	"github.com/apexline/gridlock/internal/rating"
	"github.com/apexline/gridlock/internal/repository"
	"github.com/apexline/gridlock/pkg/resultsfeed"
)

// SettlementServiceRepository defines the repository methods needed by SettlementService
type SettlementServiceRepository interface {
	repository.EventRepository
	repository.PredictionRepository
	repository.UserRepository
	repository.ResultRepository
	repository.DriverRepository
}

// ResultInput is an official result as supplied by an admin or a feed,
// before it is persisted
type ResultInput struct {
	Positions  []models.RankedDriver `json:"positions"`
	FastestLap string                `json:"fastest_lap,omitempty"`
	DNFs       []string              `json:"dnfs,omitempty"`
	Sprint     []models.RankedDriver `json:"sprint,omitempty"`
}

// SettlementOutcome is everything one settlement produced
type SettlementOutcome struct {
	Event   *models.Event         `json:"event"`
	Result  *models.OfficialResult `json:"result"`
	Changes []models.RatingChange  `json:"changes"`
}

// SettlementService turns an official result into rating updates for
// every prediction on the event, all-or-nothing
type SettlementService struct {
	log         logger.Logger
	repo        SettlementServiceRepository
	metrics     Collector
	feed        resultsfeed.Client
	broadcaster Broadcaster
	fieldSize   int
	now         func() time.Time
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(log logger.Logger, repo SettlementServiceRepository, metrics Collector, feed resultsfeed.Client, fieldSize int) *SettlementService {
	return &SettlementService{
		log:       log,
		repo:      repo,
		metrics:   metrics,
		feed:      feed,
		fieldSize: fieldSize,
		now:       time.Now,
	}
}

// SetBroadcaster sets the broadcaster for sending settlement updates to clients
func (s *SettlementService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetClock overrides the service clock. Tests use this to pin timestamps.
func (s *SettlementService) SetClock(now func() time.Time) {
	s.now = now
}

// Settle scores every prediction for an event against the official
// result and applies all outcomes in one transaction. Either every
// prediction, every rating, the stored result and the event status
// change together, or nothing changes at all.
func (s *SettlementService) Settle(ctx context.Context, eventID string, input ResultInput) (*SettlementOutcome, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if event.Status == models.EventStatusSettled {
		return nil, ErrAlreadySettled
	}
	// Predictions stay editable until the lock, so settling an open event
	// could score an ordering that is rewritten a moment later
	if !IsLocked(s.now(), event) {
		return nil, ErrEventNotLocked
	}

	drivers, err := s.repo.ListDrivers(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateOrdering(input.Positions, s.fieldSize, drivers, ErrInvalidResult); err != nil {
		if err == ErrDriverNotFound {
			return nil, ErrInvalidResult
		}
		return nil, err
	}

	predictions, err := s.repo.ListPredictionsForEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	settled := make([]repository.SettledPrediction, 0, len(predictions))
	changes := make([]models.RatingChange, 0, len(predictions))
	users := make(map[string]*models.User, len(predictions))

	for _, p := range predictions {
		user, ok := users[p.UserID]
		if !ok {
			user, err = s.repo.GetUser(ctx, p.UserID)
			if err != nil {
				return nil, err
			}
			users[p.UserID] = user
		}

		acc := rating.Evaluate(p.Ordering, input.Positions)
		delta, breakdown := rating.ComputeDelta(acc, user.PredictionCount)
		score := rating.Score(acc)

		settled = append(settled, repository.SettledPrediction{
			PredictionID: p.ID,
			UserID:       p.UserID,
			RatingDelta:  delta,
			Score:        score,
			Breakdown:    breakdown,
		})
		changes = append(changes, models.RatingChange{
			UserID:      p.UserID,
			Username:    user.Username,
			OldRating:   user.Rating,
			NewRating:   rating.Apply(user.Rating, delta),
			RatingDelta: delta,
			Score:       score,
		})
	}

	result := &models.OfficialResult{
		ID:          uuid.NewString(),
		EventID:     eventID,
		Positions:   input.Positions,
		FastestLap:  input.FastestLap,
		DNFs:        input.DNFs,
		Sprint:      input.Sprint,
		PublishedAt: s.now().UTC(),
	}

	if err := s.repo.ApplySettlement(ctx, result, settled); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadySettled
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.EventSettled(len(settled))
		for _, c := range changes {
			s.metrics.ObserveRatingDelta(c.RatingDelta)
		}
	}

	event.Status = models.EventStatusSettled
	if s.broadcaster != nil {
		s.broadcaster.BroadcastEventSettled(event, changes)
	}

	s.log.Info("event settled", "event_id", eventID, "predictions", len(settled))
	return &SettlementOutcome{Event: event, Result: result, Changes: changes}, nil
}

// FetchAndSettle pulls the official result from the configured feed and
// settles the event with it
func (s *SettlementService) FetchAndSettle(ctx context.Context, eventID string) (*SettlementOutcome, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	classification, err := s.feed.FetchClassification(ctx, event.Season, event.Round)
	if err != nil {
		if stderrors.Is(err, resultsfeed.ErrNotAvailable) {
			return nil, ErrNoResultAvailable
		}
		return nil, err
	}
	if len(classification.Final) == 0 {
		return nil, ErrNoResultAvailable
	}

	return s.Settle(ctx, eventID, resultInputFromFeed(classification))
}

// resultInputFromFeed converts a feed classification into a settlement input
func resultInputFromFeed(c *resultsfeed.Classification) ResultInput {
	return ResultInput{
		Positions:  feedEntries(c.Final),
		FastestLap: c.FastestLap,
		DNFs:       c.DNFs,
		Sprint:     feedEntries(c.Sprint),
	}
}

func feedEntries(entries []resultsfeed.Entry) []models.RankedDriver {
	if len(entries) == 0 {
		return nil
	}
	ordering := make([]models.RankedDriver, len(entries))
	for i, e := range entries {
		ordering[i] = models.RankedDriver{Position: e.Position, DriverID: e.DriverID}
	}
	return ordering
}

// GetResult returns the stored official result for a settled event
func (s *SettlementService) GetResult(ctx context.Context, eventID string) (*models.OfficialResult, error) {
	result, err := s.repo.GetResult(ctx, eventID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoResultAvailable
		}
		return nil, err
	}
	return result, nil
}
