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

// EventServiceRepository defines the repository methods needed by EventService
type EventServiceRepository interface {
	repository.EventRepository
	repository.DriverRepository
}

// EventService handles the race calendar and driver roster
type EventService struct {
	log  logger.Logger
	repo EventServiceRepository
	now  func() time.Time
}

// NewEventService creates a new EventService
func NewEventService(log logger.Logger, repo EventServiceRepository) *EventService {
	return &EventService{
		log:  log,
		repo: repo,
		now:  time.Now,
	}
}

// SetClock overrides the service clock. Tests use this to pin the lock gate.
func (s *EventService) SetClock(now func() time.Time) {
	s.now = now
}

// EventInput describes a new calendar entry
type EventInput struct {
	Name     string    `json:"name"`
	Circuit  string    `json:"circuit"`
	Country  string    `json:"country"`
	Season   int       `json:"season"`
	Round    int       `json:"round"`
	StartsAt time.Time `json:"starts_at"`
	LockAt   time.Time `json:"lock_at"`
}

// EventView is an event plus its derived lock state at read time
type EventView struct {
	models.Event
	Locked    bool  `json:"locked"`
	LocksInMS int64 `json:"locks_in_ms"`
}

// Create adds an event to the calendar. Lock time defaults to the start
// time when not given.
func (s *EventService) Create(ctx context.Context, input EventInput) (*models.Event, error) {
	lockAt := input.LockAt
	if lockAt.IsZero() {
		lockAt = input.StartsAt
	}

	event := &models.Event{
		ID:       uuid.NewString(),
		Name:     input.Name,
		Circuit:  input.Circuit,
		Country:  input.Country,
		Season:   input.Season,
		Round:    input.Round,
		StartsAt: input.StartsAt,
		LockAt:   lockAt,
		Status:   models.EventStatusOpen,
	}

	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, err
	}

	s.log.Info("event created", "event_id", event.ID, "name", event.Name, "lock_at", event.LockAt)
	return event, nil
}

// Get returns one event with its lock state
func (s *EventService) Get(ctx context.Context, id string) (*EventView, error) {
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	view := s.view(*event)
	return &view, nil
}

// List returns events with lock state, optionally filtered by season
func (s *EventService) List(ctx context.Context, season int) ([]EventView, error) {
	events, err := s.repo.ListEvents(ctx, season)
	if err != nil {
		return nil, err
	}
	return s.views(events), nil
}

// Upcoming returns open events that have not locked yet, soonest first
func (s *EventService) Upcoming(ctx context.Context) ([]EventView, error) {
	events, err := s.repo.ListUpcomingEvents(ctx, s.now())
	if err != nil {
		return nil, err
	}
	return s.views(events), nil
}

// Drivers returns the active driver roster
func (s *EventService) Drivers(ctx context.Context) ([]models.Driver, error) {
	return s.repo.ListDrivers(ctx)
}

// UpsertDriver creates or updates a roster entry
func (s *EventService) UpsertDriver(ctx context.Context, driver models.Driver) error {
	if err := s.repo.UpsertDriver(ctx, driver); err != nil {
		return err
	}
	s.log.Info("driver upserted", "driver_id", driver.ID, "name", driver.Name)
	return nil
}

func (s *EventService) view(event models.Event) EventView {
	now := s.now()
	return EventView{
		Event:     event,
		Locked:    IsLocked(now, &event),
		LocksInMS: LocksIn(now, &event).Milliseconds(),
	}
}

func (s *EventService) views(events []models.Event) []EventView {
	views := make([]EventView, len(events))
	for i, e := range events {
		views[i] = s.view(e)
	}
	return views
}
