package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/apexline/gridlock/internal/models"
	"github.com/apexline/gridlock/internal/rating"
	"github.com/apexline/gridlock/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// CreateTestUser inserts a user with the default rating and returns it
func CreateTestUser(t *testing.T, repo *repository.Repository, username string) *models.User {
	t.Helper()

	id := uuid.NewString()
	user := &models.User{
		ID:         id,
		Username:   username,
		FriendCode: friendCodeFrom(id),
		Rating:     rating.DefaultRating,
		CreatedAt:  time.Now().UTC(),
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user %q: %v", username, err)
	}
	return user
}

// CreateTestEvent inserts an open event locking at the given time
func CreateTestEvent(t *testing.T, repo *repository.Repository, name string, lockAt time.Time) *models.Event {
	t.Helper()

	event := &models.Event{
		ID:       uuid.NewString(),
		Name:     name,
		Circuit:  "Test Circuit",
		Country:  "Testland",
		Season:   2026,
		Round:    1,
		StartsAt: lockAt.Add(time.Hour),
		LockAt:   lockAt,
		Status:   models.EventStatusOpen,
	}
	if err := repo.CreateEvent(context.Background(), event); err != nil {
		t.Fatalf("failed to create test event %q: %v", name, err)
	}
	return event
}

// SeedDrivers inserts n active drivers with ids d01..dNN and returns the ids
func SeedDrivers(t *testing.T, repo *repository.Repository, n int) []string {
	t.Helper()

	ids := make([]string, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("d%02d", i+1)
		ids[i] = id
		driver := models.Driver{
			ID:           id,
			Name:         fmt.Sprintf("Driver %d", i+1),
			Abbreviation: fmt.Sprintf("D%02d", i+1),
			Number:       i + 1,
			Team:         fmt.Sprintf("Team %d", i/2+1),
			Active:       true,
		}
		if err := repo.UpsertDriver(context.Background(), driver); err != nil {
			t.Fatalf("failed to seed driver %q: %v", id, err)
		}
	}
	return ids
}

// Grid builds a full ordering from driver ids in finishing order
func Grid(ids ...string) []models.RankedDriver {
	ordering := make([]models.RankedDriver, len(ids))
	for i, id := range ids {
		ordering[i] = models.RankedDriver{Position: i + 1, DriverID: id}
	}
	return ordering
}

// friendCodeFrom maps a uuid onto the friend-code alphabet so test users
// never collide on the unique friend_code column
func friendCodeFrom(id string) string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	code := make([]byte, 0, 6)
	for i := 0; i < len(id) && len(code) < 6; i++ {
		c := id[i]
		if c == '-' {
			continue
		}
		code = append(code, alphabet[int(c)%len(alphabet)])
	}
	return string(code)
}
