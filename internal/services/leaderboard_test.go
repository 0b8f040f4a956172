package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/apexline/gridlock/internal/logger"
	"github.com/apexline/gridlock/internal/models"
	"github.com/apexline/gridlock/internal/repository"
	"github.com/apexline/gridlock/internal/services"
	"github.com/apexline/gridlock/internal/testutil"
)

func TestLeaderboardOverall(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc := services.NewLeaderboardService(logger.New(), repo)
	ctx := context.Background()

	drivers := testutil.SeedDrivers(t, repo, 20)
	event := testutil.CreateTestEvent(t, repo, "Season Opener", time.Now().Add(-time.Hour))

	alice := testutil.CreateTestUser(t, repo, "alice")
	bob := testutil.CreateTestUser(t, repo, "bob")
	for i, u := range []*models.User{alice, bob} {
		if err := repo.CreatePrediction(ctx, &models.Prediction{
			ID: u.Username + "-pred", UserID: u.ID, EventID: event.ID,
			Ordering:    testutil.Grid(drivers...),
			SubmittedAt: time.Now(), UpdatedAt: time.Now(),
		}); err != nil {
			t.Fatalf("CreatePrediction %d failed: %v", i, err)
		}
	}

	if err := repo.ApplySettlement(ctx, &models.OfficialResult{
		ID: "r1", EventID: event.ID, Positions: testutil.Grid(drivers...), PublishedAt: time.Now(),
	}, []repository.SettledPrediction{
		{PredictionID: "alice-pred", UserID: alice.ID, RatingDelta: 80, Score: 100},
		{PredictionID: "bob-pred", UserID: bob.ID, RatingDelta: -20, Score: 10},
	}); err != nil {
		t.Fatalf("ApplySettlement failed: %v", err)
	}

	entries, err := svc.Overall(ctx, 0)
	if err != nil {
		t.Fatalf("Overall failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Username != "alice" || entries[0].Rank != 1 || entries[0].Rating != 1280 {
		t.Errorf("top entry wrong: %+v", entries[0])
	}
	if entries[1].Username != "bob" || entries[1].Rank != 2 {
		t.Errorf("second entry wrong: %+v", entries[1])
	}

	// Limit caps the list
	one, err := svc.Overall(ctx, 1)
	if err != nil {
		t.Fatalf("Overall with limit failed: %v", err)
	}
	if len(one) != 1 || one[0].Username != "alice" {
		t.Errorf("limited leaderboard wrong: %+v", one)
	}

	// Season view sums event scores
	standings, err := svc.Season(ctx, event.Season)
	if err != nil {
		t.Fatalf("Season failed: %v", err)
	}
	if len(standings) != 2 || standings[0].Username != "alice" || standings[0].SeasonScore != 100 {
		t.Errorf("season standings wrong: %+v", standings)
	}
}
