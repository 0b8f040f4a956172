package services

import (
	"context"

	"github.com/apexline/gridlock/internal/logger"
	"github.com/apexline/gridlock/internal/repository"
)

// DefaultLeaderboardLimit caps the overall leaderboard when no limit is given
const DefaultLeaderboardLimit = 100

// LeaderboardServiceRepository defines the repository methods needed by LeaderboardService
type LeaderboardServiceRepository interface {
	repository.UserRepository
}

// LeaderboardService ranks users by rating and by season score
type LeaderboardService struct {
	log  logger.Logger
	repo LeaderboardServiceRepository
}

// NewLeaderboardService creates a new LeaderboardService
func NewLeaderboardService(log logger.Logger, repo LeaderboardServiceRepository) *LeaderboardService {
	return &LeaderboardService{log: log, repo: repo}
}

// LeaderboardEntry is one row of the overall leaderboard
type LeaderboardEntry struct {
	Rank            int    `json:"rank"`
	UserID          string `json:"user_id"`
	Username        string `json:"username"`
	Rating          int    `json:"rating"`
	TotalScore      int    `json:"total_score"`
	PredictionCount int    `json:"prediction_count"`
}

// Overall returns the top users by rating
func (s *LeaderboardService) Overall(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	users, err := s.repo.ListUsersByRating(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = LeaderboardEntry{
			Rank:            i + 1,
			UserID:          u.ID,
			Username:        u.Username,
			Rating:          u.Rating,
			TotalScore:      u.TotalScore,
			PredictionCount: u.PredictionCount,
		}
	}
	return entries, nil
}

// Season returns users ranked by summed event scores for one season
func (s *LeaderboardService) Season(ctx context.Context, season int) ([]repository.SeasonStanding, error) {
	return s.repo.SeasonLeaderboard(ctx, season)
}
