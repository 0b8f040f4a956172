package services

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/apexline/gridlock/internal/logger"
	"github.com/apexline/gridlock/internal/models"
	"github.com/apexline/gridlock/internal/rating"
	"github.com/apexline/gridlock/internal/repository"
)

// friendCodeAlphabet avoids ambiguous characters (0/O, 1/I)
const friendCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// friendCodeLength is the number of characters in a friend code
const friendCodeLength = 5

// UserServiceRepository defines the repository methods needed by UserService
type UserServiceRepository interface {
	repository.UserRepository
	repository.PredictionRepository
}

// UserService handles registration, friend codes and profiles
type UserService struct {
	log        logger.Logger
	repo       UserServiceRepository
	randReader io.Reader
	now        func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(log logger.Logger, repo UserServiceRepository) *UserService {
	return &UserService{
		log:        log,
		repo:       repo,
		randReader: rand.Reader,
		now:        time.Now,
	}
}

// SetRandReader overrides the randomness source. Tests use this to force
// friend-code collisions.
func (s *UserService) SetRandReader(r io.Reader) {
	s.randReader = r
}

// Register creates a user with the default rating and a fresh friend code
func (s *UserService) Register(ctx context.Context, username string) (*models.User, error) {
	if len(username) < 3 || len(username) > 24 {
		return nil, ErrInvalidUsername
	}

	code, err := s.generateFriendCode(ctx)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:         uuid.NewString(),
		Username:   username,
		FriendCode: code,
		Rating:     rating.DefaultRating,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.log.Info("user registered", "user_id", user.ID, "username", username, "friend_code", code)
	return user, nil
}

// Get returns a user by ID
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetByFriendCode looks a user up by their shareable friend code
func (s *UserService) GetByFriendCode(ctx context.Context, code string) (*models.User, error) {
	user, err := s.repo.GetUserByFriendCode(ctx, code)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// FriendQR renders a user's friend code as a PNG QR image
func (s *UserService) FriendQR(ctx context.Context, userID string) ([]byte, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(user.FriendCode, qrcode.Medium, 256)
}

// generateFriendCode produces a code that is not yet in use, retrying a
// bounded number of times on collision
func (s *UserService) generateFriendCode(ctx context.Context) (string, error) {
	maxRetries := 10

	for i := 0; i < maxRetries; i++ {
		bytes := make([]byte, friendCodeLength)
		if _, err := s.randReader.Read(bytes); err != nil {
			return "", fmt.Errorf("failed to generate friend code: %w", err)
		}

		code := make([]byte, friendCodeLength)
		for j, b := range bytes {
			code[j] = friendCodeAlphabet[int(b)%len(friendCodeAlphabet)]
		}

		_, err := s.repo.GetUserByFriendCode(ctx, string(code))
		if err == repository.ErrNotFound {
			return string(code), nil
		}
		if err != nil {
			return "", fmt.Errorf("error checking friend code uniqueness: %w", err)
		}
		// Collision, try again
	}

	return "", fmt.Errorf("failed to generate unique friend code after %d attempts", maxRetries)
}
