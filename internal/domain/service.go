package domain

import (
	"context"
	"errors"
	"time"
)

// ErrUserNotFound is returned when a user cannot be located by id.
var ErrUserNotFound = errors.New("user not found")

// Service orchestrates user and exercise workflows.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListUsers returns every registered user, order unspecified.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// RegisterUser returns the existing user for the username or creates a
// new one. The existence check is advisory: two concurrent calls for
// the same username may both create a record.
func (s *Service) RegisterUser(ctx context.Context, username string) (*User, error) {
	existing, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	return s.repo.CreateUser(ctx, username)
}

// AddExerciseInput captures the payload from the API layer.
type AddExerciseInput struct {
	UserID      string
	Description string
	Duration    int
	Date        time.Time
}

// AddExercise appends an exercise entry owned by the resolved user.
// The entry carries a copy of the username, not a reference.
func (s *Service) AddExercise(ctx context.Context, input AddExerciseInput) (*Exercise, *User, error) {
	user, err := s.repo.FindUserByID(ctx, input.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}

	exercise, err := s.repo.CreateExercise(ctx, Exercise{
		Username:    user.Username,
		Description: input.Description,
		Duration:    input.Duration,
		Date:        input.Date,
	})
	if err != nil {
		return nil, nil, err
	}
	return exercise, user, nil
}

// GetLog resolves the user and returns their exercises within the
// optional inclusive date bounds. A limit <= 0 means no truncation.
func (s *Service) GetLog(ctx context.Context, userID string, from, to *time.Time, limit int) (*User, []Exercise, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}

	exercises, err := s.repo.FindExercises(ctx, ExerciseFilter{
		Username: user.Username,
		From:     from,
		To:       to,
	}, limit)
	if err != nil {
		return nil, nil, err
	}
	return user, exercises, nil
}
