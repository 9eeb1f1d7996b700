// Package memory provides an in-memory persistence adapter for local
// development and unit tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"example.com/exercisetracker/internal/domain"
)

// Repository stores users and exercises in process memory. Slices keep
// natural insertion order, matching the store contract.
type Repository struct {
	mu        sync.RWMutex
	users     []domain.User
	exercises []domain.Exercise
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{}
}

// ListUsers implements domain.Repository.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, len(r.users))
	copy(out, r.users)
	return out, nil
}

// FindUserByUsername returns nil, nil when no user matches.
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Username == username {
			found := user
			return &found, nil
		}
	}
	return nil, nil
}

// CreateUser allocates an id and persists the user.
func (r *Repository) CreateUser(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := domain.User{ID: uuid.NewString(), Username: username}
	r.users = append(r.users, user)
	return &user, nil
}

// FindUserByID returns nil, nil for unknown or malformed ids.
func (r *Repository) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.ID == id {
			found := user
			return &found, nil
		}
	}
	return nil, nil
}

// CreateExercise allocates an id and appends the entry.
func (r *Repository) CreateExercise(ctx context.Context, exercise domain.Exercise) (*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exercise.ID = uuid.NewString()
	r.exercises = append(r.exercises, exercise)
	return &exercise, nil
}

// FindExercises matches the exact username with optional inclusive date
// bounds, in insertion order. A limit <= 0 returns all matches.
func (r *Repository) FindExercises(ctx context.Context, filter domain.ExerciseFilter, limit int) ([]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]domain.Exercise, 0)
	for _, exercise := range r.exercises {
		if exercise.Username != filter.Username {
			continue
		}
		if filter.From != nil && exercise.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && exercise.Date.After(*filter.To) {
			continue
		}
		results = append(results, exercise)
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}
