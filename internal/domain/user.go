// Package domain defines the business logic for the exercise tracker.
package domain

import (
	"context"
	"time"
)

// User represents a registered account, identified by an opaque id
// allocated by the store on creation.
type User struct {
	ID       string
	Username string
}

// Exercise is a single logged workout entry. Username is a denormalized
// copy of the owner's username taken at creation time; renaming a user
// would not update past entries, but usernames are immutable here.
type Exercise struct {
	ID          string
	Username    string
	Description string
	Duration    int
	Date        time.Time
}

// ExerciseFilter selects exercises by exact username and optional
// inclusive date bounds.
type ExerciseFilter struct {
	Username string
	From     *time.Time
	To       *time.Time
}

// Repository captures persistence operations. Lookups return nil, nil
// when the record is absent; a malformed id is treated as absent, not
// as an error.
type Repository interface {
	ListUsers(ctx context.Context) ([]User, error)
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, username string) (*User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)
	CreateExercise(ctx context.Context, exercise Exercise) (*Exercise, error)
	FindExercises(ctx context.Context, filter ExerciseFilter, limit int) ([]Exercise, error)
}
