// Package mongo provides the MongoDB-backed persistence adapter.
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"example.com/exercisetracker/internal/domain"
	"example.com/exercisetracker/internal/observability"
)

// Repository stores users and exercises in two collections of a single
// database. Document ids are ObjectIDs, exposed to the domain as hex
// strings.
type Repository struct {
	users     *mongo.Collection
	exercises *mongo.Collection
}

// NewRepository constructs a Repository over the given database.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		users:     db.Collection("users"),
		exercises: db.Collection("exercises"),
	}
}

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
}

type exerciseDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Username    string             `bson:"username"`
	Description string             `bson:"description"`
	Duration    int                `bson:"duration"`
	Date        time.Time          `bson:"date"`
}

// ListUsers returns every user record, order unspecified.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]domain.User, 0)
	for cursor.Next(ctx) {
		var doc userDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		users = append(users, domain.User{ID: doc.ID.Hex(), Username: doc.Username})
	}
	return users, cursor.Err()
}

// FindUserByUsername returns nil, nil when no user matches.
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var doc userDocument
	err := r.users.FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.User{ID: doc.ID.Hex(), Username: doc.Username}, nil
}

// CreateUser persists a new user and returns it with the allocated id.
func (r *Repository) CreateUser(ctx context.Context, username string) (*domain.User, error) {
	res, err := r.users.InsertOne(ctx, userDocument{Username: username})
	if err != nil {
		return nil, err
	}
	id := res.InsertedID.(primitive.ObjectID)
	observability.RecordUserCreated()
	return &domain.User{ID: id.Hex(), Username: username}, nil
}

// FindUserByID treats a malformed id the same as an unknown one.
func (r *Repository) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc userDocument
	err = r.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.User{ID: doc.ID.Hex(), Username: doc.Username}, nil
}

// CreateExercise persists the entry and returns it with the allocated id.
func (r *Repository) CreateExercise(ctx context.Context, exercise domain.Exercise) (*domain.Exercise, error) {
	res, err := r.exercises.InsertOne(ctx, exerciseDocument{
		Username:    exercise.Username,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Date:        exercise.Date,
	})
	if err != nil {
		return nil, err
	}
	exercise.ID = res.InsertedID.(primitive.ObjectID).Hex()
	observability.RecordExercisePersisted(exercise.Date)
	return &exercise, nil
}

// FindExercises matches the exact username with optional inclusive date
// bounds, in natural insertion order. A limit <= 0 returns all matches.
func (r *Repository) FindExercises(ctx context.Context, filter domain.ExerciseFilter, limit int) ([]domain.Exercise, error) {
	query := bson.M{"username": filter.Username}

	date := bson.M{}
	if filter.From != nil {
		date["$gte"] = *filter.From
	}
	if filter.To != nil {
		date["$lte"] = *filter.To
	}
	if len(date) > 0 {
		query["date"] = date
	}

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.exercises.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := make([]domain.Exercise, 0)
	for cursor.Next(ctx) {
		var doc exerciseDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		results = append(results, domain.Exercise{
			ID:          doc.ID.Hex(),
			Username:    doc.Username,
			Description: doc.Description,
			Duration:    doc.Duration,
			Date:        doc.Date,
		})
	}
	return results, cursor.Err()
}
