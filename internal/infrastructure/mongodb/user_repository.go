package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fin-hub/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository stores LocalUser documents. Implements domain.UserRepository.
type UserRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewUserRepository creates a user repository on the given database.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection(usersCollection),
		now:        time.Now,
	}
}

// FindBySubject looks up the user with the given subject.
func (r *UserRepository) FindBySubject(ctx context.Context, subject string) (*domain.LocalUser, error) {
	var user domain.LocalUser
	err := r.collection.FindOne(ctx, bson.M{"subject": subject}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb: find user: %w", err)
	}
	return &user, nil
}

// Create inserts a new user. The unique subject index turns concurrent
// creates for the same subject into ErrUserExists for all but one caller.
func (r *UserRepository) Create(ctx context.Context, user *domain.LocalUser) error {
	now := r.now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("mongodb: insert user: %w", err)
	}
	return nil
}
