package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sauvage-server/models"
)

// ErrUserExists is returned when registering an email that is already stored
var ErrUserExists = errors.New("user already exists")

// UserStore handles the users collection
type UserStore struct {
	Collection *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{Collection: db.Collection(UsersCollection)}
}

// EnsureIndexes makes email unique so concurrent registrations cannot duplicate a user
func (s *UserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}
	return nil
}

// List returns every user
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, s.Collection, bson.M{})
}

// FindByEmail returns nil without error when no user has the email
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.Collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// Register inserts the user unless the email is already taken
func (s *UserStore) Register(ctx context.Context, user models.User) (*InsertResult, error) {
	existing, err := s.FindByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	result, err := s.Collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return insertResult(result), nil
}

// Promote grants the admin role to the user with the given id
func (s *UserStore) Promote(ctx context.Context, id primitive.ObjectID) (*UpdateResult, error) {
	result, err := s.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"role": models.RoleAdmin},
	})
	if err != nil {
		return nil, fmt.Errorf("promote user: %w", err)
	}
	return updateResult(result), nil
}

// SeedAdmins upserts an admin user for each email
func (s *UserStore) SeedAdmins(ctx context.Context, emails []string) error {
	for _, email := range emails {
		_, err := s.Collection.UpdateOne(ctx,
			bson.M{"email": email},
			bson.M{"$set": bson.M{"role": models.RoleAdmin}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("seed admin %s: %w", email, err)
		}
	}
	return nil
}
