package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sauvage-server/models"
)

// CartStore handles the carts collection. Every cart item is one document.
type CartStore struct {
	Collection *mongo.Collection
}

func NewCartStore(db *mongo.Database) *CartStore {
	return &CartStore{Collection: db.Collection(CartsCollection)}
}

func (s *CartStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email"),
	})
	if err != nil {
		return fmt.Errorf("create carts email index: %w", err)
	}
	return nil
}

// ListByEmail returns the cart items owned by email
func (s *CartStore) ListByEmail(ctx context.Context, email string) ([]models.CartItem, error) {
	return findAll[models.CartItem](ctx, s.Collection, bson.M{"email": email})
}

func (s *CartStore) Insert(ctx context.Context, item models.CartItem) (*InsertResult, error) {
	result, err := s.Collection.InsertOne(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("insert cart item: %w", err)
	}
	return insertResult(result), nil
}

// Delete removes the cart item only if it belongs to email. An empty email
// matches any owner.
func (s *CartStore) Delete(ctx context.Context, id primitive.ObjectID, email string) (*DeleteResult, error) {
	filter := bson.M{"_id": id}
	if email != "" {
		filter["email"] = email
	}
	result, err := s.Collection.DeleteOne(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("delete cart item: %w", err)
	}
	return deleteResult(result), nil
}
