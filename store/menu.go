package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"sauvage-server/models"
)

// MenuStore handles the menu collection
type MenuStore struct {
	Collection *mongo.Collection
}

func NewMenuStore(db *mongo.Database) *MenuStore {
	return &MenuStore{Collection: db.Collection(MenuCollection)}
}

func (s *MenuStore) List(ctx context.Context) ([]models.MenuItem, error) {
	return findAll[models.MenuItem](ctx, s.Collection, bson.M{})
}

func (s *MenuStore) Insert(ctx context.Context, item models.MenuItem) (*InsertResult, error) {
	result, err := s.Collection.InsertOne(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("insert menu item: %w", err)
	}
	return insertResult(result), nil
}

func (s *MenuStore) Delete(ctx context.Context, id primitive.ObjectID) (*DeleteResult, error) {
	result, err := s.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("delete menu item: %w", err)
	}
	return deleteResult(result), nil
}

// ReviewStore handles the read-only reviews collection
type ReviewStore struct {
	Collection *mongo.Collection
}

func NewReviewStore(db *mongo.Database) *ReviewStore {
	return &ReviewStore{Collection: db.Collection(ReviewsCollection)}
}

func (s *ReviewStore) List(ctx context.Context) ([]models.Review, error) {
	return findAll[models.Review](ctx, s.Collection, bson.M{})
}
