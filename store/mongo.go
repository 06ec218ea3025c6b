package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names in the restaurant database
const (
	UsersCollection    = "users"
	MenuCollection     = "menu"
	ReviewsCollection  = "reviews"
	CartsCollection    = "carts"
	PaymentsCollection = "payments"
)

// Store bundles the per-collection stores sharing one client
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	Users    *UserStore
	Menu     *MenuStore
	Reviews  *ReviewStore
	Carts    *CartStore
	Payments *PaymentStore
	Stats    *StatsStore
}

// Connect creates a client using the Stable API v1. The driver connects lazily,
// so an unreachable server surfaces on first use or Ping, not here.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	return client, nil
}

// New wires every collection store against the named database
func New(client *mongo.Client, dbName string, transactions bool) *Store {
	db := client.Database(dbName)
	return &Store{
		client:   client,
		db:       db,
		Users:    NewUserStore(db),
		Menu:     NewMenuStore(db),
		Reviews:  NewReviewStore(db),
		Carts:    NewCartStore(db),
		Payments: NewPaymentStore(db, transactions),
		Stats:    NewStatsStore(db),
	}
}

// Ping confirms the deployment is reachable
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}

// EnsureIndexes creates the indexes the handlers rely on
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if err := s.Users.EnsureIndexes(ctx); err != nil {
		return err
	}
	return s.Carts.EnsureIndexes(ctx)
}

// Disconnect closes the underlying client
func (s *Store) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// findAll drains a cursor into a non-nil slice so empty results encode as [].
func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return out, nil
}
