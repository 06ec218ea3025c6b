package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sauvage-server/models"
)

// CheckoutResult reports both halves of recording a payment
type CheckoutResult struct {
	InsertResult *InsertResult `json:"insertResult"`
	DeleteResult *DeleteResult `json:"deleteResult"`
}

// PaymentStore handles the payments collection and the cart sweep that follows a payment
type PaymentStore struct {
	Collection   *mongo.Collection
	Carts        *mongo.Collection
	transactions bool
}

func NewPaymentStore(db *mongo.Database, transactions bool) *PaymentStore {
	return &PaymentStore{
		Collection:   db.Collection(PaymentsCollection),
		Carts:        db.Collection(CartsCollection),
		transactions: transactions,
	}
}

// Record stores the payment and deletes the paid cart items of the same owner.
// With transactions enabled both writes commit together. Without them a failed
// sweep leaves the payment recorded and the partial result is returned with the error.
func (s *PaymentStore) Record(ctx context.Context, payment models.Payment) (*CheckoutResult, error) {
	NormalizePayment(&payment)

	if !s.transactions {
		return s.record(ctx, payment)
	}

	session, err := s.Collection.Database().Client().StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return s.record(sc, payment)
	})
	if err != nil {
		return nil, fmt.Errorf("checkout transaction: %w", err)
	}
	return result.(*CheckoutResult), nil
}

func (s *PaymentStore) record(ctx context.Context, payment models.Payment) (*CheckoutResult, error) {
	inserted, err := s.Collection.InsertOne(ctx, payment)
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	result := &CheckoutResult{InsertResult: insertResult(inserted)}
	filter := bson.M{
		"_id":   bson.M{"$in": payment.CartItems},
		"email": payment.Email,
	}
	deleted, err := s.Carts.DeleteMany(ctx, filter)
	if err != nil {
		return result, fmt.Errorf("delete paid cart items: %w", err)
	}
	result.DeleteResult = deleteResult(deleted)
	return result, nil
}

// NormalizePayment fills the defaults a stored payment carries: empty id
// lists, the current time and a pending status.
func NormalizePayment(payment *models.Payment) {
	if payment.CartItems == nil {
		payment.CartItems = []primitive.ObjectID{}
	}
	if payment.MenuItems == nil {
		payment.MenuItems = []primitive.ObjectID{}
	}
	if payment.Date.IsZero() {
		payment.Date = time.Now().UTC()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}
}

// ListByEmail returns the payments made by email, newest first
func (s *PaymentStore) ListByEmail(ctx context.Context, email string) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	return findAll[models.Payment](ctx, s.Collection, bson.M{"email": email}, opts)
}
