package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"sauvage-server/models"
)

// Offline stands in for a store that never connected. Every operation fails
// with the connection error so store-backed routes answer 500 while the rest
// of the server keeps serving.
type Offline struct {
	Err error

	Users    OfflineUsers
	Menu     OfflineMenu
	Reviews  OfflineReviews
	Carts    OfflineCarts
	Payments OfflinePayments
	Stats    OfflineStats
}

// NewOffline wraps cause as the error every operation returns
func NewOffline(cause error) *Offline {
	err := fmt.Errorf("store unavailable: %w", cause)
	return &Offline{
		Err:      err,
		Users:    OfflineUsers{err},
		Menu:     OfflineMenu{err},
		Reviews:  OfflineReviews{err},
		Carts:    OfflineCarts{err},
		Payments: OfflinePayments{err},
		Stats:    OfflineStats{err},
	}
}

func (o *Offline) Ping(context.Context) error { return o.Err }

type OfflineUsers struct{ err error }

func (u OfflineUsers) List(context.Context) ([]models.User, error) { return nil, u.err }
func (u OfflineUsers) FindByEmail(context.Context, string) (*models.User, error) {
	return nil, u.err
}
func (u OfflineUsers) Register(context.Context, models.User) (*InsertResult, error) {
	return nil, u.err
}
func (u OfflineUsers) Promote(context.Context, primitive.ObjectID) (*UpdateResult, error) {
	return nil, u.err
}

type OfflineMenu struct{ err error }

func (m OfflineMenu) List(context.Context) ([]models.MenuItem, error) { return nil, m.err }
func (m OfflineMenu) Insert(context.Context, models.MenuItem) (*InsertResult, error) {
	return nil, m.err
}
func (m OfflineMenu) Delete(context.Context, primitive.ObjectID) (*DeleteResult, error) {
	return nil, m.err
}

type OfflineReviews struct{ err error }

func (r OfflineReviews) List(context.Context) ([]models.Review, error) { return nil, r.err }

type OfflineCarts struct{ err error }

func (c OfflineCarts) ListByEmail(context.Context, string) ([]models.CartItem, error) {
	return nil, c.err
}
func (c OfflineCarts) Insert(context.Context, models.CartItem) (*InsertResult, error) {
	return nil, c.err
}
func (c OfflineCarts) Delete(context.Context, primitive.ObjectID, string) (*DeleteResult, error) {
	return nil, c.err
}

type OfflinePayments struct{ err error }

func (p OfflinePayments) Record(context.Context, models.Payment) (*CheckoutResult, error) {
	return nil, p.err
}
func (p OfflinePayments) ListByEmail(context.Context, string) ([]models.Payment, error) {
	return nil, p.err
}

type OfflineStats struct{ err error }

func (s OfflineStats) AdminStats(context.Context) (*models.AdminStats, error) { return nil, s.err }
func (s OfflineStats) OrderStats(context.Context) ([]models.CategoryStat, error) {
	return nil, s.err
}
