// Package memstore keeps every collection in process memory. It mirrors the
// Mongo-backed stores closely enough to drive handler and router tests.
package memstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"sauvage-server/models"
	"sauvage-server/store"
)

type state struct {
	mu       sync.Mutex
	users    []models.User
	menu     []models.MenuItem
	reviews  []models.Review
	carts    []models.CartItem
	payments []models.Payment
}

// DB exposes one store per collection over shared state
type DB struct {
	Users    *Users
	Menu     *Menu
	Reviews  *Reviews
	Carts    *Carts
	Payments *Payments
	Stats    *Stats
}

func New() *DB {
	s := &state{}
	return &DB{
		Users:    &Users{s},
		Menu:     &Menu{s},
		Reviews:  &Reviews{s},
		Carts:    &Carts{s},
		Payments: &Payments{s},
		Stats:    &Stats{s},
	}
}

// Ping always succeeds
func (db *DB) Ping(context.Context) error { return nil }

func inserted(id primitive.ObjectID) *store.InsertResult {
	return &store.InsertResult{Acknowledged: true, InsertedID: id}
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

type Users struct{ s *state }

func (u *Users) List(context.Context) ([]models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	return append([]models.User{}, u.s.users...), nil
}

func (u *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for i := range u.s.users {
		if u.s.users[i].Email == email {
			user := u.s.users[i]
			return &user, nil
		}
	}
	return nil, nil
}

func (u *Users) Register(_ context.Context, user models.User) (*store.InsertResult, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, existing := range u.s.users {
		if existing.Email == user.Email {
			return nil, store.ErrUserExists
		}
	}
	user.ID = primitive.NewObjectID()
	u.s.users = append(u.s.users, user)
	return inserted(user.ID), nil
}

func (u *Users) Promote(_ context.Context, id primitive.ObjectID) (*store.UpdateResult, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	result := &store.UpdateResult{Acknowledged: true}
	for i := range u.s.users {
		if u.s.users[i].ID == id {
			result.MatchedCount = 1
			if u.s.users[i].Role != models.RoleAdmin {
				u.s.users[i].Role = models.RoleAdmin
				result.ModifiedCount = 1
			}
		}
	}
	return result, nil
}

type Menu struct{ s *state }

func (m *Menu) List(context.Context) ([]models.MenuItem, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return append([]models.MenuItem{}, m.s.menu...), nil
}

func (m *Menu) Insert(_ context.Context, item models.MenuItem) (*store.InsertResult, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	item.ID = primitive.NewObjectID()
	m.s.menu = append(m.s.menu, item)
	return inserted(item.ID), nil
}

func (m *Menu) Delete(_ context.Context, id primitive.ObjectID) (*store.DeleteResult, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	result := &store.DeleteResult{Acknowledged: true}
	kept := m.s.menu[:0]
	for _, item := range m.s.menu {
		if item.ID == id && result.DeletedCount == 0 {
			result.DeletedCount = 1
			continue
		}
		kept = append(kept, item)
	}
	m.s.menu = kept
	return result, nil
}

type Reviews struct{ s *state }

func (r *Reviews) List(context.Context) ([]models.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]models.Review{}, r.s.reviews...), nil
}

// Add seeds a review; the API has no review writes
func (r *Reviews) Add(review models.Review) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	review.ID = primitive.NewObjectID()
	r.s.reviews = append(r.s.reviews, review)
}

type Carts struct{ s *state }

func (c *Carts) ListByEmail(_ context.Context, email string) ([]models.CartItem, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	out := []models.CartItem{}
	for _, item := range c.s.carts {
		if item.Email == email {
			out = append(out, item)
		}
	}
	return out, nil
}

func (c *Carts) Insert(_ context.Context, item models.CartItem) (*store.InsertResult, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	item.ID = primitive.NewObjectID()
	c.s.carts = append(c.s.carts, item)
	return inserted(item.ID), nil
}

func (c *Carts) Delete(_ context.Context, id primitive.ObjectID, email string) (*store.DeleteResult, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.deleteCarts([]primitive.ObjectID{id}, email), nil
}

// deleteCarts must be called with mu held. An empty email matches any owner.
func (s *state) deleteCarts(ids []primitive.ObjectID, email string) *store.DeleteResult {
	result := &store.DeleteResult{Acknowledged: true}
	kept := s.carts[:0]
	for _, item := range s.carts {
		if (email == "" || item.Email == email) && containsID(ids, item.ID) {
			result.DeletedCount++
			continue
		}
		kept = append(kept, item)
	}
	s.carts = kept
	return result
}

type Payments struct{ s *state }

// Record inserts the payment and sweeps the paid carts under one lock
func (p *Payments) Record(_ context.Context, payment models.Payment) (*store.CheckoutResult, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	payment.ID = primitive.NewObjectID()
	store.NormalizePayment(&payment)
	p.s.payments = append(p.s.payments, payment)
	return &store.CheckoutResult{
		InsertResult: inserted(payment.ID),
		DeleteResult: p.s.deleteCarts(payment.CartItems, payment.Email),
	}, nil
}

func (p *Payments) ListByEmail(_ context.Context, email string) ([]models.Payment, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	out := []models.Payment{}
	for _, payment := range p.s.payments {
		if payment.Email == email {
			out = append(out, payment)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

type Stats struct{ s *state }

func (st *Stats) AdminStats(context.Context) (*models.AdminStats, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	stats := &models.AdminStats{
		Users:    int64(len(st.s.users)),
		Products: int64(len(st.s.menu)),
		Orders:   int64(len(st.s.payments)),
	}
	for _, payment := range st.s.payments {
		stats.Revenue += payment.Price
	}
	return stats, nil
}

// OrderStats groups every referenced menu item by category, in first-seen order
func (st *Stats) OrderStats(context.Context) ([]models.CategoryStat, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	menu := make(map[primitive.ObjectID]models.MenuItem, len(st.s.menu))
	for _, item := range st.s.menu {
		menu[item.ID] = item
	}

	index := map[string]int{}
	stats := []models.CategoryStat{}
	for _, payment := range st.s.payments {
		// $lookup matches each referenced document once per payment
		joined := map[primitive.ObjectID]bool{}
		for _, id := range payment.MenuItems {
			item, ok := menu[id]
			if !ok || joined[id] {
				continue
			}
			joined[id] = true
			i, seen := index[item.Category]
			if !seen {
				i = len(stats)
				index[item.Category] = i
				stats = append(stats, models.CategoryStat{Category: item.Category})
			}
			stats[i].Count++
			stats[i].Total += item.Price
		}
	}
	for i := range stats {
		stats[i].Total = math.Round(stats[i].Total*100) / 100
	}
	return stats, nil
}
