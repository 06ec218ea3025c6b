package controllers

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"sauvage-server/middleware"
	"sauvage-server/models"
	"sauvage-server/store"
	"sauvage-server/utils"
)

type CartStore interface {
	ListByEmail(ctx context.Context, email string) ([]models.CartItem, error)
	Insert(ctx context.Context, item models.CartItem) (*store.InsertResult, error)
	Delete(ctx context.Context, id primitive.ObjectID, email string) (*store.DeleteResult, error)
}

// CartController handles cart-related requests. Reads always run behind
// AuthMiddleware; writes may be served open, without an identity.
type CartController struct {
	Carts   CartStore
	Timeout time.Duration
}

func NewCartController(carts CartStore, timeout time.Duration) *CartController {
	return &CartController{Carts: carts, Timeout: timeout}
}

// GetCart lists the cart items of ?email=, which must be the caller's own email
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		utils.WriteJSON(w, http.StatusOK, []models.CartItem{})
		return
	}

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok || identity.Email != email {
		utils.WriteError(w, http.StatusForbidden, "Forbidden access")
		return
	}

	ctx, cancel := requestContext(r, cc.Timeout)
	defer cancel()

	items, err := cc.Carts.ListByEmail(ctx, email)
	if err != nil {
		serverError(w, r, "list cart", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, items)
}

// AddToCart stores one cart item owned by the caller. Without an identity
// the item keeps the email it was sent with.
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	var item models.CartItem
	if !decodeBody(w, r, &item) {
		return
	}
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		if item.Email == "" {
			item.Email = identity.Email
		}
		if item.Email != identity.Email {
			utils.WriteError(w, http.StatusForbidden, "Forbidden access")
			return
		}
	}
	item.ID = primitive.NilObjectID

	ctx, cancel := requestContext(r, cc.Timeout)
	defer cancel()

	result, err := cc.Carts.Insert(ctx, item)
	if err != nil {
		serverError(w, r, "insert cart item", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// RemoveFromCart deletes one of the caller's cart items; other owners' ids
// match nothing. Without an identity any owner's item matches.
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	var owner string
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		owner = identity.Email
	}

	id, ok := objectIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r, cc.Timeout)
	defer cancel()

	result, err := cc.Carts.Delete(ctx, id, owner)
	if err != nil {
		serverError(w, r, "delete cart item", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}
