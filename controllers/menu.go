package controllers

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"sauvage-server/models"
	"sauvage-server/store"
	"sauvage-server/utils"
)

type MenuStore interface {
	List(ctx context.Context) ([]models.MenuItem, error)
	Insert(ctx context.Context, item models.MenuItem) (*store.InsertResult, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*store.DeleteResult, error)
}

type ReviewStore interface {
	List(ctx context.Context) ([]models.Review, error)
}

// MenuController serves the menu and the reviews shown next to it
type MenuController struct {
	Menu    MenuStore
	Reviews ReviewStore
	Timeout time.Duration
}

func NewMenuController(menu MenuStore, reviews ReviewStore, timeout time.Duration) *MenuController {
	return &MenuController{Menu: menu, Reviews: reviews, Timeout: timeout}
}

func (mc *MenuController) ListMenu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r, mc.Timeout)
	defer cancel()

	items, err := mc.Menu.List(ctx)
	if err != nil {
		serverError(w, r, "list menu", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, items)
}

// CreateMenuItem handles adding a dish (Admin only)
func (mc *MenuController) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var item models.MenuItem
	if !decodeBody(w, r, &item) {
		return
	}
	item.ID = primitive.NilObjectID

	ctx, cancel := requestContext(r, mc.Timeout)
	defer cancel()

	result, err := mc.Menu.Insert(ctx, item)
	if err != nil {
		serverError(w, r, "insert menu item", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// DeleteMenuItem handles removing a dish (Admin only)
func (mc *MenuController) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r, mc.Timeout)
	defer cancel()

	result, err := mc.Menu.Delete(ctx, id)
	if err != nil {
		serverError(w, r, "delete menu item", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (mc *MenuController) ListReviews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r, mc.Timeout)
	defer cancel()

	reviews, err := mc.Reviews.List(ctx)
	if err != nil {
		serverError(w, r, "list reviews", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, reviews)
}
