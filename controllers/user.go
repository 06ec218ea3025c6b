package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"sauvage-server/middleware"
	"sauvage-server/models"
	"sauvage-server/store"
	"sauvage-server/utils"
)

// UserStore is the users collection as seen by the handlers
type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Register(ctx context.Context, user models.User) (*store.InsertResult, error)
	Promote(ctx context.Context, id primitive.ObjectID) (*store.UpdateResult, error)
}

// UserController handles user-related requests
type UserController struct {
	Users   UserStore
	Timeout time.Duration
}

func NewUserController(users UserStore, timeout time.Duration) *UserController {
	return &UserController{Users: users, Timeout: timeout}
}

// ListUsers returns every user (admin only)
func (uc *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r, uc.Timeout)
	defer cancel()

	users, err := uc.Users.List(ctx)
	if err != nil {
		serverError(w, r, "list users", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, users)
}

// CreateUser stores a newly signed-up user; a known email is answered with a message, not an error
func (uc *UserController) CreateUser(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if !decodeBody(w, r, &user) {
		return
	}
	user.Email = strings.TrimSpace(user.Email)
	if user.Email == "" {
		utils.WriteError(w, http.StatusBadRequest, "email is required")
		return
	}
	// roles are only granted through promotion
	user.ID = primitive.NilObjectID
	user.Role = ""

	ctx, cancel := requestContext(r, uc.Timeout)
	defer cancel()

	result, err := uc.Users.Register(ctx, user)
	if errors.Is(err, store.ErrUserExists) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "user already exists"})
		return
	}
	if err != nil {
		serverError(w, r, "register user", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// IsAdmin tells the caller whether their own account is an admin
func (uc *UserController) IsAdmin(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	email := mux.Vars(r)["email"]

	if identity == nil || identity.Email != email {
		utils.WriteJSON(w, http.StatusOK, map[string]bool{"admin": false})
		return
	}

	ctx, cancel := requestContext(r, uc.Timeout)
	defer cancel()

	user, err := uc.Users.FindByEmail(ctx, email)
	if err != nil {
		serverError(w, r, "find user", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"admin": user.IsAdmin()})
}

// PromoteUser grants the admin role to the user with the given id
func (uc *UserController) PromoteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r, uc.Timeout)
	defer cancel()

	result, err := uc.Users.Promote(ctx, id)
	if err != nil {
		serverError(w, r, "promote user", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}
