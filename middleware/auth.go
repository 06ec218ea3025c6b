package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"sauvage-server/models"
	"sauvage-server/utils"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// TokenVerifier decodes bearer credentials
type TokenVerifier interface {
	Verify(token string) (*utils.Identity, error)
}

// RoleLookup finds the stored user behind a verified identity
type RoleLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// IdentityFromContext returns the identity attached by AuthMiddleware
func IdentityFromContext(ctx context.Context) (*utils.Identity, bool) {
	identity, ok := ctx.Value(UserContextKey).(*utils.Identity)
	return identity, ok && identity != nil
}

// WithIdentity attaches identity to ctx
func WithIdentity(ctx context.Context, identity *utils.Identity) context.Context {
	return context.WithValue(ctx, UserContextKey, identity)
}

// AuthMiddleware verifies the bearer token and attaches the identity to the context
func AuthMiddleware(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.WriteError(w, http.StatusUnauthorized, "unauthorized access")
				return
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				utils.WriteError(w, http.StatusUnauthorized, "unauthorized access")
				return
			}

			identity, err := tokens.Verify(parts[1])
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, "unauthorized access")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// AdminMiddleware ensures the stored user behind the identity has the admin role.
// It must run after AuthMiddleware.
func AdminMiddleware(users RoleLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				utils.WriteError(w, http.StatusUnauthorized, "unauthorized access")
				return
			}

			user, err := users.FindByEmail(r.Context(), identity.Email)
			if err != nil {
				slog.Error("admin lookup failed", "email", identity.Email, "error", err)
				utils.WriteError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if !user.IsAdmin() {
				utils.WriteError(w, http.StatusForbidden, "forbidden message")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
