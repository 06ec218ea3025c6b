package routes

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"sauvage-server/controllers"
	"sauvage-server/middleware"
)

// Controllers groups every handler set the router serves
type Controllers struct {
	Auth    *controllers.AuthController
	Users   *controllers.UserController
	Menu    *controllers.MenuController
	Carts   *controllers.CartController
	Payment *controllers.PaymentController
	Admin   *controllers.AdminController
	Health  *controllers.HealthController
}

// Stores is every collection the handlers use, whether Mongo-backed or not
type Stores struct {
	Users    controllers.UserStore
	Menu     controllers.MenuStore
	Reviews  controllers.ReviewStore
	Carts    controllers.CartStore
	Payments controllers.PaymentStore
	Stats    controllers.StatsStore
	Pinger   controllers.Pinger
}

// Services are the non-store collaborators of the handlers
type Services struct {
	Tokens   controllers.TokenIssuer
	Gateway  controllers.PaymentGateway
	Receipts controllers.ReceiptSender
	Currency string
	Timeout  time.Duration
}

// NewControllers builds every controller over the given stores
func NewControllers(s Stores, svc Services) Controllers {
	return Controllers{
		Auth:    controllers.NewAuthController(svc.Tokens),
		Users:   controllers.NewUserController(s.Users, svc.Timeout),
		Menu:    controllers.NewMenuController(s.Menu, s.Reviews, svc.Timeout),
		Carts:   controllers.NewCartController(s.Carts, svc.Timeout),
		Payment: controllers.NewPaymentController(svc.Gateway, s.Payments, svc.Receipts, svc.Currency, svc.Timeout),
		Admin:   controllers.NewAdminController(s.Stats, svc.Timeout),
		Health:  controllers.NewHealthController(s.Pinger),
	}
}

// Options changes which routes are gated
type Options struct {
	// OpenRoutes serves cart insert/delete and role promotion without token checks
	OpenRoutes bool
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers, tokens middleware.TokenVerifier, roles middleware.RoleLookup, opts Options) {
	auth := middleware.AuthMiddleware(tokens)
	admin := func(h http.HandlerFunc) http.Handler {
		return auth(middleware.AdminMiddleware(roles)(h))
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}
	// Routes that OpenRoutes serves without any token check
	gated := admin
	owned := authed
	if opts.OpenRoutes {
		gated = func(h http.HandlerFunc) http.Handler { return h }
		owned = gated
	}

	// Public routes
	router.HandleFunc("/", c.Health.Root).Methods("GET")
	router.HandleFunc("/health", c.Health.Health).Methods("GET")
	router.HandleFunc("/jwt", c.Auth.IssueToken).Methods("POST")
	router.HandleFunc("/users", c.Users.CreateUser).Methods("POST")
	router.HandleFunc("/menu", c.Menu.ListMenu).Methods("GET")
	router.HandleFunc("/reviews", c.Menu.ListReviews).Methods("GET")

	// User routes
	router.Handle("/users", admin(c.Users.ListUsers)).Methods("GET")
	router.Handle("/users/admin/{email}", authed(c.Users.IsAdmin)).Methods("GET")
	router.Handle("/users/admin/{id}", gated(c.Users.PromoteUser)).Methods("PATCH")

	// Menu admin routes
	router.Handle("/menu", admin(c.Menu.CreateMenuItem)).Methods("POST")
	router.Handle("/menu/{id}", admin(c.Menu.DeleteMenuItem)).Methods("DELETE")

	// Cart routes
	router.Handle("/carts", authed(c.Carts.GetCart)).Methods("GET")
	router.Handle("/carts", owned(c.Carts.AddToCart)).Methods("POST")
	router.Handle("/carts/{id}", owned(c.Carts.RemoveFromCart)).Methods("DELETE")

	// Payment routes
	router.Handle("/create-payment-intent", authed(c.Payment.CreatePaymentIntent)).Methods("POST")
	router.Handle("/payments", authed(c.Payment.RecordPayment)).Methods("POST")
	router.Handle("/payments", authed(c.Payment.ListPayments)).Methods("GET")

	// Analytics routes
	router.Handle("/admin-states", admin(c.Admin.AdminStates)).Methods("GET")
	router.Handle("/order-stats", admin(c.Admin.OrderStats)).Methods("GET")
}
