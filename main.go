package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"

	"sauvage-server/config"
	"sauvage-server/controllers"
	"sauvage-server/middleware"
	"sauvage-server/routes"
	"sauvage-server/store"
	"sauvage-server/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := utils.NewLogger(cfg.LogLevel)
	slog.SetDefault(log)

	// Connect to MongoDB. A store that never comes up leaves store-backed
	// routes failing while the rest of the server keeps serving.
	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	stores, db := openStores(startCtx, log, cfg)
	cancelStart()

	if db != nil {
		defer func() {
			if err := db.Disconnect(context.Background()); err != nil {
				log.Error("failed to disconnect mongo", "error", err)
			}
		}()
	}

	tokens := utils.NewTokenSigner(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	gateway := utils.NewStripeGateway(cfg.Payment.SecretKey)

	var receipts controllers.ReceiptSender
	if emailService := utils.NewEmailService(cfg.Mail.APIToken, cfg.Mail.Sender); emailService != nil {
		receipts = emailService
	}

	c := routes.NewControllers(stores, routes.Services{
		Tokens:   tokens,
		Gateway:  gateway,
		Receipts: receipts,
		Currency: cfg.Payment.Currency,
		Timeout:  cfg.Server.RequestTimeout,
	})

	router := mux.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Logger(log))
	router.Use(chimiddleware.Recoverer)
	if cfg.Auth.OpenRoutes {
		log.Warn("OPEN_ROUTES is set, cart writes and role promotion skip token checks")
	}
	routes.RegisterRoutes(router, c, tokens, stores.Users, routes.Options{OpenRoutes: cfg.Auth.OpenRoutes})

	handler := cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	})(router)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("sauvage is running", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	if err := c.Payment.WaitForReceipts(ctx); err != nil {
		log.Error("receipts still sending at shutdown", "error", err)
	}

	log.Info("server stopped gracefully")
}

// openStores connects to MongoDB. Without a URI or a usable client every
// store operation fails with the cause and db is nil.
func openStores(ctx context.Context, log *slog.Logger, cfg *config.Config) (routes.Stores, *store.Store) {
	err := errors.New("no mongo uri configured")
	if cfg.Mongo.URI != "" {
		var client *mongo.Client
		client, err = store.Connect(ctx, cfg.Mongo.URI)
		if err == nil {
			db := store.New(client, cfg.Mongo.Database, cfg.Mongo.Transactions)
			prepareStore(ctx, log, db, cfg.Auth.AdminEmails)
			return routes.Stores{
				Users:    db.Users,
				Menu:     db.Menu,
				Reviews:  db.Reviews,
				Carts:    db.Carts,
				Payments: db.Payments,
				Stats:    db.Stats,
				Pinger:   db,
			}, db
		}
	}

	log.Error("failed to create mongo client, serving without a store", "error", err)
	off := store.NewOffline(err)
	return routes.Stores{
		Users:    off.Users,
		Menu:     off.Menu,
		Reviews:  off.Reviews,
		Carts:    off.Carts,
		Payments: off.Payments,
		Stats:    off.Stats,
		Pinger:   off,
	}, nil
}

// prepareStore pings, builds indexes and seeds admins. Failures are logged, not fatal.
func prepareStore(ctx context.Context, log *slog.Logger, db *store.Store, adminEmails []string) {
	if err := db.Ping(ctx); err != nil {
		log.Error("mongo is unreachable", "error", err)
		return
	}
	log.Info("pinged your deployment, connected to mongo")

	if err := db.EnsureIndexes(ctx); err != nil {
		log.Error("failed to ensure indexes", "error", err)
	}
	if err := db.Users.SeedAdmins(ctx, adminEmails); err != nil {
		log.Error("failed to seed admins", "error", err)
	}
}
