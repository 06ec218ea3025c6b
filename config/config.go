package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the server.
// Values come from the environment, optionally seeded from a .env file.
type Config struct {
	Server   ServerConfig
	Mongo    MongoConfig
	Auth     AuthConfig
	Payment  PaymentConfig
	Mail     MailConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	AllowedOrigins  []string
}

type MongoConfig struct {
	URI          string
	Database     string
	Transactions bool
}

type AuthConfig struct {
	TokenSecret string
	TokenTTL    time.Duration
	AdminEmails []string
	// OpenRoutes leaves cart insert/delete and role promotion without token checks
	OpenRoutes bool
}

type PaymentConfig struct {
	SecretKey string
	Currency  string
}

// MailConfig is optional; receipts are disabled when APIToken is empty.
type MailConfig struct {
	APIToken string
	Sender   string
}

// Load reads configuration from a .env file (if any) and the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, proceeding with environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "5000"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
			RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Mongo: MongoConfig{
			URI:          mongoURI(),
			Database:     getEnv("DB_NAME", "sauvageDB"),
			Transactions: getEnvAsBool("MONGO_TRANSACTIONS", true),
		},
		Auth: AuthConfig{
			TokenSecret: os.Getenv("ACCESS_TOKEN_SECRET"),
			TokenTTL:    getEnvAsDuration("TOKEN_TTL", time.Hour),
			AdminEmails: getEnvAsSlice("ADMIN_EMAILS", nil),
			OpenRoutes:  getEnvAsBool("OPEN_ROUTES", false),
		},
		Payment: PaymentConfig{
			SecretKey: os.Getenv("PAYMENT_SECRET_KEY"),
			Currency:  strings.ToLower(getEnv("PAYMENT_CURRENCY", "usd")),
		},
		Mail: MailConfig{
			APIToken: os.Getenv("POSTMARK_API_TOKEN"),
			Sender:   os.Getenv("EMAIL_SENDER"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// the server still answers its store-free routes without a database
	if cfg.Mongo.URI == "" {
		slog.Warn("MONGODB_URI or DB_USER/DB_PASS not set, store-backed routes will fail")
	}

	return cfg, nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Auth.TokenSecret == "" {
		return fmt.Errorf("ACCESS_TOKEN_SECRET is required")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL)
	}

	if c.Mail.APIToken != "" && c.Mail.Sender == "" {
		return fmt.Errorf("EMAIL_SENDER is required when POSTMARK_API_TOKEN is set")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// mongoURI prefers an explicit MONGODB_URI and otherwise assembles an Atlas SRV URI.
func mongoURI() string {
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		return uri
	}
	user, pass := os.Getenv("DB_USER"), os.Getenv("DB_PASS")
	if user == "" || pass == "" {
		return ""
	}
	host := getEnv("DB_HOST", "cluster0.hdichay.mongodb.net")
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority",
		url.QueryEscape(user), url.QueryEscape(pass), host)
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("90s") or bare seconds ("90").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
