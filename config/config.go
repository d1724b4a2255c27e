package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is loaded once in main and passed explicitly into constructors.
// Handlers never read the environment themselves.
type Config struct {
	HTTPAddr string

	Database Database
	Redis    Redis
	Kafka    Kafka
	Gateway  Gateway
	Admin    Admin
	SMTP     SMTP

	// FrontendBaseURL is where provider callbacks redirect the browser
	// back to (the storefront UI).
	FrontendBaseURL string
	// PublicBaseURL is this service's externally reachable base URL,
	// used to build the success/fail/cancel callback URLs.
	PublicBaseURL string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Kafka struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Gateway holds the payment provider settings. Mode selects the provider
// endpoint; when empty the adapter falls back to inferring it from the
// store id and logs a warning (see gateway.New).
type Gateway struct {
	StoreID       string
	StorePassword string
	// Mode is "sandbox" or "live". Optional when InitURL is set.
	Mode string
	// InitURL overrides endpoint resolution entirely when set.
	InitURL string
	// ValidationURL overrides the validator endpoint when set.
	ValidationURL string
	Currency      string
	Timeout       time.Duration
	// ValidateCallbacks re-checks val_id with the provider before a
	// success callback is trusted.
	ValidateCallbacks bool
}

type Admin struct {
	Email string
	// PasswordHash is a bcrypt hash of the admin password.
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
}

type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Load reads configuration from the environment with local-dev defaults.
// A GATEWAY_MODE other than "sandbox", "live" or empty is rejected here
// rather than silently degrading to the store-id heuristic.
func Load() (Config, error) {
	switch mode := os.Getenv("GATEWAY_MODE"); mode {
	case "", "sandbox", "live":
	default:
		return Config{}, fmt.Errorf("unknown GATEWAY_MODE %q (want sandbox or live)", mode)
	}

	return Config{
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),
		Database: Database{
			Host:     getenv("DB_HOST", "localhost"),
			Port:     getenv("DB_PORT", "5432"),
			User:     getenv("DB_USER", "postgres"),
			Password: getenv("DB_PASSWORD", "postgres"),
			Name:     getenv("DB_NAME", "academy"),
			SSLMode:  getenv("DB_SSLMODE", "disable"),
		},
		Redis: Redis{
			Addr:     getenv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Kafka: Kafka{
			Brokers: []string{getenv("KAFKA_BROKER", "localhost:9092")},
			Topic:   getenv("KAFKA_TOPIC", "order.events"),
			GroupID: getenv("KAFKA_GROUP_ID", "academy-notifier"),
		},
		Gateway: Gateway{
			StoreID:           os.Getenv("GATEWAY_STORE_ID"),
			StorePassword:     os.Getenv("GATEWAY_STORE_PASSWORD"),
			Mode:              os.Getenv("GATEWAY_MODE"),
			InitURL:           os.Getenv("GATEWAY_INIT_URL"),
			ValidationURL:     os.Getenv("GATEWAY_VALIDATION_URL"),
			Currency:          getenv("GATEWAY_CURRENCY", "BDT"),
			Timeout:           getenvDuration("GATEWAY_TIMEOUT", 10*time.Second),
			ValidateCallbacks: getenvBool("GATEWAY_VALIDATE", false),
		},
		Admin: Admin{
			Email:        getenv("ADMIN_EMAIL", "admin@localhost"),
			PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
			JWTSecret:    getenv("JWT_SECRET", "dev-secret"),
			TokenTTL:     getenvDuration("JWT_TTL", 24*time.Hour),
		},
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getenv("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getenv("SMTP_FROM", "no-reply@localhost"),
		},
		FrontendBaseURL: getenv("FRONTEND_BASE_URL", "http://localhost:3000"),
		PublicBaseURL:   getenv("PUBLIC_BASE_URL", "http://localhost:8080"),
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
