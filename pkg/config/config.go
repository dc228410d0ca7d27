package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string
	LogLevel       string

	// StoreDriver selects the record store backend: "postgres" or "memory".
	StoreDriver string

	// Supabase/hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often PgBouncer/pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	// Timezone is the organization's local zone. "Today" and booking date+time are evaluated in it.
	Timezone string

	Supabase SupabaseConfig

	AMQP AMQPConfig

	// AllowedOrigins is a comma-separated allowlist of browser origins. Example:
	//   https://fleet.example.edu,http://localhost:5173
	AllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type SupabaseConfig struct {
	URL string

	// JWTSecret verifies access tokens issued by Supabase Auth (HS256).
	JWTSecret string

	// Audience expected in access tokens. Supabase uses "authenticated".
	Audience string
}

type AMQPConfig struct {
	// URL of the AMQP 1.0 broker (RabbitMQ with the AMQP 1.0 plugin). Empty disables publishing.
	URL string

	BookingAddress string
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	// Cloud Run sets PORT. Prefer it when HTTP_ADDR isn't explicitly set.
	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		LogLevel:       env("LOG_LEVEL", "info"),
		StoreDriver:    strings.ToLower(env("STORE_DRIVER", "postgres")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "fleet"),
			User:     env("DB_USER", "fleet"),
			Password: env("DB_PASSWORD", "fleet"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		Timezone: env("APP_TIMEZONE", "UTC"),
		Supabase: SupabaseConfig{
			URL:       os.Getenv("SUPABASE_URL"),
			JWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),
			Audience:  env("SUPABASE_JWT_AUDIENCE", "authenticated"),
		},
		AMQP: AMQPConfig{
			URL:            os.Getenv("AMQP_URL"),
			BookingAddress: env("AMQP_BOOKING_ADDRESS", "/queues/bookings"),
		},
		AllowedOrigins: envList("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:4173"),
	}
}

// Location resolves Timezone, falling back to UTC when the zone is unknown.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) IsProd() bool {
	return c.AppEnv == "prod"
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
