package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	ShutdownGrace = 10 * time.Second

	// DefaultJWTSecret is only acceptable in the dev environment.
	DefaultJWTSecret = "change-me"
)

var ErrDefaultSecret = errors.New("JWT_SECRET must be set outside the dev environment")

type Config struct {
	ServiceEnv string
	LogLevel   string

	HTTPAddr string
	GRPCAddr string

	DBDriver    string
	DBPath      string
	SeedOnStart bool

	CartID          string
	CartMaxAttempts int

	JWTSecret string
	JWTTTL    time.Duration

	RabbitURL      string
	RabbitExchange string

	ProductCacheSize int
	CORSOrigins      []string
	OtelEndpoint     string
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() Config {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	return Config{
		ServiceEnv: env("SERVICE_ENV", "dev"),
		LogLevel:   env("LOG_LEVEL", "info"),

		HTTPAddr: env("HTTP_ADDR", ":8080"),
		GRPCAddr: env("GRPC_ADDR", ":50060"),

		DBDriver:    env("DB_DRIVER", "sqlite"),
		DBPath:      env("DB_PATH", "./data/shoppyglobe.db"),
		SeedOnStart: envBool("SEED_ON_START", true),

		CartID:          env("CART_ID", "default"),
		CartMaxAttempts: envInt("CART_MAX_ATTEMPTS", 2),

		JWTSecret: env("JWT_SECRET", DefaultJWTSecret),
		JWTTTL:    envDuration("JWT_TTL", time.Hour),

		RabbitURL:      env("RABBIT_URL", ""),
		RabbitExchange: env("RABBIT_EXCHANGE", "shoppyglobe.events"),

		ProductCacheSize: envInt("PRODUCT_CACHE_SIZE", 256),
		CORSOrigins:      envList("CORS_ORIGINS", []string{"*"}),
		OtelEndpoint:     env("OTEL_ENDPOINT", ""),
	}
}

// Validate rejects settings that are only safe for local development.
func (c Config) Validate() error {
	if !strings.EqualFold(c.ServiceEnv, "dev") && c.JWTSecret == DefaultJWTSecret {
		return ErrDefaultSecret
	}
	return nil
}

// Log writes the startup summary. Call it after the logger is configured.
func (c Config) Log() {
	log.Info().
		Str("env", c.ServiceEnv).
		Str("http", c.HTTPAddr).
		Str("grpc", c.GRPCAddr).
		Str("db_driver", c.DBDriver).
		Str("db", c.DBPath).
		Str("cart_id", c.CartID).
		Bool("events", c.RabbitURL != "").
		Bool("tracing", c.OtelEndpoint != "").
		Msg("config loaded")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Msg("invalid integer, using default")
		return def
	}
	return n
}

func envBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Msg("invalid duration, using default")
		return def
	}
	return d
}

func envList(k string, def []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
