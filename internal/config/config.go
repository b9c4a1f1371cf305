package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const devJWTSecret = "dev-secret-change-in-production"

var ErrProductionSecret = errors.New("JWT_SECRET must be set in production environment")

type Config struct {
	Port     string
	Env      string
	LogLevel string

	DBDriver    string
	DatabaseDSN string

	JWTSecret string
	JWTExpiry time.Duration

	RedisURL     string
	UserCacheTTL time.Duration

	SendGridAPIKey string
	MailFrom       string

	AuthRateLimitRPS   float64
	AuthRateLimitBurst int
}

// Load reads the configuration from the environment, applying defaults for
// everything that is unset.
func Load() (Config, error) {
	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DBDriver:       getEnv("DB_DRIVER", "mysql"),
		DatabaseDSN:    getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/todo?parseTime=true"),
		JWTSecret:      getEnv("JWT_SECRET", devJWTSecret),
		RedisURL:       os.Getenv("REDIS_URL"),
		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       getEnv("MAIL_FROM", "noreply@todo.local"),
	}

	minutes, err := getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	if err != nil {
		return Config{}, err
	}
	if minutes < 1 {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", minutes)
	}
	cfg.JWTExpiry = time.Duration(minutes) * time.Minute

	if cfg.UserCacheTTL, err = getEnvDuration("USER_CACHE_TTL", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.AuthRateLimitRPS, err = getEnvFloat("AUTH_RATE_LIMIT_RPS", 5); err != nil {
		return Config{}, err
	}
	if cfg.AuthRateLimitBurst, err = getEnvInt("AUTH_RATE_LIMIT_BURST", 10); err != nil {
		return Config{}, err
	}

	switch cfg.DBDriver {
	case "mysql", "postgres", "memory":
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.Env == "production" && cfg.JWTSecret == devJWTSecret {
		return Config{}, ErrProductionSecret
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}
