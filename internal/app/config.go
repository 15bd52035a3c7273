package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/plshark/userauth/pkg/throttle"
)

// DefaultTokenExpiration applies to both access and refresh tokens unless a
// per-user override is stored.
const DefaultTokenExpiration = 15 * time.Minute

type Config struct {
	Issuer string // Required: issuer claim for tokens

	Algorithm       string        // Optional: JWT signing algorithm (none, hmac256, hmac512, ecdsa256) (default: none)
	Secret          string        // Optional: shared secret for HMAC algorithms
	KeyFile         string        // Optional: path to PKCS8 PEM private key for ecdsa256
	KeyPassword     string        // Optional: password when the key file is encrypted
	TokenExpiration time.Duration // Optional: token lifetime (default: 15m)

	DatabaseFile string // Optional: path to SQLite database file (default: ./userauth.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	BootstrapUsername string // Optional: admin account created when the directory is empty
	BootstrapPassword string // Optional: password for the bootstrap admin

	ThrottleMaxAttempts int           // Optional: failed logins before blocking (default: 10)
	ThrottleWindow      time.Duration // Optional: failed login counter window (default: 8h)
	RateLimitMaxReqs    int           // Optional: requests per IP per window (default: 100)
	RateLimitWindow     time.Duration // Optional: request counter window (default: 60s)
	DirectoryTimeout    time.Duration // Optional: user lookup deadline (default: 5s)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	// A .env file is a convenience for local development; absence is fine.
	_ = godotenv.Load()

	cfg := Config{
		Issuer:          os.Getenv("AUTH_ISSUER"),
		Algorithm:       getEnvOrDefault("AUTH_ALGORITHM", "none"),
		Secret:          os.Getenv("AUTH_SECRET"),
		KeyFile:         os.Getenv("AUTH_KEY_FILE"),
		KeyPassword:     os.Getenv("AUTH_KEY_PASSWORD"),
		TokenExpiration: getEnvDurationOrDefault("AUTH_TOKEN_EXPIRATION", DefaultTokenExpiration),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "userauth.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		BootstrapUsername: os.Getenv("BOOTSTRAP_USERNAME"),
		BootstrapPassword: os.Getenv("BOOTSTRAP_PASSWORD"),

		ThrottleMaxAttempts: getEnvIntOrDefault("THROTTLE_MAX_ATTEMPTS", throttle.DefaultMaxLoginAttempts),
		ThrottleWindow:      getEnvDurationOrDefault("THROTTLE_WINDOW", throttle.DefaultLoginWindow),
		RateLimitMaxReqs:    getEnvIntOrDefault("RATELIMIT_MAX_REQUESTS", throttle.DefaultMaxRequests),
		RateLimitWindow:     getEnvDurationOrDefault("RATELIMIT_WINDOW", throttle.DefaultRequestWindow),
		DirectoryTimeout:    getEnvDurationOrDefault("DIRECTORY_TIMEOUT", 5*time.Second),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.Issuer == "" {
		cfg.Issuer = "userauth"
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Duration strings first ("8h", "90s"), then bare integers as millis for
	// configs that carried lifetimes in milliseconds.
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	if millis, err := strconv.Atoi(value); err == nil {
		return time.Duration(millis) * time.Millisecond
	}

	return defaultValue
}
