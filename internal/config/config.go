package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName         = "PayPortal"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultShutdownDelay   = 10 * time.Second
	defaultBankAPITimeout  = 15 * time.Second
	defaultTxCacheTTL      = 5 * time.Minute
	defaultIdempotencyTTL  = 24 * time.Hour
	bankTimeoutSecsEnvVar  = "BANK_API_TIMEOUT_SECONDS"
	bankTimeoutDurEnvVar   = "BANK_API_TIMEOUT"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
	txCacheTTLEnvVar       = "TRANSACTION_CACHE_TTL"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
)

// Config captures portal runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	BankAPIURL     string
	BankAPITimeout time.Duration
	RedisURL       string
	DatabaseURL    string
	TxCacheTTL     time.Duration
	IdempotencyTTL time.Duration
	ShutdownPeriod time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
// REDIS_URL and DATABASE_URL are optional: without them the session slot and the audit
// trail fall back to in-memory backends.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		BankAPIURL:     os.Getenv("BANK_API_URL"),
		BankAPITimeout: defaultBankAPITimeout,
		RedisURL:       os.Getenv("REDIS_URL"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		TxCacheTTL:     defaultTxCacheTTL,
		IdempotencyTTL: defaultIdempotencyTTL,
		ShutdownPeriod: defaultShutdownDelay,
	}

	if v := os.Getenv(bankTimeoutSecsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", bankTimeoutSecsEnvVar, err)
		}
		cfg.BankAPITimeout = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(bankTimeoutDurEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", bankTimeoutDurEnvVar, err)
		}
		cfg.BankAPITimeout = d
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv(txCacheTTLEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", txCacheTTLEnvVar, err)
		}
		cfg.TxCacheTTL = d
	}

	if v := os.Getenv(idemTTLDurEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLDurEnvVar, err)
		}
		cfg.IdempotencyTTL = d
	}

	if cfg.BankAPIURL == "" {
		return Config{}, fmt.Errorf("BANK_API_URL must be set")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
