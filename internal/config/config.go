package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Dispatch DispatchConfig
	Cache    CacheConfig
	Log      LogConfig
	Features FeatureFlags
}

type ServerConfig struct {
	Port string
	Env  string
	Host string
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Driver string // "memory" or "postgres"
	Seed   bool   // load the demo dataset on boot
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

type RedisConfig struct {
	Host        string
	Port        string
	Password    string
	DB          int
	MaxRetries  int
	PoolSize    int
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

type NewRelicConfig struct {
	LicenseKey string
	AppName    string
	Enabled    bool
}

type DispatchConfig struct {
	RadiusMiles float64
}

type CacheConfig struct {
	TTLIdempotency time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type FeatureFlags struct {
	EnableAutoAssign      bool
	StrictLifecycle       bool
	EnableRealTimeUpdates bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", "memory"),
			Seed:   getEnvAsBool("STORE_SEED", true),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "roadrescue"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MaxIdle:  getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 5),
		},
		Redis: RedisConfig{
			Host:        getEnv("REDIS_HOST", "localhost"),
			Port:        getEnv("REDIS_PORT", "6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvAsInt("REDIS_DB", 0),
			MaxRetries:  getEnvAsInt("REDIS_MAX_RETRIES", 3),
			PoolSize:    getEnvAsInt("REDIS_POOL_SIZE", 50),
			DialTimeout: 5 * time.Second,
			ReadTimeout: 3 * time.Second,
		},
		NewRelic: NewRelicConfig{
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			AppName:    getEnv("NEW_RELIC_APP_NAME", "RoadRescue-Dispatch"),
			Enabled:    getEnvAsBool("NEW_RELIC_ENABLED", false),
		},
		Dispatch: DispatchConfig{
			RadiusMiles: getEnvAsFloat64("DISPATCH_RADIUS_MILES", 10.0),
		},
		Cache: CacheConfig{
			TTLIdempotency: time.Duration(getEnvAsInt("CACHE_TTL_IDEMPOTENCY_SECONDS", 86400)) * time.Second,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Features: FeatureFlags{
			EnableAutoAssign:      getEnvAsBool("ENABLE_AUTO_ASSIGN", true),
			StrictLifecycle:       getEnvAsBool("STRICT_LIFECYCLE", false),
			EnableRealTimeUpdates: getEnvAsBool("ENABLE_REAL_TIME_UPDATES", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}
	if c.Store.Driver != "memory" && c.Store.Driver != "postgres" {
		return fmt.Errorf("STORE_DRIVER must be memory or postgres, got %q", c.Store.Driver)
	}
	if c.Store.Driver == "postgres" {
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	}
	if c.Dispatch.RadiusMiles <= 0 {
		return fmt.Errorf("DISPATCH_RADIUS_MILES must be positive")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
