package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds the whole application configuration, populated from
// environment variables.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Sale     SaleConfig
	Report   ReportConfig
	Worker   WorkerConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Database    string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

// =====================================================
// SALE CONFIGURATION
// =====================================================

type SaleConfig struct {
	TxTimeout         time.Duration
	IdempotencyTTL    time.Duration
	LowStockThreshold int
	// CustomDiscountMinSubtotal is the raw subtotal a cart must reach
	// before a cashier discount can be applied.
	CustomDiscountMinSubtotal decimal.Decimal
}

type ReportConfig struct {
	CacheTTL    time.Duration
	TopProducts int
}

type WorkerConfig struct {
	Concurrency int
	// StockReconcileCron schedules the full stock snapshot refresh.
	StockReconcileCron string
}

// Load reads the config from environment variables
func Load() (*Config, error) {
	minSubtotal, err := decimal.NewFromString(getEnv("SALE_CUSTOM_DISCOUNT_MIN_SUBTOTAL", "10000"))
	if err != nil {
		return nil, fmt.Errorf("invalid SALE_CUSTOM_DISCOUNT_MIN_SUBTOTAL: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "POS API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvInt("DB_PORT", 5432),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", ""),
			Database:    getEnv("DB_NAME", "pos"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 720), // one shift
		},
		Sale: SaleConfig{
			TxTimeout:                 getEnvDuration("SALE_TX_TIMEOUT", 5*time.Second),
			IdempotencyTTL:            getEnvDuration("SALE_IDEMPOTENCY_TTL", 30*time.Second),
			LowStockThreshold:         getEnvInt("SALE_LOW_STOCK_THRESHOLD", 5),
			CustomDiscountMinSubtotal: minSubtotal,
		},
		Report: ReportConfig{
			CacheTTL:    getEnvDuration("REPORT_CACHE_TTL", time.Minute),
			TopProducts: getEnvInt("REPORT_TOP_PRODUCTS", 10),
		},
		Worker: WorkerConfig{
			Concurrency:        getEnvInt("WORKER_CONCURRENCY", 10),
			StockReconcileCron: getEnv("WORKER_STOCK_RECONCILE_CRON", "*/30 * * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the values that would make the service unsafe to start.
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}

	if c.Sale.TxTimeout <= 0 {
		return fmt.Errorf("SALE_TX_TIMEOUT must be positive")
	}
	if c.Sale.CustomDiscountMinSubtotal.IsNegative() {
		return fmt.Errorf("SALE_CUSTOM_DISCOUNT_MIN_SUBTOTAL must not be negative")
	}
	if c.Report.TopProducts <= 0 {
		return fmt.Errorf("REPORT_TOP_PRODUCTS must be positive")
	}
	if c.Worker.Concurrency <= 0 {
		return fmt.Errorf("WORKER_CONCURRENCY must be positive")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
