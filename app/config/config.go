package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all application configuration
type AppConfig struct {
	Database DatabaseConfig
	Business BusinessConfig
	System   SystemConfig
}

// DatabaseConfig holds database connection settings.
// Driver is "sqlite" (default, local file) or "postgres".
type DatabaseConfig struct {
	Driver   string
	Path     string // SQLite file path
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
}

// BusinessConfig holds store information passed into receipts and the
// financial calculator. The core packages never read these themselves;
// they receive plain values.
type BusinessConfig struct {
	ShopName       string
	TaxRate        float64 // Percent, e.g. 14.0
	CurrencySymbol string
}

// SystemConfig holds system settings
type SystemConfig struct {
	DataPath       string
	SessionTimeout time.Duration
	SeedAdmin      bool
}

// Load reads configuration from a .env file (if present) and the
// environment, applying development defaults for anything unset.
func Load() (*AppConfig, error) {
	// Missing .env is fine, the environment still applies
	_ = godotenv.Load()

	dataPath := getEnv("DATA_PATH", "./data")
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("could not create data directory: %w", err)
	}

	cfg := &AppConfig{
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite"),
			Path:     getEnv("DB_PATH", filepath.Join(dataPath, "phonestore.db")),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			Database: getEnv("DB_NAME", "phonestore"),
			Username: getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Business: BusinessConfig{
			ShopName:       getEnv("SHOP_NAME", "Phone Store"),
			TaxRate:        getEnvFloat("TAX_RATE", 14.0),
			CurrencySymbol: getEnv("CURRENCY_SYMBOL", "$"),
		},
		System: SystemConfig{
			DataPath:       dataPath,
			SessionTimeout: time.Duration(getEnvInt("SESSION_TIMEOUT_MINUTES", 30)) * time.Minute,
			SeedAdmin:      getEnvBool("SEED_ADMIN", true),
		},
	}

	if cfg.Business.TaxRate < 0 || cfg.Business.TaxRate > 100 {
		return nil, fmt.Errorf("TAX_RATE must be between 0 and 100, got %v", cfg.Business.TaxRate)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
