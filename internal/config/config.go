package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// Config holds the settings shared by the composer and catalog services
type Config struct {
	Port        string
	CatalogPort string
	LogLevel    string

	Catalog    CatalogConfig
	Pricing    PricingConfig
	Navigation NavigationConfig

	CORSAllowedOrigins []string
}

// CatalogConfig configures the catalog client and the catalog store
type CatalogConfig struct {
	ServiceURL   string
	Timeout      time.Duration
	BulkheadSize int
	DatabaseURL  string // empty selects the in-memory store
}

// PricingConfig selects how amounts are displayed
type PricingConfig struct {
	Currency string
	Locale   string
}

// NavigationConfig selects where navigation signals go
type NavigationConfig struct {
	AMQPURL  string // empty selects the log host
	Exchange string
}

// Load reads configuration from the environment, after loading an optional .env file
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Failed to read .env file")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		CatalogPort: getEnv("CATALOG_PORT", "8081"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Catalog: CatalogConfig{
			ServiceURL:   getEnv("CATALOG_SERVICE_URL", "http://localhost:8081"),
			Timeout:      getEnvAsDuration("CATALOG_TIMEOUT", 3*time.Second),
			BulkheadSize: getEnvAsInt("CATALOG_BULKHEAD_SIZE", 10),
			DatabaseURL:  getEnv("CATALOG_DATABASE_URL", ""),
		},
		Pricing: PricingConfig{
			Currency: getEnv("CURRENCY", "BRL"),
			Locale:   getEnv("LOCALE", "pt-BR"),
		},
		Navigation: NavigationConfig{
			AMQPURL:  getEnv("AMQP_URL", ""),
			Exchange: getEnv("NAVIGATION_EXCHANGE", "navigation"),
		},
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.CatalogPort == "" {
		return fmt.Errorf("CATALOG_PORT is required")
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	u, err := url.Parse(c.Catalog.ServiceURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid CATALOG_SERVICE_URL: %q", c.Catalog.ServiceURL)
	}
	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("CATALOG_TIMEOUT must be positive")
	}
	if c.Catalog.BulkheadSize <= 0 {
		return fmt.Errorf("CATALOG_BULKHEAD_SIZE must be positive")
	}

	if _, err := currency.ParseISO(c.Pricing.Currency); err != nil {
		return fmt.Errorf("invalid CURRENCY %q: %w", c.Pricing.Currency, err)
	}
	if _, err := language.Parse(c.Pricing.Locale); err != nil {
		return fmt.Errorf("invalid LOCALE %q: %w", c.Pricing.Locale, err)
	}

	if c.Navigation.AMQPURL != "" && c.Navigation.Exchange == "" {
		return fmt.Errorf("NAVIGATION_EXCHANGE is required when AMQP_URL is set")
	}

	return nil
}

// ApplyLogLevel sets the logrus level from the configuration
func (c *Config) ApplyLogLevel() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsSlice(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}

	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}
