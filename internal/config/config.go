// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/noah-isme/kasir-pos/internal/money"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	CurrencyCode     string
	MoneyRounding    money.Mode
	QtyPrecision     int
	MaxEditablePrice money.Money
	InvoicePrefix    string

	StoreName         string
	StoreAddress      string
	ReceiptPaperWidth int

	CatalogCacheTTL time.Duration

	// MetricsBuckets holds HTTP latency histogram bounds in milliseconds.
	// Empty means the observability defaults.
	MetricsBuckets []float64
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	rounding, err := money.ParseMode(k.String("MONEY_ROUNDING_MODE"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		CurrencyCode:       valueOrDefault(k.String("CURRENCY_CODE"), "IDR"),
		MoneyRounding:      rounding,
		QtyPrecision:       parseInt(k.String("QTY_PRECISION"), money.DefaultQtyPrecision),
		MaxEditablePrice:   money.Money(parseInt64(k.String("MAX_EDITABLE_PRICE"), 100_000_000)),
		InvoicePrefix:      valueOrDefault(k.String("INVOICE_PREFIX"), "INV-"),
		StoreName:          valueOrDefault(k.String("STORE_NAME"), "Kasir POS"),
		StoreAddress:       strings.TrimSpace(k.String("STORE_ADDRESS")),
		ReceiptPaperWidth:  parseInt(k.String("RECEIPT_PAPER_WIDTH"), 32),
		CatalogCacheTTL:    parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),
		MetricsBuckets:     parseFloats(k.String("OBS_METRICS_BUCKETS_MS")),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.QtyPrecision < 0 || cfg.QtyPrecision > 6 {
		return nil, fmt.Errorf("QTY_PRECISION out of range: %d", cfg.QtyPrecision)
	}

	return cfg, nil
}

// Rules builds the money policies every cart and store shares.
func (c *Config) Rules() money.Rules {
	return money.Rules{QtyPrecision: c.QtyPrecision, Rounding: c.MoneyRounding}
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func parseFloats(value string) []float64 {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || f <= 0 {
			continue
		}
		out = append(out, f)
	}
	return out
}

func parseInt64(value string, fallback int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
