package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	GRPCPort int
	HTTPPort int

	CartServiceURL    string
	CatalogServiceURL string
	OrderBackendURL   string
	GatewayURL        string
	GatewayKey        string
	ClientTimeout     time.Duration

	// CatalogDatabaseURL, when set, reads products from the catalog
	// database instead of the catalog service.
	CatalogDatabaseURL string

	DraftStore  string
	DatabaseURL string
	SQLitePath  string

	RabbitURI   string
	NotifyQueue string

	TaxRate        string
	ShippingConfig string
}

// Load reads an optional .env file (never in production) and then the
// process environment.
func Load() Config {
	if getEnv("APP_ENV", "dev") != "production" {
		_ = godotenv.Load()
	}

	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnvInt("HTTP_PORT", 8080),
		GRPCPort: getEnvInt("GRPC_PORT", 8081),

		CartServiceURL:    getEnv("CART_SERVICE_URL", "http://localhost:9001"),
		CatalogServiceURL: getEnv("CATALOG_SERVICE_URL", "http://localhost:9002"),
		OrderBackendURL:   getEnv("ORDER_BACKEND_URL", "http://localhost:9003"),
		GatewayURL:        getEnv("PAYMENT_GATEWAY_URL", ""),
		GatewayKey:        getEnv("PAYMENT_GATEWAY_KEY", ""),
		ClientTimeout:     getEnvDuration("HTTP_CLIENT_TIMEOUT", 15*time.Second),

		CatalogDatabaseURL: getEnv("CATALOG_DATABASE_URL", ""),

		DraftStore:  strings.ToLower(getEnv("DRAFT_STORE", "memory")),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "storefront.db"),

		RabbitURI:   getEnv("RABBITMQ_URI", ""),
		NotifyQueue: getEnv("NOTIFY_QUEUE", "order-notifications"),

		TaxRate:        getEnv("TAX_RATE", "0"),
		ShippingConfig: getEnv("SHIPPING_CONFIG", ""),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
