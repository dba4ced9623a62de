package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Database
	DatabaseURL string

	// Redis carries project change events to SSE subscribers.
	RedisURL string

	// Payment gateway. An empty URL selects the stub gateway.
	PaymentGatewayURL    string
	PaymentGatewayKey    string
	PaymentGatewayRPS    float64
	PaymentWebhookSecret string

	// Workflow
	OptimisticLocking bool

	// Server
	CORSAllowedOrigins []string
	Port               string
	Environment        string
	BaseURL            string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "feedback-images"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		PaymentGatewayURL:    getEnv("PAYMENT_GATEWAY_URL", ""),
		PaymentGatewayKey:    getEnv("PAYMENT_GATEWAY_KEY", ""),
		PaymentGatewayRPS:    getEnvAsFloat("PAYMENT_GATEWAY_RPS", 5),
		PaymentWebhookSecret: getEnv("PAYMENT_WEBHOOK_SECRET", ""),

		OptimisticLocking: getEnvAsBool("WORKFLOW_OPTIMISTIC_LOCKING", false),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		Port:               getEnv("PORT", "8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.SupabaseURL == "" && c.IsProduction() {
		return fmt.Errorf("SUPABASE_URL is required in production")
	}
	if c.SupabaseURL != "" && c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required when SUPABASE_URL is set")
	}
	if c.DatabaseURL == "" && c.IsProduction() {
		return fmt.Errorf("DATABASE_URL is required in production")
	}
	if c.PaymentGatewayURL != "" && c.PaymentGatewayKey == "" {
		return fmt.Errorf("PAYMENT_GATEWAY_KEY is required when PAYMENT_GATEWAY_URL is set")
	}
	if c.PaymentGatewayRPS <= 0 {
		return fmt.Errorf("PAYMENT_GATEWAY_RPS must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
