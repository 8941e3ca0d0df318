package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	GSI1IndexName string
	EventBusName  string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// Vendor API keys
	QuiverAPIKey     string
	FMPAPIKey        string
	MarketDataAPIKey string
	EdgarUserAgent   string

	// Vendor call tuning
	VendorTimeout  time.Duration
	QuoteCacheTTL  time.Duration
	QuoteCacheSize int

	// Game XP values
	XPMoodCorrect      int
	XPEarningsCorrect  int
	XPBeatCongressWin  int
	XPBeatCongressLoss int

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	EnableCORS    bool
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		DynamoDBTable: getEnv("TABLE_NAME", "wall-street"),
		GSI1IndexName: getEnv("GSI1_INDEX_NAME", "GSI1"),
		EventBusName:  getEnv("EVENT_BUS_NAME", "wall-street-events"),

		IsLambda:           os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "",
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),

		QuiverAPIKey:     getEnv("QUIVER_API_KEY", ""),
		FMPAPIKey:        getEnv("FMP_API_KEY", ""),
		MarketDataAPIKey: getEnv("MARKET_DATA_API_KEY", ""),
		EdgarUserAgent:   getEnv("EDGAR_USER_AGENT", "TradeStreak admin@tradestreak.net"),

		VendorTimeout:  getEnvDuration("VENDOR_TIMEOUT", 15*time.Second),
		QuoteCacheTTL:  getEnvDuration("QUOTE_CACHE_TTL", 5*time.Minute),
		QuoteCacheSize: getEnvInt("QUOTE_CACHE_SIZE", 512),

		XPMoodCorrect:      getEnvInt("XP_MOOD_CORRECT", 25),
		XPEarningsCorrect:  getEnvInt("XP_EARNINGS_CORRECT", 50),
		XPBeatCongressWin:  getEnvInt("XP_BEAT_CONGRESS_WIN", 100),
		XPBeatCongressLoss: getEnvInt("XP_BEAT_CONGRESS_LOSS", 25),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "wall-street-service"),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required")
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
