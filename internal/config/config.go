// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	AWS         AWSConfig
	Payment     PaymentConfig
	Escrow      EscrowConfig
	Scheduler   SchedulerConfig
	RateLimit   RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	ReadTimeout    int
	WriteTimeout   int
	IdleTimeout    int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	CloudFrontURL   string
}

type PaymentConfig struct {
	// Provider selects the invoice backend: "invoice" (hosted invoice API)
	// or "stripe" (checkout sessions).
	Provider        string
	InvoiceBaseURL  string
	InvoiceAPIKey   string
	WebhookSecret   string
	StripeSecretKey string
	RequestTimeout  int // in seconds
	RequestsPerSec  float64
}

type EscrowConfig struct {
	PlatformFeePercent   float64
	DisbursementFee      int64
	GatewayFee           int64
	PaymentWindow        time.Duration
	CredentialWindow     time.Duration
	CredentialRetention  time.Duration
	ListingTTL           time.Duration
	AutoCompleteAfter    time.Duration
	DisputeAutoResolveIn time.Duration
	CredentialSealKey    string
	IdempotencyTTL       time.Duration
}

type SchedulerConfig struct {
	Interval time.Duration
	Enabled  bool
}

type RateLimitConfig struct {
	Requests int64
	Period   time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Host:           getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:    getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:   getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:    getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "akunbay"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "ap-southeast-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "akunbay-evidence"),
			CloudFrontURL:   getEnv("AWS_CLOUDFRONT_URL", ""),
		},
		Payment: PaymentConfig{
			Provider:        getEnv("PAYMENT_PROVIDER", "invoice"),
			InvoiceBaseURL:  getEnv("PAYMENT_INVOICE_BASE_URL", "https://api.invoice-gateway.test/v2"),
			InvoiceAPIKey:   getEnv("PAYMENT_INVOICE_API_KEY", ""),
			WebhookSecret:   getEnv("PAYMENT_WEBHOOK_SECRET", ""),
			StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			RequestTimeout:  getEnvAsInt("PAYMENT_REQUEST_TIMEOUT", 10),
			RequestsPerSec:  getEnvAsFloat("PAYMENT_REQUESTS_PER_SEC", 5),
		},
		Escrow: EscrowConfig{
			PlatformFeePercent:   getEnvAsFloat("PLATFORM_FEE_PERCENT", 3.0),
			DisbursementFee:      int64(getEnvAsInt("DISBURSEMENT_FEE", 2500)),
			GatewayFee:           int64(getEnvAsInt("GATEWAY_FEE", 0)),
			PaymentWindow:        getEnvAsDuration("PAYMENT_WINDOW", time.Hour),
			CredentialWindow:     getEnvAsDuration("CREDENTIAL_WINDOW", 10*time.Minute),
			CredentialRetention:  getEnvAsDuration("CREDENTIAL_RETENTION", time.Hour),
			ListingTTL:           getEnvAsDuration("LISTING_TTL", 7*24*time.Hour),
			AutoCompleteAfter:    getEnvAsDuration("AUTO_COMPLETE_AFTER", 3*24*time.Hour),
			DisputeAutoResolveIn: getEnvAsDuration("DISPUTE_AUTO_RESOLVE_IN", 30*24*time.Hour),
			CredentialSealKey:    getEnv("CREDENTIAL_SEAL_KEY", ""),
			IdempotencyTTL:       getEnvAsDuration("IDEMPOTENCY_TTL", time.Hour),
		},
		Scheduler: SchedulerConfig{
			Interval: getEnvAsDuration("SCHEDULER_INTERVAL", time.Minute),
			Enabled:  getEnvAsBool("SCHEDULER_ENABLED", true),
		},
		RateLimit: RateLimitConfig{
			Requests: int64(getEnvAsInt("RATE_LIMIT_REQUESTS", 30)),
			Period:   getEnvAsDuration("RATE_LIMIT_PERIOD", time.Minute),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.JWT.SecretKey == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT secret key must be changed in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database password is required in production")
		}
		if c.Payment.WebhookSecret == "" {
			return fmt.Errorf("payment webhook secret is required in production")
		}
		if c.Escrow.CredentialSealKey == "" {
			return fmt.Errorf("credential seal key is required in production")
		}
	}

	if c.Escrow.PlatformFeePercent < 0 || c.Escrow.PlatformFeePercent > 100 {
		return fmt.Errorf("platform fee percent must be between 0 and 100")
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
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
