package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the settings shared by the API server and the generation worker.
type Config struct {
	// Server
	Port            string        `envconfig:"PORT" default:"8080"`
	Env             string        `envconfig:"ENV" default:"development"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	AllowedOrigins  []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// Logging
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	LogOutput   string `envconfig:"LOG_OUTPUT"`

	// Firebase / Firestore
	FirebaseProjectID   string `envconfig:"FIREBASE_PROJECT_ID" required:"true"`
	FirebaseCredentials string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirestoreEmulator   string `envconfig:"FIRESTORE_EMULATOR_HOST"`

	// Catalog
	CatalogPath string `envconfig:"CATALOG_PATH"`
	StoryAuthor string `envconfig:"STORY_AUTHOR" default:"FirstLook"`

	// Text generation
	AIClientType      string        `envconfig:"AI_CLIENT_TYPE" default:"openai"`
	AIBaseURL         string        `envconfig:"AI_BASE_URL"`
	AIModel           string        `envconfig:"AI_MODEL" default:"gpt-4o-mini"`
	AITimeout         time.Duration `envconfig:"AI_TIMEOUT" default:"180s"`
	AIMaxPromptTokens int           `envconfig:"AI_MAX_PROMPT_TOKENS" default:"8000"`
	AITemperature     float64       `envconfig:"AI_TEMPERATURE" default:"0.9"`
	AIMaxTokens       int           `envconfig:"AI_MAX_TOKENS" default:"6000"`
	AIAPIKey          string        `ignored:"true"`

	// Cover images
	ImageBaseURL string        `envconfig:"IMAGE_BASE_URL"`
	ImageModel   string        `envconfig:"IMAGE_MODEL" default:"dall-e-3"`
	ImageSize    string        `envconfig:"IMAGE_SIZE" default:"1024x1792"`
	ImageTimeout time.Duration `envconfig:"IMAGE_TIMEOUT" default:"120s"`
	ImageAPIKey  string        `ignored:"true"`

	// Cloud Storage
	CoverBucket       string `envconfig:"COVER_BUCKET"`
	CoverObjectPrefix string `envconfig:"COVER_OBJECT_PREFIX"`

	// Stripe
	StripeSuccessURL    string `envconfig:"STRIPE_SUCCESS_URL" default:"https://firstlook.app/checkout/success"`
	StripeCancelURL     string `envconfig:"STRIPE_CANCEL_URL" default:"https://firstlook.app/checkout/cancel"`
	StripeSecretKey     string `ignored:"true"`
	StripeWebhookSecret string `ignored:"true"`

	// Redis snapshot cache, disabled when RedisAddr is empty
	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	RedisDB         int           `envconfig:"REDIS_DB" default:"0"`
	RedisMaxRetries int           `envconfig:"REDIS_MAX_RETRIES" default:"3"`
	RedisRetryDelay time.Duration `envconfig:"REDIS_RETRY_DELAY" default:"2s"`
	AnalyticsTTL    time.Duration `envconfig:"ANALYTICS_CACHE_TTL" default:"5m"`
	RedisPassword   string        `ignored:"true"`

	// RabbitMQ, disabled when RabbitMQURL is empty
	RabbitMQURL        string        `envconfig:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `envconfig:"RABBITMQ_MAX_RETRIES" default:"5"`
	RabbitMQRetryDelay time.Duration `envconfig:"RABBITMQ_RETRY_DELAY" default:"3s"`

	// Rate limits, requests per window per user
	UnlockRateLimit   uint          `envconfig:"UNLOCK_RATE_LIMIT" default:"30"`
	CheckoutRateLimit uint          `envconfig:"CHECKOUT_RATE_LIMIT" default:"5"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// Worker
	WorkerMetricsPort string `envconfig:"WORKER_METRICS_PORT" default:"9091"`
}

// LoadConfig reads an optional .env file, environment variables and secrets.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var err error
	if cfg.AIAPIKey, err = ReadSecret("ai_api_key", "AI_API_KEY"); err != nil && cfg.AIClientType != "ollama" {
		return nil, err
	}
	cfg.ImageAPIKey, _ = ReadSecret("image_api_key", "IMAGE_API_KEY")
	if cfg.ImageAPIKey == "" {
		cfg.ImageAPIKey = cfg.AIAPIKey
	}
	cfg.RedisPassword, _ = ReadSecret("redis_password", "REDIS_PASSWORD")
	cfg.StripeSecretKey, _ = ReadSecret("stripe_secret_key", "STRIPE_SECRET_KEY")
	cfg.StripeWebhookSecret, _ = ReadSecret("stripe_webhook_secret", "STRIPE_WEBHOOK_SECRET")

	return &cfg, nil
}

// Validate checks the settings the API server cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.StripeSecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if c.StripeWebhookSecret == "" {
		missing = append(missing, "STRIPE_WEBHOOK_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// secretsDir is where Docker secrets are mounted.
var secretsDir = "/run/secrets"

// ReadSecret returns the Docker secret file name when present, otherwise the
// environment variable envKey.
func ReadSecret(name, envKey string) (string, error) {
	b, err := os.ReadFile(secretsDir + "/" + name)
	if err == nil {
		if secret := strings.TrimSpace(string(b)); secret != "" {
			return secret, nil
		}
	}
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("secret %s is not set (file %s/%s or env %s)", name, secretsDir, name, envKey)
}
