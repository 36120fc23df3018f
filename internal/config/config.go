package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// ErrMissingDatabaseURL is returned when DATABASE_URL is not provided.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL must be set. Did you forget to provision a database?")

type Config struct {
	// Server
	Port          string        `envconfig:"PORT" default:"8080"`
	Environment   string        `envconfig:"ENV" default:"development"`
	LogLevel      string        `envconfig:"LOG_LEVEL"`
	PublicBaseURL string        `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:8080"`
	StaticDir     string        `envconfig:"STATIC_DIR" default:"./dist/public"`
	JWTSecret     string        `envconfig:"JWT_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"168h"`
	CookieSecure  bool          `envconfig:"COOKIE_SECURE" default:"false"`

	// Storage
	DatabaseURL string `envconfig:"DATABASE_URL"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`
	RedisURL    string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`

	// PayPal
	PayPalBaseURL       string `envconfig:"PAYPAL_BASE_URL" default:"https://api-m.sandbox.paypal.com"`
	PayPalClientID      string `envconfig:"PAYPAL_CLIENT_ID"`
	PayPalClientSecret  string `envconfig:"PAYPAL_CLIENT_SECRET"`
	PayPalWebhookID     string `envconfig:"PAYPAL_WEBHOOK_ID"`
	PayPalMonthlyPlanID string `envconfig:"PAYPAL_MONTHLY_PLAN_ID"`
	PayPalYearlyPlanID  string `envconfig:"PAYPAL_YEARLY_PLAN_ID"`

	// Snapchat OAuth2 account linking
	SnapchatClientID     string `envconfig:"SNAPCHAT_CLIENT_ID"`
	SnapchatClientSecret string `envconfig:"SNAPCHAT_CLIENT_SECRET"`
	SnapchatRedirectURL  string `envconfig:"SNAPCHAT_REDIRECT_URL" default:"http://localhost:8080/api/connect/snapchat/callback"`
	SnapchatAuthURL      string `envconfig:"SNAPCHAT_AUTH_URL" default:"https://accounts.snapchat.com/accounts/oauth2/auth"`
	SnapchatTokenURL     string `envconfig:"SNAPCHAT_TOKEN_URL" default:"https://accounts.snapchat.com/accounts/oauth2/token"`
	SnapchatAPIBaseURL   string `envconfig:"SNAPCHAT_API_BASE_URL" default:"https://kit.snapchat.com"`

	// Report exports (S3 compatible)
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"ducksnap-exports"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`

	// Worker settings
	TaskQueueName        string        `envconfig:"TASK_QUEUE" default:"ducksnap_tasks"`
	WorkerPollTimeout    time.Duration `envconfig:"WORKER_POLL_TIMEOUT" default:"5s"`
	WorkerMaxRetries     int           `envconfig:"WORKER_MAX_RETRIES" default:"5"`
	WorkerBackoffInitial time.Duration `envconfig:"WORKER_BACKOFF_INITIAL" default:"1s"`
	WorkerBackoffMax     time.Duration `envconfig:"WORKER_BACKOFF_MAX" default:"60s"`

	GenerateRatePerMin int `envconfig:"GENERATE_RATE_PER_MIN" default:"6"`
}

// Load reads the configuration from the environment. A missing DATABASE_URL
// is reported with ErrMissingDatabaseURL so the process can fail at startup.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	return &cfg, nil
}

// IsDevelopment reports whether the service runs in local development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// PayPalPlanID returns the PayPal billing plan for a local plan id.
func (c *Config) PayPalPlanID(planID string) string {
	switch planID {
	case "premium_monthly":
		return c.PayPalMonthlyPlanID
	case "premium_yearly":
		return c.PayPalYearlyPlanID
	}
	return ""
}

// PayPalPlans maps every purchasable local plan to its PayPal billing plan.
func (c *Config) PayPalPlans() map[string]string {
	return map[string]string{
		"premium_monthly": c.PayPalPlanID("premium_monthly"),
		"premium_yearly":  c.PayPalPlanID("premium_yearly"),
	}
}
