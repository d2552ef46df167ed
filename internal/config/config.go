package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Session      SessionConfig
	RateLimit    RateLimitConfig
	Submission   SubmissionConfig
	Notification NotificationConfig
	Terms        TermsConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// SessionConfig defines form-session handles and storage.
type SessionConfig struct {
	JWTSecret  string
	TTLMinutes int
	Store      string
	KeyPrefix  string
}

// RateLimitConfig bounds per-client request rates on the loan API.
type RateLimitConfig struct {
	Capacity      int
	RefillSeconds int
}

// SubmissionConfig tunes the application submission pool.
type SubmissionConfig struct {
	Workers   int
	QueueSize int
	Delay     time.Duration
	FailAll   bool
}

// NotificationConfig holds the outcome webhook endpoint.
type NotificationConfig struct {
	WebhookURL string
}

// TermsConfig points at an optional product-terms file.
type TermsConfig struct {
	File string
}

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	delay, err := getEnvAsDuration("SUBMISSION_DELAY", 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SUBMISSION_DELAY: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "apply-loan-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Session: SessionConfig{
			JWTSecret:  getEnv("SESSION_JWT_SECRET", "dev-secret"),
			TTLMinutes: getEnvAsInt("SESSION_TTL_MINUTES", 30),
			Store:      getEnv("SESSION_STORE", SessionStoreMemory),
			KeyPrefix:  getEnv("SESSION_KEY_PREFIX", "apply-loan:session"),
		},
		RateLimit: RateLimitConfig{
			Capacity:      getEnvAsInt("RATE_LIMIT_CAPACITY", 60),
			RefillSeconds: getEnvAsInt("RATE_LIMIT_REFILL_SECONDS", 60),
		},
		Submission: SubmissionConfig{
			Workers:   getEnvAsInt("SUBMISSION_WORKERS", 4),
			QueueSize: getEnvAsInt("SUBMISSION_QUEUE_SIZE", 128),
			Delay:     delay,
			FailAll:   getEnvAsBool("SUBMISSION_FAIL_ALL", false),
		},
		Notification: NotificationConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		Terms: TermsConfig{
			File: os.Getenv("LOAN_TERMS_FILE"),
		},
	}

	if cfg.Session.Store != SessionStoreMemory && cfg.Session.Store != SessionStoreRedis {
		return nil, fmt.Errorf("invalid SESSION_STORE %q", cfg.Session.Store)
	}
	if cfg.Session.Store == SessionStoreRedis && cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("SESSION_STORE=redis requires REDIS_ADDR")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TTL returns how long an untouched form session lives.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

// RefillWindow returns the token bucket refill period.
func (r RateLimitConfig) RefillWindow() time.Duration {
	if r.RefillSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(r.RefillSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	return time.ParseDuration(val)
}
