package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "MyBank"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultStaticPIN      = "1234"
	defaultOTPLength      = 6
	defaultOTPTTL         = 5 * time.Minute
	defaultOTPMaxAttempts = 5
)

const (
	// AssistantRules answers from the built-in rule table only.
	AssistantRules = "rules"
	// AssistantCompletion consults the completion service when no rule matches.
	AssistantCompletion = "completion"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration

	// Verification settings.
	StaticPIN      string
	OTPLength      int
	OTPAlphanum    bool
	OTPTTL         time.Duration
	OTPMaxAttempts int

	// Assistant settings. An empty CompletionURL keeps the assistant on the
	// rule table alone.
	AssistantMode   string
	CompletionURL   string
	CompletionKey   string
	CompletionModel string
}

// Load reads configuration values from the environment and populates a Config
// instance. DATABASE_URL and REDIS_URL are optional; when absent the service
// runs fully in memory.
func Load() (Config, error) {
	cfg := Config{
		AppName:         getEnv("APP_NAME", defaultAppName),
		AppEnv:          getEnv("APP_ENV", defaultAppEnv),
		Port:            getEnv("PORT", defaultPort),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		ShutdownPeriod:  defaultShutdownDelay,
		IdempotencyTTL:  defaultIdempotencyTTL,
		StaticPIN:       getEnv("VERIFICATION_PIN", defaultStaticPIN),
		OTPLength:       defaultOTPLength,
		OTPAlphanum:     true,
		OTPTTL:          defaultOTPTTL,
		OTPMaxAttempts:  defaultOTPMaxAttempts,
		AssistantMode:   strings.ToLower(getEnv("ASSISTANT_MODE", AssistantRules)),
		CompletionURL:   os.Getenv("COMPLETION_URL"),
		CompletionKey:   os.Getenv("COMPLETION_API_KEY"),
		CompletionModel: getEnv("COMPLETION_MODEL", "gpt-4o-mini"),
	}

	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv("IDEMPOTENCY_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid IDEMPOTENCY_TTL: %w", err)
		}
		cfg.IdempotencyTTL = d
	}

	if v := os.Getenv("OTP_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid OTP_LENGTH: %q", v)
		}
		cfg.OTPLength = n
	}

	if v := os.Getenv("OTP_DIGITS_ONLY"); v != "" {
		digitsOnly, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OTP_DIGITS_ONLY: %w", err)
		}
		cfg.OTPAlphanum = !digitsOnly
	}

	if v := os.Getenv("OTP_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OTP_TTL: %w", err)
		}
		cfg.OTPTTL = d
	}

	if v := os.Getenv("OTP_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid OTP_MAX_ATTEMPTS: %q", v)
		}
		cfg.OTPMaxAttempts = n
	}

	switch cfg.AssistantMode {
	case AssistantRules, AssistantCompletion:
	default:
		return Config{}, fmt.Errorf("invalid ASSISTANT_MODE: %q", cfg.AssistantMode)
	}

	if cfg.AssistantMode == AssistantCompletion && cfg.CompletionURL == "" {
		return Config{}, fmt.Errorf("COMPLETION_URL must be set when ASSISTANT_MODE=%s", AssistantCompletion)
	}

	if cfg.StaticPIN == "" {
		return Config{}, fmt.Errorf("VERIFICATION_PIN must not be empty")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
