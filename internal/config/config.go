package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds storefront configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	RedisURL           string
	CORSAllowedOrigins []string

	CurrencySymbol string
	CurrencyLocale string

	NotificationTTL      time.Duration
	ReviewRevealDelay    time.Duration
	ReviewRevealDuration time.Duration

	SessionCookieName string
	SessionIdleTTL    time.Duration
	SessionMax        int
	CSRFCookieName    string
	CookieSecure      bool

	ReviewRateLimitMax    int
	ReviewRateLimitWindow time.Duration
	IdempotencyTTL        time.Duration
	BodyLimitBytes        int64

	SecurityHeadersEnabled bool
	HSTSEnabled            bool
}

// defaults is the lowest configuration layer. Environment variables and test
// overrides are merged on top.
var defaults = layer{
	"APP_ENV":                  "development",
	"PORT":                     "8080",
	"CURRENCY_SYMBOL":          "₱",
	"CURRENCY_LOCALE":          "en-US",
	"NOTIFICATION_TTL":         "3s",
	"REVIEW_REVEAL_DELAY":      "100ms",
	"REVIEW_REVEAL_DURATION":   "500ms",
	"SESSION_COOKIE_NAME":      "toko_session",
	"SESSION_IDLE_TTL":         "2h",
	"SESSION_MAX":              10000,
	"CSRF_COOKIE_NAME":         "X-CSRF-Token",
	"COOKIE_SECURE":            false,
	"REVIEW_RATE_LIMIT_MAX":    5,
	"REVIEW_RATE_LIMIT_WINDOW": "1m",
	"IDEMPOTENCY_TTL":          "10m",
	"BODY_LIMIT_BYTES":         64 << 10,
	"SECURITY_HEADERS_ENABLED": true,
	"SECURITY_HSTS_ENABLED":    false,
}

// layer is an in-memory koanf provider.
type layer map[string]any

func (l layer) Read() (map[string]any, error) {
	out := make(map[string]any, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out, nil
}

func (l layer) ReadBytes() ([]byte, error) {
	return nil, errors.New("config: layer does not support ReadBytes")
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(nil)
}

// LoadForTests applies overrides on top of the environment without mutating
// it. A blank override restores the default for that key.
func LoadForTests(overrides map[string]string) (*Config, error) {
	return load(overrides)
}

func load(overrides map[string]string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(defaults, nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	nonBlank := func(key, value string) (string, any) {
		if strings.TrimSpace(value) == "" {
			return "", nil
		}
		return key, strings.TrimSpace(value)
	}
	if err := k.Load(env.ProviderWithValue("", ".", nonBlank), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	if len(overrides) > 0 {
		top := layer{}
		for key, value := range overrides {
			if _, v := nonBlank(key, value); v != nil {
				top[key] = v
			} else if d, ok := defaults[key]; ok {
				top[key] = d
			} else {
				top[key] = ""
			}
		}
		if err := k.Load(top, nil); err != nil {
			return nil, fmt.Errorf("load overrides: %w", err)
		}
	}

	cfg := &Config{
		AppEnv:             k.String("APP_ENV"),
		Port:               k.String("PORT"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitCSV(k.String("CORS_ALLOWED_ORIGINS")),

		CurrencySymbol: k.String("CURRENCY_SYMBOL"),
		CurrencyLocale: k.String("CURRENCY_LOCALE"),

		NotificationTTL:      k.Duration("NOTIFICATION_TTL"),
		ReviewRevealDelay:    k.Duration("REVIEW_REVEAL_DELAY"),
		ReviewRevealDuration: k.Duration("REVIEW_REVEAL_DURATION"),

		SessionCookieName: k.String("SESSION_COOKIE_NAME"),
		SessionIdleTTL:    k.Duration("SESSION_IDLE_TTL"),
		SessionMax:        k.Int("SESSION_MAX"),
		CSRFCookieName:    k.String("CSRF_COOKIE_NAME"),
		CookieSecure:      k.Bool("COOKIE_SECURE"),

		ReviewRateLimitMax:    k.Int("REVIEW_RATE_LIMIT_MAX"),
		ReviewRateLimitWindow: k.Duration("REVIEW_RATE_LIMIT_WINDOW"),
		IdempotencyTTL:        k.Duration("IDEMPOTENCY_TTL"),
		BodyLimitBytes:        k.Int64("BODY_LIMIT_BYTES"),

		SecurityHeadersEnabled: k.Bool("SECURITY_HEADERS_ENABLED"),
		HSTSEnabled:            k.Bool("SECURITY_HSTS_ENABLED"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	positive := map[string]time.Duration{
		"NOTIFICATION_TTL":         c.NotificationTTL,
		"SESSION_IDLE_TTL":         c.SessionIdleTTL,
		"REVIEW_RATE_LIMIT_WINDOW": c.ReviewRateLimitWindow,
		"IDEMPOTENCY_TTL":          c.IdempotencyTTL,
	}
	for key, d := range positive {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be a positive duration", key))
		}
	}
	if c.ReviewRevealDelay < 0 || c.ReviewRevealDuration < 0 {
		errs = append(errs, errors.New("review reveal timings must not be negative"))
	}
	if c.ReviewRateLimitMax <= 0 {
		errs = append(errs, errors.New("REVIEW_RATE_LIMIT_MAX must be a positive integer"))
	}
	if c.SessionMax <= 0 {
		errs = append(errs, errors.New("SESSION_MAX must be a positive integer"))
	}
	if c.BodyLimitBytes <= 0 {
		errs = append(errs, errors.New("BODY_LIMIT_BYTES must be a positive integer"))
	}
	if strings.TrimSpace(c.SessionCookieName) == "" || strings.TrimSpace(c.CSRFCookieName) == "" {
		errs = append(errs, errors.New("cookie names must not be blank"))
	}
	return errors.Join(errs...)
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

// RedisEnabled reports whether a Redis URL was configured.
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.RedisURL) != ""
}

func splitCSV(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' })
}
