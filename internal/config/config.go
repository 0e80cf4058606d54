package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// DefaultJWTSecret is only acceptable when APP_ENV is dev.
const DefaultJWTSecret = "dev-secret-change-me"

// Config holds the application configuration.
type Config struct {
	Port                  string
	Env                   string
	LogLevel              string
	JWTSecret             string
	TokenTTL              time.Duration
	AllowedOrigins        []string
	SeedSampleData        bool
	ActivityRetention     time.Duration
	ActivityPruneSchedule string
	AuthRateLimit         float64
	AuthRateBurst         int
	// TrustProxy makes the server take the client address from
	// X-Forwarded-For/X-Real-IP. Enable it only behind a proxy that sets them.
	TrustProxy bool
}

// Load reads configuration from environment variables, falling back to defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3001")
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", DefaultJWTSecret)
	v.SetDefault("TOKEN_TTL", "8h")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("ACTIVITY_RETENTION", "24h")
	v.SetDefault("ACTIVITY_PRUNE_SCHEDULE", "@every 10m")
	v.SetDefault("AUTH_RATE_LIMIT", 5)
	v.SetDefault("AUTH_RATE_BURST", 10)
	v.SetDefault("TRUST_PROXY", false)

	env := v.GetString("APP_ENV")
	v.SetDefault("SEED_SAMPLE_DATA", env == "dev")

	cfg := &Config{
		Port:                  v.GetString("PORT"),
		Env:                   env,
		LogLevel:              v.GetString("LOG_LEVEL"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		TokenTTL:              v.GetDuration("TOKEN_TTL"),
		AllowedOrigins:        splitList(v.GetString("ALLOWED_ORIGINS")),
		SeedSampleData:        v.GetBool("SEED_SAMPLE_DATA"),
		ActivityRetention:     v.GetDuration("ACTIVITY_RETENTION"),
		ActivityPruneSchedule: v.GetString("ACTIVITY_PRUNE_SCHEDULE"),
		AuthRateLimit:         v.GetFloat64("AUTH_RATE_LIMIT"),
		AuthRateBurst:         v.GetInt("AUTH_RATE_BURST"),
		TrustProxy:            v.GetBool("TRUST_PROXY"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.ActivityRetention <= 0 {
		errs = append(errs, errors.New("ACTIVITY_RETENTION must be positive"))
	}
	if _, err := cron.ParseStandard(c.ActivityPruneSchedule); err != nil {
		errs = append(errs, fmt.Errorf("ACTIVITY_PRUNE_SCHEDULE: %w", err))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	} else if c.JWTSecret == DefaultJWTSecret && !c.IsDev() {
		errs = append(errs, errors.New("JWT_SECRET must be changed outside dev"))
	}
	if c.AuthRateLimit <= 0 || c.AuthRateBurst <= 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT and AUTH_RATE_BURST must be positive"))
	}
	return errors.Join(errs...)
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
