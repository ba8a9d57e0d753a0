// Package config builds the explicit process configuration from defaults,
// an optional YAML file and environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ReviewCachePolicy controls when a persisted weekly review is reused.
type ReviewCachePolicy string

const (
	// ReviewCacheFrozen returns a persisted review forever once it exists.
	ReviewCacheFrozen ReviewCachePolicy = "frozen"
	// ReviewCacheTTL recomputes a persisted review older than ReviewCacheTTL.
	ReviewCacheTTL ReviewCachePolicy = "ttl"
)

// OIDC holds single sign-on settings. SSO is enabled when Issuer is set.
// RedirectURL defaults to BaseURL + "/api/auth/sso/callback".
type OIDC struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether SSO is configured.
func (o OIDC) Enabled() bool { return o.Issuer != "" && o.ClientID != "" }

// AI holds model settings. They are loaded so deployments can set them
// ahead of time; nothing in the planner calls a model yet.
type AI struct {
	Model             string
	APIKey            string
	MaxResponseTokens int
	RequestTimeout    time.Duration
}

// Config is the fully resolved process configuration.
type Config struct {
	AppName      string
	BaseURL      string
	Addr         string
	WebDir       string
	DatabaseURL  string
	LogMode      string
	AuthDisabled bool // trusts X-User-Id / bearer identities; development only

	Location           *time.Location
	DefaultHoursPerDay float64
	DefaultHistoryDays int

	ReviewCache    ReviewCachePolicy
	ReviewCacheTTL time.Duration
	SessionTTL     time.Duration

	OIDC OIDC
	AI   AI
}

func defaults(v *viper.Viper) {
	v.SetDefault("app_name", "planner")
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("addr", ":8080")
	v.SetDefault("web_dir", "web")
	v.SetDefault("database_url", "")
	v.SetDefault("log_mode", "dev")
	v.SetDefault("auth_disabled", false)
	v.SetDefault("tz_name", "UTC")
	v.SetDefault("default_hours_per_day", 2.0)
	v.SetDefault("default_history_days", 7)
	v.SetDefault("review_cache", string(ReviewCacheFrozen))
	v.SetDefault("review_cache_ttl", "168h")
	v.SetDefault("session_ttl", "24h")
	v.SetDefault("oidc_issuer", "")
	v.SetDefault("oidc_client_id", "")
	v.SetDefault("oidc_client_secret", "")
	v.SetDefault("oidc_redirect_url", "")
	v.SetDefault("ai_model", "gpt-4o-mini")
	v.SetDefault("ai_api_key", "")
	v.SetDefault("ai_max_response_tokens", 1200)
	v.SetDefault("ai_request_timeout", "60s")
}

// Load resolves the configuration. A YAML file named by PLANNER_CONFIG is
// read first; environment variables (upper-cased keys) override it.
func Load() (Config, error) {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	if path := os.Getenv("PLANNER_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	loc, err := time.LoadLocation(v.GetString("tz_name"))
	if err != nil {
		return Config{}, fmt.Errorf("config: tz_name: %w", err)
	}

	cfg := Config{
		AppName:            v.GetString("app_name"),
		BaseURL:            v.GetString("base_url"),
		Addr:               v.GetString("addr"),
		WebDir:             v.GetString("web_dir"),
		DatabaseURL:        v.GetString("database_url"),
		LogMode:            v.GetString("log_mode"),
		AuthDisabled:       v.GetBool("auth_disabled"),
		Location:           loc,
		DefaultHoursPerDay: v.GetFloat64("default_hours_per_day"),
		DefaultHistoryDays: v.GetInt("default_history_days"),
		ReviewCache:        ReviewCachePolicy(strings.ToLower(v.GetString("review_cache"))),
		ReviewCacheTTL:     v.GetDuration("review_cache_ttl"),
		SessionTTL:         v.GetDuration("session_ttl"),
		OIDC: OIDC{
			Issuer:       v.GetString("oidc_issuer"),
			ClientID:     v.GetString("oidc_client_id"),
			ClientSecret: v.GetString("oidc_client_secret"),
			RedirectURL:  v.GetString("oidc_redirect_url"),
		},
		AI: AI{
			Model:             v.GetString("ai_model"),
			APIKey:            v.GetString("ai_api_key"),
			MaxResponseTokens: v.GetInt("ai_max_response_tokens"),
			RequestTimeout:    v.GetDuration("ai_request_timeout"),
		},
	}
	if cfg.OIDC.RedirectURL == "" {
		cfg.OIDC.RedirectURL = strings.TrimRight(cfg.BaseURL, "/") + "/api/auth/sso/callback"
	}
	return cfg, cfg.Validate()
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if c.DefaultHoursPerDay < 0 {
		return fmt.Errorf("config: default_hours_per_day must be >= 0")
	}
	if c.DefaultHistoryDays <= 0 {
		return fmt.Errorf("config: default_history_days must be > 0")
	}
	switch c.ReviewCache {
	case ReviewCacheFrozen:
	case ReviewCacheTTL:
		if c.ReviewCacheTTL <= 0 {
			return fmt.Errorf("config: review_cache_ttl must be > 0 with review_cache=ttl")
		}
	default:
		return fmt.Errorf("config: unknown review_cache %q", c.ReviewCache)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: session_ttl must be > 0")
	}
	return nil
}
