package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissing is returned when a required setting is absent.
var ErrMissing = errors.New("missing required configuration")

// Config holds all application configuration.
type Config struct {
	Addr     string
	RunLocal bool

	DatabaseID         string // DynamoDB table
	OrdersCollection   string
	AdminsCollection   string
	SessionsCollection string

	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	MetricsNamespace string
}

// Load reads configuration from the environment. Identifiers of the
// document store and the session secret are required; Load fails fast
// instead of letting the first request discover they are missing.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("APP_ADDR", ":8080")
	v.SetDefault("RUN_LOCAL", false)
	v.SetDefault("ADMINS_COLLECTION_ID", "admins")
	v.SetDefault("SESSIONS_COLLECTION_ID", "sessions")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("METRICS_NAMESPACE", "")
	v.AutomaticEnv()

	cfg := &Config{
		Addr:               v.GetString("APP_ADDR"),
		RunLocal:           v.GetBool("RUN_LOCAL"),
		DatabaseID:         v.GetString("DATABASE_ID"),
		OrdersCollection:   v.GetString("ORDERS_COLLECTION_ID"),
		AdminsCollection:   v.GetString("ADMINS_COLLECTION_ID"),
		SessionsCollection: v.GetString("SESSIONS_COLLECTION_ID"),
		SessionSecret:      v.GetString("SESSION_SECRET"),
		SessionTTL:         v.GetDuration("SESSION_TTL"),
		CookieSecure:       v.GetBool("COOKIE_SECURE"),
		MetricsNamespace:   v.GetString("METRICS_NAMESPACE"),
	}

	var missing []string
	for _, req := range []struct{ key, val string }{
		{"DATABASE_ID", cfg.DatabaseID},
		{"ORDERS_COLLECTION_ID", cfg.OrdersCollection},
		{"ADMINS_COLLECTION_ID", cfg.AdminsCollection},
		{"SESSIONS_COLLECTION_ID", cfg.SessionsCollection},
		{"SESSION_SECRET", cfg.SessionSecret},
	} {
		if strings.TrimSpace(req.val) == "" {
			missing = append(missing, req.key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("invalid SESSION_TTL %q", v.GetString("SESSION_TTL"))
	}

	return cfg, nil
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{Addr: %s, Database: %s, Orders: %s, Admins: %s, Sessions: %s, SessionTTL: %s, Secret: ***}",
		c.Addr, c.DatabaseID, c.OrdersCollection, c.AdminsCollection, c.SessionsCollection, c.SessionTTL)
}
