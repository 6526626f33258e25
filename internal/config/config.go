// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSigningKey is the shared symmetric key used to MAC access tokens (HS256).
	// Required; there is no default, a hardcoded key must never ship.
	JWTSigningKey string `mapstructure:"JWT_SIGNING_KEY"`
	// JWTIssuer is the iss claim (e.g. "task-tracker-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAccessTTL is the access token lifetime (e.g. "30m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// RefreshSessionTTL is the refresh session lifetime (e.g. "168h" for 7 days).
	RefreshSessionTTL string `mapstructure:"REFRESH_SESSION_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// AllowedOrigins is a comma-separated list of origins allowed by CORS (e.g. "http://localhost:5173").
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	// CookieSecure controls the Secure attribute on the refresh cookie; disable only for local HTTP development.
	CookieSecure bool `mapstructure:"COOKIE_SECURE"`
	// OTLPEndpoint is the OTLP gRPC collector endpoint (e.g. http://localhost:4317); empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SIGNING_KEY", "")
	v.SetDefault("JWT_ISSUER", "task-tracker-auth")
	v.SetDefault("JWT_ACCESS_TTL", "30m")
	v.SetDefault("REFRESH_SESSION_TTL", "168h") // 7d
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if strings.TrimSpace(cfg.JWTSigningKey) == "" {
		return nil, errors.New("config: JWT_SIGNING_KEY must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 30m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

// RefreshTTL parses RefreshSessionTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	d, err := time.ParseDuration(c.RefreshSessionTTL)
	if err != nil || d <= 0 {
		return 168 * time.Hour
	}
	return d
}

// AllowedOriginsList returns the CORS origins from the comma-separated config.
func (c *Config) AllowedOriginsList() []string {
	if c == nil || c.AllowedOrigins == "" {
		return nil
	}
	parts := strings.Split(c.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
