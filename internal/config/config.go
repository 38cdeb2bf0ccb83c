// Package config loads inkwell's process configuration from the environment,
// optionally seeded from a local .env file.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"git.sr.ht/~jakintosh/inkwell/internal/tokens"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingSecret = errors.New("missing token secret")
	ErrInvalid       = errors.New("invalid configuration")
)

type Config struct {
	AppPort string `mapstructure:"APP_PORT"`
	AppEnv  string `mapstructure:"APP_ENV"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	TokenIssuer        string        `mapstructure:"TOKEN_ISSUER"`
	AccessTokenSecret  string        `mapstructure:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret string        `mapstructure:"REFRESH_TOKEN_SECRET"`
	AccessTokenTTL     time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL    time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`
	CookieSecure       bool          `mapstructure:"COOKIE_SECURE"`

	DBDriver string `mapstructure:"DB_DRIVER"`
	DBPath   string `mapstructure:"DB_PATH"`
	DBDSN    string `mapstructure:"DB_DSN"`

	RotationMode  string `mapstructure:"ROTATION_MODE"`
	RotationStore string `mapstructure:"ROTATION_STORE"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	RoutesFile string `mapstructure:"ROUTES_FILE"`
}

var defaults = map[string]any{
	"APP_PORT":             "8080",
	"APP_ENV":              "production",
	"LOG_LEVEL":            "info",
	"LOG_FORMAT":           "text",
	"TOKEN_ISSUER":         "inkwell",
	"ACCESS_TOKEN_TTL":     "30m",
	"REFRESH_TOKEN_TTL":    "336h",
	"COOKIE_SECURE":        true,
	"DB_DRIVER":            "sqlite",
	"DB_PATH":              "inkwell.db",
	"ROTATION_MODE":        "lenient",
	"ROTATION_STORE":       "database",
	"REDIS_DB":             0,
	"ACCESS_TOKEN_SECRET":  "",
	"REFRESH_TOKEN_SECRET": "",
	"DB_DSN":               "",
	"REDIS_ADDR":           "",
	"REDIS_PASSWORD":       "",
	"ROUTES_FILE":          "",
}

// Load reads .env when present, then the environment, applies defaults and
// validates the result.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.AccessTokenSecret == "" || c.RefreshTokenSecret == "" {
		return ErrMissingSecret
	}
	if _, err := c.Keys(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("%w: token lifetimes must be positive", ErrInvalid)
	}
	if c.AccessTokenTTL >= c.RefreshTokenTTL {
		return fmt.Errorf("%w: access token lifetime must be shorter than refresh", ErrInvalid)
	}

	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("%w: DB_PATH required for sqlite", ErrInvalid)
		}
	case "postgres":
		if c.DBDSN == "" {
			return fmt.Errorf("%w: DB_DSN required for postgres", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown DB_DRIVER '%s'", ErrInvalid, c.DBDriver)
	}

	switch c.RotationMode {
	case "lenient":
	case "strict":
		switch c.RotationStore {
		case "database":
		case "redis":
			if c.RedisAddr == "" {
				return fmt.Errorf("%w: REDIS_ADDR required for redis rotation store", ErrInvalid)
			}
		default:
			return fmt.Errorf("%w: unknown ROTATION_STORE '%s'", ErrInvalid, c.RotationStore)
		}
	default:
		return fmt.Errorf("%w: unknown ROTATION_MODE '%s'", ErrInvalid, c.RotationMode)
	}

	return nil
}

// Keys decodes both token secrets into a tokens.Keys. A secret prefixed with
// "base64:" is decoded as standard base64; anything else is used as is.
func (c *Config) Keys() (tokens.Keys, error) {
	access, err := decodeSecret(c.AccessTokenSecret)
	if err != nil {
		return tokens.Keys{}, fmt.Errorf("ACCESS_TOKEN_SECRET: %v", err)
	}
	refresh, err := decodeSecret(c.RefreshTokenSecret)
	if err != nil {
		return tokens.Keys{}, fmt.Errorf("REFRESH_TOKEN_SECRET: %v", err)
	}
	return tokens.NewKeys(access, refresh)
}

func (c *Config) StrictRotation() bool {
	return c.RotationMode == "strict"
}

func decodeSecret(secret string) ([]byte, error) {
	encoded, ok := strings.CutPrefix(secret, "base64:")
	if !ok {
		return []byte(secret), nil
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// String implements fmt.Stringer with secrets masked.
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  AppPort: %s\n", c.AppPort))
	sb.WriteString(fmt.Sprintf("  AppEnv: %s\n", c.AppEnv))
	sb.WriteString(fmt.Sprintf("  LogLevel: %s\n", c.LogLevel))
	sb.WriteString(fmt.Sprintf("  LogFormat: %s\n", c.LogFormat))
	sb.WriteString(fmt.Sprintf("  TokenIssuer: %s\n", c.TokenIssuer))
	sb.WriteString(fmt.Sprintf("  AccessTokenSecret: %s\n", mask(c.AccessTokenSecret)))
	sb.WriteString(fmt.Sprintf("  RefreshTokenSecret: %s\n", mask(c.RefreshTokenSecret)))
	sb.WriteString(fmt.Sprintf("  AccessTokenTTL: %s\n", c.AccessTokenTTL))
	sb.WriteString(fmt.Sprintf("  RefreshTokenTTL: %s\n", c.RefreshTokenTTL))
	sb.WriteString(fmt.Sprintf("  CookieSecure: %v\n", c.CookieSecure))
	sb.WriteString(fmt.Sprintf("  DBDriver: %s\n", c.DBDriver))
	sb.WriteString(fmt.Sprintf("  DBPath: %s\n", c.DBPath))
	sb.WriteString(fmt.Sprintf("  DBDSN: %s\n", mask(c.DBDSN)))
	sb.WriteString(fmt.Sprintf("  RotationMode: %s\n", c.RotationMode))
	sb.WriteString(fmt.Sprintf("  RotationStore: %s\n", c.RotationStore))
	sb.WriteString(fmt.Sprintf("  RedisAddr: %s\n", c.RedisAddr))
	sb.WriteString(fmt.Sprintf("  RedisPassword: %s\n", mask(c.RedisPassword)))
	sb.WriteString(fmt.Sprintf("  RedisDB: %d\n", c.RedisDB))
	sb.WriteString(fmt.Sprintf("  RoutesFile: %s\n", c.RoutesFile))
	return sb.String()
}

func mask(secret string) string {
	if secret == "" {
		return "(empty)"
	}
	return "********"
}
