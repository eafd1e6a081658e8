package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const minIdentitySecretLength = 32

var insecureIdentitySecrets = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

// Config holds the runtime settings read from the environment.
type Config struct {
	AppEnv string `envconfig:"APP_ENV" default:"development"`
	Port   string `envconfig:"PORT" default:"8080"`

	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBPath      string `envconfig:"DB_PATH"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	IdentitySecret string `envconfig:"IDENTITY_SECRET"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	Timezone  string `envconfig:"TZ" default:"UTC"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	ImportRateLimit  int           `envconfig:"IMPORT_RATE_LIMIT" default:"10"`
	ImportRateWindow time.Duration `envconfig:"IMPORT_RATE_WINDOW" default:"1m"`
}

// Load reads .env files when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "giverr.db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := parsePort(c.Port); err != nil {
		return err
	}

	switch c.DBDriver {
	case "sqlite":
	case "postgres":
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}

	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be > 0")
	}
	if c.ImportRateLimit <= 0 || c.ImportRateWindow <= 0 {
		return errors.New("IMPORT_RATE_LIMIT and IMPORT_RATE_WINDOW must be > 0")
	}
	return nil
}

// RequireIdentitySecret returns the shared token secret, refusing placeholders and short values.
func (c *Config) RequireIdentitySecret() ([]byte, error) {
	secret := strings.TrimSpace(c.IdentitySecret)
	if secret == "" {
		return nil, errors.New("IDENTITY_SECRET is required")
	}
	if _, insecure := insecureIdentitySecrets[secret]; insecure {
		return nil, errors.New("IDENTITY_SECRET uses a placeholder value")
	}
	if len(secret) < minIdentitySecretLength {
		return nil, fmt.Errorf("IDENTITY_SECRET must be at least %d characters", minIdentitySecretLength)
	}
	return []byte(secret), nil
}

// Location resolves TZ, falling back to UTC for unknown zones.
func (c *Config) Location() (*time.Location, bool) {
	location, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC, false
	}
	return location, true
}

func (c *Config) ListenAddr() string {
	return ":" + c.Port
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("PORT must be numeric, got %q", raw)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("PORT must be between 1 and 65535, got %d", port)
	}
	return port, nil
}
