package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"ctchen222/tictactoe-history/internal/validator"

	"github.com/ilyakaznacheev/cleanenv"
)

// Session backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	HTTP      HTTP      `yaml:"http"`
	Session   Session   `yaml:"session"`
	Redis     Redis     `yaml:"redis"`
	Telemetry Telemetry `yaml:"telemetry"`
}

type HTTP struct {
	Addr            string        `yaml:"addr" env:"HTTP_ADDR" env-default:":8080" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown-timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type Session struct {
	Backend    string        `yaml:"backend" env:"SESSION_BACKEND" env-default:"memory" validate:"oneof=memory redis"`
	TTL        time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"24h"`
	CookieName string        `yaml:"cookie-name" env:"SESSION_COOKIE_NAME" env-default:"ttt_session" validate:"required"`
	// Secret signs session cookies. A random one is generated at startup when empty,
	// which invalidates every cookie on restart.
	Secret       string `yaml:"secret" env:"SESSION_SECRET"`
	SecureCookie bool   `yaml:"secure-cookie" env:"SESSION_SECURE_COOKIE" env-default:"false"`
}

type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_CONNSTRING" env-default:"localhost:6379" validate:"required"`
}

type Telemetry struct {
	Enabled        bool   `yaml:"enabled" env:"OTEL_ENABLED" env-default:"false"`
	CollectorAddr  string `yaml:"collector-addr" env:"OTEL_COLLECTOR_ADDR" env-default:"otel-collector:4317"`
	ServiceName    string `yaml:"service-name" env:"OTEL_SERVICE_NAME" env-default:"tic-tac-toe"`
	ServiceVersion string `yaml:"service-version" env:"OTEL_SERVICE_VERSION" env-default:"v0.1.0"`
	Stdout         bool   `yaml:"stdout" env:"OTEL_STDOUT" env-default:"false"`
}

// Load reads the YAML file at path, then applies environment overrides.
// A missing file is not an error: defaults and the environment are used instead.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			if err := cleanenv.ReadConfig(path, cfg); err != nil {
				return nil, fmt.Errorf("unable to load config file: %w", err)
			}
			return cfg, cfg.Validate()
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("unable to stat config file: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("unable to read config from environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.GetValidator().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("invalid config: session ttl must be positive, got %s", c.Session.TTL)
	}
	if c.Telemetry.Enabled && c.Telemetry.CollectorAddr == "" {
		return errors.New("invalid config: telemetry enabled without a collector address")
	}
	return nil
}
