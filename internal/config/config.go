package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime configuration for the CLI and the HTTP front.
type Config struct {
	// Root is the program installation directory; data/ and tmp/ live under it.
	Root        string        `env:"F1_ROOT"`
	DataPath    string        `env:"F1_DATA_PATH"`
	TempDir     string        `env:"F1_TEMP_DIR"`
	LockTimeout time.Duration `env:"STORE_LOCK_TIMEOUT" envDefault:"5s"`
	// NotFoundFormat is "legacy" (bare 404) or "json".
	NotFoundFormat string `env:"NOT_FOUND_FORMAT" envDefault:"legacy"`

	Port         string `env:"PORT" envDefault:"7000"`
	MaxBodyBytes int64  `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	Log     LogConfig
	Metrics MetricsConfig

	// Warnings lists variables that were malformed and replaced by defaults.
	Warnings []string
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads configuration from an optional <root>/.env and the environment.
func Load() (Config, error) {
	root, err := programRoot()
	if err != nil {
		return Config{}, err
	}
	if err := loadDotEnv(filepath.Join(root, defaultDotEnv)); err != nil {
		return Config{}, err
	}

	environ := environMap(os.Environ())
	warnings := sanitizeEnv(environ, reflect.TypeOf(Config{}))

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Warnings = warnings
	cfg.applyDefaults(root)
	return cfg, nil
}

func (c *Config) applyDefaults(root string) {
	if c.Root == "" {
		c.Root = root
	}
	if c.DataPath == "" {
		c.DataPath = filepath.Join(c.Root, defaultDataDir, defaultDataFile)
	}
	if c.TempDir == "" {
		c.TempDir = filepath.Join(c.Root, defaultTempDir)
	}
	if c.LockTimeout <= 0 {
		c.LockTimeout = defaultLockTimeout
	}
	if c.Port == "" {
		c.Port = defaultPort
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = defaultServiceName
	}
}
