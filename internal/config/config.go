// Package config resolves runtime settings from the environment. A .env file
// at the project root is honoured in development; packaged builds rely on the
// process environment and the defaults below.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gorm.io/gorm/logger"

	"apivault/internal/database"
	"apivault/internal/fallback"
	"apivault/internal/utils"
)

const envPrefix = "APIVAULT"

type Config struct {
	// DataDir holds db.json and the fallback store. Empty selects the
	// platform default.
	DataDir    string `envconfig:"DATA_DIR"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	DBLogLevel string `envconfig:"DB_LOG_LEVEL" default:"warn"`
}

// Load reads .env (when present) and the APIVAULT_* variables.
func Load() (*Config, error) {
	if err := utils.LoadEnv(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

const (
	defaultLogLevel   = "info"
	defaultDBLogLevel = "warn"
)

// FromEnv reads the APIVAULT_* variables only. A variable set to the empty
// string counts as unset.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = database.GetDefaultDataDir()
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.DBLogLevel == "" {
		cfg.DBLogLevel = defaultDBLogLevel
	}
	return &cfg, nil
}

func (c *Config) DocumentPath() string {
	return filepath.Join(c.DataDir, database.DocumentFile)
}

func (c *Config) FallbackPath() string {
	return filepath.Join(c.DataDir, fallback.StorageFile)
}

// GormLogLevel maps DBLogLevel onto gorm's levels. Unknown values are treated
// as "warn".
func (c *Config) GormLogLevel() logger.LogLevel {
	switch c.DBLogLevel {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info", "debug":
		return logger.Info
	default:
		return logger.Warn
	}
}
