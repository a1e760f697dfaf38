// Package config loads docvault settings from flags, environment variables
// and an optional config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/taigrr/docvault/internal/backend"
	"github.com/taigrr/docvault/internal/logging"
	"github.com/taigrr/docvault/internal/vaulterr"
)

// EnvPrefix prefixes every environment variable, e.g. DOCVAULT_BASE_DIR.
const EnvPrefix = "DOCVAULT"

// Config is the resolved docvault configuration.
type Config struct {
	BaseDir           string    `mapstructure:"base_dir"`
	Mode              string    `mapstructure:"mode"`
	Database          string    `mapstructure:"database"`
	Locale            string    `mapstructure:"locale"`
	MetricsAddr       string    `mapstructure:"metrics_addr"`
	Ignore            []string  `mapstructure:"ignore"`
	AllowedExtensions []string  `mapstructure:"allowed_extensions"`
	Log               LogConfig `mapstructure:"log"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Logging converts the log section for package logging.
func (c LogConfig) Logging() logging.Config {
	return logging.Config{
		Level:      c.Level,
		Format:     c.Format,
		Output:     c.Output,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
	}
}

// BackendMode returns the configured storage mode.
func (c *Config) BackendMode() backend.Mode {
	return backend.ParseMode(c.Mode)
}

// VaultLocale returns the configured message locale.
func (c *Config) VaultLocale() vaulterr.Locale {
	return vaulterr.ParseLocale(c.Locale)
}

// DataDir returns the default directory for vault data:
// $XDG_DATA_HOME/docvault, falling back to ~/.local/share/docvault.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "docvault")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "docvault")
	}
	return filepath.Join(home, ".local", "share", "docvault")
}

// DefaultConfigFile returns the config file looked up when none is given.
func DefaultConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "docvault", "config.toml")
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()

	dataDir := DataDir()
	v.SetDefault("base_dir", filepath.Join(dataDir, "docvaults"))
	v.SetDefault("mode", string(backend.ModeFilesystem))
	v.SetDefault("database", filepath.Join(dataDir, "docvault.db"))
	v.SetDefault("locale", string(vaulterr.English))
	v.SetDefault("metrics_addr", "")
	v.SetDefault("ignore", []string{})
	v.SetDefault("allowed_extensions", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stderr")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file, if any, and unmarshals the merged settings.
// An explicit file must exist; the default file is optional.
func Load(v *viper.Viper, file string) (*Config, error) {
	explicit := file != ""
	if !explicit {
		file = DefaultConfigFile()
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
			if explicit || !missing {
				return nil, fmt.Errorf("reading config %s: %w", file, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseDir) == "" && c.BackendMode() == backend.ModeFilesystem {
		return errors.New("base_dir is required")
	}
	if c.BackendMode() == backend.ModeLegacy && strings.TrimSpace(c.Database) == "" {
		return errors.New("database is required in legacy mode")
	}
	if !backend.KnownMode(c.Mode) {
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	return nil
}
