// Package config loads ordertree settings from an optional YAML file and
// ORDERTREE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. ORDERTREE_DB_PATH or
// ORDERTREE_CODES_DIGIT_WIDTH.
const EnvPrefix = "ORDERTREE"

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// CodesConfig controls code autogeneration.
type CodesConfig struct {
	// Label enables codes for new label types and their labels.
	Label bool `mapstructure:"label" yaml:"label"`

	// Order enables codes for new orders and their elements.
	Order bool `mapstructure:"order" yaml:"order"`

	DigitWidth int    `mapstructure:"digit_width" yaml:"digit_width"`
	Prefix     string `mapstructure:"prefix" yaml:"prefix"`
}

// Config is the top-level application configuration.
type Config struct {
	DBPath string      `mapstructure:"db_path" yaml:"db_path"`
	Log    LogConfig   `mapstructure:"log" yaml:"log"`
	Codes  CodesConfig `mapstructure:"codes" yaml:"codes"`
}

// GenerateCodeForLabel reports whether label type codes are autogenerated.
func (c *Config) GenerateCodeForLabel() bool { return c.Codes.Label }

// GenerateCodeForOrder reports whether order codes are autogenerated.
func (c *Config) GenerateCodeForOrder() bool { return c.Codes.Order }

// CodeDigitWidth is the zero-padded width of generated numeric suffixes.
func (c *Config) CodeDigitWidth() int { return c.Codes.DigitWidth }

// CodePrefix prefixes generated order codes.
func (c *Config) CodePrefix() string { return c.Codes.Prefix }

// DefaultDir returns ~/.ordertree, or the working directory when no home
// directory is available.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".ordertree")
}

// DefaultConfigPath returns ~/.ordertree/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		DBPath: filepath.Join(DefaultDir(), "ordertree.db"),
		Log:    LogConfig{Level: "info", Format: "text"},
		Codes:  CodesConfig{Label: true, Order: true, DigitWidth: 5, Prefix: "ORD"},
	}
}

func newViper(path string) *viper.Viper {
	d := Default()
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("codes.label", d.Codes.Label)
	v.SetDefault("codes.order", d.Codes.Order)
	v.SetDefault("codes.digit_width", d.Codes.DigitWidth)
	v.SetDefault("codes.prefix", d.Codes.Prefix)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the YAML file at path, then applies environment overrides. A
// missing file is not an error; defaults and the environment still apply.
func Load(path string) (*Config, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.Codes.DigitWidth < 1 || c.Codes.DigitWidth > 12 {
		return fmt.Errorf("codes.digit_width must be between 1 and 12, got %d", c.Codes.DigitWidth)
	}
	if strings.Contains(c.Codes.Prefix, "_") {
		return fmt.Errorf("codes.prefix %q must not contain '_'", c.Codes.Prefix)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// Save writes cfg to path as YAML, creating parent directories if needed.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.Set("db_path", cfg.DBPath)
	v.Set("log", map[string]any{"level": cfg.Log.Level, "format": cfg.Log.Format})
	v.Set("codes", map[string]any{
		"label":       cfg.Codes.Label,
		"order":       cfg.Codes.Order,
		"digit_width": cfg.Codes.DigitWidth,
		"prefix":      cfg.Codes.Prefix,
	})

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}
