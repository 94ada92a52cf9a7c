// Package config loads kin settings with Viper.
//
// Precedence, lowest to highest: defaults, kin.yaml (or an explicit file),
// KIN_* environment variables. Nested keys use "_" in the environment:
// KIN_LOG_JSON=true sets log.json.
package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// FileName is the project config looked up in the working directory.
const FileName = "kin.yaml"

// Config holds every kin setting.
type Config struct {
	Root       string          `mapstructure:"root"`
	Listen     string          `mapstructure:"listen"`
	Reflection bool            `mapstructure:"reflection"`
	Log        LogConfig       `mapstructure:"log"`
	Ancestors  AncestorsConfig `mapstructure:"ancestors"`
}

// LogConfig selects the logger encoder and level.
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// AncestorsConfig sets defaults for ancestor queries.
type AncestorsConfig struct {
	MinDepth int `mapstructure:"min_depth"`
	MaxDepth int `mapstructure:"max_depth"` // 0 = unbounded
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("root", ".")
	v.SetDefault("listen", "tcp://:9090")
	v.SetDefault("reflection", true)
	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
	v.SetDefault("ancestors.min_depth", 1)
	v.SetDefault("ancestors.max_depth", 0)
}

// New returns a Viper instance with defaults and environment binding but no
// config file read yet.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("KIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads configPath, or kin.yaml in the working directory when
// configPath is empty. A missing kin.yaml is not an error; a missing
// explicit file is.
func Load(configPath string) (*Config, error) {
	v := New()

	switch {
	case configPath != "":
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
		}
	default:
		if _, err := os.Stat(FileName); err == nil {
			v.SetConfigFile(FileName)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Wrapf(err, "failed to read config file %s", FileName)
			}
		}
	}

	return LoadWithViper(v)
}

// LoadWithViper unmarshals and validates the settings held by v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values Viper cannot type-check.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return errors.New("root must not be empty")
	}
	if c.Ancestors.MinDepth < 1 {
		return errors.Newf("ancestors.min_depth must be at least 1, got %d", c.Ancestors.MinDepth)
	}
	if c.Ancestors.MaxDepth < 0 {
		return errors.Newf("ancestors.max_depth must not be negative, got %d", c.Ancestors.MaxDepth)
	}
	if c.Ancestors.MaxDepth != 0 && c.Ancestors.MaxDepth < c.Ancestors.MinDepth {
		return errors.Newf("ancestors.max_depth (%d) cannot be less than ancestors.min_depth (%d)",
			c.Ancestors.MaxDepth, c.Ancestors.MinDepth)
	}
	return nil
}
