// Package config loads flowdi settings from a config file and FLOWDI_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	fileName  = "flowdi"
	fileType  = "yaml"
	envPrefix = "FLOWDI"
)

// Config is the resolved configuration.
type Config struct {
	AppName  string    `mapstructure:"app_name"`
	Manifest string    `mapstructure:"manifest"`
	Strict   bool      `mapstructure:"strict"`
	Log      LogConfig `mapstructure:"log"`

	v *viper.Viper
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
}

// Load reads configuration. With an empty path it looks for flowdi.yaml in
// the working directory and carries on without one; an explicit path must
// exist. Environment variables such as FLOWDI_LOG_LEVEL override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType(fileType)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	cfg := &Config{v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration that Load yields with no file and no
// environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{v: v}
	_ = v.Unmarshal(cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "flowdi")
	v.SetDefault("manifest", "modules.yaml")
	v.SetDefault("strict", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func (c *Config) validate() error {
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q: must be text or json", c.Log.Format)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q: must be debug, info, warn or error", c.Log.Level)
	}
	return nil
}

// Get returns the raw value at key, or def when it is not set anywhere.
func (c *Config) Get(key string, def any) any {
	if c.v == nil || !c.v.IsSet(key) {
		return def
	}
	return c.v.Get(key)
}

// GetString is Get for strings.
func (c *Config) GetString(key, def string) string {
	if c.v == nil || !c.v.IsSet(key) {
		return def
	}
	return c.v.GetString(key)
}

// Set overrides key for the lifetime of c.
func (c *Config) Set(key string, value any) {
	if c.v == nil {
		c.v = viper.New()
	}
	c.v.Set(key, value)
}

// ConfigFile returns the file that was read, if any.
func (c *Config) ConfigFile() string {
	if c.v == nil {
		return ""
	}
	return c.v.ConfigFileUsed()
}
