// Package config loads runtime settings from flags and an optional YAML file.
package config

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Setting keys, shared by flags and the config file.
const (
	KeyData       = "data"
	KeyAddr       = "addr"
	KeyLogLevel   = "log_level"
	KeySampleSize = "sample_size"
	KeyWatch      = "watch"
)

// Defaults.
const (
	DefaultDataPath   = "final_clustered_music_dataset.csv"
	DefaultAddr       = "127.0.0.1:8080"
	DefaultLogLevel   = "info"
	DefaultSampleSize = 30
)

// Common errors.
var (
	ErrMissingDataPath   = errors.New("data path must not be empty")
	ErrInvalidSampleSize = errors.New("sample size must be positive")
)

// Config holds runtime settings.
type Config struct {
	DataPath   string `mapstructure:"data"`
	Addr       string `mapstructure:"addr"`
	LogLevel   string `mapstructure:"log_level"`
	SampleSize int    `mapstructure:"sample_size"`
	Watch      bool   `mapstructure:"watch"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyData, DefaultDataPath)
	v.SetDefault(KeyAddr, DefaultAddr)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeySampleSize, DefaultSampleSize)
	v.SetDefault(KeyWatch, true)
}

// Load reads configFile (if non-empty) into v and returns the merged,
// validated settings. Bound flags take precedence over the file.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
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

// Validate checks the settings for obvious mistakes.
func (c *Config) Validate() error {
	if c.DataPath == "" {
		return ErrMissingDataPath
	}
	if c.SampleSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleSize, c.SampleSize)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// NewLogger returns a text logger at the configured level.
func (c *Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(level)
	}
	return log
}
