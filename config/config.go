// Package config decodes and validates the settings a store is opened with.
package config

import (
	"fmt"

	"github.com/NethermindEth/rangekv/db"
	"github.com/NethermindEth/rangekv/db/pebble"
	"github.com/NethermindEth/rangekv/utils"
	"github.com/NethermindEth/rangekv/validator"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel        = utils.INFO
	DefaultColour          = true
	DefaultCacheSizeMB     = uint(1024)
	DefaultMaxOpenFiles    = 512
	DefaultCreateIfMissing = true
	DefaultErrorIfExists   = false
	DefaultMetrics         = false
	DefaultMetricsHost     = "localhost"
	DefaultMetricsPort     = uint16(9090)
)

// Config is the decoded form of flags, environment and the optional YAML file.
type Config struct {
	DatabasePath    string         `mapstructure:"db-path" validate:"required,path"`
	LogLevel        utils.LogLevel `mapstructure:"log-level" validate:"oneof=debug info warn error fatal"`
	Colour          bool           `mapstructure:"colour"`
	CacheSizeMB     uint           `mapstructure:"cache-size" validate:"min=8"`
	MaxOpenFiles    int            `mapstructure:"max-open-files" validate:"min=16"`
	CreateIfMissing bool           `mapstructure:"create-if-missing"`
	ErrorIfExists   bool           `mapstructure:"error-if-exists"`
	Metrics         bool           `mapstructure:"metrics"`
	MetricsHost     string         `mapstructure:"metrics-host" validate:"required_if=Metrics true"`
	MetricsPort     uint16         `mapstructure:"metrics-port" validate:"required_if=Metrics true"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		LogLevel:        DefaultLogLevel,
		Colour:          DefaultColour,
		CacheSizeMB:     DefaultCacheSizeMB,
		MaxOpenFiles:    DefaultMaxOpenFiles,
		CreateIfMissing: DefaultCreateIfMissing,
		ErrorIfExists:   DefaultErrorIfExists,
		Metrics:         DefaultMetrics,
		MetricsHost:     DefaultMetricsHost,
		MetricsPort:     DefaultMetricsPort,
	}
}

// Load decodes v on top of the defaults and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()
	decodeHook := viper.DecodeHook(mapstructure.TextUnmarshallerHookFunc())
	if err := v.Unmarshal(cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.Validator().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !c.CreateIfMissing && c.ErrorIfExists {
		return fmt.Errorf("invalid config: error-if-exists requires create-if-missing: %w", db.ErrInvalidArgument)
	}
	return nil
}

func (c *Config) OpenOptions() pebble.OpenOptions {
	return pebble.OpenOptions{
		CreateIfMissing: c.CreateIfMissing,
		ErrorIfExists:   c.ErrorIfExists,
	}
}

// PebbleOptions translates the tuning settings into pebble options.
func (c *Config) PebbleOptions() []pebble.Option {
	return []pebble.Option{
		pebble.WithCacheSize(c.CacheSizeMB),
		pebble.WithMaxOpenFiles(c.MaxOpenFiles),
		pebble.WithLogger(c.Colour),
	}
}

func (c *Config) MetricsAddr() string {
	return fmt.Sprintf("%s:%d", c.MetricsHost, c.MetricsPort)
}
