// Package config loads tenmactl settings from a YAML file, TENMA_ prefixed
// environment variables and command line flags bound through viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// TENMA_SERIAL_PORT for serial.port.
const EnvPrefix = "TENMA"

// SerialConfig selects the port the load is attached to.
type SerialConfig struct {
	Port     string        `mapstructure:"port"`
	BaudRate int           `mapstructure:"baudRate"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SessionConfig controls the battery logger.
type SessionConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	Duration     time.Duration `mapstructure:"duration"` // Zero runs until the load switches off
	Output       string        `mapstructure:"output"`   // CSV path
	EnableOutput bool          `mapstructure:"enableOutput"`
}

// LumberjackConfig configures the rolling log file.
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"` // Empty disables the file
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig sets the level and destinations of diagnostics.
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig exposes session gauges over HTTP.
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Addr   string `mapstructure:"addr"`
	Path   string `mapstructure:"path"`
}

// RedisConfig publishes each sample to a channel.
type RedisConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	Channel     string        `mapstructure:"channel"`
	DialTimeout time.Duration `mapstructure:"dialTimeout"`
}

// ChartConfig sizes the live terminal chart.
type ChartConfig struct {
	Enable bool `mapstructure:"enable"`
	Width  int  `mapstructure:"width"`
	Height int  `mapstructure:"height"`
}

// Config is the top level configuration.
type Config struct {
	Serial  SerialConfig  `mapstructure:"serial"`
	Session SessionConfig `mapstructure:"session"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Chart   ChartConfig   `mapstructure:"chart"`
}

// NewViper returns a viper instance with defaults and environment
// overrides installed. Callers may bind flags to it before Load.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path into v and decodes the result. With an empty path it
// looks for tenma.yaml in the working directory and carries on with
// defaults when there is none; an explicit path must exist.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("tenma")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("serial.port", "COM4")
	v.SetDefault("serial.baudRate", 9600)
	v.SetDefault("serial.timeout", "1s")

	v.SetDefault("session.interval", "1s")
	v.SetDefault("session.duration", "0s")
	v.SetDefault("session.output", "battery_log.csv")
	v.SetDefault("session.enableOutput", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 10)
	v.SetDefault("logging.file.maxBackups", 3)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", false)

	v.SetDefault("metrics.enable", false)
	v.SetDefault("metrics.addr", ":9100")
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "tenma:samples")
	v.SetDefault("redis.dialTimeout", "5s")

	v.SetDefault("chart.enable", true)
	v.SetDefault("chart.width", 60)
	v.SetDefault("chart.height", 15)
}
