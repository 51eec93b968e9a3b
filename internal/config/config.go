package config

import (
	"flag"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/vitalguard/vitalguard/internal/errors"
)

// Defaults for a monitoring session. The endpoint default matches the local
// wearable relay's serving address.
const (
	DefaultEndpoint           = "http://localhost:8000/heart-rate-data"
	DefaultPollingInterval    = 1000 // milliseconds
	DefaultRetryAttempts      = 5
	DefaultRetryDelay         = 2000 // milliseconds
	DefaultHeartRateThreshold = 120.0
	DefaultCountdownSeconds   = 30
	DefaultLogLevel           = "info"
)

type Config struct {
	Endpoint           string  `mapstructure:"endpoint"`
	APIKey             string  `mapstructure:"api_key"`
	PollingInterval    int     `mapstructure:"polling_interval"` // milliseconds
	RetryAttempts      int     `mapstructure:"retry_attempts"`
	RetryDelay         int     `mapstructure:"retry_delay"` // milliseconds
	HeartRateThreshold float64 `mapstructure:"heart_rate_threshold"`
	CountdownSeconds   int     `mapstructure:"countdown_seconds"`
	DistressEnabled    bool    `mapstructure:"distress_enabled"`
	FallEnabled        bool    `mapstructure:"fall_enabled"`
	LogLevel           string  `mapstructure:"log_level"`
	Telemetry          bool    `mapstructure:"telemetry"`
	TelemetryDB        string  `mapstructure:"telemetry_db"`
	Debug              bool    `mapstructure:"debug"`
	Verbose            bool    `mapstructure:"verbose"`
}

// flagToKey maps dashed flag names onto config keys.
var flagToKey = map[string]string{
	"endpoint":         "endpoint",
	"polling-interval": "polling_interval",
	"threshold":        "heart_rate_threshold",
	"countdown":        "countdown_seconds",
	"log-level":        "log_level",
	"telemetry":        "telemetry",
	"debug":            "debug",
	"verbose":          "verbose",
}

func Load() (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	v.SetDefault("endpoint", DefaultEndpoint)
	v.SetDefault("api_key", "")
	v.SetDefault("polling_interval", DefaultPollingInterval)
	v.SetDefault("retry_attempts", DefaultRetryAttempts)
	v.SetDefault("retry_delay", DefaultRetryDelay)
	v.SetDefault("heart_rate_threshold", DefaultHeartRateThreshold)
	v.SetDefault("countdown_seconds", DefaultCountdownSeconds)
	v.SetDefault("distress_enabled", true)
	v.SetDefault("fall_enabled", true)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("telemetry", false)
	v.SetDefault("telemetry_db", "")
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)

	fs := flag.NewFlagSet("vitalguard", flag.ContinueOnError)
	fs.String("endpoint", DefaultEndpoint, "Wearable data endpoint URL")
	fs.Int("polling-interval", DefaultPollingInterval, "Polling interval in milliseconds")
	fs.Float64("threshold", DefaultHeartRateThreshold, "Heart rate alert threshold in bpm")
	fs.Int("countdown", DefaultCountdownSeconds, "Escalation countdown in seconds")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.Bool("telemetry", false, "Enable telemetry collection")
	fs.Bool("debug", false, "Enable debugging mode")
	fs.Bool("verbose", false, "Enable verbose logging")

	if err := fs.Parse(programArgs()); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	// Load configuration from file
	if path := os.Getenv("VITALGUARD_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file: "+err.Error())
		}
	} else {
		v.SetConfigName("vitalguard")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errFactory.Wrap(errors.ErrReadConfig, err)
			}
		}
	}

	// Override config file values with command line flags
	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagToKey[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.applyLogLevel()

	return config, nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if c.PollingInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.PollingInterval)
	}
	if c.CountdownSeconds < 1 {
		return errFactory.WithData(errors.ErrInvalidCountdown, c.CountdownSeconds)
	}
	if c.HeartRateThreshold <= 0 {
		return errFactory.WithData(errors.ErrInvalidThreshold, c.HeartRateThreshold)
	}

	return nil
}

func (c *Config) applyLogLevel() {
	switch {
	case c.Debug:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case c.Verbose:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		switch LogLevel(c.LogLevel) {
		case LogLevelDebug:
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		case LogLevelInfo:
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		case LogLevelWarning:
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		case LogLevelError:
			zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		}
	}
}

// programArgs strips the test harness's own flags so Load stays usable from
// package tests.
func programArgs() []string {
	args := make([]string, 0, len(os.Args)-1)
	for _, a := range os.Args[1:] {
		if strings.HasPrefix(a, "-test.") || strings.HasPrefix(a, "--test.") {
			continue
		}
		args = append(args, a)
	}

	return args
}
