// Package config loads seqrun configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration of the seqrun command.
type Config struct {
	// Log holds logging configuration.
	Log LogConfig `mapstructure:"log"`

	// FrameInterval enables the frame handler when positive.
	FrameInterval time.Duration `mapstructure:"frame_interval"`

	// Timeout bounds a whole script run; zero means no limit.
	Timeout time.Duration `mapstructure:"timeout"`

	// Script is the sequence to run, one entry per effect.
	Script []StepConfig `mapstructure:"script"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: console or json
	Format string `mapstructure:"format"`
	// Outputs: stdout, stderr, or file paths
	Outputs []string `mapstructure:"outputs"`

	// Rotation controls file rotation when writing to files
	Rotation RotationConfig `mapstructure:"rotation"`
	// Development toggles development-friendly logging options
	Development bool `mapstructure:"development"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Step types understood in a script.
const (
	StepDelay    = "delay"
	StepParallel = "parallel"
	StepFrame    = "frame"
	StepLog      = "log"
)

// StepConfig is one entry of a script.
type StepConfig struct {
	// Type is one of delay, parallel, frame or log.
	Type string `mapstructure:"type"`
	// Duration is the wait of a delay step.
	Duration time.Duration `mapstructure:"duration"`
	// Durations are the waits a parallel step runs at once.
	Durations []time.Duration `mapstructure:"durations"`
	// Message is the text of a log step.
	Message string `mapstructure:"message"`
}

// Default returns a Config populated with defaults and an empty script.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:       "info",
			Format:      "console",
			Outputs:     []string{"stderr"},
			Development: false,
			Rotation: RotationConfig{
				Enable:     false,
				Filename:   "logs/seqrun.log",
				MaxSizeMB:  50,
				MaxBackups: 3,
				MaxAgeDays: 28,
				Compress:   true,
			},
		},
	}
}

// Load reads configuration from path when non-empty, otherwise from
// seqrun.yaml in the working directory, ./configs or ~/.seqrun, and
// applies environment overrides. Environment variables use the prefix
// SEQRUN with `.` and `-` replaced by `_`, e.g. SEQRUN_LOG_LEVEL=debug.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SEQRUN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.filename", cfg.Log.Rotation.Filename)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)
	v.SetDefault("frame_interval", cfg.FrameInterval)
	v.SetDefault("timeout", cfg.Timeout)

	if path == "" {
		if envPath := os.Getenv("SEQRUN_CONFIG"); envPath != "" {
			path = envPath
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("seqrun")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".seqrun"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if len(c.Log.Outputs) == 0 {
		c.Log.Outputs = []string{"stderr"}
	}
	if c.FrameInterval < 0 {
		return fmt.Errorf("invalid frame_interval: %s", c.FrameInterval)
	}

	for i := range c.Script {
		st := &c.Script[i]
		st.Type = strings.ToLower(strings.TrimSpace(st.Type))
		switch st.Type {
		case StepDelay:
			if st.Duration < 0 {
				return fmt.Errorf("script[%d]: negative duration", i)
			}
		case StepParallel:
			if len(st.Durations) == 0 {
				return fmt.Errorf("script[%d]: parallel step without durations", i)
			}
		case StepFrame:
			if c.FrameInterval == 0 {
				return fmt.Errorf("script[%d]: frame step requires frame_interval", i)
			}
		case StepLog:
		default:
			return fmt.Errorf("script[%d]: unknown step type %q", i, st.Type)
		}
	}
	return nil
}
