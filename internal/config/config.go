// Package config handles configuration management for breve.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. BREVE_GATE_DEBOUNCE_MS.
const EnvPrefix = "BREVE"

// Config holds all configuration for the application.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Gate    GateConfig    `mapstructure:"gate" yaml:"gate"`
	Watcher WatcherConfig `mapstructure:"watcher" yaml:"watcher"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // console or json
}

// GateConfig holds the default throttle and debounce delays.
type GateConfig struct {
	ThrottleMS int `mapstructure:"throttle_ms" yaml:"throttle_ms"`
	DebounceMS int `mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

// ThrottleDelay returns ThrottleMS as a duration.
func (g GateConfig) ThrottleDelay() time.Duration {
	return time.Duration(g.ThrottleMS) * time.Millisecond
}

// DebounceDelay returns DebounceMS as a duration.
func (g GateConfig) DebounceDelay() time.Duration {
	return time.Duration(g.DebounceMS) * time.Millisecond
}

// WatcherConfig holds file watcher configuration.
type WatcherConfig struct {
	Path           string   `mapstructure:"path" yaml:"path"`
	IgnorePatterns []string `mapstructure:"ignore_patterns" yaml:"ignore_patterns"`
}

// Load loads configuration from files and environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.breve")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// A missing config file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := postProcess(&cfg); err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Gate: GateConfig{
			ThrottleMS: DefaultThrottleMS,
			DebounceMS: DefaultDebounceMS,
		},
		Watcher: WatcherConfig{
			Path:           "",
			IgnorePatterns: append([]string(nil), DefaultWatcherIgnorePatterns...),
		},
	}
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("gate.throttle_ms", d.Gate.ThrottleMS)
	v.SetDefault("gate.debounce_ms", d.Gate.DebounceMS)

	v.SetDefault("watcher.path", d.Watcher.Path)
	v.SetDefault("watcher.ignore_patterns", d.Watcher.IgnorePatterns)
}

// postProcess applies post-processing to configuration.
func postProcess(cfg *Config) error {
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))

	// Empty watcher path means the current directory.
	if cfg.Watcher.Path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		cfg.Watcher.Path = cwd
	}

	absPath, err := filepath.Abs(cfg.Watcher.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve watcher path: %w", err)
	}
	cfg.Watcher.Path = absPath

	return nil
}

// GetConfigDir returns the user config directory for breve.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".breve"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
