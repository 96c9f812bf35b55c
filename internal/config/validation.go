package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/brianly1003/breve/internal/domain"
)

// Upper bound for gate delays.
const maxDelayMS = 60000

// Validate validates the configuration.
func Validate(cfg *Config) error {
	if err := validateLogging(&cfg.Logging); err != nil {
		return err
	}

	if err := validateGate(&cfg.Gate); err != nil {
		return err
	}

	if err := validateWatcher(&cfg.Watcher); err != nil {
		return err
	}

	return nil
}

func validateLogging(cfg *LoggingConfig) error {
	if cfg.Level != "" {
		if _, err := zerolog.ParseLevel(cfg.Level); err != nil {
			return domain.NewValidationError("logging.level", fmt.Sprintf("unknown level %q", cfg.Level))
		}
	}

	switch cfg.Format {
	case "", "console", "json":
	default:
		return domain.NewValidationError("logging.format", "must be console or json")
	}
	return nil
}

func validateGate(cfg *GateConfig) error {
	if cfg.ThrottleMS < 0 {
		return domain.NewValidationError("gate.throttle_ms", "cannot be negative")
	}
	if cfg.ThrottleMS > maxDelayMS {
		return domain.NewValidationError("gate.throttle_ms", fmt.Sprintf("cannot exceed %dms", maxDelayMS))
	}
	if cfg.DebounceMS < 0 {
		return domain.NewValidationError("gate.debounce_ms", "cannot be negative")
	}
	if cfg.DebounceMS > maxDelayMS {
		return domain.NewValidationError("gate.debounce_ms", fmt.Sprintf("cannot exceed %dms", maxDelayMS))
	}
	return nil
}

func validateWatcher(cfg *WatcherConfig) error {
	for _, p := range cfg.IgnorePatterns {
		if strings.TrimSpace(p) == "" {
			return domain.NewValidationError("watcher.ignore_patterns", "contains an empty value")
		}
	}

	// An empty path is resolved to the working directory by Load.
	if cfg.Path == "" {
		return nil
	}

	info, err := os.Stat(cfg.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NewValidationError("watcher.path", "does not exist: "+cfg.Path)
		}
		return fmt.Errorf("error accessing watcher.path: %w", err)
	}
	if !info.IsDir() {
		return domain.NewValidationError("watcher.path", "is not a directory: "+cfg.Path)
	}
	return nil
}
