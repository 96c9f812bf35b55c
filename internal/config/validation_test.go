package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brianly1003/breve/internal/domain"
)

func TestValidateLogging(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LoggingConfig
		wantErr string
	}{
		{name: "valid", cfg: LoggingConfig{Level: "debug", Format: "json"}},
		{name: "empty", cfg: LoggingConfig{}},
		{name: "trace console", cfg: LoggingConfig{Level: "trace", Format: "console"}},
		{name: "unknown level", cfg: LoggingConfig{Level: "loud"}, wantErr: "logging.level"},
		{name: "unknown format", cfg: LoggingConfig{Format: "xml"}, wantErr: "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateLogging(&tt.cfg)
			checkErr(t, err, tt.wantErr)
		})
	}
}

func TestValidateGate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     GateConfig
		wantErr string
	}{
		{name: "valid", cfg: GateConfig{ThrottleMS: 100, DebounceMS: 100}},
		{name: "zero", cfg: GateConfig{}},
		{name: "max", cfg: GateConfig{ThrottleMS: 60000, DebounceMS: 60000}},
		{name: "negative throttle", cfg: GateConfig{ThrottleMS: -1}, wantErr: "gate.throttle_ms: cannot be negative"},
		{name: "throttle too large", cfg: GateConfig{ThrottleMS: 60001}, wantErr: "gate.throttle_ms: cannot exceed"},
		{name: "negative debounce", cfg: GateConfig{DebounceMS: -5}, wantErr: "gate.debounce_ms: cannot be negative"},
		{name: "debounce too large", cfg: GateConfig{DebounceMS: 99999}, wantErr: "gate.debounce_ms: cannot exceed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateGate(&tt.cfg)
			checkErr(t, err, tt.wantErr)
		})
	}
}

func TestValidateWatcher(t *testing.T) {
	tempDir := t.TempDir()
	file := filepath.Join(tempDir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	tests := []struct {
		name    string
		cfg     WatcherConfig
		wantErr string
	}{
		{name: "directory", cfg: WatcherConfig{Path: tempDir}},
		{name: "empty path", cfg: WatcherConfig{}},
		{name: "missing", cfg: WatcherConfig{Path: filepath.Join(tempDir, "nope")}, wantErr: "does not exist"},
		{name: "file", cfg: WatcherConfig{Path: file}, wantErr: "is not a directory"},
		{name: "blank pattern", cfg: WatcherConfig{IgnorePatterns: []string{".git", " "}}, wantErr: "empty value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateWatcher(&tt.cfg)
			checkErr(t, err, tt.wantErr)
		})
	}
}

func TestValidate_ReturnsValidationError(t *testing.T) {
	cfg := Default()
	cfg.Gate.DebounceMS = -1

	err := Validate(cfg)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error = %v, want *domain.ValidationError", err)
	}
	if verr.Field != "gate.debounce_ms" {
		t.Errorf("Field = %s, want gate.debounce_ms", verr.Field)
	}
}

func TestValidate_Default(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("Validate(Default()) = %v, want nil", err)
	}
}

func checkErr(t *testing.T, err error, wantErr string) {
	t.Helper()
	if wantErr == "" {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		return
	}
	if err == nil {
		t.Errorf("expected error containing %q, got nil", wantErr)
		return
	}
	if !strings.Contains(err.Error(), wantErr) {
		t.Errorf("error = %q, want containing %q", err.Error(), wantErr)
	}
}
