package cli

import (
	"context"
	"log/slog"
	"testing"
)

func restoreDefaultLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestSetupLogger(t *testing.T) {
	restoreDefaultLogger(t)
	ctx := context.Background()

	tests := []struct {
		level     string
		debugOn   bool
		warnOn    bool
		errorOnly bool
	}{
		{"debug", true, true, false},
		{"info", false, true, false},
		{"", false, true, false},
		{"error", false, false, true},
		{"bogus", false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := SetupLogger(tt.level)
			if got := logger.Enabled(ctx, slog.LevelDebug); got != tt.debugOn {
				t.Errorf("debug enabled = %v, want %v", got, tt.debugOn)
			}
			if got := logger.Enabled(ctx, slog.LevelWarn); got != tt.warnOn {
				t.Errorf("warn enabled = %v, want %v", got, tt.warnOn)
			}
			if tt.errorOnly && !logger.Enabled(ctx, slog.LevelError) {
				t.Errorf("error level should be enabled")
			}
			if slog.Default() != logger {
				t.Errorf("logger should be installed as default")
			}
		})
	}
}

func TestLoadAndValidateConfigUsesConfiguredLevel(t *testing.T) {
	restoreDefaultLogger(t)
	t.Setenv("DATA_BACKEND", "csv")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, logger := LoadAndValidateConfig()
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected log level from environment, got %q", cfg.LogLevel)
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("expected logger built at the configured debug level")
	}
}
