package logger

import (
	"context"
	"testing"
)

func TestNewLoggerConsole(t *testing.T) {
	lg, cleanup, err := NewLogger(Config{})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if lg == nil {
		t.Fatal("nil logger")
	}
	lg.Info("console logger up")
	if err := cleanup(context.Background()); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}

func TestNewLoggerJSON(t *testing.T) {
	lg, cleanup, err := NewLogger(Config{JSON: true, Verbose: 1})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	lg.Debug("json logger up")
	if err := cleanup(context.Background()); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("TXLOAD_LOG_QUIET", "true")
	t.Setenv("TXLOAD_LOG_VERBOSE", "2")

	var cfg Config
	if err := cfg.FromEnv(); err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if !cfg.Quiet {
		t.Fatal("Quiet not picked up from environment")
	}
	if cfg.Verbose != 2 {
		t.Fatalf("Verbose = %d, want 2", cfg.Verbose)
	}
}
