package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestZapLoggerWritesLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newZapLogger(&buf)

	logger.Info("emit committed", "config_id", "vault", "amount", 5)
	logger.WithContext(context.Background()).Warn("config cache eviction failed", "error", "boom")
	logger.Trace("lock acquired")
	if err := logger.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 log lines, got %d: %q", len(lines), buf.String())
	}
	for i, want := range [][]string{
		{"INFO", "emit committed", `"config_id": "vault"`, `"amount": 5`},
		{"WARN", "config cache eviction failed", `"error": "boom"`},
		{"DEBUG", "lock acquired"},
	} {
		for _, fragment := range want {
			if !strings.Contains(lines[i], fragment) {
				t.Fatalf("line %d %q missing %q", i, lines[i], fragment)
			}
		}
	}
}

func TestVerboseFlagLogsToStderr(t *testing.T) {
	dsn := testDSN(t)
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs([]string{"--dsn", dsn, "--verbose", "init", "--as", "primary",
		"--guardian", "guard", "--collateral", "XAU", "--backing", "1000", "--max-supply", "1000"})
	if err := root.Execute(); err != nil {
		t.Fatalf("verbose init: %v", err)
	}
	if !strings.Contains(stderr.String(), "INFO") {
		t.Fatalf("expected verbose run to write info lines to stderr, got %q", stderr.String())
	}
}
