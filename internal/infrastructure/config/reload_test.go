package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestWatchReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)
	clearEnv(t)

	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte("ai:\n  provider: mock\n  model: first\n"), 0600); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 30*time.Millisecond, zap.NewNop(), func(cfg *Config) {
			reloaded <- cfg
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	// A broken file is skipped.
	if err := os.WriteFile(path, []byte("ai:\n  provider: nope\n"), 0600); err != nil {
		t.Fatal(err)
	}
	select {
	case cfg := <-reloaded:
		t.Fatalf("invalid config was applied: %+v", cfg.AI)
	case <-time.After(200 * time.Millisecond):
	}

	if err := os.WriteFile(path, []byte("ai:\n  provider: mock\n  model: second\n"), 0600); err != nil {
		t.Fatal(err)
	}
	select {
	case cfg := <-reloaded:
		if cfg.AI.Model != "second" {
			t.Errorf("model = %q, want second", cfg.AI.Model)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "gone", DefaultFile), 0, nil, func(*Config) {})
	if err == nil {
		t.Fatal("expected error")
	}
}
