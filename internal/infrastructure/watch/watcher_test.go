package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/goleak"
)

func startWatcher(t *testing.T, path string) (<-chan ChangeEvent, context.CancelFunc, <-chan error) {
	t.Helper()
	events := make(chan ChangeEvent, 16)
	w, err := NewFileWatcher(path, 30*time.Millisecond, func(e ChangeEvent) {
		events <- e
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()
	return events, cancel, done
}

func stopWatcher(t *testing.T, cancel context.CancelFunc, done <-chan error) {
	t.Helper()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after context cancellation")
	}
}

func TestFileWatcher_DetectsWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "studyflow.yaml")
	if err := os.WriteFile(path, []byte("ai:\n  provider: mock\n"), 0600); err != nil {
		t.Fatal(err)
	}

	events, cancel, done := startWatcher(t, path)

	if err := os.WriteFile(path, []byte("ai:\n  provider: gemini\n"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-events:
		if e.Path != path {
			t.Errorf("path = %q, want %q", e.Path, path)
		}
		if e.Change == "" {
			t.Error("expected a non-empty change type")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change event")
	}

	stopWatcher(t, cancel, done)
}

func TestFileWatcher_IgnoresSiblings(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "studyflow.yaml")
	events, cancel, done := startWatcher(t, path)

	for _, name := range []string{"other.yaml", ".studyflow.yaml.swp", "studyflow.yaml~"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case e := <-events:
		t.Errorf("unexpected event %+v", e)
	case <-time.After(150 * time.Millisecond):
	}

	if err := os.WriteFile(path, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	select {
	case e := <-events:
		if e.Path != path {
			t.Errorf("path = %q, want %q", e.Path, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected an event once the watched file was created")
	}

	stopWatcher(t, cancel, done)
}

func TestNewFileWatcher_MissingDirectory(t *testing.T) {
	_, err := NewFileWatcher(filepath.Join(t.TempDir(), "nope", "studyflow.yaml"), 0, nil)
	if err == nil {
		t.Fatal("expected error for a missing directory")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		op    fsnotify.Op
		want  Change
		known bool
	}{
		{fsnotify.Create, Created, true},
		{fsnotify.Write, Written, true},
		{fsnotify.Create | fsnotify.Write, Created, true},
		{fsnotify.Remove, Removed, true},
		{fsnotify.Rename, Renamed, true},
		{fsnotify.Chmod, "", false},
	}
	for _, tt := range tests {
		got, known := classify(tt.op)
		if got != tt.want || known != tt.known {
			t.Errorf("classify(%v) = (%q, %v), want (%q, %v)", tt.op, got, known, tt.want, tt.known)
		}
	}
	if !Removed.Gone() || !Renamed.Gone() || Written.Gone() {
		t.Error("Gone should hold only for remove and rename")
	}
}
