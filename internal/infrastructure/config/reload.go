package config

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/bskcorona-github/studyflow/internal/infrastructure/watch"
)

// Watch reloads path whenever it changes on disk and hands every config that
// loads cleanly to apply. A broken file is logged and skipped. Watch blocks
// until ctx is cancelled.
func Watch(ctx context.Context, path string, debounce time.Duration, logger *zap.Logger, apply func(*Config)) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	w, err := watch.NewFileWatcher(path, debounce, func(e watch.ChangeEvent) {
		if e.Change.Gone() {
			return
		}
		cfg, err := Load(path)
		if err != nil {
			logger.Warn("config reload failed", zap.String("path", e.Path), zap.Error(err))
			return
		}
		logger.Info("config reloaded", zap.String("path", e.Path), zap.String("change", string(e.Change)))
		apply(cfg)
	})
	if err != nil {
		return err
	}

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
