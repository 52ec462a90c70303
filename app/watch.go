package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay merges the burst of events editors produce on save.
const reloadDelay = 200 * time.Millisecond

// Watch reloads path every time it is written, until ctx is done. The
// directory is watched rather than the file so that editors replacing the
// file by rename are followed.
func (a *App) Watch(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	a.log.Info("watching for changes", "input", abs)

	timer := time.NewTimer(reloadDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				timer.Reset(reloadDelay)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.log.Warn("watch error", "error", err)
		case <-timer.C:
			a.log.Info("input changed, reloading", "input", abs)
			if err := a.Load(ctx, abs); err != nil {
				a.log.Error("reload failed", "input", abs, "error", err)
			}
		}
	}
}
