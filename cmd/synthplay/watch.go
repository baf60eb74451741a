package main

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

type controller interface {
	ControlChange(id string, value any) error
}

// applyPatch sends the live parameters of next to the engine and returns
// the fields that only take effect after a restart.
func applyPatch(c controller, prev, next *Patch) ([]string, error) {
	var errs []error
	for _, cc := range next.Controls() {
		if err := c.ControlChange(cc.id, cc.value); err != nil {
			errs = append(errs, err)
		}
	}

	return prev.Structural(next), errors.Join(errs...)
}

// watchPatch reloads the patch file whenever it changes and applies it to
// c. It returns when ctx is done.
//
// The directory is watched rather than the file so that editors which
// replace the file on save are still seen.
func watchPatch(ctx context.Context, path string, c controller, current Patch) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("watching patch", "path", abs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Name != abs || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			next, err := LoadPatch(abs)
			if err != nil {
				logger.Warn("patch reload failed", "path", abs, "err", err)
				continue
			}

			restart, err := applyPatch(c, &current, &next)
			if err != nil {
				logger.Warn("patch partially applied", "err", err)
			}

			if len(restart) > 0 {
				logger.Warn("patch fields need a restart", "fields", restart)
			}

			logger.Info("patch reloaded", "path", abs)
			current = next
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			logger.Warn("watcher error", "err", err)
		}
	}
}
