// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package netprofile

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Change describes one profile file event.
type Change struct {
	Name    string
	Removed bool
}

// Watcher reports changes to profile files in one directory.
// Subdirectories and hidden files (including Store's temporaries) are
// ignored.
type Watcher struct {
	dir     string
	watcher *fsnotify.Watcher
	logger  *slog.Logger
}

// NewWatcher starts watching dir. The directory must exist.
func NewWatcher(dir string, logger *slog.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating profile watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	return &Watcher{dir: dir, watcher: watcher, logger: logger}, nil
}

// Run delivers changes to onChange until ctx is cancelled or the
// watcher is closed. onChange runs on the Run goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func(Change)) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			change, relevant := w.classify(event)
			if !relevant {
				continue
			}
			w.logger.Debug("profile changed", "profile", change.Name, "op", event.Op.String())
			onChange(change)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("profile watcher error", "error", err)
		}
	}
}

func (w *Watcher) classify(event fsnotify.Event) (Change, bool) {
	if filepath.Dir(event.Name) != filepath.Clean(w.dir) {
		return Change{}, false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return Change{}, false
	}
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return Change{Name: name, Removed: true}, true
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		return Change{Name: name}, true
	}
	return Change{}, false
}

// Close stops the watcher. A running Run returns.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
