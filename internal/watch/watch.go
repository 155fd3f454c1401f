// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch triggers sync passes when the library database changes.
// Change events are coalesced: a burst of writes within one window
// produces a single pass, replacing the original per-event debounce with
// an explicit coalescing timer.
package watch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWindow is the coalescing window when none is configured.
const DefaultWindow = 5 * time.Second

// Watcher observes one file (the library database) and invokes OnPass
// once per quiet period after changes.
type Watcher struct {
	// Path is the file to watch. The containing directory is registered
	// with fsnotify so journal/WAL sibling files count as changes too.
	Path string

	// Window is the coalescing window. Zero means DefaultWindow.
	Window time.Duration

	// OnPass runs after the window elapses with no further events. An
	// error from a pass is reported but does not stop the watcher.
	OnPass func(ctx context.Context) error

	// W receives status lines. Nil discards them.
	W io.Writer
}

func (w *Watcher) window() time.Duration {
	if w.Window > 0 {
		return w.Window
	}
	return DefaultWindow
}

func (w *Watcher) logf(format string, args ...any) {
	if w.W != nil {
		fmt.Fprintf(w.W, format, args...)
	}
}

// relevant reports whether an event concerns the watched file or one of
// its sidecar files (zotero.sqlite-wal, -shm, journal).
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return strings.HasPrefix(filepath.Base(ev.Name), filepath.Base(w.Path))
}

// Run watches until the context is cancelled. It returns ctx.Err() on
// cancellation or the watcher setup error.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.Path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.logf("watching %s (window %v)\n", w.Path, w.window())

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	arm := func() {
		if timer == nil {
			timer = time.NewTimer(w.window())
			timerC = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.window())
		timerC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				arm()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logf("watch error: %v\n", err)

		case <-timerC:
			timer = nil
			timerC = nil
			if err := w.OnPass(ctx); err != nil {
				w.logf("sync pass failed: %v\n", err)
			}
		}
	}
}
