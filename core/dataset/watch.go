package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"chordprep/core/annotation"
	"chordprep/logger"

	"github.com/fsnotify/fsnotify"
)

// Watcher triggers a callback once the corpus directories have been quiet for
// a while after a waveform or annotation file changed.
type Watcher struct {
	Dirs  []string
	Quiet time.Duration
	// Tick is how often pending changes are checked. Defaults to Quiet/4.
	Tick time.Duration
}

func NewWatcher(quiet time.Duration, dirs ...string) *Watcher {
	return &Watcher{Dirs: dirs, Quiet: quiet}
}

func isCorpusFile(name string) bool {
	return strings.HasSuffix(name, WaveSuffix) || filepath.Ext(name) == annotation.Ext
}

// Run blocks until ctx is done, calling onChange after each burst of changes.
// A failing onChange is logged and watching goes on.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, d := range w.Dirs {
		if err := watcher.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}

	tick := w.Tick
	if tick <= 0 {
		tick = w.Quiet / 4
	}
	if tick <= 0 {
		tick = 50 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	var lastChange time.Time
	pending := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 || !isCorpusFile(event.Name) {
				continue
			}
			logger.Debug("corpus changed",
				logger.String("file", event.Name),
				logger.String("op", event.Op.String()))
			lastChange = time.Now()
			pending = true

		case <-ticker.C:
			if !pending || time.Since(lastChange) < w.Quiet {
				continue
			}
			pending = false
			if err := onChange(ctx); err != nil {
				logger.Error("rebuild after corpus change failed", logger.ErrorField(err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("corpus watcher error", logger.ErrorField(err))
		}
	}
}
