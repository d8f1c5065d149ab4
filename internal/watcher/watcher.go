// Package watcher implements watch mode: it observes the checker scripts of
// all registered apps and re-measures an app as soon as its script changes
// on disk. Useful while iterating on a checker script — the report updates
// live instead of waiting for the next manual refresh.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blackwell-systems/upsnap/internal/refresh"
	"github.com/blackwell-systems/upsnap/internal/registry"
)

// debounceWindow swallows the burst of write events editors emit for a
// single save.
const debounceWindow = 500 * time.Millisecond

// Watcher re-measures apps when their checker scripts change.
type Watcher struct {
	reg    *registry.Registry
	engine *refresh.Engine
	fw     *fsnotify.Watcher

	// onMeasure is called after each triggered measurement has been
	// stored as the app's latest value.
	onMeasure func(app *registry.App)

	// byPath maps a canonical script path to the app it measures.
	byPath map[string]string

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

// New builds a watcher over every script in the registry. The directories
// containing the scripts are watched (not the files themselves) so that
// editors replacing files via rename are still observed.
func New(reg *registry.Registry, engine *refresh.Engine, onMeasure func(app *registry.App)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}

	w := &Watcher{
		reg:       reg,
		engine:    engine,
		fw:        fw,
		onMeasure: onMeasure,
		byPath:    make(map[string]string),
		lastSeen:  make(map[string]time.Time),
	}

	dirs := make(map[string]bool)
	for _, app := range reg.All() {
		w.byPath[app.ScriptPath] = app.Name
		dirs[filepath.Dir(app.ScriptPath)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	return w, nil
}

// Run processes filesystem events until ctx is canceled or the event stream
// closes. Watch errors are reported to stderr and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watcher: %v\n", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

// handleEvent re-measures the app whose script was written or recreated.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	name, ok := w.byPath[filepath.Clean(event.Name)]
	if !ok {
		return
	}
	if !w.shouldTrigger(event.Name) {
		return
	}

	app, err := w.reg.Get(name)
	if err != nil {
		return
	}

	value := w.engine.Measure(ctx, app)
	if err := w.reg.SetLatest(name, value); err != nil {
		return
	}
	if w.onMeasure != nil {
		w.onMeasure(app)
	}
}

// shouldTrigger rate-limits measurements per script path.
func (w *Watcher) shouldTrigger(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	if last, ok := w.lastSeen[path]; ok && now.Sub(last) < debounceWindow {
		return false
	}
	w.lastSeen[path] = now
	return true
}
