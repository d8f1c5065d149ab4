// Package registry holds the in-memory state of all tracked applications:
// which checker script measures each app, the last value the user accepted
// (snapshot), and the most recently observed value (latest).
package registry

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
)

// ErrNotRegistered is returned when an operation references an app name
// that is not in the registry.
var ErrNotRegistered = errors.New("app is not registered")

// App is one tracked application.
type App struct {
	// Name is the registry key. Unique, immutable once inserted.
	Name string

	// ScriptPath is the absolute, symlink-resolved path to the checker
	// executable. It is canonicalized at insert time.
	ScriptPath string

	// Snapshot is the last value the user explicitly accepted as seen.
	Snapshot Value

	// Latest is the most recently observed value.
	Latest Value
}

// UpToDate reports whether the latest observed value matches the accepted
// snapshot. Exact string comparison — "1.10" and "1.10.0" are different.
func (a *App) UpToDate() bool {
	return a.Snapshot.Equal(a.Latest)
}

// Registry maps app names to their tracked state. It is not safe for
// concurrent use: refresh workers hand results back to a single collector
// which performs all mutation (see internal/refresh).
type Registry struct {
	apps map[string]*App
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{apps: make(map[string]*App)}
}

// Insert registers an app, replacing any existing entry with the same name.
// The script path is resolved to an absolute canonical path; a path that
// does not exist fails the insert and leaves the registry untouched.
// A freshly inserted app has no snapshot and no latest value.
func (r *Registry) Insert(name, scriptPath string) error {
	if name == "" {
		return fmt.Errorf("app name must not be empty")
	}

	resolved, err := filepath.Abs(scriptPath)
	if err != nil {
		return fmt.Errorf("failed to resolve script path %s: %w", scriptPath, err)
	}
	resolved, err = filepath.EvalSymlinks(resolved)
	if err != nil {
		return fmt.Errorf("failed to resolve script path %s: %w", scriptPath, err)
	}

	r.apps[name] = &App{
		Name:       name,
		ScriptPath: resolved,
	}
	return nil
}

// Restore places an app into the registry exactly as loaded from the data
// file, without re-canonicalizing the script path. The stored path was
// canonicalized when the app was first inserted; re-checking it at load
// time would make the whole registry unloadable when one script has been
// deleted since.
func (r *Registry) Restore(app *App) {
	cp := *app
	r.apps[app.Name] = &cp
}

// Get returns the tracked state for name.
func (r *Registry) Get(name string) (*App, error) {
	app, ok := r.apps[name]
	if !ok {
		return nil, fmt.Errorf("app %q: %w", name, ErrNotRegistered)
	}
	return app, nil
}

// SetLatest records a freshly observed value for name.
func (r *Registry) SetLatest(name string, v Value) error {
	app, err := r.Get(name)
	if err != nil {
		return err
	}
	app.Latest = v
	return nil
}

// SetSnapshot accepts a freshly observed value as the new baseline. Both
// the snapshot and latest values are set: a snapshot always re-measures, so
// the two agree immediately after. Accepting an absent value is valid —
// "no value" can itself be the acknowledged state.
func (r *Registry) SetSnapshot(name string, v Value) error {
	app, err := r.Get(name)
	if err != nil {
		return err
	}
	app.Snapshot = v
	app.Latest = v
	return nil
}

// Remove deletes an app from the registry.
func (r *Registry) Remove(name string) error {
	if _, ok := r.apps[name]; !ok {
		return fmt.Errorf("app %q: %w", name, ErrNotRegistered)
	}
	delete(r.apps, name)
	return nil
}

// Len returns the number of tracked apps.
func (r *Registry) Len() int {
	return len(r.apps)
}

// All returns every tracked app sorted by name. Map iteration order is not
// part of the contract; sorting keeps report output stable.
func (r *Registry) All() []*App {
	apps := make([]*App, 0, len(r.apps))
	for _, app := range r.apps {
		apps = append(apps, app)
	}
	sort.Slice(apps, func(i, j int) bool {
		return apps[i].Name < apps[j].Name
	})
	return apps
}
