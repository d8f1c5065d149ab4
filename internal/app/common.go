package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/upsnap/internal/checker"
	"github.com/blackwell-systems/upsnap/internal/datafile"
	"github.com/blackwell-systems/upsnap/internal/refresh"
	"github.com/blackwell-systems/upsnap/internal/registry"
	"github.com/blackwell-systems/upsnap/internal/store"
)

// getDataDir returns the data directory, using the flag value or the
// platform default, creating it if needed.
func getDataDir() (string, error) {
	dir := dataDirFlag
	if dir == "" {
		var err error
		dir, err = datafile.DefaultDir()
		if err != nil {
			return "", err
		}
	}
	if err := datafile.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// withRegistry loads the registry, runs fn against it, and always writes
// the registry back afterwards — also on fn's error paths, so state changes
// made before a failure survive. A save failure is reported to stderr but
// never overrides fn's own error: by the time the save runs, the command's
// outcome is already decided.
func withRegistry(fn func(reg *registry.Registry) error) error {
	dir, err := getDataDir()
	if err != nil {
		return fmt.Errorf("failed to get data directory: %w", err)
	}
	path := filepath.Join(dir, datafile.FileName)

	reg, err := datafile.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	fnErr := fn(reg)

	if err := datafile.Save(path, reg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to save registry: %v\n", err)
	}

	return fnErr
}

// newEngine builds the refresh engine from the global flags.
func newEngine() *refresh.Engine {
	return refresh.New(checker.New(timeoutFlag), jobsFlag)
}

// openHistory opens the observation history database, creating the schema
// on first use. The history is auxiliary: on failure a warning is printed
// and nil is returned, and the command proceeds without recording.
func openHistory() *store.Store {
	dir, err := getDataDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history unavailable: %v\n", err)
		return nil
	}

	st, err := store.New(filepath.Join(dir, store.FileName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history unavailable: %v\n", err)
		return nil
	}
	if err := st.CreateSchema(); err != nil {
		st.Close()
		fmt.Fprintf(os.Stderr, "warning: history unavailable: %v\n", err)
		return nil
	}
	return st
}

// closeHistory closes a store obtained from openHistory, tolerating nil.
func closeHistory(st *store.Store) {
	if st != nil {
		st.Close()
	}
}

// record appends an observation to the history, tolerating a nil store.
func record(st *store.Store, name string, value registry.Value, kind string) {
	if st == nil {
		return
	}
	if err := st.RecordObservation(name, value, kind); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record observation: %v\n", err)
	}
}
