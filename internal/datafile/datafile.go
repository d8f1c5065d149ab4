// Package datafile persists the registry to the tab-delimited data file.
//
// The on-disk layout is one line per app with four tab-separated fields:
//
//	name \t snapshotValue \t latestValue \t scriptPath \t
//
// The literal token NONE marks an absent snapshot/latest value; any other
// token is taken verbatim. The trailing tab is written for compatibility
// with existing data files but is not required when parsing. This format is
// the tool's only persisted registry state and must stay stable: there is
// no schema version marker, so any change is a breaking change.
package datafile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/blackwell-systems/upsnap/internal/registry"
)

// noneToken is the on-disk sentinel for an absent value. It exists only in
// this package; the in-memory model uses registry.Value's typed absence.
const noneToken = "NONE"

// FileName is the registry data file name inside the data directory.
const FileName = "data"

// DefaultDir returns the per-user data directory for upsnap, honoring
// XDG_DATA_HOME and falling back to the platform convention. The directory
// is not created here; EnsureDir does that on first write.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "upsnap"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "upsnap"), nil
	case "windows":
		if appData := os.Getenv("AppData"); appData != "" {
			return filepath.Join(appData, "upsnap"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "upsnap"), nil
	default:
		return filepath.Join(home, ".local", "share", "upsnap"), nil
	}
}

// EnsureDir creates the data directory if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return nil
}

// Load reads the data file into a fresh registry. A missing file is not an
// error: it yields an empty registry (first run). A malformed line fails
// the whole load — partially recovering a corrupt file would silently drop
// tracked apps on the next save.
func Load(path string) (*registry.Registry, error) {
	reg := registry.New()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return reg, nil
		}
		return nil, fmt.Errorf("failed to open data file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}

		app, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		reg.Restore(app)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read data file %s: %w", path, err)
	}

	return reg, nil
}

// parseLine decodes one data file line. Fields beyond the fourth (from the
// historical trailing tab) are tolerated and ignored.
func parseLine(line string) (*registry.App, error) {
	fields := strings.Split(line, "\t")
	// Drop the trailing empty field produced by the trailing tab.
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	if len(fields) < 4 {
		return nil, fmt.Errorf("malformed line: got %d fields, want 4 (name, snapshot, latest, script path)", len(fields))
	}

	return &registry.App{
		Name:       fields[0],
		Snapshot:   decodeValue(fields[1]),
		Latest:     decodeValue(fields[2]),
		ScriptPath: fields[3],
	}, nil
}

// Save writes the whole registry to the data file, replacing its previous
// contents. The write goes to a temp file in the same directory followed by
// a rename, so a crash mid-save leaves the old file intact.
func Save(path string, reg *registry.Registry) error {
	var sb strings.Builder
	for _, app := range reg.All() {
		if err := checkField("app name", app.Name); err != nil {
			return err
		}
		if err := checkField("script path", app.ScriptPath); err != nil {
			return err
		}
		snapshot, err := encodeValue(app.Snapshot)
		if err != nil {
			return fmt.Errorf("snapshot value of %s: %w", app.Name, err)
		}
		latest, err := encodeValue(app.Latest)
		if err != nil {
			return fmt.Errorf("latest value of %s: %w", app.Name, err)
		}
		fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\t\n", app.Name, snapshot, latest, app.ScriptPath)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, FileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp data file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(sb.String()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close data file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace data file %s: %w", path, err)
	}

	return nil
}

// decodeValue maps the NONE token to the absent value.
func decodeValue(token string) registry.Value {
	if token == noneToken {
		return registry.None()
	}
	return registry.NewValue(token)
}

// encodeValue maps an absent value to the NONE token. A known value that
// cannot be represented in the line format is rejected rather than written
// corrupted.
func encodeValue(v registry.Value) (string, error) {
	if v.IsNone() {
		return noneToken, nil
	}
	if err := checkField("value", v.String()); err != nil {
		return "", err
	}
	return v.String(), nil
}

// checkField rejects strings that would break the tab-and-newline framing.
func checkField(what, s string) error {
	if strings.ContainsAny(s, "\t\n") {
		return fmt.Errorf("%s %q contains a tab or newline and cannot be stored", what, s)
	}
	return nil
}
