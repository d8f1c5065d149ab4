package refresh

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/blackwell-systems/upsnap/internal/checker"
	"github.com/blackwell-systems/upsnap/internal/registry"
)

// fakeRunner returns canned values per app name without spawning processes.
type fakeRunner struct {
	mu          sync.Mutex
	values      map[string]registry.Value
	calls       []string
	inFlight    int32
	maxInFlight int32
}

func (f *fakeRunner) Run(ctx context.Context, name, scriptPath string) registry.Value {
	cur := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		max := atomic.LoadInt32(&f.maxInFlight)
		if cur <= max || atomic.CompareAndSwapInt32(&f.maxInFlight, max, cur) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, name)
	v, ok := f.values[name]
	f.mu.Unlock()
	if !ok {
		return registry.None()
	}
	return v
}

// newRegistry builds a registry with the given app names, each backed by a
// real (but unused with fakeRunner) script file.
func newRegistry(t *testing.T, names ...string) *registry.Registry {
	t.Helper()
	r := registry.New()
	dir := t.TempDir()
	for _, name := range names {
		path := filepath.Join(dir, name+".sh")
		if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0755); err != nil {
			t.Fatalf("failed to write script: %v", err)
		}
		if err := r.Insert(name, path); err != nil {
			t.Fatalf("Insert(%s) failed: %v", name, err)
		}
	}
	return r
}

func TestRefreshAllMergesResults(t *testing.T) {
	reg := newRegistry(t, "bat", "fd", "jq")
	runner := &fakeRunner{values: map[string]registry.Value{
		"bat": registry.NewValue("0.24.0"),
		"fd":  registry.NewValue("10.2.0"),
		"jq":  registry.NewValue("1.7.1"),
	}}

	New(runner, 4).RefreshAll(context.Background(), reg)

	want := map[string]string{"bat": "0.24.0", "fd": "10.2.0", "jq": "1.7.1"}
	for name, value := range want {
		app, err := reg.Get(name)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", name, err)
		}
		if app.Latest.String() != value {
			t.Errorf("%s latest = %q, want %q", name, app.Latest.String(), value)
		}
		if !app.Snapshot.IsNone() {
			t.Errorf("%s snapshot = %q, refresh must not touch snapshots", name, app.Snapshot.String())
		}
	}
	if len(runner.calls) != 3 {
		t.Errorf("runner invoked %d times, want 3", len(runner.calls))
	}
}

func TestRefreshAllFailureIsolation(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("checker scripts are POSIX shell scripts")
	}

	dir := t.TempDir()
	good := filepath.Join(dir, "good.sh")
	bad := filepath.Join(dir, "bad.sh")
	if err := os.WriteFile(good, []byte("#!/bin/sh\necho 2.0\n"), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	if err := os.WriteFile(bad, []byte("#!/bin/sh\nexit 1\n"), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	reg := registry.New()
	if err := reg.Insert("good", good); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	if err := reg.Insert("bad", bad); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	// Give the failing app a previous latest to prove it gets overwritten.
	if err := reg.SetLatest("bad", registry.NewValue("1.0")); err != nil {
		t.Fatalf("SetLatest() failed: %v", err)
	}

	runner := &checker.ScriptRunner{Notice: &bytes.Buffer{}}
	New(runner, 2).RefreshAll(context.Background(), reg)

	goodApp, _ := reg.Get("good")
	if goodApp.Latest.String() != "2.0" {
		t.Errorf("good latest = %q, want 2.0", goodApp.Latest.String())
	}
	badApp, _ := reg.Get("bad")
	if !badApp.Latest.IsNone() {
		t.Errorf("bad latest = %q, want none after failed check", badApp.Latest.String())
	}
}

func TestRefreshAllBoundsConcurrency(t *testing.T) {
	names := make([]string, 20)
	values := make(map[string]registry.Value, 20)
	for i := range names {
		names[i] = fmt.Sprintf("app%02d", i)
		values[names[i]] = registry.NewValue("1.0")
	}
	reg := newRegistry(t, names...)
	runner := &fakeRunner{values: values}

	New(runner, 3).RefreshAll(context.Background(), reg)

	if runner.maxInFlight > 3 {
		t.Errorf("observed %d concurrent checks, want at most 3", runner.maxInFlight)
	}
	if len(runner.calls) != 20 {
		t.Errorf("runner invoked %d times, want 20", len(runner.calls))
	}
}

func TestRefreshAllEmptyRegistry(t *testing.T) {
	reg := registry.New()
	runner := &fakeRunner{}

	New(runner, 4).RefreshAll(context.Background(), reg)

	if len(runner.calls) != 0 {
		t.Errorf("runner invoked %d times on empty registry, want 0", len(runner.calls))
	}
}

func TestNewClampsWorkers(t *testing.T) {
	e := New(&fakeRunner{}, 0)
	if e.workers != DefaultWorkers {
		t.Errorf("workers = %d, want %d", e.workers, DefaultWorkers)
	}
	e = New(&fakeRunner{}, -5)
	if e.workers != DefaultWorkers {
		t.Errorf("workers = %d, want %d", e.workers, DefaultWorkers)
	}
}

func TestMeasureDoesNotMutateRegistry(t *testing.T) {
	reg := newRegistry(t, "jq")
	runner := &fakeRunner{values: map[string]registry.Value{
		"jq": registry.NewValue("1.7.1"),
	}}
	e := New(runner, 1)

	app, _ := reg.Get("jq")
	v := e.Measure(context.Background(), app)

	if v.String() != "1.7.1" {
		t.Errorf("Measure() = %q, want 1.7.1", v.String())
	}
	if !app.Latest.IsNone() {
		t.Error("Measure() must not store the value")
	}
}
