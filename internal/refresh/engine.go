// Package refresh fans checker invocations out across all registered apps
// and folds the results back into the registry.
package refresh

import (
	"context"
	"sync"

	"github.com/blackwell-systems/upsnap/internal/checker"
	"github.com/blackwell-systems/upsnap/internal/registry"
)

// DefaultWorkers caps refresh concurrency when the caller does not choose.
const DefaultWorkers = 8

// Engine runs checker scripts for tracked apps. One refresh spawns at most
// `workers` concurrent checks; each check's outcome maps to exactly one app,
// so merge order does not matter.
type Engine struct {
	runner  checker.Runner
	workers int
}

// New returns an engine using the given runner. workers <= 0 selects
// DefaultWorkers.
func New(runner checker.Runner, workers int) *Engine {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Engine{runner: runner, workers: workers}
}

// result pairs an app name with its freshly measured value.
type result struct {
	name  string
	value registry.Value
}

// RefreshAll measures every registered app concurrently and stores each
// outcome as that app's latest value. It returns only when every check has
// completed. A failing check never aborts the batch: the runner coerces all
// per-app failures (non-zero exit, empty output, spawn error, timeout) to
// the absent value, so one broken script cannot block its siblings.
//
// Workers never touch the registry; all mutation happens here after the
// last worker has reported, which keeps the registry lock-free.
func (e *Engine) RefreshAll(ctx context.Context, reg *registry.Registry) {
	apps := reg.All()
	if len(apps) == 0 {
		return
	}

	workers := e.workers
	if workers > len(apps) {
		workers = len(apps)
	}

	jobs := make(chan *registry.App)
	results := make(chan result)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for app := range jobs {
				results <- result{
					name:  app.Name,
					value: e.runner.Run(ctx, app.Name, app.ScriptPath),
				}
			}
		}()
	}

	go func() {
		for _, app := range apps {
			jobs <- app
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	// Collect first, merge after: the merge phase is the only writer.
	measured := make(map[string]registry.Value, len(apps))
	for res := range results {
		measured[res.name] = res.value
	}
	for name, value := range measured {
		// Apps cannot disappear mid-refresh; the registry is only
		// mutated between commands.
		_ = reg.SetLatest(name, value)
	}
}

// Measure runs a single app's checker script and returns the observed
// value without mutating the registry. Used by the get and snapshot paths,
// which decide themselves how to record the result.
func (e *Engine) Measure(ctx context.Context, app *registry.App) registry.Value {
	return e.runner.Run(ctx, app.Name, app.ScriptPath)
}
