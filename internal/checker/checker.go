// Package checker runs a single checker script and normalizes its outcome.
//
// A checker script is any executable that takes no arguments and prints the
// app's current value to stdout. A zero exit status with non-empty trimmed
// output is a successful check; everything else (non-zero exit, empty
// output, a binary that cannot be spawned, a timeout) yields the absent
// value. Check failures are never fatal to the caller — failure handling
// policy lives in internal/refresh.
package checker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/blackwell-systems/upsnap/internal/registry"
)

// Runner measures the current value of an app by its checker script.
// Implementations must be safe for concurrent use: the refresh engine calls
// Run from multiple goroutines.
type Runner interface {
	Run(ctx context.Context, name, scriptPath string) registry.Value
}

// ScriptRunner executes checker scripts as child processes.
type ScriptRunner struct {
	// Timeout bounds a single script invocation. Zero means no timeout.
	Timeout time.Duration

	// Notice receives per-check progress lines ("Checking `jq`... Ok").
	// Defaults to os.Stderr so the report table on stdout stays parseable.
	Notice io.Writer
}

// New returns a ScriptRunner with the given per-invocation timeout,
// reporting progress to os.Stderr.
func New(timeout time.Duration) *ScriptRunner {
	return &ScriptRunner{Timeout: timeout, Notice: os.Stderr}
}

// Run invokes the script with no arguments and waits for it to finish.
// The returned value is the trimmed stdout on success, or the absent value
// on any failure. Failures are reported in the progress notice only.
func (r *ScriptRunner) Run(ctx context.Context, name, scriptPath string) registry.Value {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, scriptPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// A script may spawn children that inherit the output pipes; without a
	// wait delay, Run blocks on pipe EOF until the whole tree exits and the
	// timeout never takes effect.
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	value := strings.TrimSpace(stdout.String())

	switch {
	case err != nil:
		r.notice(name, failureReason(ctx, err, stderr.Bytes()))
		return registry.None()
	case value == "":
		r.notice(name, "Failed (script produced no output)")
		return registry.None()
	default:
		r.notice(name, "Ok")
		return registry.NewValue(value)
	}
}

// notice writes one progress line. Kept on a single line per check so that
// concurrent checks interleave cleanly.
func (r *ScriptRunner) notice(name, outcome string) {
	w := r.Notice
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "Checking `%s`... %s\n", name, outcome)
}

// failureReason turns a script failure into a short human-readable outcome.
// Stderr is surfaced on its first line only; full stderr dumps belong to the
// script author's own debugging, not the refresh report.
func failureReason(ctx context.Context, err error, stderr []byte) string {
	if ctx.Err() == context.DeadlineExceeded {
		return "Failed (timed out)"
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := firstLine(stderr)
		if msg != "" {
			return fmt.Sprintf("Failed (exit status %d: %s)", exitErr.ExitCode(), msg)
		}
		return fmt.Sprintf("Failed (exit status %d)", exitErr.ExitCode())
	}

	// Spawn failure: missing interpreter, permission denied, bad path.
	return fmt.Sprintf("Failed (%v)", err)
}

func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
