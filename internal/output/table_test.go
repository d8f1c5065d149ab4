package output

import (
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/upsnap/internal/registry"
	"github.com/blackwell-systems/upsnap/internal/store"
)

func TestRenderAppTableEmpty(t *testing.T) {
	out := RenderAppTable(nil)
	if !strings.Contains(out, "No apps registered") {
		t.Errorf("RenderAppTable(nil) = %q, want the empty-registry hint", out)
	}
}

func TestRenderAppTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	apps := []*registry.App{
		{
			Name:       "bat",
			ScriptPath: "/opt/checks/bat",
			Snapshot:   registry.NewValue("0.24.0"),
			Latest:     registry.NewValue("0.25.0"),
		},
		{
			Name:       "jq",
			ScriptPath: "/opt/checks/jq",
			Snapshot:   registry.NewValue("1.7.1"),
			Latest:     registry.NewValue("1.7.1"),
		},
		{
			Name:       "zoxide",
			ScriptPath: "/opt/checks/zoxide",
		},
	}

	out := RenderAppTable(apps)

	for _, want := range []string{"App", "Snapshot", "Latest", "Script"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q header:\n%s", want, out)
		}
	}
	for _, want := range []string{"bat", "0.24.0", "0.25.0", "jq", "1.7.1", "/opt/checks/jq"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	// Absent values render as the NONE token.
	if !strings.Contains(out, "NONE") {
		t.Errorf("table should render absent values as NONE:\n%s", out)
	}
	// With NO_COLOR set, no escape codes leak into the output.
	if strings.Contains(out, "\033[") {
		t.Errorf("table contains ANSI escapes despite NO_COLOR:\n%q", out)
	}

	// One line per app plus header and rule.
	lines := strings.Count(strings.TrimRight(out, "\n"), "\n") + 1
	if lines != 5 {
		t.Errorf("table has %d lines, want 5:\n%s", lines, out)
	}
}

func TestRenderHistoryTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	observations := []*store.Observation{
		{
			App:        "jq",
			Value:      "1.7.1",
			OK:         true,
			Kind:       store.KindSnapshot,
			ObservedAt: time.Now().Add(-2 * time.Hour),
		},
		{
			App:        "jq",
			OK:         false,
			Kind:       store.KindRefresh,
			ObservedAt: time.Now().Add(-3 * 24 * time.Hour),
		},
	}

	out := RenderHistoryTable(observations)

	for _, want := range []string{"1.7.1", "snapshot", "ok", "failed", "2 hours ago", "3 days ago"} {
		if !strings.Contains(out, want) {
			t.Errorf("history table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHistoryTableEmpty(t *testing.T) {
	out := RenderHistoryTable(nil)
	if !strings.Contains(out, "No observations") {
		t.Errorf("RenderHistoryTable(nil) = %q, want the empty hint", out)
	}
}

func TestFormatRelativeTime(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, "never"},
		{"seconds", time.Now().Add(-30 * time.Second), "just now"},
		{"one minute", time.Now().Add(-90 * time.Second), "1 minute ago"},
		{"hours", time.Now().Add(-5 * time.Hour), "5 hours ago"},
		{"one day", time.Now().Add(-25 * time.Hour), "1 day ago"},
		{"weeks", time.Now().Add(-15 * 24 * time.Hour), "2 weeks ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRelativeTime(tt.t); got != tt.want {
				t.Errorf("formatRelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 20); got != "short" {
		t.Errorf("truncate() = %q, want unchanged", got)
	}
	if got := truncate("a-very-long-app-name-indeed", 10); got != "a-very-..." {
		t.Errorf("truncate() = %q, want a-very-...", got)
	}
}
