// Package output renders upsnap's terminal report tables.
//
// Tables use ASCII columns and ANSI color codes: app names in yellow, value
// columns in green when the latest observation matches the accepted
// snapshot and in red when an update is pending. Color is purely visual —
// scripts consuming the output should parse the columns, not the colors.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/upsnap/internal/registry"
	"github.com/blackwell-systems/upsnap/internal/store"
)

// ANSI color codes for the report table.
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// noneDisplay is shown in place of an absent value.
const noneDisplay = "NONE"

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// displayValue returns the terminal representation of a value.
func displayValue(v registry.Value) string {
	if v.IsNone() {
		return noneDisplay
	}
	return v.String()
}

// RenderAppTable renders the report of all tracked apps. Value columns are
// green when snapshot and latest agree (up to date) and red when they
// differ. Apps arrive sorted from the registry.
func RenderAppTable(apps []*registry.App) string {
	if len(apps) == 0 {
		return "No apps registered. Add one with 'upsnap insert <name> <script>'.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-20s %-18s %-18s %s\n",
		"App", "Snapshot", "Latest", "Script"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	for _, app := range apps {
		valueColor := colorGreen
		if !app.UpToDate() {
			valueColor = colorRed
		}

		snapshot := displayValue(app.Snapshot)
		latest := displayValue(app.Latest)

		sb.WriteString(fmt.Sprintf("%s %s %s %s\n",
			pad(colorize(colorYellow, truncate(app.Name, 20)), truncate(app.Name, 20), 20),
			pad(colorize(valueColor, truncate(snapshot, 18)), truncate(snapshot, 18), 18),
			pad(colorize(valueColor, truncate(latest, 18)), truncate(latest, 18), 18),
			colorize(colorGray, app.ScriptPath)))
	}

	return sb.String()
}

// RenderHistoryTable renders recent observations for one app, newest first.
func RenderHistoryTable(observations []*store.Observation) string {
	if len(observations) == 0 {
		return "No observations recorded.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-18s %-10s %-9s %s\n",
		"Value", "Kind", "Outcome", "Observed"))
	sb.WriteString(strings.Repeat("─", 60))
	sb.WriteString("\n")

	for _, obs := range observations {
		value := obs.Value
		outcome := "ok"
		outcomeColor := colorGreen
		if !obs.OK {
			value = noneDisplay
			outcome = "failed"
			outcomeColor = colorRed
		}

		sb.WriteString(fmt.Sprintf("%-18s %-10s %s %s\n",
			truncate(value, 18),
			obs.Kind,
			pad(colorize(outcomeColor, outcome), outcome, 9),
			formatRelativeTime(obs.ObservedAt)))
	}

	return sb.String()
}

// pad left-aligns colored in a width-wide column. Padding is computed from
// the plain text so ANSI escape bytes do not distort column widths.
func pad(colored, plain string, width int) string {
	if len(plain) >= width {
		return colored
	}
	return colored + strings.Repeat(" ", width-len(plain))
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	case diff < 30*24*time.Hour:
		weeks := int(diff.Hours() / 24 / 7)
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		months := int(diff.Hours() / 24 / 30)
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	}
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
