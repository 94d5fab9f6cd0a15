// Package output handles formatting CLI output as table, JSON, or compact.
package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Format represents an output format.
type Format int

const (
	// FormatAuto uses the default format (table).
	FormatAuto Format = iota
	// FormatJSON outputs JSON.
	FormatJSON
	// FormatTable outputs a human-readable table.
	FormatTable
	// FormatCompact outputs one-line-per-record compact format.
	FormatCompact
)

// Detect returns the appropriate format based on flags and the configured
// default (PLANWATCH_OUTPUT). Default is table when no explicit format is set.
func Detect(jsonFlag, tableFlag, compactFlag bool, configured string) Format {
	if jsonFlag {
		return FormatJSON
	}
	if compactFlag {
		return FormatCompact
	}
	if tableFlag {
		return FormatTable
	}

	switch configured {
	case "json":
		return FormatJSON
	case "compact", "oneline":
		return FormatCompact
	case "table":
		return FormatTable
	}

	// Default: table.
	return FormatTable
}

// ColorDisabled reports whether colour output was turned off by flag or by
// the NO_COLOR convention.
func ColorDisabled(noColorFlag bool) bool {
	if noColorFlag {
		return true
	}
	_, set := os.LookupEnv("NO_COLOR")
	return set
}

// DisableColor strips all styling from output and switches the terminal
// profile to plain ASCII.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
	plainStyles = true
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	warnStyle = lipgloss.NewStyle()
	statusStyles = map[string]lipgloss.Style{}
	barStyle = lipgloss.NewStyle()
	doneBarStyle = lipgloss.NewStyle()
	offDayStyle = lipgloss.NewStyle()
	todayStyle = lipgloss.NewStyle()
}
