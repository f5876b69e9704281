// Package cli provides shared formatting helpers for the newtcheck CLI.
package cli

import (
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// Green wraps s in ANSI green when color is enabled.
func Green(s string) string { return green(s) }

// Yellow wraps s in ANSI yellow when color is enabled.
func Yellow(s string) string { return yellow(s) }

// Red wraps s in ANSI red when color is enabled.
func Red(s string) string { return red(s) }

// Bold wraps s in ANSI bold when color is enabled.
func Bold(s string) string { return bold(s) }

// Dim wraps s in ANSI dim when color is enabled.
func Dim(s string) string { return dim(s) }

// SetColor forces color output on or off.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}

// ColorFor enables color only when w is a terminal and NO_COLOR is unset
// (per no-color.org).
func ColorFor(w io.Writer) {
	SetColor(os.Getenv("NO_COLOR") == "" && IsTerminal(w))
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DotPad pads name with dots to the given width.
// Example: DotPad("leaf1", 12) → "leaf1 ......"
func DotPad(name string, width int) string {
	if width <= 0 || len(name) >= width-1 {
		return name
	}
	dots := width - len(name) - 1
	return name + " " + strings.Repeat(".", dots)
}
