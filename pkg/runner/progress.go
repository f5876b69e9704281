package runner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/newtron-network/newtcheck/pkg/check"
	"github.com/newtron-network/newtcheck/pkg/cli"
)

// ProgressReporter receives lifecycle callbacks during a run. UnitEnd calls
// are serialized.
type ProgressReporter interface {
	RunStart(m *Manager, total int)
	UnitEnd(res *check.Result, done, total int)
	RunEnd(m *Manager)
}

type nopProgress struct{}

func (nopProgress) RunStart(*Manager, int)          {}
func (nopProgress) UnitEnd(*check.Result, int, int) {}
func (nopProgress) RunEnd(*Manager)                 {}

// ConsoleProgress prints one line per finished unit. It never rewrites
// lines, so output is safe for pipes and CI logs.
type ConsoleProgress struct {
	W       io.Writer
	Verbose bool

	dotWidth int
}

// NewConsoleProgress creates a ConsoleProgress writing to stderr.
func NewConsoleProgress(verbose bool) *ConsoleProgress {
	return &ConsoleProgress{W: os.Stderr, Verbose: verbose}
}

func (p *ConsoleProgress) RunStart(m *Manager, total int) {
	p.dotWidth = 48
	fmt.Fprintf(p.W, "\nnewtcheck: %d units, run %s\n\n", total, m.RunID)
}

func (p *ConsoleProgress) UnitEnd(res *check.Result, done, total int) {
	tag := fmt.Sprintf("[%d/%d]", done, total)
	padded := cli.DotPad(res.Device+" "+res.Test, p.dotWidth)
	fmt.Fprintf(p.W, "  %-9s %s %s  (%s)\n", tag, padded, ColorStatus(res.Status), formatDuration(res.Duration))
	if p.Verbose && res.Status != check.StatusSuccess {
		for _, msg := range res.Messages {
			fmt.Fprintf(p.W, "            %s\n", cli.Dim(msg))
		}
	}
}

func (p *ConsoleProgress) RunEnd(m *Manager) {
	counts := m.Counts()
	parts := []string{}
	if n := counts[check.StatusSuccess]; n > 0 {
		parts = append(parts, cli.Green(fmt.Sprintf("%d passed", n)))
	}
	if n := counts[check.StatusFailure]; n > 0 {
		parts = append(parts, cli.Red(fmt.Sprintf("%d failed", n)))
	}
	if n := counts[check.StatusError]; n > 0 {
		parts = append(parts, cli.Red(fmt.Sprintf("%d errored", n)))
	}
	if n := counts[check.StatusSkipped]; n > 0 {
		parts = append(parts, cli.Yellow(fmt.Sprintf("%d skipped", n)))
	}

	fmt.Fprintf(p.W, "\n---\n")
	fmt.Fprintf(p.W, "newtcheck: %d units", len(m.Results()))
	if len(parts) > 0 {
		fmt.Fprintf(p.W, ": %s", strings.Join(parts, ", "))
	}
	fmt.Fprintf(p.W, "  (%s)\n\n", formatDuration(m.Duration()))
}

// ColorStatus renders a status in upper case with its color.
func ColorStatus(s check.Status) string {
	label := strings.ToUpper(string(s))
	switch s {
	case check.StatusSuccess:
		return cli.Green(label)
	case check.StatusFailure, check.StatusError:
		return cli.Red(label)
	case check.StatusSkipped:
		return cli.Yellow(label)
	default:
		return label
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	if s == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
