package cli

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const colGap = 2

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Table renders column-aligned rows. Rows are buffered until Flush so column
// widths fit the content; on a terminal, wide cells are wrapped to keep
// each line within the window. Empty tables produce no output.
type Table struct {
	w       io.Writer
	headers []string
	rows    [][]string
	prefix  string
	width   int
}

// NewTableWriter creates a table writing to w. Wrapping is enabled when w
// is a terminal.
func NewTableWriter(w io.Writer, headers ...string) *Table {
	return &Table{
		w:       w,
		headers: headers,
		width:   TerminalWidth(w),
	}
}

// WithPrefix sets a string prepended to each line (headers, divider, rows).
func (t *Table) WithPrefix(prefix string) *Table {
	t.prefix = prefix
	return t
}

// WithWidth sets the maximum line width. Zero disables wrapping.
func (t *Table) WithWidth(width int) *Table {
	t.width = width
	return t
}

// Row buffers a row. Missing trailing cells are empty.
func (t *Table) Row(values ...string) {
	row := make([]string, len(t.headers))
	copy(row, values)
	t.rows = append(t.rows, row)
}

// Flush writes the table. If no rows were added, nothing is printed.
func (t *Table) Flush() {
	if len(t.rows) == 0 {
		return
	}
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visualLen(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], visualLen(cell))
		}
	}
	if t.width > 0 {
		widths = capWidths(widths, t.headers, t.width, visualLen(t.prefix))
	}

	dividers := make([]string, len(t.headers))
	for i, h := range t.headers {
		dividers[i] = strings.Repeat("-", visualLen(h))
	}
	t.writeLine(t.headers, widths)
	t.writeLine(dividers, widths)

	for _, row := range t.rows {
		cells := make([][]string, len(row))
		height := 1
		for i, cell := range row {
			cells[i] = wrapCell(cell, widths[i])
			height = max(height, len(cells[i]))
		}
		for l := 0; l < height; l++ {
			line := make([]string, len(row))
			for i := range row {
				if l < len(cells[i]) {
					line[i] = cells[i][l]
				}
			}
			t.writeLine(line, widths)
		}
	}
	t.rows = nil
}

func (t *Table) writeLine(cells []string, widths []int) {
	var b strings.Builder
	b.WriteString(t.prefix)
	for i, cell := range cells {
		b.WriteString(cell)
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-visualLen(cell)+colGap))
		}
	}
	fmt.Fprintln(t.w, strings.TrimRight(b.String(), " "))
}

// TerminalWidth returns the column count of w, or 0 when w is not a terminal.
func TerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !IsTerminal(w) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// visualLen is the display width of s, ignoring ANSI escapes.
func visualLen(s string) int {
	return runewidth.StringWidth(ansiRegexp.ReplaceAllString(s, ""))
}

// capWidths shrinks the widest columns until the table fits termWidth.
// No column shrinks below its header width.
func capWidths(widths []int, headers []string, termWidth, prefix int) []int {
	out := append([]int(nil), widths...)
	total := func() int {
		sum := prefix + colGap*(len(out)-1)
		for _, w := range out {
			sum += w
		}
		return sum
	}
	for total() > termWidth {
		widest := -1
		for i, w := range out {
			if w > visualLen(headers[i]) && (widest < 0 || w > out[widest]) {
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		excess := total() - termWidth
		out[widest] -= min(excess, out[widest]-visualLen(headers[widest]))
	}
	return out
}

// wrapCell splits s into lines of at most width columns, breaking at spaces
// and hard-breaking words longer than width. Cells that fit are returned
// unchanged; wrapped cells lose their ANSI escapes.
func wrapCell(s string, width int) []string {
	if width <= 0 || visualLen(s) <= width {
		return []string{s}
	}
	var lines []string
	cur := ""
	flush := func() {
		if cur != "" {
			lines = append(lines, cur)
			cur = ""
		}
	}
	for _, word := range strings.Fields(ansiRegexp.ReplaceAllString(s, "")) {
		for visualLen(word) > width {
			flush()
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				// a double-width rune wider than the column
				head = string([]rune(word)[:1])
			}
			lines = append(lines, head)
			word = word[len(head):]
		}
		switch {
		case cur == "":
			cur = word
		case visualLen(cur)+1+visualLen(word) <= width:
			cur += " " + word
		default:
			flush()
			cur = word
		}
	}
	flush()
	return lines
}
