// Package report renders run results for people and for CI.
package report

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/newtron-network/newtcheck/pkg/check"
	"github.com/newtron-network/newtcheck/pkg/cli"
	"github.com/newtron-network/newtcheck/pkg/runner"
	"github.com/newtron-network/newtcheck/pkg/util"
)

// DateTimeFormat is used in report headers.
const DateTimeFormat = "2006-01-02 15:04:05"

// Generator produces reports from a finished run.
type Generator struct {
	Manager *runner.Manager
}

// PrintConsole writes a results table and a summary line to w.
func (g *Generator) PrintConsole(w io.Writer) {
	tbl := cli.NewTableWriter(w, "DEVICE", "TEST", "STATUS", "MESSAGE")
	for _, r := range g.Manager.Results() {
		tbl.Row(r.Device, r.Test, runner.ColorStatus(r.Status), r.Message())
	}
	tbl.Flush()

	counts := g.Manager.Counts()
	fmt.Fprintf(w, "\n%s  %d success, %d failure, %d error, %d skipped  (run %s)\n",
		cli.Bold("Overall: ")+runner.ColorStatus(g.Manager.Overall()),
		counts[check.StatusSuccess], counts[check.StatusFailure],
		counts[check.StatusError], counts[check.StatusSkipped],
		g.Manager.RunID)
}

// WriteMarkdown writes a markdown report to path.
func (g *Generator) WriteMarkdown(path string) error {
	var b bytes.Buffer
	m := g.Manager

	fmt.Fprintf(&b, "# newtcheck Report: %s\n\n", m.Start.Format(DateTimeFormat))
	fmt.Fprintf(&b, "Run `%s`, overall **%s**, %s\n\n", m.RunID, m.Overall(), m.Duration().Round(time.Millisecond))

	fmt.Fprintln(&b, "| Device | Test | Categories | Result | Duration | Message |")
	fmt.Fprintln(&b, "|--------|------|------------|--------|----------|---------|")
	for _, r := range m.Results() {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			r.Device, r.Test, strings.Join(r.Categories, ", "), r.Status,
			r.Duration.Round(time.Millisecond), mdEscape(r.Message()))
	}

	problems := m.Filter(check.StatusFailure, check.StatusError)
	if len(problems) > 0 {
		fmt.Fprintf(&b, "\n## Failures\n\n")
		for _, r := range problems {
			fmt.Fprintf(&b, "### %s: %s (%s)\n", r.Device, r.Test, r.Status)
			for _, msg := range r.Messages {
				fmt.Fprintf(&b, "- %s\n", msg)
			}
			fmt.Fprintln(&b)
		}
	}

	return util.WriteFileLocked(path, b.Bytes())
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// WriteJUnit writes a JUnit XML report with one testsuite per device.
func (g *Generator) WriteJUnit(path string) error {
	suites := junitTestSuites{Name: "newtcheck " + g.Manager.RunID}
	byDevice := g.Manager.ByDevice()

	for _, dev := range g.Manager.Devices() {
		suite := junitTestSuite{Name: dev}
		for _, r := range byDevice[dev] {
			suite.Tests++
			suite.Time += r.Duration.Seconds()
			tc := junitTestCase{
				Name:      r.Test,
				ClassName: dev,
				Time:      r.Duration.Seconds(),
			}
			switch r.Status {
			case check.StatusFailure:
				suite.Failures++
				tc.Failure = &junitFailure{Message: r.Message(), Type: "failure", Body: strings.Join(r.Messages, "\n")}
			case check.StatusSkipped:
				suite.Skipped++
				tc.Skipped = &junitSkipped{Message: r.Message()}
			case check.StatusError:
				suite.Errors++
				tc.Error = &junitError{Message: r.Message(), Type: "error", Body: strings.Join(r.Messages, "\n")}
			}
			suite.Cases = append(suite.Cases, tc)
		}
		suites.Suites = append(suites.Suites, suite)
	}

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return err
	}
	return util.WriteFileLocked(path, append([]byte(xml.Header), append(data, '\n')...))
}

// WriteJSON writes the results as a JSON document.
func (g *Generator) WriteJSON(path string) error {
	m := g.Manager
	doc := struct {
		RunID   string          `json:"run_id"`
		Start   time.Time       `json:"start"`
		End     time.Time       `json:"end"`
		Overall check.Status    `json:"overall"`
		Results []*check.Result `json:"results"`
	}{m.RunID, m.Start, m.End, m.Overall(), m.Results()}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return util.WriteFileLocked(path, append(data, '\n'))
}

// JUnit XML types

type junitTestSuites struct {
	XMLName xml.Name         `xml:"testsuites"`
	Name    string           `xml:"name,attr"`
	Suites  []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Errors   int             `xml:"errors,attr"`
	Skipped  int             `xml:"skipped,attr"`
	Time     float64         `xml:"time,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	Skipped   *junitSkipped `xml:"skipped,omitempty"`
	Error     *junitError   `xml:"error,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

type junitSkipped struct {
	Message string `xml:"message,attr"`
}

type junitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}
