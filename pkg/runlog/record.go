// Package runlog appends a one-line JSON summary of every finished run to a
// file, for log shippers and dashboards. It is write-only: nothing in
// newtcheck reads the log back.
package runlog

import (
	"time"

	"github.com/newtron-network/newtcheck/pkg/check"
	"github.com/newtron-network/newtcheck/pkg/runner"
)

// Record summarizes one run.
type Record struct {
	RunID    string               `json:"run_id"`
	Start    time.Time            `json:"start"`
	Duration time.Duration        `json:"duration"`
	Overall  check.Status         `json:"overall"`
	Counts   map[check.Status]int `json:"counts"`
	Devices  []string             `json:"devices"`
	Problems []Problem            `json:"problems,omitempty"`
}

// Problem is a failed or errored unit of a run.
type Problem struct {
	Device  string       `json:"device"`
	Test    string       `json:"test"`
	Status  check.Status `json:"status"`
	Message string       `json:"message"`
}

// NewRecord summarizes a finished run.
func NewRecord(m *runner.Manager) *Record {
	r := &Record{
		RunID:    m.RunID,
		Start:    m.Start,
		Duration: m.Duration(),
		Overall:  m.Overall(),
		Counts:   m.Counts(),
		Devices:  m.Devices(),
	}
	for _, res := range m.Filter(check.StatusFailure, check.StatusError) {
		r.Problems = append(r.Problems, Problem{
			Device:  res.Device,
			Test:    res.Test,
			Status:  res.Status,
			Message: res.Message(),
		})
	}
	return r
}
