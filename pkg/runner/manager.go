package runner

import (
	"time"

	"github.com/google/uuid"

	"github.com/newtron-network/newtcheck/pkg/check"
)

// Manager holds the results of one run in (device, entry) order.
type Manager struct {
	RunID string
	Start time.Time
	End   time.Time

	results []*check.Result
}

func newManager() *Manager {
	return &Manager{
		RunID: uuid.NewString(),
		Start: time.Now(),
	}
}

// NewManager wraps already collected results, e.g. for reporting.
func NewManager(results []*check.Result) *Manager {
	m := newManager()
	m.finish(results)
	return m
}

func (m *Manager) finish(results []*check.Result) {
	m.results = results
	m.End = time.Now()
}

// Duration is the wall time of the run.
func (m *Manager) Duration() time.Duration {
	return m.End.Sub(m.Start)
}

// Results returns every result in run order.
func (m *Manager) Results() []*check.Result {
	out := make([]*check.Result, len(m.results))
	copy(out, m.results)
	return out
}

// Counts returns the number of results per status.
func (m *Manager) Counts() map[check.Status]int {
	counts := make(map[check.Status]int, len(check.AllStatuses))
	for _, s := range check.AllStatuses {
		counts[s] = 0
	}
	for _, r := range m.results {
		counts[r.Status]++
	}
	return counts
}

// Overall is the status of the run as a whole: error over failure over
// success over skipped. A run with no results is unset.
func (m *Manager) Overall() check.Status {
	counts := m.Counts()
	for _, s := range []check.Status{check.StatusError, check.StatusFailure, check.StatusSuccess, check.StatusSkipped} {
		if counts[s] > 0 {
			return s
		}
	}
	return check.StatusUnset
}

// Filter returns the results with any of the given statuses, in run order.
func (m *Manager) Filter(statuses ...check.Status) []*check.Result {
	want := make(map[check.Status]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	var out []*check.Result
	for _, r := range m.results {
		if want[r.Status] {
			out = append(out, r)
		}
	}
	return out
}

// Devices returns device names in run order.
func (m *Manager) Devices() []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range m.results {
		if !seen[r.Device] {
			seen[r.Device] = true
			out = append(out, r.Device)
		}
	}
	return out
}

// ByDevice groups results by device name.
func (m *Manager) ByDevice() map[string][]*check.Result {
	out := map[string][]*check.Result{}
	for _, r := range m.results {
		out[r.Device] = append(out[r.Device], r)
	}
	return out
}
