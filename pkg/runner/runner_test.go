package runner

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newtron-network/newtcheck/pkg/catalog"
	"github.com/newtron-network/newtcheck/pkg/check"
	"github.com/newtron-network/newtcheck/pkg/command"
	"github.com/newtron-network/newtcheck/pkg/device"
)

func versionDef(name string) *check.Definition {
	return &check.Definition{
		Name:       name,
		Categories: []string{"system"},
		Commands:   []*command.Command{command.New("show version", command.FormatJSON)},
		Test: func(_ context.Context, u *check.Unit) error {
			model, err := u.Command(0).Output().Key("modelName")
			if err != nil {
				return err
			}
			s, err := model.Str()
			if err != nil {
				return err
			}
			if s != "cEOSLab" {
				u.Result().Failure("unexpected model " + s)
				return nil
			}
			u.Result().Success()
			return nil
		},
	}
}

func entry(def *check.Definition) *catalog.Entry {
	return &catalog.Entry{Name: def.Name, Definition: def}
}

func replayDevice(name, model string) *device.Replay {
	return device.NewReplay(name, model, map[string]any{
		"show version": map[string]any{"modelName": model},
	})
}

// slowDevice tracks how many batches run at once.
type slowDevice struct {
	name   string
	delay  time.Duration
	active *int32
	peak   *int32
}

func (d *slowDevice) Name() string          { return d.name }
func (d *slowDevice) Host() string          { return "slow" }
func (d *slowDevice) HardwareModel() string { return "cEOSLab" }

func (d *slowDevice) Execute(ctx context.Context, cmds []*command.Command) error {
	n := atomic.AddInt32(d.active, 1)
	defer atomic.AddInt32(d.active, -1)
	for {
		p := atomic.LoadInt32(d.peak)
		if n <= p || atomic.CompareAndSwapInt32(d.peak, p, n) {
			break
		}
	}
	time.Sleep(d.delay)
	for _, c := range cmds {
		_ = c.SetJSON([]byte(`{"modelName": "cEOSLab"}`))
	}
	return nil
}

type recordingProgress struct {
	mu      sync.Mutex
	started int
	done    []int
	ended   bool
}

func (p *recordingProgress) RunStart(_ *Manager, total int) { p.started = total }
func (p *recordingProgress) UnitEnd(_ *check.Result, done, _ int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = append(p.done, done)
}
func (p *recordingProgress) RunEnd(*Manager) { p.ended = true }

func TestRunCrossProductOrder(t *testing.T) {
	devices := []device.Device{replayDevice("leaf1", "cEOSLab"), replayDevice("leaf2", "vEOS-lab")}
	entries := []*catalog.Entry{entry(versionDef("CheckA")), entry(versionDef("CheckB"))}
	progress := &recordingProgress{}

	m := (&Runner{Concurrency: 3, Progress: progress}).Run(context.Background(), devices, entries)

	results := m.Results()
	require.Len(t, results, 4)
	var got []string
	for _, r := range results {
		got = append(got, r.Device+"/"+r.Test+"/"+string(r.Status))
	}
	assert.Equal(t, []string{
		"leaf1/CheckA/success",
		"leaf1/CheckB/success",
		"leaf2/CheckA/failure",
		"leaf2/CheckB/failure",
	}, got)
	assert.Equal(t, []string{"system"}, results[0].Categories)

	assert.Equal(t, 4, progress.started)
	assert.ElementsMatch(t, []int{1, 2, 3, 4}, progress.done)
	assert.True(t, progress.ended)

	assert.NotEmpty(t, m.RunID)
	assert.False(t, m.End.Before(m.Start))
	assert.Equal(t, check.StatusFailure, m.Overall())
	assert.Equal(t, []string{"leaf1", "leaf2"}, m.Devices())
}

func TestRunEntryCategoriesReachResults(t *testing.T) {
	e := entry(versionDef("CheckA"))
	e.Categories = []string{"smoke", "system"}
	unresolved := &catalog.Entry{Name: "CheckB", Categories: []string{"smoke"}}

	m := (&Runner{}).Run(context.Background(), []device.Device{replayDevice("leaf1", "cEOSLab")}, []*catalog.Entry{e, unresolved})

	results := m.Results()
	require.Len(t, results, 2)
	assert.Equal(t, []string{"system", "smoke"}, results[0].Categories)
	assert.Equal(t, []string{"smoke"}, results[1].Categories)
}

func TestRunRespectsConcurrency(t *testing.T) {
	var active, peak int32
	var devices []device.Device
	for _, name := range []string{"d1", "d2", "d3", "d4", "d5", "d6"} {
		devices = append(devices, &slowDevice{name: name, delay: 20 * time.Millisecond, active: &active, peak: &peak})
	}

	m := (&Runner{Concurrency: 2}).Run(context.Background(), devices, []*catalog.Entry{entry(versionDef("CheckA"))})

	assert.Len(t, m.Filter(check.StatusSuccess), 6)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&peak), int32(1))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	progress := &recordingProgress{}

	devices := []device.Device{replayDevice("leaf1", "cEOSLab")}
	entries := []*catalog.Entry{entry(versionDef("CheckA")), entry(versionDef("CheckB"))}
	m := (&Runner{Progress: progress}).Run(ctx, devices, entries)

	for _, r := range m.Results() {
		assert.Equal(t, check.StatusError, r.Status)
		assert.Equal(t, []string{"run cancelled"}, r.Messages)
	}
	assert.Len(t, progress.done, 2)
	assert.Equal(t, check.StatusError, m.Overall())
}

func TestRunBadEntries(t *testing.T) {
	broken := &check.Definition{Name: "Broken"}
	devices := []device.Device{replayDevice("leaf1", "cEOSLab")}
	entries := []*catalog.Entry{
		{Name: "Unresolved"},
		entry(broken),
		entry(versionDef("CheckA")),
	}

	m := (&Runner{}).Run(context.Background(), devices, entries)
	results := m.Results()
	require.Len(t, results, 3)

	assert.Equal(t, check.StatusError, results[0].Status)
	assert.Equal(t, []string{"check is not resolved: Unresolved"}, results[0].Messages)
	assert.Equal(t, check.StatusError, results[1].Status)
	assert.Contains(t, results[1].Messages[0], "invalid configuration for Broken")
	// Other units are unaffected.
	assert.Equal(t, check.StatusSuccess, results[2].Status)
}

func TestRunDeviceErrorIsolated(t *testing.T) {
	failing := replayDevice("leaf1", "cEOSLab").FailCommand("show version", "connection reset")
	devices := []device.Device{failing, replayDevice("leaf2", "cEOSLab")}

	m := (&Runner{}).Run(context.Background(), devices, []*catalog.Entry{entry(versionDef("CheckA"))})
	byDev := m.ByDevice()
	require.Len(t, byDev["leaf1"], 1)
	assert.Equal(t, check.StatusError, byDev["leaf1"][0].Status)
	assert.Equal(t, check.StatusSuccess, byDev["leaf2"][0].Status)
}

func TestRunEmpty(t *testing.T) {
	m := (&Runner{}).Run(context.Background(), nil, nil)
	assert.Empty(t, m.Results())
	assert.Equal(t, check.StatusUnset, m.Overall())
}

func TestManagerOverall(t *testing.T) {
	res := func(statuses ...check.Status) *Manager {
		var rs []*check.Result
		for _, s := range statuses {
			r := check.NewResult("T", "d")
			r.Status = s
			rs = append(rs, r)
		}
		return NewManager(rs)
	}
	assert.Equal(t, check.StatusSkipped, res(check.StatusSkipped).Overall())
	assert.Equal(t, check.StatusSuccess, res(check.StatusSkipped, check.StatusSuccess).Overall())
	assert.Equal(t, check.StatusFailure, res(check.StatusSuccess, check.StatusFailure, check.StatusSkipped).Overall())
	assert.Equal(t, check.StatusError, res(check.StatusFailure, check.StatusError).Overall())

	counts := res(check.StatusSuccess, check.StatusSuccess, check.StatusError).Counts()
	assert.Equal(t, 2, counts[check.StatusSuccess])
	assert.Equal(t, 0, counts[check.StatusSkipped])
	assert.Equal(t, 1, counts[check.StatusError])
}

func TestManagerOverallProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("overall is present in the run and no result outranks it", prop.ForAll(
		func(picks []int) bool {
			statuses := make([]check.Status, len(picks))
			for i, p := range picks {
				statuses[i] = check.AllStatuses[p]
			}
			var rs []*check.Result
			for _, s := range statuses {
				r := check.NewResult("T", "d")
				r.Status = s
				rs = append(rs, r)
			}
			overall := NewManager(rs).Overall()
			if len(statuses) == 0 {
				return overall == check.StatusUnset
			}
			order := map[check.Status]int{
				check.StatusSkipped: 1, check.StatusSuccess: 2, check.StatusFailure: 3, check.StatusError: 4,
			}
			present := false
			for _, s := range statuses {
				if s == overall {
					present = true
				}
				if order[s] > order[overall] {
					return false
				}
			}
			return present
		},
		gen.SliceOf(gen.IntRange(0, len(check.AllStatuses)-1)),
	))

	properties.TestingRun(t)
}

func TestConsoleProgress(t *testing.T) {
	var b strings.Builder
	p := &ConsoleProgress{W: &b, Verbose: true}

	r := check.NewResult("VerifyVxlan", "leaf1")
	r.Failure("Vxlan1 interface is down/up")
	m := NewManager([]*check.Result{r})

	p.RunStart(m, 1)
	p.UnitEnd(r, 1, 1)
	p.RunEnd(m)

	out := b.String()
	assert.Contains(t, out, "newtcheck: 1 units, run "+m.RunID)
	assert.Contains(t, out, "[1/1]")
	assert.Contains(t, out, "leaf1 VerifyVxlan")
	assert.Contains(t, out, "FAILURE")
	assert.Contains(t, out, "Vxlan1 interface is down/up")
	assert.Contains(t, out, "1 failed")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "<1s", formatDuration(300*time.Millisecond))
	assert.Equal(t, "42s", formatDuration(42*time.Second))
	assert.Equal(t, "2m", formatDuration(2*time.Minute))
	assert.Equal(t, "1m05s", formatDuration(65*time.Second))
}
