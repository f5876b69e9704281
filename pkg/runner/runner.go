// Package runner evaluates catalog entries against devices with a bounded
// worker pool and collects the results.
package runner

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/newtron-network/newtcheck/pkg/catalog"
	"github.com/newtron-network/newtcheck/pkg/check"
	"github.com/newtron-network/newtcheck/pkg/device"
	"github.com/newtron-network/newtcheck/pkg/util"
)

// DefaultConcurrency is used when Runner.Concurrency is not positive.
const DefaultConcurrency = 10

// Runner dispatches one unit per (device, entry) pair.
type Runner struct {
	// Concurrency caps the number of units running at once.
	Concurrency int

	Logger   *logrus.Entry
	Progress ProgressReporter
}

type job struct {
	dev   device.Device
	entry *catalog.Entry
}

// Run evaluates every entry on every device and returns the collected
// results. A unit's failure never affects other units. When ctx is
// cancelled no new units start; those not started are recorded as errors.
func (r *Runner) Run(ctx context.Context, devices []device.Device, entries []*catalog.Entry) *Manager {
	log := r.Logger
	if log == nil {
		log = util.Discard()
	}
	progress := r.Progress
	if progress == nil {
		progress = nopProgress{}
	}

	jobs := make([]job, 0, len(devices)*len(entries))
	for _, dev := range devices {
		for _, e := range entries {
			jobs = append(jobs, job{dev: dev, entry: e})
		}
	}

	m := newManager()
	log = log.WithField("run", m.RunID)
	log.WithFields(logrus.Fields{
		"devices": len(devices),
		"entries": len(entries),
	}).Info("run started")
	progress.RunStart(m, len(jobs))

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if concurrency > len(jobs) {
		concurrency = max(len(jobs), 1)
	}

	results := make([]*check.Result, len(jobs))
	semaphore := make(chan struct{}, concurrency)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		finished int
	)
	report := func(res *check.Result) {
		mu.Lock()
		defer mu.Unlock()
		finished++
		progress.UnitEnd(res, finished, len(jobs))
	}

	launched := 0
launch:
	for i, j := range jobs {
		select {
		case <-ctx.Done():
			break launch
		case semaphore <- struct{}{}:
		}
		if ctx.Err() != nil {
			<-semaphore
			break
		}
		launched++
		wg.Add(1)
		go func(i int, j job) {
			defer wg.Done()
			defer func() { <-semaphore }()
			res := runJob(ctx, j, log)
			results[i] = res
			report(res)
		}(i, j)
	}
	wg.Wait()

	if launched < len(jobs) {
		log.WithField("skipped", len(jobs)-launched).Warn("run cancelled before all units started")
	}
	for i, j := range jobs[launched:] {
		res := newResult(j)
		res.Error("run cancelled")
		results[launched+i] = res
		report(res)
	}

	m.finish(results)
	log.WithFields(logrus.Fields{
		"overall":  m.Overall(),
		"duration": m.Duration().Round(time.Millisecond),
	}).Info("run finished")
	progress.RunEnd(m)
	return m
}

func runJob(ctx context.Context, j job, log *logrus.Entry) *check.Result {
	if j.entry.Definition == nil {
		res := newResult(j)
		res.Error("check is not resolved: " + j.entry.Name)
		return res
	}
	u, err := check.NewUnit(j.entry.Definition, j.dev, j.entry.Inputs, log)
	if err != nil {
		res := newResult(j)
		res.Error(err.Error())
		return res
	}
	u.AddCategories(j.entry.Categories...)
	return u.Run(ctx)
}

func newResult(j job) *check.Result {
	res := check.NewResult(j.entry.Name, j.dev.Name())
	if def := j.entry.Definition; def != nil {
		res.Description = def.Description
	}
	res.Categories = j.entry.AllCategories()
	return res
}
