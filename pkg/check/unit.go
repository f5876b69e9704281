package check

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/newtron-network/newtcheck/pkg/command"
	"github.com/newtron-network/newtcheck/pkg/device"
	"github.com/newtron-network/newtcheck/pkg/util"
)

// Unit is one check bound to one device and one set of inputs. It owns fresh
// commands and exactly one Result, and runs once.
type Unit struct {
	def    *Definition
	dev    device.Device
	inputs Inputs
	log    *logrus.Entry

	categories []string
	commands   []*command.Command
	params     []map[string]any
	result     *Result
	ran        bool
}

// NewUnit binds def to dev. A nil log discards unit logging.
func NewUnit(def *Definition, dev device.Device, inputs Inputs, log *logrus.Entry) (*Unit, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if dev == nil {
		return nil, util.NewConfigError(def.Name, "no device bound")
	}
	if log == nil {
		log = util.Discard()
	}

	res := NewResult(def.Name, dev.Name())
	res.Description = def.Description
	res.Categories = slices.Clone(def.Categories)

	return &Unit{
		def:        def,
		dev:        dev,
		inputs:     inputs.Clone(),
		log:        util.WithCheck(log, dev.Name(), def.Name),
		categories: slices.Clone(def.Categories),
		result:     res,
	}, nil
}

// AddCategories tags the unit and its result with extra categories, e.g.
// those of a catalog entry. Duplicates are dropped.
func (u *Unit) AddCategories(categories ...string) {
	u.categories = util.MergeStringSlices(u.categories, categories)
	u.result.Categories = slices.Clone(u.categories)
}

func (u *Unit) Name() string            { return u.def.Name }
func (u *Unit) Description() string     { return u.def.Description }
func (u *Unit) Categories() []string    { return slices.Clone(u.categories) }
func (u *Unit) Device() device.Device   { return u.dev }
func (u *Unit) Inputs() Inputs          { return u.inputs }
func (u *Unit) Result() *Result         { return u.result }
func (u *Unit) Logger() *logrus.Entry   { return u.log }
func (u *Unit) Definition() *Definition { return u.def }

// Commands returns the resolved commands in execution order.
func (u *Unit) Commands() []*command.Command {
	return slices.Clone(u.commands)
}

// Command returns the i-th resolved command, or nil.
func (u *Unit) Command(i int) *command.Command {
	if i < 0 || i >= len(u.commands) {
		return nil
	}
	return u.commands[i]
}

// TemplateParams returns the parameters of each template instantiation.
// Element i was used to render Command(i). Nil for literal commands.
func (u *Unit) TemplateParams() []map[string]any {
	return slices.Clone(u.params)
}

// Run gates, resolves, collects and evaluates the unit. Guards run before
// anything is sent to the device. It always returns a
// terminal result and never panics.
func (u *Unit) Run(ctx context.Context) *Result {
	if u.ran {
		res := NewResult(u.def.Name, u.dev.Name())
		res.Error("unit already ran; build a new unit for each run")
		return res
	}
	u.ran = true

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			u.log.WithField("panic", r).Error("check panicked")
			u.result.Error(fmt.Sprintf("check panicked: %v", r))
		}
		if !u.result.Terminal() {
			u.result.Error("test did not set a result")
		}
		u.result.Duration = time.Since(start)
		u.log.WithFields(logrus.Fields{
			"status":   u.result.Status,
			"duration": u.result.Duration,
		}).Debug("unit finished")
	}()

	if !u.gate(ctx) || !u.resolve() || !u.collect(ctx) {
		return u.result
	}
	u.evaluate(ctx)
	return u.result
}

func (u *Unit) resolve() bool {
	cmds, params, err := u.def.resolve(u.inputs)
	if err != nil {
		u.log.WithError(err).Debug("command resolution failed")
		u.result.Error(fmt.Sprintf("failed to render commands: %v", err))
		return false
	}
	u.commands = cmds
	u.params = params
	u.log.WithField("commands", len(cmds)).Debug("commands resolved")
	return true
}

func (u *Unit) collect(ctx context.Context) bool {
	batchErr := u.dev.Execute(ctx, u.commands)
	for _, c := range u.commands {
		if c.Succeeded() {
			continue
		}
		cause := c.Err()
		if cause == nil {
			cause = batchErr
		}
		if cause == nil {
			cause = errors.New("no output returned")
		}
		u.log.WithError(cause).WithField("command", c.Text).Debug("collection failed")
		u.result.Error(fmt.Sprintf("failed to collect %q: %v", c.Text, cause))
		return false
	}
	if batchErr != nil {
		u.result.Error(fmt.Sprintf("failed to collect commands: %v", batchErr))
		return false
	}
	u.log.Debug("commands collected")
	return true
}

func (u *Unit) gate(ctx context.Context) bool {
	for _, g := range u.def.Guards {
		v := g.Check(ctx, u)
		if v == nil {
			continue
		}
		u.log.WithFields(logrus.Fields{
			"guard":  g.Name(),
			"status": v.Status,
		}).Debug("guard stopped unit")
		switch v.Status {
		case StatusSkipped:
			u.result.Skipped(v.Message)
		case StatusFailure:
			u.result.Failure(v.Message)
		default:
			u.result.Error(v.Message)
		}
		return false
	}
	return true
}

func (u *Unit) evaluate(ctx context.Context) {
	err := u.def.Test(ctx, u)
	if err == nil {
		return
	}
	var shape *command.ShapeError
	if errors.As(err, &shape) {
		u.result.Error("unexpected output shape: " + shape.Error())
		return
	}
	u.result.Error(err.Error())
}
