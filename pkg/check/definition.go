// Package check is the execution framework for device checks. A Definition
// describes a check statically; a Unit binds it to one device and one set of
// inputs and runs it exactly once, producing a Result.
package check

import (
	"context"
	"maps"

	"github.com/newtron-network/newtcheck/pkg/command"
	"github.com/newtron-network/newtcheck/pkg/util"
)

// TestFunc is the predicate of a check. It reads the unit's collected
// commands and records an outcome on the unit's result. A returned error is
// recorded as an error outcome.
type TestFunc func(ctx context.Context, u *Unit) error

// ParamsFunc expands inputs into one template instantiation per element.
type ParamsFunc func(in Inputs) ([]map[string]any, error)

// Definition is the static description of a check.
type Definition struct {
	Name        string
	Description string
	Categories  []string

	// Exactly one of Commands or Template is set.
	Commands []*command.Command
	Template *command.Template
	// Params builds the template instantiations. Nil means one instantiation
	// from the inputs themselves.
	Params ParamsFunc

	// Guards run in order before collection; the first verdict ends the unit.
	Guards []Guard
	Test   TestFunc

	// ValidateInputs checks the types of supplied inputs when a catalog is
	// resolved. Absent inputs are reported at run time by guards instead.
	ValidateInputs func(in Inputs) error
}

// Validate checks that the definition is runnable.
func (d *Definition) Validate() error {
	if d == nil {
		return util.NewConfigError("", "nil definition")
	}
	if d.Name == "" {
		return util.NewConfigError("", "check has no name")
	}
	hasCommands := len(d.Commands) > 0
	hasTemplate := d.Template != nil
	switch {
	case hasCommands && hasTemplate:
		return util.NewConfigError(d.Name, "both commands and template are set")
	case !hasCommands && !hasTemplate:
		return util.NewConfigError(d.Name, "neither commands nor template is set")
	}
	if hasTemplate && d.Template.Text == "" {
		return util.NewConfigError(d.Name, "template text is empty")
	}
	if !hasTemplate && d.Params != nil {
		return util.NewConfigError(d.Name, "params builder set without a template")
	}
	for i, c := range d.Commands {
		if c == nil || c.Text == "" {
			return util.NewConfigError(d.Name, "command %d is empty", i)
		}
	}
	for i, g := range d.Guards {
		if g == nil {
			return util.NewConfigError(d.Name, "guard %d is nil", i)
		}
	}
	if d.Test == nil {
		return util.NewConfigError(d.Name, "no test function")
	}
	return nil
}

// resolve produces fresh commands for one run, in order, together with the
// template parameters each was rendered from.
func (d *Definition) resolve(in Inputs) ([]*command.Command, []map[string]any, error) {
	if d.Template == nil {
		cmds := make([]*command.Command, len(d.Commands))
		for i, c := range d.Commands {
			cmds[i] = c.Clone()
		}
		return cmds, nil, nil
	}

	var params []map[string]any
	if d.Params != nil {
		p, err := d.Params(in)
		if err != nil {
			return nil, nil, err
		}
		params = p
	} else {
		params = []map[string]any{maps.Clone(map[string]any(in))}
	}
	if len(params) == 0 {
		return nil, nil, util.NewConfigError(d.Name, "template %q has no instantiations", d.Template.Text)
	}
	cmds, err := d.Template.RenderAll(params)
	if err != nil {
		return nil, nil, err
	}
	return cmds, params, nil
}
