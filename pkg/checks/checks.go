// Package checks holds the built-in device checks. Every check is a
// check.Definition registered in check.DefaultRegistry at init time.
package checks

import (
	"encoding/json"
	"fmt"

	"github.com/newtron-network/newtcheck/pkg/check"
	"github.com/newtron-network/newtcheck/pkg/util"
)

// Definitions returns fresh definitions of all built-in checks.
func Definitions() []*check.Definition {
	var defs []*check.Definition
	defs = append(defs, bgpDefinitions()...)
	defs = append(defs, vxlanDefinitions()...)
	defs = append(defs, mlagDefinitions()...)
	defs = append(defs, connectivityDefinitions()...)
	defs = append(defs, loggingDefinitions()...)
	defs = append(defs, hardwareDefinitions()...)
	return defs
}

// Register adds all built-in checks to r.
func Register(r *check.Registry) error {
	for _, def := range Definitions() {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	if err := Register(check.DefaultRegistry); err != nil {
		panic(err)
	}
}

// detail renders diagnostic data embedded in failure messages. Map keys are
// sorted, so messages are stable across runs.
func detail(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// inputTypes returns a ValidateInputs func checking the types of present keys.
func inputTypes(name string, ints, strs, stringLists, lists []string) func(check.Inputs) error {
	return func(in check.Inputs) error {
		var vb util.ValidationBuilder
		for _, k := range ints {
			if _, present := in[k]; present {
				_, ok := in.Int(k)
				vb.Add(ok, fmt.Sprintf("%s: %s must be an integer", name, k))
			}
		}
		for _, k := range strs {
			if _, present := in[k]; present {
				_, ok := in.String(k)
				vb.Add(ok, fmt.Sprintf("%s: %s must be a non-empty string", name, k))
			}
		}
		for _, k := range stringLists {
			if _, present := in[k]; present {
				_, ok := in.Strings(k)
				vb.Add(ok, fmt.Sprintf("%s: %s must be a list of strings", name, k))
			}
		}
		for _, k := range lists {
			if _, present := in[k]; present {
				_, ok := in.List(k)
				vb.Add(ok, fmt.Sprintf("%s: %s must be a list of mappings", name, k))
			}
		}
		return vb.Build()
	}
}

// intInput reads an input already checked by a RequireInputs guard.
func intInput(u *check.Unit, key string) (int, error) {
	n, ok := u.Inputs().Int(key)
	if !ok {
		return 0, util.NewConfigError(u.Name(), "%s must be an integer", key)
	}
	return n, nil
}
