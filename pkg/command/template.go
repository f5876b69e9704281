package command

import (
	"fmt"
	"maps"
	"regexp"
	"strings"

	"github.com/newtron-network/newtcheck/pkg/util"
)

var placeholderRegexp = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Template is a command with {name} placeholders. It expands into one
// concrete Command per parameter mapping.
type Template struct {
	Text   string
	Format Format
}

// MissingParamError is returned when a placeholder has no supplied value.
type MissingParamError struct {
	Template string
	Param    string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("template %q: no value for placeholder {%s}", e.Template, e.Param)
}

func (e *MissingParamError) Unwrap() error {
	return util.ErrInvalidConfig
}

// Placeholders returns the placeholder names in order of first appearance.
func (t Template) Placeholders() []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderRegexp.FindAllStringSubmatch(t.Text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Render substitutes params into the template. Extra params are kept on the
// command but ignored in the text.
func (t Template) Render(params map[string]any) (*Command, error) {
	var missing string
	text := placeholderRegexp.ReplaceAllStringFunc(t.Text, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := params[name]
		if !ok || v == nil {
			if missing == "" {
				missing = name
			}
			return m
		}
		return fmt.Sprint(v)
	})
	if missing != "" {
		return nil, &MissingParamError{Template: t.Text, Param: missing}
	}

	cmd := New(strings.TrimSpace(text), t.Format)
	cmd.Params = maps.Clone(params)
	if cmd.Params == nil {
		cmd.Params = map[string]any{}
	}
	return cmd, nil
}

// RenderAll renders one command per mapping, preserving order: the i-th
// command was rendered from params[i].
func (t Template) RenderAll(params []map[string]any) ([]*Command, error) {
	cmds := make([]*Command, 0, len(params))
	for i, p := range params {
		cmd, err := t.Render(p)
		if err != nil {
			return nil, fmt.Errorf("instance %d: %w", i, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}
