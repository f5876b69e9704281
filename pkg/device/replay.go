package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/newtcheck/pkg/command"
	"github.com/newtron-network/newtcheck/pkg/util"
)

// ErrNoRecording is returned for commands absent from a replay fixture.
var ErrNoRecording = errors.New("no recorded output")

// ReplayFixture is the on-disk form of a replay device.
//
//	name: leaf1
//	hw_model: DCS-7280SR3-48YC8
//	outputs:
//	  show bgp evpn summary: {vrfs: {}}
//	  show logging: |
//	    Persistent logging: disabled
//	errors:
//	  show mlag: connection reset
type ReplayFixture struct {
	Name          string            `yaml:"name"`
	Host          string            `yaml:"host"`
	HardwareModel string            `yaml:"hw_model"`
	Outputs       map[string]any    `yaml:"outputs"`
	Errors        map[string]string `yaml:"errors"`
}

// Replay answers commands from recorded outputs. It never touches the
// network and is safe for concurrent use.
type Replay struct {
	name    string
	host    string
	model   string
	outputs map[string]any
	errors  map[string]string

	mu    sync.Mutex
	calls [][]string
}

// NewReplay builds a replay device. Outputs for json commands may be decoded
// values or JSON strings; outputs for text commands must be strings.
func NewReplay(name, model string, outputs map[string]any) *Replay {
	if outputs == nil {
		outputs = map[string]any{}
	}
	return &Replay{
		name:    name,
		host:    "replay",
		model:   model,
		outputs: outputs,
		errors:  map[string]string{},
	}
}

// LoadReplay reads a replay fixture from a YAML file.
func LoadReplay(path string) (*Replay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading replay fixture: %w", err)
	}
	r, err := ParseReplay(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// ParseReplay decodes a replay fixture.
func ParseReplay(data []byte) (*Replay, error) {
	var f ReplayFixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing replay fixture: %w", err)
	}
	if f.Name == "" {
		return nil, util.NewConfigError("", "replay fixture has no name")
	}
	r := NewReplay(f.Name, f.HardwareModel, f.Outputs)
	if f.Host != "" {
		r.host = f.Host
	}
	for k, v := range f.Errors {
		r.errors[k] = v
	}
	return r, nil
}

// FailCommand makes text fail with msg on every execution.
func (r *Replay) FailCommand(text, msg string) *Replay {
	r.errors[text] = msg
	return r
}

func (r *Replay) Name() string          { return r.name }
func (r *Replay) Host() string          { return r.host }
func (r *Replay) HardwareModel() string { return r.model }

// Execute answers each command from the recording.
func (r *Replay) Execute(ctx context.Context, cmds []*command.Command) error {
	texts := make([]string, len(cmds))
	for i, c := range cmds {
		texts[i] = c.Text
	}
	r.mu.Lock()
	r.calls = append(r.calls, texts)
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		for _, c := range cmds {
			_ = c.Fail(util.NewCollectionError(r.name, c.Text, err))
		}
		return err
	}

	for _, c := range cmds {
		if msg, ok := r.errors[c.Text]; ok {
			_ = c.Fail(util.NewCollectionError(r.name, c.Text, errors.New(msg)))
			continue
		}
		out, ok := r.outputs[c.Text]
		if !ok {
			_ = c.Fail(util.NewCollectionError(r.name, c.Text, ErrNoRecording))
			continue
		}
		if err := r.fill(c, out); err != nil {
			// fill already recorded malformed output on c
			if !c.Collected() {
				_ = c.Fail(util.NewCollectionError(r.name, c.Text, err))
			}
		}
	}
	return nil
}

func (r *Replay) fill(c *command.Command, out any) error {
	if s, ok := out.(string); ok {
		return fill(c, s)
	}
	if c.Format != command.FormatJSON {
		return fmt.Errorf("recorded output for text command is %T, not a string", out)
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encoding recorded output: %w", err)
	}
	return c.SetJSON(raw)
}

// Calls returns the command texts of every batch executed so far.
func (r *Replay) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// Commands returns the recorded command texts, sorted.
func (r *Replay) Commands() []string {
	return slices.Sorted(maps.Keys(r.outputs))
}

// Record runs cmds on dev and captures what came back as a fixture that
// LoadReplay can serve later. Per-command failures land in Errors; only a
// failure of the whole batch is returned.
func Record(ctx context.Context, dev Device, cmds []*command.Command) (*ReplayFixture, error) {
	if err := dev.Execute(ctx, cmds); err != nil {
		return nil, err
	}
	f := &ReplayFixture{
		Name:          dev.Name(),
		Host:          dev.Host(),
		HardwareModel: dev.HardwareModel(),
		Outputs:       map[string]any{},
		Errors:        map[string]string{},
	}
	for _, c := range cmds {
		switch {
		case c.Succeeded() && c.Format == command.FormatJSON:
			f.Outputs[c.Text] = c.Output().Value()
		case c.Succeeded():
			f.Outputs[c.Text] = c.TextOutput()
		default:
			f.Errors[c.Text] = transportMessage(c.Err())
		}
	}
	return f, nil
}

// Marshal encodes the fixture as YAML.
func (f *ReplayFixture) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}

// transportMessage strips the collection wrapper so replaying the fixture
// does not nest it twice.
func transportMessage(err error) string {
	var ce *util.CollectionError
	if errors.As(err, &ce) && ce.Err != nil {
		return ce.Err.Error()
	}
	if err == nil {
		return "not collected"
	}
	return err.Error()
}
