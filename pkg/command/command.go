// Package command models the read-only CLI commands sent to a device: literal
// commands, parametrized templates that expand into concrete commands, and the
// typed tree used to read their parsed JSON output.
package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/newtron-network/newtcheck/pkg/util"
)

// Format is the output format requested from the device.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ErrAlreadyCollected is returned when a command's output is written twice.
var ErrAlreadyCollected = errors.New("command already collected")

// ParseFormat validates a format string. Empty means json.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatText:
		return FormatText, nil
	default:
		return "", util.NewConfigError("", "unknown output format %q (expected json or text)", s)
	}
}

// Command is a single request/response unit sent to a device.
//
// Output and error are mutually exclusive and written at most once; a fresh
// Command is created for every run (see Clone).
type Command struct {
	Text   string
	Format Format
	// Params holds the template parameters this command was rendered from.
	// Nil for literal commands.
	Params map[string]any

	collected bool
	raw       string
	output    Node
	err       error
}

// New creates a literal command. An empty format defaults to json.
func New(text string, format Format) *Command {
	if format == "" {
		format = FormatJSON
	}
	return &Command{Text: text, Format: format}
}

// Clone returns an unexecuted copy of c.
func (c *Command) Clone() *Command {
	return &Command{
		Text:   c.Text,
		Format: c.Format,
		Params: maps.Clone(c.Params),
	}
}

// SetJSON records raw JSON output. Invalid JSON is recorded as a failure of
// the command and also returned.
func (c *Command) SetJSON(raw []byte) error {
	if c.collected {
		return ErrAlreadyCollected
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		c.collected = true
		c.err = fmt.Errorf("malformed JSON output: %w", err)
		return c.err
	}
	c.collected = true
	c.raw = string(raw)
	c.output = NewNode(v)
	return nil
}

// SetValue records an already decoded output value.
func (c *Command) SetValue(v any) error {
	if c.collected {
		return ErrAlreadyCollected
	}
	c.collected = true
	c.output = NewNode(v)
	return nil
}

// SetText records text output.
func (c *Command) SetText(s string) error {
	if c.collected {
		return ErrAlreadyCollected
	}
	c.collected = true
	c.raw = s
	return nil
}

// Fail records a collection failure for this command.
func (c *Command) Fail(err error) error {
	if c.collected {
		return ErrAlreadyCollected
	}
	if err == nil {
		err = errors.New("unknown failure")
	}
	c.collected = true
	c.err = err
	return nil
}

// Collected reports whether output or an error has been recorded.
func (c *Command) Collected() bool {
	return c.collected
}

// Succeeded reports whether the command was collected without error.
func (c *Command) Succeeded() bool {
	return c.collected && c.err == nil
}

// Err returns the collection error, if any.
func (c *Command) Err() error {
	return c.err
}

// Output returns the parsed JSON output tree.
func (c *Command) Output() Node {
	return c.output
}

// TextOutput returns the raw output as received.
func (c *Command) TextOutput() string {
	return c.raw
}

// Param returns the value of a render parameter.
func (c *Command) Param(name string) (any, bool) {
	v, ok := c.Params[name]
	return v, ok
}

func (c *Command) String() string {
	return c.Text
}
