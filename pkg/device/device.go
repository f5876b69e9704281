// Package device provides the devices checks run against: an SSH CLI device
// for EOS and SONiC targets, and a replay device that answers from recorded
// outputs.
package device

import (
	"context"
	"fmt"
	"strings"

	"github.com/newtron-network/newtcheck/pkg/command"
)

// Device executes read-only command batches against one target.
//
// Execute populates every command in order, either with output or with a
// per-command error. A returned error means the batch as a whole failed.
// Implementations serialize concurrent batches themselves.
type Device interface {
	Name() string
	Host() string
	HardwareModel() string
	Execute(ctx context.Context, cmds []*command.Command) error
}

// Kind selects the CLI dialect of a device.
type Kind string

const (
	KindEOS   Kind = "eos"
	KindSONiC Kind = "sonic"
)

// ParseKind validates a device kind. Empty means eos.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case "", KindEOS:
		return KindEOS, nil
	case KindSONiC:
		return KindSONiC, nil
	default:
		return "", fmt.Errorf("unknown device kind %q (expected eos or sonic)", s)
	}
}

// wire returns the text sent over the CLI session for cmd.
func (k Kind) wire(cmd *command.Command) string {
	if cmd.Format != command.FormatJSON {
		return cmd.Text
	}
	switch k {
	case KindSONiC:
		return fmt.Sprintf("vtysh -c '%s json'", cmd.Text)
	default:
		return cmd.Text + " | json"
	}
}

// fill records raw CLI output on cmd according to its format.
func fill(cmd *command.Command, out string) error {
	if cmd.Format == command.FormatJSON {
		return cmd.SetJSON([]byte(out))
	}
	return cmd.SetText(out)
}
