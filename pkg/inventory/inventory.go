// Package inventory loads the devices a run targets from a YAML file.
//
//	username: admin
//	password: admin
//	devices:
//	  - name: leaf1
//	    host: 10.0.0.11
//	    tags: [leaf, pod1]
//	  - name: spine1
//	    host: 10.0.0.1
//	    kind: sonic
//	    hw_model: Force10-S6000
//	    tags: [spine]
package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/newtron-network/newtcheck/pkg/device"
	"github.com/newtron-network/newtcheck/pkg/util"
)

// Device is one inventory entry.
type Device struct {
	Name          string   `yaml:"name"`
	Host          string   `yaml:"host"`
	Port          int      `yaml:"port,omitempty"`
	Username      string   `yaml:"username,omitempty"`
	Password      string   `yaml:"password,omitempty"`
	Kind          string   `yaml:"kind,omitempty"`
	HardwareModel string   `yaml:"hw_model,omitempty"`
	Tags          []string `yaml:"tags,omitempty"`
}

// Inventory is the parsed inventory file.
type Inventory struct {
	Username string    `yaml:"username,omitempty"`
	Password string    `yaml:"password,omitempty"`
	Devices  []*Device `yaml:"devices"`
}

// Load reads and validates an inventory file.
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory %s: %w", path, err)
	}
	inv, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("inventory %s: %w", path, err)
	}
	return inv, nil
}

// Parse decodes and validates an inventory document. Top-level credentials
// are applied to devices that do not set their own.
func Parse(data []byte) (*Inventory, error) {
	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parsing inventory: %w", err)
	}
	for _, d := range inv.Devices {
		if d == nil {
			continue
		}
		if d.Username == "" {
			d.Username = inv.Username
		}
		if d.Password == "" {
			d.Password = inv.Password
		}
	}
	if err := inv.validate(); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (inv *Inventory) validate() error {
	v := &util.ValidationBuilder{}
	if len(inv.Devices) == 0 {
		v.AddError("no devices defined")
	}
	seen := map[string]bool{}
	for i, d := range inv.Devices {
		if d == nil {
			v.AddErrorf("device %d is empty", i)
			continue
		}
		if d.Name == "" {
			v.AddErrorf("device %d has no name", i)
		} else if seen[d.Name] {
			v.AddErrorf("device '%s' is defined more than once", d.Name)
		}
		seen[d.Name] = true
		if d.Host == "" {
			v.AddErrorf("device '%s' has no host", d.Name)
		}
		if _, err := device.ParseKind(d.Kind); err != nil {
			v.AddErrorf("device '%s': %v", d.Name, err)
		}
		if d.Port < 0 || d.Port > 65535 {
			v.AddErrorf("device '%s' has invalid port %d", d.Name, d.Port)
		}
	}
	return v.Build()
}

// Filter returns the devices carrying at least one of tags. No tags keeps
// every device.
func (inv *Inventory) Filter(tags []string) []*Device {
	if len(tags) == 0 {
		return inv.Devices
	}
	var out []*Device
	for _, d := range inv.Devices {
		if util.Intersects(d.Tags, tags) {
			out = append(out, d)
		}
	}
	return out
}

// BuildOptions control how inventory entries become devices.
type BuildOptions struct {
	// Password overrides every device password, e.g. from --ask-pass.
	Password string

	// Timeout bounds SSH dials and commands.
	Timeout time.Duration

	// ReplayDir, when set, builds replay devices from <dir>/<name>.yaml
	// instead of SSH devices.
	ReplayDir string

	Logger *logrus.Entry
}

// Build turns inventory entries into devices.
func Build(devices []*Device, opts BuildOptions) ([]device.Device, error) {
	out := make([]device.Device, 0, len(devices))
	for _, d := range devices {
		dev, err := build(d, opts)
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", d.Name, err)
		}
		out = append(out, dev)
	}
	return out, nil
}

func build(d *Device, opts BuildOptions) (device.Device, error) {
	if opts.ReplayDir != "" {
		return device.LoadReplay(filepath.Join(opts.ReplayDir, d.Name+".yaml"))
	}
	kind, err := device.ParseKind(d.Kind)
	if err != nil {
		return nil, err
	}
	password := d.Password
	if opts.Password != "" {
		password = opts.Password
	}
	return device.NewSSH(device.SSHConfig{
		Name:          d.Name,
		Host:          d.Host,
		Port:          d.Port,
		Username:      d.Username,
		Password:      password,
		Kind:          kind,
		HardwareModel: d.HardwareModel,
		Timeout:       opts.Timeout,
	}, opts.Logger)
}
