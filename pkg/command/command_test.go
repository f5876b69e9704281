package command

import (
	"errors"
	"strings"
	"testing"

	"github.com/newtron-network/newtcheck/pkg/util"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"json", FormatJSON, false},
		{"text", FormatText, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, util.ErrInvalidConfig) {
					t.Errorf("ParseFormat(%q) error = %v, want ErrInvalidConfig", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewDefaultsToJSON(t *testing.T) {
	c := New("show version", "")
	if c.Format != FormatJSON {
		t.Errorf("Format = %q, want json", c.Format)
	}
	if c.Collected() {
		t.Error("new command should not be collected")
	}
	if c.Params != nil {
		t.Errorf("Params = %v, want nil", c.Params)
	}
}

func TestCommandWriteOnce(t *testing.T) {
	c := New("show version", FormatJSON)
	if err := c.SetJSON([]byte(`{"modelName":"DCS-7280"}`)); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	if !c.Collected() || !c.Succeeded() {
		t.Error("command should be collected and succeeded")
	}

	if err := c.SetJSON([]byte(`{}`)); !errors.Is(err, ErrAlreadyCollected) {
		t.Errorf("second SetJSON error = %v", err)
	}
	if err := c.SetText("x"); !errors.Is(err, ErrAlreadyCollected) {
		t.Errorf("SetText after SetJSON error = %v", err)
	}
	if err := c.Fail(errors.New("late")); !errors.Is(err, ErrAlreadyCollected) {
		t.Errorf("Fail after SetJSON error = %v", err)
	}

	model, err := c.Output().Key("modelName")
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if s, _ := model.Str(); s != "DCS-7280" {
		t.Errorf("modelName = %q, want DCS-7280", s)
	}
	if c.Err() != nil {
		t.Errorf("Err() = %v, want nil", c.Err())
	}
}

func TestCommandFailExcludesOutput(t *testing.T) {
	c := New("show bgp evpn summary", FormatJSON)
	boom := errors.New("timeout")
	if err := c.Fail(boom); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	if !c.Collected() {
		t.Error("failed command should be collected")
	}
	if c.Succeeded() {
		t.Error("failed command should not succeed")
	}
	if !errors.Is(c.Err(), boom) {
		t.Errorf("Err() = %v, want %v", c.Err(), boom)
	}
	if c.Output().Value() != nil {
		t.Errorf("Output() = %v, want nil", c.Output().Value())
	}
	if err := c.SetJSON([]byte(`{}`)); !errors.Is(err, ErrAlreadyCollected) {
		t.Errorf("SetJSON after Fail error = %v", err)
	}
}

func TestCommandMalformedJSON(t *testing.T) {
	c := New("show vxlan config-sanity", FormatJSON)
	if err := c.SetJSON([]byte(`{"categories":`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	if !c.Collected() || c.Succeeded() {
		t.Error("malformed output should be collected as a failure")
	}
	if !strings.Contains(c.Err().Error(), "malformed JSON output") {
		t.Errorf("Err() = %v", c.Err())
	}
}

func TestCommandText(t *testing.T) {
	c := New("show logging", FormatText)
	if err := c.SetText("Persistent logging: disabled\n"); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	if got := c.TextOutput(); got != "Persistent logging: disabled\n" {
		t.Errorf("TextOutput() = %q", got)
	}
	if !c.Succeeded() {
		t.Error("text command should succeed")
	}
}

func TestCommandClone(t *testing.T) {
	orig := New("ping vrf MGMT 10.0.0.1 source Ma1 repeat 2", FormatText)
	orig.Params = map[string]any{"vrf": "MGMT"}
	if err := orig.SetText("2 received"); err != nil {
		t.Fatalf("SetText: %v", err)
	}

	c := orig.Clone()
	if c.Text != orig.Text || c.Format != orig.Format {
		t.Errorf("clone = %q/%q, want %q/%q", c.Text, c.Format, orig.Text, orig.Format)
	}
	if c.Collected() || c.TextOutput() != "" {
		t.Error("clone should not carry collected output")
	}

	c.Params["vrf"] = "default"
	if v, _ := orig.Param("vrf"); v != "MGMT" {
		t.Errorf("original vrf = %v, clone must not share params", v)
	}
}
