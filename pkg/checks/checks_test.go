package checks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newtron-network/newtcheck/pkg/catalog"
	"github.com/newtron-network/newtcheck/pkg/check"
	"github.com/newtron-network/newtcheck/pkg/device"
	"github.com/newtron-network/newtcheck/pkg/runner"
	"github.com/newtron-network/newtcheck/pkg/util"
)

func TestDefaultRegistryHasBuiltins(t *testing.T) {
	names := check.DefaultRegistry.Names()
	for _, want := range []string{
		"VerifyBGPIPv4UnicastState", "VerifyBGPIPv4UnicastCount",
		"VerifyBGPIPv6UnicastState", "VerifyBGPIPv6UnicastCount",
		"VerifyBGPEVPNState", "VerifyBGPEVPNCount",
		"VerifyBGPRTCState", "VerifyBGPRTCCount",
		"VerifyVxlan", "VerifyVxlanConfigSanity",
		"VerifyMlagStatus", "VerifyMlagInterfaces", "VerifyMlagConfigSanity",
		"VerifyReachability", "VerifyLLDPNeighbors",
		"VerifyLoggingPersistent", "VerifyLoggingSourceIntf", "VerifyLoggingHosts",
		"VerifyLoggingErrors", "VerifyLoggingAccounting",
		"VerifyDropCounters",
	} {
		assert.Contains(t, names, want)
	}
	assert.Len(t, check.DefaultRegistry.ByCategory("bgp"), 8)
}

func TestRegisterTwiceFails(t *testing.T) {
	r := check.NewRegistry()
	require.NoError(t, Register(r))
	assert.ErrorIs(t, Register(r), util.ErrAlreadyExists)
}

func TestAllChecksWithoutInputsSkipInputGatedChecks(t *testing.T) {
	cat := catalog.FromRegistry(check.DefaultRegistry)
	require.NoError(t, cat.Resolve(check.DefaultRegistry))
	dev := device.NewReplay("leaf1", "DCS-7280SR3", nil)

	m := (&runner.Runner{Concurrency: 4}).Run(context.Background(), []device.Device{dev}, cat.Entries)

	gated := map[string]string{
		"VerifyReachability":        "hosts",
		"VerifyLLDPNeighbors":       "neighbors",
		"VerifyLoggingSourceIntf":   "interface",
		"VerifyLoggingHosts":        "hosts",
		"VerifyBGPIPv4UnicastCount": "number",
		"VerifyBGPIPv6UnicastCount": "number",
		"VerifyBGPEVPNCount":        "number",
		"VerifyBGPRTCCount":         "number",
	}
	seen := 0
	for _, res := range m.Results() {
		key, ok := gated[res.Test]
		if !ok {
			continue
		}
		seen++
		assert.Equal(t, check.StatusSkipped, res.Status, res.Test)
		assert.Equal(t, []string{res.Test + " could not run because " + key + " was not supplied"}, res.Messages, res.Test)
	}
	assert.Equal(t, len(gated), seen)
}

func TestValidateInputs(t *testing.T) {
	def, ok := check.DefaultRegistry.Lookup("VerifyBGPIPv4UnicastCount")
	require.True(t, ok)
	require.NotNil(t, def.ValidateInputs)

	assert.NoError(t, def.ValidateInputs(check.Inputs{"number": 2, "vrf": "BLUE"}))
	assert.NoError(t, def.ValidateInputs(nil))

	err := def.ValidateInputs(check.Inputs{"number": "two", "vrf": 7})
	require.ErrorIs(t, err, util.ErrValidationFailed)
	var verr *util.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 2)
}

func TestVerifyDropCounters(t *testing.T) {
	out := map[string]any{"show hardware counter drop": map[string]any{"totalAdverseDrops": 0}}

	res := runCheck(t, "VerifyDropCounters", device.NewReplay("leaf1", "DCS-7280SR3", out), nil)
	assert.Equal(t, check.StatusSuccess, res.Status)

	for _, model := range []string{"cEOSLab", "vEOS-lab"} {
		res := runCheck(t, "VerifyDropCounters", device.NewReplay("leaf1", model, out), nil)
		assert.Equal(t, check.StatusSkipped, res.Status)
		assert.Equal(t, []string{"VerifyDropCounters test is not supported on " + model + "."}, res.Messages)
	}

	// The counter command is rejected on virtual platforms; the skip must
	// come first.
	ceos := device.NewReplay("ceos1", "cEOSLab", nil).FailCommand("show hardware counter drop", "% Invalid input")
	res = runCheck(t, "VerifyDropCounters", ceos, nil)
	assert.Equal(t, check.StatusSkipped, res.Status)
	assert.Equal(t, []string{"VerifyDropCounters test is not supported on cEOSLab."}, res.Messages)
	assert.Empty(t, ceos.Calls())

	drops := map[string]any{"show hardware counter drop": map[string]any{"totalAdverseDrops": 10}}
	res = runCheck(t, "VerifyDropCounters", device.NewReplay("leaf1", "DCS-7280SR3", drops), nil)
	assert.Equal(t, check.StatusFailure, res.Status)
	assert.Equal(t, []string{"Device totalAdverseDrops counter is: '10'"}, res.Messages)
}
