package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/newtron-network/newtcheck/pkg/check"
	"github.com/newtron-network/newtcheck/pkg/device"
)

func TestVerifyVxlan(t *testing.T) {
	tests := []struct {
		name   string
		descr  map[string]any
		status check.Status
		msgs   []string
	}{
		{
			name: "up",
			descr: map[string]any{
				"Vxlan1": map[string]any{"lineProtocolStatus": "up", "interfaceStatus": "up"},
			},
			status: check.StatusSuccess,
		},
		{
			name:   "not configured",
			descr:  map[string]any{"Ethernet1": map[string]any{}},
			status: check.StatusSkipped,
			msgs:   []string{"Vxlan1 interface is not configured"},
		},
		{
			name: "down",
			descr: map[string]any{
				"Vxlan1": map[string]any{"lineProtocolStatus": "down", "interfaceStatus": "up"},
			},
			status: check.StatusFailure,
			msgs:   []string{"Vxlan1 interface is down/up"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := device.NewReplay("leaf1", "", map[string]any{
				"show interfaces description": map[string]any{"interfaceDescriptions": tt.descr},
			})
			res := runCheck(t, "VerifyVxlan", dev, nil)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.msgs, res.Messages)
		})
	}
}

func TestVerifyVxlanConfigSanity(t *testing.T) {
	t.Run("local vtep failing", func(t *testing.T) {
		dev := replay(t, `
name: leaf1
outputs:
  show vxlan config-sanity:
    categories:
      localVtep:
        description: Local VTEP Configuration Check
        allCheckPass: false
      mlag:
        allCheckPass: true
      pd:
        allCheckPass: true
      cvx:
        allCheckPass: false
`)
		res := runCheck(t, "VerifyVxlanConfigSanity", dev, nil)
		assert.Equal(t, check.StatusFailure, res.Status)
		assert.Equal(t, []string{
			`Vxlan config sanity check is not passing: {"localVtep":{"allCheckPass":false,"description":"Local VTEP Configuration Check"}}`,
		}, res.Messages)
	})

	t.Run("no categories", func(t *testing.T) {
		dev := replay(t, `
name: leaf1
outputs:
  show vxlan config-sanity:
    categories: {}
`)
		res := runCheck(t, "VerifyVxlanConfigSanity", dev, nil)
		assert.Equal(t, check.StatusSkipped, res.Status)
		assert.Equal(t, []string{"VXLAN is not configured on this device"}, res.Messages)
	})

	t.Run("all pass", func(t *testing.T) {
		dev := replay(t, `
name: leaf1
outputs:
  show vxlan config-sanity:
    categories:
      localVtep: {allCheckPass: true}
      mlag: {allCheckPass: true}
`)
		assert.Equal(t, check.StatusSuccess, runCheck(t, "VerifyVxlanConfigSanity", dev, nil).Status)
	})
}
