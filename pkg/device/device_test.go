package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newtron-network/newtcheck/pkg/command"
	"github.com/newtron-network/newtcheck/pkg/util"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", KindEOS, false},
		{"eos", KindEOS, false},
		{"EOS", KindEOS, false},
		{"sonic", KindSONiC, false},
		{"SONiC", KindSONiC, false},
		{"junos", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKindWire(t *testing.T) {
	tests := []struct {
		kind   Kind
		format command.Format
		want   string
	}{
		{KindEOS, command.FormatJSON, "show bgp evpn summary | json"},
		{KindEOS, command.FormatText, "show bgp evpn summary"},
		{KindSONiC, command.FormatJSON, "vtysh -c 'show bgp evpn summary json'"},
		{KindSONiC, command.FormatText, "show bgp evpn summary"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+string(tt.format), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.wire(command.New("show bgp evpn summary", tt.format)))
		})
	}
}

func TestParseMetadata(t *testing.T) {
	md, err := parseMetadata(map[string]string{
		"hostname": "spine1",
		"hwsku":    "Force10-S6000",
		"platform": "x86_64-dell_s6000_s1220-r0",
		"mac":      "00:11:22:33:44:55",
	})
	require.NoError(t, err)
	assert.Equal(t, "spine1", md.Hostname)
	assert.Equal(t, "Force10-S6000", md.Model())

	md, err = parseMetadata(map[string]string{"platform": "x86_64-kvm_x86_64-r0"})
	require.NoError(t, err)
	assert.Equal(t, "x86_64-kvm_x86_64-r0", md.Model())

	_, err = parseMetadata(map[string]string{})
	assert.ErrorIs(t, err, util.ErrNotFound)
}
