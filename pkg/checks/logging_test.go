package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/newtron-network/newtcheck/pkg/check"
	"github.com/newtron-network/newtcheck/pkg/device"
)

const showLogging = `Syslog logging: enabled
    Buffer logging: level debugging
    Console logging: level errors
    Persistent logging: level debugging
    Monitor logging: level errors
    Synchronous logging: disabled
    Trap logging: level informational
    Logging to '10.22.10.92' port 514 in VRF MGMT via udp
    Logging to '10.22.10.93' port 514 in VRF MGMT via tcp
    Logging source-interface 'Management0', IP Address 172.20.20.12 in VRF MGMT

External configuration:
    Logging to '10.22.10.94' port 514 in VRF default via udp
`

func loggingDevice(outputs map[string]any) *device.Replay {
	return device.NewReplay("leaf1", "", outputs)
}

func TestVerifyLoggingPersistent(t *testing.T) {
	tests := []struct {
		name    string
		logging string
		dir     string
		status  check.Status
		msgs    []string
	}{
		{
			name:    "success",
			logging: showLogging,
			dir:     "Directory of flash:/persist/messages\n\n       -rw-        9948           May 10 13:54  messages\n",
			status:  check.StatusSuccess,
		},
		{
			name:    "disabled",
			logging: "Syslog logging: enabled\n    Persistent logging: disabled\n",
			dir:     "",
			status:  check.StatusFailure,
			msgs:    []string{"Persistent logging is disabled"},
		},
		{
			name:    "empty file",
			logging: showLogging,
			dir:     "Directory of flash:/persist/messages\n\n       -rw-        0           May 10 13:54  messages\n",
			status:  check.StatusFailure,
			msgs:    []string{"No persistent logs are saved in flash"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := loggingDevice(map[string]any{
				"show logging":                tt.logging,
				"dir flash:/persist/messages": tt.dir,
			})
			res := runCheck(t, "VerifyLoggingPersistent", dev, nil)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.msgs, res.Messages)
		})
	}
}

func TestVerifyLoggingSourceIntf(t *testing.T) {
	dev := loggingDevice(map[string]any{"show logging": showLogging})

	res := runCheck(t, "VerifyLoggingSourceIntf", dev, check.Inputs{"interface": "Management0", "vrf": "MGMT"})
	assert.Equal(t, check.StatusSuccess, res.Status)

	res = runCheck(t, "VerifyLoggingSourceIntf", dev, check.Inputs{"interface": "Management0"})
	assert.Equal(t, check.StatusFailure, res.Status)
	assert.Equal(t, []string{"Source-interface 'Management0' is not configured in VRF default"}, res.Messages)

	res = runCheck(t, "VerifyLoggingSourceIntf", dev, nil)
	assert.Equal(t, check.StatusSkipped, res.Status)
}

func TestVerifyLoggingHosts(t *testing.T) {
	dev := loggingDevice(map[string]any{"show logging": showLogging})

	res := runCheck(t, "VerifyLoggingHosts", dev, check.Inputs{"hosts": []any{"10.22.10.92", "10.22.10.93"}, "vrf": "MGMT"})
	assert.Equal(t, check.StatusSuccess, res.Status)

	// 10.22.10.94 only appears in the external configuration section.
	res = runCheck(t, "VerifyLoggingHosts", dev, check.Inputs{"hosts": []any{"10.22.10.94"}})
	assert.Equal(t, check.StatusFailure, res.Status)
	assert.Equal(t, []string{`Syslog servers ["10.22.10.94"] are not configured in VRF default`}, res.Messages)
}

func TestVerifyLoggingErrors(t *testing.T) {
	dev := loggingDevice(map[string]any{"show logging threshold errors": ""})
	assert.Equal(t, check.StatusSuccess, runCheck(t, "VerifyLoggingErrors", dev, nil).Status)

	dev = loggingDevice(map[string]any{
		"show logging threshold errors": "Oct 1 10:00:00 leaf1 Ebra: %LINEPROTO-3-UPDOWN: Line protocol down\n",
	})
	res := runCheck(t, "VerifyLoggingErrors", dev, nil)
	assert.Equal(t, check.StatusFailure, res.Status)
	assert.Equal(t, []string{"Device has reported syslog messages with a severity of ERRORS or higher"}, res.Messages)
}

func TestVerifyLoggingAccounting(t *testing.T) {
	dev := loggingDevice(map[string]any{
		"show aaa accounting logs | tail": "Fri Oct 13 2023 admin ssh 10.0.0.1 stop service=shell priv-lvl=15 cmd=show aaa accounting logs | tail\n",
	})
	assert.Equal(t, check.StatusSuccess, runCheck(t, "VerifyLoggingAccounting", dev, nil).Status)

	dev = loggingDevice(map[string]any{"show aaa accounting logs | tail": "\n"})
	res := runCheck(t, "VerifyLoggingAccounting", dev, nil)
	assert.Equal(t, check.StatusFailure, res.Status)
	assert.Equal(t, []string{"AAA accounting logs are not generated"}, res.Messages)
}
