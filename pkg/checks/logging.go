package checks

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/newtron-network/newtcheck/pkg/check"
	"github.com/newtron-network/newtcheck/pkg/command"
)

// "show logging" has no JSON form; these checks match its text.

var (
	persistFileRegexp = regexp.MustCompile(`-rw-\s+(\d+)`)
	accountingRegexp  = regexp.MustCompile(`cmd=show aaa accounting logs`)
)

// loggingStates trims "show logging" output to the operational states,
// dropping the external configuration section.
func loggingStates(u *check.Unit, output string) string {
	states, _, _ := strings.Cut(output, "\n\nExternal configuration:")
	u.Logger().WithField("states", states).Debug("device logging states")
	return states
}

func loggingDefinitions() []*check.Definition {
	showLogging := func() *command.Command { return command.New("show logging", command.FormatText) }
	return []*check.Definition{
		{
			Name:        "VerifyLoggingPersistent",
			Description: "Verifies if logging persistent is enabled and logs are saved in flash.",
			Categories:  []string{"logging"},
			Commands: []*command.Command{
				showLogging(),
				command.New("dir flash:/persist/messages", command.FormatText),
			},
			Test: testLoggingPersistent,
		},
		{
			Name:           "VerifyLoggingSourceIntf",
			Description:    "Verifies logging source-interface for a specified VRF.",
			Categories:     []string{"logging"},
			Commands:       []*command.Command{showLogging()},
			Guards:         []check.Guard{check.RequireInputs("interface")},
			ValidateInputs: inputTypes("VerifyLoggingSourceIntf", nil, []string{"interface", "vrf"}, nil, nil),
			Test:           testLoggingSourceIntf,
		},
		{
			Name:           "VerifyLoggingHosts",
			Description:    "Verifies logging hosts (syslog servers) for a specified VRF.",
			Categories:     []string{"logging"},
			Commands:       []*command.Command{showLogging()},
			Guards:         []check.Guard{check.RequireInputs("hosts")},
			ValidateInputs: inputTypes("VerifyLoggingHosts", nil, []string{"vrf"}, []string{"hosts"}, nil),
			Test:           testLoggingHosts,
		},
		{
			Name:        "VerifyLoggingErrors",
			Description: "Verifies there are no syslog messages with a severity of ERRORS or higher.",
			Categories:  []string{"logging"},
			Commands:    []*command.Command{command.New("show logging threshold errors", command.FormatText)},
			Test:        testLoggingErrors,
		},
		{
			Name:        "VerifyLoggingAccounting",
			Description: "Verifies if AAA accounting logs are generated.",
			Categories:  []string{"logging"},
			Commands:    []*command.Command{command.New("show aaa accounting logs | tail", command.FormatText)},
			Test:        testLoggingAccounting,
		},
	}
}

func testLoggingPersistent(_ context.Context, u *check.Unit) error {
	if strings.Contains(loggingStates(u, u.Command(0).TextOutput()), "Persistent logging: disabled") {
		u.Result().Failure("Persistent logging is disabled")
		return nil
	}
	m := persistFileRegexp.FindStringSubmatch(u.Command(1).TextOutput())
	if m == nil {
		u.Result().Failure("No persistent logs are saved in flash")
		return nil
	}
	if size, err := strconv.Atoi(m[1]); err != nil || size == 0 {
		u.Result().Failure("No persistent logs are saved in flash")
		return nil
	}
	u.Result().Success()
	return nil
}

func testLoggingSourceIntf(_ context.Context, u *check.Unit) error {
	intf, _ := u.Inputs().String("interface")
	vrf := u.Inputs().StringDefault("vrf", "default")
	pattern, err := regexp.Compile(fmt.Sprintf(`Logging source-interface '%s'.*VRF %s`,
		regexp.QuoteMeta(intf), regexp.QuoteMeta(vrf)))
	if err != nil {
		return err
	}
	if pattern.MatchString(loggingStates(u, u.Command(0).TextOutput())) {
		u.Result().Success()
		return nil
	}
	u.Result().Failure(fmt.Sprintf("Source-interface '%s' is not configured in VRF %s", intf, vrf))
	return nil
}

func testLoggingHosts(_ context.Context, u *check.Unit) error {
	hosts, _ := u.Inputs().Strings("hosts")
	vrf := u.Inputs().StringDefault("vrf", "default")
	states := loggingStates(u, u.Command(0).TextOutput())

	var missing []string
	for _, h := range hosts {
		pattern, err := regexp.Compile(fmt.Sprintf(`Logging to '%s'.*VRF %s`, regexp.QuoteMeta(h), regexp.QuoteMeta(vrf)))
		if err != nil {
			return err
		}
		if !pattern.MatchString(states) {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		u.Result().Failure(fmt.Sprintf("Syslog servers %s are not configured in VRF %s", detail(missing), vrf))
		return nil
	}
	u.Result().Success()
	return nil
}

func testLoggingErrors(_ context.Context, u *check.Unit) error {
	if len(u.Command(0).TextOutput()) == 0 {
		u.Result().Success()
		return nil
	}
	u.Result().Failure("Device has reported syslog messages with a severity of ERRORS or higher")
	return nil
}

func testLoggingAccounting(_ context.Context, u *check.Unit) error {
	if accountingRegexp.MatchString(u.Command(0).TextOutput()) {
		u.Result().Success()
		return nil
	}
	u.Result().Failure("AAA accounting logs are not generated")
	return nil
}
