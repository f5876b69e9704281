package checks

import (
	"context"

	"github.com/newtron-network/newtcheck/pkg/check"
	"github.com/newtron-network/newtcheck/pkg/command"
)

func mlagDefinitions() []*check.Definition {
	return []*check.Definition{
		{
			Name:        "VerifyMlagStatus",
			Description: "Verifies the MLAG status: state is active, negotiation status is connected, local int is up, peer link is up.",
			Categories:  []string{"mlag"},
			Commands:    []*command.Command{command.New("show mlag", command.FormatJSON)},
			Test:        testMlagStatus,
		},
		{
			Name:        "VerifyMlagInterfaces",
			Description: "Verifies there are no inactive or active-partial MLAG ports.",
			Categories:  []string{"mlag"},
			Commands:    []*command.Command{command.New("show mlag", command.FormatJSON)},
			Test:        testMlagInterfaces,
		},
		{
			Name:        "VerifyMlagConfigSanity",
			Description: "Verifies there are no MLAG config-sanity inconsistencies.",
			Categories:  []string{"mlag"},
			Commands:    []*command.Command{command.New("show mlag config-sanity", command.FormatJSON)},
			Test:        testMlagConfigSanity,
		},
	}
}

// mlagDisabled reports whether "show mlag" output has state disabled.
func mlagDisabled(out command.Node) (bool, error) {
	state, err := out.Key("state")
	if err != nil {
		return false, err
	}
	s, err := state.Str()
	if err != nil {
		return false, err
	}
	return s == "disabled", nil
}

func testMlagStatus(_ context.Context, u *check.Unit) error {
	out := u.Command(0).Output()
	disabled, err := mlagDisabled(out)
	if err != nil {
		return err
	}
	if disabled {
		u.Result().Skipped("MLAG is disabled")
		return nil
	}

	snap, err := out.Snapshot("state", "negStatus", "localIntfStatus", "peerLinkStatus")
	if err != nil {
		return err
	}
	if snap["negStatus"] != "connected" || snap["localIntfStatus"] != "up" || snap["peerLinkStatus"] != "up" {
		u.Result().Failure("MLAG status is not OK: " + detail(snap))
		return nil
	}
	u.Result().Success()
	return nil
}

func testMlagInterfaces(_ context.Context, u *check.Unit) error {
	out := u.Command(0).Output()
	disabled, err := mlagDisabled(out)
	if err != nil {
		return err
	}
	if disabled {
		u.Result().Skipped("MLAG is disabled")
		return nil
	}

	ports, err := out.Key("mlagPorts")
	if err != nil {
		return err
	}
	for _, k := range []string{"Inactive", "Active-partial"} {
		n, err := ports.Key(k)
		if err != nil {
			return err
		}
		count, err := n.Int()
		if err != nil {
			return err
		}
		if count != 0 {
			u.Result().Failure("MLAG status is not OK: " + detail(ports.Value()))
			return nil
		}
	}
	u.Result().Success()
	return nil
}

func testMlagConfigSanity(_ context.Context, u *check.Unit) error {
	out := u.Command(0).Output()
	active, err := out.Key("mlagActive")
	if err != nil {
		return err
	}
	on, err := active.Bool()
	if err != nil {
		return err
	}
	if !on {
		u.Result().Skipped("MLAG is disabled")
		return nil
	}

	issues := make(map[string]any)
	for _, k := range []string{"globalConfiguration", "interfaceConfiguration"} {
		section, err := out.Key(k)
		if err != nil {
			return err
		}
		n, err := section.Len()
		if err != nil {
			return err
		}
		if n > 0 {
			issues[k] = section.Value()
		}
	}
	if len(issues) > 0 {
		u.Result().Failure("MLAG config-sanity returned inconsistencies: " + detail(issues))
		return nil
	}
	u.Result().Success()
	return nil
}
