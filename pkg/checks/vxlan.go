package checks

import (
	"context"
	"fmt"

	"github.com/newtron-network/newtcheck/pkg/check"
	"github.com/newtron-network/newtcheck/pkg/command"
)

// config-sanity categories that must pass
var vxlanSanityCategories = []string{"localVtep", "mlag", "pd"}

func vxlanDefinitions() []*check.Definition {
	return []*check.Definition{
		{
			Name:        "VerifyVxlan",
			Description: "Verifies if Vxlan1 interface is configured, and is up/up.",
			Categories:  []string{"vxlan"},
			Commands:    []*command.Command{command.New("show interfaces description", command.FormatJSON)},
			Test:        testVxlan,
		},
		{
			Name:        "VerifyVxlanConfigSanity",
			Description: "Verifies that there are no VXLAN config-sanity issues flagged.",
			Categories:  []string{"vxlan"},
			Commands:    []*command.Command{command.New("show vxlan config-sanity", command.FormatJSON)},
			Test:        testVxlanConfigSanity,
		},
	}
}

func testVxlan(_ context.Context, u *check.Unit) error {
	descr, err := u.Command(0).Output().Key("interfaceDescriptions")
	if err != nil {
		return err
	}
	if !descr.Has("Vxlan1") {
		u.Result().Skipped("Vxlan1 interface is not configured")
		return nil
	}
	vx, _ := descr.Key("Vxlan1")
	line, err := vx.Key("lineProtocolStatus")
	if err != nil {
		return err
	}
	status, err := vx.Key("interfaceStatus")
	if err != nil {
		return err
	}
	lineStr, err := line.Str()
	if err != nil {
		return err
	}
	statusStr, err := status.Str()
	if err != nil {
		return err
	}
	if lineStr == "up" && statusStr == "up" {
		u.Result().Success()
		return nil
	}
	u.Result().Failure(fmt.Sprintf("Vxlan1 interface is %s/%s", lineStr, statusStr))
	return nil
}

func testVxlanConfigSanity(_ context.Context, u *check.Unit) error {
	categories, err := u.Command(0).Output().Key("categories")
	if err != nil {
		return err
	}
	n, err := categories.Len()
	if err != nil {
		return err
	}
	if n == 0 {
		u.Result().Skipped("VXLAN is not configured on this device")
		return nil
	}

	failed := make(map[string]any)
	for _, name := range vxlanSanityCategories {
		if !categories.Has(name) {
			continue
		}
		cat, _ := categories.Key(name)
		pass, err := cat.Key("allCheckPass")
		if err != nil {
			return err
		}
		ok, err := pass.Bool()
		if err != nil {
			return err
		}
		if !ok {
			failed[name] = cat.Value()
		}
	}
	if len(failed) > 0 {
		u.Result().Failure("Vxlan config sanity check is not passing: " + detail(failed))
		return nil
	}
	u.Result().Success()
	return nil
}
