package checks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/newtron-network/newtcheck/pkg/check"
	"github.com/newtron-network/newtcheck/pkg/command"
	"github.com/newtron-network/newtcheck/pkg/util"
)

func connectivityDefinitions() []*check.Definition {
	return []*check.Definition{
		{
			Name:        "VerifyReachability",
			Description: "Test the network reachability to one or many destination IP(s).",
			Categories:  []string{"connectivity"},
			Template: &command.Template{
				Text:   "ping vrf {vrf} {destination} source {source} repeat 2",
				Format: command.FormatJSON,
			},
			Params:         reachabilityParams,
			Guards:         []check.Guard{check.RequireInputs("hosts")},
			ValidateInputs: inputTypes("VerifyReachability", nil, nil, nil, []string{"hosts"}),
			Test:           testReachability,
		},
		{
			Name:           "VerifyLLDPNeighbors",
			Description:    "Verifies that the provided LLDP neighbors are present and connected with the correct configuration.",
			Categories:     []string{"connectivity"},
			Commands:       []*command.Command{command.New("show lldp neighbors detail", command.FormatJSON)},
			Guards:         []check.Guard{check.RequireInputs("neighbors")},
			ValidateInputs: inputTypes("VerifyLLDPNeighbors", nil, nil, nil, []string{"neighbors"}),
			Test:           testLLDPNeighbors,
		},
	}
}

// reachabilityParams renders one ping per host; vrf defaults to "default".
func reachabilityParams(in check.Inputs) ([]map[string]any, error) {
	hosts, ok := in.List("hosts")
	if !ok || len(hosts) == 0 {
		return nil, util.NewConfigError("VerifyReachability", "hosts must be a non-empty list")
	}
	params := make([]map[string]any, 0, len(hosts))
	for i, h := range hosts {
		dst, _ := h["destination"].(string)
		src, _ := h["source"].(string)
		if dst == "" || src == "" {
			return nil, util.NewConfigError("VerifyReachability", "host %d needs destination and source", i)
		}
		if !util.IsValidIPv4(dst) {
			return nil, util.NewConfigError("VerifyReachability", "host %d destination %q is not an IPv4 address", i, dst)
		}
		if !util.IsValidIPv4(src) {
			src = util.NormalizeInterfaceName(src)
		}
		vrf, _ := h["vrf"].(string)
		if vrf == "" {
			vrf = "default"
		}
		params = append(params, map[string]any{"destination": dst, "source": src, "vrf": vrf})
	}
	return params, nil
}

func testReachability(_ context.Context, u *check.Unit) error {
	var failures [][2]string
	for i, cmd := range u.Commands() {
		params := u.TemplateParams()[i]
		messages, err := cmd.Output().Key("messages")
		if err != nil {
			return err
		}
		items, err := messages.Items()
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return &command.ShapeError{Path: messages.Path(), Reason: "empty array"}
		}
		text, err := items[0].Str()
		if err != nil {
			return err
		}
		if !strings.Contains(text, "2 received") {
			failures = append(failures, [2]string{fmt.Sprint(params["source"]), fmt.Sprint(params["destination"])})
		}
	}
	if len(failures) > 0 {
		u.Result().Failure("Connectivity test failed for the following source-destination pairs: " + detail(failures))
		return nil
	}
	u.Result().Success()
	return nil
}

type lldpNeighbor struct {
	port, device, remotePort string
}

func lldpInputs(in check.Inputs) ([]lldpNeighbor, error) {
	list, ok := in.List("neighbors")
	if !ok {
		return nil, errors.New("neighbors must be a list of mappings")
	}
	out := make([]lldpNeighbor, 0, len(list))
	for i, m := range list {
		port, _ := m["port"].(string)
		dev, _ := m["neighbor_device"].(string)
		remote, _ := m["neighbor_port"].(string)
		if port == "" || dev == "" || remote == "" {
			return nil, fmt.Errorf("neighbor %d needs port, neighbor_device and neighbor_port", i)
		}
		out = append(out, lldpNeighbor{
			port:       util.NormalizeInterfaceName(port),
			device:     dev,
			remotePort: util.NormalizeInterfaceName(remote),
		})
	}
	return out, nil
}

func testLLDPNeighbors(_ context.Context, u *check.Unit) error {
	expected, err := lldpInputs(u.Inputs())
	if err != nil {
		return util.NewConfigError(u.Name(), "%v", err)
	}
	table, err := u.Command(0).Output().Key("lldpNeighbors")
	if err != nil {
		return err
	}

	var missing, wrong []string
	for _, nb := range expected {
		info, err := table.Lookup(nb.port, "lldpNeighborInfo")
		if err != nil {
			// port absent from the table has no neighbor
			missing = append(missing, nb.port)
			continue
		}
		entries, err := info.Items()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			missing = append(missing, nb.port)
			continue
		}
		sysName, err := entries[0].Key("systemName")
		if err != nil {
			return err
		}
		name, err := sysName.Str()
		if err != nil {
			return err
		}
		remote, err := entries[0].Lookup("neighborInterfaceInfo", "interfaceId_v2")
		if err != nil {
			return err
		}
		remotePort, err := remote.Str()
		if err != nil {
			return err
		}
		if name != nb.device || util.NormalizeInterfaceName(remotePort) != nb.remotePort {
			wrong = append(wrong, nb.port)
		}
	}

	if len(missing) > 0 {
		u.Result().Failure("The following port(s) have no LLDP neighbor: " + detail(missing))
	}
	if len(wrong) > 0 {
		u.Result().Failure("The following port(s) have the wrong LLDP neighbor: " + detail(wrong))
	}
	u.Result().Success()
	return nil
}
