package checks

import (
	"context"
	"fmt"

	"github.com/newtron-network/newtcheck/pkg/check"
	"github.com/newtron-network/newtcheck/pkg/command"
)

type bgpFamily struct {
	family string
	// label names the family in messages: IPv4, IPv6, EVPN, RTC.
	label string
}

var (
	bgpIPv4 = bgpFamily{family: check.FamilyIPv4, label: "IPv4"}
	bgpIPv6 = bgpFamily{family: check.FamilyIPv6, label: "IPv6"}
	bgpEVPN = bgpFamily{family: check.FamilyEVPN, label: "EVPN"}
	bgpRTC  = bgpFamily{family: check.FamilyRTC, label: "RTC"}
)

var bgpCategories = []string{"routing", "bgp"}

func bgpDefinitions() []*check.Definition {
	return []*check.Definition{
		unicastState(bgpIPv4),
		unicastCount(bgpIPv4),
		unicastState(bgpIPv6),
		unicastCount(bgpIPv6),
		overlayState(bgpEVPN),
		overlayCount(bgpEVPN),
		overlayState(bgpRTC),
		overlayCount(bgpRTC),
	}
}

var peerFields = []string{"peerState", "inMsgQueue", "outMsgQueue"}

// peerStateIssues returns, per VRF, the peers that are not established or
// have queued messages, with a snapshot of the offending fields.
func peerStateIssues(vrfs command.Node) (map[string]map[string]any, error) {
	names, err := vrfs.Keys()
	if err != nil {
		return nil, err
	}
	issues := make(map[string]map[string]any)
	for _, vrf := range names {
		peers, err := vrfs.Lookup(vrf, "peers")
		if err != nil {
			return nil, err
		}
		addrs, err := peers.Keys()
		if err != nil {
			return nil, err
		}
		for _, addr := range addrs {
			peer, _ := peers.Key(addr)
			ok, err := peerHealthy(peer)
			if err != nil {
				return nil, err
			}
			if ok {
				continue
			}
			snap, err := peer.Snapshot(peerFields...)
			if err != nil {
				return nil, err
			}
			if issues[vrf] == nil {
				issues[vrf] = make(map[string]any)
			}
			issues[vrf][addr] = snap
		}
	}
	return issues, nil
}

func peerHealthy(peer command.Node) (bool, error) {
	state, err := peer.Key("peerState")
	if err != nil {
		return false, err
	}
	s, err := state.Str()
	if err != nil {
		return false, err
	}
	for _, q := range []string{"inMsgQueue", "outMsgQueue"} {
		n, err := peer.Key(q)
		if err != nil {
			return false, err
		}
		depth, err := n.Int()
		if err != nil {
			return false, err
		}
		if depth != 0 {
			return false, nil
		}
	}
	return s == "Established", nil
}

// notEstablished lists peers whose session is not established, sorted.
func notEstablished(peers command.Node) ([]string, error) {
	addrs, err := peers.Keys()
	if err != nil {
		return nil, err
	}
	var down []string
	for _, addr := range addrs {
		state, err := peers.Lookup(addr, "peerState")
		if err != nil {
			return nil, err
		}
		s, err := state.Str()
		if err != nil {
			return nil, err
		}
		if s != "Established" {
			down = append(down, addr)
		}
	}
	return down, nil
}

func unicastState(f bgpFamily) *check.Definition {
	text, _ := check.BGPProbeCommand(f.family)
	return &check.Definition{
		Name: fmt.Sprintf("VerifyBGP%sUnicastState", f.label),
		Description: fmt.Sprintf("Verifies all %s unicast BGP sessions are established (for all VRF) "+
			"and all BGP messages queues for these sessions are empty (for all VRF).", f.label),
		Categories: bgpCategories,
		Commands:   []*command.Command{command.New(text, command.FormatJSON)},
		Guards:     []check.Guard{check.BGPFamilyEnabled(f.family)},
		Test: func(_ context.Context, u *check.Unit) error {
			vrfs, err := u.Command(0).Output().Key("vrfs")
			if err != nil {
				return err
			}
			issues, err := peerStateIssues(vrfs)
			if err != nil {
				return err
			}
			if len(issues) == 0 {
				u.Result().Success()
				return nil
			}
			u.Result().Failure(fmt.Sprintf("Some %s Unicast BGP Peer are not up: %s", f.label, detail(issues)))
			return nil
		},
	}
}

func unicastCount(f bgpFamily) *check.Definition {
	name := fmt.Sprintf("VerifyBGP%sUnicastCount", f.label)
	return &check.Definition{
		Name: name,
		Description: fmt.Sprintf("Verifies all %s unicast BGP sessions are established and all their BGP messages "+
			"queues are empty and the actual number of BGP %s unicast neighbors is the one we expect.", f.label, f.label),
		Categories: bgpCategories,
		Template: &command.Template{
			Text:   fmt.Sprintf("show bgp %s unicast summary vrf {vrf}", f.family),
			Format: command.FormatJSON,
		},
		Params: func(in check.Inputs) ([]map[string]any, error) {
			return []map[string]any{{"vrf": in.StringDefault("vrf", "default")}}, nil
		},
		Guards: []check.Guard{
			check.RequireInputs("number"),
			check.BGPFamilyEnabled(f.family),
		},
		ValidateInputs: inputTypes(name, []string{"number"}, []string{"vrf"}, nil, nil),
		Test: func(_ context.Context, u *check.Unit) error {
			number, err := intInput(u, "number")
			if err != nil {
				return err
			}
			vrf := fmt.Sprint(u.TemplateParams()[0]["vrf"])

			vrfs, err := u.Command(0).Output().Key("vrfs")
			if err != nil {
				return err
			}
			peers, err := vrfs.Lookup(vrf, "peers")
			if err != nil {
				return err
			}
			count, err := peers.Len()
			if err != nil {
				return err
			}
			issues, err := peerStateIssues(vrfs)
			if err != nil {
				return err
			}

			if count != number {
				u.Result().Failure(fmt.Sprintf("Expecting %d BGP peer in vrf %s and got %d", number, vrf, count))
			}
			if len(issues) > 0 {
				u.Result().Failure(fmt.Sprintf("The following %s peers are not established: %s", f.label, detail(issues)))
			}
			u.Result().Success()
			return nil
		},
	}
}

func overlayState(f bgpFamily) *check.Definition {
	text, _ := check.BGPProbeCommand(f.family)
	return &check.Definition{
		Name:        fmt.Sprintf("VerifyBGP%sState", f.label),
		Description: fmt.Sprintf("Verifies all %s BGP sessions are established (default VRF).", f.label),
		Categories:  bgpCategories,
		Commands:    []*command.Command{command.New(text, command.FormatJSON)},
		Guards:      []check.Guard{check.BGPFamilyEnabled(f.family)},
		Test: func(_ context.Context, u *check.Unit) error {
			peers, err := u.Command(0).Output().Lookup("vrfs", "default", "peers")
			if err != nil {
				return err
			}
			down, err := notEstablished(peers)
			if err != nil {
				return err
			}
			if len(down) == 0 {
				u.Result().Success()
				return nil
			}
			u.Result().Failure(fmt.Sprintf("The following %s peers are not established: %s", f.label, detail(down)))
			return nil
		},
	}
}

func overlayCount(f bgpFamily) *check.Definition {
	text, _ := check.BGPProbeCommand(f.family)
	name := fmt.Sprintf("VerifyBGP%sCount", f.label)
	return &check.Definition{
		Name: name,
		Description: fmt.Sprintf("Verifies all %s BGP sessions are established (default VRF) and the actual "+
			"number of BGP %s neighbors is the one we expect (default VRF).", f.label, f.label),
		Categories: bgpCategories,
		Commands:   []*command.Command{command.New(text, command.FormatJSON)},
		Guards: []check.Guard{
			check.RequireInputs("number"),
			check.BGPFamilyEnabled(f.family),
		},
		ValidateInputs: inputTypes(name, []string{"number"}, nil, nil, nil),
		Test: func(_ context.Context, u *check.Unit) error {
			number, err := intInput(u, "number")
			if err != nil {
				return err
			}
			peers, err := u.Command(0).Output().Lookup("vrfs", "default", "peers")
			if err != nil {
				return err
			}
			count, err := peers.Len()
			if err != nil {
				return err
			}
			down, err := notEstablished(peers)
			if err != nil {
				return err
			}

			if count != number {
				u.Result().Failure(fmt.Sprintf("Expecting %d BGP %s peers and got %d", number, f.label, count))
			}
			if len(down) > 0 {
				u.Result().Failure(fmt.Sprintf("The following %s peers are not established: %s", f.label, detail(down)))
			}
			u.Result().Success()
			return nil
		},
	}
}
