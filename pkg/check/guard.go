package check

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/newtron-network/newtcheck/pkg/command"
)

// Verdict is a terminal outcome decided by a guard.
type Verdict struct {
	Status  Status
	Message string
}

// Skip returns a skipped verdict.
func Skip(format string, args ...any) *Verdict {
	return &Verdict{Status: StatusSkipped, Message: fmt.Sprintf(format, args...)}
}

// Fail returns an error verdict.
func Fail(format string, args ...any) *Verdict {
	return &Verdict{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

// Guard gates the predicate of a unit. Check returns nil to let the unit
// proceed, or a verdict that ends it.
type Guard interface {
	Name() string
	Check(ctx context.Context, u *Unit) *Verdict
}

// GuardFunc adapts a function into a Guard.
type GuardFunc struct {
	Label string
	Fn    func(ctx context.Context, u *Unit) *Verdict
}

func (g GuardFunc) Name() string { return g.Label }

func (g GuardFunc) Check(ctx context.Context, u *Unit) *Verdict {
	return g.Fn(ctx, u)
}

// platformGuard skips units whose device runs an excluded hardware model.
type platformGuard struct {
	models []string
}

// SkipOnPlatforms skips the unit on any of the given hardware models.
func SkipOnPlatforms(models ...string) Guard {
	return &platformGuard{models: slices.Clone(models)}
}

func (g *platformGuard) Name() string {
	return "skip-on-platforms(" + strings.Join(g.models, ",") + ")"
}

func (g *platformGuard) Check(_ context.Context, u *Unit) *Verdict {
	model := u.Device().HardwareModel()
	if slices.Contains(g.models, model) {
		return Skip("%s test is not supported on %s.", u.Name(), model)
	}
	return nil
}

// BGP address families understood by BGPFamilyEnabled.
const (
	FamilyIPv4 = "ipv4"
	FamilyIPv6 = "ipv6"
	FamilyEVPN = "evpn"
	FamilyRTC  = "rtc"
)

var bgpProbeCommands = map[string]string{
	FamilyIPv4: "show bgp ipv4 unicast summary vrf all",
	FamilyIPv6: "show bgp ipv6 unicast summary vrf all",
	FamilyEVPN: "show bgp evpn summary",
	FamilyRTC:  "show bgp rt-membership summary",
}

// BGPProbeCommand returns the probe command for a family.
func BGPProbeCommand(family string) (string, bool) {
	cmd, ok := bgpProbeCommands[family]
	return cmd, ok
}

// bgpFamilyGuard issues one probe command and skips the unit when the
// family has no configuration or no peers in the default VRF.
type bgpFamilyGuard struct {
	family string
}

// BGPFamilyEnabled gates a unit on the given BGP address family being
// configured with at least one peer.
func BGPFamilyEnabled(family string) Guard {
	return &bgpFamilyGuard{family: family}
}

func (g *bgpFamilyGuard) Name() string {
	return "bgp-family(" + g.family + ")"
}

func (g *bgpFamilyGuard) Check(ctx context.Context, u *Unit) *Verdict {
	text, ok := bgpProbeCommands[g.family]
	if !ok {
		return Fail("Wrong address family for bgp decorator: %s", g.family)
	}

	probe := command.New(text, command.FormatJSON)
	u.Logger().WithField("probe", text).Debug("running BGP family probe")
	if err := u.Device().Execute(ctx, []*command.Command{probe}); err != nil || !probe.Succeeded() {
		cause := err
		if probe.Err() != nil {
			cause = probe.Err()
		}
		if cause == nil {
			cause = errors.New("no output")
		}
		return Fail("failed to collect %q: %v", text, cause)
	}

	out := probe.Output()
	if !out.Has("vrfs") {
		return Skip("no BGP configuration for %s on this device", g.family)
	}
	vrfs, _ := out.Key("vrfs")
	n, err := vrfs.Len()
	if err != nil {
		return Fail("unexpected output shape: %v", err)
	}
	if n == 0 || !vrfs.Has("default") {
		return Skip("no %s peer on this device", g.family)
	}
	peers, err := vrfs.Lookup("default", "peers")
	if err != nil {
		return Skip("no %s peer on this device", g.family)
	}
	if n, err := peers.Len(); err != nil || n == 0 {
		return Skip("no %s peer on this device", g.family)
	}
	return nil
}

// requireInputsGuard skips units missing a runtime input.
type requireInputsGuard struct {
	keys []string
}

// RequireInputs skips the unit when any key is absent or zero.
func RequireInputs(keys ...string) Guard {
	return &requireInputsGuard{keys: slices.Clone(keys)}
}

func (g *requireInputsGuard) Name() string {
	return "require-inputs(" + strings.Join(g.keys, ",") + ")"
}

func (g *requireInputsGuard) Check(_ context.Context, u *Unit) *Verdict {
	for _, k := range g.keys {
		if !u.Inputs().Has(k) {
			return Skip("%s could not run because %s was not supplied", u.Name(), k)
		}
	}
	return nil
}
