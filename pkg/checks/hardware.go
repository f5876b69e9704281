package checks

import (
	"context"
	"fmt"

	"github.com/newtron-network/newtcheck/pkg/check"
	"github.com/newtron-network/newtcheck/pkg/command"
)

// Virtual platforms have no hardware drop counters.
var virtualPlatforms = []string{"cEOSLab", "vEOS-lab"}

func hardwareDefinitions() []*check.Definition {
	return []*check.Definition{
		{
			Name:        "VerifyDropCounters",
			Description: "Verifies there are no adverse drops on the forwarding ASICs.",
			Categories:  []string{"hardware"},
			Commands:    []*command.Command{command.New("show hardware counter drop", command.FormatJSON)},
			Guards:      []check.Guard{check.SkipOnPlatforms(virtualPlatforms...)},
			Test:        testDropCounters,
		},
	}
}

func testDropCounters(_ context.Context, u *check.Unit) error {
	total, err := u.Command(0).Output().Key("totalAdverseDrops")
	if err != nil {
		return err
	}
	n, err := total.Int()
	if err != nil {
		return err
	}
	if n != 0 {
		u.Result().Failure(fmt.Sprintf("Device totalAdverseDrops counter is: '%d'", n))
		return nil
	}
	u.Result().Success()
	return nil
}
