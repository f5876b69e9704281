// Newtcheck - network state checks for EOS and SONiC fabrics
//
// Newtcheck runs a catalog of read-only checks against every device in an
// inventory and reports one result per (device, check):
//
//	newtcheck run -i inventory.yaml -c catalog.yaml         # run the catalog
//	newtcheck run --tags spine --categories bgp,evpn        # narrow the run
//	newtcheck run --replay fixtures/ --junit junit.xml      # offline, for CI
//	newtcheck list --category bgp                           # available checks
//	newtcheck exec collect --command "show version" --out fixtures/
//
// Exit status is 0 when nothing failed, 1 when a check failed and 2 when a
// check could not be evaluated.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtcheck/pkg/cli"
	"github.com/newtron-network/newtcheck/pkg/settings"
	"github.com/newtron-network/newtcheck/pkg/util"
	"github.com/newtron-network/newtcheck/pkg/version"
)

// Sentinel errors for exit code mapping. RunE handlers return these instead
// of calling os.Exit directly, so deferred cleanup (like closing sessions) runs.
var (
	errChecksFailed  = errors.New("one or more checks failed")
	errChecksErrored = errors.New("one or more checks could not be evaluated")
)

type app struct {
	settingsPath string
	verbose      bool
	logFormat    string
	noColor      bool

	settings *settings.Settings
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errChecksErrored):
		return 2
	case errors.Is(err, errChecksFailed):
		return 1
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 2
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "newtcheck",
		Short: "Network state checks for EOS and SONiC fabrics",
		Long: `Newtcheck runs read-only checks against network devices and reports a
success, failure, skipped or error result for every (device, check) pair.

Devices come from an inventory file, checks from a catalog file. Defaults for
both live in ~/.newtcheck/settings.yaml and NEWTCHECK_* environment variables.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.settingsPath, "settings", settings.DefaultSettingsPath(), "settings file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text or json")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(
		newRunCmd(a),
		newListCmd(a),
		newExecCmd(a),
		newSettingsCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				if version.Version == "dev" {
					fmt.Fprintln(cmd.OutOrStdout(), "newtcheck dev build (use 'make build' for version info)")
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "newtcheck %s\n", version.Info())
				}
			},
		},
	)

	return rootCmd
}

// setup loads settings and configures logging and color for every command.
func (a *app) setup(cmd *cobra.Command) error {
	s, err := settings.LoadFrom(a.settingsPath)
	if err != nil {
		return err
	}
	a.settings = s

	level := s.LogLevel
	if a.verbose {
		level = "debug"
	}
	if err := util.SetLogLevel(level); err != nil {
		return util.NewConfigError("", "log level: %v", err)
	}

	format := s.LogFormat
	if cmd.Flags().Changed("log-format") {
		format = a.logFormat
	}
	switch format {
	case "json":
		util.SetJSONFormat()
	case "text", "":
	default:
		return util.NewConfigError("", "unknown log format %q (expected text or json)", format)
	}

	if a.noColor {
		cli.SetColor(false)
	} else {
		cli.ColorFor(cmd.OutOrStdout())
	}
	return nil
}
