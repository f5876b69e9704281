package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtcheck/pkg/cli"
	"github.com/newtron-network/newtcheck/pkg/settings"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage persistent settings",
		Long: `Manage persistent settings stored in ~/.newtcheck/settings.yaml.

Settings provide defaults for run flags. NEWTCHECK_<KEY> environment
variables override the file, and flags override both.

Examples:
  newtcheck settings show
  newtcheck settings set inventory /etc/newtcheck/lab.yaml
  newtcheck settings set concurrency 20
  newtcheck settings clear`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Settings file: %s\n\n", a.settingsPath)

				t := cli.NewTableWriter(out, "SETTING", "VALUE")
				for _, key := range settings.Keys() {
					value, _ := a.settings.Get(key)
					if value == "" {
						value = "(not set)"
					}
					t.Row(key, value)
				}
				t.Flush()
				return nil
			},
		},
		&cobra.Command{
			Use:   "get <setting>",
			Short: "Get a setting value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				value, err := a.settings.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <setting> <value>",
			Short: "Set a setting value",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.settings.Set(args[0], args[1]); err != nil {
					return err
				}
				if err := a.settings.SaveTo(a.settingsPath); err != nil {
					return fmt.Errorf("saving settings: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s set to: %s\n", args[0], args[1])
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Reset all settings to defaults",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a.settings.Clear()
				if err := a.settings.SaveTo(a.settingsPath); err != nil {
					return fmt.Errorf("saving settings: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All settings cleared.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show settings file path",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), a.settingsPath)
			},
		},
	)
	return cmd
}
