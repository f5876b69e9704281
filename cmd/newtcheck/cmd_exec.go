package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtcheck/pkg/command"
	"github.com/newtron-network/newtcheck/pkg/device"
	"github.com/newtron-network/newtcheck/pkg/inventory"
	"github.com/newtron-network/newtcheck/pkg/util"
)

func newExecCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Run raw commands on devices",
	}
	cmd.AddCommand(newCollectCmd(a))
	return cmd
}

func newCollectCmd(a *app) *cobra.Command {
	var (
		invPath  string
		tags     string
		commands []string
		format   string
		outDir   string
		askPass  bool
	)

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Record command outputs as replay fixtures",
		Long: `Run commands on every selected device and write <out>/<device>.yaml.

The fixtures feed 'newtcheck run --replay <out>', so a catalog can be
evaluated offline against a recorded snapshot of the network.

  newtcheck exec collect --command "show version" --command "show bgp evpn summary" --out fixtures/
  newtcheck exec collect --tags spine --format text --command "show logging" --out fixtures/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(commands) == 0 {
				return fmt.Errorf("at least one --command is required")
			}
			f, err := command.ParseFormat(format)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("inventory") {
				a.settings.Inventory = invPath
			}

			inv, err := inventory.Load(a.settings.Inventory)
			if err != nil {
				return err
			}
			opts := inventory.BuildOptions{
				Timeout: a.settings.Timeout,
				Logger:  util.WithField("cmd", "collect"),
			}
			if askPass {
				if opts.Password, err = readPassword(); err != nil {
					return err
				}
			}
			devices, err := inventory.Build(inv.Filter(util.SplitCommaSeparated(tags)), opts)
			if err != nil {
				return err
			}
			defer closeDevices(devices)

			failed := 0
			for _, dev := range devices {
				path, err := collect(cmd.Context(), dev, commands, f, outDir)
				if err != nil {
					failed++
					util.WithDevice(dev.Name()).Errorf("collect: %v", err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", dev.Name(), path)
			}
			if failed > 0 {
				return fmt.Errorf("collection failed on %d of %d devices", failed, len(devices))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&invPath, "inventory", "i", "", "inventory file (default from settings)")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "only devices with one of these tags (comma-separated)")
	cmd.Flags().StringArrayVar(&commands, "command", nil, "command to record (repeatable)")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or text")
	cmd.Flags().StringVar(&outDir, "out", "fixtures", "fixture directory")
	cmd.Flags().BoolVar(&askPass, "ask-pass", false, "prompt for the device password")

	return cmd
}

// collect records texts on dev and writes the fixture, returning its path.
func collect(ctx context.Context, dev device.Device, texts []string, f command.Format, outDir string) (string, error) {
	cmds := make([]*command.Command, len(texts))
	for i, t := range texts {
		cmds[i] = command.New(t, f)
	}
	fixture, err := device.Record(ctx, dev, cmds)
	if err != nil {
		return "", err
	}
	data, err := fixture.Marshal()
	if err != nil {
		return "", err
	}
	path := filepath.Join(outDir, dev.Name()+".yaml")
	return path, util.WriteFileLocked(path, data)
}
