package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/newtron-network/newtcheck/pkg/catalog"
	"github.com/newtron-network/newtcheck/pkg/check"
	_ "github.com/newtron-network/newtcheck/pkg/checks"
	"github.com/newtron-network/newtcheck/pkg/device"
	"github.com/newtron-network/newtcheck/pkg/inventory"
	"github.com/newtron-network/newtcheck/pkg/report"
	"github.com/newtron-network/newtcheck/pkg/runlog"
	"github.com/newtron-network/newtcheck/pkg/runner"
	"github.com/newtron-network/newtcheck/pkg/settings"
	"github.com/newtron-network/newtcheck/pkg/util"
)

type runOptions struct {
	inventory   string
	catalog     string
	allChecks   bool
	tags        string
	categories  string
	concurrency int
	timeout     string
	replayDir   string
	junitPath   string
	mdPath      string
	jsonPath    string
	askPass     bool
	quiet       bool
}

func newRunCmd(a *app) *cobra.Command {
	var o runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the catalog against the inventory",
		Long: `Run every catalog entry on every selected device and print the results.

  newtcheck run -i lab.yaml -c fabric.yaml
  newtcheck run --tags leaf --categories bgp,evpn
  newtcheck run --all                          # every built-in check, default inputs
  newtcheck run --replay fixtures/ --junit junit.xml --markdown report.md

Exit status is 1 when any check failed and 2 when any check errored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, &o)
		},
	}

	cmd.Flags().StringVarP(&o.inventory, "inventory", "i", "", "inventory file (default from settings)")
	cmd.Flags().StringVarP(&o.catalog, "catalog", "c", "", "catalog file (default from settings)")
	cmd.Flags().BoolVar(&o.allChecks, "all", false, "run every registered check instead of a catalog")
	cmd.Flags().StringVarP(&o.tags, "tags", "t", "", "only devices with one of these tags (comma-separated)")
	cmd.Flags().StringVar(&o.categories, "categories", "", "only checks in one of these categories (comma-separated)")
	cmd.Flags().IntVar(&o.concurrency, "concurrency", 0, "max units collecting at once (default from settings)")
	cmd.Flags().StringVar(&o.timeout, "timeout", "", "SSH dial and command timeout, e.g. 45s (default from settings)")
	cmd.Flags().StringVar(&o.replayDir, "replay", "", "answer commands from <dir>/<device>.yaml fixtures")
	cmd.Flags().StringVar(&o.junitPath, "junit", "", "JUnit XML output path")
	cmd.Flags().StringVar(&o.mdPath, "markdown", "", "markdown report path")
	cmd.Flags().StringVar(&o.jsonPath, "json", "", "JSON results path")
	cmd.Flags().BoolVar(&o.askPass, "ask-pass", false, "prompt for the device password")
	cmd.Flags().BoolVarP(&o.quiet, "quiet", "q", false, "no per-unit progress")

	return cmd
}

func (a *app) run(cmd *cobra.Command, o *runOptions) error {
	s := a.settings
	if cmd.Flags().Changed("inventory") {
		s.Inventory = o.inventory
	}
	if cmd.Flags().Changed("catalog") {
		s.Catalog = o.catalog
	}
	if cmd.Flags().Changed("concurrency") {
		if err := s.Set(settings.KeyConcurrency, fmt.Sprint(o.concurrency)); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("timeout") {
		if err := s.Set(settings.KeyTimeout, o.timeout); err != nil {
			return err
		}
	}

	reg := check.DefaultRegistry
	var cat *catalog.Catalog
	if o.allChecks {
		cat = catalog.FromRegistry(reg)
	} else {
		var err error
		if cat, err = catalog.Load(s.Catalog); err != nil {
			return err
		}
	}
	if err := cat.Resolve(reg); err != nil {
		return err
	}
	entries := cat.Filter(util.SplitCommaSeparated(o.categories))

	inv, err := inventory.Load(s.Inventory)
	if err != nil {
		return err
	}
	selected := inv.Filter(util.SplitCommaSeparated(o.tags))

	opts := inventory.BuildOptions{
		Timeout:   s.Timeout,
		ReplayDir: o.replayDir,
		Logger:    util.WithField("cmd", "run"),
	}
	if o.askPass && o.replayDir == "" {
		if opts.Password, err = readPassword(); err != nil {
			return err
		}
	}
	devices, err := inventory.Build(selected, opts)
	if err != nil {
		return err
	}
	defer closeDevices(devices)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &runner.Runner{
		Concurrency: s.Concurrency,
		Logger:      util.WithField("cmd", "run"),
	}
	if !o.quiet {
		r.Progress = &runner.ConsoleProgress{W: cmd.ErrOrStderr(), Verbose: a.verbose}
	}
	m := r.Run(ctx, devices, entries)

	gen := &report.Generator{Manager: m}
	gen.PrintConsole(cmd.OutOrStdout())
	writeReports(gen, map[string]string{
		"markdown": s.ReportPath(o.mdPath),
		"junit":    s.ReportPath(o.junitPath),
		"json":     s.ReportPath(o.jsonPath),
	})

	if s.RunLog != "" {
		if err := runlog.Append(s.RunLog, m); err != nil {
			util.Logger.Warnf("failed to append to run log: %v", err)
		}
	}

	switch m.Overall() {
	case check.StatusError:
		return errChecksErrored
	case check.StatusFailure:
		return errChecksFailed
	}
	return nil
}

// writeReports writes every requested report. A report that cannot be
// written is logged and does not change the exit status.
func writeReports(gen *report.Generator, paths map[string]string) {
	writers := map[string]func(string) error{
		"markdown": gen.WriteMarkdown,
		"junit":    gen.WriteJUnit,
		"json":     gen.WriteJSON,
	}
	for kind, path := range paths {
		if path == "" {
			continue
		}
		if err := writers[kind](path); err != nil {
			util.Logger.Warnf("failed to write %s report: %v", kind, err)
		}
	}
}

func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Device password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}

func closeDevices(devices []device.Device) {
	for _, d := range devices {
		if c, ok := d.(io.Closer); ok {
			if err := c.Close(); err != nil {
				util.WithDevice(d.Name()).Debugf("close: %v", err)
			}
		}
	}
}
