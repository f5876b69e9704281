package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtcheck/pkg/check"
	"github.com/newtron-network/newtcheck/pkg/cli"
)

func newListCmd(a *app) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available checks",
		Long: `List the built-in checks with their categories.

  newtcheck list
  newtcheck list --category bgp
  newtcheck list --categories          # category names only`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := check.DefaultRegistry
			out := cmd.OutOrStdout()

			if only, _ := cmd.Flags().GetBool("categories"); only {
				for _, c := range reg.Categories() {
					fmt.Fprintln(out, c)
				}
				return nil
			}

			var defs []*check.Definition
			if category != "" {
				defs = reg.ByCategory(category)
			} else {
				for _, n := range reg.Names() {
					def, _ := reg.Lookup(n)
					defs = append(defs, def)
				}
			}
			if len(defs) == 0 {
				fmt.Fprintf(out, "No checks in category %q (see 'newtcheck list --categories')\n", category)
				return nil
			}

			t := cli.NewTableWriter(out, "CHECK", "CATEGORIES", "DESCRIPTION")
			for _, def := range defs {
				t.Row(def.Name, strings.Join(def.Categories, ","), def.Description)
			}
			t.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only checks in this category")
	cmd.Flags().Bool("categories", false, "list category names only")
	return cmd
}
