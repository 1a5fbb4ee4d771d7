package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/reshape/internal/presentation/tui"
	"github.com/aretw0/reshape/pkg/registry"
	"github.com/aretw0/reshape/pkg/schema"
	"github.com/spf13/cobra"
)

func newDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe [schema]",
		Short: "List schemas, or describe the fields of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			eng, err := e.engine(schema.Hooks{})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				reg := eng.Registry()
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tTITLE\tFIELDS\tREQUIRED")
				for _, name := range reg.List() {
					t, err := reg.Get(name)
					if err != nil {
						continue
					}
					info := registry.Describe(name, t)
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", info.Name, info.Title, len(info.Fields), strings.Join(info.Required, ","))
				}
				return tw.Flush()
			}

			t, err := eng.Schema(args[0])
			if err != nil {
				return err
			}
			plain, _ := cmd.Flags().GetBool("plain")
			styled := !plain && out == os.Stdout && tui.IsTerminal(os.Stdout)
			rendered, err := tui.NewRenderer(styled)(tui.SchemaMarkdown(args[0], t.Schema()))
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(out, rendered)
			return err
		},
	}
	cmd.Flags().Bool("plain", false, "Print raw markdown even on a terminal")
	return cmd
}
