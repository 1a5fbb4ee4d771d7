package main

import (
	"fmt"

	"github.com/aretw0/reshape/pkg/schema"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <schema>",
		Short: "Print a compiled schema as JSON or as an OpenAPI 3 schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			eng, err := e.engine(schema.Hooks{})
			if err != nil {
				return err
			}
			t, err := eng.Schema(args[0])
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("format")
			switch format {
			case "json":
				return writeJSON(cmd.OutOrStdout(), t.Schema(), true)
			case "openapi":
				return writeJSON(cmd.OutOrStdout(), t.OpenAPI(), true)
			default:
				return fmt.Errorf("unknown export format %q (want json or openapi)", format)
			}
		},
	}
	cmd.Flags().StringP("format", "f", "json", "Output format: json or openapi")
	return cmd
}
