package main

import (
	"fmt"

	"github.com/aretw0/reshape/pkg/schema"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <schema> [file]",
		Short: "Check whether a JSON document satisfies a schema",
		Long: `Runs the transformation without printing it. Exits non-zero when the
document is not valid. Missing required fields only fail in strict mode.`,
		Args: cobra.RangeArgs(1, 2),
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
			data, err := readDocument(cmd, args[1:])
			if err != nil {
				return err
			}

			if err := t.Check(data); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "✗ invalid: %v\n", err)
				return fmt.Errorf("validation failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ valid")
			return nil
		},
	}
}
