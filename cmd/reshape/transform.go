package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/reshape/pkg/schema"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newTransformCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transform <schema> [file]",
		Short: "Transform a JSON record or array of records",
		Long: `Reads one JSON document (an object or an array of objects) from file,
or from stdin when file is omitted or "-", and prints the transformed result.`,
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
			data, err := readDocument(cmd, args[1:])
			if err != nil {
				return err
			}

			out, err := eng.Transform(args[0], data)
			if err != nil {
				return err
			}
			compact, _ := cmd.Flags().GetBool("compact")
			return writeJSON(cmd.OutOrStdout(), out, !compact)
		},
	}
	cmd.Flags().Bool("compact", false, "Print compact JSON")
	return cmd
}

// readDocument decodes a single JSON document from the file named in args,
// or from stdin.
func readDocument(cmd *cobra.Command, args []string) (any, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("no input document")
		}
		return nil, fmt.Errorf("invalid input document: %w", err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any, indent bool) error {
	var b []byte
	var err error
	if indent {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	buf.Write(b)
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}
