package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/reshape"
	"github.com/aretw0/reshape/pkg/adapters/mcp"
	"github.com/aretw0/reshape/pkg/schema"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Exposes the schema directory to AI agents as MCP tools
(list_schemas, describe_schema, transform_record, validate_record).

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			eng, err := e.engine(schema.Hooks{})
			if err != nil {
				return err
			}

			transport, _ := cmd.Flags().GetString("transport")
			port, _ := cmd.Flags().GetInt("port")
			srv := mcp.NewServer(eng.Registry(), reshape.Version, e.logger)

			switch transport {
			case "stdio":
				// Logs already go to stderr so JSON-RPC on stdout stays clean.
				e.logger.Info("Starting reshape MCP Server (Stdio)")
				return srv.ServeStdio()
			case "sse":
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return srv.ServeSSE(ctx, port)
			default:
				return fmt.Errorf("unknown transport %q (want stdio or sse)", transport)
			}
		},
	}
	cmd.Flags().StringP("transport", "t", "stdio", "Transport: stdio or sse")
	cmd.Flags().IntP("port", "p", 8080, "Port for the sse transport")
	return cmd
}
