package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/reshape"
	reshapehttp "github.com/aretw0/reshape/pkg/adapters/http"
	"github.com/aretw0/reshape/pkg/observability"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Serves the schema directory over HTTP: listing, export, transform and
validate endpoints, plus Prometheus metrics on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				e.cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
			}

			metrics := observability.NewMetrics(nil)
			eng, err := e.engine(metrics.Hooks())
			if err != nil {
				return err
			}

			handler := reshapehttp.NewHandler(eng.Registry(),
				reshapehttp.WithLogger(e.logger),
				reshapehttp.WithVersion(reshape.Version),
				reshapehttp.WithMetrics(metrics.Handler()),
			)
			srv := &http.Server{
				Addr:              e.cfg.HTTP.Addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)
			go func() {
				e.logger.Info("Starting reshape server", "addr", srv.Addr, "schemas_dir", e.cfg.SchemasDir, "schemas", eng.Registry().Len())
				serverErrors <- srv.ListenAndServe()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				e.logger.Info("Start shutdown")

				// Give outstanding requests a deadline for completion.
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					e.logger.Error("Graceful shutdown did not complete", "error", err)
					return srv.Close()
				}
				e.logger.Info("Server stopped gracefully")
				return nil
			}
		},
	}
	cmd.Flags().String("addr", "", "Address to listen on (overrides http.addr)")
	return cmd
}
