package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/reshape"
	"github.com/aretw0/reshape/internal/config"
	"github.com/aretw0/reshape/internal/logging"
	"github.com/aretw0/reshape/pkg/schema"
	"github.com/spf13/cobra"
)

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reshape",
		Short:         "Reshape loosely structured records into declared schemas",
		Long:          `reshape maps records onto YAML or JSON schemas: renaming, coercing, formatting and defaulting fields.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	root.PersistentFlags().String("config", config.DefaultPath, "Configuration file")
	root.PersistentFlags().StringP("schemas", "s", "", "Directory containing schema files (overrides schemas_dir)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides log_level)")
	root.PersistentFlags().Bool("strict", false, "Fail on missing required fields (overrides strict)")

	root.AddCommand(
		newTransformCmd(),
		newValidateCmd(),
		newDescribeCmd(),
		newExportCmd(),
		newServeCmd(),
		newMCPCmd(),
		newPipelineCmd(),
		newVersionCmd(),
	)
	return root
}

// env is what every subcommand needs: the merged configuration and a logger.
type env struct {
	cfg    config.Config
	logger *slog.Logger
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := config.Load(path, flags.Changed("config"))
	if err != nil {
		return nil, err
	}

	if flags.Changed("schemas") {
		cfg.SchemasDir, _ = flags.GetString("schemas")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("strict") {
		cfg.Strict, _ = flags.GetBool("strict")
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:    cfg,
		logger: logging.NewWithWriter(cmd.ErrOrStderr(), level),
	}, nil
}

func (e *env) engine(hooks schema.Hooks) (*reshape.Engine, error) {
	eng, err := reshape.New(e.cfg.SchemasDir,
		reshape.WithLogger(e.logger),
		reshape.WithStrict(e.cfg.Strict),
		reshape.WithHooks(hooks),
	)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("engine ready", "schemas_dir", e.cfg.SchemasDir, "schemas", eng.Loaded())
	return eng, nil
}
