package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/reshape/internal/config"
	"github.com/aretw0/reshape/pkg/adapters/file"
	"github.com/aretw0/reshape/pkg/adapters/redis"
	"github.com/aretw0/reshape/pkg/pipeline"
	"github.com/aretw0/reshape/pkg/ports"
	"github.com/aretw0/reshape/pkg/schema"
	"github.com/spf13/cobra"
)

func newPipelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline <schema>",
		Short: "Stream records from a source through a schema into a sink",
		Long: `Reads records in batches, transforms them in parallel and writes them in
source order.

Endpoints:
  -                 JSON lines on stdin / stdout
  jsonl:<path>      JSON lines file
  csv:<path>        CSV file, columns in schema field order (sink only)
  redis:<list>      Redis list, configured by the redis section`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("batch-size") {
				e.cfg.Pipeline.BatchSize, _ = flags.GetInt("batch-size")
			}
			if flags.Changed("concurrency") {
				e.cfg.Pipeline.Concurrency, _ = flags.GetInt("concurrency")
			}

			eng, err := e.engine(schema.Hooks{})
			if err != nil {
				return err
			}
			t, err := eng.Schema(args[0])
			if err != nil {
				return err
			}

			from, _ := flags.GetString("from")
			to, _ := flags.GetString("to")
			consume, _ := flags.GetBool("consume")

			reader, closeReader, err := openSource(cmd, from, e.cfg.Redis, consume)
			if err != nil {
				return err
			}
			defer closeReader()
			writer, err := openSink(cmd, to, e.cfg.Redis, t.Fields())
			if err != nil {
				return err
			}

			stats, runErr := pipeline.Run(cmd.Context(), reader, t, writer, pipeline.Options{
				BatchSize:   e.cfg.Pipeline.BatchSize,
				Concurrency: e.cfg.Pipeline.Concurrency,
				Logger:      e.logger,
			})
			if err := writer.Close(); err != nil && runErr == nil {
				runErr = err
			}
			e.logger.Info("pipeline done", "schema", args[0], "read", stats.Read, "written", stats.Written, "batches", stats.Batches)
			return runErr
		},
	}
	cmd.Flags().String("from", "-", "Record source")
	cmd.Flags().String("to", "-", "Record sink")
	cmd.Flags().Bool("consume", false, "Remove records from a redis source as they are read")
	cmd.Flags().Int("batch-size", 0, "Records per batch (overrides pipeline.batch_size)")
	cmd.Flags().Int("concurrency", 0, "Batches transformed in parallel (overrides pipeline.concurrency)")
	return cmd
}

func splitEndpoint(spec string) (kind, target string) {
	if spec == "-" || spec == "" {
		return "jsonl", "-"
	}
	kind, target, ok := strings.Cut(spec, ":")
	if !ok {
		return "jsonl", spec
	}
	return kind, target
}

func openSource(cmd *cobra.Command, spec string, rc config.RedisConfig, consume bool) (ports.RecordReader, func(), error) {
	kind, target := splitEndpoint(spec)
	switch kind {
	case "jsonl":
		if target == "-" {
			return file.NewJSONLReader(cmd.InOrStdin()), func() {}, nil
		}
		r, err := file.OpenJSONL(target)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	case "redis":
		opts := redisOptions(rc)
		if consume {
			opts = append(opts, redis.WithConsume())
		}
		l := redis.New(rc.Addr, rc.Password, rc.DB, target, opts...)
		return l, func() { _ = l.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported source %q", spec)
	}
}

func openSink(cmd *cobra.Command, spec string, rc config.RedisConfig, columns []string) (ports.RecordWriter, error) {
	kind, target := splitEndpoint(spec)
	switch kind {
	case "jsonl":
		if target == "-" {
			return file.NewJSONLWriter(cmd.OutOrStdout()), nil
		}
		return file.CreateJSONL(target)
	case "csv":
		if target == "-" {
			return file.NewCSVWriter(cmd.OutOrStdout(), columns), nil
		}
		return file.CreateCSV(target, columns)
	case "redis":
		return redis.New(rc.Addr, rc.Password, rc.DB, target, redisOptions(rc)...), nil
	default:
		return nil, fmt.Errorf("unsupported sink %q", spec)
	}
}

func redisOptions(rc config.RedisConfig) []redis.Option {
	opts := []redis.Option{redis.WithPrefix(rc.Prefix)}
	if rc.TTL > 0 {
		opts = append(opts, redis.WithTTL(rc.TTL))
	}
	return opts
}
