// Package pipeline moves records from a reader through a transformer into a
// writer.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/reshape/pkg/ports"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchSize   = 100
	DefaultConcurrency = 4
)

// Transformer is the part of *schema.Transformer the pipeline needs.
type Transformer interface {
	TransformBatch(records []map[string]any) ([]map[string]any, error)
}

// Options tunes a run. Zero values select the defaults.
type Options struct {
	// BatchSize is the number of records requested per Read.
	BatchSize int
	// Concurrency bounds how many batches are transformed at once.
	Concurrency int
	Logger      *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return o
}

// Stats summarizes a run.
type Stats struct {
	Read    int `json:"read"`
	Written int `json:"written"`
	Batches int `json:"batches"`
}

// Run reads batches from r until io.EOF, transforms up to
// opts.Concurrency of them in parallel and writes the results to w in
// source order. The writer is not closed.
//
// Run stops at the first error. Stats reflect the batches written before
// it, so a failed run can be resumed by the caller.
func Run(ctx context.Context, r ports.RecordReader, t Transformer, w ports.RecordWriter, opts Options) (Stats, error) {
	opts = opts.withDefaults()
	var stats Stats

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		window, eof, err := readWindow(ctx, r, opts)
		if err != nil {
			return stats, err
		}
		if len(window) > 0 {
			results, err := transformWindow(ctx, t, window, stats.Batches, opts.Concurrency)
			if err != nil {
				return stats, err
			}
			for i, batch := range results {
				n, err := w.Write(ctx, batch)
				stats.Written += n
				if err != nil {
					return stats, fmt.Errorf("write batch %d: %w", stats.Batches, err)
				}
				stats.Read += len(window[i])
				stats.Batches++
				opts.Logger.Debug("batch written", "batch", stats.Batches-1, "records", n)
			}
		}
		if eof {
			opts.Logger.Info("pipeline finished", "read", stats.Read, "written", stats.Written, "batches", stats.Batches)
			return stats, nil
		}
	}
}

// readWindow reads up to opts.Concurrency batches.
func readWindow(ctx context.Context, r ports.RecordReader, opts Options) ([][]map[string]any, bool, error) {
	window := make([][]map[string]any, 0, opts.Concurrency)
	for len(window) < opts.Concurrency {
		batch, err := r.Read(ctx, opts.BatchSize)
		if errors.Is(err, io.EOF) {
			return window, true, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("read: %w", err)
		}
		if len(batch) == 0 {
			continue
		}
		window = append(window, batch)
	}
	return window, false, nil
}

func transformWindow(ctx context.Context, t Transformer, window [][]map[string]any, first, limit int) ([][]map[string]any, error) {
	results := make([][]map[string]any, len(window))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, batch := range window {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := t.TransformBatch(batch)
			if err != nil {
				return fmt.Errorf("transform batch %d: %w", first+i, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
