package ports

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContractRecords are the records used by the contract suites. They only
// hold strings, booleans, nulls and nesting so they survive any encoding.
func ContractRecords() []map[string]any {
	return []map[string]any{
		{"id": "1", "name": "Alice", "active": true},
		{"id": "2", "name": "Bob", "active": false, "tags": []any{"a", "b"}},
		{"id": "3", "user": map[string]any{"email": "c@d.e"}},
		{"id": "4", "note": nil},
		{"id": "5"},
	}
}

// RunReaderContract runs a suite of tests to verify that a RecordReader
// implementation adheres to the interface contract. seed must return a
// fresh reader over exactly the given records.
func RunReaderContract(t *testing.T, seed func(t *testing.T, records []map[string]any) RecordReader) {
	ctx := context.Background()

	t.Run("Reads In Batches", func(t *testing.T) {
		want := ContractRecords()
		r := seed(t, want)

		var got []map[string]any
		for i := 0; i < len(want)+1; i++ {
			batch, err := r.Read(ctx, 2)
			if errors.Is(err, io.EOF) {
				assert.Empty(t, batch)
				break
			}
			require.NoError(t, err)
			require.NotEmpty(t, batch, "Read must not return an empty batch without io.EOF")
			assert.LessOrEqual(t, len(batch), 2)
			got = append(got, batch...)
		}
		assert.Equal(t, want, got)

		_, err := r.Read(ctx, 2)
		assert.ErrorIs(t, err, io.EOF, "exhausted reader keeps returning io.EOF")
	})

	t.Run("Empty Source", func(t *testing.T) {
		r := seed(t, nil)
		batch, err := r.Read(ctx, 10)
		assert.ErrorIs(t, err, io.EOF)
		assert.Empty(t, batch)
	})

	t.Run("Canceled Context", func(t *testing.T) {
		r := seed(t, ContractRecords())
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := r.Read(cctx, 2)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// RunWriterContract runs a suite of tests to verify that a RecordWriter
// implementation adheres to the interface contract. setup returns a fresh
// writer and a function reading back everything written once it is closed.
func RunWriterContract(t *testing.T, setup func(t *testing.T) (RecordWriter, func() []map[string]any)) {
	ctx := context.Background()

	t.Run("Writes In Order", func(t *testing.T) {
		w, readBack := setup(t)
		records := ContractRecords()

		n, err := w.Write(ctx, records[:2])
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = w.Write(ctx, records[2:])
		require.NoError(t, err)
		assert.Equal(t, len(records)-2, n)

		n, err = w.Write(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)

		require.NoError(t, w.Close())
		assert.Equal(t, records, readBack())
	})

	t.Run("Canceled Context", func(t *testing.T) {
		w, _ := setup(t)
		defer w.Close()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := w.Write(cctx, ContractRecords())
		assert.ErrorIs(t, err, context.Canceled)
	})
}
