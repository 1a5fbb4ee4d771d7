package memory

import (
	"context"
	"io"
	"sync"
)

// Reader implements ports.RecordReader over an in-memory slice.
// Safe for concurrent use.
type Reader struct {
	mu      sync.Mutex
	records []map[string]any
	pos     int
}

// NewReader creates a reader over records. The slice is not copied.
func NewReader(records []map[string]any) *Reader {
	return &Reader{records: records}
}

// Read returns the next max records.
func (r *Reader) Read(ctx context.Context, max int) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pos >= len(r.records) {
		return nil, io.EOF
	}
	end := r.pos + max
	if max <= 0 || end > len(r.records) {
		end = len(r.records)
	}
	batch := make([]map[string]any, end-r.pos)
	copy(batch, r.records[r.pos:end])
	r.pos = end
	return batch, nil
}

// Writer implements ports.RecordWriter by collecting records in memory.
// Safe for concurrent use.
type Writer struct {
	mu      sync.RWMutex
	records []map[string]any
	closed  bool
}

// NewWriter creates an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write appends shallow copies of records.
func (w *Writer) Write(ctx context.Context, records []map[string]any) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, io.ErrClosedPipe
	}
	for _, rec := range records {
		copied := make(map[string]any, len(rec))
		for k, v := range rec {
			copied[k] = v
		}
		w.records = append(w.records, copied)
	}
	return len(records), nil
}

// Close marks the writer closed. Records stay readable.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

// Records returns everything written so far.
func (w *Writer) Records() []map[string]any {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]map[string]any, len(w.records))
	copy(out, w.records)
	return out
}
