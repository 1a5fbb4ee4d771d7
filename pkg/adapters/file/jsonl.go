package file

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
)

// JSONLReader implements ports.RecordReader over a stream of JSON objects,
// conventionally one per line. Numbers are decoded as json.Number so that
// large integers survive until the schema coerces them.
type JSONLReader struct {
	dec    *json.Decoder
	closer io.Closer
	count  int
	done   bool
}

// NewJSONLReader reads records from r.
func NewJSONLReader(r io.Reader) *JSONLReader {
	dec := json.NewDecoder(bufio.NewReader(r))
	dec.UseNumber()
	return &JSONLReader{dec: dec}
}

// OpenJSONL opens a JSON-lines file. "-" reads stdin.
func OpenJSONL(path string) (*JSONLReader, error) {
	if path == "-" {
		return NewJSONLReader(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	r := NewJSONLReader(f)
	r.closer = f
	return r, nil
}

// Read decodes up to max records.
func (r *JSONLReader) Read(ctx context.Context, max int) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.done {
		return nil, io.EOF
	}

	var batch []map[string]any
	for max <= 0 || len(batch) < max {
		var rec map[string]any
		err := r.dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			r.done = true
			break
		}
		if err != nil {
			return batch, fmt.Errorf("record %d: %w", r.count+1, err)
		}
		r.count++
		batch = append(batch, rec)
	}
	if len(batch) == 0 {
		return nil, io.EOF
	}
	return batch, nil
}

// Close closes the underlying file, if the reader opened it.
func (r *JSONLReader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// JSONLWriter implements ports.RecordWriter, writing one JSON object per line.
type JSONLWriter struct {
	buf    *bufio.Writer
	enc    *json.Encoder
	closer io.Closer
}

// NewJSONLWriter writes records to w. Close flushes but does not close w.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	buf := bufio.NewWriter(w)
	return &JSONLWriter{buf: buf, enc: json.NewEncoder(buf)}
}

// CreateJSONL creates (or truncates) a JSON-lines file. "-" writes stdout.
func CreateJSONL(path string) (*JSONLWriter, error) {
	if path == "-" {
		return NewJSONLWriter(os.Stdout), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}
	w := NewJSONLWriter(f)
	w.closer = f
	return w, nil
}

// Write encodes records, one per line.
func (w *JSONLWriter) Write(ctx context.Context, records []map[string]any) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	for i, rec := range records {
		if err := w.enc.Encode(rec); err != nil {
			return i, fmt.Errorf("failed to encode record: %w", err)
		}
	}
	return len(records), nil
}

// Close flushes buffered lines and closes the file if the writer created it.
func (w *JSONLWriter) Close() error {
	err := w.buf.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
