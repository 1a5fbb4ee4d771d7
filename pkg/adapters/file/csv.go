package file

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"reflect"
	"time"

	"github.com/aretw0/reshape/pkg/schema"
	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// CSVWriter implements ports.RecordWriter as a CSV table. The header row is
// the column list, which is usually the schema's field order. Keys not in
// the column list are dropped.
type CSVWriter struct {
	w       *csv.Writer
	columns []string
	header  bool
	closer  io.Closer
}

// NewCSVWriter writes a table with the given columns to w.
func NewCSVWriter(w io.Writer, columns []string) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w), columns: columns}
}

// CreateCSV creates (or truncates) a CSV file. "-" writes stdout.
func CreateCSV(path string, columns []string) (*CSVWriter, error) {
	if path == "-" {
		return NewCSVWriter(os.Stdout, columns), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}
	w := NewCSVWriter(f, columns)
	w.closer = f
	return w, nil
}

// Write appends one row per record.
func (c *CSVWriter) Write(ctx context.Context, records []map[string]any) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := c.writeHeader(); err != nil {
		return 0, err
	}
	row := make([]string, len(c.columns))
	for i, rec := range records {
		for j, col := range c.columns {
			row[j] = cell(rec[col])
		}
		if err := c.w.Write(row); err != nil {
			return i, fmt.Errorf("failed to write row: %w", err)
		}
	}
	return len(records), nil
}

// Close writes the header if nothing else was written, then flushes.
func (c *CSVWriter) Close() error {
	err := c.writeHeader()
	if err == nil {
		c.w.Flush()
		err = c.w.Error()
	}
	if c.closer != nil {
		if cerr := c.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (c *CSVWriter) writeHeader() error {
	if c.header {
		return nil
	}
	c.header = true
	if err := c.w.Write(c.columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case schema.Date:
		return x.String()
	}
	switch reflect.Indirect(reflect.ValueOf(v)).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		b, err := json.Marshal(v)
		if err == nil {
			return string(b)
		}
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}
