package ports

import (
	"context"

	"github.com/aretw0/reshape/pkg/schema"
)

// RecordReader produces plain nested records.
type RecordReader interface {
	// Read returns up to max records, in source order. Once the source is
	// exhausted it returns io.EOF and no records.
	Read(ctx context.Context, max int) ([]map[string]any, error)
}

// RecordWriter consumes records.
type RecordWriter interface {
	// Write appends records in order and returns how many were written.
	Write(ctx context.Context, records []map[string]any) (int, error)

	// Close flushes buffered output and releases the sink.
	Close() error
}

// Catalog resolves schemas by name.
type Catalog interface {
	// Get returns registry.ErrSchemaNotFound (wrapped) for unknown names.
	Get(name string) (*schema.Transformer, error)
	List() []string
}
