/*
Package ports defines the driven ports (interfaces) of reshape.

These interfaces decouple the transformation core from the connectors that
produce and consume records, and from the surfaces that serve schemas.

# Key Interfaces

  - RecordReader: Produces batches of plain records from a source (file, Redis, memory).
  - RecordWriter: Consumes batches of transformed records.
  - Catalog: Looks up compiled schemas by name (implemented by registry.Registry).
*/
package ports
