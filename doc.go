/*
Package reshape maps loosely structured records onto a declared target shape.

A schema is a JSON-Schema-like document (YAML or JSON) describing the output:
each property names its type, an optional dotted source path into the input,
an optional format and an optional default. Transforming a record resolves
every property from its source, coerces it to the declared type, applies the
format and falls back to the default when any of those steps fail. Only
missing required fields are errors, and only in strict mode.

# Usage

	eng, err := reshape.New("./schemas", reshape.WithStrict(true))
	if err != nil {
		log.Fatal(err)
	}

	out, err := eng.Transform("users", map[string]any{
		"user_id": "42",
		"contact": map[string]any{"email": " ADA@EXAMPLE.COM "},
	})

The core lives in pkg/schema and can be used without the engine:

	t, err := schema.LoadFile("users.yaml")
	rec, err := t.TransformRecord(input)

Connectors in pkg/adapters feed pkg/pipeline, and the same registry can be
served over HTTP (pkg/adapters/http) or MCP (pkg/adapters/mcp).
*/
package reshape
