// Package schema maps arbitrary nested records onto a declared target shape.
//
// A schema is a small JSON-Schema-like document. Each property names an output
// field and may declare a type, a dotted source path into the input record, a
// default and a format:
//
//	title: user
//	type: object
//	required: [id]
//	properties:
//	  id:
//	    type: integer
//	  email:
//	    type: string
//	    source: user.contact.email
//	    format: email
//	  status:
//	    type: string
//	    default: pending
//
// Schemas are compiled once by a validating parser (New, Parse, LoadFile)
// and then driven by a Transformer:
//
//	t, err := schema.LoadFile("user.yaml", schema.WithStrict(true))
//	if err != nil {
//	    // *ConfigurationError
//	}
//
//	out, err := t.Transform(map[string]any{
//	    "id":   "42",
//	    "user": map[string]any{"contact": map[string]any{"email": " A@B.com "}},
//	})
//	// out == map[string]any{"id": int64(42), "email": "a@b.com", "status": "pending"}
//
// For every property the Transformer resolves the source value, runs a
// registered custom function if there is one, otherwise coerces the value to
// the declared type and applies the declared format. Field-level problems are
// absorbed: the field falls back to its default (or nil) and the failure is
// logged and reported through Hooks. Only structural problems surface as
// errors: a required field still missing in strict mode, or a top-level value
// that is not a record, yields a *ValidationError.
//
// This is not a general JSON Schema validator. $ref, oneOf, anyOf and
// pattern/length constraints are not supported.
package schema
