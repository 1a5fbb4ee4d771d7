package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ErrConfiguration is matched by every *ConfigurationError.
var ErrConfiguration = errors.New("invalid schema configuration")

// ValidationError reports a data contract violation: required fields still
// missing after transformation in strict mode, or a top-level value that does
// not have the shape of a record.
type ValidationError struct {
	Path    string   // Output path of the offending record ("" for the root)
	Missing []string // Required fields that were missing, in declared order
	Reason  string   // Human-readable reason when Missing is empty
}

func (e *ValidationError) Error() string {
	where := "record"
	if e.Path != "" {
		where = fmt.Sprintf("record at %q", e.Path)
	}
	if len(e.Missing) == 1 {
		return fmt.Sprintf("%s: required field %q is missing", where, e.Missing[0])
	}
	if len(e.Missing) > 1 {
		return fmt.Sprintf("%s: required fields %s are missing", where, quoteAll(e.Missing))
	}
	return fmt.Sprintf("%s: %s", where, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConfigurationError reports a schema that cannot be loaded or compiled.
type ConfigurationError struct {
	Source string // File path, or "" for in-memory definitions
	Path   string // Location inside the schema document (e.g. "properties.id.type")
	Err    error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("schema")
	if e.Source != "" {
		fmt.Fprintf(&b, " %s", e.Source)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " at %s", e.Path)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *ConfigurationError) Unwrap() []error { return []error{ErrConfiguration, e.Err} }

// CoercionError is the failure result of Coerce.
type CoercionError struct {
	Type   Type
	Value  any
	Reason string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %T to %s: %s", e.Value, e.Type, e.Reason)
}

// FormatError is the failure result of ApplyFormat.
type FormatError struct {
	Format string
	Value  any
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format %q: %v", e.Format, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

func configErrorf(path, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Path: path, Err: fmt.Errorf(format, args...)}
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}
