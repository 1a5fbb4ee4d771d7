package schema

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// FieldFunc is a custom field transformer. It receives the raw resolved
// source value and its result is used verbatim.
type FieldFunc func(any) any

// Option configures a Transformer.
type Option func(*Transformer)

// WithStrict makes missing required fields fail the call with a
// *ValidationError instead of being left nil.
func WithStrict(strict bool) Option {
	return func(t *Transformer) {
		t.strict = strict
	}
}

// WithLogger sets the logger used for absorbed field problems.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transformer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks Hooks) Option {
	return func(t *Transformer) {
		t.hooks = hooks
	}
}

// WithName overrides the name reported in logs and events.
func WithName(name string) Option {
	return func(t *Transformer) {
		t.name = name
	}
}

// Transformer maps records onto a compiled schema. It is safe for
// concurrent use, including AddCustomTransformer.
type Transformer struct {
	root   *Node
	name   string
	strict bool
	logger *slog.Logger
	hooks  Hooks

	mu sync.RWMutex
	// custom is replaced on every registration and never mutated in place.
	custom map[string]FieldFunc
}

func newTransformer(root *Node, opts []Option) *Transformer {
	t := &Transformer{
		root:   root,
		name:   root.Title,
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		custom: map[string]FieldFunc{},
	}
	if t.name == "" {
		t.name = "untitled"
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the schema name used in logs and events.
func (t *Transformer) Name() string { return t.name }

// Strict reports whether the transformer runs in strict mode.
func (t *Transformer) Strict() bool { return t.strict }

// Schema returns the compiled root node. It must not be modified.
func (t *Transformer) Schema() *Node { return t.root }

// Fields returns the property names declared at the schema root, in order.
func (t *Transformer) Fields() []string { return t.root.FieldNames() }

// RequiredFields returns the required names declared at the schema root.
func (t *Transformer) RequiredFields() []string {
	out := make([]string, len(t.root.Required))
	copy(out, t.root.Required)
	return out
}

// AddCustomTransformer registers fn for every property named field, at any
// nesting level. A later registration for the same name replaces it.
func (t *Transformer) AddCustomTransformer(field string, fn FieldFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := make(map[string]FieldFunc, len(t.custom)+1)
	for k, v := range t.custom {
		next[k] = v
	}
	if fn == nil {
		delete(next, field)
	} else {
		next[field] = fn
	}
	t.custom = next
}

func (t *Transformer) customFuncs() map[string]FieldFunc {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.custom
}

// Transform accepts a single record or a sequence of records.
//
// A record is a map[string]any, any other string-keyed map, or a struct.
// A record yields map[string]any and a sequence yields []map[string]any of
// the same length and order. Any other input fails with a *ValidationError.
func (t *Transformer) Transform(data any) (any, error) {
	switch v := data.(type) {
	case map[string]any:
		return t.TransformRecord(v)
	case []map[string]any:
		return t.TransformBatch(v)
	case nil:
		return nil, &ValidationError{Reason: "input is nil"}
	}

	rv := reflect.ValueOf(data)
	if k := rv.Kind(); (k == reflect.Slice || k == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
		records := make([]map[string]any, rv.Len())
		for i := range records {
			m, err := toObject(rv.Index(i).Interface())
			if err != nil {
				return nil, &ValidationError{
					Path:   indexPath("", i),
					Reason: fmt.Sprintf("expected a record, got %T", rv.Index(i).Interface()),
				}
			}
			records[i] = m
		}
		return t.TransformBatch(records)
	}

	m, err := toObject(data)
	if err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("expected a record or a sequence of records, got %T", data)}
	}
	return t.TransformRecord(m)
}

// TransformRecord transforms a single record.
func (t *Transformer) TransformRecord(record map[string]any) (map[string]any, error) {
	if record == nil {
		return nil, &ValidationError{Reason: "input is nil"}
	}
	return t.run(record, "", t.customFuncs())
}

// TransformBatch transforms records in order. In strict mode the first
// failing record fails the whole batch.
func (t *Transformer) TransformBatch(records []map[string]any) ([]map[string]any, error) {
	custom := t.customFuncs()
	out := make([]map[string]any, len(records))
	for i, record := range records {
		path := indexPath("", i)
		if record == nil {
			return nil, &ValidationError{Path: path, Reason: "record is nil"}
		}
		res, err := t.run(record, path, custom)
		if err != nil {
			return nil, err
		}
		out[i] = res
	}
	return out, nil
}

// Check runs the transformation and returns the *ValidationError it would
// raise, or nil.
func (t *Transformer) Check(data any) error {
	_, err := t.Transform(data)
	return err
}

// Validate reports whether data transforms without a validation error.
// Outside strict mode only shape mismatches make it false.
func (t *Transformer) Validate(data any) bool {
	return t.Check(data) == nil
}

func (t *Transformer) run(record map[string]any, path string, custom map[string]FieldFunc) (map[string]any, error) {
	start := time.Now()
	out, err := t.transformObject(t.root, record, path, custom)
	t.hooks.record(&RecordEvent{
		Schema:   t.name,
		Path:     path,
		Duration: time.Since(start),
		Err:      err,
	})
	return out, err
}

func (t *Transformer) transformObject(node *Node, data map[string]any, path string, custom map[string]FieldFunc) (map[string]any, error) {
	if node.Properties == nil {
		return cloneMap(data), nil
	}
	out := make(map[string]any, len(node.Properties))
	for _, p := range node.Properties {
		v, err := t.transformField(p, data, joinPath(path, p.Name), custom)
		if err != nil {
			return nil, err
		}
		out[p.Name] = v
	}

	var missing []string
	for _, name := range node.Required {
		if out[name] == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return out, nil
	}
	verr := &ValidationError{Path: path, Missing: missing}
	if t.strict {
		t.logger.Error("required fields missing", "schema", t.name, "path", path, "missing", missing)
		return nil, verr
	}
	t.logger.Warn("required fields missing", "schema", t.name, "path", path, "missing", missing)
	return out, nil
}

func (t *Transformer) transformField(p *Property, data map[string]any, path string, custom map[string]FieldFunc) (any, error) {
	raw, found := resolveSegments(data, p.path)
	if !found {
		v := p.Node.fallback()
		t.logger.Debug("source not found", "schema", t.name, "field", path, "source", p.SourcePath())
		t.hooks.field(&FieldEvent{
			Schema: t.name,
			Field:  path,
			Stage:  StageResolve,
			Value:  v,
			Err:    fmt.Errorf("source %q not found", p.SourcePath()),
		})
		return v, nil
	}
	if fn, ok := custom[p.Name]; ok {
		return fn(raw), nil
	}
	return t.convert(p.Node, raw, path, custom)
}

func (t *Transformer) convert(node *Node, raw any, path string, custom map[string]FieldFunc) (any, error) {
	if raw == nil {
		return node.fallback(), nil
	}

	switch node.Kind() {
	case TypeObject:
		m, err := toObject(raw)
		if err != nil {
			return t.coercionFailed(node, path, err), nil
		}
		return t.transformObject(node, m, path, custom)
	case TypeArray:
		items := toArray(raw)
		if node.Items == nil {
			return cloneSlice(items), nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			v, err := t.convert(node.Items, item, indexPath(path, i), custom)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	v, err := Coerce(raw, node.Type)
	if err != nil {
		return t.coercionFailed(node, path, err), nil
	}
	if k := node.Kind(); k == TypeAny || k == TypeNull {
		v = cloneValue(v)
	}
	if node.Format == "" {
		return v, nil
	}
	formatted, err := ApplyFormat(v, node.Format)
	if err != nil {
		t.logger.Warn("format failed", "schema", t.name, "field", path, "format", node.Format, "err", err)
		t.hooks.field(&FieldEvent{Schema: t.name, Field: path, Stage: StageFormat, Value: v, Err: err})
		return v, nil
	}
	return formatted, nil
}

func (t *Transformer) coercionFailed(node *Node, path string, err error) any {
	v := node.fallback()
	t.logger.Warn("coercion failed", "schema", t.name, "field", path, "type", node.Kind().String(), "err", err)
	t.hooks.field(&FieldEvent{Schema: t.name, Field: path, Stage: StageCoerce, Value: v, Err: err})
	return v
}

// cloneValue copies nested mappings and sequences so outputs never alias
// the caller's input. Other values are returned as is.
func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return cloneMap(x)
	case []any:
		return cloneSlice(x)
	default:
		return v
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneSlice(s []any) []any {
	if s == nil {
		return nil
	}
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = cloneValue(v)
	}
	return out
}
