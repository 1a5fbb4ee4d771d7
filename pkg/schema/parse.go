package schema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// New compiles an in-memory schema definition into a Transformer.
// Go maps carry no key order, so properties are ordered by name.
func New(def map[string]any, opts ...Option) (*Transformer, error) {
	if def == nil {
		return nil, &ConfigurationError{Err: errors.New("schema definition is nil")}
	}
	root, err := compileRoot(fromMap(def))
	if err != nil {
		return nil, err
	}
	return newTransformer(root, opts), nil
}

// Parse compiles a YAML or JSON schema document. Properties keep the order
// in which they appear in the document.
func Parse(data []byte, opts ...Option) (*Transformer, error) {
	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	root, err := compileRoot(doc)
	if err != nil {
		return nil, err
	}
	return newTransformer(root, opts), nil
}

// LoadFile reads and compiles a schema file. Files ending in .json must be
// valid JSON; anything else is read as YAML.
func LoadFile(path string, opts ...Option) (*Transformer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Source: path, Err: err}
	}
	if strings.EqualFold(filepath.Ext(path), ".json") && !json.Valid(data) {
		return nil, &ConfigurationError{Source: path, Err: errors.New("invalid JSON document")}
	}
	t, err := Parse(data, opts...)
	if err != nil {
		var cerr *ConfigurationError
		if errors.As(err, &cerr) {
			cerr.Source = path
		}
		return nil, err
	}
	return t, nil
}

// document is a schema mapping that remembers its key order. Values are
// scalars, []any or *document.
type document struct {
	keys   []string
	values map[string]any
}

func (d *document) get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

func (d *document) set(key string, v any) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

func newDocument() *document {
	return &document{values: make(map[string]any)}
}

func fromMap(m map[string]any) *document {
	doc := newDocument()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		doc.set(k, fromValue(m[k]))
	}
	return doc
}

func fromValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return fromMap(x)
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[fmt.Sprint(k)] = val
		}
		return fromMap(m)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = fromValue(item)
		}
		return out
	default:
		return v
	}
}

// plain converts document values back to ordinary maps, for defaults.
func plain(v any) any {
	switch x := v.(type) {
	case *document:
		m := make(map[string]any, len(x.keys))
		for _, k := range x.keys {
			m[k] = plain(x.values[k])
		}
		return m
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = plain(item)
		}
		return out
	default:
		return v
	}
}

func parseDocument(data []byte) (*document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ConfigurationError{Err: fmt.Errorf("parse: %w", err)}
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, &ConfigurationError{Err: errors.New("empty schema document")}
	}
	v, err := fromYAML(root.Content[0])
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	doc, ok := v.(*document)
	if !ok {
		return nil, &ConfigurationError{Err: errors.New("schema root must be a mapping")}
	}
	return doc, nil
}

func fromYAML(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.MappingNode:
		doc := newDocument()
		for i := 0; i+1 < len(n.Content); i += 2 {
			var key string
			if err := n.Content[i].Decode(&key); err != nil {
				return nil, fmt.Errorf("line %d: %w", n.Content[i].Line, err)
			}
			v, err := fromYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			doc.set(key, v)
		}
		return doc, nil
	case yaml.SequenceNode:
		out := make([]any, len(n.Content))
		for i, c := range n.Content {
			v, err := fromYAML(c)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	}
}

// nodeAttrs are the scalar keywords of a schema node.
type nodeAttrs struct {
	Type        string   `mapstructure:"type"`
	Title       string   `mapstructure:"title"`
	Description string   `mapstructure:"description"`
	Source      string   `mapstructure:"source"`
	Format      string   `mapstructure:"format"`
	Required    []string `mapstructure:"required"`
}

var attrKeys = []string{"type", "title", "description", "source", "format", "required"}

func compileRoot(doc *document) (*Node, error) {
	n, _, err := compileNode(doc, "")
	if err != nil {
		return nil, err
	}
	if n.Kind() != TypeObject {
		return nil, configErrorf("", "root must be an object schema, got type %q", n.Kind())
	}
	return n, nil
}

// compileNode builds one node and returns the node's own source keyword,
// which only has meaning on properties.
func compileNode(doc *document, path string) (*Node, string, error) {
	raw := make(map[string]any, len(attrKeys))
	for _, k := range attrKeys {
		if v, ok := doc.get(k); ok && v != nil {
			raw[k] = plain(v)
		}
	}
	var attrs nodeAttrs
	if err := mapstructure.Decode(raw, &attrs); err != nil {
		return nil, "", &ConfigurationError{Path: path, Err: err}
	}

	t, err := ParseType(attrs.Type)
	if err != nil {
		return nil, "", &ConfigurationError{Path: joinPath(path, "type"), Err: err}
	}
	n := &Node{
		Type:        t,
		Title:       attrs.Title,
		Description: attrs.Description,
		Format:      attrs.Format,
	}

	props, hasProps := doc.get("properties")
	items, hasItems := doc.get("items")
	if hasProps && hasItems {
		return nil, "", configErrorf(path, "properties and items are mutually exclusive")
	}

	if hasProps {
		if t != TypeAny && t != TypeObject {
			return nil, "", configErrorf(joinPath(path, "properties"), "properties not allowed on type %q", t)
		}
		if err := compileProperties(n, props, joinPath(path, "properties")); err != nil {
			return nil, "", err
		}
	}

	if hasItems {
		if t != TypeAny && t != TypeArray {
			return nil, "", configErrorf(joinPath(path, "items"), "items not allowed on type %q", t)
		}
		child, ok := asDocument(items)
		if !ok {
			return nil, "", configErrorf(joinPath(path, "items"), "items must be a mapping")
		}
		n.Items, _, err = compileNode(child, joinPath(path, "items"))
		if err != nil {
			return nil, "", err
		}
	}

	if len(attrs.Required) > 0 {
		if n.Kind() != TypeObject {
			return nil, "", configErrorf(joinPath(path, "required"), "required is only allowed on object schemas")
		}
		for _, name := range attrs.Required {
			if _, ok := n.Property(name); !ok {
				return nil, "", configErrorf(joinPath(path, "required"), "required field %q is not a declared property", name)
			}
		}
		n.Required = attrs.Required
	}

	if def, ok := doc.get("default"); ok {
		v, err := Coerce(plain(def), n.Kind())
		if err != nil {
			return nil, "", &ConfigurationError{Path: joinPath(path, "default"), Err: err}
		}
		n.Default = v
		n.HasDefault = true
	}

	return n, attrs.Source, nil
}

func compileProperties(n *Node, props any, path string) error {
	if props == nil {
		n.Properties = []*Property{}
		return nil
	}
	doc, ok := props.(*document)
	if !ok {
		return configErrorf(path, "properties must be a mapping")
	}
	n.Properties = make([]*Property, 0, len(doc.keys))
	for _, name := range doc.keys {
		if name == "" {
			return configErrorf(path, "empty property name")
		}
		childPath := joinPath(path, name)
		child, ok := asDocument(doc.values[name])
		if !ok {
			return configErrorf(childPath, "property schema must be a mapping")
		}
		node, source, err := compileNode(child, childPath)
		if err != nil {
			return err
		}
		p := &Property{Name: name, Source: source, Node: node}
		if p.path, err = parsePath(p.SourcePath()); err != nil {
			return &ConfigurationError{Path: joinPath(childPath, "source"), Err: err}
		}
		n.Properties = append(n.Properties, p)
	}
	return nil
}

// asDocument accepts a mapping or an empty (null) node.
func asDocument(v any) (*document, bool) {
	switch x := v.(type) {
	case *document:
		return x, true
	case nil:
		return newDocument(), true
	default:
		return nil, false
	}
}
