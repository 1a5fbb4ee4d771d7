package schema

import (
	"fmt"
	"strings"
)

// Type is the declared type tag of a schema node.
type Type int

const (
	// TypeAny is an absent type: values pass through unconverted.
	TypeAny Type = iota
	TypeString
	TypeInteger
	TypeNumber
	TypeBoolean
	TypeArray
	TypeObject
	TypeNull
)

var typeNames = [...]string{
	TypeAny:     "",
	TypeString:  "string",
	TypeInteger: "integer",
	TypeNumber:  "number",
	TypeBoolean: "boolean",
	TypeArray:   "array",
	TypeObject:  "object",
	TypeNull:    "null",
}

// String returns the schema keyword for the type ("" for TypeAny).
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType converts a schema type keyword to a Type.
// The empty string yields TypeAny.
func ParseType(s string) (Type, error) {
	switch strings.TrimSpace(s) {
	case "":
		return TypeAny, nil
	case "string":
		return TypeString, nil
	case "integer":
		return TypeInteger, nil
	case "number":
		return TypeNumber, nil
	case "boolean":
		return TypeBoolean, nil
	case "array":
		return TypeArray, nil
	case "object":
		return TypeObject, nil
	case "null":
		return TypeNull, nil
	default:
		return TypeAny, fmt.Errorf("unsupported type: %q", s)
	}
}

// Formats understood by ApplyFormat. Any other format is a no-op.
const (
	FormatDate     = "date"
	FormatDateTime = "date-time"
	FormatEmail    = "email"
	FormatURI      = "uri"
	FormatUUID     = "uuid"
)

// Node is one compiled schema node. Nodes are immutable once compiled.
type Node struct {
	Type        Type
	Title       string
	Description string
	Format      string

	// Default is substituted when the source is absent, null, or cannot be
	// coerced. It is only meaningful when HasDefault is set.
	Default    any
	HasDefault bool

	// Properties is set for object nodes, in declared order.
	Properties []*Property
	// Items is set for array nodes.
	Items *Node
	// Required lists property names that must be non-nil after transformation.
	Required []string
}

// Property is a named child of an object node.
type Property struct {
	Name string
	// Source is the dotted path into the input record. Empty means Name.
	Source string
	Node   *Node

	path []string
}

// SourcePath returns the effective source path of the property.
func (p *Property) SourcePath() string {
	if p.Source != "" {
		return p.Source
	}
	return p.Name
}

// Kind is the effective dispatch type of the node. The presence of
// properties or items wins over an absent type.
func (n *Node) Kind() Type {
	switch {
	case n.Properties != nil:
		return TypeObject
	case n.Items != nil:
		return TypeArray
	default:
		return n.Type
	}
}

// Property returns the named property of an object node.
func (n *Node) Property(name string) (*Property, bool) {
	for _, p := range n.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// FieldNames returns the declared property names in order.
func (n *Node) FieldNames() []string {
	names := make([]string, len(n.Properties))
	for i, p := range n.Properties {
		names[i] = p.Name
	}
	return names
}

func (n *Node) fallback() any {
	if n.HasDefault {
		return n.Default
	}
	return nil
}
