package schema

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// ExtSource is the OpenAPI extension carrying a property's source path when
// it differs from the property name.
const ExtSource = "x-source"

// OpenAPI describes the output shape of the transformer as an OpenAPI 3
// schema. Dates are reported as strings with their format.
func (t *Transformer) OpenAPI() *openapi3.Schema {
	s := t.root.OpenAPI()
	if s.Title == "" {
		s.Title = t.name
	}
	return s
}

// OpenAPI converts the node to an OpenAPI 3 schema.
func (n *Node) OpenAPI() *openapi3.Schema {
	var s *openapi3.Schema
	switch n.Kind() {
	case TypeString:
		s = openapi3.NewStringSchema()
	case TypeInteger:
		s = openapi3.NewInt64Schema()
	case TypeNumber:
		s = openapi3.NewFloat64Schema()
	case TypeBoolean:
		s = openapi3.NewBoolSchema()
	case TypeArray:
		s = openapi3.NewArraySchema()
		if n.Items != nil {
			s.Items = openapi3.NewSchemaRef("", n.Items.OpenAPI())
		}
	case TypeObject:
		s = openapi3.NewObjectSchema()
		if s.Properties == nil {
			s.Properties = openapi3.Schemas{}
		}
		for _, p := range n.Properties {
			child := p.Node.OpenAPI()
			if p.Source != "" && p.Source != p.Name {
				if child.Extensions == nil {
					child.Extensions = map[string]any{}
				}
				child.Extensions[ExtSource] = p.Source
			}
			s.Properties[p.Name] = openapi3.NewSchemaRef("", child)
		}
		if len(n.Required) > 0 {
			s.Required = append([]string(nil), n.Required...)
		}
	case TypeNull:
		s = &openapi3.Schema{Nullable: true}
	default:
		s = &openapi3.Schema{}
	}

	s.Title = n.Title
	s.Description = n.Description
	if n.Format != "" {
		s.Format = n.Format
	}
	if n.HasDefault {
		s.Default = n.Default
	}
	return s
}
