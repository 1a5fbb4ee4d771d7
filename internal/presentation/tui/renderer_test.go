package tui

import (
	"bytes"
	"testing"

	"github.com/aretw0/reshape/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersYAML = `
title: Orders
description: Normalized orders.
required: [id]
properties:
  id:
    type: integer
  customer:
    type: object
    source: buyer
    properties:
      email: {type: string, format: email}
  lines:
    type: array
    items:
      type: object
      properties:
        qty: {type: integer, default: 1}
`

func TestSchemaMarkdown(t *testing.T) {
	tr, err := schema.Parse([]byte(ordersYAML))
	require.NoError(t, err)

	md := SchemaMarkdown("orders", tr.Schema())

	assert.Contains(t, md, "# Orders\n\nNormalized orders.")
	assert.Contains(t, md, "| `id` | integer | `id` |  | yes |  |")
	assert.Contains(t, md, "| `customer` | object | `buyer` |")
	assert.Contains(t, md, "| `customer.email` | string | `email` | email |")
	assert.Contains(t, md, "| `lines` | array<object> | `lines` |")
	assert.Contains(t, md, "| `lines[].qty` | integer | `qty` |  |  | `1` |")
}

func TestSchemaMarkdownUntitled(t *testing.T) {
	tr, err := schema.New(map[string]any{"properties": map[string]any{"a": map[string]any{}}})
	require.NoError(t, err)
	md := SchemaMarkdown("plain", tr.Schema())
	assert.Contains(t, md, "# plain\n")
	assert.Contains(t, md, "| `a` | any | `a` |")
}

func TestPlainRenderer(t *testing.T) {
	out, err := NewRenderer(false)("# hi")
	require.NoError(t, err)
	assert.Equal(t, "# hi", out)
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
}
