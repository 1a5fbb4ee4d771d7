package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/reshape/pkg/schema"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewRenderer returns a function that renders markdown using glamour.
// When styled is false the markdown is returned unchanged.
func NewRenderer(styled bool) func(string) (string, error) {
	if !styled {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// SchemaMarkdown describes a schema as a markdown document with one table
// row per field. Nested fields are listed with their full output path.
func SchemaMarkdown(name string, root *schema.Node) string {
	var b strings.Builder
	title := root.Title
	if title == "" {
		title = name
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if root.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", root.Description)
	}
	b.WriteString("| Field | Type | Source | Format | Required | Default |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	writeRows(&b, root, "")
	return b.String()
}

func writeRows(b *strings.Builder, node *schema.Node, prefix string) {
	required := make(map[string]bool, len(node.Required))
	for _, r := range node.Required {
		required[r] = true
	}
	for _, p := range node.Properties {
		path := p.Name
		if prefix != "" {
			path = prefix + "." + p.Name
		}
		typ := kindName(p.Node)
		if p.Node.Kind() == schema.TypeArray && p.Node.Items != nil {
			typ = fmt.Sprintf("array<%s>", kindName(p.Node.Items))
		}
		def := ""
		if p.Node.HasDefault {
			def = fmt.Sprintf("`%v`", p.Node.Default)
		}
		req := ""
		if required[p.Name] {
			req = "yes"
		}
		fmt.Fprintf(b, "| `%s` | %s | `%s` | %s | %s | %s |\n",
			path, typ, p.SourcePath(), p.Node.Format, req, def)

		child := p.Node
		if child.Kind() == schema.TypeArray && child.Items != nil {
			child = child.Items
			path += "[]"
		}
		if child.Kind() == schema.TypeObject && len(child.Properties) > 0 {
			writeRows(b, child, path)
		}
	}
}

func kindName(n *schema.Node) string {
	if k := n.Kind(); k != schema.TypeAny {
		return k.String()
	}
	return "any"
}
