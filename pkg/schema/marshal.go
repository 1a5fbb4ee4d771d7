package schema

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// MarshalJSON re-emits the node as a schema document. Properties keep their
// declared order, so the output can be fed back to Parse.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeNode(&buf, n, ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type objectWriter struct {
	buf   *bytes.Buffer
	first bool
}

func (w *objectWriter) field(key string, v any) error {
	if !w.first {
		w.buf.WriteByte(',')
	}
	w.first = false
	k, _ := json.Marshal(key)
	w.buf.Write(k)
	w.buf.WriteByte(':')
	if raw, ok := v.(json.RawMessage); ok {
		w.buf.Write(raw)
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.buf.Write(b)
	return nil
}

func writeNode(buf *bytes.Buffer, n *Node, source string) error {
	buf.WriteByte('{')
	w := &objectWriter{buf: buf, first: true}

	var err error
	add := func(key string, v any) {
		if err == nil {
			err = w.field(key, v)
		}
	}
	if n.Type != TypeAny {
		add("type", n.Type.String())
	}
	if n.Title != "" {
		add("title", n.Title)
	}
	if n.Description != "" {
		add("description", n.Description)
	}
	if source != "" {
		add("source", source)
	}
	if n.Format != "" {
		add("format", n.Format)
	}
	if n.HasDefault {
		add("default", n.Default)
	}
	if len(n.Required) > 0 {
		add("required", n.Required)
	}
	if err != nil {
		return err
	}

	if n.Properties != nil {
		var props bytes.Buffer
		props.WriteByte('{')
		for i, p := range n.Properties {
			if i > 0 {
				props.WriteByte(',')
			}
			k, _ := json.Marshal(p.Name)
			props.Write(k)
			props.WriteByte(':')
			if err := writeNode(&props, p.Node, p.Source); err != nil {
				return err
			}
		}
		props.WriteByte('}')
		if err := w.field("properties", json.RawMessage(props.Bytes())); err != nil {
			return err
		}
	}
	if n.Items != nil {
		var items bytes.Buffer
		if err := writeNode(&items, n.Items, ""); err != nil {
			return err
		}
		if err := w.field("items", json.RawMessage(items.Bytes())); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}
