package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Resolve descends into data one dotted path segment at a time and returns
// the value found. The boolean is false when a segment is absent or an
// intermediate value is not a mapping. A key holding nil is found.
func Resolve(data map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	return resolveSegments(data, strings.Split(path, "."))
}

func resolveSegments(data map[string]any, segments []string) (any, bool) {
	if data == nil || len(segments) == 0 {
		return nil, false
	}
	var current any = data
	for _, seg := range segments {
		v, ok := lookup(current, seg)
		if !ok {
			return nil, false
		}
		current = v
	}
	return current, true
}

func lookup(node any, key string) (any, bool) {
	switch m := node.(type) {
	case map[string]any:
		v, ok := m[key]
		return v, ok
	case map[string]string:
		v, ok := m[key]
		return v, ok
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(node)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	v := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
	if !v.IsValid() {
		return nil, false
	}
	return v.Interface(), true
}

// parsePath splits a source path and rejects empty segments.
func parsePath(path string) ([]string, error) {
	if path == "" {
		return nil, errors.New("empty path")
	}
	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("invalid path %q: empty segment", path)
		}
	}
	return segments, nil
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func indexPath(parent string, i int) string {
	return fmt.Sprintf("%s[%d]", parent, i)
}
