package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/reshape/pkg/schema"
)

// ErrSchemaNotFound is returned when no schema is registered under a name.
var ErrSchemaNotFound = errors.New("schema not found")

// Registry manages named schema transformers.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*schema.Transformer
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]*schema.Transformer),
	}
}

// Register compiles an in-memory definition and stores it under name.
// If a schema with the same name exists, it is overwritten.
// The registry name is used as the transformer name unless opts override it.
func (r *Registry) Register(name string, def map[string]any, opts ...schema.Option) error {
	t, err := schema.New(def, withName(name, opts)...)
	if err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	r.Add(name, t)
	return nil
}

// RegisterFile loads a YAML or JSON schema file and stores it under name.
func (r *Registry) RegisterFile(name, path string, opts ...schema.Option) error {
	t, err := schema.LoadFile(path, withName(name, opts)...)
	if err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	r.Add(name, t)
	return nil
}

// Add stores an already compiled transformer, overwriting any prior entry.
func (r *Registry) Add(name string, t *schema.Transformer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[name] = t
}

// Get looks up a transformer by name.
func (r *Registry) Get(name string) (*schema.Transformer, error) {
	r.mu.RLock()
	t, ok := r.schemas[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, name)
	}
	return t, nil
}

// Transform looks up a transformer by name and delegates to it.
func (r *Registry) Transform(name string, data any) (any, error) {
	t, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return t.Transform(data)
}

// List returns the registered names in lexical order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered schemas.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}

// LoadDir registers every .yaml, .yml and .json file in dir under its base
// name without extension. Subdirectories are not visited. It stops at the
// first schema that fails to load and returns the names loaded so far.
func (r *Registry) LoadDir(dir string, opts ...schema.Option) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema dir: %w", err)
	}

	var loaded []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if err := r.RegisterFile(name, filepath.Join(dir, entry.Name()), opts...); err != nil {
			return loaded, err
		}
		loaded = append(loaded, name)
	}
	return loaded, nil
}

func withName(name string, opts []schema.Option) []schema.Option {
	return append([]schema.Option{schema.WithName(name)}, opts...)
}

// Info summarizes a registered schema for listings.
type Info struct {
	Name        string   `json:"name"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Fields      []string `json:"fields"`
	Required    []string `json:"required"`
	Strict      bool     `json:"strict"`
}

// Describe summarizes t under name.
func Describe(name string, t *schema.Transformer) Info {
	root := t.Schema()
	return Info{
		Name:        name,
		Title:       root.Title,
		Description: root.Description,
		Fields:      t.Fields(),
		Required:    t.RequiredFields(),
		Strict:      t.Strict(),
	}
}
