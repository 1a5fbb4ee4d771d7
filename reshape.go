package reshape

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/reshape/pkg/registry"
	"github.com/aretw0/reshape/pkg/schema"
)

// Version is the library and CLI version.
const Version = "0.1.0"

// Engine is the high-level entry point for the reshape library.
// It owns a registry of named schemas that share one logger, one set of
// hooks and one strictness setting.
type Engine struct {
	registry *registry.Registry
	hooks    schema.Hooks
	logger   *slog.Logger
	strict   bool
	loaded   []string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for every schema.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers observability hooks on every schema.
func WithHooks(hooks schema.Hooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithStrict makes every schema fail on missing required fields.
func WithStrict(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// New creates an Engine with every schema file found in dir.
// An empty dir creates an engine with no schemas.
func New(dir string, opts ...Option) (*Engine, error) {
	e := &Engine{
		registry: registry.NewRegistry(),
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	if dir == "" {
		return e, nil
	}
	loaded, err := e.registry.LoadDir(dir, e.schemaOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to load schemas: %w", err)
	}
	e.loaded = loaded
	e.logger.Debug("schemas loaded", "dir", dir, "count", len(loaded))
	return e, nil
}

func (e *Engine) schemaOptions() []schema.Option {
	return []schema.Option{
		schema.WithLogger(e.logger),
		schema.WithHooks(e.hooks),
		schema.WithStrict(e.strict),
	}
}

// Registry exposes the underlying registry, e.g. to serve it over HTTP.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Loaded returns the schema names loaded by New.
func (e *Engine) Loaded() []string {
	return append([]string(nil), e.loaded...)
}

// Register compiles def with the engine settings and stores it under name.
func (e *Engine) Register(name string, def map[string]any) error {
	return e.registry.Register(name, def, e.schemaOptions()...)
}

// RegisterFile loads a schema file with the engine settings.
func (e *Engine) RegisterFile(name, path string) error {
	return e.registry.RegisterFile(name, path, e.schemaOptions()...)
}

// Schema returns the named transformer.
func (e *Engine) Schema(name string) (*schema.Transformer, error) {
	return e.registry.Get(name)
}

// Transform reshapes data with the named schema.
func (e *Engine) Transform(name string, data any) (any, error) {
	return e.registry.Transform(name, data)
}

// Validate reports whether data transforms cleanly with the named schema.
// An unknown name is reported as invalid.
func (e *Engine) Validate(name string, data any) bool {
	t, err := e.registry.Get(name)
	if err != nil {
		return false
	}
	return t.Validate(data)
}
