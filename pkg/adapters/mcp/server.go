package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/reshape/pkg/ports"
	"github.com/aretw0/reshape/pkg/registry"
	"github.com/aretw0/reshape/pkg/schema"
	json "github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SchemasURI is the resource listing every registered schema.
const SchemasURI = "reshape://schemas"

// RecordArgs are the arguments of transform_record and validate_record.
type RecordArgs struct {
	Schema string `json:"schema"`
	Record string `json:"record"`
}

// TransformResponse is the structured result of transform_record.
type TransformResponse struct {
	Result any `json:"result" jsonschema_description:"The transformed record, or array of records"`
}

// ValidateResponse is the structured result of validate_record.
type ValidateResponse struct {
	Valid   bool     `json:"valid" jsonschema_description:"Whether the record satisfies the schema"`
	Error   string   `json:"error,omitempty" jsonschema_description:"Why validation failed"`
	Missing []string `json:"missing,omitempty" jsonschema_description:"Required fields that were missing"`
}

// Server exposes a schema catalog as an MCP Server.
type Server struct {
	catalog   ports.Catalog
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(catalog ports.Catalog, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		catalog:   catalog,
		logger:    logger,
		mcpServer: server.NewMCPServer("reshape-mcp", strings.TrimSpace(version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx
// is canceled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: list_schemas
	s.mcpServer.AddTool(mcp.NewTool("list_schemas",
		mcp.WithDescription("List the registered schemas with their fields."),
	), s.handleListSchemas)

	// TOOL: describe_schema
	s.mcpServer.AddTool(mcp.NewTool("describe_schema",
		mcp.WithDescription("Return the full definition of a schema as JSON."),
		mcp.WithString("schema", mcp.Required(), mcp.Description("Schema name")),
	), s.handleDescribeSchema)

	// TOOL: transform_record
	transformTool := mcp.NewTool("transform_record",
		mcp.WithDescription("Transform a record (or an array of records) into the shape of a schema."),
		mcp.WithString("schema", mcp.Required(), mcp.Description("Schema name")),
		mcp.WithString("record", mcp.Required(), mcp.Description("JSON object, or JSON array of objects")),
		mcp.WithOutputSchema[TransformResponse](),
	)
	s.mcpServer.AddTool(transformTool, mcp.NewStructuredToolHandler(s.handleTransform))

	// TOOL: validate_record
	validateTool := mcp.NewTool("validate_record",
		mcp.WithDescription("Check whether a record satisfies a schema without returning the result."),
		mcp.WithString("schema", mcp.Required(), mcp.Description("Schema name")),
		mcp.WithString("record", mcp.Required(), mcp.Description("JSON object, or JSON array of objects")),
		mcp.WithOutputSchema[ValidateResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))
}

func (s *Server) handleListSchemas(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(s.describeAll())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) handleDescribeSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("schema")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := s.catalog.Get(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := json.Marshal(t.Schema())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) handleTransform(ctx context.Context, request mcp.CallToolRequest, args RecordArgs) (TransformResponse, error) {
	t, record, err := s.resolve(args)
	if err != nil {
		return TransformResponse{}, err
	}
	out, err := t.Transform(record)
	if err != nil {
		s.logger.Debug("MCP Transform: failed", "schema", args.Schema, "error", err)
		return TransformResponse{}, fmt.Errorf("transform failed: %w", err)
	}
	return TransformResponse{Result: out}, nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args RecordArgs) (ValidateResponse, error) {
	t, record, err := s.resolve(args)
	if err != nil {
		return ValidateResponse{}, err
	}
	if err := t.Check(record); err != nil {
		resp := ValidateResponse{Valid: false, Error: err.Error()}
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			resp.Missing = verr.Missing
		}
		return resp, nil
	}
	return ValidateResponse{Valid: true}, nil
}

func (s *Server) resolve(args RecordArgs) (*schema.Transformer, any, error) {
	t, err := s.catalog.Get(args.Schema)
	if err != nil {
		return nil, nil, err
	}
	dec := json.NewDecoder(strings.NewReader(args.Record))
	dec.UseNumber()
	var record any
	if err := dec.Decode(&record); err != nil {
		s.logger.Warn("MCP: Invalid record", "error", err, "size", len(args.Record))
		return nil, nil, fmt.Errorf("invalid record JSON: %w", err)
	}
	return t, record, nil
}

func (s *Server) describeAll() []registry.Info {
	names := s.catalog.List()
	infos := make([]registry.Info, 0, len(names))
	for _, name := range names {
		if t, err := s.catalog.Get(name); err == nil {
			infos = append(infos, registry.Describe(name, t))
		}
	}
	return infos
}

func (s *Server) registerResources() {
	// EXPOSE: reshape://schemas
	s.mcpServer.AddResource(mcp.NewResource(SchemasURI, "Registered Schemas",
		mcp.WithMIMEType("application/json"),
	), s.handleSchemasResource)
}

func (s *Server) handleSchemasResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	b, err := json.Marshal(s.describeAll())
	if err != nil {
		return nil, fmt.Errorf("failed to encode schemas: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SchemasURI,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}
