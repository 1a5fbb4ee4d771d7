package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/aretw0/reshape/pkg/registry"
	"github.com/aretw0/reshape/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	reg := registry.NewRegistry()
	require.NoError(t, reg.Register("users", map[string]any{
		"title":    "Users",
		"required": []any{"id"},
		"properties": map[string]any{
			"id":   map[string]any{"type": "integer"},
			"name": map[string]any{"type": "string", "source": "profile.name"},
		},
	}, schema.WithStrict(true)))
	return NewServer(reg, " 1.0.0 ", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestListSchemasTool(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleListSchemas(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.JSONEq(t, `[{"name":"users","title":"Users","fields":["id","name"],"required":["id"],"strict":true}]`, resultText(t, res))
}

func TestDescribeSchemaTool(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleDescribeSchema(context.Background(), callRequest(map[string]any{"schema": "users"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &doc))
	assert.Equal(t, "Users", doc["title"])

	res, err = s.handleDescribeSchema(context.Background(), callRequest(map[string]any{"schema": "ghost"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "schema not found")

	res, err = s.handleDescribeSchema(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestTransformTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	out, err := s.handleTransform(ctx, mcp.CallToolRequest{}, RecordArgs{
		Schema: "users",
		Record: `{"id":"12","profile":{"name":"Ada"}}`,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": int64(12), "name": "Ada"}, out.Result)

	out, err = s.handleTransform(ctx, mcp.CallToolRequest{}, RecordArgs{
		Schema: "users",
		Record: `[{"id":1},{"id":2}]`,
	})
	require.NoError(t, err)
	assert.Len(t, out.Result, 2)

	_, err = s.handleTransform(ctx, mcp.CallToolRequest{}, RecordArgs{Schema: "users", Record: `{}`})
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrValidation)

	_, err = s.handleTransform(ctx, mcp.CallToolRequest{}, RecordArgs{Schema: "users", Record: `{`})
	assert.ErrorContains(t, err, "invalid record JSON")

	_, err = s.handleTransform(ctx, mcp.CallToolRequest{}, RecordArgs{Schema: "ghost", Record: `{}`})
	assert.ErrorIs(t, err, registry.ErrSchemaNotFound)
}

func TestValidateTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	out, err := s.handleValidate(ctx, mcp.CallToolRequest{}, RecordArgs{Schema: "users", Record: `{"id":1}`})
	require.NoError(t, err)
	assert.True(t, out.Valid)
	assert.Empty(t, out.Error)

	out, err = s.handleValidate(ctx, mcp.CallToolRequest{}, RecordArgs{Schema: "users", Record: `{"name":"x"}`})
	require.NoError(t, err)
	assert.False(t, out.Valid)
	assert.Equal(t, []string{"id"}, out.Missing)
}

func TestSchemasResource(t *testing.T) {
	s := newTestServer(t)

	contents, err := s.handleSchemasResource(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, SchemasURI, text.URI)
	assert.Equal(t, "application/json", text.MIMEType)
	assert.Contains(t, text.Text, `"name":"users"`)
}
