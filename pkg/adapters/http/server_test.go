package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	reshapehttp "github.com/aretw0/reshape/pkg/adapters/http"
	"github.com/aretw0/reshape/pkg/registry"
	"github.com/aretw0/reshape/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, opts ...reshapehttp.Option) http.Handler {
	t.Helper()
	reg := registry.NewRegistry()
	require.NoError(t, reg.Register("users", map[string]any{
		"title":    "Users",
		"required": []any{"id"},
		"properties": map[string]any{
			"id":    map[string]any{"type": "integer"},
			"email": map[string]any{"type": "string", "source": "contact.email", "format": "email"},
		},
	}, schema.WithStrict(true)))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return reshapehttp.NewHandler(reg, append([]reshapehttp.Option{reshapehttp.WithLogger(logger)}, opts...)...)
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func TestGetHealth(t *testing.T) {
	w, body := do(t, newTestHandler(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "ok", body["status"])
}

func TestGetInfo(t *testing.T) {
	w, body := do(t, newTestHandler(t, reshapehttp.WithVersion("1.2.3")), http.MethodGet, "/info", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1.2.3", body["version"])
	assert.Equal(t, float64(1), body["schemas"])
}

func TestListSchemas(t *testing.T) {
	w, _ := do(t, newTestHandler(t), http.MethodGet, "/schemas", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"schemas":[{
		"name": "users",
		"title": "Users",
		"fields": ["email", "id"],
		"required": ["id"],
		"strict": true
	}]}`, w.Body.String())
}

func TestGetSchema(t *testing.T) {
	h := newTestHandler(t)

	w, body := do(t, h, http.MethodGet, "/schemas/users", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Users", body["title"])
	assert.Contains(t, body, "properties")

	w, body = do(t, h, http.MethodGet, "/schemas/ghost", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, body["error"], "schema not found")
}

func TestGetOpenAPI(t *testing.T) {
	w, body := do(t, newTestHandler(t), http.MethodGet, "/schemas/users/openapi", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "object", body["type"])

	props := body["properties"].(map[string]any)
	email := props["email"].(map[string]any)
	assert.Equal(t, "contact.email", email["x-source"])
}

func TestTransform(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "single record",
			path:       "/schemas/users/transform",
			body:       `{"id":"7","contact":{"email":" A@B.COM "}}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"id":7,"email":"a@b.com"}`,
		},
		{
			name:       "batch",
			path:       "/schemas/users/transform",
			body:       `[{"id":1},{"id":"2"}]`,
			wantStatus: http.StatusOK,
			wantBody:   `[{"id":1,"email":null},{"id":2,"email":null}]`,
		},
		{
			name:       "missing required",
			path:       "/schemas/users/transform",
			body:       `{"contact":{}}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"error":"record: required field \"id\" is missing","missing":["id"]}`,
		},
		{
			name:       "scalar body",
			path:       "/schemas/users/transform",
			body:       `42`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "malformed body",
			path:       "/schemas/users/transform",
			body:       `{"id":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty body",
			path:       "/schemas/users/transform",
			body:       ``,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown schema",
			path:       "/schemas/ghost/transform",
			body:       `{}`,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestValidate(t *testing.T) {
	h := newTestHandler(t)

	w, body := do(t, h, http.MethodPost, "/schemas/users/validate", `{"id":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["valid"])
	assert.NotContains(t, body, "error")

	w, body = do(t, h, http.MethodPost, "/schemas/users/validate", `{}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, []any{"id"}, body["error"].(map[string]any)["missing"])
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("metric 1\n"))
	})

	w, _ := do(t, newTestHandler(t, reshapehttp.WithMetrics(metrics)), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "metric 1\n", w.Body.String())

	w, _ = do(t, newTestHandler(t), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	w, _ := do(t, newTestHandler(t), http.MethodOptions, "/schemas/users/transform", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
