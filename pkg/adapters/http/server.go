package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/reshape/pkg/ports"
	"github.com/aretw0/reshape/pkg/registry"
	"github.com/aretw0/reshape/pkg/schema"
	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

// MaxBodyBytes bounds request bodies of the transform and validate routes.
const MaxBodyBytes = 10 << 20

// Server serves a schema catalog over HTTP.
type Server struct {
	Catalog ports.Catalog
	Logger  *slog.Logger
	Version string
	Metrics http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.Version = version
	}
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Path    string   `json:"path,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// ValidateResponse is the body of POST /schemas/{name}/validate.
type ValidateResponse struct {
	Valid bool           `json:"valid"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// NewHandler creates a new HTTP handler for the catalog.
func NewHandler(catalog ports.Catalog, opts ...Option) http.Handler {
	s := &Server{
		Catalog: catalog,
		Logger:  slog.Default(),
		Version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Route("/schemas", func(r chi.Router) {
		r.Get("/", s.ListSchemas)
		r.Get("/{name}", s.GetSchema)
		r.Get("/{name}/openapi", s.GetOpenAPI)
		r.Post("/{name}/transform", s.Transform)
		r.Post("/{name}/validate", s.Validate)
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":     "reshape-http",
		"version": s.Version,
		"schemas": len(s.Catalog.List()),
	})
}

// ListSchemas handles the GET /schemas request.
func (s *Server) ListSchemas(w http.ResponseWriter, r *http.Request) {
	names := s.Catalog.List()
	infos := make([]registry.Info, 0, len(names))
	for _, name := range names {
		t, err := s.Catalog.Get(name)
		if err != nil {
			// Removed between List and Get.
			continue
		}
		infos = append(infos, registry.Describe(name, t))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"schemas": infos})
}

// GetSchema handles the GET /schemas/{name} request.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, t.Schema())
}

// GetOpenAPI handles the GET /schemas/{name}/openapi request.
func (s *Server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, t.OpenAPI())
}

// Transform handles the POST /schemas/{name}/transform request. The body is
// a record or an array of records.
func (s *Server) Transform(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	body, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	out, err := t.Transform(body)
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			s.Logger.Debug("Transform: validation failed", "schema", t.Name(), "error", err)
			s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse(err))
			return
		}
		s.Logger.Error("Transform failed", "schema", t.Name(), "error", err)
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

// Validate handles the POST /schemas/{name}/validate request.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	body, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	resp := ValidateResponse{Valid: true}
	if err := t.Check(body); err != nil {
		e := errorResponse(err)
		resp = ValidateResponse{Valid: false, Error: &e}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*schema.Transformer, bool) {
	name := chi.URLParam(r, "name")
	t, err := s.Catalog.Get(name)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, registry.ErrSchemaNotFound) {
			status = http.StatusNotFound
		}
		s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
		return nil, false
	}
	return t, true
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) (any, bool) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.UseNumber()

	var body any
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty body")
		}
		s.Logger.Warn("Invalid request body", "path", r.URL.Path, "error", err)
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return nil, false
	}
	return body, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("Response encode failed", "error", err)
	}
}

func errorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Error: err.Error()}
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		resp.Path = verr.Path
		resp.Missing = verr.Missing
	}
	return resp
}
