// Package httpapi serves the diagram engine over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jiatastic/exdraw/internal/engine"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Config configures the HTTP front-end.
type Config struct {
	Engine *engine.Engine
	// Store is optional; generated documents are cached by fingerprint
	// when set.
	Store engine.Store
	// Defaults fill empty type, theme and style fields.
	Defaults engine.Request
	Logger   *slog.Logger
}

// Server holds the router and its dependencies.
type Server struct {
	router   chi.Router
	engine   *engine.Engine
	store    engine.Store
	defaults engine.Request
	logger   *slog.Logger
}

// New builds the router.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("http server requires an engine")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		engine:   cfg.Engine,
		store:    cfg.Store,
		defaults: cfg.Defaults,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/diagrams", s.handleGenerate)
		r.Post("/classify", s.handleClassify)
		r.Get("/themes", s.handleThemes)
	})
	s.router = r
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

// writePipelineError maps engine errors onto 400 or 500.
func (s *Server) writePipelineError(w http.ResponseWriter, err error) {
	code := engine.ErrorCode(err)
	if engine.IsInputError(err) {
		s.writeError(w, http.StatusBadRequest, code, err)
		return
	}
	s.logger.Error("generation failed", "error", err)
	s.writeError(w, http.StatusInternalServerError, code, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "exdraw"})
}

// generateRequest is engine.Request with badges optional, so an absent
// field falls back to the configured default.
type generateRequest struct {
	engine.Request
	Badges *bool `json:"badges,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}
	req := body.Request
	req.Badges = s.defaults.Badges
	if body.Badges != nil {
		req.Badges = *body.Badges
	}
	if req.Kind == "" {
		req.Kind = s.defaults.Kind
	}
	if req.Theme == "" {
		req.Theme = s.defaults.Theme
	}
	if req.Style == "" {
		req.Style = s.defaults.Style
	}

	res, cached, err := s.engine.GenerateCached(req, s.store)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", `"`+res.Fingerprint+`"`)
	if cached {
		w.Header().Set("X-Exdraw-Cache", "hit")
	} else {
		w.Header().Set("X-Exdraw-Cache", "miss")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(res.JSON)
}

type classifyRequest struct {
	Labels []string `json:"labels"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out := engine.ClassifyLabels(req.Labels)
	if len(out.Labels) == 0 {
		s.writeError(w, http.StatusBadRequest, "invalid_request", errors.New("labels must contain at least one non-empty label"))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleThemes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, engine.ThemeCatalog())
}
