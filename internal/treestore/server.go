package treestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Server serves the retained tree query API.
//
// It manages the HTTP listener and routes. Create it with NewServer and
// start it with Start; Close shuts it down gracefully.
type Server struct {
	cfg    config.HTTPConfig
	store  *Store
	logger *logging.Logger
	server *http.Server
}

// NewServer creates the query API server around a store.
func NewServer(cfg config.HTTPConfig, store *Store, logger *logging.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		store:  store,
		logger: logger,
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  time.Duration(cfg.Timeouts.Read) * time.Second,
		WriteTimeout: time.Duration(cfg.Timeouts.Write) * time.Second,
		IdleTimeout:  time.Duration(cfg.Timeouts.Idle) * time.Second,
	}
	return s
}

// Router builds the chi router. Exported so tests can drive the
// handlers without a listener.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/query/*", s.handleQuery)
	return r
}

// Start begins serving in a background goroutine.
func (s *Server) Start(ctx context.Context) {
	go func() {
		s.logger.Info("query API listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("query API server failed", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		s.Close()
	}()
}

// Close shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn("query API shutdown incomplete", "error", err)
	}
}

// handleHealth reports liveness and the current tree size.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"topics": s.store.Len(),
	})
}

// handleQuery serves GET /query/{topic}?depth={n}.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	topic, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || topic == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   http.StatusBadRequest,
			"message": "topic is required",
		})
		return
	}

	depth := 0
	if raw := r.URL.Query().Get("depth"); raw != "" {
		depth, err = strconv.Atoi(raw)
		if err != nil || depth < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"topic":   topic,
				"error":   http.StatusBadRequest,
				"message": ErrInvalidDepth.Error(),
			})
			return
		}
	}

	node, err := s.store.Query(topic, depth)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"topic": topic,
				"error": http.StatusNotFound,
			})
			return
		}
		s.logger.Error("query failed", "topic", topic, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"topic": topic,
			"error": http.StatusInternalServerError,
		})
		return
	}

	writeJSON(w, http.StatusOK, node)
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
