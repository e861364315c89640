// Package httpapi serves the production planner over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arcaneering/planner-server/internal/planner/engine"
	"github.com/arcaneering/planner-server/internal/planner/render"
	"github.com/arcaneering/planner-server/pkg/planner"
)

// ReloadFunc rebuilds an engine from freshly loaded catalog data.
type ReloadFunc func(ctx context.Context) (*engine.Engine, error)

// Server is the HTTP surface over the resolution engine. It only reads
// trees and totals; all quantities come from the engine.
type Server struct {
	holder   *engine.Holder
	reload   ReloadFunc // nil disables /reload
	logger   *slog.Logger
	validate *validator.Validate
	router   chi.Router
}

// NewServer creates the HTTP server. A nil reload disables the /reload
// endpoint.
func NewServer(holder *engine.Holder, reload ReloadFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		holder:   holder,
		reload:   reload,
		logger:   logger,
		validate: validator.New(),
	}

	r := chi.NewRouter()
	r.Use(metricsMiddleware)
	r.Use(s.loggingMiddleware)

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/calculate", s.handleCalculate)
	r.Get("/resources", s.handleResources)
	r.Get("/alternates", s.handleAlternates)
	r.Post("/reload", s.handleReload)

	s.router = r
	return s
}

// Handler returns the root handler for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req planner.CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	quantity := 1.0
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		writeError(w, http.StatusBadRequest, "quantity must be finite")
		return
	}

	opts := planner.DefaultResolveOptions()
	if req.Phase != nil {
		opts.MaxPhase = *req.Phase
	}
	if req.AllowAlternate != nil {
		opts.AllowAlternate = *req.AllowAlternate
	}
	opts.AllowedAlternates = req.AllowedAlternates

	eng := s.holder.Engine()
	chain := eng.CalculateProductionChain(strings.ToUpper(req.Resource), quantity, opts)
	writeJSON(w, http.StatusOK, render.ComposeCalculateResponse(eng, chain, opts.MaxPhase))
}

func (s *Server) handleResources(w http.ResponseWriter, _ *http.Request) {
	resources := s.holder.Engine().CraftableResources()
	if resources == nil {
		resources = []planner.ResourceInfo{}
	}
	writeJSON(w, http.StatusOK, resources)
}

func (s *Server) handleAlternates(w http.ResponseWriter, r *http.Request) {
	maxPhase := 0 // no phase filter unless asked
	if raw := r.URL.Query().Get("phase"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "phase must be a positive integer")
			return
		}
		maxPhase = parsed
	}

	alternates := s.holder.Engine().AlternateRecipes(maxPhase)
	if alternates == nil {
		alternates = []planner.AlternateInfo{}
	}
	writeJSON(w, http.StatusOK, alternates)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.reload == nil {
		writeError(w, http.StatusForbidden, "reload not available")
		return
	}

	eng, err := s.reload(r.Context())
	if err != nil {
		s.logger.Error("reload failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("reload failed: %v", err))
		return
	}

	s.holder.Swap(eng)
	s.logger.Info("catalog reloaded", "recipes", eng.Catalog().Len())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"recipe_count": eng.Catalog().Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": message})
}
