// Package adminserver exposes the router's admin HTTP surface: a
// read-only introspection view of the routing table, the runtime-mutable
// configuration, a health endpoint, and a Prometheus /metrics endpoint.
package adminserver

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/polypheny/adaptive-router/internal/plan"
	"github.com/polypheny/adaptive-router/internal/routerconfig"
	"github.com/polypheny/adaptive-router/router/introspect"
	"github.com/polypheny/adaptive-router/router/routing"
)

// Engine is the subset of *engine.Engine the admin server's routing
// surface needs. Defined locally (rather than importing router/engine's
// concrete type) to match the duck-typed AdapterTruncater interface in
// this package and the MetricsSink interfaces of the router packages.
type Engine interface {
	Route(ctx context.Context, table string, root *plan.Node, rng *rand.Rand) (routing.PS, routing.QC, error)
	Feedback(tag string, nanos int64) error
}

// AdapterTruncater is the subset of a ddl.Truncater the admin server's
// truncate endpoint needs, keyed by adapter name.
type AdapterTruncater interface {
	Truncate(ctx context.Context, table string) error
}

// Server is the router's admin HTTP surface.
type Server struct {
	logger   *zap.Logger
	config   *routerconfig.Live
	table    introspect.Table
	adapters map[string]AdapterTruncater
	engine   Engine

	server *http.Server

	startedAt time.Time
	mu        sync.RWMutex
	healthy   bool
}

// New builds a Server. metrics should be the Prometheus registry's
// promhttp.Handler (or an equivalent, for tests); pass nil to fall back
// to the default global registry's handler. adapters may be nil or empty
// when no physical-store adapters were configured. engine may be nil in
// tests that don't exercise the routing surface — /route and /feedback
// then respond 503.
func New(addr string, config *routerconfig.Live, table introspect.Table, metrics http.Handler, logger *zap.Logger, adapters map[string]AdapterTruncater, engine Engine) *Server {
	s := &Server{
		logger:    logger,
		config:    config,
		table:     table,
		adapters:  adapters,
		engine:    engine,
		startedAt: time.Now(),
		healthy:   true,
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/introspect", s.handleIntrospect).Methods(http.MethodGet)
	r.HandleFunc("/config", s.handleGetConfig).Methods(http.MethodGet)
	r.HandleFunc("/config", s.handlePutConfig).Methods(http.MethodPut)
	r.HandleFunc("/adapters/{id}", s.handleDropAdapter).Methods(http.MethodDelete)
	r.HandleFunc("/adapters/{name}/truncate", s.handleTruncate).Methods(http.MethodPost)
	r.HandleFunc("/route", s.handleRoute).Methods(http.MethodPost)
	r.HandleFunc("/feedback", s.handleFeedback).Methods(http.MethodPost)
	r.Handle("/metrics", metricsOrDefault(metrics))

	s.server = &http.Server{Addr: addr, Handler: r}
	return s
}

func metricsOrDefault(h http.Handler) http.Handler {
	if h != nil {
		return h
	}
	return promhttp.Handler()
}

// ListenAndServe starts the HTTP server. It blocks until the server is
// shut down.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting admin server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	healthy := s.healthy
	s.mu.RUnlock()

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": status,
		"uptime": time.Since(s.startedAt).String(),
	})
}

func (s *Server) handleIntrospect(w http.ResponseWriter, r *http.Request) {
	view := introspect.Snapshot(s.table)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(view)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.config.Load())
}

func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var cfg routerconfig.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.config.Swap(&cfg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdapterDropper is the subset of routing.Table the admin server's
// drop-adapter endpoint needs.
type AdapterDropper interface {
	DropPlacements(aids []routing.AID)
}

func (s *Server) handleDropAdapter(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	dropper, ok := s.table.(AdapterDropper)
	if !ok {
		http.Error(w, "table does not support dropping adapters", http.StatusNotImplemented)
		return
	}

	id, err := parseAID(vars["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	dropper.DropPlacements([]routing.AID{id})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTruncate(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	table := r.URL.Query().Get("table")
	if table == "" {
		http.Error(w, "missing table query parameter", http.StatusBadRequest)
		return
	}

	adapter, ok := s.adapters[name]
	if !ok {
		http.Error(w, "unknown adapter: "+name, http.StatusNotFound)
		return
	}

	if err := adapter.Truncate(r.Context(), table); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseAID(s string) (routing.AID, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return routing.AID(n), nil
}

// routeRequest is the wire shape for POST /route: the table a query
// targets and its logical plan, exactly as the query engine would hand
// them to the router in process.
type routeRequest struct {
	Table string    `json:"table"`
	Plan  plan.Node `json:"plan"`
}

type routeResponse struct {
	PlacementSet string `json:"placement_set"`
	QueryClass   string `json:"query_class"`
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		http.Error(w, "routing engine not configured", http.StatusServiceUnavailable)
		return
	}

	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ps, qc, err := s.engine.Route(r.Context(), req.Table, &req.Plan, rng)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(routeResponse{PlacementSet: ps.Key(), QueryClass: string(qc)})
}

type feedbackRequest struct {
	Tag   string `json:"tag"`
	Nanos int64  `json:"nanos"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		http.Error(w, "routing engine not configured", http.StatusServiceUnavailable)
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.engine.Feedback(req.Tag, req.Nanos); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
