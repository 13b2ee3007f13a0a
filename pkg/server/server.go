// Package server exposes a frozen variation graph over a read-only HTTP
// JSON API.
//
// # Routes
//
//	GET /healthz                               liveness
//	GET /info                                  graph summary
//	GET /nodes/{id}                            node sequence, reference status, edges
//	GET /nodes/{id}/edges                      successors of a node
//	GET /reference/{offset}                    node at a global reference offset
//	GET /chromosomes/{chrom}/offsets/{offset}  node at a chromosome-local offset
//	GET /resolve?pos=&ref=&alt=&chrom=         reference and allele node of a variant
//
// Chromosomes are addressed by 1-based index or, when the server was given
// names, by name. Errors are JSON objects with "code" and "error" fields;
// the code determines the HTTP status.
//
// The graph is immutable, so handlers share it without locking.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/seqgraph/pkg/graph"
)

// DefaultTimeout bounds each request.
const DefaultTimeout = 30 * time.Second

// Options configures a [Server].
type Options struct {
	// Chromosomes names the graph's chromosomes in order. Optional.
	Chromosomes []string
	Logger      *log.Logger
	// Timeout bounds each request. Zero uses DefaultTimeout.
	Timeout time.Duration
}

// Server serves one graph.
type Server struct {
	graph       *graph.Graph
	chromosomes []string
	logger      *log.Logger
	router      chi.Router
}

// New builds the router for g.
func New(g *graph.Graph, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	s := &Server{
		graph:       g,
		chromosomes: opts.Chromosomes,
		logger:      opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.Timeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/info", s.handleInfo)
	r.Get("/nodes/{id}", s.handleNode)
	r.Get("/nodes/{id}/edges", s.handleEdges)
	r.Get("/reference/{offset}", s.handleReference)
	r.Get("/chromosomes/{chrom}/offsets/{offset}", s.handleChromosomeOffset)
	r.Get("/resolve", s.handleResolve)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Code: "NOT_FOUND", Error: "no such route"})
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "nodes", s.graph.NodeCount())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
