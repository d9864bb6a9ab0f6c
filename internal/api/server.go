// Package api serves the search pipeline and local job postings over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/amishk599/jobradius/internal/model"
	"github.com/amishk599/jobradius/internal/search"
)

// Searcher is the part of search.Service the handlers need.
type Searcher interface {
	Search(ctx context.Context, q model.LocationQuery, radiusMiles float64) (search.Result, error)
	SubmitLocal(ctx context.Context, p model.LocalJobPosting) (model.LocalJobPosting, error)
	LocalJobs(ctx context.Context, center *model.GeoPoint, radiusMiles float64) ([]model.JobRecord, error)
}

// Options holds listener settings for the HTTP server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// DefaultRadiusMiles applies to /search requests without a radius.
	DefaultRadiusMiles float64
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Search  Searcher
	Metrics http.Handler // served at /metrics when non-nil
	Logger  *slog.Logger
}

// Server routes requests to handlers.
type Server struct {
	search        Searcher
	logger        *slog.Logger
	defaultRadius float64
	mux           *http.ServeMux
}

// New builds a Server and registers its routes.
func New(deps Deps, opts Options) *Server {
	s := &Server{
		search:        deps.Search,
		logger:        deps.Logger,
		defaultRadius: opts.DefaultRadiusMiles,
		mux:           http.NewServeMux(),
	}
	s.routes(deps.Metrics)
	return s
}

func (s *Server) routes(metrics http.Handler) {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /search", s.handleSearch)
	s.mux.HandleFunc("GET /local-jobs", s.handleListLocalJobs)
	s.mux.HandleFunc("POST /local-jobs", s.handleSubmitLocalJob)

	// Paths used by earlier clients.
	s.mux.HandleFunc("GET /scrape", s.handleSearch)
	s.mux.HandleFunc("GET /api/local-jobs", s.handleListLocalJobs)
	s.mux.HandleFunc("POST /api/local-jobs", s.handleSubmitLocalJob)

	if metrics != nil {
		s.mux.Handle("GET /metrics", metrics)
	}
	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found")
	})
}

// Handler returns the routed handler wrapped in CORS and access-log middleware.
func (s *Server) Handler() http.Handler {
	return WithLogger(s.logger, WithCORS(s.mux))
}

// NewHTTPServer returns an *http.Server for s using opts.
func NewHTTPServer(s *Server, opts Options) *http.Server {
	return &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
	}
}
