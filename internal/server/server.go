// Package server exposes the dashboard engine as a read-only JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/KaramelBytes/moviedash/internal/analysis"
	"github.com/KaramelBytes/moviedash/internal/dataset"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	DataPath  string
	TopN      int
	Delimiter rune
	// CORSOrigins lists origins allowed to call the API from a browser.
	CORSOrigins []string
	// RateLimit caps requests per client IP per minute; 0 disables it.
	RateLimit int
}

// Server answers dashboard queries against one data file. Every request runs
// a full filter and aggregation pass over the cached table.
type Server struct {
	cache   *dataset.Cache
	opt     Options
	log     *logrus.Entry
	metrics *Metrics
	router  chi.Router

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New builds the server and its routes. A nil logger discards output.
func New(cache *dataset.Cache, opt Options, log *logrus.Entry) *Server {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	if opt.TopN <= 0 {
		opt.TopN = analysis.DefaultTopN
	}
	s := &Server{
		cache:   cache,
		opt:     opt,
		log:     log.WithField("component", "server"),
		metrics: NewMetrics(cache),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.metrics.Middleware)
	if len(s.opt.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opt.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			ExposedHeaders: []string{"Content-Disposition"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		if s.opt.RateLimit > 0 {
			r.Use(httprate.Limit(s.opt.RateLimit, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(s.handleRateLimited),
			))
		}
		r.Get("/domains", s.handleDomains)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/movies", s.handleMovies)
		r.Get("/views/{dimension}", s.handleView)
		r.Get("/series", s.handleSeries)
		r.Get("/facts", s.handleFacts)
		r.Get("/export.csv", s.handleExport(false))
		r.Get("/export.xlsx", s.handleExport(true))
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("Shutting down HTTP server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"elapsed":    time.Since(start).String(),
			"request_id": chimiddleware.GetReqID(r.Context()),
		}).Debug("Handled request")
	})
}

type response struct {
	Status   string    `json:"status"`
	Data     any       `json:"data,omitempty"`
	Metadata *metadata `json:"metadata,omitempty"`
	Error    *apiError `json:"error,omitempty"`
}

type metadata struct {
	Timestamp time.Time `json:"timestamp"`
	TableID   string    `json:"table_id,omitempty"`
	Rows      int       `json:"rows"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, resp *response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.WithError(err).Error("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.log.WithError(err).Debug("Failed to write JSON response")
	}
}

func (s *Server) respondData(w http.ResponseWriter, t *dataset.Table, data any) {
	meta := &metadata{Timestamp: time.Now().UTC()}
	if t != nil {
		meta.TableID = t.ID
		meta.Rows = t.Len()
	}
	s.respondJSON(w, http.StatusOK, &response{Status: "success", Data: data, Metadata: meta})
}

// respondError maps invalid arguments to 400 and everything else, including
// data source failures, to 500.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	switch {
	case errors.Is(err, analysis.ErrInvalidArgument):
		status, code = http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, dataset.ErrDataSource):
		code = "DATA_SOURCE_ERROR"
	}
	entry := s.log.WithError(err).WithField("code", code)
	if status >= 500 {
		entry.Error("API error")
	} else {
		entry.Debug("Rejected request")
	}
	s.respondJSON(w, status, &response{Status: "error", Error: &apiError{Code: code, Message: err.Error()}})
}

// table loads (or reuses) the dataset.
func (s *Server) table() (*dataset.Table, error) {
	t, err := s.cache.Load(s.opt.DataPath)
	if err != nil {
		return nil, err
	}
	s.metrics.DatasetRows.Set(float64(t.Len()))
	return t, nil
}

// query loads the table and resolves the request's filter against it.
func (s *Server) query(r *http.Request) (*dataset.Table, analysis.Predicates, error) {
	f, err := filterFromQuery(r.URL.Query())
	if err != nil {
		return nil, analysis.Predicates{}, err
	}
	t, err := s.table()
	if err != nil {
		return nil, analysis.Predicates{}, err
	}
	return t, f.Resolve(analysis.DomainsOf(t)), nil
}
