package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/KaramelBytes/moviedash/internal/analysis"
	"github.com/KaramelBytes/moviedash/internal/dataset"
	"github.com/KaramelBytes/moviedash/internal/export"
	"github.com/go-chi/chi/v5"
)

type healthStatus struct {
	Status string             `json:"status"`
	Source string             `json:"source"`
	Cache  dataset.CacheStats `json:"cache"`
	Error  string             `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := healthStatus{Status: "ok", Source: s.opt.DataPath}
	t, err := s.table()
	h.Cache = s.cache.Stats()
	if err != nil {
		h.Status = "unavailable"
		h.Error = err.Error()
		s.respondJSON(w, http.StatusServiceUnavailable, &response{Status: "error", Data: h})
		return
	}
	s.respondData(w, t, h)
}

type domainsResponse struct {
	analysis.Domains
	SuggestedGenres []string `json:"suggested_genres"`
}

func (s *Server) handleDomains(w http.ResponseWriter, r *http.Request) {
	t, err := s.table()
	if err != nil {
		s.respondError(w, err)
		return
	}
	d := analysis.DomainsOf(t)
	s.respondData(w, t, domainsResponse{Domains: d, SuggestedGenres: d.SuggestedGenres(5)})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	n, err := limitParam(r.URL.Query(), s.opt.TopN)
	if err != nil {
		s.respondError(w, err)
		return
	}
	t, p, err := s.query(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	start := time.Now()
	b := analysis.Dashboard(t, p, n)
	s.metrics.ObserveRecompute("dashboard", start)
	s.respondData(w, t, b)
}

type moviesResponse struct {
	Predicates analysis.Predicates `json:"predicates"`
	Count      int                 `json:"count"`
	Movies     []dataset.Movie     `json:"movies"`
}

// handleMovies lists filtered rows in table order; n caps the list (0 = all).
func (s *Server) handleMovies(w http.ResponseWriter, r *http.Request) {
	n, err := limitParam(r.URL.Query(), 0)
	if err != nil {
		s.respondError(w, err)
		return
	}
	t, p, err := s.query(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	start := time.Now()
	movies := analysis.Apply(t, p)
	s.metrics.ObserveRecompute("movies", start)
	resp := moviesResponse{Predicates: p, Count: len(movies), Movies: movies}
	if n > 0 && len(resp.Movies) > n {
		resp.Movies = resp.Movies[:n]
	}
	s.respondData(w, t, resp)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dim, err := analysis.ParseDimension(chi.URLParam(r, "dimension"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	measure, agg, err := measureAndAgg(q.Get("measure"), q.Get("agg"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	n, err := limitParam(q, s.opt.TopN)
	if err != nil {
		s.respondError(w, err)
		return
	}
	t, p, err := s.query(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	start := time.Now()
	v := analysis.GroupBy(analysis.Apply(t, p), dim, measure, agg).Top(n)
	s.metrics.ObserveRecompute("view_"+string(dim), start)
	s.respondData(w, t, v)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	measure, agg, err := measureAndAgg(q.Get("measure"), q.Get("agg"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	t, p, err := s.query(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	start := time.Now()
	v := analysis.TimeSeries(analysis.Apply(t, p), measure, agg)
	s.metrics.ObserveRecompute("series", start)
	s.respondData(w, t, v)
}

// measureAndAgg defaults to revenue summed.
func measureAndAgg(ms, as string) (analysis.Measure, analysis.Agg, error) {
	measure, agg := analysis.MeasureRevenue, analysis.AggSum
	var err error
	if strings.TrimSpace(ms) != "" {
		if measure, err = analysis.ParseMeasure(ms); err != nil {
			return "", "", err
		}
	}
	if strings.TrimSpace(as) != "" {
		if agg, err = analysis.ParseAgg(as); err != nil {
			return "", "", err
		}
	}
	return measure, agg, nil
}

type factsResponse struct {
	Facts  []string `json:"facts"`
	Random string   `json:"random,omitempty"`
}

func (s *Server) handleFacts(w http.ResponseWriter, r *http.Request) {
	t, p, err := s.query(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	start := time.Now()
	facts := analysis.Facts(t, analysis.Dashboard(t, p, s.opt.TopN))
	s.metrics.ObserveRecompute("facts", start)
	if facts == nil {
		facts = []string{}
	}
	s.rngMu.Lock()
	random, _ := analysis.RandomFact(facts, s.rng)
	s.rngMu.Unlock()
	s.respondData(w, t, factsResponse{Facts: facts, Random: random})
}

func (s *Server) handleExport(xlsx bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, p, err := s.query(r)
		if err != nil {
			s.respondError(w, err)
			return
		}
		movies := analysis.Apply(t, p)

		var buf bytes.Buffer
		name, contentType := export.DefaultName, "text/csv; charset=utf-8"
		if xlsx {
			name = strings.TrimSuffix(export.DefaultName, ".csv") + ".xlsx"
			contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
			err = export.WriteXLSX(&buf, t.Header, movies)
		} else {
			err = export.WriteCSV(&buf, t.Header, movies, s.opt.Delimiter)
		}
		if err != nil {
			s.respondError(w, fmt.Errorf("export: %w", err))
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		if _, err := w.Write(buf.Bytes()); err != nil {
			s.log.WithError(err).Debug("Failed to write export")
		}
	}
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusTooManyRequests, &response{
		Status: "error",
		Error:  &apiError{Code: "RATE_LIMITED", Message: "too many requests, retry later"},
	})
}
