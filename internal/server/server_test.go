package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/moviedash/internal/analysis"
	"github.com/KaramelBytes/moviedash/internal/dataset"
	"github.com/KaramelBytes/moviedash/internal/testutil"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	path := testutil.WriteMoviesCSV(t, t.TempDir())
	return New(dataset.NewCache(dataset.Options{}, nil), Options{DataPath: path}, nil), path
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// decode unmarshals the data member of a success envelope into v.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var env struct {
		Status   string          `json:"status"`
		Data     json.RawMessage `json:"data"`
		Metadata metadata        `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, 6, env.Metadata.Rows)
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	return env.Error.Code
}

func TestDomains(t *testing.T) {
	s, _ := newTestServer(t)
	var d domainsResponse
	decode(t, get(t, s, "/api/domains"), &d)
	assert.Equal(t, 1997, d.YearMin)
	assert.Equal(t, 2009, d.YearMax)
	assert.Len(t, d.Genres, 7)
	assert.Equal(t, []string{"Action", "Adventure", "Drama", "Fantasy", "Mystery"}, d.SuggestedGenres)
}

func TestDashboard(t *testing.T) {
	s, _ := newTestServer(t)
	var b struct {
		Summary struct {
			Movies  int     `json:"movies"`
			Revenue float64 `json:"revenue"`
		} `json:"summary"`
		TopMovies []analysis.RankedMovie `json:"top_movies"`
	}
	decode(t, get(t, s, "/api/dashboard?year_min=2000&n=1"), &b)
	assert.Equal(t, 3, b.Summary.Movies)
	assert.Equal(t, 2787965087.0+457640427+39723096, b.Summary.Revenue)
	require.Len(t, b.TopMovies, 1)
	assert.Equal(t, "Avatar", b.TopMovies[0].Title)
}

func TestMoviesFilters(t *testing.T) {
	s, _ := newTestServer(t)
	q := url.Values{}
	q.Add("genre", "Drama")
	q.Add("company", "Paramount Pictures")
	q.Add("company", "DreamWorks SKG")
	q.Set("rating_max", "8")

	var resp struct {
		Count  int `json:"count"`
		Movies []struct {
			Title string `json:"title"`
		} `json:"movies"`
	}
	decode(t, get(t, s, "/api/movies?"+q.Encode()), &resp)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "Titanic", resp.Movies[0].Title)
	assert.Equal(t, "Gladiator", resp.Movies[1].Title)
}

func TestView(t *testing.T) {
	s, _ := newTestServer(t)
	var v analysis.View
	decode(t, get(t, s, "/api/views/genre?measure=movies&agg=count&n=2"), &v)
	assert.Equal(t, analysis.DimGenre, v.Dimension)
	require.Len(t, v.Rows, 2)
	assert.Equal(t, "Action", v.Rows[0].Key)
	assert.Equal(t, 2.0, v.Rows[0].Value)
	assert.Equal(t, "Drama", v.Rows[1].Key)
}

func TestSeries(t *testing.T) {
	s, _ := newTestServer(t)
	var v analysis.View
	decode(t, get(t, s, "/api/series?measure=rating&agg=mean"), &v)
	require.Len(t, v.Rows, 3)
	assert.Equal(t, 1997, v.Rows[0].Year)
	assert.Equal(t, 2000, v.Rows[1].Year)
	assert.InDelta(t, 8.0, v.Rows[1].Value, 1e-9)
}

func TestFacts(t *testing.T) {
	s, _ := newTestServer(t)
	var f factsResponse
	decode(t, get(t, s, "/api/facts"), &f)
	assert.Len(t, f.Facts, 6)
	assert.Contains(t, f.Facts, f.Random)
}

func TestBadParameters(t *testing.T) {
	s, _ := newTestServer(t)
	for _, target := range []string{
		"/api/dashboard?year_min=abc",
		"/api/dashboard?rating_min=NaN",
		"/api/dashboard?year_min=2010&year_max=2000",
		"/api/dashboard?n=-1",
		"/api/views/director",
		"/api/views/genre?measure=popularity",
		"/api/series?agg=median",
	} {
		rec := get(t, s, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec), target)
	}
}

func TestDataSourceError(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "broken.csv", "title,budget\nAvatar,1\n")
	s := New(dataset.NewCache(dataset.Options{}, nil), Options{DataPath: path}, nil)

	rec := get(t, s, "/api/dashboard")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "DATA_SOURCE_ERROR", errorCode(t, rec))
	assert.Contains(t, rec.Body.String(), "missing required columns")

	health := get(t, s, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, health.Code)
}

func TestExportCSV(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/api/export.csv?genre=Mystery")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "movies_filtered.csv")

	path := testutil.WriteFile(t, t.TempDir(), "out.csv", rec.Body.String())
	tbl, err := dataset.Load(path, dataset.Options{})
	require.NoError(t, err)
	require.Len(t, tbl.Movies, 1)
	assert.Equal(t, "Memento", tbl.Movies[0].Title)
	assert.Equal(t, []string{"Director's Cut Co"}, tbl.Movies[0].Companies)
}

func TestExportXLSX(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/api/export.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "movies_filtered.xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestHealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t)
	var h healthStatus
	decode(t, get(t, s, "/healthz"), &h)
	assert.Equal(t, "ok", h.Status)
	get(t, s, "/api/dashboard")

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `moviedash_http_requests_total{method="GET",route="/api/dashboard",status="200"} 1`)
	assert.Contains(t, body, "moviedash_recompute_duration_seconds_count{view=\"dashboard\"} 1")
	assert.Contains(t, body, "moviedash_dataset_cache_misses_total 1")
	assert.Contains(t, body, "moviedash_dataset_cache_hits_total 1")
	assert.Contains(t, body, "moviedash_dataset_rows 6")
}

func TestCacheReloadsModifiedFile(t *testing.T) {
	s, path := newTestServer(t)
	var d domainsResponse
	decode(t, get(t, s, "/api/domains"), &d)
	assert.Equal(t, 1997, d.YearMin)

	content := testutil.MoviesHeader + "\n" + strings.Join(testutil.MoviesRows[2:], "\n") + "\n"
	testutil.WriteFile(t, filepath.Dir(path), filepath.Base(path), content)
	s.cache.Invalidate(path)

	rec := get(t, s, "/api/domains")
	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data     domainsResponse `json:"data"`
		Metadata metadata        `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, 4, env.Metadata.Rows)
	assert.Equal(t, 2000, env.Data.YearMin)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestCORSPreflight(t *testing.T) {
	path := testutil.WriteMoviesCSV(t, t.TempDir())
	s := New(dataset.NewCache(dataset.Options{}, nil), Options{DataPath: path, CORSOrigins: []string{"http://localhost:3000"}}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/dashboard", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	path := testutil.WriteMoviesCSV(t, t.TempDir())
	s := New(dataset.NewCache(dataset.Options{}, nil), Options{DataPath: path, RateLimit: 2}, nil)

	assert.Equal(t, http.StatusOK, get(t, s, "/api/domains").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/api/domains").Code)
	rec := get(t, s, "/api/domains")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", errorCode(t, rec))

	// health and metrics are outside the limited group
	assert.Equal(t, http.StatusOK, get(t, s, "/healthz").Code)
}
