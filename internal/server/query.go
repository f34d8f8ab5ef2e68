package server

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/KaramelBytes/moviedash/internal/analysis"
)

// filterFromQuery reads year_min, year_max, rating_min, rating_max and the
// repeatable genre and company parameters. Comma-separated values are not
// split since company names contain commas.
func filterFromQuery(q url.Values) (analysis.Filter, error) {
	var f analysis.Filter
	var err error
	if f.YearMin, err = intParam(q, "year_min"); err != nil {
		return f, err
	}
	if f.YearMax, err = intParam(q, "year_max"); err != nil {
		return f, err
	}
	if f.RatingMin, err = floatParam(q, "rating_min"); err != nil {
		return f, err
	}
	if f.RatingMax, err = floatParam(q, "rating_max"); err != nil {
		return f, err
	}
	f.Genres = listParam(q, "genre")
	f.Companies = listParam(q, "company")
	return f, f.Validate()
}

func intParam(q url.Values, key string) (*int, error) {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer, got %q", analysis.ErrInvalidArgument, key, s)
	}
	return &v, nil
}

func floatParam(q url.Values, key string) (*float64, error) {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return nil, fmt.Errorf("%w: %s must be a number, got %q", analysis.ErrInvalidArgument, key, s)
	}
	return &v, nil
}

func listParam(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// limitParam reads n; absent means def.
func limitParam(q url.Values, def int) (int, error) {
	s := strings.TrimSpace(q.Get("n"))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: n must be a non-negative integer, got %q", analysis.ErrInvalidArgument, s)
	}
	return n, nil
}
