package analysis

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/moviedash/internal/dataset"
	"gopkg.in/yaml.v3"
)

// Predicates is a fully resolved filter. Range bounds are inclusive and always
// apply; empty Genres/Companies sets place no constraint.
type Predicates struct {
	YearMin   int      `json:"year_min"`
	YearMax   int      `json:"year_max"`
	RatingMin float64  `json:"rating_min"`
	RatingMax float64  `json:"rating_max"`
	Genres    []string `json:"genres"`
	Companies []string `json:"companies"`
}

// Apply returns the rows of t matching p, in table order. Rows with a null
// year or null rating never satisfy the range tests.
func Apply(t *dataset.Table, p Predicates) []dataset.Movie {
	if t == nil {
		return nil
	}
	genres := toSet(p.Genres)
	companies := toSet(p.Companies)
	out := make([]dataset.Movie, 0, len(t.Movies))
	for i := range t.Movies {
		m := &t.Movies[i]
		if !m.Year.Valid || m.Year.Value < p.YearMin || m.Year.Value > p.YearMax {
			continue
		}
		if !m.Rating.Valid || m.Rating.Value < p.RatingMin || m.Rating.Value > p.RatingMax {
			continue
		}
		if len(genres) > 0 && !intersects(m.Genres, genres) {
			continue
		}
		if len(companies) > 0 && !intersects(m.Companies, companies) {
			continue
		}
		out = append(out, *m)
	}
	return out
}

func toSet(vals []string) map[string]struct{} {
	if len(vals) == 0 {
		return nil
	}
	s := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

func intersects(vals []string, set map[string]struct{}) bool {
	for _, v := range vals {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

// Filter is a partially specified filter as users write it. Unset bounds
// default to the full domain when resolved.
type Filter struct {
	YearMin   *int     `yaml:"year_min,omitempty" json:"year_min,omitempty"`
	YearMax   *int     `yaml:"year_max,omitempty" json:"year_max,omitempty"`
	RatingMin *float64 `yaml:"rating_min,omitempty" json:"rating_min,omitempty"`
	RatingMax *float64 `yaml:"rating_max,omitempty" json:"rating_max,omitempty"`
	Genres    []string `yaml:"genres,omitempty" json:"genres,omitempty"`
	Companies []string `yaml:"companies,omitempty" json:"companies,omitempty"`
}

// Validate rejects inverted ranges.
func (f Filter) Validate() error {
	if f.YearMin != nil && f.YearMax != nil && *f.YearMin > *f.YearMax {
		return fmt.Errorf("%w: year_min %d > year_max %d", ErrInvalidArgument, *f.YearMin, *f.YearMax)
	}
	if f.RatingMin != nil && f.RatingMax != nil && *f.RatingMin > *f.RatingMax {
		return fmt.Errorf("%w: rating_min %g > rating_max %g", ErrInvalidArgument, *f.RatingMin, *f.RatingMax)
	}
	return nil
}

// Merge overlays the fields set in o onto f.
func (f Filter) Merge(o Filter) Filter {
	if o.YearMin != nil {
		f.YearMin = o.YearMin
	}
	if o.YearMax != nil {
		f.YearMax = o.YearMax
	}
	if o.RatingMin != nil {
		f.RatingMin = o.RatingMin
	}
	if o.RatingMax != nil {
		f.RatingMax = o.RatingMax
	}
	if len(o.Genres) > 0 {
		f.Genres = o.Genres
	}
	if len(o.Companies) > 0 {
		f.Companies = o.Companies
	}
	return f
}

// Resolve fills unset bounds from d.
func (f Filter) Resolve(d Domains) Predicates {
	p := d.Predicates()
	if f.YearMin != nil {
		p.YearMin = *f.YearMin
	}
	if f.YearMax != nil {
		p.YearMax = *f.YearMax
	}
	if f.RatingMin != nil {
		p.RatingMin = *f.RatingMin
	}
	if f.RatingMax != nil {
		p.RatingMax = *f.RatingMax
	}
	p.Genres = append([]string(nil), f.Genres...)
	p.Companies = append([]string(nil), f.Companies...)
	return p
}

// LoadFilter reads a YAML filter preset.
func LoadFilter(path string) (Filter, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Filter{}, fmt.Errorf("read filter: %w", err)
	}
	var f Filter
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Filter{}, fmt.Errorf("%w: parse filter %s: %v", ErrInvalidArgument, path, err)
	}
	return f, f.Validate()
}
