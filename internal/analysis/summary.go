package analysis

import (
	"sort"

	"github.com/KaramelBytes/moviedash/internal/dataset"
)

// Summary holds the headline metrics of a filtered table.
type Summary struct {
	Movies    int           `json:"movies"`
	Revenue   float64       `json:"revenue"`
	Years     int           `json:"years"`
	AvgRating dataset.Float `json:"avg_rating"`
}

// Summarize computes headline metrics, skipping null cells.
func Summarize(movies []dataset.Movie) Summary {
	s := Summary{Movies: len(movies)}
	years := map[int]struct{}{}
	var ratingSum float64
	var ratings int
	for i := range movies {
		m := &movies[i]
		if m.Revenue.Valid {
			s.Revenue += m.Revenue.Value
		}
		if m.Year.Valid {
			years[m.Year.Value] = struct{}{}
		}
		if m.Rating.Valid {
			ratingSum += m.Rating.Value
			ratings++
		}
	}
	s.Years = len(years)
	if ratings > 0 {
		s.AvgRating = dataset.Some(ratingSum / float64(ratings))
	}
	return s
}

// Domains describes the value ranges of the full table, used to populate
// filter controls.
type Domains struct {
	YearMin    int      `json:"year_min"`
	YearMax    int      `json:"year_max"`
	HasYears   bool     `json:"has_years"`
	RatingMin  float64  `json:"rating_min"`
	RatingMax  float64  `json:"rating_max"`
	HasRatings bool     `json:"has_ratings"`
	Genres     []string `json:"genres"`
	Companies  []string `json:"companies"`
}

// DomainsOf scans t for its filter domains.
func DomainsOf(t *dataset.Table) Domains {
	d := Domains{Genres: []string{}, Companies: []string{}}
	if t == nil {
		return d
	}
	genres := map[string]struct{}{}
	companies := map[string]struct{}{}
	for i := range t.Movies {
		m := &t.Movies[i]
		if m.Year.Valid {
			if !d.HasYears || m.Year.Value < d.YearMin {
				d.YearMin = m.Year.Value
			}
			if !d.HasYears || m.Year.Value > d.YearMax {
				d.YearMax = m.Year.Value
			}
			d.HasYears = true
		}
		if m.Rating.Valid {
			if !d.HasRatings || m.Rating.Value < d.RatingMin {
				d.RatingMin = m.Rating.Value
			}
			if !d.HasRatings || m.Rating.Value > d.RatingMax {
				d.RatingMax = m.Rating.Value
			}
			d.HasRatings = true
		}
		for _, g := range m.Genres {
			genres[g] = struct{}{}
		}
		for _, c := range m.Companies {
			companies[c] = struct{}{}
		}
	}
	d.Genres = sortedKeys(genres)
	d.Companies = sortedKeys(companies)
	return d
}

// Predicates returns the pass-everything predicates for the domain: full
// ranges and empty sets.
func (d Domains) Predicates() Predicates {
	return Predicates{YearMin: d.YearMin, YearMax: d.YearMax, RatingMin: d.RatingMin, RatingMax: d.RatingMax}
}

// SuggestedGenres returns the first n genres of the vocabulary.
func (d Domains) SuggestedGenres(n int) []string {
	if n > len(d.Genres) {
		n = len(d.Genres)
	}
	if n <= 0 {
		return []string{}
	}
	return append([]string(nil), d.Genres[:n]...)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
