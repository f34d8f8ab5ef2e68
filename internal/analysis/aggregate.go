package analysis

import (
	"sort"

	"github.com/KaramelBytes/moviedash/internal/dataset"
)

// ViewRow is one group of an aggregate view.
type ViewRow struct {
	Key string `json:"key"`
	// Year is set for the year dimension.
	Year  int     `json:"year,omitempty"`
	Value float64 `json:"value"`
	// Count is the number of non-null contributions to the group.
	Count int `json:"count"`
}

// View is an aggregate keyed by a grouping dimension.
type View struct {
	Dimension Dimension `json:"dimension"`
	Measure   Measure   `json:"measure"`
	Agg       Agg       `json:"agg"`
	Rows      []ViewRow `json:"rows"`
}

// Top returns a copy of v truncated to its first n rows; n <= 0 keeps all.
func (v View) Top(n int) View {
	if n > 0 && len(v.Rows) > n {
		v.Rows = append([]ViewRow(nil), v.Rows[:n]...)
	}
	return v
}

// Total sums the row values.
func (v View) Total() float64 {
	var s float64
	for _, r := range v.Rows {
		s += r.Value
	}
	return s
}

// GroupBy aggregates measure per group of dim. A movie with k values in a
// list dimension contributes to k groups. Null measures are skipped, and a
// group without any non-null contribution is omitted rather than reported as
// zero. Rows are sorted by value descending, ties by key.
func GroupBy(movies []dataset.Movie, dim Dimension, measure Measure, agg Agg) View {
	type acc struct {
		sum  float64
		n    int
		year int
	}
	groups := map[string]*acc{}
	for i := range movies {
		m := &movies[i]
		v := measure.Of(m)
		if !v.Valid {
			continue
		}
		for _, k := range dim.keys(m) {
			a := groups[k]
			if a == nil {
				a = &acc{}
				if dim == DimYear {
					a.year = m.Year.Value
				}
				groups[k] = a
			}
			a.sum += v.Value
			a.n++
		}
	}

	view := View{Dimension: dim, Measure: measure, Agg: agg, Rows: make([]ViewRow, 0, len(groups))}
	for k, a := range groups {
		row := ViewRow{Key: k, Year: a.year, Count: a.n}
		switch agg {
		case AggMean:
			row.Value = a.sum / float64(a.n)
		case AggCount:
			row.Value = float64(a.n)
		default:
			row.Value = a.sum
		}
		view.Rows = append(view.Rows, row)
	}
	sort.Slice(view.Rows, func(i, j int) bool {
		if view.Rows[i].Value == view.Rows[j].Value {
			return keyLess(dim, view.Rows[i], view.Rows[j])
		}
		return view.Rows[i].Value > view.Rows[j].Value
	})
	return view
}

// GroupBySum sums measure per group.
func GroupBySum(movies []dataset.Movie, dim Dimension, measure Measure) View {
	return GroupBy(movies, dim, measure, AggSum)
}

// GroupByMean averages measure per group.
func GroupByMean(movies []dataset.Movie, dim Dimension, measure Measure) View {
	return GroupBy(movies, dim, measure, AggMean)
}

// GroupByCount counts non-null measure values per group.
func GroupByCount(movies []dataset.Movie, dim Dimension, measure Measure) View {
	return GroupBy(movies, dim, measure, AggCount)
}

// TimeSeries groups by release year and sorts ascending by year.
func TimeSeries(movies []dataset.Movie, measure Measure, agg Agg) View {
	v := GroupBy(movies, DimYear, measure, agg)
	sort.Slice(v.Rows, func(i, j int) bool { return v.Rows[i].Year < v.Rows[j].Year })
	return v
}

func keyLess(dim Dimension, a, b ViewRow) bool {
	if dim == DimYear {
		return a.Year < b.Year
	}
	return a.Key < b.Key
}

// RankedMovie is one entry of a top-N ranking.
type RankedMovie struct {
	Title  string        `json:"title"`
	Year   dataset.Int   `json:"release_year"`
	Value  dataset.Float `json:"value"`
	Rating dataset.Float `json:"vote_average"`
}

// TopN ranks movies by measure descending, nulls last, ties by title then
// source order, and returns at most n entries.
func TopN(movies []dataset.Movie, measure Measure, n int) []RankedMovie {
	if n <= 0 || len(movies) == 0 {
		return []RankedMovie{}
	}
	idx := make([]int, len(movies))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ma, mb := &movies[idx[a]], &movies[idx[b]]
		va, vb := measure.Of(ma), measure.Of(mb)
		if va.Valid != vb.Valid {
			return va.Valid
		}
		if va.Valid && va.Value != vb.Value {
			return va.Value > vb.Value
		}
		if ma.Title != mb.Title {
			return ma.Title < mb.Title
		}
		return ma.Row < mb.Row
	})
	if n > len(idx) {
		n = len(idx)
	}
	out := make([]RankedMovie, n)
	for i := 0; i < n; i++ {
		m := &movies[idx[i]]
		out[i] = RankedMovie{Title: m.Title, Year: m.Year, Value: measure.Of(m), Rating: m.Rating}
	}
	return out
}
