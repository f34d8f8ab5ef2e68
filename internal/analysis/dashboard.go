package analysis

import (
	"github.com/KaramelBytes/moviedash/internal/dataset"
)

// DefaultTopN is the ranking length used by the dashboard views.
const DefaultTopN = 10

// Board is the result of one recompute pass: the filtered rows plus every
// view the dashboard shows.
type Board struct {
	Predicates         Predicates      `json:"predicates"`
	Movies             []dataset.Movie `json:"-"`
	Summary            Summary         `json:"summary"`
	TopMovies          []RankedMovie   `json:"top_movies"`
	RatingByYear       View            `json:"rating_by_year"`
	RevenueByYear      View            `json:"revenue_by_year"`
	TopCompanies       View            `json:"top_companies"`
	TopGenresByCount   View            `json:"top_genres_by_count"`
	TopGenresByRevenue View            `json:"top_genres_by_revenue"`
}

// Dashboard filters t with p and computes every dashboard view, ranking
// views truncated to n entries (DefaultTopN when n <= 0).
func Dashboard(t *dataset.Table, p Predicates, n int) *Board {
	if n <= 0 {
		n = DefaultTopN
	}
	movies := Apply(t, p)
	return &Board{
		Predicates:         p,
		Movies:             movies,
		Summary:            Summarize(movies),
		TopMovies:          TopN(movies, MeasureRevenue, n),
		RatingByYear:       TimeSeries(movies, MeasureRating, AggMean),
		RevenueByYear:      TimeSeries(movies, MeasureRevenue, AggSum),
		TopCompanies:       GroupBySum(movies, DimCompany, MeasureRevenue).Top(n),
		TopGenresByCount:   GroupByCount(movies, DimGenre, MeasureTitles).Top(n),
		TopGenresByRevenue: GroupBySum(movies, DimGenre, MeasureRevenue).Top(n),
	}
}
