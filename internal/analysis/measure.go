package analysis

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/moviedash/internal/dataset"
)

// ErrInvalidArgument is wrapped by every parse error in this package.
var ErrInvalidArgument = errors.New("analysis: invalid argument")

// Measure names a numeric column that views aggregate.
type Measure string

const (
	MeasureRevenue Measure = "revenue"
	MeasureBudget  Measure = "budget"
	MeasureRuntime Measure = "runtime"
	MeasureRating  Measure = "rating"
	// MeasureMovies is 1 for every row; counting it counts movies.
	MeasureMovies Measure = "movies"
	// MeasureTitles is 1 for rows with a non-empty title and null otherwise.
	MeasureTitles Measure = "titles"
)

// Of returns the measure's value for m; null when the cell was missing.
func (ms Measure) Of(m *dataset.Movie) dataset.Float {
	switch ms {
	case MeasureRevenue:
		return m.Revenue
	case MeasureBudget:
		return m.Budget
	case MeasureRuntime:
		return m.Runtime
	case MeasureRating:
		return m.Rating
	case MeasureMovies:
		return dataset.Some(1)
	case MeasureTitles:
		if m.Title == "" {
			return dataset.Float{}
		}
		return dataset.Some(1)
	default:
		return dataset.Float{}
	}
}

// ParseMeasure accepts a measure name; "vote_average" is an alias of rating.
func ParseMeasure(s string) (Measure, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "revenue":
		return MeasureRevenue, nil
	case "budget":
		return MeasureBudget, nil
	case "runtime":
		return MeasureRuntime, nil
	case "rating", "vote_average":
		return MeasureRating, nil
	case "movies", "count":
		return MeasureMovies, nil
	case "titles", "title":
		return MeasureTitles, nil
	}
	return "", fmt.Errorf("%w: unknown measure %q (use revenue|budget|runtime|rating|movies|titles)", ErrInvalidArgument, s)
}

// Dimension names a grouping key.
type Dimension string

const (
	DimYear    Dimension = "year"
	DimGenre   Dimension = "genre"
	DimCompany Dimension = "company"
)

// keys returns the group keys m contributes to. List dimensions fan out.
func (d Dimension) keys(m *dataset.Movie) []string {
	switch d {
	case DimYear:
		if !m.Year.Valid {
			return nil
		}
		return []string{strconv.Itoa(m.Year.Value)}
	case DimGenre:
		return m.Genres
	case DimCompany:
		return m.Companies
	}
	return nil
}

// ParseDimension accepts a dimension name or its source column name.
func ParseDimension(s string) (Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "year", "release_year":
		return DimYear, nil
	case "genre", "genres":
		return DimGenre, nil
	case "company", "companies", "production_companies":
		return DimCompany, nil
	}
	return "", fmt.Errorf("%w: unknown dimension %q (use year|genre|company)", ErrInvalidArgument, s)
}

// Agg is an aggregation function.
type Agg string

const (
	AggSum   Agg = "sum"
	AggMean  Agg = "mean"
	AggCount Agg = "count"
)

// ParseAgg accepts an aggregation name.
func ParseAgg(s string) (Agg, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sum", "total":
		return AggSum, nil
	case "mean", "avg", "average":
		return AggMean, nil
	case "count":
		return AggCount, nil
	}
	return "", fmt.Errorf("%w: unknown aggregation %q (use sum|mean|count)", ErrInvalidArgument, s)
}
