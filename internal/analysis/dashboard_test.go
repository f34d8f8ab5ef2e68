package analysis

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainsOf(t *testing.T) {
	tbl := loadFixture(t)
	d := DomainsOf(tbl)

	assert.True(t, d.HasYears)
	assert.Equal(t, 1997, d.YearMin)
	assert.Equal(t, 2009, d.YearMax)
	assert.Equal(t, 6.0, d.RatingMin)
	assert.Equal(t, 8.1, d.RatingMax)
	assert.Equal(t, []string{"Action", "Adventure", "Drama", "Fantasy", "Mystery", "Romance", "Thriller"}, d.Genres)
	assert.Equal(t, []string{
		"Director's Cut Co", "DreamWorks SKG", "Ingenious Film Partners",
		"Paramount Pictures", "Twentieth Century Fox", "Universal Pictures",
	}, d.Companies)
	assert.Equal(t, []string{"Action", "Adventure", "Drama", "Fantasy", "Mystery"}, d.SuggestedGenres(5))
	assert.Empty(t, d.SuggestedGenres(0))

	empty := DomainsOf(nil)
	assert.False(t, empty.HasYears)
	assert.NotNil(t, empty.Genres)
}

func TestDashboard(t *testing.T) {
	tbl := loadFixture(t)
	b := Dashboard(tbl, DomainsOf(tbl).Predicates(), 0)

	assert.Len(t, b.Movies, 4)
	assert.Equal(t, 4, b.Summary.Movies)
	assert.Equal(t, 5130362798.0, b.Summary.Revenue)
	assert.Equal(t, 3, b.Summary.Years)
	require.True(t, b.Summary.AvgRating.Valid)
	assert.InDelta(t, 7.675, b.Summary.AvgRating.Value, 1e-9)

	assert.Equal(t, "Avatar", b.TopMovies[0].Title)
	assert.Equal(t, []int{1997, 2000, 2009}, []int{b.RatingByYear.Rows[0].Year, b.RatingByYear.Rows[1].Year, b.RatingByYear.Rows[2].Year})
	assert.Equal(t, "Twentieth Century Fox", b.TopCompanies.Rows[0].Key)
	assert.Equal(t, 4632999275.0, b.TopCompanies.Rows[0].Value)
	assert.Equal(t, "Action", b.TopGenresByCount.Rows[0].Key)
	assert.Equal(t, "Action", b.TopGenresByRevenue.Rows[0].Key)

	small := Dashboard(tbl, DomainsOf(tbl).Predicates(), 2)
	assert.Len(t, small.TopMovies, 2)
	assert.Len(t, small.TopCompanies.Rows, 2)
	assert.Len(t, small.RevenueByYear.Rows, 3, "time series are never truncated")
}

func TestDashboardEmptySelection(t *testing.T) {
	tbl := loadFixture(t)
	p := DomainsOf(tbl).Predicates()
	p.Genres = []string{"Western"}
	b := Dashboard(tbl, p, 10)

	assert.Equal(t, 0, b.Summary.Movies)
	assert.False(t, b.Summary.AvgRating.Valid)
	assert.Empty(t, b.TopMovies)
	assert.Empty(t, b.TopCompanies.Rows)
	assert.Empty(t, b.RatingByYear.Rows)
}

func TestFacts(t *testing.T) {
	tbl := loadFixture(t)
	b := Dashboard(tbl, DomainsOf(tbl).Predicates(), 10)

	facts := Facts(tbl, b)
	assert.Equal(t, []string{
		"The highest-grossing movie is 'Avatar' with $2,787,965,087 revenue!",
		"The most common genre is 'Action' with 2 movies.",
		"The average movie runtime is 142.8 minutes.",
		"The oldest movie in the dataset is from 1997.",
		"The most productive year was 2000 with 3 movies released.",
		"The company with the highest total revenue is 'Twentieth Century Fox'.",
	}, facts)

	fact, ok := RandomFact(facts, rand.New(rand.NewSource(1)))
	assert.True(t, ok)
	assert.Contains(t, facts, fact)

	_, ok = RandomFact(nil, rand.New(rand.NewSource(1)))
	assert.False(t, ok)
}

func TestFactsWithoutData(t *testing.T) {
	tbl := buildTable(t)
	assert.Empty(t, Facts(tbl, Dashboard(tbl, Predicates{}, 10)))
	assert.Empty(t, Facts(nil, nil))
}

func TestThousands(t *testing.T) {
	assert.Equal(t, "0", thousands(0))
	assert.Equal(t, "999", thousands(999))
	assert.Equal(t, "1,000", thousands(1000))
	assert.Equal(t, "-12,345,679", thousands(-12345678.6))
}

func TestDashboardGenreCountSkipsUntitledRows(t *testing.T) {
	tbl := buildTable(t,
		row("Named", "10", "7", "2001", `[{"name": "Drama"}]`),
		row("", "20", "7", "2001", `[{"name": "Drama"}, {"name": "Comedy"}]`),
		row("Other", "30", "7", "2002", `[{"name": "Comedy"}]`),
	)
	b := Dashboard(tbl, DomainsOf(tbl).Predicates(), 0)

	require.Len(t, b.TopGenresByCount.Rows, 2)
	for _, r := range b.TopGenresByCount.Rows {
		assert.Equal(t, 1.0, r.Value, r.Key)
	}
	assert.Equal(t, MeasureTitles, b.TopGenresByCount.Measure)
	// untitled rows still count as movies and still carry revenue
	assert.Equal(t, 3, b.Summary.Movies)
	assert.Equal(t, 2.0, GroupByCount(b.Movies, DimGenre, MeasureMovies).Rows[0].Value)
}
