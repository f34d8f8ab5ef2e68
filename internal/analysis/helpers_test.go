package analysis

import (
	"testing"

	"github.com/KaramelBytes/moviedash/internal/dataset"
	"github.com/KaramelBytes/moviedash/internal/testutil"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.Load(testutil.WriteMoviesCSV(t, t.TempDir()), dataset.Options{})
	require.NoError(t, err)
	return tbl
}

// row builds a record in dataset.RequiredColumns order:
// title, budget, revenue, runtime, vote_average, release_date, genres, production_companies.
func row(title, revenue, rating, date, genres string) []string {
	return []string{title, "", revenue, "", rating, date, genres, ""}
}

func buildTable(t *testing.T, rows ...[]string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.FromRecords("inline", dataset.RequiredColumns, rows)
	require.NoError(t, err)
	return tbl
}

func titles(movies []dataset.Movie) []string {
	out := make([]string, len(movies))
	for i, m := range movies {
		out[i] = m.Title
	}
	return out
}

func keys(v View) []string {
	out := make([]string, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = r.Key
	}
	return out
}
