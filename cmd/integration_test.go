package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/moviedash/internal/dataset"
	"github.com/KaramelBytes/moviedash/internal/testutil"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default. Flag values and Changed
// state persist across Execute calls on the shared command tree.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns its stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmd(t, args...)
	require.NoError(t, err, "command %v", args)
	return out
}

// setup isolates HOME and writes the fixture table.
func setup(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return testutil.WriteMoviesCSV(t, t.TempDir())
}

func TestCLI_Dashboard(t *testing.T) {
	data := setup(t)
	out := mustRun(t, "dashboard", "--data", data, "-f", "markdown")
	assert.Contains(t, out, "- Total movies: 4")
	assert.Contains(t, out, "[TOP PRODUCTION COMPANIES BY REVENUE]")

	out = mustRun(t, "dashboard", "--data", data, "-f", "json", "--genre", "Mystery")
	var b struct {
		Summary struct {
			Movies int `json:"movies"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &b))
	assert.Equal(t, 1, b.Summary.Movies)

	out = mustRun(t, "dashboard", "--data", data)
	assert.Contains(t, out, "Total Movies")
}

func TestCLI_DashboardOutputFile(t *testing.T) {
	data := setup(t)
	target := filepath.Join(t.TempDir(), "board.md")
	out := mustRun(t, "dashboard", "--data", data, "-f", "md", "-o", target)
	assert.Contains(t, out, "✓ Wrote dashboard to")
	b, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[OVERVIEW]")
}

func TestCLI_Filter(t *testing.T) {
	data := setup(t)
	out := mustRun(t, "filter", "--data", data, "--genre", "Drama", "--company", "Paramount Pictures")
	assert.Contains(t, out, "Titanic")
	assert.NotContains(t, out, "Gladiator")
	assert.Contains(t, out, "1 of 6 movies match")

	out = mustRun(t, "filter", "--data", data, "--year-min", "2001", "--year-max", "2005")
	assert.Contains(t, out, "(no movies match)")
}

func TestCLI_Top(t *testing.T) {
	data := setup(t)
	out := mustRun(t, "top", "--data", data, "--measure", "rating", "-n", "2", "-f", "json")
	var rows []struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Memento", rows[0].Title)
	assert.Equal(t, "Gladiator", rows[1].Title)
}

func TestCLI_GroupAndSeries(t *testing.T) {
	data := setup(t)
	out := mustRun(t, "group", "genre", "--data", data, "--measure", "movies", "--agg", "count", "-f", "markdown")
	assert.Contains(t, out, "| Action | 2 |")

	out = mustRun(t, "series", "--data", data, "--measure", "revenue", "--agg", "sum", "-f", "json")
	var v struct {
		Rows []struct {
			Year int `json:"year"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	require.Len(t, v.Rows, 3)
	assert.Equal(t, 1997, v.Rows[0].Year)

	_, err := runCmd(t, "group", "director", "--data", data)
	assert.Error(t, err)
}

func TestCLI_DomainsAndFacts(t *testing.T) {
	data := setup(t)
	out := mustRun(t, "domains", "--data", data)
	assert.Contains(t, out, "years: 1997-2009")
	assert.Contains(t, out, "- Thriller")

	out = mustRun(t, "facts", "--data", data, "--all")
	assert.Equal(t, 6, strings.Count(out, "🎬"))
	assert.Contains(t, out, "The most productive year was 2000 with 3 movies released.")

	out = mustRun(t, "facts", "--data", data, "--seed", "1")
	assert.Equal(t, 1, strings.Count(out, "🎬"))
}

func TestCLI_ExportRoundTrip(t *testing.T) {
	data := setup(t)
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "movies_filtered.csv")
	out := mustRun(t, "export", "--data", data, "--year-min", "2000", "-o", csvPath)
	assert.Contains(t, out, "✓ Exported 3 movies")

	again := mustRun(t, "filter", "--data", csvPath, "--year-min", "2000")
	assert.Contains(t, again, "3 of 3 movies match")

	xlsxPath := filepath.Join(dir, "movies_filtered.xlsx")
	mustRun(t, "export", "--data", data, "-o", xlsxPath)
	tbl, err := dataset.Load(xlsxPath, dataset.Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, tbl.Len())
}

func TestCLI_FilterPreset(t *testing.T) {
	data := setup(t)
	preset := testutil.WriteFile(t, t.TempDir(), "preset.yaml", "year_min: 2000\ngenres: [Drama, Thriller]\n")
	out := mustRun(t, "filter", "--data", data, "--filters", preset)
	assert.Contains(t, out, "Gladiator")
	assert.Contains(t, out, "Memento")
	assert.Contains(t, out, "2 of 6 movies match")

	// explicit flags override the preset
	out = mustRun(t, "filter", "--data", data, "--filters", preset, "--genre", "Action")
	assert.Contains(t, out, "Avatar")
	assert.Contains(t, out, "Gladiator")
	assert.Contains(t, out, "2 of 6 movies match")
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	data := setup(t)
	mustRun(t, "config", "set", "top_n", "3")
	mustRun(t, "config", "set", "data_path", data)

	out := mustRun(t, "config", "show")
	assert.Contains(t, out, "top_n: 3")
	assert.Contains(t, out, "data_path: "+data)

	out = mustRun(t, "top", "-f", "json")
	var rows []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Len(t, rows, 3)

	_, err := runCmd(t, "config", "set", "top_n", "many")
	assert.Error(t, err)
	_, err = runCmd(t, "config", "set", "bogus", "1")
	assert.Error(t, err)
}

func TestCLI_Errors(t *testing.T) {
	data := setup(t)

	_, err := runCmd(t, "dashboard", "--data", filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, errors.Is(err, dataset.ErrDataSource))

	_, err = runCmd(t, "filter", "--data", data, "--year-min", "2010", "--year-max", "2000")
	assert.Error(t, err)

	_, err = runCmd(t, "dashboard", "--data", data, "-f", "html")
	assert.Error(t, err)

	_, err = runCmd(t, "serve", "--data", filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, errors.Is(err, dataset.ErrDataSource))
}
