package cmd

import (
	"github.com/KaramelBytes/moviedash/internal/analysis"
	"github.com/KaramelBytes/moviedash/internal/dataset"
	"github.com/KaramelBytes/moviedash/internal/render"
	"github.com/spf13/cobra"
)

// filterFlags holds the filter options shared by the query commands.
type filterFlags struct {
	yearMin   int
	yearMax   int
	ratingMin float64
	ratingMax float64
	genres    []string
	companies []string
	preset    string
}

func (ff *filterFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&ff.yearMin, "year-min", 0, "earliest release year (default: dataset minimum)")
	f.IntVar(&ff.yearMax, "year-max", 0, "latest release year (default: dataset maximum)")
	f.Float64Var(&ff.ratingMin, "rating-min", 0, "minimum vote average (default: dataset minimum)")
	f.Float64Var(&ff.ratingMax, "rating-max", 0, "maximum vote average (default: dataset maximum)")
	// StringArray rather than StringSlice: company names contain commas.
	f.StringArrayVarP(&ff.genres, "genre", "g", nil, "keep movies with this genre (repeatable)")
	f.StringArrayVarP(&ff.companies, "company", "c", nil, "keep movies from this production company (repeatable)")
	f.StringVar(&ff.preset, "filters", "", "YAML filter preset; explicit flags override it")
}

// filter combines the preset with the flags the user actually set.
func (ff *filterFlags) filter(cmd *cobra.Command) (analysis.Filter, error) {
	var base analysis.Filter
	if ff.preset != "" {
		p, err := analysis.LoadFilter(ff.preset)
		if err != nil {
			return analysis.Filter{}, err
		}
		base = p
	}
	var o analysis.Filter
	f := cmd.Flags()
	if f.Changed("year-min") {
		v := ff.yearMin
		o.YearMin = &v
	}
	if f.Changed("year-max") {
		v := ff.yearMax
		o.YearMax = &v
	}
	if f.Changed("rating-min") {
		v := ff.ratingMin
		o.RatingMin = &v
	}
	if f.Changed("rating-max") {
		v := ff.ratingMax
		o.RatingMax = &v
	}
	o.Genres = ff.genres
	o.Companies = ff.companies
	merged := base.Merge(o)
	return merged, merged.Validate()
}

// predicates resolves the command's filter against the table's domains.
func (ff *filterFlags) predicates(cmd *cobra.Command, t *dataset.Table) (analysis.Predicates, error) {
	f, err := ff.filter(cmd)
	if err != nil {
		return analysis.Predicates{}, err
	}
	return f.Resolve(analysis.DomainsOf(t)), nil
}

func addFormatFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "format", "f", string(render.FormatTerminal), "output format: terminal|markdown|json")
}

// topN picks the flag value when set, else the configured default.
func topN(cmd *cobra.Command, flagVal, configured int) int {
	if cmd.Flags().Changed("top") {
		return flagVal
	}
	if configured > 0 {
		return configured
	}
	return analysis.DefaultTopN
}
