package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/KaramelBytes/moviedash/internal/analysis"
	"github.com/KaramelBytes/moviedash/internal/render"
	"github.com/spf13/cobra"
)

var (
	filterFlagsFor filterFlags
	filterFormat   string
	filterLimit    int

	topFilters filterFlags
	topFormat  string
	topMeasure string
	topCount   int

	groupFilters filterFlags
	groupFormat  string
	groupMeasure string
	groupAgg     string
	groupTop     int

	seriesFilters filterFlags
	seriesFormat  string
	seriesMeasure string
	seriesAgg     string

	domainsFormat string
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "List the movies matching the filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(filterFormat)
		if err != nil {
			return err
		}
		t, _, err := loadTable()
		if err != nil {
			return err
		}
		p, err := filterFlagsFor.predicates(cmd, t)
		if err != nil {
			return err
		}
		movies := analysis.Apply(t, p)
		total := len(movies)
		if filterLimit > 0 && len(movies) > filterLimit {
			movies = movies[:filterLimit]
		}
		out := cmd.OutOrStdout()
		if format == render.FormatJSON {
			return render.WriteJSON(out, movies)
		}
		if total == 0 {
			fmt.Fprintln(out, "(no movies match)")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "YEAR\tRATING\tREVENUE\tTITLE")
		for _, m := range movies {
			year := "n/a"
			if m.Year.Valid {
				year = strconv.Itoa(m.Year.Value)
			}
			rating, revenue := "n/a", "n/a"
			if m.Rating.Valid {
				rating = fmt.Sprintf("%.1f", m.Rating.Value)
			}
			if m.Revenue.Valid {
				revenue = render.Money(m.Revenue.Value)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", year, rating, revenue, m.Title)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "%d of %d movies match\n", total, t.Len())
		return nil
	},
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Rank the filtered movies by a measure",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(topFormat)
		if err != nil {
			return err
		}
		measure, err := analysis.ParseMeasure(topMeasure)
		if err != nil {
			return err
		}
		t, c, err := loadTable()
		if err != nil {
			return err
		}
		p, err := topFilters.predicates(cmd, t)
		if err != nil {
			return err
		}
		n := topN(cmd, topCount, c.TopN)
		rows := analysis.TopN(analysis.Apply(t, p), measure, n)
		return render.WriteRanking(cmd.OutOrStdout(), format, fmt.Sprintf("Top %d movies by %s", len(rows), measure), measure, rows)
	},
}

var groupCmd = &cobra.Command{
	Use:   "group <year|genre|company>",
	Short: "Aggregate a measure per release year, genre or production company",
	Long:  `Groups the filtered movies and aggregates a measure per group. Movies with
several genres or companies count once in each of them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(groupFormat)
		if err != nil {
			return err
		}
		dim, err := analysis.ParseDimension(args[0])
		if err != nil {
			return err
		}
		measure, err := analysis.ParseMeasure(groupMeasure)
		if err != nil {
			return err
		}
		agg, err := analysis.ParseAgg(groupAgg)
		if err != nil {
			return err
		}
		t, c, err := loadTable()
		if err != nil {
			return err
		}
		p, err := groupFilters.predicates(cmd, t)
		if err != nil {
			return err
		}
		v := analysis.GroupBy(analysis.Apply(t, p), dim, measure, agg).Top(topN(cmd, groupTop, c.TopN))
		title := fmt.Sprintf("%s %s by %s", agg, measure, dim)
		return render.WriteView(cmd.OutOrStdout(), format, title, v)
	},
}

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Aggregate a measure per release year, in year order",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(seriesFormat)
		if err != nil {
			return err
		}
		measure, err := analysis.ParseMeasure(seriesMeasure)
		if err != nil {
			return err
		}
		agg, err := analysis.ParseAgg(seriesAgg)
		if err != nil {
			return err
		}
		t, _, err := loadTable()
		if err != nil {
			return err
		}
		p, err := seriesFilters.predicates(cmd, t)
		if err != nil {
			return err
		}
		v := analysis.TimeSeries(analysis.Apply(t, p), measure, agg)
		return render.WriteView(cmd.OutOrStdout(), format, fmt.Sprintf("%s %s by year", agg, measure), v)
	},
}

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "Show the year and rating ranges and the genre and company vocabularies",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(domainsFormat)
		if err != nil {
			return err
		}
		t, _, err := loadTable()
		if err != nil {
			return err
		}
		d := analysis.DomainsOf(t)
		out := cmd.OutOrStdout()
		if format == render.FormatJSON {
			return render.WriteJSON(out, d)
		}
		fmt.Fprintf(out, "rows: %d\n", t.Len())
		if d.HasYears {
			fmt.Fprintf(out, "years: %d-%d\n", d.YearMin, d.YearMax)
		} else {
			fmt.Fprintln(out, "years: n/a")
		}
		if d.HasRatings {
			fmt.Fprintf(out, "ratings: %.1f-%.1f\n", d.RatingMin, d.RatingMax)
		} else {
			fmt.Fprintln(out, "ratings: n/a")
		}
		fmt.Fprintf(out, "genres (%d):\n", len(d.Genres))
		for _, g := range d.Genres {
			fmt.Fprintf(out, "- %s\n", g)
		}
		fmt.Fprintf(out, "companies: %d (list them with --format json)\n", len(d.Companies))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filterCmd, topCmd, groupCmd, seriesCmd, domainsCmd)

	filterFlagsFor.register(filterCmd)
	addFormatFlag(filterCmd, &filterFormat)
	filterCmd.Flags().IntVar(&filterLimit, "limit", 0, "maximum movies to list (0 = all)")

	topFilters.register(topCmd)
	addFormatFlag(topCmd, &topFormat)
	topCmd.Flags().StringVarP(&topMeasure, "measure", "m", string(analysis.MeasureRevenue), "measure to rank by: revenue|budget|runtime|rating")
	topCmd.Flags().IntVarP(&topCount, "top", "n", analysis.DefaultTopN, "number of movies (overrides top_n)")

	groupFilters.register(groupCmd)
	addFormatFlag(groupCmd, &groupFormat)
	groupCmd.Flags().StringVarP(&groupMeasure, "measure", "m", string(analysis.MeasureRevenue), "measure: revenue|budget|runtime|rating|movies|titles")
	groupCmd.Flags().StringVarP(&groupAgg, "agg", "a", string(analysis.AggSum), "aggregation: sum|mean|count")
	groupCmd.Flags().IntVarP(&groupTop, "top", "n", analysis.DefaultTopN, "number of groups, 0 = all (overrides top_n)")

	seriesFilters.register(seriesCmd)
	addFormatFlag(seriesCmd, &seriesFormat)
	seriesCmd.Flags().StringVarP(&seriesMeasure, "measure", "m", string(analysis.MeasureRating), "measure: revenue|budget|runtime|rating|movies|titles")
	seriesCmd.Flags().StringVarP(&seriesAgg, "agg", "a", string(analysis.AggMean), "aggregation: sum|mean|count")

	addFormatFlag(domainsCmd, &domainsFormat)
}
