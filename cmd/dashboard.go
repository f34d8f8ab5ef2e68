package cmd

import (
	"fmt"

	"github.com/KaramelBytes/moviedash/internal/analysis"
	"github.com/KaramelBytes/moviedash/internal/render"
	"github.com/KaramelBytes/moviedash/internal/utils"
	"github.com/spf13/cobra"
)

var (
	dashFilters filterFlags
	dashFormat  string
	dashTop     int
	dashOutput  string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render the full dashboard for the current filters",
	Long:  `Filters the movie table and renders overview metrics, the top movies by
revenue, rating and revenue by year, and the top companies and genres.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(dashFormat)
		if err != nil {
			return err
		}
		t, c, err := loadTable()
		if err != nil {
			return err
		}
		p, err := dashFilters.predicates(cmd, t)
		if err != nil {
			return err
		}
		b := analysis.Dashboard(t, p, topN(cmd, dashTop, c.TopN))
		logEntry().WithField("movies", b.Summary.Movies).Debug("Dashboard computed")

		if dashOutput == "" {
			return render.WriteBoard(cmd.OutOrStdout(), format, b)
		}
		var out []byte
		switch format {
		case render.FormatJSON:
			if out, err = utils.PrettyJSON(b); err != nil {
				return err
			}
		case render.FormatMarkdown:
			out = []byte(render.Markdown(b))
		default:
			out = []byte(render.Terminal(b))
		}
		if err := utils.SafeWriteFile(dashOutput, out); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote dashboard to %s\n", dashOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashFilters.register(dashboardCmd)
	addFormatFlag(dashboardCmd, &dashFormat)
	dashboardCmd.Flags().IntVarP(&dashTop, "top", "n", analysis.DefaultTopN, "length of ranking views (overrides top_n)")
	dashboardCmd.Flags().StringVarP(&dashOutput, "output", "o", "", "optional path to write the dashboard instead of stdout")
}
