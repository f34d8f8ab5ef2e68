package cmd

import (
	"fmt"

	"github.com/KaramelBytes/moviedash/internal/analysis"
	"github.com/KaramelBytes/moviedash/internal/export"
	"github.com/KaramelBytes/moviedash/internal/utils"
	"github.com/spf13/cobra"
)

var (
	exportFilters filterFlags
	exportOutput  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered rows to CSV, TSV or XLSX",
	Long:  `Writes the header and the source cells of every filtered row. The format
follows the output extension (.xlsx, .tsv, otherwise CSV); without --output the
file is movies_filtered.csv in export_dir (or the working directory).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, c, err := loadTable()
		if err != nil {
			return err
		}
		p, err := exportFilters.predicates(cmd, t)
		if err != nil {
			return err
		}
		movies := analysis.Apply(t, p)
		path := utils.ResolveOutput(exportOutput, c.ExportDir, export.DefaultName)
		if err := export.ToFile(path, t.Header, movies, c.DelimiterRune()); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		logEntry().WithField("path", path).WithField("rows", len(movies)).Debug("Export written")
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d movies to %s\n", len(movies), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportFilters.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output path (.csv, .tsv or .xlsx)")
}
