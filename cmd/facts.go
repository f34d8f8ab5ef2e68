package cmd

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/KaramelBytes/moviedash/internal/analysis"
	"github.com/KaramelBytes/moviedash/internal/render"
	"github.com/spf13/cobra"
)

var (
	factsFilters filterFlags
	factsAll     bool
	factsSeed    int64
	factsFormat  string
)

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Print a random movie fact (or all of them)",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(factsFormat)
		if err != nil {
			return err
		}
		t, c, err := loadTable()
		if err != nil {
			return err
		}
		p, err := factsFilters.predicates(cmd, t)
		if err != nil {
			return err
		}
		facts := analysis.Facts(t, analysis.Dashboard(t, p, c.TopN))
		if !factsAll {
			seed := factsSeed
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}
			if f, ok := analysis.RandomFact(facts, rand.New(rand.NewSource(seed))); ok {
				facts = []string{f}
			}
		}
		out := cmd.OutOrStdout()
		if format == render.FormatJSON {
			if facts == nil {
				facts = []string{}
			}
			return render.WriteJSON(out, facts)
		}
		if len(facts) == 0 {
			fmt.Fprintln(out, "(no facts: the dataset is empty)")
			return nil
		}
		for _, f := range facts {
			fmt.Fprintf(out, "🎬 %s\n", f)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(factsCmd)
	factsFilters.register(factsCmd)
	addFormatFlag(factsCmd, &factsFormat)
	factsCmd.Flags().BoolVar(&factsAll, "all", false, "print every fact instead of a random one")
	factsCmd.Flags().Int64Var(&factsSeed, "seed", 0, "seed for the random pick (default: time based)")
}
