package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xtding233/capsule-gacha/internal/gacha"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Print the grade table and observed rates over a sample run",
	RunE: func(cmd *cobra.Command, args []string) error {
		batches, _ := cmd.Flags().GetInt("batches")

		e, params, err := loadEngine(cmd)
		if err != nil {
			return err
		}
		pity, err := gacha.NewPityState(params.Threshold)
		if err != nil {
			return err
		}
		hist, forced, err := gacha.GradeHistogram(e, pity, batches, gacha.BatchTen)
		if err != nil {
			return err
		}

		total := batches * gacha.BatchTen
		odds := gacha.GradeOdds()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-5s  %-8s  %s\n", "Grade", "Table", "Observed")
		for g := gacha.GradeS; g >= gacha.GradeD; g-- {
			observed := 0.0
			if total > 0 {
				observed = 100 * float64(hist[g]) / float64(total)
			}
			fmt.Fprintf(out, "%-5s  %7.2f%%  %7.2f%%\n", g, odds[g], observed)
		}
		fmt.Fprintf(out, "pity-forced draws: %d of %d\n", forced, total)
		return nil
	},
}

func init() {
	ratesCmd.Flags().Int("batches", 1000, "Ten-pulls to sample")
}
