package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xtding233/capsule-gacha/internal/gacha"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a Monte Carlo simulation of pulls",
	RunE: func(cmd *cobra.Command, args []string) error {
		goal, _ := cmd.Flags().GetString("goal")
		trials, _ := cmd.Flags().GetInt("trials")
		batch, _ := cmd.Flags().GetInt("batch")
		budget, _ := cmd.Flags().GetInt("budget")
		start, _ := cmd.Flags().GetInt("start")

		e, params, err := loadEngine(cmd)
		if err != nil {
			return err
		}
		p := gacha.SimParams{
			Threshold:    params.Threshold,
			StartCounter: start,
			BatchSize:    batch,
			Budget:       budget,
		}
		stats, err := gacha.RunMonteCarlo(e, p, gacha.TrialGoal(goal), trials)
		if err != nil {
			return fmt.Errorf("simulate: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "goal=%s trials=%d batch=%d threshold=%d\n", goal, trials, batch, params.Threshold)
		fmt.Fprintf(out, "mean=%.3f stddev=%.3f p50=%.1f p90=%.1f p99=%.1f\n",
			stats.Mean, stats.StdDev, stats.P50, stats.P90, stats.P99)
		return nil
	},
}

func init() {
	simulateCmd.Flags().String("goal", string(gacha.GoalFirstHighGrade), "first_high | first_s | fixed_budget | forced_rate")
	simulateCmd.Flags().Int("trials", 10000, "Number of trials")
	simulateCmd.Flags().Int("batch", gacha.BatchTen, "Pull size per batch (1 or 10)")
	simulateCmd.Flags().Int("budget", 100, "Draws per trial for the budget goals")
	simulateCmd.Flags().Int("start", 0, "Pity counter carried into each trial")
}
