package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xtding233/capsule-gacha/internal/gacha"
	"github.com/xtding233/capsule-gacha/internal/game"
)

var rootCmd = &cobra.Command{
	Use:          "gachasim",
	Short:        "Simulate capsule pulls offline",
	Long:         "gachasim runs the draw engine outside the server to inspect grade rates and pity behaviour.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "config", "Config directory holding default.yaml")
	rootCmd.PersistentFlags().String("theme", "", "Theme overlay to merge over default.yaml")
	rootCmd.PersistentFlags().Uint64("seed", 0, "Seed for a reproducible run (0 uses crypto randomness)")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(ratesCmd)
}

// loadEngine resolves config from the persistent flags and builds an engine.
func loadEngine(cmd *cobra.Command) (*gacha.Engine, game.Params, error) {
	dir, _ := cmd.Flags().GetString("config")
	theme, _ := cmd.Flags().GetString("theme")
	seed, _ := cmd.Flags().GetUint64("seed")

	params, err := game.NewLoader(dir).Load(theme)
	if err != nil {
		return nil, game.Params{}, fmt.Errorf("load config: %w", err)
	}
	var opts []gacha.Option
	if seed != 0 {
		opts = append(opts, gacha.WithRandomSource(gacha.NewSeededRNG(seed)))
	}
	e, err := params.NewEngine(opts...)
	if err != nil {
		return nil, game.Params{}, fmt.Errorf("build engine: %w", err)
	}
	return e, params, nil
}
