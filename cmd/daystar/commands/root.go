package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "daystar",
	Short: "Daystar - Qiming Star signal fusion and backtesting",
	Long: `Daystar CLI

Multi-dimension signal fusion for A-share daily bars: capital flow
leads, technical triggers. Fused signals drive a deterministic T+1
backtest with fixed-fractional risk sizing.

Usage:
  go run ./cmd/daystar [command]

Examples:
  go run ./cmd/daystar backtest --from 2024-01-01 --to 2024-12-31
  go run ./cmd/daystar scan
  go run ./cmd/daystar serve
  go run ./cmd/daystar config check`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML file (default from STRATEGY_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
