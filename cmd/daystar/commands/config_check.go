package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wrenqi/daystar/internal/strategyconfig"
	"github.com/wrenqi/daystar/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Strategy configuration tools",
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the strategy file and print its hash",
	Long: `Loads the strategy YAML, runs structural validation and recommended
practice checks, and prints the reproducibility hash.

Example:
  go run ./cmd/daystar config check
  go run ./cmd/daystar config check --strategy config/strategy/qiming_star_v1.yaml`,
	RunE: runConfigCheck,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCheckCmd)
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	path := strategyFile
	if path == "" {
		path = cfg.StrategyFile
	}

	scfg, _, err := strategyconfig.Load(path)
	if err != nil {
		fmt.Printf("❌ %s: %v\n", path, err)
		return err
	}

	hash, err := strategyconfig.Hash(scfg)
	if err != nil {
		return fmt.Errorf("hash strategy config: %w", err)
	}

	fmt.Printf("✅ %s is valid\n\n", path)
	fmt.Printf("Strategy:  %s (v%s)\n", scfg.Meta.StrategyID, scfg.Meta.Version)
	fmt.Printf("Hash:      %s\n", hash)
	fmt.Printf("Weights:   capital=%.2f technical=%.2f rs=%.2f catalyst=%.2f\n",
		scfg.Fusion.Weights.CapitalFlow, scfg.Fusion.Weights.Technical,
		scfg.Fusion.Weights.RelativeStrength, scfg.Fusion.Weights.Catalyst)
	fmt.Printf("Gates:     capital≥%.0f technical≥%.0f\n",
		scfg.Fusion.Gates.CapitalFlowMin, scfg.Fusion.Gates.TechnicalMin)
	fmt.Printf("Grades:    A≥%.0f S≥%.0f\n", scfg.Fusion.Grades.AMin, scfg.Fusion.Grades.SMin)
	fmt.Printf("Risk:      stop=%.1f%% target×%.1f minRR=%.1f size=%.1f%% cap=%.1f%%\n",
		scfg.Risk.StopPct*100, scfg.Risk.TargetMultiple, scfg.Risk.MinRiskReward,
		scfg.Risk.RiskPerTrade*100, scfg.Risk.PositionCap*100)
	fmt.Printf("Backtest:  capital=%s fill=%s maxHold=%dd maxSignals=%d\n",
		formatNumber(scfg.Backtest.InitialCapital), scfg.Backtest.FillModel,
		scfg.Backtest.MaxHoldingDays, scfg.Backtest.MaxSignalsPerDay)

	warnings := strategyconfig.Warn(scfg)
	if len(warnings) > 0 {
		fmt.Println()
		for _, w := range warnings {
			fmt.Printf("⚠️  [%s] %s\n", w.Code, w.Message)
		}
	}

	return nil
}
