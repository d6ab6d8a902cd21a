package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrenqi/daystar/internal/backtest"
	"github.com/wrenqi/daystar/internal/perf"
	"github.com/wrenqi/daystar/internal/store"
	"github.com/wrenqi/daystar/internal/strategyconfig"
	"github.com/wrenqi/daystar/pkg/config"
	"github.com/wrenqi/daystar/pkg/database"
	"github.com/wrenqi/daystar/pkg/logger"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a historical simulation",
	Long: `Runs the fusion and simulation pipeline over a historical window.

Scores and bars are loaded from the database, fused into signals priced
off each day's close, then simulated with T+1 fills.

Example:
  go run ./cmd/daystar backtest --from 2024-01-01 --to 2024-12-31
  go run ./cmd/daystar backtest --from 2024-01-01 --fill signal_price --save`,
	RunE: runBacktest,
}

var (
	backtestFrom    string
	backtestTo      string
	backtestCapital float64
	backtestFill    string
	backtestSave    bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "start date (YYYY-MM-DD, required)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "end date (YYYY-MM-DD, default: today)")
	backtestCmd.Flags().Float64Var(&backtestCapital, "capital", 0, "initial capital (default: strategy file)")
	backtestCmd.Flags().StringVar(&backtestFill, "fill", "", "fill model: next_open|signal_price (default: strategy file)")
	backtestCmd.Flags().BoolVar(&backtestSave, "save", false, "persist the run to the database")

	backtestCmd.MarkFlagRequired("from")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Daystar Backtest ===")

	from, err := time.Parse("2006-01-02", backtestFrom)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}

	to := time.Now().UTC().Truncate(24 * time.Hour)
	if backtestTo != "" {
		to, err = time.Parse("2006-01-02", backtestTo)
		if err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	scfg, err := loadStrategy(cfg)
	if err != nil {
		return err
	}
	if backtestCapital > 0 {
		scfg.Backtest.InitialCapital = backtestCapital
	}
	if backtestFill != "" {
		scfg.Backtest.FillModel = backtestFill
	}

	hash, err := strategyconfig.Hash(scfg)
	if err != nil {
		return fmt.Errorf("hash strategy config: %w", err)
	}

	fmt.Printf("\n📅 Period: %s ~ %s\n", from.Format("2006-01-02"), to.Format("2006-01-02"))
	fmt.Printf("🧭 Strategy: %s (config %s)\n", scfg.Meta.StrategyID, hash[:12])
	fmt.Printf("💰 Initial Capital: %s\n", formatNumber(scfg.Backtest.InitialCapital))
	fmt.Printf("⚙️  Fill Model: %s\n\n", scfg.Backtest.FillModel)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	bars, err := store.NewBarRepository(db.Pool).GetRange(ctx, from, to)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}
	records, err := store.NewScoreRepository(db.Pool).GetRange(ctx, from, to)
	if err != nil {
		return fmt.Errorf("load scores: %w", err)
	}

	fmt.Printf("🚀 Simulating %d bars, %d score records...\n", len(bars), len(records))

	runner, err := backtest.NewRunner(scfg, log)
	if err != nil {
		return fmt.Errorf("init runner: %w", err)
	}

	result := runner.Run(records, bars)
	report := perf.NewAggregator(scfg.Backtest.InitialCapital).Aggregate(result.Trades, result.Days)

	printReport(result, report)

	if backtestSave {
		if err := saveRun(ctx, db, scfg, hash, from, to, result, report); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
	}

	return nil
}

func saveRun(ctx context.Context, db *database.DB, scfg *strategyconfig.Config, hash string, from, to time.Time, result *backtest.Result, report *perf.Report) error {
	id, err := store.NewRunRepository(db.Pool).Save(ctx, &store.RunRecord{
		StrategyID: scfg.Meta.StrategyID,
		ConfigHash: hash,
		From:       from,
		To:         to,
		TradeCount: len(result.Trades),
		Report:     report,
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n💾 Run saved (id %d)\n", id)
	return nil
}

// loadStrategy resolves the strategy file from the --strategy flag or
// the environment and validates it.
func loadStrategy(cfg *config.Config) (*strategyconfig.Config, error) {
	path := strategyFile
	if path == "" {
		path = cfg.StrategyFile
	}

	scfg, _, err := strategyconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load strategy %s: %w", path, err)
	}
	return scfg, nil
}
