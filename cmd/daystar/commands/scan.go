package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrenqi/daystar/internal/contracts"
	"github.com/wrenqi/daystar/internal/fusion"
	"github.com/wrenqi/daystar/internal/store"
	"github.com/wrenqi/daystar/pkg/config"
	"github.com/wrenqi/daystar/pkg/database"
	"github.com/wrenqi/daystar/pkg/logger"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Fuse one trading day's scores into signals",
	Long: `Loads the day's dimension scores and bars, fuses them into graded
signals and prints the result. Defaults to today.

Example:
  go run ./cmd/daystar scan
  go run ./cmd/daystar scan --date 2025-03-10
  go run ./cmd/daystar scan --all`,
	RunE: runScan,
}

var (
	scanDate string
	scanAll  bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanDate, "date", "", "trade date (YYYY-MM-DD, default: today)")
	scanCmd.Flags().BoolVar(&scanAll, "all", false, "print non-actionable signals too")
}

func runScan(cmd *cobra.Command, args []string) error {
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if scanDate != "" {
		var err error
		date, err = time.Parse("2006-01-02", scanDate)
		if err != nil {
			return fmt.Errorf("invalid date: %w", err)
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

	engine, err := fusion.NewEngine(scfg, log)
	if err != nil {
		return fmt.Errorf("init fusion engine: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	bars := store.NewBarRepository(db.Pool)
	scores := store.NewScoreRepository(db.Pool)

	records, err := scores.GetByDate(ctx, date)
	if err != nil {
		return fmt.Errorf("load scores: %w", err)
	}
	if len(records) == 0 {
		fmt.Printf("No score records for %s\n", date.Format("2006-01-02"))
		return nil
	}

	fmt.Printf("=== Daystar Scan %s ===\n\n", date.Format("2006-01-02"))
	fmt.Printf("%-10s %-6s %9s %10s %10s %10s %7s\n",
		"SYMBOL", "GRADE", "COMPOSITE", "ENTRY", "STOP", "TARGET", "SIZE")

	actionable := 0
	for _, rec := range records {
		bar, err := bars.GetBySymbolAndDate(ctx, rec.Symbol, date)
		if err != nil {
			log.WithFields(map[string]interface{}{
				"symbol": rec.Symbol,
				"kind":   contracts.GapMissingBar,
			}).Warn("Data gap")
			continue
		}

		sig := engine.Generate(rec, bar.Close, 0)
		if sig.Grade.Actionable() {
			actionable++
		} else if !scanAll {
			continue
		}

		fmt.Printf("%-10s %-6s %9.1f %10.2f %10.2f %10.2f %6.1f%%\n",
			sig.Symbol, sig.Grade, sig.Composite,
			sig.EntryPrice, sig.StopLoss, sig.TargetPrice, sig.SizeFraction*100)
		if verbose {
			fmt.Printf("           → %s\n", sig.Reason.Summary)
		}
	}

	fmt.Printf("\n✅ %d records scanned, %d actionable\n", len(records), actionable)
	return nil
}
