package backtest

import (
	"sort"

	"github.com/wrenqi/daystar/internal/contracts"
	"github.com/wrenqi/daystar/internal/fusion"
	"github.com/wrenqi/daystar/internal/strategyconfig"
	"github.com/wrenqi/daystar/pkg/logger"
)

// Runner is the full pipeline over raw inputs: score records are fused
// into signals priced off each record's same-day close, then the engine
// simulates the window. Records without a bar on their date cannot be
// priced and are recorded as gaps.
type Runner struct {
	fusion *fusion.Engine
	engine *Engine
}

// NewRunner validates the configuration once for both stages.
func NewRunner(cfg *strategyconfig.Config, log *logger.Logger) (*Runner, error) {
	fe, err := fusion.NewEngine(cfg, log)
	if err != nil {
		return nil, err
	}
	be, err := New(cfg, log)
	if err != nil {
		return nil, err
	}
	return &Runner{fusion: fe, engine: be}, nil
}

// Run fuses the records and simulates the window. The generated signal
// set is attached to the result for reporting.
func (r *Runner) Run(records []contracts.ScoreRecord, bars []contracts.Bar) *Result {
	barIdx, _, _ := indexBars(bars)

	// Stable fusion order.
	sorted := make([]contracts.ScoreRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].Symbol < sorted[j].Symbol
	})

	signals := make([]contracts.FusedSignal, 0, len(sorted))
	var gaps []contracts.DataGap

	for _, rec := range sorted {
		bar, ok := barIdx[rec.Symbol][rec.Date.Format(dateLayout)]
		if !ok {
			gaps = append(gaps, contracts.DataGap{Symbol: rec.Symbol, Date: rec.Date, Kind: contracts.GapMissingBar})
			continue
		}
		signals = append(signals, r.fusion.Generate(rec, bar.Close, 0))
	}

	res := r.engine.Run(bars, signals)
	res.Signals = signals
	res.Gaps = append(gaps, res.Gaps...)
	return res
}
