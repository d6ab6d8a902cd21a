package backtest

import (
	"sort"
	"time"

	"github.com/wrenqi/daystar/internal/contracts"
	"github.com/wrenqi/daystar/internal/position"
	"github.com/wrenqi/daystar/internal/strategyconfig"
	"github.com/wrenqi/daystar/pkg/logger"
)

const dateLayout = "2006-01-02"

// DaySnapshot records the book's shape at the end of one trading day.
type DaySnapshot struct {
	Date              time.Time `json:"date"`
	OpenPositions     int       `json:"open_positions"`
	PendingOrders     int       `json:"pending_orders"`
	CommittedFraction float64   `json:"committed_fraction"`
}

// Result is the complete output of one run. Trades are ordered by exit
// date then symbol; the run is a pure function of its inputs and
// produces identical output on repeated runs.
type Result struct {
	StrategyID string                  `json:"strategy_id"`
	Days       []time.Time             `json:"days"`
	Trades     []contracts.Trade       `json:"trades"`
	Snapshots  []DaySnapshot           `json:"snapshots"`
	Gaps       []contracts.DataGap     `json:"gaps"`
	Signals    []contracts.FusedSignal `json:"signals,omitempty"`
}

// Engine drives the position book day by day across a historical
// window. Exits are evaluated before fills, fills before new entries:
// a signal on day D fills on D+1 at the earliest and can exit from D+2,
// and an exited symbol cannot re-enter the same day.
type Engine struct {
	cfg *strategyconfig.Config
	log *logger.Logger
}

// New validates the configuration and returns a ready engine.
func New(cfg *strategyconfig.Config, log *logger.Logger) (*Engine, error) {
	if err := strategyconfig.Validate(cfg); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, log: log}, nil
}

// Run simulates the full window. Bars supply both the trading calendar
// and the per-symbol prices; signals are consumed on their own date.
// Symbols are processed in lexical order within each day so results are
// reproducible. A missing bar for a live symbol is recorded as a data
// gap and that symbol's day is skipped; the run never fails mid-window.
func (e *Engine) Run(bars []contracts.Bar, signals []contracts.FusedSignal) *Result {
	barIdx, symbols, days := indexBars(bars)
	sigIdx := e.indexSignals(signals)

	book := position.NewBook()
	res := &Result{
		StrategyID: e.cfg.Meta.StrategyID,
		Days:       days,
		Trades:     []contracts.Trade{},
		Snapshots:  make([]DaySnapshot, 0, len(days)),
		Gaps:       []contracts.DataGap{},
	}

	for _, day := range days {
		key := day.Format(dateLayout)

		// 1. Exits for held positions.
		for _, sym := range symbols {
			if book.StateOf(sym) != position.StateHolding {
				continue
			}
			bar, ok := barIdx[sym][key]
			if !ok {
				res.Gaps = append(res.Gaps, contracts.DataGap{Symbol: sym, Date: day, Kind: contracts.GapMissingBar})
				continue
			}
			if exit, triggered := book.EvaluateExit(sym, bar, e.cfg.Backtest.MaxHoldingDays); triggered {
				if trade, ok := book.Close(sym, day, exit); ok {
					res.Trades = append(res.Trades, trade)
				}
			}
		}

		// 2. T+1 fills for pending entries.
		for _, sym := range symbols {
			p := book.Get(sym)
			if p == nil || p.State != position.StateEnteredPending {
				continue
			}
			bar, ok := barIdx[sym][key]
			if !ok {
				res.Gaps = append(res.Gaps, contracts.DataGap{Symbol: sym, Date: day, Kind: contracts.GapMissingBar})
				continue
			}

			fill := bar.Open
			if e.cfg.Backtest.FillModel == strategyconfig.FillSignalPrice {
				fill = p.EntryPrice
			}
			book.Fill(sym, day, fill)
		}

		// 3. New entries from the day's signals.
		for _, sig := range sigIdx[key] {
			if _, ok := barIdx[sig.Symbol][key]; !ok {
				res.Gaps = append(res.Gaps, contracts.DataGap{Symbol: sig.Symbol, Date: day, Kind: contracts.GapMissingBar})
				continue
			}
			if !book.SubmitEntry(sig) && e.log != nil {
				e.log.WithFields(map[string]interface{}{
					"symbol": sig.Symbol,
					"date":   key,
					"state":  book.StateOf(sig.Symbol).String(),
				}).Debug("Signal dropped, position not flat")
			}
		}

		book.EndDay()
		res.Snapshots = append(res.Snapshots, DaySnapshot{
			Date:              day,
			OpenPositions:     book.OpenCount(),
			PendingOrders:     book.PendingCount(),
			CommittedFraction: book.Committed(),
		})
	}

	// Close whatever is still held at the last available close.
	if len(days) > 0 {
		e.closeRemaining(book, barIdx, symbols, days, res)
	}

	if e.log != nil {
		e.log.WithFields(map[string]interface{}{
			"days":   len(res.Days),
			"trades": len(res.Trades),
			"gaps":   len(res.Gaps),
		}).Info("backtest complete")
	}

	return res
}

func (e *Engine) closeRemaining(book *position.Book, barIdx map[string]map[string]contracts.Bar, symbols []string, days []time.Time, res *Result) {
	last := days[len(days)-1]

	for _, sym := range symbols {
		if book.StateOf(sym) != position.StateHolding {
			continue
		}

		// Walk back to the symbol's last bar inside the window.
		var bar contracts.Bar
		found := false
		for i := len(days) - 1; i >= 0; i-- {
			if b, ok := barIdx[sym][days[i].Format(dateLayout)]; ok {
				bar, found = b, true
				break
			}
		}
		if !found {
			continue
		}

		exit := position.Exit{Price: bar.Close, Reason: contracts.ExitEndOfBacktest}
		if trade, ok := book.Close(sym, last, exit); ok {
			res.Trades = append(res.Trades, trade)
		}
	}
}

// indexSignals groups actionable signals by date, ordered by composite
// descending then symbol ascending, capped at max_signals_per_day.
func (e *Engine) indexSignals(signals []contracts.FusedSignal) map[string][]contracts.FusedSignal {
	idx := make(map[string][]contracts.FusedSignal)
	for _, sig := range signals {
		if !sig.Grade.Actionable() {
			continue
		}
		key := sig.Date.Format(dateLayout)
		idx[key] = append(idx[key], sig)
	}

	max := e.cfg.Backtest.MaxSignalsPerDay
	for key, daySigs := range idx {
		sort.Slice(daySigs, func(i, j int) bool {
			if daySigs[i].Composite != daySigs[j].Composite {
				return daySigs[i].Composite > daySigs[j].Composite
			}
			return daySigs[i].Symbol < daySigs[j].Symbol
		})
		if max > 0 && len(daySigs) > max {
			daySigs = daySigs[:max]
		}
		idx[key] = daySigs
	}
	return idx
}

// indexBars builds the per-symbol date index, the lexically sorted
// symbol list and the sorted union of trading days.
func indexBars(bars []contracts.Bar) (map[string]map[string]contracts.Bar, []string, []time.Time) {
	idx := make(map[string]map[string]contracts.Bar)
	dayset := make(map[string]time.Time)

	for _, b := range bars {
		if idx[b.Symbol] == nil {
			idx[b.Symbol] = make(map[string]contracts.Bar)
		}
		key := b.Date.Format(dateLayout)
		idx[b.Symbol][key] = b
		dayset[key] = b.Date
	}

	symbols := make([]string, 0, len(idx))
	for sym := range idx {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	days := make([]time.Time, 0, len(dayset))
	for _, d := range dayset {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	return idx, symbols, days
}
