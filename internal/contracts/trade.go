package contracts

import "time"

// ExitReason records why a position was closed.
type ExitReason string

const (
	ExitStopLoss      ExitReason = "stop_loss"
	ExitTargetHit     ExitReason = "target_hit"
	ExitSignalExpired ExitReason = "signal_expired"
	ExitEndOfBacktest ExitReason = "end_of_backtest"
)

// Trade is a closed-position record. Immutable once created.
type Trade struct {
	Symbol       string     `json:"symbol"`
	EntryDate    time.Time  `json:"entry_date"`
	EntryPrice   float64    `json:"entry_price"`
	ExitDate     time.Time  `json:"exit_date"`
	ExitPrice    float64    `json:"exit_price"`
	ExitReason   ExitReason `json:"exit_reason"`
	HoldingDays  int        `json:"holding_days"`
	PnLPct       float64    `json:"pnl_pct"`
	SizeFraction float64    `json:"position_size_fraction"`
}

// Win reports whether the trade closed with a profit.
func (t Trade) Win() bool {
	return t.PnLPct > 0
}

// Data gap kinds.
const (
	GapMissingBar   = "missing_bar"
	GapMissingScore = "missing_score"
)

// DataGap records a non-fatal missing-data event for a (symbol, date).
// The affected symbol/day is skipped; the run continues.
type DataGap struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Kind   string    `json:"kind"`
}

// EquityPoint is one point of the realized equity curve. Drawdown is
// the fractional decline from the running peak (0 at a new high).
type EquityPoint struct {
	Date     time.Time `json:"date"`
	Equity   float64   `json:"equity_value"`
	Drawdown float64   `json:"drawdown_pct"`
}
