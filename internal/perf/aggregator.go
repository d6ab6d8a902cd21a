package perf

import (
	"sort"
	"time"

	"github.com/wrenqi/daystar/internal/contracts"
)

// Report is the summary statistics object for one backtest run.
// Return-type fields are fractions (0.05 = 5%).
type Report struct {
	InitialCapital float64 `json:"initial_capital"`
	FinalEquity    float64 `json:"final_equity"`
	TotalReturn    float64 `json:"total_return"`
	MaxDrawdown    float64 `json:"max_drawdown"`

	TradeCount     int     `json:"trade_count"`
	WinCount       int     `json:"win_count"`
	LossCount      int     `json:"loss_count"`
	WinRate        float64 `json:"win_rate"`
	AvgWin         float64 `json:"avg_win"`
	AvgLoss        float64 `json:"avg_loss"`
	ProfitFactor   float64 `json:"profit_factor"`
	AvgHoldingDays float64 `json:"avg_holding_days"`

	MonthlyReturns map[string]float64           `json:"monthly_returns"`
	ExitReasons    map[contracts.ExitReason]int `json:"exit_reasons"`
	EquityCurve    []contracts.EquityPoint      `json:"equity_curve"`
}

// Aggregator turns a closed-trade stream into an equity curve and
// summary statistics. Equity is marked only at trade close: each
// trade's pnl_pct scaled by its size fraction compounds against the
// equity in effect at the close. Open positions are never
// marked-to-market.
type Aggregator struct {
	initialCapital float64
}

// NewAggregator returns an aggregator over the given capital base.
func NewAggregator(initialCapital float64) *Aggregator {
	return &Aggregator{initialCapital: initialCapital}
}

// Aggregate computes the report. days is the trading calendar of the
// run; the curve carries one point per trading day, flat between trade
// closes. With no trades the curve is flat at the initial capital.
func (a *Aggregator) Aggregate(trades []contracts.Trade, days []time.Time) *Report {
	sorted := make([]contracts.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].ExitDate.Equal(sorted[j].ExitDate) {
			return sorted[i].ExitDate.Before(sorted[j].ExitDate)
		}
		return sorted[i].Symbol < sorted[j].Symbol
	})

	rep := &Report{
		InitialCapital: a.initialCapital,
		TradeCount:     len(sorted),
		MonthlyReturns: make(map[string]float64),
		ExitReasons:    make(map[contracts.ExitReason]int),
		EquityCurve:    make([]contracts.EquityPoint, 0, len(days)),
	}

	equity := a.initialCapital
	peak := equity
	next := 0

	monthStart := make(map[string]float64)
	monthEnd := make(map[string]float64)

	for _, day := range days {
		month := day.Format("2006-01")
		if _, ok := monthStart[month]; !ok {
			monthStart[month] = equity
		}

		for next < len(sorted) && !sorted[next].ExitDate.After(day) {
			equity *= 1 + sorted[next].PnLPct*sorted[next].SizeFraction
			next++
		}
		if equity > peak {
			peak = equity
		}

		dd := 0.0
		if peak > 0 {
			dd = (peak - equity) / peak
		}
		if dd > rep.MaxDrawdown {
			rep.MaxDrawdown = dd
		}

		rep.EquityCurve = append(rep.EquityCurve, contracts.EquityPoint{
			Date:     day,
			Equity:   equity,
			Drawdown: dd,
		})

		monthEnd[month] = equity
	}

	rep.FinalEquity = equity
	if a.initialCapital > 0 {
		rep.TotalReturn = equity/a.initialCapital - 1
	}

	for month, start := range monthStart {
		if start > 0 {
			rep.MonthlyReturns[month] = monthEnd[month]/start - 1
		}
	}

	a.tradeStats(rep, sorted)
	return rep
}

func (a *Aggregator) tradeStats(rep *Report, trades []contracts.Trade) {
	var winSum, lossSum, grossWin, grossLoss float64
	var holdSum int

	for _, t := range trades {
		rep.ExitReasons[t.ExitReason]++
		holdSum += t.HoldingDays

		contribution := t.PnLPct * t.SizeFraction
		if t.Win() {
			rep.WinCount++
			winSum += t.PnLPct
			grossWin += contribution
		} else {
			rep.LossCount++
			lossSum += t.PnLPct
			grossLoss -= contribution
		}
	}

	if rep.TradeCount > 0 {
		rep.WinRate = float64(rep.WinCount) / float64(rep.TradeCount)
		rep.AvgHoldingDays = float64(holdSum) / float64(rep.TradeCount)
	}
	if rep.WinCount > 0 {
		rep.AvgWin = winSum / float64(rep.WinCount)
	}
	if rep.LossCount > 0 {
		rep.AvgLoss = lossSum / float64(rep.LossCount)
	}
	if grossLoss > 0 {
		rep.ProfitFactor = grossWin / grossLoss
	}
}
