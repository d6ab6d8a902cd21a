package backtest

import (
	"reflect"
	"testing"
	"time"

	"github.com/wrenqi/daystar/internal/contracts"
	"github.com/wrenqi/daystar/internal/strategyconfig"
	"github.com/wrenqi/daystar/pkg/logger"
)

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func flatBar(symbol string, d int) contracts.Bar {
	return contracts.Bar{Symbol: symbol, Date: day(d), Open: 100, High: 102, Low: 99, Close: 100, Volume: 1000}
}

// flatSeries builds quiet bars (no stop or target breach for a signal
// at entry 100, stop 95, target 110) for the given day numbers.
func flatSeries(symbol string, days ...int) []contracts.Bar {
	bars := make([]contracts.Bar, 0, len(days))
	for _, d := range days {
		bars = append(bars, flatBar(symbol, d))
	}
	return bars
}

func actionableSignal(symbol string, d int, composite float64) contracts.FusedSignal {
	return contracts.FusedSignal{
		Symbol:       symbol,
		Date:         day(d),
		Composite:    composite,
		Grade:        contracts.GradeA,
		EntryPrice:   100,
		StopLoss:     95,
		TargetPrice:  110,
		RiskReward:   2.0,
		SizeFraction: 0.2,
	}
}

func newEngine(t *testing.T, mutate func(*strategyconfig.Config)) *Engine {
	t.Helper()
	cfg := strategyconfig.Default()
	if mutate != nil {
		mutate(cfg)
	}
	eng, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng
}

func TestRunEmptySignals(t *testing.T) {
	eng := newEngine(t, nil)
	bars := flatSeries("600519", 10, 11, 12)

	res := eng.Run(bars, nil)

	if len(res.Trades) != 0 {
		t.Errorf("expected zero trades, got %d", len(res.Trades))
	}
	if len(res.Days) != 3 {
		t.Errorf("expected 3 trading days, got %d", len(res.Days))
	}
	for _, snap := range res.Snapshots {
		if snap.OpenPositions != 0 || snap.CommittedFraction != 0 {
			t.Errorf("day %v: expected empty book, got %+v", snap.Date, snap)
		}
	}
}

func TestRunTPlusOneFill(t *testing.T) {
	eng := newEngine(t, nil)
	bars := flatSeries("600519", 10, 11, 12)
	sigs := []contracts.FusedSignal{actionableSignal("600519", 10, 80)}

	res := eng.Run(bars, sigs)

	// Day 10: entry submitted, nothing held. Day 11: filled.
	if res.Snapshots[0].OpenPositions != 0 || res.Snapshots[0].PendingOrders != 1 {
		t.Errorf("signal day snapshot = %+v, want pending only", res.Snapshots[0])
	}
	if res.Snapshots[1].OpenPositions != 1 {
		t.Errorf("fill day snapshot = %+v, want one open position", res.Snapshots[1])
	}

	if len(res.Trades) != 1 {
		t.Fatalf("expected 1 trade (end-of-window close), got %d", len(res.Trades))
	}
	trade := res.Trades[0]
	if !trade.EntryDate.Equal(day(11)) {
		t.Errorf("entry date = %v, want D+1 %v", trade.EntryDate, day(11))
	}
	if trade.ExitReason != contracts.ExitEndOfBacktest {
		t.Errorf("exit reason = %s, want end_of_backtest", trade.ExitReason)
	}
	if !trade.ExitDate.Equal(day(12)) {
		t.Errorf("exit date = %v, want %v", trade.ExitDate, day(12))
	}
}

func TestRunFillModels(t *testing.T) {
	bars := []contracts.Bar{
		flatBar("600519", 10),
		{Symbol: "600519", Date: day(11), Open: 103, High: 105, Low: 101, Close: 104, Volume: 1000},
		flatBar("600519", 12),
	}
	sigs := []contracts.FusedSignal{actionableSignal("600519", 10, 80)}

	next := newEngine(t, nil).Run(bars, sigs)
	if next.Trades[0].EntryPrice != 103 {
		t.Errorf("next_open fill = %v, want day 11 open 103", next.Trades[0].EntryPrice)
	}

	atSignal := newEngine(t, func(c *strategyconfig.Config) {
		c.Backtest.FillModel = strategyconfig.FillSignalPrice
	}).Run(bars, sigs)
	if atSignal.Trades[0].EntryPrice != 100 {
		t.Errorf("signal_price fill = %v, want 100", atSignal.Trades[0].EntryPrice)
	}
}

func TestRunStopOverTargetTieBreak(t *testing.T) {
	eng := newEngine(t, nil)
	bars := []contracts.Bar{
		flatBar("600519", 10),
		flatBar("600519", 11),
		// Both stop (95) and target (110) breached on the same day.
		{Symbol: "600519", Date: day(12), Open: 100, High: 112, Low: 94, Close: 105, Volume: 1000},
	}
	sigs := []contracts.FusedSignal{actionableSignal("600519", 10, 80)}

	res := eng.Run(bars, sigs)

	if len(res.Trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(res.Trades))
	}
	if res.Trades[0].ExitReason != contracts.ExitStopLoss {
		t.Errorf("exit reason = %s, want stop_loss on ambiguous day", res.Trades[0].ExitReason)
	}
	if res.Trades[0].ExitPrice != 95 {
		t.Errorf("exit price = %v, want stop 95", res.Trades[0].ExitPrice)
	}
}

func TestRunNoSameDayReentry(t *testing.T) {
	eng := newEngine(t, nil)
	bars := []contracts.Bar{
		flatBar("600519", 10),
		flatBar("600519", 11),
		// Target hit on day 12 while a fresh signal also arrives.
		{Symbol: "600519", Date: day(12), Open: 100, High: 111, Low: 99, Close: 110, Volume: 1000},
		flatBar("600519", 13),
		flatBar("600519", 14),
	}
	sigs := []contracts.FusedSignal{
		actionableSignal("600519", 10, 80),
		actionableSignal("600519", 12, 85),
		actionableSignal("600519", 13, 85),
	}

	res := eng.Run(bars, sigs)

	if res.Snapshots[2].PendingOrders != 0 {
		t.Errorf("exit-day signal must be dropped, snapshot = %+v", res.Snapshots[2])
	}
	// The day-13 signal re-enters: pending on 13, filled on 14.
	if res.Snapshots[3].PendingOrders != 1 {
		t.Errorf("next-day signal must be accepted, snapshot = %+v", res.Snapshots[3])
	}
	if res.Snapshots[4].OpenPositions != 1 {
		t.Errorf("re-entry must fill on day 14, snapshot = %+v", res.Snapshots[4])
	}
}

func TestRunDataGapSkipsSymbolDay(t *testing.T) {
	eng := newEngine(t, nil)
	// No bar for 600519 on day 12; another symbol keeps the calendar.
	bars := append(flatSeries("600519", 10, 11, 13), flatSeries("000858", 10, 11, 12, 13)...)
	sigs := []contracts.FusedSignal{actionableSignal("600519", 10, 80)}

	res := eng.Run(bars, sigs)

	if len(res.Gaps) != 1 {
		t.Fatalf("expected 1 data gap, got %d", len(res.Gaps))
	}
	gap := res.Gaps[0]
	if gap.Symbol != "600519" || !gap.Date.Equal(day(12)) || gap.Kind != contracts.GapMissingBar {
		t.Errorf("unexpected gap record: %+v", gap)
	}

	// Position persisted through the gap and closed at window end.
	if len(res.Trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(res.Trades))
	}
	if res.Trades[0].ExitReason != contracts.ExitEndOfBacktest {
		t.Errorf("exit reason = %s, want end_of_backtest", res.Trades[0].ExitReason)
	}
}

func TestRunSignalExpiry(t *testing.T) {
	eng := newEngine(t, func(c *strategyconfig.Config) {
		c.Backtest.MaxHoldingDays = 3
	})
	bars := flatSeries("600519", 10, 11, 12, 13, 14, 15)
	sigs := []contracts.FusedSignal{actionableSignal("600519", 10, 80)}

	res := eng.Run(bars, sigs)

	if len(res.Trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(res.Trades))
	}
	trade := res.Trades[0]
	if trade.ExitReason != contracts.ExitSignalExpired {
		t.Errorf("exit reason = %s, want signal_expired", trade.ExitReason)
	}
	// Fill day 11, held through 12/13, expired on 14 (third held day).
	if !trade.ExitDate.Equal(day(14)) {
		t.Errorf("exit date = %v, want %v", trade.ExitDate, day(14))
	}
	if trade.HoldingDays != 3 {
		t.Errorf("holding days = %d, want 3", trade.HoldingDays)
	}
}

func TestRunMaxSignalsPerDay(t *testing.T) {
	eng := newEngine(t, func(c *strategyconfig.Config) {
		c.Backtest.MaxSignalsPerDay = 2
	})

	bars := append(flatSeries("000001", 10, 11), flatSeries("000002", 10, 11)...)
	bars = append(bars, flatSeries("000003", 10, 11)...)
	sigs := []contracts.FusedSignal{
		actionableSignal("000001", 10, 78),
		actionableSignal("000002", 10, 92),
		actionableSignal("000003", 10, 85),
	}

	res := eng.Run(bars, sigs)

	if res.Snapshots[0].PendingOrders != 2 {
		t.Fatalf("pending = %d, want top 2 by composite", res.Snapshots[0].PendingOrders)
	}
	// Lowest composite (000001) must be the one cut.
	syms := map[string]bool{}
	for _, tr := range res.Trades {
		syms[tr.Symbol] = true
	}
	if syms["000001"] {
		t.Error("000001 should have been capped out")
	}
	if !syms["000002"] || !syms["000003"] {
		t.Errorf("expected trades for 000002 and 000003, got %v", syms)
	}
}

func TestRunDeterministic(t *testing.T) {
	bars := append(flatSeries("600519", 10, 11, 12, 13), flatSeries("000858", 10, 11, 12, 13)...)
	bars = append(bars, contracts.Bar{Symbol: "300750", Date: day(12), Open: 100, High: 112, Low: 94, Close: 101, Volume: 500})
	sigs := []contracts.FusedSignal{
		actionableSignal("600519", 10, 80),
		actionableSignal("000858", 10, 80),
		actionableSignal("000858", 12, 88),
	}

	first := newEngine(t, nil).Run(bars, sigs)
	second := newEngine(t, nil).Run(bars, sigs)

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs must produce identical results")
	}
}

func TestRunDropsSignalWhileNotFlat(t *testing.T) {
	cfg := strategyconfig.Default()
	eng, err := New(cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	bars := flatSeries("600519", 10, 11, 12, 13)
	sigs := []contracts.FusedSignal{
		actionableSignal("600519", 10, 80),
		actionableSignal("600519", 11, 85), // arrives while pending
		actionableSignal("600519", 12, 90), // arrives while holding
	}

	res := eng.Run(bars, sigs)

	// The later signals are dropped, never layered on the open position.
	if len(res.Trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(res.Trades))
	}
	if !res.Trades[0].EntryDate.Equal(day(11)) {
		t.Errorf("entry date = %v, want fill of the first signal on %v", res.Trades[0].EntryDate, day(11))
	}
	for _, snap := range res.Snapshots {
		if snap.OpenPositions+snap.PendingOrders > 1 {
			t.Errorf("day %v: overlapping positions for one symbol: %+v", snap.Date, snap)
		}
	}
}

func TestRunIgnoresNonActionableSignals(t *testing.T) {
	eng := newEngine(t, nil)
	bars := flatSeries("600519", 10, 11, 12)

	none := actionableSignal("600519", 10, 70)
	none.Grade = contracts.GradeNone

	res := eng.Run(bars, []contracts.FusedSignal{none})
	if len(res.Trades) != 0 {
		t.Errorf("NONE signals must not trade, got %d trades", len(res.Trades))
	}
}
