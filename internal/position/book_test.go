package position

import (
	"math"
	"testing"
	"time"

	"github.com/wrenqi/daystar/internal/contracts"
)

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func testSignal(symbol string) contracts.FusedSignal {
	return contracts.FusedSignal{
		Symbol:       symbol,
		Date:         day(10),
		Grade:        contracts.GradeA,
		EntryPrice:   100,
		StopLoss:     95,
		TargetPrice:  110,
		SizeFraction: 0.2,
	}
}

func bar(symbol string, d int, high, low, close float64) contracts.Bar {
	return contracts.Bar{Symbol: symbol, Date: day(d), Open: close, High: high, Low: low, Close: close}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateFlat, "FLAT"},
		{StateEnteredPending, "ENTERED_PENDING"},
		{StateHolding, "HOLDING"},
		{StateExited, "EXITED"},
		{State(99), "UNKNOWN"},
	}
	for _, tc := range tests {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("State(%d).String() = %q, want %q", tc.state, got, tc.want)
		}
	}
}

func TestSubmitEntryOnlyFromFlat(t *testing.T) {
	b := NewBook()

	if b.StateOf("600519") != StateFlat {
		t.Fatal("unseen symbol must be FLAT")
	}
	if !b.SubmitEntry(testSignal("600519")) {
		t.Fatal("entry from FLAT must be accepted")
	}
	if b.StateOf("600519") != StateEnteredPending {
		t.Fatalf("state = %s, want ENTERED_PENDING", b.StateOf("600519"))
	}

	// A second signal while pending is dropped.
	if b.SubmitEntry(testSignal("600519")) {
		t.Error("entry while ENTERED_PENDING must be dropped")
	}

	b.Fill("600519", day(11), 100)
	if b.SubmitEntry(testSignal("600519")) {
		t.Error("entry while HOLDING must be dropped")
	}
}

func TestFillRequiresPending(t *testing.T) {
	b := NewBook()

	if b.Fill("600519", day(11), 100) {
		t.Error("fill without a pending entry must fail")
	}

	b.SubmitEntry(testSignal("600519"))
	if !b.Fill("600519", day(11), 101.5) {
		t.Fatal("fill of pending entry must succeed")
	}

	p := b.Get("600519")
	if p.State != StateHolding {
		t.Errorf("state = %s, want HOLDING", p.State)
	}
	if p.EntryPrice != 101.5 {
		t.Errorf("entry price = %v, want fill price 101.5", p.EntryPrice)
	}
	if !p.EntryDate.Equal(day(11)) {
		t.Errorf("entry date = %v, want %v", p.EntryDate, day(11))
	}
}

func TestEvaluateExit(t *testing.T) {
	tests := []struct {
		name       string
		bar        contracts.Bar
		wantExit   bool
		wantReason contracts.ExitReason
		wantPrice  float64
	}{
		{
			name:     "no trigger holds",
			bar:      bar("600519", 12, 105, 98, 102),
			wantExit: false,
		},
		{
			name:       "low at stop exits at stop",
			bar:        bar("600519", 12, 100, 95, 96),
			wantExit:   true,
			wantReason: contracts.ExitStopLoss,
			wantPrice:  95,
		},
		{
			name:       "high at target exits at target",
			bar:        bar("600519", 12, 110, 100, 109),
			wantExit:   true,
			wantReason: contracts.ExitTargetHit,
			wantPrice:  110,
		},
		{
			name:       "both breached exits at stop",
			bar:        bar("600519", 12, 112, 94, 103),
			wantExit:   true,
			wantReason: contracts.ExitStopLoss,
			wantPrice:  95,
		},
	}

	for _, tc := range tests {
		b := NewBook()
		b.SubmitEntry(testSignal("600519"))
		b.Fill("600519", day(11), 100)

		exit, ok := b.EvaluateExit("600519", tc.bar, 30)
		if ok != tc.wantExit {
			t.Errorf("%s: exit = %v, want %v", tc.name, ok, tc.wantExit)
			continue
		}
		if !ok {
			continue
		}
		if exit.Reason != tc.wantReason {
			t.Errorf("%s: reason = %s, want %s", tc.name, exit.Reason, tc.wantReason)
		}
		if exit.Price != tc.wantPrice {
			t.Errorf("%s: price = %v, want %v", tc.name, exit.Price, tc.wantPrice)
		}
	}
}

func TestEvaluateExitTimeStop(t *testing.T) {
	b := NewBook()
	b.SubmitEntry(testSignal("600519"))
	b.Fill("600519", day(11), 100)

	quiet := bar("600519", 12, 104, 98, 102)

	for i := 0; i < 2; i++ {
		if _, ok := b.EvaluateExit("600519", quiet, 3); ok {
			t.Fatalf("day %d: unexpected exit before time stop", i+1)
		}
	}

	exit, ok := b.EvaluateExit("600519", quiet, 3)
	if !ok {
		t.Fatal("time stop must fire on the third held day")
	}
	if exit.Reason != contracts.ExitSignalExpired {
		t.Errorf("reason = %s, want %s", exit.Reason, contracts.ExitSignalExpired)
	}
	if exit.Price != quiet.Close {
		t.Errorf("price = %v, want close %v", exit.Price, quiet.Close)
	}
}

func TestCloseAndEndDay(t *testing.T) {
	b := NewBook()
	b.SubmitEntry(testSignal("600519"))
	b.Fill("600519", day(11), 100)
	b.EvaluateExit("600519", bar("600519", 12, 104, 98, 102), 30)

	exit, _ := b.EvaluateExit("600519", bar("600519", 13, 111, 100, 110), 30)
	trade, ok := b.Close("600519", day(13), exit)
	if !ok {
		t.Fatal("close of held position must succeed")
	}

	if trade.ExitReason != contracts.ExitTargetHit {
		t.Errorf("exit reason = %s, want target_hit", trade.ExitReason)
	}
	if math.Abs(trade.PnLPct-0.1) > 1e-9 {
		t.Errorf("pnl = %v, want 0.1", trade.PnLPct)
	}
	if trade.HoldingDays != 2 {
		t.Errorf("holding days = %d, want 2", trade.HoldingDays)
	}

	// Exited symbol cannot re-enter until the day rolls over.
	if b.StateOf("600519") != StateExited {
		t.Fatalf("state = %s, want EXITED", b.StateOf("600519"))
	}
	if b.SubmitEntry(testSignal("600519")) {
		t.Error("entry on the exit day must be dropped")
	}

	b.EndDay()
	if b.StateOf("600519") != StateFlat {
		t.Fatalf("state after EndDay = %s, want FLAT", b.StateOf("600519"))
	}
	if !b.SubmitEntry(testSignal("600519")) {
		t.Error("entry after EndDay must be accepted")
	}
}

func TestCounters(t *testing.T) {
	b := NewBook()

	b.SubmitEntry(testSignal("600519"))
	b.SubmitEntry(testSignal("000858"))

	if b.PendingCount() != 2 || b.OpenCount() != 0 {
		t.Fatalf("pending = %d open = %d, want 2/0", b.PendingCount(), b.OpenCount())
	}

	b.Fill("600519", day(11), 100)
	if b.PendingCount() != 1 || b.OpenCount() != 1 {
		t.Fatalf("pending = %d open = %d, want 1/1", b.PendingCount(), b.OpenCount())
	}
	if b.Committed() != 0.2 {
		t.Errorf("committed = %v, want 0.2", b.Committed())
	}
}
