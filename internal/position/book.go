package position

import (
	"time"

	"github.com/wrenqi/daystar/internal/contracts"
)

// Book tracks one Position slot per symbol for the lifetime of a run.
// Slots are arena-allocated: a symbol claims a slot on first entry and
// keeps it across re-entries, so the per-day loop never allocates.
// Not safe for concurrent use; the backtest engine is single-threaded.
type Book struct {
	slots []Position
	index map[string]int
}

// NewBook returns an empty Book.
func NewBook() *Book {
	return &Book{index: make(map[string]int)}
}

// Get returns the symbol's position slot, or nil if the symbol has
// never entered.
func (b *Book) Get(symbol string) *Position {
	i, ok := b.index[symbol]
	if !ok {
		return nil
	}
	return &b.slots[i]
}

// StateOf returns the symbol's current state. Unseen symbols are FLAT.
func (b *Book) StateOf(symbol string) State {
	if p := b.Get(symbol); p != nil {
		return p.State
	}
	return StateFlat
}

// SubmitEntry records an intended entry from an actionable signal,
// moving FLAT to ENTERED_PENDING. Signals arriving while the symbol is
// not FLAT are dropped and false is returned; the T+1 fill happens on a
// later trading day via Fill.
func (b *Book) SubmitEntry(sig contracts.FusedSignal) bool {
	p := b.slot(sig.Symbol)
	if p.State != StateFlat {
		return false
	}

	*p = Position{
		Symbol:       sig.Symbol,
		State:        StateEnteredPending,
		SignalDate:   sig.Date,
		EntryPrice:   sig.EntryPrice,
		StopLoss:     sig.StopLoss,
		TargetPrice:  sig.TargetPrice,
		SizeFraction: sig.SizeFraction,
	}
	return true
}

// Fill transitions ENTERED_PENDING to HOLDING at the given fill price.
// Returns false if the symbol is not awaiting a fill.
func (b *Book) Fill(symbol string, date time.Time, price float64) bool {
	p := b.Get(symbol)
	if p == nil || p.State != StateEnteredPending {
		return false
	}

	p.State = StateHolding
	p.EntryDate = date
	p.EntryPrice = price
	p.HoldingDays = 0
	return true
}

// EvaluateExit checks a held position against the day's bar, advancing
// the holding-day counter. Stop-loss takes priority over target on days
// where both are breached; the time stop fires at the day's close once
// maxHoldingDays is reached. Returns false when the position is not
// held or no exit triggers.
func (b *Book) EvaluateExit(symbol string, bar contracts.Bar, maxHoldingDays int) (Exit, bool) {
	p := b.Get(symbol)
	if p == nil || p.State != StateHolding {
		return Exit{}, false
	}

	p.HoldingDays++

	if bar.Low <= p.StopLoss {
		return Exit{Price: p.StopLoss, Reason: contracts.ExitStopLoss}, true
	}
	if bar.High >= p.TargetPrice {
		return Exit{Price: p.TargetPrice, Reason: contracts.ExitTargetHit}, true
	}

	if maxHoldingDays > 0 && p.HoldingDays >= maxHoldingDays {
		return Exit{Price: bar.Close, Reason: contracts.ExitSignalExpired}, true
	}

	return Exit{}, false
}

// Close transitions HOLDING to EXITED and returns the immutable trade
// record. The slot stays EXITED for the rest of the trading day so the
// symbol cannot re-enter until EndDay resets it.
func (b *Book) Close(symbol string, date time.Time, exit Exit) (contracts.Trade, bool) {
	p := b.Get(symbol)
	if p == nil || p.State != StateHolding {
		return contracts.Trade{}, false
	}

	trade := contracts.Trade{
		Symbol:       p.Symbol,
		EntryDate:    p.EntryDate,
		EntryPrice:   p.EntryPrice,
		ExitDate:     date,
		ExitPrice:    exit.Price,
		ExitReason:   exit.Reason,
		HoldingDays:  p.HoldingDays,
		PnLPct:       exit.Price/p.EntryPrice - 1,
		SizeFraction: p.SizeFraction,
	}

	p.State = StateExited
	return trade, true
}

// EndDay resets EXITED slots to FLAT. Called after a trading day's
// entries have been processed, making exited symbols eligible again
// from the next day only.
func (b *Book) EndDay() {
	for i := range b.slots {
		if b.slots[i].State == StateExited {
			b.slots[i].State = StateFlat
		}
	}
}

// OpenCount returns the number of symbols currently HOLDING.
func (b *Book) OpenCount() int {
	n := 0
	for i := range b.slots {
		if b.slots[i].State == StateHolding {
			n++
		}
	}
	return n
}

// PendingCount returns the number of symbols awaiting a T+1 fill.
func (b *Book) PendingCount() int {
	n := 0
	for i := range b.slots {
		if b.slots[i].State == StateEnteredPending {
			n++
		}
	}
	return n
}

// Committed returns the equity fraction committed across held
// positions.
func (b *Book) Committed() float64 {
	total := 0.0
	for i := range b.slots {
		if b.slots[i].State == StateHolding {
			total += b.slots[i].SizeFraction
		}
	}
	return total
}

func (b *Book) slot(symbol string) *Position {
	if i, ok := b.index[symbol]; ok {
		return &b.slots[i]
	}
	b.slots = append(b.slots, Position{Symbol: symbol})
	b.index[symbol] = len(b.slots) - 1
	return &b.slots[len(b.slots)-1]
}
