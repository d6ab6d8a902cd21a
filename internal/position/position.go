package position

import (
	"time"

	"github.com/wrenqi/daystar/internal/contracts"
)

// State is the per-symbol lifecycle state.
type State int

const (
	StateFlat State = iota
	StateEnteredPending
	StateHolding
	StateExited
)

func (s State) String() string {
	switch s {
	case StateFlat:
		return "FLAT"
	case StateEnteredPending:
		return "ENTERED_PENDING"
	case StateHolding:
		return "HOLDING"
	case StateExited:
		return "EXITED"
	default:
		return "UNKNOWN"
	}
}

// Position is the simulation state for one symbol. Trade parameters are
// recorded at entry submission; EntryPrice is replaced by the actual
// fill price when the order fills.
type Position struct {
	Symbol       string
	State        State
	SignalDate   time.Time
	EntryDate    time.Time
	EntryPrice   float64
	StopLoss     float64
	TargetPrice  float64
	SizeFraction float64
	HoldingDays  int
}

// Exit is an exit decision produced by evaluating a held position
// against a daily bar.
type Exit struct {
	Price  float64
	Reason contracts.ExitReason
}
