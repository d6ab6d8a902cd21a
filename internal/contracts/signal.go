package contracts

import "time"

// Grade is the qualitative signal tier.
type Grade string

const (
	GradeNone Grade = "NONE"
	GradeA    Grade = "A"
	GradeS    Grade = "S"
)

// Actionable reports whether the grade qualifies for trading.
func (g Grade) Actionable() bool {
	return g == GradeA || g == GradeS
}

// Reason explains how a signal was graded: which gates passed or
// failed, which dimension dominated the composite, and why an
// otherwise eligible signal was downgraded.
type Reason struct {
	CapitalGate        bool   `json:"capital_gate"`
	TechnicalGate      bool   `json:"technical_gate"`
	Degraded           bool   `json:"degraded"`
	BelowGradeBar      bool   `json:"below_grade_bar"`
	RiskRewardRejected bool   `json:"risk_reward_rejected"`
	Dominant           string `json:"dominant"`
	Summary            string `json:"summary"`
}

// GatesPassed reports whether both hard gates held.
func (r Reason) GatesPassed() bool {
	return r.CapitalGate && r.TechnicalGate
}

// FusedSignal is the fusion engine output for one (symbol, trade date).
// Composite is informational even when Grade is NONE; trade parameters
// are only populated for actionable grades.
type FusedSignal struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`

	Scores    NormalizedScores `json:"scores"`
	Composite float64          `json:"composite_score"`
	Grade     Grade            `json:"grade"`

	EntryPrice   float64 `json:"entry_price"`
	StopLoss     float64 `json:"stop_loss"`
	TargetPrice  float64 `json:"target_price"`
	RiskReward   float64 `json:"risk_reward_ratio"`
	SizeFraction float64 `json:"position_size_fraction"`

	Reason Reason `json:"reason"`
}
