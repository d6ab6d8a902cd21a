package fusion

import (
	"fmt"

	"github.com/wrenqi/daystar/internal/contracts"
	"github.com/wrenqi/daystar/internal/strategyconfig"
	"github.com/wrenqi/daystar/pkg/logger"
)

// Engine fuses normalized dimension scores into graded, tradeable
// signals. It is stateless after construction; Generate is safe for
// concurrent use.
type Engine struct {
	cfg *strategyconfig.Config
	log *logger.Logger
}

// NewEngine validates the configuration and returns a ready engine.
// Invalid configuration is fatal here, never mid-run.
func NewEngine(cfg *strategyconfig.Config, log *logger.Logger) (*Engine, error) {
	if err := strategyconfig.Validate(cfg); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, log: log}, nil
}

// Generate evaluates one score record against the symbol's last close.
// stopPct overrides the configured default stop distance when > 0
// (volatility-derived stops are passed this way); pass 0 to use the
// default. The returned signal always carries the composite and reason,
// even when the grade is NONE.
func (e *Engine) Generate(rec contracts.ScoreRecord, lastClose, stopPct float64) contracts.FusedSignal {
	scores := Normalize(rec)

	sig := contracts.FusedSignal{
		Symbol:    rec.Symbol,
		Date:      rec.Date,
		Scores:    scores,
		Composite: e.composite(scores.DimensionScores),
		Grade:     contracts.GradeNone,
	}

	sig.Reason = e.reason(scores)
	sig.Reason.Dominant = e.dominant(scores.DimensionScores)

	if scores.Degraded {
		sig.Reason.Summary = "degraded input scores"
		return sig
	}
	if !sig.Reason.GatesPassed() {
		sig.Reason.Summary = gateSummary(sig.Reason)
		return sig
	}

	grades := e.cfg.Fusion.Grades
	switch {
	case sig.Composite >= grades.SMin:
		sig.Grade = contracts.GradeS
	case sig.Composite >= grades.AMin:
		sig.Grade = contracts.GradeA
	default:
		sig.Reason.BelowGradeBar = true
		sig.Reason.Summary = fmt.Sprintf("composite %.1f below grade bar %.1f", sig.Composite, grades.AMin)
		return sig
	}

	if lastClose <= 0 {
		sig.Grade = contracts.GradeNone
		sig.Reason.Summary = "no valid reference price"
		return sig
	}

	e.applyTradeParams(&sig, lastClose, stopPct)

	if sig.Grade.Actionable() && e.log != nil {
		e.log.WithFields(map[string]interface{}{
			"symbol":    sig.Symbol,
			"grade":     string(sig.Grade),
			"composite": sig.Composite,
			"entry":     sig.EntryPrice,
			"stop":      sig.StopLoss,
			"target":    sig.TargetPrice,
		}).Debug("signal generated")
	}

	return sig
}

// applyTradeParams fills entry/stop/target, checks the risk-reward
// floor and sizes the position. A signal failing the floor is
// downgraded to NONE with its trade parameters cleared.
func (e *Engine) applyTradeParams(sig *contracts.FusedSignal, lastClose, stopPct float64) {
	r := e.cfg.Risk
	if stopPct <= 0 {
		stopPct = r.StopPct
	}

	entry := lastClose
	stop := entry * (1 - stopPct)
	target := entry + (entry-stop)*r.TargetMultiple

	rr := (target - entry) / (entry - stop)
	if rr < r.MinRiskReward {
		sig.Grade = contracts.GradeNone
		sig.Reason.RiskRewardRejected = true
		sig.Reason.Summary = fmt.Sprintf("risk-reward %.2f below floor %.2f", rr, r.MinRiskReward)
		return
	}

	size := r.RiskPerTrade / stopPct
	if size > r.PositionCap {
		size = r.PositionCap
	}

	sig.EntryPrice = entry
	sig.StopLoss = stop
	sig.TargetPrice = target
	sig.RiskReward = rr
	sig.SizeFraction = size
	sig.Reason.Summary = fmt.Sprintf("grade %s at composite %.1f", sig.Grade, sig.Composite)
}

func (e *Engine) composite(s contracts.DimensionScores) float64 {
	w := e.cfg.Fusion.Weights
	return w.CapitalFlow*s.CapitalFlow +
		w.Technical*s.Technical +
		w.RelativeStrength*s.RelativeStrength +
		w.Catalyst*s.Catalyst
}

func (e *Engine) reason(scores contracts.NormalizedScores) contracts.Reason {
	g := e.cfg.Fusion.Gates
	return contracts.Reason{
		CapitalGate:   scores.CapitalFlow >= g.CapitalFlowMin,
		TechnicalGate: scores.Technical >= g.TechnicalMin,
		Degraded:      scores.Degraded,
	}
}

// dominant names the dimension contributing most to the composite.
// Ties resolve in weight order: capital flow, technical, relative
// strength, catalyst.
func (e *Engine) dominant(s contracts.DimensionScores) string {
	w := e.cfg.Fusion.Weights

	name := contracts.DimCapitalFlow
	best := w.CapitalFlow * s.CapitalFlow

	if c := w.Technical * s.Technical; c > best {
		name, best = contracts.DimTechnical, c
	}
	if c := w.RelativeStrength * s.RelativeStrength; c > best {
		name, best = contracts.DimRelativeStrength, c
	}
	if c := w.Catalyst * s.Catalyst; c > best {
		name = contracts.DimCatalyst
	}
	return name
}

func gateSummary(r contracts.Reason) string {
	switch {
	case !r.CapitalGate && !r.TechnicalGate:
		return "capital flow and technical gates failed"
	case !r.CapitalGate:
		return "capital flow gate failed"
	default:
		return "technical gate failed"
	}
}
