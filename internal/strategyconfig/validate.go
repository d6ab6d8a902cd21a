package strategyconfig

import (
	"fmt"
	"math"
)

// ValidationError is a structurally invalid configuration. Fatal:
// raised once at load/construction, never during a run.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all structural constraints. Any failure aborts
// before a run starts.
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Fusion ===
	w := cfg.Fusion.Weights
	if w.CapitalFlow < 0 || w.Technical < 0 || w.RelativeStrength < 0 || w.Catalyst < 0 {
		return ValidationError{"fusion.weights", "weights must be >= 0"}
	}
	if math.Abs(w.Sum()-1.0) > 1e-6 {
		return ValidationError{"fusion.weights", fmt.Sprintf("must sum to 1.0, got %.6f", w.Sum())}
	}

	g := cfg.Fusion.Gates
	if g.CapitalFlowMin < 0 || g.CapitalFlowMin > 100 {
		return ValidationError{"fusion.gates.capital_flow_min", "must be in [0, 100]"}
	}
	if g.TechnicalMin < 0 || g.TechnicalMin > 100 {
		return ValidationError{"fusion.gates.technical_min", "must be in [0, 100]"}
	}

	gr := cfg.Fusion.Grades
	if gr.AMin < 0 || gr.SMin < 0 {
		return ValidationError{"fusion.grades", "thresholds must be >= 0"}
	}
	if gr.AMin > gr.SMin {
		return ValidationError{"fusion.grades", fmt.Sprintf("a_min=%.1f must be <= s_min=%.1f", gr.AMin, gr.SMin)}
	}

	// === Risk ===
	r := cfg.Risk
	if r.StopPct <= 0 || r.StopPct >= 1 {
		return ValidationError{"risk.stop_pct", "must be in (0, 1)"}
	}
	if r.TargetMultiple <= 0 {
		return ValidationError{"risk.target_multiple", "must be > 0"}
	}
	if r.MinRiskReward <= 0 {
		return ValidationError{"risk.min_risk_reward", "must be > 0"}
	}
	if r.RiskPerTrade <= 0 || r.RiskPerTrade > 1 {
		return ValidationError{"risk.risk_per_trade", "must be in (0, 1]"}
	}
	if r.PositionCap <= 0 || r.PositionCap > 1 {
		return ValidationError{"risk.position_cap", "must be in (0, 1]"}
	}

	// === Backtest ===
	b := cfg.Backtest
	if b.InitialCapital <= 0 {
		return ValidationError{"backtest.initial_capital", "must be > 0"}
	}
	if b.FillModel != FillNextOpen && b.FillModel != FillSignalPrice {
		return ValidationError{"backtest.fill_model", fmt.Sprintf("must be %s or %s", FillNextOpen, FillSignalPrice)}
	}
	if b.MaxHoldingDays < 1 {
		return ValidationError{"backtest.max_holding_days", "must be >= 1"}
	}
	if b.MaxSignalsPerDay < 0 {
		return ValidationError{"backtest.max_signals_per_day", "must be >= 0"}
	}

	return nil
}

// Warning is a recommended-practice violation; the run proceeds.
type Warning struct {
	Code    string
	Message string
}

// Warn checks recommended constraints (non-fatal).
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.Risk.TargetMultiple < cfg.Risk.MinRiskReward {
		warnings = append(warnings, Warning{
			Code:    "UNREACHABLE_RR",
			Message: "target_multiple below min_risk_reward: every signal will be downgraded",
		})
	}

	if cfg.Fusion.Gates.CapitalFlowMin < cfg.Fusion.Gates.TechnicalMin {
		warnings = append(warnings, Warning{
			Code:    "INVERTED_GATES",
			Message: "capital gate below technical gate: capital is expected to be the stricter filter",
		})
	}

	if cfg.Risk.PositionCap > 0.3 {
		warnings = append(warnings, Warning{
			Code:    "LARGE_POSITION_CAP",
			Message: "position_cap above 30% concentrates single-name risk",
		})
	}

	return warnings
}
