package strategyconfig

// Config is the full, immutable strategy parameter set. It is loaded
// once, validated at construction, and passed by pointer into the
// fusion and backtest engines; nothing mutates it afterwards.
type Config struct {
	Meta     Meta     `yaml:"meta" json:"meta"`
	Fusion   Fusion   `yaml:"fusion" json:"fusion"`
	Risk     Risk     `yaml:"risk" json:"risk"`
	Backtest Backtest `yaml:"backtest" json:"backtest"`
}

// Meta identifies the strategy revision.
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Fusion holds signal fusion parameters.
type Fusion struct {
	Weights Weights `yaml:"weights" json:"weights"`
	Gates   Gates   `yaml:"gates" json:"gates"`
	Grades  Grades  `yaml:"grades" json:"grades"`
}

// Weights is the dimension weight vector. Must sum to 1.0.
// Capital leads, technical triggers: capital flow carries the largest
// weight by design of the strategy.
type Weights struct {
	CapitalFlow      float64 `yaml:"capital_flow" json:"capital_flow"`
	Technical        float64 `yaml:"technical" json:"technical"`
	RelativeStrength float64 `yaml:"relative_strength" json:"relative_strength"`
	Catalyst         float64 `yaml:"catalyst" json:"catalyst"`
}

// Sum returns the sum of all weights.
func (w Weights) Sum() float64 {
	return w.CapitalFlow + w.Technical + w.RelativeStrength + w.Catalyst
}

// Gates are the hard minimums both of which must hold before any grade
// can be assigned.
type Gates struct {
	CapitalFlowMin float64 `yaml:"capital_flow_min" json:"capital_flow_min"`
	TechnicalMin   float64 `yaml:"technical_min" json:"technical_min"`
}

// Grades are the composite-score thresholds for the A and S tiers.
// Boundaries are inclusive (>=).
type Grades struct {
	AMin float64 `yaml:"a_min" json:"a_min"`
	SMin float64 `yaml:"s_min" json:"s_min"`
}

// Risk holds trade parameter computation settings.
type Risk struct {
	// StopPct is the default stop distance as a fraction of entry price,
	// used when no volatility-derived distance is supplied per signal.
	StopPct float64 `yaml:"stop_pct" json:"stop_pct"`
	// TargetMultiple scales the stop distance into the target distance.
	TargetMultiple float64 `yaml:"target_multiple" json:"target_multiple"`
	// MinRiskReward is the floor below which a signal is downgraded to NONE.
	MinRiskReward float64 `yaml:"min_risk_reward" json:"min_risk_reward"`
	// RiskPerTrade is the equity fraction risked per trade; position size
	// is RiskPerTrade / stop distance, capped at PositionCap.
	RiskPerTrade float64 `yaml:"risk_per_trade" json:"risk_per_trade"`
	PositionCap  float64 `yaml:"position_cap" json:"position_cap"`
}

// Fill models for the T+1 entry.
const (
	FillNextOpen    = "next_open"    // fill at the next trading day's open
	FillSignalPrice = "signal_price" // fill at the signal's entry price
)

// Backtest holds simulation settings.
type Backtest struct {
	InitialCapital   float64 `yaml:"initial_capital" json:"initial_capital"`
	FillModel        string  `yaml:"fill_model" json:"fill_model"`
	MaxHoldingDays   int     `yaml:"max_holding_days" json:"max_holding_days"`
	MaxSignalsPerDay int     `yaml:"max_signals_per_day" json:"max_signals_per_day"` // 0 = unlimited
}

// Default returns the built-in parameter set: the strategy as published.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "qiming_star_v1",
			Version:    "1.0.0",
		},
		Fusion: Fusion{
			Weights: Weights{
				CapitalFlow:      0.45,
				Technical:        0.35,
				RelativeStrength: 0.15,
				Catalyst:         0.05,
			},
			Gates: Gates{
				CapitalFlowMin: 80,
				TechnicalMin:   75,
			},
			Grades: Grades{
				AMin: 75,
				SMin: 90,
			},
		},
		Risk: Risk{
			StopPct:        0.05,
			TargetMultiple: 2.0,
			MinRiskReward:  1.5,
			RiskPerTrade:   0.01,
			PositionCap:    0.25,
		},
		Backtest: Backtest{
			InitialCapital:   1_000_000,
			FillModel:        FillNextOpen,
			MaxHoldingDays:   30,
			MaxSignalsPerDay: 10,
		},
	}
}
