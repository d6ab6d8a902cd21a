package strategyconfig

import (
	"math"
	"os"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	if math.Abs(cfg.Fusion.Weights.Sum()-1.0) > 1e-9 {
		t.Errorf("default weights must sum to 1.0, got %.6f", cfg.Fusion.Weights.Sum())
	}
	if cfg.Fusion.Gates.CapitalFlowMin != 80 || cfg.Fusion.Gates.TechnicalMin != 75 {
		t.Errorf("unexpected default gates: %+v", cfg.Fusion.Gates)
	}
	if cfg.Fusion.Grades.AMin != 75 || cfg.Fusion.Grades.SMin != 90 {
		t.Errorf("unexpected default grade thresholds: %+v", cfg.Fusion.Grades)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			name:   "weights not summing to one",
			mutate: func(c *Config) { c.Fusion.Weights.Catalyst = 0.20 },
			field:  "fusion.weights",
		},
		{
			name:   "negative weight",
			mutate: func(c *Config) { c.Fusion.Weights.Catalyst = -0.05; c.Fusion.Weights.CapitalFlow = 0.55 },
			field:  "fusion.weights",
		},
		{
			name:   "gate out of range",
			mutate: func(c *Config) { c.Fusion.Gates.CapitalFlowMin = 120 },
			field:  "fusion.gates.capital_flow_min",
		},
		{
			name:   "grade thresholds out of order",
			mutate: func(c *Config) { c.Fusion.Grades.AMin = 95 },
			field:  "fusion.grades",
		},
		{
			name:   "negative grade threshold",
			mutate: func(c *Config) { c.Fusion.Grades.AMin = -1 },
			field:  "fusion.grades",
		},
		{
			name:   "zero stop pct",
			mutate: func(c *Config) { c.Risk.StopPct = 0 },
			field:  "risk.stop_pct",
		},
		{
			name:   "stop pct at one",
			mutate: func(c *Config) { c.Risk.StopPct = 1.0 },
			field:  "risk.stop_pct",
		},
		{
			name:   "zero target multiple",
			mutate: func(c *Config) { c.Risk.TargetMultiple = 0 },
			field:  "risk.target_multiple",
		},
		{
			name:   "position cap above one",
			mutate: func(c *Config) { c.Risk.PositionCap = 1.5 },
			field:  "risk.position_cap",
		},
		{
			name:   "unknown fill model",
			mutate: func(c *Config) { c.Backtest.FillModel = "vwap" },
			field:  "backtest.fill_model",
		},
		{
			name:   "zero initial capital",
			mutate: func(c *Config) { c.Backtest.InitialCapital = 0 },
			field:  "backtest.initial_capital",
		},
		{
			name:   "zero max holding days",
			mutate: func(c *Config) { c.Backtest.MaxHoldingDays = 0 },
			field:  "backtest.max_holding_days",
		},
	}

	for _, tc := range tests {
		cfg := Default()
		tc.mutate(cfg)

		err := Validate(cfg)
		if err == nil {
			t.Errorf("%s: expected validation error, got nil", tc.name)
			continue
		}

		verr, ok := err.(ValidationError)
		if !ok {
			t.Errorf("%s: expected ValidationError, got %T", tc.name, err)
			continue
		}
		if verr.Field != tc.field {
			t.Errorf("%s: expected field %q, got %q", tc.name, tc.field, verr.Field)
		}
	}
}

func TestLoad(t *testing.T) {
	path := "../../config/strategy/qiming_star_v1.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("strategy file not found")
	}

	cfg, yamlData, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Meta.StrategyID != "qiming_star_v1" {
		t.Errorf("expected strategy_id=qiming_star_v1, got %s", cfg.Meta.StrategyID)
	}
	if cfg.Fusion.Weights.CapitalFlow != 0.45 {
		t.Errorf("expected capital_flow weight 0.45, got %v", cfg.Fusion.Weights.CapitalFlow)
	}
	if len(yamlData) == 0 {
		t.Error("expected raw yaml bytes")
	}

	hash, err := Hash(cfg)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if len(hash) != 64 {
		t.Errorf("expected 64 char hash, got %d", len(hash))
	}

	// Same config, same hash.
	hash2, _ := Hash(cfg)
	if hash != hash2 {
		t.Error("hash not deterministic")
	}
}

func TestWarn(t *testing.T) {
	cfg := Default()
	cfg.Risk.TargetMultiple = 1.0 // below min_risk_reward 1.5
	cfg.Risk.PositionCap = 0.5

	warnings := Warn(cfg)
	if len(warnings) < 2 {
		t.Errorf("expected at least 2 warnings, got %d", len(warnings))
	}
}
