package contracts

import "time"

// ScoreMin and ScoreMax bound every dimension score.
const (
	ScoreMin = 0.0
	ScoreMax = 100.0
)

// Dimension names, used for reason reporting and weight lookup.
const (
	DimCapitalFlow      = "capital_flow"
	DimTechnical        = "technical"
	DimRelativeStrength = "relative_strength"
	DimCatalyst         = "catalyst"
)

// DimensionScores holds the four analysis dimension scores for one
// symbol/day. Values are expected in [0, 100] after normalization.
type DimensionScores struct {
	Technical        float64 `json:"technical"`
	CapitalFlow      float64 `json:"capital_flow"`
	RelativeStrength float64 `json:"relative_strength"`
	Catalyst         float64 `json:"catalyst"`
}

// ScoreRecord is the externally produced raw score input for a
// (symbol, trade date). Immutable once recorded upstream; Complete=false
// marks records the producer could not fully populate.
type ScoreRecord struct {
	Symbol   string          `json:"symbol"`
	Date     time.Time       `json:"date"`
	Scores   DimensionScores `json:"scores"`
	Complete bool            `json:"complete"`
}

// NormalizedScores is the normalizer output: scores clamped into
// [0, 100] plus a quality flag. Degraded scores never produce an
// actionable signal downstream.
type NormalizedScores struct {
	DimensionScores
	Degraded bool `json:"degraded"`
}
