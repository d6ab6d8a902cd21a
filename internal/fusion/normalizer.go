package fusion

import (
	"math"

	"github.com/wrenqi/daystar/internal/contracts"
)

// Normalize clamps each dimension score into [0, 100] and flags quality
// problems. NaN and Inf values are replaced with 0 and mark the record
// degraded, as does an incomplete record. Degraded scores are still
// returned so the composite stays reportable, but downstream grading
// forces NONE.
func Normalize(rec contracts.ScoreRecord) contracts.NormalizedScores {
	out := contracts.NormalizedScores{Degraded: !rec.Complete}

	out.Technical = clamp(rec.Scores.Technical, &out.Degraded)
	out.CapitalFlow = clamp(rec.Scores.CapitalFlow, &out.Degraded)
	out.RelativeStrength = clamp(rec.Scores.RelativeStrength, &out.Degraded)
	out.Catalyst = clamp(rec.Scores.Catalyst, &out.Degraded)

	return out
}

func clamp(v float64, degraded *bool) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		*degraded = true
		return contracts.ScoreMin
	}
	if v < contracts.ScoreMin {
		return contracts.ScoreMin
	}
	if v > contracts.ScoreMax {
		return contracts.ScoreMax
	}
	return v
}
