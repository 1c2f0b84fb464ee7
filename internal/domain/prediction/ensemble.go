package prediction

import (
	"gonum.org/v1/gonum/stat"

	"github.com/cardio/cardio/internal/ml"
)

// NeutralProbability is returned when no model produced a score. It signals
// "no prediction available", not an actual 50/50 assessment; the paired
// Confidence is marked invalid so callers can tell the two apart.
const NeutralProbability = 0.5

// singleModelConfidence applies when exactly one model contributed and there
// is no disagreement signal to derive confidence from.
const singleModelConfidence = 85

// Confidence is a disagreement-derived agreement score in [0,100]. Valid is
// false on the zero-model fallback path.
type Confidence struct {
	Value float64
	Valid bool
}

// Combine folds per-model probabilities into one ensemble probability using
// weighted voting, renormalized over the models that actually responded so a
// missing model redistributes influence instead of dragging the result down.
func Combine(scores map[string]float64, weights ml.Weights) (float64, Confidence) {
	if len(scores) == 0 {
		return NeutralProbability, Confidence{Value: 0, Valid: false}
	}

	var numerator, denominator float64
	percentages := make([]float64, 0, len(scores))
	for name, score := range scores {
		w := weights.Get(name)
		numerator += score * w
		denominator += w
		percentages = append(percentages, score*100)
	}
	if denominator <= 0 {
		return NeutralProbability, Confidence{Value: 0, Valid: false}
	}

	return numerator / denominator, confidence(percentages)
}

// confidence maps inter-model spread to agreement: tight scores give high
// confidence, a wide spread erodes it.
func confidence(percentages []float64) Confidence {
	if len(percentages) < 2 {
		return Confidence{Value: singleModelConfidence, Valid: true}
	}
	spread := stat.PopStdDev(percentages, nil)
	v := 100 - spread
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return Confidence{Value: v, Valid: true}
}
