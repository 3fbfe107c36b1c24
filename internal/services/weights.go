package services

import (
	"math"
	"time"

	"github.com/elenaruiz/attribution-engine/internal/models"
)

// decayHalfLife is the half-life used by the time_decay model: a touchpoint
// seven days older than another receives half its raw weight.
const decayHalfLife = 7 * 24 * time.Hour

// ComputeWeights computes the weight vector for an ordered touchpoint list
// under the given model type. For n >= 1 touchpoints the returned weights sum
// to 1 (within floating-point tolerance). An unrecognized model type weights
// like linear.
func ComputeWeights(modelType string, touchpoints []models.AttributionEvent, orderDate time.Time) []float64 {
	n := len(touchpoints)
	if n == 0 {
		return nil
	}

	switch modelType {
	case models.ModelFirstTouch:
		weights := make([]float64, n)
		weights[0] = 1
		return weights
	case models.ModelLastTouch:
		weights := make([]float64, n)
		weights[n-1] = 1
		return weights
	case models.ModelTimeDecay:
		return timeDecayWeights(touchpoints, orderDate)
	case models.ModelPositionBased:
		return positionBasedWeights(n)
	case models.ModelLinear:
		return linearWeights(n)
	default:
		return linearWeights(n)
	}
}

// linearWeights splits credit evenly: every touchpoint gets 1/n.
func linearWeights(n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1 / float64(n)
	}
	return weights
}

// timeDecayWeights gives recent touchpoints more credit. The raw weight of a
// touchpoint is 0.5^(age / halfLife) where age is the time between the
// touchpoint and the order; raw weights are then normalized to sum to 1.
func timeDecayWeights(touchpoints []models.AttributionEvent, orderDate time.Time) []float64 {
	weights := make([]float64, len(touchpoints))
	var sum float64
	for i := range touchpoints {
		age := orderDate.Sub(touchpoints[i].OccurredAt)
		weights[i] = math.Pow(0.5, float64(age)/float64(decayHalfLife))
		sum += weights[i]
	}
	if sum == 0 {
		// all raw weights underflowed; fall back to an even split
		return linearWeights(len(touchpoints))
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// positionBasedWeights implements the 40/20/40 split: first and last
// touchpoints get 0.4 each and the interior touchpoints share the remaining
// 0.2 evenly. Single touchpoint gets 1, a pair gets 0.5 each.
func positionBasedWeights(n int) []float64 {
	switch n {
	case 1:
		return []float64{1}
	case 2:
		return []float64{0.5, 0.5}
	}
	weights := make([]float64, n)
	weights[0] = 0.4
	weights[n-1] = 0.4
	middle := 0.2 / float64(n-2)
	for i := 1; i < n-1; i++ {
		weights[i] = middle
	}
	return weights
}
