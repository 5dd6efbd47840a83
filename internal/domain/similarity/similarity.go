// Package similarity implements the composite room similarity score:
// a weighted sum of text, area and occupancy sub-scores.
package similarity

import (
	"fmt"
	"math"

	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain"
)

// weightSumTolerance absorbs float noise when checking that weights sum to one.
const weightSumTolerance = 1e-6

// Weights is the (text, area, occupancy) weight triple. The triple must sum
// to one; the defaults privilege text semantics over structural fields.
type Weights struct {
	Text      float64
	Area      float64
	Occupancy float64
}

// DefaultWeights returns the calibrated default weight triple.
func DefaultWeights() Weights {
	return Weights{Text: 0.6, Area: 0.2, Occupancy: 0.2}
}

// Validate checks that each weight is in [0,1] and the triple sums to one.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{"text": w.Text, "area": w.Area, "occupancy": w.Occupancy} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s weight %v outside [0,1]: %w", name, v, domain.ErrInvalidWeights)
		}
	}
	if sum := w.Text + w.Area + w.Occupancy; math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("weights sum to %v, want 1: %w", sum, domain.ErrInvalidWeights)
	}
	return nil
}

// AreaScore scores two areas by relative difference: 1 − |a−b|/max(a,b),
// floored at 0. A missing or zero side scores exactly 0 — an explicit
// penalty for absent structural data, not a neutral skip.
func AreaScore(a, b *float64) float64 {
	if a == nil || b == nil || *a == 0 || *b == 0 {
		return 0
	}
	return relative(*a, *b)
}

// OccupancyScore scores two occupancy counts with the same relative-difference
// formula and the same missing-data policy as AreaScore.
func OccupancyScore(a, b *int) float64 {
	if a == nil || b == nil || *a == 0 || *b == 0 {
		return 0
	}
	return relative(float64(*a), float64(*b))
}

func relative(a, b float64) float64 {
	s := 1 - math.Abs(a-b)/math.Max(a, b)
	// Guard against degenerate inputs; the formula itself stays in [0,1]
	// for positive a, b.
	return math.Max(s, 0)
}

// Composite combines the three sub-scores under the given weights.
// With all sub-scores in [0,1] and valid weights the result is in [0,1].
func Composite(textSim, areaScore, occScore float64, w Weights) float64 {
	return w.Text*textSim + w.Area*areaScore + w.Occupancy*occScore
}

// Cosine returns the cosine similarity of two embedding vectors.
// Mismatched lengths and zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Round3 rounds a score to 3 decimal digits, the precision persisted on
// match records.
func Round3(s float64) float64 {
	return math.Round(s*1000) / 1000
}
