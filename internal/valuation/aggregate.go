package valuation

import "deal-checker/internal/dto"

var hintAdjustments = map[dto.AdjHint]float64{
	dto.HintStrongNegative: -6,
	dto.HintNegative:       -4,
	dto.HintSlightNegative: -2,
	dto.HintNeutral:        0,
	dto.HintSlightPositive: 2,
	dto.HintPositive:       4,
	dto.HintStrongPositive: 6,
}

// HintAdjustment converts the producer sentiment into score points.
// Unknown hints count as neutral.
func HintAdjustment(h dto.AdjHint) float64 {
	return hintAdjustments[h]
}

// Aggregate is the weighted mean of the present components plus the
// sentiment nudge, clipped to [0,100]. Null components drop out of the
// denominator; with nothing left the base score is 50.
func Aggregate(scores ComponentScores, weights WeightSet, hint dto.AdjHint) float64 {
	var num, den float64
	for _, f := range Factors {
		c, ok := scores[f]
		if !ok {
			continue
		}
		w := weights[f]
		num += c * w
		den += w
	}

	base := missingScore
	if den > 0 {
		base = num / den
	}
	return clip(base+HintAdjustment(hint), scoreMin, scoreMax)
}
