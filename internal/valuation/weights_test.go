package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultWeights_SumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, DefaultWeights().Sum(), 1e-9)
}

func TestResolveWeights(t *testing.T) {
	tests := []struct {
		name     string
		producer map[string]float64
		excluded map[Factor]bool
		check    func(t *testing.T, w WeightSet)
	}{
		{
			name: "no producer weights keeps baseline",
			check: func(t *testing.T, w WeightSet) {
				for f, base := range baselineWeights {
					assert.InDelta(t, base, w[f], 1e-9, string(f))
				}
			},
		},
		{
			name:     "percent producer weight is blended",
			producer: map[string]float64{"market": 50},
			check: func(t *testing.T, w WeightSet) {
				raw := 0.7*0.25 + 0.3*0.5
				assert.InDelta(t, raw/(raw+0.75), w[FactorMarket], 1e-9)
			},
		},
		{
			name:     "synonym resolves to factor",
			producer: map[string]float64{"Days On Market": 0.2},
			check: func(t *testing.T, w WeightSet) {
				assert.Greater(t, w[FactorDOM], baselineWeights[FactorDOM])
			},
		},
		{
			name:     "excluded factors are zeroed",
			excluded: map[Factor]bool{FactorMarket: true, FactorDealerReputation: true},
			check: func(t *testing.T, w WeightSet) {
				assert.Zero(t, w[FactorMarket])
				assert.Zero(t, w[FactorDealerReputation])
				assert.InDelta(t, 0.12/0.67, w[FactorMileage], 1e-9)
			},
		},
		{
			name:     "malformed producer values fall back to baseline",
			producer: map[string]float64{"market": -3, "mileage": math.NaN(), "title": 250, "unknown_factor": 0.9},
			check: func(t *testing.T, w WeightSet) {
				for f, base := range baselineWeights {
					assert.InDelta(t, base, w[f], 1e-9, string(f))
				}
			},
		},
		{
			name:     "everything excluded goes uniform",
			excluded: allExcluded(),
			check: func(t *testing.T, w WeightSet) {
				for _, f := range Factors {
					assert.InDelta(t, 1.0/11, w[f], 1e-12)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ResolveWeights(tt.producer, tt.excluded)
			assert.Len(t, w, len(Factors))
			assert.InDelta(t, 1.0, w.Sum(), 1e-9)
			for f, v := range w {
				assert.GreaterOrEqual(t, v, 0.0, string(f))
			}
			tt.check(t, w)
		})
	}
}

func TestResolveWeights_CanonicalNameWins(t *testing.T) {
	producer := map[string]float64{"miles": 0.4, "odometer": 0.1, "mileage": 0.3, "price": 0.2}
	first := ResolveWeights(producer, nil)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, ResolveWeights(producer, nil))
	}

	mileage := 0.7*0.12 + 0.3*0.3
	market := 0.7*0.25 + 0.3*0.2
	total := mileage + market + (1 - 0.12 - 0.25)
	assert.InDelta(t, mileage/total, first[FactorMileage], 1e-9)
	assert.InDelta(t, market/total, first[FactorMarket], 1e-9)
}

func allExcluded() map[Factor]bool {
	out := make(map[Factor]bool, len(Factors))
	for _, f := range Factors {
		out[f] = true
	}
	return out
}
