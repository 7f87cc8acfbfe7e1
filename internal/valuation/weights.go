package valuation

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// WeightSet assigns each factor its share of the deal score.
type WeightSet map[Factor]float64

const (
	baselineShare = 0.7
	producerShare = 0.3
)

var baselineWeights = WeightSet{
	FactorMarket:           0.25,
	FactorMileage:          0.12,
	FactorTCO:              0.08,
	FactorTitle:            0.15,
	FactorAccidents:        0.10,
	FactorOwners:           0.05,
	FactorRust:             0.05,
	FactorRarity:           0.04,
	FactorOptions:          0.04,
	FactorDOM:              0.04,
	FactorDealerReputation: 0.08,
}

// DefaultWeights returns a copy of the baseline weights.
func DefaultWeights() WeightSet {
	out := make(WeightSet, len(baselineWeights))
	for f, w := range baselineWeights {
		out[f] = w
	}
	return out
}

// Sum adds the weights in factor order.
func (w WeightSet) Sum() float64 {
	return floats.Sum(w.values())
}

func (w WeightSet) values() []float64 {
	vals := make([]float64, len(Factors))
	for i, f := range Factors {
		vals[i] = w[f]
	}
	return vals
}

// ResolveWeights blends producer weights into the baseline, zeroes every
// excluded factor and renormalizes. The result is never negative and always
// sums to 1. If nothing is left to weigh it falls back to a uniform split.
func ResolveWeights(producer map[string]float64, excluded map[Factor]bool) WeightSet {
	names := make([]string, 0, len(producer))
	for name := range producer {
		names = append(names, name)
	}
	sort.Strings(names)

	// Canonical names win over synonyms for the same factor.
	parsed := make(map[Factor]float64, len(producer))
	canonical := make(map[Factor]bool, len(producer))
	for _, name := range names {
		f, ok := ParseFactor(name)
		if !ok || canonical[f] {
			continue
		}
		parsed[f] = producer[name]
		canonical[f] = strings.EqualFold(strings.TrimSpace(name), string(f))
	}

	resolved := make(WeightSet, len(Factors))
	for _, f := range Factors {
		base := baselineWeights[f]
		pw, ok := producerWeight(parsed, f)
		if !ok {
			pw = base
		}
		w := baselineShare*base + producerShare*pw
		if excluded[f] {
			w = 0
		}
		resolved[f] = w
	}

	total := resolved.Sum()
	if total <= 0 || math.IsNaN(total) {
		return uniformWeights()
	}
	vals := resolved.values()
	floats.Scale(1/total, vals)
	for i, f := range Factors {
		resolved[f] = vals[i]
	}
	return resolved
}

// producerWeight reads a producer weight, treating values above 1 as
// percentages. Absent, negative and out-of-range values are rejected.
func producerWeight(parsed map[Factor]float64, f Factor) (float64, bool) {
	v, ok := parsed[f]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 100 {
		return 0, false
	}
	if v > 1 {
		v /= 100
	}
	return v, true
}

func uniformWeights() WeightSet {
	out := make(WeightSet, len(Factors))
	share := 1 / float64(len(Factors))
	for _, f := range Factors {
		out[f] = share
	}
	return out
}

var factorAliases = map[string]Factor{
	"price":                   FactorMarket,
	"market_price":            FactorMarket,
	"market_value":            FactorMarket,
	"miles":                   FactorMileage,
	"odometer":                FactorMileage,
	"total_cost_of_ownership": FactorTCO,
	"cost_of_ownership":       FactorTCO,
	"title_status":            FactorTitle,
	"accident":                FactorAccidents,
	"accident_history":        FactorAccidents,
	"owner":                   FactorOwners,
	"owner_count":             FactorOwners,
	"previous_owners":         FactorOwners,
	"rust_region":             FactorRust,
	"corrosion":               FactorRust,
	"region":                  FactorRust,
	"rarity_index":            FactorRarity,
	"options_value":           FactorOptions,
	"options_value_usd":       FactorOptions,
	"equipment":               FactorOptions,
	"days_on_market":          FactorDOM,
	"dealer":                  FactorDealerReputation,
	"reputation":              FactorDealerReputation,
	"seller_reputation":       FactorDealerReputation,
}

// ParseFactor resolves a producer-supplied factor name, accepting a few
// common synonyms.
func ParseFactor(name string) (Factor, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	for _, f := range Factors {
		if key == string(f) {
			return f, true
		}
	}
	f, ok := factorAliases[key]
	return f, ok
}
