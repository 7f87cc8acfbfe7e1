package valuation

import (
	"encoding/json"
	"math"

	"deal-checker/internal/dto"
)

// Factor names one deterministic sub-score of the deal score.
type Factor string

const (
	FactorMarket           Factor = "market"
	FactorMileage          Factor = "mileage"
	FactorTCO              Factor = "tco"
	FactorTitle            Factor = "title"
	FactorAccidents        Factor = "accidents"
	FactorOwners           Factor = "owners"
	FactorRust             Factor = "rust"
	FactorRarity           Factor = "rarity"
	FactorOptions          Factor = "options"
	FactorDOM              Factor = "dom"
	FactorDealerReputation Factor = "dealer_reputation"
)

// Factors is the fixed evaluation order. Every sum over factors walks this
// slice so results do not depend on map iteration order.
var Factors = []Factor{
	FactorMarket,
	FactorMileage,
	FactorTCO,
	FactorTitle,
	FactorAccidents,
	FactorOwners,
	FactorRust,
	FactorRarity,
	FactorOptions,
	FactorDOM,
	FactorDealerReputation,
}

const (
	MarketSymmetric  = "symmetric"
	MarketAsymmetric = "asymmetric"
)

// ComponentScores holds one 0-100 score per factor. A factor absent from
// the map is null (only dealer_reputation can be).
type ComponentScores map[Factor]float64

func (c ComponentScores) MarshalJSON() ([]byte, error) {
	out := make(map[string]*float64, len(Factors))
	for _, f := range Factors {
		if v, ok := c[f]; ok {
			v := v
			out[string(f)] = &v
		} else {
			out[string(f)] = nil
		}
	}
	return json.Marshal(out)
}

// ScoreInput gathers everything the component scorer reads. Nil means the
// producer did not report it.
type ScoreInput struct {
	AskPrice         *float64
	PriceMedian      *float64
	MileageMedian    *float64
	MileageStd       *float64
	Miles            *float64
	TCOYear          *float64
	Title            dto.TitleStatus
	Accidents        *int
	Owners           *int
	Location         string
	VehicleAge       *float64
	RarityIndex      *float64
	OptionsValue     *float64
	DaysOnMarket     *int
	DealerReputation *float64
}

const defaultVehicleAge = 5.0

// ScoreComponents computes all factor scores. grounded reports which factors
// were computed from real input rather than a default.
func ScoreComponents(in ScoreInput, marketPolicy string) (ComponentScores, map[Factor]bool) {
	scores := make(ComponentScores, len(Factors))
	grounded := make(map[Factor]bool, len(Factors))

	set := func(f Factor, v float64, ok bool) {
		scores[f] = clip(v, scoreMin, scoreMax)
		grounded[f] = ok
	}

	v, ok := MarketScore(in.AskPrice, in.PriceMedian, marketPolicy)
	set(FactorMarket, v, ok)
	v, ok = MileageScore(in.Miles, in.MileageMedian, in.MileageStd)
	set(FactorMileage, v, ok)
	v, ok = TCOScore(in.TCOYear, in.AskPrice)
	set(FactorTCO, v, ok)
	v, ok = TitleScore(in.Title)
	set(FactorTitle, v, ok)
	v, ok = AccidentsScore(in.Accidents)
	set(FactorAccidents, v, ok)
	v, ok = OwnersScore(in.Owners)
	set(FactorOwners, v, ok)
	v, ok = RustScore(in.Location, in.VehicleAge)
	set(FactorRust, v, ok)
	v, ok = RarityScore(in.RarityIndex)
	set(FactorRarity, v, ok)
	v, ok = OptionsScore(in.OptionsValue)
	set(FactorOptions, v, ok)
	v, ok = DOMScore(in.DaysOnMarket)
	set(FactorDOM, v, ok)

	if finite(in.DealerReputation) {
		set(FactorDealerReputation, *in.DealerReputation, true)
	} else {
		grounded[FactorDealerReputation] = false
	}

	return scores, grounded
}

// MarketScore penalizes deviation of the ask from the comparable median.
// The asymmetric policy halves the penalty for under-priced listings.
func MarketScore(ask, median *float64, policy string) (float64, bool) {
	if !positive(ask) || !positive(median) {
		return 50, false
	}
	dev := 100 * (*ask - *median) / *median
	k := 2.0
	if policy == MarketAsymmetric && dev < 0 {
		k = 1.0
	}
	return clip(100-k*math.Abs(dev), scoreMin, scoreMax), true
}

func MileageScore(miles, median, std *float64) (float64, bool) {
	if !finite(miles) || !finite(median) || !positive(std) {
		return 50, false
	}
	z := (*miles - *median) / *std
	return clip(100-15*math.Abs(z), scoreMin, scoreMax), true
}

// TCOScore compares annual running cost to the asking price. Up to 10% of
// the price per year is free of penalty. A zero or negative cost is not a
// real figure and leaves the factor ungrounded.
func TCOScore(tco, ask *float64) (float64, bool) {
	if !positive(tco) || !positive(ask) {
		return 50, false
	}
	ratio := 100 * *tco / *ask
	if ratio <= 10 {
		return 100, true
	}
	return clip(100-5*(ratio-10), scoreMin, scoreMax), true
}

var titleScores = map[dto.TitleStatus]float64{
	dto.TitleClean:   100,
	dto.TitleRebuilt: 70,
	dto.TitleSalvage: 50,
	dto.TitleUnknown: 80,
	dto.TitleBranded: 50,
	dto.TitleFlood:   40,
	dto.TitleLemon:   40,
}

func TitleScore(t dto.TitleStatus) (float64, bool) {
	if v, ok := titleScores[t]; ok {
		return v, true
	}
	return titleScores[dto.TitleUnknown], false
}

func AccidentsScore(n *int) (float64, bool) {
	if n == nil {
		return 85, false
	}
	return clip(100-10*float64(max(0, *n)), scoreMin, scoreMax), true
}

func OwnersScore(n *int) (float64, bool) {
	if n == nil {
		return 85, false
	}
	return clip(100-8*float64(max(0, *n-1)), scoreMin, scoreMax), true
}

// RustScore discounts older cars registered in road-salt states.
func RustScore(location string, age *float64) (float64, bool) {
	inBelt, known := locateRegion(location)
	if !known {
		return 100, false
	}
	if !inBelt {
		return 100, true
	}
	years := defaultVehicleAge
	if finite(age) && *age >= 0 {
		years = *age
	}
	return 100 - math.Min(40, 4*years), true
}

func RarityScore(r *float64) (float64, bool) {
	if !finite(r) {
		return 50, false
	}
	return 50 + clip(*r, 0, 1)*50, true
}

// OptionsScore saturates toward 100 as the value of factory options grows.
func OptionsScore(value *float64) (float64, bool) {
	if !finite(value) {
		return 50, false
	}
	return 50 + 50*(1-math.Exp(-math.Max(0, *value)/5000)), true
}

func DOMScore(days *int) (float64, bool) {
	if days == nil {
		return 75, false
	}
	switch d := *days; {
	case d <= 30:
		return 100, true
	case d <= 60:
		return 85, true
	case d <= 90:
		return 70, true
	case d <= 180:
		return 55, true
	default:
		return 40, true
	}
}

func positive(v *float64) bool {
	return finite(v) && *v > 0
}
