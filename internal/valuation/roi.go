package valuation

import (
	"math"

	"deal-checker/config"
	"deal-checker/internal/dto"
)

// ROIForecast is the 24-month return on a purchase, in percent.
type ROIForecast struct {
	Expected    float64 `json:"expected"`
	Optimistic  float64 `json:"optimistic"`
	Pessimistic float64 `json:"pessimistic"`
	Confidence  float64 `json:"confidence"`
}

type ROIInput struct {
	AskPrice        *float64
	DepreciationPct *float64
	TCOYear         *float64
	Trend24mPct     *float64
	MileageMedian   *float64
	Miles           *float64
	Title           dto.TitleStatus
	Accidents       *int
}

const (
	baseUncertainty      = 0.3
	uncertaintyPerGap    = 0.05
	maxUncertainty       = 0.6
	degenerateConfidence = 0.5
	milesPerPenaltyStep  = 2000.0
)

// ForecastROI projects the exit value after the holding period from an
// effective depreciation rate, then subtracts purchase and running costs.
// Asks at or below the price floor yield a flat forecast.
func ForecastROI(in ROIInput, cfg config.Engine) ROIForecast {
	if !finite(in.AskPrice) || *in.AskPrice <= cfg.PriceFloorUSD {
		return ROIForecast{Confidence: degenerateConfidence}
	}
	ask := *in.AskPrice
	missing := 0

	dep := cfg.DefaultDepreciationPct
	if positive(in.DepreciationPct) {
		dep = *in.DepreciationPct
		if dep < 1 {
			dep *= 100
		}
	} else {
		missing++
	}

	tco := cfg.DefaultTCOYearUSD
	if positive(in.TCOYear) {
		tco = *in.TCOYear
	} else {
		missing++
	}

	trend := 0.0
	if finite(in.Trend24mPct) {
		trend = *in.Trend24mPct / 2
	} else {
		missing++
	}

	mileagePenalty := 0.0
	if !finite(in.MileageMedian) {
		missing++
	}
	if !finite(in.Miles) {
		missing++
	}
	if finite(in.MileageMedian) && finite(in.Miles) {
		mileagePenalty = 0.5 * (*in.Miles - *in.MileageMedian) / milesPerPenaltyStep
	}

	if in.Title == "" || in.Title == dto.TitleUnknown {
		missing++
	}

	depEff := clip(dep+mileagePenalty+ownershipPenalty(in.Title, in.Accidents)-trend, 2, 25) / 100
	exit := ask * math.Pow(1-depEff, cfg.HoldYears) * (1 - cfg.SaleFrictionPct/100)
	expected := clip(100*(exit-(ask+tco*cfg.HoldYears))/ask, roiMin, roiMax)

	u := math.Min(baseUncertainty+uncertaintyPerGap*float64(missing), maxUncertainty)
	up := clip(expected*(1+u*0.5), roiMin, roiMax)
	down := clip(expected*(1-u), roiMin, roiMax)
	// For a loss the widened band is the worse leg, so label by value.
	return ROIForecast{
		Expected:    expected,
		Optimistic:  math.Max(up, down),
		Pessimistic: math.Min(up, down),
		Confidence:  1 - u,
	}
}

// ownershipPenalty adds depreciation points for damage history.
func ownershipPenalty(title dto.TitleStatus, accidents *int) float64 {
	penalty := 0.0
	switch title {
	case dto.TitleRebuilt:
		penalty += 5
	case dto.TitleSalvage, dto.TitleBranded, dto.TitleFlood, dto.TitleLemon:
		penalty += 10
	}
	if accidents != nil && *accidents >= 2 {
		penalty += 2
	}
	return penalty
}
