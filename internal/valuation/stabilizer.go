package valuation

import (
	"deal-checker/config"
	"deal-checker/internal/dto"
	"deal-checker/internal/model"
)

type StabilizationCase string

const (
	CaseExactAndSimilar StabilizationCase = "exact_and_similar"
	CaseExact           StabilizationCase = "exact"
	CaseSimilar         StabilizationCase = "similar"
	CaseNone            StabilizationCase = "none"
)

// blend holds the share of the current, exact-match and similar-average
// values in the stabilized result. Each row sums to 1.
type blend struct {
	current, exact, similar float64
}

var blendTable = map[StabilizationCase]blend{
	CaseExactAndSimilar: {current: 0.80, exact: 0.15, similar: 0.05},
	CaseExact:           {current: 0.75, exact: 0.25},
	CaseSimilar:         {current: 0.90, similar: 0.10},
	CaseNone:            {current: 1},
}

// Stabilization describes which prior results pulled the current one.
type Stabilization struct {
	Case         StabilizationCase `json:"case"`
	ExactScore   *float64          `json:"exact_score,omitempty"`
	SimilarAvg   *float64          `json:"similar_avg,omitempty"`
	SimilarCount int               `json:"similar_count"`
}

// stabilizeInput is the current result plus what is needed to look it up
// in history.
type stabilizeInput struct {
	id    string
	fp    fingerprint
	score float64
	roi   ROIForecast
	title dto.TitleStatus
}

type stabilized struct {
	score          float64
	roi            ROIForecast
	info           Stabilization
	ceilingApplied bool
}

// stabilize blends the current score and ROI with prior results for the same
// and similar listings, then applies the branded-title ceiling.
func stabilize(in stabilizeInput, history []model.HistoryRecord, cfg config.Engine) stabilized {
	exact, hasExact := latestExact(in.id, history)
	similar := findSimilar(in.fp, in.id, history, cfg.SimilarityThreshold, cfg.SimilarTopK)

	var simScore, simROI float64
	if len(similar) > 0 {
		simScore, simROI = similarAverages(similar)
	}

	c := CaseNone
	switch {
	case hasExact && len(similar) > 0:
		c = CaseExactAndSimilar
	case hasExact:
		c = CaseExact
	case len(similar) > 0:
		c = CaseSimilar
	}
	b := blendTable[c]

	out := stabilized{
		score: b.current*in.score + b.exact*exact.DealScore + b.similar*simScore,
		info:  Stabilization{Case: c, SimilarCount: len(similar)},
	}
	if hasExact {
		v := exact.DealScore
		out.info.ExactScore = &v
	}
	if len(similar) > 0 {
		v := round2(simScore)
		out.info.SimilarAvg = &v
	}

	expected := b.current*in.roi.Expected + b.exact*exact.ROIExpected + b.similar*simROI
	out.roi = shiftROI(in.roi, expected-in.roi.Expected)

	if in.title.IsBranded() {
		out.score = clip(min(out.score, cfg.TitleScoreCeiling)-cfg.TitleScorePenalty, scoreMin, scoreMax)
		out.roi = shiftROI(out.roi, -cfg.TitleROIPenalty)
		out.ceilingApplied = true
	}
	out.score = clip(out.score, scoreMin, scoreMax)
	return out
}

// shiftROI moves every leg by delta and re-clips.
func shiftROI(r ROIForecast, delta float64) ROIForecast {
	return ROIForecast{
		Expected:    clip(r.Expected+delta, roiMin, roiMax),
		Optimistic:  clip(r.Optimistic+delta, roiMin, roiMax),
		Pessimistic: clip(r.Pessimistic+delta, roiMin, roiMax),
		Confidence:  r.Confidence,
	}
}
