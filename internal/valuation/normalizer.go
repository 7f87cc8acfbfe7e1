package valuation

import (
	"context"
	"math"
	"strconv"

	"deal-checker/pkg/logger"
)

const (
	scoreMin = 0.0
	scoreMax = 100.0
	roiMin   = -80.0
	roiMax   = 60.0

	missingScore  = 50.0
	overflowScore = 90.0
)

// Normalizer repairs producer numbers that arrive on the wrong scale and logs
// every correction it makes.
type Normalizer struct {
	log *logger.Logger
}

func NewNormalizer(log *logger.Logger) *Normalizer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Normalizer{log: log}
}

// Score returns NormalizeScore(v) and logs the rule that fired, if any.
func (n *Normalizer) Score(ctx context.Context, field string, v *float64) float64 {
	out, rule := normalizeScore(v)
	if rule != "" {
		n.log.InfoContext(ctx, "normalized score",
			logger.StringField("field", field),
			logger.StringField("raw", rawString(v)),
			logger.Float64Field("normalized", out),
			logger.StringField("rule", rule),
		)
	}
	return out
}

// ROI returns NormalizeROI(v) and logs the rule that fired, if any.
func (n *Normalizer) ROI(ctx context.Context, field string, v *float64) float64 {
	out, rule := normalizeROI(v)
	if rule != "" {
		n.log.InfoContext(ctx, "normalized roi",
			logger.StringField("field", field),
			logger.StringField("raw", rawString(v)),
			logger.Float64Field("normalized", out),
			logger.StringField("rule", rule),
		)
	}
	return out
}

// NormalizeScore maps any producer score onto [0,100]. Values that look like
// they were given on a 0-10 or 0-1000 scale are rescaled. The result is
// a fixed point: NormalizeScore(NormalizeScore(x)) == NormalizeScore(x).
func NormalizeScore(v *float64) float64 {
	out, _ := normalizeScore(v)
	return out
}

// NormalizeROI maps a producer ROI percentage onto [-80,60]. Values above 200
// in magnitude are taken to be in basis points.
func NormalizeROI(v *float64) float64 {
	out, _ := normalizeROI(v)
	return out
}

func normalizeScore(v *float64) (float64, string) {
	if !finite(v) {
		return missingScore, "missing"
	}
	x := *v
	rule := ""
	switch {
	case x > 1000:
		return overflowScore, "overflow"
	case x >= 300:
		x, rule = x/10, "scale_1000"
	case x > 0 && x <= 10:
		x, rule = x*10, "scale_10"
	}
	if rule != "" && x <= 10 {
		x, rule = 0, rule+"_floor"
	}
	out := clip(x, scoreMin, scoreMax)
	if rule == "" && out != x {
		rule = "clip"
	}
	return out, rule
}

func normalizeROI(v *float64) (float64, string) {
	if !finite(v) {
		return 0, "missing"
	}
	x := *v
	rule := ""
	if math.Abs(x) > 200 {
		x, rule = x/100, "scale_100"
	}
	out := clip(x, roiMin, roiMax)
	if rule == "" && out != x {
		rule = "clip"
	}
	return out, rule
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func rawString(v *float64) string {
	if v == nil {
		return "null"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
