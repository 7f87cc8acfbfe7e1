package dto

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// RawAssessment is the producer's view of one listing. Every field is
// optional and none of the numbers are trusted.
type RawAssessment struct {
	DealScore              *float64           `json:"deal_score,omitempty"`
	ROIForecast24m         *RawROIForecast    `json:"roi_forecast_24m,omitempty"`
	PriceStats             *PriceStats        `json:"price_stats,omitempty"`
	MileageStats           *MileageStats      `json:"mileage_stats,omitempty"`
	TCOYearUSD             *float64           `json:"tco_year_usd,omitempty"`
	MarketTrend24mPct      *float64           `json:"market_trend_24m_pct,omitempty"`
	DepreciationPctPerYear *float64           `json:"depreciation_brand_pct_per_year,omitempty"`
	VehicleFacts           VehicleFacts       `json:"vehicle_facts"`
	Weights                map[string]float64 `json:"weights,omitempty"`
	MissingFactors         []string           `json:"missing_factors,omitempty"`
	AdjHint                AdjHint            `json:"deal_score_llm_adj_hint,omitempty"`
	AskPriceUSD            *float64           `json:"ask_price_usd,omitempty"`
}

type RawROIForecast struct {
	Expected    *float64 `json:"expected,omitempty"`
	Optimistic  *float64 `json:"optimistic,omitempty"`
	Pessimistic *float64 `json:"pessimistic,omitempty"`
}

type PriceStats struct {
	Median *float64 `json:"median,omitempty"`
	P25    *float64 `json:"p25,omitempty"`
	P75    *float64 `json:"p75,omitempty"`
}

type MileageStats struct {
	Median *float64 `json:"median,omitempty"`
	Std    *float64 `json:"std,omitempty"`
}

type VehicleFacts struct {
	TitleStatus      TitleStatus `json:"title_status,omitempty"`
	Accidents        *int        `json:"accidents,omitempty"`
	Owners           *int        `json:"owners,omitempty"`
	Miles            *float64    `json:"miles,omitempty"`
	StateOrZip       string      `json:"state_or_zip,omitempty"`
	RarityIndex      *float64    `json:"rarity_index,omitempty"`
	OptionsValueUSD  *float64    `json:"options_value_usd,omitempty"`
	DaysOnMarket     *int        `json:"days_on_market,omitempty"`
	DealerReputation *float64    `json:"dealer_reputation,omitempty"`
	Year             *int        `json:"year,omitempty"`
}

// ParseRawAssessment decodes producer text into a RawAssessment. Markdown
// fences and prose around the JSON object are tolerated, and numbers may come
// as JSON numbers or as strings such as "$12,500" or "85%". Fields that cannot
// be read are left nil. Only text without any JSON object is an error.
func ParseRawAssessment(text string) (*RawAssessment, error) {
	body := extractJSONObject(text)
	if body == "" || !gjson.Valid(body) {
		return nil, fmt.Errorf("no json object in producer output")
	}
	root := gjson.Parse(body)

	ra := &RawAssessment{
		DealScore:              number(root.Get("deal_score")),
		TCOYearUSD:             number(root.Get("tco_year_usd")),
		MarketTrend24mPct:      number(root.Get("market_trend_24m_pct")),
		DepreciationPctPerYear: number(root.Get("depreciation_brand_pct_per_year")),
		AskPriceUSD:            number(root.Get("ask_price_usd")),
		AdjHint:                ParseAdjHint(root.Get("deal_score_llm_adj_hint").String()),
	}

	if roi := root.Get("roi_forecast_24m"); roi.IsObject() {
		ra.ROIForecast24m = &RawROIForecast{
			Expected:    number(roi.Get("expected")),
			Optimistic:  number(roi.Get("optimistic")),
			Pessimistic: number(roi.Get("pessimistic")),
		}
	}
	if ps := root.Get("price_stats"); ps.IsObject() {
		ra.PriceStats = &PriceStats{
			Median: number(ps.Get("median")),
			P25:    number(ps.Get("p25")),
			P75:    number(ps.Get("p75")),
		}
	}
	if ms := root.Get("mileage_stats"); ms.IsObject() {
		ra.MileageStats = &MileageStats{
			Median: number(ms.Get("median")),
			Std:    number(ms.Get("std")),
		}
	}

	facts := root.Get("vehicle_facts")
	ra.VehicleFacts = VehicleFacts{
		TitleStatus:      ParseTitleStatus(facts.Get("title_status").String()),
		Accidents:        count(facts.Get("accidents")),
		Owners:           count(facts.Get("owners")),
		Miles:            number(facts.Get("miles")),
		StateOrZip:       strings.TrimSpace(facts.Get("state_or_zip").String()),
		RarityIndex:      number(facts.Get("rarity_index")),
		OptionsValueUSD:  number(facts.Get("options_value_usd")),
		DaysOnMarket:     count(facts.Get("days_on_market")),
		DealerReputation: number(facts.Get("dealer_reputation")),
		Year:             count(facts.Get("year")),
	}

	if w := root.Get("weights"); w.IsObject() {
		ra.Weights = make(map[string]float64)
		w.ForEach(func(key, value gjson.Result) bool {
			if v := number(value); v != nil {
				ra.Weights[key.String()] = *v
			}
			return true
		})
	}

	for _, f := range root.Get("missing_factors").Array() {
		if name := strings.TrimSpace(f.String()); name != "" {
			ra.MissingFactors = append(ra.MissingFactors, name)
		}
	}

	return ra, nil
}

func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

var numberCleaner = strings.NewReplacer("$", "", ",", "", "%", "", "usd", "", "USD", "", " ", "", "\u00a0", "")

func number(r gjson.Result) *float64 {
	switch r.Type {
	case gjson.Number:
		v := r.Float()
		return &v
	case gjson.String:
		s := numberCleaner.Replace(strings.TrimSpace(r.Str))
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &v
	}
	return nil
}

// maxCount bounds accidents, owners, days on market and similar tallies.
// Anything larger is producer noise.
const maxCount = 1e6

func count(r gjson.Result) *int {
	v := number(r)
	if v == nil || math.IsNaN(*v) || *v < 0 || *v > maxCount {
		return nil
	}
	n := int(math.Round(*v))
	return &n
}
