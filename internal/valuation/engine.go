package valuation

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"deal-checker/config"
	"deal-checker/internal/dto"
	"deal-checker/internal/model"
	"deal-checker/pkg/logger"
)

// HistoryStore is the append-only log of finished valuations the engine
// stabilizes against.
type HistoryStore interface {
	Load(ctx context.Context) ([]model.HistoryRecord, error)
	Append(ctx context.Context, record *model.HistoryRecord) error
}

// Result is the engine output for one listing.
type Result struct {
	UniqueAdID        string          `json:"unique_ad_id"`
	DealScore         float64         `json:"deal_score"`
	Components        ComponentScores `json:"deal_score_components"`
	Weights           WeightSet       `json:"deal_score_weights"`
	ROI               ROIForecast     `json:"roi_forecast_24m"`
	Stabilization     Stabilization   `json:"stabilization"`
	CeilingApplied    bool            `json:"ceiling_applied"`
	ProducerDealScore *float64        `json:"producer_deal_score"`
	ProducerROI       *float64        `json:"producer_roi_24m"`
	TitleStatus       dto.TitleStatus `json:"title_status,omitempty"`
	Classification    string          `json:"classification"`
	Persisted         bool            `json:"persisted"`
	EvaluatedAt       time.Time       `json:"evaluated_at"`
}

// DefaultEngineConfig returns the engine tunables used when none are
// configured.
func DefaultEngineConfig() config.Engine {
	return config.Engine{
		MarketPolicy:           MarketSymmetric,
		MinGroundedFactors:     3,
		HoldYears:              2,
		SaleFrictionPct:        2,
		PriceFloorUSD:          1000,
		DefaultDepreciationPct: 15,
		DefaultTCOYearUSD:      4500,
		SimilarityThreshold:    0.85,
		SimilarTopK:            5,
		TitleScoreCeiling:      75,
		TitleScorePenalty:      5,
		TitleROIPenalty:        15,
	}
}

// Engine runs the valuation pipeline. It performs no I/O of its own; the
// store is the only collaborator that does.
type Engine struct {
	cfg   config.Engine
	store HistoryStore
	norm  *Normalizer
	log   *logger.Logger

	// mu serializes load, stabilize and append so each evaluation sees the
	// records written by the previous one.
	mu  sync.Mutex
	now func() time.Time
}

func NewEngine(cfg config.Engine, store HistoryStore, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{
		cfg:   withDefaults(cfg),
		store: store,
		norm:  NewNormalizer(log),
		log:   log,
		now:   time.Now,
	}
}

// Evaluate scores one listing. It never fails: missing or malformed producer
// data falls back to defaults, and history errors are logged. Persisted in
// the result reports whether the record reached the store.
func (e *Engine) Evaluate(ctx context.Context, listing dto.Listing, raw *dto.RawAssessment) *Result {
	if raw == nil {
		raw = &dto.RawAssessment{}
	}
	now := e.now()
	facts := raw.VehicleFacts

	ask := askPrice(raw, listing)
	location := facts.StateOrZip
	if location == "" {
		location = listing.Location
	}

	var priceMedian, mileageMedian, mileageStd *float64
	if raw.PriceStats != nil {
		priceMedian = raw.PriceStats.Median
	}
	if raw.MileageStats != nil {
		mileageMedian = raw.MileageStats.Median
		mileageStd = raw.MileageStats.Std
	}

	scores, grounded := ScoreComponents(ScoreInput{
		AskPrice:         ask,
		PriceMedian:      priceMedian,
		MileageMedian:    mileageMedian,
		MileageStd:       mileageStd,
		Miles:            facts.Miles,
		TCOYear:          raw.TCOYearUSD,
		Title:            facts.TitleStatus,
		Accidents:        facts.Accidents,
		Owners:           facts.Owners,
		Location:         location,
		VehicleAge:       vehicleAge(facts.Year, listing.Year, now),
		RarityIndex:      facts.RarityIndex,
		OptionsValue:     facts.OptionsValueUSD,
		DaysOnMarket:     facts.DaysOnMarket,
		DealerReputation: facts.DealerReputation,
	}, e.cfg.MarketPolicy)

	excluded := make(map[Factor]bool, len(Factors))
	for _, name := range raw.MissingFactors {
		if f, ok := ParseFactor(name); ok {
			excluded[f] = true
		}
	}
	groundedCount := 0
	for _, f := range Factors {
		if !grounded[f] {
			excluded[f] = true
		}
		if !excluded[f] {
			groundedCount++
		}
	}

	weights := ResolveWeights(raw.Weights, excluded)
	current := Aggregate(scores, weights, raw.AdjHint)

	var producerScore *float64
	if raw.DealScore != nil {
		v := e.norm.Score(ctx, "deal_score", raw.DealScore)
		producerScore = &v
		if groundedCount < e.cfg.MinGroundedFactors {
			e.log.InfoContext(ctx, "thin evidence, using producer score",
				logger.IntField("grounded", groundedCount),
				logger.Float64Field("producer_score", v),
			)
			current = v
		}
	}

	var producerROI *float64
	if raw.ROIForecast24m != nil && raw.ROIForecast24m.Expected != nil {
		v := e.norm.ROI(ctx, "roi_forecast_24m.expected", raw.ROIForecast24m.Expected)
		producerROI = &v
	}

	roi := ForecastROI(ROIInput{
		AskPrice:        ask,
		DepreciationPct: raw.DepreciationPctPerYear,
		TCOYear:         raw.TCOYearUSD,
		Trend24mPct:     raw.MarketTrend24mPct,
		MileageMedian:   mileageMedian,
		Miles:           facts.Miles,
		Title:           facts.TitleStatus,
		Accidents:       facts.Accidents,
	}, e.cfg)

	id := UniqueAdID(listing)
	price := 0.0
	if ask != nil {
		price = *ask
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var history []model.HistoryRecord
	if e.store != nil {
		h, err := e.store.Load(ctx)
		if err != nil {
			e.log.WarnContext(ctx, "failed to load history, stabilizing against empty history", logger.ErrorField(err))
		} else {
			history = h
		}
	}

	st := stabilize(stabilizeInput{
		id:    id,
		fp:    newFingerprint(listing.Description, price, location),
		score: current,
		roi:   roi,
		title: facts.TitleStatus,
	}, history, e.cfg)

	res := &Result{
		UniqueAdID:        id,
		DealScore:         round2(st.score),
		Components:        roundScores(scores),
		Weights:           weights,
		ROI:               roundROI(st.roi),
		Stabilization:     st.info,
		CeilingApplied:    st.ceilingApplied,
		ProducerDealScore: producerScore,
		ProducerROI:       producerROI,
		TitleStatus:       facts.TitleStatus,
		EvaluatedAt:       now,
	}
	res.Classification = Classify(res.DealScore, res.CeilingApplied)

	if e.store != nil {
		record := newHistoryRecord(res, listing, price, location, facts.Miles, now)
		if err := e.store.Append(ctx, record); err != nil {
			e.log.ErrorContext(ctx, "failed to append history record",
				logger.StringField("unique_ad_id", id),
				logger.ErrorField(err),
			)
		} else {
			res.Persisted = true
		}
	}

	e.log.InfoContext(ctx, "deal evaluated",
		logger.StringField("unique_ad_id", id),
		logger.Float64Field("deal_score", res.DealScore),
		logger.Float64Field("roi_expected", res.ROI.Expected),
		logger.StringField("case", string(res.Stabilization.Case)),
		logger.BoolField("ceiling_applied", res.CeilingApplied),
	)
	return res
}

// Classify labels a final score. A title ceiling always reads as high risk.
func Classify(score float64, ceilingApplied bool) string {
	switch {
	case ceilingApplied:
		return dto.ClassHighRisk
	case score >= 80:
		return dto.ClassGreatDeal
	case score >= 60:
		return dto.ClassFair
	default:
		return dto.ClassOverpriced
	}
}

func askPrice(raw *dto.RawAssessment, l dto.Listing) *float64 {
	if positive(raw.AskPriceUSD) {
		return raw.AskPriceUSD
	}
	if l.PriceUSD > 0 {
		v := l.PriceUSD
		return &v
	}
	return raw.AskPriceUSD
}

func vehicleAge(factsYear *int, listingYear int, now time.Time) *float64 {
	year := listingYear
	if factsYear != nil && *factsYear > 0 {
		year = *factsYear
	}
	if year <= 0 {
		return nil
	}
	age := float64(max(0, now.Year()-year))
	return &age
}

func roundScores(s ComponentScores) ComponentScores {
	out := make(ComponentScores, len(s))
	for f, v := range s {
		out[f] = round2(v)
	}
	return out
}

func roundROI(r ROIForecast) ROIForecast {
	return ROIForecast{
		Expected:    round2(r.Expected),
		Optimistic:  round2(r.Optimistic),
		Pessimistic: round2(r.Pessimistic),
		Confidence:  round2(r.Confidence),
	}
}

func newHistoryRecord(res *Result, l dto.Listing, price float64, location string, miles *float64, now time.Time) *model.HistoryRecord {
	components, _ := json.Marshal(res.Components)
	weights, _ := json.Marshal(res.Weights)
	record := &model.HistoryRecord{
		ID:             uuid.NewString(),
		UniqueAdID:     res.UniqueAdID,
		Timestamp:      now,
		VIN:            NormalizeVIN(l.VIN),
		Description:    l.Description,
		PriceUSD:       price,
		Location:       location,
		SellerType:     l.SellerType,
		Brand:          l.Brand,
		VehicleModel:   l.Model,
		Year:           l.Year,
		TitleStatus:    string(res.TitleStatus),
		DealScore:      res.DealScore,
		Classification: res.Classification,
		ROIExpected:    res.ROI.Expected,
		ROIOptimistic:  res.ROI.Optimistic,
		ROIPessimistic: res.ROI.Pessimistic,
		ROIConfidence:  res.ROI.Confidence,
		Components:     datatypes.JSON(components),
		Weights:        datatypes.JSON(weights),
	}
	if finite(miles) {
		record.Miles = *miles
	}
	return record
}

func withDefaults(cfg config.Engine) config.Engine {
	def := DefaultEngineConfig()
	if cfg.MarketPolicy == "" {
		cfg.MarketPolicy = def.MarketPolicy
	}
	if cfg.MinGroundedFactors <= 0 {
		cfg.MinGroundedFactors = def.MinGroundedFactors
	}
	if cfg.HoldYears <= 0 {
		cfg.HoldYears = def.HoldYears
	}
	if cfg.SaleFrictionPct < 0 {
		cfg.SaleFrictionPct = def.SaleFrictionPct
	}
	if cfg.PriceFloorUSD <= 0 {
		cfg.PriceFloorUSD = def.PriceFloorUSD
	}
	if cfg.DefaultDepreciationPct <= 0 {
		cfg.DefaultDepreciationPct = def.DefaultDepreciationPct
	}
	if cfg.DefaultTCOYearUSD <= 0 {
		cfg.DefaultTCOYearUSD = def.DefaultTCOYearUSD
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = def.SimilarityThreshold
	}
	if cfg.SimilarTopK <= 0 {
		cfg.SimilarTopK = def.SimilarTopK
	}
	if cfg.TitleScoreCeiling <= 0 || cfg.TitleScoreCeiling > def.TitleScoreCeiling {
		cfg.TitleScoreCeiling = def.TitleScoreCeiling
	}
	if cfg.TitleScorePenalty < 0 {
		cfg.TitleScorePenalty = def.TitleScorePenalty
	}
	if cfg.TitleROIPenalty < 0 {
		cfg.TitleROIPenalty = def.TitleROIPenalty
	}
	return cfg
}
