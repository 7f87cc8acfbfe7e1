package service

import (
	"context"
	"fmt"
	"time"

	"deal-checker/config"
	"deal-checker/internal/dto"
	"deal-checker/internal/model"
	"deal-checker/internal/repository"
	"deal-checker/internal/valuation"
	"deal-checker/pkg/logger"
	"deal-checker/pkg/utils"
)

// Where the assessment fed to the engine came from.
const (
	SourceProvided  = "provided"
	SourceProducer  = "producer"
	SourceHeuristic = "heuristic"
)

const defaultHistoryLimit = 50

type DealResult struct {
	*valuation.Result
	AssessmentSource string `json:"assessment_source"`
	HistoricalNote   string `json:"historical_note,omitempty"`
}

type DealService interface {
	// Evaluate scores a listing against an assessment the caller already has.
	// Unparseable assessment text falls back to the keyword heuristic.
	Evaluate(ctx context.Context, listing dto.Listing, assessment string) (*DealResult, error)
	// Analyze asks the producer for an assessment first.
	Analyze(ctx context.Context, listing dto.Listing) (*DealResult, error)
	History(ctx context.Context, limit int) ([]model.HistoryRecord, error)
}

type dealService struct {
	cfg         *config.Config
	log         *logger.Logger
	engine      *valuation.Engine
	historyRepo repository.HistoryRepository
	producer    repository.AssessmentRepository
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewDealService(
	cfg *config.Config,
	log *logger.Logger,
	engine *valuation.Engine,
	historyRepo repository.HistoryRepository,
	producer repository.AssessmentRepository,
) *dealService {
	return &dealService{
		cfg:         cfg,
		log:         log,
		engine:      engine,
		historyRepo: historyRepo,
		producer:    producer,
		sleep:       sleepContext,
	}
}

func (s *dealService) Evaluate(ctx context.Context, listing dto.Listing, assessment string) (*DealResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	listing = prepareListing(listing)

	source := SourceProvided
	raw, err := dto.ParseRawAssessment(assessment)
	if err != nil {
		s.log.WarnContext(ctx, "Assessment is not readable, using heuristic", logger.ErrorField(err))
		raw = FallbackAssessment(listing)
		source = SourceHeuristic
	}

	res := s.engine.Evaluate(ctx, listing, raw)
	return &DealResult{Result: res, AssessmentSource: source}, nil
}

func (s *dealService) Analyze(ctx context.Context, listing dto.Listing) (*DealResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	listing = prepareListing(listing)

	raw, source, note := s.assess(ctx, listing)
	res := s.engine.Evaluate(ctx, listing, raw)
	return &DealResult{Result: res, AssessmentSource: source, HistoricalNote: note}, nil
}

// assess asks the producer with retries and falls back to the heuristic
// when it is missing or keeps failing.
func (s *dealService) assess(ctx context.Context, listing dto.Listing) (*dto.RawAssessment, string, string) {
	note := s.historicalNote(ctx, listing)
	if s.producer == nil {
		return FallbackAssessment(listing), SourceHeuristic, note
	}

	req := dto.ProducerRequest{Listing: listing, HistoricalNote: note}
	attempts := max(1, s.cfg.Gemini.MaxRetries+1)
	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := s.producer.Assess(ctx, req)
		if err == nil {
			return raw, SourceProducer, note
		}
		s.log.WarnContext(ctx, "Producer assessment failed",
			logger.IntField("attempt", attempt),
			logger.IntField("max_attempts", attempts),
			logger.ErrorField(err),
		)
		if attempt == attempts {
			break
		}
		if err := s.sleep(ctx, s.cfg.Gemini.RetryBackoff*time.Duration(attempt)); err != nil {
			break
		}
	}

	s.log.WarnContext(ctx, "Falling back to heuristic assessment")
	return FallbackAssessment(listing), SourceHeuristic, note
}

func (s *dealService) historicalNote(ctx context.Context, listing dto.Listing) string {
	if listing.Brand == "" || listing.Model == "" {
		return ""
	}
	history, err := s.historyRepo.Load(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to load history for consistency note", logger.ErrorField(err))
		return ""
	}
	note, ok := ConsistencyNote(history, listing.Brand, listing.Model)
	if !ok {
		return ""
	}
	s.log.InfoContext(ctx, "Prior scores disagree, adding historical note",
		logger.StringField("brand", listing.Brand),
		logger.StringField("model", listing.Model),
	)
	return note
}

func (s *dealService) History(ctx context.Context, limit int) ([]model.HistoryRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	records, err := s.historyRepo.Latest(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return records, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Summary is the one-line form of a result used by the CLI.
func (r *DealResult) Summary() string {
	return fmt.Sprintf("%s score=%.2f class=%q roi=%.2f%% at %s",
		r.UniqueAdID, r.DealScore, r.Classification, r.ROI.Expected, utils.PrettyDate(r.EvaluatedAt))
}
