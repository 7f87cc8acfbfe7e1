package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"deal-checker/internal/dto"
	"deal-checker/pkg/logger"
	"deal-checker/pkg/utils"
)

const defaultBatchConcurrency = 4

type BatchService interface {
	// AnalyzeBatch assesses listings concurrently but feeds the engine in
	// input order, so stabilization of later listings sees earlier ones.
	AnalyzeBatch(ctx context.Context, listings []dto.Listing, concurrency int) ([]*DealResult, error)
}

type batchService struct {
	log   *logger.Logger
	deals *dealService
}

func NewBatchService(log *logger.Logger, deals *dealService) *batchService {
	return &batchService{log: log, deals: deals}
}

type assessed struct {
	raw    *dto.RawAssessment
	source string
	note   string
}

func (b *batchService) AnalyzeBatch(ctx context.Context, listings []dto.Listing, concurrency int) ([]*DealResult, error) {
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}
	prepared := make([]dto.Listing, len(listings))
	for i, l := range listings {
		prepared[i] = prepareListing(l)
	}

	b.log.InfoContext(ctx, "Start batch assessment",
		logger.IntField("listings", len(prepared)),
		logger.IntField("concurrency", concurrency),
	)

	out := make([]assessed, len(prepared))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range prepared {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			raw, source, note := b.deals.assess(gctx, prepared[i])
			out[i] = assessed{raw: raw, source: source, note: note}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch assessment cancelled: %w", err)
	}

	results := make([]*DealResult, 0, len(prepared))
	for i, l := range prepared {
		if !utils.ShouldContinue(ctx, b.log) {
			return results, ctx.Err()
		}
		res := b.deals.engine.Evaluate(ctx, l, out[i].raw)
		results = append(results, &DealResult{
			Result:           res,
			AssessmentSource: out[i].source,
			HistoricalNote:   out[i].note,
		})
	}
	return results, nil
}
