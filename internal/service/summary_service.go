package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tarjetero/tarjetero-api/internal/domain"
	"github.com/tarjetero/tarjetero-api/internal/engine"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ============================================================
// Statement summaries
// ============================================================

// CardSummary computes the statement summary for one card as of the given
// date. Results are cached per (card, store revision, date), so a summary is
// only recomputed after the card actually changes.
func (s *CardsService) CardSummary(ctx context.Context, cardID string, asOf domain.Date) (*domain.CardSummary, error) {
	ctx, span := cardsTracer.Start(ctx, "CardsService.CardSummary")
	defer span.End()
	span.SetAttributes(
		attribute.String("card.id", cardID),
		attribute.String("as_of", asOf.String()),
	)

	card, rev, err := s.store.Get(ctx, cardID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("summary:%s:%d:%s", cardID, rev, asOf)
	if cached, ok := s.summaries.Get(key); ok {
		s.metrics.IncrCacheHit("summary")
		return &cached, nil
	}
	s.metrics.IncrCacheMiss("summary")

	start := time.Now()
	summary := engine.Summarize(card, asOf)
	s.metrics.RecordRequestDuration("summarize", time.Since(start))
	s.metrics.IncrSummariesComputed()

	for _, warn := range summary.Warnings {
		s.metrics.IncrDanglingReference()
		s.logger.Warn("payment references unknown installment",
			zap.String("card_id", cardID),
			zap.String("payment_id", warn.PaymentID),
			zap.String("installment_id", warn.InstallmentID),
		)
	}

	s.summaries.Set(key, *summary)
	return summary, nil
}

// PortfolioSummary aggregates debt, available credit and limits across every
// card as of the given date. Cards are summarized concurrently; a card that
// fails to summarize is logged and skipped rather than failing the whole
// portfolio.
func (s *CardsService) PortfolioSummary(ctx context.Context, asOf domain.Date) (*domain.PortfolioSummary, error) {
	ctx, span := cardsTracer.Start(ctx, "CardsService.PortfolioSummary")
	defer span.End()

	cards, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu    sync.Mutex
		total domain.PortfolioSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, card := range cards {
		card := card
		g.Go(func() error {
			summary, err := s.CardSummary(gctx, card.ID, asOf)
			if err != nil {
				s.logger.Warn("skipping card in portfolio summary",
					zap.String("card_id", card.ID),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			total.TotalDebt += summary.CurrentBalance
			total.TotalAvailable += summary.AvailableCredit
			total.TotalLimit += card.Limit
			total.Cards++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &total, nil
}

// EngineMetrics exposes a snapshot of the engine's operational counters.
func (s *CardsService) EngineMetrics(ctx context.Context) (*domain.EngineMetrics, error) {
	_, span := cardsTracer.Start(ctx, "CardsService.EngineMetrics")
	defer span.End()

	return s.metrics.GetEngineSnapshot(), nil
}
