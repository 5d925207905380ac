// Package service provides the business logic layer (use cases) for the
// card tracker: card CRUD, transaction bookkeeping, installment flows and
// summary derivation.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tarjetero/tarjetero-api/internal/domain"
	"github.com/tarjetero/tarjetero-api/internal/infra/observability"
	"github.com/tarjetero/tarjetero-api/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var cardsTracer = otel.Tracer("service/cards")

// backupPushTimeout bounds the detached mirror push spawned after mutations.
const backupPushTimeout = 30 * time.Second

// CardsService orchestrates all card operations against the owned store.
// The calculation engine is invoked only on immutable snapshots the store
// hands out; the service is where all mutation lives.
type CardsService struct {
	store     port.CardStore
	summaries port.Cache[domain.CardSummary]
	backup    port.SnapshotSink // nil when no mirror is configured
	metrics   *observability.Metrics
	logger    *zap.Logger

	// now is the clock; injected so tests can pin "today".
	now func() time.Time
}

// NewCardsService creates the card service. backup may be nil.
func NewCardsService(
	store port.CardStore,
	summaries port.Cache[domain.CardSummary],
	backup port.SnapshotSink,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *CardsService {
	return &CardsService{
		store:     store,
		summaries: summaries,
		backup:    backup,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// ============================================================
// Cards
// ============================================================

func (s *CardsService) ListCards(ctx context.Context) ([]*domain.Card, error) {
	ctx, span := cardsTracer.Start(ctx, "CardsService.ListCards")
	defer span.End()

	return s.store.List(ctx)
}

func (s *CardsService) GetCard(ctx context.Context, cardID string) (*domain.Card, error) {
	ctx, span := cardsTracer.Start(ctx, "CardsService.GetCard")
	defer span.End()

	card, _, err := s.store.Get(ctx, cardID)
	return card, err
}

// CreateCard registers a new card from its configuration. The id is assigned
// here; the card starts with an empty movement history.
func (s *CardsService) CreateCard(ctx context.Context, profile *domain.CardProfile) (*domain.Card, error) {
	ctx, span := cardsTracer.Start(ctx, "CardsService.CreateCard")
	defer span.End()

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	card := &domain.Card{
		ID:           uuid.New().String(),
		Transactions: domain.Transactions{},
	}
	card.ApplyProfile(*profile)

	if err := s.store.Create(ctx, card); err != nil {
		s.logger.Error("failed to create card", zap.String("alias", profile.Alias), zap.Error(err))
		return nil, err
	}

	s.logger.Info("card created",
		zap.String("card_id", card.ID),
		zap.String("alias", card.Alias),
		zap.String("bank", card.Bank),
	)
	s.pushBackup(ctx)

	return card, nil
}

// UpdateCard replaces the card's configuration, keeping its transactions.
func (s *CardsService) UpdateCard(ctx context.Context, cardID string, profile *domain.CardProfile) (*domain.Card, error) {
	ctx, span := cardsTracer.Start(ctx, "CardsService.UpdateCard")
	defer span.End()
	span.SetAttributes(attribute.String("card.id", cardID))

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	card, err := s.store.Update(ctx, cardID, func(c *domain.Card) error {
		c.ApplyProfile(*profile)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("card updated", zap.String("card_id", cardID))
	s.pushBackup(ctx)

	return card, nil
}

func (s *CardsService) DeleteCard(ctx context.Context, cardID string) error {
	ctx, span := cardsTracer.Start(ctx, "CardsService.DeleteCard")
	defer span.End()
	span.SetAttributes(attribute.String("card.id", cardID))

	if err := s.store.Delete(ctx, cardID); err != nil {
		return err
	}

	s.logger.Info("card deleted", zap.String("card_id", cardID))
	s.pushBackup(ctx)
	return nil
}

// ============================================================
// Backup mirror
// ============================================================

// pushBackup mirrors the current snapshot, detached from the request: a slow
// or dead mirror must never fail the mutation that already committed.
func (s *CardsService) pushBackup(ctx context.Context) {
	if s.backup == nil {
		return
	}

	cards, err := s.store.List(ctx)
	if err != nil {
		s.logger.Warn("backup: snapshot read failed", zap.Error(err))
		return
	}
	data, err := json.Marshal(cards)
	if err != nil {
		s.logger.Warn("backup: snapshot encode failed", zap.Error(err))
		return
	}

	go func() {
		pushCtx, cancel := context.WithTimeout(context.Background(), backupPushTimeout)
		defer cancel()

		if err := s.backup.Push(pushCtx, data); err != nil {
			s.metrics.IncrBackupPush("error")
			s.logger.Warn("backup: snapshot push failed", zap.Error(err))
			return
		}
		s.metrics.IncrBackupPush("success")
	}()
}
