package service

import (
	"context"

	"github.com/tarjetero/tarjetero-api/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Export / import
// ============================================================

// ExportData returns the full card portfolio for external backup.
func (s *CardsService) ExportData(ctx context.Context) ([]*domain.Card, error) {
	ctx, span := cardsTracer.Start(ctx, "CardsService.ExportData")
	defer span.End()

	return s.store.List(ctx)
}

// ImportData replaces the whole portfolio with the given cards. Every card is
// validated before anything is written; on success cached summaries are
// purged since all prior data is gone.
func (s *CardsService) ImportData(ctx context.Context, cards []*domain.Card) error {
	ctx, span := cardsTracer.Start(ctx, "CardsService.ImportData")
	defer span.End()
	span.SetAttributes(attribute.Int("cards.count", len(cards)))

	seen := make(map[string]struct{}, len(cards))
	for _, card := range cards {
		if card.ID == "" {
			return &domain.ErrValidation{Field: "id", Message: "required"}
		}
		if _, dup := seen[card.ID]; dup {
			return &domain.ErrConflict{Message: "duplicate card id " + card.ID}
		}
		seen[card.ID] = struct{}{}
		if err := card.Validate(); err != nil {
			return err
		}
	}

	if err := s.store.ReplaceAll(ctx, cards); err != nil {
		return err
	}
	s.summaries.Purge()

	s.logger.Info("data imported", zap.Int("cards", len(cards)))
	s.pushBackup(ctx)
	return nil
}
