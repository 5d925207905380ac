package service

import (
	"context"
	"fmt"

	"github.com/tarjetero/tarjetero-api/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Installment purchases (MSI)
// ============================================================

// ListInstallments returns the card's installment plans.
func (s *CardsService) ListInstallments(ctx context.Context, cardID string) ([]*domain.InstallmentPurchase, error) {
	ctx, span := cardsTracer.Start(ctx, "CardsService.ListInstallments")
	defer span.End()
	span.SetAttributes(attribute.String("card.id", cardID))

	card, _, err := s.store.Get(ctx, cardID)
	if err != nil {
		return nil, err
	}

	plans := make([]*domain.InstallmentPurchase, 0)
	for _, tx := range card.Transactions {
		if inst, ok := tx.(*domain.InstallmentPurchase); ok {
			plans = append(plans, inst)
		}
	}
	return plans, nil
}

// PayInstallment records one monthly payment against an installment plan on
// the given date: the plan's counters advance and a payment transaction
// tagged with the plan's id is appended as the concrete record. Fully paid
// plans are rejected.
func (s *CardsService) PayInstallment(ctx context.Context, cardID, installmentID string, payDate domain.Date) (*domain.Payment, error) {
	ctx, span := cardsTracer.Start(ctx, "CardsService.PayInstallment")
	defer span.End()
	span.SetAttributes(
		attribute.String("card.id", cardID),
		attribute.String("installment.id", installmentID),
	)

	if payDate.IsZero() {
		return nil, &domain.ErrValidation{Field: "date", Message: "required"}
	}

	var payment *domain.Payment
	_, err := s.store.Update(ctx, cardID, func(card *domain.Card) error {
		inst := card.FindInstallment(installmentID)
		if inst == nil {
			return &domain.ErrNotFound{Resource: "installment", ID: installmentID}
		}
		if !inst.Active() {
			return &domain.ErrValidation{Field: "installment", Message: "already fully paid"}
		}

		inst.PaidMonths++
		inst.Recalculate()

		payment = &domain.Payment{
			ID:                   uuid.New().String(),
			Date:                 payDate,
			Description:          fmt.Sprintf("Pago MSI: %s (%d/%d)", inst.Description, inst.PaidMonths, inst.Months),
			Amount:               inst.MonthlyPayment,
			RelatedInstallmentID: inst.ID,
		}
		card.Transactions = append(card.Transactions, payment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("installment paid",
		zap.String("card_id", cardID),
		zap.String("installment_id", installmentID),
		zap.String("payment_id", payment.ID),
		zap.Float64("amount", payment.Amount),
	)
	s.pushBackup(ctx)

	return payment, nil
}

// DeleteInstallment removes an installment plan and every payment linked to
// it (the cascade lives in DeleteTransaction).
func (s *CardsService) DeleteInstallment(ctx context.Context, cardID, installmentID string) error {
	ctx, span := cardsTracer.Start(ctx, "CardsService.DeleteInstallment")
	defer span.End()

	card, _, err := s.store.Get(ctx, cardID)
	if err != nil {
		return err
	}
	if card.FindInstallment(installmentID) == nil {
		return &domain.ErrNotFound{Resource: "installment", ID: installmentID}
	}

	return s.DeleteTransaction(ctx, cardID, installmentID)
}
