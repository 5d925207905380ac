package service

import (
	"context"

	"github.com/tarjetero/tarjetero-api/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Transactions
// ============================================================

// AddTransaction appends a movement to the card. The id is assigned here.
// For installment purchases the derived fields are normalized: a missing
// monthlyPayment becomes totalAmount/months, and remainingAmount is always
// recomputed from paidMonths so stored state starts consistent.
func (s *CardsService) AddTransaction(ctx context.Context, cardID string, tx domain.Transaction) (domain.Transaction, error) {
	ctx, span := cardsTracer.Start(ctx, "CardsService.AddTransaction")
	defer span.End()
	span.SetAttributes(
		attribute.String("card.id", cardID),
		attribute.String("transaction.kind", string(tx.Kind())),
	)

	var added domain.Transaction
	_, err := s.store.Update(ctx, cardID, func(card *domain.Card) error {
		switch v := tx.(type) {
		case *domain.Expense:
			cp := *v
			cp.ID = uuid.New().String()
			if err := cp.Validate(); err != nil {
				return err
			}
			added = &cp
		case *domain.Payment:
			cp := *v
			cp.ID = uuid.New().String()
			if err := cp.Validate(); err != nil {
				return err
			}
			if cp.RelatedInstallmentID != "" && card.FindInstallment(cp.RelatedInstallmentID) == nil {
				return &domain.ErrValidation{
					Field:   "relatedInstallmentId",
					Message: "no installment purchase with id " + cp.RelatedInstallmentID,
				}
			}
			added = &cp
		case *domain.InstallmentPurchase:
			cp := *v
			cp.ID = uuid.New().String()
			if cp.MonthlyPayment == 0 && cp.Months > 0 {
				cp.MonthlyPayment = cp.TotalAmount / float64(cp.Months)
			}
			if err := cp.Validate(); err != nil {
				return err
			}
			cp.Recalculate()
			added = &cp
		default:
			return &domain.ErrValidation{Field: "type", Message: "unsupported transaction type"}
		}

		card.Transactions = append(card.Transactions, added)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction added",
		zap.String("card_id", cardID),
		zap.String("transaction_id", added.TransactionID()),
		zap.String("kind", string(added.Kind())),
	)
	s.pushBackup(ctx)

	return added, nil
}

// DeleteTransaction removes a movement, reversing any bookkeeping it caused:
//   - deleting a payment that references an installment decrements the
//     installment's paidMonths and restores its remainingAmount (clamped to
//     totalAmount), so a pay-then-delete round trip is exact;
//   - deleting an installment purchase cascade-deletes every payment linked
//     to it.
func (s *CardsService) DeleteTransaction(ctx context.Context, cardID, transactionID string) error {
	ctx, span := cardsTracer.Start(ctx, "CardsService.DeleteTransaction")
	defer span.End()
	span.SetAttributes(
		attribute.String("card.id", cardID),
		attribute.String("transaction.id", transactionID),
	)

	var removed int
	_, err := s.store.Update(ctx, cardID, func(card *domain.Card) error {
		target := card.FindTransaction(transactionID)
		if target == nil {
			return &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
		}

		switch v := target.(type) {
		case *domain.Payment:
			if v.RelatedInstallmentID != "" {
				if inst := card.FindInstallment(v.RelatedInstallmentID); inst != nil {
					if inst.PaidMonths > 0 {
						inst.PaidMonths--
					}
					inst.Recalculate()
				}
			}
			card.Transactions = removeTransactions(card.Transactions, func(tx domain.Transaction) bool {
				return tx.TransactionID() == transactionID
			})
			removed = 1
		case *domain.InstallmentPurchase:
			before := len(card.Transactions)
			card.Transactions = removeTransactions(card.Transactions, func(tx domain.Transaction) bool {
				if tx.TransactionID() == transactionID {
					return true
				}
				p, ok := tx.(*domain.Payment)
				return ok && p.RelatedInstallmentID == transactionID
			})
			removed = before - len(card.Transactions)
		case *domain.Expense:
			card.Transactions = removeTransactions(card.Transactions, func(tx domain.Transaction) bool {
				return tx.TransactionID() == transactionID
			})
			removed = 1
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("transaction deleted",
		zap.String("card_id", cardID),
		zap.String("transaction_id", transactionID),
		zap.Int("removed", removed),
	)
	s.pushBackup(ctx)
	return nil
}

// removeTransactions filters out every transaction matching drop.
func removeTransactions(txs domain.Transactions, drop func(domain.Transaction) bool) domain.Transactions {
	out := txs[:0]
	for _, tx := range txs {
		if !drop(tx) {
			out = append(out, tx)
		}
	}
	return out
}
