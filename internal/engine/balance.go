package engine

import (
	"math"

	"github.com/tarjetero/tarjetero-api/internal/domain"
)

// Balance computes the live outstanding debt and the credit left on the
// card. Expenses add their amount, installment purchases add only their
// unpaid principal (the original total never burdens the balance twice), and
// payments subtract. The balance is floored at zero — a genuine credit
// balance is out of scope — and available credit is derived from the clamped
// balance, so it never exceeds the card's limit.
func Balance(card *domain.Card) (currentBalance, availableCredit float64) {
	var raw float64
	for _, tx := range card.Transactions {
		switch v := tx.(type) {
		case *domain.Expense:
			raw += v.Amount
		case *domain.Payment:
			raw -= v.Amount
		case *domain.InstallmentPurchase:
			raw += v.RemainingAmount
		}
	}

	currentBalance = math.Max(0, raw)
	availableCredit = math.Max(0, card.Limit-currentBalance)
	return currentBalance, availableCredit
}
