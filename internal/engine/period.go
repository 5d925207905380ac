package engine

import (
	"math"

	"github.com/tarjetero/tarjetero-api/internal/domain"
)

// windowTotal aggregates charges minus payments over the (start, end] cycle
// window: open at the previous cutoff, closed at the cutoff that ends the
// cycle.
//
// Installment bookkeeping is the delicate part. Each active installment owes
// exactly one monthly payment per cycle, and that obligation can be recorded
// in two places: a concrete payment tagged with the installment's id, or
// nothing at all (the cardholder has not logged it yet). A tagged payment
// inside the window is the authoritative record and is subtracted like any
// payment; only when no tagged payment exists does the installment project
// its monthlyPayment as a charge. Counting both would double the obligation;
// counting neither would silently drop it.
func windowTotal(card *domain.Card, start, end domain.Date) (float64, []domain.DanglingReference) {
	inWindow := func(d domain.Date) bool { return d.After(start) && !d.After(end) }

	covered := make(map[string]bool)
	var dangling []domain.DanglingReference

	var total float64
	for _, tx := range card.Transactions {
		switch v := tx.(type) {
		case *domain.Expense:
			if inWindow(v.Date) {
				total += v.Amount
			}
		case *domain.Payment:
			if !inWindow(v.Date) {
				continue
			}
			total -= v.Amount
			if v.RelatedInstallmentID == "" {
				continue
			}
			if card.FindInstallment(v.RelatedInstallmentID) == nil {
				// Counted as an ordinary payment above; report the broken link.
				dangling = append(dangling, domain.DanglingReference{
					PaymentID:     v.ID,
					InstallmentID: v.RelatedInstallmentID,
				})
				continue
			}
			covered[v.RelatedInstallmentID] = true
		case *domain.InstallmentPurchase:
			// Handled in the projection pass below.
		}
	}

	// Project the monthly obligation of every active installment the window
	// holds no concrete payment for. An installment purchased on the closing
	// boundary already belongs to this cycle; one purchased after it does not
	// exist yet from this statement's point of view.
	for _, tx := range card.Transactions {
		inst, ok := tx.(*domain.InstallmentPurchase)
		if !ok {
			continue
		}
		if !inst.Active() || inst.Date.After(end) || covered[inst.ID] {
			continue
		}
		total += inst.MonthlyPayment
	}

	return math.Max(0, total), dangling
}
