// Package engine derives a card's financial snapshot: billing-cycle
// resolution plus transaction aggregation. Every function here is a pure,
// deterministic projection over an immutable card snapshot and a calendar
// date — no I/O, no locks, no mutation — so it is safe to call concurrently
// from any number of call sites.
package engine

import (
	"github.com/tarjetero/tarjetero-api/internal/domain"
)

// Summarize computes the card's summary as of the given date: live balance
// and available credit, the upcoming cutoff and payment due dates, the amount
// owed on the statement that just closed, and the estimate for the next one.
//
// Payments whose installment tag does not resolve on the card are aggregated
// as ordinary payments and reported in the summary's Warnings; they indicate
// a data-integrity defect in the caller's records, not a computation failure.
func Summarize(card *domain.Card, today domain.Date) *domain.CardSummary {
	cycle := ResolveCycle(today, card.CutoffDay, card.PaymentDay)
	balance, available := Balance(card)

	forPeriod, danglingPrev := windowTotal(card, cycle.PreviousCutoff, cycle.CurrentCutoff)
	nextPayment, danglingNext := windowTotal(card, cycle.CurrentCutoff, cycle.NextCutoff)

	return &domain.CardSummary{
		CurrentBalance:   balance,
		AvailableCredit:  available,
		NextCutoffDate:   cycle.NextCutoff,
		PaymentDueDate:   cycle.PaymentDue,
		PaymentForPeriod: forPeriod,
		NextPayment:      nextPayment,
		Warnings:         append(danglingPrev, danglingNext...),
	}
}
