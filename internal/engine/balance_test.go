package engine_test

import (
	"testing"
	"time"

	"github.com/tarjetero/tarjetero-api/internal/domain"
	"github.com/tarjetero/tarjetero-api/internal/engine"
)

func testCard(limit float64, txs ...domain.Transaction) *domain.Card {
	return &domain.Card{
		ID:           "card-1",
		Alias:        "Oro",
		Bank:         "BancoNorte",
		Last4:        "4421",
		Limit:        limit,
		CutoffDay:    15,
		PaymentDay:   5,
		Transactions: domain.Transactions(txs),
	}
}

func TestBalance_MixedTransactions(t *testing.T) {
	card := testCard(20000,
		&domain.Expense{ID: "e1", Date: date(2024, time.March, 2), Amount: 1500},
		&domain.Payment{ID: "p1", Date: date(2024, time.March, 8), Amount: 500},
		&domain.InstallmentPurchase{
			ID: "i1", Date: date(2024, time.January, 10),
			TotalAmount: 1200, Months: 12, MonthlyPayment: 100,
			PaidMonths: 2, RemainingAmount: 1000,
		},
	)

	balance, available := engine.Balance(card)

	// 1500 − 500 + 1000 of unpaid principal (never the original 1200).
	if balance != 2000 {
		t.Errorf("balance = %.2f, want 2000", balance)
	}
	if available != 18000 {
		t.Errorf("available = %.2f, want 18000", available)
	}
}

func TestBalance_OverpaymentClampsToZero(t *testing.T) {
	card := testCard(10000,
		&domain.Expense{ID: "e1", Date: date(2024, time.March, 2), Amount: 300},
		&domain.Payment{ID: "p1", Date: date(2024, time.March, 8), Amount: 800},
	)

	balance, available := engine.Balance(card)

	if balance != 0 {
		t.Errorf("balance = %.2f, want 0", balance)
	}
	// Available credit derives from the clamped balance and never exceeds
	// the limit, even after an overpayment.
	if available != 10000 {
		t.Errorf("available = %.2f, want 10000", available)
	}
}

func TestBalance_EmptyCard(t *testing.T) {
	balance, available := engine.Balance(testCard(5000))

	if balance != 0 {
		t.Errorf("balance = %.2f, want 0", balance)
	}
	if available != 5000 {
		t.Errorf("available = %.2f, want 5000", available)
	}
}

func TestBalance_ExpenseAndEqualPaymentSameDate(t *testing.T) {
	// An expense and a payment of the same amount on the same date cancel
	// exactly; no intermediate clamping artifacts.
	card := testCard(10000,
		&domain.Expense{ID: "e1", Date: date(2024, time.March, 10), Amount: 500},
		&domain.Payment{ID: "p1", Date: date(2024, time.March, 10), Amount: 500},
	)

	balance, available := engine.Balance(card)

	if balance != 0 {
		t.Errorf("balance = %.2f, want 0", balance)
	}
	if available != 10000 {
		t.Errorf("available = %.2f, want 10000", available)
	}
}
