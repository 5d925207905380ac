package domain_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/tarjetero/tarjetero-api/internal/domain"
)

func TestUnmarshalTransaction_Expense(t *testing.T) {
	tx, err := domain.UnmarshalTransaction([]byte(
		`{"type":"expense","id":"e1","date":"2024-03-18","description":"Super","amount":1200}`))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	exp, ok := tx.(*domain.Expense)
	if !ok {
		t.Fatalf("expected *Expense, got %T", tx)
	}
	if exp.Amount != 1200 || exp.Date.String() != "2024-03-18" {
		t.Fatalf("unexpected expense: %+v", exp)
	}
}

func TestUnmarshalTransaction_PaymentKeepsTag(t *testing.T) {
	tx, err := domain.UnmarshalTransaction([]byte(
		`{"type":"payment","id":"p1","date":"2024-03-18","description":"Pago","amount":100,"relatedInstallmentId":"i1"}`))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	pay := tx.(*domain.Payment)
	if pay.RelatedInstallmentID != "i1" {
		t.Fatalf("relatedInstallmentId = %q, want i1", pay.RelatedInstallmentID)
	}
}

func TestUnmarshalTransaction_UnknownType(t *testing.T) {
	_, err := domain.UnmarshalTransaction([]byte(
		`{"type":"transfer","id":"x","date":"2024-03-18","amount":10}`))
	var vErr *domain.ErrValidation
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if vErr.Field != "type" {
		t.Fatalf("field = %q, want type", vErr.Field)
	}
}

func TestUnmarshalTransaction_MalformedDate(t *testing.T) {
	_, err := domain.UnmarshalTransaction([]byte(
		`{"type":"expense","id":"e1","date":"18/03/2024","description":"x","amount":10}`))
	var dErr *domain.ErrInvalidDate
	if !errors.As(err, &dErr) {
		t.Fatalf("expected invalid date error, got %v", err)
	}
}

func TestTransactions_RoundTripKeepsKinds(t *testing.T) {
	txs := domain.Transactions{
		&domain.Expense{ID: "e1", Date: domain.NewDate(2024, time.March, 1), Description: "Cine", Amount: 300},
		&domain.Payment{ID: "p1", Date: domain.NewDate(2024, time.March, 2), Description: "Pago", Amount: 300},
		&domain.InstallmentPurchase{
			ID: "i1", Date: domain.NewDate(2024, time.January, 20), Description: "Tele",
			TotalAmount: 1200, Months: 12, MonthlyPayment: 100, RemainingAmount: 1200,
		},
	}

	data, err := json.Marshal(txs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got domain.Transactions
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d transactions, want 3", len(got))
	}
	kinds := []domain.TransactionKind{domain.KindExpense, domain.KindPayment, domain.KindInstallmentPurchase}
	for i, k := range kinds {
		if got[i].Kind() != k {
			t.Errorf("tx %d kind = %s, want %s", i, got[i].Kind(), k)
		}
	}
}

func TestExpense_RejectsNegativeAmount(t *testing.T) {
	e := &domain.Expense{ID: "e1", Date: domain.NewDate(2024, time.March, 1), Amount: -5}
	var aErr *domain.ErrInvalidAmount
	if !errors.As(e.Validate(), &aErr) {
		t.Fatal("expected invalid amount error")
	}
}

func TestInstallment_RecalculateClampsResidue(t *testing.T) {
	inst := &domain.InstallmentPurchase{
		ID: "i1", Date: domain.NewDate(2024, time.January, 1), Description: "Sillón",
		TotalAmount: 1000, Months: 3, MonthlyPayment: 1000.0 / 3, PaidMonths: 3,
	}
	inst.Recalculate()
	if inst.RemainingAmount != 0 {
		t.Fatalf("remainingAmount = %v, want exactly 0 after final payment", inst.RemainingAmount)
	}
	if inst.Active() {
		t.Fatal("plan with all months paid must be inactive")
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, v := range []string{"", "2024-13-01", "2024-02-30", "hoy"} {
		if _, err := domain.ParseDate(v); err == nil {
			t.Errorf("ParseDate(%q) accepted invalid input", v)
		}
	}
}

func TestParseDate_RoundTrip(t *testing.T) {
	d, err := domain.ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("parse leap day: %v", err)
	}
	if d.String() != "2024-02-29" {
		t.Fatalf("round trip = %s", d)
	}
}

func TestCardValidate_ChecksTransactions(t *testing.T) {
	card := &domain.Card{
		ID: "c1", Alias: "BBVA", Limit: 1000, CutoffDay: 15, PaymentDay: 5,
		Transactions: domain.Transactions{
			&domain.Expense{ID: "e1", Date: domain.NewDate(2024, time.March, 1), Amount: -10},
		},
	}
	var aErr *domain.ErrInvalidAmount
	if !errors.As(card.Validate(), &aErr) {
		t.Fatal("expected card validation to surface transaction error")
	}
}
