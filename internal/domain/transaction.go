package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// TransactionKind discriminates the transaction variants on the wire.
type TransactionKind string

const (
	KindExpense             TransactionKind = "expense"
	KindPayment             TransactionKind = "payment"
	KindInstallmentPurchase TransactionKind = "installment_purchase"
)

// remainingEpsilon is the threshold under which an installment's outstanding
// principal is considered zero, absorbing float accumulation error.
const remainingEpsilon = 0.01

// Transaction is the sum of the three movement kinds a card can carry. The
// concrete types are *Expense, *Payment and *InstallmentPurchase; code that
// processes transactions switches exhaustively over them.
type Transaction interface {
	TransactionID() string
	TransactionDate() Date
	Kind() TransactionKind
	Validate() error

	clone() Transaction
}

// Expense is an outright charge that increases the balance.
type Expense struct {
	ID          string  `json:"id"`
	Date        Date    `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

func (e *Expense) TransactionID() string { return e.ID }
func (e *Expense) TransactionDate() Date { return e.Date }
func (e *Expense) Kind() TransactionKind { return KindExpense }

func (e *Expense) Validate() error {
	if e.Date.IsZero() {
		return &ErrValidation{Field: "date", Message: "required"}
	}
	if e.Amount < 0 {
		return &ErrInvalidAmount{Field: "amount", Value: e.Amount}
	}
	return nil
}

func (e *Expense) clone() Transaction {
	c := *e
	return &c
}

// Payment reduces the balance. When RelatedInstallmentID is set, the payment
// is the record of exactly one monthly installment paid on that date.
type Payment struct {
	ID                   string  `json:"id"`
	Date                 Date    `json:"date"`
	Description          string  `json:"description"`
	Amount               float64 `json:"amount"`
	RelatedInstallmentID string  `json:"relatedInstallmentId,omitempty"`
}

func (p *Payment) TransactionID() string { return p.ID }
func (p *Payment) TransactionDate() Date { return p.Date }
func (p *Payment) Kind() TransactionKind { return KindPayment }

func (p *Payment) Validate() error {
	if p.Date.IsZero() {
		return &ErrValidation{Field: "date", Message: "required"}
	}
	if p.Amount < 0 {
		return &ErrInvalidAmount{Field: "amount", Value: p.Amount}
	}
	return nil
}

func (p *Payment) clone() Transaction {
	c := *p
	return &c
}

// InstallmentPurchase is a purchase split into fixed equal monthly payments
// over a fixed term (MSI). RemainingAmount tracks the unpaid principal and is
// kept consistent with PaidMonths: remaining = total − paid × monthly,
// clamped to [0, total].
type InstallmentPurchase struct {
	ID              string  `json:"id"`
	Date            Date    `json:"date"`
	Description     string  `json:"description"`
	TotalAmount     float64 `json:"totalAmount"`
	Months          int     `json:"months"`
	MonthlyPayment  float64 `json:"monthlyPayment"`
	PaidMonths      int     `json:"paidMonths"`
	RemainingAmount float64 `json:"remainingAmount"`
}

func (i *InstallmentPurchase) TransactionID() string { return i.ID }
func (i *InstallmentPurchase) TransactionDate() Date { return i.Date }
func (i *InstallmentPurchase) Kind() TransactionKind { return KindInstallmentPurchase }

// Active reports whether the plan still has unpaid months.
func (i *InstallmentPurchase) Active() bool { return i.PaidMonths < i.Months }

func (i *InstallmentPurchase) Validate() error {
	if i.Date.IsZero() {
		return &ErrValidation{Field: "date", Message: "required"}
	}
	if i.TotalAmount < 0 {
		return &ErrInvalidAmount{Field: "totalAmount", Value: i.TotalAmount}
	}
	if i.MonthlyPayment < 0 {
		return &ErrInvalidAmount{Field: "monthlyPayment", Value: i.MonthlyPayment}
	}
	if i.Months < 1 {
		return &ErrValidation{Field: "months", Message: "must be at least 1"}
	}
	if i.PaidMonths < 0 || i.PaidMonths > i.Months {
		return &ErrValidation{Field: "paidMonths", Message: fmt.Sprintf("must be between 0 and %d", i.Months)}
	}
	if i.RemainingAmount < 0 || i.RemainingAmount > i.TotalAmount+remainingEpsilon {
		return &ErrValidation{Field: "remainingAmount", Message: "must be between 0 and totalAmount"}
	}
	return nil
}

func (i *InstallmentPurchase) clone() Transaction {
	c := *i
	return &c
}

// Recalculate derives RemainingAmount from PaidMonths, clamping the small
// negative residue float subtraction can leave to exactly zero and never
// letting the value exceed TotalAmount.
func (i *InstallmentPurchase) Recalculate() {
	remaining := i.TotalAmount - float64(i.PaidMonths)*i.MonthlyPayment
	if remaining < remainingEpsilon {
		remaining = 0
	}
	i.RemainingAmount = math.Min(remaining, i.TotalAmount)
}

// Transactions is a card's movement list. It owns the JSON codec for the
// tagged-union wire format: each element carries a "type" discriminator.
type Transactions []Transaction

// MarshalJSON encodes each transaction with its type discriminator.
func (ts Transactions) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(ts))
	for _, tx := range ts {
		b, err := MarshalTransaction(tx)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a list of discriminated transactions, failing on the
// first malformed element.
func (ts *Transactions) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	parsed := make(Transactions, 0, len(raws))
	for _, raw := range raws {
		tx, err := UnmarshalTransaction(raw)
		if err != nil {
			return err
		}
		parsed = append(parsed, tx)
	}
	*ts = parsed
	return nil
}

// Clone deep-copies the list so callers can hand out immutable snapshots.
func (ts Transactions) Clone() Transactions {
	if ts == nil {
		return nil
	}
	out := make(Transactions, len(ts))
	for i, tx := range ts {
		out[i] = tx.clone()
	}
	return out
}

// MarshalTransaction encodes a single transaction with its discriminator.
func MarshalTransaction(tx Transaction) ([]byte, error) {
	switch v := tx.(type) {
	case *Expense:
		return json.Marshal(struct {
			Type TransactionKind `json:"type"`
			*Expense
		}{KindExpense, v})
	case *Payment:
		return json.Marshal(struct {
			Type TransactionKind `json:"type"`
			*Payment
		}{KindPayment, v})
	case *InstallmentPurchase:
		return json.Marshal(struct {
			Type TransactionKind `json:"type"`
			*InstallmentPurchase
		}{KindInstallmentPurchase, v})
	default:
		return nil, fmt.Errorf("unsupported transaction type %T", tx)
	}
}

// UnmarshalTransaction decodes a single transaction by its discriminator.
// Unknown discriminators are rejected; they indicate a record this version
// of the data model does not understand.
func UnmarshalTransaction(data []byte) (Transaction, error) {
	var probe struct {
		Type TransactionKind `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	switch probe.Type {
	case KindExpense:
		var e Expense
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return &e, nil
	case KindPayment:
		var p Payment
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case KindInstallmentPurchase:
		var i InstallmentPurchase
		if err := json.Unmarshal(data, &i); err != nil {
			return nil, err
		}
		return &i, nil
	default:
		return nil, &ErrValidation{Field: "type", Message: fmt.Sprintf("unknown transaction type %q", string(probe.Type))}
	}
}
