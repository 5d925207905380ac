package domain

// Card is a tracked credit-card account: configuration plus its full
// movement history. Transaction insertion order carries no meaning; all
// ordering is by transaction date.
type Card struct {
	ID           string       `json:"id"`
	Alias        string       `json:"alias"`
	Bank         string       `json:"bank"`
	Last4        string       `json:"last4"`
	Limit        float64      `json:"limit"`
	CutoffDay    int          `json:"cutoffDay"`
	PaymentDay   int          `json:"paymentDay"`
	Transactions Transactions `json:"transactions"`
}

// CardProfile is the mutable configuration of a card — everything except its
// identity and transaction history.
type CardProfile struct {
	Alias      string  `json:"alias"`
	Bank       string  `json:"bank"`
	Last4      string  `json:"last4"`
	Limit      float64 `json:"limit"`
	CutoffDay  int     `json:"cutoffDay"`
	PaymentDay int     `json:"paymentDay"`
}

// Validate checks the profile's construction invariants.
func (p *CardProfile) Validate() error {
	if p.Alias == "" {
		return &ErrValidation{Field: "alias", Message: "required"}
	}
	if p.Limit < 0 {
		return &ErrInvalidAmount{Field: "limit", Value: p.Limit}
	}
	if p.CutoffDay < 1 || p.CutoffDay > 31 {
		return &ErrValidation{Field: "cutoffDay", Message: "must be between 1 and 31"}
	}
	if p.PaymentDay < 1 || p.PaymentDay > 31 {
		return &ErrValidation{Field: "paymentDay", Message: "must be between 1 and 31"}
	}
	return nil
}

// Profile returns the card's configuration.
func (c *Card) Profile() CardProfile {
	return CardProfile{
		Alias:      c.Alias,
		Bank:       c.Bank,
		Last4:      c.Last4,
		Limit:      c.Limit,
		CutoffDay:  c.CutoffDay,
		PaymentDay: c.PaymentDay,
	}
}

// ApplyProfile overwrites the card's configuration, leaving identity and
// transactions untouched.
func (c *Card) ApplyProfile(p CardProfile) {
	c.Alias = p.Alias
	c.Bank = p.Bank
	c.Last4 = p.Last4
	c.Limit = p.Limit
	c.CutoffDay = p.CutoffDay
	c.PaymentDay = p.PaymentDay
}

// Validate checks the card and every transaction it carries.
func (c *Card) Validate() error {
	profile := c.Profile()
	if err := profile.Validate(); err != nil {
		return err
	}
	for _, tx := range c.Transactions {
		if err := tx.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// FindInstallment returns the installment purchase with the given id, or nil.
func (c *Card) FindInstallment(id string) *InstallmentPurchase {
	for _, tx := range c.Transactions {
		if inst, ok := tx.(*InstallmentPurchase); ok && inst.ID == id {
			return inst
		}
	}
	return nil
}

// FindTransaction returns the transaction with the given id, or nil.
func (c *Card) FindTransaction(id string) Transaction {
	for _, tx := range c.Transactions {
		if tx.TransactionID() == id {
			return tx
		}
	}
	return nil
}

// Clone deep-copies the card so the engine only ever sees an immutable
// snapshot.
func (c *Card) Clone() *Card {
	out := *c
	out.Transactions = c.Transactions.Clone()
	return &out
}
