package domain

// StatementCycle holds the resolved billing-cycle boundaries for a card as of
// a given date. Boundaries are strictly increasing:
// PreviousCutoff < CurrentCutoff < NextCutoff.
type StatementCycle struct {
	PreviousCutoff Date
	CurrentCutoff  Date
	NextCutoff     Date
	PaymentDue     Date
}

// CardSummary is the derived financial state of a card as of a date: the
// figures a cardholder needs to decide what to pay and when.
type CardSummary struct {
	CurrentBalance   float64 `json:"currentBalance"`
	AvailableCredit  float64 `json:"availableCredit"`
	NextCutoffDate   Date    `json:"nextCutoffDate"`
	PaymentDueDate   Date    `json:"paymentDueDate"`
	PaymentForPeriod float64 `json:"paymentForPeriod"`
	NextPayment      float64 `json:"nextPayment"`

	// Warnings reports data-integrity defects found while aggregating.
	// The figures above are still valid; the offending payments were
	// counted as ordinary untagged payments.
	Warnings []DanglingReference `json:"warnings,omitempty"`
}

// DanglingReference reports a payment whose relatedInstallmentId does not
// resolve to an installment purchase on the same card.
type DanglingReference struct {
	PaymentID     string `json:"paymentId"`
	InstallmentID string `json:"installmentId"`
}

// PortfolioSummary aggregates the live figures across all cards.
type PortfolioSummary struct {
	TotalDebt      float64 `json:"totalDebt"`
	TotalAvailable float64 `json:"totalAvailable"`
	TotalLimit     float64 `json:"totalLimit"`
	Cards          int     `json:"cards"`
}

// EngineMetrics is the counter snapshot served by GET /v1/metrics/engine.
type EngineMetrics struct {
	SummariesComputed  int64   `json:"summariesComputed"`
	CacheHitRate       float64 `json:"cacheHitRate"`
	DanglingReferences int64   `json:"danglingReferences"`
	SnapshotsPersisted int64   `json:"snapshotsPersisted"`
}
