package domain

type DepositStatus string

const (
	DepositStatusPending   DepositStatus = "PENDING"
	DepositStatusPaid      DepositStatus = "PAID"
	DepositStatusRefunded  DepositStatus = "REFUNDED"
	DepositStatusForfeited DepositStatus = "FORFEITED"
)

// IsTerminal reports whether no further transition is allowed out of s.
func (s DepositStatus) IsTerminal() bool {
	return s == DepositStatusRefunded || s == DepositStatusForfeited
}

// Deposit is 1:1 with a RentalTransaction; created when the rental becomes
// active, never deleted, only transitioned. All state changes are recorded
// as DepositTransaction ledger entries.
type Deposit struct {
	ID          int32         `json:"id"`
	RentalID    int32         `json:"rental_id"`
	AmountCents int32         `json:"amount_cents"`
	Status      DepositStatus `json:"status"`
	CreatedOn   string        `json:"created_on"`
	UpdatedOn   string        `json:"updated_on"`
}

type DepositTransactionType string

const (
	DepositTransactionTypePayment DepositTransactionType = "PAYMENT"
	DepositTransactionTypeRefund  DepositTransactionType = "REFUND"
	DepositTransactionTypeForfeit DepositTransactionType = "FORFEIT"
)

// DepositTransaction is an append-only ledger entry. The type of the last
// entry for a deposit always matches the deposit's current status.
type DepositTransaction struct {
	ID          int32                  `json:"id"`
	DepositID   int32                  `json:"deposit_id"`
	Type        DepositTransactionType `json:"transaction_type"`
	AmountCents int32                  `json:"amount_cents"`
	Reference   string                 `json:"reference"`
	Description string                 `json:"description"`
	ProcessedBy int32                  `json:"processed_by"`
	CreatedOn   string                 `json:"created_on"`
}
