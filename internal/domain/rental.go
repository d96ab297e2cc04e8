package domain

type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "PENDING"
	RentalStatusActive    RentalStatus = "ACTIVE"
	RentalStatusCompleted RentalStatus = "COMPLETED"
	RentalStatusCancelled RentalStatus = "CANCELLED"
	RentalStatusForfeited RentalStatus = "FORFEITED"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

type RentalTransaction struct {
	ID         int32   `json:"id"`
	ToolID     int32   `json:"tool_id"`
	BorrowerID int32   `json:"borrower_id"`
	OwnerID    int32   `json:"owner_id"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	StartTime  *string `json:"start_time,omitempty"`
	EndTime    *string `json:"end_time,omitempty"`
	// Price snapshot computed from the tool's pricing schedule at approval
	// time; later changes to the tool's rates do not affect it.
	TotalPriceCents  int32         `json:"total_price_cents"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	PaymentReference string        `json:"payment_reference"`
	Status           RentalStatus  `json:"status"`
	CreatedOn        string        `json:"created_on"`
}

// OverdueSweepReport summarizes one run of the overdue sweep. Per-rental
// warnings and integrity errors are isolated; they never abort the batch.
type OverdueSweepReport struct {
	SweepDate  string   `json:"sweep_date"`
	DryRun     bool     `json:"dry_run"`
	Found      int      `json:"found"`
	Processed  int      `json:"processed"`
	Forfeited  int      `json:"forfeited"`
	Warnings   []string `json:"warnings,omitempty"`
	Integrity  []string `json:"integrity_errors,omitempty"`
	RentalIDs  []int32  `json:"rental_ids,omitempty"`
	DepositIDs []int32  `json:"deposit_ids,omitempty"`
}
