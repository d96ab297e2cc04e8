package repository

import (
	"context"
	"time"

	"toolshare-backend/internal/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
}

type ToolRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Tool, error)
	// GetByIDForUpdate locks the tool row for the duration of the enclosing
	// transaction. The tool row is the unit of concurrency control for all
	// booking-related mutations.
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Tool, error)
	SetAvailable(ctx context.Context, id int32, available bool) error
}

type BorrowRequestRepository interface {
	Create(ctx context.Context, req *domain.BorrowRequest) error
	GetByID(ctx context.Context, id int32) (*domain.BorrowRequest, error)
	Update(ctx context.Context, req *domain.BorrowRequest) error
	// ListApprovedOverlapping returns APPROVED requests for the tool whose
	// [start_date, end_date) interval overlaps the given one.
	ListApprovedOverlapping(ctx context.Context, toolID int32, startDate, endDate string) ([]domain.BorrowRequest, error)
	ListByBorrower(ctx context.Context, borrowerID int32, status string) ([]domain.BorrowRequest, error)
	ListByOwner(ctx context.Context, ownerID int32, status string) ([]domain.BorrowRequest, error)
	// ExpirePending marks all PENDING requests past their expires_at as
	// EXPIRED and returns the affected ids.
	ExpirePending(ctx context.Context, now time.Time) ([]int32, error)
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.RentalTransaction) error
	GetByID(ctx context.Context, id int32) (*domain.RentalTransaction, error)
	UpdateStatus(ctx context.Context, id int32, status domain.RentalStatus) error
	ListActiveOverlapping(ctx context.Context, toolID int32, startDate, endDate string) ([]domain.RentalTransaction, error)
	// ListOverdue returns ACTIVE rentals with end_date strictly before today.
	ListOverdue(ctx context.Context, today string) ([]domain.RentalTransaction, error)
}

type AvailabilityRepository interface {
	ListBlocks(ctx context.Context, toolID int32) ([]domain.AvailabilityBlock, error)
	ListBookedBlocksOverlapping(ctx context.Context, toolID int32, startDate, endDate string) ([]domain.AvailabilityBlock, error)
	ListUnavailableExceptionsOverlapping(ctx context.Context, toolID int32, startDate, endDate string) ([]domain.FlexibleException, error)
	CreatePattern(ctx context.Context, pattern *domain.RecurringPattern) error
	GetPatternByID(ctx context.Context, id int32) (*domain.RecurringPattern, error)
	// CreateSlotIfAbsent inserts the slot unless one already exists for the
	// (tool, date, hour) key; an existing slot is left untouched.
	CreateSlotIfAbsent(ctx context.Context, slot *domain.HourlySlot) error
	ListBookedSlotsInRange(ctx context.Context, toolID int32, startDate, endDate string) ([]domain.HourlySlot, error)
	CountSlotsForPattern(ctx context.Context, toolID int32, startDate, endDate string) (int32, error)
}

type DepositRepository interface {
	Create(ctx context.Context, deposit *domain.Deposit) error
	GetByID(ctx context.Context, id int32) (*domain.Deposit, error)
	// GetByIDForUpdate locks the deposit row so concurrent ledger operations
	// on the same deposit serialize.
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Deposit, error)
	GetByRentalID(ctx context.Context, rentalID int32) (*domain.Deposit, error)
	UpdateStatus(ctx context.Context, id int32, status domain.DepositStatus) error
	AppendTransaction(ctx context.Context, tx *domain.DepositTransaction) error
	ListTransactions(ctx context.Context, depositID int32) ([]domain.DepositTransaction, error)
	ListForUser(ctx context.Context, userID int32) ([]domain.Deposit, error)
}

// Store aggregates the repositories. ExecTx runs fn against repositories
// bound to a single serializable database transaction; fn returning an error
// rolls everything back.
type Store interface {
	Users() UserRepository
	Tools() ToolRepository
	BorrowRequests() BorrowRequestRepository
	Rentals() RentalRepository
	Availability() AvailabilityRepository
	Deposits() DepositRepository
	ExecTx(ctx context.Context, fn func(Store) error) error
}
