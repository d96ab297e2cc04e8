package service

import (
	"context"
	"time"

	"toolshare-backend/internal/domain"
)

type AvailabilityService interface {
	// CheckConflict evaluates the window against every booking source for the
	// tool and reports each overlap found.
	CheckConflict(ctx context.Context, toolID int32, window domain.Window) (*domain.ConflictReport, error)
	GetToolAvailability(ctx context.Context, toolID int32) (*domain.ToolAvailability, error)
	CreateRecurringPattern(ctx context.Context, ownerID int32, pattern *domain.RecurringPattern) (int32, error)
	// ExpandRecurringPattern materializes the pattern into hourly slots.
	// Re-running it is a no-op for hours already materialized. Returns the
	// number of slots now covering the pattern's range.
	ExpandRecurringPattern(ctx context.Context, patternID int32) (int32, error)
}

type BookingService interface {
	CreateRequest(ctx context.Context, borrowerID, toolID int32, window domain.Window, message string) (*domain.BorrowRequest, error)
	ApproveRequest(ctx context.Context, ownerID, requestID int32, ownerResponse string) (*domain.RentalTransaction, error)
	RejectRequest(ctx context.Context, ownerID, requestID int32, ownerResponse string) (*domain.BorrowRequest, error)
	CancelRequest(ctx context.Context, borrowerID, requestID int32) (*domain.BorrowRequest, error)
	ListBorrowerRequests(ctx context.Context, borrowerID int32, status string) ([]domain.BorrowRequest, error)
	ListOwnerRequests(ctx context.Context, ownerID int32, status string) ([]domain.BorrowRequest, error)
	// ExpirePendingRequests lapses every PENDING request past its timeout.
	ExpirePendingRequests(ctx context.Context, now time.Time) ([]int32, error)
}

type DepositService interface {
	GetDeposit(ctx context.Context, userID, depositID int32) (*domain.Deposit, []domain.DepositTransaction, error)
	ListDeposits(ctx context.Context, userID int32) ([]domain.Deposit, error)
	ProcessPayment(ctx context.Context, actorID, depositID int32, reference string) (*domain.Deposit, error)
	ProcessRefund(ctx context.Context, actorID, depositID int32) (*domain.Deposit, error)
	ProcessForfeit(ctx context.Context, actorID, depositID, amountCents int32, reason string) (*domain.Deposit, error)
}

type RentalService interface {
	GetRental(ctx context.Context, userID, rentalID int32) (*domain.RentalTransaction, error)
	CompleteRental(ctx context.Context, ownerID, rentalID int32) (*domain.RentalTransaction, error)
	// SweepOverdue forfeits deposits on rentals whose end date has passed.
	// With dryRun set it only reports what would happen.
	SweepOverdue(ctx context.Context, today time.Time, dryRun bool) (*domain.OverdueSweepReport, error)
}

type EmailService interface {
	SendBorrowRequestNotification(ctx context.Context, ownerEmail, borrowerName, toolName string) error
	SendRequestApprovedNotification(ctx context.Context, borrowerEmail, toolName, ownerResponse string) error
	SendRequestRejectedNotification(ctx context.Context, borrowerEmail, toolName, ownerResponse string) error
	SendDepositForfeitedNotification(ctx context.Context, borrowerEmail, toolName string, amountCents int32) error
}
