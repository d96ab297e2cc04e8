package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/repository"
)

type rentalService struct {
	store    repository.Store
	emailSvc EmailService
}

func NewRentalService(store repository.Store, emailSvc EmailService) RentalService {
	return &rentalService{store: store, emailSvc: emailSvc}
}

func (s *rentalService) GetRental(ctx context.Context, userID, rentalID int32) (*domain.RentalTransaction, error) {
	rental, err := s.store.Rentals().GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.BorrowerID != userID && rental.OwnerID != userID {
		return nil, fmt.Errorf("%w: user %d is not a party to rental %d", domain.ErrForbidden, userID, rentalID)
	}
	return rental, nil
}

func (s *rentalService) CompleteRental(ctx context.Context, ownerID, rentalID int32) (*domain.RentalTransaction, error) {
	var rental *domain.RentalTransaction
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		r, err := tx.Rentals().GetByID(ctx, rentalID)
		if err != nil {
			return err
		}
		if r.OwnerID != ownerID {
			return fmt.Errorf("%w: user %d does not own rental %d", domain.ErrForbidden, ownerID, rentalID)
		}
		if r.Status != domain.RentalStatusActive {
			return fmt.Errorf("%w: rental %d is %s, only active rentals can be completed", domain.ErrInvalidState, rentalID, r.Status)
		}
		if err := tx.Rentals().UpdateStatus(ctx, rentalID, domain.RentalStatusCompleted); err != nil {
			return err
		}
		if err := tx.Tools().SetAvailable(ctx, r.ToolID, true); err != nil {
			return err
		}
		r.Status = domain.RentalStatusCompleted
		rental = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "rental completed", "rental_id", rentalID, "tool_id", rental.ToolID)
	return rental, nil
}

func (s *rentalService) SweepOverdue(ctx context.Context, today time.Time, dryRun bool) (*domain.OverdueSweepReport, error) {
	todayStr := today.Format(dateLayout)
	report := &domain.OverdueSweepReport{SweepDate: todayStr, DryRun: dryRun}

	overdue, err := s.store.Rentals().ListOverdue(ctx, todayStr)
	if err != nil {
		return nil, err
	}
	report.Found = len(overdue)
	logger.InfoContext(ctx, "overdue sweep started",
		"sweep_date", todayStr, "dry_run", dryRun, "found", report.Found)

	for i := range overdue {
		// Each rental is swept in its own transaction so one bad record
		// cannot take down the batch.
		s.sweepOne(ctx, &overdue[i], dryRun, report)
	}

	logger.InfoContext(ctx, "overdue sweep finished",
		"sweep_date", todayStr, "dry_run", dryRun,
		"processed", report.Processed, "forfeited", report.Forfeited,
		"warnings", len(report.Warnings), "integrity_errors", len(report.Integrity))
	return report, nil
}

// sweepOutcome is what one sweep transaction produced. It is merged into the
// report only after the transaction commits; a serialization retry restarts
// from a clean outcome instead of double-counting.
type sweepOutcome struct {
	rentalID, depositID int32
	forfeited           *domain.Deposit
	counted             bool
	warning, integrity  string
}

func (s *rentalService) sweepOne(ctx context.Context, rental *domain.RentalTransaction, dryRun bool, report *domain.OverdueSweepReport) {
	var out sweepOutcome
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		out = sweepOutcome{}

		dep, err := tx.Deposits().GetByRentalID(ctx, rental.ID)
		if errors.Is(err, domain.ErrNotFound) {
			out.integrity = fmt.Sprintf("rental %d has no deposit", rental.ID)
			return nil
		}
		if err != nil {
			return err
		}
		if dep.Status.IsTerminal() {
			out.warning = fmt.Sprintf("rental %d deposit %d already %s", rental.ID, dep.ID, dep.Status)
			return nil
		}

		out.rentalID = rental.ID
		out.depositID = dep.ID
		out.counted = true
		if dryRun {
			return nil
		}

		// Re-fetch under lock; another actor may have resolved the deposit
		// between the read above and here.
		dep, err = tx.Deposits().GetByIDForUpdate(ctx, dep.ID)
		if err != nil {
			return err
		}
		if dep.Status.IsTerminal() {
			out = sweepOutcome{warning: fmt.Sprintf("rental %d deposit %d already %s", rental.ID, dep.ID, dep.Status)}
			return nil
		}

		reason := fmt.Sprintf("Deposit forfeited: tool not returned by %s", rental.EndDate)
		if err := forfeitDeposit(ctx, tx, dep, dep.AmountCents, reason, rental.OwnerID); err != nil {
			return err
		}
		if err := tx.Rentals().UpdateStatus(ctx, rental.ID, domain.RentalStatusCompleted); err != nil {
			return err
		}
		if err := tx.Tools().SetAvailable(ctx, rental.ToolID, true); err != nil {
			return err
		}
		out.forfeited = dep
		return nil
	})
	if err != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("rental %d sweep failed: %v", rental.ID, err))
		logger.ErrorContext(ctx, "overdue rental sweep failed", "rental_id", rental.ID, "error", err)
		return
	}
	report.Processed++

	if out.integrity != "" {
		report.Integrity = append(report.Integrity, out.integrity)
	}
	if out.warning != "" {
		report.Warnings = append(report.Warnings, out.warning)
	}
	if out.counted {
		report.RentalIDs = append(report.RentalIDs, out.rentalID)
		report.DepositIDs = append(report.DepositIDs, out.depositID)
		report.Forfeited++
	}

	if out.forfeited != nil {
		s.notifyForfeit(ctx, rental, out.forfeited)
	}
}

func (s *rentalService) notifyForfeit(ctx context.Context, rental *domain.RentalTransaction, dep *domain.Deposit) {
	borrower, err := s.store.Users().GetByID(ctx, rental.BorrowerID)
	if err != nil {
		logger.WarnContext(ctx, "skipping forfeit notification", "rental_id", rental.ID, "error", err)
		return
	}
	tool, err := s.store.Tools().GetByID(ctx, rental.ToolID)
	if err != nil {
		logger.WarnContext(ctx, "skipping forfeit notification", "rental_id", rental.ID, "error", err)
		return
	}
	if err := s.emailSvc.SendDepositForfeitedNotification(ctx, borrower.Email, tool.Name, dep.AmountCents); err != nil {
		logger.WarnContext(ctx, "forfeit notification failed", "rental_id", rental.ID, "error", err)
	}
}
