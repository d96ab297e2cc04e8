package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/repository"
)

type depositService struct {
	store repository.Store
}

func NewDepositService(store repository.Store) DepositService {
	return &depositService{store: store}
}

// openDeposit creates the PENDING deposit for a freshly activated rental.
// It runs against the caller's store, so booking approval opens the deposit
// inside its own transaction.
func openDeposit(ctx context.Context, store repository.Store, rentalID, amountCents int32) (*domain.Deposit, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("%w: deposit amount must be positive, got %d", domain.ErrValidation, amountCents)
	}
	dep := &domain.Deposit{
		RentalID:    rentalID,
		AmountCents: amountCents,
		Status:      domain.DepositStatusPending,
	}
	if err := store.Deposits().Create(ctx, dep); err != nil {
		return nil, err
	}
	return dep, nil
}

// forfeitDeposit appends the FORFEIT ledger entry and moves the deposit to
// FORFEITED, against the caller's store. The deposit row must already be
// locked by the caller.
func forfeitDeposit(ctx context.Context, store repository.Store, dep *domain.Deposit, amountCents int32, reason string, actorID int32) error {
	entry := &domain.DepositTransaction{
		DepositID:   dep.ID,
		Type:        domain.DepositTransactionTypeForfeit,
		AmountCents: amountCents,
		Reference:   "FOR-" + uuid.New().String(),
		Description: reason,
		ProcessedBy: actorID,
	}
	if err := store.Deposits().AppendTransaction(ctx, entry); err != nil {
		return err
	}
	if err := store.Deposits().UpdateStatus(ctx, dep.ID, domain.DepositStatusForfeited); err != nil {
		return err
	}
	dep.Status = domain.DepositStatusForfeited
	return nil
}

func (s *depositService) GetDeposit(ctx context.Context, userID, depositID int32) (*domain.Deposit, []domain.DepositTransaction, error) {
	dep, err := s.store.Deposits().GetByID(ctx, depositID)
	if err != nil {
		return nil, nil, err
	}
	rental, err := s.store.Rentals().GetByID(ctx, dep.RentalID)
	if err != nil {
		return nil, nil, err
	}
	if rental.BorrowerID != userID && rental.OwnerID != userID {
		return nil, nil, fmt.Errorf("%w: user %d is not a party to deposit %d", domain.ErrForbidden, userID, depositID)
	}
	entries, err := s.store.Deposits().ListTransactions(ctx, depositID)
	if err != nil {
		return nil, nil, err
	}
	return dep, entries, nil
}

func (s *depositService) ListDeposits(ctx context.Context, userID int32) ([]domain.Deposit, error) {
	return s.store.Deposits().ListForUser(ctx, userID)
}

func (s *depositService) ProcessPayment(ctx context.Context, actorID, depositID int32, reference string) (*domain.Deposit, error) {
	var out *domain.Deposit
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		dep, rental, err := lockDeposit(ctx, tx, depositID)
		if err != nil {
			return err
		}
		if rental.BorrowerID != actorID {
			return fmt.Errorf("%w: only the borrower can pay deposit %d", domain.ErrForbidden, depositID)
		}
		// Re-invoking at the target state is a no-op.
		if dep.Status == domain.DepositStatusPaid {
			out = dep
			return nil
		}
		if dep.Status != domain.DepositStatusPending {
			return fmt.Errorf("%w: deposit %d is %s, cannot record payment", domain.ErrInvalidState, depositID, dep.Status)
		}

		if reference == "" {
			reference = "PAY-" + uuid.New().String()
		}
		entry := &domain.DepositTransaction{
			DepositID:   dep.ID,
			Type:        domain.DepositTransactionTypePayment,
			AmountCents: dep.AmountCents,
			Reference:   reference,
			Description: fmt.Sprintf("Security deposit payment for rental %d", dep.RentalID),
			ProcessedBy: actorID,
		}
		if err := tx.Deposits().AppendTransaction(ctx, entry); err != nil {
			return err
		}
		if err := tx.Deposits().UpdateStatus(ctx, dep.ID, domain.DepositStatusPaid); err != nil {
			return err
		}
		dep.Status = domain.DepositStatusPaid
		out = dep
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "deposit payment recorded", "deposit_id", depositID, "actor_id", actorID)
	return out, nil
}

func (s *depositService) ProcessRefund(ctx context.Context, actorID, depositID int32) (*domain.Deposit, error) {
	var out *domain.Deposit
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		dep, rental, err := lockDeposit(ctx, tx, depositID)
		if err != nil {
			return err
		}
		if rental.OwnerID != actorID {
			return fmt.Errorf("%w: only the owner can refund deposit %d", domain.ErrForbidden, depositID)
		}
		if dep.Status == domain.DepositStatusRefunded {
			out = dep
			return nil
		}
		if dep.Status != domain.DepositStatusPaid {
			return fmt.Errorf("%w: deposit %d is %s, only a paid deposit can be refunded", domain.ErrInvalidState, depositID, dep.Status)
		}

		entry := &domain.DepositTransaction{
			DepositID:   dep.ID,
			Type:        domain.DepositTransactionTypeRefund,
			AmountCents: dep.AmountCents,
			Reference:   "REF-" + uuid.New().String(),
			Description: fmt.Sprintf("Security deposit refund for rental %d", dep.RentalID),
			ProcessedBy: actorID,
		}
		if err := tx.Deposits().AppendTransaction(ctx, entry); err != nil {
			return err
		}
		if err := tx.Deposits().UpdateStatus(ctx, dep.ID, domain.DepositStatusRefunded); err != nil {
			return err
		}
		dep.Status = domain.DepositStatusRefunded
		out = dep
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "deposit refunded", "deposit_id", depositID, "actor_id", actorID)
	return out, nil
}

func (s *depositService) ProcessForfeit(ctx context.Context, actorID, depositID, amountCents int32, reason string) (*domain.Deposit, error) {
	var out *domain.Deposit
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		dep, rental, err := lockDeposit(ctx, tx, depositID)
		if err != nil {
			return err
		}
		if rental.OwnerID != actorID {
			return fmt.Errorf("%w: only the owner can forfeit deposit %d", domain.ErrForbidden, depositID)
		}
		if dep.Status == domain.DepositStatusForfeited {
			out = dep
			return nil
		}
		if dep.Status != domain.DepositStatusPending && dep.Status != domain.DepositStatusPaid {
			return fmt.Errorf("%w: deposit %d is %s, cannot forfeit", domain.ErrInvalidState, depositID, dep.Status)
		}

		if amountCents <= 0 {
			amountCents = dep.AmountCents
		}
		if amountCents > dep.AmountCents {
			return fmt.Errorf("%w: forfeit amount %d exceeds deposit amount %d", domain.ErrValidation, amountCents, dep.AmountCents)
		}
		if reason == "" {
			reason = fmt.Sprintf("Security deposit forfeited for rental %d", dep.RentalID)
		}
		if err := forfeitDeposit(ctx, tx, dep, amountCents, reason, actorID); err != nil {
			return err
		}
		out = dep
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "deposit forfeited", "deposit_id", depositID, "actor_id", actorID, "amount_cents", amountCents)
	return out, nil
}

// lockDeposit fetches the deposit under a row lock together with its rental.
func lockDeposit(ctx context.Context, tx repository.Store, depositID int32) (*domain.Deposit, *domain.RentalTransaction, error) {
	dep, err := tx.Deposits().GetByIDForUpdate(ctx, depositID)
	if err != nil {
		return nil, nil, err
	}
	rental, err := tx.Rentals().GetByID(ctx, dep.RentalID)
	if err != nil {
		return nil, nil, err
	}
	return dep, rental, nil
}
