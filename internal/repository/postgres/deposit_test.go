package postgres

import (
	"context"
	"testing"
	"time"

	"toolshare-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestDepositRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewDepositRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		d := &domain.Deposit{
			RentalID:    77,
			AmountCents: 5000,
			Status:      domain.DepositStatusPending,
		}

		mock.ExpectQuery("INSERT INTO deposits").
			WithArgs(d.RentalID, d.AmountCents, d.Status, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))

		err := repo.Create(ctx, d)
		assert.NoError(t, err)
		assert.Equal(t, int32(4), d.ID)
	})
}

func TestDepositRepository_GetByIDForUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewDepositRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "rental_id", "amount_cents", "status", "created_on", "updated_on"}).
			AddRow(4, 77, 5000, "PENDING", time.Now(), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM deposits WHERE id = \\$1 FOR UPDATE").
			WithArgs(int32(4)).
			WillReturnRows(rows)

		d, err := repo.GetByIDForUpdate(ctx, 4)
		assert.NoError(t, err)
		assert.NotNil(t, d)
		assert.Equal(t, domain.DepositStatusPending, d.Status)
		assert.Equal(t, int32(5000), d.AmountCents)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM deposits WHERE id = \\$1 FOR UPDATE").
			WithArgs(int32(99)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		d, err := repo.GetByIDForUpdate(ctx, 99)
		assert.Nil(t, d)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestDepositRepository_GetByRentalID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewDepositRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "rental_id", "amount_cents", "status", "created_on", "updated_on"}).
			AddRow(4, 77, 5000, "PAID", time.Now(), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM deposits WHERE rental_id = \\$1").
			WithArgs(int32(77)).
			WillReturnRows(rows)

		d, err := repo.GetByRentalID(ctx, 77)
		assert.NoError(t, err)
		assert.Equal(t, int32(4), d.ID)
		assert.Equal(t, domain.DepositStatusPaid, d.Status)
	})
}

func TestDepositRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewDepositRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE deposits SET status = \\$1").
			WithArgs(domain.DepositStatusPaid, sqlmock.AnyArg(), int32(4)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(ctx, 4, domain.DepositStatusPaid)
		assert.NoError(t, err)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec("UPDATE deposits SET status = \\$1").
			WithArgs(domain.DepositStatusPaid, sqlmock.AnyArg(), int32(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(ctx, 99, domain.DepositStatusPaid)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestDepositRepository_AppendTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewDepositRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		tx := &domain.DepositTransaction{
			DepositID:   4,
			Type:        domain.DepositTransactionTypePayment,
			AmountCents: 5000,
			Reference:   "PAY-abc",
			Description: "Deposit payment",
			ProcessedBy: 3,
		}

		mock.ExpectQuery("INSERT INTO deposit_transactions").
			WithArgs(tx.DepositID, tx.Type, tx.AmountCents, tx.Reference, tx.Description,
				tx.ProcessedBy, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

		err := repo.AppendTransaction(ctx, tx)
		assert.NoError(t, err)
		assert.Equal(t, int32(11), tx.ID)
	})
}

func TestDepositRepository_ListTransactions(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewDepositRepository(db)
	ctx := context.Background()

	t.Run("LedgerOrder", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "deposit_id", "transaction_type", "amount_cents",
			"reference", "description", "processed_by", "created_on"}).
			AddRow(11, 4, "PAYMENT", 5000, "PAY-abc", "Deposit payment", 3, time.Now()).
			AddRow(12, 4, "FORFEIT", 5000, "FOR-def", "Overdue forfeiture", 1, time.Now())

		mock.ExpectQuery("SELECT (.+) FROM deposit_transactions WHERE deposit_id = \\$1").
			WithArgs(int32(4)).
			WillReturnRows(rows)

		txs, err := repo.ListTransactions(ctx, 4)
		assert.NoError(t, err)
		assert.Len(t, txs, 2)
		assert.Equal(t, domain.DepositTransactionTypePayment, txs[0].Type)
		assert.Equal(t, domain.DepositTransactionTypeForfeit, txs[1].Type)
	})
}

func TestDepositRepository_ListForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewDepositRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "rental_id", "amount_cents", "status", "created_on", "updated_on"}).
			AddRow(4, 77, 5000, "PAID", time.Now(), time.Now()).
			AddRow(5, 80, 5000, "PENDING", time.Now(), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM deposits d JOIN rentals rt ON rt.id = d.rental_id").
			WithArgs(int32(3)).
			WillReturnRows(rows)

		deposits, err := repo.ListForUser(ctx, 3)
		assert.NoError(t, err)
		assert.Len(t, deposits, 2)
		assert.Equal(t, int32(77), deposits[0].RentalID)
	})
}
