package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/repository"
)

type depositRepository struct {
	db DBTX
}

func NewDepositRepository(db DBTX) repository.DepositRepository {
	return &depositRepository{db: db}
}

const depositColumns = `id, rental_id, amount_cents, status, created_on, updated_on`

func (r *depositRepository) Create(ctx context.Context, d *domain.Deposit) error {
	query := `INSERT INTO deposits (rental_id, amount_cents, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query, d.RentalID, d.AmountCents, d.Status, now, now).Scan(&d.ID)
}

func (r *depositRepository) GetByID(ctx context.Context, id int32) (*domain.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE id = $1`
	return r.scanDeposit(r.db.QueryRowContext(ctx, query, id), fmt.Sprintf("deposit %d", id))
}

func (r *depositRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE id = $1 FOR UPDATE`
	return r.scanDeposit(r.db.QueryRowContext(ctx, query, id), fmt.Sprintf("deposit %d", id))
}

func (r *depositRepository) GetByRentalID(ctx context.Context, rentalID int32) (*domain.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE rental_id = $1`
	return r.scanDeposit(r.db.QueryRowContext(ctx, query, rentalID), fmt.Sprintf("deposit for rental %d", rentalID))
}

func (r *depositRepository) scanDeposit(row *sql.Row, ident string) (*domain.Deposit, error) {
	d := &domain.Deposit{}
	var createdOn, updatedOn time.Time
	err := row.Scan(&d.ID, &d.RentalID, &d.AmountCents, &d.Status, &createdOn, &updatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ident)
	}
	if err != nil {
		return nil, err
	}
	d.CreatedOn = createdOn.Format(dateLayout)
	d.UpdatedOn = updatedOn.Format(dateLayout)
	return d, nil
}

func (r *depositRepository) UpdateStatus(ctx context.Context, id int32, status domain.DepositStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE deposits SET status = $1, updated_on = $2 WHERE id = $3`,
		status, time.Now(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: deposit %d", domain.ErrNotFound, id)
	}
	return nil
}

func (r *depositRepository) AppendTransaction(ctx context.Context, tx *domain.DepositTransaction) error {
	query := `INSERT INTO deposit_transactions (deposit_id, transaction_type, amount_cents,
	          reference, description, processed_by, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRowContext(ctx, query, tx.DepositID, tx.Type, tx.AmountCents,
		tx.Reference, tx.Description, tx.ProcessedBy, time.Now()).Scan(&tx.ID)
}

func (r *depositRepository) ListTransactions(ctx context.Context, depositID int32) ([]domain.DepositTransaction, error) {
	query := `SELECT id, deposit_id, transaction_type, amount_cents, reference, description, processed_by, created_on
	          FROM deposit_transactions WHERE deposit_id = $1 ORDER BY created_on, id`
	rows, err := r.db.QueryContext(ctx, query, depositID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.DepositTransaction
	for rows.Next() {
		tx := domain.DepositTransaction{}
		var createdOn time.Time
		if err := rows.Scan(&tx.ID, &tx.DepositID, &tx.Type, &tx.AmountCents,
			&tx.Reference, &tx.Description, &tx.ProcessedBy, &createdOn); err != nil {
			return nil, err
		}
		tx.CreatedOn = createdOn.Format(dateLayout)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (r *depositRepository) ListForUser(ctx context.Context, userID int32) ([]domain.Deposit, error) {
	query := `SELECT d.id, d.rental_id, d.amount_cents, d.status, d.created_on, d.updated_on
	          FROM deposits d JOIN rentals rt ON rt.id = d.rental_id
	          WHERE rt.borrower_id = $1 OR rt.owner_id = $1
	          ORDER BY d.created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deposits []domain.Deposit
	for rows.Next() {
		d := domain.Deposit{}
		var createdOn, updatedOn time.Time
		if err := rows.Scan(&d.ID, &d.RentalID, &d.AmountCents, &d.Status, &createdOn, &updatedOn); err != nil {
			return nil, err
		}
		d.CreatedOn = createdOn.Format(dateLayout)
		d.UpdatedOn = updatedOn.Format(dateLayout)
		deposits = append(deposits, d)
	}
	return deposits, rows.Err()
}
