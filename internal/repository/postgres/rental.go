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

type rentalRepository struct {
	db DBTX
}

func NewRentalRepository(db DBTX) repository.RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `id, tool_id, borrower_id, owner_id, start_date, end_date,
	start_time, end_time, total_price_cents, payment_status, payment_reference, status, created_on`

func (r *rentalRepository) Create(ctx context.Context, rt *domain.RentalTransaction) error {
	query := `INSERT INTO rentals (tool_id, borrower_id, owner_id, start_date, end_date,
	          start_time, end_time, total_price_cents, payment_status, payment_reference, status, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	return r.db.QueryRowContext(ctx, query, rt.ToolID, rt.BorrowerID, rt.OwnerID,
		rt.StartDate, rt.EndDate, rt.StartTime, rt.EndTime, rt.TotalPriceCents,
		rt.PaymentStatus, rt.PaymentReference, rt.Status, time.Now()).Scan(&rt.ID)
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.RentalTransaction, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	rt := &domain.RentalTransaction{}
	var startDate, endDate, createdOn time.Time
	var startTime, endTime sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(&rt.ID, &rt.ToolID, &rt.BorrowerID,
		&rt.OwnerID, &startDate, &endDate, &startTime, &endTime, &rt.TotalPriceCents,
		&rt.PaymentStatus, &rt.PaymentReference, &rt.Status, &createdOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: rental %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	rt.StartDate = startDate.Format(dateLayout)
	rt.EndDate = endDate.Format(dateLayout)
	rt.StartTime = nullTimeOfDay(startTime)
	rt.EndTime = nullTimeOfDay(endTime)
	rt.CreatedOn = createdOn.Format(dateLayout)
	return rt, nil
}

func (r *rentalRepository) UpdateStatus(ctx context.Context, id int32, status domain.RentalStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE rentals SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: rental %d", domain.ErrNotFound, id)
	}
	return nil
}

func (r *rentalRepository) ListActiveOverlapping(ctx context.Context, toolID int32, startDate, endDate string) ([]domain.RentalTransaction, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE tool_id = $1 AND status = $2 AND start_date < $4 AND end_date > $3
	          ORDER BY start_date`
	rows, err := r.db.QueryContext(ctx, query, toolID, domain.RentalStatusActive, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRentals(rows)
}

func (r *rentalRepository) ListOverdue(ctx context.Context, today string) ([]domain.RentalTransaction, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE status = $1 AND end_date < $2 ORDER BY end_date`
	rows, err := r.db.QueryContext(ctx, query, domain.RentalStatusActive, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRentals(rows)
}

func collectRentals(rows *sql.Rows) ([]domain.RentalTransaction, error) {
	var rentals []domain.RentalTransaction
	for rows.Next() {
		rt := domain.RentalTransaction{}
		var startDate, endDate, createdOn time.Time
		var startTime, endTime sql.NullString
		if err := rows.Scan(&rt.ID, &rt.ToolID, &rt.BorrowerID, &rt.OwnerID,
			&startDate, &endDate, &startTime, &endTime, &rt.TotalPriceCents,
			&rt.PaymentStatus, &rt.PaymentReference, &rt.Status, &createdOn); err != nil {
			return nil, err
		}
		rt.StartDate = startDate.Format(dateLayout)
		rt.EndDate = endDate.Format(dateLayout)
		rt.StartTime = nullTimeOfDay(startTime)
		rt.EndTime = nullTimeOfDay(endTime)
		rt.CreatedOn = createdOn.Format(dateLayout)
		rentals = append(rentals, rt)
	}
	return rentals, rows.Err()
}
