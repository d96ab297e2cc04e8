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

type borrowRequestRepository struct {
	db DBTX
}

func NewBorrowRequestRepository(db DBTX) repository.BorrowRequestRepository {
	return &borrowRequestRepository{db: db}
}

const borrowRequestColumns = `id, tool_id, borrower_id, owner_id, start_date, end_date,
	start_time, end_time, message, status, owner_response, expires_at, created_on, updated_on`

func (r *borrowRequestRepository) Create(ctx context.Context, req *domain.BorrowRequest) error {
	query := `INSERT INTO borrow_requests (tool_id, borrower_id, owner_id, start_date, end_date,
	          start_time, end_time, message, status, owner_response, expires_at, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query, req.ToolID, req.BorrowerID, req.OwnerID,
		req.StartDate, req.EndDate, req.StartTime, req.EndTime, req.Message,
		req.Status, req.OwnerResponse, req.ExpiresAt, now, now).Scan(&req.ID)
}

func (r *borrowRequestRepository) GetByID(ctx context.Context, id int32) (*domain.BorrowRequest, error) {
	query := `SELECT ` + borrowRequestColumns + ` FROM borrow_requests WHERE id = $1`
	req, err := scanBorrowRequest(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: borrow request %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *borrowRequestRepository) Update(ctx context.Context, req *domain.BorrowRequest) error {
	query := `UPDATE borrow_requests SET status = $1, owner_response = $2, updated_on = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, req.Status, req.OwnerResponse, time.Now(), req.ID)
	return err
}

func (r *borrowRequestRepository) ListApprovedOverlapping(ctx context.Context, toolID int32, startDate, endDate string) ([]domain.BorrowRequest, error) {
	// Closed-open interval overlap: [s1,e1) and [s2,e2) overlap iff s1 < e2 and s2 < e1.
	query := `SELECT ` + borrowRequestColumns + ` FROM borrow_requests
	          WHERE tool_id = $1 AND status = $2 AND start_date < $4 AND end_date > $3
	          ORDER BY start_date`
	rows, err := r.db.QueryContext(ctx, query, toolID, domain.BorrowRequestStatusApproved, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBorrowRequests(rows)
}

func (r *borrowRequestRepository) ListByBorrower(ctx context.Context, borrowerID int32, status string) ([]domain.BorrowRequest, error) {
	return r.listByUser(ctx, "borrower_id", borrowerID, status)
}

func (r *borrowRequestRepository) ListByOwner(ctx context.Context, ownerID int32, status string) ([]domain.BorrowRequest, error) {
	return r.listByUser(ctx, "owner_id", ownerID, status)
}

func (r *borrowRequestRepository) listByUser(ctx context.Context, column string, userID int32, status string) ([]domain.BorrowRequest, error) {
	query := `SELECT ` + borrowRequestColumns + ` FROM borrow_requests WHERE ` + column + ` = $1`
	args := []interface{}{userID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_on DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBorrowRequests(rows)
}

func (r *borrowRequestRepository) ExpirePending(ctx context.Context, now time.Time) ([]int32, error) {
	query := `UPDATE borrow_requests SET status = $1, updated_on = $2
	          WHERE status = $3 AND expires_at < $2 RETURNING id`
	rows, err := r.db.QueryContext(ctx, query, domain.BorrowRequestStatusExpired, now, domain.BorrowRequestStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanBorrowRequest(row *sql.Row) (*domain.BorrowRequest, error) {
	req := &domain.BorrowRequest{}
	var startDate, endDate, createdOn, updatedOn time.Time
	var startTime, endTime sql.NullString
	err := row.Scan(&req.ID, &req.ToolID, &req.BorrowerID, &req.OwnerID,
		&startDate, &endDate, &startTime, &endTime, &req.Message,
		&req.Status, &req.OwnerResponse, &req.ExpiresAt, &createdOn, &updatedOn)
	if err != nil {
		return nil, err
	}
	req.StartDate = startDate.Format(dateLayout)
	req.EndDate = endDate.Format(dateLayout)
	req.StartTime = nullTimeOfDay(startTime)
	req.EndTime = nullTimeOfDay(endTime)
	req.CreatedOn = createdOn.Format(dateLayout)
	req.UpdatedOn = updatedOn.Format(dateLayout)
	return req, nil
}

func collectBorrowRequests(rows *sql.Rows) ([]domain.BorrowRequest, error) {
	var reqs []domain.BorrowRequest
	for rows.Next() {
		req := domain.BorrowRequest{}
		var startDate, endDate, createdOn, updatedOn time.Time
		var startTime, endTime sql.NullString
		if err := rows.Scan(&req.ID, &req.ToolID, &req.BorrowerID, &req.OwnerID,
			&startDate, &endDate, &startTime, &endTime, &req.Message,
			&req.Status, &req.OwnerResponse, &req.ExpiresAt, &createdOn, &updatedOn); err != nil {
			return nil, err
		}
		req.StartDate = startDate.Format(dateLayout)
		req.EndDate = endDate.Format(dateLayout)
		req.StartTime = nullTimeOfDay(startTime)
		req.EndTime = nullTimeOfDay(endTime)
		req.CreatedOn = createdOn.Format(dateLayout)
		req.UpdatedOn = updatedOn.Format(dateLayout)
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}
