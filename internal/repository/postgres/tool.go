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

type toolRepository struct {
	db DBTX
}

func NewToolRepository(db DBTX) repository.ToolRepository {
	return &toolRepository{db: db}
}

const toolColumns = `id, owner_id, name, description, pricing_type, price_per_hour_cents,
	price_per_day_cents, price_per_week_cents, price_per_month_cents,
	replacement_cost_cents, available, created_on`

func (r *toolRepository) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM tools WHERE id = $1`
	return r.scanTool(r.db.QueryRowContext(ctx, query, id), id)
}

func (r *toolRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM tools WHERE id = $1 FOR UPDATE`
	return r.scanTool(r.db.QueryRowContext(ctx, query, id), id)
}

func (r *toolRepository) scanTool(row *sql.Row, id int32) (*domain.Tool, error) {
	t := &domain.Tool{}
	var createdOn time.Time
	err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Description, &t.PricingType,
		&t.PricePerHourCents, &t.PricePerDayCents, &t.PricePerWeekCents,
		&t.PricePerMonthCents, &t.ReplacementCostCents, &t.Available, &createdOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: tool %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	t.CreatedOn = createdOn.Format(dateLayout)
	return t, nil
}

func (r *toolRepository) SetAvailable(ctx context.Context, id int32, available bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tools SET available = $1 WHERE id = $2`, available, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: tool %d", domain.ErrNotFound, id)
	}
	return nil
}
