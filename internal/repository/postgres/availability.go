package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/repository"

	"github.com/lib/pq"
)

type availabilityRepository struct {
	db DBTX
}

func NewAvailabilityRepository(db DBTX) repository.AvailabilityRepository {
	return &availabilityRepository{db: db}
}

func (r *availabilityRepository) ListBlocks(ctx context.Context, toolID int32) ([]domain.AvailabilityBlock, error) {
	query := `SELECT id, tool_id, start_date, end_date, is_booked, notes, created_on
	          FROM availability_blocks WHERE tool_id = $1 ORDER BY start_date`
	rows, err := r.db.QueryContext(ctx, query, toolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBlocks(rows)
}

func (r *availabilityRepository) ListBookedBlocksOverlapping(ctx context.Context, toolID int32, startDate, endDate string) ([]domain.AvailabilityBlock, error) {
	query := `SELECT id, tool_id, start_date, end_date, is_booked, notes, created_on
	          FROM availability_blocks
	          WHERE tool_id = $1 AND is_booked = true AND start_date < $3 AND end_date > $2
	          ORDER BY start_date`
	rows, err := r.db.QueryContext(ctx, query, toolID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBlocks(rows)
}

func (r *availabilityRepository) ListUnavailableExceptionsOverlapping(ctx context.Context, toolID int32, startDate, endDate string) ([]domain.FlexibleException, error) {
	// Open-ended bounds (NULL dates) overlap everything on that side.
	query := `SELECT id, tool_id, start_date, end_date, is_available, notes, created_on
	          FROM flexible_exceptions
	          WHERE tool_id = $1 AND is_available = false
	            AND (start_date IS NULL OR start_date < $3)
	            AND (end_date IS NULL OR end_date > $2)
	          ORDER BY created_on`
	rows, err := r.db.QueryContext(ctx, query, toolID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exceptions []domain.FlexibleException
	for rows.Next() {
		ex := domain.FlexibleException{}
		var start, end sql.NullTime
		var createdOn time.Time
		if err := rows.Scan(&ex.ID, &ex.ToolID, &start, &end, &ex.IsAvailable, &ex.Notes, &createdOn); err != nil {
			return nil, err
		}
		if start.Valid {
			s := start.Time.Format(dateLayout)
			ex.StartDate = &s
		}
		if end.Valid {
			e := end.Time.Format(dateLayout)
			ex.EndDate = &e
		}
		ex.CreatedOn = createdOn.Format(dateLayout)
		exceptions = append(exceptions, ex)
	}
	return exceptions, rows.Err()
}

func (r *availabilityRepository) CreatePattern(ctx context.Context, pattern *domain.RecurringPattern) error {
	days := make(pq.Int64Array, len(pattern.DaysOfWeek))
	for i, d := range pattern.DaysOfWeek {
		days[i] = int64(d)
	}
	query := `INSERT INTO recurring_patterns (tool_id, pattern_type, start_date, end_date,
	          days_of_week, start_time, end_time, is_active, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	return r.db.QueryRowContext(ctx, query, pattern.ToolID, pattern.PatternType,
		pattern.StartDate, pattern.EndDate, days, pattern.StartTime, pattern.EndTime,
		pattern.IsActive, time.Now()).Scan(&pattern.ID)
}

func (r *availabilityRepository) GetPatternByID(ctx context.Context, id int32) (*domain.RecurringPattern, error) {
	query := `SELECT id, tool_id, pattern_type, start_date, end_date, days_of_week,
	          start_time, end_time, is_active, created_on
	          FROM recurring_patterns WHERE id = $1`
	p := &domain.RecurringPattern{}
	var startDate, createdOn time.Time
	var endDate sql.NullTime
	var startTime, endTime sql.NullString
	var days pq.Int64Array
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.ToolID, &p.PatternType,
		&startDate, &endDate, &days, &startTime, &endTime, &p.IsActive, &createdOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: recurring pattern %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	p.StartDate = startDate.Format(dateLayout)
	if endDate.Valid {
		e := endDate.Time.Format(dateLayout)
		p.EndDate = &e
	}
	p.DaysOfWeek = make([]int, len(days))
	for i, d := range days {
		p.DaysOfWeek[i] = int(d)
	}
	if t := nullTimeOfDay(startTime); t != nil {
		p.StartTime = *t
	}
	if t := nullTimeOfDay(endTime); t != nil {
		p.EndTime = *t
	}
	p.CreatedOn = createdOn.Format(dateLayout)
	return p, nil
}

func (r *availabilityRepository) CreateSlotIfAbsent(ctx context.Context, slot *domain.HourlySlot) error {
	// Create-if-absent: an existing (tool, date, hour) row is never touched,
	// so re-expansion cannot reset a booked slot.
	query := `INSERT INTO hourly_slots (tool_id, date, hour, is_available, is_booked, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (tool_id, date, hour) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, slot.ToolID, slot.Date, slot.Hour,
		slot.IsAvailable, slot.IsBooked, time.Now())
	return err
}

func (r *availabilityRepository) ListBookedSlotsInRange(ctx context.Context, toolID int32, startDate, endDate string) ([]domain.HourlySlot, error) {
	query := `SELECT id, tool_id, date, hour, is_available, is_booked, created_on
	          FROM hourly_slots
	          WHERE tool_id = $1 AND date >= $2 AND date <= $3 AND is_booked = true
	          ORDER BY date, hour`
	rows, err := r.db.QueryContext(ctx, query, toolID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []domain.HourlySlot
	for rows.Next() {
		s := domain.HourlySlot{}
		var date, createdOn time.Time
		if err := rows.Scan(&s.ID, &s.ToolID, &date, &s.Hour, &s.IsAvailable, &s.IsBooked, &createdOn); err != nil {
			return nil, err
		}
		s.Date = date.Format(dateLayout)
		s.CreatedOn = createdOn.Format(dateLayout)
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *availabilityRepository) CountSlotsForPattern(ctx context.Context, toolID int32, startDate, endDate string) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM hourly_slots WHERE tool_id = $1 AND date >= $2 AND date <= $3`
	err := r.db.QueryRowContext(ctx, query, toolID, startDate, endDate).Scan(&count)
	return count, err
}

func collectBlocks(rows *sql.Rows) ([]domain.AvailabilityBlock, error) {
	var blocks []domain.AvailabilityBlock
	for rows.Next() {
		b := domain.AvailabilityBlock{}
		var startDate, endDate, createdOn time.Time
		if err := rows.Scan(&b.ID, &b.ToolID, &startDate, &endDate, &b.IsBooked, &b.Notes, &createdOn); err != nil {
			return nil, err
		}
		b.StartDate = startDate.Format(dateLayout)
		b.EndDate = endDate.Format(dateLayout)
		b.CreatedOn = createdOn.Format(dateLayout)
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}
