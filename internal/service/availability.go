package service

import (
	"context"
	"fmt"
	"time"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/repository"
)

const dateLayout = "2006-01-02"

// availabilityHorizonDays bounds open-ended recurring patterns and the
// calendar view returned by GetToolAvailability.
const availabilityHorizonDays = 365

type availabilityService struct {
	store repository.Store
	now   func() time.Time
}

func NewAvailabilityService(store repository.Store) AvailabilityService {
	return &availabilityService{store: store, now: time.Now}
}

// conflictSource is one booking source consulted by the conflict check. The
// check passes only when every source comes back empty.
type conflictSource struct {
	name    string
	collect func(ctx context.Context, store repository.Store, toolID int32, w domain.Window) ([]domain.Conflict, error)
}

var conflictSources = []conflictSource{
	{domain.ConflictSourceRental, rentalConflicts},
	{domain.ConflictSourceRequest, requestConflicts},
	{domain.ConflictSourceBlock, blockConflicts},
	{domain.ConflictSourceException, exceptionConflicts},
	{domain.ConflictSourceHourly, hourlyConflicts},
}

func (s *availabilityService) CheckConflict(ctx context.Context, toolID int32, window domain.Window) (*domain.ConflictReport, error) {
	if err := validateWindow(window); err != nil {
		return nil, err
	}
	if _, err := s.store.Tools().GetByID(ctx, toolID); err != nil {
		return nil, err
	}

	conflicts, err := collectConflicts(ctx, s.store, toolID, window)
	if err != nil {
		return nil, err
	}

	return &domain.ConflictReport{
		ToolID:      toolID,
		HasConflict: len(conflicts) > 0,
		Conflicts:   conflicts,
	}, nil
}

// collectConflicts runs every source against the window using the given
// store, which may be transaction-bound. Booking approval re-runs this
// inside its transaction so the decision and the resulting writes see the
// same snapshot.
func collectConflicts(ctx context.Context, store repository.Store, toolID int32, w domain.Window) ([]domain.Conflict, error) {
	var out []domain.Conflict
	for _, src := range conflictSources {
		found, err := src.collect(ctx, store, toolID, w)
		if err != nil {
			return nil, fmt.Errorf("checking %s conflicts: %w", src.name, err)
		}
		out = append(out, found...)
	}
	return out, nil
}

func rentalConflicts(ctx context.Context, store repository.Store, toolID int32, w domain.Window) ([]domain.Conflict, error) {
	rentals, err := store.Rentals().ListActiveOverlapping(ctx, toolID, w.StartDate, w.EndDate)
	if err != nil {
		return nil, err
	}
	var out []domain.Conflict
	for _, r := range rentals {
		out = append(out, domain.Conflict{
			Source:    domain.ConflictSourceRental,
			StartDate: r.StartDate,
			EndDate:   r.EndDate,
		})
	}
	return out, nil
}

func requestConflicts(ctx context.Context, store repository.Store, toolID int32, w domain.Window) ([]domain.Conflict, error) {
	reqs, err := store.BorrowRequests().ListApprovedOverlapping(ctx, toolID, w.StartDate, w.EndDate)
	if err != nil {
		return nil, err
	}
	var out []domain.Conflict
	for _, r := range reqs {
		out = append(out, domain.Conflict{
			Source:    domain.ConflictSourceRequest,
			StartDate: r.StartDate,
			EndDate:   r.EndDate,
		})
	}
	return out, nil
}

func blockConflicts(ctx context.Context, store repository.Store, toolID int32, w domain.Window) ([]domain.Conflict, error) {
	blocks, err := store.Availability().ListBookedBlocksOverlapping(ctx, toolID, w.StartDate, w.EndDate)
	if err != nil {
		return nil, err
	}
	var out []domain.Conflict
	for _, b := range blocks {
		out = append(out, domain.Conflict{
			Source:    domain.ConflictSourceBlock,
			StartDate: b.StartDate,
			EndDate:   b.EndDate,
		})
	}
	return out, nil
}

func exceptionConflicts(ctx context.Context, store repository.Store, toolID int32, w domain.Window) ([]domain.Conflict, error) {
	exceptions, err := store.Availability().ListUnavailableExceptionsOverlapping(ctx, toolID, w.StartDate, w.EndDate)
	if err != nil {
		return nil, err
	}
	var out []domain.Conflict
	for _, e := range exceptions {
		// Open-ended bounds are reported clamped to the requested window.
		c := domain.Conflict{
			Source:    domain.ConflictSourceException,
			StartDate: w.StartDate,
			EndDate:   w.EndDate,
		}
		if e.StartDate != nil {
			c.StartDate = *e.StartDate
		}
		if e.EndDate != nil {
			c.EndDate = *e.EndDate
		}
		out = append(out, c)
	}
	return out, nil
}

func hourlyConflicts(ctx context.Context, store repository.Store, toolID int32, w domain.Window) ([]domain.Conflict, error) {
	slots, err := store.Availability().ListBookedSlotsInRange(ctx, toolID, w.StartDate, w.EndDate)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, nil
	}

	startHour, endHour, err := windowHourBounds(w)
	if err != nil {
		return nil, err
	}

	var out []domain.Conflict
	for _, slot := range slots {
		if slot.Hour >= startHour && slot.Hour < endHour {
			out = append(out, domain.Conflict{
				Source:    domain.ConflictSourceHourly,
				StartDate: slot.Date,
				EndDate:   slot.Date,
			})
		}
	}
	return out, nil
}

func (s *availabilityService) GetToolAvailability(ctx context.Context, toolID int32) (*domain.ToolAvailability, error) {
	tool, err := s.store.Tools().GetByID(ctx, toolID)
	if err != nil {
		return nil, err
	}

	today := s.now().Format(dateLayout)
	horizon := s.now().AddDate(0, 0, availabilityHorizonDays).Format(dateLayout)
	booked, err := collectConflicts(ctx, s.store, toolID, domain.Window{StartDate: today, EndDate: horizon})
	if err != nil {
		return nil, err
	}

	blocks, err := s.store.Availability().ListBlocks(ctx, toolID)
	if err != nil {
		return nil, err
	}

	return &domain.ToolAvailability{
		ToolID:      tool.ID,
		ToolName:    tool.Name,
		IsAvailable: tool.Available,
		BookedDates: booked,
		Blocks:      blocks,
	}, nil
}

func (s *availabilityService) CreateRecurringPattern(ctx context.Context, ownerID int32, pattern *domain.RecurringPattern) (int32, error) {
	tool, err := s.store.Tools().GetByID(ctx, pattern.ToolID)
	if err != nil {
		return 0, err
	}
	if tool.OwnerID != ownerID {
		return 0, fmt.Errorf("%w: user %d does not own tool %d", domain.ErrForbidden, ownerID, pattern.ToolID)
	}
	if err := validatePattern(pattern); err != nil {
		return 0, err
	}

	pattern.IsActive = true
	if err := s.store.Availability().CreatePattern(ctx, pattern); err != nil {
		return 0, err
	}

	slots, err := s.ExpandRecurringPattern(ctx, pattern.ID)
	if err != nil {
		return 0, err
	}
	logger.InfoContext(ctx, "recurring pattern created",
		"pattern_id", pattern.ID, "tool_id", pattern.ToolID, "slots", slots)
	return slots, nil
}

func (s *availabilityService) ExpandRecurringPattern(ctx context.Context, patternID int32) (int32, error) {
	p, err := s.store.Availability().GetPatternByID(ctx, patternID)
	if err != nil {
		return 0, err
	}
	if !p.IsActive {
		return 0, fmt.Errorf("%w: pattern %d is inactive", domain.ErrInvalidState, patternID)
	}

	start, err := time.Parse(dateLayout, p.StartDate)
	if err != nil {
		return 0, fmt.Errorf("%w: pattern start date %q", domain.ErrValidation, p.StartDate)
	}
	end := start.AddDate(0, 0, availabilityHorizonDays)
	if p.EndDate != nil {
		end, err = time.Parse(dateLayout, *p.EndDate)
		if err != nil {
			return 0, fmt.Errorf("%w: pattern end date %q", domain.ErrValidation, *p.EndDate)
		}
	}

	startHour, err := parseHour(p.StartTime)
	if err != nil {
		return 0, err
	}
	endHour, err := parseHour(p.EndTime)
	if err != nil {
		return 0, err
	}
	if endHour <= startHour {
		return 0, fmt.Errorf("%w: pattern end time must be after start time", domain.ErrValidation)
	}

	// Empty DaysOfWeek means every day qualifies.
	days := make(map[int]bool, len(p.DaysOfWeek))
	for _, d := range p.DaysOfWeek {
		days[d] = true
	}

	repo := s.store.Availability()
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if len(days) > 0 && !days[mondayBasedWeekday(d)] {
			continue
		}
		date := d.Format(dateLayout)
		for h := startHour; h < endHour; h++ {
			slot := &domain.HourlySlot{
				ToolID:      p.ToolID,
				Date:        date,
				Hour:        int32(h),
				IsAvailable: true,
			}
			if err := repo.CreateSlotIfAbsent(ctx, slot); err != nil {
				return 0, fmt.Errorf("materializing slot %s hour %d: %w", date, h, err)
			}
		}
	}

	return repo.CountSlotsForPattern(ctx, p.ToolID, start.Format(dateLayout), end.Format(dateLayout))
}

// mondayBasedWeekday maps time.Weekday (Sunday=0) onto the Monday=0 numbering
// recurring patterns use.
func mondayBasedWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func validateWindow(w domain.Window) error {
	start, err := time.Parse(dateLayout, w.StartDate)
	if err != nil {
		return fmt.Errorf("%w: start date %q is not yyyy-mm-dd", domain.ErrValidation, w.StartDate)
	}
	end, err := time.Parse(dateLayout, w.EndDate)
	if err != nil {
		return fmt.Errorf("%w: end date %q is not yyyy-mm-dd", domain.ErrValidation, w.EndDate)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end date must be >= start date", domain.ErrValidation)
	}
	if _, _, err := windowHourBoundsChecked(w); err != nil {
		return err
	}
	return nil
}

// windowHourBounds returns the [start, end) hour range the window occupies on
// each day. Missing times widen to the full day.
func windowHourBounds(w domain.Window) (int32, int32, error) {
	start, end, err := windowHourBoundsChecked(w)
	return int32(start), int32(end), err
}

func windowHourBoundsChecked(w domain.Window) (int, int, error) {
	startHour, endHour := 0, 24
	var err error
	if w.StartTime != nil {
		startHour, err = parseHour(*w.StartTime)
		if err != nil {
			return 0, 0, err
		}
	}
	if w.EndTime != nil {
		endHour, err = parseHourCeil(*w.EndTime)
		if err != nil {
			return 0, 0, err
		}
	}
	if endHour <= startHour {
		return 0, 0, fmt.Errorf("%w: end time must be after start time", domain.ErrValidation)
	}
	return startHour, endHour, nil
}

// parseHour returns the wall-clock hour of an HH:MM string, minutes dropped.
func parseHour(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: time %q is not HH:MM", domain.ErrValidation, s)
	}
	return t.Hour(), nil
}

// parseHourCeil is parseHour for exclusive end bounds: a partial trailing
// hour still occupies that hour, so minutes push the bound up.
func parseHourCeil(s string) (int, error) {
	h, err := parseHour(s)
	if err != nil {
		return 0, err
	}
	t, _ := time.Parse("15:04", s)
	if t.Minute() > 0 {
		h++
	}
	return h, nil
}

func validatePattern(p *domain.RecurringPattern) error {
	switch p.PatternType {
	case domain.PatternTypeDaily, domain.PatternTypeWeekly, domain.PatternTypeMonthly:
	default:
		return fmt.Errorf("%w: unknown pattern type %q", domain.ErrValidation, p.PatternType)
	}
	if _, err := time.Parse(dateLayout, p.StartDate); err != nil {
		return fmt.Errorf("%w: start date %q is not yyyy-mm-dd", domain.ErrValidation, p.StartDate)
	}
	if p.EndDate != nil {
		end, err := time.Parse(dateLayout, *p.EndDate)
		if err != nil {
			return fmt.Errorf("%w: end date %q is not yyyy-mm-dd", domain.ErrValidation, *p.EndDate)
		}
		start, _ := time.Parse(dateLayout, p.StartDate)
		if end.Before(start) {
			return fmt.Errorf("%w: end date must be >= start date", domain.ErrValidation)
		}
	}
	for _, d := range p.DaysOfWeek {
		if d < 0 || d > 6 {
			return fmt.Errorf("%w: day of week %d out of range 0-6", domain.ErrValidation, d)
		}
	}
	startHour, err := parseHour(p.StartTime)
	if err != nil {
		return err
	}
	endHour, err := parseHour(p.EndTime)
	if err != nil {
		return err
	}
	if endHour <= startHour {
		return fmt.Errorf("%w: end time must be after start time", domain.ErrValidation)
	}
	return nil
}
