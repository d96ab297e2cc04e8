package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"toolshare-backend/internal/domain"
)

func newAvailabilityForTest(store *mockStore) *availabilityService {
	svc := NewAvailabilityService(store).(*availabilityService)
	svc.now = fixedNow
	return svc
}

func TestAvailabilityService_CheckConflict(t *testing.T) {
	ctx := context.Background()
	tool := &domain.Tool{ID: 2, OwnerID: 10, Name: "Table Saw", Available: true}
	window := domain.Window{StartDate: "2025-07-26", EndDate: "2025-07-28"}

	t.Run("No conflicts", func(t *testing.T) {
		store := newMockStore()
		svc := newAvailabilityForTest(store)

		store.tools.On("GetByID", ctx, int32(2)).Return(tool, nil)
		expectNoConflicts(store, 2, "2025-07-26", "2025-07-28")

		report, err := svc.CheckConflict(ctx, 2, window)
		assert.NoError(t, err)
		assert.False(t, report.HasConflict)
		assert.Empty(t, report.Conflicts)
	})

	t.Run("Every overlapping source is reported", func(t *testing.T) {
		store := newMockStore()
		svc := newAvailabilityForTest(store)

		store.tools.On("GetByID", ctx, int32(2)).Return(tool, nil)
		store.rentals.On("ListActiveOverlapping", mock.Anything, int32(2), "2025-07-26", "2025-07-28").
			Return([]domain.RentalTransaction{{StartDate: "2025-07-27", EndDate: "2025-07-30"}}, nil)
		store.requests.On("ListApprovedOverlapping", mock.Anything, int32(2), "2025-07-26", "2025-07-28").
			Return([]domain.BorrowRequest{{StartDate: "2025-07-25", EndDate: "2025-07-27"}}, nil)
		store.avail.On("ListBookedBlocksOverlapping", mock.Anything, int32(2), "2025-07-26", "2025-07-28").
			Return([]domain.AvailabilityBlock{{StartDate: "2025-07-26", EndDate: "2025-07-29"}}, nil)
		store.avail.On("ListUnavailableExceptionsOverlapping", mock.Anything, int32(2), "2025-07-26", "2025-07-28").
			Return([]domain.FlexibleException{}, nil)
		store.avail.On("ListBookedSlotsInRange", mock.Anything, int32(2), "2025-07-26", "2025-07-28").
			Return([]domain.HourlySlot{}, nil)

		report, err := svc.CheckConflict(ctx, 2, window)
		assert.NoError(t, err)
		assert.True(t, report.HasConflict)
		assert.Len(t, report.Conflicts, 3)

		sources := make([]string, 0, len(report.Conflicts))
		for _, c := range report.Conflicts {
			sources = append(sources, c.Source)
		}
		assert.Equal(t, []string{domain.ConflictSourceRental, domain.ConflictSourceRequest, domain.ConflictSourceBlock}, sources)
	})

	t.Run("Open-ended exception is clamped to the window", func(t *testing.T) {
		store := newMockStore()
		svc := newAvailabilityForTest(store)

		store.tools.On("GetByID", ctx, int32(2)).Return(tool, nil)
		store.rentals.On("ListActiveOverlapping", mock.Anything, int32(2), "2025-07-26", "2025-07-28").
			Return([]domain.RentalTransaction{}, nil)
		store.requests.On("ListApprovedOverlapping", mock.Anything, int32(2), "2025-07-26", "2025-07-28").
			Return([]domain.BorrowRequest{}, nil)
		store.avail.On("ListBookedBlocksOverlapping", mock.Anything, int32(2), "2025-07-26", "2025-07-28").
			Return([]domain.AvailabilityBlock{}, nil)
		start := "2025-07-20"
		store.avail.On("ListUnavailableExceptionsOverlapping", mock.Anything, int32(2), "2025-07-26", "2025-07-28").
			Return([]domain.FlexibleException{{StartDate: &start, EndDate: nil, IsAvailable: false}}, nil)
		store.avail.On("ListBookedSlotsInRange", mock.Anything, int32(2), "2025-07-26", "2025-07-28").
			Return([]domain.HourlySlot{}, nil)

		report, err := svc.CheckConflict(ctx, 2, window)
		assert.NoError(t, err)
		assert.Len(t, report.Conflicts, 1)
		assert.Equal(t, domain.ConflictSourceException, report.Conflicts[0].Source)
		assert.Equal(t, "2025-07-20", report.Conflicts[0].StartDate)
		assert.Equal(t, "2025-07-28", report.Conflicts[0].EndDate)
	})

	t.Run("Booked slots outside the requested hours do not conflict", func(t *testing.T) {
		store := newMockStore()
		svc := newAvailabilityForTest(store)

		startTime, endTime := "09:00", "12:00"
		timed := domain.Window{StartDate: "2025-07-26", EndDate: "2025-07-26", StartTime: &startTime, EndTime: &endTime}

		store.tools.On("GetByID", ctx, int32(2)).Return(tool, nil)
		store.rentals.On("ListActiveOverlapping", mock.Anything, int32(2), "2025-07-26", "2025-07-26").
			Return([]domain.RentalTransaction{}, nil)
		store.requests.On("ListApprovedOverlapping", mock.Anything, int32(2), "2025-07-26", "2025-07-26").
			Return([]domain.BorrowRequest{}, nil)
		store.avail.On("ListBookedBlocksOverlapping", mock.Anything, int32(2), "2025-07-26", "2025-07-26").
			Return([]domain.AvailabilityBlock{}, nil)
		store.avail.On("ListUnavailableExceptionsOverlapping", mock.Anything, int32(2), "2025-07-26", "2025-07-26").
			Return([]domain.FlexibleException{}, nil)
		store.avail.On("ListBookedSlotsInRange", mock.Anything, int32(2), "2025-07-26", "2025-07-26").
			Return([]domain.HourlySlot{
				{Date: "2025-07-26", Hour: 8, IsBooked: true},  // before the window
				{Date: "2025-07-26", Hour: 10, IsBooked: true}, // inside
				{Date: "2025-07-26", Hour: 12, IsBooked: true}, // end hour is exclusive
			}, nil)

		report, err := svc.CheckConflict(ctx, 2, timed)
		assert.NoError(t, err)
		assert.Len(t, report.Conflicts, 1)
		assert.Equal(t, domain.ConflictSourceHourly, report.Conflicts[0].Source)
	})

	t.Run("Partial start hour still overlaps its booked slot", func(t *testing.T) {
		store := newMockStore()
		svc := newAvailabilityForTest(store)

		startTime, endTime := "09:30", "11:00"
		timed := domain.Window{StartDate: "2025-07-26", EndDate: "2025-07-26", StartTime: &startTime, EndTime: &endTime}

		store.tools.On("GetByID", ctx, int32(2)).Return(tool, nil)
		store.rentals.On("ListActiveOverlapping", mock.Anything, int32(2), "2025-07-26", "2025-07-26").
			Return([]domain.RentalTransaction{}, nil)
		store.requests.On("ListApprovedOverlapping", mock.Anything, int32(2), "2025-07-26", "2025-07-26").
			Return([]domain.BorrowRequest{}, nil)
		store.avail.On("ListBookedBlocksOverlapping", mock.Anything, int32(2), "2025-07-26", "2025-07-26").
			Return([]domain.AvailabilityBlock{}, nil)
		store.avail.On("ListUnavailableExceptionsOverlapping", mock.Anything, int32(2), "2025-07-26", "2025-07-26").
			Return([]domain.FlexibleException{}, nil)
		// A 09:30 start occupies hour 9, so the booked slot must be reported.
		store.avail.On("ListBookedSlotsInRange", mock.Anything, int32(2), "2025-07-26", "2025-07-26").
			Return([]domain.HourlySlot{{Date: "2025-07-26", Hour: 9, IsBooked: true}}, nil)

		report, err := svc.CheckConflict(ctx, 2, timed)
		assert.NoError(t, err)
		assert.True(t, report.HasConflict)
		assert.Len(t, report.Conflicts, 1)
		assert.Equal(t, domain.ConflictSourceHourly, report.Conflicts[0].Source)
	})

	t.Run("Unknown tool", func(t *testing.T) {
		store := newMockStore()
		svc := newAvailabilityForTest(store)

		store.tools.On("GetByID", ctx, int32(99)).Return(nil, domain.ErrNotFound)

		_, err := svc.CheckConflict(ctx, 99, window)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Malformed window", func(t *testing.T) {
		store := newMockStore()
		svc := newAvailabilityForTest(store)

		_, err := svc.CheckConflict(ctx, 2, domain.Window{StartDate: "26-07-2025", EndDate: "2025-07-28"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestAvailabilityService_ExpandRecurringPattern(t *testing.T) {
	ctx := context.Background()

	endDate := "2025-07-14" // two weeks from the start
	pattern := func() *domain.RecurringPattern {
		return &domain.RecurringPattern{
			ID:          3,
			ToolID:      2,
			PatternType: domain.PatternTypeWeekly,
			StartDate:   "2025-07-01", // a Tuesday
			EndDate:     &endDate,
			DaysOfWeek:  []int{1},     // Tuesdays, Monday=0 numbering
			StartTime:   "09:00",
			EndTime:     "12:00",
			IsActive:    true,
		}
	}

	t.Run("Materializes only matching weekdays", func(t *testing.T) {
		store := newMockStore()
		svc := newAvailabilityForTest(store)

		store.avail.On("GetPatternByID", ctx, int32(3)).Return(pattern(), nil)

		var created []domain.HourlySlot
		store.avail.On("CreateSlotIfAbsent", ctx, mock.AnythingOfType("*domain.HourlySlot")).
			Run(func(args mock.Arguments) {
				created = append(created, *args.Get(1).(*domain.HourlySlot))
			}).Return(nil)
		store.avail.On("CountSlotsForPattern", ctx, int32(2), "2025-07-01", "2025-07-14").Return(int32(6), nil)

		count, err := svc.ExpandRecurringPattern(ctx, 3)
		assert.NoError(t, err)
		assert.Equal(t, int32(6), count)

		// Tuesdays 2025-07-01 and 2025-07-08, three hours each
		assert.Len(t, created, 6)
		for _, slot := range created {
			assert.Contains(t, []string{"2025-07-01", "2025-07-08"}, slot.Date)
			assert.GreaterOrEqual(t, slot.Hour, int32(9))
			assert.Less(t, slot.Hour, int32(12))
			assert.True(t, slot.IsAvailable)
		}
	})

	t.Run("Pattern times truncate to whole hours", func(t *testing.T) {
		store := newMockStore()
		svc := newAvailabilityForTest(store)

		p := pattern()
		p.StartTime, p.EndTime = "09:30", "12:30"
		store.avail.On("GetPatternByID", ctx, int32(3)).Return(p, nil)

		var created []domain.HourlySlot
		store.avail.On("CreateSlotIfAbsent", ctx, mock.AnythingOfType("*domain.HourlySlot")).
			Run(func(args mock.Arguments) {
				created = append(created, *args.Get(1).(*domain.HourlySlot))
			}).Return(nil)
		store.avail.On("CountSlotsForPattern", ctx, int32(2), "2025-07-01", "2025-07-14").Return(int32(6), nil)

		_, err := svc.ExpandRecurringPattern(ctx, 3)
		assert.NoError(t, err)

		// 09:30-12:30 materializes hours [9, 12) on each matching Tuesday
		assert.Len(t, created, 6)
		for _, slot := range created {
			assert.GreaterOrEqual(t, slot.Hour, int32(9))
			assert.Less(t, slot.Hour, int32(12))
		}
	})

	t.Run("Inactive pattern is not expanded", func(t *testing.T) {
		store := newMockStore()
		svc := newAvailabilityForTest(store)

		p := pattern()
		p.IsActive = false
		store.avail.On("GetPatternByID", ctx, int32(3)).Return(p, nil)

		_, err := svc.ExpandRecurringPattern(ctx, 3)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		store.avail.AssertNotCalled(t, "CreateSlotIfAbsent", mock.Anything, mock.Anything)
	})
}

func TestAvailabilityService_CreateRecurringPattern(t *testing.T) {
	ctx := context.Background()
	tool := &domain.Tool{ID: 2, OwnerID: 10, Name: "Table Saw"}

	t.Run("Non-owner is rejected", func(t *testing.T) {
		store := newMockStore()
		svc := newAvailabilityForTest(store)

		store.tools.On("GetByID", ctx, int32(2)).Return(tool, nil)

		_, err := svc.CreateRecurringPattern(ctx, 99, &domain.RecurringPattern{ToolID: 2})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Bad day of week", func(t *testing.T) {
		store := newMockStore()
		svc := newAvailabilityForTest(store)

		store.tools.On("GetByID", ctx, int32(2)).Return(tool, nil)

		_, err := svc.CreateRecurringPattern(ctx, 10, &domain.RecurringPattern{
			ToolID:      2,
			PatternType: domain.PatternTypeWeekly,
			StartDate:   "2025-07-01",
			DaysOfWeek:  []int{7},
			StartTime:   "09:00",
			EndTime:     "12:00",
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestAvailabilityService_GetToolAvailability(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	svc := newAvailabilityForTest(store)

	today := fixedNow().Format("2006-01-02")
	horizon := fixedNow().AddDate(0, 0, availabilityHorizonDays).Format("2006-01-02")

	store.tools.On("GetByID", ctx, int32(2)).Return(&domain.Tool{ID: 2, Name: "Table Saw", Available: false}, nil)
	store.rentals.On("ListActiveOverlapping", mock.Anything, int32(2), today, horizon).
		Return([]domain.RentalTransaction{{StartDate: "2025-07-26", EndDate: "2025-07-28"}}, nil)
	store.requests.On("ListApprovedOverlapping", mock.Anything, int32(2), today, horizon).
		Return([]domain.BorrowRequest{}, nil)
	store.avail.On("ListBookedBlocksOverlapping", mock.Anything, int32(2), today, horizon).
		Return([]domain.AvailabilityBlock{}, nil)
	store.avail.On("ListUnavailableExceptionsOverlapping", mock.Anything, int32(2), today, horizon).
		Return([]domain.FlexibleException{}, nil)
	store.avail.On("ListBookedSlotsInRange", mock.Anything, int32(2), today, horizon).
		Return([]domain.HourlySlot{}, nil)
	store.avail.On("ListBlocks", ctx, int32(2)).
		Return([]domain.AvailabilityBlock{{ID: 4, StartDate: "2025-08-01", EndDate: "2025-08-05"}}, nil)

	availability, err := svc.GetToolAvailability(ctx, 2)
	assert.NoError(t, err)
	assert.Equal(t, "Table Saw", availability.ToolName)
	assert.False(t, availability.IsAvailable)
	assert.Len(t, availability.BookedDates, 1)
	assert.Len(t, availability.Blocks, 1)
}

func TestMondayBasedWeekday(t *testing.T) {
	// 2025-07-07 is a Monday
	for i, want := range []int{0, 1, 2, 3, 4, 5, 6} {
		d := time.Date(2025, 7, 7+i, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, want, mondayBasedWeekday(d))
	}
}
