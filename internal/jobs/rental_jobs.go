package jobs

import (
	"context"
	"time"

	"toolshare-backend/internal/logger"
)

// ProcessOverdueRentals forfeits deposits on rentals past their end date and
// returns the tools to circulation.
func (jr *JobRunner) ProcessOverdueRentals() {
	jr.RunOverdueSweep(false)
}

// RunOverdueSweep executes the overdue sweep, optionally as a dry run that
// only reports what would happen.
func (jr *JobRunner) RunOverdueSweep(dryRun bool) {
	jr.runWithRecovery("ProcessOverdueRentals", func() {
		ctx := context.Background()

		report, err := jr.services.Rental.SweepOverdue(ctx, time.Now().UTC(), dryRun)
		if err != nil {
			logger.Error("Failed to sweep overdue rentals", "error", err)
			return
		}

		logger.Info("Overdue rental sweep report",
			"sweep_date", report.SweepDate,
			"dry_run", report.DryRun,
			"found", report.Found,
			"processed", report.Processed,
			"forfeited", report.Forfeited)

		for _, w := range report.Warnings {
			logger.Warn("Overdue sweep warning", "detail", w)
		}
		for _, e := range report.Integrity {
			logger.Error("Overdue sweep integrity error", "detail", e)
		}
	})
}

// ExpireBorrowRequests lapses pending borrow requests past their timeout
func (jr *JobRunner) ExpireBorrowRequests() {
	jr.runWithRecovery("ExpireBorrowRequests", func() {
		ctx := context.Background()

		ids, err := jr.services.Booking.ExpirePendingRequests(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Failed to expire borrow requests", "error", err)
			return
		}

		logger.Info("Expired borrow requests", "count", len(ids))
	})
}
