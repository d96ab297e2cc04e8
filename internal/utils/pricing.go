package utils

import (
	"fmt"
	"math"
	"time"

	"toolshare-backend/internal/domain"
)

const dateLayout = "2006-01-02"

// Hours per billing unit for each pricing type.
const (
	hoursPerDay   = 24
	hoursPerWeek  = 168
	hoursPerMonth = 720
)

// RentalDurationHours converts an inclusive yyyy-mm-dd date range into a
// duration in hours. Both endpoints count, so a same-day rental is 24 hours.
func RentalDurationHours(startDate, endDate string) (int32, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return 0, fmt.Errorf("invalid start date %q: %v", startDate, err)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return 0, fmt.Errorf("invalid end date %q: %v", endDate, err)
	}
	if end.Before(start) {
		return 0, fmt.Errorf("end date must be >= start date")
	}

	days := int32(end.Sub(start).Hours()/hoursPerDay) + 1
	return days * hoursPerDay, nil
}

// CalculateRentalPrice prices a rental of the given duration against the
// tool's pricing schedule. The duration is converted to billing units for
// the tool's pricing type, charged at least one full unit, and the result
// is rounded up to the next cent.
func CalculateRentalPrice(tool *domain.Tool, durationHours int32) (int32, error) {
	if durationHours <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %d hours", durationHours)
	}

	var rateCents int32
	var unitHours float64

	switch tool.PricingType {
	case domain.PricingTypeHourly:
		rateCents = tool.PricePerHourCents
		unitHours = 1
	case domain.PricingTypeDaily:
		rateCents = tool.PricePerDayCents
		unitHours = hoursPerDay
	case domain.PricingTypeWeekly:
		rateCents = tool.PricePerWeekCents
		unitHours = hoursPerWeek
	case domain.PricingTypeMonthly:
		rateCents = tool.PricePerMonthCents
		unitHours = hoursPerMonth
	default:
		return 0, fmt.Errorf("unknown pricing type %q", tool.PricingType)
	}

	units := float64(durationHours) / unitHours
	if units < 1 {
		units = 1
	}

	return int32(math.Ceil(float64(rateCents) * units)), nil
}
