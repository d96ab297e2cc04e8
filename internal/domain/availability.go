package domain

// Window is a candidate booking window. Dates are yyyy-mm-dd; times, when
// present, are HH:MM and restrict the hourly-slot comparison to
// [StartTime.hour, EndTime.hour) on each day.
type Window struct {
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
}

// AvailabilityBlock is a simple owner-managed date-range block.
type AvailabilityBlock struct {
	ID        int32  `json:"id"`
	ToolID    int32  `json:"tool_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	IsBooked  bool   `json:"is_booked"`
	Notes     string `json:"notes"`
	CreatedOn string `json:"created_on"`
}

// FlexibleException marks a period the owner carves out; it blocks bookings
// when IsAvailable is false. Nil dates mean an open-ended bound.
type FlexibleException struct {
	ID          int32   `json:"id"`
	ToolID      int32   `json:"tool_id"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
	IsAvailable bool    `json:"is_available"`
	Notes       string  `json:"notes"`
	CreatedOn   string  `json:"created_on"`
}

type PatternType string

const (
	PatternTypeDaily   PatternType = "DAILY"
	PatternTypeWeekly  PatternType = "WEEKLY"
	PatternTypeMonthly PatternType = "MONTHLY"
)

// RecurringPattern is an owner-defined recurring availability rule.
// DaysOfWeek uses Monday=0 through Sunday=6. Deactivating a pattern stops
// future expansion but keeps already generated slots.
type RecurringPattern struct {
	ID          int32       `json:"id"`
	ToolID      int32       `json:"tool_id"`
	PatternType PatternType `json:"pattern_type"`
	StartDate   string      `json:"start_date"`
	EndDate     *string     `json:"end_date,omitempty"`
	DaysOfWeek  []int       `json:"days_of_week"`
	StartTime   string      `json:"start_time"`
	EndTime     string      `json:"end_time"`
	IsActive    bool        `json:"is_active"`
	CreatedOn   string      `json:"created_on"`
}

// HourlySlot is one materialized hour of availability, unique per
// (tool, date, hour).
type HourlySlot struct {
	ID          int32  `json:"id"`
	ToolID      int32  `json:"tool_id"`
	Date        string `json:"date"`
	Hour        int32  `json:"hour"`
	IsAvailable bool   `json:"is_available"`
	IsBooked    bool   `json:"is_booked"`
	CreatedOn   string `json:"created_on"`
}

// Conflict source names, reported to callers of the conflict check.
const (
	ConflictSourceRental    = "rental"
	ConflictSourceRequest   = "request"
	ConflictSourceBlock     = "block"
	ConflictSourceException = "exception"
	ConflictSourceHourly    = "hourly"
)

type Conflict struct {
	Source    string `json:"source"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type ConflictReport struct {
	ToolID      int32      `json:"tool_id"`
	HasConflict bool       `json:"has_conflict"`
	Conflicts   []Conflict `json:"conflicts"`
}

// ToolAvailability is the owner/borrower-facing calendar view of a tool:
// every period currently unavailable for booking, by source.
type ToolAvailability struct {
	ToolID      int32               `json:"tool_id"`
	ToolName    string              `json:"tool_name"`
	IsAvailable bool                `json:"is_available"`
	BookedDates []Conflict          `json:"booked_dates"`
	Blocks      []AvailabilityBlock `json:"blocks"`
}
