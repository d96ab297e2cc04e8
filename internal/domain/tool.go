package domain

type PricingType string

const (
	PricingTypeHourly  PricingType = "HOURLY"
	PricingTypeDaily   PricingType = "DAILY"
	PricingTypeWeekly  PricingType = "WEEKLY"
	PricingTypeMonthly PricingType = "MONTHLY"
)

type Tool struct {
	ID          int32       `json:"id"`
	OwnerID     int32       `json:"owner_id"`
	Owner       *User       `json:"owner,omitempty"` // Populated when fetching tool details
	Name        string      `json:"name"`
	Description string      `json:"description"`
	PricingType PricingType `json:"pricing_type"`
	// Per-unit rates; only the rate matching PricingType is used when pricing
	// a rental.
	PricePerHourCents    int32 `json:"price_per_hour_cents"`
	PricePerDayCents     int32 `json:"price_per_day_cents"`
	PricePerWeekCents    int32 `json:"price_per_week_cents"`
	PricePerMonthCents   int32 `json:"price_per_month_cents"`
	ReplacementCostCents int32 `json:"replacement_cost_cents"`
	// Available is a cached derived flag: false while any rental on the tool
	// is ACTIVE, true otherwise. Every code path that changes rental activity
	// updates it in the same transaction.
	Available bool   `json:"available"`
	CreatedOn string `json:"created_on"`
}
