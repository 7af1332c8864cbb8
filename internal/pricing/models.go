package pricing

import (
	"time"

	"github.com/google/uuid"

	"github.com/Oghenemaro93/QGlide/pkg/models"
)

// PeakWindow is a named period of the day during which the peak surcharge
// applies. Start and End are 24h wall clock values ("17:00"). A window whose
// start is later than its end crosses midnight.
type PeakWindow struct {
	Name  string `json:"name" validate:"required"`
	Start string `json:"start" validate:"required,peak_window"`
	End   string `json:"end" validate:"required,peak_window"`
}

// RateConfig holds the tunable fare constants for one country. Exactly one
// active row per country code is expected.
type RateConfig struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CountryCode string    `json:"country_code" db:"country_code" validate:"required,country_code"`

	// Timezone is the IANA zone peak windows are matched in. Empty means
	// the caller's clock is taken as-is.
	Timezone string `json:"timezone" db:"timezone" validate:"omitempty,timezone"`

	BaseRate             float64 `json:"base_rate" db:"base_rate" validate:"gte=0"`
	EconomyKilometerRate float64 `json:"economy_kilometer_rate" db:"economy_kilometer_rate" validate:"gte=0"`
	SUVKilometerRate     float64 `json:"suv_kilometer_rate" db:"suv_kilometer_rate" validate:"gte=0"`
	LuxuryKilometerRate  float64 `json:"luxury_kilometer_rate" db:"luxury_kilometer_rate" validate:"gte=0"`

	TimeBasedRate            float64 `json:"time_based_rate" db:"time_based_rate" validate:"gte=0"`
	DurationThresholdSeconds int64   `json:"duration_threshold_seconds" db:"duration_threshold_seconds" validate:"gte=0"`

	PeakHourRate        float64 `json:"peak_hour_rate" db:"peak_hour_rate" validate:"gte=0"`
	PackageDeliveryRate float64 `json:"package_delivery_rate" db:"package_delivery_rate" validate:"gte=0"`

	// MinimumFare is configurable but not applied by the fare calculation.
	// Kept in the schema so existing operator tooling keeps working.
	MinimumFare float64 `json:"minimum_fare" db:"minimum_fare" validate:"gte=0"`

	PeakWindows []PeakWindow `json:"peak_windows" db:"peak_windows" validate:"dive"`

	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// KilometerRate returns the per-km rate for the given ride type, or false
// when the type is unknown.
func (c *RateConfig) KilometerRate(rideType models.RideType) (float64, bool) {
	switch rideType {
	case models.RideTypeEconomy:
		return c.EconomyKilometerRate, true
	case models.RideTypeSUV:
		return c.SUVKilometerRate, true
	case models.RideTypeLuxury:
		return c.LuxuryKilometerRate, true
	}
	return 0, false
}

// FareInput carries everything the fare calculation needs for one ride.
type FareInput struct {
	RideType        models.RideType
	DistanceKm      float64
	DurationSeconds int64
	IsPeakHour      bool
	LoyaltyPoints   float64
	IsDelivery      bool
	PackageWeight   float64
}

// FareBreakdown is the result of a fare calculation. PointDiscount follows
// the upstream billing contract: it is the amount still owed after loyalty
// points are applied, not the size of the discount.
type FareBreakdown struct {
	TotalFare       float64 `json:"total_fare"`
	PointDiscount   float64 `json:"point_discount"`
	PointsDeducted  float64 `json:"points_deducted"`
	PointsRemaining float64 `json:"points_remaining"`
}
