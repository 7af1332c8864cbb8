package pricing

import (
	"fmt"

	"github.com/Oghenemaro93/QGlide/pkg/common"
)

// CalculateFare computes the payable fare for a ride from the country's rate
// config. The arithmetic matches the settlement behavior billing reconciles
// against, including two quirks that must not be changed unilaterally:
//
//   - The time surcharge scales with distance, not duration: rides over the
//     duration threshold pay time_based_rate * (distance_km / 60).
//   - When the fare is smaller than the rider's loyalty balance, the full
//     fare is still reported as owed and no points are deducted.
//
// MinimumFare is deliberately not applied here.
func CalculateFare(cfg *RateConfig, input FareInput) (FareBreakdown, error) {
	if cfg == nil {
		return FareBreakdown{}, common.NewConfigMissingError("rate config is required")
	}

	kmRate, ok := cfg.KilometerRate(input.RideType)
	if !ok {
		return FareBreakdown{}, common.NewValidationError(fmt.Sprintf("unknown ride type %q", input.RideType))
	}

	total := cfg.BaseRate + kmRate*input.DistanceKm

	if input.DurationSeconds > cfg.DurationThresholdSeconds {
		total += cfg.TimeBasedRate * (input.DistanceKm / 60)
	}

	if input.IsPeakHour {
		total += cfg.PeakHourRate
	}

	if input.IsDelivery {
		total += cfg.PackageDeliveryRate * input.PackageWeight
	}

	breakdown := FareBreakdown{
		TotalFare:       total,
		PointDiscount:   total,
		PointsDeducted:  0,
		PointsRemaining: input.LoyaltyPoints,
	}

	if input.LoyaltyPoints > 0 && total >= input.LoyaltyPoints {
		breakdown.PointDiscount = total - input.LoyaltyPoints
		breakdown.PointsDeducted = input.LoyaltyPoints
		breakdown.PointsRemaining = 0
	}

	return breakdown, nil
}
