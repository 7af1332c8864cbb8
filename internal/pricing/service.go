package pricing

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/Oghenemaro93/QGlide/pkg/logger"
)

var fareCalculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fare_calculations_total",
	Help: "Total number of fare calculations performed at settlement",
}, []string{"country_code", "ride_type"})

// RateSource provides active rate configs by country.
type RateSource interface {
	GetActiveByCountry(ctx context.Context, countryCode string) (*RateConfig, error)
}

// Service exposes pricing operations to the ride lifecycle.
type Service struct {
	rates RateSource
}

// NewService creates a new pricing service.
func NewService(rates RateSource) *Service {
	return &Service{rates: rates}
}

// SnapshotPeak evaluates the peak-hour flag for the given country at the
// given instant. The result is persisted on the ride at booking time and
// reused at settlement, so a rider cannot move a ride into or out of a peak
// window by delaying completion.
// Windows are matched against the wall clock of the config's timezone, not
// the server host's.
func (s *Service) SnapshotPeak(ctx context.Context, countryCode string, now time.Time) (bool, error) {
	cfg, err := s.rates.GetActiveByCountry(ctx, countryCode)
	if err != nil {
		return false, err
	}
	return IsPeakHour(cfg.PeakWindows, localTime(ctx, cfg, now)), nil
}

// localTime shifts the instant into the config's zone. An unloadable zone
// leaves the instant as given rather than failing the booking.
func localTime(ctx context.Context, cfg *RateConfig, now time.Time) time.Time {
	if cfg.Timezone == "" {
		return now
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.WithContext(ctx).Warn("unloadable rate config timezone",
			zap.String("country_code", cfg.CountryCode),
			zap.String("timezone", cfg.Timezone))
		return now
	}
	return now.In(loc)
}

// Quote resolves the country's rate config and computes the fare breakdown.
func (s *Service) Quote(ctx context.Context, countryCode string, input FareInput) (FareBreakdown, error) {
	cfg, err := s.rates.GetActiveByCountry(ctx, countryCode)
	if err != nil {
		return FareBreakdown{}, err
	}

	breakdown, err := CalculateFare(cfg, input)
	if err != nil {
		return FareBreakdown{}, err
	}

	fareCalculationsTotal.WithLabelValues(countryCode, string(input.RideType)).Inc()
	return breakdown, nil
}
