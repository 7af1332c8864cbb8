package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Oghenemaro93/QGlide/pkg/common"
	"github.com/Oghenemaro93/QGlide/pkg/models"
)

type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) GetActiveByCountry(ctx context.Context, countryCode string) (*RateConfig, error) {
	args := m.Called(ctx, countryCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RateConfig), args.Error(1)
}

func TestService_SnapshotPeak(t *testing.T) {
	cfg := testRateConfig()
	cfg.PeakWindows = []PeakWindow{{Name: "evening", Start: "17:00", End: "20:00"}}

	rates := new(MockRateSource)
	rates.On("GetActiveByCountry", mock.Anything, "US").Return(cfg, nil)

	svc := NewService(rates)

	evening := time.Date(2024, 3, 14, 18, 0, 0, 0, time.UTC)
	isPeak, err := svc.SnapshotPeak(context.Background(), "US", evening)
	assert.NoError(t, err)
	assert.True(t, isPeak)

	noon := time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)
	isPeak, err = svc.SnapshotPeak(context.Background(), "US", noon)
	assert.NoError(t, err)
	assert.False(t, isPeak)

	rates.AssertExpectations(t)
}

func TestService_SnapshotPeak_ConfigLocalTime(t *testing.T) {
	cfg := testRateConfig()
	cfg.Timezone = "America/New_York"
	cfg.PeakWindows = []PeakWindow{{Name: "evening", Start: "18:00", End: "20:00"}}

	rates := new(MockRateSource)
	rates.On("GetActiveByCountry", mock.Anything, "US").Return(cfg, nil)

	svc := NewService(rates)

	// 23:30 UTC in January is 18:30 in New York: inside the window there,
	// outside it on a UTC clock.
	utcNight := time.Date(2024, 1, 15, 23, 30, 0, 0, time.UTC)
	isPeak, err := svc.SnapshotPeak(context.Background(), "US", utcNight)
	assert.NoError(t, err)
	assert.True(t, isPeak)

	// 19:00 UTC is 14:00 in New York, no longer peak.
	utcEvening := time.Date(2024, 1, 15, 19, 0, 0, 0, time.UTC)
	isPeak, err = svc.SnapshotPeak(context.Background(), "US", utcEvening)
	assert.NoError(t, err)
	assert.False(t, isPeak)
}

func TestService_SnapshotPeak_UnloadableTimezoneFallsBack(t *testing.T) {
	cfg := testRateConfig()
	cfg.Timezone = "Not/AZone"
	cfg.PeakWindows = []PeakWindow{{Name: "evening", Start: "18:00", End: "20:00"}}

	rates := new(MockRateSource)
	rates.On("GetActiveByCountry", mock.Anything, "US").Return(cfg, nil)

	svc := NewService(rates)

	isPeak, err := svc.SnapshotPeak(context.Background(), "US", time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.True(t, isPeak)
}

func TestService_SnapshotPeak_ConfigMissing(t *testing.T) {
	rates := new(MockRateSource)
	rates.On("GetActiveByCountry", mock.Anything, "ZZ").
		Return(nil, common.NewConfigMissingError("no active rate config for country ZZ"))

	svc := NewService(rates)

	_, err := svc.SnapshotPeak(context.Background(), "ZZ", time.Now())
	assert.Error(t, err)

	var appErr *common.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, common.CodeConfigMissing, appErr.ErrorCode)
}

func TestService_Quote(t *testing.T) {
	rates := new(MockRateSource)
	rates.On("GetActiveByCountry", mock.Anything, "US").Return(testRateConfig(), nil)

	svc := NewService(rates)

	breakdown, err := svc.Quote(context.Background(), "US", FareInput{
		RideType:        models.RideTypeEconomy,
		DistanceKm:      10,
		DurationSeconds: 500,
	})

	assert.NoError(t, err)
	assert.Equal(t, 30.0, breakdown.TotalFare)
	rates.AssertExpectations(t)
}

func TestService_Quote_InvalidRideType(t *testing.T) {
	rates := new(MockRateSource)
	rates.On("GetActiveByCountry", mock.Anything, "US").Return(testRateConfig(), nil)

	svc := NewService(rates)

	_, err := svc.Quote(context.Background(), "US", FareInput{
		RideType:   models.RideType("HELICOPTER"),
		DistanceKm: 10,
	})

	assert.Error(t, err)
	var appErr *common.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, common.CodeValidation, appErr.ErrorCode)
}
