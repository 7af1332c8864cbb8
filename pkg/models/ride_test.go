package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRide_ConvertDistance(t *testing.T) {
	tests := []struct {
		name         string
		unit         DistanceUnit
		wantDistance float64
		wantUnit     DistanceUnit
	}{
		{"to miles", UnitMiles, 6.21, UnitMiles},
		{"to meters", UnitMeters, 10000, UnitMeters},
		{"kilometers unchanged", UnitKilometers, 10, UnitKilometers},
		{"unknown unit unchanged", DistanceUnit("FURLONGS"), 10, UnitKilometers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ride := &Ride{Distance: 10, DistanceUnit: UnitKilometers}
			ride.ConvertDistance(tt.unit)
			assert.Equal(t, tt.wantDistance, ride.Distance)
			assert.Equal(t, tt.wantUnit, ride.DistanceUnit)
		})
	}
}

func TestRide_ConvertDistance_AlreadyConverted(t *testing.T) {
	ride := &Ride{Distance: 6.21, DistanceUnit: UnitMiles}
	ride.ConvertDistance(UnitMeters)

	assert.Equal(t, 6.21, ride.Distance)
	assert.Equal(t, UnitMiles, ride.DistanceUnit)
}
