package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
	}{
		{"Ikeja to Victoria Island", 6.5244, 3.3792, 6.4281, 3.4219, 11.7},
		{"London to Paris", 51.5074, -0.1278, 48.8566, 2.3522, 343.56},
		{"same point", 40.7128, -74.0060, 40.7128, -74.0060, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2))
		})
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	a := Haversine(6.5244, 3.3792, 6.4281, 3.4219)
	b := Haversine(6.4281, 3.4219, 6.5244, 3.3792)
	assert.Equal(t, a, b)
}

func TestKilometersToMiles(t *testing.T) {
	assert.Equal(t, 6.21, KilometersToMiles(10))
	assert.Equal(t, 0.0, KilometersToMiles(0))
}

func TestKilometersToMeters(t *testing.T) {
	assert.Equal(t, 10000.0, KilometersToMeters(10))
	assert.Equal(t, 1500.0, KilometersToMeters(1.5))
}
