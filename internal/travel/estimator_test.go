package travel_test

import (
	"testing"

	"github.com/myrjola/gumshoe/internal/models"
	"github.com/myrjola/gumshoe/internal/travel"
	"github.com/stretchr/testify/require"
)

func newEstimator() *travel.Estimator {
	cities := []models.City{
		{ID: "a1", Country: "A", Latitude: 0, Longitude: 0},
		{ID: "a2", Country: "A", Latitude: 0, Longitude: 1},
		{ID: "b1", Country: "B", Latitude: 0, Longitude: 1},
		{ID: "b2", Country: "B", Latitude: 10, Longitude: 10},
	}
	overrides := map[travel.Pair]int{
		{From: "a1", To: "b2"}: 999,
	}
	return travel.NewEstimator(cities, overrides, travel.Config{
		Ground: travel.Mode{SpeedKMH: 60, OverheadMinutes: 30},
		Air:    travel.Mode{SpeedKMH: 600, OverheadMinutes: 120},
	})
}

func TestEstimator_Estimate(t *testing.T) {
	e := newEstimator()
	tests := []struct {
		name     string
		from, to string
		want     int
		wantErr  error
	}{
		// One degree of longitude on the equator is 111.19 km.
		{name: "same country uses ground", from: "a1", to: "a2", want: 30 + 112},
		{name: "international uses air", from: "a1", to: "b1", want: 120 + 12},
		{name: "override wins", from: "a1", to: "b2", want: 999},
		{name: "override is ordered", from: "b2", to: "a1", want: 120 + 157},
		{name: "same city", from: "a1", to: "a1", want: 0},
		{name: "unknown origin", from: "zz", to: "a1", wantErr: models.ErrNotFound},
		{name: "unknown destination", from: "a1", to: "zz", wantErr: models.ErrUnknownCity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Estimate(tt.from, tt.to)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestHaversine(t *testing.T) {
	require.InDelta(t, 111.19, travel.Haversine(0, 0, 0, 1), 0.01)
	require.InDelta(t, 0, travel.Haversine(48.85, 2.35, 48.85, 2.35), 1e-9)
	// Paris to London.
	require.InDelta(t, 343.5, travel.Haversine(48.8566, 2.3522, 51.5074, -0.1278), 1)
}
