// Package travel estimates how long it takes to travel between cities.
package travel

import (
	"log/slog"
	"math"

	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/models"
)

const earthRadiusKM = 6371.0

// Mode is the transport used for a leg.
type Mode struct {
	SpeedKMH        float64
	OverheadMinutes int
}

// Config holds the speed and overhead model.
type Config struct {
	// Ground applies when both cities are in the same country.
	Ground Mode
	// Air applies to international legs.
	Air Mode
}

// Pair is an ordered city pair.
type Pair struct {
	From string
	To   string
}

// Estimator computes travel minutes between cities.
type Estimator struct {
	cities    map[string]models.City
	overrides map[Pair]int
	config    Config
}

// NewEstimator creates an estimator over a city catalog. Overrides are manual durations keyed by ordered city pair.
func NewEstimator(cities []models.City, overrides map[Pair]int, config Config) *Estimator {
	byID := make(map[string]models.City, len(cities))
	for _, c := range cities {
		byID[c.ID] = c
	}
	if overrides == nil {
		overrides = map[Pair]int{}
	}
	return &Estimator{
		cities:    byID,
		overrides: overrides,
		config:    config,
	}
}

// Estimate returns the travel duration in whole minutes from one city to another.
func (e *Estimator) Estimate(from, to string) (int, error) {
	if minutes, ok := e.overrides[Pair{From: from, To: to}]; ok {
		return minutes, nil
	}
	fromCity, ok := e.cities[from]
	if !ok {
		return 0, errors.Wrap(models.ErrUnknownCity, "missing coordinates", slog.String("city_id", from))
	}
	toCity, ok := e.cities[to]
	if !ok {
		return 0, errors.Wrap(models.ErrUnknownCity, "missing coordinates", slog.String("city_id", to))
	}
	if from == to {
		return 0, nil
	}

	mode := e.config.Air
	if fromCity.Country == toCity.Country {
		mode = e.config.Ground
	}
	distance := Haversine(fromCity.Latitude, fromCity.Longitude, toCity.Latitude, toCity.Longitude)
	hours := distance / mode.SpeedKMH
	return mode.OverheadMinutes + int(math.Ceil(hours*60)), nil //nolint:mnd // minutes per hour.
}

// Haversine returns the great-circle distance in kilometres.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
