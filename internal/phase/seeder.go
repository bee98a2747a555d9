// Package phase populates the cities of a route with places to investigate.
package phase

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/models"
	"github.com/myrjola/gumshoe/internal/random"
)

// PlacesPerCity is the number of places seeded in every city.
const PlacesPerCity = 3

var (
	primaryRoles = []models.ClueRole{models.ClueRoleNextLocation, models.ClueRoleNextLocation, models.ClueRoleVillain}
	decoyRoles   = []models.ClueRole{models.ClueRoleVillain, models.ClueRoleVillain, models.ClueRoleVillain}
)

var fallbackPlaceType = models.PlaceType{ID: "street", Name: "Street corner", Style: models.InteractionStyleObserve}

// Store persists places.
type Store interface {
	HasPlaces(ctx context.Context, caseID, cityID string) (bool, error)
	InsertPlace(ctx context.Context, place models.Place) error
}

type Seeder struct {
	placeTypes []models.PlaceType
	logger     *slog.Logger
}

func NewSeeder(placeTypes []models.PlaceType, logger *slog.Logger) *Seeder {
	return &Seeder{
		placeTypes: placeTypes,
		logger:     logger.With("source", "PhaseSeeder"),
	}
}

// Seed creates the places of every city the route can lead to. Cities that already have places for the case are
// left untouched so that places are never recreated.
func (s *Seeder) Seed(ctx context.Context, store Store, rng *rand.Rand, route models.Route) ([]models.Place, error) {
	var (
		created []models.Place
		exists  = map[string]bool{}
	)
	for _, place := range Plan(rng, route, s.placeTypes) {
		seeded, checked := exists[place.CityID]
		if !checked {
			var err error
			if seeded, err = store.HasPlaces(ctx, route.CaseID, place.CityID); err != nil {
				return nil, errors.Wrap(err, "check places", slog.String("city_id", place.CityID))
			}
			exists[place.CityID] = seeded
		}
		if seeded {
			continue
		}
		if err := store.InsertPlace(ctx, place); err != nil {
			return nil, errors.Wrap(err, "insert place", slog.String("city_id", place.CityID))
		}
		created = append(created, place)
	}
	s.logger.LogAttrs(ctx, slog.LevelDebug, "seeded places", slog.Int("count", len(created)))
	return created, nil
}

// Plan assigns places and clue roles to the cities of the route.
//
// The starting city and the primary city of every later step get two next-location leads and one villain lead.
// Decoy cities only get villain leads. The first place of the final city is the capture location. A city offered
// by several steps is planned once.
func Plan(rng *rand.Rand, route models.Route, placeTypes []models.PlaceType) []models.Place {
	var (
		places  []models.Place
		planned = map[string]bool{}
	)
	plan := func(cityID string, roles []models.ClueRole, final bool) {
		if planned[cityID] {
			return
		}
		planned[cityID] = true
		types := random.Sample(rng, placeTypes, len(roles))
		if len(types) == 0 {
			types = []models.PlaceType{fallbackPlaceType}
		}
		for i, role := range roles {
			pt := types[i%len(types)]
			places = append(places, models.Place{
				ID:      uuid.NewString(),
				CaseID:  route.CaseID,
				CityID:  cityID,
				TypeID:  pt.ID,
				Name:    pt.Name,
				Style:   pt.Style,
				Role:    role,
				Capture: final && i == 0,
				Clue:    nil,
			})
		}
	}

	for i, step := range route.Steps {
		final := i == len(route.Steps)-1
		if i == 0 {
			plan(step.CityID, primaryRoles, final)
			continue
		}
		for _, option := range route.Steps[i-1].Options {
			if option.CityID == step.CityID {
				plan(option.CityID, primaryRoles, final)
			} else {
				plan(option.CityID, decoyRoles, false)
			}
		}
	}
	return places
}
