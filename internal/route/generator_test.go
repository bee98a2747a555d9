package route_test

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/myrjola/gumshoe/internal/models"
	"github.com/myrjola/gumshoe/internal/random"
	"github.com/myrjola/gumshoe/internal/route"
	"github.com/myrjola/gumshoe/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func catalog(countries, perCountry int) []models.City {
	var cities []models.City
	for c := range countries {
		for i := range perCountry {
			cities = append(cities, models.City{
				ID:      fmt.Sprintf("c%d-%d", c, i),
				Country: fmt.Sprintf("country-%d", c),
			})
		}
	}
	return cities
}

func TestPlan(t *testing.T) {
	cities := catalog(6, 3)
	byID := map[string]models.City{}
	for _, c := range cities {
		byID[c.ID] = c
	}
	params := route.Params{Steps: 5, OptionsPerStep: 3, ExtraDecoys: 1}

	for seed := range uint64(50) {
		r, err := route.Plan(random.Seeded(seed), cities, params)
		require.NoError(t, err)
		require.Len(t, r.Steps, params.Steps)

		onRoute := map[string]bool{}
		for i, step := range r.Steps {
			require.Equal(t, i+1, step.Order)
			require.False(t, onRoute[step.CityID], "route cities must be distinct")
			onRoute[step.CityID] = true
			if i > 0 {
				require.NotEqual(t, byID[r.Steps[i-1].CityID].Country, byID[step.CityID].Country,
					"consecutive steps must not share a country")
			}
		}

		for i, step := range r.Steps {
			if i == len(r.Steps)-1 {
				require.Empty(t, step.Options, "final step has no options")
				continue
			}
			require.Len(t, step.Options, params.OptionsPerStep+params.ExtraDecoys)
			primary, ok := step.PrimaryOption()
			require.True(t, ok)
			require.Equal(t, r.Steps[i+1].CityID, primary.CityID)
			seen := map[string]bool{}
			for _, decoy := range step.Decoys() {
				require.False(t, onRoute[decoy], "decoys must not be on the route")
				require.False(t, seen[decoy])
				seen[decoy] = true
			}
		}
	}
}

func TestPlan_NotEnoughCities(t *testing.T) {
	tests := []struct {
		name   string
		cities []models.City
		steps  int
	}{
		{name: "too few cities", cities: catalog(2, 1), steps: 3},
		{name: "single country", cities: catalog(1, 5), steps: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := route.Plan(random.Seeded(1), tt.cities, route.Params{Steps: tt.steps, OptionsPerStep: 2})
			require.ErrorIs(t, err, models.ErrNotEnoughCities)
		})
	}
}

func TestPlan_CapsDecoysToAvailableCities(t *testing.T) {
	r, err := route.Plan(random.Seeded(3), catalog(2, 2), route.Params{Steps: 3, OptionsPerStep: 5})
	require.NoError(t, err)
	require.Len(t, r.Steps[0].Options, 2, "primary plus the single city left off the route")
}

type memoryStore struct {
	steps map[string][]models.Step
}

func (s *memoryStore) RouteExists(_ context.Context, caseID string) (bool, error) {
	return len(s.steps[caseID]) > 0, nil
}

func (s *memoryStore) InsertStep(_ context.Context, caseID string, step models.Step) error {
	s.steps[caseID] = append(s.steps[caseID], step)
	return nil
}

func TestGenerator_Generate(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{steps: map[string][]models.Step{}}
	g := route.NewGenerator(catalog(4, 3), testhelpers.NewLogger(io.Discard))
	params := route.Params{Steps: 4, OptionsPerStep: 3}

	r, err := g.Generate(ctx, store, random.Seeded(9), "case-1", params)
	require.NoError(t, err)
	require.Equal(t, "case-1", r.CaseID)
	require.Equal(t, r.Steps, store.steps["case-1"])

	_, err = g.Generate(ctx, store, random.Seeded(9), "case-1", params)
	require.ErrorIs(t, err, models.ErrRouteExists)
	require.ErrorIs(t, err, models.ErrStateConflict)
	require.Len(t, store.steps["case-1"], 4, "refused generation must not write")
}
