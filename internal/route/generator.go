// Package route generates the sequence of cities a case leads through.
package route

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/models"
	"github.com/myrjola/gumshoe/internal/random"
)

const maxAttempts = 32

// Params sizes a route.
type Params struct {
	Steps int
	// OptionsPerStep counts the primary option plus its decoys.
	OptionsPerStep int
	// ExtraDecoys is added on top of OptionsPerStep-1 decoys, usually derived from the player's rank.
	ExtraDecoys int
}

// Store persists routes.
type Store interface {
	RouteExists(ctx context.Context, caseID string) (bool, error)
	InsertStep(ctx context.Context, caseID string, step models.Step) error
}

type Generator struct {
	cities []models.City
	logger *slog.Logger
}

// NewGenerator creates a generator drawing from the city catalog.
func NewGenerator(cities []models.City, logger *slog.Logger) *Generator {
	return &Generator{
		cities: cities,
		logger: logger.With("source", "RouteGenerator"),
	}
}

// Generate plans a route for the case and persists it. It refuses to generate a second route for a case.
func (g *Generator) Generate(
	ctx context.Context,
	store Store,
	rng *rand.Rand,
	caseID string,
	params Params,
) (models.Route, error) {
	exists, err := store.RouteExists(ctx, caseID)
	if err != nil {
		return models.Route{}, errors.Wrap(err, "check existing route")
	}
	if exists {
		return models.Route{}, errors.Wrap(models.ErrRouteExists, "generate route", slog.String("case_id", caseID))
	}

	route, err := Plan(rng, g.cities, params)
	if err != nil {
		return models.Route{}, err
	}
	route.CaseID = caseID
	for _, step := range route.Steps {
		if err = store.InsertStep(ctx, caseID, step); err != nil {
			return models.Route{}, errors.Wrap(err, "insert step", slog.Int("step", step.Order))
		}
	}
	g.logger.LogAttrs(ctx, slog.LevelInfo, "generated route",
		slog.Any("cities", route.Cities()),
		slog.Int("decoys_per_step", params.OptionsPerStep-1+params.ExtraDecoys))
	return route, nil
}

// Plan selects the route cities and the travel options of every step.
//
// No two consecutive steps share a country. Every step but the last offers the next step's city as its primary
// option plus decoys drawn from cities that are not on the route.
func Plan(rng *rand.Rand, cities []models.City, params Params) (models.Route, error) {
	if params.Steps < 1 || params.OptionsPerStep < 1 {
		return models.Route{}, errors.Wrap(models.ErrValidation, "route size must be positive",
			slog.Int("steps", params.Steps), slog.Int("options_per_step", params.OptionsPerStep))
	}
	if len(cities) < params.Steps {
		return models.Route{}, errors.Wrap(models.ErrNotEnoughCities, "plan route",
			slog.Int("cities", len(cities)), slog.Int("steps", params.Steps))
	}

	var selected []models.City
	for range maxAttempts {
		if selected = pickAlternating(rng, cities, params.Steps); selected != nil {
			break
		}
	}
	if selected == nil {
		return models.Route{}, errors.Wrap(models.ErrNotEnoughCities, "no country-alternating route",
			slog.Int("steps", params.Steps))
	}

	onRoute := make(map[string]bool, len(selected))
	for _, c := range selected {
		onRoute[c.ID] = true
	}
	var decoyPool []string
	for _, c := range cities {
		if !onRoute[c.ID] {
			decoyPool = append(decoyPool, c.ID)
		}
	}
	decoyCount := max(params.OptionsPerStep-1+params.ExtraDecoys, 0)

	steps := make([]models.Step, len(selected))
	for i, c := range selected {
		steps[i] = models.Step{Order: i + 1, CityID: c.ID}
		if i == len(selected)-1 {
			continue
		}
		options := []models.Option{{CityID: selected[i+1].ID, Primary: true}}
		for _, decoy := range random.Sample(rng, decoyPool, decoyCount) {
			options = append(options, models.Option{CityID: decoy, Primary: false})
		}
		rng.Shuffle(len(options), func(a, b int) {
			options[a], options[b] = options[b], options[a]
		})
		steps[i].Options = options
	}
	return models.Route{Steps: steps}, nil
}

// pickAlternating draws n distinct cities at random such that consecutive cities are in different countries. It
// returns nil when the random walk gets stuck.
func pickAlternating(rng *rand.Rand, cities []models.City, n int) []models.City {
	remaining := random.Sample(rng, cities, len(cities))
	selected := make([]models.City, 0, n)
	for len(selected) < n {
		idx := -1
		for i, c := range remaining {
			if len(selected) == 0 || c.Country != selected[len(selected)-1].Country {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil
		}
		selected = append(selected, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return selected
}
