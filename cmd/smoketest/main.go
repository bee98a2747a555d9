package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/gumshoe/internal/ai"
	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/game"
	"github.com/myrjola/gumshoe/internal/logging"
	"github.com/myrjola/gumshoe/internal/models"
	"github.com/myrjola/gumshoe/internal/rules"
	"github.com/myrjola/gumshoe/internal/suspects"
)

// PlayCase solves a lenient case by following the primary route with a warrant for the culprit.
func PlayCase(ctx context.Context, g *game.Game, playerID string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second) //nolint:mnd // 30 seconds
	defer cancel()

	created, err := g.Cases.Create(ctx, playerID, models.DifficultyLenient)
	if err != nil {
		return errors.Wrap(err, "create case")
	}
	ctx = logging.WithCase(ctx, created.Case.ID)
	culprit, ok := suspects.Culprit(created.Suspects)
	if !ok {
		return errors.New("case has no culprit")
	}
	if _, err = g.Machine.IssueWarrant(ctx, created.Case.ID, culprit.ID); err != nil {
		return errors.Wrap(err, "issue warrant")
	}

	steps := created.Route.Steps
	for _, step := range steps[:len(steps)-1] {
		lead, found := findPlace(created.Places, step.CityID, models.ClueRoleNextLocation, false)
		if !found {
			return errors.New("step has no lead", slog.String("city_id", step.CityID))
		}
		if _, err = g.Machine.Investigate(ctx, created.Case.ID, lead.ID); err != nil {
			return errors.Wrap(err, "investigate lead")
		}
		primary, _ := step.PrimaryOption()
		outcome, err := g.Machine.Travel(ctx, created.Case.ID, primary.CityID)
		if err != nil {
			return errors.Wrap(err, "travel")
		}
		if !outcome.Advanced {
			return errors.New("primary travel did not advance", slog.Int("step", step.Order))
		}
	}

	capture, found := findPlace(created.Places, steps[len(steps)-1].CityID, models.ClueRoleNextLocation, true)
	if !found {
		return errors.New("route has no capture location")
	}
	outcome, err := g.Machine.Investigate(ctx, created.Case.ID, capture.ID)
	if err != nil {
		return errors.Wrap(err, "investigate capture location")
	}
	if outcome.GameOver == nil || outcome.GameOver.Status != models.CaseStatusSolved {
		return errors.New("case not solved")
	}
	return nil
}

func findPlace(places []models.Place, cityID string, role models.ClueRole, capture bool) (models.Place, bool) {
	for _, p := range places {
		if p.CityID == cityID && p.Role == role && p.Capture == capture {
			return p, true
		}
	}
	return models.Place{}, false
}

func main() {
	logger := logging.New(os.Stdout, "debug", false)
	ctx := context.Background()

	if len(os.Args) > 2 { //nolint:mnd // only the optional database url is expected.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest [sqlite-url]")
		os.Exit(1)
	}
	sqliteURL := ":memory:"
	if len(os.Args) == 2 { //nolint:mnd // database url given.
		sqliteURL = os.Args[1]
	}
	ctx = logging.WithAttrs(ctx, slog.String("url", sqliteURL))

	g, err := game.New(ctx, game.Options{
		SQLiteURL: sqliteURL,
		Rules:     rules.Default(),
		Writer:    ai.Offline{},
		Rand:      nil,
		Now:       time.Now,
	}, logger)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error starting game", errors.SlogError(err))
		os.Exit(1)
	}
	err = PlayCase(ctx, g, "smoketest-"+time.Now().UTC().Format("20060102T150405"))
	if closeErr := g.Close(); closeErr != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error closing game", errors.SlogError(closeErr))
	}
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error playing case", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
}
