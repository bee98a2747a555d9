// Package deadline derives the deadline of a case by simulating an optimal playthrough of its route.
package deadline

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/gumshoe/internal/clock"
	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/models"
	"github.com/myrjola/gumshoe/internal/rules"
)

// Estimator estimates travel minutes between cities.
type Estimator interface {
	Estimate(from, to string) (int, error)
}

// Store persists the time state of a new case.
type Store interface {
	InsertTimeState(ctx context.Context, state models.TimeState) error
}

type Initializer struct {
	window    clock.Window
	location  *time.Location
	anchor    time.Weekday
	rules     rules.Rules
	estimator Estimator
	now       func() time.Time
	logger    *slog.Logger
}

// NewInitializer creates an initializer. The blackout window must be the one used by the [clock.Clock] of live play.
func NewInitializer(r rules.Rules, estimator Estimator, now func() time.Time, logger *slog.Logger) (*Initializer, error) {
	if err := r.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate rules")
	}
	window, err := r.Window()
	if err != nil {
		return nil, err
	}
	loc, err := r.Location()
	if err != nil {
		return nil, err
	}
	anchor, err := r.AnchorWeekday()
	if err != nil {
		return nil, err
	}
	return &Initializer{
		window:    window,
		location:  loc,
		anchor:    anchor,
		rules:     r,
		estimator: estimator,
		now:       now,
		logger:    logger.With("source", "DeadlineInitializer"),
	}, nil
}

// Budget returns the awake minutes granted for the route at the given difficulty.
func (i *Initializer) Budget(difficulty models.Difficulty, route models.Route) (int, error) {
	slack, err := i.rules.Slack(difficulty)
	if err != nil {
		return 0, err
	}
	optimal, err := i.optimalMinutes(route)
	if err != nil {
		return 0, err
	}
	return max(optimal+slack, 0), nil
}

// optimalMinutes is the travel time along the primary route plus the expected investigations at every step.
func (i *Initializer) optimalMinutes(route models.Route) (int, error) {
	cities := route.Cities()
	total := 0
	for k := 1; k < len(cities); k++ {
		minutes, err := i.estimator.Estimate(cities[k-1], cities[k])
		if err != nil {
			return 0, errors.Wrap(err, "estimate leg", slog.Int("step", k))
		}
		total += minutes
	}
	total += len(cities) * i.rules.Investigation.ExpectedVisitsPerStep * i.rules.Investigation.CostMinutes
	return total, nil
}

// Start computes the time state of a new case and persists it. The case starts at the next weekly anchor and the
// budget is walked forward through the blackout window like live play does.
func (i *Initializer) Start(
	ctx context.Context,
	store Store,
	caseID string,
	difficulty models.Difficulty,
	route models.Route,
) (models.TimeState, error) {
	budget, err := i.Budget(difficulty, route)
	if err != nil {
		return models.TimeState{}, errors.Wrap(err, "compute budget")
	}
	start := i.window.NextAnchor(i.now().In(i.location), i.anchor)
	state := models.TimeState{
		CaseID:   caseID,
		Start:    start,
		Deadline: i.window.Advance(start, budget),
		Current:  start,
		Timezone: i.location.String(),
	}
	if err = store.InsertTimeState(ctx, state); err != nil {
		return models.TimeState{}, errors.Wrap(err, "insert time state")
	}
	i.logger.LogAttrs(ctx, slog.LevelInfo, "started case clock",
		slog.Time("start", state.Start),
		slog.Time("deadline", state.Deadline),
		slog.Int("budget_minutes", budget))
	return state, nil
}
