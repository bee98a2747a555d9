package clock

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/models"
)

// Store reads and persists the time state of a case. It is usually bound to the transaction of the action that
// consumes the time.
type Store interface {
	TimeState(ctx context.Context, caseID string) (models.TimeState, error)
	SetCurrentTime(ctx context.Context, caseID string, current time.Time) error
}

// Result is the outcome of spending time.
type Result struct {
	Previous time.Time
	Current  time.Time
	Deadline time.Time
	// Remaining is the awake minutes left until Deadline.
	Remaining int
	// Failed is true when Current is past Deadline.
	Failed bool
}

// Clock advances the time of cases.
type Clock struct {
	window Window
	logger *slog.Logger
}

func New(window Window, logger *slog.Logger) *Clock {
	return &Clock{
		window: window,
		logger: logger.With("source", "Clock"),
	}
}

// Window returns the blackout window shared with deadline simulation.
func (c *Clock) Window() Window {
	return c.window
}

// Preview computes the result of consuming minutes without persisting anything. The blackout window applies in the
// location of state.Current, which the store sets to the case's timezone.
func (c *Clock) Preview(state models.TimeState, minutes int) Result {
	current := c.window.Advance(state.Current, minutes)
	return Result{
		Previous:  state.Current,
		Current:   current,
		Deadline:  state.Deadline,
		Remaining: c.Remaining(current, state.Deadline),
		Failed:    current.After(state.Deadline),
	}
}

// Remaining counts the awake minutes left until the deadline.
func (c *Clock) Remaining(current, deadline time.Time) int {
	return c.window.AwakeMinutes(current, deadline)
}

// Consume spends minutes of awake time on the case and persists the new current time. The time is persisted even
// when the deadline is breached so that a failed case can still be inspected.
func (c *Clock) Consume(ctx context.Context, store Store, caseID string, minutes int) (Result, error) {
	state, err := store.TimeState(ctx, caseID)
	if err != nil {
		return Result{}, errors.Wrap(err, "read time state")
	}
	result := c.Preview(state, minutes)
	if err = store.SetCurrentTime(ctx, caseID, result.Current); err != nil {
		return Result{}, errors.Wrap(err, "persist current time")
	}
	level := slog.LevelDebug
	if result.Failed {
		level = slog.LevelInfo
	}
	c.logger.LogAttrs(ctx, level, "consumed time",
		slog.Int("minutes", minutes),
		slog.Time("current", result.Current),
		slog.Time("deadline", result.Deadline),
		slog.Bool("failed", result.Failed))
	return result, nil
}
