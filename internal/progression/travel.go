package progression

import (
	"context"
	"log/slog"

	"github.com/myrjola/gumshoe/internal/clock"
	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/models"
	"github.com/myrjola/gumshoe/internal/repositories"
)

// TravelOutcome describes an accepted travel.
type TravelOutcome struct {
	// Advanced is true when the destination was the step's primary option.
	Advanced  bool
	StepOrder int
	From      models.City
	To        models.City
	Minutes   int
	Time      clock.Result
	// GameOver is set when the journey breached the deadline.
	GameOver *GameOver
}

// Travel moves the player towards destination.
//
// The primary option marks the current step visited and points the view at the next step. A decoy option points the
// view at the decoy on the same step, so progress is never lost. Both spend the travel time from the city in view.
// A destination outside the step's options is rejected with [models.ErrNotAnOption] without spending time, but the
// attempt is still logged.
func (m *Machine) Travel(ctx context.Context, caseID, destination string) (TravelOutcome, error) {
	ctx, unlock, err := m.lock(ctx, caseID)
	if err != nil {
		return TravelOutcome{}, err
	}
	defer unlock()
	if destination == "" {
		return TravelOutcome{}, errors.Wrap(models.ErrInvalidID, "destination")
	}

	var (
		outcome  TravelOutcome
		rejected error
	)
	err = m.store.WithTx(ctx, func(q *repositories.Queries) error {
		snap, err := m.readSnapshot(ctx, q, caseID)
		if err != nil {
			return err
		}
		step := snap.position.Step
		if snap.position.Mode == models.StepModeFinal {
			return errors.Wrap(models.ErrFinalStep, "travel", slog.Int("step", step.Order))
		}
		leads, err := q.CountClues(ctx, caseID, step.CityID, models.ClueRoleNextLocation)
		if err != nil {
			return err
		}
		if leads < 1 {
			return errors.Wrap(models.ErrTravelBlind, "travel", slog.Int("step", step.Order))
		}

		entry := models.TravelLog{
			ID:        0,
			CaseID:    caseID,
			StepOrder: step.Order,
			FromCity:  snap.position.CityID,
			ToCity:    destination,
			Success:   false,
			Reason:    "",
			At:        snap.state.Current,
		}
		option, ok := step.Option(destination)
		if !ok {
			entry.Reason = models.ReasonNotAnOption
			if err = q.InsertTravelLog(ctx, entry); err != nil {
				return err
			}
			rejected = errors.Wrap(models.ErrNotAnOption, "travel",
				slog.Int("step", step.Order), slog.String("destination", destination))
			return nil
		}

		minutes, err := m.estimator.Estimate(snap.position.CityID, destination)
		if err != nil {
			return errors.Wrap(err, "estimate travel")
		}
		result, err := m.clock.Consume(ctx, q, caseID, minutes)
		if err != nil {
			return errors.Wrap(err, "consume travel time")
		}
		entry.At = result.Current
		outcome = TravelOutcome{
			Advanced:  false,
			StepOrder: step.Order,
			From:      m.city(snap.position.CityID),
			To:        m.city(destination),
			Minutes:   minutes,
			Time:      result,
			GameOver:  nil,
		}

		if outcome.GameOver, err = m.failOnDeadline(ctx, q, snap.c, result); err != nil {
			return err
		}
		switch {
		case outcome.GameOver != nil:
			entry.Reason = models.ReasonDeadlineExceeded
		case option.Primary:
			if err = q.MarkStepVisited(ctx, caseID, step.Order); err != nil {
				return err
			}
			if err = q.SetView(ctx, caseID, step.Order+1, destination); err != nil {
				return err
			}
			entry.Success = true
			outcome.Advanced = true
			outcome.StepOrder = step.Order + 1
		default:
			if err = q.SetView(ctx, caseID, step.Order, destination); err != nil {
				return err
			}
			entry.Reason = models.ReasonDecoy
		}
		return q.InsertTravelLog(ctx, entry)
	})
	if err != nil {
		return TravelOutcome{}, errors.Wrap(err, "travel")
	}
	if rejected != nil {
		m.logger.LogAttrs(ctx, slog.LevelWarn, "travel to a city that is not an option",
			slog.String("destination", destination))
		return TravelOutcome{}, rejected
	}
	m.logger.LogAttrs(ctx, slog.LevelInfo, "travelled",
		slog.String("from", outcome.From.ID),
		slog.String("to", outcome.To.ID),
		slog.Bool("advanced", outcome.Advanced),
		slog.Int("minutes", outcome.Minutes))
	return outcome, nil
}
