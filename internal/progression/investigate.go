package progression

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/gumshoe/internal/ai"
	"github.com/myrjola/gumshoe/internal/clock"
	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/models"
	"github.com/myrjola/gumshoe/internal/random"
	"github.com/myrjola/gumshoe/internal/repositories"
)

// InvestigateOutcome is the result of investigating a place.
type InvestigateOutcome struct {
	Place models.Place
	// Clue is nil when the investigation ended the case.
	Clue *models.Clue
	// Cached is true when the clue had been revealed before.
	Cached   bool
	Time     clock.Result
	GameOver *GameOver
}

// Investigate spends the investigation cost at a place in the current city and reveals its clue.
//
// The cost is charged on every call, including repeated visits to a place whose clue is already cached. Breaching the
// deadline fails the case before anything else happens. At the capture location the warrant decides the case.
// Otherwise the clue is revealed once and returned unchanged afterwards.
//
// The clue writer runs before the write transaction so that a slow writer never holds the database. Its text is
// discarded when the clue turns out to be cached already.
func (m *Machine) Investigate(ctx context.Context, caseID, placeID string) (InvestigateOutcome, error) {
	ctx, unlock, err := m.lock(ctx, caseID)
	if err != nil {
		return InvestigateOutcome{}, err
	}
	defer unlock()
	if err = validateID(placeID); err != nil {
		return InvestigateOutcome{}, errors.Wrap(err, "place id")
	}

	read := m.store.Read()
	snap, err := m.readSnapshot(ctx, read, caseID)
	if err != nil {
		return InvestigateOutcome{}, errors.Wrap(err, "investigate")
	}
	place, err := read.Place(ctx, caseID, placeID)
	if err != nil {
		return InvestigateOutcome{}, errors.Wrap(err, "investigate")
	}
	if place.CityID != snap.position.CityID {
		return InvestigateOutcome{}, errors.Wrap(models.ErrPlaceNotHere, "investigate",
			slog.String("place_city", place.CityID), slog.String("current_city", snap.position.CityID))
	}

	var (
		clue   models.Clue
		prompt ai.Prompt
	)
	preview := m.clock.Preview(snap.state, m.config.InvestigationCost)
	if !preview.Failed && !place.Capture && place.Clue == nil {
		if prompt, err = m.prompt(ctx, read, snap, place); err != nil {
			return InvestigateOutcome{}, errors.Wrap(err, "build clue prompt")
		}
		clue = models.Clue{PlaceID: place.ID, Role: prompt.Role, Text: m.writeClue(ctx, prompt), CreatedAt: time.Time{}}
	}

	var outcome InvestigateOutcome
	err = m.store.WithTx(ctx, func(q *repositories.Queries) error {
		state, err := q.TimeState(ctx, caseID)
		if err != nil {
			return err
		}
		c, err := q.Case(ctx, caseID)
		if err != nil {
			return err
		}
		if c.Status != models.CaseStatusActive || !state.Current.Equal(snap.state.Current) {
			return errors.Wrap(models.ErrConcurrentUpdate, "investigate")
		}

		result, err := m.clock.Consume(ctx, q, caseID, m.config.InvestigationCost)
		if err != nil {
			return errors.Wrap(err, "consume investigation time")
		}
		outcome = InvestigateOutcome{Place: place, Clue: nil, Cached: false, Time: result, GameOver: nil}

		if outcome.GameOver, err = m.failOnDeadline(ctx, q, c, result); err != nil || outcome.GameOver != nil {
			return err
		}
		if place.Capture {
			outcome.GameOver, err = m.capture(ctx, q, c, place, result.Current)
			return err
		}
		if place.Clue != nil {
			outcome.Clue = place.Clue
			outcome.Cached = true
			return nil
		}
		clue.CreatedAt = result.Current
		stored, err := q.InsertClue(ctx, clue)
		if err != nil {
			return err
		}
		outcome.Clue = &stored
		outcome.Place.Clue = &stored
		return nil
	})
	if err != nil {
		return InvestigateOutcome{}, errors.Wrap(err, "investigate")
	}
	m.logger.LogAttrs(ctx, slog.LevelInfo, "investigated place",
		slog.String("place_id", place.ID),
		slog.Bool("cached", outcome.Cached),
		slog.Bool("game_over", outcome.GameOver != nil))
	return outcome, nil
}

// prompt decides what the clue of a place reveals. Places in a decoy city never help, whatever their stored role.
func (m *Machine) prompt(
	ctx context.Context,
	q *repositories.Queries,
	snap snapshot,
	place models.Place,
) (ai.Prompt, error) {
	city := m.city(place.CityID)
	prompt := ai.Prompt{
		Role:       models.ClueRoleWarning,
		Style:      place.Style,
		PlaceName:  place.Name,
		CityName:   city.Name,
		StolenItem: snap.c.StolenItem,
		NextCity:   models.City{},
		Attribute:  0,
		Value:      "",
		Nearby:     false,
	}
	switch {
	case snap.position.Mode == models.StepModeDecoy:
		// Decoy cities only ever warn.
	case place.Role == models.ClueRoleNextLocation && snap.position.Mode == models.StepModeFinal:
		prompt.Nearby = true
	case place.Role == models.ClueRoleNextLocation:
		next, ok := snap.route.Step(snap.position.Step.Order + 1)
		if !ok {
			return ai.Prompt{}, errors.Wrap(models.ErrRouteNotFound, "next step")
		}
		prompt.Role = models.ClueRoleNextLocation
		prompt.NextCity = m.city(next.CityID)
	case place.Role == models.ClueRoleVillain:
		culprit, err := q.Culprit(ctx, snap.c.ID)
		if err != nil {
			return ai.Prompt{}, err
		}
		m.randMu.Lock()
		kind := random.Pick(m.rng, models.AttributeKinds)
		m.randMu.Unlock()
		prompt.Role = models.ClueRoleVillain
		prompt.Attribute = kind
		prompt.Value = culprit.Attributes.Value(kind)
	}
	return prompt, nil
}

// writeClue asks the clue writer for the text within the configured timeout and falls back to a template.
func (m *Machine) writeClue(ctx context.Context, prompt ai.Prompt) string {
	ctx, cancel := context.WithTimeout(ctx, m.config.ClueTimeout)
	defer cancel()
	text, err := m.writer.WriteClue(ctx, prompt)
	if err != nil {
		err = errors.Join(models.ErrDependency, errors.Wrap(err, "write clue"))
		m.logger.LogAttrs(ctx, slog.LevelWarn, "falling back to template clue",
			slog.String("role", string(prompt.Role)), errors.SlogError(err))
		return ai.Fallback(prompt)
	}
	return text
}

// capture resolves the case at the capture location.
func (m *Machine) capture(
	ctx context.Context,
	q *repositories.Queries,
	c models.Case,
	place models.Place,
	at time.Time,
) (*GameOver, error) {
	culprit, err := q.Culprit(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	over := GameOver{Status: models.CaseStatusFailed, Reason: "", Narrative: ""}
	switch {
	case !c.HasWarrant():
		over.Reason = models.ReasonNoWarrant
		over.Narrative = "You corner " + culprit.Name + " at the " + place.Name +
			", but without a warrant you can only watch them walk away with " + c.StolenItem + "."
	case c.WarrantSuspectID == culprit.ID:
		over.Status = models.CaseStatusSolved
		over.Reason = models.ReasonArrested
		over.Narrative = "You arrest " + culprit.Name + " at the " + place.Name + " and recover " +
			c.StolenItem + ". Case closed."
	default:
		suspect, err := q.Suspect(ctx, c.ID, c.WarrantSuspectID)
		if err != nil {
			return nil, err
		}
		over.Reason = models.ReasonWrongSuspect
		over.Narrative = "Your warrant names " + suspect.Name + ", but the thief at the " + place.Name +
			" is " + culprit.Name + ". They slip away with " + c.StolenItem + "."
	}
	if err = q.InsertCapture(ctx, models.Capture{
		CaseID:           c.ID,
		PlaceID:          place.ID,
		WarrantSuspectID: c.WarrantSuspectID,
		CulpritID:        culprit.ID,
		Status:           over.Status,
		Narrative:        over.Narrative,
		At:               at,
	}); err != nil {
		return nil, err
	}
	if err = m.resolver.Resolve(ctx, q, c, over.Status, over.Reason); err != nil {
		return nil, errors.Wrap(err, "resolve capture")
	}
	return &over, nil
}
