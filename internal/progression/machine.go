// Package progression implements the player actions that move a case forward: travelling between cities,
// investigating places, issuing the warrant and giving up.
//
// Every action on a case holds the case's key lock for its whole read-modify-write sequence, and all of its writes
// commit in one transaction.
package progression

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/gumshoe/internal/ai"
	"github.com/myrjola/gumshoe/internal/clock"
	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/keyedlock"
	"github.com/myrjola/gumshoe/internal/logging"
	"github.com/myrjola/gumshoe/internal/models"
	"github.com/myrjola/gumshoe/internal/repositories"
)

// ClueWriter phrases the hint of a clue.
type ClueWriter interface {
	WriteClue(ctx context.Context, prompt ai.Prompt) (string, error)
}

// Estimator estimates travel minutes between cities.
type Estimator interface {
	Estimate(from, to string) (int, error)
}

// Resolver finalizes a case. It runs inside the transaction of the action that ended the case.
type Resolver interface {
	Resolve(ctx context.Context, q *repositories.Queries, c models.Case, status models.CaseStatus, reason string) error
}

// GameOver is returned when an action ended the case.
type GameOver struct {
	Status    models.CaseStatus
	Reason    string
	Narrative string
}

// Config tunes the machine.
type Config struct {
	// InvestigationCost is the awake minutes charged on every investigate call.
	InvestigationCost int
	// ClueTimeout bounds the clue writer.
	ClueTimeout time.Duration
}

// Deps are the collaborators of the machine.
type Deps struct {
	Store     *repositories.Store
	Clock     *clock.Clock
	Estimator Estimator
	Writer    ClueWriter
	Resolver  Resolver
	Locks     *keyedlock.Locker[string]
	Cities    []models.City
	Rand      *rand.Rand
}

type Machine struct {
	store     *repositories.Store
	clock     *clock.Clock
	estimator Estimator
	writer    ClueWriter
	resolver  Resolver
	locks     *keyedlock.Locker[string]
	cities    map[string]models.City
	config    Config
	logger    *slog.Logger

	randMu sync.Mutex
	rng    *rand.Rand
}

func New(deps Deps, config Config, logger *slog.Logger) *Machine {
	cities := make(map[string]models.City, len(deps.Cities))
	for _, c := range deps.Cities {
		cities[c.ID] = c
	}
	return &Machine{
		store:     deps.Store,
		clock:     deps.Clock,
		estimator: deps.Estimator,
		writer:    deps.Writer,
		resolver:  deps.Resolver,
		locks:     deps.Locks,
		cities:    cities,
		config:    config,
		logger:    logger.With("source", "Progression"),
		randMu:    sync.Mutex{},
		rng:       deps.Rand,
	}
}

// lock validates the case id and acquires the case for the rest of the action.
func (m *Machine) lock(ctx context.Context, caseID string) (context.Context, func(), error) {
	if err := validateID(caseID); err != nil {
		return ctx, nil, errors.Wrap(err, "case id")
	}
	ctx = logging.WithCase(ctx, caseID)
	unlock, err := m.locks.Lock(ctx, caseID)
	if err != nil {
		return ctx, nil, errors.Wrap(err, "lock case")
	}
	return ctx, unlock, nil
}

// validateID accepts the UUIDs the engine hands out for cases, places and suspects.
func validateID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return errors.Wrap(models.ErrInvalidID, "parse id", slog.String("id", id))
	}
	return nil
}

// snapshot is the progression state of an active case, read once per action.
type snapshot struct {
	c        models.Case
	route    models.Route
	position models.Position
	state    models.TimeState
}

func (m *Machine) readSnapshot(ctx context.Context, q *repositories.Queries, caseID string) (snapshot, error) {
	c, err := q.Case(ctx, caseID)
	if err != nil {
		return snapshot{}, err
	}
	if c.Status != models.CaseStatusActive {
		return snapshot{}, errors.Wrap(models.ErrCaseNotActive, "check case status",
			slog.String("status", string(c.Status)))
	}
	route, err := q.Route(ctx, caseID)
	if err != nil {
		return snapshot{}, err
	}
	step, ok := route.Current()
	if !ok {
		return snapshot{}, errors.Wrap(models.ErrRouteExhausted, "current step")
	}
	view, err := q.View(ctx, caseID, step.Order)
	if err != nil {
		return snapshot{}, err
	}
	position, err := models.Locate(route, view)
	if err != nil {
		return snapshot{}, errors.Wrap(err, "locate player", slog.Int("step", step.Order), slog.String("view", view))
	}
	state, err := q.TimeState(ctx, caseID)
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{c: c, route: route, position: position, state: state}, nil
}

// failOnDeadline resolves the case when consumed time breached the deadline.
func (m *Machine) failOnDeadline(
	ctx context.Context,
	q *repositories.Queries,
	c models.Case,
	result clock.Result,
) (*GameOver, error) {
	if !result.Failed {
		return nil, nil
	}
	if err := m.resolver.Resolve(ctx, q, c, models.CaseStatusFailed, models.ReasonDeadlineExceeded); err != nil {
		return nil, errors.Wrap(err, "fail case on deadline")
	}
	m.logger.LogAttrs(ctx, slog.LevelInfo, "deadline exceeded",
		slog.Time("current", result.Current),
		slog.Time("deadline", result.Deadline))
	return &GameOver{
		Status:    models.CaseStatusFailed,
		Reason:    models.ReasonDeadlineExceeded,
		Narrative: "Time is up. The trail has gone cold and " + c.StolenItem + " is lost for good.",
	}, nil
}

func (m *Machine) city(id string) models.City {
	if c, ok := m.cities[id]; ok {
		return c
	}
	return models.City{ID: id, Name: id, Country: "", Latitude: 0, Longitude: 0, Description: ""}
}

// IssueWarrant binds a suspect to the case. It is allowed once while the case is active and costs no time.
func (m *Machine) IssueWarrant(ctx context.Context, caseID, suspectID string) (models.Case, error) {
	ctx, unlock, err := m.lock(ctx, caseID)
	if err != nil {
		return models.Case{}, err
	}
	defer unlock()
	if err = validateID(suspectID); err != nil {
		return models.Case{}, errors.Wrap(err, "suspect id")
	}

	var issued models.Case
	err = m.store.WithTx(ctx, func(q *repositories.Queries) error {
		c, err := q.Case(ctx, caseID)
		if err != nil {
			return err
		}
		if c.Status != models.CaseStatusActive {
			return errors.Wrap(models.ErrCaseNotActive, "issue warrant", slog.String("status", string(c.Status)))
		}
		if c.HasWarrant() {
			return errors.Wrap(models.ErrWarrantIssued, "issue warrant")
		}
		if _, err = q.Suspect(ctx, caseID, suspectID); err != nil {
			return err
		}
		if err = q.SetWarrant(ctx, caseID, suspectID); err != nil {
			return err
		}
		c.WarrantSuspectID = suspectID
		issued = c
		return nil
	})
	if err != nil {
		return models.Case{}, errors.Wrap(err, "issue warrant")
	}
	m.logger.LogAttrs(ctx, slog.LevelInfo, "issued warrant", slog.String("suspect_id", suspectID))
	return issued, nil
}

// Abandon gives up an active case.
func (m *Machine) Abandon(ctx context.Context, caseID string) (GameOver, error) {
	ctx, unlock, err := m.lock(ctx, caseID)
	if err != nil {
		return GameOver{}, err
	}
	defer unlock()

	err = m.store.WithTx(ctx, func(q *repositories.Queries) error {
		c, err := q.Case(ctx, caseID)
		if err != nil {
			return err
		}
		if c.Status != models.CaseStatusActive {
			return errors.Wrap(models.ErrCaseNotActive, "abandon case", slog.String("status", string(c.Status)))
		}
		return m.resolver.Resolve(ctx, q, c, models.CaseStatusFailed, models.ReasonAbandoned)
	})
	if err != nil {
		return GameOver{}, errors.Wrap(err, "abandon case")
	}
	m.logger.LogAttrs(ctx, slog.LevelInfo, "abandoned case")
	return GameOver{
		Status:    models.CaseStatusFailed,
		Reason:    models.ReasonAbandoned,
		Narrative: "You hand in your badge for this one. The thief is never heard of again.",
	}, nil
}
