// Package cases opens new cases and settles finished ones.
package cases

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/gumshoe/internal/deadline"
	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/keyedlock"
	"github.com/myrjola/gumshoe/internal/logging"
	"github.com/myrjola/gumshoe/internal/models"
	"github.com/myrjola/gumshoe/internal/phase"
	"github.com/myrjola/gumshoe/internal/random"
	"github.com/myrjola/gumshoe/internal/repositories"
	"github.com/myrjola/gumshoe/internal/route"
	"github.com/myrjola/gumshoe/internal/rules"
	"github.com/myrjola/gumshoe/internal/suspects"
)

var ErrNoStolenItems = errors.NewSentinel("stolen item catalog is empty")

// Deps are the collaborators of the orchestrator.
type Deps struct {
	Store       *repositories.Store
	Rules       rules.Rules
	Generator   *route.Generator
	Seeder      *phase.Seeder
	Initializer *deadline.Initializer
	Locks       *keyedlock.Locker[string]
	StolenItems []string
	Rand        *rand.Rand
	Now         func() time.Time
}

type Orchestrator struct {
	store       *repositories.Store
	rules       rules.Rules
	generator   *route.Generator
	seeder      *phase.Seeder
	initializer *deadline.Initializer
	locks       *keyedlock.Locker[string]
	stolenItems []string
	now         func() time.Time
	logger      *slog.Logger

	randMu sync.Mutex
	rng    *rand.Rand
}

func New(deps Deps, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:       deps.Store,
		rules:       deps.Rules,
		generator:   deps.Generator,
		seeder:      deps.Seeder,
		initializer: deps.Initializer,
		locks:       deps.Locks,
		stolenItems: deps.StolenItems,
		now:         deps.Now,
		logger:      logger.With("source", "CaseOrchestrator"),
		randMu:      sync.Mutex{},
		rng:         deps.Rand,
	}
}

// Created is a freshly opened case.
type Created struct {
	Case     models.Case
	Route    models.Route
	Time     models.TimeState
	Suspects []models.Suspect
	Places   []models.Place
}

// Create opens a case for the player. A player can only work on one active case at a time.
//
// Everything the case needs is generated in a single transaction: the route sized by difficulty and rank, the places
// of every city the route can lead to, the suspect pool, the clock and the initial view on the starting city.
func (o *Orchestrator) Create(ctx context.Context, playerID string, difficulty models.Difficulty) (Created, error) {
	if playerID == "" {
		return Created{}, errors.Wrap(models.ErrInvalidID, "player id")
	}
	tier, err := o.rules.Difficulty(difficulty)
	if err != nil {
		return Created{}, err
	}
	if len(o.stolenItems) == 0 {
		return Created{}, ErrNoStolenItems
	}
	ctx = logging.WithAttrs(ctx, slog.String("player_id", playerID))
	unlock, err := o.locks.Lock(ctx, "player:"+playerID)
	if err != nil {
		return Created{}, errors.Wrap(err, "lock player")
	}
	defer unlock()

	rng := o.fork()
	caseID := uuid.NewString()
	ctx = logging.WithCase(ctx, caseID)
	var created Created
	err = o.store.WithTx(ctx, func(q *repositories.Queries) error {
		player, err := q.EnsurePlayer(ctx, playerID)
		if err != nil {
			return err
		}
		if active, found, err := q.ActiveCase(ctx, playerID); err != nil {
			return err
		} else if found {
			return errors.Wrap(models.ErrActiveCaseExists, "create case", slog.String("active_case_id", active.ID))
		}

		created.Case = models.Case{
			ID:               caseID,
			PlayerID:         playerID,
			Status:           models.CaseStatusActive,
			Difficulty:       difficulty,
			StolenItem:       random.Pick(rng, o.stolenItems),
			WarrantSuspectID: "",
			Reason:           "",
			CreatedAt:        o.now().UTC().Truncate(time.Second),
			ResolvedAt:       time.Time{},
		}
		if err = q.InsertCase(ctx, created.Case); err != nil {
			return err
		}
		if created.Route, err = o.generator.Generate(ctx, q, rng, caseID, route.Params{
			Steps:          tier.Steps,
			OptionsPerStep: tier.OptionsPerStep,
			ExtraDecoys:    o.rules.ExtraDecoys(player.Rank),
		}); err != nil {
			return errors.Wrap(err, "generate route")
		}
		if created.Places, err = o.seeder.Seed(ctx, q, rng, created.Route); err != nil {
			return errors.Wrap(err, "seed places")
		}
		if created.Suspects, err = suspects.Seed(ctx, q, rng, caseID, o.rules.Suspects.PoolSize); err != nil {
			return errors.Wrap(err, "seed suspects")
		}
		if created.Time, err = o.initializer.Start(ctx, q, caseID, difficulty, created.Route); err != nil {
			return errors.Wrap(err, "start clock")
		}
		return q.SetView(ctx, caseID, 1, created.Route.Steps[0].CityID)
	})
	if err != nil {
		return Created{}, errors.Wrap(err, "create case")
	}
	o.logger.LogAttrs(ctx, slog.LevelInfo, "opened case",
		slog.String("difficulty", string(difficulty)),
		slog.Int("steps", len(created.Route.Steps)),
		slog.Time("deadline", created.Time.Deadline))
	return created, nil
}

// Resolve ends an active case and settles the player's statistics. It runs inside the caller's transaction.
func (o *Orchestrator) Resolve(
	ctx context.Context,
	q *repositories.Queries,
	c models.Case,
	status models.CaseStatus,
	reason string,
) error {
	if !status.Terminal() {
		return errors.Wrap(models.ErrValidation, "resolve case", slog.String("status", string(status)))
	}
	if err := q.ResolveCase(ctx, c.ID, status, reason, o.now()); err != nil {
		return err
	}
	if err := q.SettlePlayer(ctx, c.PlayerID, status, o.rules.Rank.SolvesPerRank); err != nil {
		return errors.Wrap(err, "settle player")
	}
	o.logger.LogAttrs(ctx, slog.LevelInfo, "resolved case",
		slog.String("status", string(status)),
		slog.String("reason", reason))
	return nil
}

// Player returns the statistics of the player.
func (o *Orchestrator) Player(ctx context.Context, playerID string) (models.Player, error) {
	return o.store.Read().Player(ctx, playerID)
}

// Cases lists the cases of the player, newest first.
func (o *Orchestrator) Cases(ctx context.Context, playerID string) ([]models.Case, error) {
	return o.store.Read().CasesByPlayer(ctx, playerID)
}

// Active returns the case the player is currently playing, if any.
func (o *Orchestrator) Active(ctx context.Context, playerID string) (models.Case, bool, error) {
	return o.store.Read().ActiveCase(ctx, playerID)
}

// fork derives an independent generator for one case so that concurrent creations never share one.
func (o *Orchestrator) fork() *rand.Rand {
	o.randMu.Lock()
	defer o.randMu.Unlock()
	return rand.New(rand.NewPCG(o.rng.Uint64(), o.rng.Uint64())) //nolint:gosec // game randomness.
}
