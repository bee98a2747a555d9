// Package game wires the engine components over one database.
package game

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/myrjola/gumshoe/internal/cases"
	"github.com/myrjola/gumshoe/internal/clock"
	"github.com/myrjola/gumshoe/internal/deadline"
	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/keyedlock"
	"github.com/myrjola/gumshoe/internal/phase"
	"github.com/myrjola/gumshoe/internal/progression"
	"github.com/myrjola/gumshoe/internal/random"
	"github.com/myrjola/gumshoe/internal/repositories"
	"github.com/myrjola/gumshoe/internal/route"
	"github.com/myrjola/gumshoe/internal/rules"
	"github.com/myrjola/gumshoe/internal/sqlite"
	"github.com/myrjola/gumshoe/internal/travel"
)

var ErrNoClueWriter = errors.NewSentinel("clue writer missing")

// Options configure [New]. Zero values fall back to production defaults.
type Options struct {
	SQLiteURL string
	Rules     rules.Rules
	Writer    progression.ClueWriter
	// Rand drives every random choice. A crypto seeded generator is used when nil.
	Rand *rand.Rand
	// Now is the wall clock. It decides the week a new case starts in.
	Now func() time.Time
}

type Game struct {
	DB        *sqlite.Database
	Store     *repositories.Store
	Rules     rules.Rules
	Estimator *travel.Estimator
	Cases     *cases.Orchestrator
	Machine   *progression.Machine
}

// New opens the database, loads the catalog and builds the engine.
func New(ctx context.Context, opts Options, logger *slog.Logger) (*Game, error) {
	if err := opts.Rules.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate rules")
	}
	if opts.Writer == nil {
		return nil, errors.Wrap(ErrNoClueWriter, "configure game")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		rng, err := random.NewRand()
		if err != nil {
			return nil, errors.Wrap(err, "seed random generator")
		}
		opts.Rand = rng
	}

	db, err := sqlite.NewDatabase(ctx, opts.SQLiteURL, logger)
	if err != nil {
		return nil, errors.Wrap(err, "open database", slog.String("url", opts.SQLiteURL))
	}
	g, err := build(ctx, db, opts, logger)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}
	return g, nil
}

func build(ctx context.Context, db *sqlite.Database, opts Options, logger *slog.Logger) (*Game, error) {
	store := repositories.NewStore(db, logger)
	catalog := store.Read()
	cities, err := catalog.Cities(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load cities")
	}
	overrides, err := catalog.TravelOverrides(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load travel overrides")
	}
	placeTypes, err := catalog.PlaceTypes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load place types")
	}
	stolenItems, err := catalog.StolenItems(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load stolen items")
	}

	window, err := opts.Rules.Window()
	if err != nil {
		return nil, err
	}
	estimator := travel.NewEstimator(cities, overrides, opts.Rules.TravelConfig())
	initializer, err := deadline.NewInitializer(opts.Rules, estimator, opts.Now, logger)
	if err != nil {
		return nil, errors.Wrap(err, "create deadline initializer")
	}
	locks := keyedlock.New[string]()

	orchestrator := cases.New(cases.Deps{
		Store:       store,
		Rules:       opts.Rules,
		Generator:   route.NewGenerator(cities, logger),
		Seeder:      phase.NewSeeder(placeTypes, logger),
		Initializer: initializer,
		Locks:       locks,
		StolenItems: stolenItems,
		Rand:        rand.New(rand.NewPCG(opts.Rand.Uint64(), opts.Rand.Uint64())), //nolint:gosec // game randomness.
		Now:         opts.Now,
	}, logger)
	machine := progression.New(progression.Deps{
		Store:     store,
		Clock:     clock.New(window, logger),
		Estimator: estimator,
		Writer:    opts.Writer,
		Resolver:  orchestrator,
		Locks:     locks,
		Cities:    cities,
		Rand:      rand.New(rand.NewPCG(opts.Rand.Uint64(), opts.Rand.Uint64())), //nolint:gosec // game randomness.
	}, progression.Config{
		InvestigationCost: opts.Rules.Investigation.CostMinutes,
		ClueTimeout:       opts.Rules.Investigation.ClueTimeout,
	}, logger)

	return &Game{
		DB:        db,
		Store:     store,
		Rules:     opts.Rules,
		Estimator: estimator,
		Cases:     orchestrator,
		Machine:   machine,
	}, nil
}

func (g *Game) Close() error {
	return g.DB.Close()
}
