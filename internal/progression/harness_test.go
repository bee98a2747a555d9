package progression_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/myrjola/gumshoe/internal/ai"
	"github.com/myrjola/gumshoe/internal/cases"
	"github.com/myrjola/gumshoe/internal/game"
	"github.com/myrjola/gumshoe/internal/models"
	"github.com/myrjola/gumshoe/internal/random"
	"github.com/myrjola/gumshoe/internal/repositories"
	"github.com/myrjola/gumshoe/internal/rules"
	"github.com/myrjola/gumshoe/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

// fakeWriter numbers every clue it writes so that regenerated text is easy to spot.
type fakeWriter struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (w *fakeWriter) WriteClue(_ context.Context, p ai.Prompt) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.err != nil {
		return "", w.err
	}
	return fmt.Sprintf("#%d %s", w.calls, ai.Fallback(p)), nil
}

func (w *fakeWriter) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

type harness struct {
	game   *game.Game
	writer *fakeWriter
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	writer := &fakeWriter{mu: sync.Mutex{}, calls: 0, err: nil}
	r := rules.Default()
	r.Investigation.ClueTimeout = time.Second
	// Generous slack so that decoy detours across continents never run out the clock.
	lenient := r.Difficulties[string(models.DifficultyLenient)]
	lenient.MistakePenaltyMinutes = 3000
	r.Difficulties[string(models.DifficultyLenient)] = lenient
	g, err := game.New(context.Background(), game.Options{
		SQLiteURL: ":memory:",
		Rules:     r,
		Writer:    writer,
		Rand:      random.Seeded(7),
		Now:       func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	}, testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, g.Close()) })
	return &harness{game: g, writer: writer}
}

func (h *harness) create(t *testing.T, playerID string, difficulty models.Difficulty) cases.Created {
	t.Helper()
	created, err := h.game.Cases.Create(context.Background(), playerID, difficulty)
	require.NoError(t, err)
	return created
}

// place returns the first place of the city with the stored role.
func place(t *testing.T, created cases.Created, cityID string, role models.ClueRole) models.Place {
	t.Helper()
	for _, p := range created.Places {
		if p.CityID == cityID && p.Role == role && !p.Capture {
			return p
		}
	}
	require.FailNow(t, "no place found", "city %s role %s", cityID, role)
	return models.Place{}
}

func capturePlace(t *testing.T, created cases.Created) models.Place {
	t.Helper()
	for _, p := range created.Places {
		if p.Capture {
			return p
		}
	}
	require.FailNow(t, "no capture place")
	return models.Place{}
}

// advanceTo follows the primary route until the player stands on the given step.
func (h *harness) advanceTo(t *testing.T, created cases.Created, order int) {
	t.Helper()
	ctx := context.Background()
	for _, step := range created.Route.Steps[:order-1] {
		lead := place(t, created, step.CityID, models.ClueRoleNextLocation)
		_, err := h.game.Machine.Investigate(ctx, created.Case.ID, lead.ID)
		require.NoError(t, err)
		primary, ok := step.PrimaryOption()
		require.True(t, ok)
		outcome, err := h.game.Machine.Travel(ctx, created.Case.ID, primary.CityID)
		require.NoError(t, err)
		require.True(t, outcome.Advanced)
		require.Nil(t, outcome.GameOver)
	}
}

func (h *harness) timeState(t *testing.T, caseID string) models.TimeState {
	t.Helper()
	state, err := h.game.Store.Read().TimeState(context.Background(), caseID)
	require.NoError(t, err)
	return state
}

func (h *harness) setCurrentTime(t *testing.T, caseID string, at time.Time) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.game.Store.WithTx(ctx, func(q *repositories.Queries) error {
		return q.SetCurrentTime(ctx, caseID, at)
	}))
}
