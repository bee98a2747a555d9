package repositories_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/myrjola/gumshoe/internal/models"
	"github.com/myrjola/gumshoe/internal/repositories"
	"github.com/myrjola/gumshoe/internal/sqlite"
	"github.com/myrjola/gumshoe/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a store over a fresh in-memory database with the catalog fixtures loaded.
func newTestStore(t *testing.T) *repositories.Store {
	t.Helper()
	logger := testhelpers.NewLogger(io.Discard)
	dbs, err := sqlite.NewDatabase(context.Background(), ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, dbs.Close())
	})
	return repositories.NewStore(dbs, logger)
}

// insertCase registers a player with an active case.
func insertCase(t *testing.T, store *repositories.Store, playerID, caseID string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.WithTx(ctx, func(q *repositories.Queries) error {
		if _, err := q.EnsurePlayer(ctx, playerID); err != nil {
			return err
		}
		return q.InsertCase(ctx, models.Case{ //nolint:exhaustruct // defaults of a new case.
			ID:         caseID,
			PlayerID:   playerID,
			Difficulty: models.DifficultyStrict,
			StolenItem: "the Mona Lisa",
			CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	}))
}
