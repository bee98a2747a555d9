package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/myrjola/gumshoe/internal/models"
	"github.com/myrjola/gumshoe/internal/repositories"
	"github.com/stretchr/testify/require"
)

func TestRoute(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	insertCase(t, store, "marple", "case-1")

	want := models.Route{CaseID: "case-1", Steps: []models.Step{
		{Order: 1, CityID: "paris", Visited: false, Options: []models.Option{
			{CityID: "tokyo", Primary: false},
			{CityID: "berlin", Primary: true},
		}},
		{Order: 2, CityID: "berlin", Visited: false, Options: nil},
	}}
	require.NoError(t, store.WithTx(ctx, func(q *repositories.Queries) error {
		for _, s := range want.Steps {
			if err := q.InsertStep(ctx, "case-1", s); err != nil {
				return err
			}
		}
		return nil
	}))

	q := store.Read()
	exists, err := q.RouteExists(ctx, "case-1")
	require.NoError(t, err)
	require.True(t, exists)

	got, err := q.Route(ctx, "case-1")
	require.NoError(t, err)
	require.Equal(t, want, got)

	err = store.WithTx(ctx, func(q *repositories.Queries) error {
		return q.InsertStep(ctx, "case-1", want.Steps[0])
	})
	require.ErrorIs(t, err, models.ErrRouteExists)

	_, err = q.Route(ctx, "missing")
	require.ErrorIs(t, err, models.ErrRouteNotFound)

	t.Run("visited once", func(t *testing.T) {
		require.NoError(t, store.WithTx(ctx, func(q *repositories.Queries) error {
			return q.MarkStepVisited(ctx, "case-1", 1)
		}))
		err := store.WithTx(ctx, func(q *repositories.Queries) error {
			return q.MarkStepVisited(ctx, "case-1", 1)
		})
		require.ErrorIs(t, err, models.ErrConcurrentUpdate)
	})

	t.Run("view upsert", func(t *testing.T) {
		view, err := store.Read().View(ctx, "case-1", 1)
		require.NoError(t, err)
		require.Empty(t, view)
		for _, city := range []string{"tokyo", "paris"} {
			require.NoError(t, store.WithTx(ctx, func(q *repositories.Queries) error {
				return q.SetView(ctx, "case-1", 1, city)
			}))
		}
		view, err = store.Read().View(ctx, "case-1", 1)
		require.NoError(t, err)
		require.Equal(t, "paris", view)
	})
}

func TestPlacesAndClues(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	insertCase(t, store, "poirot", "case-1")

	places := []models.Place{
		{ID: "p1", CaseID: "case-1", CityID: "cairo", TypeID: "market", Name: "Market",
			Style: models.InteractionStyleTalk, Role: models.ClueRoleNextLocation, Capture: true, Clue: nil},
		{ID: "p2", CaseID: "case-1", CityID: "cairo", TypeID: "museum", Name: "Museum",
			Style: models.InteractionStyleObserve, Role: models.ClueRoleVillain, Capture: false, Clue: nil},
	}
	require.NoError(t, store.WithTx(ctx, func(q *repositories.Queries) error {
		for _, p := range places {
			if err := q.InsertPlace(ctx, p); err != nil {
				return err
			}
		}
		return nil
	}))

	q := store.Read()
	has, err := q.HasPlaces(ctx, "case-1", "cairo")
	require.NoError(t, err)
	require.True(t, has)
	has, err = q.HasPlaces(ctx, "case-1", "rome")
	require.NoError(t, err)
	require.False(t, has)

	got, err := q.PlacesInCity(ctx, "case-1", "cairo")
	require.NoError(t, err)
	require.Equal(t, places, got)

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var first, second models.Clue
	require.NoError(t, store.WithTx(ctx, func(q *repositories.Queries) error {
		first, err = q.InsertClue(ctx, models.Clue{
			PlaceID: "p1", Role: models.ClueRoleNextLocation, Text: "They spoke of cherry blossoms.", CreatedAt: at,
		})
		return err
	}))
	require.NoError(t, store.WithTx(ctx, func(q *repositories.Queries) error {
		second, err = q.InsertClue(ctx, models.Clue{
			PlaceID: "p1", Role: models.ClueRoleWarning, Text: "Something else.", CreatedAt: at.Add(time.Hour),
		})
		return err
	}))
	require.Equal(t, first, second)
	require.Equal(t, "They spoke of cherry blossoms.", second.Text)

	n, err := q.CountClues(ctx, "case-1", "cairo", models.ClueRoleNextLocation)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	place, err := q.Place(ctx, "case-1", "p1")
	require.NoError(t, err)
	require.NotNil(t, place.Clue)
	require.Equal(t, first, *place.Clue)

	_, err = q.Place(ctx, "case-1", "p9")
	require.ErrorIs(t, err, models.ErrPlaceNotFound)
}
