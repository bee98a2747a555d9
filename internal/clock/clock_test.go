package clock_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/myrjola/gumshoe/internal/clock"
	"github.com/myrjola/gumshoe/internal/models"
	"github.com/myrjola/gumshoe/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	state  models.TimeState
	writes int
}

func (s *memoryStore) TimeState(_ context.Context, _ string) (models.TimeState, error) {
	return s.state, nil
}

func (s *memoryStore) SetCurrentTime(_ context.Context, _ string, current time.Time) error {
	s.state.Current = current
	s.writes++
	return nil
}

func TestClock_Consume(t *testing.T) {
	tests := []struct {
		name        string
		current     time.Time
		deadline    time.Time
		minutes     int
		wantCurrent time.Time
		wantFailed  bool
		// wantRemaining is the awake minutes left after consuming.
		wantRemaining int
	}{
		{
			name:          "within deadline",
			current:       at(1, 8, 0),
			deadline:      at(1, 12, 0),
			minutes:       30,
			wantCurrent:   at(1, 8, 30),
			wantFailed:    false,
			wantRemaining: 210,
		},
		{
			name:        "exactly on deadline",
			current:     at(1, 8, 0),
			deadline:    at(1, 12, 0),
			minutes:     240,
			wantCurrent: at(1, 12, 0),
			wantFailed:  false,
		},
		{
			name:        "past deadline is persisted",
			current:     at(1, 11, 0),
			deadline:    at(1, 12, 0),
			minutes:     90,
			wantCurrent: at(1, 12, 30),
			wantFailed:  true,
		},
		{
			name:          "night does not count as remaining time",
			current:       at(1, 22, 0),
			deadline:      at(2, 9, 0),
			minutes:       30,
			wantCurrent:   at(1, 22, 30),
			wantFailed:    false,
			wantRemaining: 30 + 60,
		},
		{
			name:        "sleeping pushes past deadline",
			current:     at(1, 22, 30),
			deadline:    at(1, 23, 30),
			minutes:     45,
			wantCurrent: at(2, 8, 15),
			wantFailed:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{state: models.TimeState{
				CaseID:   "case",
				Start:    at(1, 8, 0),
				Deadline: tt.deadline,
				Current:  tt.current,
				Timezone: "UTC",
			}}
			c := clock.New(nightWindow(t), testhelpers.NewLogger(io.Discard))

			result, err := c.Consume(context.Background(), store, "case", tt.minutes)
			require.NoError(t, err)
			require.Equal(t, tt.wantCurrent, result.Current)
			require.Equal(t, tt.wantFailed, result.Failed)
			require.Equal(t, tt.wantRemaining, result.Remaining)
			require.Equal(t, tt.wantCurrent, store.state.Current)
			require.Equal(t, 1, store.writes)
		})
	}
}

func TestClock_PreviewDoesNotPersist(t *testing.T) {
	c := clock.New(nightWindow(t), testhelpers.NewLogger(io.Discard))
	state := models.TimeState{Current: at(1, 9, 0), Deadline: at(1, 10, 0), Timezone: "UTC"}
	result := c.Preview(state, 30)
	require.Equal(t, at(1, 9, 30), result.Current)
	require.Equal(t, 30, result.Remaining)
	require.Equal(t, at(1, 9, 0), state.Current)
}

func TestClock_PreviewSleepsInCaseTimezone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	c := clock.New(nightWindow(t), testhelpers.NewLogger(io.Discard))
	state := models.TimeState{
		Current:  time.Date(2024, 1, 1, 22, 30, 0, 0, tokyo),
		Deadline: time.Date(2024, 1, 3, 12, 0, 0, 0, tokyo),
		Timezone: "Asia/Tokyo",
	}

	result := c.Preview(state, 45)
	require.True(t, time.Date(2024, 1, 2, 8, 15, 0, 0, tokyo).Equal(result.Current), "got %s", result.Current)
}
