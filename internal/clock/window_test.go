package clock_test

import (
	"testing"
	"time"

	"github.com/myrjola/gumshoe/internal/clock"
	"github.com/stretchr/testify/require"
)

// monday is 2024-01-01, a Monday.
func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.January, day, hour, minute, 0, 0, time.UTC)
}

func nightWindow(t *testing.T) clock.Window {
	t.Helper()
	w, err := clock.ParseWindow("23:00", "08:00")
	require.NoError(t, err)
	return w
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       clock.Window
		wantErr    bool
	}{
		{name: "wrapping", start: "23:00", end: "08:00", want: clock.Window{Start: 23 * 60, End: 8 * 60}},
		{name: "same day", start: "01:30", end: "07:15", want: clock.Window{Start: 90, End: 435}},
		{name: "empty", start: "08:00", end: "08:00", wantErr: true},
		{name: "bad hour", start: "25:00", end: "08:00", wantErr: true},
		{name: "bad format", start: "2300", end: "08:00", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := clock.ParseWindow(tt.start, tt.end)
			if tt.wantErr {
				require.ErrorIs(t, err, clock.ErrInvalidWindow)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestWindow_Contains(t *testing.T) {
	w := nightWindow(t)
	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{name: "morning", t: at(1, 8, 0), want: false},
		{name: "just before sleep", t: at(1, 22, 59), want: false},
		{name: "sleep start", t: at(1, 23, 0), want: true},
		{name: "after midnight", t: at(2, 3, 0), want: true},
		{name: "just before wake", t: at(2, 7, 59), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, w.Contains(tt.t))
		})
	}
}

func TestWindow_Advance(t *testing.T) {
	w := nightWindow(t)
	tests := []struct {
		name    string
		from    time.Time
		minutes int
		want    time.Time
	}{
		{name: "zero", from: at(1, 10, 0), minutes: 0, want: at(1, 10, 0)},
		{name: "same day", from: at(1, 8, 0), minutes: 90, want: at(1, 9, 30)},
		{name: "ends right before sleep", from: at(1, 22, 0), minutes: 59, want: at(1, 22, 59)},
		{name: "lands on sleep start", from: at(1, 22, 0), minutes: 60, want: at(2, 8, 0)},
		{name: "spans the night", from: at(1, 22, 0), minutes: 90, want: at(2, 8, 30)},
		{name: "starts asleep", from: at(2, 2, 0), minutes: 30, want: at(2, 8, 30)},
		{name: "spans two nights", from: at(1, 8, 0), minutes: 2*15*60 + 10, want: at(3, 8, 10)},
		{name: "negative is ignored", from: at(1, 12, 0), minutes: -5, want: at(1, 12, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.Advance(tt.from, tt.minutes)
			require.Equal(t, tt.want, got)
			require.False(t, w.Contains(got), "advance must never end asleep")
		})
	}
}

func TestWindow_AdvanceSplitsConsistently(t *testing.T) {
	w := nightWindow(t)
	starts := []time.Time{at(1, 8, 0), at(1, 21, 17), at(1, 22, 59), at(2, 4, 0)}
	for _, start := range starts {
		for total := 0; total <= 40*60; total += 37 {
			whole := w.Advance(start, total)
			for _, first := range []int{0, 1, total / 3, total / 2, total} {
				split := w.Advance(w.Advance(start, first), total-first)
				require.Equal(t, whole, split, "start=%s total=%d first=%d", start, total, first)
			}
			require.Equal(t, total, w.AwakeMinutes(start, whole), "start=%s total=%d", start, total)
		}
	}
}

func TestWindow_NoWrap(t *testing.T) {
	w, err := clock.ParseWindow("01:00", "07:00")
	require.NoError(t, err)
	require.Equal(t, at(2, 7, 30), w.Advance(at(1, 23, 0), 150))
	require.True(t, w.Contains(at(2, 1, 0)))
	require.False(t, w.Contains(at(2, 0, 59)))
}

func TestWindow_NextAnchor(t *testing.T) {
	w := nightWindow(t)
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{name: "monday before wake", now: at(1, 7, 0), want: at(1, 8, 0)},
		{name: "monday at wake", now: at(1, 8, 0), want: at(8, 8, 0)},
		{name: "wednesday", now: at(3, 12, 0), want: at(8, 8, 0)},
		{name: "sunday night", now: at(7, 23, 30), want: at(8, 8, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, w.NextAnchor(tt.now, time.Monday))
		})
	}
}
