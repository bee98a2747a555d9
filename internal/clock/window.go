// Package clock simulates the in-game time of a case.
//
// The day has a nightly blackout window during which the detective sleeps. Sleeping costs no awake minutes, but the
// clock skips through it whenever an action would run into it. Deadline simulation and live play both advance time
// with [Window.Advance] so that a computed deadline is always reachable by actual play.
package clock

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/myrjola/gumshoe/internal/errors"
)

const minutesPerDay = 24 * 60

var ErrInvalidWindow = errors.NewSentinel("invalid blackout window")

// Window is a daily blackout interval [Start, End) given in minutes after midnight. End may be smaller than Start,
// in which case the window wraps past midnight.
type Window struct {
	Start int
	End   int
}

// NewWindow validates the boundaries of a blackout window.
func NewWindow(start, end int) (Window, error) {
	if start < 0 || start >= minutesPerDay || end < 0 || end >= minutesPerDay || start == end {
		return Window{}, errors.Wrap(ErrInvalidWindow, "window out of range",
			slog.Int("start", start), slog.Int("end", end))
	}
	return Window{Start: start, End: end}, nil
}

// ParseWindow parses boundaries written as "HH:MM".
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseMinuteOfDay(start)
	if err != nil {
		return Window{}, errors.Wrap(err, "parse window start")
	}
	e, err := ParseMinuteOfDay(end)
	if err != nil {
		return Window{}, errors.Wrap(err, "parse window end")
	}
	return NewWindow(s, e)
}

// ParseMinuteOfDay converts "HH:MM" to minutes after midnight.
func ParseMinuteOfDay(hhmm string) (int, error) {
	hours, minutes, ok := strings.Cut(strings.TrimSpace(hhmm), ":")
	if !ok {
		return 0, errors.Wrap(ErrInvalidWindow, "expected HH:MM", slog.String("value", hhmm))
	}
	h, err := strconv.Atoi(hours)
	if err != nil || h < 0 || h > 23 {
		return 0, errors.Wrap(ErrInvalidWindow, "invalid hour", slog.String("value", hhmm))
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || m < 0 || m > 59 {
		return 0, errors.Wrap(ErrInvalidWindow, "invalid minute", slog.String("value", hhmm))
	}
	return h*60 + m, nil
}

func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.Start/60, w.Start%60, w.End/60, w.End%60)
}

// interval returns the blackout interval that contains t, or the first one starting after t.
func (w Window) interval(t time.Time) (start, end time.Time) {
	y, m, d := t.Date()
	loc := t.Location()
	for offset := -1; offset <= 1; offset++ {
		start = time.Date(y, m, d+offset, 0, w.Start, 0, 0, loc)
		endDay := d + offset
		if w.End < w.Start {
			endDay++
		}
		end = time.Date(y, m, endDay, 0, w.End, 0, 0, loc)
		if end.After(t) {
			return start, end
		}
	}
	// Unreachable for valid windows: the interval starting tomorrow always ends after t.
	return start, end
}

// Contains reports whether t falls inside the blackout window.
func (w Window) Contains(t time.Time) bool {
	start, _ := w.interval(t)
	return !t.Before(start)
}

// Wake returns t, or the end of the blackout window if t falls inside it.
func (w Window) Wake(t time.Time) time.Time {
	if w.Contains(t) {
		_, end := w.interval(t)
		return end
	}
	return t
}

// Advance spends minutes of awake time starting at t.
//
// Whenever the remaining minutes would run into the blackout window, the clock jumps to the window's end without
// spending any minutes for the jump and continues from there. The result never lies inside the window: landing
// exactly on the window's start also wakes up at its end.
func (w Window) Advance(t time.Time, minutes int) time.Time {
	t = w.Wake(t)
	remaining := time.Duration(max(minutes, 0)) * time.Minute
	for {
		start, end := w.interval(t)
		awake := start.Sub(t)
		if remaining < awake {
			return t.Add(remaining)
		}
		remaining -= awake
		t = end
	}
}

// AwakeMinutes counts the minutes between from and to that lie outside the blackout window.
func (w Window) AwakeMinutes(from, to time.Time) int {
	var total time.Duration
	t := w.Wake(from)
	for t.Before(to) {
		start, end := w.interval(t)
		if !to.After(start) {
			total += to.Sub(t)
			break
		}
		total += start.Sub(t)
		t = end
	}
	return int(total / time.Minute)
}

// NextAnchor returns the first occurrence of weekday at the window's end strictly after now, in now's location.
func (w Window) NextAnchor(now time.Time, weekday time.Weekday) time.Time {
	y, m, d := now.Date()
	days := (int(weekday) - int(now.Weekday()) + 7) % 7 //nolint:mnd // days in a week.
	anchor := time.Date(y, m, d+days, 0, w.End, 0, 0, now.Location())
	if !anchor.After(now) {
		anchor = time.Date(y, m, d+days+7, 0, w.End, 0, 0, now.Location()) //nolint:mnd // days in a week.
	}
	return anchor
}
