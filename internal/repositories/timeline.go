package repositories

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/models"
)

var ErrUnknownTimezone = errors.NewSentinel("unknown timezone")

func (q *Queries) InsertTimeState(ctx context.Context, state models.TimeState) error {
	if _, err := q.db.ExecContext(ctx, `INSERT INTO time_states (case_id, start_at, deadline_at, current_at, timezone)
VALUES (@case_id, @start_at, @deadline_at, @current_at, @timezone)`,
		sql.Named("case_id", state.CaseID),
		sql.Named("start_at", state.Start.Unix()),
		sql.Named("deadline_at", state.Deadline.Unix()),
		sql.Named("current_at", state.Current.Unix()),
		sql.Named("timezone", state.Timezone)); err != nil {
		return errors.Wrap(err, "insert time state", slog.String("case_id", state.CaseID))
	}
	return nil
}

// TimeState returns the clock of the case with every instant in the case's timezone.
func (q *Queries) TimeState(ctx context.Context, caseID string) (models.TimeState, error) {
	var row struct {
		Start    int64  `db:"start_at"`
		Deadline int64  `db:"deadline_at"`
		Current  int64  `db:"current_at"`
		Timezone string `db:"timezone"`
	}
	err := q.db.GetContext(ctx, &row, `SELECT start_at, deadline_at, current_at, timezone
FROM time_states
WHERE case_id = ?`, caseID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TimeState{}, errors.Wrap(models.ErrCaseNotFound, "select time state",
			slog.String("case_id", caseID))
	}
	if err != nil {
		return models.TimeState{}, errors.Wrap(err, "select time state", slog.String("case_id", caseID))
	}
	loc, err := time.LoadLocation(row.Timezone)
	if err != nil {
		return models.TimeState{}, errors.Wrap(ErrUnknownTimezone, "load location",
			slog.String("timezone", row.Timezone))
	}
	return models.TimeState{
		CaseID:   caseID,
		Start:    fromUnix(row.Start, loc),
		Deadline: fromUnix(row.Deadline, loc),
		Current:  fromUnix(row.Current, loc),
		Timezone: row.Timezone,
	}, nil
}

// SetCurrentTime moves the clock of the case forward.
func (q *Queries) SetCurrentTime(ctx context.Context, caseID string, current time.Time) error {
	res, err := q.db.ExecContext(ctx, `UPDATE time_states SET current_at = @current_at WHERE case_id = @case_id`,
		sql.Named("current_at", current.Unix()),
		sql.Named("case_id", caseID))
	if err != nil {
		return errors.Wrap(err, "update current time", slog.String("case_id", caseID))
	}
	return expectOneRow(res, errors.Wrap(models.ErrCaseNotFound, "update current time",
		slog.String("case_id", caseID)))
}

type travelLogRow struct {
	ID        int64  `db:"id"`
	CaseID    string `db:"case_id"`
	StepOrder int    `db:"step_order"`
	FromCity  string `db:"from_city_id"`
	ToCity    string `db:"to_city_id"`
	Success   bool   `db:"success"`
	Reason    string `db:"reason"`
	At        int64  `db:"at"`
}

// InsertTravelLog appends a travel attempt to the audit log.
func (q *Queries) InsertTravelLog(ctx context.Context, entry models.TravelLog) error {
	if _, err := q.db.ExecContext(ctx, `INSERT INTO travel_logs (case_id, step_order, from_city_id, to_city_id, success, reason, at)
VALUES (@case_id, @step_order, @from_city_id, @to_city_id, @success, @reason, @at)`,
		sql.Named("case_id", entry.CaseID),
		sql.Named("step_order", entry.StepOrder),
		sql.Named("from_city_id", entry.FromCity),
		sql.Named("to_city_id", entry.ToCity),
		sql.Named("success", entry.Success),
		sql.Named("reason", entry.Reason),
		sql.Named("at", entry.At.Unix())); err != nil {
		return errors.Wrap(err, "insert travel log", slog.String("case_id", entry.CaseID))
	}
	return nil
}

// TravelLogs returns the travel attempts of the case in insertion order.
func (q *Queries) TravelLogs(ctx context.Context, caseID string) ([]models.TravelLog, error) {
	var rows []travelLogRow
	if err := q.db.SelectContext(ctx, &rows, `SELECT id, case_id, step_order, from_city_id, to_city_id, success, reason, at
FROM travel_logs
WHERE case_id = ?
ORDER BY id`, caseID); err != nil {
		return nil, errors.Wrap(err, "select travel logs", slog.String("case_id", caseID))
	}
	logs := make([]models.TravelLog, len(rows))
	for i, r := range rows {
		logs[i] = models.TravelLog{
			ID:        r.ID,
			CaseID:    r.CaseID,
			StepOrder: r.StepOrder,
			FromCity:  r.FromCity,
			ToCity:    r.ToCity,
			Success:   r.Success,
			Reason:    r.Reason,
			At:        fromUnix(r.At, time.UTC),
		}
	}
	return logs, nil
}

// InsertCapture records the arrest attempt that resolved the case.
func (q *Queries) InsertCapture(ctx context.Context, capture models.Capture) error {
	warrant := sql.NullString{String: capture.WarrantSuspectID, Valid: capture.WarrantSuspectID != ""}
	if _, err := q.db.ExecContext(ctx, `INSERT INTO captures (case_id, place_id, warrant_suspect_id, culprit_id, status, narrative, at)
VALUES (@case_id, @place_id, @warrant_suspect_id, @culprit_id, @status, @narrative, @at)`,
		sql.Named("case_id", capture.CaseID),
		sql.Named("place_id", capture.PlaceID),
		sql.Named("warrant_suspect_id", warrant),
		sql.Named("culprit_id", capture.CulpritID),
		sql.Named("status", string(capture.Status)),
		sql.Named("narrative", capture.Narrative),
		sql.Named("at", capture.At.Unix())); err != nil {
		return errors.Wrap(err, "insert capture", slog.String("case_id", capture.CaseID))
	}
	return nil
}

// Capture returns the arrest attempt of the case, if one happened.
func (q *Queries) Capture(ctx context.Context, caseID string) (models.Capture, bool, error) {
	var row struct {
		CaseID           string         `db:"case_id"`
		PlaceID          string         `db:"place_id"`
		WarrantSuspectID sql.NullString `db:"warrant_suspect_id"`
		CulpritID        string         `db:"culprit_id"`
		Status           string         `db:"status"`
		Narrative        string         `db:"narrative"`
		At               int64          `db:"at"`
	}
	err := q.db.GetContext(ctx, &row, `SELECT case_id, place_id, warrant_suspect_id, culprit_id, status, narrative, at
FROM captures
WHERE case_id = ?`, caseID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Capture{}, false, nil
	}
	if err != nil {
		return models.Capture{}, false, errors.Wrap(err, "select capture", slog.String("case_id", caseID))
	}
	return models.Capture{
		CaseID:           row.CaseID,
		PlaceID:          row.PlaceID,
		WarrantSuspectID: row.WarrantSuspectID.String,
		CulpritID:        row.CulpritID,
		Status:           models.CaseStatus(row.Status),
		Narrative:        row.Narrative,
		At:               fromUnix(row.At, time.UTC),
	}, true, nil
}
