package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/models"
)

type suspectRow struct {
	ID      string `db:"id"`
	CaseID  string `db:"case_id"`
	Name    string `db:"name"`
	Culprit bool   `db:"is_culprit"`
	Sex     string `db:"sex"`
	Hair    string `db:"hair"`
	Hobby   string `db:"hobby"`
	Feature string `db:"feature"`
	Vehicle string `db:"vehicle"`
}

func (r suspectRow) model() models.Suspect {
	return models.Suspect{
		ID:      r.ID,
		CaseID:  r.CaseID,
		Name:    r.Name,
		Culprit: r.Culprit,
		Attributes: models.Attributes{
			Sex:     r.Sex,
			Hair:    r.Hair,
			Hobby:   r.Hobby,
			Feature: r.Feature,
			Vehicle: r.Vehicle,
		},
	}
}

const selectSuspect = `SELECT id, case_id, name, is_culprit, sex, hair, hobby, feature, vehicle FROM suspects`

func (q *Queries) InsertSuspect(ctx context.Context, s models.Suspect) error {
	if _, err := q.db.ExecContext(ctx, `INSERT INTO suspects (id, case_id, name, is_culprit, sex, hair, hobby, feature, vehicle)
VALUES (@id, @case_id, @name, @is_culprit, @sex, @hair, @hobby, @feature, @vehicle)`,
		sql.Named("id", s.ID),
		sql.Named("case_id", s.CaseID),
		sql.Named("name", s.Name),
		sql.Named("is_culprit", s.Culprit),
		sql.Named("sex", s.Attributes.Sex),
		sql.Named("hair", s.Attributes.Hair),
		sql.Named("hobby", s.Attributes.Hobby),
		sql.Named("feature", s.Attributes.Feature),
		sql.Named("vehicle", s.Attributes.Vehicle)); err != nil {
		return errors.Wrap(err, "insert suspect", slog.String("suspect_id", s.ID))
	}
	return nil
}

// Suspects returns the pool of the case ordered by name.
func (q *Queries) Suspects(ctx context.Context, caseID string) ([]models.Suspect, error) {
	var rows []suspectRow
	if err := q.db.SelectContext(ctx, &rows, selectSuspect+` WHERE case_id = ? ORDER BY name`, caseID); err != nil {
		return nil, errors.Wrap(err, "select suspects", slog.String("case_id", caseID))
	}
	suspects := make([]models.Suspect, len(rows))
	for i, r := range rows {
		suspects[i] = r.model()
	}
	return suspects, nil
}

func (q *Queries) Suspect(ctx context.Context, caseID, suspectID string) (models.Suspect, error) {
	var row suspectRow
	err := q.db.GetContext(ctx, &row, selectSuspect+` WHERE case_id = ? AND id = ?`, caseID, suspectID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Suspect{}, errors.Wrap(models.ErrSuspectNotFound, "select suspect",
			slog.String("suspect_id", suspectID))
	}
	if err != nil {
		return models.Suspect{}, errors.Wrap(err, "select suspect", slog.String("suspect_id", suspectID))
	}
	return row.model(), nil
}

// Culprit returns the true culprit of the case.
func (q *Queries) Culprit(ctx context.Context, caseID string) (models.Suspect, error) {
	var row suspectRow
	err := q.db.GetContext(ctx, &row, selectSuspect+` WHERE case_id = ? AND is_culprit = 1`, caseID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Suspect{}, errors.Wrap(models.ErrSuspectNotFound, "select culprit", slog.String("case_id", caseID))
	}
	if err != nil {
		return models.Suspect{}, errors.Wrap(err, "select culprit", slog.String("case_id", caseID))
	}
	return row.model(), nil
}
