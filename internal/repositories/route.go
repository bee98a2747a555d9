package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/models"
)

func (q *Queries) RouteExists(ctx context.Context, caseID string) (bool, error) {
	var exists bool
	if err := q.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM steps WHERE case_id = ?)`, caseID); err != nil {
		return false, errors.Wrap(err, "select route exists", slog.String("case_id", caseID))
	}
	return exists, nil
}

// InsertStep stores a step together with its travel options.
func (q *Queries) InsertStep(ctx context.Context, caseID string, step models.Step) error {
	if _, err := q.db.ExecContext(ctx, `INSERT INTO steps (case_id, step_order, city_id, visited)
VALUES (@case_id, @step_order, @city_id, @visited)`,
		sql.Named("case_id", caseID),
		sql.Named("step_order", step.Order),
		sql.Named("city_id", step.CityID),
		sql.Named("visited", step.Visited)); err != nil {
		if isUniqueViolation(err) {
			return errors.Wrap(models.ErrRouteExists, "insert step", slog.Int("step_order", step.Order))
		}
		return errors.Wrap(err, "insert step", slog.Int("step_order", step.Order))
	}
	for i, o := range step.Options {
		if _, err := q.db.ExecContext(ctx, `INSERT INTO step_options (case_id, step_order, city_id, is_primary, position)
VALUES (@case_id, @step_order, @city_id, @is_primary, @position)`,
			sql.Named("case_id", caseID),
			sql.Named("step_order", step.Order),
			sql.Named("city_id", o.CityID),
			sql.Named("is_primary", o.Primary),
			sql.Named("position", i)); err != nil {
			return errors.Wrap(err, "insert step option",
				slog.Int("step_order", step.Order), slog.String("city_id", o.CityID))
		}
	}
	return nil
}

// Route returns the steps of the case in order.
func (q *Queries) Route(ctx context.Context, caseID string) (models.Route, error) {
	var steps []struct {
		Order   int    `db:"step_order"`
		CityID  string `db:"city_id"`
		Visited bool   `db:"visited"`
	}
	if err := q.db.SelectContext(ctx, &steps,
		`SELECT step_order, city_id, visited FROM steps WHERE case_id = ? ORDER BY step_order`, caseID); err != nil {
		return models.Route{}, errors.Wrap(err, "select steps", slog.String("case_id", caseID))
	}
	if len(steps) == 0 {
		return models.Route{}, errors.Wrap(models.ErrRouteNotFound, "select steps", slog.String("case_id", caseID))
	}
	var options []struct {
		Order   int    `db:"step_order"`
		CityID  string `db:"city_id"`
		Primary bool   `db:"is_primary"`
	}
	if err := q.db.SelectContext(ctx, &options, `SELECT step_order, city_id, is_primary
FROM step_options
WHERE case_id = ?
ORDER BY step_order, position`, caseID); err != nil {
		return models.Route{}, errors.Wrap(err, "select step options", slog.String("case_id", caseID))
	}

	route := models.Route{CaseID: caseID, Steps: make([]models.Step, len(steps))}
	for i, s := range steps {
		route.Steps[i] = models.Step{Order: s.Order, CityID: s.CityID, Visited: s.Visited, Options: nil}
	}
	for _, o := range options {
		if o.Order < 1 || o.Order > len(route.Steps) {
			continue
		}
		step := &route.Steps[o.Order-1]
		step.Options = append(step.Options, models.Option{CityID: o.CityID, Primary: o.Primary})
	}
	return route, nil
}

// MarkStepVisited flags the step as reached through its primary option.
func (q *Queries) MarkStepVisited(ctx context.Context, caseID string, order int) error {
	res, err := q.db.ExecContext(ctx, `UPDATE steps SET visited = 1
WHERE case_id = @case_id AND step_order = @step_order AND visited = 0`,
		sql.Named("case_id", caseID),
		sql.Named("step_order", order))
	if err != nil {
		return errors.Wrap(err, "mark step visited", slog.Int("step_order", order))
	}
	return expectOneRow(res, errors.Wrap(models.ErrConcurrentUpdate, "mark step visited", slog.Int("step_order", order)))
}

// View returns the city the player looks at on the given step. It is empty when no override exists.
func (q *Queries) View(ctx context.Context, caseID string, order int) (string, error) {
	var cityID string
	err := q.db.GetContext(ctx, &cityID,
		`SELECT city_id FROM current_views WHERE case_id = ? AND step_order = ?`, caseID, order)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "select view", slog.Int("step_order", order))
	}
	return cityID, nil
}

// SetView points the player at cityID on the given step.
func (q *Queries) SetView(ctx context.Context, caseID string, order int, cityID string) error {
	if _, err := q.db.ExecContext(ctx, `INSERT INTO current_views (case_id, step_order, city_id)
VALUES (@case_id, @step_order, @city_id)
ON CONFLICT (case_id, step_order) DO UPDATE SET city_id = excluded.city_id`,
		sql.Named("case_id", caseID),
		sql.Named("step_order", order),
		sql.Named("city_id", cityID)); err != nil {
		return errors.Wrap(err, "upsert view", slog.Int("step_order", order), slog.String("city_id", cityID))
	}
	return nil
}
