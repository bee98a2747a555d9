package repositories

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/models"
)

type playerRow struct {
	ID     string `db:"id"`
	Rank   int    `db:"rank"`
	Solved int    `db:"cases_solved"`
	Failed int    `db:"cases_failed"`
}

// EnsurePlayer returns the player, registering it with rank 1 on first sight.
func (q *Queries) EnsurePlayer(ctx context.Context, playerID string) (models.Player, error) {
	if _, err := q.db.ExecContext(ctx, `INSERT INTO players (id) VALUES (?) ON CONFLICT (id) DO NOTHING`,
		playerID); err != nil {
		return models.Player{}, errors.Wrap(err, "insert player", slog.String("player_id", playerID))
	}
	return q.Player(ctx, playerID)
}

func (q *Queries) Player(ctx context.Context, playerID string) (models.Player, error) {
	var row playerRow
	err := q.db.GetContext(ctx, &row,
		`SELECT id, rank, cases_solved, cases_failed FROM players WHERE id = ?`, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Player{}, errors.Wrap(models.ErrNotFound, "player not found", slog.String("player_id", playerID))
	}
	if err != nil {
		return models.Player{}, errors.Wrap(err, "select player", slog.String("player_id", playerID))
	}
	return models.Player(row), nil
}

// SettlePlayer records the outcome of a resolved case. Every solvesPerRank solved cases promote the player one rank.
func (q *Queries) SettlePlayer(ctx context.Context, playerID string, status models.CaseStatus, solvesPerRank int) error {
	var (
		res sql.Result
		err error
	)
	if status == models.CaseStatusSolved {
		res, err = q.db.ExecContext(ctx, `UPDATE players
SET cases_solved = cases_solved + 1,
    rank         = CASE WHEN (cases_solved + 1) % @solves_per_rank = 0 THEN rank + 1 ELSE rank END
WHERE id = @player_id`,
			sql.Named("player_id", playerID),
			sql.Named("solves_per_rank", max(solvesPerRank, 1)))
	} else {
		res, err = q.db.ExecContext(ctx, `UPDATE players SET cases_failed = cases_failed + 1 WHERE id = @player_id`,
			sql.Named("player_id", playerID))
	}
	if err != nil {
		return errors.Wrap(err, "update player", slog.String("player_id", playerID))
	}
	return expectOneRow(res, errors.Wrap(models.ErrNotFound, "player not found", slog.String("player_id", playerID)))
}

type caseRow struct {
	ID               string         `db:"id"`
	PlayerID         string         `db:"player_id"`
	Status           string         `db:"status"`
	Difficulty       string         `db:"difficulty"`
	StolenItem       string         `db:"stolen_item"`
	WarrantSuspectID sql.NullString `db:"warrant_suspect_id"`
	Reason           string         `db:"reason"`
	CreatedAt        int64          `db:"created_at"`
	ResolvedAt       sql.NullInt64  `db:"resolved_at"`
}

func (r caseRow) model() models.Case {
	c := models.Case{
		ID:               r.ID,
		PlayerID:         r.PlayerID,
		Status:           models.CaseStatus(r.Status),
		Difficulty:       models.Difficulty(r.Difficulty),
		StolenItem:       r.StolenItem,
		WarrantSuspectID: r.WarrantSuspectID.String,
		Reason:           r.Reason,
		CreatedAt:        fromUnix(r.CreatedAt, time.UTC),
		ResolvedAt:       time.Time{},
	}
	if r.ResolvedAt.Valid {
		c.ResolvedAt = fromUnix(r.ResolvedAt.Int64, time.UTC)
	}
	return c
}

const selectCase = `SELECT id, player_id, status, difficulty, stolen_item, warrant_suspect_id, reason, created_at, resolved_at
FROM cases`

// InsertCase stores a new active case. A player can only have one active case.
func (q *Queries) InsertCase(ctx context.Context, c models.Case) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO cases (id, player_id, status, difficulty, stolen_item, created_at)
VALUES (@id, @player_id, @status, @difficulty, @stolen_item, @created_at)`,
		sql.Named("id", c.ID),
		sql.Named("player_id", c.PlayerID),
		sql.Named("status", string(models.CaseStatusActive)),
		sql.Named("difficulty", string(c.Difficulty)),
		sql.Named("stolen_item", c.StolenItem),
		sql.Named("created_at", c.CreatedAt.Unix()))
	if isUniqueViolation(err) {
		return errors.Wrap(models.ErrActiveCaseExists, "insert case", slog.String("player_id", c.PlayerID))
	}
	if err != nil {
		return errors.Wrap(err, "insert case", slog.String("case_id", c.ID))
	}
	return nil
}

func (q *Queries) Case(ctx context.Context, caseID string) (models.Case, error) {
	var row caseRow
	err := q.db.GetContext(ctx, &row, selectCase+` WHERE id = ?`, caseID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Case{}, errors.Wrap(models.ErrCaseNotFound, "select case", slog.String("case_id", caseID))
	}
	if err != nil {
		return models.Case{}, errors.Wrap(err, "select case", slog.String("case_id", caseID))
	}
	return row.model(), nil
}

// ActiveCase returns the active case of the player, if any.
func (q *Queries) ActiveCase(ctx context.Context, playerID string) (models.Case, bool, error) {
	var row caseRow
	err := q.db.GetContext(ctx, &row, selectCase+` WHERE player_id = ? AND status = 'active'`, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Case{}, false, nil
	}
	if err != nil {
		return models.Case{}, false, errors.Wrap(err, "select active case", slog.String("player_id", playerID))
	}
	return row.model(), true, nil
}

// CasesByPlayer returns the cases of the player, newest first.
func (q *Queries) CasesByPlayer(ctx context.Context, playerID string) ([]models.Case, error) {
	var rows []caseRow
	if err := q.db.SelectContext(ctx, &rows, selectCase+` WHERE player_id = ? ORDER BY created_at DESC, id`,
		playerID); err != nil {
		return nil, errors.Wrap(err, "select cases", slog.String("player_id", playerID))
	}
	cases := make([]models.Case, len(rows))
	for i, r := range rows {
		cases[i] = r.model()
	}
	return cases, nil
}

// SetWarrant binds the suspect to an active case that has no warrant yet.
func (q *Queries) SetWarrant(ctx context.Context, caseID, suspectID string) error {
	res, err := q.db.ExecContext(ctx, `UPDATE cases
SET warrant_suspect_id = @suspect_id
WHERE id = @case_id AND status = 'active' AND warrant_suspect_id IS NULL`,
		sql.Named("suspect_id", suspectID),
		sql.Named("case_id", caseID))
	if err != nil {
		return errors.Wrap(err, "update warrant", slog.String("case_id", caseID))
	}
	return expectOneRow(res, errors.Wrap(models.ErrConcurrentUpdate, "update warrant", slog.String("case_id", caseID)))
}

// ResolveCase moves an active case to a terminal status.
func (q *Queries) ResolveCase(
	ctx context.Context,
	caseID string,
	status models.CaseStatus,
	reason string,
	at time.Time,
) error {
	res, err := q.db.ExecContext(ctx, `UPDATE cases
SET status = @status, reason = @reason, resolved_at = @resolved_at
WHERE id = @case_id AND status = 'active'`,
		sql.Named("status", string(status)),
		sql.Named("reason", reason),
		sql.Named("resolved_at", at.Unix()),
		sql.Named("case_id", caseID))
	if err != nil {
		return errors.Wrap(err, "resolve case", slog.String("case_id", caseID))
	}
	return expectOneRow(res, errors.Wrap(models.ErrCaseNotActive, "resolve case", slog.String("case_id", caseID)))
}

func expectOneRow(res sql.Result, notAffected error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return notAffected
	}
	return nil
}
