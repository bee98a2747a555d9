package repositories

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/models"
)

type placeRow struct {
	ID            string         `db:"id"`
	CaseID        string         `db:"case_id"`
	CityID        string         `db:"city_id"`
	TypeID        string         `db:"type_id"`
	Name          string         `db:"name"`
	Style         string         `db:"style"`
	Role          string         `db:"role"`
	Capture       bool           `db:"is_capture"`
	ClueRole      sql.NullString `db:"clue_role"`
	ClueText      sql.NullString `db:"clue_text"`
	ClueCreatedAt sql.NullInt64  `db:"clue_created_at"`
}

func (r placeRow) model() models.Place {
	p := models.Place{
		ID:      r.ID,
		CaseID:  r.CaseID,
		CityID:  r.CityID,
		TypeID:  r.TypeID,
		Name:    r.Name,
		Style:   models.InteractionStyle(r.Style),
		Role:    models.ClueRole(r.Role),
		Capture: r.Capture,
		Clue:    nil,
	}
	if r.ClueText.Valid {
		p.Clue = &models.Clue{
			PlaceID:   r.ID,
			Role:      models.ClueRole(r.ClueRole.String),
			Text:      r.ClueText.String,
			CreatedAt: fromUnix(r.ClueCreatedAt.Int64, time.UTC),
		}
	}
	return p
}

const selectPlace = `SELECT p.id, p.case_id, p.city_id, p.type_id, p.name, p.style, p.role, p.is_capture,
       c.role AS clue_role, c.text AS clue_text, c.created_at AS clue_created_at
FROM places p
LEFT JOIN clues c ON c.place_id = p.id`

func (q *Queries) HasPlaces(ctx context.Context, caseID, cityID string) (bool, error) {
	var exists bool
	if err := q.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM places WHERE case_id = ? AND city_id = ?)`, caseID, cityID); err != nil {
		return false, errors.Wrap(err, "select places exist", slog.String("city_id", cityID))
	}
	return exists, nil
}

// InsertPlace appends a place to its city. Places of a city keep their insertion order.
func (q *Queries) InsertPlace(ctx context.Context, place models.Place) error {
	if _, err := q.db.ExecContext(ctx, `INSERT INTO places (id, case_id, city_id, type_id, name, style, role, is_capture, position)
VALUES (@id, @case_id, @city_id, @type_id, @name, @style, @role, @is_capture,
        (SELECT COUNT(*) FROM places WHERE case_id = @case_id AND city_id = @city_id))`,
		sql.Named("id", place.ID),
		sql.Named("case_id", place.CaseID),
		sql.Named("city_id", place.CityID),
		sql.Named("type_id", place.TypeID),
		sql.Named("name", place.Name),
		sql.Named("style", string(place.Style)),
		sql.Named("role", string(place.Role)),
		sql.Named("is_capture", place.Capture)); err != nil {
		return errors.Wrap(err, "insert place", slog.String("place_id", place.ID))
	}
	return nil
}

// PlacesInCity returns the places of a city with their cached clues.
func (q *Queries) PlacesInCity(ctx context.Context, caseID, cityID string) ([]models.Place, error) {
	var rows []placeRow
	if err := q.db.SelectContext(ctx, &rows, selectPlace+`
WHERE p.case_id = ? AND p.city_id = ?
ORDER BY p.position`, caseID, cityID); err != nil {
		return nil, errors.Wrap(err, "select places", slog.String("city_id", cityID))
	}
	places := make([]models.Place, len(rows))
	for i, r := range rows {
		places[i] = r.model()
	}
	return places, nil
}

// Place returns a place of the case with its cached clue.
func (q *Queries) Place(ctx context.Context, caseID, placeID string) (models.Place, error) {
	var row placeRow
	err := q.db.GetContext(ctx, &row, selectPlace+` WHERE p.case_id = ? AND p.id = ?`, caseID, placeID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Place{}, errors.Wrap(models.ErrPlaceNotFound, "select place", slog.String("place_id", placeID))
	}
	if err != nil {
		return models.Place{}, errors.Wrap(err, "select place", slog.String("place_id", placeID))
	}
	return row.model(), nil
}

// CountClues counts the clues of the given role generated in a city.
func (q *Queries) CountClues(ctx context.Context, caseID, cityID string, role models.ClueRole) (int, error) {
	var n int
	if err := q.db.GetContext(ctx, &n, `SELECT COUNT(*)
FROM clues c
JOIN places p ON p.id = c.place_id
WHERE p.case_id = ? AND p.city_id = ? AND c.role = ?`, caseID, cityID, string(role)); err != nil {
		return 0, errors.Wrap(err, "count clues", slog.String("city_id", cityID))
	}
	return n, nil
}

// InsertClue caches the clue of a place and returns the stored clue. When a clue already exists it is kept and
// returned instead.
func (q *Queries) InsertClue(ctx context.Context, clue models.Clue) (models.Clue, error) {
	if _, err := q.db.ExecContext(ctx, `INSERT INTO clues (place_id, role, text, created_at)
VALUES (@place_id, @role, @text, @created_at)
ON CONFLICT (place_id) DO NOTHING`,
		sql.Named("place_id", clue.PlaceID),
		sql.Named("role", string(clue.Role)),
		sql.Named("text", clue.Text),
		sql.Named("created_at", clue.CreatedAt.Unix())); err != nil {
		return models.Clue{}, errors.Wrap(err, "insert clue", slog.String("place_id", clue.PlaceID))
	}
	var row struct {
		Role      string `db:"role"`
		Text      string `db:"text"`
		CreatedAt int64  `db:"created_at"`
	}
	if err := q.db.GetContext(ctx, &row,
		`SELECT role, text, created_at FROM clues WHERE place_id = ?`, clue.PlaceID); err != nil {
		return models.Clue{}, errors.Wrap(err, "select clue", slog.String("place_id", clue.PlaceID))
	}
	return models.Clue{
		PlaceID:   clue.PlaceID,
		Role:      models.ClueRole(row.Role),
		Text:      row.Text,
		CreatedAt: fromUnix(row.CreatedAt, time.UTC),
	}, nil
}
