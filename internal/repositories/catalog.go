package repositories

import (
	"context"

	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/models"
	"github.com/myrjola/gumshoe/internal/travel"
)

type cityRow struct {
	ID          string  `db:"id"`
	Name        string  `db:"name"`
	Country     string  `db:"country"`
	Latitude    float64 `db:"latitude"`
	Longitude   float64 `db:"longitude"`
	Description string  `db:"description"`
}

// Cities returns the city catalog ordered by id.
func (q *Queries) Cities(ctx context.Context) ([]models.City, error) {
	var rows []cityRow
	if err := q.db.SelectContext(ctx, &rows,
		`SELECT id, name, country, latitude, longitude, description FROM cities ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "select cities")
	}
	cities := make([]models.City, len(rows))
	for i, r := range rows {
		cities[i] = models.City(r)
	}
	return cities, nil
}

// TravelOverrides returns the manually authored travel durations.
func (q *Queries) TravelOverrides(ctx context.Context) (map[travel.Pair]int, error) {
	var rows []struct {
		From    string `db:"from_city_id"`
		To      string `db:"to_city_id"`
		Minutes int    `db:"minutes"`
	}
	if err := q.db.SelectContext(ctx, &rows,
		`SELECT from_city_id, to_city_id, minutes FROM travel_overrides`); err != nil {
		return nil, errors.Wrap(err, "select travel overrides")
	}
	overrides := make(map[travel.Pair]int, len(rows))
	for _, r := range rows {
		overrides[travel.Pair{From: r.From, To: r.To}] = r.Minutes
	}
	return overrides, nil
}

// PlaceTypes returns the place catalog ordered by id.
func (q *Queries) PlaceTypes(ctx context.Context) ([]models.PlaceType, error) {
	var rows []struct {
		ID    string `db:"id"`
		Name  string `db:"name"`
		Style string `db:"style"`
	}
	if err := q.db.SelectContext(ctx, &rows, `SELECT id, name, style FROM place_types ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "select place types")
	}
	types := make([]models.PlaceType, len(rows))
	for i, r := range rows {
		types[i] = models.PlaceType{ID: r.ID, Name: r.Name, Style: models.InteractionStyle(r.Style)}
	}
	return types, nil
}

// StolenItems returns the descriptors of items a culprit can steal.
func (q *Queries) StolenItems(ctx context.Context) ([]string, error) {
	var items []string
	if err := q.db.SelectContext(ctx, &items, `SELECT name FROM stolen_items ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "select stolen items")
	}
	return items, nil
}
