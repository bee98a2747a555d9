package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/sqlite"
	"github.com/myrjola/gumshoe/internal/testhelpers"
)

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds

	if sqliteURL, ok = os.LookupEnv("GUMSHOE_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "GUMSHOE_SQLITE_URL not set")
		os.Exit(1)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}

	defer func() {
		if err = db.Close(); err != nil {
			logger.LogAttrs(ctx, slog.LevelError, "error closing database", errors.SlogError(err))
		}
	}()

	// The catalog is upserted on every start, an empty one means the migration lost it.
	var cities, cases int
	if err = db.ReadOnly.GetContext(ctx, &cities, `SELECT COUNT(*) FROM cities`); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error fetching city count", errors.SlogError(err))
		os.Exit(1)
	}
	if cities == 0 {
		logger.LogAttrs(ctx, slog.LevelError, "no cities found, something is likely wrong")
		os.Exit(1)
	}
	if err = db.ReadOnly.GetContext(ctx, &cases, `SELECT COUNT(*) FROM cases`); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error fetching case count", errors.SlogError(err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "catalog intact", slog.Int("cities", cities), slog.Int("cases", cases))

	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
	cancel()
}
