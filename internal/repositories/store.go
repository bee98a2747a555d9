// Package repositories persists cases in SQLite. [Queries] implements the store interfaces of the engine components
// so that one transaction can span every write of a player action.
package repositories

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/sqlite"
)

// DBTX is satisfied by both [sqlx.DB] and [sqlx.Tx].
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type Store struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewStore(dbs *sqlite.Database, logger *slog.Logger) *Store {
	return &Store{
		dbs:    dbs,
		logger: logger.With("source", "Store"),
	}
}

// Read returns queries running against the read-only connection pool.
func (s *Store) Read() *Queries {
	return &Queries{db: s.dbs.ReadOnly}
}

// WithTx runs fn inside a write transaction. The transaction commits when fn returns nil and rolls back otherwise.
//
// The read-write pool opens transactions with BEGIN IMMEDIATE so concurrent writers queue up on the database lock
// instead of failing on upgrade.
func (s *Store) WithTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.dbs.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			rollbackErr = errors.Wrap(rollbackErr, "rollback transaction")
			s.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction", errors.SlogError(rollbackErr))
		}
	}()
	if err = fn(&Queries{db: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

// Queries holds every statement of the package. It runs against whichever [DBTX] it was created with.
type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

var _ DBTX = (*sqlx.DB)(nil)
var _ DBTX = (*sqlx.Tx)(nil)

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func fromUnix(s int64, loc *time.Location) time.Time {
	return time.Unix(s, 0).In(loc)
}
