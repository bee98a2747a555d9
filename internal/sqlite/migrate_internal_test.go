package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/myrjola/gumshoe/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestDatabase_migrate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name              string
		schemaDefinitions []string
		testQueries       []string
		wantErr           bool
	}{
		{
			name:              "empty schema",
			schemaDefinitions: []string{""},
			testQueries:       []string{"SELECT * FROM sqlite_schema"},
			wantErr:           false,
		},
		{
			name:              "create table",
			schemaDefinitions: []string{"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT)"},
			testQueries: []string{
				"INSERT INTO test (name) VALUES ('test')",
				"SELECT * FROM test",
			},
			wantErr: false,
		},
		{
			name: "drop table",
			schemaDefinitions: []string{
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT)",
				"", // drop table
			},
			testQueries: []string{"INSERT INTO test (name) VALUES ('test')"},
			wantErr:     true,
		},
		{
			name: "add column",
			schemaDefinitions: []string{
				"CREATE TABLE test (id INTEGER PRIMARY KEY)",
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT)",
			},
			testQueries: []string{"INSERT INTO test (name) VALUES ('test')"},
			wantErr:     false,
		},
		{
			name: "remove column",
			schemaDefinitions: []string{
				"CREATE TABLE test (id INTEGER PRIMARY KEY)",
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT)",
				"CREATE TABLE test (id INTEGER PRIMARY KEY)",
			},
			testQueries: []string{"INSERT INTO test (name) VALUES ('test')"},
			wantErr:     true,
		},
		{
			name: "create index",
			schemaDefinitions: []string{
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT); CREATE INDEX test_name ON test (name)",
			},
			testQueries: []string{"DROP INDEX test_name"},
			wantErr:     false,
		},
		{
			name: "drop index",
			schemaDefinitions: []string{
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT); CREATE INDEX test_name ON test (name)",
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT)",
			},
			testQueries: []string{"DROP INDEX test_name"},
			wantErr:     true,
		},
		{
			name: "update index",
			schemaDefinitions: []string{
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT); CREATE INDEX test_name ON test (name)",
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT); CREATE INDEX test_name ON test (id, name)",
			},
			testQueries: []string{"DROP INDEX test_name"},
			wantErr:     false,
		},
		{
			name: "changed table keeps its index",
			schemaDefinitions: []string{
				"CREATE TABLE test (id INTEGER PRIMARY KEY); CREATE INDEX test_id ON test (id)",
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT); CREATE INDEX test_id ON test (id)",
			},
			testQueries: []string{"DROP INDEX test_id"},
			wantErr:     false,
		},
		{
			name: "keeps rows of changed table",
			schemaDefinitions: []string{
				"CREATE TABLE test (id INTEGER PRIMARY KEY); INSERT INTO test (id) VALUES (7)",
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT)",
			},
			testQueries: []string{"UPDATE test SET name = 'kept' WHERE id = 7 "},
			wantErr:     false,
		},
		{
			name: "create trigger",
			schemaDefinitions: []string{
				`CREATE TABLE test ( id   INTEGER PRIMARY KEY, name TEXT );
                 CREATE TRIGGER test_trigger AFTER INSERT ON test BEGIN SELECT RAISE ( FAIL, 'fail' ); END;`,
			},
			testQueries: []string{"INSERT INTO test (name) VALUES ('test')"},
			wantErr:     true,
		},
		{
			name: "delete trigger",
			schemaDefinitions: []string{
				`CREATE TABLE test ( id   INTEGER PRIMARY KEY, name TEXT );
                 CREATE TRIGGER test_trigger AFTER INSERT ON test BEGIN SELECT RAISE ( FAIL, 'fail' ); END;`,
				"CREATE TABLE test ( id   INTEGER PRIMARY KEY, name TEXT )",
			},
			testQueries: []string{"INSERT INTO test (name) VALUES ('test')"},
			wantErr:     false,
		},
		{
			name: "update trigger",
			schemaDefinitions: []string{
				`CREATE TABLE test ( id   INTEGER PRIMARY KEY, name TEXT );
                 CREATE TRIGGER test_trigger AFTER INSERT ON test BEGIN SELECT RAISE ( FAIL, 'fail' ); END;`,
				`CREATE TABLE test ( id   INTEGER PRIMARY KEY, name TEXT );
                 CREATE TRIGGER test_trigger AFTER INSERT ON test BEGIN SELECT 1; END;`,
			},
			testQueries: []string{"INSERT INTO test (name) VALUES ('test')"},
			wantErr:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			logger := testhelpers.NewLogger(io.Discard)
			db, err := connect(":memory:", logger)
			require.NoError(t, err)
			t.Cleanup(func() { require.NoError(t, db.Close()) })
			for _, schemaDefinition := range tt.schemaDefinitions {
				logger.LogAttrs(ctx, slog.LevelInfo, "migrating", slog.String("schema", schemaDefinition))
				err = db.migrateTo(ctx, schemaDefinition)
				require.NoError(t, err)
			}
			for _, query := range tt.testQueries {
				logger.LogAttrs(ctx, slog.LevelInfo, "executing", slog.String("query", query))
				_, err = db.ReadWrite.ExecContext(ctx, query)
				if tt.wantErr {
					require.Error(t, err)
				} else {
					require.NoError(t, err)
				}
			}
		})
	}
}

func TestNewDatabase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	logger := testhelpers.NewLogger(io.Discard)
	url := filepath.Join(t.TempDir(), "gumshoe.sqlite3")

	db, err := NewDatabase(ctx, url, logger)
	require.NoError(t, err)
	var cities int
	require.NoError(t, db.ReadOnly.GetContext(ctx, &cities, "SELECT COUNT(*) FROM cities"))
	require.GreaterOrEqual(t, cities, 20)
	require.NoError(t, db.Close())

	// Reopening synchronizes an up-to-date schema and reapplies fixtures without duplicating them.
	db, err = NewDatabase(ctx, url, logger)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	var again int
	require.NoError(t, db.ReadOnly.GetContext(ctx, &again, "SELECT COUNT(*) FROM cities"))
	require.Equal(t, cities, again)

	_, err = db.ReadOnly.ExecContext(ctx, "DELETE FROM cities")
	require.Error(t, err, "read-only pool must refuse writes")
}

func TestSchemaInvariants(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := NewDatabase(ctx, ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	exec := func(query string, args ...any) error {
		_, execErr := db.ReadWrite.ExecContext(ctx, query, args...)
		return execErr
	}
	require.NoError(t, exec("INSERT INTO players (id) VALUES ('p')"))
	require.NoError(t, exec(`INSERT INTO cases (id, player_id, difficulty, stolen_item, created_at)
VALUES ('c', 'p', 'strict', 'loot', 0)`))
	require.NoError(t, exec("INSERT INTO steps (case_id, step_order, city_id) VALUES ('c', 1, 'paris')"))
	require.NoError(t, exec(`INSERT INTO places (id, case_id, city_id, type_id, name, style, role, position)
VALUES ('pl', 'c', 'paris', 'market', 'Market', 'talk', 'villain', 0)`))
	require.NoError(t, exec("INSERT INTO clues (place_id, role, text, created_at) VALUES ('pl', 'villain', 'x', 0)"))
	require.NoError(t, exec(`INSERT INTO time_states (case_id, start_at, deadline_at, current_at, timezone)
VALUES ('c', 0, 100, 50, 'UTC')`))

	tests := []struct {
		name  string
		query string
	}{
		{name: "second active case", query: `INSERT INTO cases (id, player_id, difficulty, stolen_item, created_at)
VALUES ('c2', 'p', 'strict', 'loot', 0)`},
		{name: "clue rewrite", query: "UPDATE clues SET text = 'y' WHERE place_id = 'pl'"},
		{name: "time runs backwards", query: "UPDATE time_states SET current_at = 10 WHERE case_id = 'c'"},
		{name: "unknown city", query: "INSERT INTO steps (case_id, step_order, city_id) VALUES ('c', 2, 'atlantis')"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, exec(tt.query))
		})
	}

	t.Run("visited stays visited", func(t *testing.T) {
		require.NoError(t, exec("UPDATE steps SET visited = 1 WHERE case_id = 'c'"))
		require.Error(t, exec("UPDATE steps SET visited = 0 WHERE case_id = 'c'"))
	})
	t.Run("terminal status is final", func(t *testing.T) {
		require.NoError(t, exec("UPDATE cases SET status = 'failed' WHERE id = 'c'"))
		require.Error(t, exec("UPDATE cases SET status = 'active' WHERE id = 'c'"))
	})
}
