package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/database"
)

func openTestConnection(t *testing.T) database.Connection {
	t.Helper()
	conn, err := database.NewConnection(context.Background(), database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "planner.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestNewConnection_RegisteredDriver(t *testing.T) {
	conn := openTestConnection(t)

	assert.NoError(t, conn.Ping(context.Background()))
	assert.Equal(t, database.DriverSQLite, conn.Driver())
}

func TestConnection_DollarPlaceholders(t *testing.T) {
	ctx := context.Background()
	conn := openTestConnection(t)

	_, err := conn.Exec(ctx, `CREATE TABLE notes (id TEXT PRIMARY KEY, body TEXT, done INTEGER NOT NULL DEFAULT 0)`)
	require.NoError(t, err)

	res, err := conn.Exec(ctx, `INSERT INTO notes (id, body, done) VALUES ($1, $2, $3)`, "a", "first", true)
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var body string
	var done bool
	require.NoError(t, conn.QueryRow(ctx, `SELECT body, done FROM notes WHERE id = $1`, "a").Scan(&body, &done))
	assert.Equal(t, "first", body)
	assert.True(t, done)

	err = conn.QueryRow(ctx, `SELECT body FROM notes WHERE id = $1`, "missing").Scan(&body)
	assert.True(t, database.IsNoRows(err))
}

func TestUnitOfWork_CommitAndRollback(t *testing.T) {
	ctx := context.Background()
	conn := openTestConnection(t)
	_, err := conn.Exec(ctx, `CREATE TABLE notes (id TEXT PRIMARY KEY)`)
	require.NoError(t, err)

	uow := database.NewUnitOfWork(conn)

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	assert.True(t, database.InTransaction(txCtx))
	_, err = database.ExecutorFromContext(txCtx, conn).Exec(txCtx, `INSERT INTO notes (id) VALUES ($1)`, "kept")
	require.NoError(t, err)

	nested, err := uow.Begin(txCtx)
	require.NoError(t, err)
	require.NoError(t, uow.Commit(nested))
	require.NoError(t, uow.Commit(txCtx))

	txCtx, err = uow.Begin(ctx)
	require.NoError(t, err)
	_, err = database.ExecutorFromContext(txCtx, conn).Exec(txCtx, `INSERT INTO notes (id) VALUES ($1)`, "dropped")
	require.NoError(t, err)
	require.NoError(t, uow.Rollback(txCtx))

	rows, err := conn.Query(ctx, `SELECT id FROM notes ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"kept"}, ids)
}

func TestUnitOfWork_NoTransaction(t *testing.T) {
	uow := database.NewUnitOfWork(openTestConnection(t))

	err := uow.Commit(context.Background())
	assert.True(t, errors.Is(err, database.ErrNoTransaction))
}
