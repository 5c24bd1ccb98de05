package migrations_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/migrations"
)

func TestRun_SQLite(t *testing.T) {
	ctx := context.Background()
	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "planner.db"),
	})
	require.NoError(t, err)
	defer conn.Close()

	ran, err := migrations.Run(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_planner", "000002_activity_locations"}, ran)

	again, err := migrations.Run(ctx, conn)
	require.NoError(t, err)
	assert.Empty(t, again)

	var count int
	require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM activity_locations WHERE city = $1`, "paris").Scan(&count))
	assert.Equal(t, 3, count)
}
