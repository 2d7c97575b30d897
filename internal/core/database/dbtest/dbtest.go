// Package dbtest opens throwaway in-memory SQLite databases carrying the
// real schema, for repository and service tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"shipment-tracker/internal/core/config"
	"shipment-tracker/internal/core/database"
	"shipment-tracker/internal/core/migrate"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// New returns a migrated client backed by a private in-memory database.
// The database is closed when the test ends.
func New(t testing.TB) *database.Client {
	t.Helper()

	client, err := database.New(context.Background(), config.DatabaseConfig{
		Driver: database.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString()),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.SQL()
	require.NoError(t, err)
	require.NoError(t, migrate.Up(context.Background(), sqlDB, database.DriverSQLite))

	return client
}
