package testdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/NullInfinity/society-event-manager/internal/db"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// SQLiteDatabase is a throwaway membership database file.
type SQLiteDatabase struct {
	DB   *bun.DB
	Path string
}

// SetupSQLite creates a fresh SQLite database file in the test's temp
// directory. The file is removed with the directory when the test ends.
//
// Usage:
//
//	func TestMyStore(t *testing.T) {
//	    sqlite := testdb.SetupSQLite(t)
//	    sqlite.RunMigrations(t, (*member.Record)(nil))
//
//	    t.Run("Test1", func(t *testing.T) {
//	        testdb.CleanupTables(t, sqlite.DB, "users")
//	        // ... test
//	    })
//	}
func SetupSQLite(t *testing.T) *SQLiteDatabase {
	t.Helper()

	path := filepath.Join(t.TempDir(), "members.db")
	database, err := db.NewWithDSN(context.Background(), "file:"+path)
	require.NoError(t, err)

	sqlite := &SQLiteDatabase{DB: database, Path: path}
	t.Cleanup(func() { _ = sqlite.DB.Close() })
	return sqlite
}

func (s *SQLiteDatabase) RunMigrations(t *testing.T, models ...interface{}) {
	t.Helper()
	require.NoError(t, db.RunMigrations(context.Background(), s.DB, models...), "failed to create tables")
}

// Open returns a second, independent connection to the same file. It only
// sees committed data.
func (s *SQLiteDatabase) Open(t *testing.T) *bun.DB {
	t.Helper()

	other, err := db.NewWithDSN(context.Background(), "file:"+s.Path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = other.Close() })
	return other
}

func CleanupTables(t *testing.T, db *bun.DB, tables ...string) {
	t.Helper()

	ctx := context.Background()

	for _, table := range tables {
		_, err := db.ExecContext(ctx, "DELETE FROM "+table)
		require.NoError(t, err, "failed to clear table: %s", table)
	}
}
