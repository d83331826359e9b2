// Package sqlitetest opens migrated in-memory SQLite databases for tests.
package sqlitetest

import (
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/gophnotes/internal/server/migrations"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

var (
	counter atomic.Int64
	// goose keeps its FS and dialect in package globals.
	gooseMu sync.Mutex
)

// New returns an isolated, fully migrated in-memory database that is closed
// when the test ends.
func New(t testing.TB) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:gophnotes_test_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", counter.Add(1))
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.Up(db, migrations.SQLiteDir))

	return db
}
