// Package testsupport provides shared helpers for tests that need a real
// database. SQLite memory databases are scoped by name so packages running
// in parallel never share state.
package testsupport

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteMemoryDB opens a shared-cache in-memory SQLite database. Every
// caller passing the same name sees the same database for as long as at
// least one connection stays open.
func NewSQLiteMemoryDB(name string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", name)
	return sql.Open("sqlite3", dsn)
}
