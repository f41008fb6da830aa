// Package repomanager vends repositories for the configured storage backend
// and runs its schema migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophgram/internal/dbx"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/posts"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/users"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// RepositoryManager vends repositories bound to a DBTX. A nil DBTX binds to
// the manager's own connection; the handle passed to a WithTx callback binds
// to that transaction.
type RepositoryManager interface {
	dbx.Transactor
	RunMigrations(ctx context.Context) error
	Users(db dbx.DBTX) users.Repository
	Posts(db dbx.DBTX) posts.Repository
	Ping(ctx context.Context) error
	Close() error
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// Open connects to the backend named by driver ("postgres", "sqlite" or
// "memory").
func Open(ctx context.Context, driver, dsn string) (RepositoryManager, error) {
	switch driver {
	case DriverMemory:
		return NewMemoryRepositoryManager(), nil
	case DriverPostgres:
		db, err := sqlOpen("pgx", dsn)
		if err != nil {
			return nil, err
		}
		return NewPostgresRepositoryManager(db), nil
	case DriverSQLite:
		db, err := sqlOpen("sqlite3", dsn)
		if err != nil {
			return nil, err
		}
		// A single connection serializes writers and keeps in-memory
		// databases alive for the lifetime of the pool.
		db.SetMaxOpenConns(1)
		return NewSQLiteRepositoryManager(db), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}
