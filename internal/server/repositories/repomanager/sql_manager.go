package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophgram/internal/dbx"
	"github.com/dmitrijs2005/gophgram/internal/server/migrations"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/posts"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// SQLRepositoryManager vends SQL-backed repositories over one *sql.DB. The
// same repository code serves PostgreSQL and SQLite; only the goose dialect
// and the migration directory differ.
type SQLRepositoryManager struct {
	db      *sql.DB
	dialect string
	dir     string
}

func NewPostgresRepositoryManager(db *sql.DB) *SQLRepositoryManager {
	return &SQLRepositoryManager{db: db, dialect: "pgx", dir: migrations.DirPostgres}
}

func NewSQLiteRepositoryManager(db *sql.DB) *SQLRepositoryManager {
	return &SQLRepositoryManager{db: db, dialect: "sqlite3", dir: migrations.DirSQLite}
}

func (m *SQLRepositoryManager) bind(db dbx.DBTX) dbx.DBTX {
	if db == nil {
		return m.db
	}
	return db
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(m.bind(db))
}

// Posts returns a posts.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Posts(db dbx.DBTX) posts.Repository {
	return posts.NewSQLRepository(m.bind(db))
}

func (m *SQLRepositoryManager) WithTx(ctx context.Context, fn dbx.TxFunc) error {
	return dbx.WithTx(ctx, m.db, nil, fn)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the manager's connection.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.dialect); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, m.dir); err != nil {
		return err
	}
	return nil
}

func (m *SQLRepositoryManager) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *SQLRepositoryManager) Close() error {
	return m.db.Close()
}
