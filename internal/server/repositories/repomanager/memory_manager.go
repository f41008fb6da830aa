package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophgram/internal/dbx"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/memstore"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/posts"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process. Data is lost on exit.
type MemoryRepositoryManager struct {
	store *memstore.Store
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{store: memstore.New()}
}

func (m *MemoryRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewMemoryRepository(m.store, db)
}

func (m *MemoryRepositoryManager) Posts(db dbx.DBTX) posts.Repository {
	return posts.NewMemoryRepository(m.store, db)
}

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn dbx.TxFunc) error {
	return m.store.WithTx(ctx, fn)
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Ping(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Close() error { return nil }
