package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophgram/internal/cryptox"
	"github.com/dmitrijs2005/gophgram/internal/dbx"
	"github.com/dmitrijs2005/gophgram/internal/logging"
	"github.com/dmitrijs2005/gophgram/internal/server/config"
	"github.com/dmitrijs2005/gophgram/internal/server/media"
	"github.com/dmitrijs2005/gophgram/internal/server/models"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		SessionTokenValidityDuration: 24 * time.Hour,
	}
}

func testHasher() cryptox.PasswordHasher {
	return cryptox.BcryptHasher{Cost: 4}
}

type recordingRelay struct {
	mu   sync.Mutex
	sent []models.Notification
	err  error
}

func (r *recordingRelay) Relay(_ context.Context, n models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func (r *recordingRelay) notifications() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification(nil), r.sent...)
}

type fakeUploader struct {
	prefix string
	obj    media.Object
	url    string
	err    error
}

func (f *fakeUploader) Upload(_ context.Context, prefix string, obj media.Object) (string, error) {
	f.prefix, f.obj = prefix, obj
	return f.url, f.err
}

// seedUsers registers alice, bob and carol and returns their ids in that order.
func seedUsers(t *testing.T, m repomanager.RepositoryManager) []string {
	t.Helper()
	s := NewSessionService(m, testHasher(), testConfig())
	var ids []string
	for _, name := range []string{"alice", "bob", "carol"} {
		u, err := s.Register(context.Background(), name, name+"@example.com", "pw-"+name)
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}
	return ids
}

var nopLogger logging.Logger = logging.Nop{}

// usersOverride wraps the users repositories vended by a memory manager.
type usersOverride struct {
	*repomanager.MemoryRepositoryManager
	wrap func(users.Repository) users.Repository
}

func (m *usersOverride) Users(db dbx.DBTX) users.Repository {
	return m.wrap(m.MemoryRepositoryManager.Users(db))
}
