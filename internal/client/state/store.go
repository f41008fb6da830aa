// Package state keeps what the client knows about the session: who is logged
// in, who is online and which notifications arrived. It changes only through
// the explicit mutations below, most of them driven by realtime frames.
package state

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/gophgram/internal/client/models"
	"github.com/dmitrijs2005/gophgram/internal/wire"
)

var ErrUnknownFrame = errors.New("unknown frame type")

// Store is safe for concurrent use.
type Store struct {
	mu            sync.RWMutex
	authUser      *models.User
	online        map[string]struct{}
	notifications []models.Notification
}

func NewStore() *Store {
	return &Store{online: map[string]struct{}{}}
}

// SetAuthUser replaces the logged-in user. nil means logged out.
func (s *Store) SetAuthUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authUser = u.Clone()
}

func (s *Store) AuthUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authUser.Clone()
}

// SetOnlineUsers replaces the online set wholesale.
func (s *Store) SetOnlineUsers(ids []string) {
	online := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		online[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.online = online
}

// OnlineUsers returns the online ids, sorted.
func (s *Store) OnlineUsers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.online))
	for id := range s.online {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *Store) IsOnline(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.online[userID]
	return ok
}

// AddNotification appends n. Duplicates are kept.
func (s *Store) AddNotification(n models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
}

// Notifications returns the notifications in arrival order.
func (s *Store) Notifications() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notifications)
}

// Apply routes a realtime frame to the matching mutation.
func (s *Store) Apply(e wire.Envelope) error {
	switch e.Type {
	case wire.TypePresence:
		ids, err := e.Presence()
		if err != nil {
			return err
		}
		s.SetOnlineUsers(ids)
	case wire.TypeNotification:
		var n models.Notification
		if err := e.Decode(&n); err != nil {
			return fmt.Errorf("decode notification: %w", err)
		}
		s.AddNotification(n)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFrame, e.Type)
	}
	return nil
}

// Reset forgets everything, as on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authUser = nil
	s.online = map[string]struct{}{}
	s.notifications = nil
}
