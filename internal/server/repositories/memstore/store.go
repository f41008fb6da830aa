// Package memstore is the shared state behind the in-memory repositories.
//
// All repositories built on one Store see the same data. Store implements
// dbx.Transactor: WithTx holds the write lock for the whole unit of work and
// restores a snapshot if it fails, so the follow toggle's two directional
// writes are applied together or not at all.
package memstore

import (
	"context"
	"database/sql"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/dmitrijs2005/gophgram/internal/dbx"
	"github.com/dmitrijs2005/gophgram/internal/server/models"
)

var errNotSQL = errors.New("memstore: transaction handle does not execute SQL")

// Store is the in-memory data set. Fields are exported for the repository
// packages; touch them only inside Read/Write or a transaction.
type Store struct {
	mu sync.RWMutex

	Users     map[string]*models.User
	Following map[string][]string // user id -> ids it follows, in follow order
	Followers map[string][]string // user id -> ids following it, in follow order
	Posts     map[string]*models.Post
	PostOrder []string // post ids in creation order
}

func New() *Store {
	return &Store{
		Users:     map[string]*models.User{},
		Following: map[string][]string{},
		Followers: map[string][]string{},
		Posts:     map[string]*models.Post{},
	}
}

// Tx marks a handle passed to a TxFunc by Store.WithTx. Repositories bound to
// a Tx skip locking because the transaction already holds the write lock.
// Its DBTX methods always fail.
type Tx struct {
	store *Store
}

func (*Tx) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errNotSQL
}

func (*Tx) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errNotSQL
}

func (*Tx) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

// Bound reports whether db is a transaction handle of s.
func (s *Store) Bound(db dbx.DBTX) bool {
	tx, ok := db.(*Tx)
	return ok && tx.store == s
}

// Read runs fn under the read lock unless db is one of s's transactions.
func (s *Store) Read(db dbx.DBTX, fn func()) {
	if s.Bound(db) {
		fn()
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

// Write runs fn under the write lock unless db is one of s's transactions.
func (s *Store) Write(db dbx.DBTX, fn func()) {
	if s.Bound(db) {
		fn()
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// WithTx runs fn holding the write lock. On error or panic the data set is
// restored to what it was before fn ran.
func (s *Store) WithTx(ctx context.Context, fn dbx.TxFunc) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			panic(p)
		}
		if err != nil {
			s.restore(snap)
		}
	}()

	return fn(ctx, &Tx{store: s})
}

type snapshot struct {
	users     map[string]*models.User
	following map[string][]string
	followers map[string][]string
	posts     map[string]*models.Post
	postOrder []string
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		users:     make(map[string]*models.User, len(s.Users)),
		following: cloneLists(s.Following),
		followers: cloneLists(s.Followers),
		posts:     make(map[string]*models.Post, len(s.Posts)),
		postOrder: slices.Clone(s.PostOrder),
	}
	for id, u := range s.Users {
		c := *u
		snap.users[id] = &c
	}
	for id, p := range s.Posts {
		c := *p
		c.Likes = slices.Clone(p.Likes)
		snap.posts[id] = &c
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.Users = snap.users
	s.Following = snap.following
	s.Followers = snap.followers
	s.Posts = snap.posts
	s.PostOrder = snap.postOrder
}

func cloneLists(m map[string][]string) map[string][]string {
	out := maps.Clone(m)
	for k, v := range out {
		out[k] = slices.Clone(v)
	}
	return out
}

// AddToList appends id to lists[key] unless already present.
func AddToList(lists map[string][]string, key, id string) {
	if !slices.Contains(lists[key], id) {
		lists[key] = append(lists[key], id)
	}
}

// RemoveFromList deletes id from lists[key] if present.
func RemoveFromList(lists map[string][]string, key, id string) {
	lists[key] = slices.DeleteFunc(lists[key], func(v string) bool { return v == id })
}
