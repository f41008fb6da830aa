package users

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/dbx"
	"github.com/dmitrijs2005/gophgram/internal/server/models"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/memstore"
	"github.com/google/uuid"
)

// MemoryRepository keeps users in a memstore.Store. Returned users are
// copies; mutating them does not change the store.
type MemoryRepository struct {
	store *memstore.Store
	db    dbx.DBTX
}

// NewMemoryRepository binds the repository to db, which is nil outside a
// transaction or the *memstore.Tx handed out by store.WithTx.
func NewMemoryRepository(store *memstore.Store, db dbx.DBTX) *MemoryRepository {
	return &MemoryRepository{store: store, db: db}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	var err error
	r.store.Write(r.db, func() {
		for _, u := range r.store.Users {
			if u.Email == user.Email || u.UserName == user.UserName {
				err = common.ErrAlreadyExists
				return
			}
		}
		if user.ID == "" {
			user.ID = uuid.NewString()
		}
		if _, ok := r.store.Users[user.ID]; ok {
			err = common.ErrAlreadyExists
			return
		}
		if user.CreatedAt.IsZero() {
			user.CreatedAt = time.Now().UTC()
		}
		c := *user
		c.Posts, c.Followers, c.Following = nil, nil, nil
		r.store.Users[c.ID] = &c
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var out *models.User
	r.store.Read(r.db, func() {
		if u, ok := r.store.Users[id]; ok {
			out = r.hydrate(u)
		}
	})
	if out == nil {
		return nil, common.ErrorNotFound
	}
	return out, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var out *models.User
	r.store.Read(r.db, func() {
		for _, u := range r.store.Users {
			if u.Email == email {
				out = r.hydrate(u)
				return
			}
		}
	})
	if out == nil {
		return nil, common.ErrorNotFound
	}
	return out, nil
}

func (r *MemoryRepository) ListExcept(ctx context.Context, id string) ([]*models.User, error) {
	var out []*models.User
	r.store.Read(r.db, func() {
		for _, u := range r.store.Users {
			if u.ID != id {
				out = append(out, r.hydrate(u))
			}
		}
	})
	slices.SortFunc(out, func(a, b *models.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *MemoryRepository) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	var out *models.User
	r.store.Write(r.db, func() {
		u, ok := r.store.Users[id]
		if !ok {
			return
		}
		if upd.Bio != nil {
			u.Bio = *upd.Bio
		}
		if upd.Gender != nil {
			u.Gender = *upd.Gender
		}
		if upd.ProfilePicture != nil {
			u.ProfilePicture = *upd.ProfilePicture
		}
		out = r.hydrate(u)
	})
	if out == nil {
		return nil, common.ErrorNotFound
	}
	return out, nil
}

func (r *MemoryRepository) IsFollowing(ctx context.Context, userID, targetID string) (bool, error) {
	var ok bool
	r.store.Read(r.db, func() {
		ok = slices.Contains(r.store.Following[userID], targetID)
	})
	return ok, nil
}

func (r *MemoryRepository) AddFollowing(ctx context.Context, userID, targetID string) error {
	r.store.Write(r.db, func() { memstore.AddToList(r.store.Following, userID, targetID) })
	return nil
}

func (r *MemoryRepository) RemoveFollowing(ctx context.Context, userID, targetID string) error {
	r.store.Write(r.db, func() { memstore.RemoveFromList(r.store.Following, userID, targetID) })
	return nil
}

func (r *MemoryRepository) AddFollower(ctx context.Context, userID, followerID string) error {
	r.store.Write(r.db, func() { memstore.AddToList(r.store.Followers, userID, followerID) })
	return nil
}

func (r *MemoryRepository) RemoveFollower(ctx context.Context, userID, followerID string) error {
	r.store.Write(r.db, func() { memstore.RemoveFromList(r.store.Followers, userID, followerID) })
	return nil
}

// hydrate copies u and fills its lists. Callers hold a store lock.
func (r *MemoryRepository) hydrate(u *models.User) *models.User {
	c := *u
	c.Following = slices.Clone(r.store.Following[u.ID])
	c.Followers = slices.Clone(r.store.Followers[u.ID])
	c.Posts = nil
	for _, pid := range r.store.PostOrder {
		if p, ok := r.store.Posts[pid]; ok && p.AuthorID == u.ID {
			c.Posts = append(c.Posts, pid)
		}
	}
	return &c
}
