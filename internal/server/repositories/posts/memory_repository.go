package posts

import (
	"context"
	"slices"
	"time"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/dbx"
	"github.com/dmitrijs2005/gophgram/internal/server/models"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/memstore"
	"github.com/google/uuid"
)

type MemoryRepository struct {
	store *memstore.Store
	db    dbx.DBTX
}

func NewMemoryRepository(store *memstore.Store, db dbx.DBTX) *MemoryRepository {
	return &MemoryRepository{store: store, db: db}
}

func (r *MemoryRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	var err error
	r.store.Write(r.db, func() {
		if _, ok := r.store.Users[post.AuthorID]; !ok {
			err = common.ErrorNotFound
			return
		}
		if post.ID == "" {
			post.ID = uuid.NewString()
		}
		if post.CreatedAt.IsZero() {
			post.CreatedAt = time.Now().UTC()
		}
		if post.Likes == nil {
			post.Likes = []string{}
		}
		c := *post
		c.Likes = slices.Clone(post.Likes)
		r.store.Posts[c.ID] = &c
		r.store.PostOrder = append(r.store.PostOrder, c.ID)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var out *models.Post
	r.store.Read(r.db, func() {
		if p, ok := r.store.Posts[id]; ok {
			out = clonePost(p)
		}
	})
	if out == nil {
		return nil, common.ErrorNotFound
	}
	return out, nil
}

func (r *MemoryRepository) ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	var out []*models.Post
	r.store.Read(r.db, func() {
		for i := len(r.store.PostOrder) - 1; i >= 0; i-- {
			if p := r.store.Posts[r.store.PostOrder[i]]; p != nil && p.AuthorID == authorID {
				out = append(out, clonePost(p))
			}
		}
	})
	return out, nil
}

func (r *MemoryRepository) AddLike(ctx context.Context, postID, userID string) error {
	var err error
	r.store.Write(r.db, func() {
		p, ok := r.store.Posts[postID]
		if !ok {
			err = common.ErrorNotFound
			return
		}
		if !slices.Contains(p.Likes, userID) {
			p.Likes = append(p.Likes, userID)
		}
	})
	return err
}

func (r *MemoryRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	r.store.Write(r.db, func() {
		if p, ok := r.store.Posts[postID]; ok {
			p.Likes = slices.DeleteFunc(p.Likes, func(v string) bool { return v == userID })
		}
	})
	return nil
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.Likes = slices.Clone(p.Likes)
	if c.Likes == nil {
		c.Likes = []string{}
	}
	return &c
}
