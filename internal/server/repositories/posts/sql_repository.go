package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/dbx"
	"github.com/dmitrijs2005/gophgram/internal/server/models"
	"github.com/google/uuid"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	query :=
		`INSERT INTO posts (id, author_id, caption, image, created_at)
		 VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query, post.ID, post.AuthorID, post.Caption, post.Image, post.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if post.Likes == nil {
		post.Likes = []string{}
	}
	return post, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT id, author_id, caption, image, created_at FROM posts WHERE id = $1`

	p := &models.Post{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.AuthorID, &p.Caption, &p.Image, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if p.Likes, err = r.likes(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *SQLRepository) ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	query :=
		`SELECT id, author_id, caption, image, created_at
		 FROM posts
		 WHERE author_id = $1
		 ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Post
	for rows.Next() {
		p := &models.Post{}
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Caption, &p.Image, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	rows.Close()

	for _, p := range result {
		if p.Likes, err = r.likes(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *SQLRepository) AddLike(ctx context.Context, postID, userID string) error {
	query :=
		`INSERT INTO post_likes (post_id, user_id, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, postID, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	query := `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`

	if _, err := r.db.ExecContext(ctx, query, postID, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) likes(ctx context.Context, postID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM post_likes WHERE post_id = $1 ORDER BY created_at, user_id`, postID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ids, nil
}
