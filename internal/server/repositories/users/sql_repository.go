package users

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

// SQLRepository runs on both PostgreSQL (pgx) and SQLite (go-sqlite3): ids
// and timestamps come from Go, and placeholders are numbered in order of
// first use, which both drivers bind positionally.
type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

const userColumns = `id, username, email, password_hash, bio, gender, profile_picture, created_at`

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query :=
		`INSERT INTO users (id, username, email, password_hash, bio, gender, profile_picture, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.UserName, user.Email, user.PasswordHash, user.Bio, user.Gender, user.ProfilePicture, user.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *SQLRepository) ListExcept(ctx context.Context, id string) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id <> $1 ORDER BY created_at, id`, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := scanUser(rows, u); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	rows.Close()

	for _, u := range result {
		if err := r.loadRelations(ctx, u); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *SQLRepository) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	query :=
		`UPDATE users SET
		    bio = COALESCE($1, bio),
		    gender = COALESCE($2, gender),
		    profile_picture = COALESCE($3, profile_picture)
		 WHERE id = $4`

	res, err := r.db.ExecContext(ctx, query, upd.Bio, upd.Gender, upd.ProfilePicture, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return nil, common.ErrorNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *SQLRepository) IsFollowing(ctx context.Context, userID, targetID string) (bool, error) {
	query :=
		`SELECT EXISTS (
		    SELECT 1 FROM user_following WHERE user_id = $1 AND following_id = $2
		 )`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, targetID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *SQLRepository) AddFollowing(ctx context.Context, userID, targetID string) error {
	return r.exec(ctx,
		`INSERT INTO user_following (user_id, following_id, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		userID, targetID, time.Now().UTC())
}

func (r *SQLRepository) RemoveFollowing(ctx context.Context, userID, targetID string) error {
	return r.exec(ctx,
		`DELETE FROM user_following WHERE user_id = $1 AND following_id = $2`,
		userID, targetID)
}

func (r *SQLRepository) AddFollower(ctx context.Context, userID, followerID string) error {
	return r.exec(ctx,
		`INSERT INTO user_followers (user_id, follower_id, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		userID, followerID, time.Now().UTC())
}

func (r *SQLRepository) RemoveFollower(ctx context.Context, userID, followerID string) error {
	return r.exec(ctx,
		`DELETE FROM user_followers WHERE user_id = $1 AND follower_id = $2`,
		userID, followerID)
}

func (r *SQLRepository) exec(ctx context.Context, query string, args ...any) error {
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner, u *models.User) error {
	return s.Scan(&u.ID, &u.UserName, &u.Email, &u.PasswordHash, &u.Bio, &u.Gender, &u.ProfilePicture, &u.CreatedAt)
}

func (r *SQLRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	if err := scanUser(r.db.QueryRowContext(ctx, query, arg), user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := r.loadRelations(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *SQLRepository) loadRelations(ctx context.Context, u *models.User) error {
	var err error
	if u.Following, err = r.selectIDs(ctx,
		`SELECT following_id FROM user_following WHERE user_id = $1 ORDER BY created_at, following_id`, u.ID); err != nil {
		return err
	}
	if u.Followers, err = r.selectIDs(ctx,
		`SELECT follower_id FROM user_followers WHERE user_id = $1 ORDER BY created_at, follower_id`, u.ID); err != nil {
		return err
	}
	if u.Posts, err = r.selectIDs(ctx,
		`SELECT id FROM posts WHERE author_id = $1 ORDER BY created_at, id`, u.ID); err != nil {
		return err
	}
	return nil
}

func (r *SQLRepository) selectIDs(ctx context.Context, query string, arg string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
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
