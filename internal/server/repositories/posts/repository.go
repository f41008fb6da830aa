// Package posts stores posts and their likes.
package posts

import (
	"context"

	"github.com/dmitrijs2005/gophgram/internal/server/models"
)

// Repository is the post store. GetByID returns the post with Likes
// populated; a missing post yields common.ErrorNotFound. Like edits are
// idempotent.
type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error)
	AddLike(ctx context.Context, postID, userID string) error
	RemoveLike(ctx context.Context, postID, userID string) error
}
