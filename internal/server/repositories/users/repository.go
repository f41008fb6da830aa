// Package users holds the credential store: user records together with the
// two directional relationship lists.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophgram/internal/server/models"
)

// Repository is the user store. Lookups return the user with Following,
// Followers and Posts populated; a missing user yields common.ErrorNotFound.
//
// The follow methods each touch one direction only and are idempotent:
// adding an existing edge or removing a missing one is not an error.
// Callers keep the two directions in step inside a transaction.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListExcept(ctx context.Context, id string) ([]*models.User, error)
	UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error)

	IsFollowing(ctx context.Context, userID, targetID string) (bool, error)
	AddFollowing(ctx context.Context, userID, targetID string) error
	RemoveFollowing(ctx context.Context, userID, targetID string) error
	AddFollower(ctx context.Context, userID, followerID string) error
	RemoveFollower(ctx context.Context, userID, followerID string) error
}
