package client

import (
	"context"

	"github.com/dmitrijs2005/gophgram/internal/client/models"
	"github.com/dmitrijs2005/gophgram/internal/filex"
	"github.com/dmitrijs2005/gophgram/internal/wire"
)

// ProfileEdit carries optional profile changes; empty strings and a nil
// picture are left unchanged.
type ProfileEdit struct {
	Bio     string
	Gender  string
	Picture *filex.File
}

type Client interface {
	Register(ctx context.Context, username, email string, password []byte) (*models.User, error)
	Login(ctx context.Context, email string, password []byte) (*models.Profile, error)
	Logout(ctx context.Context) error
	ToggleFollow(ctx context.Context, userID string) (bool, error)
	Profile(ctx context.Context, userID string) (*models.Profile, error)
	EditProfile(ctx context.Context, edit ProfileEdit) (*models.User, error)
	Suggested(ctx context.Context) ([]models.User, error)
	Online(ctx context.Context) ([]string, error)
	AddPost(ctx context.Context, caption string, image *filex.File) (*models.Post, error)
	Like(ctx context.Context, postID string) error
	Dislike(ctx context.Context, postID string) error
	// Listen holds the realtime connection for userID open and hands every
	// frame to onFrame until ctx ends or the connection drops.
	Listen(ctx context.Context, userID string, onFrame func(wire.Envelope)) error
}
