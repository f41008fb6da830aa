package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/logging"
	"github.com/dmitrijs2005/gophgram/internal/server/media"
	"github.com/dmitrijs2005/gophgram/internal/server/models"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/repomanager"
)

// ProfileEdit carries optional edits; nil fields are left unchanged.
type ProfileEdit struct {
	Bio     *string
	Gender  *string
	Picture *media.Object
}

type ProfileService struct {
	repomanager repomanager.RepositoryManager
	uploader    media.Uploader
	logger      logging.Logger
}

func NewProfileService(m repomanager.RepositoryManager, uploader media.Uploader, logger logging.Logger) *ProfileService {
	return &ProfileService{repomanager: m, uploader: uploader, logger: logger.With("module", "profile")}
}

// GetProfile returns the public user with posts expanded.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	u, err := s.repomanager.Users(nil).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts, err := s.repomanager.Posts(nil).ListByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return models.NewProfile(u, posts), nil
}

// EditProfile applies edit, uploading a new picture first when one is given.
func (s *ProfileService) EditProfile(ctx context.Context, userID string, edit ProfileEdit) (*models.User, error) {
	upd := models.ProfileUpdate{Bio: edit.Bio}
	if edit.Gender != nil {
		g := strings.ToLower(strings.TrimSpace(*edit.Gender))
		upd.Gender = &g
	}

	if edit.Picture != nil {
		if err := checkImage(*edit.Picture); err != nil {
			return nil, err
		}
		url, err := s.uploader.Upload(ctx, "avatars/"+userID, *edit.Picture)
		if err != nil {
			s.logger.Error(ctx, "profile picture upload failed", "user_id", userID, "error", err)
			return nil, common.ErrorInternal
		}
		upd.ProfilePicture = &url
	}

	u, err := s.repomanager.Users(nil).UpdateProfile(ctx, userID, upd)
	if err != nil {
		return nil, err
	}
	return u.Public(), nil
}

// Suggested lists every user except userID.
func (s *ProfileService) Suggested(ctx context.Context, userID string) ([]*models.User, error) {
	list, err := s.repomanager.Users(nil).ListExcept(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.User, 0, len(list))
	for _, u := range list {
		out = append(out, u.Public())
	}
	return out, nil
}

func checkImage(obj media.Object) error {
	if obj.Size == 0 {
		return fmt.Errorf("%w: empty image", common.ErrValidation)
	}
	if !strings.HasPrefix(obj.ContentType, "image/") {
		return fmt.Errorf("%w: %q is not an image", common.ErrValidation, obj.ContentType)
	}
	return nil
}
