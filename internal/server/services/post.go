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

type PostService struct {
	repomanager repomanager.RepositoryManager
	uploader    media.Uploader
	relay       Relay
	logger      logging.Logger
}

func NewPostService(m repomanager.RepositoryManager, uploader media.Uploader, relay Relay, logger logging.Logger) *PostService {
	return &PostService{repomanager: m, uploader: uploader, relay: relay, logger: logger.With("module", "posts")}
}

// Create publishes a post. At least one of caption and image is required.
func (s *PostService) Create(ctx context.Context, authorID, caption string, image *media.Object) (*models.Post, error) {
	caption = strings.TrimSpace(caption)
	if caption == "" && image == nil {
		return nil, fmt.Errorf("%w: caption or image is required", common.ErrValidation)
	}

	if _, err := s.repomanager.Users(nil).GetByID(ctx, authorID); err != nil {
		return nil, err
	}

	post := &models.Post{AuthorID: authorID, Caption: caption}
	if image != nil {
		if err := checkImage(*image); err != nil {
			return nil, err
		}
		url, err := s.uploader.Upload(ctx, "posts/"+authorID, *image)
		if err != nil {
			s.logger.Error(ctx, "post image upload failed", "user_id", authorID, "error", err)
			return nil, common.ErrorInternal
		}
		post.Image = url
	}

	return s.repomanager.Posts(nil).Create(ctx, post)
}

// Like adds userID to the post's likes. The author is notified when the
// like is new and not their own.
func (s *PostService) Like(ctx context.Context, userID, postID string) (*models.Post, error) {
	return s.setLike(ctx, userID, postID, true)
}

// Dislike withdraws userID's like. The author is notified when a like was
// actually withdrawn and it was not their own.
func (s *PostService) Dislike(ctx context.Context, userID, postID string) (*models.Post, error) {
	return s.setLike(ctx, userID, postID, false)
}

func (s *PostService) setLike(ctx context.Context, userID, postID string, like bool) (*models.Post, error) {
	users := s.repomanager.Users(nil)
	posts := s.repomanager.Posts(nil)

	actor, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	post, err := posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	changed := post.LikedBy(userID) != like
	if changed {
		if like {
			err = posts.AddLike(ctx, postID, userID)
		} else {
			err = posts.RemoveLike(ctx, postID, userID)
		}
		if err != nil {
			return nil, err
		}
		if post, err = posts.GetByID(ctx, postID); err != nil {
			return nil, err
		}
	}

	if changed && post.AuthorID != userID {
		kind, verb := models.NotificationLike, "liked"
		if !like {
			kind, verb = models.NotificationDislike, "disliked"
		}
		n := models.Notification{
			Kind:         kind,
			Actor:        models.ActorOf(actor),
			TargetUserID: post.AuthorID,
			Payload: map[string]string{
				"postId":  postID,
				"message": fmt.Sprintf("%s %s your post", actor.UserName, verb),
			},
		}
		if err := s.relay.Relay(ctx, n); err != nil {
			s.logger.Warn(ctx, "relay failed", "kind", kind, "target_id", post.AuthorID, "error", err)
		}
	}

	return post, nil
}
