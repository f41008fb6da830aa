package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/dbx"
	"github.com/dmitrijs2005/gophgram/internal/logging"
	"github.com/dmitrijs2005/gophgram/internal/server/models"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/repomanager"
)

// GraphService maintains follow edges. Every edge is stored twice, once in
// the follower's following list and once in the target's followers list;
// both writes happen in one transaction.
type GraphService struct {
	repomanager repomanager.RepositoryManager
	relay       Relay
	logger      logging.Logger
}

func NewGraphService(m repomanager.RepositoryManager, relay Relay, logger logging.Logger) *GraphService {
	return &GraphService{repomanager: m, relay: relay, logger: logger.With("module", "graph")}
}

// ToggleFollow makes actorID follow targetID, or unfollow if it already
// does, and reports whether actorID follows targetID afterwards. A new
// follow is relayed to the target.
func (s *GraphService) ToggleFollow(ctx context.Context, actorID, targetID string) (bool, error) {
	if actorID == targetID {
		return false, common.ErrSelfFollow
	}

	var (
		following bool
		actor     *models.User
	)
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		var err error
		if actor, err = repo.GetByID(ctx, actorID); err != nil {
			return err
		}
		if _, err = repo.GetByID(ctx, targetID); err != nil {
			return err
		}

		if actor.IsFollowing(targetID) {
			if err := repo.RemoveFollowing(ctx, actorID, targetID); err != nil {
				return err
			}
			if err := repo.RemoveFollower(ctx, targetID, actorID); err != nil {
				return err
			}
			following = false
			return nil
		}

		if err := repo.AddFollowing(ctx, actorID, targetID); err != nil {
			return err
		}
		if err := repo.AddFollower(ctx, targetID, actorID); err != nil {
			return err
		}
		following = true
		return nil
	})
	if err != nil {
		return false, err
	}

	s.logger.Info(ctx, "follow toggled", "actor_id", actorID, "target_id", targetID, "following", following)

	if following {
		s.notify(ctx, models.Notification{
			Kind:         models.NotificationFollow,
			Actor:        models.ActorOf(actor),
			TargetUserID: targetID,
			Payload:      map[string]string{"message": fmt.Sprintf("%s started following you", actor.UserName)},
		})
	}

	return following, nil
}

// Followers lists the ids following userID.
func (s *GraphService) Followers(ctx context.Context, userID string) ([]string, error) {
	u, err := s.repomanager.Users(nil).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Public().Followers, nil
}

// Following lists the ids userID follows.
func (s *GraphService) Following(ctx context.Context, userID string) ([]string, error) {
	u, err := s.repomanager.Users(nil).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Public().Following, nil
}

func (s *GraphService) notify(ctx context.Context, n models.Notification) {
	if err := s.relay.Relay(ctx, n); err != nil {
		s.logger.Warn(ctx, "relay failed", "kind", n.Kind, "target_id", n.TargetUserID, "error", err)
	}
}
