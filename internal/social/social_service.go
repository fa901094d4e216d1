package social

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"moodfeed/internal/common"
	"moodfeed/internal/dbsql"
	"moodfeed/internal/events"
)

const FollowPageSize = 20

type UserStats struct {
	ContentStats
	FollowCounts
	MoodDistribution []MoodCount `json:"moodDistribution"`
}

type SocialService struct {
	repo      FollowRepository
	publisher events.Publisher
	log       *logrus.Logger
}

func NewSocialService(repo FollowRepository, publisher events.Publisher, log *logrus.Logger) *SocialService {
	return &SocialService{repo: repo, publisher: publisher, log: log}
}

func (s *SocialService) requireUser(ctx context.Context, userID uint64) error {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return common.NotFound("user %d not found", userID)
	}
	return nil
}

func (s *SocialService) Follow(ctx context.Context, actorID, targetID uint64) error {
	if actorID == targetID {
		return common.Validation("cannot follow yourself")
	}
	if err := s.requireUser(ctx, targetID); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, &dbsql.Follow{FollowerID: actorID, FollowingID: targetID}); err != nil {
		return err
	}

	s.publisher.Publish(events.New(events.UserFollowed, actorID, targetID, 0))
	s.log.WithFields(logrus.Fields{"follower_id": actorID, "following_id": targetID}).Info("user followed")
	return nil
}

func (s *SocialService) Unfollow(ctx context.Context, actorID, targetID uint64) error {
	if err := s.repo.Delete(ctx, actorID, targetID); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"follower_id": actorID, "following_id": targetID}).Info("user unfollowed")
	return nil
}

func (s *SocialService) FollowStatus(ctx context.Context, actorID, targetID uint64) (bool, error) {
	return s.repo.Exists(ctx, actorID, targetID)
}

func (s *SocialService) Stats(ctx context.Context, userID uint64) (FollowCounts, error) {
	return s.repo.Counts(ctx, userID)
}

// UserStats combines content, engagement and follow counts for an existing
// user. The three reads are independent and run concurrently.
func (s *SocialService) UserStats(ctx context.Context, userID uint64) (*UserStats, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	stats := &UserStats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.ContentStats, err = s.repo.ContentStats(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		stats.FollowCounts, err = s.repo.Counts(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		stats.MoodDistribution, err = s.repo.MoodDistribution(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if stats.MoodDistribution == nil {
		stats.MoodDistribution = []MoodCount{}
	}
	return stats, nil
}

func (s *SocialService) Following(ctx context.Context, userID uint64, window common.PageWindow) (common.Paged[FollowedUser], error) {
	return s.list(ctx, userID, window, s.repo.Following)
}

func (s *SocialService) Followers(ctx context.Context, userID uint64, window common.PageWindow) (common.Paged[FollowedUser], error) {
	return s.list(ctx, userID, window, s.repo.Followers)
}

type edgeLister func(ctx context.Context, userID uint64, window common.PageWindow) ([]FollowedUser, int64, error)

func (s *SocialService) list(ctx context.Context, userID uint64, window common.PageWindow, fetch edgeLister) (common.Paged[FollowedUser], error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return common.Paged[FollowedUser]{}, err
	}
	window = common.NewPageWindow(window.Page, window.PageSize, FollowPageSize)

	users, total, err := fetch(ctx, userID, window)
	if err != nil {
		return common.Paged[FollowedUser]{}, err
	}
	return common.NewPaged(users, total, window), nil
}
