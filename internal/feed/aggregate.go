package feed

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"moodfeed/internal/common"
	"moodfeed/internal/dbsql"
)

// Engagement is the derived, viewer-dependent part of a post.
type Engagement struct {
	LikeCount     int64
	CommentCount  int64
	LikedByViewer bool
}

// Aggregator computes engagement for a batch of posts with one grouped query
// per metric.
type Aggregator interface {
	Annotate(ctx context.Context, postIDs []uint64, viewer common.Viewer) (map[uint64]Engagement, error)
}

type aggregator struct {
	db *gorm.DB
}

func NewAggregator(db *gorm.DB) Aggregator {
	return &aggregator{db: db}
}

type postCount struct {
	PostID uint64
	Cnt    int64
}

// Annotate returns an entry for every requested id, zero-valued when a post
// has no likes or comments. An anonymous viewer never likes anything.
func (a *aggregator) Annotate(ctx context.Context, postIDs []uint64, viewer common.Viewer) (map[uint64]Engagement, error) {
	ids := dbsql.UniqueIDs(postIDs)
	out := make(map[uint64]Engagement, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var likes, comments []postCount
	var liked []uint64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := a.db.WithContext(gctx).Model(&dbsql.Like{}).
			Select("post_id, COUNT(*) AS cnt").
			Where("post_id IN ?", ids).
			Group("post_id").
			Scan(&likes).Error
		return errors.Wrap(err, "failed to count likes")
	})
	g.Go(func() error {
		err := a.db.WithContext(gctx).Model(&dbsql.Comment{}).
			Select("post_id, COUNT(*) AS cnt").
			Where("post_id IN ?", ids).
			Group("post_id").
			Scan(&comments).Error
		return errors.Wrap(err, "failed to count comments")
	})
	if viewer.Authenticated {
		g.Go(func() error {
			err := a.db.WithContext(gctx).Model(&dbsql.Like{}).
				Where("user_id = ? AND post_id IN ?", viewer.UserID, ids).
				Pluck("post_id", &liked).Error
			return errors.Wrap(err, "failed to load viewer likes")
		})
	}
	if err := g.Wait(); err != nil {
		return nil, common.Internal(err, "failed to aggregate engagement")
	}

	for _, id := range ids {
		out[id] = Engagement{}
	}
	for _, c := range likes {
		e := out[c.PostID]
		e.LikeCount = c.Cnt
		out[c.PostID] = e
	}
	for _, c := range comments {
		e := out[c.PostID]
		e.CommentCount = c.Cnt
		out[c.PostID] = e
	}
	for _, id := range liked {
		e := out[id]
		e.LikedByViewer = true
		out[id] = e
	}
	return out, nil
}
