package feed

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"moodfeed/internal/common"
	"moodfeed/internal/dbsql"
	"moodfeed/internal/events"
)

// ListQuery drives the global feed. Zero fields are not filtered on.
type ListQuery struct {
	OwnerID uint64
	Mood    string
	Keyword string
	Window  common.PageWindow
}

// SearchQuery needs at least one of Keyword, Mood or Location.
type SearchQuery struct {
	Keyword  string
	Mood     string
	Location string
	Sort     SortPolicy
	Window   common.PageWindow
}

type FeedService struct {
	posts     PostRepository
	agg       Aggregator
	publisher events.Publisher
	log       *logrus.Logger
	now       func() time.Time
}

func NewFeedService(posts PostRepository, agg Aggregator, publisher events.Publisher, log *logrus.Logger) *FeedService {
	return &FeedService{
		posts:     posts,
		agg:       agg,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// --------- LISTINGS ---------

// ListPosts is the global feed: public posts, newest first.
func (s *FeedService) ListPosts(ctx context.Context, q ListQuery, viewer common.Viewer) (common.Paged[PostView], error) {
	filters := []Filter{PublicOnly{}}
	if q.OwnerID != 0 {
		filters = append(filters, OwnerIs(q.OwnerID))
	}
	if q.Mood != "" {
		filters = append(filters, MoodIs(q.Mood))
	}
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		filters = append(filters, KeywordMatch(kw))
	}
	return s.list(ctx, filters, SortRecent, q.Window, viewer)
}

// ListUserPosts lists one user's posts. includePrivate only takes effect
// when the viewer is that user.
func (s *FeedService) ListUserPosts(ctx context.Context, ownerID uint64, includePrivate bool, window common.PageWindow, viewer common.Viewer) (common.Paged[PostView], error) {
	exists, err := s.posts.UserExists(ctx, ownerID)
	if err != nil {
		return common.Paged[PostView]{}, err
	}
	if !exists {
		return common.Paged[PostView]{}, common.NotFound("user %d not found", ownerID)
	}

	filters := []Filter{OwnerIs(ownerID)}
	if !includePrivate || !viewer.Is(ownerID) {
		filters = append(filters, PublicOnly{})
	}
	return s.list(ctx, filters, SortRecent, window, viewer)
}

func (s *FeedService) Latest(ctx context.Context, window common.PageWindow, viewer common.Viewer) (common.Paged[PostView], error) {
	return s.list(ctx, []Filter{PublicOnly{}}, SortRecent, window, viewer)
}

// Trending ranks public posts inside the time range by likes, then recency.
func (s *FeedService) Trending(ctx context.Context, r TimeRange, window common.PageWindow, viewer common.Viewer) (common.Paged[PostView], error) {
	filters := []Filter{PublicOnly{}, CreatedSince(r.Since(s.now()))}
	return s.list(ctx, filters, SortLikes, window, viewer)
}

func (s *FeedService) Search(ctx context.Context, q SearchQuery, viewer common.Viewer) (common.Paged[PostView], error) {
	keyword := strings.TrimSpace(q.Keyword)
	location := strings.TrimSpace(q.Location)
	if keyword == "" && q.Mood == "" && location == "" {
		return common.Paged[PostView]{}, common.Validation("search needs a keyword, mood type or location")
	}

	filters := []Filter{PublicOnly{}}
	if keyword != "" {
		filters = append(filters, KeywordMatch(keyword))
	}
	if q.Mood != "" {
		filters = append(filters, MoodIs(q.Mood))
	}
	if location != "" {
		filters = append(filters, LocationMatch(location))
	}
	return s.list(ctx, filters, q.Sort, q.Window, viewer)
}

func (s *FeedService) list(ctx context.Context, filters []Filter, sort SortPolicy, window common.PageWindow, viewer common.Viewer) (common.Paged[PostView], error) {
	window = common.NewPageWindow(window.Page, window.PageSize, common.DefaultPageSize)
	pred := Compile(filters...)
	s.log.WithFields(logrus.Fields{
		"where": pred.SQL,
		"sort":  sort.String(),
		"page":  window.Page,
	}).Debug("listing posts")

	posts, total, err := s.posts.Query(ctx, pred, sort, window)
	if err != nil {
		return common.Paged[PostView]{}, err
	}

	views, err := s.annotate(ctx, posts, viewer)
	if err != nil {
		return common.Paged[PostView]{}, err
	}
	return common.NewPaged(views, total, window), nil
}

// annotate attaches authors and engagement, keeping the order of posts.
func (s *FeedService) annotate(ctx context.Context, posts []dbsql.Post, viewer common.Viewer) ([]PostView, error) {
	views := make([]PostView, 0, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	postIDs := make([]uint64, len(posts))
	userIDs := make([]uint64, len(posts))
	for i := range posts {
		postIDs[i] = posts[i].ID
		userIDs[i] = posts[i].UserID
	}

	engagement, err := s.agg.Annotate(ctx, postIDs, viewer)
	if err != nil {
		return nil, err
	}
	authors, err := s.posts.Authors(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	for i := range posts {
		views = append(views, newPostView(&posts[i], authors[posts[i].UserID], engagement[posts[i].ID]))
	}
	return views, nil
}

// --------- POSTS ---------

func (s *FeedService) CreatePost(ctx context.Context, authorID uint64, in PostInput) (*PostView, error) {
	post := in.toModel(authorID)
	if strings.TrimSpace(post.Content) == "" {
		return nil, common.Validation("content is required")
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	s.publisher.Publish(events.New(events.PostCreated, authorID, authorID, post.ID))
	s.log.WithFields(logrus.Fields{"post_id": post.ID, "user_id": authorID}).Info("post created")

	views, err := s.annotate(ctx, []dbsql.Post{*post}, common.AsUser(authorID))
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// visiblePost loads a post the viewer may see. Private posts of other users
// are reported as missing.
func (s *FeedService) visiblePost(ctx context.Context, id uint64, viewer common.Viewer) (*dbsql.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsPublic && !viewer.Is(post.UserID) {
		return nil, common.NotFound("post %d not found", id)
	}
	return post, nil
}

func (s *FeedService) GetPost(ctx context.Context, id uint64, viewer common.Viewer) (*PostView, error) {
	post, err := s.visiblePost(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	views, err := s.annotate(ctx, []dbsql.Post{*post}, viewer)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ownedPost loads a post the actor may mutate.
func (s *FeedService) ownedPost(ctx context.Context, id, actorID uint64) (*dbsql.Post, error) {
	post, err := s.visiblePost(ctx, id, common.AsUser(actorID))
	if err != nil {
		return nil, err
	}
	if post.UserID != actorID {
		return nil, common.Forbidden("post %d belongs to another user", id)
	}
	return post, nil
}

func (s *FeedService) UpdatePost(ctx context.Context, actorID, id uint64, patch PostPatch) (*PostView, error) {
	if patch.IsEmpty() {
		return nil, common.Validation("no fields to update")
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return nil, common.Validation("content cannot be empty")
	}
	if _, err := s.ownedPost(ctx, id, actorID); err != nil {
		return nil, err
	}
	if err := s.posts.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.GetPost(ctx, id, common.AsUser(actorID))
}

func (s *FeedService) DeletePost(ctx context.Context, actorID, id uint64) error {
	if _, err := s.ownedPost(ctx, id, actorID); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"post_id": id, "user_id": actorID}).Info("post deleted")
	return nil
}

// --------- LIKES ---------

func (s *FeedService) LikePost(ctx context.Context, actorID, postID uint64) error {
	post, err := s.visiblePost(ctx, postID, common.AsUser(actorID))
	if err != nil {
		return err
	}
	if err := s.posts.AddLike(ctx, postID, actorID); err != nil {
		return err
	}
	s.publisher.Publish(events.New(events.PostLiked, actorID, post.UserID, postID))
	return nil
}

func (s *FeedService) UnlikePost(ctx context.Context, actorID, postID uint64) error {
	return s.posts.RemoveLike(ctx, postID, actorID)
}

// --------- SQUARE ---------

func (s *FeedService) SquareStats(ctx context.Context) (*SquareStats, error) {
	return s.posts.SquareStats(ctx, startOfDay(s.now()))
}
