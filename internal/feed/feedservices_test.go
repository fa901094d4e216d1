package feed

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodfeed/internal/common"
	"moodfeed/internal/dbsql"
	"moodfeed/internal/events"
)

// memStore is an in-memory PostRepository that evaluates compiled filters
// the way the SQL would.
type memStore struct {
	posts    map[uint64]*dbsql.Post
	users    map[uint64]dbsql.Author
	likes    map[uint64]map[uint64]bool
	comments map[uint64]int64
	nextID   uint64
}

func newMemStore() *memStore {
	return &memStore{
		posts:    map[uint64]*dbsql.Post{},
		users:    map[uint64]dbsql.Author{},
		likes:    map[uint64]map[uint64]bool{},
		comments: map[uint64]int64{},
		nextID:   100,
	}
}

func (m *memStore) addUser(id uint64, name string) {
	m.users[id] = dbsql.Author{ID: id, Username: name, Nickname: name}
}

func (m *memStore) addPost(p dbsql.Post) {
	cp := p
	m.posts[p.ID] = &cp
}

func (m *memStore) like(postID uint64, users ...uint64) {
	if m.likes[postID] == nil {
		m.likes[postID] = map[uint64]bool{}
	}
	for _, u := range users {
		m.likes[postID][u] = true
	}
}

func (m *memStore) Create(_ context.Context, post *dbsql.Post) error {
	m.nextID++
	post.ID = m.nextID
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	m.addPost(*post)
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uint64) (*dbsql.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, common.NotFound("post %d not found", id)
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) Update(_ context.Context, id uint64, patch PostPatch) error {
	p, ok := m.posts[id]
	if !ok {
		return common.NotFound("post %d not found", id)
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.MoodType != nil {
		p.MoodType = *patch.MoodType
	}
	if patch.IsPublic != nil {
		p.IsPublic = *patch.IsPublic
	}
	return nil
}

func (m *memStore) Delete(_ context.Context, id uint64) error {
	if _, ok := m.posts[id]; !ok {
		return common.NotFound("post %d not found", id)
	}
	delete(m.posts, id)
	delete(m.likes, id)
	delete(m.comments, id)
	return nil
}

func (m *memStore) matches(p *dbsql.Post, pred Predicate) bool {
	for _, f := range pred.Filters {
		switch f := f.(type) {
		case OwnerIs:
			if p.UserID != uint64(f) {
				return false
			}
		case MoodIs:
			if p.MoodType != string(f) {
				return false
			}
		case PublicOnly:
			if !p.IsPublic {
				return false
			}
		case KeywordMatch:
			kw := strings.ToLower(string(f))
			loc := ""
			if p.Location != nil {
				loc = strings.ToLower(*p.Location)
			}
			if !strings.Contains(strings.ToLower(p.Content), kw) && !strings.Contains(loc, kw) {
				return false
			}
		case LocationMatch:
			if p.Location == nil || !strings.Contains(strings.ToLower(*p.Location), strings.ToLower(string(f))) {
				return false
			}
		case CreatedSince:
			if p.CreatedAt.Before(time.Time(f)) {
				return false
			}
		}
	}
	return true
}

func (m *memStore) Query(_ context.Context, pred Predicate, policy SortPolicy, window common.PageWindow) ([]dbsql.Post, int64, error) {
	var hits []dbsql.Post
	for _, p := range m.posts {
		if m.matches(p, pred) {
			hits = append(hits, *p)
		}
	}

	score := func(p dbsql.Post) int64 {
		switch policy {
		case SortLikes:
			return int64(len(m.likes[p.ID]))
		case SortComments:
			return m.comments[p.ID]
		}
		return 0
	}
	sort.Slice(hits, func(i, j int) bool {
		if si, sj := score(hits[i]), score(hits[j]); si != sj {
			return si > sj
		}
		if !hits[i].CreatedAt.Equal(hits[j].CreatedAt) {
			return hits[i].CreatedAt.After(hits[j].CreatedAt)
		}
		return hits[i].ID > hits[j].ID
	})

	total := int64(len(hits))
	start := window.Offset()
	if start >= len(hits) {
		return []dbsql.Post{}, total, nil
	}
	end := start + window.Limit()
	if end > len(hits) {
		end = len(hits)
	}
	return hits[start:end], total, nil
}

func (m *memStore) AddLike(_ context.Context, postID, userID uint64) error {
	if m.likes[postID][userID] {
		return common.Conflict("post %d already liked", postID)
	}
	m.like(postID, userID)
	return nil
}

func (m *memStore) RemoveLike(_ context.Context, postID, userID uint64) error {
	if !m.likes[postID][userID] {
		return common.NotFound("like on post %d not found", postID)
	}
	delete(m.likes[postID], userID)
	return nil
}

func (m *memStore) Authors(_ context.Context, ids []uint64) (map[uint64]dbsql.Author, error) {
	out := map[uint64]dbsql.Author{}
	for _, id := range ids {
		if a, ok := m.users[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (m *memStore) UserExists(_ context.Context, id uint64) (bool, error) {
	_, ok := m.users[id]
	return ok, nil
}

func (m *memStore) SquareStats(_ context.Context, todayStart time.Time) (*SquareStats, error) {
	stats := &SquareStats{TotalUsers: int64(len(m.users)), PopularMoods: []MoodCount{}}
	for _, p := range m.posts {
		if !p.IsPublic {
			continue
		}
		stats.TotalPosts++
		if !p.CreatedAt.Before(todayStart) {
			stats.TodayPosts++
		}
	}
	return stats, nil
}

// Annotate makes memStore its own Aggregator.
func (m *memStore) Annotate(_ context.Context, ids []uint64, viewer common.Viewer) (map[uint64]Engagement, error) {
	out := map[uint64]Engagement{}
	for _, id := range ids {
		out[id] = Engagement{
			LikeCount:     int64(len(m.likes[id])),
			CommentCount:  m.comments[id],
			LikedByViewer: viewer.Authenticated && m.likes[id][viewer.UserID],
		}
	}
	return out, nil
}

type recordingPublisher struct {
	events []events.Event
}

func (r *recordingPublisher) Publish(e events.Event) {
	r.events = append(r.events, e)
}

var noon = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func setupFeedService(t *testing.T) (*FeedService, *memStore, *recordingPublisher) {
	t.Helper()
	store := newMemStore()
	store.addUser(1, "alice")
	store.addUser(2, "bob")
	store.addUser(3, "carol")

	pub := &recordingPublisher{}
	log, _ := test.NewNullLogger()
	svc := NewFeedService(store, store, pub, log)
	svc.now = func() time.Time { return noon }
	return svc, store, pub
}

func post(id, owner uint64, public bool, createdAt time.Time, content string) dbsql.Post {
	return dbsql.Post{ID: id, UserID: owner, MoodType: "快乐", Content: content, IsPublic: public, CreatedAt: createdAt, UpdatedAt: createdAt}
}

func ids(items []PostView) []uint64 {
	out := make([]uint64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestFeedService_Trending(t *testing.T) {
	page1 := common.PageWindow{Page: 1, PageSize: 10}

	tests := []struct {
		name      string
		seed      func(*memStore)
		rng       TimeRange
		window    common.PageWindow
		viewer    common.Viewer
		wantIDs   []uint64
		wantTotal int64
		wantPages int
	}{
		{
			name: "ranks by likes within the week",
			seed: func(m *memStore) {
				m.addPost(post(1, 1, true, noon.Add(-2*time.Hour), "P1"))
				m.addPost(post(2, 2, true, noon.Add(-time.Hour), "P2"))
				m.like(1, 1, 2, 3)
				m.like(2, 3)
			},
			rng:       RangeWeek,
			window:    page1,
			viewer:    common.Anonymous(),
			wantIDs:   []uint64{1, 2},
			wantTotal: 2,
			wantPages: 1,
		},
		{
			name: "day range excludes yesterday",
			seed: func(m *memStore) {
				m.addPost(post(1, 1, true, noon.Add(-24*time.Hour), "yesterday"))
				m.addPost(post(2, 1, true, noon.Add(-time.Hour), "today"))
				m.like(1, 2, 3)
			},
			rng:       RangeDay,
			window:    page1,
			viewer:    common.Anonymous(),
			wantIDs:   []uint64{2},
			wantTotal: 1,
			wantPages: 1,
		},
		{
			name: "equal likes fall back to recency",
			seed: func(m *memStore) {
				m.addPost(post(1, 1, true, noon.Add(-3*time.Hour), "older"))
				m.addPost(post(2, 1, true, noon.Add(-time.Hour), "newer"))
				m.like(1, 2)
				m.like(2, 3)
			},
			rng:       RangeWeek,
			window:    page1,
			viewer:    common.Anonymous(),
			wantIDs:   []uint64{2, 1},
			wantTotal: 2,
			wantPages: 1,
		},
		{
			name: "private posts never trend",
			seed: func(m *memStore) {
				m.addPost(post(1, 1, false, noon.Add(-time.Hour), "secret"))
				m.like(1, 1, 2, 3)
			},
			rng:       RangeMonth,
			window:    page1,
			viewer:    common.AsUser(1),
			wantIDs:   []uint64{},
			wantTotal: 0,
			wantPages: 0,
		},
		{
			name: "page past the end is empty with the real total",
			seed: func(m *memStore) {
				m.addPost(post(1, 1, true, noon.Add(-time.Hour), "a"))
				m.addPost(post(2, 1, true, noon.Add(-2*time.Hour), "b"))
				m.addPost(post(3, 1, true, noon.Add(-3*time.Hour), "c"))
			},
			rng:       RangeWeek,
			window:    common.PageWindow{Page: 5, PageSize: 2},
			viewer:    common.Anonymous(),
			wantIDs:   []uint64{},
			wantTotal: 3,
			wantPages: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := setupFeedService(t)
			tt.seed(store)

			got, err := svc.Trending(context.Background(), tt.rng, tt.window, tt.viewer)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, ids(got.Items))
			assert.Equal(t, tt.wantTotal, got.Total)
			assert.Equal(t, tt.wantPages, got.TotalPages)
			assert.NotNil(t, got.Items)
		})
	}
}

func TestFeedService_EngagementPerViewer(t *testing.T) {
	svc, store, _ := setupFeedService(t)
	store.addPost(post(1, 1, true, noon.Add(-time.Hour), "hello"))
	store.like(1, 2, 3)
	store.comments[1] = 4

	anon, err := svc.Latest(context.Background(), common.PageWindow{}, common.Anonymous())
	require.NoError(t, err)
	require.Len(t, anon.Items, 1)
	assert.Equal(t, int64(2), anon.Items[0].LikeCount)
	assert.Equal(t, int64(4), anon.Items[0].CommentCount)
	assert.False(t, anon.Items[0].IsLiked)
	assert.Equal(t, "alice", anon.Items[0].User.Username)
	assert.Equal(t, common.DefaultPageSize, anon.PageSize)

	bob, err := svc.Latest(context.Background(), common.PageWindow{}, common.AsUser(2))
	require.NoError(t, err)
	assert.True(t, bob.Items[0].IsLiked)
}

func TestFeedService_ListUserPosts(t *testing.T) {
	window := common.PageWindow{Page: 1, PageSize: 10}

	tests := []struct {
		name           string
		owner          uint64
		includePrivate bool
		viewer         common.Viewer
		wantIDs        []uint64
		wantKind       common.ErrorKind
	}{
		{name: "owner sees private posts", owner: 1, includePrivate: true, viewer: common.AsUser(1), wantIDs: []uint64{2, 1}},
		{name: "owner without the flag sees public only", owner: 1, viewer: common.AsUser(1), wantIDs: []uint64{1}},
		{name: "flag is ignored for other viewers", owner: 1, includePrivate: true, viewer: common.AsUser(2), wantIDs: []uint64{1}},
		{name: "anonymous viewer", owner: 1, includePrivate: true, viewer: common.Anonymous(), wantIDs: []uint64{1}},
		{name: "unknown user", owner: 42, viewer: common.Anonymous(), wantKind: common.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := setupFeedService(t)
			store.addPost(post(1, 1, true, noon.Add(-2*time.Hour), "public"))
			store.addPost(post(2, 1, false, noon.Add(-time.Hour), "private"))
			store.addPost(post(3, 2, true, noon.Add(-time.Hour), "other"))

			got, err := svc.ListUserPosts(context.Background(), tt.owner, tt.includePrivate, window, tt.viewer)
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, common.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, ids(got.Items))
		})
	}
}

func TestFeedService_Search(t *testing.T) {
	seaside := "Seaside Town"

	tests := []struct {
		name     string
		query    SearchQuery
		wantIDs  []uint64
		wantKind common.ErrorKind
	}{
		{name: "no criteria", query: SearchQuery{Keyword: "  "}, wantKind: common.KindValidation},
		{name: "keyword matches content case-insensitively", query: SearchQuery{Keyword: "SUNNY"}, wantIDs: []uint64{1}},
		{name: "keyword matches location", query: SearchQuery{Keyword: "seaside"}, wantIDs: []uint64{2}},
		{name: "location only", query: SearchQuery{Location: "town"}, wantIDs: []uint64{2}},
		{name: "mood only", query: SearchQuery{Mood: "平静"}, wantIDs: []uint64{2}},
		{name: "private posts are not searched", query: SearchQuery{Keyword: "diary"}, wantIDs: []uint64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := setupFeedService(t)
			store.addPost(post(1, 1, true, noon.Add(-3*time.Hour), "a sunny walk"))
			p2 := post(2, 2, true, noon.Add(-2*time.Hour), "waves")
			p2.MoodType = "平静"
			p2.Location = &seaside
			store.addPost(p2)
			store.addPost(post(3, 1, false, noon.Add(-time.Hour), "private diary"))

			got, err := svc.Search(context.Background(), tt.query, common.AsUser(1))
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, common.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, ids(got.Items))
		})
	}
}

func TestFeedService_GetPostVisibility(t *testing.T) {
	svc, store, _ := setupFeedService(t)
	store.addPost(post(1, 1, false, noon, "mine"))

	_, err := svc.GetPost(context.Background(), 1, common.AsUser(2))
	assert.True(t, errors.Is(err, common.ErrNotFound))

	_, err = svc.GetPost(context.Background(), 1, common.Anonymous())
	assert.True(t, errors.Is(err, common.ErrNotFound))

	got, err := svc.GetPost(context.Background(), 1, common.AsUser(1))
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Content)
}

func TestFeedService_Mutations(t *testing.T) {
	edited := "edited"
	empty := "   "

	tests := []struct {
		name     string
		run      func(*FeedService) error
		wantKind common.ErrorKind
	}{
		{
			name: "owner updates",
			run: func(s *FeedService) error {
				_, err := s.UpdatePost(context.Background(), 1, 1, PostPatch{Content: &edited})
				return err
			},
		},
		{
			name: "non-owner update is forbidden",
			run: func(s *FeedService) error {
				_, err := s.UpdatePost(context.Background(), 2, 1, PostPatch{Content: &edited})
				return err
			},
			wantKind: common.KindForbidden,
		},
		{
			name: "empty patch",
			run: func(s *FeedService) error {
				_, err := s.UpdatePost(context.Background(), 1, 1, PostPatch{})
				return err
			},
			wantKind: common.KindValidation,
		},
		{
			name: "blank content",
			run: func(s *FeedService) error {
				_, err := s.UpdatePost(context.Background(), 1, 1, PostPatch{Content: &empty})
				return err
			},
			wantKind: common.KindValidation,
		},
		{
			name: "non-owner delete is forbidden",
			run: func(s *FeedService) error {
				return s.DeletePost(context.Background(), 2, 1)
			},
			wantKind: common.KindForbidden,
		},
		{
			name: "private post of another user looks missing",
			run: func(s *FeedService) error {
				return s.DeletePost(context.Background(), 2, 5)
			},
			wantKind: common.KindNotFound,
		},
		{
			name: "owner deletes",
			run: func(s *FeedService) error {
				return s.DeletePost(context.Background(), 1, 1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := setupFeedService(t)
			store.addPost(post(1, 1, true, noon, "original"))
			store.addPost(post(5, 1, false, noon, "hidden"))

			err := tt.run(svc)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, common.KindOf(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestFeedService_CreatePost(t *testing.T) {
	svc, store, pub := setupFeedService(t)
	private := false

	got, err := svc.CreatePost(context.Background(), 1, PostInput{MoodType: "快乐", Content: "hi", IsPublic: &private})
	require.NoError(t, err)
	assert.False(t, got.IsPublic)
	assert.Equal(t, []string{}, got.Tags)
	assert.Equal(t, "alice", got.User.Username)
	assert.Contains(t, store.posts, got.ID)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.PostCreated, pub.events[0].Type)
	assert.Equal(t, got.ID, pub.events[0].SubjectID)

	_, err = svc.CreatePost(context.Background(), 1, PostInput{MoodType: "快乐", Content: "  "})
	assert.Equal(t, common.KindValidation, common.KindOf(err))
}

func TestFeedService_Likes(t *testing.T) {
	svc, store, pub := setupFeedService(t)
	store.addPost(post(1, 1, true, noon, "likeable"))
	store.addPost(post(2, 1, false, noon, "hidden"))
	ctx := context.Background()

	require.NoError(t, svc.LikePost(ctx, 2, 1))
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.PostLiked, pub.events[0].Type)
	assert.Equal(t, uint64(1), pub.events[0].TargetID)

	err := svc.LikePost(ctx, 2, 1)
	assert.Equal(t, common.KindConflict, common.KindOf(err))

	err = svc.LikePost(ctx, 2, 2)
	assert.Equal(t, common.KindNotFound, common.KindOf(err))

	require.NoError(t, svc.UnlikePost(ctx, 2, 1))
	err = svc.UnlikePost(ctx, 2, 1)
	assert.Equal(t, common.KindNotFound, common.KindOf(err))
}

func TestFeedService_SquareStats(t *testing.T) {
	svc, store, _ := setupFeedService(t)
	store.addPost(post(1, 1, true, noon.Add(-time.Hour), "today"))
	store.addPost(post(2, 1, true, noon.Add(-36*time.Hour), "earlier"))
	store.addPost(post(3, 1, false, noon, "private"))

	stats, err := svc.SquareStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalPosts)
	assert.Equal(t, int64(1), stats.TodayPosts)
	assert.Equal(t, int64(3), stats.TotalUsers)
}
