package social

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"moodfeed/internal/common"
	"moodfeed/internal/dbsql"
)

// FollowCounts are the derived edge counts for one user.
type FollowCounts struct {
	FollowingCount int64 `json:"followingCount"`
	FollowerCount  int64 `json:"followerCount"`
}

// ContentStats are the derived post and engagement counts for one user.
type ContentStats struct {
	PostCount        int64 `json:"postCount"`
	PublicPostCount  int64 `json:"publicPostCount"`
	LikesReceived    int64 `json:"likesReceived"`
	CommentsAuthored int64 `json:"commentsAuthored"`
}

type MoodCount struct {
	MoodType string `json:"moodType"`
	Count    int64  `json:"count"`
}

// FollowedUser is one side of a follow edge with the time it was created.
type FollowedUser struct {
	ID         uint64    `json:"id"`
	Username   string    `json:"username"`
	Nickname   string    `json:"nickname"`
	AvatarURL  *string   `json:"avatarUrl"`
	FollowedAt time.Time `json:"followedAt"`
}

type FollowRepository interface {
	Create(ctx context.Context, follow *dbsql.Follow) error
	Delete(ctx context.Context, followerID, followingID uint64) error
	Exists(ctx context.Context, followerID, followingID uint64) (bool, error)
	Counts(ctx context.Context, userID uint64) (FollowCounts, error)
	Following(ctx context.Context, userID uint64, window common.PageWindow) ([]FollowedUser, int64, error)
	Followers(ctx context.Context, userID uint64, window common.PageWindow) ([]FollowedUser, int64, error)

	UserExists(ctx context.Context, userID uint64) (bool, error)
	ContentStats(ctx context.Context, userID uint64) (ContentStats, error)
	MoodDistribution(ctx context.Context, userID uint64) ([]MoodCount, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create relies on the unique (follower_id, following_id) index to reject
// duplicates, including concurrent ones.
func (r *followRepository) Create(ctx context.Context, follow *dbsql.Follow) error {
	err := r.db.WithContext(ctx).Create(follow).Error
	if err != nil {
		if dbsql.IsUniqueViolation(err) {
			return common.Conflict("already following user %d", follow.FollowingID)
		}
		return common.Internal(errors.Wrap(err, "insert follow"), "failed to follow user")
	}
	return nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID uint64) error {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&dbsql.Follow{})
	if result.Error != nil {
		return common.Internal(errors.Wrap(result.Error, "delete follow"), "failed to unfollow user")
	}
	if result.RowsAffected == 0 {
		return common.NotFound("not following user %d", followingID)
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&dbsql.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, common.Internal(errors.Wrap(err, "count follow"), "failed to check follow status")
	}
	return count > 0, nil
}

const countsQuery = `SELECT
	COUNT(CASE WHEN follower_id = ? THEN 1 END) AS following_count,
	COUNT(CASE WHEN following_id = ? THEN 1 END) AS follower_count
FROM follows
WHERE follower_id = ? OR following_id = ?`

// Counts reads both edge directions in a single pass over follows.
func (r *followRepository) Counts(ctx context.Context, userID uint64) (FollowCounts, error) {
	var counts FollowCounts
	err := r.db.WithContext(ctx).Raw(countsQuery, userID, userID, userID, userID).Scan(&counts).Error
	if err != nil {
		return FollowCounts{}, common.Internal(errors.Wrap(err, "count follows"), "failed to load follow stats")
	}
	return counts, nil
}

func (r *followRepository) Following(ctx context.Context, userID uint64, window common.PageWindow) ([]FollowedUser, int64, error) {
	return r.edges(ctx, "follower_id", "following_id", userID, window)
}

func (r *followRepository) Followers(ctx context.Context, userID uint64, window common.PageWindow) ([]FollowedUser, int64, error) {
	return r.edges(ctx, "following_id", "follower_id", userID, window)
}

// edges lists the users on the other end of userID's edges, newest first.
// self and other are fixed column names, never user input.
func (r *followRepository) edges(ctx context.Context, self, other string, userID uint64, window common.PageWindow) ([]FollowedUser, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&dbsql.Follow{}).Where(self+" = ?", userID).Count(&total).Error
	if err != nil {
		return nil, 0, common.Internal(errors.Wrap(err, "count follows"), "failed to list follows")
	}

	users := []FollowedUser{}
	if window.PastEnd(total) {
		return users, total, nil
	}

	err = r.db.WithContext(ctx).Table("follows AS f").
		Select("u.id, u.username, u.nickname, u.avatar_url, f.created_at AS followed_at").
		Joins("JOIN users AS u ON u.id = f."+other).
		Where("f."+self+" = ?", userID).
		Order("f.created_at DESC, f.id DESC").
		Limit(window.Limit()).
		Offset(window.Offset()).
		Scan(&users).Error
	if err != nil {
		return nil, 0, common.Internal(errors.Wrap(err, "select follows"), "failed to list follows")
	}
	return users, total, nil
}

func (r *followRepository) UserExists(ctx context.Context, userID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbsql.User{}).Where("id = ?", userID).Count(&count).Error
	if err != nil {
		return false, common.Internal(errors.Wrap(err, "count users"), "failed to check user")
	}
	return count > 0, nil
}

const contentStatsQuery = `SELECT
	(SELECT COUNT(*) FROM posts WHERE user_id = ?) AS post_count,
	(SELECT COUNT(*) FROM posts WHERE user_id = ? AND is_public = ?) AS public_post_count,
	(SELECT COUNT(*) FROM post_likes AS l JOIN posts AS p ON p.id = l.post_id WHERE p.user_id = ?) AS likes_received,
	(SELECT COUNT(*) FROM post_comments WHERE user_id = ?) AS comments_authored`

func (r *followRepository) ContentStats(ctx context.Context, userID uint64) (ContentStats, error) {
	var stats ContentStats
	err := r.db.WithContext(ctx).
		Raw(contentStatsQuery, userID, userID, true, userID, userID).
		Scan(&stats).Error
	if err != nil {
		return ContentStats{}, common.Internal(errors.Wrap(err, "count content"), "failed to load user stats")
	}
	return stats, nil
}

func (r *followRepository) MoodDistribution(ctx context.Context, userID uint64) ([]MoodCount, error) {
	moods := []MoodCount{}
	err := r.db.WithContext(ctx).Model(&dbsql.Post{}).
		Select("mood_type, COUNT(*) AS count").
		Where("user_id = ? AND is_public = ?", userID, true).
		Group("mood_type").
		Order("count DESC, mood_type ASC").
		Scan(&moods).Error
	if err != nil {
		return nil, common.Internal(errors.Wrap(err, "count moods"), "failed to load user stats")
	}
	return moods, nil
}
