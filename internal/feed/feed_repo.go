package feed

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"moodfeed/internal/common"
	"moodfeed/internal/dbsql"
)

type PostRepository interface {
	Create(ctx context.Context, post *dbsql.Post) error
	GetByID(ctx context.Context, id uint64) (*dbsql.Post, error)
	Update(ctx context.Context, id uint64, patch PostPatch) error
	Delete(ctx context.Context, id uint64) error

	// Query runs one listing: the count and the page share pred.
	Query(ctx context.Context, pred Predicate, sort SortPolicy, window common.PageWindow) ([]dbsql.Post, int64, error)

	AddLike(ctx context.Context, postID, userID uint64) error
	RemoveLike(ctx context.Context, postID, userID uint64) error

	Authors(ctx context.Context, userIDs []uint64) (map[uint64]dbsql.Author, error)
	UserExists(ctx context.Context, userID uint64) (bool, error)
	SquareStats(ctx context.Context, todayStart time.Time) (*SquareStats, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *dbsql.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return common.Internal(errors.Wrap(err, "insert post"), "failed to create post")
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint64) (*dbsql.Post, error) {
	var post dbsql.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if err != nil {
		if dbsql.IsNotFound(err) {
			return nil, common.NotFound("post %d not found", id)
		}
		return nil, common.Internal(errors.Wrap(err, "select post"), "failed to get post")
	}
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, id uint64, patch PostPatch) error {
	cols := patch.columns()
	if len(cols) == 0 {
		return common.Validation("no fields to update")
	}

	result := r.db.WithContext(ctx).Model(&dbsql.Post{}).Where("id = ?", id).Updates(cols)
	if result.Error != nil {
		return common.Internal(errors.Wrap(result.Error, "update post"), "failed to update post")
	}
	if result.RowsAffected == 0 {
		return common.NotFound("post %d not found", id)
	}
	return nil
}

// Delete removes the post with its likes and comments in one transaction.
func (r *postRepository) Delete(ctx context.Context, id uint64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&dbsql.Like{}).Error; err != nil {
			return errors.Wrap(err, "delete likes")
		}
		if err := tx.Where("post_id = ?", id).Delete(&dbsql.Comment{}).Error; err != nil {
			return errors.Wrap(err, "delete comments")
		}
		result := tx.Where("id = ?", id).Delete(&dbsql.Post{})
		if result.Error != nil {
			return errors.Wrap(result.Error, "delete post")
		}
		if result.RowsAffected == 0 {
			return common.NotFound("post %d not found", id)
		}
		return nil
	})
	return common.Internal(err, "failed to delete post")
}

func (r *postRepository) scoped(ctx context.Context, pred Predicate) *gorm.DB {
	q := r.db.WithContext(ctx).Table("posts AS p")
	if !pred.Empty() {
		q = q.Where(pred.SQL, pred.Args...)
	}
	return q
}

func (r *postRepository) Query(ctx context.Context, pred Predicate, sort SortPolicy, window common.PageWindow) ([]dbsql.Post, int64, error) {
	var total int64
	if err := r.scoped(ctx, pred).Count(&total).Error; err != nil {
		return nil, 0, common.Internal(errors.Wrap(err, "count posts"), "failed to list posts")
	}

	posts := []dbsql.Post{}
	if window.PastEnd(total) {
		return posts, total, nil
	}

	q := sort.apply(r.scoped(ctx, pred).Select("p.*"))
	err := q.Limit(window.Limit()).Offset(window.Offset()).Find(&posts).Error
	if err != nil {
		return nil, 0, common.Internal(errors.Wrap(err, "select posts"), "failed to list posts")
	}
	return posts, total, nil
}

func (r *postRepository) AddLike(ctx context.Context, postID, userID uint64) error {
	like := &dbsql.Like{PostID: postID, UserID: userID}
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		if dbsql.IsUniqueViolation(err) {
			return common.Conflict("post %d already liked", postID)
		}
		return common.Internal(errors.Wrap(err, "insert like"), "failed to like post")
	}
	return nil
}

func (r *postRepository) RemoveLike(ctx context.Context, postID, userID uint64) error {
	result := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&dbsql.Like{})
	if result.Error != nil {
		return common.Internal(errors.Wrap(result.Error, "delete like"), "failed to unlike post")
	}
	if result.RowsAffected == 0 {
		return common.NotFound("like on post %d not found", postID)
	}
	return nil
}

func (r *postRepository) Authors(ctx context.Context, userIDs []uint64) (map[uint64]dbsql.Author, error) {
	authors, err := dbsql.LoadAuthors(ctx, r.db, userIDs)
	if err != nil {
		return nil, common.Internal(err, "failed to load authors")
	}
	return authors, nil
}

func (r *postRepository) UserExists(ctx context.Context, userID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbsql.User{}).Where("id = ?", userID).Count(&count).Error
	if err != nil {
		return false, common.Internal(errors.Wrap(err, "count users"), "failed to check user")
	}
	return count > 0, nil
}

func (r *postRepository) SquareStats(ctx context.Context, todayStart time.Time) (*SquareStats, error) {
	stats := &SquareStats{PopularMoods: []MoodCount{}}
	db := r.db.WithContext(ctx)

	var counts struct {
		TotalPosts int64
		TodayPosts int64
	}
	err := db.Model(&dbsql.Post{}).
		Select("COUNT(*) AS total_posts, COUNT(CASE WHEN created_at >= ? THEN 1 END) AS today_posts", todayStart).
		Where("is_public = ?", true).
		Scan(&counts).Error
	if err != nil {
		return nil, common.Internal(errors.Wrap(err, "count public posts"), "failed to load square stats")
	}
	stats.TotalPosts = counts.TotalPosts
	stats.TodayPosts = counts.TodayPosts

	if err := db.Model(&dbsql.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, common.Internal(errors.Wrap(err, "count users"), "failed to load square stats")
	}

	err = db.Model(&dbsql.Post{}).
		Select("mood_type, COUNT(*) AS count").
		Where("is_public = ?", true).
		Group("mood_type").
		Order("count DESC, mood_type ASC").
		Limit(5).
		Scan(&stats.PopularMoods).Error
	if err != nil {
		return nil, common.Internal(errors.Wrap(err, "count moods"), "failed to load square stats")
	}
	return stats, nil
}
