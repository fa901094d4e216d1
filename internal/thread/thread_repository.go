package thread

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"moodfeed/internal/common"
	"moodfeed/internal/dbsql"
)

// PostRef is the part of a post that decides who may see its comments.
type PostRef struct {
	ID       uint64
	UserID   uint64
	IsPublic bool
}

type CommentRepository interface {
	Post(ctx context.Context, postID uint64) (*PostRef, error)
	Create(ctx context.Context, c *dbsql.Comment) error
	GetByID(ctx context.Context, id uint64) (*dbsql.Comment, error)

	// TopLevel pages the comments of a post that have no parent, oldest first.
	TopLevel(ctx context.Context, postID uint64, window common.PageWindow) ([]dbsql.Comment, int64, error)
	// Replies returns at most perParent replies of each parent, oldest first.
	Replies(ctx context.Context, parentIDs []uint64, perParent int) ([]dbsql.Comment, error)
	// DeleteTree removes a comment and every descendant reply, deepest level
	// first, and reports how many rows went away.
	DeleteTree(ctx context.Context, id uint64) (int64, error)

	Authors(ctx context.Context, userIDs []uint64) (map[uint64]dbsql.Author, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Post(ctx context.Context, postID uint64) (*PostRef, error) {
	var ref PostRef
	result := r.db.WithContext(ctx).Model(&dbsql.Post{}).
		Select("id, user_id, is_public").
		Where("id = ?", postID).
		Limit(1).
		Scan(&ref)
	if result.Error != nil {
		return nil, common.Internal(errors.Wrap(result.Error, "select post"), "failed to load post")
	}
	if result.RowsAffected == 0 {
		return nil, common.NotFound("post %d not found", postID)
	}
	return &ref, nil
}

func (r *commentRepository) Create(ctx context.Context, c *dbsql.Comment) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return common.Internal(errors.Wrap(err, "insert comment"), "failed to add comment")
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint64) (*dbsql.Comment, error) {
	var c dbsql.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		if dbsql.IsNotFound(err) {
			return nil, common.NotFound("comment %d not found", id)
		}
		return nil, common.Internal(errors.Wrap(err, "select comment"), "failed to get comment")
	}
	return &c, nil
}

func (r *commentRepository) TopLevel(ctx context.Context, postID uint64, window common.PageWindow) ([]dbsql.Comment, int64, error) {
	scope := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&dbsql.Comment{}).Where("post_id = ? AND parent_id IS NULL", postID)
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, common.Internal(errors.Wrap(err, "count comments"), "failed to list comments")
	}

	comments := []dbsql.Comment{}
	if window.PastEnd(total) {
		return comments, total, nil
	}

	err := scope().
		Order("created_at ASC, id ASC").
		Limit(window.Limit()).
		Offset(window.Offset()).
		Find(&comments).Error
	if err != nil {
		return nil, 0, common.Internal(errors.Wrap(err, "select comments"), "failed to list comments")
	}
	return comments, total, nil
}

const repliesQuery = `SELECT id, post_id, user_id, parent_id, content, created_at, updated_at FROM (
	SELECT c.*, ROW_NUMBER() OVER (PARTITION BY c.parent_id ORDER BY c.created_at ASC, c.id ASC) AS rn
	FROM post_comments c
	WHERE c.parent_id IN ?
) ranked WHERE rn <= ? ORDER BY parent_id ASC, created_at ASC, id ASC`

func (r *commentRepository) Replies(ctx context.Context, parentIDs []uint64, perParent int) ([]dbsql.Comment, error) {
	replies := []dbsql.Comment{}
	ids := dbsql.UniqueIDs(parentIDs)
	if len(ids) == 0 || perParent <= 0 {
		return replies, nil
	}

	if err := r.db.WithContext(ctx).Raw(repliesQuery, ids, perParent).Scan(&replies).Error; err != nil {
		return nil, common.Internal(errors.Wrap(err, "select replies"), "failed to list replies")
	}
	return replies, nil
}

func (r *commentRepository) DeleteTree(ctx context.Context, id uint64) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		levels := [][]uint64{{id}}
		for {
			var children []uint64
			err := tx.Model(&dbsql.Comment{}).
				Where("parent_id IN ?", levels[len(levels)-1]).
				Pluck("id", &children).Error
			if err != nil {
				return errors.Wrap(err, "collect replies")
			}
			if len(children) == 0 {
				break
			}
			levels = append(levels, children)
		}

		for i := len(levels) - 1; i >= 0; i-- {
			result := tx.Where("id IN ?", levels[i]).Delete(&dbsql.Comment{})
			if result.Error != nil {
				return errors.Wrap(result.Error, "delete comments")
			}
			deleted += result.RowsAffected
		}
		if deleted == 0 {
			return common.NotFound("comment %d not found", id)
		}
		return nil
	})
	if err != nil {
		return 0, common.Internal(err, "failed to delete comment")
	}
	return deleted, nil
}

func (r *commentRepository) Authors(ctx context.Context, userIDs []uint64) (map[uint64]dbsql.Author, error) {
	authors, err := dbsql.LoadAuthors(ctx, r.db, userIDs)
	if err != nil {
		return nil, common.Internal(err, "failed to load authors")
	}
	return authors, nil
}
