package thread

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"moodfeed/internal/common"
	"moodfeed/internal/dbsql"
	"moodfeed/internal/events"
)

const (
	// ReplyLimit is how many replies are embedded under each top-level
	// comment. The oldest replies are kept.
	ReplyLimit = 5

	maxCommentLength = 500
)

type CommentView struct {
	ID        uint64       `json:"id"`
	PostID    uint64       `json:"postId"`
	UserID    uint64       `json:"userId"`
	ParentID  *uint64      `json:"parentId"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	User      dbsql.Author `json:"user"`
}

// Thread is a top-level comment with its first replies.
type Thread struct {
	CommentView
	Replies []CommentView `json:"replies"`
}

type CommentInput struct {
	Content  string  `json:"content" validate:"required"`
	ParentID *uint64 `json:"parentId" validate:"omitempty,gt=0"`
}

func newCommentView(c *dbsql.Comment, author dbsql.Author) CommentView {
	if author.ID == 0 {
		author.ID = c.UserID
	}
	return CommentView{
		ID:        c.ID,
		PostID:    c.PostID,
		UserID:    c.UserID,
		ParentID:  c.ParentID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		User:      author,
	}
}

type ThreadService struct {
	comments  CommentRepository
	publisher events.Publisher
	log       *logrus.Logger
}

func NewThreadService(comments CommentRepository, publisher events.Publisher, log *logrus.Logger) *ThreadService {
	return &ThreadService{comments: comments, publisher: publisher, log: log}
}

// visiblePost hides private posts of other users behind NotFound.
func (s *ThreadService) visiblePost(ctx context.Context, postID uint64, viewer common.Viewer) (*PostRef, error) {
	post, err := s.comments.Post(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsPublic && !viewer.Is(post.UserID) {
		return nil, common.NotFound("post %d not found", postID)
	}
	return post, nil
}

func (s *ThreadService) ListComments(ctx context.Context, postID uint64, window common.PageWindow, viewer common.Viewer) (common.Paged[Thread], error) {
	window = common.NewPageWindow(window.Page, window.PageSize, common.DefaultPageSize)
	if _, err := s.visiblePost(ctx, postID, viewer); err != nil {
		return common.Paged[Thread]{}, err
	}

	top, total, err := s.comments.TopLevel(ctx, postID, window)
	if err != nil {
		return common.Paged[Thread]{}, err
	}
	if len(top) == 0 {
		return common.NewPaged([]Thread{}, total, window), nil
	}

	parentIDs := make([]uint64, len(top))
	userIDs := make([]uint64, 0, len(top))
	for i := range top {
		parentIDs[i] = top[i].ID
		userIDs = append(userIDs, top[i].UserID)
	}

	replies, err := s.comments.Replies(ctx, parentIDs, ReplyLimit)
	if err != nil {
		return common.Paged[Thread]{}, err
	}
	for i := range replies {
		userIDs = append(userIDs, replies[i].UserID)
	}

	authors, err := s.comments.Authors(ctx, userIDs)
	if err != nil {
		return common.Paged[Thread]{}, err
	}

	byParent := make(map[uint64][]CommentView, len(top))
	for i := range replies {
		rp := &replies[i]
		if rp.ParentID == nil || len(byParent[*rp.ParentID]) >= ReplyLimit {
			continue
		}
		byParent[*rp.ParentID] = append(byParent[*rp.ParentID], newCommentView(rp, authors[rp.UserID]))
	}

	threads := make([]Thread, 0, len(top))
	for i := range top {
		kids := byParent[top[i].ID]
		if kids == nil {
			kids = []CommentView{}
		}
		threads = append(threads, Thread{
			CommentView: newCommentView(&top[i], authors[top[i].UserID]),
			Replies:     kids,
		})
	}
	return common.NewPaged(threads, total, window), nil
}

func (s *ThreadService) AddComment(ctx context.Context, actorID, postID uint64, in CommentInput) (*CommentView, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, common.Validation("comment content cannot be empty")
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return nil, common.Validation("comment content must be at most %d characters", maxCommentLength)
	}

	post, err := s.visiblePost(ctx, postID, common.AsUser(actorID))
	if err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		parent, err := s.comments.GetByID(ctx, *in.ParentID)
		if err != nil {
			if common.KindOf(err) == common.KindNotFound {
				return nil, common.NotFound("parent comment %d not found", *in.ParentID)
			}
			return nil, err
		}
		if parent.PostID != postID {
			return nil, common.NotFound("parent comment %d not found", *in.ParentID)
		}
	}

	c := &dbsql.Comment{PostID: postID, UserID: actorID, ParentID: in.ParentID, Content: content}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	s.publisher.Publish(events.New(events.CommentCreated, actorID, post.UserID, c.ID))
	s.log.WithFields(logrus.Fields{"comment_id": c.ID, "post_id": postID, "user_id": actorID}).Info("comment added")

	return s.view(ctx, c)
}

// CommentDetail follows the visibility of the post the comment belongs to.
func (s *ThreadService) CommentDetail(ctx context.Context, id uint64, viewer common.Viewer) (*CommentView, error) {
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.visiblePost(ctx, c.PostID, viewer); err != nil {
		if common.KindOf(err) == common.KindNotFound {
			return nil, common.NotFound("comment %d not found", id)
		}
		return nil, err
	}
	return s.view(ctx, c)
}

func (s *ThreadService) view(ctx context.Context, c *dbsql.Comment) (*CommentView, error) {
	authors, err := s.comments.Authors(ctx, []uint64{c.UserID})
	if err != nil {
		return nil, err
	}
	v := newCommentView(c, authors[c.UserID])
	return &v, nil
}

// DeleteComment removes the comment and all of its replies. Only the author
// may delete.
func (s *ThreadService) DeleteComment(ctx context.Context, actorID, id uint64) error {
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.UserID != actorID {
		return common.Forbidden("comment %d belongs to another user", id)
	}

	n, err := s.comments.DeleteTree(ctx, id)
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"comment_id": id, "rows": n}).Info("comment deleted")
	return nil
}
