package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"moodfeed/internal/common"
	"moodfeed/internal/dbsql"
)

// Role selects which side of the inbox a user is listing.
type Role string

const (
	RoleAll      Role = "all"
	RoleSent     Role = "sent"
	RoleReceived Role = "received"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAll, RoleSent, RoleReceived:
		return true
	}
	return false
}

type ChatRepository interface {
	Save(ctx context.Context, msg *dbsql.Message) error
	// GetForParticipant hides messages the user neither sent nor received.
	GetForParticipant(ctx context.Context, id, userID uint64) (*dbsql.Message, error)
	MarkRead(ctx context.Context, id, receiverID uint64) error
	Delete(ctx context.Context, id, userID uint64) error

	Inbox(ctx context.Context, userID uint64, role Role, window common.PageWindow) ([]dbsql.Message, int64, error)
	Conversation(ctx context.Context, userID, otherID uint64, window common.PageWindow) ([]dbsql.Message, int64, error)
	UnreadCount(ctx context.Context, userID uint64) (int64, error)

	UserExists(ctx context.Context, userID uint64) (bool, error)
	Authors(ctx context.Context, userIDs []uint64) (map[uint64]dbsql.Author, error)
}

type chatRepo struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepo{db: db}
}

func (r *chatRepo) Save(ctx context.Context, msg *dbsql.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return common.Internal(errors.Wrap(err, "insert message"), "failed to send message")
	}
	return nil
}

func (r *chatRepo) GetForParticipant(ctx context.Context, id, userID uint64) (*dbsql.Message, error) {
	var msg dbsql.Message
	err := r.db.WithContext(ctx).
		Where("id = ? AND (sender_id = ? OR receiver_id = ?)", id, userID, userID).
		First(&msg).Error
	if err != nil {
		if dbsql.IsNotFound(err) {
			return nil, common.NotFound("message %d not found", id)
		}
		return nil, common.Internal(errors.Wrap(err, "select message"), "failed to get message")
	}
	return &msg, nil
}

// MarkRead only matches rows addressed to receiverID. MySQL reports changed
// rather than matched rows, so an update that changed nothing is followed by
// an existence check before answering NotFound.
func (r *chatRepo) MarkRead(ctx context.Context, id, receiverID uint64) error {
	result := r.db.WithContext(ctx).Model(&dbsql.Message{}).
		Where("id = ? AND receiver_id = ?", id, receiverID).
		Updates(map[string]interface{}{"is_read": true})
	if result.Error != nil {
		return common.Internal(errors.Wrap(result.Error, "update message"), "failed to mark message read")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&dbsql.Message{}).
		Where("id = ? AND receiver_id = ?", id, receiverID).
		Count(&count).Error; err != nil {
		return common.Internal(errors.Wrap(err, "count message"), "failed to mark message read")
	}
	if count == 0 {
		return common.NotFound("message %d not found", id)
	}
	return nil
}

func (r *chatRepo) Delete(ctx context.Context, id, userID uint64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND (sender_id = ? OR receiver_id = ?)", id, userID, userID).
		Delete(&dbsql.Message{})
	if result.Error != nil {
		return common.Internal(errors.Wrap(result.Error, "delete message"), "failed to delete message")
	}
	if result.RowsAffected == 0 {
		return common.NotFound("message %d not found", id)
	}
	return nil
}

func (r *chatRepo) page(ctx context.Context, scope func() *gorm.DB, order string, window common.PageWindow) ([]dbsql.Message, int64, error) {
	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, common.Internal(errors.Wrap(err, "count messages"), "failed to list messages")
	}

	msgs := []dbsql.Message{}
	if window.PastEnd(total) {
		return msgs, total, nil
	}
	err := scope().Order(order).Limit(window.Limit()).Offset(window.Offset()).Find(&msgs).Error
	if err != nil {
		return nil, 0, common.Internal(errors.Wrap(err, "select messages"), "failed to list messages")
	}
	return msgs, total, nil
}

func (r *chatRepo) Inbox(ctx context.Context, userID uint64, role Role, window common.PageWindow) ([]dbsql.Message, int64, error) {
	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&dbsql.Message{})
		switch role {
		case RoleSent:
			return q.Where("sender_id = ?", userID)
		case RoleReceived:
			return q.Where("receiver_id = ?", userID)
		default:
			return q.Where("sender_id = ? OR receiver_id = ?", userID, userID)
		}
	}
	return r.page(ctx, scope, "created_at DESC, id DESC", window)
}

func (r *chatRepo) Conversation(ctx context.Context, userID, otherID uint64, window common.PageWindow) ([]dbsql.Message, int64, error) {
	scope := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&dbsql.Message{}).
			Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", userID, otherID, otherID, userID)
	}
	return r.page(ctx, scope, "created_at ASC, id ASC", window)
}

func (r *chatRepo) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbsql.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, common.Internal(errors.Wrap(err, "count unread"), "failed to count unread messages")
	}
	return count, nil
}

func (r *chatRepo) UserExists(ctx context.Context, userID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbsql.User{}).Where("id = ?", userID).Count(&count).Error
	if err != nil {
		return false, common.Internal(errors.Wrap(err, "count users"), "failed to check user")
	}
	return count > 0, nil
}

func (r *chatRepo) Authors(ctx context.Context, userIDs []uint64) (map[uint64]dbsql.Author, error) {
	authors, err := dbsql.LoadAuthors(ctx, r.db, userIDs)
	if err != nil {
		return nil, common.Internal(err, "failed to load users")
	}
	return authors, nil
}
