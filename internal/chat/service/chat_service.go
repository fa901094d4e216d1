package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"moodfeed/internal/chat/repository"
	"moodfeed/internal/common"
	"moodfeed/internal/dbsql"
	"moodfeed/internal/events"
)

const (
	InboxPageSize        = 20
	ConversationPageSize = 50

	maxMessageLength = 1000
)

type SendInput struct {
	ReceiverID uint64   `json:"receiverId" validate:"required,gt=0"`
	Content    string   `json:"content" validate:"required"`
	Images     []string `json:"images" validate:"max=9,dive,mediaref"`
	Videos     []string `json:"videos" validate:"max=3,dive,mediaref"`
}

type MessageView struct {
	ID         uint64       `json:"id"`
	SenderID   uint64       `json:"senderId"`
	ReceiverID uint64       `json:"receiverId"`
	Sender     dbsql.Author `json:"sender"`
	Receiver   dbsql.Author `json:"receiver"`
	Content    string       `json:"content"`
	Images     []string     `json:"images"`
	Videos     []string     `json:"videos"`
	IsRead     bool         `json:"isRead"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// ChatService defines the interface exposed to the handler layer
type ChatService interface {
	SendMessage(ctx context.Context, senderID uint64, in SendInput) (*MessageView, error)
	Inbox(ctx context.Context, userID uint64, role repository.Role, window common.PageWindow) (common.Paged[MessageView], error)
	Conversation(ctx context.Context, userID, otherID uint64, window common.PageWindow) (common.Paged[MessageView], error)
	GetMessage(ctx context.Context, userID, id uint64) (*MessageView, error)
	MarkRead(ctx context.Context, userID, id uint64) error
	DeleteMessage(ctx context.Context, userID, id uint64) error
	UnreadCount(ctx context.Context, userID uint64) (int64, error)
}

type chatService struct {
	repo      repository.ChatRepository
	publisher events.Publisher
	log       *logrus.Logger
}

// Constructor used in DI/wire
func NewChatService(r repository.ChatRepository, publisher events.Publisher, log *logrus.Logger) ChatService {
	return &chatService{repo: r, publisher: publisher, log: log}
}

func (s *chatService) SendMessage(ctx context.Context, senderID uint64, in SendInput) (*MessageView, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, common.Validation("message content cannot be empty")
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, common.Validation("message content must be at most %d characters", maxMessageLength)
	}
	if in.ReceiverID == senderID {
		return nil, common.Validation("cannot send a message to yourself")
	}

	exists, err := s.repo.UserExists(ctx, in.ReceiverID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, common.NotFound("user %d not found", in.ReceiverID)
	}

	msg := &dbsql.Message{
		SenderID:   senderID,
		ReceiverID: in.ReceiverID,
		Content:    content,
		Images:     datatypes.JSONSlice[string](nonNil(in.Images)),
		Videos:     datatypes.JSONSlice[string](nonNil(in.Videos)),
	}
	if err := s.repo.Save(ctx, msg); err != nil {
		return nil, err
	}

	s.publisher.Publish(events.New(events.MessageSent, senderID, in.ReceiverID, msg.ID))
	s.log.WithFields(logrus.Fields{"message_id": msg.ID, "sender_id": senderID, "receiver_id": in.ReceiverID}).Info("message sent")

	views, err := s.annotate(ctx, []dbsql.Message{*msg})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *chatService) Inbox(ctx context.Context, userID uint64, role repository.Role, window common.PageWindow) (common.Paged[MessageView], error) {
	if role == "" {
		role = repository.RoleAll
	}
	if !role.IsValid() {
		return common.Paged[MessageView]{}, common.Validation("unknown inbox type %q", role)
	}
	window = common.NewPageWindow(window.Page, window.PageSize, InboxPageSize)

	msgs, total, err := s.repo.Inbox(ctx, userID, role, window)
	if err != nil {
		return common.Paged[MessageView]{}, err
	}
	views, err := s.annotate(ctx, msgs)
	if err != nil {
		return common.Paged[MessageView]{}, err
	}
	return common.NewPaged(views, total, window), nil
}

// Conversation lists both directions between the two users, oldest first.
func (s *chatService) Conversation(ctx context.Context, userID, otherID uint64, window common.PageWindow) (common.Paged[MessageView], error) {
	window = common.NewPageWindow(window.Page, window.PageSize, ConversationPageSize)

	msgs, total, err := s.repo.Conversation(ctx, userID, otherID, window)
	if err != nil {
		return common.Paged[MessageView]{}, err
	}
	views, err := s.annotate(ctx, msgs)
	if err != nil {
		return common.Paged[MessageView]{}, err
	}
	return common.NewPaged(views, total, window), nil
}

// GetMessage returns a message to one of its participants. Reading an unread
// message as its receiver marks it read.
func (s *chatService) GetMessage(ctx context.Context, userID, id uint64) (*MessageView, error) {
	msg, err := s.repo.GetForParticipant(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if msg.ReceiverID == userID && !msg.IsRead {
		if err := s.repo.MarkRead(ctx, id, userID); err != nil {
			return nil, err
		}
		msg.IsRead = true
	}

	views, err := s.annotate(ctx, []dbsql.Message{*msg})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *chatService) MarkRead(ctx context.Context, userID, id uint64) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *chatService) DeleteMessage(ctx context.Context, userID, id uint64) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"message_id": id, "user_id": userID}).Info("message deleted")
	return nil
}

func (s *chatService) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *chatService) annotate(ctx context.Context, msgs []dbsql.Message) ([]MessageView, error) {
	views := make([]MessageView, 0, len(msgs))
	if len(msgs) == 0 {
		return views, nil
	}

	ids := make([]uint64, 0, 2*len(msgs))
	for i := range msgs {
		ids = append(ids, msgs[i].SenderID, msgs[i].ReceiverID)
	}
	users, err := s.repo.Authors(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range msgs {
		m := &msgs[i]
		views = append(views, MessageView{
			ID:         m.ID,
			SenderID:   m.SenderID,
			ReceiverID: m.ReceiverID,
			Sender:     withID(users[m.SenderID], m.SenderID),
			Receiver:   withID(users[m.ReceiverID], m.ReceiverID),
			Content:    m.Content,
			Images:     nonNil(m.Images),
			Videos:     nonNil(m.Videos),
			IsRead:     m.IsRead,
			CreatedAt:  m.CreatedAt,
			UpdatedAt:  m.UpdatedAt,
		})
	}
	return views, nil
}

func withID(a dbsql.Author, id uint64) dbsql.Author {
	if a.ID == 0 {
		a.ID = id
	}
	return a
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
