package events

import "time"

type Type string

const (
	PostCreated    Type = "post.created"
	PostLiked      Type = "post.liked"
	CommentCreated Type = "comment.created"
	MessageSent    Type = "message.sent"
	UserFollowed   Type = "user.followed"
)

// Event describes a committed write. ActorID performed it, TargetID is the
// user it concerns, SubjectID the entity it touched (post, comment, message).
type Event struct {
	Type       Type      `json:"type"`
	ActorID    uint64    `json:"actorId"`
	TargetID   uint64    `json:"targetId"`
	SubjectID  uint64    `json:"subjectId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

func New(t Type, actorID, targetID, subjectID uint64) Event {
	return Event{
		Type:       t,
		ActorID:    actorID,
		TargetID:   targetID,
		SubjectID:  subjectID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher accepts events without blocking the caller.
type Publisher interface {
	Publish(event Event)
}

type Observer interface {
	Update(event Event) error
	Name() string
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(Event) {}
