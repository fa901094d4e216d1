package dbsql

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Username     string    `gorm:"column:username;size:50;not null;uniqueIndex:idx_users_username" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	Nickname     string    `gorm:"column:nickname;size:100" json:"nickname"`
	AvatarURL    *string   `gorm:"column:avatar_url;size:500" json:"avatarUrl"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// Post is a mood entry. Visibility defaults are applied by the service, not
// the column, so an explicit false is never replaced by a database default.
type Post struct {
	ID           uint64                      `gorm:"primaryKey;autoIncrement;column:id"`
	UserID       uint64                      `gorm:"column:user_id;not null;index:idx_posts_user"`
	MoodType     string                      `gorm:"column:mood_type;size:20;not null;index:idx_posts_mood"`
	Content      string                      `gorm:"column:content;type:text;not null"`
	Weather      *string                     `gorm:"column:weather;size:20"`
	Location     *string                     `gorm:"column:location;size:200"`
	GPSLatitude  *float64                    `gorm:"column:gps_latitude"`
	GPSLongitude *float64                    `gorm:"column:gps_longitude"`
	GPSAddress   *string                     `gorm:"column:gps_address;size:500"`
	Tags         datatypes.JSONSlice[string] `gorm:"column:tags"`
	Images       datatypes.JSONSlice[string] `gorm:"column:images"`
	Videos       datatypes.JSONSlice[string] `gorm:"column:videos"`
	IsPublic     bool                        `gorm:"column:is_public;not null;index:idx_posts_public_created,priority:1"`
	CreatedAt    time.Time                   `gorm:"column:created_at;index:idx_posts_public_created,priority:2"`
	UpdatedAt    time.Time                   `gorm:"column:updated_at"`
}

func (Post) TableName() string { return "posts" }

type Like struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement;column:id"`
	PostID    uint64    `gorm:"column:post_id;not null;uniqueIndex:idx_post_likes_post_user,priority:1"`
	UserID    uint64    `gorm:"column:user_id;not null;uniqueIndex:idx_post_likes_post_user,priority:2;index:idx_post_likes_user"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Like) TableName() string { return "post_likes" }

// Comment is top-level when ParentID is nil, otherwise a reply.
type Comment struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement;column:id"`
	PostID    uint64    `gorm:"column:post_id;not null;index:idx_post_comments_post"`
	UserID    uint64    `gorm:"column:user_id;not null;index:idx_post_comments_user"`
	ParentID  *uint64   `gorm:"column:parent_id;index:idx_post_comments_parent"`
	Content   string    `gorm:"column:content;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Comment) TableName() string { return "post_comments" }

type Message struct {
	ID         uint64                      `gorm:"primaryKey;autoIncrement;column:id"`
	SenderID   uint64                      `gorm:"column:sender_id;not null;index:idx_messages_pair,priority:1"`
	ReceiverID uint64                      `gorm:"column:receiver_id;not null;index:idx_messages_pair,priority:2;index:idx_messages_receiver_read,priority:1"`
	Content    string                      `gorm:"column:content;type:text;not null"`
	Images     datatypes.JSONSlice[string] `gorm:"column:images"`
	Videos     datatypes.JSONSlice[string] `gorm:"column:videos"`
	IsRead     bool                        `gorm:"column:is_read;not null;index:idx_messages_receiver_read,priority:2"`
	CreatedAt  time.Time                   `gorm:"column:created_at"`
	UpdatedAt  time.Time                   `gorm:"column:updated_at"`
}

func (Message) TableName() string { return "messages" }

type Follow struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement;column:id"`
	FollowerID  uint64    `gorm:"column:follower_id;not null;uniqueIndex:idx_follows_pair,priority:1"`
	FollowingID uint64    `gorm:"column:following_id;not null;uniqueIndex:idx_follows_pair,priority:2;index:idx_follows_following"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (Follow) TableName() string { return "follows" }

// AllModels lists every table in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Post{},
		&Like{},
		&Comment{},
		&Message{},
		&Follow{},
	}
}
