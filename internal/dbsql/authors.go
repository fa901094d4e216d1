package dbsql

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Author is the public identity attached to posts, comments and messages.
type Author struct {
	ID        uint64  `json:"id"`
	Username  string  `json:"username"`
	Nickname  string  `json:"nickname"`
	AvatarURL *string `json:"avatarUrl"`
}

func AuthorOf(u *User) Author {
	return Author{ID: u.ID, Username: u.Username, Nickname: u.Nickname, AvatarURL: u.AvatarURL}
}

// LoadAuthors fetches the public identity of every id in one query.
func LoadAuthors(ctx context.Context, db *gorm.DB, ids []uint64) (map[uint64]Author, error) {
	out := make(map[uint64]Author, len(ids))
	ids = UniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}

	var users []User
	err := db.WithContext(ctx).
		Select("id", "username", "nickname", "avatar_url").
		Where("id IN ?", ids).
		Find(&users).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load authors")
	}

	for i := range users {
		out[users[i].ID] = AuthorOf(&users[i])
	}
	return out, nil
}

// UniqueIDs drops duplicates and keeps first-seen order.
func UniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
